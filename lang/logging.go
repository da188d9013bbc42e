package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Attributes attached to trace records and errors.

func attrName(name string) slog.Attr { return slog.String("name", name) }

func attrReason(reason string) slog.Attr { return slog.String("reason", reason) }

func attrChain(c *Chain) slog.Attr {
	return slog.String("chain", strings.Join(c.names, " -> "))
}

func attrType(v any) slog.Attr { return slog.String("type", typeName(v)) }

// typeName describes the Go type of v for messages.
func typeName(v any) string {
	switch {
	case v == nil:
		return "nil"
	case isUndefined(v):
		return "undefined"
	}

	return fmt.Sprintf("%T", v)
}

func attrScope[T any](scope map[string]T) slog.Attr {
	return slog.Any("captured", slices.Sorted(maps.Keys(scope)))
}
