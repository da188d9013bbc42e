package lang

import (
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Format renders an evaluation result for display. A top-level string is
// written as is; strings inside arrays and objects are quoted. Objects list
// their keys in sorted order.
func Format(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	var b strings.Builder

	writeValue(&b, v)

	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case string:
		b.WriteString(strconv.Quote(x))

		return

	case map[string]any:
		writeObject(b, len(x), slices.Sorted(mapKeys(x)), func(k string) any { return x[k] })

		return
	}

	if isPrimitive(v) || isCallable(v) {
		b.WriteString(toString(v))

		return
	}

	if elems, ok := elements(v); ok {
		b.WriteByte('[')

		for i, e := range elems {
			if i > 0 {
				b.WriteString(", ")
			}

			writeValue(b, e)
		}

		b.WriteByte(']')

		return
	}

	if rv := reflect.Indirect(reflect.ValueOf(v)); rv.Kind() == reflect.Map &&
		rv.Type().Key().Kind() == reflect.String {
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}

		slices.Sort(keys)

		writeObject(b, len(keys), keys, func(k string) any {
			return fromReflect(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
		})

		return
	}

	b.WriteString(toString(v))
}

func writeObject(b *strings.Builder, n int, keys []string, get func(string) any) {
	if n == 0 {
		b.WriteString("{}")

		return
	}

	b.WriteString("{")

	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}

		b.WriteByte(' ')

		if isIdentifierName(k) {
			b.WriteString(k)
		} else {
			b.WriteString(strconv.Quote(k))
		}

		b.WriteString(": ")
		writeValue(b, get(k))
	}

	b.WriteString(" }")
}

// Export converts an evaluation result into plain data for encoders:
// undefined becomes nil, non-finite numbers become nil, all numbers become
// float64, closures become their source text and Go functions are dropped.
func Export(v any) any {
	switch x := v.(type) {
	case nil, undefined:
		return nil
	case string, bool:
		return x
	case *Closure:
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if !isCallable(e) || isClosure(e) {
				out[k] = Export(e)
			}
		}

		return out
	}

	if f, ok := number(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}

		return f
	}

	if isCallable(v) {
		return nil
	}

	if elems, ok := elements(v); ok {
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = Export(e)
		}

		return out
	}

	return v
}

func isClosure(v any) bool {
	_, ok := v.(*Closure)

	return ok
}

func mapKeys(m map[string]any) func(func(string) bool) {
	return func(yield func(string) bool) {
		for k := range m {
			if !yield(k) {
				return
			}
		}
	}
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
