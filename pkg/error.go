package pkg

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error is a chain of errors, outermost first. Each sentinel below is a
// one-element chain. Wrapping a sentinel appends causes to a copy, and
// errors.Is matches any chain that begins with the sentinel.
type Error []error

var (
	ErrReadInput     = sentinel("failed to read input")
	ErrBindings      = sentinel("invalid bindings")
	ErrInvalidFormat = sentinel("invalid format")
	ErrJSONMarshal   = sentinel("JSON marshal error")
	ErrYAMLMarshal   = sentinel("YAML marshal error")
)

func sentinel(msg string) Error { return Error{errors.New(msg)} }

func (e Error) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}

	return strings.Join(parts, ": ")
}

// Wrap returns a copy of e with errs appended.
func (e Error) Wrap(errs ...error) Error {
	return append(slices.Clip(e), errs...)
}

// Wrapf returns a copy of e with a formatted error appended.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

func (e Error) Unwrap() []error { return e }

// Is reports whether target is a prefix of e.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i, err := range t {
		if err != e[i] {
			return false
		}
	}

	return true
}
