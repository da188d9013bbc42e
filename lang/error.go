package lang

import (
	"errors"
	"log/slog"
	"slices"
)

// Every error returned by a [Resolver], other than a context error, matches
// exactly one of these with errors.Is. The messages do not say which sandbox
// rule refused an expression; that detail is attached as log attributes.
var (
	ErrSyntax            = NewError("invalid expression syntax")
	ErrCircularReference = NewError("circular variable reference")
	ErrUndefinedVariable = NewError("use of undefined variable")
	ErrInvocation        = NewError("function invocation failed")
	ErrMaxDepthExceeded  = NewError("maximum resolution depth exceeded")
)

// errBlocked is returned by callables when the evaluation they perform is
// refused by the sandbox. Call sites translate it back into a blocked result.
var errBlocked = errors.New("blocked")

// Error is a resolver failure derived from one of the sentinels above.
// It carries structured attributes for logging.
type Error struct {
	kind  *Error
	msg   string
	cause error
	attrs []slog.Attr
}

// NewError returns a sentinel with the given message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}

	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether e and target derive from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.kind != nil && e.kind == t.kind
}

func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.msg)}

	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}

	return slog.GroupValue(slices.Concat(attrs, e.attrs)...)
}

// Attrs returns the attributes attached with [Error.With].
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.cause = err

	return &c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = slices.Concat(e.attrs, attrs)

	return &c
}
