package cmd

import (
	"log/slog"
	"slices"
)

// Error is a command failure. Its message identifies the failing step, so
// errors.Is matches any annotated copy of a sentinel below. Attributes added
// with [Error.With] appear when the error is logged.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

var (
	ErrEvaluate    = &Error{msg: "evaluate expression"}
	ErrParse       = &Error{msg: "parse expression"}
	ErrWriteOutput = &Error{msg: "write output"}
	ErrWriteConfig = &Error{msg: "write configuration file"}
	ErrFileExists  = &Error{msg: "file exists (use --force to overwrite)"}
)

func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	}

	return e.msg + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue groups the message, cause and attributes.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.msg)}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(slices.Concat(attrs, e.attrs)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = slices.Concat(e.attrs, attrs)

	return &c
}
