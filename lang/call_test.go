package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X     int
	Y     int
	Label string `json:"label"`
	note  string
}

func (p point) Sum() int { return p.X + p.Y }

func (p *point) Scale(k float64) point {
	return point{X: int(float64(p.X) * k), Y: int(float64(p.Y) * k)}
}

type ctxKey struct{}

func TestCall_Reflect(t *testing.T) {
	p := &point{X: 1, Y: 2, Label: "origin", note: "hidden"}

	bindings := map[string]any{
		"repeat": strings.Repeat,
		"upper":  strings.ToUpper,
		"fields": strings.Fields,
		"sum": func(xs ...int) int {
			n := 0
			for _, x := range xs {
				n += x
			}

			return n
		},
		"join": func(sep string, parts []string) string { return strings.Join(parts, sep) },
		"keys": func(m map[string]int) int { return len(m) },
		"pair": func() (int, string) { return 1, "a" },
		"nop":  func() {},
		"who": func(ctx context.Context, greeting string) string {
			who, _ := ctx.Value(ctxKey{}).(string)

			return greeting + " " + who
		},
		"p": p,
		"v": *p,
	}

	tests := []struct {
		text string
		want any
	}{
		{"repeat('ab', 3)", "ababab"},
		{"upper(1.5)", "1.5"},
		{"fields(' a b ').length", 2.0},
		{"sum()", 0},
		{"sum(1, 2, '3')", 6},
		{"join('-', ['a', 'b', 1])", "a-b-1"},
		{"keys({a: 1, b: 2})", 2},
		{"pair()", []any{1, "a"}},
		{"who('hello')", "hello world"},
		{"p.X + p.y", 3.0},
		{"p.label", "origin"},
		{"p.sum()", 3},
		{"p.scale(2).X", 2},
		{"p.scale(2).sum()", 6},
		{"v.sum()", 3},
	}

	ctx := context.WithValue(t.Context(), ctxKey{}, "world")

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Evaluate(ctx, tt.text, bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, text := range []string{"nop()", "p.note", "p.missing", "p.Sum.name"} {
		_, err := Evaluate(ctx, text, bindings)
		require.ErrorIs(t, err, ErrUndefinedVariable, text)
	}
}

func TestCall_ReflectErrors(t *testing.T) {
	boom := errors.New("boom")

	bindings := map[string]any{
		"fail":   func() (int, error) { return 0, boom },
		"ok":     func() (int, error) { return 7, nil },
		"panics": func() int { panic("bad") },
		"panicE": func() int { panic(boom) },
		"half":   func(n uint) uint { return n / 2 },
	}

	got, err := Evaluate(t.Context(), "ok()", bindings)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	_, err = Evaluate(t.Context(), "fail()", bindings)
	require.ErrorIs(t, err, ErrInvocation)
	require.ErrorIs(t, err, boom)

	_, err = Evaluate(t.Context(), "panics()", bindings)
	require.ErrorIs(t, err, ErrInvocation)
	assert.Contains(t, err.Error(), "panic: bad")

	_, err = Evaluate(t.Context(), "panicE()", bindings)
	require.ErrorIs(t, err, boom)

	_, err = Evaluate(t.Context(), "half(-4)", bindings)
	require.ErrorIs(t, err, ErrInvocation)

	_, err = Evaluate(t.Context(), "half('x')", bindings)
	require.ErrorIs(t, err, ErrInvocation)
}

func TestCall_NullArguments(t *testing.T) {
	bindings := map[string]any{
		"describe": func(s string, n int, xs []string) string {
			return s + "|" + strings.Repeat("x", n) + "|" + strings.Join(xs, ",")
		},
	}

	got, err := Evaluate(t.Context(), "describe(null)", bindings)
	require.NoError(t, err)
	assert.Equal(t, "||", got)
}

func TestFunc_Call(t *testing.T) {
	f := Func(func(_ context.Context, this any, args ...any) (any, error) {
		return []any{this, len(args)}, nil
	})

	got, err := f.Call(t.Context(), "recv", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{"recv", 2}, got)
}
