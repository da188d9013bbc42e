package lang

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/lang/parser"
)

// countingGrammar counts calls to the default grammar.
type countingGrammar struct {
	parser.Grammar

	parses atomic.Int64
}

func (g *countingGrammar) Parse(text string) (ast.Node, error) {
	g.parses.Add(1)

	return g.Grammar.Parse(text)
}

func TestResolve_QuotedLiteral(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{`'x'`, "x"},
		{`"x"`, "x"},
		{`''`, ""},
		{`'it''s'`, "it''s"},
		{`'a' + 'b'`, "a' + 'b"},
		{`"{not valid"`, "{not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			g := &countingGrammar{}
			r := New(WithGrammar(g))

			got, err := r.Resolve(t.Context(), "v", tt.text, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, g.parses.Load(), "grammar must not be called")
		})
	}
}

func TestResolve_QuotedLiteralMultiline(t *testing.T) {
	g := &countingGrammar{}
	r := New(WithGrammar(g))

	got, err := r.Resolve(t.Context(), "v", "'a\\nb'", nil)
	require.NoError(t, err)
	assert.Equal(t, `a\nb`, got)

	// A real line break is not a literal; the grammar parses it instead.
	got, err = r.Resolve(t.Context(), "v", "'a' +\n'b'", nil)
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
	assert.Equal(t, int64(1), g.parses.Load())
}

func TestResolve_UnboundIdentifier(t *testing.T) {
	for _, bindings := range []map[string]any{
		nil,
		{},
		{"j": 1.0, "K": 2.0},
	} {
		_, err := Evaluate(t.Context(), "k", bindings)
		require.ErrorIs(t, err, ErrUndefinedVariable)
	}
}

func TestResolve_CircularReference(t *testing.T) {
	bindings := map[string]any{"a": "b", "b": "a"}

	_, err := Evaluate(t.Context(), "a", bindings)
	require.ErrorIs(t, err, ErrCircularReference)

	_, err = Resolve(t.Context(), "a", "b", bindings)
	require.ErrorIs(t, err, ErrCircularReference)

	_, err = Resolve(t.Context(), "self", "self + 1", map[string]any{"self": "self + 1"})
	require.ErrorIs(t, err, ErrCircularReference)
}

func TestResolve_Recursive(t *testing.T) {
	got, err := Evaluate(t.Context(), "a", map[string]any{"a": "b", "b": "1+1"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestResolve_RepeatedReferenceIsNotCircular(t *testing.T) {
	bindings := map[string]any{
		"a": "1",
		"b": "a + a",
		"c": "[a, b, a * b]",
	}

	got, err := Evaluate(t.Context(), "c", bindings)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 2.0}, got)
}

func TestResolve_SharedDependency(t *testing.T) {
	bindings := map[string]any{"a": "b + b", "b": "c", "c": 2}

	got, err := Evaluate(t.Context(), "a", bindings)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestResolve_SyntaxError(t *testing.T) {
	for _, text := range []string{"1 +", "(", "a b", "[1,,2]", "`open"} {
		_, err := Evaluate(t.Context(), text, nil)
		require.ErrorIs(t, err, ErrSyntax, text)
		assert.Equal(t, "invalid expression syntax", err.Error())
	}
}

func TestResolve_MaxDepth(t *testing.T) {
	bindings := map[string]any{"a": "b", "b": "c", "c": "1"}

	r := New(WithMaxDepth(2))

	_, err := r.Resolve(t.Context(), "a", "b", bindings)
	require.ErrorIs(t, err, ErrMaxDepthExceeded)

	got, err := New(WithMaxDepth(3)).Resolve(t.Context(), "a", "b", bindings)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestResolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Evaluate(ctx, "1", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve_LiteralBinding(t *testing.T) {
	bindings := map[string]any{
		"name":  Literal("a + b"),
		"greet": "'hello, ' + name",
	}

	got, err := Evaluate(t.Context(), "greet", bindings)
	require.NoError(t, err)
	assert.Equal(t, "hello, a + b", got)
}

func TestResolve_NullIsAValue(t *testing.T) {
	got, err := Evaluate(t.Context(), "null", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Evaluate(t.Context(), "({}).missing", nil)
	require.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestResolve_BindingsUnchanged(t *testing.T) {
	bindings := map[string]any{"k": 2.0, "f": "function (q) { return q * k }"}

	_, err := Evaluate(t.Context(), "[1].map(f)", bindings)
	require.NoError(t, err)
	assert.Len(t, bindings, 2)
	assert.NotContains(t, bindings, "q")
}

func TestResolve_Cache(t *testing.T) {
	c := NewCache()
	g := &countingGrammar{}
	r := New(WithGrammar(g), WithCache(c))

	for range 3 {
		got, err := r.Evaluate(t.Context(), "1 + 2", nil)
		require.NoError(t, err)
		assert.Equal(t, 3.0, got)
	}

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(1), g.parses.Load())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	_, err := r.Evaluate(t.Context(), "1 +", nil)
	require.ErrorIs(t, err, ErrSyntax)

	_, err = r.Evaluate(t.Context(), "1 +", nil)
	require.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, int64(2), g.parses.Load())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestResolve_Concurrent(t *testing.T) {
	r := New(WithCache(NewCache()))
	bindings := map[string]any{
		"a": "b * 2",
		"b": "c + 1",
		"c": 1.0,
	}

	var g errgroup.Group

	for i := range 32 {
		g.Go(func() error {
			got, err := r.Evaluate(t.Context(), fmt.Sprintf("a + %d", i), bindings)
			if err != nil {
				return err
			}

			if got != float64(4+i) {
				return fmt.Errorf("a + %d = %v", i, got)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}

func TestResolve_FunctionRoundTrip(t *testing.T) {
	sources := []string{
		"function (a, b) { return a + b }",
		"function (xs) { return xs.map(function (x) { return x * 2 }).join('-') }",
		"function () { return `n=${1 + 1}` }",
		"function (o) { o.name; return o.name ? o.name : 'none' }",
	}

	var g parser.Grammar

	r := New(WithCalleeCheck(CalleeDeferred))

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			tree, err := g.Parse(src)
			require.NoError(t, err)

			text, err := g.Unparse(tree)
			require.NoError(t, err)

			again, err := g.Parse(text)
			require.NoError(t, err)
			assert.Equal(t, ast.Dump(tree), ast.Dump(again))

			v1, err := r.Evaluate(t.Context(), src, nil)
			require.NoError(t, err)

			v2, err := r.Evaluate(t.Context(), text, nil)
			require.NoError(t, err)

			c1, ok := v1.(*Closure)
			require.True(t, ok)

			c2, ok := v2.(*Closure)
			require.True(t, ok)

			assert.Equal(t, c1.Params(), c2.Params())
			assert.Equal(t, c1.String(), c2.String())
		})
	}
}
