package exprlang_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dengtao07/expression/lang"
	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/lang/exprlang"
)

func root(t *testing.T, g *exprlang.Grammar, text string) ast.Node {
	t.Helper()

	n, err := g.Parse(text)
	require.NoError(t, err)

	stmt, ok := n.(*ast.ExpressionStatement)
	require.True(t, ok)

	return stmt.X
}

func TestGrammar_Parse(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"a and b", "(a && b)"},
		{"a or not b", "(a || (!b))"},
		{"a == b", "(a === b)"},
		{"a != b", "(a !== b)"},
		{"2 ^ 3", "(2 ** 3)"},
		{"x.y.z", "x.y.z"},
		{"x['a b']", "x[\"a b\"]"},
		{"x[0]", "x[0]"},
		{"f(1, 'a')", "f(1, \"a\")"},
		{"a ? b : c", "(a ? b : c)"},
		{"[1, nil, true]", "[1, null, true]"},
		{"{a: 1, 'b c': 2}", "({a: 1, \"b c\": 2})"},
	}

	g := exprlang.New()

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ast.Print(root(t, g, tt.text)))
		})
	}
}

func TestGrammar_Unsupported(t *testing.T) {
	g := exprlang.New()

	for _, text := range []string{
		"len(xs)",
		"filter(xs, # > 1)",
		"xs[1:2]",
		"x?.y",
		"let a = 1; a",
		"xs | map(#)",
	} {
		t.Run(text, func(t *testing.T) {
			found := false

			ast.Inspect(root(t, g, text), func(n ast.Node) bool {
				if n.Kind() == ast.KindUnsupported {
					found = true
				}

				return true
			})

			assert.True(t, found)
		})
	}
}

func TestGrammar_SyntaxError(t *testing.T) {
	_, err := exprlang.New().Parse("1 +")
	require.Error(t, err)

	_, err = lang.New(lang.WithGrammar(exprlang.New())).Evaluate(t.Context(), "1 +", nil)
	require.ErrorIs(t, err, lang.ErrSyntax)
}

func TestGrammar_Positions(t *testing.T) {
	x := root(t, exprlang.New(), "a +\n  b")

	bin, ok := x.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "2:3", bin.Y.Pos().String())
}

func TestGrammar_HyphenatedNames(t *testing.T) {
	g := exprlang.New(exprlang.WithNames("log-level", "a-b-c", "plain"))

	assert.Equal(t, "log-level", ast.Print(root(t, g, "log-level")))
	assert.Equal(t, "(a-b-c + 1)", ast.Print(root(t, g, "a-b-c + 1")))
	assert.Equal(t, "(x - y)", ast.Print(root(t, g, "x - y")))
	assert.Equal(t, "exprlang:a-b-c,log-level", g.CacheKey())
}

func TestGrammar_Evaluate(t *testing.T) {
	bindings := map[string]any{
		"xs":        []any{1.0, 2.0, 3.0},
		"user":      map[string]any{"name": "ann", "admin": true},
		"log-level": "'debug'",
		"double": lang.Func(func(_ context.Context, _ any, args ...any) (any, error) {
			f, _ := args[0].(float64)

			return f * 2, nil
		}),
	}

	r := lang.New(
		lang.WithGrammar(exprlang.New(exprlang.WithNames("log-level"))),
		lang.WithCache(lang.NewCache()),
	)

	tests := []struct {
		text string
		want any
	}{
		{"1 + 2 * 3", 7.0},
		{"user.admin and xs[0] == 1", true},
		{"not user.admin or user.name == 'ann'", true},
		{"user.admin ? user.name : 'guest'", "ann"},
		{"double(xs[2])", 6.0},
		{"xs.length", 3.0},
		{"log-level + '!'", "debug!"},
		{"{n: 1}.n", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := r.Evaluate(t.Context(), tt.text, bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, text := range []string{
		"len(xs)",
		"2 ^ 3",
		"1 in xs",
		"user.name matches 'a'",
		"user?.name",
		"nil ?? 1",
		"user.constructor",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := r.Evaluate(t.Context(), text, bindings)
			require.ErrorIs(t, err, lang.ErrUndefinedVariable)
		})
	}
}

func TestGrammar_Unparse(t *testing.T) {
	g := exprlang.New()

	_, err := g.Unparse(nil)
	require.Error(t, err)

	text, err := g.Unparse(root(t, g, "a.b(1)"))
	require.NoError(t, err)
	assert.Equal(t, "a.b(1)", text)
}
