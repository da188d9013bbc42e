package lang

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dengtao07/expression/lang/parser"
)

func evalBindings() map[string]any {
	return map[string]any{
		"obj": map[string]any{
			"name":   "n",
			"nested": map[string]any{"z": 5},
			"list":   []any{1.0, 2.0, 3.0},
			"greet": Func(func(_ context.Context, this any, _ ...any) (any, error) {
				m, _ := this.(map[string]any)

				return "hi " + toString(m["name"]), nil
			}),
		},
		"fn": Func(func(context.Context, any, ...any) (any, error) {
			return "called", nil
		}),
		"num":  42,
		"flag": true,
		"k":    Literal("constructor"),
		"text": "'abc'",
	}
}

func TestEval_Values(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"1 + 2", 3.0},
		{"0.1 + 0.2", 0.30000000000000004},
		{"'a' + 1", "a1"},
		{"1 + '2'", "12"},
		{"('3' * '4')", 12.0},
		{"7 % 3", 1.0},
		{"-7 % 3", -1.0},
		{"2 - -2", 4.0},
		{"~5", -6.0},
		{"5 & 3", 1.0},
		{"5 | 3", 7.0},
		{"5 ^ 3", 6.0},
		{"!0", true},
		{"!!'x'", true},
		{"+'42'", 42.0},
		{"-'x' !== -'x'", true},
		{"1 < 2", true},
		{"('b' > 'a')", true},
		{"('10' < '9')", true},
		{"10 < '9'", false},
		{"1 <= 1", true},
		{"2 >= 3", false},
		{"null == 0", false},
		{"null === null", true},
		{"'1' == 1", true},
		{"'1' === 1", false},
		{"true == 1", true},
		{"1 != 2", true},
		{"[1, 2, 3].length", 3.0},
		{"[1, [2, 3]] + ''", "1,2,3"},
		{"({a: 1}) + ''", "[object Object]"},
		{"1 && 2", 2.0},
		{"0 && (1/0)", 0.0},
		{"0 || 'x'", "x"},
		{"'' || 0", 0.0},
		{"1 / 0", math.Inf(1)},
		{"true ? 'yes' : 'no'", "yes"},
		{"num ? 1 : nope", 1.0},
		{"!num ? nope : 2", 2.0},
		{"`sum ${1 + 2}!`", "sum 3!"},
		{"`${obj.name}-${[1, 2]}-${null}`", "n-1,2-null"},
		{"({a: 1, 'b c': null, 3: 'x'})", map[string]any{"a": 1.0, "b c": nil, "3": "x"}},
		{"({num, flag})", map[string]any{"num": 42, "flag": true}},
		{"obj.nested.z", 5},
		{"obj['nested']['z'] + 1", 6.0},
		{"obj.list[1]", 2.0},
		{"obj.list['2']", 3.0},
		{"obj.greet()", "hi n"},
		{"obj['greet']()", "hi n"},
		{"fn()", "called"},
		{"text + text", "abcabc"},
		{"'abc'[1]", "b"},
		{"'abc'.length", 3.0},
		{"num.toString()", "42"},
		{"(num > 40) === flag", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Evaluate(t.Context(), tt.text, evalBindings())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_NaN(t *testing.T) {
	for _, text := range []string{"0 / 0", "+'abc'", "obj.list * 2", "1 % 0"} {
		got, err := Evaluate(t.Context(), text, evalBindings())
		require.NoError(t, err, text)

		f, ok := got.(float64)
		require.True(t, ok, text)
		assert.True(t, math.IsNaN(f), text)
	}
}

func TestEval_Blocked(t *testing.T) {
	tests := []string{
		// properties
		"({}).constructor",
		"obj.__proto__",
		"obj.constructor",
		"obj['__proto__']",
		"obj['__pro' + 'to__']",
		"obj[k]",
		"obj.list.constructor",
		"'abc'.constructor",
		"(1).constructor",
		"obj[null]",
		"fn.name",
		"fn['call']",
		"obj.greet.call",
		"null.x",
		"nothing.x",
		"obj.missing.x",
		"({}).missing",

		// calls
		"num()",
		"obj.name()",
		"obj.missing()",
		"nothing()",
		"fn(nothing)",
		"[nothing]",
		"({a: nothing})",

		// operators
		"typeof 1",
		"void 0",
		"delete obj.name",
		"1 << 2",
		"1 >> 2",
		"1 >>> 2",
		"2 ** 3",
		"'name' in obj",
		"obj instanceof obj",
		"null ?? 1",
		"nothing && 1",
		"1 + nothing",
		"-nothing",
		"`${nothing}`",

		// unsupported expressions
		"num = 1",
		"num += 1",
		"num++",
		"--num",
		"new fn()",
		"(1, 2)",
		"x => x",
		"(a, b) => a + b",
		"({[k]: 1})",
		"this",
		"this.name",
		"function (a = 1) { return a }",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			_, err := Evaluate(t.Context(), text, evalBindings())
			require.ErrorIs(t, err, ErrUndefinedVariable)
		})
	}
}

func TestEval_This(t *testing.T) {
	bindings := map[string]any{"this": map[string]any{"x": 1.0}}

	got, err := Evaluate(t.Context(), "this.x + 1", bindings)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestEval_ShortCircuitSkipsCalls(t *testing.T) {
	calls := 0
	bindings := map[string]any{
		"count": Func(func(context.Context, any, ...any) (any, error) {
			calls++

			return true, nil
		}),
	}

	for _, text := range []string{
		"false && count()",
		"true || count()",
		"false ? count() : 1",
		"true ? 1 : count()",
	} {
		_, err := Evaluate(t.Context(), text, bindings)
		require.NoError(t, err, text)
	}

	assert.Zero(t, calls)

	_, err := Evaluate(t.Context(), "true && count()", bindings)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestEval_CallReceiverIsEvaluatedOnce(t *testing.T) {
	calls := 0
	bindings := map[string]any{
		"make": Func(func(context.Context, any, ...any) (any, error) {
			calls++

			return map[string]any{
				"id": Func(func(_ context.Context, this any, _ ...any) (any, error) {
					return this.(map[string]any)["n"], nil
				}),
				"n": calls,
			}, nil
		}),
	}

	got, err := Evaluate(t.Context(), "make().id()", bindings)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, calls)
}

func TestEval_TaggedTemplate(t *testing.T) {
	var gotArgs []any

	bindings := map[string]any{
		"tag": Func(func(_ context.Context, _ any, args ...any) (any, error) {
			gotArgs = args

			return len(args), nil
		}),
		"v": 7.0,
	}

	got, err := Evaluate(t.Context(), "tag`a${1}b${v}c`", bindings)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, []any{[]any{"a", "b", "c"}, 1.0, 7.0}, gotArgs)

	_, err = Evaluate(t.Context(), "v`a`", bindings)
	require.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestEval_HostError(t *testing.T) {
	boom := errors.New("boom")
	bindings := map[string]any{
		"fail": Func(func(context.Context, any, ...any) (any, error) {
			return nil, boom
		}),
	}

	_, err := Evaluate(t.Context(), "1 + fail()", bindings)
	require.ErrorIs(t, err, ErrInvocation)
	require.ErrorIs(t, err, boom)
}

func TestEval_ErrorFromNestedResolution(t *testing.T) {
	bindings := map[string]any{
		"a": "b + 1",
		"b": "c",
	}

	_, err := Evaluate(t.Context(), "a", bindings)
	require.ErrorIs(t, err, ErrUndefinedVariable)

	bindings["c"] = "1 +"

	_, err = Evaluate(t.Context(), "a", bindings)
	require.ErrorIs(t, err, ErrSyntax)
}

func TestResolver_EvalDryRun(t *testing.T) {
	calls := 0
	bindings := map[string]any{
		"count": Func(func(context.Context, any, ...any) (any, error) {
			calls++

			return 1.0, nil
		}),
	}

	tree, err := parser.Parse("count() + count()")
	require.NoError(t, err)

	r := New()

	res, err := r.Eval(t.Context(), tree, bindings, nil, true)
	require.NoError(t, err)
	assert.False(t, res.IsBlocked())
	assert.Zero(t, calls)

	res, err = r.Eval(t.Context(), tree, bindings, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Value())
	assert.Equal(t, 2, calls)

	tree, err = parser.Parse("nothing()")
	require.NoError(t, err)

	res, err = r.Eval(t.Context(), tree, bindings, nil, true)
	require.NoError(t, err)
	assert.True(t, res.IsBlocked())
}

func TestResult(t *testing.T) {
	assert.True(t, Blocked.IsBlocked())
	assert.False(t, Blocked.IsUndefined())
	assert.Equal(t, Undefined, Blocked.Value())
	assert.Equal(t, "<blocked>", Blocked.String())

	u := ValueOf(Undefined)
	assert.True(t, u.IsUndefined())
	assert.False(t, u.IsBlocked())

	n := ValueOf(nil)
	assert.False(t, n.IsUndefined())
	assert.Nil(t, n.Value())
	assert.Equal(t, "null", n.String())

	assert.Equal(t, "1.5", ValueOf(1.5).String())
}

func TestChain(t *testing.T) {
	c := NewChain()

	require.NoError(t, c.Push("a"))
	require.NoError(t, c.Push("b"))
	assert.True(t, c.Contains("a"))
	assert.Equal(t, []string{"a", "b"}, c.Names())

	err := c.Push("a")
	require.ErrorIs(t, err, ErrCircularReference)

	var le *Error
	require.ErrorAs(t, err, &le)

	found := false

	for _, a := range le.Attrs() {
		if a.Key == "chain" {
			found = true

			assert.Equal(t, "a -> b", a.Value.String())
		}
	}

	assert.True(t, found)

	c.Pop("b")
	c.Pop("a")
	assert.Zero(t, c.Len())
	require.NoError(t, c.Push("a"))
}

func TestError_Is(t *testing.T) {
	err := ErrUndefinedVariable.With(attrName("x"))

	require.ErrorIs(t, err, ErrUndefinedVariable)
	assert.NotErrorIs(t, err, ErrSyntax)
	assert.NotErrorIs(t, ErrSyntax, ErrUndefinedVariable)
	assert.True(t, strings.HasPrefix(ErrInvocation.Wrap(errors.New("x")).Error(), "function invocation failed"))
}
