package repl

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/dengtao07/expression/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{
			name:   "no function call",
			input:  "greeting",
			cursor: 8,
		},
		{
			name:       "first arg",
			input:      "add(",
			cursor:     4,
			wantName:   "add",
			wantInCall: true,
		},
		{
			name:       "second arg",
			input:      "add(1, 2",
			cursor:     8,
			wantName:   "add",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "member callee",
			input:      "path.join(a, ",
			cursor:     13,
			wantName:   "path.join",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "nested call is innermost",
			input:      "outer(1, inner(x",
			cursor:     16,
			wantName:   "inner",
			wantInCall: true,
		},
		{
			name:       "closed nested call",
			input:      "outer(inner(x), ",
			cursor:     16,
			wantName:   "outer",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "commas inside array and object",
			input:      "f([1, 2], { a: 1, b: 2 }, ",
			cursor:     26,
			wantName:   "f",
			wantIndex:  2,
			wantInCall: true,
		},
		{
			name:   "grouping parens",
			input:  "(a + b",
			cursor: 6,
		},
		{
			name:   "after closed call",
			input:  "add(1, 2) + ",
			cursor: 12,
		},
		{
			name:       "cursor past end",
			input:      "f(a",
			cursor:     10,
			wantName:   "f",
			wantInCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {name:%s argIndex:%d inCall:%v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestSignatureOf(t *testing.T) {
	closure, err := lang.Evaluate(t.Context(), "function (a, b) { return a + b; }", nil)
	if err != nil {
		t.Fatal(err)
	}

	callable := lang.Func(func(context.Context, any, ...any) (any, error) { return nil, nil })

	tests := []struct {
		name       string
		value      any
		wantSig    string
		wantParams []string
	}{
		{"closure", closure, "f(a, b)", []string{"a", "b"}},
		{"callable", callable, "f(...args)", []string{"...args"}},
		{"go func", strings.Repeat, "f(string, number)", []string{"string", "number"}},
		{"variadic", strings.NewReplacer, "f(...string)", []string{"...string"}},
		{
			"leading context",
			func(context.Context, []any, map[string]any) bool { return false },
			"f(array, object)",
			[]string{"array", "object"},
		},
		{"not a function", 42, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := signatureOf("f", tt.value)
			if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
				t.Errorf("signatureOf(%T) = (%q, %v), want (%q, %v)",
					tt.value, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	s := NewSession(map[string]any{
		"text": map[string]any{"upper": strings.ToUpper},
		"n":    1,
	}, nil)

	sig, params := getSignature(s, "text.upper")
	if sig != "text.upper(string)" || !slices.Equal(params, []string{"string"}) {
		t.Errorf("getSignature(text.upper) = (%q, %v)", sig, params)
	}

	for _, path := range []string{"n", "text", "missing.fn"} {
		if sig, _ := getSignature(s, path); sig != "" {
			t.Errorf("getSignature(%s) = %q, want empty", path, sig)
		}
	}
}

func TestRenderSignatureHint(t *testing.T) {
	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("empty signature rendered %q", got)
	}

	got := renderSignatureHint("f(a, ...rest)", []string{"a", "...rest"}, 3)
	for _, part := range []string{"f", "a", "...rest", ", "} {
		if !strings.Contains(got, part) {
			t.Errorf("hint %q does not contain %q", got, part)
		}
	}
}
