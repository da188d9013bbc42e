package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/dengtao07/expression/pkg"
)

func runParse(t *testing.T, p Parse) (string, error) {
	t.Helper()

	var out bytes.Buffer

	p.stdout = &out
	if p.Indent == 0 {
		p.Indent = defaultIndent
	}

	err := p.Run(t.Context())

	return out.String(), err
}

// TestParseSource tests that the source output prints the unparsed tree.
func TestParseSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		grammar string
		names   []string
		expr    string
		want    string
	}{
		{"js_precedence", "js", nil, "1 + 2 * 3", "(1 + (2 * 3))"},
		{"js_function", "js", nil, "function (a) { return a; }", "(function (a) { return a; })"},
		{"expr_equality", "expr", nil, "a == b", "(a === b)"},
		{"expr_hyphenated", "expr", []string{"log-level"}, "log-level", "log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runParse(t, Parse{
				Grammar: tt.grammar,
				Names:   tt.names,
				Output:  parseSource,
				Expr:    tt.expr,
			})
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want+"\n" {
				t.Errorf("parse %q = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

// TestParseTree tests the YAML and JSON tree outputs.
func TestParseTree(t *testing.T) {
	t.Parallel()

	for _, output := range []string{parseTreeYAML, parseTreeJSON} {
		t.Run(output, func(t *testing.T) {
			t.Parallel()

			got, err := runParse(t, Parse{Grammar: "js", Output: output, Expr: "a + 1"})
			if err != nil {
				t.Fatal(err)
			}

			var tree map[string]any
			if output == parseTreeJSON {
				err = json.Unmarshal([]byte(got), &tree)
			} else {
				err = yaml.Unmarshal([]byte(got), &tree)
			}

			if err != nil {
				t.Fatalf("decode tree: %v\n%s", err, got)
			}

			if tree["type"] != "BinaryExpression" || tree["operator"] != "+" {
				t.Errorf("tree = %v", tree)
			}

			left, ok := tree["left"].(map[string]any)
			if !ok || left["name"] != "a" {
				t.Errorf("left = %v", tree["left"])
			}
		})
	}
}

// TestParseStdin tests reading the expression from stdin.
func TestParseStdin(t *testing.T) {
	t.Parallel()

	got, err := runParse(t, Parse{
		Grammar: "js",
		Output:  parseSource,
		Expr:    stdinSource,
		stdin:   strings.NewReader("a ?? b\n"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got != "(a ?? b)\n" {
		t.Errorf("output = %q", got)
	}
}

// TestParseErrors tests syntax and format errors.
func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := runParse(t, Parse{Grammar: "js", Output: parseSource, Expr: "1 +"})
	if !errors.Is(err, ErrParse) {
		t.Errorf("syntax error = %v, want %v", err, ErrParse)
	}

	_, err = runParse(t, Parse{Grammar: "js", Output: "dot", Expr: "1"})
	if !errors.Is(err, pkg.ErrInvalidFormat) {
		t.Errorf("format error = %v, want %v", err, pkg.ErrInvalidFormat)
	}
}
