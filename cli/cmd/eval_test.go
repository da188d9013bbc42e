package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/dengtao07/expression/lang"
	"github.com/dengtao07/expression/pkg"
)

const evalBindings = `
name: "'world'"
greeting: "'hello ' + name"
port: 8080
items: [1, 2, 3]
total: "items.reduce(function (s, x) { return s + x; }, 0)"
server:
  host: localhost
  tags: [a, b]
loop: loop + 1
`

func runEval(t *testing.T, output string, stdin string, exprs ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	e := &Eval{
		bindingFlags: bindingFlags{
			Bindings:    []string{writeFile(t, t.TempDir(), "bindings.yaml", evalBindings)},
			Grammar:     "js",
			CalleeCheck: "eager",
		},
		Output: output,
		Exprs:  exprs,
		stdin:  strings.NewReader(stdin),
		stdout: &out,
	}

	err := e.Run(t.Context())

	return out.String(), err
}

// TestEvalRunText tests that text output prints one value per line in
// argument order.
func TestEvalRunText(t *testing.T) {
	t.Parallel()

	got, err := runEval(t, outputText, "",
		"greeting", "port + 1", "total", "server.tags", "server", "null", "-1 < 0")
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"hello world",
		"8081",
		"6",
		`["a", "b"]`,
		`{ host: "localhost", tags: ["a", "b"] }`,
		"null",
		"true",
	}, "\n") + "\n"

	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

// TestEvalRunStdin tests that '-' reads one expression from stdin.
func TestEvalRunStdin(t *testing.T) {
	t.Parallel()

	got, err := runEval(t, outputText, "  port * 2\n", "name", "-")
	if err != nil {
		t.Fatal(err)
	}

	if got != "world\n16160\n" {
		t.Errorf("output = %q", got)
	}

	_, err = runEval(t, outputText, "1", "-", "-")
	if !errors.Is(err, pkg.ErrReadInput) {
		t.Errorf("repeated stdin error = %v, want %v", err, pkg.ErrReadInput)
	}
}

// TestEvalRunJSON tests that a single expression is written as a bare value
// and several as an array.
func TestEvalRunJSON(t *testing.T) {
	t.Parallel()

	got, err := runEval(t, outputJSON, "", "server")
	if err != nil {
		t.Fatal(err)
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(got), &single); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, got)
	}

	if single["host"] != "localhost" {
		t.Errorf("host = %v, want localhost", single["host"])
	}

	got, err = runEval(t, outputJSON, "", "port", "greeting", "function (x) { return x; }")
	if err != nil {
		t.Fatal(err)
	}

	var many []any
	if err := json.Unmarshal([]byte(got), &many); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, got)
	}

	want := []any{8080.0, "hello world", "function (x) { return x; }"}
	if len(many) != len(want) {
		t.Fatalf("got %d values, want %d", len(many), len(want))
	}

	for i := range want {
		if many[i] != want[i] {
			t.Errorf("value %d = %v, want %v", i, many[i], want[i])
		}
	}
}

// TestEvalRunYAML tests that YAML output decodes to the exported values.
func TestEvalRunYAML(t *testing.T) {
	t.Parallel()

	got, err := runEval(t, outputYAML, "", "items.map(function (x) { return x * 2; })")
	if err != nil {
		t.Fatal(err)
	}

	var items []float64
	if err := yaml.Unmarshal([]byte(got), &items); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, got)
	}

	if len(items) != 3 || items[0] != 2 || items[2] != 6 {
		t.Errorf("items = %v, want [2 4 6]", items)
	}
}

// TestEvalRunErrors tests that evaluation failures are reported as
// ErrEvaluate wrapping the cause.
func TestEvalRunErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		want error
	}{
		{"syntax", "1 +", lang.ErrSyntax},
		{"undefined", "missing + 1", lang.ErrUndefinedVariable},
		{"circular", "loop", lang.ErrCircularReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := runEval(t, outputText, "", "name", tt.expr)
			if !errors.Is(err, ErrEvaluate) || !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v wrapping %v", err, ErrEvaluate, tt.want)
			}

			if out != "" {
				t.Errorf("output on error = %q, want none", out)
			}
		})
	}
}

// TestWriteValuesInvalidFormat tests the error for an unknown format.
func TestWriteValuesInvalidFormat(t *testing.T) {
	t.Parallel()

	err := writeValues(t.Context(), &bytes.Buffer{}, "toml", []any{1})
	if !errors.Is(err, pkg.ErrInvalidFormat) {
		t.Errorf("error = %v, want %v", err, pkg.ErrInvalidFormat)
	}
}
