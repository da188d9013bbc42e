package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dengtao07/expression/lang"
	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/lang/exprlang"
	"github.com/dengtao07/expression/lang/parser"
	"github.com/dengtao07/expression/pkg"
)

// Output formats of the parse command.
const (
	parseTreeYAML = "tree-yaml"
	parseTreeJSON = "tree-json"
	parseSource   = "source"
)

// Parse prints the syntax tree of an expression, or the text the tree
// unparses to.
type Parse struct {
	Grammar string   `default:"js"        enum:"js,expr"                     help:"Expression grammar."`
	Names   []string `help:"Hyphenated names the expr grammar reads as identifiers." placeholder:"NAME"`
	Output  string   `default:"tree-yaml" enum:"tree-yaml,tree-json,source" help:"Output format."      short:"o"`
	Indent  int      `default:"2"                                             help:"Indent width of tree output (0 for compact)." short:"i"`

	Expr string `arg:"" help:"Expression text, or '-' to read it from stdin." name:"expr"`

	stdin  io.Reader
	stdout io.Writer
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text := p.Expr
	if text == stdinSource {
		data, err := io.ReadAll(orStdin(p.stdin))
		if err != nil {
			return pkg.ErrReadInput.Wrap(err)
		}

		text = strings.TrimSpace(string(data))
	}

	var g lang.Grammar = parser.Grammar{}

	if p.Grammar == "expr" {
		g = exprlang.New(exprlang.WithNames(p.Names...))
	}

	tree, err := g.Parse(text)
	if err != nil {
		return ErrParse.
			With(slog.String("grammar", p.Grammar)).
			Wrap(err)
	}

	w := orStdout(p.stdout)

	switch p.Output {
	case parseTreeYAML:
		return writeYAML(ctx, w, ast.Dump(tree), p.Indent)

	case parseTreeJSON:
		return writeJSON(w, ast.Dump(tree), p.Indent)

	case parseSource:
		src, err := g.Unparse(tree)
		if err != nil {
			return ErrParse.Wrap(err)
		}

		_, err = fmt.Fprintln(w, src)
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	return pkg.ErrInvalidFormat.Wrapf(
		"%q (expected one of: %s)",
		p.Output,
		strings.Join([]string{parseTreeYAML, parseTreeJSON, parseSource}, ", "),
	)
}
