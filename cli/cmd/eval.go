package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dengtao07/expression/lang"
	"github.com/dengtao07/expression/log"
	"github.com/dengtao07/expression/pkg"
)

// Eval evaluates expressions against the loaded bindings.
type Eval struct {
	bindingFlags `embed:""`

	Output string `default:"text" enum:"text,json,yaml" help:"Output format."                                  short:"o"`
	Jobs   int    `default:"0"                          help:"Maximum concurrent evaluations (0 is no limit)." short:"j"`

	Exprs []string `arg:"" help:"Expression text, or '-' to read one from stdin." name:"expr"`

	stdin  io.Reader
	stdout io.Writer
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	bindings, err := e.load()
	if err != nil {
		return err
	}

	values, err := e.evaluate(ctx, e.resolver(bindings), bindings)
	if err != nil {
		return err
	}

	return writeValues(ctx, orStdout(e.stdout), e.Output, values)
}

// evaluate runs every expression concurrently, each with its own reference
// chain, and returns the values in argument order. The first error cancels
// the rest.
func (e *Eval) evaluate(
	ctx context.Context,
	r *lang.Resolver,
	bindings map[string]any,
) ([]any, error) {
	stdin := 0
	for _, text := range e.Exprs {
		if text == stdinSource {
			stdin++
		}
	}

	if stdin > 1 {
		return nil, pkg.ErrReadInput.Wrapf("stdin given %d times", stdin)
	}

	values := make([]any, len(e.Exprs))

	g, gctx := errgroup.WithContext(ctx)
	if e.Jobs > 0 {
		g.SetLimit(e.Jobs)
	}

	for i, text := range e.Exprs {
		g.Go(func() error {
			var (
				v   any
				err error
			)

			if text == stdinSource {
				v, err = r.EvaluateReader(gctx, orStdin(e.stdin), bindings)
			} else {
				v, err = r.Evaluate(gctx, text, bindings)
			}

			if err != nil {
				return ErrEvaluate.
					With(slog.Int("index", i), slog.String("expression", text)).
					Wrap(err)
			}

			log.TraceContext(gctx, "evaluated",
				slog.Int("index", i),
				slog.String("value", lang.Format(v)),
			)

			values[i] = v

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return values, nil
}

func orStdin(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}

	return r
}

func orStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}
