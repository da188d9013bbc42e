package cmd

import (
	"context"
	"log/slog"

	"github.com/dengtao07/expression/cli/cmd/repl"
	"github.com/dengtao07/expression/log"
)

// Repl starts an interactive session over the loaded bindings.
type Repl struct {
	bindingFlags `embed:""`

	History string `default:"${history}" help:"History file ('' keeps history in memory)." placeholder:"FILE"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	bindings, err := r.load()
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "starting repl",
		slog.Int("bindings", len(bindings)),
		slog.String("history", r.History),
	)

	return repl.Run(ctx, repl.NewSession(bindings, r.resolver), r.History, log.Default())
}
