package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dengtao07/expression/cli"
	"github.com/dengtao07/expression/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
