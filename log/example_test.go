package log_test

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dengtao07/expression/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.Info("resolved", slog.String("name", "greeting"), slog.Int("depth", 2))
	logger.Debug("hidden below the default level")

	// Output:
	// level=INFO msg=resolved name=greeting depth=2
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelTrace))

	logger.With(slog.String("component", "resolver")).Trace("blocked",
		slog.String("reason", "assignment"))

	// Output:
	// {"level":"TRACE","msg":"blocked","component":"resolver","reason":"assignment"}
}

func ExampleParseLevel() {
	for _, s := range []string{"trace", "WARN", "error+4", "loud"} {
		fmt.Println(log.ParseLevel(s))
	}

	// Output:
	// trace
	// warn
	// error+4
	// info
}
