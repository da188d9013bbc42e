// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Configuration is applied at logger creation time using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("resolved", slog.String("name", "greeting"))
//
// The zero [Logger] discards everything, so types may embed one without
// requiring configuration.
//
// # Package Logger
//
// The package-level functions ([Info], [ErrorContext], ...) write through a
// default logger on [os.Stderr]. [Config] rebuilds it with new options and
// [Default] returns it for injection into other packages. Context-unaware
// functions use [DefaultContextProvider].
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace records evaluation detail such as
// each refused construct and is normally disabled.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText] are available. With [WithPretty]
// enabled, both are rendered with lipgloss styles: text as unquoted
// key=value pairs and JSON as indented objects. Colors are omitted when the
// output is not a terminal.
//
// # Time Formatting
//
// [WithTimeLayout] accepts any named layout from the [time] package (such as
// "RFC3339" or "Kitchen"), a few short aliases ("ms", "us", "ns"), or a
// custom layout. "none" or an empty layout removes timestamps.
package log
