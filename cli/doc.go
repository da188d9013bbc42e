// Package cli contains the command line interface of expression.
//
// # Usage
//
// Expressions given without a command are evaluated:
//
//	expression -b bindings.yaml 'greeting + "!"'
//	expression eval --builtins -o json 'path.base(env.HOME)'
//	expression parse -o source '1 + 2 * 3'
//	expression repl -b bindings.yaml
//	expression --version
//
// # Configuration
//
// Flag defaults are read from config.yaml (or config.json) in the user
// configuration directory, ~/.config/expression on Linux. Keys are flag
// names; nested mappings are joined with '-', so these are equivalent:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// The init command writes the current flag values to config.yaml. Every flag
// can also be set from an environment variable named after it with the
// EXPRESSION_ prefix, such as EXPRESSION_LOG_LEVEL.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o expression .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/expression/pprof)
package cli
