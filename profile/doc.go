// Package profile provides optional runtime profiling of the expression
// command through [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	./expression --pprof-mode cpu eval 'a + b' -b bindings.yaml
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op
// stopper, so callers need no build constraints of their own.
//
// # Modes
//
//   - allocs, heap, mem: memory allocation profiling
//   - block, mutex:      synchronization profiling
//   - clock, cpu:        wall-clock and CPU profiling
//   - goroutine, thread: goroutine and thread creation profiling
//   - trace:             execution trace
//
// Profiles are written to the configured directory, by default
// $XDG_CACHE_HOME/expression/pprof, and can be read with
// "go tool pprof -http=: <file>". Tagged builds also register the
// [net/http/pprof] handlers.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
