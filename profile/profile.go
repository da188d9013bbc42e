package profile

import "slices"

// Config selects what to profile and where profiles are written.
type Config struct {
	Mode  string
	Dir   string
	Quiet bool
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Start begins profiling in c.Mode.
//
// The returned Stopper does nothing if Mode is empty or unsupported by this
// binary. See [Supported].
func (c Config) Start() Stopper {
	if !Supported(c.Mode) {
		return nop{}
	}

	return start(c)
}

// Supported reports whether this binary can profile in mode.
func Supported(mode string) bool {
	return mode != "" && slices.Contains(Modes(), mode)
}

type nop struct{}

func (nop) Stop() {}
