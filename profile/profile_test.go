package profile

import "testing"

func TestStart_Unsupported(t *testing.T) {
	for _, mode := range []string{"", "bogus", "quiet"} {
		s := Config{Mode: mode, Dir: t.TempDir(), Quiet: true}.Start()
		if _, ok := s.(nop); !ok {
			t.Errorf("Start(%q) = %T, want no-op", mode, s)
		}

		s.Stop()
	}
}

func TestSupported(t *testing.T) {
	for _, mode := range Modes() {
		if !Supported(mode) {
			t.Errorf("Supported(%q) = false for a listed mode", mode)
		}
	}

	if Supported("") {
		t.Error("Supported(\"\") = true")
	}
}
