package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistoryEntry_RoundTrip(t *testing.T) {
	for _, e := range []HistoryEntry{
		{Line: "a + b", Mode: modeEval},
		{Line: "let x = 1", Mode: modeCtrl},
		{Line: "C:not a prefix", Mode: modeEval},
	} {
		if got := parseHistoryEntry(e.String()); got != e {
			t.Errorf("parseHistoryEntry(%q) = %+v, want %+v", e.String(), got, e)
		}
	}

	if got := parseHistoryEntry("bare"); got != (HistoryEntry{Line: "bare", Mode: modeEval}) {
		t.Errorf("unprefixed line = %+v", got)
	}
}

func TestHistory_WriteWithMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path)

	writes := []struct {
		line string
		mode inputMode
	}{
		{"1 + 1", modeEval},
		{"list", modeCtrl},
		{"list", modeCtrl},
		{"  ", modeEval},
		{"x", modeEval},
		{"1 + 1", modeEval},
	}

	for _, w := range writes {
		if err := h.WriteWithMode(w.line, w.mode); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{Line: "list", Mode: modeCtrl},
		{Line: "x", Mode: modeEval},
		{Line: "1 + 1", Mode: modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries = %+v, want %+v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "C:list\nE:x\nE:1 + 1\n" {
		t.Errorf("history file = %q", got)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := loaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("loaded Entries = %+v, want %+v", got, want)
	}
}

func TestHistory_GetEntry(t *testing.T) {
	h := NewHistory("")
	if err := h.WriteWithMode("a", modeEval); err != nil {
		t.Fatal(err)
	}

	e, err := h.GetEntry(0)
	if err != nil || e.Line != "a" {
		t.Errorf("GetEntry(0) = (%+v, %v)", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.GetEntry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetEntry(%d) err = %v, want %v", i, err, ErrOutOfBounds)
		}
	}
}

func TestHistory_LoadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"))
	if err := h.Load(); err != nil {
		t.Errorf("Load of missing file: %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}
