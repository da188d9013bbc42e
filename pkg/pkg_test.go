package pkg

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "expression" {
		t.Errorf("Expected Name to be %q, got %q", "expression", Name)
	}
}

func TestVersion(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate test source")
	}

	buf, err := os.ReadFile(filepath.Join(filepath.Dir(file), "VERSION"))
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestError_WrapMatchesSentinel(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrReadInput) {
		t.Error("wrapped error does not match its sentinel")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped error does not match its cause")
	}

	if errors.Is(err, ErrBindings) {
		t.Error("wrapped error matches an unrelated sentinel")
	}

	if got, want := err.Error(), "failed to read input: unexpected EOF"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if len(ErrReadInput) != 1 {
		t.Error("Wrap modified the sentinel")
	}
}

func TestError_Wrapf(t *testing.T) {
	err := ErrInvalidFormat.Wrapf("%q (want one of %s)", "xml", "text, json")

	if got, want := err.Error(), `invalid format: "xml" (want one of text, json)`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestError_IsPrefix(t *testing.T) {
	err := ErrBindings.Wrapf("%s", "a.yaml").Wrap(ErrReadInput.Wrap(io.EOF))

	if !errors.Is(err, ErrBindings) || !errors.Is(err, ErrReadInput) || !errors.Is(err, io.EOF) {
		t.Errorf("errors.Is failed on nested chain %v", err)
	}

	if errors.Is(ErrBindings, err) {
		t.Error("a sentinel matches a longer chain")
	}

	if errors.Is(err, Error{}) {
		t.Error("an empty chain matches")
	}
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		exe  string
		want string
	}{
		{"/usr/local/bin/expression", "expression"},
		{"/opt/bin/calc.exe", "calc"},
		{"/home/me/.hidden", "hidden"},
		{"/tmp/__debug_bin3047", Name},
		{"/tmp/...", Name},
	}

	for _, tt := range tests {
		if got := prefixOf(tt.exe); got != tt.want {
			t.Errorf("prefixOf(%q) = %q, want %q", tt.exe, got, tt.want)
		}
	}
}

func TestUserDir(t *testing.T) {
	dir := userDir(func() (string, error) { return "/base", nil }, ".config")
	if dir != filepath.Join("/base", Prefix()) {
		t.Errorf("userDir = %q", dir)
	}

	dir = userDir(func() (string, error) { return "", os.ErrNotExist }, ".cache")
	if !strings.HasSuffix(dir, filepath.Join(".cache", Prefix())) && !strings.HasSuffix(dir, Prefix()) {
		t.Errorf("fallback userDir = %q", dir)
	}
}
