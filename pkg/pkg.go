package pkg

import (
	_ "embed"
	"strings"
)

const (
	// Name is the command name and the default base name of the
	// configuration and cache directories.
	Name        = "expression"
	Description = "Sandboxed expression evaluator"
)

//go:embed VERSION
var version string

// Version is the release version, printed by --version.
var Version = strings.TrimSpace(version)
