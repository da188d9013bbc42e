// Package cmd implements the expression subcommands.
//
//   - eval evaluates one or more expressions against a bindings file and
//     prints the results as text, JSON or YAML.
//   - parse prints the syntax tree of an expression, or the text it unparses
//     to.
//   - repl starts an interactive session over the same bindings.
//   - init writes the current flag values to the configuration file.
//
// Bindings are YAML or JSON mappings. String values are expression text that
// is resolved on demand; numbers, booleans, null, sequences and nested
// mappings are plain values.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the
	// default path of the REPL history file.
	HistoryIdentifier = "history"
)
