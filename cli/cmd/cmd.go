package cmd

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/dengtao07/expression/lang"
	"github.com/dengtao07/expression/lang/builtin"
	"github.com/dengtao07/expression/lang/exprlang"
	"github.com/dengtao07/expression/lang/parser"
	"github.com/dengtao07/expression/log"
	"github.com/dengtao07/expression/pkg"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Flags shared by the commands that evaluate expressions.
type bindingFlags struct {
	Bindings    []string `help:"Bindings file (YAML or JSON), or '-' for stdin." placeholder:"FILE"      short:"b"`
	Set         []string `help:"Bind a name to expression text."                placeholder:"NAME=TEXT" sep:"none" short:"s"`
	Builtins    bool     `help:"Include the builtin host bindings."                                                            negatable:""`
	Grammar     string   `help:"Expression grammar."                             default:"js"    enum:"js,expr"`
	CalleeCheck string   `help:"Check of calls inside function bodies."          default:"eager" enum:"eager,deferred"`
	MaxDepth    int      `help:"Limit nested variable resolution (0 is none)."   default:"0"`
}

// load reads the bindings files in order, then applies builtins and --set
// assignments. Later names replace earlier ones, except that builtins never
// replace a loaded name.
func (f *bindingFlags) load() (map[string]any, error) {
	srcs, err := openSources(f.Bindings)
	if err != nil {
		return nil, err
	}

	defer func() {
		for _, src := range srcs {
			src.Close()
		}
	}()

	bindings := make(map[string]any)

	for _, src := range srcs {
		err := decodeBindings(bindings, src)
		if err != nil {
			return nil, err
		}
	}

	if f.Builtins {
		bindings = builtin.Merge(bindings)
	}

	for _, s := range f.Set {
		name, text, ok := strings.Cut(s, "=")
		if name = strings.TrimSpace(name); !ok || name == "" {
			return nil, pkg.ErrBindings.Wrapf("%q: expected NAME=TEXT", s)
		}

		bindings[name] = text
	}

	return bindings, nil
}

// grammar returns the parser selected by --grammar. The expr grammar is told
// about hyphenated binding names so they read as single identifiers.
func (f *bindingFlags) grammar(bindings map[string]any) lang.Grammar {
	if f.Grammar == "expr" {
		return exprlang.New(exprlang.WithNames(slices.Collect(maps.Keys(bindings))...))
	}

	return parser.Grammar{}
}

func (f *bindingFlags) resolver(bindings map[string]any) *lang.Resolver {
	return lang.New(
		lang.WithGrammar(f.grammar(bindings)),
		lang.WithLogger(log.Default()),
		lang.WithCalleeCheck(lang.ParseCalleeCheck(f.CalleeCheck)),
		lang.WithMaxDepth(f.MaxDepth),
		lang.WithCache(lang.NewCache()),
	)
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is an open bindings input.
type source struct {
	io.ReadCloser

	name string
}

// fileKey uniquely identifies a file by its device and inode numbers, so a
// file named twice through symlinks or relative paths is read once.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey returns false if info is nil or not backed by
// *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// openSources opens each path once, in order. Every occurrence of "-" (or of
// a path that is stdin) is replaced by a single stdin source placed last.
func openSources(paths []string) ([]source, error) {
	srcs := make([]source, 0, len(paths))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, stdinOK := makeFileKey(stdinInfo)

	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		file, err := os.Open(path)
		if err != nil {
			for _, src := range srcs {
				src.Close()
			}

			return nil, pkg.ErrReadInput.Wrap(err)
		}

		info, _ := file.Stat()

		if key, ok := makeFileKey(info); ok {
			_, dup := seen[key]
			isStdin := stdinOK && key == stdinKey

			if dup || isStdin {
				hasStdin = hasStdin || isStdin

				file.Close()

				continue
			}

			seen[key] = struct{}{}
		}

		srcs = append(srcs, source{ReadCloser: file, name: path})
	}

	if hasStdin {
		srcs = append(srcs, source{ReadCloser: io.NopCloser(os.Stdin), name: stdinSource})
	}

	return srcs, nil
}

// decodeBindings merges every YAML document of src into dst.
func decodeBindings(dst map[string]any, src source) error {
	ra := readahead.NewReader(src)
	defer ra.Close()

	dec := yaml.NewDecoder(ra)

	for {
		var doc map[string]any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return pkg.ErrBindings.Wrapf("%s", src.name).Wrap(err)
		}

		maps.Copy(dst, doc)
	}
}
