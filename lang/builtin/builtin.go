// Package builtin provides bindings that describe the host system: its
// platform, user and environment, plus helpers for files, paths and
// PATH-like lists.
//
// Built-in names can be shadowed by caller bindings.
package builtin

import (
	"bufio"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/dengtao07/expression/lang"
)

// bindings is built once per process and cloned on every access.
var bindings = sync.OnceValue(func() map[string]any {
	return map[string]any{
		"target":   Target(),
		"platform": Platform(),
		"hostname": lang.Literal(hostname()),
		"user":     currentUser(),
		"shell":    lang.Literal(shell()),

		"cwd": cwd,

		"file": map[string]any{
			"exists":    fileExists,
			"isDir":     fileIsDir,
			"isRegular": fileIsRegular,
			"isSymlink": fileIsSymlink,
		},

		"path": map[string]any{
			"abs":  pathAbs,
			"cat":  filepath.Join,
			"rel":  pathRel,
			"base": filepath.Base,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
		},

		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
})

// Bindings returns the built-in bindings and "env", a map of the process
// environment. The caller may modify the returned map.
func Bindings() map[string]any {
	b := maps.Clone(bindings())
	b["env"] = Environ(nil)

	return b
}

// Merge returns the built-in bindings overlaid with b.
func Merge(b map[string]any) map[string]any {
	out := Bindings()
	maps.Copy(out, b)

	return out
}

// Names returns the sorted top-level built-in names.
func Names() []string {
	names := slices.Collect(maps.Keys(bindings()))
	names = append(names, "env")
	slices.Sort(names)

	return names
}

// Lookup returns the sorted keys of the map found at the dot-separated path,
// or nil if there is none. The empty path lists the top-level names.
func Lookup(path string) []string {
	if path == "" {
		return Names()
	}

	var current any = Bindings()

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		if current, ok = m[seg]; !ok {
			return nil
		}
	}

	m, ok := current.(map[string]any)
	if !ok {
		return nil
	}

	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)

	return keys
}

// Get returns the built-in value at the dot-separated path.
func Get(path string) (any, bool) {
	var current any = Bindings()

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		if current, ok = m[seg]; !ok {
			return nil, false
		}
	}

	return current, true
}

// Environ converts "KEY=VALUE" entries to a map. If entries is nil,
// os.Environ() is used.
func Environ(entries []string) map[string]any {
	if entries == nil {
		entries = os.Environ()
	}

	env := make(map[string]any, len(entries))

	for _, entry := range entries {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}

	return env
}

// System is a target operating system and instruction set architecture.
type System struct {
	OS   string `json:"os"   yaml:"os"`
	Arch string `json:"arch" yaml:"arch"`
}

func (s System) String() string { return s.OS + "/" + s.Arch }

// Target returns the host system using GNU GCC/LLVM naming conventions.
func Target() System {
	t := Platform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// Platform returns the host system using Go conventions, honouring the
// GOHOSTOS, GOOS, GOHOSTARCH and GOARCH environment variables.
func Platform() System {
	return System{
		OS:   firstEnv(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: firstEnv(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
	}

	return fallback
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}

	return h
}

func currentUser() map[string]any {
	u, err := user.Current()
	if err != nil {
		return map[string]any{}
	}

	return map[string]any{
		"name":     u.Name,
		"username": u.Username,
		"uid":      u.Uid,
		"gid":      u.Gid,
		"home":     u.HomeDir,
	}
}

func shell() string {
	if sh, ok := os.LookupEnv("SHELL"); ok {
		return sh
	}

	u, err := user.Current()
	if err != nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if e := strings.Split(s.Text(), ":"); len(e) > 6 && e[0] == u.Username {
			return e[6]
		}
	}

	return ""
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return dir
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return p
}

func mungPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(list string, keep func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(keep),
	).String()
}
