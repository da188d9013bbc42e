package repl

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/dengtao07/expression/lang"
)

// Session holds the bindings a REPL evaluates against and the resolver built
// for them. The resolver is rebuilt whenever the set of names changes, since
// a grammar may depend on it.
type Session struct {
	bindings map[string]any
	build    func(map[string]any) *lang.Resolver
	resolver *lang.Resolver
}

// NewSession returns a Session over a copy of bindings. build constructs the
// resolver for a set of bindings; nil selects [lang.New] with no options.
func NewSession(
	bindings map[string]any,
	build func(map[string]any) *lang.Resolver,
) *Session {
	if build == nil {
		build = func(map[string]any) *lang.Resolver { return lang.New() }
	}

	s := &Session{bindings: maps.Clone(bindings), build: build}
	if s.bindings == nil {
		s.bindings = make(map[string]any)
	}

	s.resolver = build(s.bindings)

	return s
}

// Eval evaluates text against the current bindings.
func (s *Session) Eval(ctx context.Context, text string) (any, error) {
	return s.resolver.Evaluate(ctx, text, s.bindings)
}

// Let binds name to expression text. The text must parse; it is not
// evaluated until referenced.
func (s *Session) Let(ctx context.Context, name, text string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	_, err := s.resolver.Parse(ctx, text)
	if err != nil {
		return err
	}

	s.bindings[name] = text
	s.resolver = s.build(s.bindings)

	return nil
}

// Unset removes name and reports whether it was bound.
func (s *Session) Unset(name string) bool {
	if _, ok := s.bindings[name]; !ok {
		return false
	}

	delete(s.bindings, name)
	s.resolver = s.build(s.bindings)

	return true
}

// Names returns the top-level binding names in sorted order.
func (s *Session) Names() []string {
	return slices.Sorted(maps.Keys(s.bindings))
}

// Get returns the top-level binding name.
func (s *Session) Get(name string) (any, bool) {
	v, ok := s.bindings[name]

	return v, ok
}

// Len returns the number of top-level bindings.
func (s *Session) Len() int { return len(s.bindings) }

// Lookup returns the value at a dot-separated path of binding names and
// member names. Expression text is not evaluated, so a path through a text
// binding is not found.
func (s *Session) Lookup(path string) (any, bool) {
	var cur any = s.bindings

	for seg := range strings.SplitSeq(path, ".") {
		v, ok := member(cur, seg)
		if !ok {
			return nil, false
		}

		cur = v
	}

	return cur, true
}

// Children returns the sorted member names of the value at path, or the
// top-level names when path is empty.
func (s *Session) Children(path string) []string {
	if path == "" {
		return s.Names()
	}

	v, ok := s.Lookup(path)
	if !ok {
		return nil
	}

	return memberNames(v)
}

// Editable returns the bindings whose values are plain data: text, numbers,
// booleans, null and sequences or mappings of those. Host functions and
// other Go values are left out.
func (s *Session) Editable() map[string]any {
	out := make(map[string]any)

	for k, v := range s.bindings {
		if plain(v) {
			out[k] = v
		}
	}

	return out
}

// Apply replaces the editable bindings with edited. Editable names missing
// from edited are removed; other bindings are kept.
func (s *Session) Apply(edited map[string]any) {
	for k, v := range s.bindings {
		if _, ok := edited[k]; !ok && plain(v) {
			delete(s.bindings, k)
		}
	}

	maps.Copy(s.bindings, edited)
	s.resolver = s.build(s.bindings)
}

// validName reports whether name can be referenced as an identifier. Inner
// hyphens are accepted for grammars that allow them in names.
func validName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '-'):
		default:
			return false
		}
	}

	return name != "" && !strings.HasSuffix(name, "-")
}

// member returns the named member of a Go map with string keys or the field
// of a struct, by name or json tag.
func member(v any, name string) (any, bool) {
	if m, ok := v.(map[string]any); ok {
		e, ok := m[name]

		return e, ok
	}

	rv := reflect.Indirect(reflect.ValueOf(v))

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		e := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}

		return e.Interface(), true

	case reflect.Struct:
		for i := range rv.NumField() {
			if f := rv.Type().Field(i); f.IsExported() && fieldName(f) == name {
				return rv.Field(i).Interface(), true
			}
		}
	}

	return nil, false
}

func memberNames(v any) []string {
	if m, ok := v.(map[string]any); ok {
		return slices.Sorted(maps.Keys(m))
	}

	rv := reflect.Indirect(reflect.ValueOf(v))

	var names []string

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}

		for _, k := range rv.MapKeys() {
			names = append(names, k.String())
		}

	case reflect.Struct:
		for i := range rv.NumField() {
			if f := rv.Type().Field(i); f.IsExported() {
				names = append(names, fieldName(f))
			}
		}
	}

	slices.Sort(names)

	return names
}

// fieldName returns the json tag name of f, or its Go name.
func fieldName(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return tag
	}

	return f.Name
}

func plain(v any) bool {
	switch x := v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return true
	case []any:
		for _, e := range x {
			if !plain(e) {
				return false
			}
		}

		return true
	case map[string]any:
		for _, e := range x {
			if !plain(e) {
				return false
			}
		}

		return true
	}

	return false
}

// isFunction reports whether v can be called from an expression.
func isFunction(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case lang.Callable:
		return true
	}

	return reflect.TypeOf(v).Kind() == reflect.Func
}
