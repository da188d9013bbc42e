package repl

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/dengtao07/expression/lang"
)

func TestSession_Eval(t *testing.T) {
	s := NewSession(map[string]any{"a": "1", "b": "a + 1"}, nil)

	got, err := s.Eval(t.Context(), "b * 10")
	if err != nil {
		t.Fatal(err)
	}

	if got != 20.0 {
		t.Errorf("Eval = %v, want 20", got)
	}
}

func TestSession_CopiesBindings(t *testing.T) {
	bindings := map[string]any{"a": "1"}

	s := NewSession(bindings, nil)
	if err := s.Let(t.Context(), "b", "2"); err != nil {
		t.Fatal(err)
	}

	if _, ok := bindings["b"]; ok {
		t.Error("Let modified the caller's bindings")
	}
}

func TestSession_Let(t *testing.T) {
	s := NewSession(nil, nil)

	if err := s.Let(t.Context(), "x", "2 + 3"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Eval(t.Context(), "x")
	if err != nil {
		t.Fatal(err)
	}

	if got != 5.0 {
		t.Errorf("x = %v, want 5", got)
	}

	err = s.Let(t.Context(), "y", "1 +")
	if !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("Let with bad text: err = %v, want %v", err, lang.ErrSyntax)
	}

	if _, ok := s.Get("y"); ok {
		t.Error("binding with bad text was kept")
	}

	for _, name := range []string{"", "1x", "a b", "a.b", "x-"} {
		err := s.Let(t.Context(), name, "1")
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Let(%q): err = %v, want %v", name, err, ErrInvalidName)
		}
	}

	if err := s.Let(t.Context(), "log-level", "'info'"); err != nil {
		t.Errorf("Let(log-level): %v", err)
	}
}

func TestSession_LetRebuildsResolver(t *testing.T) {
	var seen [][]string

	build := func(b map[string]any) *lang.Resolver {
		seen = append(seen, slices.Sorted(maps.Keys(b)))

		return lang.New()
	}

	s := NewSession(map[string]any{"a": "1"}, build)
	if err := s.Let(t.Context(), "b", "2"); err != nil {
		t.Fatal(err)
	}

	s.Unset("a")

	want := [][]string{{"a"}, {"a", "b"}, {"b"}}
	if !slices.EqualFunc(seen, want, func(a, b []string) bool { return slices.Equal(a, b) }) {
		t.Errorf("build calls = %v, want %v", seen, want)
	}
}

func TestSession_Unset(t *testing.T) {
	s := NewSession(map[string]any{"a": "1", "b": "a"}, nil)

	if !s.Unset("a") {
		t.Error("Unset(a) = false, want true")
	}

	if s.Unset("a") {
		t.Error("second Unset(a) = true, want false")
	}

	_, err := s.Eval(t.Context(), "b")
	if !errors.Is(err, lang.ErrUndefinedVariable) {
		t.Errorf("Eval(b) err = %v, want %v", err, lang.ErrUndefinedVariable)
	}
}

func TestSession_Lookup(t *testing.T) {
	type endpoint struct {
		Host string `json:"host"`
		Port int
	}

	s := NewSession(map[string]any{
		"server": map[string]any{
			"primary": endpoint{Host: "localhost", Port: 80},
			"labels":  map[string]string{"env": "dev"},
		},
		"text": "server.primary",
	}, nil)

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"server.primary.host", "localhost", true},
		{"server.primary.Port", 80, true},
		{"server.labels.env", "dev", true},
		{"server.missing", nil, false},
		{"text", "server.primary", true},
		{"text.length", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := s.Lookup(tt.path)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Lookup(%q) = (%v, %v), want (%v, %v)",
					tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	children := s.Children("server.primary")
	if !slices.Equal(children, []string{"Port", "host"}) {
		t.Errorf("Children(server.primary) = %v", children)
	}

	if !slices.Equal(s.Children(""), []string{"server", "text"}) {
		t.Errorf("Children() = %v", s.Children(""))
	}
}

func TestSession_EditableAndApply(t *testing.T) {
	s := NewSession(map[string]any{
		"name":  "'x'",
		"list":  []any{1, "two", nil},
		"upper": strings.ToUpper,
		"gone":  3.5,
	}, nil)

	editable := s.Editable()
	if _, ok := editable["upper"]; ok {
		t.Error("Editable included a Go function")
	}

	if len(editable) != 3 {
		t.Errorf("Editable has %d names, want 3", len(editable))
	}

	s.Apply(map[string]any{"name": "'y'", "added": true})

	if !slices.Equal(s.Names(), []string{"added", "name", "upper"}) {
		t.Errorf("Names after Apply = %v", s.Names())
	}

	got, err := s.Eval(t.Context(), "name")
	if err != nil {
		t.Fatal(err)
	}

	if got != "y" {
		t.Errorf("name = %v, want y", got)
	}
}
