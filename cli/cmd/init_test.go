package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initCLI is a reduced command line with the flag shapes Init handles.
type initCLI struct {
	Level    string   `default:"info"  name:"log-level"`
	Pretty   bool     `name:"log-pretty"`
	Bindings []string `name:"bindings"`
	Depth    int      `default:"0"     name:"max-depth"`
	Mode     string   `name:"pprof-mode"`
	Secret   string   `hidden:""       name:"secret"`

	Init Init `cmd:""`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: content\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := initContext(t, confPath,
				"--log-pretty", "--bindings=a.yaml", "--bindings=b.yaml", "--max-depth=3",
				"--pprof-mode=cpu", "--secret=x")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, content)
			}

			if got["log-level"] != "info" || got["log-pretty"] != true {
				t.Errorf("log flags = %v, %v", got["log-level"], got["log-pretty"])
			}

			if b, ok := got["bindings"].([]any); !ok || len(b) != 2 || b[1] != "b.yaml" {
				t.Errorf("bindings = %#v", got["bindings"])
			}

			for _, name := range []string{"help", "pprof-mode", "secret", "existing"} {
				if _, ok := got[name]; ok {
					t.Errorf("generated config contains %q", name)
				}
			}
		})
	}
}

// TestInitWithInvalidPath tests init with a path in a missing directory.
func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "missing", "config.yaml")

	err := (&Init{}).Run(initContext(t, confPath))
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

// TestFlagValuesSkipsEmpty tests that unset strings and slices are left out.
func TestFlagValuesSkipsEmpty(t *testing.T) {
	t.Parallel()

	ctx := initContext(t, filepath.Join(t.TempDir(), "config.yaml"))

	values := flagValues(kongContextFrom(ctx))

	for _, name := range []string{"bindings", "pprof-mode"} {
		if _, ok := values[name]; ok {
			t.Errorf("flagValues() contains empty flag %q", name)
		}
	}

	if values["max-depth"] != 0 {
		t.Errorf("max-depth = %v, want 0", values["max-depth"])
	}
}
