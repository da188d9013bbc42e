package repl

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/dengtao07/expression/log"
)

const defaultEditor = "vi"

// editBindingsCommand implements [tea.ExecCommand] for the edit-decode-retry
// loop. It writes the editable bindings to a temporary YAML file, opens the
// user's editor and decodes the result. On a decode error the user is asked
// to edit again; declining exits the program.
type editBindingsCommand struct {
	bindings map[string]any
	edited   map[string]any
	ctxFunc  func() context.Context
	logger   log.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editBindingsCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editBindingsCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editBindingsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. A file left empty cancels the edit and leaves
// c.edited nil. If the user declines to edit again after an error, Run
// returns [ErrEditDeclined].
func (c *editBindingsCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.MarshalContext(ctx, c.bindings, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "expression-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	err = f.Chmod(0o600)
	f.Close()

	if err != nil {
		return err
	}

	for {
		err := os.WriteFile(tmpPath, content, 0o600)
		if err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		edited, decodeErr := decodeBindings(data)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.edited = edited

			return nil
		}

		fmt.Fprintf(c.stderr, "\nInvalid bindings: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// decodeBindings decodes a YAML mapping. An empty mapping is valid.
func decodeBindings(data []byte) (map[string]any, error) {
	var m map[string]any

	err := yaml.Unmarshal(data, &m)
	if err != nil {
		return nil, err
	}

	if m == nil {
		m = make(map[string]any)
	}

	return m, nil
}

// runEditor opens the file at path in $VISUAL or $EDITOR and returns its
// content once the editor exits. The variable may include arguments, as in
// "code --wait".
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	args := strings.Fields(cmp.Or(os.Getenv("VISUAL"), os.Getenv("EDITOR")))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
