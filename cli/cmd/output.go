package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/dengtao07/expression/lang"
	"github.com/dengtao07/expression/pkg"
)

// Output formats of the eval command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// defaultIndent is the indent width of JSON and YAML output.
const defaultIndent = 2

// writeValues writes the results of eval in the given format. Text output
// prints one value per line. JSON and YAML output a single document: the
// value itself when there is one, otherwise a sequence in argument order.
func writeValues(ctx context.Context, w io.Writer, format string, values []any) error {
	switch format {
	case outputText:
		for _, v := range values {
			_, err := fmt.Fprintln(w, lang.Format(v))
			if err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		return nil

	case outputJSON:
		return writeJSON(w, exportAll(values), defaultIndent)

	case outputYAML:
		return writeYAML(ctx, w, exportAll(values), defaultIndent)
	}

	return pkg.ErrInvalidFormat.Wrapf(
		"%q (expected one of: %s)",
		format,
		strings.Join([]string{outputText, outputJSON, outputYAML}, ", "),
	)
}

func exportAll(values []any) any {
	if len(values) == 1 {
		return lang.Export(values[0])
	}

	out := make([]any, len(values))
	for i, v := range values {
		out[i] = lang.Export(v)
	}

	return out
}

// writeJSON writes v as JSON, indented unless indent is zero.
func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return pkg.ErrJSONMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// writeYAML writes v as YAML in block style, or flow style if indent is zero.
func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return pkg.ErrYAMLMarshal.Wrap(err)
	}

	_, err = w.Write(data)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
