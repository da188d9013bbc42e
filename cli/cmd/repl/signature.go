package repl

import (
	"context"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/dengtao07/expression/lang"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var contextType = reflect.TypeFor[context.Context]()

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee path (e.g., "path.cat")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// openParen returns the byte offset of the unmatched '(' before cursor, or
// -1 if there is none.
func openParen(input string, cursor int) int {
	depth := 0

	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return -1
}

func isNameRune(r rune) bool {
	return r == '.' || r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// detectFunctionCall reports whether the cursor is inside the argument list
// of a call and, if so, the callee path and the index of the current
// argument.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := openParen(input, cursor)
	if open == -1 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	argIndex, depth := 0, 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the signature of the function bound at path, or ""
// if path does not name a function.
func getSignature(s *Session, path string) (signature string, params []string) {
	v, ok := s.Lookup(path)
	if !ok || !isFunction(v) {
		return "", nil
	}

	return signatureOf(path, v)
}

// signatureOf formats the signature of the function v under name. Function
// expressions list their parameter names; Go functions list their parameter
// types, omitting a leading context.Context.
func signatureOf(name string, v any) (string, []string) {
	var params []string

	switch fn := v.(type) {
	case *lang.Closure:
		params = fn.Params()

	case lang.Callable:
		params = []string{"...args"}

	default:
		t := reflect.TypeOf(v)
		if t == nil || t.Kind() != reflect.Func {
			return "", nil
		}

		for i := range t.NumIn() {
			in := t.In(i)

			if i == 0 && in == contextType {
				continue
			}

			if t.IsVariadic() && i == t.NumIn()-1 {
				params = append(params, "..."+formatTypeName(in.Elem()))
			} else {
				params = append(params, formatTypeName(in))
			}
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// formatTypeName converts a reflect.Type to a readable parameter name.
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "bool"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Pointer:
		return formatTypeName(t.Elem())
	}

	return "any"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// A variadic parameter stays current for every later argument.
		variadic := strings.HasPrefix(param, "...")
		if currentArgIdx == i || (variadic && currentArgIdx > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
