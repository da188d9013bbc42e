package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/dengtao07/expression/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "let", "unset", "edit", "clear", "quit"}

// previewWidth is the maximum width of a value preview in the list command.
const previewWidth = 48

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes: whitespace, the member-access dot, and operator or punctuation
// characters of the expression grammar.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!', '~', '^',
		'&', '|', ',', '?', ':', ';',
		'"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. It returns an empty word when the cursor sits on
// a boundary (after a space, between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dot-separated member chain leading up to the word
// that starts at wordStart. For input "x + server.http.ho" with the word
// "ho", the parent path is "server.http". It returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// commandLine reports whether the input of the given mode is a command and
// returns the command text without the leading ':' of eval mode.
func commandLine(mode inputMode, input string) (string, int, bool) {
	if mode == modeCtrl {
		return input, 0, true
	}

	trimmed := strings.TrimLeft(input, " \t")
	if s, ok := strings.CutPrefix(trimmed, ":"); ok {
		return s, len(input) - len(s), true
	}

	return "", 0, false
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list and
// the word boundaries. An empty top-level word yields no matches; an empty
// word after a dot yields every member of the parent.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	cmdText, offset, isCmd := commandLine(m.mode, input)
	firstWord := isCmd && strings.TrimSpace(input[offset:wordStart]) == ""

	var parent string

	switch {
	case firstWord:
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands

	case isCmd && !strings.HasPrefix(strings.TrimSpace(cmdText), "let"):
		// Arguments of other commands are binding names.
		candidates = m.session.Names()

	default:
		parent = parentPath(input, wordStart)
		candidates = m.session.Children(parent)
	}

	if word == "" {
		if parent == "" || len(candidates) == 0 {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// qualify returns the binding path of a completion candidate.
func (m model) qualify(name string) string {
	if parent := parentPath(m.input.Value(), m.wordStart); parent != "" {
		return parent + "." + name
	}

	return name
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Matched characters are highlighted and
// the selected candidate (when tabbing) uses the selected style. isFunc
// reports which candidates are rendered with a "()" suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, isFunc != nil && isFunc(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions get a "()" suffix that is not part of the
// completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	baseStyle := suggestionStyle
	highlightStyle := matchStyle

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedMatchStyle
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if function {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// formatPreview returns a one-line preview of a binding: the expression text
// of a text binding, the signature of a function, or the formatted value.
func formatPreview(name string, v any) string {
	var s string

	switch x := v.(type) {
	case string:
		s = x
	case lang.Literal:
		s = lang.Format(string(x))
	default:
		if isFunction(v) {
			s, _ = signatureOf(name, v)
		} else {
			s = lang.Format(v)
		}
	}

	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > previewWidth {
		s = string([]rune(s)[:previewWidth-3]) + "..."
	}

	return s
}
