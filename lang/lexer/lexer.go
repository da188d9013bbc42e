// Package lexer scans expression text into tokens.
//
// The lexer is pull-based: the parser requests one token at a time with
// [Lexer.Next]. Template literals are context sensitive, so after the parser
// consumes the "}" closing a substitution it calls [Lexer.Template] to resume
// scanning template text.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dengtao07/expression/lang/token"
)

// Error describes malformed input at a position.
type Error struct {
	Pos token.Pos
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Lexer holds the scanning state for a single source string.
type Lexer struct {
	src  string
	off  int
	line int
	col  int
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Source returns the text being scanned.
func (l *Lexer) Source() string { return l.src }

func (l *Lexer) pos() token.Pos {
	return token.Pos{Offset: l.off, Line: l.line, Column: l.col}
}

func (l *Lexer) errorf(p token.Pos, msg string) *Error {
	return &Error{Pos: p, Msg: msg}
}

func (l *Lexer) eof() bool { return l.off >= len(l.src) }

// peek returns the rune at the current offset plus n bytes, or -1.
func (l *Lexer) peekAt(n int) rune {
	if l.off+n >= len(l.src) {
		return -1
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.off+n:])

	return r
}

func (l *Lexer) peek() rune { return l.peekAt(0) }

func (l *Lexer) advance() rune {
	if l.eof() {
		return -1
	}

	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size

	if r == '\n' || r == '\u2028' || r == '\u2029' ||
		(r == '\r' && l.peek() != '\n') {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r > utf8.RuneSelf && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') ||
		r == '\u200c' || r == '\u200d' ||
		(r > utf8.RuneSelf && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)))
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHex(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// skip consumes whitespace and comments.
func (l *Lexer) skip() error {
	for !l.eof() {
		r := l.peek()

		switch {
		case r == ' ' || r == '\t' || r == '\v' || r == '\f' ||
			r == '\u00a0' || r == '\ufeff' || isLineTerminator(r) ||
			(r > utf8.RuneSelf && unicode.IsSpace(r)):
			l.advance()

		case r == '/' && l.peekAt(1) == '/':
			for !l.eof() && !isLineTerminator(l.peek()) {
				l.advance()
			}

		case r == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()

			for {
				if l.eof() {
					return l.errorf(start, "unterminated comment")
				}

				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()

					break
				}

				l.advance()
			}

		default:
			return nil
		}
	}

	return nil
}

// Next scans and returns the next token. At end of input it returns a token
// of kind [token.EOF].
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skip(); err != nil {
		return token.Token{Kind: token.Illegal}, err
	}

	start := l.pos()

	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: start}, nil
	}

	r := l.peek()

	switch {
	case isIdentStart(r):
		for !l.eof() && isIdentPart(l.peek()) {
			l.advance()
		}

		text := l.src[start.Offset:l.off]

		return token.Token{Kind: token.Lookup(text), Text: text, Pos: start}, nil

	case isDigit(r) || (r == '.' && isDigit(l.peekAt(1))):
		return l.number(start)

	case r == '"' || r == '\'':
		return l.string(start)

	case r == '`':
		l.advance()

		return l.template(start, true)
	}

	return l.punctuator(start)
}

// Template resumes scanning template text immediately after the "}" that
// closes a substitution. It returns a TemplateMiddle or TemplateTail token.
func (l *Lexer) Template() (token.Token, error) {
	return l.template(l.pos(), false)
}

func (l *Lexer) number(start token.Pos) (token.Token, error) {
	digits := func(valid func(rune) bool) int {
		n := 0

		for !l.eof() {
			r := l.peek()
			if r == '_' && n > 0 && valid(l.peekAt(1)) {
				l.advance()

				continue
			}

			if !valid(r) {
				break
			}

			l.advance()
			n++
		}

		return n
	}

	if l.peek() == '0' {
		var valid func(rune) bool

		switch l.peekAt(1) {
		case 'x', 'X':
			valid = isHex
		case 'o', 'O':
			valid = func(r rune) bool { return r >= '0' && r <= '7' }
		case 'b', 'B':
			valid = func(r rune) bool { return r == '0' || r == '1' }
		}

		if valid != nil {
			l.advance()
			l.advance()

			if digits(valid) == 0 {
				return token.Token{Kind: token.Illegal},
					l.errorf(start, "malformed number literal")
			}

			return l.finishNumber(start)
		}
	}

	digits(isDigit)

	if l.peek() == '.' {
		l.advance()
		digits(isDigit)
	}

	if r := l.peek(); r == 'e' || r == 'E' {
		l.advance()

		if r := l.peek(); r == '+' || r == '-' {
			l.advance()
		}

		if digits(isDigit) == 0 {
			return token.Token{Kind: token.Illegal},
				l.errorf(start, "malformed exponent")
		}
	}

	return l.finishNumber(start)
}

func (l *Lexer) finishNumber(start token.Pos) (token.Token, error) {
	if !l.eof() && (isIdentStart(l.peek()) || isDigit(l.peek())) {
		return token.Token{Kind: token.Illegal},
			l.errorf(l.pos(), "identifier starts immediately after number")
	}

	return token.Token{
		Kind: token.Number,
		Text: l.src[start.Offset:l.off],
		Pos:  start,
	}, nil
}

func (l *Lexer) string(start token.Pos) (token.Token, error) {
	quote := l.advance()

	var sb strings.Builder

	for {
		if l.eof() || isLineTerminator(l.peek()) {
			return token.Token{Kind: token.Illegal},
				l.errorf(start, "unterminated string literal")
		}

		r := l.advance()
		if r == quote {
			break
		}

		if r != '\\' {
			sb.WriteRune(r)

			continue
		}

		if err := l.escape(&sb); err != nil {
			return token.Token{Kind: token.Illegal}, err
		}
	}

	return token.Token{
		Kind:  token.String,
		Text:  l.src[start.Offset:l.off],
		Value: sb.String(),
		Pos:   start,
	}, nil
}

// escape decodes one escape sequence; the backslash has been consumed.
func (l *Lexer) escape(sb *strings.Builder) error {
	at := l.pos()

	if l.eof() {
		return l.errorf(at, "unterminated escape sequence")
	}

	r := l.advance()

	switch r {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		if isDigit(l.peek()) {
			return l.errorf(at, "octal escape sequences are not allowed")
		}

		sb.WriteByte(0)
	case 'x':
		v, err := l.hexDigits(2)
		if err != nil {
			return err
		}

		sb.WriteRune(rune(v))
	case 'u':
		v, err := l.unicodeEscape()
		if err != nil {
			return err
		}

		if utf16.IsSurrogate(v) && l.peek() == '\\' && l.peekAt(1) == 'u' {
			save := *l

			l.advance()
			l.advance()

			lo, err := l.unicodeEscape()
			if err == nil {
				if pair := utf16.DecodeRune(v, lo); pair != utf8.RuneError {
					sb.WriteRune(pair)

					return nil
				}
			}

			*l = save
		}

		sb.WriteRune(v)
	case '\r':
		if l.peek() == '\n' {
			l.advance()
		}
	case '\n', '\u2028', '\u2029':
		// line continuation
	default:
		if isDigit(r) {
			return l.errorf(at, "octal escape sequences are not allowed")
		}

		sb.WriteRune(r)
	}

	return nil
}

func (l *Lexer) hexDigits(n int) (rune, error) {
	at := l.pos()

	var v rune

	for range n {
		r := l.peek()
		if !isHex(r) {
			return 0, l.errorf(at, "invalid hexadecimal escape sequence")
		}

		l.advance()
		v = v<<4 | hexValue(r)
	}

	return v, nil
}

func (l *Lexer) unicodeEscape() (rune, error) {
	if l.peek() != '{' {
		return l.hexDigits(4)
	}

	at := l.pos()
	l.advance()

	var v rune

	n := 0

	for l.peek() != '}' {
		r := l.peek()
		if !isHex(r) {
			return 0, l.errorf(at, "invalid Unicode escape sequence")
		}

		l.advance()

		v = v<<4 | hexValue(r)
		n++

		if v > unicode.MaxRune {
			return 0, l.errorf(at, "undefined Unicode code-point")
		}
	}

	l.advance()

	if n == 0 {
		return 0, l.errorf(at, "invalid Unicode escape sequence")
	}

	return v, nil
}

func hexValue(r rune) rune {
	switch {
	case r >= 'a':
		return r - 'a' + 10
	case r >= 'A':
		return r - 'A' + 10
	default:
		return r - '0'
	}
}

// template scans template characters up to and including the closing "`" or
// the "${" that opens a substitution. head reports whether the opening "`"
// started this segment.
func (l *Lexer) template(start token.Pos, head bool) (token.Token, error) {
	var cooked, raw strings.Builder

	for {
		if l.eof() {
			return token.Token{Kind: token.Illegal},
				l.errorf(start, "unterminated template literal")
		}

		r := l.peek()

		switch {
		case r == '`':
			l.advance()

			kind := token.TemplateTail
			if head {
				kind = token.TemplateNoSub
			}

			return l.templateToken(kind, start, cooked.String(), raw.String()), nil

		case r == '$' && l.peekAt(1) == '{':
			l.advance()
			l.advance()

			kind := token.TemplateMiddle
			if head {
				kind = token.TemplateHead
			}

			return l.templateToken(kind, start, cooked.String(), raw.String()), nil

		case r == '\\':
			mark := l.off
			l.advance()

			if err := l.escape(&cooked); err != nil {
				return token.Token{Kind: token.Illegal}, err
			}

			raw.WriteString(l.src[mark:l.off])

		case r == '\r':
			l.advance()

			if l.peek() == '\n' {
				l.advance()
			}

			cooked.WriteByte('\n')
			raw.WriteByte('\n')

		default:
			l.advance()
			cooked.WriteRune(r)
			raw.WriteRune(r)
		}
	}
}

func (l *Lexer) templateToken(
	kind token.Kind,
	start token.Pos,
	cooked, raw string,
) token.Token {
	return token.Token{
		Kind:  kind,
		Text:  l.src[start.Offset:l.off],
		Value: cooked,
		Raw:   raw,
		Pos:   start,
	}
}

// punctuators lists operator spellings longest first so that the first match
// is the longest.
var punctuators = []struct {
	text string
	kind token.Kind
}{
	{">>>=", token.UShrAssign},
	{"...", token.Illegal},
	{"===", token.StrictEq},
	{"!==", token.StrictNe},
	{"**=", token.StarStarAssign},
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{">>>", token.UShr},
	{"&&=", token.AndAndAssign},
	{"||=", token.OrOrAssign},
	{"??=", token.NullishAssign},
	{"=>", token.Arrow},
	{"==", token.Eq},
	{"!=", token.Ne},
	{"<=", token.Le},
	{">=", token.Ge},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"??", token.Nullish},
	{"**", token.StarStar},
	{"++", token.PlusPlus},
	{"--", token.MinusMinus},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
	{"(", token.LParen},
	{")", token.RParen},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{",", token.Comma},
	{".", token.Dot},
	{";", token.Semicolon},
	{":", token.Colon},
	{"?", token.Question},
	{"=", token.Assign},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"<", token.Lt},
	{">", token.Gt},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"^", token.Caret},
	{"~", token.Tilde},
	{"!", token.Bang},
}

func (l *Lexer) punctuator(start token.Pos) (token.Token, error) {
	rest := l.src[l.off:]

	for _, p := range punctuators {
		if !strings.HasPrefix(rest, p.text) {
			continue
		}

		if p.kind == token.Illegal {
			break
		}

		for range p.text {
			l.advance()
		}

		return token.Token{Kind: p.kind, Text: p.text, Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(rest)

	return token.Token{Kind: token.Illegal, Text: string(r), Pos: start},
		l.errorf(start, "unexpected character "+quoteRune(r))
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
