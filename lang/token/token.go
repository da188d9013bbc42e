// Package token defines the lexical tokens of the expression grammar.
package token

import "strconv"

// Kind identifies the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident
	Number
	String

	// Template literal segments. A template without substitutions is a single
	// TemplateNoSub token; otherwise it is a TemplateHead, zero or more
	// TemplateMiddle, and a TemplateTail, with expressions in between.
	TemplateNoSub
	TemplateHead
	TemplateMiddle
	TemplateTail

	keywordBegin
	True
	False
	Null
	This
	Function
	Return
	New
	Typeof
	Void
	Delete
	In
	Instanceof
	keywordEnd

	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	LBrace    // {
	RBrace    // }
	Comma     // ,
	Dot       // .
	Semicolon // ;
	Colon     // :
	Question  // ?
	Arrow     // =>

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	StarStar   // **
	PlusPlus   // ++
	MinusMinus // --
	Shl        // <<
	Shr        // >>
	UShr       // >>>
	Lt         // <
	Le         // <=
	Gt         // >
	Ge         // >=
	Eq         // ==
	Ne         // !=
	StrictEq   // ===
	StrictNe   // !==
	Amp        // &
	Pipe       // |
	Caret      // ^
	Tilde      // ~
	Bang       // !
	AndAnd     // &&
	OrOr       // ||
	Nullish    // ??

	assignBegin
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	StarStarAssign
	ShlAssign
	ShrAssign
	UShrAssign
	AmpAssign
	PipeAssign
	CaretAssign
	AndAndAssign
	OrOrAssign
	NullishAssign
	assignEnd
)

var names = [...]string{
	EOF:            "EOF",
	Illegal:        "ILLEGAL",
	Ident:          "IDENT",
	Number:         "NUMBER",
	String:         "STRING",
	TemplateNoSub:  "TEMPLATE",
	TemplateHead:   "TEMPLATE_HEAD",
	TemplateMiddle: "TEMPLATE_MIDDLE",
	TemplateTail:   "TEMPLATE_TAIL",
	True:           "true",
	False:          "false",
	Null:           "null",
	This:           "this",
	Function:       "function",
	Return:         "return",
	New:            "new",
	Typeof:         "typeof",
	Void:           "void",
	Delete:         "delete",
	In:             "in",
	Instanceof:     "instanceof",
	LParen:         "(",
	RParen:         ")",
	LBracket:       "[",
	RBracket:       "]",
	LBrace:         "{",
	RBrace:         "}",
	Comma:          ",",
	Dot:            ".",
	Semicolon:      ";",
	Colon:          ":",
	Question:       "?",
	Arrow:          "=>",
	Plus:           "+",
	Minus:          "-",
	Star:           "*",
	Slash:          "/",
	Percent:        "%",
	StarStar:       "**",
	PlusPlus:       "++",
	MinusMinus:     "--",
	Shl:            "<<",
	Shr:            ">>",
	UShr:           ">>>",
	Lt:             "<",
	Le:             "<=",
	Gt:             ">",
	Ge:             ">=",
	Eq:             "==",
	Ne:             "!=",
	StrictEq:       "===",
	StrictNe:       "!==",
	Amp:            "&",
	Pipe:           "|",
	Caret:          "^",
	Tilde:          "~",
	Bang:           "!",
	AndAnd:         "&&",
	OrOr:           "||",
	Nullish:        "??",
	Assign:         "=",
	PlusAssign:     "+=",
	MinusAssign:    "-=",
	StarAssign:     "*=",
	SlashAssign:    "/=",
	PercentAssign:  "%=",
	StarStarAssign: "**=",
	ShlAssign:      "<<=",
	ShrAssign:      ">>=",
	UShrAssign:     ">>>=",
	AmpAssign:      "&=",
	PipeAssign:     "|=",
	CaretAssign:    "^=",
	AndAndAssign:   "&&=",
	OrOrAssign:     "||=",
	NullishAssign:  "??=",
}

// String returns the source spelling of operators and keywords, or an
// upper-case class name for literal and identifier kinds.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(names) && names[k] != "" {
		return names[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return keywordBegin < k && k < keywordEnd }

// IsAssign reports whether k is a plain or compound assignment operator.
func (k Kind) IsAssign() bool { return assignBegin < k && k < assignEnd }

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, keywordEnd-keywordBegin)
	for k := keywordBegin + 1; k < keywordEnd; k++ {
		m[names[k]] = k
	}

	return m
}()

// Lookup maps an identifier to its keyword kind, or Ident if it is not
// reserved.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}

	return Ident
}

// Pos is a location in source text. Offset is a 0-based byte offset; Line and
// Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// String formats the position as "line:column".
func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a lexical token.
//
// Text is the exact source slice. Value holds the decoded contents of string
// literals and the cooked text of template segments; Raw holds the raw text of
// template segments.
type Token struct {
	Kind  Kind
	Text  string
	Value string
	Raw   string
	Pos   Pos
}

// String returns a short description used in diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Ident, Number, String:
		return strconv.Quote(t.Text)
	default:
		return t.Kind.String()
	}
}
