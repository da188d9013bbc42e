package ast

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Print returns source text for the tree rooted at n.
//
// Every compound sub-expression is parenthesised, so the output does not depend
// on operator precedence and parses back into an equivalent tree.
func Print(n Node) string {
	var p printer

	p.node(n)

	return p.String()
}

type printer struct {
	strings.Builder
}

func (p *printer) list(nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			p.WriteString(", ")
		}

		p.node(n)
	}
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case nil:
		p.WriteString("undefined")

	case *Literal:
		p.literal(n)

	case *Identifier:
		p.WriteString(n.Name)

	case *This:
		p.WriteString("this")

	case *Unary:
		p.WriteByte('(')
		p.WriteString(n.Op)

		if isWordOperator(n.Op) {
			p.WriteByte(' ')
		}

		p.node(n.X)
		p.WriteByte(')')

	case *Binary:
		p.infix(n.X, n.Op, n.Y)

	case *Logical:
		p.infix(n.X, n.Op, n.Y)

	case *Array:
		p.WriteByte('[')
		p.list(n.Elements)
		p.WriteByte(']')

	case *Object:
		p.WriteString("({")

		for i, prop := range n.Properties {
			if i > 0 {
				p.WriteString(", ")
			}

			p.property(prop)
		}

		p.WriteString("})")

	case *Member:
		p.object(n.Object)

		if n.Computed {
			p.WriteByte('[')
			p.node(n.Property)
			p.WriteByte(']')
		} else {
			p.WriteByte('.')
			p.node(n.Property)
		}

	case *Call:
		p.object(n.Callee)
		p.WriteByte('(')
		p.list(n.Args)
		p.WriteByte(')')

	case *Conditional:
		p.WriteByte('(')
		p.node(n.Test)
		p.WriteString(" ? ")
		p.node(n.Consequent)
		p.WriteString(" : ")
		p.node(n.Alternate)
		p.WriteByte(')')

	case *ExpressionStatement:
		p.node(n.X)
		p.WriteByte(';')

	case *ReturnStatement:
		p.WriteString("return")

		if n.Arg != nil {
			p.WriteByte(' ')
			p.node(n.Arg)
		}

		p.WriteByte(';')

	case *Function:
		p.WriteString("(function ")

		if n.Name != nil {
			p.WriteString(n.Name.Name)
		}

		p.WriteByte('(')
		p.list(n.Params)
		p.WriteString(") ")
		p.block(n.Body)
		p.WriteByte(')')

	case *TemplateElement:
		p.WriteString(n.Raw)

	case *Template:
		p.WriteByte('`')

		for i, q := range n.Quasis {
			p.WriteString(q.Raw)

			if i < len(n.Exprs) {
				p.WriteString("${")
				p.node(n.Exprs[i])
				p.WriteByte('}')
			}
		}

		p.WriteByte('`')

	case *TaggedTemplate:
		p.object(n.Tag)
		p.node(n.Quasi)

	case *Assignment:
		p.infix(n.Target, n.Op, n.Value)

	case *Update:
		p.WriteByte('(')

		if n.Prefix {
			p.WriteString(n.Op)
			p.node(n.X)
		} else {
			p.node(n.X)
			p.WriteString(n.Op)
		}

		p.WriteByte(')')

	case *New:
		p.WriteString("(new (")
		p.node(n.Callee)
		p.WriteString(")(")
		p.list(n.Args)
		p.WriteString("))")

	case *Sequence:
		p.WriteByte('(')
		p.list(n.Exprs)
		p.WriteByte(')')

	case *Arrow:
		p.WriteString("((")
		p.list(n.Params)
		p.WriteString(") => ")

		if n.Expr != nil {
			p.node(n.Expr)
		} else {
			p.block(n.Body)
		}

		p.WriteByte(')')

	case *Unsupported:
		p.WriteByte('(')
		p.WriteString(n.Text)
		p.WriteByte(')')
	}
}

func (p *printer) infix(x Node, op string, y Node) {
	p.WriteByte('(')
	p.node(x)
	p.WriteByte(' ')
	p.WriteString(op)
	p.WriteByte(' ')
	p.node(y)
	p.WriteByte(')')
}

// object prints the left-hand side of a member access or call. Number
// literals need parentheses so that the dot is not read as a decimal point.
func (p *printer) object(n Node) {
	if _, ok := n.(*Literal); ok {
		p.WriteByte('(')
		p.node(n)
		p.WriteByte(')')

		return
	}

	p.node(n)
}

func (p *printer) block(body []Node) {
	p.WriteByte('{')

	for _, s := range body {
		p.WriteByte(' ')
		p.node(s)
	}

	p.WriteString(" }")
}

func (p *printer) property(prop *Property) {
	switch {
	case prop.Computed:
		p.WriteByte('[')
		p.node(prop.Key)
		p.WriteByte(']')
	case prop.Shorthand:
		p.node(prop.Key)

		return
	default:
		p.node(prop.Key)
	}

	p.WriteString(": ")
	p.node(prop.Value)
}

func (p *printer) literal(n *Literal) {
	if n.Raw != "" {
		p.WriteString(n.Raw)

		return
	}

	switch v := n.Value.(type) {
	case nil:
		p.WriteString("null")
	case bool:
		p.WriteString(strconv.FormatBool(v))
	case float64:
		p.WriteString(formatNumber(v))
	case string:
		p.WriteString(Quote(v))
	default:
		p.WriteString("undefined")
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0 / 0)"
	case math.IsInf(f, 1):
		return "(1 / 0)"
	case math.IsInf(f, -1):
		return "(-1 / 0)"
	case f < 0 || (f == 0 && math.Signbit(f)):
		return "(-" + strconv.FormatFloat(math.Abs(f), 'g', -1, 64) + ")"
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

func isWordOperator(op string) bool {
	switch op {
	case "typeof", "void", "delete":
		return true
	}

	return false
}

// Quote returns s as a double-quoted string literal.
func Quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f || (r == utf8.RuneError && size == 1) {
				b := byte(r)
				if r == utf8.RuneError {
					b = s[i-1]
				}

				sb.WriteString(`\x`)
				sb.WriteByte(hexDigits[b>>4])
				sb.WriteByte(hexDigits[b&0xf])

				continue
			}

			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

const hexDigits = "0123456789abcdef"
