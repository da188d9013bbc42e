// Package parser implements the default grammar adapter: a precedence-climbing
// parser for a single JavaScript expression.
//
// The parser accepts more than the evaluator supports. Assignment, update,
// new, sequence and arrow expressions produce their own node kinds so that the
// evaluator can refuse them; only malformed text is a parse error.
package parser

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/lang/lexer"
	"github.com/dengtao07/expression/lang/token"
)

// maxNesting bounds the recursion depth of the parser.
const maxNesting = 1024

// Error describes a syntax error at a position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Grammar is the JavaScript grammar adapter.
type Grammar struct{}

// Parse parses text as a single expression, optionally terminated by a
// semicolon. The root of the returned tree is an *ast.ExpressionStatement.
func (Grammar) Parse(text string) (ast.Node, error) { return Parse(text) }

// Unparse returns source text that parses back into a tree equivalent to n.
func (Grammar) Unparse(n ast.Node) (string, error) {
	if n == nil {
		return "", errors.New("unparse: nil node")
	}

	return ast.Print(n), nil
}

// Parse parses text as a single expression statement.
func Parse(text string) (node ast.Node, err error) {
	p := &parser{lx: lexer.New(text)}

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}

			node, err = nil, b.err
		}
	}()

	p.next()

	at := p.tok.Pos
	x := p.expression()

	if p.tok.Kind == token.Semicolon {
		p.next()
	}

	if p.tok.Kind != token.EOF {
		p.unexpected()
	}

	return &ast.ExpressionStatement{X: x, At: at}, nil
}

type bailout struct{ err *Error }

type parser struct {
	lx    *lexer.Lexer
	tok   token.Token
	prev  token.Token
	depth int
}

func (p *parser) fail(pos token.Pos, msg string) {
	panic(bailout{&Error{Pos: pos, Msg: msg}})
}

func (p *parser) unexpected() {
	p.fail(p.tok.Pos, "unexpected "+p.tok.String())
}

func (p *parser) check(tok token.Token, err error) token.Token {
	if err != nil {
		var lerr *lexer.Error
		if errors.As(err, &lerr) {
			p.fail(lerr.Pos, lerr.Msg)
		}

		p.fail(p.tok.Pos, err.Error())
	}

	return tok
}

func (p *parser) next() {
	p.prev = p.tok
	p.tok = p.check(p.lx.Next())
}

// peek returns the token after the current one without consuming anything.
func (p *parser) peek() token.Token {
	save := *p.lx
	tok, _ := p.lx.Next()
	*p.lx = save

	return tok
}

func (p *parser) expect(k token.Kind) token.Token {
	if p.tok.Kind != k {
		p.fail(p.tok.Pos, "expected "+k.String()+", found "+p.tok.String())
	}

	tok := p.tok
	p.next()

	return tok
}

func (p *parser) enter() {
	p.depth++
	if p.depth > maxNesting {
		p.fail(p.tok.Pos, "expression nested too deeply")
	}
}

func (p *parser) leave() { p.depth-- }

// expression parses a comma-separated sequence.
func (p *parser) expression() ast.Node {
	at := p.tok.Pos
	x := p.assignment()

	if p.tok.Kind != token.Comma {
		return x
	}

	seq := &ast.Sequence{Exprs: []ast.Node{x}, At: at}
	for p.tok.Kind == token.Comma {
		p.next()
		seq.Exprs = append(seq.Exprs, p.assignment())
	}

	return seq
}

func (p *parser) assignment() ast.Node {
	p.enter()
	defer p.leave()

	if arrow := p.tryArrow(); arrow != nil {
		return arrow
	}

	at := p.tok.Pos
	x := p.conditional()

	if p.tok.Kind.IsAssign() {
		op := p.tok.Kind.String()
		p.next()

		return &ast.Assignment{Target: x, Value: p.assignment(), Op: op, At: at}
	}

	return x
}

// tryArrow parses an arrow function if one starts at the current token and
// otherwise leaves the parser state untouched.
func (p *parser) tryArrow() ast.Node {
	at := p.tok.Pos

	switch p.tok.Kind {
	case token.Ident:
		if p.peek().Kind != token.Arrow {
			return nil
		}

		param := &ast.Identifier{Name: p.tok.Text, At: p.tok.Pos}
		p.next()
		p.next()

		return p.arrowBody(at, []ast.Node{param})

	case token.LParen:
		saveLx, saveTok, savePrev := *p.lx, p.tok, p.prev

		params, ok := p.arrowParams()
		if ok && p.tok.Kind == token.Arrow {
			p.next()

			return p.arrowBody(at, params)
		}

		*p.lx, p.tok, p.prev = saveLx, saveTok, savePrev
	}

	return nil
}

func (p *parser) arrowParams() (params []ast.Node, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}

			params, ok = nil, false
		}
	}()

	p.next()

	for p.tok.Kind != token.RParen {
		if p.tok.Kind != token.Ident {
			return nil, false
		}

		params = append(params, &ast.Identifier{Name: p.tok.Text, At: p.tok.Pos})
		p.next()

		if p.tok.Kind != token.Comma {
			break
		}

		p.next()
	}

	if p.tok.Kind != token.RParen {
		return nil, false
	}

	p.next()

	return params, true
}

func (p *parser) arrowBody(at token.Pos, params []ast.Node) ast.Node {
	if p.tok.Kind == token.LBrace {
		return &ast.Arrow{Params: params, Body: p.block(), At: at}
	}

	return &ast.Arrow{Params: params, Expr: p.assignment(), At: at}
}

func (p *parser) conditional() ast.Node {
	at := p.tok.Pos
	test := p.binary(1)

	if p.tok.Kind != token.Question {
		return test
	}

	p.next()
	cons := p.assignment()
	p.expect(token.Colon)
	alt := p.assignment()

	return &ast.Conditional{Test: test, Consequent: cons, Alternate: alt, At: at}
}

// precedence returns the binding power of a binary operator, or 0 when k
// does not continue a binary expression.
func precedence(k token.Kind) (prec int, right bool) {
	switch k {
	case token.Nullish, token.OrOr:
		return 1, false
	case token.AndAnd:
		return 2, false
	case token.Pipe:
		return 3, false
	case token.Caret:
		return 4, false
	case token.Amp:
		return 5, false
	case token.Eq, token.Ne, token.StrictEq, token.StrictNe:
		return 6, false
	case token.Lt, token.Le, token.Gt, token.Ge, token.In, token.Instanceof:
		return 7, false
	case token.Shl, token.Shr, token.UShr:
		return 8, false
	case token.Plus, token.Minus:
		return 9, false
	case token.Star, token.Slash, token.Percent:
		return 10, false
	case token.StarStar:
		return 11, true
	}

	return 0, false
}

func (p *parser) binary(minPrec int) ast.Node {
	p.enter()
	defer p.leave()

	x := p.unary()

	for {
		prec, right := precedence(p.tok.Kind)
		if prec == 0 || prec < minPrec {
			return x
		}

		op := p.tok
		p.next()

		next := prec + 1
		if right {
			next = prec
		}

		y := p.binary(next)

		switch op.Kind {
		case token.AndAnd, token.OrOr, token.Nullish:
			x = &ast.Logical{X: x, Y: y, Op: op.Kind.String(), At: x.Pos()}
		default:
			x = &ast.Binary{X: x, Y: y, Op: op.Kind.String(), At: x.Pos()}
		}
	}
}

func (p *parser) unary() ast.Node {
	p.enter()
	defer p.leave()

	at := p.tok.Pos

	switch p.tok.Kind {
	case token.Bang, token.Tilde, token.Plus, token.Minus,
		token.Typeof, token.Void, token.Delete:
		op := p.tok.Kind.String()
		p.next()

		return &ast.Unary{X: p.unary(), Op: op, At: at}

	case token.PlusPlus, token.MinusMinus:
		op := p.tok.Kind.String()
		p.next()

		return &ast.Update{X: p.unary(), Op: op, At: at, Prefix: true}
	}

	return p.postfix()
}

func (p *parser) postfix() ast.Node {
	x := p.leftHandSide()

	if k := p.tok.Kind; (k == token.PlusPlus || k == token.MinusMinus) &&
		p.tok.Pos.Line == p.prev.Pos.Line {
		p.next()

		return &ast.Update{X: x, Op: k.String(), At: x.Pos()}
	}

	return x
}

func (p *parser) leftHandSide() ast.Node {
	var x ast.Node

	if p.tok.Kind == token.New {
		x = p.newExpression()
	} else {
		x = p.primary()
	}

	for {
		switch p.tok.Kind {
		case token.Dot, token.LBracket:
			x = p.member(x)

		case token.LParen:
			x = &ast.Call{Callee: x, Args: p.arguments(), At: x.Pos()}

		case token.TemplateNoSub, token.TemplateHead:
			x = &ast.TaggedTemplate{Tag: x, Quasi: p.template(), At: x.Pos()}

		default:
			return x
		}
	}
}

func (p *parser) member(x ast.Node) ast.Node {
	if p.tok.Kind == token.Dot {
		p.next()

		if p.tok.Kind != token.Ident && !p.tok.Kind.IsKeyword() {
			p.fail(p.tok.Pos, "expected property name, found "+p.tok.String())
		}

		prop := &ast.Identifier{Name: p.tok.Text, At: p.tok.Pos}
		p.next()

		return &ast.Member{Object: x, Property: prop, At: x.Pos()}
	}

	p.next()
	prop := p.expression()
	p.expect(token.RBracket)

	return &ast.Member{Object: x, Property: prop, At: x.Pos(), Computed: true}
}

func (p *parser) newExpression() ast.Node {
	p.enter()
	defer p.leave()

	at := p.expect(token.New).Pos

	var callee ast.Node
	if p.tok.Kind == token.New {
		callee = p.newExpression()
	} else {
		callee = p.primary()
	}

	for p.tok.Kind == token.Dot || p.tok.Kind == token.LBracket {
		callee = p.member(callee)
	}

	var args []ast.Node
	if p.tok.Kind == token.LParen {
		args = p.arguments()
	}

	return &ast.New{Callee: callee, Args: args, At: at}
}

func (p *parser) arguments() []ast.Node {
	p.expect(token.LParen)

	args := []ast.Node{}

	for p.tok.Kind != token.RParen {
		args = append(args, p.assignment())

		if p.tok.Kind != token.Comma {
			break
		}

		p.next()
	}

	p.expect(token.RParen)

	return args
}

func (p *parser) primary() ast.Node {
	p.enter()
	defer p.leave()

	tok := p.tok

	switch tok.Kind {
	case token.Number:
		p.next()

		return &ast.Literal{Value: p.number(tok), Raw: tok.Text, At: tok.Pos}

	case token.String:
		p.next()

		return &ast.Literal{Value: tok.Value, Raw: tok.Text, At: tok.Pos}

	case token.True, token.False:
		p.next()

		return &ast.Literal{Value: tok.Kind == token.True, Raw: tok.Text, At: tok.Pos}

	case token.Null:
		p.next()

		return &ast.Literal{Value: nil, Raw: tok.Text, At: tok.Pos}

	case token.This:
		p.next()

		return &ast.This{At: tok.Pos}

	case token.Ident:
		p.next()

		return &ast.Identifier{Name: tok.Text, At: tok.Pos}

	case token.TemplateNoSub, token.TemplateHead:
		return p.template()

	case token.LParen:
		p.next()
		x := p.expression()
		p.expect(token.RParen)

		return x

	case token.LBracket:
		return p.array()

	case token.LBrace:
		return p.object()

	case token.Function:
		return p.function()
	}

	p.unexpected()

	return nil
}

func (p *parser) number(tok token.Token) float64 {
	text := strings.ReplaceAll(tok.Text, "_", "")

	base := 0

	if len(text) > 1 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
	}

	if base != 0 {
		if u, err := strconv.ParseUint(text[2:], base, 64); err == nil {
			return float64(u)
		}

		i, ok := new(big.Int).SetString(text[2:], base)
		if !ok {
			p.fail(tok.Pos, "malformed number literal")
		}

		f, _ := new(big.Float).SetInt(i).Float64()

		return f
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var nerr *strconv.NumError
		if errors.As(err, &nerr) && errors.Is(nerr.Err, strconv.ErrRange) {
			return f
		}

		p.fail(tok.Pos, "malformed number literal")
	}

	return f
}

func (p *parser) array() ast.Node {
	at := p.expect(token.LBracket).Pos

	elems := []ast.Node{}

	for p.tok.Kind != token.RBracket {
		if p.tok.Kind == token.Comma {
			p.fail(p.tok.Pos, "array holes are not supported")
		}

		elems = append(elems, p.assignment())

		if p.tok.Kind != token.Comma {
			break
		}

		p.next()
	}

	p.expect(token.RBracket)

	return &ast.Array{Elements: elems, At: at}
}

func (p *parser) object() ast.Node {
	at := p.expect(token.LBrace).Pos

	obj := &ast.Object{Properties: []*ast.Property{}, At: at}

	for p.tok.Kind != token.RBrace {
		obj.Properties = append(obj.Properties, p.property())

		if p.tok.Kind != token.Comma {
			break
		}

		p.next()
	}

	p.expect(token.RBrace)

	return obj
}

func (p *parser) property() *ast.Property {
	tok := p.tok
	prop := &ast.Property{At: tok.Pos}

	switch {
	case tok.Kind == token.Ident || tok.Kind.IsKeyword():
		prop.Key = &ast.Identifier{Name: tok.Text, At: tok.Pos}
		p.next()

	case tok.Kind == token.String:
		prop.Key = &ast.Literal{Value: tok.Value, Raw: tok.Text, At: tok.Pos}
		p.next()

	case tok.Kind == token.Number:
		p.next()
		prop.Key = &ast.Literal{Value: p.number(tok), Raw: tok.Text, At: tok.Pos}

	case tok.Kind == token.LBracket:
		p.next()
		prop.Key = p.assignment()
		prop.Computed = true
		p.expect(token.RBracket)

	default:
		p.fail(tok.Pos, "expected property name, found "+tok.String())
	}

	if p.tok.Kind == token.Colon {
		p.next()
		prop.Value = p.assignment()

		return prop
	}

	if tok.Kind == token.Ident &&
		(p.tok.Kind == token.Comma || p.tok.Kind == token.RBrace) {
		prop.Value = &ast.Identifier{Name: tok.Text, At: tok.Pos}
		prop.Shorthand = true

		return prop
	}

	p.fail(p.tok.Pos, "expected :, found "+p.tok.String())

	return nil
}

func (p *parser) function() ast.Node {
	at := p.expect(token.Function).Pos
	fn := &ast.Function{Params: []ast.Node{}, At: at}

	if p.tok.Kind == token.Ident {
		fn.Name = &ast.Identifier{Name: p.tok.Text, At: p.tok.Pos}
		p.next()
	}

	p.expect(token.LParen)

	for p.tok.Kind != token.RParen {
		name := p.expect(token.Ident)

		var param ast.Node = &ast.Identifier{Name: name.Text, At: name.Pos}

		if p.tok.Kind == token.Assign {
			p.next()
			param = &ast.Assignment{Target: param, Value: p.assignment(), Op: "=", At: name.Pos}
		}

		fn.Params = append(fn.Params, param)

		if p.tok.Kind != token.Comma {
			break
		}

		p.next()
	}

	p.expect(token.RParen)
	fn.Body = p.block()

	return fn
}

// block parses a function body made of expression and return statements.
// A statement ends at a semicolon, a closing brace, or a line break.
func (p *parser) block() []ast.Node {
	p.expect(token.LBrace)

	body := []ast.Node{}

	for p.tok.Kind != token.RBrace {
		if p.tok.Kind == token.Semicolon {
			p.next()

			continue
		}

		body = append(body, p.statement())

		switch {
		case p.tok.Kind == token.Semicolon:
			p.next()
		case p.tok.Kind == token.RBrace:
		case p.tok.Pos.Line > p.prev.Pos.Line:
		default:
			p.fail(p.tok.Pos, "expected ;, found "+p.tok.String())
		}
	}

	p.expect(token.RBrace)

	return body
}

func (p *parser) statement() ast.Node {
	at := p.tok.Pos

	if p.tok.Kind != token.Return {
		return &ast.ExpressionStatement{X: p.expression(), At: at}
	}

	ret := p.tok
	p.next()

	if k := p.tok.Kind; k == token.Semicolon || k == token.RBrace ||
		k == token.EOF || p.tok.Pos.Line > ret.Pos.Line {
		return &ast.ReturnStatement{At: at}
	}

	return &ast.ReturnStatement{Arg: p.expression(), At: at}
}

// template parses a template literal starting at the current head token.
func (p *parser) template() *ast.Template {
	head := p.tok
	tmpl := &ast.Template{At: head.Pos}

	elem := func(tok token.Token, tail bool) *ast.TemplateElement {
		return &ast.TemplateElement{Cooked: tok.Value, Raw: tok.Raw, At: tok.Pos, Tail: tail}
	}

	if head.Kind == token.TemplateNoSub {
		tmpl.Quasis = []*ast.TemplateElement{elem(head, true)}
		p.next()

		return tmpl
	}

	tmpl.Quasis = []*ast.TemplateElement{elem(head, false)}

	for {
		p.next()
		tmpl.Exprs = append(tmpl.Exprs, p.expression())

		if p.tok.Kind != token.RBrace {
			p.fail(p.tok.Pos, "expected } in template literal, found "+p.tok.String())
		}

		tok := p.check(p.lx.Template())
		tail := tok.Kind == token.TemplateTail
		tmpl.Quasis = append(tmpl.Quasis, elem(tok, tail))

		p.tok = tok

		if tail {
			break
		}
	}

	p.next()

	return tmpl
}
