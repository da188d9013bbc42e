// Package exprlang reads expressions written in the expr-lang syntax
// (https://expr-lang.org) into the syntax tree evaluated by package lang.
//
// Constructs with a direct equivalent are converted: literals, identifiers,
// unary and binary operators (and, or and not become &&, || and !; == and !=
// become the strict comparisons), member access, calls, the conditional
// operator, arrays and maps. Everything else, such as builtins, predicates,
// slices, pipes and variable declarations, becomes an [ast.Unsupported] node
// and is refused when evaluated.
package exprlang

import (
	"errors"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/lang/token"
)

// Grammar parses expr-lang text. The zero value is ready to use.
type Grammar struct {
	names []string
}

// Option configures a [Grammar].
type Option func(*Grammar)

// WithNames declares variable names that contain hyphens, such as
// "log-level". expr-lang reads those as subtraction; declared names are
// rebuilt into single identifiers.
func WithNames(names ...string) Option {
	return func(g *Grammar) {
		for _, name := range names {
			if strings.Contains(name, "-") && !slices.Contains(g.names, name) {
				g.names = append(g.names, name)
			}
		}
	}
}

// New returns a Grammar configured by opts.
func New(opts ...Option) *Grammar {
	g := &Grammar{}

	for _, opt := range opts {
		opt(g)
	}

	slices.Sort(g.names)

	return g
}

// CacheKey identifies the trees produced by g.
func (g *Grammar) CacheKey() string {
	return "exprlang:" + strings.Join(g.names, ",")
}

// Parse converts text into a tree rooted at an *ast.ExpressionStatement.
func (g *Grammar) Parse(text string) (ast.Node, error) {
	tree, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}

	if len(g.names) > 0 {
		exprast.Walk(&tree.Node, &hyphenPatcher{names: g.names})
	}

	c := converter{src: []rune(text)}
	x := c.node(tree.Node)

	return &ast.ExpressionStatement{X: x, At: x.Pos()}, nil
}

// Unparse prints n. Function expressions, which expr-lang cannot express,
// are printed in the default syntax.
func (g *Grammar) Unparse(n ast.Node) (string, error) {
	if n == nil {
		return "", errors.New("exprlang: nil node")
	}

	return ast.Print(n), nil
}

type converter struct {
	src []rune
}

// pos converts the rune offset of n into a position.
func (c *converter) pos(n exprast.Node) token.Pos {
	off := min(max(n.Location().From, 0), len(c.src))
	p := token.Pos{Line: 1, Column: 1}

	for _, r := range c.src[:off] {
		p.Offset += utf8.RuneLen(r)

		if r == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}

	return p
}

func (c *converter) nodes(ns []exprast.Node) []ast.Node {
	out := make([]ast.Node, len(ns))
	for i, n := range ns {
		out[i] = c.node(n)
	}

	return out
}

//nolint:cyclop,funlen
func (c *converter) node(n exprast.Node) ast.Node {
	at := c.pos(n)

	switch n := n.(type) {
	case *exprast.NilNode:
		return &ast.Literal{Value: nil, At: at}

	case *exprast.BoolNode:
		return &ast.Literal{Value: n.Value, At: at}

	case *exprast.IntegerNode:
		return &ast.Literal{Value: float64(n.Value), At: at}

	case *exprast.FloatNode:
		return &ast.Literal{Value: n.Value, At: at}

	case *exprast.StringNode:
		return &ast.Literal{Value: n.Value, At: at}

	case *exprast.ConstantNode:
		if v, ok := constant(n.Value); ok {
			return &ast.Literal{Value: v, At: at}
		}

	case *exprast.IdentifierNode:
		return &ast.Identifier{Name: n.Value, At: at}

	case *exprast.PointerNode:
		if n.Name == "" {
			return &ast.This{At: at}
		}

	case *exprast.UnaryNode:
		op := n.Operator
		if op == "not" {
			op = "!"
		}

		return &ast.Unary{X: c.node(n.Node), Op: op, At: at}

	case *exprast.BinaryNode:
		x, y := c.node(n.Left), c.node(n.Right)

		switch n.Operator {
		case "and", "&&":
			return &ast.Logical{X: x, Y: y, Op: "&&", At: at}
		case "or", "||":
			return &ast.Logical{X: x, Y: y, Op: "||", At: at}
		case "??":
			return &ast.Logical{X: x, Y: y, Op: "??", At: at}
		}

		return &ast.Binary{X: x, Y: y, Op: binaryOperator(n.Operator), At: at}

	case *exprast.ChainNode:
		return c.node(n.Node)

	case *exprast.MemberNode:
		if n.Optional {
			break
		}

		if s, ok := n.Property.(*exprast.StringNode); ok && isIdentifier(s.Value) {
			return &ast.Member{
				Object:   c.node(n.Node),
				Property: &ast.Identifier{Name: s.Value, At: c.pos(s)},
				At:       at,
			}
		}

		return &ast.Member{
			Object:   c.node(n.Node),
			Property: c.node(n.Property),
			Computed: true,
			At:       at,
		}

	case *exprast.CallNode:
		return &ast.Call{Callee: c.node(n.Callee), Args: c.nodes(n.Arguments), At: at}

	case *exprast.ConditionalNode:
		return &ast.Conditional{
			Test:       c.node(n.Cond),
			Consequent: c.node(n.Exp1),
			Alternate:  c.node(n.Exp2),
			At:         at,
		}

	case *exprast.ArrayNode:
		return &ast.Array{Elements: c.nodes(n.Nodes), At: at}

	case *exprast.MapNode:
		return c.object(n, at)
	}

	return &ast.Unsupported{Text: n.String(), At: at}
}

func (c *converter) object(n *exprast.MapNode, at token.Pos) ast.Node {
	obj := &ast.Object{Properties: make([]*ast.Property, 0, len(n.Pairs)), At: at}

	for _, p := range n.Pairs {
		pair, ok := p.(*exprast.PairNode)
		if !ok {
			return &ast.Unsupported{Text: n.String(), At: at}
		}

		prop := &ast.Property{Value: c.node(pair.Value), At: c.pos(pair)}

		switch k := pair.Key.(type) {
		case *exprast.StringNode:
			if isIdentifier(k.Value) {
				prop.Key = &ast.Identifier{Name: k.Value, At: c.pos(k)}
			} else {
				prop.Key = &ast.Literal{Value: k.Value, At: c.pos(k)}
			}
		case *exprast.IntegerNode, *exprast.FloatNode:
			prop.Key = c.node(k)
		default:
			prop.Key = c.node(k)
			prop.Computed = true
		}

		obj.Properties = append(obj.Properties, prop)
	}

	return obj
}

func binaryOperator(op string) string {
	switch op {
	case "==":
		return "==="
	case "!=":
		return "!=="
	case "^":
		return "**"
	}

	return op
}

// constant converts a folded constant to a literal value.
func constant(v any) (any, bool) {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}

	return nil, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}
