// Package ast declares the syntax tree shared by every grammar adapter and
// the evaluator.
//
// Trees are immutable once built. Nodes the evaluator does not support
// (assignment, update, new, sequence, arrow functions and foreign constructs
// from other grammars) are still represented so that a sandbox can refuse them
// instead of a parser rejecting them as malformed.
package ast

import "github.com/dengtao07/expression/lang/token"

// Kind tags the concrete type of a [Node].
type Kind int

const (
	KindInvalid Kind = iota
	KindLiteral
	KindIdentifier
	KindThis
	KindUnary
	KindBinary
	KindLogical
	KindArray
	KindObject
	KindMember
	KindCall
	KindConditional
	KindExpressionStatement
	KindReturnStatement
	KindFunction
	KindTemplate
	KindTemplateElement
	KindTaggedTemplate
	KindAssignment
	KindUpdate
	KindNew
	KindSequence
	KindArrow
	KindUnsupported
)

var kindNames = [...]string{
	KindInvalid:             "Invalid",
	KindLiteral:             "Literal",
	KindIdentifier:          "Identifier",
	KindThis:                "ThisExpression",
	KindUnary:               "UnaryExpression",
	KindBinary:              "BinaryExpression",
	KindLogical:             "LogicalExpression",
	KindArray:               "ArrayExpression",
	KindObject:              "ObjectExpression",
	KindMember:              "MemberExpression",
	KindCall:                "CallExpression",
	KindConditional:         "ConditionalExpression",
	KindExpressionStatement: "ExpressionStatement",
	KindReturnStatement:     "ReturnStatement",
	KindFunction:            "FunctionExpression",
	KindTemplate:            "TemplateLiteral",
	KindTemplateElement:     "TemplateElement",
	KindTaggedTemplate:      "TaggedTemplateExpression",
	KindAssignment:          "AssignmentExpression",
	KindUpdate:              "UpdateExpression",
	KindNew:                 "NewExpression",
	KindSequence:            "SequenceExpression",
	KindArrow:               "ArrowFunctionExpression",
	KindUnsupported:         "Unsupported",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return kindNames[KindInvalid]
}

// Node is implemented by every syntax tree node.
type Node interface {
	Kind() Kind
	Pos() token.Pos
}

type (
	// Literal is a null, boolean, number (float64) or string constant.
	// Raw is the source spelling when the node came from text.
	Literal struct {
		Value any
		Raw   string
		At    token.Pos
	}

	Identifier struct {
		Name string
		At   token.Pos
	}

	This struct {
		At token.Pos
	}

	Unary struct {
		X  Node
		Op string
		At token.Pos
	}

	Binary struct {
		X, Y Node
		Op   string
		At   token.Pos
	}

	// Logical is a short-circuiting && || or ?? expression.
	Logical struct {
		X, Y Node
		Op   string
		At   token.Pos
	}

	Array struct {
		Elements []Node
		At       token.Pos
	}

	// Property is one entry of an object literal. Key is an *Identifier or a
	// *Literal unless Computed is set.
	Property struct {
		Key       Node
		Value     Node
		At        token.Pos
		Computed  bool
		Shorthand bool
	}

	Object struct {
		Properties []*Property
		At         token.Pos
	}

	// Member is property access. Property is an *Identifier unless Computed
	// is set.
	Member struct {
		Object   Node
		Property Node
		At       token.Pos
		Computed bool
	}

	Call struct {
		Callee Node
		Args   []Node
		At     token.Pos
	}

	Conditional struct {
		Test       Node
		Consequent Node
		Alternate  Node
		At         token.Pos
	}

	ExpressionStatement struct {
		X  Node
		At token.Pos
	}

	// ReturnStatement has a nil Arg for a bare return.
	ReturnStatement struct {
		Arg Node
		At  token.Pos
	}

	// Function is a function expression. Params are *Identifier for simple
	// names; a parameter with a default value is an *Assignment.
	Function struct {
		Name   *Identifier
		Params []Node
		Body   []Node
		At     token.Pos
	}

	TemplateElement struct {
		Cooked string
		Raw    string
		At     token.Pos
		Tail   bool
	}

	// Template has len(Quasis) == len(Exprs)+1.
	Template struct {
		Quasis []*TemplateElement
		Exprs  []Node
		At     token.Pos
	}

	TaggedTemplate struct {
		Tag   Node
		Quasi *Template
		At    token.Pos
	}

	Assignment struct {
		Target Node
		Value  Node
		Op     string
		At     token.Pos
	}

	Update struct {
		X      Node
		Op     string
		At     token.Pos
		Prefix bool
	}

	New struct {
		Callee Node
		Args   []Node
		At     token.Pos
	}

	Sequence struct {
		Exprs []Node
		At    token.Pos
	}

	// Arrow is an arrow function. Exactly one of Expr and Body is set.
	Arrow struct {
		Expr   Node
		Params []Node
		Body   []Node
		At     token.Pos
	}

	// Unsupported carries a construct of a foreign grammar that has no
	// equivalent in this tree. Text is its source form.
	Unsupported struct {
		Text string
		At   token.Pos
	}
)

func (*Literal) Kind() Kind             { return KindLiteral }
func (*Identifier) Kind() Kind          { return KindIdentifier }
func (*This) Kind() Kind                { return KindThis }
func (*Unary) Kind() Kind               { return KindUnary }
func (*Binary) Kind() Kind              { return KindBinary }
func (*Logical) Kind() Kind             { return KindLogical }
func (*Array) Kind() Kind               { return KindArray }
func (*Object) Kind() Kind              { return KindObject }
func (*Member) Kind() Kind              { return KindMember }
func (*Call) Kind() Kind                { return KindCall }
func (*Conditional) Kind() Kind         { return KindConditional }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*ReturnStatement) Kind() Kind     { return KindReturnStatement }
func (*Function) Kind() Kind            { return KindFunction }
func (*TemplateElement) Kind() Kind     { return KindTemplateElement }
func (*Template) Kind() Kind            { return KindTemplate }
func (*TaggedTemplate) Kind() Kind      { return KindTaggedTemplate }
func (*Assignment) Kind() Kind          { return KindAssignment }
func (*Update) Kind() Kind              { return KindUpdate }
func (*New) Kind() Kind                 { return KindNew }
func (*Sequence) Kind() Kind            { return KindSequence }
func (*Arrow) Kind() Kind               { return KindArrow }
func (*Unsupported) Kind() Kind         { return KindUnsupported }

func (n *Literal) Pos() token.Pos             { return n.At }
func (n *Identifier) Pos() token.Pos          { return n.At }
func (n *This) Pos() token.Pos                { return n.At }
func (n *Unary) Pos() token.Pos               { return n.At }
func (n *Binary) Pos() token.Pos              { return n.At }
func (n *Logical) Pos() token.Pos             { return n.At }
func (n *Array) Pos() token.Pos               { return n.At }
func (n *Object) Pos() token.Pos              { return n.At }
func (n *Member) Pos() token.Pos              { return n.At }
func (n *Call) Pos() token.Pos                { return n.At }
func (n *Conditional) Pos() token.Pos         { return n.At }
func (n *ExpressionStatement) Pos() token.Pos { return n.At }
func (n *ReturnStatement) Pos() token.Pos     { return n.At }
func (n *Function) Pos() token.Pos            { return n.At }
func (n *TemplateElement) Pos() token.Pos     { return n.At }
func (n *Template) Pos() token.Pos            { return n.At }
func (n *TaggedTemplate) Pos() token.Pos      { return n.At }
func (n *Assignment) Pos() token.Pos          { return n.At }
func (n *Update) Pos() token.Pos              { return n.At }
func (n *New) Pos() token.Pos                 { return n.At }
func (n *Sequence) Pos() token.Pos            { return n.At }
func (n *Arrow) Pos() token.Pos               { return n.At }
func (n *Unsupported) Pos() token.Pos         { return n.At }

// Inspect traverses the tree rooted at n in depth-first order. It calls f for
// each node; if f returns false the node's children are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Unary:
		return []Node{n.X}
	case *Binary:
		return []Node{n.X, n.Y}
	case *Logical:
		return []Node{n.X, n.Y}
	case *Array:
		return n.Elements
	case *Object:
		var out []Node

		for _, p := range n.Properties {
			out = append(out, p.Key, p.Value)
		}

		return out
	case *Member:
		return []Node{n.Object, n.Property}
	case *Call:
		return append([]Node{n.Callee}, n.Args...)
	case *Conditional:
		return []Node{n.Test, n.Consequent, n.Alternate}
	case *ExpressionStatement:
		return []Node{n.X}
	case *ReturnStatement:
		if n.Arg == nil {
			return nil
		}

		return []Node{n.Arg}
	case *Function:
		var out []Node
		if n.Name != nil {
			out = append(out, n.Name)
		}

		out = append(out, n.Params...)

		return append(out, n.Body...)
	case *Template:
		out := make([]Node, 0, len(n.Quasis)+len(n.Exprs))
		for i, q := range n.Quasis {
			out = append(out, q)
			if i < len(n.Exprs) {
				out = append(out, n.Exprs[i])
			}
		}

		return out
	case *TaggedTemplate:
		return []Node{n.Tag, n.Quasi}
	case *Assignment:
		return []Node{n.Target, n.Value}
	case *Update:
		return []Node{n.X}
	case *New:
		return append([]Node{n.Callee}, n.Args...)
	case *Sequence:
		return n.Exprs
	case *Arrow:
		out := append([]Node{}, n.Params...)
		if n.Expr != nil {
			return append(out, n.Expr)
		}

		return append(out, n.Body...)
	}

	return nil
}
