package exprlang

import (
	"slices"

	exprast "github.com/expr-lang/expr/ast"
)

// hyphenPatcher rebuilds hyphenated identifiers from the subtraction chains
// expr-lang's parser makes of them. Only declared names are rebuilt, so
// "a-b" stays a subtraction unless "a-b" was declared.
type hyphenPatcher struct {
	names []string
}

// Visit implements ast.Visitor. Walk visits children first, so by the time a
// node is visited any shorter chain on its left has already been examined.
func (p *hyphenPatcher) Visit(node *exprast.Node) {
	bin, ok := (*node).(*exprast.BinaryNode)
	if !ok || bin.Operator != "-" {
		return
	}

	name, ok := hyphenChain(bin)
	if !ok || !slices.Contains(p.names, name) {
		return
	}

	exprast.Patch(node, &exprast.IdentifierNode{Value: name})
}

// hyphenChain joins ident - ident - ... into one hyphenated name.
func hyphenChain(bin *exprast.BinaryNode) (string, bool) {
	right, ok := bin.Right.(*exprast.IdentifierNode)
	if !ok {
		return "", false
	}

	switch left := bin.Left.(type) {
	case *exprast.IdentifierNode:
		return left.Value + "-" + right.Value, true

	case *exprast.BinaryNode:
		if left.Operator != "-" {
			return "", false
		}

		base, ok := hyphenChain(left)
		if !ok {
			return "", false
		}

		return base + "-" + right.Value, true
	}

	return "", false
}
