package ast

// Dump converts the tree rooted at n into nested maps and slices suitable for
// a YAML or JSON encoder. Every node map carries its kind under "type".
func Dump(n Node) any {
	if n == nil {
		return nil
	}

	m := map[string]any{"type": n.Kind().String()}

	switch n := n.(type) {
	case *Literal:
		m["value"] = n.Value
		if n.Raw != "" {
			m["raw"] = n.Raw
		}
	case *Identifier:
		m["name"] = n.Name
	case *This:
	case *Unary:
		m["operator"] = n.Op
		m["argument"] = Dump(n.X)
	case *Binary:
		m["operator"] = n.Op
		m["left"] = Dump(n.X)
		m["right"] = Dump(n.Y)
	case *Logical:
		m["operator"] = n.Op
		m["left"] = Dump(n.X)
		m["right"] = Dump(n.Y)
	case *Array:
		m["elements"] = dumpList(n.Elements)
	case *Object:
		props := make([]any, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = map[string]any{
				"type":      "Property",
				"key":       Dump(p.Key),
				"value":     Dump(p.Value),
				"computed":  p.Computed,
				"shorthand": p.Shorthand,
			}
		}

		m["properties"] = props
	case *Member:
		m["object"] = Dump(n.Object)
		m["property"] = Dump(n.Property)
		m["computed"] = n.Computed
	case *Call:
		m["callee"] = Dump(n.Callee)
		m["arguments"] = dumpList(n.Args)
	case *Conditional:
		m["test"] = Dump(n.Test)
		m["consequent"] = Dump(n.Consequent)
		m["alternate"] = Dump(n.Alternate)
	case *ExpressionStatement:
		m["expression"] = Dump(n.X)
	case *ReturnStatement:
		m["argument"] = Dump(n.Arg)
	case *Function:
		if n.Name != nil {
			m["id"] = Dump(n.Name)
		}

		m["params"] = dumpList(n.Params)
		m["body"] = dumpList(n.Body)
	case *TemplateElement:
		m["cooked"] = n.Cooked
		m["raw"] = n.Raw
		m["tail"] = n.Tail
	case *Template:
		quasis := make([]Node, len(n.Quasis))
		for i, q := range n.Quasis {
			quasis[i] = q
		}

		m["quasis"] = dumpList(quasis)
		m["expressions"] = dumpList(n.Exprs)
	case *TaggedTemplate:
		m["tag"] = Dump(n.Tag)
		m["quasi"] = Dump(n.Quasi)
	case *Assignment:
		m["operator"] = n.Op
		m["left"] = Dump(n.Target)
		m["right"] = Dump(n.Value)
	case *Update:
		m["operator"] = n.Op
		m["prefix"] = n.Prefix
		m["argument"] = Dump(n.X)
	case *New:
		m["callee"] = Dump(n.Callee)
		m["arguments"] = dumpList(n.Args)
	case *Sequence:
		m["expressions"] = dumpList(n.Exprs)
	case *Arrow:
		m["params"] = dumpList(n.Params)
		if n.Expr != nil {
			m["body"] = Dump(n.Expr)
		} else {
			m["body"] = dumpList(n.Body)
		}
	case *Unsupported:
		m["text"] = n.Text
	}

	return m
}

func dumpList(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = Dump(n)
	}

	return out
}
