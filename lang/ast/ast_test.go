package ast

import "testing"

func ident(name string) *Identifier { return &Identifier{Name: name} }

func num(f float64) *Literal { return &Literal{Value: f} }

func str(s string) *Literal { return &Literal{Value: s} }

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"null", &Literal{}, "null"},
		{"raw literal", &Literal{Value: 255.0, Raw: "0xff"}, "0xff"},
		{"number", num(1.5), "1.5"},
		{"negative number", num(-2), "(-2)"},
		{"string", str("a\"b\n"), `"a\"b\n"`},
		{"this", &This{}, "this"},
		{"unary", &Unary{Op: "!", X: ident("a")}, "(!a)"},
		{"typeof", &Unary{Op: "typeof", X: ident("a")}, "(typeof a)"},
		{
			"nested binary",
			&Binary{Op: "*", X: &Binary{Op: "+", X: num(1), Y: num(2)}, Y: num(3)},
			"((1 + 2) * 3)",
		},
		{"logical", &Logical{Op: "&&", X: ident("a"), Y: ident("b")}, "(a && b)"},
		{"array", &Array{Elements: []Node{num(1), str("x")}}, `[1, "x"]`},
		{
			"object",
			&Object{Properties: []*Property{
				{Key: ident("a"), Value: num(1)},
				{Key: str("b c"), Value: &Literal{}},
				{Key: ident("d"), Value: ident("d"), Shorthand: true},
			}},
			`({a: 1, "b c": null, d})`,
		},
		{
			"member",
			&Member{Object: ident("a"), Property: ident("b")},
			"a.b",
		},
		{
			"computed member",
			&Member{Object: ident("a"), Property: str("b"), Computed: true},
			`a["b"]`,
		},
		{
			"member of number",
			&Member{Object: &Literal{Value: 1.0, Raw: "1"}, Property: ident("x")},
			"(1).x",
		},
		{
			"call",
			&Call{Callee: &Member{Object: ident("s"), Property: ident("f")}, Args: []Node{num(1), num(2)}},
			"s.f(1, 2)",
		},
		{
			"conditional",
			&Conditional{Test: ident("a"), Consequent: num(1), Alternate: num(2)},
			"(a ? 1 : 2)",
		},
		{
			"function",
			&Function{
				Params: []Node{ident("x")},
				Body: []Node{
					&ExpressionStatement{X: ident("x")},
					&ReturnStatement{Arg: &Binary{Op: "+", X: ident("x"), Y: num(1)}},
				},
			},
			"(function (x) { x; return (x + 1); })",
		},
		{
			"named function",
			&Function{Name: ident("f"), Body: []Node{&ReturnStatement{}}},
			"(function f() { return; })",
		},
		{
			"template",
			&Template{
				Quasis: []*TemplateElement{{Raw: `a\n`}, {Raw: "b", Tail: true}},
				Exprs:  []Node{ident("x")},
			},
			"`a\\n${x}b`",
		},
		{
			"tagged template",
			&TaggedTemplate{
				Tag:   ident("tag"),
				Quasi: &Template{Quasis: []*TemplateElement{{Raw: "t", Tail: true}}},
			},
			"tag`t`",
		},
		{"assignment", &Assignment{Op: "+=", Target: ident("a"), Value: num(1)}, "(a += 1)"},
		{"prefix update", &Update{Op: "++", X: ident("a"), Prefix: true}, "(++a)"},
		{"postfix update", &Update{Op: "--", X: ident("a")}, "(a--)"},
		{"new", &New{Callee: ident("Date"), Args: []Node{num(0)}}, "(new (Date)(0))"},
		{"sequence", &Sequence{Exprs: []Node{ident("a"), ident("b")}}, "(a, b)"},
		{"arrow", &Arrow{Params: []Node{ident("a")}, Expr: ident("a")}, "((a) => a)"},
		{"unsupported", &Unsupported{Text: "len(x)"}, "(len(x))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.node); got != tt.want {
				t.Errorf("Print() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{`back\slash`, `"back\\slash"`},
		{"\x00\x1f", `"\x00\x1f"`},
		{"\u2028", `"\u2028"`},
		{"h\u00e9llo", "\"h\u00e9llo\""},
	}

	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := (&Call{}).Kind().String(); got != "CallExpression" {
		t.Errorf("got %q", got)
	}

	if got := Kind(-1).String(); got != "Invalid" {
		t.Errorf("got %q", got)
	}
}

func TestInspect(t *testing.T) {
	tree := &Call{
		Callee: &Member{Object: ident("a"), Property: ident("b")},
		Args:   []Node{&Binary{Op: "+", X: ident("c"), Y: num(1)}},
	}

	var names []string

	Inspect(tree, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Name)
		}

		return true
	})

	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}

	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got %v, want %v", names, want)
		}
	}

	count := 0

	Inspect(tree, func(n Node) bool {
		count++

		return n.Kind() != KindMember
	})

	if count != 5 {
		t.Errorf("pruned walk visited %d nodes, want 5", count)
	}
}

func TestDump(t *testing.T) {
	m, ok := Dump(&Binary{Op: "+", X: num(1), Y: ident("x")}).(map[string]any)
	if !ok {
		t.Fatal("Dump did not return a map")
	}

	if m["type"] != "BinaryExpression" || m["operator"] != "+" {
		t.Errorf("unexpected dump: %v", m)
	}

	right, ok := m["right"].(map[string]any)
	if !ok || right["name"] != "x" {
		t.Errorf("unexpected right operand: %v", m["right"])
	}
}
