package lang

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"strings"

	"github.com/dengtao07/expression/lang/ast"
)

// frame is the evaluation state of one tree walk.
type frame struct {
	bindings map[string]any
	chain    *Chain
	this     any
	// hasThis is set inside function bodies, where "this" is the call
	// receiver instead of the "this" binding.
	hasThis bool
	// plain is set inside function bodies, whose bindings are captured values:
	// strings are not resolved as expression text.
	plain  bool
	dryRun bool
}

// Eval evaluates node against bindings. It never fails for unsupported or
// refused constructs; those produce a blocked Result. An error is returned
// only when resolving a variable bound to expression text fails or a called
// host function fails.
//
// With dryRun set, calls are validated but not invoked.
func (r *Resolver) Eval(
	ctx context.Context,
	node ast.Node,
	bindings map[string]any,
	chain *Chain,
	dryRun bool,
) (Result, error) {
	if chain == nil {
		chain = NewChain()
	}

	return r.eval(ctx, &frame{bindings: bindings, chain: chain, dryRun: dryRun}, node)
}

// refuse logs why node is blocked and returns the blocked result.
func (r *Resolver) refuse(
	ctx context.Context,
	node ast.Node,
	reason string,
	attrs ...slog.Attr,
) (Result, error) {
	if node != nil {
		attrs = append(attrs,
			slog.String("node", node.Kind().String()),
			slog.String("pos", node.Pos().String()),
		)
	}

	r.logger.TraceContext(ctx, "blocked", append(attrs, attrReason(reason))...)

	return Blocked, nil
}

//nolint:cyclop,funlen
func (r *Resolver) eval(ctx context.Context, f *frame, node ast.Node) (Result, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return ValueOf(n.Value), nil

	case *ast.Identifier:
		return r.identifier(ctx, f, n)

	case *ast.This:
		if f.hasThis {
			return ValueOf(f.this), nil
		}

		if v, ok := f.bindings["this"]; ok {
			return ValueOf(v), nil
		}

		return r.refuse(ctx, n, "no this binding")

	case *ast.Unary:
		return r.unary(ctx, f, n)

	case *ast.Binary:
		return r.binary(ctx, f, n)

	case *ast.Logical:
		return r.logical(ctx, f, n)

	case *ast.Array:
		elems, ok, err := r.list(ctx, f, n.Elements)
		if err != nil || !ok {
			return Blocked, err
		}

		return ValueOf(elems), nil

	case *ast.Object:
		return r.object(ctx, f, n)

	case *ast.Member:
		res, _, err := r.member(ctx, f, n)

		return res, err

	case *ast.Call:
		return r.call(ctx, f, n)

	case *ast.Conditional:
		return r.conditional(ctx, f, n)

	case *ast.ExpressionStatement:
		return r.eval(ctx, f, n.X)

	case *ast.ReturnStatement:
		if n.Arg == nil {
			return ValueOf(Undefined), nil
		}

		return r.eval(ctx, f, n.Arg)

	case *ast.Function:
		return r.function(ctx, f, n)

	case *ast.Template:
		return r.template(ctx, f, n)

	case *ast.TaggedTemplate:
		return r.taggedTemplate(ctx, f, n)

	case *ast.TemplateElement:
		return ValueOf(n.Cooked), nil

	case nil:
		return r.refuse(ctx, nil, "empty tree")
	}

	return r.refuse(ctx, node, "unsupported syntax")
}

func (r *Resolver) identifier(ctx context.Context, f *frame, n *ast.Identifier) (Result, error) {
	v, ok := f.bindings[n.Name]
	if !ok {
		return r.refuse(ctx, n, "unbound identifier", attrName(n.Name))
	}

	if lit, ok := v.(Literal); ok {
		return ValueOf(string(lit)), nil
	}

	if text, isText := v.(string); isText && !f.plain {
		res, err := r.resolve(ctx, n.Name, text, f.bindings, f.chain)
		if err != nil {
			return Blocked, err
		}

		return ValueOf(res), nil
	}

	return ValueOf(v), nil
}

// list evaluates nodes in order. ok is false if any of them is blocked.
func (r *Resolver) list(ctx context.Context, f *frame, nodes []ast.Node) ([]any, bool, error) {
	out := make([]any, len(nodes))

	for i, n := range nodes {
		res, err := r.eval(ctx, f, n)
		if err != nil || res.IsBlocked() {
			return nil, false, err
		}

		out[i] = res.Value()
	}

	return out, true, nil
}

func (r *Resolver) unary(ctx context.Context, f *frame, n *ast.Unary) (Result, error) {
	switch n.Op {
	case "+", "-", "~", "!":
	default:
		return r.refuse(ctx, n, "unsupported operator", slog.String("operator", n.Op))
	}

	x, err := r.eval(ctx, f, n.X)
	if err != nil || x.IsBlocked() {
		return Blocked, err
	}

	v := x.Value()

	switch n.Op {
	case "+":
		return ValueOf(toNumber(v)), nil
	case "-":
		return ValueOf(-toNumber(v)), nil
	case "~":
		return ValueOf(float64(^toInt32(v))), nil
	default:
		return ValueOf(!truthy(v)), nil
	}
}

func (r *Resolver) binary(ctx context.Context, f *frame, n *ast.Binary) (Result, error) {
	op := binaryOperators[n.Op]
	if op == nil {
		return r.refuse(ctx, n, "unsupported operator", slog.String("operator", n.Op))
	}

	x, err := r.eval(ctx, f, n.X)
	if err != nil || x.IsBlocked() {
		return Blocked, err
	}

	y, err := r.eval(ctx, f, n.Y)
	if err != nil || y.IsBlocked() {
		return Blocked, err
	}

	return ValueOf(op(x.Value(), y.Value())), nil
}

var binaryOperators = map[string]func(a, b any) any{
	"==":  func(a, b any) any { return looseEquals(a, b) },
	"!=":  func(a, b any) any { return !looseEquals(a, b) },
	"===": func(a, b any) any { return strictEquals(a, b) },
	"!==": func(a, b any) any { return !strictEquals(a, b) },
	"+":   add,
	"-":   func(a, b any) any { return toNumber(a) - toNumber(b) },
	"*":   func(a, b any) any { return toNumber(a) * toNumber(b) },
	"/":   func(a, b any) any { return toNumber(a) / toNumber(b) },
	"%":   func(a, b any) any { return math.Mod(toNumber(a), toNumber(b)) },
	"<": func(a, b any) any {
		c, ok := compare(a, b)

		return ok && c < 0
	},
	"<=": func(a, b any) any {
		c, ok := compare(a, b)

		return ok && c <= 0
	},
	">": func(a, b any) any {
		c, ok := compare(a, b)

		return ok && c > 0
	},
	">=": func(a, b any) any {
		c, ok := compare(a, b)

		return ok && c >= 0
	},
	"|": func(a, b any) any { return float64(toInt32(a) | toInt32(b)) },
	"&": func(a, b any) any { return float64(toInt32(a) & toInt32(b)) },
	"^": func(a, b any) any { return float64(toInt32(a) ^ toInt32(b)) },
}

// logical short-circuits && and ||. During a dry run both operands are
// validated.
func (r *Resolver) logical(ctx context.Context, f *frame, n *ast.Logical) (Result, error) {
	if n.Op != "&&" && n.Op != "||" {
		return r.refuse(ctx, n, "unsupported operator", slog.String("operator", n.Op))
	}

	x, err := r.eval(ctx, f, n.X)
	if err != nil || x.IsBlocked() {
		return Blocked, err
	}

	short := truthy(x.Value()) == (n.Op == "||")

	if short && !f.dryRun {
		return x, nil
	}

	y, err := r.eval(ctx, f, n.Y)
	if err != nil || y.IsBlocked() {
		return Blocked, err
	}

	if short {
		return x, nil
	}

	return y, nil
}

// conditional evaluates exactly one branch. During a dry run both branches
// are validated.
func (r *Resolver) conditional(ctx context.Context, f *frame, n *ast.Conditional) (Result, error) {
	test, err := r.eval(ctx, f, n.Test)
	if err != nil || test.IsBlocked() {
		return Blocked, err
	}

	taken, other := n.Consequent, n.Alternate
	if !truthy(test.Value()) {
		taken, other = other, taken
	}

	if f.dryRun {
		res, err := r.eval(ctx, f, other)
		if err != nil || res.IsBlocked() {
			return Blocked, err
		}
	}

	return r.eval(ctx, f, taken)
}

func (r *Resolver) object(ctx context.Context, f *frame, n *ast.Object) (Result, error) {
	obj := make(map[string]any, len(n.Properties))

	for _, p := range n.Properties {
		if p.Computed {
			return r.refuse(ctx, n, "computed property key")
		}

		var key string

		switch k := p.Key.(type) {
		case *ast.Identifier:
			key = k.Name
		case *ast.Literal:
			key = toString(k.Value)
		default:
			return r.refuse(ctx, n, "malformed property key")
		}

		if lit, ok := p.Value.(*ast.Literal); ok && lit.Value == nil {
			obj[key] = nil

			continue
		}

		v, err := r.eval(ctx, f, p.Value)
		if err != nil || v.IsBlocked() {
			return Blocked, err
		}

		obj[key] = v.Value()
	}

	return ValueOf(obj), nil
}

// member evaluates a property access. It also returns the evaluated object
// so that calls can use it as the receiver.
func (r *Resolver) member(ctx context.Context, f *frame, n *ast.Member) (res, recv Result, err error) {
	obj, err := r.eval(ctx, f, n.Object)
	if err != nil || obj.IsBlocked() {
		return Blocked, Blocked, err
	}

	ov := obj.Value()
	if isCallable(ov) {
		res, err = r.refuse(ctx, n, "property of a function")

		return res, obj, err
	}

	var key string

	if !n.Computed {
		id, ok := n.Property.(*ast.Identifier)
		if !ok {
			res, err = r.refuse(ctx, n, "malformed property")

			return res, obj, err
		}

		key = id.Name
	} else {
		prop, err := r.eval(ctx, f, n.Property)
		if err != nil || prop.IsBlocked() {
			return Blocked, obj, err
		}

		if prop.Value() == nil && !prop.IsUndefined() {
			res, err = r.refuse(ctx, n, "null property key")

			return res, obj, err
		}

		key = propertyKey(prop.Value())
	}

	if isBlockedProperty(key) {
		res, err = r.refuse(ctx, n, "blocked property", slog.String("property", key))

		return res, obj, err
	}

	if isNullish(ov) {
		if f.dryRun && obj.IsUndefined() {
			return obj, obj, nil
		}

		res, err = r.refuse(ctx, n, "property of null or undefined", slog.String("property", key))

		return res, obj, err
	}

	return ValueOf(getProperty(ov, key)), obj, nil
}

func (r *Resolver) call(ctx context.Context, f *frame, n *ast.Call) (Result, error) {
	var (
		callee Result
		recv   = ValueOf(Undefined)
		err    error
	)

	if m, ok := n.Callee.(*ast.Member); ok {
		callee, recv, err = r.member(ctx, f, m)
	} else {
		callee, err = r.eval(ctx, f, n.Callee)
	}

	if err != nil || callee.IsBlocked() {
		return Blocked, err
	}

	if !r.canCall(f, callee) {
		return r.refuse(ctx, n, "callee is not a function", attrType(callee.Value()))
	}

	this := Undefined
	if !recv.IsBlocked() {
		this = recv.Value()
	}

	args, ok, err := r.list(ctx, f, n.Args)
	if err != nil || !ok {
		return Blocked, err
	}

	if f.dryRun {
		return ValueOf(Undefined), nil
	}

	return r.apply(ctx, n, callee.Value(), this, args)
}

// canCall reports whether callee may be called. During a dry run with
// deferred callee checks, an undefined callee is accepted.
func (r *Resolver) canCall(f *frame, callee Result) bool {
	if isCallable(callee.Value()) {
		return true
	}

	return f.dryRun && r.callee == CalleeDeferred && callee.IsUndefined()
}

func (r *Resolver) apply(ctx context.Context, n ast.Node, fn, this any, args []any) (Result, error) {
	v, err := invoke(ctx, fn, this, args)
	if err != nil {
		err = callError(err, fn)
		if err == errBlocked {
			return r.refuse(ctx, n, "function body refused")
		}

		r.logger.TraceContext(ctx, "call failed",
			slog.String("pos", n.Pos().String()),
			slog.Any("error", err),
		)

		return Blocked, err
	}

	return ValueOf(v), nil
}

func (r *Resolver) template(ctx context.Context, f *frame, n *ast.Template) (Result, error) {
	var sb strings.Builder

	for i, q := range n.Quasis {
		sb.WriteString(q.Cooked)

		if i < len(n.Exprs) {
			v, err := r.eval(ctx, f, n.Exprs[i])
			if err != nil || v.IsBlocked() {
				return Blocked, err
			}

			sb.WriteString(toString(v.Value()))
		}
	}

	return ValueOf(sb.String()), nil
}

// taggedTemplate calls the tag with the cooked text segments as its first
// argument followed by the substitution values.
func (r *Resolver) taggedTemplate(ctx context.Context, f *frame, n *ast.TaggedTemplate) (Result, error) {
	tag, err := r.eval(ctx, f, n.Tag)
	if err != nil || tag.IsBlocked() {
		return Blocked, err
	}

	if !r.canCall(f, tag) {
		return r.refuse(ctx, n, "tag is not a function", attrType(tag.Value()))
	}

	strs := make([]any, len(n.Quasi.Quasis))
	for i, q := range n.Quasi.Quasis {
		strs[i] = q.Cooked
	}

	values, ok, err := r.list(ctx, f, n.Quasi.Exprs)
	if err != nil || !ok {
		return Blocked, err
	}

	if f.dryRun {
		return ValueOf(Undefined), nil
	}

	return r.apply(ctx, n, tag.Value(), Undefined, append([]any{strs}, values...))
}

// function validates a function expression and builds its closure.
//
// The body is first evaluated as a dry run with every parameter bound to
// [Undefined]; if any statement is blocked, so is the function. The
// validated node is then unparsed and parsed again, and the closure keeps the
// new tree together with a snapshot of the current bindings.
func (r *Resolver) function(ctx context.Context, f *frame, n *ast.Function) (Result, error) {
	params := make([]string, len(n.Params))

	for i, p := range n.Params {
		id, ok := p.(*ast.Identifier)
		if !ok {
			return r.refuse(ctx, n, "parameter is not a simple name")
		}

		params[i] = id.Name
	}

	scope := make(map[string]any, len(f.bindings))
	maps.Copy(scope, f.bindings)

	check := &frame{
		bindings: make(map[string]any, len(scope)+len(params)),
		chain:    f.chain,
		this:     Undefined,
		hasThis:  true,
		plain:    f.plain,
		dryRun:   true,
	}

	maps.Copy(check.bindings, scope)

	for _, name := range params {
		check.bindings[name] = Undefined
	}

	for _, stmt := range n.Body {
		res, err := r.eval(ctx, check, stmt)
		if err != nil || res.IsBlocked() {
			return Blocked, err
		}
	}

	text, err := r.grammar.Unparse(n)
	if err != nil {
		return r.refuse(ctx, n, "unparse failed", slog.Any("error", err))
	}

	tree, err := r.grammar.Parse(text)
	if err != nil {
		return r.refuse(ctx, n, "reparse failed", slog.Any("error", err))
	}

	fn := functionNode(tree)
	if fn == nil {
		return r.refuse(ctx, n, "reparse produced a different node")
	}

	r.logger.TraceContext(ctx, "function",
		slog.String("source", text),
		slog.Any("params", params),
		attrScope(scope),
	)

	return ValueOf(&Closure{
		node:     fn,
		scope:    scope,
		params:   params,
		source:   text,
		resolver: r,
	}), nil
}

func functionNode(tree ast.Node) *ast.Function {
	if stmt, ok := tree.(*ast.ExpressionStatement); ok {
		tree = stmt.X
	}

	fn, _ := tree.(*ast.Function)

	return fn
}
