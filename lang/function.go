package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/dengtao07/expression/lang/ast"
)

// MaxCallDepth bounds the nesting of closure calls within one evaluation.
const MaxCallDepth = 256

// Closure is the value of a function expression. It is callable from
// expressions and from Go.
//
// A closure captures the bindings in scope where it was created. Inside the
// body, captured strings are plain values and are not resolved as
// expression text.
type Closure struct {
	node     *ast.Function
	scope    map[string]any
	params   []string
	source   string
	resolver *Resolver
}

type callDepthKey struct{}

func callDepth(ctx context.Context) int {
	depth, _ := ctx.Value(callDepthKey{}).(int)

	return depth
}

// Call runs the function body with this as the receiver. Missing arguments
// are [Undefined]. The value of the first return statement reached is the
// result; a body without one returns [Undefined].
func (c *Closure) Call(ctx context.Context, this any, args ...any) (any, error) {
	depth := callDepth(ctx)
	if depth >= MaxCallDepth {
		return Undefined, ErrMaxDepthExceeded.With(
			slog.Int("call_depth", depth),
			slog.String("function", c.source),
		)
	}

	if err := ctx.Err(); err != nil {
		return Undefined, err
	}

	ctx = context.WithValue(ctx, callDepthKey{}, depth+1)

	f := &frame{
		bindings: make(map[string]any, len(c.scope)+len(c.params)),
		chain:    NewChain(),
		this:     this,
		hasThis:  true,
		plain:    true,
	}

	maps.Copy(f.bindings, c.scope)

	for i, name := range c.params {
		f.bindings[name] = argAt(args, i)
	}

	for _, stmt := range c.node.Body {
		res, err := c.resolver.eval(ctx, f, stmt)
		if err != nil {
			return Undefined, err
		}

		if res.IsBlocked() {
			return Undefined, errBlocked
		}

		if _, ok := stmt.(*ast.ReturnStatement); ok {
			return res.Value(), nil
		}
	}

	return Undefined, nil
}

// Params returns the parameter names.
func (c *Closure) Params() []string { return slices.Clone(c.params) }

// String returns the source text of the function.
func (c *Closure) String() string { return c.source }
