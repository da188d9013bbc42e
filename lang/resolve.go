package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/klauspost/readahead"

	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/log"
)

// Resolver resolves variables bound to expression text.
//
// A Resolver is immutable once built and safe for concurrent use. Each
// top-level call owns its own resolution [Chain].
type Resolver struct {
	grammar  Grammar
	logger   log.Logger
	cache    *Cache
	callee   CalleeCheck
	maxDepth int
}

// New returns a Resolver configured by opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{}

	applyDefaults(r)
	applyOptions(r, opts...)

	return r
}

// anonymous names the text given to Evaluate in the resolution chain. It can
// never be an identifier, so it never collides with a binding.
const anonymous = "<expression>"

var defaultResolver = sync.OnceValue(func() *Resolver { return New() })

// Resolve resolves name, bound to text, using the default Resolver.
func Resolve(ctx context.Context, name, text string, bindings map[string]any) (any, error) {
	return defaultResolver().Resolve(ctx, name, text, bindings)
}

// Evaluate evaluates text using the default Resolver.
func Evaluate(ctx context.Context, text string, bindings map[string]any) (any, error) {
	return defaultResolver().Evaluate(ctx, text, bindings)
}

// Resolve evaluates text, the expression bound to name, against bindings.
//
// Binding values that are strings are themselves expression text and are
// resolved on first use; any other value is used as is. Text wrapped whole in
// a single pair of matching quotes on one line is a string literal and is
// returned without its quotes.
//
// Every error matches one of the package's sentinel errors, except that a
// canceled ctx returns ctx.Err().
func (r *Resolver) Resolve(
	ctx context.Context,
	name, text string,
	bindings map[string]any,
) (any, error) {
	return r.resolve(ctx, name, text, bindings, NewChain())
}

// Evaluate evaluates text against bindings as an unnamed expression.
func (r *Resolver) Evaluate(ctx context.Context, text string, bindings map[string]any) (any, error) {
	return r.resolve(ctx, anonymous, text, bindings, NewChain())
}

// EvaluateReader reads the expression text from rd and evaluates it.
func (r *Resolver) EvaluateReader(
	ctx context.Context,
	rd io.Reader,
	bindings map[string]any,
) (any, error) {
	ra := readahead.NewReader(rd)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, err
	}

	r.logger.TraceContext(ctx, "read input", slog.Int("source_bytes", len(data)))

	return r.Evaluate(ctx, strings.TrimSpace(string(data)), bindings)
}

// Parse parses text with the configured grammar, through the cache if any.
// Errors match [ErrSyntax].
func (r *Resolver) Parse(ctx context.Context, text string) (ast.Node, error) {
	tree, err := r.parse(text)
	if err != nil {
		r.logger.TraceContext(ctx, "syntax error",
			slog.String("text", text),
			slog.Any("detail", err),
		)

		return nil, ErrSyntax
	}

	return tree, nil
}

func (r *Resolver) parse(text string) (ast.Node, error) {
	if r.cache != nil {
		return r.cache.parse(r.grammar, text)
	}

	return r.grammar.Parse(text)
}

func (r *Resolver) resolve(
	ctx context.Context,
	name, text string,
	bindings map[string]any,
	chain *Chain,
) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := chain.Push(name); err != nil {
		r.logger.TraceContext(ctx, "circular reference", attrName(name), attrChain(chain))

		return nil, err
	}

	defer chain.Pop(name)

	if r.maxDepth > 0 && chain.Len() > r.maxDepth {
		return nil, ErrMaxDepthExceeded.With(
			attrName(name),
			attrChain(chain),
			slog.Int("max_depth", r.maxDepth),
		)
	}

	r.logger.TraceContext(ctx, "resolve",
		attrName(name),
		slog.Int("depth", chain.Len()),
	)

	if s, ok := quotedLiteral(text); ok {
		r.logger.TraceContext(ctx, "string literal", attrName(name))

		return s, nil
	}

	tree, err := r.Parse(ctx, text)
	if err != nil {
		return nil, ErrSyntax.With(attrName(name))
	}

	res, err := r.eval(ctx, &frame{bindings: bindings, chain: chain}, tree)
	if err != nil {
		return nil, err
	}

	if res.IsBlocked() || res.IsUndefined() {
		r.logger.TraceContext(ctx, "no value", attrName(name), slog.Bool("blocked", res.IsBlocked()))

		return nil, ErrUndefinedVariable.With(attrName(name))
	}

	r.logger.TraceContext(ctx, "resolved", attrName(name), attrType(res.Value()))

	return res.Value(), nil
}

// quotedLiteral reports whether text is a single-line string wrapped in
// matching single or double quotes, and returns the text between them.
// The quotes need not delimit a single literal: "'a' + 'b'" yields "a' + 'b".
func quotedLiteral(text string) (string, bool) {
	if len(text) < 2 {
		return "", false
	}

	q := text[0]
	if (q != '\'' && q != '"') || text[len(text)-1] != q {
		return "", false
	}

	inner := text[1 : len(text)-1]
	if strings.ContainsAny(inner, "\n\r\u2028\u2029") {
		return "", false
	}

	return inner, true
}
