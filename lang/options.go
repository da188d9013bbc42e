package lang

import (
	"strings"

	"github.com/dengtao07/expression/lang/ast"
	"github.com/dengtao07/expression/lang/parser"
	"github.com/dengtao07/expression/log"
)

// Grammar converts expression text into a syntax tree and back.
//
// Parse must return a tree rooted at a single expression, usually wrapped in
// an *ast.ExpressionStatement. Unparse is used only for function expressions
// and must produce text that Parse turns into an equivalent tree.
type Grammar interface {
	Parse(text string) (ast.Node, error)
	Unparse(node ast.Node) (string, error)
}

// CalleeCheck selects how calls inside a function body are checked while the
// body is validated.
type CalleeCheck int

const (
	// CalleeEager refuses any call whose callee is not invocable during
	// validation, including calls through parameters.
	CalleeEager CalleeCheck = iota
	// CalleeDeferred accepts callees that are unknown during validation (such
	// as parameters) and checks them when the function is invoked.
	CalleeDeferred
)

var calleeCheckNames = [...]string{
	CalleeEager:    "eager",
	CalleeDeferred: "deferred",
}

func (c CalleeCheck) String() string {
	if c >= 0 && int(c) < len(calleeCheckNames) {
		return calleeCheckNames[c]
	}

	return calleeCheckNames[CalleeEager]
}

// CalleeChecks returns the names accepted by [ParseCalleeCheck].
func CalleeChecks() []string { return calleeCheckNames[:] }

// ParseCalleeCheck returns the CalleeCheck named s (case-insensitive).
// Unknown names select [CalleeEager].
func ParseCalleeCheck(s string) CalleeCheck {
	for i, name := range calleeCheckNames {
		if strings.EqualFold(s, name) {
			return CalleeCheck(i)
		}
	}

	return CalleeEager
}

// DefaultMaxDepth is the default limit on nested variable resolution.
// Zero means unlimited.
const DefaultMaxDepth = 0

// Option configures a [Resolver].
type Option func(*Resolver)

// WithGrammar sets the grammar adapter used to parse expression text.
func WithGrammar(g Grammar) Option {
	return func(r *Resolver) {
		if g != nil {
			r.grammar = g
		}
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithCalleeCheck selects how calls are checked while validating function
// bodies.
func WithCalleeCheck(c CalleeCheck) Option {
	return func(r *Resolver) {
		r.callee = c
	}
}

// WithMaxDepth limits how many variables may be in the middle of resolution
// at once. Resolving past the limit fails with [ErrMaxDepthExceeded].
// Zero or a negative depth means unlimited.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		r.maxDepth = max(depth, 0)
	}
}

// WithCache shares parsed syntax trees through c. A nil cache disables
// caching.
func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func applyDefaults(r *Resolver) {
	r.grammar = parser.Grammar{}
	r.callee = CalleeEager
	r.maxDepth = DefaultMaxDepth
}

func applyOptions(r *Resolver, opts ...Option) {
	for _, opt := range opts {
		opt(r)
	}
}
