// Package lang evaluates a small, sandboxed expression language.
//
// An expression is evaluated against bindings: a map from variable names to
// values. A binding whose value is a string is itself expression text; it is
// resolved when an expression first refers to it, so bindings may refer to
// each other. Use [Literal] to bind a plain string.
//
//	bindings := map[string]any{
//	  "base":  "10",
//	  "limit": "base * 2",
//	  "name":  lang.Literal("demo"),
//	}
//
//	v, err := lang.Resolve(ctx, "limit", "base * 2", bindings) // 20
//
// # Syntax
//
// The default grammar is a subset of JavaScript expressions: literals,
// arrays, objects, member access, calls, the conditional operator, template
// literals, tagged templates and function expressions:
//
//	[1, 2, 3].map(function (x) { return x * factor })
//	`${user.name} has ${items.length} items`
//
// Other grammars can be plugged in with [WithGrammar].
//
// # Sandbox
//
// Evaluation never leaves the expression. The following are refused:
//
//   - reading the constructor or __proto__ property of any value
//   - reading any property of a function value
//   - calling anything that is not a function
//   - assignment, update, new, sequence and arrow expressions
//   - typeof, void, delete, in, instanceof, ?? and the shift operators
//   - identifiers without a binding
//
// A function expression is validated before it is built: its body is
// evaluated once without invoking any call, with every parameter undefined.
// If anything in the body is refused, so is the function.
//
// # Errors
//
// Refusals are not distinguished from unsupported syntax or missing values;
// all of them surface as [ErrUndefinedVariable]. Text that does not parse
// fails with [ErrSyntax] and a variable that refers back to itself fails
// with [ErrCircularReference]. The reason for a refusal is logged at trace
// level when a logger is configured with [WithLogger].
package lang
