package lang

// Result is the outcome of evaluating one syntax tree node.
//
// A Result is blocked when the sandbox refused to produce a value, undefined
// when evaluation produced no value, and otherwise holds a concrete value
// (which may be nil, the null value).
type Result struct {
	value any
	state resultState
}

type resultState uint8

const (
	stateValue resultState = iota
	stateUndefined
	stateBlocked
)

// Blocked is the result of a refused evaluation.
var Blocked = Result{state: stateBlocked}

// ValueOf returns a Result holding v. The [Undefined] value yields an
// undefined Result.
func ValueOf(v any) Result {
	if isUndefined(v) {
		return Result{state: stateUndefined}
	}

	return Result{value: v}
}

// IsBlocked reports whether the sandbox refused the evaluation.
func (r Result) IsBlocked() bool { return r.state == stateBlocked }

// IsUndefined reports whether evaluation produced no value.
func (r Result) IsUndefined() bool { return r.state == stateUndefined }

// Value returns the concrete value. It returns [Undefined] for blocked and
// undefined results.
func (r Result) Value() any {
	if r.state != stateValue {
		return Undefined
	}

	return r.value
}

func (r Result) String() string {
	switch r.state {
	case stateBlocked:
		return "<blocked>"
	case stateUndefined:
		return "undefined"
	default:
		return toString(r.value)
	}
}
