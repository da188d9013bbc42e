package lang

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"
)

// undefined is the type of [Undefined].
type undefined struct{}

// Undefined is the "no value" value: the result of reading a missing
// property, of a function without a return statement, and the placeholder
// bound to parameters while a function body is validated.
//
// It is distinct from nil, which represents null.
var Undefined any = undefined{}

func (undefined) String() string { return "undefined" }

// MarshalJSON encodes Undefined as null.
func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalYAML encodes Undefined as null.
func (undefined) MarshalYAML() (any, error) { return nil, nil }

// Literal is a string binding that is used as is rather than resolved as
// expression text.
type Literal string

func isUndefined(v any) bool {
	_, ok := v.(undefined)

	return ok
}

func isNullish(v any) bool { return v == nil || isUndefined(v) }

// number converts any Go numeric value to float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uintptr:
		return float64(n), true
	}

	return 0, false
}

// isCallable reports whether v can be the target of a call.
func isCallable(v any) bool {
	switch v.(type) {
	case nil, undefined:
		return false
	case Callable:
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// isArray reports whether v is a Go slice or array, other than a byte slice.
func isArray(v any) bool {
	if _, ok := v.([]any); ok {
		return true
	}

	if v == nil {
		return false
	}

	t := reflect.TypeOf(v)

	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}

	return false
}

// elements returns the elements of an array value.
func elements(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}

	if !isArray(v) {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())

	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// isPrimitive reports whether v is undefined, null, a boolean, a number or a
// string.
func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, undefined, bool, string:
		return true
	}

	_, ok := number(v)

	return ok
}

// typeOf returns the result of the typeof operator.
func typeOf(v any) string {
	switch v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "object"
	case bool:
		return "boolean"
	case string:
		return "string"
	}

	if _, ok := number(v); ok {
		return "number"
	}

	if isCallable(v) {
		return "function"
	}

	return "object"
}

// truthy converts v to a boolean.
func truthy(v any) bool {
	switch b := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}

	if f, ok := number(v); ok {
		return f != 0 && !math.IsNaN(f)
	}

	return true
}

// toPrimitive converts objects to their string form; primitives are returned
// unchanged.
func toPrimitive(v any) any {
	if isPrimitive(v) {
		return v
	}

	return toString(v)
}

// toNumber converts v to a number.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case undefined:
		return math.NaN()
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}

		return 0
	case string:
		return stringToNumber(x)
	}

	if f, ok := number(v); ok {
		return f
	}

	if isCallable(v) {
		return math.NaN()
	}

	return stringToNumber(toString(v))
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0

		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}

		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.Contains(s, "_") {
				return math.NaN()
			}

			return float64(u)
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if !isDecimalLiteral(s) {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeError(err) {
		return math.NaN()
	}

	return f
}

// isDecimalLiteral reports whether s is an optionally signed decimal number
// with optional fraction and exponent.
func isDecimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}

	if i < len(s) && s[i] == '.' {
		i++

		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}

	if digits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}

		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}

		if exp == 0 {
			return false
		}
	}

	return i == len(s)
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)

	return ok && ne.Err == strconv.ErrRange
}

// toInt32 converts v to a 32-bit signed integer as the bitwise operators do.
func toInt32(v any) int32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	f = math.Mod(math.Trunc(f), 1<<32)
	if f < 0 {
		f += 1 << 32
	}

	return int32(uint32(f))
}

// formatNumber formats f the way Number.prototype.toString does.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f < 0:
		return "-" + formatNumber(-f)
	}

	// Shortest round-trip digits d1.d2...dk and decimal exponent.
	e := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(e, "e")
	digits := strings.Replace(mant, ".", "", 1)
	k := len(digits)
	x, _ := strconv.Atoi(exp)
	n := x + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}

	abs := strconv.Itoa(max(n-1, 1-n))

	if k == 1 {
		return digits + "e" + sign + abs
	}

	return digits[:1] + "." + digits[1:] + "e" + sign + abs
}

// toString converts v to a string.
func toString(v any) string {
	switch x := v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case *Closure:
		return x.String()
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	if f, ok := number(v); ok {
		return formatNumber(f)
	}

	if elems, ok := elements(v); ok {
		parts := make([]string, len(elems))
		for i, e := range elems {
			if !isNullish(e) {
				parts[i] = toString(e)
			}
		}

		return strings.Join(parts, ",")
	}

	if b, ok := v.([]byte); ok {
		return string(b)
	}

	if isCallable(v) {
		return "function () { [native code] }"
	}

	return "[object Object]"
}

// strictEquals implements the === operator.
func strictEquals(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)

		return ok && fa == fb
	}

	switch x := a.(type) {
	case undefined:
		return isUndefined(b)
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)

		return ok && x == y
	case bool:
		y, ok := b.(bool)

		return ok && x == y
	}

	return sameReference(a, b)
}

// sameReference compares two non-primitive values by identity.
func sameReference(a, b any) bool {
	if a == nil || b == nil {
		return false
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan,
		reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}

	if ra.Type().Comparable() {
		return a == b
	}

	return false
}

// looseEquals implements the == operator.
func looseEquals(a, b any) bool {
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}

	pa, pb := isPrimitive(a), isPrimitive(b)

	switch {
	case pa && pb:
	case !pa && !pb:
		return sameReference(a, b)
	case !pa:
		a = toPrimitive(a)
	default:
		b = toPrimitive(b)
	}

	_, sa := a.(string)
	_, sb := b.(string)

	if sa && sb {
		return a == b
	}

	_, ba := a.(bool)
	_, bb := b.(bool)

	if ba && bb {
		return a == b
	}

	return toNumber(a) == toNumber(b)
}

// compare implements the relational operators. It reports the ordering of a
// and b, or ok=false when either operand is NaN.
func compare(a, b any) (cmp int, ok bool) {
	a, b = toPrimitive(a), toPrimitive(b)

	sa, isStrA := a.(string)
	sb, isStrB := b.(string)

	if isStrA && isStrB {
		return compareUTF16(sa, sb), true
	}

	x, y := toNumber(a), toNumber(b)

	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return 0, false
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}

	return 0, true
}

// compareUTF16 orders strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))

	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}

			return 1
		}
	}

	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}

	return 0
}

// add implements the + operator.
func add(a, b any) any {
	a, b = toPrimitive(a), toPrimitive(b)

	_, sa := a.(string)
	_, sb := b.(string)

	if sa || sb {
		return toString(a) + toString(b)
	}

	return toNumber(a) + toNumber(b)
}

// sameValueZero is the equality used by Array.prototype.includes.
func sameValueZero(a, b any) bool {
	fa, okA := number(a)
	fb, okB := number(b)

	if okA && okB && math.IsNaN(fa) && math.IsNaN(fb) {
		return true
	}

	return strictEquals(a, b)
}
