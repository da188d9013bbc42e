package lang

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	errNotString   = errors.New("TypeError: receiver is not a string")
	errNotNumber   = errors.New("TypeError: receiver is not a number")
	errNotArray    = errors.New("TypeError: receiver is not an array")
	errNotFunction = errors.New("TypeError: callback is not a function")
	errEmptyReduce = errors.New("TypeError: reduce of empty array with no initial value")
	errRange       = errors.New("RangeError: argument out of range")
)

var stringMethods map[string]Func

var numberMethods map[string]Func

var arrayMethods map[string]Func

func init() {
	stringMethods = map[string]Func{
		"toUpperCase": stringFunc(func(s string, _ []any) (any, error) {
			return cases.Upper(language.Und).String(s), nil
		}),
		"toLowerCase": stringFunc(func(s string, _ []any) (any, error) {
			return cases.Lower(language.Und).String(s), nil
		}),
		"trim": stringFunc(func(s string, _ []any) (any, error) {
			return strings.TrimFunc(s, unicode.IsSpace), nil
		}),
		"trimStart": stringFunc(func(s string, _ []any) (any, error) {
			return strings.TrimLeftFunc(s, unicode.IsSpace), nil
		}),
		"trimEnd": stringFunc(func(s string, _ []any) (any, error) {
			return strings.TrimRightFunc(s, unicode.IsSpace), nil
		}),
		"includes": stringFunc(func(s string, args []any) (any, error) {
			return strings.Contains(s, toString(argAt(args, 0))), nil
		}),
		"startsWith": stringFunc(func(s string, args []any) (any, error) {
			return strings.HasPrefix(s, toString(argAt(args, 0))), nil
		}),
		"endsWith": stringFunc(func(s string, args []any) (any, error) {
			return strings.HasSuffix(s, toString(argAt(args, 0))), nil
		}),
		"indexOf": stringFunc(func(s string, args []any) (any, error) {
			i := strings.Index(s, toString(argAt(args, 0)))
			if i < 0 {
				return -1.0, nil
			}

			return float64(len(utf16.Encode([]rune(s[:i])))), nil
		}),
		"slice": stringFunc(func(s string, args []any) (any, error) {
			units := utf16.Encode([]rune(s))
			lo, hi := sliceBounds(len(units), argAt(args, 0), argAt(args, 1))

			return string(utf16.Decode(units[lo:hi])), nil
		}),
		"charAt": stringFunc(func(s string, args []any) (any, error) {
			units := utf16.Encode([]rune(s))

			i := toInteger(argAt(args, 0))
			if i < 0 || i >= float64(len(units)) {
				return "", nil
			}

			return string(utf16.Decode(units[int(i) : int(i)+1])), nil
		}),
		"split": stringFunc(func(s string, args []any) (any, error) {
			limit := math.MaxInt32
			if l := argAt(args, 1); !isUndefined(l) {
				limit = int(uint32(toInt32(l)))
			}

			var parts []string

			if sep := argAt(args, 0); isUndefined(sep) {
				parts = []string{s}
			} else {
				parts = strings.Split(s, toString(sep))
			}

			out := make([]any, 0, min(len(parts), limit))
			for _, p := range parts {
				if len(out) >= limit {
					break
				}

				out = append(out, p)
			}

			return out, nil
		}),
		"concat": stringFunc(func(s string, args []any) (any, error) {
			var sb strings.Builder

			sb.WriteString(s)

			for _, a := range args {
				sb.WriteString(toString(a))
			}

			return sb.String(), nil
		}),
		"repeat": stringFunc(func(s string, args []any) (any, error) {
			n := toInteger(argAt(args, 0))
			if n < 0 || math.IsInf(n, 0) || n*float64(len(s)) > 1<<28 {
				return Undefined, errRange
			}

			return strings.Repeat(s, int(n)), nil
		}),
		"toString": stringFunc(func(s string, _ []any) (any, error) {
			return s, nil
		}),
	}

	stringMethods["replace"] = replaceFunc(1)
	stringMethods["replaceAll"] = replaceFunc(-1)

	numberMethods = map[string]Func{
		"toFixed": numberFunc(func(f float64, args []any) (any, error) {
			d := toInteger(argAt(args, 0))
			if d < 0 || d > 100 {
				return Undefined, errRange
			}

			if math.Abs(f) >= 1e21 || math.IsNaN(f) || math.IsInf(f, 0) {
				return formatNumber(f), nil
			}

			return strconv.FormatFloat(f, 'f', int(d), 64), nil
		}),
		"toString": numberFunc(func(f float64, args []any) (any, error) {
			radix := argAt(args, 0)
			if isUndefined(radix) {
				return formatNumber(f), nil
			}

			r := toInteger(radix)
			if r < 2 || r > 36 {
				return Undefined, errRange
			}

			if r == 10 || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
				return formatNumber(f), nil
			}

			return strconv.FormatInt(int64(f), int(r)), nil
		}),
	}

	arrayMethods = map[string]Func{
		"join": arrayFunc(func(_ context.Context, a []any, args []any) (any, error) {
			sep := ","
			if s := argAt(args, 0); !isUndefined(s) {
				sep = toString(s)
			}

			parts := make([]string, len(a))
			for i, e := range a {
				if !isNullish(e) {
					parts[i] = toString(e)
				}
			}

			return strings.Join(parts, sep), nil
		}),
		"toString": arrayFunc(func(_ context.Context, a []any, _ []any) (any, error) {
			return toString(a), nil
		}),
		"includes": arrayFunc(func(_ context.Context, a []any, args []any) (any, error) {
			for _, e := range a {
				if sameValueZero(e, argAt(args, 0)) {
					return true, nil
				}
			}

			return false, nil
		}),
		"indexOf": arrayFunc(func(_ context.Context, a []any, args []any) (any, error) {
			for i, e := range a {
				if strictEquals(e, argAt(args, 0)) {
					return float64(i), nil
				}
			}

			return -1.0, nil
		}),
		"slice": arrayFunc(func(_ context.Context, a []any, args []any) (any, error) {
			lo, hi := sliceBounds(len(a), argAt(args, 0), argAt(args, 1))

			return append([]any{}, a[lo:hi]...), nil
		}),
		"concat": arrayFunc(func(_ context.Context, a []any, args []any) (any, error) {
			out := append([]any{}, a...)

			for _, arg := range args {
				if elems, ok := elements(arg); ok {
					out = append(out, elems...)
				} else {
					out = append(out, arg)
				}
			}

			return out, nil
		}),
		"map": iterateFunc(func(a []any, visit visitor) (any, error) {
			out := make([]any, len(a))

			for i := range a {
				v, err := visit(i)
				if err != nil {
					return Undefined, err
				}

				out[i] = v
			}

			return out, nil
		}),
		"filter": iterateFunc(func(a []any, visit visitor) (any, error) {
			out := []any{}

			for i := range a {
				v, err := visit(i)
				if err != nil {
					return Undefined, err
				}

				if truthy(v) {
					out = append(out, a[i])
				}
			}

			return out, nil
		}),
		"forEach": iterateFunc(func(a []any, visit visitor) (any, error) {
			for i := range a {
				if _, err := visit(i); err != nil {
					return Undefined, err
				}
			}

			return Undefined, nil
		}),
		"some": iterateFunc(func(a []any, visit visitor) (any, error) {
			for i := range a {
				v, err := visit(i)
				if err != nil {
					return Undefined, err
				}

				if truthy(v) {
					return true, nil
				}
			}

			return false, nil
		}),
		"every": iterateFunc(func(a []any, visit visitor) (any, error) {
			for i := range a {
				v, err := visit(i)
				if err != nil {
					return Undefined, err
				}

				if !truthy(v) {
					return false, nil
				}
			}

			return true, nil
		}),
		"find": iterateFunc(func(a []any, visit visitor) (any, error) {
			for i := range a {
				v, err := visit(i)
				if err != nil {
					return Undefined, err
				}

				if truthy(v) {
					return a[i], nil
				}
			}

			return Undefined, nil
		}),
		"findIndex": iterateFunc(func(a []any, visit visitor) (any, error) {
			for i := range a {
				v, err := visit(i)
				if err != nil {
					return Undefined, err
				}

				if truthy(v) {
					return float64(i), nil
				}
			}

			return -1.0, nil
		}),
		"reduce": arrayFunc(func(ctx context.Context, a []any, args []any) (any, error) {
			fn := argAt(args, 0)
			if !isCallable(fn) {
				return Undefined, errNotFunction
			}

			i := 0

			acc := argAt(args, 1)
			if len(args) < 2 {
				if len(a) == 0 {
					return Undefined, errEmptyReduce
				}

				acc, i = a[0], 1
			}

			for ; i < len(a); i++ {
				v, err := invoke(ctx, fn, Undefined, []any{acc, a[i], float64(i), a})
				if err != nil {
					return Undefined, err
				}

				acc = v
			}

			return acc, nil
		}),
	}
}

func stringFunc(fn func(s string, args []any) (any, error)) Func {
	return func(_ context.Context, this any, args ...any) (any, error) {
		s, ok := this.(string)
		if !ok {
			return Undefined, errNotString
		}

		return fn(s, args)
	}
}

func numberFunc(fn func(f float64, args []any) (any, error)) Func {
	return func(_ context.Context, this any, args ...any) (any, error) {
		f, ok := number(this)
		if !ok {
			return Undefined, errNotNumber
		}

		return fn(f, args)
	}
}

func arrayFunc(fn func(ctx context.Context, a []any, args []any) (any, error)) Func {
	return func(ctx context.Context, this any, args ...any) (any, error) {
		a, ok := elements(this)
		if !ok {
			return Undefined, errNotArray
		}

		return fn(ctx, a, args)
	}
}

// visitor calls an array callback with the element at index i.
type visitor func(i int) (any, error)

// iterateFunc builds an array method that calls its first argument with
// (element, index, array) for the elements it visits.
func iterateFunc(fn func(a []any, visit visitor) (any, error)) Func {
	return arrayFunc(func(ctx context.Context, a []any, args []any) (any, error) {
		cb := argAt(args, 0)
		if !isCallable(cb) {
			return Undefined, errNotFunction
		}

		thisArg := argAt(args, 1)

		return fn(a, func(i int) (any, error) {
			return invoke(ctx, cb, thisArg, []any{a[i], float64(i), a})
		})
	})
}

func replaceFunc(n int) Func {
	return func(ctx context.Context, this any, args ...any) (any, error) {
		s, ok := this.(string)
		if !ok {
			return Undefined, errNotString
		}

		pattern := toString(argAt(args, 0))
		repl := argAt(args, 1)

		if !isCallable(repl) {
			return strings.Replace(s, pattern, toString(repl), n), nil
		}

		var (
			sb    strings.Builder
			count int
		)

		for {
			i := strings.Index(s, pattern)
			if i < 0 || (n >= 0 && count >= n) {
				break
			}

			v, err := invoke(ctx, repl, Undefined, []any{pattern})
			if err != nil {
				return Undefined, err
			}

			sb.WriteString(s[:i])
			sb.WriteString(toString(v))

			count++

			if pattern == "" {
				if s == "" {
					break
				}

				_, size := utf8.DecodeRuneInString(s)
				sb.WriteString(s[:size])
				s = s[size:]

				continue
			}

			s = s[i+len(pattern):]
		}

		sb.WriteString(s)

		return sb.String(), nil
	}
}

func boolToString(_ context.Context, this any, _ ...any) (any, error) {
	b, ok := this.(bool)
	if !ok {
		return Undefined, errors.New("TypeError: receiver is not a boolean")
	}

	return strconv.FormatBool(b), nil
}

// toInteger truncates toNumber(v) toward zero, mapping NaN to 0.
func toInteger(v any) float64 {
	f := toNumber(v)
	if math.IsNaN(f) {
		return 0
	}

	return math.Trunc(f)
}

// sliceBounds resolves relative start and end arguments against length n.
func sliceBounds(n int, start, end any) (lo, hi int) {
	rel := func(v any, def int) int {
		if isUndefined(v) {
			return def
		}

		f := toInteger(v)
		if f < 0 {
			return int(max(float64(n)+f, 0))
		}

		return int(min(f, float64(n)))
	}

	lo, hi = rel(start, 0), rel(end, n)
	if hi < lo {
		hi = lo
	}

	return lo, hi
}
