package lang

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Callable is implemented by values that expressions may call.
//
// this is the receiver: the object of a member expression used as the callee,
// or [Undefined] for a plain call.
type Callable interface {
	Call(ctx context.Context, this any, args ...any) (any, error)
}

// Func adapts an ordinary function to [Callable].
type Func func(ctx context.Context, this any, args ...any) (any, error)

// Call calls f.
func (f Func) Call(ctx context.Context, this any, args ...any) (any, error) {
	return f(ctx, this, args...)
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// invoke calls fn, which must satisfy isCallable. Any other Go function is
// called by reflection. Panics are recovered and returned as errors.
func invoke(ctx context.Context, fn, this any, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Undefined

			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
	}()

	if c, ok := fn.(Callable); ok {
		return c.Call(ctx, this, args...)
	}

	return callReflect(ctx, reflect.ValueOf(fn), args)
}

// callReflect calls a Go function value. A leading context.Context parameter
// receives ctx. Arguments are converted to the parameter types; missing
// arguments become zero values and surplus arguments are dropped.
func callReflect(ctx context.Context, fv reflect.Value, args []any) (any, error) {
	ft := fv.Type()
	n := ft.NumIn()
	in := make([]reflect.Value, 0, max(n, len(args)))

	first := 0
	if n > 0 && ft.In(0) == contextType {
		in = append(in, reflect.ValueOf(&ctx).Elem())
		first = 1
	}

	fixed := n
	if ft.IsVariadic() {
		fixed = n - 1
	}

	for i := first; i < fixed; i++ {
		v, err := convertArg(ctx, argAt(args, i-first), ft.In(i))
		if err != nil {
			return Undefined, fmt.Errorf("argument %d: %w", i-first+1, err)
		}

		in = append(in, v)
	}

	if ft.IsVariadic() {
		elem := ft.In(n - 1).Elem()

		for j := fixed - first; j < len(args); j++ {
			v, err := convertArg(ctx, args[j], elem)
			if err != nil {
				return Undefined, fmt.Errorf("argument %d: %w", j+1, err)
			}

			in = append(in, v)
		}
	}

	return results(ft, fv.Call(in))
}

func results(ft reflect.Type, out []reflect.Value) (any, error) {
	if k := len(out); k > 0 && ft.Out(k-1) == errorType {
		if e := out[k-1]; !e.IsNil() {
			err, _ := e.Interface().(error)

			return Undefined, err
		}

		out = out[:k-1]
	}

	switch len(out) {
	case 0:
		return Undefined, nil
	case 1:
		return fromReflect(out[0]), nil
	}

	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = fromReflect(v)
	}

	return vals, nil
}

func fromReflect(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}

	return v.Interface()
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}

	return Undefined
}

// convertArg converts an expression value to a Go value of type t.
func convertArg(ctx context.Context, arg any, t reflect.Type) (reflect.Value, error) {
	if isNullish(arg) {
		return reflect.Zero(t), nil
	}

	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(t) {
		return av, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(truthy(arg)).Convert(t), nil

	case reflect.String:
		if isPrimitive(arg) {
			return reflect.ValueOf(toString(arg)).Convert(t), nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f := toNumber(arg)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return reflect.Value{}, fmt.Errorf("cannot use %s as %s", toString(arg), t)
		}

		return reflect.ValueOf(int64(f)).Convert(t), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		f := toNumber(arg)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return reflect.Value{}, fmt.Errorf("cannot use %s as %s", toString(arg), t)
		}

		return reflect.ValueOf(uint64(f)).Convert(t), nil

	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(toNumber(arg)).Convert(t), nil

	case reflect.Func:
		if isCallable(arg) {
			return makeFunc(ctx, arg, t), nil
		}

	case reflect.Slice:
		if elems, ok := elements(arg); ok {
			s := reflect.MakeSlice(t, len(elems), len(elems))

			for i, e := range elems {
				v, err := convertArg(ctx, e, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}

				s.Index(i).Set(v)
			}

			return s, nil
		}

	case reflect.Map:
		if m, ok := arg.(map[string]any); ok && t.Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(t, len(m))

			for k, e := range m {
				v, err := convertArg(ctx, e, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}

				out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), v)
			}

			return out, nil
		}
	}

	if av.Type().ConvertibleTo(t) {
		return av.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", typeName(arg), t)
}

// makeFunc adapts a callable expression value to the Go function type t.
// Failures surface through a trailing error result when t has one and as a
// panic otherwise; invoke recovers the panic.
func makeFunc(ctx context.Context, fn any, t reflect.Type) reflect.Value {
	errIdx := -1
	if n := t.NumOut(); n > 0 && t.Out(n-1) == errorType {
		errIdx = n - 1
	}

	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}

		fail := func(err error) []reflect.Value {
			if errIdx < 0 {
				panic(err)
			}

			out[errIdx] = reflect.ValueOf(&err).Elem()

			return out
		}

		args := make([]any, len(in))
		for i, v := range in {
			args[i] = fromReflect(v)
		}

		res, err := invoke(ctx, fn, Undefined, args)
		if err != nil {
			return fail(err)
		}

		if len(out) > 0 && errIdx != 0 {
			v, err := convertArg(ctx, res, t.Out(0))
			if err != nil {
				return fail(err)
			}

			out[0] = v
		}

		return out
	})
}

// callError classifies an error returned by a callee.
func callError(err error, callee any) error {
	if errors.Is(err, errBlocked) {
		return errBlocked
	}

	var le *Error
	if errors.As(err, &le) {
		return err
	}

	return ErrInvocation.Wrap(err).With(
		attrReason("callee returned an error"),
		attrType(callee),
	)
}
