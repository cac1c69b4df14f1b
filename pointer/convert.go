package pointer

import (
	"reflect"

	"github.com/wippyai/nativeptr/errors"
)

// convertScalar converts v to T. Exact matches take the fast path; other
// numeric values convert when they fit without loss of range.
func convertScalar[T scalar](v any, name string) (T, error) {
	if x, ok := v.(T); ok {
		return x, nil
	}

	var out T
	target := reflect.ValueOf(&out).Elem()
	rv := reflect.ValueOf(v)
	mismatch := errors.TypeMismatch(errors.PhaseAccess, nil, name, v)

	switch {
	case !rv.IsValid():
		return out, mismatch
	case rv.CanInt():
		i := rv.Int()
		switch {
		case target.CanInt():
			if target.OverflowInt(i) {
				return out, overflow(name, v)
			}
			target.SetInt(i)
		case target.CanUint():
			if i < 0 || target.OverflowUint(uint64(i)) {
				return out, overflow(name, v)
			}
			target.SetUint(uint64(i))
		default:
			target.SetFloat(float64(i))
		}
	case rv.CanUint():
		u := rv.Uint()
		switch {
		case target.CanInt():
			if u > 1<<63-1 || target.OverflowInt(int64(u)) {
				return out, overflow(name, v)
			}
			target.SetInt(int64(u))
		case target.CanUint():
			if target.OverflowUint(u) {
				return out, overflow(name, v)
			}
			target.SetUint(u)
		default:
			target.SetFloat(float64(u))
		}
	case rv.CanFloat():
		if !target.CanFloat() {
			return out, mismatch
		}
		f := rv.Float()
		if target.OverflowFloat(f) {
			return out, overflow(name, v)
		}
		target.SetFloat(f)
	default:
		return out, mismatch
	}
	return out, nil
}

func overflow(name string, v any) error {
	return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
		Type(name).
		Detail("value %v overflows %s", v, name).
		Value(v).
		Build()
}

// toInt64 converts any integer value to int64.
func toInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return 0, false
	case rv.CanInt():
		return rv.Int(), true
	case rv.CanUint():
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// withPath prefixes the path of a structured error with name.
func withPath(err error, name string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{name}, e.Path...)
	}
	return err
}
