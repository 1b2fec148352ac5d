package stream

import "reflect"

// Field returns a selector reading key from a Record as a T. A missing key
// or a value of another type yields the zero value of T.
func Field[T any](key string) func(Record) T {
	return func(r Record) T {
		v, _ := r[key].(T)
		return v
	}
}

// Identity is the selector returning the whole state.
func Identity[S any](s S) S {
	return s
}

// DefaultEqual reports whether a and b are equal, using == for scalar
// kinds and reflect.DeepEqual for everything else. Values of different
// dynamic types are never equal.
func DefaultEqual[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	ta := reflect.TypeOf(av)
	if ta != reflect.TypeOf(bv) {
		return false
	}
	switch ta.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return av == bv
	default:
		return reflect.DeepEqual(av, bv)
	}
}
