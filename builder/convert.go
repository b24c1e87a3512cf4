package builder

import (
	"math"
	"reflect"
)

// convertValue returns v as a value of type t. Assignable values are stored
// as-is; numeric values convert between numeric kinds when the value fits
// the target exactly, and named types convert from their underlying kind.
// Other conversions (int to string, slice to array, 300 to uint8, 3.9 to
// int) are refused.
func convertValue(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		if nillable(t.Kind()) {
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}

	out := reflect.New(t).Elem()
	if v.Type().AssignableTo(t) {
		out.Set(v)
		return out, true
	}
	if compatibleKinds(v.Kind(), t.Kind()) && v.Type().ConvertibleTo(t) {
		if isNumeric(v.Kind()) && !fits(v, t) {
			return reflect.Value{}, false
		}
		out.Set(v.Convert(t))
		return out, true
	}
	return reflect.Value{}, false
}

// convertItems builds a slice or array of type t from loosely typed items.
func convertItems(items []any, t reflect.Type) (reflect.Value, bool) {
	var out reflect.Value
	switch t.Kind() {
	case reflect.Slice:
		out = reflect.MakeSlice(t, len(items), len(items))
	case reflect.Array:
		if len(items) > t.Len() {
			return reflect.Value{}, false
		}
		out = reflect.New(t).Elem()
	default:
		return reflect.Value{}, false
	}

	for i, item := range items {
		elem, ok := convertValue(reflect.ValueOf(item), t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		out.Index(i).Set(elem)
	}
	return out, true
}

// adaptValue is convertValue plus pointer adaptation, used when handing a
// stored value back to caller code: *X can be read as X and X as *X.
func adaptValue(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if out, ok := convertValue(v, t); ok {
		return out, true
	}
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	if v.Kind() == reflect.Pointer && !v.IsNil() {
		if out, ok := convertValue(v.Elem(), t); ok {
			return out, true
		}
	}
	if t.Kind() == reflect.Pointer {
		if elem, ok := convertValue(v, t.Elem()); ok {
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(elem)
			return ptr, true
		}
	}
	return reflect.Value{}, false
}

func compatibleKinds(from, to reflect.Kind) bool {
	if isNumeric(from) && isNumeric(to) {
		return true
	}
	return from == to
}

// fits reports whether the numeric value v can be stored in numeric type t
// without overflow or a dropped fraction. Integers may always become floats.
func fits(v reflect.Value, t reflect.Type) bool {
	dst := reflect.New(t).Elem()
	switch {
	case isInt(v.Kind()):
		x := v.Int()
		switch {
		case isInt(t.Kind()):
			return !dst.OverflowInt(x)
		case isUint(t.Kind()):
			return x >= 0 && !dst.OverflowUint(uint64(x))
		}
		return true

	case isUint(v.Kind()):
		x := v.Uint()
		switch {
		case isInt(t.Kind()):
			return x <= math.MaxInt64 && !dst.OverflowInt(int64(x))
		case isUint(t.Kind()):
			return !dst.OverflowUint(x)
		}
		return true
	}

	x := v.Float()
	switch {
	case isInt(t.Kind()):
		return x == math.Trunc(x) && x >= -(1<<63) && x < 1<<63 && !dst.OverflowInt(int64(x))
	case isUint(t.Kind()):
		return x == math.Trunc(x) && x >= 0 && x < 1<<64 && !dst.OverflowUint(uint64(x))
	}
	return !dst.OverflowFloat(x)
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func typeOfValue(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}
