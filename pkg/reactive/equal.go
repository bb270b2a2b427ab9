package reactive

import (
	"math"
	"reflect"
)

// sameValue reports whether a and b are the same value by identity:
// comparable values compare with == except that NaN equals NaN and +0
// differs from -0; slices, maps and channels compare by reference. Values
// are never compared deeply. Funcs are never the same unless both are nil.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && sameFloat(av, bv)
	case float32:
		bv, ok := b.(float32)
		return ok && sameFloat(float64(av), float64(bv))
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Len() == vb.Len() && va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if a == 0 && b == 0 {
		return math.Signbit(a) == math.Signbit(b)
	}
	return a == b
}

// hasChanged is the negation of sameValue.
func hasChanged(a, b any) bool {
	return !sameValue(a, b)
}

// SameValue reports whether a and b are identical under the comparison
// used for ref and field writes.
func SameValue(a, b any) bool {
	return sameValue(a, b)
}
