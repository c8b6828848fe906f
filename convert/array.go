package convert

import "reflect"

// Array is a shape-carrying host container. Conversions preserve the
// source's dimension metadata, not merely its flat length; Data is stored
// column-major, matching the engine's layout.
type Array[T any] struct {
	Dims []int
	Data []T
}

// Len returns the flat element count implied by Dims.
func (a Array[T]) Len() int {
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// At returns the element at the given (column-major) indices.
func (a Array[T]) At(idx ...int) T {
	flat := 0
	stride := 1
	for i, d := range a.Dims {
		flat += idx[i] * stride
		stride *= d
	}
	return a.Data[flat]
}

// arrayFields reports whether rt is an instantiation of Array[T], returning
// the element type. Generic instantiations are only reachable through
// reflection, so the check is structural: a struct with Dims []int and
// Data []T fields.
func arrayFields(rt reflect.Type) (elem reflect.Type, ok bool) {
	if rt.Kind() != reflect.Struct || rt.NumField() != 2 {
		return nil, false
	}
	dims, ok1 := rt.FieldByName("Dims")
	data, ok2 := rt.FieldByName("Data")
	if !ok1 || !ok2 {
		return nil, false
	}
	if dims.Type != reflect.TypeOf([]int(nil)) || data.Type.Kind() != reflect.Slice {
		return nil, false
	}
	return data.Type.Elem(), true
}
