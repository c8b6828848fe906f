package convert

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"unicode/utf8"

	"github.com/armgong/rbridge/errors"
	"github.com/armgong/rbridge/sexp"
)

// Symbol is the host representation of an interned symbol. Conversion
// routes through the symbol's name cell in both directions.
type Symbol string

// ToSexp allocates a fresh engine object for a host value, inferring the
// variant from the value's type. Scalars become length-1 vectors; slices
// become vectors; Array values become vectors carrying dim metadata; maps
// become name-attributed vectors (the engine has no native map type).
//
// The returned cell is unprotected, valid until the caller's next
// allocation.
func ToSexp(e *sexp.Engine, v any) (*sexp.Value, error) {
	switch x := v.(type) {
	case nil:
		return e.NilValue(), nil
	case *sexp.Value:
		return x, nil
	case bool:
		return encodeLogicals(e, []bool{x}), nil
	case int:
		return encodeInt64s(e, []int64{int64(x)})
	case int32:
		return encodeInt64s(e, []int64{int64(x)})
	case int64:
		return encodeInt64s(e, []int64{x})
	case float32:
		return encodeReals(e, []float64{float64(x)}), nil
	case float64:
		return encodeReals(e, []float64{x}), nil
	case complex128:
		return encodeComplexes(e, []complex128{x}), nil
	case string:
		return encodeStrings(e, []string{x})
	case Symbol:
		return e.Install(string(x)), nil
	case BitVector:
		out := e.AllocVector(sexp.Lgl, x.Len())
		for i := 0; i < x.Len(); i++ {
			if x.Get(i) {
				out.SetInt(i, 1)
			}
		}
		return out, nil
	case []bool:
		return encodeLogicals(e, x), nil
	case []int:
		xs := make([]int64, len(x))
		for i, n := range x {
			xs[i] = int64(n)
		}
		return encodeInt64s(e, xs)
	case []int32:
		out := e.AllocVector(sexp.Int, len(x))
		for i, n := range x {
			out.SetInt(i, n)
		}
		return out, nil
	case []int64:
		return encodeInt64s(e, x)
	case []float64:
		return encodeReals(e, x), nil
	case []complex128:
		return encodeComplexes(e, x), nil
	case []string:
		return encodeStrings(e, x)
	case []any:
		return encodeGenericVec(e, x)
	}

	rv := reflect.ValueOf(v)
	rt := rv.Type()
	if _, ok := arrayFields(rt); ok {
		return encodeArray(e, rv)
	}
	switch rt.Kind() {
	case reflect.Map:
		return encodeMap(e, rv)
	case reflect.Slice:
		xs := make([]any, rv.Len())
		for i := range xs {
			xs[i] = rv.Index(i).Interface()
		}
		return encodeGenericVec(e, xs)
	}
	return nil, errors.New(errors.PhaseToR, errors.KindUnsupported).
		GoType(rt.String()).
		Detail("no mapping to an engine variant").
		Build()
}

// ToSexpAs allocates a fresh engine object of the requested variant, sized
// to the host value: scalar to length-1 vector, slice to vector, Array to
// vector matching shape. Element coercion follows the defined widening
// mappings; anything else fails with a type mismatch naming both sides.
func ToSexpAs(e *sexp.Engine, t sexp.Type, v any) (*sexp.Value, error) {
	switch t {
	case sexp.Nil:
		if v != nil {
			return nil, errors.TypeMismatch(errors.PhaseToR, fmt.Sprintf("%T", v), t.String())
		}
		return e.NilValue(), nil
	case sexp.Sym:
		switch s := v.(type) {
		case string:
			return e.Install(s), nil
		case Symbol:
			return e.Install(string(s)), nil
		}
		return nil, errors.TypeMismatch(errors.PhaseToR, fmt.Sprintf("%T", v), t.String())
	case sexp.Char:
		if s, ok := v.(string); ok {
			if !utf8.ValidString(s) {
				return nil, errors.InvalidUTF8(errors.PhaseToR, []byte(s))
			}
			return e.MkChar(s), nil
		}
		return nil, errors.TypeMismatch(errors.PhaseToR, fmt.Sprintf("%T", v), t.String())
	}

	elems, dims, err := flatten(v)
	if err != nil {
		return nil, err
	}

	g := sexp.NewGuard(e)
	defer g.Done()

	out := g.Protect(e.AllocVector(t, len(elems)))
	for i, el := range elems {
		if err := coerceInto(e, out, t, i, el); err != nil {
			return nil, err
		}
	}
	if dims != nil {
		e.SetDim(out, dims...)
	}
	return out, nil
}

// flatten normalizes a host value into an element sequence plus optional
// shape metadata.
func flatten(v any) ([]reflect.Value, []int, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, errors.InvalidInput(errors.PhaseToR, "cannot flatten nil")
	}
	if _, ok := arrayFields(rv.Type()); ok {
		data := rv.FieldByName("Data")
		dimsV := rv.FieldByName("Dims")
		dims := make([]int, dimsV.Len())
		n := 1
		for i := range dims {
			dims[i] = int(dimsV.Index(i).Int())
			n *= dims[i]
		}
		if data.Len() != n {
			return nil, nil, errors.ShapeMismatch(errors.PhaseToR, dims, []int{data.Len()})
		}
		elems := make([]reflect.Value, data.Len())
		for i := range elems {
			elems[i] = data.Index(i)
		}
		return elems, dims, nil
	}
	if rv.Kind() == reflect.Slice {
		elems := make([]reflect.Value, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i)
		}
		return elems, nil, nil
	}
	return []reflect.Value{rv}, nil, nil
}

// coerceInto writes one host element into slot i of a vector of variant t.
func coerceInto(e *sexp.Engine, out *sexp.Value, t sexp.Type, i int, el reflect.Value) error {
	for el.Kind() == reflect.Interface && !el.IsNil() {
		el = el.Elem()
	}
	mismatch := func() error {
		return errors.TypeMismatch(errors.PhaseToR, el.Type().String(), t.String())
	}
	switch t {
	case sexp.Lgl:
		switch el.Kind() {
		case reflect.Bool:
			if el.Bool() {
				out.SetInt(i, 1)
			} else {
				out.SetInt(i, 0)
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			if el.Int() != 0 {
				out.SetInt(i, 1)
			} else {
				out.SetInt(i, 0)
			}
		default:
			return mismatch()
		}
	case sexp.Int:
		switch el.Kind() {
		case reflect.Bool:
			if el.Bool() {
				out.SetInt(i, 1)
			} else {
				out.SetInt(i, 0)
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			n := el.Int()
			if n > math.MaxInt32 || n < math.MinInt32+1 {
				return errors.New(errors.PhaseToR, errors.KindInvalidData).
					GoType(el.Type().String()).RType(t.String()).
					Detail("value %d overflows a 32-bit integer cell", n).
					Build()
			}
			out.SetInt(i, int32(n))
		default:
			return mismatch()
		}
	case sexp.Real:
		switch el.Kind() {
		case reflect.Bool:
			if el.Bool() {
				out.SetReal(i, 1)
			} else {
				out.SetReal(i, 0)
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			out.SetReal(i, float64(el.Int()))
		case reflect.Float32, reflect.Float64:
			out.SetReal(i, el.Float())
		default:
			return mismatch()
		}
	case sexp.Cplx:
		switch el.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			out.SetComplex(i, complex(float64(el.Int()), 0))
		case reflect.Float32, reflect.Float64:
			out.SetComplex(i, complex(el.Float(), 0))
		case reflect.Complex64, reflect.Complex128:
			out.SetComplex(i, el.Complex())
		default:
			return mismatch()
		}
	case sexp.Str:
		if el.Kind() != reflect.String {
			return mismatch()
		}
		s := el.String()
		if !utf8.ValidString(s) {
			return errors.InvalidUTF8(errors.PhaseToR, []byte(s))
		}
		out.SetStrElt(i, e.MkChar(s))
	case sexp.Vec:
		cell, err := ToSexp(e, el.Interface())
		if err != nil {
			return err
		}
		out.SetVecElt(i, cell)
	default:
		return errors.Unsupported(errors.PhaseToR, "target variant "+t.String())
	}
	return nil
}

func encodeLogicals(e *sexp.Engine, xs []bool) *sexp.Value {
	out := e.AllocVector(sexp.Lgl, len(xs))
	for i, b := range xs {
		if b {
			out.SetInt(i, 1)
		}
	}
	return out
}

func encodeInt64s(e *sexp.Engine, xs []int64) (*sexp.Value, error) {
	out := e.AllocVector(sexp.Int, len(xs))
	for i, n := range xs {
		if n > math.MaxInt32 || n < math.MinInt32+1 {
			return nil, errors.New(errors.PhaseToR, errors.KindInvalidData).
				GoType("int64").RType(sexp.Int.String()).
				Detail("value %d overflows a 32-bit integer cell", n).
				Build()
		}
		out.SetInt(i, int32(n))
	}
	return out, nil
}

func encodeReals(e *sexp.Engine, xs []float64) *sexp.Value {
	out := e.AllocVector(sexp.Real, len(xs))
	for i, f := range xs {
		out.SetReal(i, f)
	}
	return out
}

func encodeComplexes(e *sexp.Engine, xs []complex128) *sexp.Value {
	out := e.AllocVector(sexp.Cplx, len(xs))
	for i, c := range xs {
		out.SetComplex(i, c)
	}
	return out
}

// encodeStrings builds a character vector, detecting per-element encoding:
// ASCII content takes the native fast path, anything else is tagged UTF-8
// so the engine renders it correctly.
func encodeStrings(e *sexp.Engine, xs []string) (*sexp.Value, error) {
	g := sexp.NewGuard(e)
	defer g.Done()
	out := g.Protect(e.AllocVector(sexp.Str, len(xs)))
	for i, s := range xs {
		if !utf8.ValidString(s) {
			return nil, errors.InvalidUTF8(errors.PhaseToR, []byte(s))
		}
		out.SetStrElt(i, e.MkChar(s))
	}
	return out, nil
}

func encodeGenericVec(e *sexp.Engine, xs []any) (*sexp.Value, error) {
	g := sexp.NewGuard(e)
	defer g.Done()
	out := g.Protect(e.AllocVector(sexp.Vec, len(xs)))
	for i, x := range xs {
		cell, err := ToSexp(e, x)
		if err != nil {
			return nil, err
		}
		out.SetVecElt(i, cell)
	}
	return out, nil
}

func encodeArray(e *sexp.Engine, rv reflect.Value) (*sexp.Value, error) {
	dimsV := rv.FieldByName("Dims")
	dims := make([]int, dimsV.Len())
	n := 1
	for i := range dims {
		dims[i] = int(dimsV.Index(i).Int())
		n *= dims[i]
	}
	data := rv.FieldByName("Data")
	if data.Len() != n {
		return nil, errors.ShapeMismatch(errors.PhaseToR, dims, []int{data.Len()})
	}

	g := sexp.NewGuard(e)
	defer g.Done()
	cell, err := ToSexp(e, data.Interface())
	if err != nil {
		return nil, err
	}
	g.Protect(cell)
	e.SetDim(cell, dims...)
	return cell, nil
}

// encodeMap builds the engine's key-value convention: a generic list vector
// plus a parallel character vector of stringified keys attached as names.
// When every value is a string the narrower character-vector form is used.
// Two distinct keys stringifying identically is a key_collision error.
func encodeMap(e *sexp.Engine, rv reflect.Value) (*sexp.Value, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	seen := make(map[string]struct{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := fmt.Sprint(iter.Key().Interface())
		if _, dup := seen[k]; dup {
			return nil, errors.KeyCollision(k)
		}
		seen[k] = struct{}{}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	// deterministic layout regardless of map iteration order
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	allStrings := rv.Type().Elem().Kind() == reflect.String
	if !allStrings && rv.Type().Elem().Kind() == reflect.Interface {
		allStrings = len(entries) > 0
		for _, en := range entries {
			if _, ok := en.val.Interface().(string); !ok {
				allStrings = false
				break
			}
		}
	}

	g := sexp.NewGuard(e)
	defer g.Done()

	var out *sexp.Value
	if allStrings {
		out = g.Protect(e.AllocVector(sexp.Str, len(entries)))
		for i, en := range entries {
			s := fmt.Sprint(en.val.Interface())
			if !utf8.ValidString(s) {
				return nil, errors.InvalidUTF8(errors.PhaseToR, []byte(s))
			}
			out.SetStrElt(i, e.MkChar(s))
		}
	} else {
		out = g.Protect(e.AllocVector(sexp.Vec, len(entries)))
		for i, en := range entries {
			cell, err := ToSexp(e, en.val.Interface())
			if err != nil {
				return nil, err
			}
			out.SetVecElt(i, cell)
		}
	}

	names := g.Protect(e.AllocVector(sexp.Str, len(entries)))
	for i, en := range entries {
		names.SetStrElt(i, e.MkChar(en.key))
	}
	e.SetNames(out, names)
	return out, nil
}
