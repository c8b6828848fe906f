package convert

import (
	"reflect"
	"strconv"

	"github.com/armgong/rbridge/errors"
	"github.com/armgong/rbridge/sexp"
)

// To converts an engine object to the requested host type T. Dispatch is
// keyed on the (engine variant, host type) pair; an undefined pairing fails
// with a type mismatch naming both sides, never a silent coercion.
//
// The source object is protected for the whole traversal, since element
// conversions may themselves allocate.
func To[T any](e *sexp.Engine, v *sexp.Value) (T, error) {
	var zero T
	g := sexp.NewGuard(e)
	defer g.Done()
	g.Protect(v)

	rv := reflect.New(reflect.TypeOf(&zero).Elem()).Elem()
	if err := decodeInto(e, v, rv); err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// ToGoValue converts an engine object to a host value with the default,
// type-inferring mapping: length-1 vectors become scalars, vectors become
// slices (shape metadata becomes an Array), name-attributed containers
// become maps, closures become Callables, Nil becomes nil.
func ToGoValue(e *sexp.Engine, v *sexp.Value) (any, error) {
	g := sexp.NewGuard(e)
	defer g.Done()
	g.Protect(v)
	return inferValue(e, v)
}

func mismatch(goType string, rType sexp.Type) error {
	return errors.TypeMismatch(errors.PhaseFromR, goType, rType.String())
}

func decodeInto(e *sexp.Engine, v *sexp.Value, rv reflect.Value) error {
	rt := rv.Type()

	// handle-preserving and package-specific targets first
	switch rt {
	case reflect.TypeOf((*sexp.Value)(nil)):
		rv.Set(reflect.ValueOf(v))
		return nil
	case reflect.TypeOf(BitVector{}):
		bv, err := ToBitVector(e, v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(bv))
		return nil
	case reflect.TypeOf((*Callable)(nil)):
		c, err := NewCallable(e, v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(c))
		return nil
	case reflect.TypeOf(Symbol("")):
		if v.Type() != sexp.Sym {
			return mismatch("convert.Symbol", v.Type())
		}
		rv.SetString(v.SymbolName())
		return nil
	}
	if elem, ok := arrayFields(rt); ok {
		return decodeArray(e, v, rv, elem)
	}

	switch rt.Kind() {
	case reflect.String:
		switch v.Type() {
		case sexp.Char:
			rv.SetString(v.CharString())
		case sexp.Sym:
			// route through the symbol's name cell
			rv.SetString(v.SymbolName())
		case sexp.Str:
			// single-element character vector converts directly by
			// taking element 0
			if v.Length() != 1 {
				return errors.New(errors.PhaseFromR, errors.KindShapeMismatch).
					GoType("string").RType(v.Type().String()).
					Detail("length %d character vector; want length 1 or a []string target", v.Length()).
					Build()
			}
			rv.SetString(v.StrElt(0).CharString())
		default:
			return mismatch("string", v.Type())
		}
		return nil

	case reflect.Bool:
		if v.Type() != sexp.Lgl || v.Length() != 1 {
			return mismatch("bool", v.Type())
		}
		rv.SetBool(logicalToBool(v.Int(0)))
		return nil

	case reflect.Int, reflect.Int32, reflect.Int64:
		if v.Type() != sexp.Int || v.Length() != 1 {
			return mismatch(rt.String(), v.Type())
		}
		rv.SetInt(int64(v.Int(0)))
		return nil

	case reflect.Float32, reflect.Float64:
		switch v.Type() {
		case sexp.Real:
			if v.Length() != 1 {
				return mismatch(rt.String(), v.Type())
			}
			rv.SetFloat(v.Real(0))
		case sexp.Int:
			if v.Length() != 1 {
				return mismatch(rt.String(), v.Type())
			}
			rv.SetFloat(float64(v.Int(0)))
		default:
			return mismatch(rt.String(), v.Type())
		}
		return nil

	case reflect.Complex128, reflect.Complex64:
		switch v.Type() {
		case sexp.Cplx:
			if v.Length() != 1 {
				return mismatch(rt.String(), v.Type())
			}
			rv.SetComplex(v.Complex(0))
		case sexp.Real:
			if v.Length() != 1 {
				return mismatch(rt.String(), v.Type())
			}
			rv.SetComplex(complex(v.Real(0), 0))
		default:
			return mismatch(rt.String(), v.Type())
		}
		return nil

	case reflect.Slice:
		return decodeSlice(e, v, rv)

	case reflect.Map:
		return decodeMap(e, v, rv)
	}

	return errors.New(errors.PhaseFromR, errors.KindUnsupported).
		GoType(rt.String()).RType(v.Type().String()).
		Detail("no mapping from engine variant").
		Build()
}

func decodeSlice(e *sexp.Engine, v *sexp.Value, rv reflect.Value) error {
	rt := rv.Type()
	n := v.Length()
	out := reflect.MakeSlice(rt, n, n)

	switch rt.Elem().Kind() {
	case reflect.Bool:
		if v.Type() != sexp.Lgl {
			return mismatch(rt.String(), v.Type())
		}
		for i := 0; i < n; i++ {
			out.Index(i).SetBool(logicalToBool(v.Int(i)))
		}
	case reflect.Int, reflect.Int32, reflect.Int64:
		if v.Type() != sexp.Int {
			return mismatch(rt.String(), v.Type())
		}
		for i := 0; i < n; i++ {
			out.Index(i).SetInt(int64(v.Int(i)))
		}
	case reflect.Float32, reflect.Float64:
		switch v.Type() {
		case sexp.Real:
			for i := 0; i < n; i++ {
				out.Index(i).SetFloat(v.Real(i))
			}
		case sexp.Int:
			for i := 0; i < n; i++ {
				out.Index(i).SetFloat(float64(v.Int(i)))
			}
		default:
			return mismatch(rt.String(), v.Type())
		}
	case reflect.Complex128:
		if v.Type() != sexp.Cplx {
			return mismatch(rt.String(), v.Type())
		}
		for i := 0; i < n; i++ {
			out.Index(i).SetComplex(v.Complex(i))
		}
	case reflect.String:
		if v.Type() != sexp.Str {
			return mismatch(rt.String(), v.Type())
		}
		for i := 0; i < n; i++ {
			out.Index(i).SetString(v.StrElt(i).CharString())
		}
	case reflect.Interface:
		if v.Type() != sexp.Vec {
			return mismatch(rt.String(), v.Type())
		}
		for i := 0; i < n; i++ {
			el, err := inferValue(e, v.VecElt(i))
			if err != nil {
				return err
			}
			if el != nil {
				out.Index(i).Set(reflect.ValueOf(el))
			}
		}
	default:
		return errors.New(errors.PhaseFromR, errors.KindUnsupported).
			GoType(rt.String()).RType(v.Type().String()).
			Detail("unsupported slice element type").
			Build()
	}
	rv.Set(out)
	return nil
}

// decodeArray reads the vector's declared shape and allocates a host
// container of matching shape: both element order and dimension metadata
// survive the crossing, not merely the flat length.
func decodeArray(e *sexp.Engine, v *sexp.Value, rv reflect.Value, elem reflect.Type) error {
	dims := e.DimOf(v)
	if dims == nil {
		dims = []int{v.Length()}
	}
	data := reflect.New(reflect.SliceOf(elem)).Elem()
	if err := decodeSlice(e, v, data); err != nil {
		return err
	}
	rv.FieldByName("Dims").Set(reflect.ValueOf(dims))
	rv.FieldByName("Data").Set(data)
	return nil
}

// decodeMap decodes the engine's key-value convention: (name, value) pairs
// from a name-attributed vector or a tagged pairlist. A source without name
// metadata cannot round-trip and fails with missing_names; positional keys
// are never invented.
func decodeMap(e *sexp.Engine, v *sexp.Value, rv reflect.Value) error {
	rt := rv.Type()
	out := reflect.MakeMap(rt)

	setEntry := func(name string, cell *sexp.Value) error {
		key, err := keyFromString(name, rt.Key())
		if err != nil {
			return err
		}
		val := reflect.New(rt.Elem()).Elem()
		if rt.Elem().Kind() == reflect.Interface {
			el, err := inferValue(e, cell)
			if err != nil {
				return err
			}
			if el != nil {
				val.Set(reflect.ValueOf(el))
			}
		} else if err := decodeInto(e, cell, val); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
		return nil
	}

	switch v.Type() {
	case sexp.Vec, sexp.Str:
		names := e.Names(v)
		if names.IsNil() || names.Type() != sexp.Str || names.Length() != v.Length() {
			return errors.MissingNames(v.Type().String())
		}
		for i := 0; i < v.Length(); i++ {
			var cell *sexp.Value
			if v.Type() == sexp.Vec {
				cell = v.VecElt(i)
			} else {
				cell = e.ScalarString(v.StrElt(i))
			}
			if err := setEntry(names.StrElt(i).CharString(), cell); err != nil {
				return err
			}
		}
	case sexp.List:
		for p := v; !p.IsNil() && p.Type() == sexp.List; p = p.Cdr() {
			tag := p.Tag()
			if tag == nil || tag.IsNil() || tag.Type() != sexp.Sym {
				return errors.MissingNames(v.Type().String())
			}
			if err := setEntry(tag.SymbolName(), p.Car()); err != nil {
				return err
			}
		}
	default:
		return mismatch(rt.String(), v.Type())
	}

	rv.Set(out)
	return nil
}

func keyFromString(name string, kt reflect.Type) (reflect.Value, error) {
	switch kt.Kind() {
	case reflect.String:
		return reflect.ValueOf(name).Convert(kt), nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return reflect.Value{}, errors.New(errors.PhaseFromR, errors.KindInvalidData).
				GoType(kt.String()).
				Detail("name %q is not parseable as an integer key", name).
				Cause(err).
				Build()
		}
		return reflect.ValueOf(n).Convert(kt), nil
	}
	return reflect.Value{}, errors.Unsupported(errors.PhaseFromR, "map key type "+kt.String())
}

// inferValue is the default conversion used when no target type is given.
func inferValue(e *sexp.Engine, v *sexp.Value) (any, error) {
	switch v.Type() {
	case sexp.Nil:
		return nil, nil
	case sexp.Sym:
		return Symbol(v.SymbolName()), nil
	case sexp.Char:
		return v.CharString(), nil
	case sexp.Clo:
		return NewCallable(e, v)
	case sexp.Lgl:
		if v.Length() == 1 {
			return logicalToBool(v.Int(0)), nil
		}
		return To[[]bool](e, v)
	case sexp.Int:
		if dims := e.DimOf(v); dims != nil {
			return To[Array[int]](e, v)
		}
		if v.Length() == 1 {
			return int(v.Int(0)), nil
		}
		return To[[]int](e, v)
	case sexp.Real:
		if dims := e.DimOf(v); dims != nil {
			return To[Array[float64]](e, v)
		}
		if v.Length() == 1 {
			return v.Real(0), nil
		}
		return To[[]float64](e, v)
	case sexp.Cplx:
		if v.Length() == 1 {
			return v.Complex(0), nil
		}
		return To[[]complex128](e, v)
	case sexp.Str:
		if v.Length() == 1 {
			return v.StrElt(0).CharString(), nil
		}
		return To[[]string](e, v)
	case sexp.Vec:
		if names := e.Names(v); !names.IsNil() {
			return To[map[string]any](e, v)
		}
		return To[[]any](e, v)
	case sexp.List:
		return To[map[string]any](e, v)
	}
	return nil, errors.New(errors.PhaseFromR, errors.KindUnsupported).
		RType(v.Type().String()).
		Detail("no default host mapping").
		Build()
}
