package sexp

import (
	"fmt"
	"strings"

	"github.com/armgong/rbridge/errors"
)

// registerBaseBuiltins installs the small set of base closures the engine
// ships with. They exist so the evaluation entry point has real closures to
// invoke; they are not an attempt at the source language's semantics.
func registerBaseBuiltins(e *Engine) {
	e.RegisterBuiltin("identity", biIdentity)
	e.RegisterBuiltin("length", biLength)
	e.RegisterBuiltin("sum", biSum)
	e.RegisterBuiltin("c", biConcat)
	e.RegisterBuiltin("paste", biPaste)
	e.RegisterBuiltin("toupper", biToUpper)
}

func biIdentity(e *Engine, args []*Value) (*Value, error) {
	if len(args) != 1 {
		return nil, errors.InvalidInput(errors.PhaseEval, "identity takes exactly one argument")
	}
	return args[0], nil
}

func biLength(e *Engine, args []*Value) (*Value, error) {
	if len(args) != 1 {
		return nil, errors.InvalidInput(errors.PhaseEval, "length takes exactly one argument")
	}
	out := e.AllocVector(Int, 1)
	out.SetInt(0, int32(args[0].Length()))
	return out, nil
}

func biSum(e *Engine, args []*Value) (*Value, error) {
	var total float64
	for _, a := range args {
		switch a.Type() {
		case Int, Lgl:
			for i := 0; i < a.Length(); i++ {
				total += float64(a.Int(i))
			}
		case Real:
			for i := 0; i < a.Length(); i++ {
				total += a.Real(i)
			}
		default:
			return nil, errors.TypeMismatch(errors.PhaseEval, "numeric", a.Type().String())
		}
	}
	out := e.AllocVector(Real, 1)
	out.SetReal(0, total)
	return out, nil
}

// biConcat flattens its arguments into one vector, promoting to the widest
// numeric type present, or to character when any argument is character.
func biConcat(e *Engine, args []*Value) (*Value, error) {
	n := 0
	widest := Lgl
	for _, a := range args {
		n += a.Length()
		switch a.Type() {
		case Lgl:
		case Int:
			if widest == Lgl {
				widest = Int
			}
		case Real:
			if widest != Str && widest != Cplx {
				widest = Real
			}
		case Cplx:
			if widest != Str {
				widest = Cplx
			}
		case Str:
			widest = Str
		default:
			return nil, errors.TypeMismatch(errors.PhaseEval, "vector", a.Type().String())
		}
	}

	out := e.Protect(e.AllocVector(widest, n))
	defer e.Unprotect(1)
	k := 0
	for _, a := range args {
		for i := 0; i < a.Length(); i++ {
			switch widest {
			case Lgl, Int:
				out.SetInt(k, a.Int(i))
			case Real:
				if a.Type() == Real {
					out.SetReal(k, a.Real(i))
				} else {
					out.SetReal(k, float64(a.Int(i)))
				}
			case Cplx:
				switch a.Type() {
				case Cplx:
					out.SetComplex(k, a.Complex(i))
				case Real:
					out.SetComplex(k, complex(a.Real(i), 0))
				default:
					out.SetComplex(k, complex(float64(a.Int(i)), 0))
				}
			case Str:
				if a.Type() != Str {
					return nil, errors.TypeMismatch(errors.PhaseEval, "character", a.Type().String())
				}
				out.SetStrElt(k, a.StrElt(i))
			}
			k++
		}
	}
	return out, nil
}

func biPaste(e *Engine, args []*Value) (*Value, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch a.Type() {
		case Str:
			for i := 0; i < a.Length(); i++ {
				parts = append(parts, a.StrElt(i).CharString())
			}
		case Int, Lgl:
			for i := 0; i < a.Length(); i++ {
				parts = append(parts, fmt.Sprintf("%d", a.Int(i)))
			}
		case Real:
			for i := 0; i < a.Length(); i++ {
				parts = append(parts, fmt.Sprintf("%g", a.Real(i)))
			}
		default:
			return nil, errors.TypeMismatch(errors.PhaseEval, "character", a.Type().String())
		}
	}
	return e.MkString(strings.Join(parts, " ")), nil
}

func biToUpper(e *Engine, args []*Value) (*Value, error) {
	if len(args) != 1 || args[0].Type() != Str {
		return nil, errors.InvalidInput(errors.PhaseEval, "toupper takes one character vector")
	}
	src := args[0]
	out := e.Protect(e.AllocVector(Str, src.Length()))
	defer e.Unprotect(1)
	for i := 0; i < src.Length(); i++ {
		ch := src.StrElt(i)
		out.SetStrElt(i, e.MkCharCE(strings.ToUpper(ch.CharString()), ch.CharEncoding()))
	}
	return out, nil
}
