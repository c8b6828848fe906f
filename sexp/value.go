package sexp

import (
	"fmt"

	"github.com/armgong/rbridge/errors"
)

// Value is a heap cell. Identity is the pointer; lifetime belongs to the
// engine's collector, not to Go's. A *Value obtained from an allocation
// entry point is live only until the next allocation unless protected.
type Value struct {
	typ Type

	// vector payloads, one non-nil per tag
	ints  []int32     // Int, Lgl
	reals []float64   // Real
	cplx  []complex128
	strs  []*Value // Str: Char cells
	list  []*Value // Vec

	// pairlist / symbol / char / closure payloads
	car, cdr, tag *Value
	name          string // Sym print name, Char bytes
	enc           Encoding
	fn            ClosureFunc

	attr *Value // attribute pairlist, nil when none
}

// Type returns the cell's variant tag.
func (v *Value) Type() Type {
	v.check()
	return v.typ
}

// IsNil reports whether the cell is the engine's Nil singleton.
func (v *Value) IsNil() bool {
	return v == nil || v.typ == Nil
}

// check panics on a reclaimed cell. Use after collection is a protection
// protocol violation, which the contract treats as unrecoverable.
func (v *Value) check() {
	if v.typ == freed {
		panic(errors.UseAfterFree("FREEDSXP"))
	}
}

// Length returns the declared length of a vector cell, the pairlist length
// for List, and 1 for scalar-shaped cells (Sym, Char, Clo). Nil has length 0.
func (v *Value) Length() int {
	v.check()
	switch v.typ {
	case Nil:
		return 0
	case Int, Lgl:
		return len(v.ints)
	case Real:
		return len(v.reals)
	case Cplx:
		return len(v.cplx)
	case Str:
		return len(v.strs)
	case Vec:
		return len(v.list)
	case List:
		n := 0
		for p := v; p != nil && p.typ == List; p = p.cdr {
			n++
		}
		return n
	default:
		return 1
	}
}

// Int returns element i of an integer or logical vector.
func (v *Value) Int(i int) int32 {
	v.check()
	return v.ints[i]
}

// SetInt stores element i of an integer or logical vector.
func (v *Value) SetInt(i int, x int32) {
	v.check()
	v.ints[i] = x
}

// Real returns element i of a numeric vector.
func (v *Value) Real(i int) float64 {
	v.check()
	return v.reals[i]
}

// SetReal stores element i of a numeric vector.
func (v *Value) SetReal(i int, x float64) {
	v.check()
	v.reals[i] = x
}

// Complex returns element i of a complex vector.
func (v *Value) Complex(i int) complex128 {
	v.check()
	return v.cplx[i]
}

// SetComplex stores element i of a complex vector.
func (v *Value) SetComplex(i int, x complex128) {
	v.check()
	v.cplx[i] = x
}

// StrElt returns the Char cell at element i of a character vector.
func (v *Value) StrElt(i int) *Value {
	v.check()
	return v.strs[i]
}

// SetStrElt stores a Char cell at element i of a character vector.
func (v *Value) SetStrElt(i int, ch *Value) {
	v.check()
	ch.check()
	v.strs[i] = ch
}

// VecElt returns element i of a generic list vector.
func (v *Value) VecElt(i int) *Value {
	v.check()
	return v.list[i]
}

// SetVecElt stores element i of a generic list vector.
func (v *Value) SetVecElt(i int, x *Value) {
	v.check()
	v.list[i] = x
}

// CharString returns the text of a Char cell.
func (v *Value) CharString() string {
	v.check()
	return v.name
}

// CharEncoding returns the encoding tag of a Char cell.
func (v *Value) CharEncoding() Encoding {
	v.check()
	return v.enc
}

// SymbolName returns the print name of a symbol, routed through its name
// cell rather than reinterpreting bytes.
func (v *Value) SymbolName() string {
	v.check()
	if v.typ != Sym {
		panic(fmt.Sprintf("sexp: SymbolName on %s", v.typ))
	}
	return v.name
}

// Car returns the head of a pairlist cell.
func (v *Value) Car() *Value {
	v.check()
	return v.car
}

// Cdr returns the tail of a pairlist cell.
func (v *Value) Cdr() *Value {
	v.check()
	return v.cdr
}

// Tag returns the tag (usually a symbol) of a pairlist cell.
func (v *Value) Tag() *Value {
	v.check()
	return v.tag
}
