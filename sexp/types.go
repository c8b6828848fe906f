package sexp

import "math"

// Type is the variant tag of a heap cell. Values follow R's SEXPTYPE
// numbering so traces read the same as R's own.
type Type uint8

const (
	Nil  Type = 0  // NILSXP
	Sym  Type = 1  // SYMSXP
	List Type = 2  // LISTSXP (pairlist)
	Clo  Type = 3  // CLOSXP
	Char Type = 9  // CHARSXP (element of a character vector)
	Lgl  Type = 10 // LGLSXP
	Int  Type = 13 // INTSXP
	Real Type = 14 // REALSXP
	Cplx Type = 15 // CPLXSXP
	Str  Type = 16 // STRSXP
	Vec  Type = 19 // VECSXP (generic list vector)

	// freed marks a cell reclaimed by the collector. Touching one is a
	// protection-protocol violation.
	freed Type = 0xFF
)

// String returns the R-style name of the type tag.
func (t Type) String() string {
	switch t {
	case Nil:
		return "NILSXP"
	case Sym:
		return "SYMSXP"
	case List:
		return "LISTSXP"
	case Clo:
		return "CLOSXP"
	case Char:
		return "CHARSXP"
	case Lgl:
		return "LGLSXP"
	case Int:
		return "INTSXP"
	case Real:
		return "REALSXP"
	case Cplx:
		return "CPLXSXP"
	case Str:
		return "STRSXP"
	case Vec:
		return "VECSXP"
	case freed:
		return "FREEDSXP"
	default:
		return "UNKNOWNSXP"
	}
}

// Encoding tags the byte encoding of a Char cell.
type Encoding uint8

const (
	// EncNative marks pure-ASCII content (no tagging needed).
	EncNative Encoding = iota
	// EncUTF8 marks content carrying bytes outside ASCII.
	EncUTF8
)

// NA markers match R's runtime representation: logical and integer NA share
// the minimum int32, real NA is a NaN.
const (
	NALogical int32 = math.MinInt32
	NAInteger int32 = math.MinInt32
)

// NAReal returns R's numeric NA (a NaN payload; any NaN is treated as NA).
func NAReal() float64 { return math.NaN() }

// ClosureFunc is the Go body of a closure cell. The engine passes evaluated
// arguments and expects a freshly allocated (or existing) cell back.
type ClosureFunc func(e *Engine, args []*Value) (*Value, error)
