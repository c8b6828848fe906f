package convert

import (
	"github.com/armgong/rbridge/errors"
	"github.com/armgong/rbridge/sexp"
)

// BitVector is a packed-bit host representation of a logical vector.
type BitVector struct {
	words []uint64
	n     int
}

// NewBitVector creates a zeroed bit vector of length n.
func NewBitVector(n int) BitVector {
	return BitVector{words: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of bits.
func (b BitVector) Len() int { return b.n }

// Get returns bit i.
func (b BitVector) Get(i int) bool {
	return b.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Set stores bit i.
func (b *BitVector) Set(i int, v bool) {
	if v {
		b.words[i/64] |= 1 << (uint(i) % 64)
	} else {
		b.words[i/64] &^= 1 << (uint(i) % 64)
	}
}

// ToBitVector converts a logical vector to a packed-bit representation.
// The engine's logical is tri-state; a plain bit cannot hold NA, so the
// mapping is: any non-zero non-NA value is true, zero is false, and NA
// decodes to false. Use ToBitVectorStrict to reject NA instead.
func ToBitVector(e *sexp.Engine, v *sexp.Value) (BitVector, error) {
	return toBitVector(e, v, false)
}

// ToBitVectorStrict is ToBitVector but fails with an na_value error on the
// first NA element rather than folding it to false.
func ToBitVectorStrict(e *sexp.Engine, v *sexp.Value) (BitVector, error) {
	return toBitVector(e, v, true)
}

func toBitVector(e *sexp.Engine, v *sexp.Value, strict bool) (BitVector, error) {
	if v.Type() != sexp.Lgl {
		return BitVector{}, errors.TypeMismatch(errors.PhaseFromR, "convert.BitVector", v.Type().String())
	}
	n := v.Length()
	out := NewBitVector(n)
	for i := 0; i < n; i++ {
		x := v.Int(i)
		if x == sexp.NALogical {
			if strict {
				return BitVector{}, errors.NAValue(errors.PhaseFromR, i, "convert.BitVector")
			}
			continue // NA policy: false
		}
		out.Set(i, x != 0)
	}
	return out, nil
}

// logicalToBool maps a tri-state logical element to a plain bool under the
// documented NA policy (NA is false).
func logicalToBool(x int32) bool {
	return x != 0 && x != sexp.NALogical
}
