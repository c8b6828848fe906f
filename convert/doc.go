// Package convert maps values between Go and the engine's heap objects in
// both directions.
//
// # Encoding (Go to engine)
//
// ToSexp infers the variant from the value's type; ToSexpAs allocates a
// requested variant with element coercion. Scalars become length-1 vectors,
// slices become vectors, Array values carry their shape as dim metadata,
// and maps are encoded by the name-vector convention (the engine has no
// native key-value type):
//
//	cell, err := convert.ToSexp(e, map[string]int{"a": 1, "b": 2})
//
// String content is encoding-detected: pure ASCII takes the native fast
// path, anything else is tagged UTF-8.
//
// # Decoding (engine to Go)
//
// To[T] converts to an explicit target type; ToGoValue applies the default
// type-inferring conversion (length-1 vectors to scalars, dim-carrying
// vectors to Array, named containers to maps, closures to Callable):
//
//	xs, err := convert.To[[]float64](e, cell)
//	v, err := convert.ToGoValue(e, cell)
//
// An undefined (variant, type) pairing fails with a structured error naming
// both sides; values are never silently coerced.
//
// # NA handling
//
// Logical vectors are tri-state. A plain bool or packed BitVector cannot
// represent NA, so the documented policy is: non-zero is true, zero is
// false, NA is false. ToBitVectorStrict rejects NA with an na_value error
// for callers who need the distinction.
//
// # Protection
//
// Encoders protect intermediate allocations with scoped guards, and
// decoders protect the source object across the whole traversal, so a
// collection cycle during conversion can never reclaim a cell still in use.
package convert
