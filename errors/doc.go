// Package errors provides structured error types for the rbridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, Go/R type
// names, and cause chain. Conversion errors always name both the source R
// variant and the requested Go target type, so a failed mapping is never
// anonymous.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseFromR, errors.KindTypeMismatch).
//		GoType("int32").
//		RType("STRSXP").
//		Detail("cannot convert character vector to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseFromR, "int32", "STRSXP")
//	err := errors.OutOfBounds(errors.PhaseFromR, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
