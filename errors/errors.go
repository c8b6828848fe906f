package errors

import (
	"fmt"
	"strings"
)

// Phase names the bridge stage a failure belongs to.
type Phase string

const (
	PhaseToR     Phase = "to_r"    // Go to R conversion
	PhaseFromR   Phase = "from_r"  // R to Go conversion
	PhaseEval    Phase = "eval"    // closure invocation inside the engine
	PhaseProtect Phase = "protect" // GC protection protocol
	PhaseDevice  Phase = "device"  // graphics device operations
	PhaseDrain   Phase = "drain"   // post-execution output capture
	PhaseRuntime Phase = "runtime" // engine state operations
)

// Kind classifies what went wrong within a phase.
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindShapeMismatch  Kind = "shape_mismatch"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindNAValue        Kind = "na_value"
	KindMissingNames   Kind = "missing_names"
	KindKeyCollision   Kind = "key_collision"
	KindEvalFailed     Kind = "eval_failed"
	KindIOFailure      Kind = "io_failure"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindUseAfterFree   Kind = "use_after_free"
)

// Error is the structured error type used throughout the bridge.
// Conversion errors always carry both the source R variant (RType) and the
// requested Go target (GoType), so a failed mapping names both sides.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	RType  string
	Detail string
	Path   []string
}

// Error renders "[phase] kind at path: details (caused by: ...)". Only the
// phase and kind are always present; everything else appears when set.
func (e *Error) Error() string {
	head := "[" + string(e.Phase) + "] " + string(e.Kind)
	if len(e.Path) > 0 {
		head += " at " + strings.Join(e.Path, ".")
	}

	var parts []string
	switch {
	case e.GoType != "" && e.RType != "":
		parts = append(parts, fmt.Sprintf("Go type %s, R type %s", e.GoType, e.RType))
	case e.GoType != "":
		parts = append(parts, "Go type "+e.GoType)
	case e.RType != "":
		parts = append(parts, "R type "+e.RType)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if len(parts) > 0 {
		head += ": " + strings.Join(parts, " - ")
	}

	if e.Cause != nil {
		head += " (caused by: " + e.Cause.Error() + ")"
	}
	return head
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on phase and kind so callers can classify failures with
// errors.Is and a zero-detail probe value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder accumulates optional Error fields before Build.
type Builder struct {
	err Error
}

// New starts a builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Path records where inside a nested value the failure happened.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType records the host-side type name.
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// RType records the engine-side variant name.
func (b *Builder) RType(t string) *Builder {
	b.err.RType = t
	return b
}

// Value records the offending value.
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause records the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail records a printf-style detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	b.err.Detail = msg
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	}
	return b
}

// Build finalizes the error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Shorthand constructors for the recurring failure shapes.

// TypeMismatch creates a type mismatch error naming both sides of the
// failed (R variant, Go type) mapping.
func TypeMismatch(phase Phase, goType, rType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		GoType: goType,
		RType:  rType,
	}
}

// ShapeMismatch reports a dim/shape disagreement.
func ShapeMismatch(phase Phase, want, got []int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindShapeMismatch,
		Detail: fmt.Sprintf("shape %v does not match %v", got, want),
		Value:  got,
	}
}

// InvalidUTF8 reports bytes that are not valid UTF-8, with a short preview.
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// NAValue creates an error for an NA encountered where the target
// representation cannot hold one.
func NAValue(phase Phase, index int, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNAValue,
		GoType: goType,
		Detail: fmt.Sprintf("NA at index %d has no representation", index),
		Value:  index,
	}
}

// MissingNames creates an error for a container decode from an object
// without name metadata.
func MissingNames(rType string) *Error {
	return &Error{
		Phase:  PhaseFromR,
		Kind:   KindMissingNames,
		RType:  rType,
		Detail: "object carries no names attribute",
	}
}

// KeyCollision creates an error for two distinct keys stringifying
// identically during container encoding.
func KeyCollision(key string) *Error {
	return &Error{
		Phase:  PhaseToR,
		Kind:   KindKeyCollision,
		Detail: fmt.Sprintf("duplicate key %q after stringification", key),
		Value:  key,
	}
}

// EvalFailed wraps an error raised inside the embedded engine.
func EvalFailed(msg string) *Error {
	return &Error{
		Phase:  PhaseEval,
		Kind:   KindEvalFailed,
		Detail: msg,
	}
}

// IOFailure creates an I/O error for the capture pipeline.
func IOFailure(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIOFailure,
		Detail: path,
		Cause:  cause,
	}
}

// Unsupported reports a value or operation the bridge cannot express.
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds reports an index outside a vector.
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotInitialized reports use of a component before setup.
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound reports a missing named thing, such as an unknown builtin.
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput reports malformed caller input.
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData reports malformed data encountered mid-conversion.
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// UseAfterFree creates an error for touching a cell the collector already
// reclaimed.
func UseAfterFree(rType string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindUseAfterFree,
		RType:  rType,
		Detail: "cell was collected; missing protect?",
	}
}

// Wrap attaches phase and kind to an error from elsewhere.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
