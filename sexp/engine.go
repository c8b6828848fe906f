package sexp

import (
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/armgong/rbridge/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// GCThreshold triggers a collection cycle after this many allocations.
	// 0 means the default (4096). Negative disables automatic collection;
	// GC can still be invoked explicitly.
	GCThreshold int
}

const defaultGCThreshold = 4096

// Engine is the embedded runtime: it owns the cell heap, the symbol table,
// the protection stack, the persistent-root table, the named-option store
// and the graphics device slot.
//
// The interpreter is not reentrant-safe; every entry point serializes on one
// lock, so all access from any number of goroutines is funneled through a
// single logical thread.
type Engine struct {
	mu sync.Mutex

	heap        map[*Value]struct{}
	sinceGC     int
	gcThreshold int

	protected []*Value
	preserved map[*Value]int
	symbols   map[string]*Value
	builtins  map[string]*Value
	options   map[string]any

	device    *Device
	deviceSeq int

	nilValue *Value
	logger   *zap.Logger
}

// New creates an engine with default configuration and the base builtins
// installed.
func New() *Engine {
	return NewWithConfig(nil)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(cfg *Config) *Engine {
	threshold := defaultGCThreshold
	if cfg != nil && cfg.GCThreshold != 0 {
		threshold = cfg.GCThreshold
	}
	e := &Engine{
		heap:        make(map[*Value]struct{}),
		gcThreshold: threshold,
		preserved:   make(map[*Value]int),
		symbols:     make(map[string]*Value),
		builtins:    make(map[string]*Value),
		options:     make(map[string]any),
		logger:      Logger(),
	}
	e.nilValue = &Value{typ: Nil}
	registerBaseBuiltins(e)
	return e
}

// NilValue returns the engine's Nil singleton.
func (e *Engine) NilValue() *Value { return e.nilValue }

// alloc registers a fresh cell with the heap and runs a collection cycle
// when the allocation budget is exhausted. Callers hold e.mu.
func (e *Engine) alloc(v *Value) *Value {
	e.sinceGC++
	if e.gcThreshold > 0 && e.sinceGC >= e.gcThreshold {
		e.collect()
		e.sinceGC = 0
	}
	e.heap[v] = struct{}{}
	return v
}

// AllocVector allocates a vector cell of the given variant and length.
// The returned cell is unprotected: protect it before the next allocation
// that could trigger a collection cycle.
func (e *Engine) AllocVector(t Type, n int) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allocVector(t, n)
}

func (e *Engine) allocVector(t Type, n int) *Value {
	v := &Value{typ: t}
	switch t {
	case Int, Lgl:
		v.ints = make([]int32, n)
	case Real:
		v.reals = make([]float64, n)
	case Cplx:
		v.cplx = make([]complex128, n)
	case Str:
		v.strs = make([]*Value, n)
		for i := range v.strs {
			v.strs[i] = e.nilValue
		}
	case Vec:
		v.list = make([]*Value, n)
		for i := range v.list {
			v.list[i] = e.nilValue
		}
	default:
		panic("sexp: AllocVector on non-vector type " + t.String())
	}
	return e.alloc(v)
}

// AllocMatrix allocates a vector cell with a dim attribute of (nr, nc).
// Data layout is column-major, matching the runtime's convention.
func (e *Engine) AllocMatrix(t Type, nr, nc int) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.allocVector(t, nr*nc)
	e.protected = append(e.protected, m)
	dim := e.allocVector(Int, 2)
	dim.ints[0] = int32(nr)
	dim.ints[1] = int32(nc)
	e.setAttr(m, "dim", dim)
	e.protected = e.protected[:len(e.protected)-1]
	return m
}

// Cons allocates a pairlist cell.
func (e *Engine) Cons(car, cdr *Value) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cons(car, cdr, nil)
}

// ConsTagged allocates a pairlist cell with a tag.
func (e *Engine) ConsTagged(car, cdr, tag *Value) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cons(car, cdr, tag)
}

func (e *Engine) cons(car, cdr, tag *Value) *Value {
	if car == nil {
		car = e.nilValue
	}
	if cdr == nil {
		cdr = e.nilValue
	}
	return e.alloc(&Value{typ: List, car: car, cdr: cdr, tag: tag})
}

// Install interns a symbol. Symbols are permanent roots, as in the real
// runtime's symbol table.
func (e *Engine) Install(name string) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.install(name)
}

func (e *Engine) install(name string) *Value {
	if s, ok := e.symbols[name]; ok {
		return s
	}
	s := e.alloc(&Value{typ: Sym, name: name})
	e.symbols[name] = s
	return s
}

// MkCharCE allocates a Char cell with explicit encoding metadata.
func (e *Engine) MkCharCE(s string, enc Encoding) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alloc(&Value{typ: Char, name: s, enc: enc})
}

// MkChar allocates a Char cell, detecting the encoding: pure ASCII content
// takes the native fast path, anything else is tagged UTF-8.
func (e *Engine) MkChar(s string) *Value {
	return e.MkCharCE(s, DetectEncoding(s))
}

// DetectEncoding classifies string content for Char cell construction.
func DetectEncoding(s string) Encoding {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return EncUTF8
		}
	}
	return EncNative
}

// ValidUTF8 reports whether s is well-formed UTF-8.
func ValidUTF8(s string) bool { return utf8.ValidString(s) }

// ScalarString allocates a length-1 character vector holding the given
// Char cell.
func (e *Engine) ScalarString(ch *Value) *Value {
	ch.check()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.protected = append(e.protected, ch)
	v := e.allocVector(Str, 1)
	v.strs[0] = ch
	e.protected = e.protected[:len(e.protected)-1]
	return v
}

// MkString allocates a length-1 character vector directly from a Go string.
func (e *Engine) MkString(s string) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := e.alloc(&Value{typ: Char, name: s, enc: DetectEncoding(s)})
	e.protected = append(e.protected, ch)
	v := e.allocVector(Str, 1)
	v.strs[0] = ch
	e.protected = e.protected[:len(e.protected)-1]
	return v
}

// MkClosure wraps a Go function as a closure cell the engine can evaluate.
func (e *Engine) MkClosure(fn ClosureFunc) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alloc(&Value{typ: Clo, fn: fn})
}

// Eval invokes a closure cell over the given arguments. The closure, the
// arguments and the result are kept on the protection stack for the
// duration of the call; the result is returned unprotected, valid until the
// caller's next allocation.
//
// An error raised inside the closure surfaces as a PhaseEval error carrying
// the foreign message.
func (e *Engine) Eval(closure *Value, args ...*Value) (*Value, error) {
	closure.check()
	if closure.typ != Clo {
		return nil, errors.TypeMismatch(errors.PhaseEval, "func", closure.typ.String())
	}
	e.mu.Lock()
	base := len(e.protected)
	e.protected = append(e.protected, closure)
	e.protected = append(e.protected, args...)
	e.mu.Unlock()

	res, err := closure.fn(e, args)

	e.mu.Lock()
	e.protected = e.protected[:base]
	e.mu.Unlock()

	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return nil, err
		}
		return nil, errors.EvalFailed(err.Error())
	}
	if res == nil {
		res = e.nilValue
	}
	return res, nil
}

// SetOption stores a named option. Option values holding cells act as GC
// roots for as long as the option is set.
func (e *Engine) SetOption(key string, v any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v == nil {
		delete(e.options, key)
		return
	}
	e.options[key] = v
}

// Option returns a named option, or nil when unset.
func (e *Engine) Option(key string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.options[key]
}

// RegisterBuiltin installs a named closure in the engine's builtin table.
func (e *Engine) RegisterBuiltin(name string, fn ClosureFunc) *Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.alloc(&Value{typ: Clo, fn: fn})
	e.builtins[name] = c
	return c
}

// Builtin looks up a named closure installed by RegisterBuiltin.
func (e *Engine) Builtin(name string) (*Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.builtins[name]; ok {
		return c, nil
	}
	return nil, errors.NotFound(errors.PhaseEval, "builtin", name)
}

// Builtins returns the names of all installed builtins.
func (e *Engine) Builtins() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.builtins))
	for n := range e.builtins {
		names = append(names, n)
	}
	return names
}

// HeapLen returns the number of live cells, for tests and diagnostics.
func (e *Engine) HeapLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.heap)
}

// Close shuts the engine down: any open device is closed and the heap is
// dropped.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.device != nil {
		err = e.device.close()
		e.device = nil
	}
	e.heap = make(map[*Value]struct{})
	e.protected = nil
	e.preserved = make(map[*Value]int)
	return err
}
