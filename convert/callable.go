package convert

import (
	"github.com/armgong/rbridge/errors"
	"github.com/armgong/rbridge/sexp"
)

// Callable wraps an engine closure as a host-callable value. The captured
// cell is registered in the persistent-root table so it stays alive for as
// long as the host holds the Callable; Close releases the registration.
type Callable struct {
	e  *sexp.Engine
	fn *sexp.Value
}

// NewCallable wraps a closure cell. The cell is preserved until Close.
func NewCallable(e *sexp.Engine, v *sexp.Value) (*Callable, error) {
	if v.Type() != sexp.Clo {
		return nil, errors.TypeMismatch(errors.PhaseFromR, "*convert.Callable", v.Type().String())
	}
	e.Preserve(v)
	return &Callable{e: e, fn: v}, nil
}

// Func looks up a named engine builtin and wraps it.
func Func(e *sexp.Engine, name string) (*Callable, error) {
	c, err := e.Builtin(name)
	if err != nil {
		return nil, err
	}
	return NewCallable(e, c)
}

// Call converts each host argument to a fresh engine object, invokes the
// captured closure, and converts the result back with the default
// type-inferring conversion. This is the one path where conversion
// direction is chosen per call rather than by a caller-supplied target.
func (c *Callable) Call(args ...any) (any, error) {
	g := sexp.NewGuard(c.e)
	defer g.Done()

	conv := make([]*sexp.Value, len(args))
	for i, a := range args {
		cell, err := ToSexp(c.e, a)
		if err != nil {
			return nil, err
		}
		conv[i] = g.Protect(cell)
	}

	res, err := c.e.Eval(c.fn, conv...)
	if err != nil {
		return nil, err
	}
	g.Protect(res)
	return ToGoValue(c.e, res)
}

// Sexp returns the captured closure cell.
func (c *Callable) Sexp() *sexp.Value { return c.fn }

// Close releases the persistent-root registration. The Callable must not
// be invoked afterwards.
func (c *Callable) Close() error {
	if c.fn != nil {
		c.e.Release(c.fn)
		c.fn = nil
	}
	return nil
}
