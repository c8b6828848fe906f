package sexp

// Attr returns the attribute with the given name, or Nil when absent.
func (e *Engine) Attr(v *Value, name string) *Value {
	v.check()
	e.mu.Lock()
	defer e.mu.Unlock()
	for p := v.attr; p != nil && p.typ == List; p = p.cdr {
		if p.tag != nil && p.tag.typ == Sym && p.tag.name == name {
			return p.car
		}
	}
	return e.nilValue
}

// SetAttr attaches an attribute to the cell, replacing any existing one of
// the same name. Attribute storage is a pairlist tagged with interned
// symbols, as in the real runtime.
func (e *Engine) SetAttr(v *Value, name string, val *Value) {
	v.check()
	val.check()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setAttr(v, name, val)
}

func (e *Engine) setAttr(v *Value, name string, val *Value) {
	for p := v.attr; p != nil && p.typ == List; p = p.cdr {
		if p.tag != nil && p.tag.typ == Sym && p.tag.name == name {
			p.car = val
			return
		}
	}
	// install and cons both allocate, so pin v and val across them
	base := len(e.protected)
	e.protected = append(e.protected, v, val)
	sym := e.install(name)
	cell := e.cons(val, v.attr, sym)
	v.attr = cell
	e.protected = e.protected[:base]
}

// Names returns the names attribute as a character vector, or Nil.
func (e *Engine) Names(v *Value) *Value { return e.Attr(v, "names") }

// SetNames attaches a character vector as the names attribute.
func (e *Engine) SetNames(v, names *Value) { e.SetAttr(v, "names", names) }

// Dim returns the dim attribute as an integer vector, or Nil.
func (e *Engine) Dim(v *Value) *Value { return e.Attr(v, "dim") }

// SetDim attaches dimension metadata to a vector cell.
func (e *Engine) SetDim(v *Value, dims ...int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.protected = append(e.protected, v)
	d := e.allocVector(Int, len(dims))
	for i, n := range dims {
		d.ints[i] = int32(n)
	}
	e.setAttr(v, "dim", d)
	e.protected = e.protected[:len(e.protected)-1]
}

// DimOf returns the dimension metadata as a Go slice, or nil when the cell
// carries none.
func (e *Engine) DimOf(v *Value) []int {
	d := e.Dim(v)
	if d.IsNil() || d.Type() != Int {
		return nil
	}
	out := make([]int, d.Length())
	for i := range out {
		out[i] = int(d.Int(i))
	}
	return out
}
