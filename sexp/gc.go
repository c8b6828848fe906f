package sexp

// GC runs a full mark-and-sweep collection cycle. Roots are the protection
// stack, the persistent-root table, the symbol and builtin tables, and any
// cells stored in named options. Swept cells are poisoned so a stale *Value
// fails loudly instead of silently reading freed memory.
func (e *Engine) GC() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collect()
}

func (e *Engine) collect() int {
	marked := make(map[*Value]struct{}, len(e.heap))

	var mark func(v *Value)
	mark = func(v *Value) {
		if v == nil || v == e.nilValue {
			return
		}
		if _, ok := marked[v]; ok {
			return
		}
		marked[v] = struct{}{}
		for _, ch := range v.strs {
			mark(ch)
		}
		for _, el := range v.list {
			mark(el)
		}
		mark(v.car)
		mark(v.cdr)
		mark(v.tag)
		mark(v.attr)
	}

	for _, v := range e.protected {
		mark(v)
	}
	for v := range e.preserved {
		mark(v)
	}
	for _, s := range e.symbols {
		mark(s)
	}
	for _, c := range e.builtins {
		mark(c)
	}
	for _, opt := range e.options {
		if v, ok := opt.(*Value); ok {
			mark(v)
		}
	}

	swept := 0
	for v := range e.heap {
		if _, ok := marked[v]; ok {
			continue
		}
		delete(e.heap, v)
		// poison
		v.typ = freed
		v.ints = nil
		v.reals = nil
		v.cplx = nil
		v.strs = nil
		v.list = nil
		v.car = nil
		v.cdr = nil
		v.tag = nil
		v.attr = nil
		v.fn = nil
		v.name = ""
		swept++
	}

	if swept > 0 {
		debugf("gc: swept %d cells, %d live", swept, len(e.heap))
	}
	return swept
}
