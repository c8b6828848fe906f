package sexp

// Protect pushes a cell onto the protection stack and returns it unchanged,
// so allocation and protection compose in one expression:
//
//	v := e.Protect(e.AllocVector(sexp.Real, n))
//
// Every Protect must be matched by exactly one later Unprotect, in strict
// nesting order. The engine does not verify balance; an unbalanced sequence
// corrupts the root set, exactly as in the real runtime.
func (e *Engine) Protect(v *Value) *Value {
	v.check()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.protected = append(e.protected, v)
	return v
}

// Unprotect pops n entries from the protection stack.
func (e *Engine) Unprotect(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n > len(e.protected) {
		panic("sexp: Unprotect below stack base")
	}
	e.protected = e.protected[:len(e.protected)-n]
}

// ProtectDepth returns the current protection stack depth, for scope
// balance assertions in tests and debug builds.
func (e *Engine) ProtectDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.protected)
}

// Preserve registers a cell in the persistent-root table, keeping it alive
// for an arbitrary host-visible lifetime. Calls nest: each Preserve needs a
// matching Release.
func (e *Engine) Preserve(v *Value) *Value {
	v.check()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preserved[v]++
	return v
}

// Release drops one persistent-root registration for the cell.
func (e *Engine) Release(v *Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := e.preserved[v]; n > 1 {
		e.preserved[v] = n - 1
	} else {
		delete(e.preserved, v)
	}
}

// Guard is a scoped protection frame. It remembers how many cells it pushed
// and releases exactly those on Done, so release is structurally guaranteed
// on every exit path:
//
//	g := sexp.NewGuard(e)
//	defer g.Done()
//	v := g.Protect(e.AllocVector(sexp.Int, n))
//
// Guards must be closed in strict nesting order relative to any bare
// Protect/Unprotect calls made while the guard is open.
type Guard struct {
	e *Engine
	n int
}

// NewGuard opens a protection frame on the engine's stack.
func NewGuard(e *Engine) *Guard {
	return &Guard{e: e}
}

// Protect pushes a cell within the guard's frame and returns it unchanged.
func (g *Guard) Protect(v *Value) *Value {
	g.e.Protect(v)
	g.n++
	return v
}

// Done pops everything the guard pushed. Safe to call once, typically
// deferred.
func (g *Guard) Done() {
	if g.n > 0 {
		g.e.Unprotect(g.n)
		g.n = 0
	}
}
