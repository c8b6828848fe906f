// Package sexp implements the embedded runtime surface the bridge converts
// against: a heap of tagged cells (Sxp variants), the symbol table, the GC
// protection protocol, the persistent-root table, named options, and the
// file-backed graphics device slot.
//
// # Cells and lifetime
//
// Every allocation entry point returns a *Value whose lifetime is owned by
// the engine's collector, not Go's. A fresh cell is live only until the next
// allocation that triggers a collection cycle; pin it first:
//
//	v := e.Protect(e.AllocVector(sexp.Real, 3))
//	defer e.Unprotect(1)
//
// Protect returns its argument, so allocation and protection compose in one
// expression. Protection is a strict LIFO discipline: every Protect is
// matched by exactly one later Unprotect, in nesting order. The engine does
// not verify balance. For scoped code, Guard releases its own frame on every
// exit path:
//
//	g := sexp.NewGuard(e)
//	defer g.Done()
//	v := g.Protect(e.AllocVector(sexp.Int, n))
//
// For host-visible lifetimes longer than a call frame, Preserve/Release
// register a cell in the persistent-root table.
//
// Collected cells are poisoned: any later access panics with a
// use_after_free error instead of silently reading freed memory.
//
// # Evaluation
//
// Closures are cells wrapping a Go function. Eval pins the closure and its
// arguments for the duration of the call and surfaces closure errors as
// structured eval_failed errors. The engine ships a few base builtins (sum,
// c, paste, length, identity, toupper) so the evaluation path has real
// closures to drive; implementing the source language is out of scope.
//
// # Serialization
//
// The interpreter is not reentrant-safe. Every entry point serializes on a
// single engine lock, so all interaction happens on one logical thread.
package sexp
