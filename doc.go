// Package rbridge embeds an R-semantics engine in a Go process and converts
// values across the boundary in both directions, with a GC protection
// protocol keeping foreign cells alive while host code still references
// them, and a notebook graphics capture pipeline displaying engine-rendered
// plots inline.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	rbridge/       Root package with the DisplaySink and NotebookHooks interfaces
//	├── sexp/      Engine surface: cell heap, symbols, protect stack, devices
//	├── convert/   Bidirectional Go <-> engine value conversion
//	├── graphics/  Notebook graphics capture pipeline
//	└── errors/    Structured error types for debugging
//
// # Quick Start
//
// Convert values through the engine and call a closure:
//
//	e := sexp.New()
//	defer e.Close()
//
//	cell, err := convert.ToSexp(e, []float64{1, 2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sum, _ := convert.Func(e, "sum")
//	total, err := sum.Call(cell)
//
// Wire plot capture into a notebook frontend:
//
//	p, err := graphics.New(e, sink, hooks)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//	p.SetDeviceKind(graphics.KindSVG)
//
// After each evaluation unit the notebook's post-execute hook drains the
// device's temp files to the display sink; the post-error hook discards
// them silently.
//
// # Memory safety
//
// Every cell returned by an allocation entry point is owned by the engine's
// collector. Host code pins cells with sexp.Protect/Unprotect (strict LIFO
// nesting), scoped sexp.Guard frames, or sexp.Preserve/Release for
// arbitrary lifetimes. The convert package follows this discipline
// internally; callers composing raw engine calls must do the same.
package rbridge
