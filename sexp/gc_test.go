package sexp

import "testing"

func TestGC_SweepsUnprotected(t *testing.T) {
	e := New()
	v := e.AllocVector(Int, 3)
	if swept := e.GC(); swept == 0 {
		t.Fatal("unprotected cell should be swept")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("swept cell should be poisoned")
		}
	}()
	_ = v.Length()
}

func TestGC_SparesProtected(t *testing.T) {
	e := New()
	v := e.Protect(e.AllocVector(Real, 1))
	defer e.Unprotect(1)
	v.SetReal(0, 2.5)
	e.GC()
	if v.Real(0) != 2.5 {
		t.Fatal("protected cell was swept")
	}
}

func TestGC_ReachesThroughContainers(t *testing.T) {
	e := New()
	g := NewGuard(e)
	defer g.Done()

	outer := g.Protect(e.AllocVector(Vec, 1))
	inner := e.AllocVector(Str, 1)
	outer.SetVecElt(0, inner)
	inner.SetStrElt(0, e.MkChar("kept"))

	e.GC()
	if outer.VecElt(0).StrElt(0).CharString() != "kept" {
		t.Fatal("container traversal missed a reachable cell")
	}
}

func TestGC_ReachesAttributes(t *testing.T) {
	e := New()
	v := e.Protect(e.AllocVector(Int, 4))
	defer e.Unprotect(1)
	e.SetDim(v, 2, 2)
	e.GC()
	dims := e.DimOf(v)
	if len(dims) != 2 || dims[0] != 2 {
		t.Fatal("attribute pairlist was swept")
	}
}

func TestGC_SymbolsArePermanent(t *testing.T) {
	e := New()
	s := e.Install("perm")
	e.GC()
	if s.SymbolName() != "perm" {
		t.Fatal("interned symbol was swept")
	}
}

func TestGC_OptionCellsAreRoots(t *testing.T) {
	e := New()
	v := e.AllocVector(Int, 1)
	v.SetInt(0, 5)
	e.SetOption("hook", v)
	e.GC()
	if v.Int(0) != 5 {
		t.Fatal("cell stored in an option was swept")
	}
	e.SetOption("hook", nil)
	e.GC()
	if v.typ != freed {
		t.Fatal("cell should be swept once the option is cleared")
	}
}

func TestGC_AutomaticTrigger(t *testing.T) {
	e := NewWithConfig(&Config{GCThreshold: 8})
	kept := e.Protect(e.AllocVector(Int, 1))
	defer e.Unprotect(1)
	kept.SetInt(0, 1)

	// churn enough garbage to cross the threshold several times
	for i := 0; i < 100; i++ {
		e.AllocVector(Real, 1)
	}
	if kept.Int(0) != 1 {
		t.Fatal("protected cell lost to automatic collection")
	}
	if e.HeapLen() > 50 {
		t.Fatalf("heap not being collected: %d live cells", e.HeapLen())
	}
}
