package sexp

import (
	"strings"
	"testing"

	rberrors "github.com/armgong/rbridge/errors"
)

func TestAllocVector_Payloads(t *testing.T) {
	e := New()

	iv := e.AllocVector(Int, 3)
	if iv.Type() != Int || iv.Length() != 3 {
		t.Fatalf("Int vector: type %v len %d", iv.Type(), iv.Length())
	}
	iv.SetInt(2, 42)
	if iv.Int(2) != 42 {
		t.Fatal("Int element round-trip failed")
	}

	rv := e.AllocVector(Real, 2)
	rv.SetReal(0, 1.5)
	if rv.Real(0) != 1.5 {
		t.Fatal("Real element round-trip failed")
	}

	cv := e.AllocVector(Cplx, 1)
	cv.SetComplex(0, complex(1, -2))
	if cv.Complex(0) != complex(1, -2) {
		t.Fatal("Complex element round-trip failed")
	}

	sv := e.AllocVector(Str, 2)
	if !sv.StrElt(0).IsNil() {
		t.Fatal("fresh Str elements should be Nil")
	}

	vv := e.AllocVector(Vec, 2)
	if !vv.VecElt(1).IsNil() {
		t.Fatal("fresh Vec elements should be Nil")
	}
}

func TestAllocMatrix_DimAttribute(t *testing.T) {
	e := New()
	m := e.AllocMatrix(Real, 2, 3)
	if m.Length() != 6 {
		t.Fatalf("matrix length = %d, want 6", m.Length())
	}
	dims := e.DimOf(m)
	if len(dims) != 2 || dims[0] != 2 || dims[1] != 3 {
		t.Fatalf("dims = %v, want [2 3]", dims)
	}
}

func TestInstall_Interning(t *testing.T) {
	e := New()
	a := e.Install("x")
	b := e.Install("x")
	if a != b {
		t.Fatal("Install should intern symbols")
	}
	if a.SymbolName() != "x" {
		t.Fatalf("SymbolName = %q", a.SymbolName())
	}
}

func TestMkChar_EncodingDetection(t *testing.T) {
	e := New()
	ascii := e.MkChar("plain")
	if ascii.CharEncoding() != EncNative {
		t.Error("ASCII content should take the native fast path")
	}
	utf := e.MkChar("héllo")
	if utf.CharEncoding() != EncUTF8 {
		t.Error("non-ASCII content should be tagged UTF-8")
	}
	if utf.CharString() != "héllo" {
		t.Errorf("CharString = %q", utf.CharString())
	}
}

func TestScalarString(t *testing.T) {
	e := New()
	v := e.ScalarString(e.MkChar("hi"))
	if v.Type() != Str || v.Length() != 1 {
		t.Fatalf("ScalarString: type %v len %d", v.Type(), v.Length())
	}
	if v.StrElt(0).CharString() != "hi" {
		t.Fatal("ScalarString content mismatch")
	}
}

func TestNames(t *testing.T) {
	e := New()
	g := NewGuard(e)
	defer g.Done()

	v := g.Protect(e.AllocVector(Int, 2))
	names := g.Protect(e.AllocVector(Str, 2))
	names.SetStrElt(0, g.Protect(e.MkChar("a")))
	names.SetStrElt(1, g.Protect(e.MkChar("b")))
	e.SetNames(v, names)

	got := e.Names(v)
	if got.Length() != 2 || got.StrElt(1).CharString() != "b" {
		t.Fatal("names attribute round-trip failed")
	}
}

func TestEval_Builtin(t *testing.T) {
	e := New()
	sum, err := e.Builtin("sum")
	if err != nil {
		t.Fatal(err)
	}
	g := NewGuard(e)
	defer g.Done()
	a := g.Protect(e.AllocVector(Int, 2))
	a.SetInt(0, 1)
	a.SetInt(1, 2)
	b := g.Protect(e.AllocVector(Real, 1))
	b.SetReal(0, 0.5)

	res, err := e.Eval(sum, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Type() != Real || res.Real(0) != 3.5 {
		t.Fatalf("sum = %v", res.Real(0))
	}
}

func TestEval_ErrorSurfacesMessage(t *testing.T) {
	e := New()
	boom := e.MkClosure(func(_ *Engine, _ []*Value) (*Value, error) {
		return nil, rberrors.EvalFailed("object 'x' not found")
	})

	depth := e.ProtectDepth()
	_, err := e.Eval(boom)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "object 'x' not found") {
		t.Errorf("foreign message lost: %v", err)
	}
	if e.ProtectDepth() != depth {
		t.Error("Eval leaked protection entries on the error path")
	}
}

func TestEval_NonClosure(t *testing.T) {
	e := New()
	v := e.AllocVector(Int, 1)
	if _, err := e.Eval(v); err == nil {
		t.Fatal("evaluating a non-closure should fail")
	}
}

func TestOptions(t *testing.T) {
	e := New()
	if e.Option("missing") != nil {
		t.Fatal("unset option should be nil")
	}
	e.SetOption("k", "v")
	if e.Option("k") != "v" {
		t.Fatal("option round-trip failed")
	}
	e.SetOption("k", nil)
	if e.Option("k") != nil {
		t.Fatal("nil should clear the option")
	}
}

func TestBuiltin_Paste(t *testing.T) {
	e := New()
	paste, _ := e.Builtin("paste")
	g := NewGuard(e)
	defer g.Done()
	a := g.Protect(e.MkString("n ="))
	b := g.Protect(e.AllocVector(Int, 1))
	b.SetInt(0, 7)
	res, err := e.Eval(paste, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.StrElt(0).CharString(); got != "n = 7" {
		t.Fatalf("paste = %q", got)
	}
}

func TestBuiltin_Concat(t *testing.T) {
	e := New()
	c, _ := e.Builtin("c")
	g := NewGuard(e)
	defer g.Done()
	a := g.Protect(e.AllocVector(Int, 2))
	a.SetInt(0, 1)
	a.SetInt(1, 2)
	b := g.Protect(e.AllocVector(Real, 1))
	b.SetReal(0, 3.5)

	res, err := e.Eval(c, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Type() != Real || res.Length() != 3 {
		t.Fatalf("c() type %v len %d", res.Type(), res.Length())
	}
	if res.Real(2) != 3.5 || res.Real(0) != 1 {
		t.Fatal("c() promotion lost values")
	}
}
