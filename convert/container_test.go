package convert

import (
	"reflect"
	"testing"

	"github.com/armgong/rbridge/sexp"
)

func TestMap_RoundTrip(t *testing.T) {
	e := sexp.New()
	in := map[string]int{"a": 1, "b": 2}

	cell, err := ToSexp(e, in)
	if err != nil {
		t.Fatal(err)
	}
	e.Protect(cell)
	defer e.Unprotect(1)

	if cell.Type() != sexp.Vec {
		t.Fatalf("map encoded as %v, want VECSXP", cell.Type())
	}
	names := e.Names(cell)
	if names.Length() != 2 {
		t.Fatal("names vector not attached")
	}

	got, err := To[map[string]int](e, cell)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round-trip %v -> %v", in, got)
	}
}

func TestMap_AllStringValuesNarrowToCharacterVector(t *testing.T) {
	e := sexp.New()
	in := map[int]string{1: "one", 2: "two"}

	cell, err := ToSexp(e, in)
	if err != nil {
		t.Fatal(err)
	}
	e.Protect(cell)
	defer e.Unprotect(1)

	if cell.Type() != sexp.Str {
		t.Fatalf("(key, string) mapping encoded as %v, want STRSXP", cell.Type())
	}

	got, err := To[map[int]string](e, cell)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round-trip %v -> %v", in, got)
	}
}

func TestMap_DynamicAllStringsNarrows(t *testing.T) {
	e := sexp.New()
	cell, err := ToSexp(e, map[string]any{"x": "a", "y": "b"})
	if err != nil {
		t.Fatal(err)
	}
	if cell.Type() != sexp.Str {
		t.Fatalf("encoded as %v, want STRSXP", cell.Type())
	}
}

func TestMap_FromPairlist(t *testing.T) {
	e := sexp.New()
	g := sexp.NewGuard(e)
	defer g.Done()

	two := g.Protect(e.AllocVector(sexp.Int, 1))
	two.SetInt(0, 2)
	tail := g.Protect(e.ConsTagged(two, nil, e.Install("b")))
	one := g.Protect(e.AllocVector(sexp.Int, 1))
	one.SetInt(0, 1)
	pl := g.Protect(e.ConsTagged(one, tail, e.Install("a")))

	got, err := To[map[string]int](e, pl)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"a": 1, "b": 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pairlist decode = %v", got)
	}
}

func TestMap_MissingNamesFails(t *testing.T) {
	e := sexp.New()
	cell, _ := ToSexp(e, []any{1, 2})
	_, err := To[map[string]any](e, cell)
	if err == nil {
		t.Fatal("container without names must not invent positional keys")
	}
}

func TestMap_KeyCollisionAfterStringification(t *testing.T) {
	e := sexp.New()
	in := map[any]int{1: 1, "1": 2}
	if _, err := ToSexp(e, in); err == nil {
		t.Fatal("colliding stringified keys must be rejected")
	}
}

func TestMap_IntegerKeysDecode(t *testing.T) {
	e := sexp.New()
	cell, err := ToSexp(e, map[int]int{10: 100})
	if err != nil {
		t.Fatal(err)
	}
	got, err := To[map[int]int](e, cell)
	if err != nil {
		t.Fatal(err)
	}
	if got[10] != 100 {
		t.Fatalf("decode = %v", got)
	}
}

func TestMap_NestedValues(t *testing.T) {
	e := sexp.New()
	in := map[string]any{
		"nums":  []float64{1, 2},
		"label": "x",
	}
	cell, err := ToSexp(e, in)
	if err != nil {
		t.Fatal(err)
	}
	e.Protect(cell)
	defer e.Unprotect(1)

	got, err := To[map[string]any](e, cell)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got["nums"], []float64{1, 2}) || got["label"] != "x" {
		t.Fatalf("nested decode = %#v", got)
	}
}
