package types

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/ast"
)

func TestTypeEqual(t *testing.T) {
	if !Int.Equal(Type{Path: "Int"}) {
		t.Fatal("Int should equal another Int-path Type")
	}
	if Int.Equal(Bool) {
		t.Fatal("Int should not equal Bool")
	}
	if !UnitT.Equal(Type{Unit: true}) {
		t.Fatal("Unit values should be equal regardless of Path")
	}
	if UnitT.Equal(Int) {
		t.Fatal("Unit should not equal Int")
	}
}

func TestTypeString(t *testing.T) {
	if Int.String() != "Int" || Bool.String() != "Bool" || String.String() != "String" {
		t.Fatalf("builtin type names: %q %q %q", Int.String(), Bool.String(), String.String())
	}
	if UnitT.String() != "Unit" {
		t.Fatalf("UnitT.String() = %q; want Unit", UnitT.String())
	}
}

func TestFromTypeRef(t *testing.T) {
	if got := FromTypeRef(nil); !got.Equal(UnitT) {
		t.Fatalf("FromTypeRef(nil) = %v; want Unit", got)
	}
	ref := &ast.TypeRef{Path: ast.Path{"Net", "Http"}}
	got := FromTypeRef(ref)
	if got.Unit || got.Path != "Net.Http" {
		t.Fatalf("FromTypeRef(Net.Http) = %+v", got)
	}
}

func TestValueConstructorsAndKind(t *testing.T) {
	cases := []struct {
		v    Value
		kind ValueKind
		typ  Type
	}{
		{UnitValue(), VUnit, UnitT},
		{IntValue(7), VInt, Int},
		{BoolValue(true), VBool, Bool},
		{StringValue("hi"), VString, String},
	}
	for _, c := range cases {
		if c.v.Kind() != c.kind {
			t.Errorf("Kind() = %v; want %v", c.v.Kind(), c.kind)
		}
		if !c.v.TypeOf().Equal(c.typ) {
			t.Errorf("TypeOf() = %v; want %v", c.v.TypeOf(), c.typ)
		}
	}
	if !UnitValue().IsUnit() {
		t.Fatal("UnitValue().IsUnit() should be true")
	}
	if IntValue(1).IsUnit() {
		t.Fatal("IntValue(1).IsUnit() should be false")
	}
}

func TestValueAccessorsRejectWrongKind(t *testing.T) {
	if _, ok := IntValue(3).Bool(); ok {
		t.Fatal("Bool() on an Int value should report !ok")
	}
	if _, ok := BoolValue(true).Int(); ok {
		t.Fatal("Int() on a Bool value should report !ok")
	}
	if _, ok := IntValue(3).StringOrEmpty(); ok {
		t.Fatal("StringOrEmpty() on an Int value should report !ok")
	}
	s, ok := StringValue("hi").StringOrEmpty()
	if !ok || s != "hi" {
		t.Fatalf("StringOrEmpty() = %q, %v; want hi, true", s, ok)
	}
}

func TestValueEqual(t *testing.T) {
	if !IntValue(5).Equal(IntValue(5)) {
		t.Fatal("equal ints should compare equal")
	}
	if IntValue(5).Equal(IntValue(6)) {
		t.Fatal("different ints should not compare equal")
	}
	if IntValue(5).Equal(StringValue("5")) {
		t.Fatal("values of different kinds should never compare equal")
	}
	if !UnitValue().Equal(UnitValue()) {
		t.Fatal("Unit should equal Unit")
	}
}

func TestValueStringRendersLiteralForm(t *testing.T) {
	cases := map[Value]string{
		IntValue(42):         "42",
		BoolValue(true):      "true",
		BoolValue(false):     "false",
		StringValue("hi"):    "hi",
	}
	for v, want := range cases {
		if got := v.String(); got != want {
			t.Errorf("%+v.String() = %q; want %q", v, got, want)
		}
	}
}
