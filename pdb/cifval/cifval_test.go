package cifval_test

import (
	"errors"
	"testing"

	. "github.com/andrew-torda/rotag/pdb/cifval"
)

func TestKinds(t *testing.T) {
	var tests = []struct {
		in     string
		quoted bool
		kind   Kind
	}{
		{"1", false, KindInt},
		{"-17", false, KindInt},
		{"+3", false, KindInt},
		{"12(3)", false, KindInt},
		{"1.5", false, KindFloat},
		{"-0.624", false, KindFloat},
		{"1.", false, KindFloat},
		{".5", false, KindFloat},
		{"1e3", false, KindFloat},
		{"1.5E-3", false, KindFloat},
		{"27.27(12)", false, KindFloat},
		{"99999999999999999999", false, KindFloat},
		{".", false, KindNull},
		{"?", false, KindNull},
		{"C", false, KindText},
		{"HETATM", false, KindText},
		{"1A", false, KindText},
		{"1.2.3", false, KindText},
		{"1e", false, KindText},
		{"1.5(", false, KindText},
		{"1.5()", false, KindText},
		{"-", false, KindText},
		{"1", true, KindText},
		{".", true, KindText},
		{"C5'", true, KindText},
	}
	for _, tt := range tests {
		v := New(tt.in, tt.quoted)
		if v.Kind() != tt.kind {
			t.Errorf("%q quoted %v: want %s got %s", tt.in, tt.quoted, tt.kind, v.Kind())
		}
		if v.String() != tt.in {
			t.Errorf("text of %q came back as %q", tt.in, v.String())
		}
	}
}

func TestNumbers(t *testing.T) {
	v := Parse("27.27(12)")
	if f, err := v.Float(); err != nil || f != 27.27 {
		t.Errorf("want 27.27, got %v %v", f, err)
	}
	v = Parse("-42")
	if i, err := v.Int(); err != nil || i != -42 {
		t.Errorf("want -42, got %v %v", i, err)
	}
	if f, err := v.Float(); err != nil || f != -42 {
		t.Errorf("int should widen to float, got %v %v", f, err)
	}
	if i, err := Parse("123").Int32(); err != nil || i != 123 {
		t.Errorf("Int32 got %v %v", i, err)
	}
	if _, err := Parse("4294967296").Int32(); err == nil {
		t.Error("Int32 should fail on something too big")
	}
}

func TestCoercion(t *testing.T) {
	for _, s := range []string{"C", ".", "?"} {
		v := Parse(s)
		if _, err := v.Int(); !errors.Is(err, ErrTypeCoercion) {
			t.Errorf("Int on %q should be a coercion error, got %v", s, err)
		}
		if _, err := v.Float(); !errors.Is(err, ErrTypeCoercion) {
			t.Errorf("Float on %q should be a coercion error, got %v", s, err)
		}
		if v.String() != s {
			t.Errorf("String on %q gave %q", s, v.String())
		}
	}
	_, err := Parse("1.5").Int()
	var ce *CoercionError
	if !errors.As(err, &ce) || ce.Got != KindFloat || ce.Want != KindInt {
		t.Errorf("Int on a float should say so, got %v", err)
	}
}

func TestNullAndZero(t *testing.T) {
	var zero Value
	if !zero.IsNull() || zero.String() != "." {
		t.Errorf("zero value should be a null printing as \".\", got %q", zero.String())
	}
	if !Null().IsNull() {
		t.Error("Null() is not null")
	}
	if Text("1").Kind() != KindText {
		t.Error("Text() should not look at its contents")
	}
}

func TestEqual(t *testing.T) {
	if !Parse("1").Equal(Text("1")) {
		t.Error("int 1 and text 1 should be equal")
	}
	if Parse("1.0").Equal(Parse("1")) {
		t.Error("1.0 and 1 differ as text")
	}
}
