package types

import "testing"

func TestNumericKindUnboxes(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	if k, ok := NumericKind(s, Int); !ok || k != PrimInt {
		t.Fatalf("int is numeric")
	}
	if k, ok := NumericKind(s, cls(w.Integer)); !ok || k != PrimInt {
		t.Fatalf("Integer unboxes to int for promotion")
	}
	if _, ok := NumericKind(s, Boolean); ok {
		t.Fatalf("boolean is not numeric")
	}
	if _, ok := NumericKind(s, cls(w.String)); ok {
		t.Fatalf("String is not numeric")
	}
}

func TestUnaryPromotion(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	cases := []struct {
		in   Type
		want PrimitiveType
	}{
		{Byte, Int},
		{Short, Int},
		{Char, Int},
		{Int, Int},
		{Long, Long},
		{Double, Double},
		{cls(w.Short), Int},
		{cls(w.Long), Long},
	}
	for _, c := range cases {
		got, ok := UnaryPromote(s, c.in)
		if !ok || got != c.want {
			t.Fatalf("UnaryPromote(%s) = %v ok=%v, want %s", FormatType(s, c.in), got, ok, c.want.Name())
		}
	}
	if _, ok := UnaryPromote(s, Boolean); ok {
		t.Fatalf("boolean does not promote")
	}
}

func TestBinaryPromotion(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	cases := []struct {
		a, b Type
		want PrimitiveType
	}{
		{Byte, Byte, Int},
		{Int, Long, Long},
		{Long, Float, Float},
		{Int, Double, Double},
		{Char, Int, Int},
		{cls(w.Integer), cls(w.Long), Long},
	}
	for _, c := range cases {
		got, ok := BinaryPromote(s, c.a, c.b)
		if !ok || got != c.want {
			t.Fatalf("BinaryPromote(%s, %s) = %v ok=%v, want %s",
				FormatType(s, c.a), FormatType(s, c.b), got, ok, c.want.Name())
		}
	}
	if _, ok := BinaryPromote(s, Int, Boolean); ok {
		t.Fatalf("boolean operands do not promote")
	}
}

func TestConditionKind(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	if !ConditionKind(s, Boolean) {
		t.Fatalf("boolean drives a branch")
	}
	if !ConditionKind(s, cls(w.Boolean)) {
		t.Fatalf("the Boolean wrapper drives a branch after unboxing")
	}
	if ConditionKind(s, Int) {
		t.Fatalf("int is not a condition")
	}
	if !ConditionKind(s, ErrorType{}) {
		t.Fatalf("a failed condition type must not cascade")
	}
}
