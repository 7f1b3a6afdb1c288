package types

import (
	"math"
	"testing"
)

func TestIntFoldingWrapsAtThirtyTwoBits(t *testing.T) {
	max := IntConst(math.MaxInt32)
	one := IntConst(1)
	got, ok := FoldBinary("+", max, one)
	if !ok {
		t.Fatalf("expected fold")
	}
	if got.Kind != ConstInt || got.I != math.MinInt32 {
		t.Fatalf("MAX_VALUE + 1 should wrap to MIN_VALUE, got %d", got.I)
	}
}

func TestMinValueDivMinusOne(t *testing.T) {
	min := IntConst(math.MinInt32)
	minusOne := IntConst(-1)
	got, ok := FoldBinary("/", min, minusOne)
	if !ok {
		t.Fatalf("expected fold")
	}
	if got.I != math.MinInt32 {
		t.Fatalf("MIN_VALUE / -1 wraps to MIN_VALUE, got %d", got.I)
	}
	rem, ok := FoldBinary("%", min, minusOne)
	if !ok || rem.I != 0 {
		t.Fatalf("MIN_VALUE %% -1 is 0, got %v %d", ok, rem.I)
	}
}

func TestDivisionByZeroDoesNotFold(t *testing.T) {
	if _, ok := FoldBinary("/", IntConst(1), IntConst(0)); ok {
		t.Fatalf("division by zero must not fold")
	}
	if _, ok := FoldBinary("%", LongConst(1), LongConst(0)); ok {
		t.Fatalf("remainder by zero must not fold")
	}
}

func TestUnaryMinusOnMinValue(t *testing.T) {
	got, ok := FoldUnary("-", IntConst(math.MinInt32))
	if !ok {
		t.Fatalf("expected fold")
	}
	if got.I != math.MinInt32 {
		t.Fatalf("-(MIN_VALUE) wraps back to MIN_VALUE, got %d", got.I)
	}
	lg, ok := FoldUnary("-", LongConst(math.MinInt64))
	if !ok || lg.I != math.MinInt64 {
		t.Fatalf("long MIN_VALUE negation should wrap, got %v %d", ok, lg.I)
	}
}

func TestShiftDistanceMasking(t *testing.T) {
	got, ok := FoldBinary("<<", IntConst(1), IntConst(33))
	if !ok || got.I != 2 {
		t.Fatalf("1 << 33 masks to 1 << 1 = 2, got %v %d", ok, got.I)
	}
	lg, ok := FoldBinary("<<", LongConst(1), IntConst(65))
	if !ok || lg.I != 2 || lg.Kind != ConstLong {
		t.Fatalf("1L << 65 masks to 2, got %v %+v", ok, lg)
	}
	ur, ok := FoldBinary(">>>", IntConst(-1), IntConst(28))
	if !ok || ur.I != 15 {
		t.Fatalf("-1 >>> 28 = 15, got %v %d", ok, ur.I)
	}
}

func TestPromotionPicksWiderKind(t *testing.T) {
	got, ok := FoldBinary("+", IntConst(1), LongConst(2))
	if !ok || got.Kind != ConstLong || got.I != 3 {
		t.Fatalf("int + long folds at long, got %+v", got)
	}
	fd, ok := FoldBinary("*", IntConst(2), DoubleConst(1.5))
	if !ok || fd.Kind != ConstDouble || fd.F != 3 {
		t.Fatalf("int * double folds at double, got %+v", fd)
	}
	ch, ok := FoldBinary("+", CharConst('a'), IntConst(1))
	if !ok || ch.Kind != ConstInt || ch.I != 98 {
		t.Fatalf("char + int folds at int, got %+v", ch)
	}
}

func TestStringConcatenationFolds(t *testing.T) {
	got, ok := FoldBinary("+", StringConst("x="), IntConst(7))
	if !ok || got.Kind != ConstString || got.S != "x=7" {
		t.Fatalf("string + int folds to %q", got.S)
	}
}

func TestBooleanFolding(t *testing.T) {
	got, ok := FoldBinary("&&", BoolConst(true), BoolConst(false))
	if !ok || got.B {
		t.Fatalf("true && false should fold to false")
	}
	x, ok := FoldBinary("^", BoolConst(true), BoolConst(true))
	if !ok || x.B {
		t.Fatalf("true ^ true should fold to false")
	}
}

func TestRepresentableIn(t *testing.T) {
	if !IntConst(127).RepresentableIn(PrimByte) {
		t.Fatalf("127 fits byte")
	}
	if IntConst(128).RepresentableIn(PrimByte) {
		t.Fatalf("128 does not fit byte")
	}
	if !IntConst(65535).RepresentableIn(PrimChar) {
		t.Fatalf("65535 fits char")
	}
	if IntConst(-1).RepresentableIn(PrimChar) {
		t.Fatalf("-1 does not fit char")
	}
	if LongConst(1).RepresentableIn(PrimByte) {
		t.Fatalf("long constants never narrow")
	}
}
