package types

import (
	"fmt"
	"math"
)

// ConstKind enumerates the kinds of compile-time constant values.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstLong
	ConstFloat
	ConstDouble
	ConstBool
	ConstChar
	ConstString
)

// ConstValue is a compile-time constant. Int and char values live in I with
// exact 32-bit semantics; long values use the full width of I.
type ConstValue struct {
	Kind ConstKind
	I    int64
	F    float64
	B    bool
	S    string
}

func IntConst(v int32) ConstValue      { return ConstValue{Kind: ConstInt, I: int64(v)} }
func LongConst(v int64) ConstValue     { return ConstValue{Kind: ConstLong, I: v} }
func FloatConst(v float64) ConstValue  { return ConstValue{Kind: ConstFloat, F: v} }
func DoubleConst(v float64) ConstValue { return ConstValue{Kind: ConstDouble, F: v} }
func BoolConst(v bool) ConstValue      { return ConstValue{Kind: ConstBool, B: v} }
func CharConst(v rune) ConstValue      { return ConstValue{Kind: ConstChar, I: int64(v)} }
func StringConst(v string) ConstValue  { return ConstValue{Kind: ConstString, S: v} }

// Type returns the Java type of the constant.
func (v ConstValue) Type(env Env) Type {
	switch v.Kind {
	case ConstInt:
		return Int
	case ConstLong:
		return Long
	case ConstFloat:
		return Float
	case ConstDouble:
		return Double
	case ConstBool:
		return Boolean
	case ConstChar:
		return Char
	case ConstString:
		return cls(env.WellKnown().String)
	}
	return UnknownType{}
}

func (v ConstValue) isIntLike() bool {
	return v.Kind == ConstInt || v.Kind == ConstChar
}

// RepresentableIn reports whether an int-like constant fits the target
// primitive, which is what licenses narrowing in assignment contexts.
func (v ConstValue) RepresentableIn(k PrimitiveKind) bool {
	if !v.isIntLike() {
		return false
	}
	switch k {
	case PrimByte:
		return v.I >= math.MinInt8 && v.I <= math.MaxInt8
	case PrimShort:
		return v.I >= math.MinInt16 && v.I <= math.MaxInt16
	case PrimChar:
		return v.I >= 0 && v.I <= math.MaxUint16
	case PrimInt:
		return v.I >= math.MinInt32 && v.I <= math.MaxInt32
	}
	return false
}

func (v ConstValue) render() string {
	switch v.Kind {
	case ConstInt, ConstLong:
		return fmt.Sprintf("%d", v.I)
	case ConstFloat, ConstDouble:
		return fmt.Sprintf("%g", v.F)
	case ConstBool:
		return fmt.Sprintf("%t", v.B)
	case ConstChar:
		return string(rune(v.I))
	case ConstString:
		return v.S
	}
	return ""
}

// promoteConst widens an int-like or numeric constant to the given numeric
// rank for binary folding.
func promoteConst(v ConstValue, k ConstKind) ConstValue {
	if v.Kind == k {
		return v
	}
	switch k {
	case ConstInt:
		return ConstValue{Kind: ConstInt, I: int64(int32(v.I))}
	case ConstLong:
		return ConstValue{Kind: ConstLong, I: v.I}
	case ConstFloat, ConstDouble:
		out := ConstValue{Kind: k}
		switch v.Kind {
		case ConstFloat, ConstDouble:
			out.F = v.F
		default:
			out.F = float64(v.I)
		}
		return out
	}
	return v
}

func numericRank(k ConstKind) int {
	switch k {
	case ConstDouble:
		return 4
	case ConstFloat:
		return 3
	case ConstLong:
		return 2
	case ConstInt, ConstChar:
		return 1
	}
	return 0
}

// FoldUnary folds a unary operator over a constant. Int negation wraps at 32
// bits, so -(-2147483648) stays -2147483648.
func FoldUnary(op string, v ConstValue) (ConstValue, bool) {
	switch op {
	case "+":
		if v.Kind == ConstChar {
			return promoteConst(v, ConstInt), true
		}
		if numericRank(v.Kind) > 0 {
			return v, true
		}
	case "-":
		switch v.Kind {
		case ConstInt, ConstChar:
			return IntConst(-int32(v.I)), true
		case ConstLong:
			return LongConst(-v.I), true
		case ConstFloat:
			return FloatConst(-v.F), true
		case ConstDouble:
			return DoubleConst(-v.F), true
		}
	case "~":
		switch v.Kind {
		case ConstInt, ConstChar:
			return IntConst(^int32(v.I)), true
		case ConstLong:
			return LongConst(^v.I), true
		}
	case "!":
		if v.Kind == ConstBool {
			return BoolConst(!v.B), true
		}
	}
	return ConstValue{}, false
}

// FoldBinary folds a binary operator over two constants following Java
// constant-expression semantics: binary numeric promotion, two's-complement
// wraparound at the promoted width, and no folding of division by zero.
func FoldBinary(op string, a, b ConstValue) (ConstValue, bool) {
	if op == "+" && (a.Kind == ConstString || b.Kind == ConstString) {
		return StringConst(a.render() + b.render()), true
	}
	switch op {
	case "&&":
		if a.Kind == ConstBool && b.Kind == ConstBool {
			return BoolConst(a.B && b.B), true
		}
		return ConstValue{}, false
	case "||":
		if a.Kind == ConstBool && b.Kind == ConstBool {
			return BoolConst(a.B || b.B), true
		}
		return ConstValue{}, false
	}
	if a.Kind == ConstBool && b.Kind == ConstBool {
		switch op {
		case "&":
			return BoolConst(a.B && b.B), true
		case "|":
			return BoolConst(a.B || b.B), true
		case "^":
			return BoolConst(a.B != b.B), true
		case "==":
			return BoolConst(a.B == b.B), true
		case "!=":
			return BoolConst(a.B != b.B), true
		}
		return ConstValue{}, false
	}
	ra, rb := numericRank(a.Kind), numericRank(b.Kind)
	if ra == 0 || rb == 0 {
		if a.Kind == ConstString && b.Kind == ConstString {
			switch op {
			case "==":
				return BoolConst(a.S == b.S), true
			case "!=":
				return BoolConst(a.S != b.S), true
			}
		}
		return ConstValue{}, false
	}
	switch op {
	case "<<", ">>", ">>>":
		return foldShift(op, a, b)
	}
	k := a.Kind
	if rb > ra {
		k = b.Kind
	}
	if k == ConstChar {
		k = ConstInt
	}
	x, y := promoteConst(a, k), promoteConst(b, k)
	switch k {
	case ConstInt:
		return foldInt(op, int32(x.I), int32(y.I))
	case ConstLong:
		return foldLong(op, x.I, y.I)
	case ConstFloat, ConstDouble:
		return foldFloat(op, k, x.F, y.F)
	}
	return ConstValue{}, false
}

func foldInt(op string, a, b int32) (ConstValue, bool) {
	switch op {
	case "+":
		return IntConst(a + b), true
	case "-":
		return IntConst(a - b), true
	case "*":
		return IntConst(a * b), true
	case "/":
		if b == 0 {
			return ConstValue{}, false
		}
		return IntConst(a / b), true
	case "%":
		if b == 0 {
			return ConstValue{}, false
		}
		return IntConst(a % b), true
	case "&":
		return IntConst(a & b), true
	case "|":
		return IntConst(a | b), true
	case "^":
		return IntConst(a ^ b), true
	case "<":
		return BoolConst(a < b), true
	case "<=":
		return BoolConst(a <= b), true
	case ">":
		return BoolConst(a > b), true
	case ">=":
		return BoolConst(a >= b), true
	case "==":
		return BoolConst(a == b), true
	case "!=":
		return BoolConst(a != b), true
	}
	return ConstValue{}, false
}

func foldLong(op string, a, b int64) (ConstValue, bool) {
	switch op {
	case "+":
		return LongConst(a + b), true
	case "-":
		return LongConst(a - b), true
	case "*":
		return LongConst(a * b), true
	case "/":
		if b == 0 {
			return ConstValue{}, false
		}
		return LongConst(a / b), true
	case "%":
		if b == 0 {
			return ConstValue{}, false
		}
		return LongConst(a % b), true
	case "&":
		return LongConst(a & b), true
	case "|":
		return LongConst(a | b), true
	case "^":
		return LongConst(a ^ b), true
	case "<":
		return BoolConst(a < b), true
	case "<=":
		return BoolConst(a <= b), true
	case ">":
		return BoolConst(a > b), true
	case ">=":
		return BoolConst(a >= b), true
	case "==":
		return BoolConst(a == b), true
	case "!=":
		return BoolConst(a != b), true
	}
	return ConstValue{}, false
}

func foldFloat(op string, k ConstKind, a, b float64) (ConstValue, bool) {
	mk := func(f float64) ConstValue {
		if k == ConstFloat {
			return FloatConst(float64(float32(f)))
		}
		return DoubleConst(f)
	}
	switch op {
	case "+":
		return mk(a + b), true
	case "-":
		return mk(a - b), true
	case "*":
		return mk(a * b), true
	case "/":
		return mk(a / b), true
	case "%":
		return mk(math.Mod(a, b)), true
	case "<":
		return BoolConst(a < b), true
	case "<=":
		return BoolConst(a <= b), true
	case ">":
		return BoolConst(a > b), true
	case ">=":
		return BoolConst(a >= b), true
	case "==":
		return BoolConst(a == b), true
	case "!=":
		return BoolConst(a != b), true
	}
	return ConstValue{}, false
}

// foldShift folds shifts: the left operand keeps its own promoted width and
// the shift distance is masked to that width, as the JVM does.
func foldShift(op string, a, b ConstValue) (ConstValue, bool) {
	if !a.isIntLike() && a.Kind != ConstLong {
		return ConstValue{}, false
	}
	if !b.isIntLike() && b.Kind != ConstLong {
		return ConstValue{}, false
	}
	if a.Kind == ConstLong {
		n := uint(b.I) & 63
		switch op {
		case "<<":
			return LongConst(a.I << n), true
		case ">>":
			return LongConst(a.I >> n), true
		case ">>>":
			return LongConst(int64(uint64(a.I) >> n)), true
		}
		return ConstValue{}, false
	}
	v := int32(a.I)
	n := uint(b.I) & 31
	switch op {
	case "<<":
		return IntConst(v << n), true
	case ">>":
		return IntConst(v >> n), true
	case ">>>":
		return IntConst(int32(uint32(v) >> n)), true
	}
	return ConstValue{}, false
}
