package types

// NumericKind reports the primitive kind of a numeric operand, unboxing
// wrappers. Booleans are not numeric.
func NumericKind(env Env, t Type) (PrimitiveKind, bool) {
	if p, ok := t.(PrimitiveType); ok {
		if p.Kind == PrimBoolean {
			return 0, false
		}
		return p.Kind, true
	}
	if k, ok := UnboxedKind(env, t); ok && k != PrimBoolean {
		return k, true
	}
	return 0, false
}

// UnaryPromote applies unary numeric promotion: byte, short, and char lift
// to int, wrappers unbox first.
func UnaryPromote(env Env, t Type) (PrimitiveType, bool) {
	k, ok := NumericKind(env, t)
	if !ok {
		return PrimitiveType{}, false
	}
	switch k {
	case PrimByte, PrimShort, PrimChar:
		return Int, true
	}
	return PrimitiveType{Kind: k}, true
}

// BinaryPromote applies binary numeric promotion to a pair of operands.
func BinaryPromote(env Env, a, b Type) (PrimitiveType, bool) {
	ka, ok := NumericKind(env, a)
	if !ok {
		return PrimitiveType{}, false
	}
	kb, ok := NumericKind(env, b)
	if !ok {
		return PrimitiveType{}, false
	}
	switch {
	case ka == PrimDouble || kb == PrimDouble:
		return Double, true
	case ka == PrimFloat || kb == PrimFloat:
		return Float, true
	case ka == PrimLong || kb == PrimLong:
		return Long, true
	}
	return Int, true
}

// ConditionKind reports whether t can drive a branch: boolean or its
// wrapper.
func ConditionKind(env Env, t Type) bool {
	if IsErrorish(t) {
		return true
	}
	if p, ok := t.(PrimitiveType); ok {
		return p.Kind == PrimBoolean
	}
	k, ok := UnboxedKind(env, t)
	return ok && k == PrimBoolean
}
