package types

// ConvStep labels one step of a conversion chain. The tier ordering ranks
// competing overloads: identity beats widening beats boxing beats unchecked
// beats narrowing.
type ConvStep uint8

const (
	StepIdentity ConvStep = iota
	StepWidening
	StepBoxing
	StepUnchecked
	StepNarrowing
)

func (s ConvStep) tier() int { return int(s) }

// Warning strings attached to conversions and resolved calls.
const (
	WarnUnchecked        = "unchecked-conversion"
	WarnUncheckedVarargs = "unchecked-varargs"
)

// Conversion records how a value moves from one type to another.
type Conversion struct {
	Steps    []ConvStep
	Warnings []string
}

// Score ranks a conversion for overload selection: the worst step dominates,
// then the chain length breaks ties.
func (c Conversion) Score() int {
	worst := 0
	for _, s := range c.Steps {
		if s.tier() > worst {
			worst = s.tier()
		}
	}
	return worst*10 + len(c.Steps)
}

func conv(steps ...ConvStep) Conversion { return Conversion{Steps: steps} }

// BoxOf returns the wrapper class for a primitive.
func BoxOf(env Env, k PrimitiveKind) ClassID {
	w := env.WellKnown()
	switch k {
	case PrimBoolean:
		return w.Boolean
	case PrimByte:
		return w.Byte
	case PrimShort:
		return w.Short
	case PrimChar:
		return w.Character
	case PrimInt:
		return w.Integer
	case PrimLong:
		return w.Long
	case PrimFloat:
		return w.Float
	}
	return w.Double
}

// UnboxedKind reports the primitive a wrapper class unboxes to.
func UnboxedKind(env Env, t Type) (PrimitiveKind, bool) {
	ct, ok := t.(ClassType)
	if !ok || len(ct.Args) != 0 {
		return 0, false
	}
	w := env.WellKnown()
	switch ct.Class {
	case w.Boolean:
		return PrimBoolean, true
	case w.Byte:
		return PrimByte, true
	case w.Short:
		return PrimShort, true
	case w.Character:
		return PrimChar, true
	case w.Integer:
		return PrimInt, true
	case w.Long:
		return PrimLong, true
	case w.Float:
		return PrimFloat, true
	case w.Double:
		return PrimDouble, true
	}
	return 0, false
}

// StrictConversion is the strict invocation context: identity and widening
// only, no boxing or unboxing.
func StrictConversion(env Env, from, to Type) (Conversion, bool) {
	if IsErrorish(from) || IsErrorish(to) {
		return conv(StepIdentity), true
	}
	if Same(from, to) {
		return conv(StepIdentity), true
	}
	fp, fromPrim := from.(PrimitiveType)
	tp, toPrim := to.(PrimitiveType)
	if fromPrim != toPrim {
		return Conversion{}, false
	}
	if fromPrim {
		if WidensTo(fp.Kind, tp.Kind) {
			return conv(StepWidening), true
		}
		return Conversion{}, false
	}
	if IsSubtype(env, from, to) {
		return conv(StepWidening), true
	}
	return uncheckedConversion(env, from, to)
}

// LooseConversion is the loose invocation context: strict plus boxing and
// unboxing, each optionally followed by widening.
func LooseConversion(env Env, from, to Type) (Conversion, bool) {
	if c, ok := StrictConversion(env, from, to); ok {
		return c, true
	}
	if fp, ok := from.(PrimitiveType); ok {
		boxed := cls(BoxOf(env, fp.Kind))
		if Same(boxed, to) {
			return conv(StepBoxing), true
		}
		if IsSubtype(env, boxed, to) {
			return conv(StepBoxing, StepWidening), true
		}
		return Conversion{}, false
	}
	if k, ok := UnboxedKind(env, from); ok {
		if tp, ok := to.(PrimitiveType); ok {
			if k == tp.Kind {
				return conv(StepBoxing), true
			}
			if WidensTo(k, tp.Kind) {
				return conv(StepBoxing, StepWidening), true
			}
		}
	}
	return Conversion{}, false
}

// AssignmentConversion converts for assignment contexts. A constant int-like
// value additionally licenses narrowing to byte, short, or char when it is
// representable.
func AssignmentConversion(env Env, from, to Type, constVal *ConstValue) (Conversion, bool) {
	if c, ok := LooseConversion(env, from, to); ok {
		return c, true
	}
	if constVal == nil {
		return Conversion{}, false
	}
	tp, ok := to.(PrimitiveType)
	if ok {
		switch tp.Kind {
		case PrimByte, PrimShort, PrimChar:
			if constVal.RepresentableIn(tp.Kind) {
				return conv(StepNarrowing), true
			}
		}
		return Conversion{}, false
	}
	// Box of the narrowed kind, e.g. Byte b = 1. The JLS allows this only
	// for the exact wrapper, not a wider reference.
	if k, ok := UnboxedKind(env, to); ok {
		switch k {
		case PrimByte, PrimShort, PrimChar:
			if constVal.RepresentableIn(k) {
				return conv(StepNarrowing, StepBoxing), true
			}
		}
	}
	return Conversion{}, false
}

// uncheckedConversion admits a raw reference where a parameterization of the
// same erasure is expected, with the unchecked warning attached.
func uncheckedConversion(env Env, from, to Type) (Conversion, bool) {
	fc, ok := from.(ClassType)
	if !ok || !IsRawRef(env, fc) {
		return Conversion{}, false
	}
	tc, ok := to.(ClassType)
	if !ok || len(tc.Args) == 0 {
		return Conversion{}, false
	}
	if _, ok := InstantiateAs(env, fc, tc.Class); !ok {
		return Conversion{}, false
	}
	return Conversion{Steps: []ConvStep{StepUnchecked}, Warnings: []string{WarnUnchecked}}, true
}

// CastConversionAllowed reports whether an explicit cast can succeed.
func CastConversionAllowed(env Env, from, to Type) bool {
	return IsCastable(env, from, to)
}
