package types

// WidensTo reports whether a primitive widens to another per the widening
// primitive conversions. Identity is not widening.
func WidensTo(from, to PrimitiveKind) bool {
	if from == to {
		return false
	}
	switch from {
	case PrimByte:
		switch to {
		case PrimShort, PrimInt, PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimShort, PrimChar:
		switch to {
		case PrimInt, PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimInt:
		switch to {
		case PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimLong:
		switch to {
		case PrimFloat, PrimDouble:
			return true
		}
	case PrimFloat:
		return to == PrimDouble
	}
	return false
}

// Erasure computes the erased form of t.
func Erasure(env Env, t Type) Type {
	switch v := t.(type) {
	case ClassType:
		return ClassType{Class: v.Class}
	case ArrayType:
		return ArrayType{Element: Erasure(env, v.Element)}
	case TypeVarType:
		return erasedBound(env, v.Var)
	case WildcardType:
		if v.Kind == WildcardExtends && v.Bound != nil {
			return Erasure(env, v.Bound)
		}
		return cls(env.WellKnown().Object)
	case IntersectionType:
		if len(v.Parts) > 0 {
			return Erasure(env, v.Parts[0])
		}
		return cls(env.WellKnown().Object)
	}
	return t
}

// IsReifiable reports whether t is fully available at runtime, which decides
// when varargs array creation is unchecked.
func IsReifiable(env Env, t Type) bool {
	switch v := t.(type) {
	case PrimitiveType, VoidType, NullType:
		return true
	case ClassType:
		if len(v.Args) == 0 {
			return true
		}
		for _, a := range v.Args {
			w, ok := a.(WildcardType)
			if !ok || w.Kind != WildcardAny {
				return false
			}
		}
		return true
	case ArrayType:
		return IsReifiable(env, v.Element)
	case UnknownType, ErrorType:
		return true
	}
	return false
}

// directSupertypes returns the substituted direct supertypes of a class
// reference. Supertypes of a raw reference are themselves raw.
func directSupertypes(env Env, ref ClassType) []Type {
	def := env.Class(ref.Class)
	if def == nil {
		return nil
	}
	if IsRawRef(env, ref) {
		out := make([]Type, 0, len(def.Supertypes))
		for _, st := range def.Supertypes {
			if sc, ok := st.(ClassType); ok {
				out = append(out, ClassType{Class: sc.Class})
			} else {
				out = append(out, Erasure(env, st))
			}
		}
		return out
	}
	sub := SubstForClass(env, def, ref)
	out := make([]Type, 0, len(def.Supertypes))
	for _, st := range def.Supertypes {
		out = append(out, sub.Apply(st))
	}
	return out
}

// InstantiateAs walks ref's inheritance and returns the instantiation of
// target that ref inherits, if any.
func InstantiateAs(env Env, ref ClassType, target ClassID) (ClassType, bool) {
	if target == env.WellKnown().Object {
		if ref.Class == target {
			return ref, true
		}
		return ClassType{Class: target}, true
	}
	seen := map[ClassID]struct{}{}
	queue := []ClassType{ref}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Class == target {
			return cur, true
		}
		if _, ok := seen[cur.Class]; ok {
			continue
		}
		seen[cur.Class] = struct{}{}
		for _, st := range directSupertypes(env, cur) {
			if sc, ok := st.(ClassType); ok {
				queue = append(queue, sc)
			}
		}
	}
	return ClassType{}, false
}

// contains reports whether type argument b contains type argument a
// (JLS 4.5.1), deciding subtyping between two instantiations of one class.
func contains(env Env, a, b Type) bool {
	if bw, ok := b.(WildcardType); ok {
		switch bw.Kind {
		case WildcardAny:
			return true
		case WildcardExtends:
			if aw, ok := a.(WildcardType); ok {
				switch aw.Kind {
				case WildcardExtends:
					return IsSubtype(env, aw.Bound, bw.Bound)
				case WildcardAny:
					return IsSubtype(env, cls(env.WellKnown().Object), bw.Bound)
				}
				return false
			}
			return IsSubtype(env, a, bw.Bound)
		case WildcardSuper:
			if aw, ok := a.(WildcardType); ok {
				if aw.Kind == WildcardSuper {
					return IsSubtype(env, bw.Bound, aw.Bound)
				}
				return false
			}
			return IsSubtype(env, bw.Bound, a)
		}
	}
	if _, ok := a.(WildcardType); ok {
		return false
	}
	return Same(a, b)
}

// IsSubtype reports whether a is a subtype of b. Unknown and Error are
// subtypes of everything and supertypes of everything so one failed
// inference does not cascade.
func IsSubtype(env Env, a, b Type) bool {
	if a == nil || b == nil {
		return true
	}
	if IsErrorish(a) || IsErrorish(b) {
		return true
	}
	if Same(a, b) {
		return true
	}
	if bc, ok := b.(ClassType); ok && bc.Class == env.WellKnown().Object {
		return IsReference(a)
	}
	if IsNull(a) {
		return IsReference(b)
	}
	switch av := a.(type) {
	case PrimitiveType:
		bv, ok := b.(PrimitiveType)
		return ok && WidensTo(av.Kind, bv.Kind)
	case ArrayType:
		switch bv := b.(type) {
		case ArrayType:
			if IsPrimitive(av.Element) || IsPrimitive(bv.Element) {
				return Same(av.Element, bv.Element)
			}
			return IsSubtype(env, av.Element, bv.Element)
		case ClassType:
			w := env.WellKnown()
			return bv.Class == w.Object || bv.Class == w.Cloneable || bv.Class == w.Serializable
		}
		return subtypeViaVarTarget(env, a, b)
	case ClassType:
		if bv, ok := b.(ClassType); ok {
			inst, ok := InstantiateAs(env, av, bv.Class)
			if !ok {
				return false
			}
			bdef := env.Class(bv.Class)
			if bdef == nil {
				return inst.Class == bv.Class && len(bv.Args) == 0
			}
			if len(bdef.TypeParams) == 0 {
				return true
			}
			if len(bv.Args) == 0 {
				// Raw supertype accepts any instantiation.
				return true
			}
			if len(inst.Args) != len(bv.Args) {
				// Raw subtype does not supply arguments; that path is the
				// unchecked conversion, not subtyping.
				return false
			}
			for i := range bv.Args {
				if !contains(env, inst.Args[i], bv.Args[i]) {
					return false
				}
			}
			return true
		}
		if bi, ok := b.(IntersectionType); ok {
			for _, p := range bi.Parts {
				if !IsSubtype(env, a, p) {
					return false
				}
			}
			return true
		}
		return subtypeViaVarTarget(env, a, b)
	case TypeVarType:
		def := env.Var(av.Var)
		if def != nil {
			for _, bound := range def.Bounds {
				if IsSubtype(env, bound, b) {
					return true
				}
			}
			if len(def.Bounds) == 0 {
				if bc, ok := b.(ClassType); ok && bc.Class == env.WellKnown().Object {
					return true
				}
			}
		}
		return subtypeViaVarTarget(env, a, b)
	case IntersectionType:
		if bi, ok := b.(IntersectionType); ok {
			for _, p := range bi.Parts {
				if !IsSubtype(env, a, p) {
					return false
				}
			}
			return true
		}
		for _, p := range av.Parts {
			if IsSubtype(env, p, b) {
				return true
			}
		}
		return false
	case NamedType, VirtualInnerType:
		return subtypeViaVarTarget(env, a, b)
	}
	if bi, ok := b.(IntersectionType); ok {
		for _, p := range bi.Parts {
			if !IsSubtype(env, a, p) {
				return false
			}
		}
		return true
	}
	return false
}

// subtypeViaVarTarget handles b being a capture variable with a lower bound:
// anything below the lower bound flows in.
func subtypeViaVarTarget(env Env, a, b Type) bool {
	bv, ok := b.(TypeVarType)
	if !ok {
		return false
	}
	if low := lowerOf(env, bv.Var); low != nil {
		return IsSubtype(env, a, low)
	}
	return false
}

// IsCastable is the permissive compile-time cast check: it rejects only casts
// that can be proven wrong.
func IsCastable(env Env, from, to Type) bool {
	if IsErrorish(from) || IsErrorish(to) {
		return true
	}
	if Same(from, to) || IsSubtype(env, from, to) || IsSubtype(env, to, from) {
		return true
	}
	fp, fromPrim := from.(PrimitiveType)
	tp, toPrim := to.(PrimitiveType)
	if fromPrim && toPrim {
		return (fp.Kind == PrimBoolean) == (tp.Kind == PrimBoolean)
	}
	if fromPrim {
		if k, ok := UnboxedKind(env, to); ok {
			return fp.Kind == k || WidensTo(fp.Kind, k) || WidensTo(k, fp.Kind)
		}
		if tc, ok := to.(ClassType); ok {
			w := env.WellKnown()
			return tc.Class == w.Object || tc.Class == w.Number && fp.Kind != PrimBoolean
		}
		return false
	}
	if toPrim {
		if k, ok := UnboxedKind(env, from); ok {
			return k == tp.Kind || WidensTo(k, tp.Kind) || WidensTo(tp.Kind, k)
		}
		if fc, ok := from.(ClassType); ok {
			w := env.WellKnown()
			return fc.Class == w.Object || fc.Class == w.Number && tp.Kind != PrimBoolean
		}
		return false
	}
	if IsNull(from) {
		return IsReference(to)
	}
	fc, fromClass := from.(ClassType)
	tc, toClass := to.(ClassType)
	if fromClass && toClass {
		fd := env.Class(fc.Class)
		td := env.Class(tc.Class)
		if fd == nil || td == nil {
			return true
		}
		// Two unrelated proper classes can never cross-cast; an interface on
		// either side keeps the cast possible.
		if !fd.IsInterface && !td.IsInterface {
			return false
		}
		return true
	}
	fa, fromArr := from.(ArrayType)
	ta, toArr := to.(ArrayType)
	if fromArr && toArr {
		if IsPrimitive(fa.Element) || IsPrimitive(ta.Element) {
			return Same(fa.Element, ta.Element)
		}
		return IsCastable(env, fa.Element, ta.Element)
	}
	if fromArr && toClass {
		w := env.WellKnown()
		return tc.Class == w.Object || tc.Class == w.Cloneable || tc.Class == w.Serializable
	}
	if toArr && fromClass {
		w := env.WellKnown()
		return fc.Class == w.Object || fc.Class == w.Cloneable || fc.Class == w.Serializable
	}
	// Type variables, wildcards, and named leftovers stay castable.
	return true
}
