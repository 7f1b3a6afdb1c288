package types

import "sort"

// MakeIntersection normalizes parts into an intersection: nested
// intersections flatten, duplicates and redundant supertypes drop, and the
// remainder sorts deterministically. Zero parts collapse to Object.
func MakeIntersection(env Env, parts ...Type) Type {
	flat := make([]Type, 0, len(parts))
	var flatten func(t Type)
	flatten = func(t Type) {
		switch v := t.(type) {
		case IntersectionType:
			for _, p := range v.Parts {
				flatten(p)
			}
		case nil:
		default:
			if !IsErrorish(t) {
				flat = append(flat, t)
			}
		}
	}
	for _, p := range parts {
		flatten(p)
	}
	flat = dedupeTypes(flat)
	// Drop parts that are strict supertypes of another part.
	kept := flat[:0]
	for i, p := range flat {
		redundant := false
		for j, q := range flat {
			if i == j {
				continue
			}
			if IsSubtype(env, q, p) && !IsSubtype(env, p, q) {
				redundant = true
				break
			}
			if Same(p, q) && j < i {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return cls(env.WellKnown().Object)
	case 1:
		return kept[0]
	}
	out := make([]Type, len(kept))
	copy(out, kept)
	sortTypes(out)
	return IntersectionType{Parts: out}
}

func canonicalForLub(env Env, t Type) Type {
	switch v := t.(type) {
	case IntersectionType:
		return MakeIntersection(env, v.Parts...)
	case WildcardType:
		if v.Kind == WildcardExtends && v.Bound != nil {
			return canonicalForLub(env, v.Bound)
		}
		return cls(env.WellKnown().Object)
	}
	return t
}

// Lub computes the least upper bound of two types. The exact bound can be an
// infinite type (Integer vs Long regresses through Comparable forever), so a
// pair that recurs while still being computed cuts off at Object, which
// truncates the regress after one level.
func Lub(env Env, a, b Type) Type {
	l := lubber{env: env, active: make(map[string]bool)}
	return l.lub(a, b)
}

type lubber struct {
	env    Env
	active map[string]bool
}

func lubPairKey(a, b Type) string {
	ka, kb := key(a), key(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return ka + "\x00" + kb
}

func (l *lubber) lub(a, b Type) Type {
	if IsError(a) || IsError(b) {
		return ErrorType{}
	}
	if IsUnknown(a) || IsUnknown(b) {
		return UnknownType{}
	}
	a = canonicalForLub(l.env, a)
	b = canonicalForLub(l.env, b)
	if Same(a, b) {
		return a
	}
	if IsNull(a) {
		return boxIfPrimitive(l.env, b)
	}
	if IsNull(b) {
		return boxIfPrimitive(l.env, a)
	}
	if ap, aPrim := a.(PrimitiveType); aPrim {
		if bp, bPrim := b.(PrimitiveType); bPrim {
			if WidensTo(ap.Kind, bp.Kind) {
				return b
			}
			if WidensTo(bp.Kind, ap.Kind) {
				return a
			}
		}
		return l.lub(boxIfPrimitive(l.env, a), boxIfPrimitive(l.env, b))
	}
	if IsPrimitive(b) {
		return l.lub(a, boxIfPrimitive(l.env, b))
	}
	pair := lubPairKey(a, b)
	if l.active[pair] {
		return cls(l.env.WellKnown().Object)
	}
	l.active[pair] = true
	defer delete(l.active, pair)
	subAB := IsSubtype(l.env, a, b)
	subBA := IsSubtype(l.env, b, a)
	if subAB && subBA {
		if sortKey(a) <= sortKey(b) {
			return a
		}
		return b
	}
	if subAB {
		return b
	}
	if subBA {
		return a
	}
	aa, aArr := a.(ArrayType)
	ba, bArr := b.(ArrayType)
	if aArr && bArr {
		if !IsPrimitive(aa.Element) && !IsPrimitive(ba.Element) {
			return ArrayType{Element: l.lub(aa.Element, ba.Element)}
		}
		w := l.env.WellKnown()
		return MakeIntersection(l.env, cls(w.Cloneable), cls(w.Serializable))
	}
	ac, aCls := a.(ClassType)
	bc, bCls := b.(ClassType)
	if aCls && bCls && ac.Class == bc.Class {
		return l.sameClass(ac, bc)
	}
	return l.viaSupertypes(a, b)
}

// LubAll folds Lub over a slice.
func LubAll(env Env, ts []Type) Type {
	if len(ts) == 0 {
		return UnknownType{}
	}
	out := ts[0]
	for _, t := range ts[1:] {
		out = Lub(env, out, t)
	}
	return out
}

// Glb computes the greatest lower bound of two types.
func Glb(env Env, a, b Type) Type {
	if IsErrorish(a) {
		return b
	}
	if IsErrorish(b) {
		return a
	}
	a = canonicalForLub(env, a)
	b = canonicalForLub(env, b)
	if Same(a, b) {
		return a
	}
	if IsSubtype(env, a, b) {
		return a
	}
	if IsSubtype(env, b, a) {
		return b
	}
	return MakeIntersection(env, a, b)
}

// GlbAll folds Glb over a slice in deterministic order.
func GlbAll(env Env, ts []Type) Type {
	if len(ts) == 0 {
		return cls(env.WellKnown().Object)
	}
	sorted := make([]Type, len(ts))
	copy(sorted, ts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})
	out := sorted[0]
	for _, t := range sorted[1:] {
		out = Glb(env, out, t)
	}
	return out
}

func boxIfPrimitive(env Env, t Type) Type {
	if p, ok := t.(PrimitiveType); ok {
		return cls(BoxOf(env, p.Kind))
	}
	return t
}

// sameClass combines two instantiations of one class argument by argument.
func (l *lubber) sameClass(a, b ClassType) Type {
	if len(a.Args) != len(b.Args) {
		// One side raw: the lub is the raw type.
		return ClassType{Class: a.Class}
	}
	args := make([]Type, len(a.Args))
	for i := range a.Args {
		args[i] = l.typeArg(a.Args[i], b.Args[i])
	}
	return ClassType{Class: a.Class, Args: args}
}

// typeArg is the least containing type argument of a pair.
func (l *lubber) typeArg(a, b Type) Type {
	if Same(a, b) {
		return a
	}
	aw, aWild := a.(WildcardType)
	bw, bWild := b.(WildcardType)
	if aWild && bWild && aw.Kind == WildcardSuper && bw.Kind == WildcardSuper {
		return superWild(Glb(l.env, aw.Bound, bw.Bound))
	}
	upper := func(t Type) Type {
		if w, ok := t.(WildcardType); ok {
			if w.Kind == WildcardExtends && w.Bound != nil {
				return w.Bound
			}
			return cls(l.env.WellKnown().Object)
		}
		return t
	}
	u := l.lub(upper(a), upper(b))
	if uc, ok := u.(ClassType); ok && uc.Class == l.env.WellKnown().Object && len(uc.Args) == 0 {
		return WildcardType{}
	}
	return extendsWild(u)
}

// supertypeClosure collects every class instantiation t inherits, itself
// included, keyed by class. Object is always present.
func supertypeClosure(env Env, t Type) map[ClassID]ClassType {
	out := make(map[ClassID]ClassType)
	var queue []ClassType
	switch v := t.(type) {
	case ClassType:
		queue = append(queue, v)
	case ArrayType:
		w := env.WellKnown()
		queue = append(queue, ClassType{Class: w.Cloneable}, ClassType{Class: w.Serializable})
	case TypeVarType:
		if view, ok := ReceiverView(env, t); ok {
			return supertypeClosure(env, view)
		}
	case IntersectionType:
		for _, p := range v.Parts {
			for id, inst := range supertypeClosure(env, p) {
				if _, seen := out[id]; !seen {
					out[id] = inst
				}
			}
		}
		out[env.WellKnown().Object] = ClassType{Class: env.WellKnown().Object}
		return out
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := out[cur.Class]; seen {
			continue
		}
		out[cur.Class] = cur
		for _, st := range directSupertypes(env, cur) {
			if sc, ok := st.(ClassType); ok {
				queue = append(queue, sc)
			}
		}
	}
	w := env.WellKnown()
	if _, ok := out[w.Object]; !ok {
		out[w.Object] = ClassType{Class: w.Object}
	}
	return out
}

// viaSupertypes walks both inheritance closures, combines every common class
// pointwise, keeps the minimal ones, and intersects.
func (l *lubber) viaSupertypes(a, b Type) Type {
	ca := supertypeClosure(l.env, a)
	cb := supertypeClosure(l.env, b)
	var common []ClassID
	for id := range ca {
		if _, ok := cb[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) == 0 {
		return cls(l.env.WellKnown().Object)
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	candidates := make([]Type, 0, len(common))
	for _, id := range common {
		candidates = append(candidates, l.sameClass(ca[id], cb[id]))
	}
	minimal := minimalTypes(l.env, candidates)
	return MakeIntersection(l.env, minimal...)
}

// minimalTypes drops every candidate that is a strict supertype of another.
func minimalTypes(env Env, ts []Type) []Type {
	out := make([]Type, 0, len(ts))
	for i, t := range ts {
		keep := true
		for j, u := range ts {
			if i == j {
				continue
			}
			if IsSubtype(env, u, t) && !IsSubtype(env, t, u) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}
