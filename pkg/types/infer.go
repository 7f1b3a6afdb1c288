package types

// inferenceBounds accumulates what flows into and out of one inference
// variable. Placeholder types (Unknown, Error, Null) never become bounds.
type inferenceBounds struct {
	lower []Type
	upper []Type
}

type inferState struct {
	env    Env
	vars   map[TypeVarID]*inferenceBounds
	params []TypeVarID
}

func (st *inferState) bound(id TypeVarID) *inferenceBounds {
	if b, ok := st.vars[id]; ok {
		return b
	}
	return nil
}

func placeholderBound(t Type) bool {
	return t == nil || IsErrorish(t) || IsNull(t)
}

func (st *inferState) addLower(id TypeVarID, t Type) {
	if b := st.bound(id); b != nil && !placeholderBound(t) {
		b.lower = append(b.lower, t)
	}
}

func (st *inferState) addUpper(id TypeVarID, t Type) {
	if b := st.bound(id); b != nil && !placeholderBound(t) {
		b.upper = append(b.upper, t)
	}
}

// InferTypeArgs infers arguments for a method's type parameters from the
// call's argument types and the expected return type. Every parameter gets
// an answer; parameters nothing constrains solve to the glb of their
// declared bounds.
func InferTypeArgs(env Env, tparams []TypeVarID, params []Type, args []Type, ret Type, expected Type) []Type {
	st := &inferState{env: env, vars: make(map[TypeVarID]*inferenceBounds, len(tparams)), params: tparams}
	for _, p := range tparams {
		st.vars[p] = &inferenceBounds{}
	}
	n := len(params)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		st.fromArg(params[i], args[i])
	}
	if expected != nil && !placeholderBound(expected) && !IsVoid(expected) {
		st.fromReturn(ret, expected)
	}
	out := make([]Type, len(tparams))
	solved := make(Subst, len(tparams))
	for i, p := range tparams {
		out[i] = st.solve(p)
		solved[p] = out[i]
	}
	// A solution may mention sibling inference variables through bounds;
	// close over the substitution once.
	for i := range out {
		out[i] = solved.Apply(out[i])
	}
	return out
}

// fromArg collects constraints from arg flowing into param.
func (st *inferState) fromArg(param, arg Type) {
	if placeholderBound(arg) {
		return
	}
	switch pv := param.(type) {
	case TypeVarType:
		// Invocation conversion would box the value, so the bound is the
		// wrapper.
		st.addLower(pv.Var, boxIfPrimitive(st.env, arg))
	case ArrayType:
		if av, ok := arg.(ArrayType); ok {
			st.fromArg(pv.Element, av.Element)
		}
	case ClassType:
		ac, ok := arg.(ClassType)
		if !ok {
			if _, isVar := arg.(TypeVarType); isVar {
				if view, okv := ReceiverView(st.env, arg); okv {
					st.fromArg(param, view)
				}
			}
			return
		}
		inst := ac
		if ac.Class != pv.Class {
			mapped, okm := InstantiateAs(st.env, ac, pv.Class)
			if !okm {
				return
			}
			inst = mapped
		}
		if len(inst.Args) != len(pv.Args) {
			// Raw or malformed on one side; no information.
			return
		}
		for i := range pv.Args {
			st.fromTypeArg(pv.Args[i], inst.Args[i])
		}
	case IntersectionType:
		for _, p := range pv.Parts {
			st.fromArg(p, arg)
		}
	}
}

// fromTypeArg matches a declared type argument position against an actual
// one, respecting wildcard variance.
func (st *inferState) fromTypeArg(param, actual Type) {
	if pw, ok := param.(WildcardType); ok {
		switch pw.Kind {
		case WildcardExtends:
			if pw.Bound == nil {
				return
			}
			st.fromArg(pw.Bound, upperOfArg(st.env, actual))
		case WildcardSuper:
			if pw.Bound == nil {
				return
			}
			if low := lowerOfArg(actual); low != nil {
				st.fromReverse(pw.Bound, low)
			}
		}
		return
	}
	st.fromEquality(param, actual)
}

// fromReverse collects for contravariant positions: the actual flows above
// the declared type, so inference variables gain upper bounds.
func (st *inferState) fromReverse(param, actual Type) {
	if placeholderBound(actual) {
		return
	}
	switch pv := param.(type) {
	case TypeVarType:
		st.addUpper(pv.Var, actual)
	case ArrayType:
		if av, ok := actual.(ArrayType); ok {
			st.fromReverse(pv.Element, av.Element)
		}
	case ClassType:
		if ac, ok := actual.(ClassType); ok && ac.Class == pv.Class && len(ac.Args) == len(pv.Args) {
			for i := range pv.Args {
				st.fromEquality(pv.Args[i], ac.Args[i])
			}
		}
	}
}

// fromEquality equates a declared position with an actual type: inference
// variables gain the actual as both a lower and an upper bound.
func (st *inferState) fromEquality(param, actual Type) {
	if placeholderBound(actual) {
		return
	}
	switch pv := param.(type) {
	case TypeVarType:
		if _, isInfer := st.vars[pv.Var]; isInfer {
			st.addLower(pv.Var, actual)
			st.addUpper(pv.Var, actual)
			return
		}
	case ClassType:
		if ac, ok := actual.(ClassType); ok && ac.Class == pv.Class && len(ac.Args) == len(pv.Args) {
			for i := range pv.Args {
				st.fromTypeArg(pv.Args[i], ac.Args[i])
			}
		}
	case ArrayType:
		if av, ok := actual.(ArrayType); ok {
			st.fromEquality(pv.Element, av.Element)
		}
	case WildcardType:
		if aw, ok := actual.(WildcardType); ok && aw.Kind == pv.Kind && pv.Bound != nil {
			st.fromEquality(pv.Bound, aw.Bound)
		}
	}
}

// fromReturn constrains the declared return against the expected type.
func (st *inferState) fromReturn(ret, expected Type) {
	switch rv := ret.(type) {
	case TypeVarType:
		st.addUpper(rv.Var, boxIfPrimitive(st.env, expected))
	case ArrayType:
		if ev, ok := expected.(ArrayType); ok {
			st.fromReturn(rv.Element, ev.Element)
		}
	case ClassType:
		ec, ok := expected.(ClassType)
		if !ok {
			return
		}
		if rv.Class == ec.Class {
			if len(rv.Args) == len(ec.Args) {
				for i := range rv.Args {
					st.fromTypeArg(rv.Args[i], ec.Args[i])
				}
			}
			return
		}
		// ret <: expected: instantiate the declared return at the expected
		// class; the mapping still mentions the inference variables.
		inst, okm := InstantiateAs(st.env, rv, ec.Class)
		if !okm || len(inst.Args) != len(ec.Args) {
			return
		}
		for i := range inst.Args {
			st.fromTypeArg(inst.Args[i], ec.Args[i])
		}
	}
}

func upperOfArg(env Env, t Type) Type {
	if w, ok := t.(WildcardType); ok {
		if w.Kind == WildcardExtends && w.Bound != nil {
			return w.Bound
		}
		return cls(env.WellKnown().Object)
	}
	return t
}

func lowerOfArg(t Type) Type {
	if w, ok := t.(WildcardType); ok {
		if w.Kind == WildcardSuper {
			return w.Bound
		}
		return nil
	}
	return t
}

// solve resolves one inference variable: the lub of its lower bounds when
// any exist, otherwise the glb of its uppers, always checked against the
// uppers merged with the declared bounds.
func (st *inferState) solve(p TypeVarID) Type {
	b := st.vars[p]
	uppers := make([]Type, 0, len(b.upper)+2)
	uppers = append(uppers, b.upper...)
	if def := st.env.Var(p); def != nil {
		for _, declared := range def.Bounds {
			if !mentionsAny(declared, st.params) {
				uppers = append(uppers, declared)
			}
		}
	}
	upperGlb := Type(cls(st.env.WellKnown().Object))
	if len(uppers) > 0 {
		upperGlb = GlbAll(st.env, uppers)
	}
	if len(b.lower) == 0 {
		return upperGlb
	}
	candidate := LubAll(st.env, b.lower)
	if IsErrorish(candidate) {
		return upperGlb
	}
	if IsSubtype(st.env, candidate, upperGlb) {
		return candidate
	}
	return upperGlb
}

func mentionsAny(t Type, vars []TypeVarID) bool {
	for _, v := range vars {
		if ContainsVar(t, v) {
			return true
		}
	}
	return false
}

// InferVarType decides the declared type of a var local from its
// initializer.
func InferVarType(init Type) Type {
	if init == nil || IsErrorish(init) {
		return ErrorType{}
	}
	return init
}

// InferDiamondTypeArgs resolves new C<>() against the expected type: the
// class is instantiated symbolically over its own parameters, walked up to
// the expected class, and matched pointwise. Parameters the target does not
// determine fall back to Object.
func InferDiamondTypeArgs(env Env, class ClassID, expected Type) []Type {
	def := env.Class(class)
	if def == nil || len(def.TypeParams) == 0 {
		return nil
	}
	object := Type(cls(env.WellKnown().Object))
	out := make([]Type, len(def.TypeParams))
	for i := range out {
		out[i] = object
	}
	ec, ok := expected.(ClassType)
	if !ok || len(ec.Args) == 0 {
		return out
	}
	symArgs := make([]Type, len(def.TypeParams))
	for i, p := range def.TypeParams {
		symArgs[i] = tv(p)
	}
	symbolic := ClassType{Class: class, Args: symArgs}
	inst := symbolic
	if class != ec.Class {
		mapped, okm := InstantiateAs(env, symbolic, ec.Class)
		if !okm {
			return out
		}
		inst = mapped
	}
	if len(inst.Args) != len(ec.Args) {
		return out
	}
	assign := make(map[TypeVarID]Type)
	for i := range inst.Args {
		collectVarAssignments(inst.Args[i], ec.Args[i], assign)
	}
	for i, p := range def.TypeParams {
		if t, okm := assign[p]; okm && !placeholderBound(t) {
			out[i] = t
		}
	}
	return out
}

// collectVarAssignments pattern-matches a symbolic type against a concrete
// one, recording what each type variable must be.
func collectVarAssignments(sym, concrete Type, assign map[TypeVarID]Type) {
	switch sv := sym.(type) {
	case TypeVarType:
		if _, dup := assign[sv.Var]; !dup {
			if w, ok := concrete.(WildcardType); ok {
				if w.Bound != nil {
					assign[sv.Var] = w.Bound
				}
				return
			}
			assign[sv.Var] = concrete
		}
	case ClassType:
		if cc, ok := concrete.(ClassType); ok && cc.Class == sv.Class && len(cc.Args) == len(sv.Args) {
			for i := range sv.Args {
				collectVarAssignments(sv.Args[i], cc.Args[i], assign)
			}
		}
	case ArrayType:
		if ca, ok := concrete.(ArrayType); ok {
			collectVarAssignments(sv.Element, ca.Element, assign)
		}
	case WildcardType:
		if cw, ok := concrete.(WildcardType); ok && cw.Kind == sv.Kind && sv.Bound != nil {
			collectVarAssignments(sv.Bound, cw.Bound, assign)
		}
	case IntersectionType:
		for _, p := range sv.Parts {
			collectVarAssignments(p, concrete, assign)
		}
	}
}

// SAMSignature extracts the single abstract method of a functional
// interface, substituted for the given instantiation.
func SAMSignature(env Env, t Type) (params []Type, ret Type, ok bool) {
	ct, isClass := t.(ClassType)
	if !isClass {
		return nil, nil, false
	}
	def := env.Class(ct.Class)
	if def == nil || !def.IsInterface {
		return nil, nil, false
	}
	var sam *MethodDef
	for i := range def.Methods {
		m := &def.Methods[i]
		if !m.IsAbstract || m.IsStatic {
			continue
		}
		if sam != nil {
			return nil, nil, false
		}
		sam = m
	}
	if sam == nil {
		return nil, nil, false
	}
	sub := SubstForClass(env, def, ct)
	params = make([]Type, len(sam.Params))
	for i, p := range sam.Params {
		params[i] = sub.Apply(p)
	}
	return params, sub.Apply(sam.Return), true
}
