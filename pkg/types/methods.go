package types

import (
	"fmt"
	"sort"
)

// Phase orders the three applicability passes of overload resolution.
type Phase uint8

const (
	PhaseStrict Phase = iota
	PhaseLoose
	PhaseVarargs
)

func (p Phase) String() string {
	switch p {
	case PhaseStrict:
		return "strict"
	case PhaseLoose:
		return "loose"
	}
	return "varargs"
}

// MethodCall describes one invocation site for resolution.
type MethodCall struct {
	Receiver         Type
	Kind             CallKind
	Name             string
	Args             []Type
	Expected         Type // expected return type, nil when the context has none
	ExplicitTypeArgs []Type
}

// FailureKind classifies why a candidate was rejected.
type FailureKind uint8

const (
	FailWrongCallKind FailureKind = iota
	FailWrongArity
	FailExplicitTypeArgCount
	FailTypeArgOutOfBounds
	FailArgumentConversion
)

// CandidateFailure is one structured rejection reason.
type CandidateFailure struct {
	Kind       FailureKind
	CallKind   CallKind
	Expected   int
	Found      int
	IsVarargs  bool
	TypeParam  string
	TypeArg    Type
	UpperBound Type
	ArgIndex   int
	From, To   Type
}

// FailedCandidate pairs a rejected candidate's shape with its reasons, for
// diagnostics that enumerate what was considered.
type FailedCandidate struct {
	Owner     ClassID
	Name      string
	Params    []Type
	IsStatic  bool
	IsVarargs bool
	Failures  []CandidateFailure
}

// ResolvedMethod is a successful resolution. Params is the applied shape
// (varargs expanded when used); SignatureParams preserves the declared shape
// only in that case.
type ResolvedMethod struct {
	Owner            ClassID
	Name             string
	Params           []Type
	SignatureParams  []Type
	Return           Type
	IsStatic         bool
	IsVarargs        bool
	Private          bool
	UsedVarargs      bool
	Phase            Phase
	Conversions      []Conversion
	InferredTypeArgs []Type
	Warnings         []string
	ViaInstance      bool
}

// Resolution is the three-way outcome of resolving a call.
type Resolution struct {
	Method    *ResolvedMethod
	Ambiguous []*ResolvedMethod // best first, len > 1 only when ambiguous
	Failures  []FailedCandidate // populated when nothing applied
}

func (r Resolution) OK() bool          { return r.Method != nil }
func (r Resolution) IsAmbiguous() bool { return len(r.Ambiguous) > 1 }

type candidate struct {
	owner ClassID
	m     MethodDef // receiver substitution already applied
}

// collectCandidates walks the receiver's inheritance and gathers every
// method with the given name. Private methods are not inherited and only
// count when the receiver's own class declares them; whether the caller
// may actually touch a private member is the caller's concern. Overrides
// collapse by erased signature; when two interfaces contribute the same
// erased signature the returns merge with a greatest lower bound under
// positional renaming of method type parameters.
func collectCandidates(env Env, receiver Type, name string) []candidate {
	view, ok := ReceiverView(env, receiver)
	if !ok {
		return nil
	}
	w := env.WellKnown()
	var queue []ClassType
	push := func(t Type) {
		switch v := t.(type) {
		case ClassType:
			queue = append(queue, v)
		case ArrayType:
			queue = append(queue, ClassType{Class: w.Object})
		case IntersectionType:
			for _, p := range v.Parts {
				if sc, ok := p.(ClassType); ok {
					queue = append(queue, sc)
				} else if _, ok := p.(ArrayType); ok {
					queue = append(queue, ClassType{Class: w.Object})
				}
			}
		}
	}
	push(view)
	heads := make(map[ClassID]struct{}, len(queue))
	for _, h := range queue {
		heads[h.Class] = struct{}{}
	}
	var out []candidate
	index := map[string]int{}
	seen := map[ClassID]struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, dup := seen[cur.Class]; dup {
			continue
		}
		seen[cur.Class] = struct{}{}
		def := env.Class(cur.Class)
		if def == nil {
			continue
		}
		_, head := heads[cur.Class]
		sub := SubstForClass(env, def, cur)
		for _, m := range def.Methods {
			if m.Name != name || (m.Private && !head) {
				continue
			}
			inst := substMethod(m, sub)
			k := erasedSignatureKey(env, inst)
			if at, dup := index[k]; dup {
				out[at].m.Return = mergeOverrideReturn(env, out[at].m, inst)
				continue
			}
			index[k] = len(out)
			out = append(out, candidate{owner: cur.Class, m: inst})
		}
		supers := directSupertypes(env, cur)
		if len(supers) == 0 && cur.Class != w.Object {
			supers = []Type{cls(w.Object)}
		}
		for _, st := range supers {
			if sc, ok := st.(ClassType); ok {
				queue = append(queue, sc)
			}
		}
	}
	return out
}

func substMethod(m MethodDef, sub Subst) MethodDef {
	if len(sub) == 0 {
		return m
	}
	out := m
	out.Params = make([]Type, len(m.Params))
	for i, p := range m.Params {
		out.Params[i] = sub.Apply(p)
	}
	out.Return = sub.Apply(m.Return)
	return out
}

func erasedSignatureKey(env Env, m MethodDef) string {
	k := "i|"
	if m.IsStatic {
		k = "s|"
	}
	for _, p := range m.Params {
		k += key(Erasure(env, p)) + ";"
	}
	return k
}

// mergeOverrideReturn combines the return types of two same-signature
// candidates, renaming the second's method type parameters onto the first's
// by position so the glb is meaningful.
func mergeOverrideReturn(env Env, kept, next MethodDef) Type {
	rename := make(Subst)
	for i, p := range next.TypeParams {
		if i < len(kept.TypeParams) {
			rename[p] = tv(kept.TypeParams[i])
		}
	}
	return Glb(env, kept.Return, rename.Apply(next.Return))
}

// ResolveMethodCall resolves an invocation against the receiver's
// candidates: strict, then loose, then varargs applicability, ranking the
// applicable set of the first phase that produced any.
func ResolveMethodCall(env Env, call MethodCall) Resolution {
	cands := collectCandidates(env, call.Receiver, call.Name)
	return resolveAgainst(env, cands, call, nil)
}

// ResolveConstructorCall resolves new-expressions. Constructors come from
// the instantiated class only, and the receiver is the expected type when it
// instantiates the same class.
func ResolveConstructorCall(env Env, target ClassType, call MethodCall) Resolution {
	receiver := Type(target)
	if exp, ok := call.Expected.(ClassType); ok && exp.Class == target.Class {
		receiver = exp
	}
	def := env.Class(target.Class)
	if def == nil {
		return Resolution{}
	}
	ref, _ := receiver.(ClassType)
	sub := SubstForClass(env, def, ref)
	var cands []candidate
	for _, m := range def.Constructors {
		inst := substMethod(m, sub)
		inst.Return = receiver
		inst.IsStatic = true
		cands = append(cands, candidate{owner: target.Class, m: inst})
	}
	call.Kind = CallStatic
	call.Name = "<init>"
	return resolveAgainst(env, cands, call, receiver)
}

func resolveAgainst(env Env, cands []candidate, call MethodCall, ctorReceiver Type) Resolution {
	if len(cands) == 0 {
		return Resolution{}
	}
	failures := make([][]CandidateFailure, len(cands))
	usable := make([]bool, len(cands))
	for i, c := range cands {
		if call.Kind == CallStatic && !c.m.IsStatic && ctorReceiver == nil {
			failures[i] = append(failures[i], CandidateFailure{Kind: FailWrongCallKind, CallKind: call.Kind})
			continue
		}
		usable[i] = true
	}
	for _, phase := range []Phase{PhaseStrict, PhaseLoose, PhaseVarargs} {
		var applicable []*ResolvedMethod
		for i, c := range cands {
			if !usable[i] {
				continue
			}
			r, fail := checkApplicability(env, c, call, phase)
			if r != nil {
				applicable = append(applicable, r)
				continue
			}
			if fail != nil {
				failures[i] = append(failures[i], *fail)
			}
		}
		if len(applicable) > 0 {
			rankResolved(env, applicable)
			if best := pickBest(env, applicable); best != nil {
				return Resolution{Method: best}
			}
			return Resolution{Ambiguous: applicable}
		}
	}
	out := Resolution{}
	for i, c := range cands {
		fc := FailedCandidate{
			Owner:     c.owner,
			Name:      c.m.Name,
			Params:    c.m.Params,
			IsStatic:  c.m.IsStatic,
			IsVarargs: c.m.IsVarargs,
			Failures:  dedupeFailures(failures[i]),
		}
		out.Failures = append(out.Failures, fc)
	}
	return out
}

// dedupeFailures drops repeats of the same rejection collected across the
// three phases.
func dedupeFailures(fs []CandidateFailure) []CandidateFailure {
	if len(fs) < 2 {
		return fs
	}
	seen := make(map[string]struct{}, len(fs))
	out := fs[:0]
	for _, f := range fs {
		fp := fmt.Sprintf("%d|%d|%d|%d|%t|%s|%s|%s|%d|%s|%s",
			f.Kind, f.CallKind, f.Expected, f.Found, f.IsVarargs,
			f.TypeParam, key(f.TypeArg), key(f.UpperBound), f.ArgIndex, key(f.From), key(f.To))
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, f)
	}
	return out
}

// checkApplicability tries a candidate in one phase: fixed arity first, then
// the forced varargs expansion when the phase allows it.
func checkApplicability(env Env, c candidate, call MethodCall, phase Phase) (*ResolvedMethod, *CandidateFailure) {
	n := len(c.m.Params)
	nargs := len(call.Args)
	if c.m.IsVarargs {
		if phase != PhaseVarargs {
			if nargs != n {
				return nil, &CandidateFailure{Kind: FailWrongArity, Expected: n, Found: nargs, IsVarargs: true}
			}
		} else if nargs < n-1 {
			return nil, &CandidateFailure{Kind: FailWrongArity, Expected: n, Found: nargs, IsVarargs: true}
		}
	} else if nargs != n {
		return nil, &CandidateFailure{Kind: FailWrongArity, Expected: n, Found: nargs}
	}
	if nargs == n {
		r, fail := tryInvocation(env, c, call, phase, false)
		if r != nil {
			return r, nil
		}
		if c.m.IsVarargs && phase == PhaseVarargs {
			if r2, fail2 := tryInvocation(env, c, call, phase, true); r2 != nil {
				return r2, nil
			} else if fail == nil {
				fail = fail2
			}
		}
		return nil, fail
	}
	return tryInvocation(env, c, call, phase, true)
}

func tryInvocation(env Env, c candidate, call MethodCall, phase Phase, forceVarargs bool) (*ResolvedMethod, *CandidateFailure) {
	params := c.m.Params
	usedVarargs := false
	var elem Type
	if forceVarargs {
		if !c.m.IsVarargs || len(params) == 0 {
			return nil, nil
		}
		arr, ok := params[len(params)-1].(ArrayType)
		if !ok {
			return nil, nil
		}
		elem = arr.Element
		expanded := make([]Type, 0, len(call.Args))
		expanded = append(expanded, params[:len(params)-1]...)
		for i := len(params) - 1; i < len(call.Args); i++ {
			expanded = append(expanded, elem)
		}
		params = expanded
		usedVarargs = true
	}

	var sub Subst
	var inferred []Type
	if len(c.m.TypeParams) > 0 {
		if len(call.ExplicitTypeArgs) > 0 {
			if len(call.ExplicitTypeArgs) != len(c.m.TypeParams) {
				return nil, &CandidateFailure{
					Kind:     FailExplicitTypeArgCount,
					Expected: len(c.m.TypeParams),
					Found:    len(call.ExplicitTypeArgs),
				}
			}
			sub = make(Subst, len(c.m.TypeParams))
			for i, p := range c.m.TypeParams {
				sub[p] = call.ExplicitTypeArgs[i]
			}
		} else {
			solved := InferTypeArgs(env, c.m.TypeParams, params, call.Args, c.m.Return, call.Expected)
			sub = make(Subst, len(c.m.TypeParams))
			for i, p := range c.m.TypeParams {
				sub[p] = solved[i]
			}
			inferred = solved
		}
		for _, p := range c.m.TypeParams {
			def := env.Var(p)
			if def == nil {
				continue
			}
			arg := sub[p]
			if IsErrorish(arg) {
				continue
			}
			for _, bound := range def.Bounds {
				if !IsSubtype(env, arg, sub.Apply(bound)) {
					return nil, &CandidateFailure{
						Kind:       FailTypeArgOutOfBounds,
						TypeParam:  def.Name,
						TypeArg:    arg,
						UpperBound: sub.Apply(bound),
					}
				}
			}
		}
	} else if len(call.ExplicitTypeArgs) > 0 {
		return nil, &CandidateFailure{
			Kind:     FailExplicitTypeArgCount,
			Expected: 0,
			Found:    len(call.ExplicitTypeArgs),
		}
	}

	applied := make([]Type, len(params))
	for i, p := range params {
		applied[i] = sub.Apply(p)
	}
	convs := make([]Conversion, len(call.Args))
	var warnings []string
	for i, arg := range call.Args {
		var cv Conversion
		var ok bool
		if phase == PhaseStrict {
			cv, ok = StrictConversion(env, arg, applied[i])
		} else {
			cv, ok = LooseConversion(env, arg, applied[i])
		}
		if !ok {
			return nil, &CandidateFailure{Kind: FailArgumentConversion, ArgIndex: i, From: arg, To: applied[i]}
		}
		convs[i] = cv
		warnings = append(warnings, cv.Warnings...)
	}
	if usedVarargs && elem != nil && !IsReifiable(env, sub.Apply(elem)) {
		warnings = append(warnings, WarnUncheckedVarargs)
	}

	r := &ResolvedMethod{
		Owner:            c.owner,
		Name:             c.m.Name,
		Params:           applied,
		Return:           sub.Apply(c.m.Return),
		IsStatic:         c.m.IsStatic,
		IsVarargs:        c.m.IsVarargs,
		Private:          c.m.Private,
		UsedVarargs:      usedVarargs,
		Phase:            phase,
		Conversions:      convs,
		InferredTypeArgs: inferred,
		Warnings:         warnings,
		ViaInstance:      call.Kind == CallInstance && c.m.IsStatic,
	}
	if usedVarargs {
		declared := make([]Type, len(c.m.Params))
		for i, p := range c.m.Params {
			declared[i] = sub.Apply(p)
		}
		r.SignatureParams = declared
	}
	return r, nil
}

func totalScore(r *ResolvedMethod) int {
	n := 0
	for _, c := range r.Conversions {
		n += c.Score()
	}
	return n
}

func rankKey(r *ResolvedMethod) [6]int {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return [6]int{
		b(r.ViaInstance),
		b(r.IsVarargs),
		b(r.UsedVarargs),
		totalScore(r),
		b(len(r.InferredTypeArgs) > 0),
		len(r.Warnings),
	}
}

func rankResolved(env Env, rs []*ResolvedMethod) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rankKey(rs[i]), rankKey(rs[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}

// isMoreSpecific implements the most-specific-method ordering: a fixed-arity
// match beats an expanded one, then parameters compare pointwise.
func isMoreSpecific(env Env, a, b *ResolvedMethod) bool {
	if !a.UsedVarargs && b.UsedVarargs {
		return true
	}
	if a.UsedVarargs && !b.UsedVarargs {
		return false
	}
	if !a.IsVarargs && b.IsVarargs {
		return true
	}
	if a.IsVarargs && !b.IsVarargs {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	strict := false
	for i := range a.Params {
		if !IsSubtype(env, a.Params[i], b.Params[i]) {
			return false
		}
		if !IsSubtype(env, b.Params[i], a.Params[i]) {
			strict = true
		}
	}
	return strict
}

// pickBest reduces the applicable set to a unique winner, or nil when the
// call is genuinely ambiguous.
func pickBest(env Env, rs []*ResolvedMethod) *ResolvedMethod {
	if len(rs) == 1 {
		return rs[0]
	}
	set := maximallySpecific(env, rs)
	if len(set) == 1 {
		return set[0]
	}
	filters := []func(*ResolvedMethod) int{
		func(r *ResolvedMethod) int { return boolRank(r.ViaInstance) },
		func(r *ResolvedMethod) int { return ownerDepthRank(env, set, r) },
		func(r *ResolvedMethod) int { return boolRank(r.IsVarargs) },
		func(r *ResolvedMethod) int { return boolRank(r.UsedVarargs) },
		totalScore,
		func(r *ResolvedMethod) int { return instantiationRank(env, set, r) },
		func(r *ResolvedMethod) int { return boolRank(len(r.InferredTypeArgs) > 0) },
		func(r *ResolvedMethod) int { return len(r.Warnings) },
	}
	for _, f := range filters {
		set = keepMinimal(set, f)
		if len(set) == 1 {
			return set[0]
		}
	}
	return nil
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}

func maximallySpecific(env Env, rs []*ResolvedMethod) []*ResolvedMethod {
	var out []*ResolvedMethod
	for _, a := range rs {
		dominated := false
		for _, b := range rs {
			if a == b {
				continue
			}
			if isMoreSpecific(env, b, a) && !isMoreSpecific(env, a, b) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, a)
		}
	}
	return out
}

// ownerDepthRank prefers the most derived owner when the surviving
// candidates share an identical signature.
func ownerDepthRank(env Env, set []*ResolvedMethod, r *ResolvedMethod) int {
	for _, other := range set {
		if other == r {
			continue
		}
		if !sameSignature(other, r) {
			return 0
		}
	}
	rank := 0
	for _, other := range set {
		if other == r || other.Owner == r.Owner {
			continue
		}
		if IsSubtype(env, cls(other.Owner), cls(r.Owner)) && !IsSubtype(env, cls(r.Owner), cls(other.Owner)) {
			rank++
		}
	}
	return rank
}

func sameSignature(a, b *ResolvedMethod) bool {
	if len(a.Params) != len(b.Params) || !Same(a.Return, b.Return) {
		return false
	}
	for i := range a.Params {
		if !Same(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}

// instantiationRank prefers the candidate whose applied parameters are
// pointwise at or below every other's.
func instantiationRank(env Env, set []*ResolvedMethod, r *ResolvedMethod) int {
	rank := 0
	for _, other := range set {
		if other == r || len(other.Params) != len(r.Params) {
			continue
		}
		for i := range r.Params {
			if !IsSubtype(env, r.Params[i], other.Params[i]) {
				rank++
				break
			}
		}
	}
	return rank
}

func keepMinimal(set []*ResolvedMethod, f func(*ResolvedMethod) int) []*ResolvedMethod {
	best := f(set[0])
	for _, r := range set[1:] {
		if v := f(r); v < best {
			best = v
		}
	}
	out := set[:0]
	for _, r := range set {
		if f(r) == best {
			out = append(out, r)
		}
	}
	return out
}
