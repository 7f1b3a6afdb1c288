package types

// contextVarBit tags TypeVarIDs that live in a Context instead of the shared
// arena. Context variables never leak into a Store.
const contextVarBit TypeVarID = 1 << 31

// Subst maps type variables to type arguments.
type Subst map[TypeVarID]Type

// Apply substitutes mapped variables throughout t.
func (s Subst) Apply(t Type) Type {
	if len(s) == 0 || t == nil {
		return t
	}
	switch v := t.(type) {
	case TypeVarType:
		if r, ok := s[v.Var]; ok {
			return r
		}
		return v
	case ClassType:
		if len(v.Args) == 0 {
			return v
		}
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = s.Apply(a)
		}
		return ClassType{Class: v.Class, Args: args}
	case ArrayType:
		return ArrayType{Element: s.Apply(v.Element)}
	case WildcardType:
		if v.Bound == nil {
			return v
		}
		return WildcardType{Kind: v.Kind, Bound: s.Apply(v.Bound)}
	case IntersectionType:
		parts := make([]Type, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = s.Apply(p)
		}
		return IntersectionType{Parts: parts}
	case VirtualInnerType:
		return VirtualInnerType{Owner: s.Apply(v.Owner), Inner: v.Inner}
	}
	return t
}

// SubstForClass builds the substitution that maps a class's type parameters
// to the arguments of the given reference. A raw reference to a generic class
// maps every parameter to the erasure of its bound.
func SubstForClass(env Env, def *ClassDef, ref ClassType) Subst {
	if def == nil || len(def.TypeParams) == 0 {
		return nil
	}
	sub := make(Subst, len(def.TypeParams))
	if len(ref.Args) == len(def.TypeParams) {
		for i, p := range def.TypeParams {
			sub[p] = ref.Args[i]
		}
		return sub
	}
	// Raw (or malformed) reference: members are seen at their erasure.
	for _, p := range def.TypeParams {
		sub[p] = erasedBound(env, p)
	}
	return sub
}

func erasedBound(env Env, id TypeVarID) Type {
	def := env.Var(id)
	if def == nil || len(def.Bounds) == 0 {
		return cls(env.WellKnown().Object)
	}
	return Erasure(env, def.Bounds[0])
}

// IsRawRef reports whether ref is a raw reference to a generic class.
func IsRawRef(env Env, ref ClassType) bool {
	def := env.Class(ref.Class)
	return def != nil && len(def.TypeParams) > 0 && len(ref.Args) == 0
}

type captureVar struct {
	def   TypeVarDef
	lower Type
}

// Context is an Env extended with capture variables scoped to one body
// check. Ids carry the contextVarBit so they cannot be confused with arena
// variables.
type Context struct {
	env  Env
	vars []captureVar
}

func NewContext(env Env) *Context {
	return &Context{env: env}
}

func (c *Context) Class(id ClassID) *ClassDef  { return c.env.Class(id) }
func (c *Context) ClassName(id ClassID) string { return c.env.ClassName(id) }
func (c *Context) WellKnown() *WellKnown       { return c.env.WellKnown() }

func (c *Context) Var(id TypeVarID) *TypeVarDef {
	if id&contextVarBit == 0 {
		return c.env.Var(id)
	}
	i := int(id &^ contextVarBit)
	if i >= len(c.vars) {
		return nil
	}
	return &c.vars[i].def
}

// Lower returns the lower bound of a capture variable, nil when absent.
func (c *Context) Lower(id TypeVarID) Type {
	if id&contextVarBit == 0 {
		return nil
	}
	i := int(id &^ contextVarBit)
	if i >= len(c.vars) {
		return nil
	}
	return c.vars[i].lower
}

// Fresh allocates a capture variable with the given bounds.
func (c *Context) Fresh(name string, uppers []Type, lower Type) TypeVarID {
	id := TypeVarID(len(c.vars)) | contextVarBit
	c.vars = append(c.vars, captureVar{def: TypeVarDef{Name: name, Bounds: uppers}, lower: lower})
	return id
}

type lowerBounded interface {
	Lower(TypeVarID) Type
}

func lowerOf(env Env, id TypeVarID) Type {
	if lb, ok := env.(lowerBounded); ok {
		return lb.Lower(id)
	}
	return nil
}

// Capture applies capture conversion: wildcard arguments of a class reference
// become fresh context variables whose bounds merge the wildcard bound with
// the declaration's bound.
func Capture(ctx *Context, t Type) Type {
	ref, ok := t.(ClassType)
	if !ok || len(ref.Args) == 0 {
		return t
	}
	hasWildcard := false
	for _, a := range ref.Args {
		if _, ok := a.(WildcardType); ok {
			hasWildcard = true
			break
		}
	}
	if !hasWildcard {
		return t
	}
	def := ctx.Class(ref.Class)
	if def == nil || len(def.TypeParams) != len(ref.Args) {
		return t
	}
	// Provisional substitution so declared bounds can mention sibling
	// parameters: wildcards stand in as their bound or Object.
	provisional := make(Subst, len(def.TypeParams))
	for i, p := range def.TypeParams {
		if w, ok := ref.Args[i].(WildcardType); ok {
			if w.Kind == WildcardExtends && w.Bound != nil {
				provisional[p] = w.Bound
			} else {
				provisional[p] = cls(ctx.WellKnown().Object)
			}
		} else {
			provisional[p] = ref.Args[i]
		}
	}
	args := make([]Type, len(ref.Args))
	for i, a := range ref.Args {
		w, ok := a.(WildcardType)
		if !ok {
			args[i] = a
			continue
		}
		var uppers []Type
		var lower Type
		if w.Kind == WildcardExtends && w.Bound != nil {
			uppers = append(uppers, w.Bound)
		}
		if w.Kind == WildcardSuper && w.Bound != nil {
			lower = w.Bound
		}
		if pd := ctx.Var(def.TypeParams[i]); pd != nil {
			for _, b := range pd.Bounds {
				uppers = append(uppers, provisional.Apply(b))
			}
		}
		if len(uppers) == 0 {
			uppers = []Type{cls(ctx.WellKnown().Object)}
		}
		name := "CAP"
		if pd := ctx.Var(def.TypeParams[i]); pd != nil {
			name = "CAP-" + pd.Name
		}
		args[i] = tv(ctx.Fresh(name, uppers, lower))
	}
	return ClassType{Class: ref.Class, Args: args}
}

// ReceiverView normalizes a type into the shape member lookup can walk:
// type variables become the intersection of their bounds, wildcards their
// upper bound. Returns false when the type has no members at all.
func ReceiverView(env Env, t Type) (Type, bool) {
	switch v := t.(type) {
	case ClassType, ArrayType, IntersectionType:
		return t, true
	case TypeVarType:
		def := env.Var(v.Var)
		if def == nil || len(def.Bounds) == 0 {
			return cls(env.WellKnown().Object), true
		}
		if len(def.Bounds) == 1 {
			return ReceiverView(env, def.Bounds[0])
		}
		return IntersectionType{Parts: def.Bounds}, true
	case WildcardType:
		if v.Kind == WildcardExtends && v.Bound != nil {
			return ReceiverView(env, v.Bound)
		}
		return cls(env.WellKnown().Object), true
	}
	return t, false
}
