package types

// CallKind says how a member is reached: through an instance expression or
// through a type name.
type CallKind uint8

const (
	CallInstance CallKind = iota
	CallStatic
)

func (k CallKind) String() string {
	if k == CallStatic {
		return "static"
	}
	return "instance"
}

// ResolvedField is the outcome of a field lookup, with the declared type
// substituted for the receiver's instantiation.
type ResolvedField struct {
	Owner       ClassID
	Name        string
	Type        Type
	IsStatic    bool
	Private     bool
	ViaInstance bool // static field reached through an instance expression
}

// ResolveField finds a field by walking the receiver's inheritance. Private
// fields are not inherited and only count on the receiver's own class;
// static fields are visible through instances. The caller decides whether
// a private hit or an instance field reached from a static context is an
// error.
func ResolveField(env Env, receiver Type, name string, kind CallKind) (ResolvedField, bool) {
	view, ok := ReceiverView(env, receiver)
	if !ok {
		return ResolvedField{}, false
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
		for _, f := range def.Fields {
			if f.Name != name || (f.Private && !head) {
				continue
			}
			return ResolvedField{
				Owner:       cur.Class,
				Name:        name,
				Type:        sub.Apply(f.Type),
				IsStatic:    f.IsStatic,
				Private:     f.Private,
				ViaInstance: f.IsStatic && kind == CallInstance,
			}, true
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
	return ResolvedField{}, false
}
