package loader

import (
	"errors"
	"fmt"

	"javasem/analyzer-go/pkg/classpath"
	"javasem/analyzer-go/pkg/types"
)

// ErrMissingType reports that no provider supplied a requested binary
// name. Callers usually fall back to a Named placeholder type and attach
// a diagnostic instead of failing the whole check.
var ErrMissingType = errors.New("missing type stub")

// checkpointEvery bounds how much recursive load work runs between
// cancellation checks.
const checkpointEvery = 128

// Loader installs external type definitions in a store on demand. One
// loader serves one check: its marker sets are not safe for concurrent
// use, matching the one-clone-per-check store discipline.
type Loader struct {
	store      *types.Store
	provider   Provider
	inProgress map[string]struct{}
	loaded     map[string]struct{}
	missing    map[string]struct{}
	gate       func(name, module string) bool
	checkpoint func() error
	steps      int
}

// New returns a loader over a bootstrapped store.
func New(store *types.Store, p Provider) *Loader {
	return &Loader{
		store:      store,
		provider:   p,
		inProgress: make(map[string]struct{}),
		loaded:     make(map[string]struct{}),
		missing:    make(map[string]struct{}),
	}
}

// Store returns the store the loader fills.
func (l *Loader) Store() *types.Store { return l.store }

// SetGate installs the module-visibility check consulted before a loaded
// definition is installed. Returning false keeps (or prunes the name
// back to) a placeholder.
func (l *Loader) SetGate(fn func(name, module string) bool) { l.gate = fn }

// SetCheckpoint installs the cooperative cancellation hook. A non-nil
// error aborts the current load.
func (l *Loader) SetCheckpoint(fn func() error) { l.checkpoint = fn }

func (l *Loader) tick() error {
	l.steps++
	if l.checkpoint != nil && l.steps%checkpointEvery == 0 {
		return l.checkpoint()
	}
	return nil
}

func (l *Loader) allowed(name, module string) bool {
	return l.gate == nil || l.gate(name, module)
}

// EnsureClass makes sure name has an id and, when a provider supplies it
// and the visibility gate admits it, a definition. Names the gate
// rejects come back as bare placeholders, pruned if a recursive load had
// already defined them. A name no provider knows reports ErrMissingType,
// on the first request and on every later one.
func (l *Loader) EnsureClass(name string) (types.ClassID, error) {
	if err := l.tick(); err != nil {
		return 0, err
	}
	if id, ok := l.store.Lookup(name); ok && l.store.IsDefined(id) {
		def := l.store.Class(id)
		if !l.allowed(def.Name, def.Module) {
			l.store.Prune(id)
			l.loaded[def.Name] = struct{}{}
			return id, nil
		}
		return id, nil
	}
	if _, busy := l.inProgress[name]; busy {
		// Self-referential signature mid-definition: hand back the
		// reserved id without recursing.
		return l.store.Intern(name), nil
	}
	if _, done := l.loaded[name]; done {
		return l.store.Intern(name), nil
	}
	if _, miss := l.missing[name]; miss {
		return 0, fmt.Errorf("%w: %s", ErrMissingType, name)
	}
	stub, ok := l.provider.Lookup(name)
	if !ok {
		l.missing[name] = struct{}{}
		return 0, fmt.Errorf("%w: %s", ErrMissingType, name)
	}
	id := l.store.Intern(name)
	if !l.allowed(name, stub.Module) {
		l.loaded[name] = struct{}{}
		return id, nil
	}
	l.inProgress[name] = struct{}{}
	def, err := l.buildDef(name, stub)
	delete(l.inProgress, name)
	l.loaded[name] = struct{}{}
	if err != nil {
		return 0, err
	}
	l.store.Define(id, def)
	return id, nil
}

// ResolveName returns a reference type for a binary name: a ClassType
// when the name could be ensured, a Named placeholder when no provider
// knows it. Other errors (cancellation, malformed stubs) propagate.
func (l *Loader) ResolveName(name string) (types.Type, error) {
	return l.classNameToType(name, nil)
}

func (l *Loader) classNameToType(name string, args []types.Type) (types.Type, error) {
	id, err := l.EnsureClass(name)
	if err != nil {
		if errors.Is(err, ErrMissingType) {
			// A name the chain will not supply but the store already
			// knows keeps its id: workspace names are pre-interned, so a
			// shadowed reference points at the source definition even
			// when it is installed later.
			if known, ok := l.store.Lookup(name); ok {
				return types.ClassType{Class: known, Args: args}, nil
			}
			return types.NamedType{Qualified: name}, nil
		}
		return nil, err
	}
	return types.ClassType{Class: id, Args: args}, nil
}

func (l *Loader) objectType() types.Type {
	return types.ClassType{Class: l.store.WellKnown().Object}
}

// buildDef converts one stub into a class definition, parsing the
// generic signature when present and falling back to descriptors.
func (l *Loader) buildDef(name string, stub *classpath.ClassStub) (types.ClassDef, error) {
	def := types.ClassDef{
		Name:        name,
		IsInterface: stub.IsInterface(),
		Module:      stub.Module,
	}
	vars := make(map[string]types.TypeVarID)

	if stub.Signature != "" {
		sig, err := parseClassSignature(stub.Signature)
		if err != nil {
			return def, fmt.Errorf("class signature of %s: %w", name, err)
		}
		def.TypeParams, err = l.declareTypeParams(sig.params, vars)
		if err != nil {
			return def, err
		}
		if !def.IsInterface {
			super, err := l.classSigToType(sig.super, vars)
			if err != nil {
				return def, err
			}
			def.Supertypes = append(def.Supertypes, super)
		}
		for _, iface := range sig.ifaces {
			t, err := l.classSigToType(iface, vars)
			if err != nil {
				return def, err
			}
			def.Supertypes = append(def.Supertypes, t)
		}
	} else {
		if !def.IsInterface && stub.Super != "" {
			t, err := l.classNameToType(stub.Super, nil)
			if err != nil {
				return def, err
			}
			def.Supertypes = append(def.Supertypes, t)
		}
		for _, iname := range stub.Interfaces {
			t, err := l.classNameToType(iname, nil)
			if err != nil {
				return def, err
			}
			def.Supertypes = append(def.Supertypes, t)
		}
	}

	for _, f := range stub.Fields {
		if f.AccessFlags&classpath.AccSynthetic != 0 {
			continue
		}
		fd, err := l.buildField(f, vars)
		if err != nil {
			return def, err
		}
		def.Fields = append(def.Fields, fd)
	}
	for _, m := range stub.Methods {
		if m.AccessFlags&classpath.AccSynthetic != 0 || m.Name == "<clinit>" {
			continue
		}
		md, err := l.buildMethod(m, vars)
		if err != nil {
			return def, err
		}
		if m.Name == "<init>" {
			md.Return = nil
			def.Constructors = append(def.Constructors, md)
		} else {
			def.Methods = append(def.Methods, md)
		}
	}
	return def, nil
}

// declareTypeParams runs the two-pass definition: reserve every id with
// an Object bound first so self-referential bounds like
// `T extends Comparable<T>` resolve, then install the real bounds.
func (l *Loader) declareTypeParams(params []sigTypeParam, vars map[string]types.TypeVarID) ([]types.TypeVarID, error) {
	ids := make([]types.TypeVarID, 0, len(params))
	for _, tp := range params {
		id := l.store.NewTypeVar(types.TypeVarDef{Name: tp.name, Bounds: []types.Type{l.objectType()}})
		vars[tp.name] = id
		ids = append(ids, id)
	}
	for i, tp := range params {
		bounds, err := l.boundsFor(tp, vars)
		if err != nil {
			return nil, err
		}
		l.store.SetVarBounds(ids[i], bounds)
	}
	return ids, nil
}

func (l *Loader) boundsFor(tp sigTypeParam, vars map[string]types.TypeVarID) ([]types.Type, error) {
	var out []types.Type
	if tp.classBound != nil {
		t, err := l.sigToType(tp.classBound, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	} else {
		out = append(out, l.objectType())
	}
	for _, b := range tp.ifaceBounds {
		t, err := l.sigToType(b, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (l *Loader) buildField(stub classpath.FieldStub, classVars map[string]types.TypeVarID) (types.FieldDef, error) {
	fd := types.FieldDef{
		Name:     stub.Name,
		IsStatic: stub.AccessFlags&classpath.AccStatic != 0,
		Private:  stub.AccessFlags&classpath.AccPrivate != 0,
	}
	var parsed sigType
	var err error
	if stub.Signature != "" {
		parsed, err = parseFieldSignature(stub.Signature)
	} else {
		parsed, err = parseFieldDescriptor(stub.Descriptor)
	}
	if err != nil {
		return fd, fmt.Errorf("field %s: %w", stub.Name, err)
	}
	fd.Type, err = l.sigToType(parsed, classVars)
	return fd, err
}

func (l *Loader) buildMethod(stub classpath.MethodStub, classVars map[string]types.TypeVarID) (types.MethodDef, error) {
	md := types.MethodDef{
		Name:       stub.Name,
		IsStatic:   stub.AccessFlags&classpath.AccStatic != 0,
		IsVarargs:  stub.AccessFlags&classpath.AccVarargs != 0,
		IsAbstract: stub.AccessFlags&classpath.AccAbstract != 0,
		Private:    stub.AccessFlags&classpath.AccPrivate != 0,
	}
	if stub.Signature != "" {
		sig, err := parseMethodSignature(stub.Signature)
		if err != nil {
			return md, fmt.Errorf("method %s: %w", stub.Name, err)
		}
		vars := classVars
		if len(sig.params) > 0 {
			vars = make(map[string]types.TypeVarID, len(classVars)+len(sig.params))
			for k, v := range classVars {
				vars[k] = v
			}
			md.TypeParams, err = l.declareTypeParams(sig.params, vars)
			if err != nil {
				return md, err
			}
		}
		for _, a := range sig.args {
			t, err := l.sigToType(a, vars)
			if err != nil {
				return md, err
			}
			md.Params = append(md.Params, t)
		}
		if sig.ret == nil {
			md.Return = types.Void
		} else {
			md.Return, err = l.sigToType(sig.ret, vars)
			if err != nil {
				return md, err
			}
		}
		return md, nil
	}

	params, ret, err := parseMethodDescriptor(stub.Descriptor)
	if err != nil {
		return md, fmt.Errorf("method %s: %w", stub.Name, err)
	}
	for _, p := range params {
		t, err := l.sigToType(p, classVars)
		if err != nil {
			return md, err
		}
		md.Params = append(md.Params, t)
	}
	if ret == nil {
		md.Return = types.Void
	} else {
		md.Return, err = l.sigToType(ret, classVars)
		if err != nil {
			return md, err
		}
	}
	return md, nil
}

// sigToType converts a parsed descriptor or signature type. Unknown type
// variables degrade to Unknown rather than failing the stub, matching
// how partial fixtures behave.
func (l *Loader) sigToType(t sigType, vars map[string]types.TypeVarID) (types.Type, error) {
	switch v := t.(type) {
	case sigPrim:
		return types.PrimitiveType{Kind: v.kind}, nil
	case sigArray:
		elem, err := l.sigToType(v.elem, vars)
		if err != nil {
			return nil, err
		}
		return types.ArrayType{Element: elem}, nil
	case sigVar:
		if id, ok := vars[v.name]; ok {
			return types.TypeVarType{Var: id}, nil
		}
		return types.Unknown, nil
	case sigClass:
		return l.classSigToType(v, vars)
	}
	return nil, fmt.Errorf("unhandled signature node %T", t)
}

func (l *Loader) classSigToType(c sigClass, vars map[string]types.TypeVarID) (types.Type, error) {
	var args []types.Type
	for _, a := range c.typeArgs() {
		t, err := l.sigArgToType(a, vars)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return l.classNameToType(c.binaryName(), args)
}

func (l *Loader) sigArgToType(a sigArg, vars map[string]types.TypeVarID) (types.Type, error) {
	switch a.kind {
	case argAny:
		return types.WildcardType{Kind: types.WildcardAny}, nil
	case argExtends:
		t, err := l.sigToType(a.typ, vars)
		if err != nil {
			return nil, err
		}
		return types.WildcardType{Kind: types.WildcardExtends, Bound: t}, nil
	case argSuper:
		t, err := l.sigToType(a.typ, vars)
		if err != nil {
			return nil, err
		}
		return types.WildcardType{Kind: types.WildcardSuper, Bound: t}, nil
	}
	return l.sigToType(a.typ, vars)
}
