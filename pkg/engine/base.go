package engine

import (
	"strings"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/jdk"
	"javasem/analyzer-go/pkg/loader"
	"javasem/analyzer-go/pkg/modules"
	"javasem/analyzer-go/pkg/types"
)

// baseState is the shared outcome of base-store construction: the fully
// defined store, the signature cache, the per-file resolvers, and the
// diagnostics anchored to item signatures. All of it is immutable once
// built; checks clone the store and read the rest.
type baseState struct {
	store     *types.Store
	source    *SourceTypes
	resolvers map[string]*hir.Resolver
	itemDiags map[string][]types.Diagnostic
}

// snapshotIndex answers global type and package existence for name
// resolution: platform names from the platform only, everything else
// workspace first, then classpath.
type snapshotIndex struct{ s *Snapshot }

func (x snapshotIndex) HasType(binary string) bool {
	if jdk.IsReservedName(binary) {
		return x.s.jdk.HasType(binary)
	}
	return x.s.defs.HasType(binary) || x.s.cp.HasType(binary)
}

func (x snapshotIndex) HasPackage(pkg string) bool {
	if jdk.IsReservedPackage(pkg) {
		return x.s.jdk.HasPackage(pkg)
	}
	return x.s.defs.HasPackage(pkg) || x.s.cp.HasPackage(pkg)
}

// provider layers the load path: the platform owns its reserved
// namespace, the workspace shadows classpath duplicates, and the
// classpath fills in the rest.
func (s *Snapshot) provider() loader.Provider {
	return loader.PlatformOnly(s.jdk, loader.ShadowWorkspace(s.defs.HasType, s.cp))
}

// newLoader builds the per-check loader over a store clone, gated by the
// module the checked code lives in.
func (s *Snapshot) newLoader(store *types.Store, fromModule string) *loader.Loader {
	ld := loader.New(store, s.provider())
	ld.SetCheckpoint(s.checkErr)
	ld.SetGate(func(name, module string) bool {
		return s.graph.Visible(fromModule, module, modules.PackageOf(name))
	})
	return ld
}

// pruneInvisible demotes every defined class the checked module cannot
// read back to a placeholder. Types reach a body through cloned
// signatures as well as through demand loads; both paths answer to the
// same gate.
func (s *Snapshot) pruneInvisible(store *types.Store, fromModule string) {
	for i := 0; i < store.ClassCount(); i++ {
		id := types.ClassID(i)
		def := store.Class(id)
		if def == nil {
			continue
		}
		if !s.graph.Visible(fromModule, def.Module, modules.PackageOf(def.Name)) {
			store.Prune(id)
		}
	}
}

func (s *Snapshot) ensureBase() (*baseState, error) {
	s.baseOnce.Do(func() {
		s.base, s.baseErr = s.buildBase()
	})
	return s.base, s.baseErr
}

// buildBase interns every name the snapshot can reach in a fixed order
// and then defines the workspace declarations on top of the bootstrapped
// baseline. Interning order is workspace, classpath, platform, each
// lexicographic, so ids never depend on which body is checked first.
func (s *Snapshot) buildBase() (*baseState, error) {
	store := types.NewStore()
	base := &baseState{
		store: store,
		source: &SourceTypes{
			FieldTypes: make(map[BodyRef]types.Type),
			Owners:     make(map[BodyRef]string),
			ClassVars:  make(map[string]map[string]types.TypeVarID),
			MethodVars: make(map[BodyRef]map[string]types.TypeVarID),
		},
		resolvers: make(map[string]*hir.Resolver),
		itemDiags: make(map[string][]types.Diagnostic),
	}

	ticks := 0
	intern := func(names []string) error {
		for _, name := range names {
			store.Intern(name)
			if ticks++; ticks%internEvery == 0 {
				if err := s.checkErr(); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := intern(s.defs.Names()); err != nil {
		return nil, err
	}
	if err := intern(s.cp.Names()); err != nil {
		return nil, err
	}
	if err := intern(s.jdk.Names()); err != nil {
		return nil, err
	}

	idx := snapshotIndex{s: s}
	for _, f := range s.files {
		base.resolvers[f.Path] = hir.NewResolver(f, idx)
	}

	// The base loader sees every definition; visibility pruning happens
	// per check, on the clone.
	ld := loader.New(store, s.provider())
	ld.SetCheckpoint(s.checkErr)

	for _, binary := range s.defs.Names() {
		if jdk.IsReservedName(binary) && s.jdk.HasType(binary) {
			// The platform always wins its own namespace; the workspace
			// declaration there never becomes the definition.
			continue
		}
		it, _ := s.defs.Lookup(binary)
		if err := s.defineWorkspace(base, ld, it); err != nil {
			return nil, err
		}
	}
	return base, nil
}

// enclosingBinaries lists the binaries enclosing a nested name, outermost
// first. "p.Outer$Mid$Inner" yields ["p.Outer", "p.Outer$Mid"].
func enclosingBinaries(binary string) []string {
	var out []string
	for i, r := range binary {
		if r == '$' {
			out = append(out, binary[:i])
		}
	}
	return out
}

// staticNested reports whether a nested declaration cuts off the
// enclosing instance: explicitly static members, and the kinds that are
// implicitly static when nested.
func staticNested(decl *hir.TypeDecl) bool {
	if decl.Modifiers.IsStatic() {
		return true
	}
	return decl.Kind != hir.KindClass
}

// visibleEnclosingVars collects the type-parameter tables an inner type
// still sees, outermost first. The walk stops at the first static
// boundary from the inside out.
func (s *Snapshot) visibleEnclosingVars(base *baseState, it *TypeItem) []map[string]types.TypeVarID {
	chain := enclosingBinaries(it.Binary)
	cut := 0
	cur := it.Decl
	for i := len(chain) - 1; i >= 0; i-- {
		if staticNested(cur) {
			cut = i + 1
			break
		}
		outer, ok := s.defs.Lookup(chain[i])
		if !ok {
			cut = i + 1
			break
		}
		cur = outer.Decl
	}
	var out []map[string]types.TypeVarID
	for _, bin := range chain[cut:] {
		if vars, ok := base.source.ClassVars[bin]; ok {
			out = append(out, vars)
		}
	}
	return out
}

func (s *Snapshot) defineWorkspace(base *baseState, ld *loader.Loader, it *TypeItem) error {
	store := base.store
	decl := it.Decl
	id := store.Intern(it.Binary)

	env := &refEnv{
		resolver: base.resolvers[it.File.Path],
		loader:   ld,
		report: func(d types.Diagnostic) {
			base.itemDiags[it.File.Path] = append(base.itemDiags[it.File.Path], d)
		},
	}
	for _, vars := range s.visibleEnclosingVars(base, it) {
		env.pushVars(vars)
	}

	def := types.ClassDef{Name: it.Binary, IsInterface: decl.IsInterface(), Module: it.Module}
	objRef := types.ClassType{Class: store.WellKnown().Object}

	classVars := make(map[string]types.TypeVarID, len(decl.TypeParams))
	for _, tp := range decl.TypeParams {
		vid := store.NewTypeVar(types.TypeVarDef{Name: tp.Name, Bounds: []types.Type{objRef}})
		classVars[tp.Name] = vid
		def.TypeParams = append(def.TypeParams, vid)
	}
	base.source.ClassVars[it.Binary] = classVars
	env.pushVars(classVars)
	for i, tp := range decl.TypeParams {
		if len(tp.Bounds) == 0 {
			continue
		}
		var bounds []types.Type
		for _, b := range tp.Bounds {
			t, err := env.resolveRef(b)
			if err != nil {
				return err
			}
			bounds = append(bounds, t)
		}
		store.SetVarBounds(def.TypeParams[i], bounds)
	}

	selfArgs := make([]types.Type, len(def.TypeParams))
	for i, v := range def.TypeParams {
		selfArgs[i] = types.TypeVarType{Var: v}
	}
	selfType := types.ClassType{Class: id, Args: selfArgs}

	switch decl.Kind {
	case hir.KindEnum:
		if enumID, ok := store.Lookup("java.lang.Enum"); ok {
			def.Supertypes = append(def.Supertypes, types.ClassType{Class: enumID, Args: []types.Type{selfType}})
		} else {
			def.Supertypes = append(def.Supertypes, objRef)
		}
	case hir.KindRecord:
		if recID, ok := store.Lookup("java.lang.Record"); ok {
			def.Supertypes = append(def.Supertypes, types.ClassType{Class: recID})
		} else {
			def.Supertypes = append(def.Supertypes, objRef)
		}
	default:
		for _, ref := range decl.Extends {
			t, err := env.resolveRef(ref)
			if err != nil {
				return err
			}
			def.Supertypes = append(def.Supertypes, t)
		}
	}
	for _, ref := range decl.Implements {
		t, err := env.resolveRef(ref)
		if err != nil {
			return err
		}
		def.Supertypes = append(def.Supertypes, t)
	}
	if !def.IsInterface && len(def.Supertypes) == 0 && it.Binary != "java.lang.Object" {
		def.Supertypes = append(def.Supertypes, objRef)
	}

	for i, f := range decl.Fields {
		fd := types.FieldDef{
			Name:     f.Name,
			IsStatic: f.Modifiers.IsStatic() || def.IsInterface,
			Private:  f.Modifiers.Has(hir.ModPrivate),
		}
		switch f.Kind {
		case hir.FieldEnumConstant:
			fd.Type = selfType
			fd.IsStatic = true
		default:
			t, err := env.resolveRef(f.Type)
			if err != nil {
				return err
			}
			fd.Type = t
		}
		def.Fields = append(def.Fields, fd)
		ref := FieldRef(it.Binary, f.Name, i)
		base.source.FieldTypes[ref] = fd.Type
		base.source.Owners[ref] = it.Binary
	}

	for i, m := range decl.Methods {
		ref := MethodRef(it.Binary, m.Name, i)
		md, mvars, err := s.buildMemberDef(env, store, memberSig{
			name:       m.Name,
			typeParams: m.TypeParams,
			params:     m.Params,
			ret:        &m.Return,
			modifiers:  m.Modifiers,
			hasBody:    m.Body != nil,
			isIface:    def.IsInterface,
		})
		if err != nil {
			return err
		}
		def.Methods = append(def.Methods, md)
		if len(mvars) > 0 {
			base.source.MethodVars[ref] = mvars
		}
		base.source.Owners[ref] = it.Binary
	}

	for i, c := range decl.Ctors {
		ref := CtorRef(it.Binary, i)
		md, mvars, err := s.buildMemberDef(env, store, memberSig{
			name:       "<init>",
			typeParams: c.TypeParams,
			params:     c.Params,
			modifiers:  c.Modifiers,
			hasBody:    true,
		})
		if err != nil {
			return err
		}
		def.Constructors = append(def.Constructors, md)
		if len(mvars) > 0 {
			base.source.MethodVars[ref] = mvars
		}
		base.source.Owners[ref] = it.Binary
	}
	for i := range decl.Inits {
		base.source.Owners[InitRef(it.Binary, i)] = it.Binary
	}

	s.synthesizeMembers(store, decl, &def, selfType)

	store.Define(id, def)
	return nil
}

// memberSig is the declaration surface buildMemberDef reads, shared by
// methods and constructors.
type memberSig struct {
	name       string
	typeParams []hir.TypeParamDecl
	params     []hir.ParamDecl
	ret        *hir.TypeRef // nil for constructors
	modifiers  hir.Modifiers
	hasBody    bool
	isIface    bool
}

func (s *Snapshot) buildMemberDef(env *refEnv, store *types.Store, sig memberSig) (types.MethodDef, map[string]types.TypeVarID, error) {
	md := types.MethodDef{
		Name:     sig.name,
		IsStatic: sig.modifiers.IsStatic(),
		Private:  sig.modifiers.Has(hir.ModPrivate),
	}
	md.IsAbstract = sig.modifiers.IsAbstract() ||
		(sig.isIface && !sig.hasBody && !md.IsStatic && !sig.modifiers.Has(hir.ModDefault) && !md.Private)

	var mvars map[string]types.TypeVarID
	objRef := types.ClassType{Class: store.WellKnown().Object}
	if len(sig.typeParams) > 0 {
		mvars = make(map[string]types.TypeVarID, len(sig.typeParams))
		for _, tp := range sig.typeParams {
			vid := store.NewTypeVar(types.TypeVarDef{Name: tp.Name, Bounds: []types.Type{objRef}})
			mvars[tp.Name] = vid
			md.TypeParams = append(md.TypeParams, vid)
		}
		env.pushVars(mvars)
		defer env.popVars()
		for i, tp := range sig.typeParams {
			if len(tp.Bounds) == 0 {
				continue
			}
			var bounds []types.Type
			for _, b := range tp.Bounds {
				t, err := env.resolveRef(b)
				if err != nil {
					return md, nil, err
				}
				bounds = append(bounds, t)
			}
			store.SetVarBounds(md.TypeParams[i], bounds)
		}
	}

	for i, p := range sig.params {
		t, err := env.resolveRef(p.Type)
		if err != nil {
			return md, nil, err
		}
		if p.Varargs && i == len(sig.params)-1 {
			t = types.ArrayType{Element: t}
			md.IsVarargs = true
		}
		md.Params = append(md.Params, t)
	}
	if sig.ret != nil {
		t, err := env.resolveRef(*sig.ret)
		if err != nil {
			return md, nil, err
		}
		md.Return = t
	}
	return md, mvars, nil
}

// synthesizeMembers adds the implicit members a declaration form brings:
// the default constructor, enum values/valueOf, and record accessors
// with the canonical constructor.
func (s *Snapshot) synthesizeMembers(store *types.Store, decl *hir.TypeDecl, def *types.ClassDef, selfType types.ClassType) {
	strRef := types.ClassType{Class: store.WellKnown().String}

	switch decl.Kind {
	case hir.KindEnum:
		def.Methods = append(def.Methods,
			types.MethodDef{Name: "values", Return: types.ArrayType{Element: selfType}, IsStatic: true},
			types.MethodDef{Name: "valueOf", Params: []types.Type{strRef}, Return: selfType, IsStatic: true},
		)
	case hir.KindRecord:
		for i, f := range decl.Fields {
			if f.Kind != hir.FieldRecordComponent {
				continue
			}
			if declaresNoArgMethod(decl, f.Name) {
				continue
			}
			def.Methods = append(def.Methods, types.MethodDef{Name: f.Name, Return: def.Fields[i].Type})
		}
		if len(decl.Ctors) == 0 {
			canon := types.MethodDef{Name: "<init>"}
			for i, f := range decl.Fields {
				if f.Kind == hir.FieldRecordComponent {
					canon.Params = append(canon.Params, def.Fields[i].Type)
				}
			}
			def.Constructors = append(def.Constructors, canon)
		}
	}

	if !def.IsInterface && len(def.Constructors) == 0 {
		private := decl.Kind == hir.KindEnum
		def.Constructors = append(def.Constructors, types.MethodDef{Name: "<init>", Private: private})
	}
}

func declaresNoArgMethod(decl *hir.TypeDecl, name string) bool {
	for _, m := range decl.Methods {
		if m.Name == name && len(m.Params) == 0 {
			return true
		}
	}
	return false
}

// simpleOf returns the last segment of a dotted or nested binary name.
func simpleOf(binary string) string {
	if i := strings.LastIndexAny(binary, ".$"); i >= 0 {
		return binary[i+1:]
	}
	return binary
}
