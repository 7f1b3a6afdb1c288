package loader

import (
	"errors"
	"testing"

	"javasem/analyzer-go/pkg/classpath"
	"javasem/analyzer-go/pkg/types"
)

func newLoader(stubs StubMap) (*types.Store, *Loader) {
	store := types.NewStore()
	return store, New(store, stubs)
}

func mustEnsure(t *testing.T, l *Loader, name string) types.ClassID {
	t.Helper()
	id, err := l.EnsureClass(name)
	if err != nil {
		t.Fatalf("EnsureClass(%s): %v", name, err)
	}
	return id
}

func TestLoadDescriptorOnlyStub(t *testing.T) {
	store, l := newLoader(StubMap{
		"com.acme.Point": {
			Name:  "com.acme.Point",
			Super: "java.lang.Object",
			Fields: []classpath.FieldStub{
				{Name: "x", Descriptor: "I"},
				{Name: "label", Descriptor: "Ljava/lang/String;"},
				{Name: "weights", Descriptor: "[D"},
			},
			Methods: []classpath.MethodStub{
				{Name: "<init>", Descriptor: "(II)V"},
				{Name: "dist", Descriptor: "(Lcom/acme/Point;)D"},
				{Name: "origin", Descriptor: "()Lcom/acme/Point;", AccessFlags: classpath.AccStatic},
				{Name: "<clinit>", Descriptor: "()V", AccessFlags: classpath.AccStatic},
			},
		},
	})
	id := mustEnsure(t, l, "com.acme.Point")
	def := store.Class(id)
	if def == nil {
		t.Fatalf("Point should be defined")
	}
	if def.IsInterface {
		t.Fatalf("Point is a class")
	}
	if len(def.Fields) != 3 {
		t.Fatalf("fields: %+v", def.Fields)
	}
	if !types.Same(def.Fields[0].Type, types.Int) {
		t.Fatalf("x should be int, got %s", def.Fields[0].Type.Name())
	}
	str := types.ClassType{Class: store.WellKnown().String}
	if !types.Same(def.Fields[1].Type, str) {
		t.Fatalf("label should be String, got %s", def.Fields[1].Type.Name())
	}
	if !types.Same(def.Fields[2].Type, types.ArrayType{Element: types.Double}) {
		t.Fatalf("weights should be double[], got %s", def.Fields[2].Type.Name())
	}
	if len(def.Constructors) != 1 || len(def.Constructors[0].Params) != 2 {
		t.Fatalf("constructors: %+v", def.Constructors)
	}
	if len(def.Methods) != 2 {
		t.Fatalf("<clinit> must be skipped, methods: %+v", def.Methods)
	}
	for _, m := range def.Methods {
		if m.Name == "dist" && !types.Same(m.Params[0], types.ClassType{Class: id}) {
			t.Fatalf("dist parameter should reference Point itself")
		}
		if m.Name == "origin" && !m.IsStatic {
			t.Fatalf("origin should be static")
		}
	}
}

func TestLoadGenericSignature(t *testing.T) {
	store, l := newLoader(StubMap{
		"com.acme.Box": {
			Name:      "com.acme.Box",
			Super:     "java.lang.Object",
			Signature: "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Iterable<TT;>;",
			Fields: []classpath.FieldStub{
				{Name: "value", Descriptor: "Ljava/lang/Object;", Signature: "TT;"},
			},
			Methods: []classpath.MethodStub{
				{Name: "get", Descriptor: "()Ljava/lang/Object;", Signature: "()TT;"},
				{Name: "map", Descriptor: "(Ljava/lang/Object;)Lcom/acme/Box;",
					Signature: "<R:Ljava/lang/Object;>(TR;)Lcom/acme/Box<TR;>;"},
				{Name: "fill", Descriptor: "(Ljava/util/List;)V",
					Signature: "(Ljava/util/List<+TT;>;)V"},
			},
		},
	})
	id := mustEnsure(t, l, "com.acme.Box")
	def := store.Class(id)
	if len(def.TypeParams) != 1 {
		t.Fatalf("type params: %v", def.TypeParams)
	}
	tvar := types.TypeVarType{Var: def.TypeParams[0]}
	if !types.Same(def.Fields[0].Type, tvar) {
		t.Fatalf("value should have type T, got %s", def.Fields[0].Type.Name())
	}
	if len(def.Supertypes) != 2 {
		t.Fatalf("supertypes: %v", def.Supertypes)
	}
	iter, ok := def.Supertypes[1].(types.ClassType)
	if !ok || iter.Class != store.WellKnown().Iterable {
		t.Fatalf("second supertype should be Iterable, got %v", def.Supertypes[1])
	}
	if len(iter.Args) != 1 || !types.Same(iter.Args[0], tvar) {
		t.Fatalf("Iterable should be instantiated at T")
	}
	for _, m := range def.Methods {
		switch m.Name {
		case "get":
			if !types.Same(m.Return, tvar) {
				t.Fatalf("get should return T, got %s", m.Return.Name())
			}
		case "map":
			if len(m.TypeParams) != 1 {
				t.Fatalf("map should declare R")
			}
			r := types.TypeVarType{Var: m.TypeParams[0]}
			if !types.Same(m.Params[0], r) {
				t.Fatalf("map parameter should be R")
			}
			ret, ok := m.Return.(types.ClassType)
			if !ok || ret.Class != id || !types.Same(ret.Args[0], r) {
				t.Fatalf("map should return Box<R>, got %s", m.Return.Name())
			}
		case "fill":
			list, ok := m.Params[0].(types.ClassType)
			if !ok {
				t.Fatalf("fill parameter should be a class type")
			}
			w, ok := list.Args[0].(types.WildcardType)
			if !ok || w.Kind != types.WildcardExtends || !types.Same(w.Bound, tvar) {
				t.Fatalf("fill should take List<? extends T>, got %s", m.Params[0].Name())
			}
		}
	}
}

func TestSelfReferentialBound(t *testing.T) {
	store, l := newLoader(StubMap{
		"com.acme.Tree": {
			Name:      "com.acme.Tree",
			Super:     "java.lang.Object",
			Signature: "<E:Lcom/acme/Tree<TE;>;>Ljava/lang/Object;",
		},
	})
	id := mustEnsure(t, l, "com.acme.Tree")
	def := store.Class(id)
	if len(def.TypeParams) != 1 {
		t.Fatalf("type params: %v", def.TypeParams)
	}
	bound := store.Var(def.TypeParams[0]).Bounds[0]
	ct, ok := bound.(types.ClassType)
	if !ok || ct.Class != id {
		t.Fatalf("self-referential bound should resolve to the reserved id, got %v", bound)
	}
	if !types.Same(ct.Args[0], types.TypeVarType{Var: def.TypeParams[0]}) {
		t.Fatalf("bound should be Tree<E>")
	}
}

func TestRecursiveSupertypeLoad(t *testing.T) {
	store, l := newLoader(StubMap{
		"com.acme.Impl": {Name: "com.acme.Impl", Super: "com.acme.Base"},
		"com.acme.Base": {Name: "com.acme.Base", Super: "java.lang.Object",
			Methods: []classpath.MethodStub{{Name: "run", Descriptor: "()V"}}},
	})
	mustEnsure(t, l, "com.acme.Impl")
	baseID, ok := store.Lookup("com.acme.Base")
	if !ok || !store.IsDefined(baseID) {
		t.Fatalf("loading Impl should define Base too")
	}
}

func TestMissingTypeFallsBackToNamed(t *testing.T) {
	store, l := newLoader(StubMap{
		"com.acme.Holder": {
			Name:  "com.acme.Holder",
			Super: "java.lang.Object",
			Fields: []classpath.FieldStub{
				{Name: "gone", Descriptor: "Lcom/gone/Missing;"},
			},
		},
	})
	if _, err := l.EnsureClass("com.gone.Missing"); !errors.Is(err, ErrMissingType) {
		t.Fatalf("want ErrMissingType, got %v", err)
	}
	id := mustEnsure(t, l, "com.acme.Holder")
	def := store.Class(id)
	named, ok := def.Fields[0].Type.(types.NamedType)
	if !ok || named.Qualified != "com.gone.Missing" {
		t.Fatalf("missing reference should become Named, got %v", def.Fields[0].Type)
	}
}

func TestMissingTypeStaysMissing(t *testing.T) {
	_, l := newLoader(StubMap{})
	for i := 1; i <= 2; i++ {
		if _, err := l.EnsureClass("com.gone.Missing"); !errors.Is(err, ErrMissingType) {
			t.Fatalf("request %d: want ErrMissingType, got %v", i, err)
		}
	}
}

func TestPlatformOnlyRouting(t *testing.T) {
	platform := StubMap{}
	rest := StubMap{
		"java.lang.Bogus": {Name: "java.lang.Bogus", Super: "java.lang.Object"},
		"com.acme.Real":   {Name: "com.acme.Real", Super: "java.lang.Object"},
	}
	store := types.NewStore()
	l := New(store, PlatformOnly(platform, rest))
	if _, err := l.EnsureClass("java.lang.Bogus"); !errors.Is(err, ErrMissingType) {
		t.Fatalf("classpath stubs must never rescue a platform name, got %v", err)
	}
	mustEnsure(t, l, "com.acme.Real")
}

func TestWorkspaceShadowBlocksIndirectLoad(t *testing.T) {
	// com.lib.Util exists both as workspace source and on the classpath.
	// Loading the unrelated com.lib.Helper must not install the stale
	// classpath definition.
	store := types.NewStore()
	utilID := store.Intern("com.lib.Util") // workspace pre-intern
	provider := ShadowWorkspace(
		func(name string) bool { return name == "com.lib.Util" },
		StubMap{
			"com.lib.Util": {Name: "com.lib.Util", Super: "java.lang.Object",
				Methods: []classpath.MethodStub{{Name: "stale", Descriptor: "()V"}}},
			"com.lib.Helper": {Name: "com.lib.Helper", Super: "com.lib.Util"},
		},
	)
	l := New(store, provider)
	helperID := mustEnsure(t, l, "com.lib.Helper")
	if store.IsDefined(utilID) {
		t.Fatalf("shadowed name must stay a placeholder for the chain")
	}
	helper := store.Class(helperID)
	super, ok := helper.Supertypes[0].(types.ClassType)
	if !ok || super.Class != utilID {
		t.Fatalf("shadowed supertype should keep the workspace id, got %v", helper.Supertypes[0])
	}

	// Source definition arrives afterwards and wins.
	store.Define(utilID, types.ClassDef{
		Name:    "com.lib.Util",
		Methods: []types.MethodDef{{Name: "fresh", Return: types.Void}},
	})
	if got := store.Class(utilID).Methods[0].Name; got != "fresh" {
		t.Fatalf("workspace definition should win, got method %q", got)
	}
}

func TestGatePrunesRejectedTypes(t *testing.T) {
	store := types.NewStore()
	stubs := StubMap{
		"com.hidden.Secret": {Name: "com.hidden.Secret", Super: "java.lang.Object", Module: "hidden.mod"},
		"com.open.Front":    {Name: "com.open.Front", Super: "com.hidden.Secret", Module: "open.mod"},
	}
	l := New(store, stubs)
	// First load with no gate: recursion defines Secret.
	mustEnsure(t, l, "com.open.Front")
	secretID, _ := store.Lookup("com.hidden.Secret")
	if !store.IsDefined(secretID) {
		t.Fatalf("setup: Secret should be defined")
	}

	// A direct request under a gate that rejects hidden.mod prunes it
	// back to a placeholder.
	l.SetGate(func(name, module string) bool { return module != "hidden.mod" })
	id, err := l.EnsureClass("com.hidden.Secret")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if id != secretID {
		t.Fatalf("id must be stable across pruning")
	}
	if store.IsDefined(secretID) {
		t.Fatalf("gate rejection must prune the definition")
	}
}

func TestGateBlocksInitialDefine(t *testing.T) {
	store := types.NewStore()
	l := New(store, StubMap{
		"com.hidden.Secret": {Name: "com.hidden.Secret", Super: "java.lang.Object", Module: "hidden.mod"},
	})
	l.SetGate(func(name, module string) bool { return module == "" })
	id, err := l.EnsureClass("com.hidden.Secret")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if store.IsDefined(id) {
		t.Fatalf("gated type must remain a placeholder")
	}
}

func TestCheckpointAbortsLoad(t *testing.T) {
	stop := errors.New("stop")
	stubs := StubMap{}
	// A chain long enough to cross the checkpoint cadence.
	prev := "java.lang.Object"
	for i := 0; i < 300; i++ {
		name := "com.acme.C" + string(rune('A'+i%26)) + string(rune('A'+(i/26)%26)) + string(rune('A'+i/676))
		stubs[name] = &classpath.ClassStub{Name: name, Super: prev}
		prev = name
	}
	store := types.NewStore()
	l := New(store, stubs)
	calls := 0
	l.SetCheckpoint(func() error {
		calls++
		return stop
	})
	if _, err := l.EnsureClass(prev); !errors.Is(err, stop) {
		t.Fatalf("checkpoint error should unwind the load, got %v", err)
	}
	if calls == 0 {
		t.Fatalf("checkpoint never consulted")
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	store, l := newLoader(StubMap{
		"com.acme.Once": {Name: "com.acme.Once", Super: "java.lang.Object"},
	})
	a := mustEnsure(t, l, "com.acme.Once")
	b := mustEnsure(t, l, "com.acme.Once")
	if a != b {
		t.Fatalf("ids differ: %d vs %d", a, b)
	}
	if store.ClassCount() == 0 {
		t.Fatalf("store should hold the definition")
	}
}
