package types

import "testing"

func TestInferFromArgumentLowerBounds(t *testing.T) {
	s := NewStore()
	animal, dog, _ := defineAnimals(s)
	v := s.NewTypeVar(TypeVarDef{Name: "T"})

	got := InferTypeArgs(s, []TypeVarID{v}, []Type{tv(v)}, []Type{cls(dog)}, tv(v), nil)
	if len(got) != 1 || !Same(got[0], cls(dog)) {
		t.Fatalf("single argument pins T, got %v", got)
	}
	got = InferTypeArgs(s, []TypeVarID{v}, []Type{tv(v), tv(v)}, []Type{cls(dog), cls(animal)}, tv(v), nil)
	if !Same(got[0], cls(animal)) {
		t.Fatalf("two arguments lift T to their lub, got %s", FormatType(s, got[0]))
	}
}

func TestInferBoxesPrimitiveArguments(t *testing.T) {
	s := NewStore()
	v := s.NewTypeVar(TypeVarDef{Name: "T"})
	got := InferTypeArgs(s, []TypeVarID{v}, []Type{tv(v)}, []Type{Int}, tv(v), nil)
	if !Same(got[0], cls(s.WellKnown().Integer)) {
		t.Fatalf("an int argument infers Integer, got %s", FormatType(s, got[0]))
	}
}

func TestInferFromExpectedReturn(t *testing.T) {
	s := NewStore()
	str := cls(s.WellKnown().String)
	listID, _ := s.Lookup("java.util.List")
	v := s.NewTypeVar(TypeVarDef{Name: "T"})
	got := InferTypeArgs(s, []TypeVarID{v}, nil, nil, cls(listID, tv(v)), cls(listID, str))
	if !Same(got[0], str) {
		t.Fatalf("the expected return determines T, got %s", FormatType(s, got[0]))
	}
}

func TestInferThroughGenericArguments(t *testing.T) {
	s := NewStore()
	str := cls(s.WellKnown().String)
	listID, _ := s.Lookup("java.util.List")
	collID, _ := s.Lookup("java.util.Collection")
	v := s.NewTypeVar(TypeVarDef{Name: "T"})

	got := InferTypeArgs(s, []TypeVarID{v}, []Type{cls(listID, tv(v))}, []Type{cls(listID, str)}, tv(v), nil)
	if !Same(got[0], str) {
		t.Fatalf("List<T> against List<String>: got %s", FormatType(s, got[0]))
	}
	// The argument may be a subtype of the parameter's class.
	got = InferTypeArgs(s, []TypeVarID{v}, []Type{cls(collID, tv(v))}, []Type{cls(listID, str)}, tv(v), nil)
	if !Same(got[0], str) {
		t.Fatalf("Collection<T> against List<String>: got %s", FormatType(s, got[0]))
	}
}

func TestInferDefaultsWithoutConstraints(t *testing.T) {
	s := NewStore()
	animal, _, _ := defineAnimals(s)
	free := s.NewTypeVar(TypeVarDef{Name: "T"})
	bounded := s.NewTypeVar(TypeVarDef{Name: "U", Bounds: []Type{cls(animal)}})

	got := InferTypeArgs(s, []TypeVarID{free}, nil, nil, tv(free), nil)
	if !Same(got[0], cls(s.WellKnown().Object)) {
		t.Fatalf("an unconstrained parameter solves to Object, got %s", FormatType(s, got[0]))
	}
	got = InferTypeArgs(s, []TypeVarID{bounded}, nil, nil, tv(bounded), nil)
	if !Same(got[0], cls(animal)) {
		t.Fatalf("an unconstrained bounded parameter solves to its bound, got %s", FormatType(s, got[0]))
	}
}

func TestSortRequiresComparableElements(t *testing.T) {
	s := NewStore()
	animal, _, _ := defineAnimals(s)
	w := s.WellKnown()
	collID, _ := s.Lookup("java.util.Collections")
	listID, _ := s.Lookup("java.util.List")

	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(collID),
		Kind:     CallStatic,
		Name:     "sort",
		Args:     []Type{cls(listID, cls(w.String))},
	})
	if !res.OK() {
		t.Fatalf("Collections.sort(List<String>) should resolve: %+v", res.Failures)
	}

	res = ResolveMethodCall(s, MethodCall{
		Receiver: cls(collID),
		Kind:     CallStatic,
		Name:     "sort",
		Args:     []Type{cls(listID, cls(animal))},
	})
	if res.OK() {
		t.Fatalf("Animal is not Comparable, sort must fail")
	}
	f := res.Failures[0].Failures[0]
	if f.Kind != FailTypeArgOutOfBounds {
		t.Fatalf("expected an out-of-bounds type argument, got %+v", f)
	}
	want := "type argument Animal for T out of bounds: not within Comparable<? super Animal>"
	if got := f.Describe(s); got != want {
		t.Fatalf("described as %q, want %q", got, want)
	}
}

func TestDiamondInference(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	str := cls(w.String)
	alID, _ := s.Lookup("java.util.ArrayList")
	listID, _ := s.Lookup("java.util.List")
	hmID, _ := s.Lookup("java.util.HashMap")
	mapID, _ := s.Lookup("java.util.Map")

	got := InferDiamondTypeArgs(s, alID, cls(listID, str))
	if len(got) != 1 || !Same(got[0], str) {
		t.Fatalf("new ArrayList<>() against List<String>: %v", got)
	}
	got = InferDiamondTypeArgs(s, alID, cls(listID))
	if len(got) != 1 || !Same(got[0], cls(w.Object)) {
		t.Fatalf("a raw target leaves the parameter at Object: %v", got)
	}
	got = InferDiamondTypeArgs(s, hmID, cls(mapID, str, cls(w.Integer)))
	if len(got) != 2 || !Same(got[0], str) || !Same(got[1], cls(w.Integer)) {
		t.Fatalf("new HashMap<>() against Map<String, Integer>: %v", got)
	}
	got = InferDiamondTypeArgs(s, alID, cls(listID, extendsWild(str)))
	if !Same(got[0], str) {
		t.Fatalf("a wildcard target contributes its bound: %s", FormatType(s, got[0]))
	}
}

func TestSAMSignature(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	str := cls(w.String)
	funcID, _ := s.Lookup("java.util.function.Function")
	runID, _ := s.Lookup("java.lang.Runnable")
	consID, _ := s.Lookup("java.util.function.Consumer")

	params, ret, ok := SAMSignature(s, cls(funcID, str, cls(w.Integer)))
	if !ok || len(params) != 1 || !Same(params[0], str) || !Same(ret, cls(w.Integer)) {
		t.Fatalf("Function<String, Integer> is (String) -> Integer, got %v -> %v", params, ret)
	}
	params, ret, ok = SAMSignature(s, cls(runID))
	if !ok || len(params) != 0 || !IsVoid(ret) {
		t.Fatalf("Runnable is () -> void")
	}
	// Raw functional interfaces see their method at the erasure.
	params, _, ok = SAMSignature(s, cls(consID))
	if !ok || !Same(params[0], cls(w.Object)) {
		t.Fatalf("raw Consumer accepts Object, got %v", params)
	}
	if _, _, ok := SAMSignature(s, str); ok {
		t.Fatalf("String is not a functional interface")
	}
}

func TestInferVarType(t *testing.T) {
	s := NewStore()
	str := cls(s.WellKnown().String)
	if got := InferVarType(str); !Same(got, str) {
		t.Fatalf("var with a String initializer is String")
	}
	if !IsError(InferVarType(nil)) {
		t.Fatalf("var with no initializer type degrades to error")
	}
	if !IsError(InferVarType(UnknownType{})) {
		t.Fatalf("var with an unknown initializer degrades to error")
	}
}
