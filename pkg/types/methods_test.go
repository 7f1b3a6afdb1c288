package types

import (
	"strings"
	"testing"
)

func TestOverloadPicksMostSpecificPrimitive(t *testing.T) {
	s := NewStore()
	psID, _ := s.Lookup("java.io.PrintStream")
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(psID),
		Kind:     CallInstance,
		Name:     "println",
		Args:     []Type{Int},
	})
	if !res.OK() {
		t.Fatalf("println(int) should resolve: %+v", res.Failures)
	}
	if got := FormatResolved(s, res.Method); got != "PrintStream.println(int)" {
		t.Fatalf("picked %s, want PrintStream.println(int)", got)
	}
	if res.Method.Phase != PhaseStrict {
		t.Fatalf("identity match should win in the strict phase, got %s", res.Method.Phase)
	}
	if !IsVoid(res.Method.Return) {
		t.Fatalf("println returns void, got %s", FormatType(s, res.Method.Return))
	}
}

func TestOverloadStrictPhaseBeatsBoxing(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	psID, _ := s.Lookup("java.io.PrintStream")
	// An Integer argument matches println(Object) without boxing, so the
	// strict phase settles it before println(int) ever gets a chance.
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(psID),
		Kind:     CallInstance,
		Name:     "println",
		Args:     []Type{cls(w.Integer)},
	})
	if !res.OK() {
		t.Fatalf("println(Integer) should resolve")
	}
	if got := FormatResolved(s, res.Method); got != "PrintStream.println(Object)" {
		t.Fatalf("picked %s, want PrintStream.println(Object)", got)
	}
}

func TestOverloadWidensAcrossCandidates(t *testing.T) {
	s := NewStore()
	mathID, _ := s.Lookup("java.lang.Math")
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(mathID),
		Kind:     CallStatic,
		Name:     "max",
		Args:     []Type{Int, Long},
	})
	if !res.OK() {
		t.Fatalf("Math.max(int, long) should resolve")
	}
	if !Same(res.Method.Return, Long) {
		t.Fatalf("Math.max(int, long) returns %s, want long", FormatType(s, res.Method.Return))
	}
	if got := FormatResolved(s, res.Method); got != "Math.max(long, long)" {
		t.Fatalf("picked %s", got)
	}
}

func TestStaticValueOfFamily(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	call := func(arg Type) Resolution {
		return ResolveMethodCall(s, MethodCall{
			Receiver: cls(w.String),
			Kind:     CallStatic,
			Name:     "valueOf",
			Args:     []Type{arg},
		})
	}
	cases := []struct {
		arg  Type
		want string
	}{
		{Int, "String.valueOf(int)"},
		{Char, "String.valueOf(char)"},
		{Float, "String.valueOf(double)"},
		{cls(w.Boolean), "String.valueOf(Object)"},
	}
	for _, c := range cases {
		res := call(c.arg)
		if !res.OK() {
			t.Fatalf("valueOf(%s) should resolve", FormatType(s, c.arg))
		}
		if got := FormatResolved(s, res.Method); got != c.want {
			t.Fatalf("valueOf(%s) picked %s, want %s", FormatType(s, c.arg), got, c.want)
		}
	}
}

func TestStaticReachedThroughInstanceIsFlagged(t *testing.T) {
	s := NewStore()
	mathID, _ := s.Lookup("java.lang.Math")
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(mathID),
		Kind:     CallInstance,
		Name:     "sqrt",
		Args:     []Type{Double},
	})
	if !res.OK() {
		t.Fatalf("sqrt should resolve even through an instance expression")
	}
	if !res.Method.ViaInstance {
		t.Fatalf("static method reached via instance must be flagged")
	}
}

func TestInstanceMethodRejectsStaticCall(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(w.String),
		Kind:     CallStatic,
		Name:     "length",
	})
	if res.OK() {
		t.Fatalf("String.length through the type name must not resolve")
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected one rejected candidate, got %d", len(res.Failures))
	}
	f := res.Failures[0]
	if len(f.Failures) != 1 || f.Failures[0].Kind != FailWrongCallKind {
		t.Fatalf("expected a call-kind rejection, got %+v", f.Failures)
	}
	if msg := f.Failures[0].Describe(s); msg != "not applicable to a static call" {
		t.Fatalf("unexpected description %q", msg)
	}
}

func TestArityFailuresDescribeEachCandidate(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(w.String),
		Kind:     CallInstance,
		Name:     "substring",
		Args:     []Type{Int, Int, Int},
	})
	if res.OK() {
		t.Fatalf("substring with three arguments must not resolve")
	}
	if len(res.Failures) != 2 {
		t.Fatalf("expected both substring overloads among the failures, got %d", len(res.Failures))
	}
	wantSig := map[string]string{
		"String.substring(int)":      "wrong arity: expected 1, found 3",
		"String.substring(int, int)": "wrong arity: expected 2, found 3",
	}
	for _, fc := range res.Failures {
		sig := FormatCandidate(s, fc)
		want, ok := wantSig[sig]
		if !ok {
			t.Fatalf("unexpected candidate %s", sig)
		}
		if len(fc.Failures) != 1 {
			t.Fatalf("%s: phase repeats should collapse to one failure, got %d", sig, len(fc.Failures))
		}
		if got := fc.Failures[0].Describe(s); got != want {
			t.Fatalf("%s: described as %q, want %q", sig, got, want)
		}
	}
}

func TestVarargsExpansionInfersElement(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	listID, _ := s.Lookup("java.util.List")
	str := cls(w.String)
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(listID),
		Kind:     CallStatic,
		Name:     "of",
		Args:     []Type{str, str},
	})
	if !res.OK() {
		t.Fatalf("List.of(String, String) should resolve: %+v", res.Failures)
	}
	m := res.Method
	if !m.UsedVarargs || m.Phase != PhaseVarargs {
		t.Fatalf("expected varargs expansion, got usedVarargs=%t phase=%s", m.UsedVarargs, m.Phase)
	}
	if got := FormatType(s, m.Return); got != "List<String>" {
		t.Fatalf("List.of(String, String) : %s, want List<String>", got)
	}
	if len(m.InferredTypeArgs) != 1 || !Same(m.InferredTypeArgs[0], str) {
		t.Fatalf("inferred %v, want [String]", m.InferredTypeArgs)
	}
	if got := FormatResolved(s, m); got != "List.of(String...)" {
		t.Fatalf("declared shape renders as %s", got)
	}
}

func TestVarargsZeroArgsUsesExpectedType(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	listID, _ := s.Lookup("java.util.List")
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(listID),
		Kind:     CallStatic,
		Name:     "of",
	})
	if !res.OK() {
		t.Fatalf("List.of() should resolve")
	}
	if got := FormatType(s, res.Method.Return); got != "List<Object>" {
		t.Fatalf("unconstrained List.of() : %s, want List<Object>", got)
	}

	res = ResolveMethodCall(s, MethodCall{
		Receiver: cls(listID),
		Kind:     CallStatic,
		Name:     "of",
		Expected: cls(listID, cls(w.String)),
	})
	if !res.OK() {
		t.Fatalf("List.of() with a target should resolve")
	}
	if got := FormatType(s, res.Method.Return); got != "List<String>" {
		t.Fatalf("target-typed List.of() : %s, want List<String>", got)
	}
}

func TestVarargsWithNonReifiableElementWarns(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	listID, _ := s.Lookup("java.util.List")
	strList := cls(listID, cls(w.String))
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(listID),
		Kind:     CallStatic,
		Name:     "of",
		Args:     []Type{strList},
	})
	if !res.OK() {
		t.Fatalf("List.of(List<String>) should resolve")
	}
	found := false
	for _, warn := range res.Method.Warnings {
		if warn == WarnUncheckedVarargs {
			found = true
		}
	}
	if !found {
		t.Fatalf("generic varargs array creation should warn, got %v", res.Method.Warnings)
	}
}

func TestAmbiguousCallReportsAllBest(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	id := s.Intern("pair.Overloads")
	s.Define(id, ClassDef{
		Supertypes: []Type{cls(w.Object)},
		Methods: []MethodDef{
			staticMethod("f", Void, Int, Long),
			staticMethod("f", Void, Long, Int),
		},
	})
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(id),
		Kind:     CallStatic,
		Name:     "f",
		Args:     []Type{Int, Int},
	})
	if res.OK() {
		t.Fatalf("f(int, int) against f(int, long) and f(long, int) is ambiguous")
	}
	if !res.IsAmbiguous() || len(res.Ambiguous) != 2 {
		t.Fatalf("expected two ambiguous candidates, got %d", len(res.Ambiguous))
	}
}

func TestSubclassParameterWinsSpecificity(t *testing.T) {
	s := NewStore()
	animal, dog, _ := defineAnimals(s)
	w := s.WellKnown()
	id := s.Intern("zoo.Kennel")
	s.Define(id, ClassDef{
		Supertypes: []Type{cls(w.Object)},
		Methods: []MethodDef{
			method("accept", Void, cls(animal)),
			method("accept", Void, cls(dog)),
		},
	})
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(id),
		Kind:     CallInstance,
		Name:     "accept",
		Args:     []Type{cls(dog)},
	})
	if !res.OK() {
		t.Fatalf("accept(Dog) should resolve")
	}
	if !Same(res.Method.Params[0], cls(dog)) {
		t.Fatalf("picked accept(%s), want accept(Dog)", FormatType(s, res.Method.Params[0]))
	}
}

func TestInterfaceReturnsMergeOnSharedSignature(t *testing.T) {
	s := NewStore()
	animal, dog, _ := defineAnimals(s)
	a := s.Intern("box.A")
	b := s.Intern("box.B")
	c := s.Intern("box.C")
	s.Define(a, ClassDef{
		IsInterface: true,
		Methods:     []MethodDef{abstract(method("pick", cls(animal)))},
	})
	s.Define(b, ClassDef{
		IsInterface: true,
		Methods:     []MethodDef{abstract(method("pick", cls(dog)))},
	})
	s.Define(c, ClassDef{
		IsInterface: true,
		Supertypes:  []Type{cls(a), cls(b)},
	})
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(c),
		Kind:     CallInstance,
		Name:     "pick",
	})
	if !res.OK() {
		t.Fatalf("pick() should resolve on the combined interface")
	}
	if !Same(res.Method.Return, cls(dog)) {
		t.Fatalf("merged return is %s, want the narrower Dog", FormatType(s, res.Method.Return))
	}
}

func TestObjectMethodsReachableOnInterfaces(t *testing.T) {
	s := NewStore()
	_, _, pet := defineAnimals(s)
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(pet),
		Kind:     CallInstance,
		Name:     "toString",
	})
	if !res.OK() {
		t.Fatalf("toString should be visible on any interface")
	}
	if res.Method.Owner != s.WellKnown().Object {
		t.Fatalf("toString comes from Object, got %s", s.ClassName(res.Method.Owner))
	}
}

func TestExplicitTypeArguments(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	collID, _ := s.Lookup("java.util.Collections")
	res := ResolveMethodCall(s, MethodCall{
		Receiver:         cls(collID),
		Kind:             CallStatic,
		Name:             "emptyList",
		ExplicitTypeArgs: []Type{cls(w.String)},
	})
	if !res.OK() {
		t.Fatalf("Collections.<String>emptyList() should resolve")
	}
	if got := FormatType(s, res.Method.Return); got != "List<String>" {
		t.Fatalf("explicit type argument ignored: %s", got)
	}

	res = ResolveMethodCall(s, MethodCall{
		Receiver:         cls(collID),
		Kind:             CallStatic,
		Name:             "emptyList",
		ExplicitTypeArgs: []Type{cls(w.String), cls(w.Integer)},
	})
	if res.OK() {
		t.Fatalf("two explicit type arguments on a one-parameter method must fail")
	}
	msg := res.Failures[0].Failures[0].Describe(s)
	if msg != "wrong number of type arguments: expected 1, found 2" {
		t.Fatalf("unexpected description %q", msg)
	}
}

func TestUnknownNameYieldsEmptyResolution(t *testing.T) {
	s := NewStore()
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(s.WellKnown().String),
		Kind:     CallInstance,
		Name:     "noSuchMethod",
	})
	if res.OK() || res.IsAmbiguous() || len(res.Failures) != 0 {
		t.Fatalf("a name with no candidates resolves to nothing: %+v", res)
	}
}

func TestConstructorResolution(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	alID, _ := s.Lookup("java.util.ArrayList")
	listID, _ := s.Lookup("java.util.List")
	str := cls(w.String)
	target := ClassType{Class: alID, Args: []Type{str}}

	res := ResolveConstructorCall(s, target, MethodCall{})
	if !res.OK() {
		t.Fatalf("new ArrayList<String>() should resolve")
	}
	if got := FormatType(s, res.Method.Return); got != "ArrayList<String>" {
		t.Fatalf("constructor yields %s", got)
	}
	if got := FormatResolved(s, res.Method); got != "ArrayList()" {
		t.Fatalf("constructor renders as %s", got)
	}

	res = ResolveConstructorCall(s, target, MethodCall{Args: []Type{Int}})
	if !res.OK() || len(res.Method.Params) != 1 || !Same(res.Method.Params[0], Int) {
		t.Fatalf("new ArrayList<String>(10) should pick the capacity constructor")
	}

	res = ResolveConstructorCall(s, target, MethodCall{Args: []Type{cls(listID, str)}})
	if !res.OK() {
		t.Fatalf("new ArrayList<String>(List<String>) should pick the copy constructor: %+v", res.Failures)
	}
	if got := FormatType(s, res.Method.Params[0]); got != "Collection<? extends String>" {
		t.Fatalf("copy constructor parameter substituted to %s", got)
	}
}

func TestConstructorAdoptsExpectedInstantiation(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	alID, _ := s.Lookup("java.util.ArrayList")
	raw := ClassType{Class: alID}
	res := ResolveConstructorCall(s, raw, MethodCall{
		Expected: cls(alID, cls(w.String)),
	})
	if !res.OK() {
		t.Fatalf("diamond-style constructor should resolve")
	}
	if got := FormatType(s, res.Method.Return); got != "ArrayList<String>" {
		t.Fatalf("expected instantiation not adopted: %s", got)
	}
}

func TestFluentVarargsFormatting(t *testing.T) {
	s := NewStore()
	psID, _ := s.Lookup("java.io.PrintStream")
	res := ResolveMethodCall(s, MethodCall{
		Receiver: cls(psID),
		Kind:     CallInstance,
		Name:     "printf",
		Args:     []Type{cls(s.WellKnown().String), Int},
	})
	if !res.OK() {
		t.Fatalf("printf(String, int) should resolve: %+v", res.Failures)
	}
	if !res.Method.UsedVarargs {
		t.Fatalf("printf should expand its varargs for an int argument")
	}
	got := FormatResolved(s, res.Method)
	if !strings.HasSuffix(got, "Object...)") {
		t.Fatalf("printf declared shape renders as %s", got)
	}
}

func TestFieldResolution(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	sysID, _ := s.Lookup("java.lang.System")
	f, ok := ResolveField(s, cls(sysID), "out", CallStatic)
	if !ok || !f.IsStatic {
		t.Fatalf("System.out should resolve as a static field")
	}
	if got := FormatType(s, f.Type); got != "PrintStream" {
		t.Fatalf("System.out : %s", got)
	}

	f, ok = ResolveField(s, cls(w.Integer), "MAX_VALUE", CallInstance)
	if !ok || !f.ViaInstance {
		t.Fatalf("a static field reached through an instance should be flagged")
	}

	if _, ok := ResolveField(s, cls(w.String), "nope", CallInstance); ok {
		t.Fatalf("missing field must not resolve")
	}
}
