package types

import (
	"testing"
)

// defineAnimals installs a small class hierarchy used across the package
// tests: Animal <- Dog, plus a Pet interface Dog implements.
func defineAnimals(s *Store) (animal, dog, pet ClassID) {
	w := s.WellKnown()
	animal = s.Intern("zoo.Animal")
	dog = s.Intern("zoo.Dog")
	pet = s.Intern("zoo.Pet")
	s.Define(pet, ClassDef{IsInterface: true})
	s.Define(animal, ClassDef{
		Supertypes: []Type{cls(w.Object)},
		Methods: []MethodDef{
			method("speak", cls(w.String)),
		},
		Constructors: []MethodDef{ctor()},
	})
	s.Define(dog, ClassDef{
		Supertypes: []Type{cls(animal), cls(pet)},
		Methods: []MethodDef{
			method("fetch", Void),
		},
		Constructors: []MethodDef{ctor()},
	})
	return animal, dog, pet
}

func TestInternIsIdempotent(t *testing.T) {
	s := NewStore()
	a := s.Intern("com.example.Foo")
	b := s.Intern("com.example.Foo")
	if a != b {
		t.Fatalf("interning the same name twice gave %d and %d", a, b)
	}
	if s.IsDefined(a) {
		t.Fatalf("freshly interned id should be a placeholder")
	}
	if got := s.ClassName(a); got != "com.example.Foo" {
		t.Fatalf("expected name round-trip, got %q", got)
	}
}

func TestInternOrderDeterminesIds(t *testing.T) {
	names := []string{"p.A", "p.B", "q.C"}
	s1 := NewStore()
	s2 := NewStore()
	for _, n := range names {
		if got, want := s1.Intern(n), s2.Intern(n); got != want {
			t.Fatalf("stores disagree on id for %s: %d vs %d", n, got, want)
		}
	}
}

func TestDefineFirstWins(t *testing.T) {
	s := NewStore()
	id := s.Intern("p.A")
	if !s.Define(id, ClassDef{Methods: []MethodDef{method("first", Int)}}) {
		t.Fatalf("first define should install")
	}
	if s.Define(id, ClassDef{Methods: []MethodDef{method("second", Int)}}) {
		t.Fatalf("second define should be a no-op")
	}
	def := s.Class(id)
	if def == nil || len(def.Methods) != 1 || def.Methods[0].Name != "first" {
		t.Fatalf("definition was clobbered: %+v", def)
	}
}

func TestPruneReturnsToPlaceholder(t *testing.T) {
	s := NewStore()
	id := s.Intern("p.A")
	s.Define(id, ClassDef{})
	if !s.IsDefined(id) {
		t.Fatalf("expected defined")
	}
	s.Prune(id)
	if s.IsDefined(id) {
		t.Fatalf("prune should demote to placeholder")
	}
	if got := s.Intern("p.A"); got != id {
		t.Fatalf("pruned name should keep its id, got %d want %d", got, id)
	}
}

func TestRemoveLeavesTombstone(t *testing.T) {
	s := NewStore()
	id := s.Intern("p.Gone")
	other := s.Intern("p.Stays")
	s.Remove(id)
	if !s.IsTombstone(id) {
		t.Fatalf("expected tombstone")
	}
	if got := s.ClassName(other); got != "p.Stays" {
		t.Fatalf("unrelated id disturbed: %q", got)
	}
	fresh := s.Intern("p.Gone")
	if fresh == id {
		t.Fatalf("re-interning a removed name must mint a new id")
	}
}

func TestLookupFallsBackToJavaLang(t *testing.T) {
	s := NewStore()
	id, ok := s.Lookup("String")
	if !ok {
		t.Fatalf("simple name String should resolve via java.lang")
	}
	if id != s.WellKnown().String {
		t.Fatalf("fallback found the wrong class: %d", id)
	}
	if _, ok := s.Lookup("NoSuchClassAnywhere"); ok {
		t.Fatalf("unknown simple name must not resolve")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	base := NewStore()
	defineAnimals(base)
	n := base.ClassCount()
	clone := base.Clone()
	extra := clone.Intern("p.OnlyInClone")
	clone.Define(extra, ClassDef{})
	if base.ClassCount() != n {
		t.Fatalf("clone interning leaked into the base store")
	}
	if _, ok := base.Lookup("p.OnlyInClone"); ok {
		t.Fatalf("base store sees the clone's name")
	}
	if clone.WellKnown().Object != base.WellKnown().Object {
		t.Fatalf("well-known ids must survive cloning")
	}
	if got, want := clone.ClassName(0), base.ClassName(0); got != want {
		t.Fatalf("clone renamed id 0: %q vs %q", got, want)
	}
}

func TestEstimatedBytesGrowsWithContent(t *testing.T) {
	s := NewStore()
	before := s.EstimatedBytes()
	if before <= 0 {
		t.Fatalf("baseline store should report a positive footprint")
	}
	defineAnimals(s)
	if after := s.EstimatedBytes(); after <= before {
		t.Fatalf("footprint did not grow: %d -> %d", before, after)
	}
}

func TestWellKnownBaselinePresent(t *testing.T) {
	s := NewStore()
	w := s.WellKnown()
	for name, id := range map[string]ClassID{
		"java.lang.Object":    w.Object,
		"java.lang.String":    w.String,
		"java.lang.Throwable": w.Throwable,
		"java.lang.Integer":   w.Integer,
		"java.util.Iterator":  w.Iterator,
	} {
		if s.Class(id) == nil {
			t.Fatalf("%s should be defined in the baseline", name)
		}
		if s.ClassName(id) != name {
			t.Fatalf("well-known id for %s names %q", name, s.ClassName(id))
		}
	}
}
