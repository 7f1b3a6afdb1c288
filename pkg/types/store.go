package types

import (
	"fmt"
	"strings"
)

// ClassDef is the checked shape of a class or interface. Definitions are
// immutable once installed in a Store.
type ClassDef struct {
	Name         string
	IsInterface  bool
	TypeParams   []TypeVarID
	Supertypes   []Type
	Fields       []FieldDef
	Methods      []MethodDef
	Constructors []MethodDef
	// Module is the JPMS module the definition came from, "" when the type
	// is unattributed (classpath code on the unnamed module).
	Module string
}

// FieldDef describes one field of a class.
type FieldDef struct {
	Name     string
	Type     Type
	IsStatic bool
	Private  bool
}

// MethodDef describes one method or constructor of a class.
type MethodDef struct {
	Name       string
	TypeParams []TypeVarID
	Params     []Type
	Return     Type
	IsStatic   bool
	IsVarargs  bool
	IsAbstract bool
	Private    bool
}

// TypeVarDef declares a type variable. Empty Bounds means the implicit
// Object bound.
type TypeVarDef struct {
	Name   string
	Bounds []Type
}

// WellKnown collects the ClassIDs the algorithms need by identity.
type WellKnown struct {
	Object, String, Throwable, Exception, RuntimeException ClassID
	Cloneable, Serializable, Class, Iterable, Iterator     ClassID
	Number                                                 ClassID
	Boolean, Byte, Short, Character, Integer, Long         ClassID
	Float, Double                                          ClassID
}

// Env is the view the algorithms need of a type universe: class and variable
// definitions plus the well-known handles. *Store implements it; Context
// layers capture variables on top of another Env.
type Env interface {
	Class(ClassID) *ClassDef
	ClassName(ClassID) string
	Var(TypeVarID) *TypeVarDef
	WellKnown() *WellKnown
}

type classEntry struct {
	name string
	def  *ClassDef // nil while the id is only a placeholder
	dead bool      // tombstone after removal; the id is never reused
}

// Store is the arena of classes and type variables shared by one analysis.
// Interning a name yields a placeholder id; Define installs the real
// definition at most once. Ids are allocated sequentially, so interning in a
// fixed order gives identical ids across stores.
type Store struct {
	classes []classEntry
	vars    []TypeVarDef
	names   map[string]ClassID
	well    WellKnown
}

// NewStore returns a store bootstrapped with the built-in platform baseline.
func NewStore() *Store {
	s := &Store{names: make(map[string]ClassID)}
	s.bootstrap()
	return s
}

// NewBareStore returns an empty store with no baseline. Intended for tests
// that want full control of the arena.
func NewBareStore() *Store {
	return &Store{names: make(map[string]ClassID)}
}

// Intern returns the id for a binary name, allocating a placeholder entry on
// first sight. Interning an already-known name returns the same id.
func (s *Store) Intern(name string) ClassID {
	if id, ok := s.names[name]; ok {
		return id
	}
	id := ClassID(len(s.classes))
	s.classes = append(s.classes, classEntry{name: name})
	s.names[name] = id
	return id
}

// Lookup finds the id for a binary name without allocating. A bare simple
// name additionally tries the java.lang package, matching source-level
// visibility of the platform core.
func (s *Store) Lookup(name string) (ClassID, bool) {
	if id, ok := s.names[name]; ok {
		return id, true
	}
	if !strings.ContainsAny(name, ".$") {
		if id, ok := s.names["java.lang."+name]; ok {
			return id, true
		}
	}
	return 0, false
}

// Define installs a definition for id. The first definition wins; installing
// over an already-defined id is a no-op so lazy loads can never clobber
// earlier definitions. Returns whether the definition was installed.
func (s *Store) Define(id ClassID, def ClassDef) bool {
	e := &s.classes[id]
	if e.def != nil || e.dead {
		return false
	}
	if def.Name == "" {
		def.Name = e.name
	}
	d := def
	e.def = &d
	return true
}

// Prune demotes a defined id back to a placeholder. The visibility gate uses
// this when a loaded definition turns out not to be readable.
func (s *Store) Prune(id ClassID) {
	e := &s.classes[id]
	if e.dead {
		return
	}
	e.def = nil
}

// Remove tombstones an id. The slot is never reused; the name can be
// re-interned later under a fresh id.
func (s *Store) Remove(id ClassID) {
	e := &s.classes[id]
	e.dead = true
	e.def = nil
	if cur, ok := s.names[e.name]; ok && cur == id {
		delete(s.names, e.name)
	}
}

// Class returns the definition for id, or nil for placeholders and
// tombstones.
func (s *Store) Class(id ClassID) *ClassDef {
	if int(id) >= len(s.classes) {
		return nil
	}
	return s.classes[id].def
}

// ClassName returns the binary name id was interned under, even when the id
// is still a placeholder.
func (s *Store) ClassName(id ClassID) string {
	if int(id) >= len(s.classes) {
		return fmt.Sprintf("class#%d", id)
	}
	return s.classes[id].name
}

func (s *Store) IsDefined(id ClassID) bool {
	return int(id) < len(s.classes) && s.classes[id].def != nil
}

func (s *Store) IsTombstone(id ClassID) bool {
	return int(id) < len(s.classes) && s.classes[id].dead
}

// NewTypeVar allocates a type variable. Bounds may be filled in later with
// SetVarBounds so self-referential bounds can mention the fresh id.
func (s *Store) NewTypeVar(def TypeVarDef) TypeVarID {
	id := TypeVarID(len(s.vars))
	s.vars = append(s.vars, def)
	return id
}

// SetVarBounds replaces the bounds of an arena variable.
func (s *Store) SetVarBounds(id TypeVarID, bounds []Type) {
	if id&contextVarBit != 0 || int(id) >= len(s.vars) {
		return
	}
	s.vars[id].Bounds = bounds
}

// Var returns the definition of an arena variable, or nil for unknown or
// context-local ids.
func (s *Store) Var(id TypeVarID) *TypeVarDef {
	if id&contextVarBit != 0 || int(id) >= len(s.vars) {
		return nil
	}
	return &s.vars[id]
}

func (s *Store) WellKnown() *WellKnown { return &s.well }

// SetWellKnown overrides the well-known table. Engine code uses this after
// constructing a base store whose ids differ from the built-in baseline.
func (s *Store) SetWellKnown(w WellKnown) { s.well = w }

// ClassCount reports how many class slots exist, tombstones included.
func (s *Store) ClassCount() int { return len(s.classes) }

// VarCount reports how many arena type variables exist.
func (s *Store) VarCount() int { return len(s.vars) }

// Names returns every interned binary name in id order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.classes))
	for _, e := range s.classes {
		out = append(out, e.name)
	}
	return out
}

// Clone copies the store. Definitions are immutable and shared; the index
// structures are copied so the clone can intern and define independently.
func (s *Store) Clone() *Store {
	c := &Store{
		classes: make([]classEntry, len(s.classes)),
		vars:    make([]TypeVarDef, len(s.vars)),
		names:   make(map[string]ClassID, len(s.names)),
		well:    s.well,
	}
	copy(c.classes, s.classes)
	copy(c.vars, s.vars)
	for k, v := range s.names {
		c.names[k] = v
	}
	return c
}

// EstimatedBytes approximates the heap footprint of the store: entry
// headers, names, and the recursive size of every installed definition.
func (s *Store) EstimatedBytes() int64 {
	var n int64
	for _, e := range s.classes {
		n += 48 + int64(len(e.name))
		if e.def != nil {
			n += defBytes(e.def)
		}
	}
	for _, v := range s.vars {
		n += 32 + int64(len(v.Name))
		for _, b := range v.Bounds {
			n += typeBytes(b)
		}
	}
	n += int64(len(s.names)) * 56
	return n
}

func defBytes(d *ClassDef) int64 {
	n := int64(120 + len(d.Name) + len(d.Module))
	n += int64(len(d.TypeParams)) * 4
	for _, t := range d.Supertypes {
		n += typeBytes(t)
	}
	for _, f := range d.Fields {
		n += 40 + int64(len(f.Name)) + typeBytes(f.Type)
	}
	for _, ms := range [][]MethodDef{d.Methods, d.Constructors} {
		for _, m := range ms {
			n += 88 + int64(len(m.Name)) + int64(len(m.TypeParams))*4
			for _, p := range m.Params {
				n += typeBytes(p)
			}
			n += typeBytes(m.Return)
		}
	}
	return n
}

func typeBytes(t Type) int64 {
	switch v := t.(type) {
	case ClassType:
		n := int64(24)
		for _, a := range v.Args {
			n += typeBytes(a)
		}
		return n
	case ArrayType:
		return 16 + typeBytes(v.Element)
	case WildcardType:
		if v.Bound != nil {
			return 16 + typeBytes(v.Bound)
		}
		return 16
	case IntersectionType:
		n := int64(24)
		for _, p := range v.Parts {
			n += typeBytes(p)
		}
		return n
	case VirtualInnerType:
		return 24 + int64(len(v.Inner)) + typeBytes(v.Owner)
	case NamedType:
		return 16 + int64(len(v.Qualified))
	default:
		return 16
	}
}
