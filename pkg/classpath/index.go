package classpath

import (
	"sort"
	"strings"

	"javasem/analyzer-go/pkg/modules"
)

// Index is an in-memory catalog of class stubs keyed by binary name.
// Later additions win over earlier ones of the same name, matching
// classpath ordering where the first entry on the path shadows the rest
// (callers add entries in reverse priority or check HasType first).
type Index struct {
	stubs    map[string]*ClassStub
	packages map[string]struct{}
}

// NewIndex returns an index over the given stubs.
func NewIndex(stubs ...*ClassStub) *Index {
	x := &Index{
		stubs:    make(map[string]*ClassStub),
		packages: make(map[string]struct{}),
	}
	for _, s := range stubs {
		x.Add(s)
	}
	return x
}

// Add installs one stub.
func (x *Index) Add(s *ClassStub) {
	x.stubs[s.Name] = s
	pkg := modules.PackageOf(s.Name)
	for pkg != "" {
		x.packages[pkg] = struct{}{}
		pkg = modules.PackageOf(pkg)
	}
}

// AddAll installs every stub of another index.
func (x *Index) AddAll(other *Index) {
	for _, s := range other.stubs {
		x.Add(s)
	}
}

// Lookup returns the stub for a binary name.
func (x *Index) Lookup(name string) (*ClassStub, bool) {
	s, ok := x.stubs[name]
	return s, ok
}

// Supertypes returns the direct supertype names for a binary name the
// index knows.
func (x *Index) Supertypes(name string) ([]string, bool) {
	s, ok := x.stubs[name]
	if !ok {
		return nil, false
	}
	return s.SupertypeNames(), true
}

// HasType reports whether the index knows the binary name.
func (x *Index) HasType(name string) bool {
	_, ok := x.stubs[name]
	return ok
}

// HasPackage reports whether any indexed type lives in or below pkg.
func (x *Index) HasPackage(pkg string) bool {
	_, ok := x.packages[pkg]
	return ok
}

// HasStaticMember reports whether the named type declares a usable static
// member of the given name.
func (x *Index) HasStaticMember(typeName, member string) bool {
	s, ok := x.stubs[typeName]
	return ok && s.HasStaticMember(member)
}

// Names returns every indexed binary name in sorted order.
func (x *Index) Names() []string {
	out := make([]string, 0, len(x.stubs))
	for name := range x.stubs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed types.
func (x *Index) Len() int { return len(x.stubs) }

// AttributeModule stamps every stub that has no module yet with name.
// Module-path entries call this with the entry's (automatic) module name
// before merging into the snapshot index.
func (x *Index) AttributeModule(name string) {
	for _, s := range x.stubs {
		if s.Module == "" {
			s.Module = name
		}
	}
}

// ModuleEntry builds an index for one module-path entry: the stubs are
// attributed to the entry's module, derived automatically from the file
// name when the entry declares no module-info.
func ModuleEntry(path string, declared string, stubs ...*ClassStub) *Index {
	name := declared
	if name == "" {
		name = modules.AutomaticName(path)
	}
	x := NewIndex(stubs...)
	x.AttributeModule(name)
	return x
}

// SplitMember splits a `Type.member` static reference into its parts.
// Returns ok=false when there is no dot to split on.
func SplitMember(qualified string) (typeName, member string, ok bool) {
	i := strings.LastIndexByte(qualified, '.')
	if i < 0 {
		return "", "", false
	}
	return qualified[:i], qualified[i+1:], true
}
