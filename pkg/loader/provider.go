// Package loader materializes types that live outside the workspace: it
// pulls class stubs through a provider chain, parses their descriptors
// and generic signatures, and installs the resulting definitions in a
// type store, recursing through supertypes and signature references so
// member lookup and subtyping can walk a complete-enough graph.
package loader

import (
	"javasem/analyzer-go/pkg/classpath"
	"javasem/analyzer-go/pkg/jdk"
)

// Provider supplies class stubs by binary name. Lookup returns the full
// stub (skeleton plus members); Supertypes answers the direct supertype
// names without forcing a member parse. Implementations must tolerate
// concurrent readers.
type Provider interface {
	Lookup(name string) (*classpath.ClassStub, bool)
	Supertypes(name string) ([]string, bool)
}

type chain struct {
	providers []Provider
}

// Chain consults providers in order; the first one that knows a name
// wins.
func Chain(ps ...Provider) Provider {
	return &chain{providers: ps}
}

func (c *chain) Lookup(name string) (*classpath.ClassStub, bool) {
	for _, p := range c.providers {
		if s, ok := p.Lookup(name); ok {
			return s, true
		}
	}
	return nil, false
}

func (c *chain) Supertypes(name string) ([]string, bool) {
	for _, p := range c.providers {
		if s, ok := p.Supertypes(name); ok {
			return s, true
		}
	}
	return nil, false
}

type platformOnly struct {
	platform Provider
	rest     Provider
}

// PlatformOnly routes reserved-namespace names exclusively to the
// platform provider. A classpath or module-path stub can never define or
// rescue a java.* name, mirroring the rule that user class loaders cannot
// define types there.
func PlatformOnly(platform, rest Provider) Provider {
	return &platformOnly{platform: platform, rest: rest}
}

func (p *platformOnly) pick(name string) Provider {
	if jdk.IsReservedName(name) {
		return p.platform
	}
	return p.rest
}

func (p *platformOnly) Lookup(name string) (*classpath.ClassStub, bool) {
	return p.pick(name).Lookup(name)
}

func (p *platformOnly) Supertypes(name string) ([]string, bool) {
	return p.pick(name).Supertypes(name)
}

type workspaceShadow struct {
	defined func(name string) bool
	next    Provider
}

// ShadowWorkspace blocks names the workspace defines from being supplied
// by next. The block holds for every lookup through this provider, so an
// unrelated external type whose signature mentions a workspace name can
// never smuggle in a stale stub for it.
func ShadowWorkspace(defined func(name string) bool, next Provider) Provider {
	return &workspaceShadow{defined: defined, next: next}
}

func (w *workspaceShadow) Lookup(name string) (*classpath.ClassStub, bool) {
	if w.defined(name) {
		return nil, false
	}
	return w.next.Lookup(name)
}

func (w *workspaceShadow) Supertypes(name string) ([]string, bool) {
	if w.defined(name) {
		return nil, false
	}
	return w.next.Supertypes(name)
}

// StubMap is a trivial provider over a fixed set of stubs, for tests and
// for pre-indexed entries.
type StubMap map[string]*classpath.ClassStub

func (m StubMap) Lookup(name string) (*classpath.ClassStub, bool) {
	s, ok := m[name]
	return s, ok
}

func (m StubMap) Supertypes(name string) ([]string, bool) {
	s, ok := m[name]
	if !ok {
		return nil, false
	}
	return s.SupertypeNames(), true
}
