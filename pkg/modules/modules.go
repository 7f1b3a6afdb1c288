// Package modules models the Java Platform Module System surface the
// analyzer needs: module descriptors, a module graph, and the readability
// and export queries the visibility gate asks before an external or
// cross-module type may be observed.
package modules

import (
	"regexp"
	"sort"
	"strings"
)

// Requires is one requires directive of a module descriptor.
type Requires struct {
	Module     string
	Transitive bool
	Static     bool
}

// Exports is one exports directive. An empty To list exports the package
// to every module.
type Exports struct {
	Package string
	To      []string
}

// Module is one named module. Automatic modules are synthesized from
// module-path entries that carry no descriptor; they read every other
// module and export every package.
type Module struct {
	Name      string
	Open      bool
	Automatic bool
	Requires  []Requires
	Exports   []Exports
}

// ExportsPackage reports whether the descriptor exports pkg to the module
// named to. Open and automatic modules export everything.
func (m *Module) ExportsPackage(pkg, to string) bool {
	if m.Open || m.Automatic {
		return true
	}
	for _, e := range m.Exports {
		if e.Package != pkg {
			continue
		}
		if len(e.To) == 0 {
			return true
		}
		for _, t := range e.To {
			if t == to {
				return true
			}
		}
	}
	return false
}

// Graph is the set of modules a snapshot can see. The zero name stands
// for the unnamed module: code on the plain classpath, readable by and
// reading everything.
type Graph struct {
	mods map[string]*Module
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{mods: make(map[string]*Module)}
}

// Add installs a module descriptor, replacing any previous one of the
// same name.
func (g *Graph) Add(m *Module) {
	g.mods[m.Name] = m
}

// AddAutomatic installs an automatic module for name and returns it.
func (g *Graph) AddAutomatic(name string) *Module {
	m := &Module{Name: name, Automatic: true}
	g.Add(m)
	return m
}

// Lookup returns the descriptor for name.
func (g *Graph) Lookup(name string) (*Module, bool) {
	m, ok := g.mods[name]
	return m, ok
}

// Names returns the module names in sorted order.
func (g *Graph) Names() []string {
	out := make([]string, 0, len(g.mods))
	for name := range g.mods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CanRead reports whether code in module from reads module to. Readability
// is requires plus the closure of requires-transitive edges; java.base is
// implicitly read by everyone. The unnamed module reads everything, and
// everything reads the unnamed module, so unattributed classpath types are
// never gated.
func (g *Graph) CanRead(from, to string) bool {
	if from == to || from == "" || to == "" || to == "java.base" {
		return true
	}
	src, ok := g.mods[from]
	if !ok {
		return false
	}
	if src.Automatic {
		return true
	}
	seen := map[string]bool{from: true}
	queue := []Requires{}
	queue = append(queue, src.Requires...)
	for len(queue) > 0 {
		req := queue[0]
		queue = queue[1:]
		if req.Module == to {
			return true
		}
		if seen[req.Module] {
			continue
		}
		seen[req.Module] = true
		next, ok := g.mods[req.Module]
		if !ok {
			continue
		}
		for _, r := range next.Requires {
			if r.Transitive {
				queue = append(queue, r)
			}
		}
	}
	return false
}

// ExportsTo reports whether module owner exports pkg to module to.
// Same-module access and unnamed owners always pass; an owner the graph
// does not know exports nothing.
func (g *Graph) ExportsTo(owner, pkg, to string) bool {
	if owner == to || owner == "" {
		return true
	}
	m, ok := g.mods[owner]
	if !ok {
		return false
	}
	return m.ExportsPackage(pkg, to)
}

// Visible combines both halves of the gate: from must read owner and
// owner must export pkg to from.
func (g *Graph) Visible(from, owner, pkg string) bool {
	return g.CanRead(from, owner) && g.ExportsTo(owner, pkg, from)
}

var versionSuffix = regexp.MustCompile(`-(\d+(\.|$))`)

// AutomaticName derives an automatic module name from a module-path entry
// file name: the extension goes, a trailing version goes, and every run of
// non-alphanumeric characters becomes a single dot.
func AutomaticName(filename string) string {
	name := filename
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	for _, ext := range []string{".jar", ".zip"} {
		if strings.HasSuffix(name, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	if loc := versionSuffix.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	var b strings.Builder
	lastDot := true
	for _, r := range name {
		alnum := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if alnum {
			b.WriteRune(r)
			lastDot = false
		} else if !lastDot {
			b.WriteByte('.')
			lastDot = true
		}
	}
	return strings.TrimSuffix(b.String(), ".")
}

// PackageOf returns the package part of a binary type name, "" for an
// unpackaged name.
func PackageOf(binary string) string {
	if i := strings.LastIndexByte(binary, '.'); i >= 0 {
		return binary[:i]
	}
	return ""
}
