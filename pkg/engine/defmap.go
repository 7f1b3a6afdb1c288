// Package engine ties the analyzer together: it builds immutable project
// snapshots, computes the shared base type store and source-type metadata,
// runs the body checker over lowered bodies, answers demand-driven
// single-expression queries, and memoizes every entry point per snapshot.
package engine

import (
	"path"
	"sort"
	"strings"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/modules"
)

// TypeItem is one workspace type declaration with its derived identity.
type TypeItem struct {
	File   *hir.File
	Decl   *hir.TypeDecl
	Binary string
	Module string // owning JPMS module, "" for the unnamed module
}

// DefMap indexes the workspace's own declarations: binary name to item,
// package existence, and file-to-module attribution. It is computed once
// per snapshot and shared read-only.
type DefMap struct {
	items    map[string]*TypeItem
	order    []string // sorted binary names
	packages map[string]struct{}
	fileMods map[string]string // file path -> module name
}

// BuildDefMap walks every file's item tree. A module-info file claims all
// files under its own directory for its module; everything else stays on
// the unnamed module.
func BuildDefMap(files []*hir.File) *DefMap {
	m := &DefMap{
		items:    make(map[string]*TypeItem),
		packages: make(map[string]struct{}),
		fileMods: make(map[string]string),
	}
	type modRoot struct {
		dir  string
		name string
	}
	var roots []modRoot
	for _, f := range files {
		if f.Module != nil {
			roots = append(roots, modRoot{dir: path.Dir(f.Path), name: f.Module.Name})
		}
	}
	// Deeper roots first so nested module directories win.
	sort.Slice(roots, func(i, j int) bool { return len(roots[i].dir) > len(roots[j].dir) })
	moduleOf := func(p string) string {
		for _, r := range roots {
			if r.dir == "." || r.dir == "" {
				return r.name
			}
			if p == r.dir || strings.HasPrefix(p, r.dir+"/") {
				return r.name
			}
		}
		return ""
	}
	for _, f := range files {
		mod := moduleOf(f.Path)
		m.fileMods[f.Path] = mod
		for _, t := range f.Types {
			m.addType(f, t, f.Package, mod)
		}
	}
	m.order = make([]string, 0, len(m.items))
	for name := range m.items {
		m.order = append(m.order, name)
	}
	sort.Strings(m.order)
	return m
}

func (m *DefMap) addType(f *hir.File, decl *hir.TypeDecl, prefix, mod string) {
	binary := decl.Name
	if prefix != "" {
		sep := "."
		if _, nested := m.items[prefix]; nested {
			sep = "$"
		}
		binary = prefix + sep + decl.Name
	}
	// First declaration of a binary name wins, matching store interning.
	if _, dup := m.items[binary]; !dup {
		m.items[binary] = &TypeItem{File: f, Decl: decl, Binary: binary, Module: mod}
		pkg := modules.PackageOf(binary)
		for pkg != "" {
			m.packages[pkg] = struct{}{}
			pkg = modules.PackageOf(pkg)
		}
	}
	for _, nested := range decl.Nested {
		m.addType(f, nested, binary, mod)
	}
}

// Lookup returns the item declaring a binary name.
func (m *DefMap) Lookup(binary string) (*TypeItem, bool) {
	it, ok := m.items[binary]
	return it, ok
}

// HasType reports whether the workspace declares the binary name.
func (m *DefMap) HasType(binary string) bool {
	_, ok := m.items[binary]
	return ok
}

// HasPackage reports whether any workspace type lives in or below pkg.
func (m *DefMap) HasPackage(pkg string) bool {
	_, ok := m.packages[pkg]
	return ok
}

// Names returns every declared binary name in sorted order.
func (m *DefMap) Names() []string { return m.order }

// ModuleOf returns the module owning a file path, "" for the unnamed
// module.
func (m *DefMap) ModuleOf(filePath string) string { return m.fileMods[filePath] }

// GraphFromFiles builds the workspace half of the module graph from the
// module-info declarations of files. Callers merge automatic module-path
// modules on top.
func GraphFromFiles(files []*hir.File) *modules.Graph {
	g := modules.NewGraph()
	for _, f := range files {
		if f.Module != nil {
			g.Add(descriptorModule(f.Module))
		}
	}
	return g
}

func descriptorModule(d *hir.ModuleDecl) *modules.Module {
	mod := &modules.Module{Name: d.Name, Open: d.Open}
	for _, r := range d.Requires {
		mod.Requires = append(mod.Requires, modules.Requires{
			Module:     r.Module,
			Transitive: r.Transitive,
			Static:     r.Static,
		})
	}
	for _, e := range d.Exports {
		mod.Exports = append(mod.Exports, modules.Exports{Package: e.Package, To: e.To})
	}
	return mod
}
