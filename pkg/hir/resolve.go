package hir

import (
	"sort"
	"strings"
)

// TypeIndex answers global type and package queries during resolution.
// The engine backs it with workspace definitions layered over the
// classpath and platform indexes.
type TypeIndex interface {
	// HasType reports whether a type with the given binary name exists.
	HasType(binary string) bool
	// HasPackage reports whether any type lives directly in the package.
	HasPackage(pkg string) bool
}

// TypeResolution is the outcome of resolving a type name. Exactly one of
// the fields is populated on success; both empty means unresolved.
type TypeResolution struct {
	Binary    string
	Ambiguous []string // sorted candidates when on-demand imports collide
}

// Resolver resolves type names and static-import members as seen from one
// file. It implements the file-level rules only: names declared by an
// enclosing type or a type parameter shadow imports, and callers are
// expected to try those first.
type Resolver struct {
	file     *File
	index    TypeIndex
	singles  map[string]string
	onDemand []string
	// static imports, keyed by member name for the single form.
	staticSingle   map[string][]string
	staticOnDemand []string
}

// NewResolver prepares a resolver for file against index.
func NewResolver(file *File, index TypeIndex) *Resolver {
	r := &Resolver{
		file:         file,
		index:        index,
		singles:      make(map[string]string),
		staticSingle: make(map[string][]string),
	}
	for _, imp := range file.Imports {
		switch {
		case imp.Static && imp.OnDemand:
			r.staticOnDemand = append(r.staticOnDemand, imp.Path)
		case imp.Static:
			dot := strings.LastIndexByte(imp.Path, '.')
			if dot <= 0 {
				continue
			}
			name := imp.Path[dot+1:]
			r.staticSingle[name] = append(r.staticSingle[name], imp.Path[:dot])
		case imp.OnDemand:
			r.onDemand = append(r.onDemand, imp.Path)
		default:
			dot := strings.LastIndexByte(imp.Path, '.')
			name := imp.Path[dot+1:]
			// The first single import of a name wins; javac rejects the
			// duplicate outright, we just stay deterministic.
			if _, ok := r.singles[name]; !ok {
				r.singles[name] = imp.Path
			}
		}
	}
	return r
}

// File returns the file the resolver was built for.
func (r *Resolver) File() *File { return r.file }

// PackageExists reports whether the index knows the package.
func (r *Resolver) PackageExists(pkg string) bool { return r.index.HasPackage(pkg) }

// HasType reports whether the index knows the binary name.
func (r *Resolver) HasType(binary string) bool { return r.index.HasType(binary) }

// ResolveType resolves a simple type name using the file's imports:
// single-type imports first, then the file's own package, then on-demand
// imports, then java.lang. A single-type import resolves even when the
// index has no such type, so the later load failure lands on the right
// name.
func (r *Resolver) ResolveType(name string) TypeResolution {
	if fqn, ok := r.singles[name]; ok {
		return TypeResolution{Binary: r.dotsToBinary(fqn)}
	}
	own := name
	if r.file.Package != "" {
		own = r.file.Package + "." + name
	}
	if r.index.HasType(own) {
		return TypeResolution{Binary: own}
	}
	var found []string
	for _, pkg := range r.onDemand {
		if cand := pkg + "." + name; r.index.HasType(cand) {
			found = append(found, cand)
		}
	}
	switch len(found) {
	case 0:
	case 1:
		return TypeResolution{Binary: found[0]}
	default:
		sort.Strings(found)
		return TypeResolution{Ambiguous: dedupeSorted(found)}
	}
	if lang := "java.lang." + name; r.index.HasType(lang) {
		return TypeResolution{Binary: lang}
	}
	return TypeResolution{}
}

// ResolveDotted resolves a dotted name whose first segment may be an
// imported simple name or the start of a package, descending into nested
// types with `$`.
func (r *Resolver) ResolveDotted(parts []string) TypeResolution {
	if len(parts) == 0 {
		return TypeResolution{}
	}
	if res := r.ResolveType(parts[0]); len(res.Ambiguous) > 0 {
		return res
	} else if res.Binary != "" {
		if nested := r.descend(res.Binary, parts[1:]); nested != "" {
			return TypeResolution{Binary: nested}
		}
		if len(parts) == 1 {
			return res
		}
	}
	// Longest-first would prefer packages over types; JLS prefers the
	// type, so probe the shortest package prefix first.
	for j := 1; j < len(parts); j++ {
		head := strings.Join(parts[:j+1], ".")
		if !r.index.HasType(head) {
			continue
		}
		if nested := r.descend(head, parts[j+1:]); nested != "" {
			return TypeResolution{Binary: nested}
		}
	}
	return TypeResolution{}
}

func (r *Resolver) descend(binary string, rest []string) string {
	for _, p := range rest {
		binary += "$" + p
	}
	if !r.index.HasType(binary) {
		return ""
	}
	return binary
}

// StaticCandidates returns the classes whose static member name may refer
// to under the file's static imports, single imports before on-demand
// ones, in declaration order.
func (r *Resolver) StaticCandidates(name string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, owner := range r.staticSingle[name] {
		if bin := r.dotsToBinary(owner); !seen[bin] {
			seen[bin] = true
			out = append(out, bin)
		}
	}
	for _, owner := range r.staticOnDemand {
		if bin := r.dotsToBinary(owner); !seen[bin] {
			seen[bin] = true
			out = append(out, bin)
		}
	}
	return out
}

// dotsToBinary maps a canonical dotted name to a binary name, turning the
// dots that separate nested types into `$`. An import of a name the index
// does not know passes through unchanged.
func (r *Resolver) dotsToBinary(dotted string) string {
	if r.index.HasType(dotted) {
		return dotted
	}
	parts := strings.Split(dotted, ".")
	for j := 1; j < len(parts); j++ {
		cand := strings.Join(parts[:j], ".") + "." + strings.Join(parts[j:], "$")
		if r.index.HasType(cand) {
			return cand
		}
	}
	return dotted
}

func dedupeSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}
