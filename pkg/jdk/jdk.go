// Package jdk is the platform-library side of type loading: it owns the
// reserved-namespace rule and serves stubs for platform types beyond the
// bootstrapped baseline. The baseline types come pre-defined in every
// store, so the index only needs to answer for the long tail.
package jdk

import (
	"sort"
	"strings"

	"javasem/analyzer-go/pkg/classpath"
	"javasem/analyzer-go/pkg/modules"
	"javasem/analyzer-go/pkg/types"
)

// reservedPrefixes are the namespaces only the platform may define types
// in. A stub of such a name on the classpath or module path is never
// consulted.
var reservedPrefixes = []string{"java.", "javax.", "jdk.", "sun."}

// IsReservedName reports whether a binary type name belongs to the
// platform's namespace.
func IsReservedName(name string) bool {
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsReservedPackage reports whether a package name belongs to the
// platform's namespace.
func IsReservedPackage(pkg string) bool {
	for _, p := range reservedPrefixes {
		if pkg == p[:len(p)-1] || strings.HasPrefix(pkg, p) {
			return true
		}
	}
	return false
}

// Index serves the platform library: the bootstrapped baseline names for
// existence queries plus an extended stub table for types the baseline
// does not define. All platform stubs are attributed to java.base.
type Index struct {
	stubs    *classpath.Index
	baseline map[string]struct{}
	packages map[string]struct{}
}

// NewIndex builds the platform index.
func NewIndex() *Index {
	x := &Index{
		stubs:    classpath.NewIndex(extendedStubs()...),
		baseline: make(map[string]struct{}),
		packages: make(map[string]struct{}),
	}
	x.stubs.AttributeModule("java.base")
	for _, name := range types.BaselineNames() {
		x.baseline[name] = struct{}{}
		pkg := modules.PackageOf(name)
		for pkg != "" {
			x.packages[pkg] = struct{}{}
			pkg = modules.PackageOf(pkg)
		}
	}
	return x
}

// Lookup returns the stub for a platform name outside the baseline.
// Baseline names miss here on purpose: their definitions are installed by
// the store bootstrap and must not be rebuilt from stubs.
func (x *Index) Lookup(name string) (*classpath.ClassStub, bool) {
	return x.stubs.Lookup(name)
}

// Supertypes returns the direct supertype names for an extended-table
// stub.
func (x *Index) Supertypes(name string) ([]string, bool) {
	return x.stubs.Supertypes(name)
}

// HasType reports whether the platform knows the binary name, baseline
// included.
func (x *Index) HasType(name string) bool {
	if _, ok := x.baseline[name]; ok {
		return true
	}
	return x.stubs.HasType(name)
}

// HasPackage reports whether the platform populates the package.
func (x *Index) HasPackage(pkg string) bool {
	if _, ok := x.packages[pkg]; ok {
		return true
	}
	return x.stubs.HasPackage(pkg)
}

// Names returns every platform name the index can answer for, sorted.
func (x *Index) Names() []string {
	seen := make(map[string]struct{})
	for name := range x.baseline {
		seen[name] = struct{}{}
	}
	for _, name := range x.stubs.Names() {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func classStub(name, super string, flags uint16) *classpath.ClassStub {
	return &classpath.ClassStub{Name: name, Super: super, AccessFlags: classpath.AccPublic | flags}
}

func exceptionStub(name, super string) *classpath.ClassStub {
	s := classStub(name, super, 0)
	s.Methods = []classpath.MethodStub{
		{Name: "<init>", Descriptor: "()V", AccessFlags: classpath.AccPublic},
		{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", AccessFlags: classpath.AccPublic},
		{Name: "getMessage", Descriptor: "()Ljava/lang/String;", AccessFlags: classpath.AccPublic},
	}
	return s
}

// extendedStubs is the platform tail: common JDK types the checker meets
// in ordinary code but the baseline leaves undefined. Members stay in
// descriptor/signature form and go through the same loader path as any
// classpath stub.
func extendedStubs() []*classpath.ClassStub {
	pub := uint16(classpath.AccPublic)
	pubStatic := uint16(classpath.AccPublic | classpath.AccStatic)

	set := classStub("java.util.Set", "", classpath.AccInterface|classpath.AccAbstract)
	set.Signature = "<E:Ljava/lang/Object;>Ljava/lang/Object;Ljava/util/Collection<TE;>;"
	set.Interfaces = []string{"java.util.Collection"}
	set.Methods = []classpath.MethodStub{
		{Name: "add", Descriptor: "(Ljava/lang/Object;)Z", Signature: "(TE;)Z", AccessFlags: pub | classpath.AccAbstract},
		{Name: "contains", Descriptor: "(Ljava/lang/Object;)Z", AccessFlags: pub | classpath.AccAbstract},
		{Name: "size", Descriptor: "()I", AccessFlags: pub | classpath.AccAbstract},
		{Name: "isEmpty", Descriptor: "()Z", AccessFlags: pub | classpath.AccAbstract},
		{Name: "iterator", Descriptor: "()Ljava/util/Iterator;", Signature: "()Ljava/util/Iterator<TE;>;", AccessFlags: pub | classpath.AccAbstract},
	}

	hashSet := classStub("java.util.HashSet", "java.lang.Object", 0)
	hashSet.Signature = "<E:Ljava/lang/Object;>Ljava/lang/Object;Ljava/util/Set<TE;>;"
	hashSet.Interfaces = []string{"java.util.Set"}
	hashSet.Methods = []classpath.MethodStub{
		{Name: "<init>", Descriptor: "()V", AccessFlags: pub},
		{Name: "<init>", Descriptor: "(Ljava/util/Collection;)V", Signature: "(Ljava/util/Collection<+TE;>;)V", AccessFlags: pub},
	}

	optional := classStub("java.util.Optional", "java.lang.Object", classpath.AccFinal)
	optional.Signature = "<T:Ljava/lang/Object;>Ljava/lang/Object;"
	optional.Methods = []classpath.MethodStub{
		{Name: "of", Descriptor: "(Ljava/lang/Object;)Ljava/util/Optional;",
			Signature: "<T:Ljava/lang/Object;>(TT;)Ljava/util/Optional<TT;>;", AccessFlags: pubStatic},
		{Name: "empty", Descriptor: "()Ljava/util/Optional;",
			Signature: "<T:Ljava/lang/Object;>()Ljava/util/Optional<TT;>;", AccessFlags: pubStatic},
		{Name: "get", Descriptor: "()Ljava/lang/Object;", Signature: "()TT;", AccessFlags: pub},
		{Name: "isPresent", Descriptor: "()Z", AccessFlags: pub},
		{Name: "orElse", Descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;", Signature: "(TT;)TT;", AccessFlags: pub},
	}

	objects := classStub("java.util.Objects", "java.lang.Object", classpath.AccFinal)
	objects.Methods = []classpath.MethodStub{
		{Name: "requireNonNull", Descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;",
			Signature: "<T:Ljava/lang/Object;>(TT;)TT;", AccessFlags: pubStatic},
		{Name: "equals", Descriptor: "(Ljava/lang/Object;Ljava/lang/Object;)Z", AccessFlags: pubStatic},
		{Name: "hash", Descriptor: "([Ljava/lang/Object;)I", AccessFlags: pubStatic | classpath.AccVarargs},
		{Name: "toString", Descriptor: "(Ljava/lang/Object;)Ljava/lang/String;", AccessFlags: pubStatic},
	}

	arrays := classStub("java.util.Arrays", "java.lang.Object", 0)
	arrays.Methods = []classpath.MethodStub{
		{Name: "asList", Descriptor: "([Ljava/lang/Object;)Ljava/util/List;",
			Signature: "<T:Ljava/lang/Object;>([TT;)Ljava/util/List<TT;>;", AccessFlags: pubStatic | classpath.AccVarargs},
		{Name: "sort", Descriptor: "([I)V", AccessFlags: pubStatic},
		{Name: "toString", Descriptor: "([I)Ljava/lang/String;", AccessFlags: pubStatic},
		{Name: "copyOf", Descriptor: "([Ljava/lang/Object;I)[Ljava/lang/Object;",
			Signature: "<T:Ljava/lang/Object;>([TT;I)[TT;", AccessFlags: pubStatic},
	}

	autoCloseable := classStub("java.lang.AutoCloseable", "", classpath.AccInterface|classpath.AccAbstract)
	autoCloseable.Methods = []classpath.MethodStub{
		{Name: "close", Descriptor: "()V", AccessFlags: pub | classpath.AccAbstract},
	}

	comparator := classStub("java.util.Comparator", "", classpath.AccInterface|classpath.AccAbstract)
	comparator.Signature = "<T:Ljava/lang/Object;>Ljava/lang/Object;"
	comparator.Methods = []classpath.MethodStub{
		{Name: "compare", Descriptor: "(Ljava/lang/Object;Ljava/lang/Object;)I",
			Signature: "(TT;TT;)I", AccessFlags: pub | classpath.AccAbstract},
	}

	return []*classpath.ClassStub{
		set, hashSet, optional, objects, arrays, autoCloseable, comparator,
		exceptionStub("java.io.IOException", "java.lang.Exception"),
		exceptionStub("java.io.UncheckedIOException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.NullPointerException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.IndexOutOfBoundsException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.ArithmeticException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.ClassCastException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.IllegalStateException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.UnsupportedOperationException", "java.lang.RuntimeException"),
		exceptionStub("java.lang.InterruptedException", "java.lang.Exception"),
	}
}
