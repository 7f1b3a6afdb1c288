package modules

import "testing"

func graphOf(ms ...*Module) *Graph {
	g := NewGraph()
	for _, m := range ms {
		g.Add(m)
	}
	return g
}

func TestCanReadDirectRequires(t *testing.T) {
	g := graphOf(
		&Module{Name: "app", Requires: []Requires{{Module: "lib"}}},
		&Module{Name: "lib"},
		&Module{Name: "other"},
	)
	if !g.CanRead("app", "lib") {
		t.Fatalf("app should read lib")
	}
	if g.CanRead("app", "other") {
		t.Fatalf("app should not read other")
	}
	if g.CanRead("lib", "app") {
		t.Fatalf("requires is not symmetric")
	}
}

func TestCanReadTransitiveClosure(t *testing.T) {
	g := graphOf(
		&Module{Name: "app", Requires: []Requires{{Module: "api"}}},
		&Module{Name: "api", Requires: []Requires{{Module: "core", Transitive: true}}},
		&Module{Name: "core", Requires: []Requires{{Module: "deep", Transitive: true}}},
		&Module{Name: "deep"},
	)
	if !g.CanRead("app", "core") {
		t.Fatalf("requires transitive should extend readability")
	}
	if !g.CanRead("app", "deep") {
		t.Fatalf("transitive edges chain")
	}
}

func TestCanReadNonTransitiveDoesNotChain(t *testing.T) {
	g := graphOf(
		&Module{Name: "app", Requires: []Requires{{Module: "api"}}},
		&Module{Name: "api", Requires: []Requires{{Module: "core"}}},
		&Module{Name: "core"},
	)
	if g.CanRead("app", "core") {
		t.Fatalf("plain requires should not leak through api")
	}
}

func TestCanReadImplicitEdges(t *testing.T) {
	g := graphOf(&Module{Name: "app"})
	if !g.CanRead("app", "app") {
		t.Fatalf("same module always reads itself")
	}
	if !g.CanRead("app", "java.base") {
		t.Fatalf("every module reads java.base")
	}
	if !g.CanRead("", "app") {
		t.Fatalf("unnamed module reads everything")
	}
	if !g.CanRead("app", "") {
		t.Fatalf("unattributed classpath types are not gated")
	}
}

func TestAutomaticModuleReadsAll(t *testing.T) {
	g := graphOf(&Module{Name: "guava", Automatic: true}, &Module{Name: "app"})
	if !g.CanRead("guava", "app") {
		t.Fatalf("automatic modules read every module")
	}
}

func TestExportsToEveryone(t *testing.T) {
	g := graphOf(&Module{
		Name:    "lib",
		Exports: []Exports{{Package: "lib.api"}},
	})
	if !g.ExportsTo("lib", "lib.api", "app") {
		t.Fatalf("unqualified exports reach every module")
	}
	if g.ExportsTo("lib", "lib.internal", "app") {
		t.Fatalf("unexported packages stay hidden")
	}
}

func TestExportsToQualified(t *testing.T) {
	g := graphOf(&Module{
		Name:    "lib",
		Exports: []Exports{{Package: "lib.spi", To: []string{"plugin"}}},
	})
	if !g.ExportsTo("lib", "lib.spi", "plugin") {
		t.Fatalf("qualified export should reach the named friend")
	}
	if g.ExportsTo("lib", "lib.spi", "app") {
		t.Fatalf("qualified export must not reach others")
	}
	if !g.ExportsTo("lib", "lib.spi", "lib") {
		t.Fatalf("same-module access is always allowed")
	}
}

func TestOpenAndAutomaticExportEverything(t *testing.T) {
	g := graphOf(
		&Module{Name: "open", Open: true},
		&Module{Name: "auto", Automatic: true},
	)
	if !g.ExportsTo("open", "anything.at.all", "app") {
		t.Fatalf("open modules export everything")
	}
	if !g.ExportsTo("auto", "anything.at.all", "app") {
		t.Fatalf("automatic modules export everything")
	}
}

func TestVisibleCombinesBothChecks(t *testing.T) {
	g := graphOf(
		&Module{Name: "app", Requires: []Requires{{Module: "lib"}}},
		&Module{Name: "lib", Exports: []Exports{{Package: "lib.api"}}},
		&Module{Name: "stranger", Exports: []Exports{{Package: "s.api"}}},
	)
	if !g.Visible("app", "lib", "lib.api") {
		t.Fatalf("readable + exported should be visible")
	}
	if g.Visible("app", "lib", "lib.internal") {
		t.Fatalf("readable but unexported must stay hidden")
	}
	if g.Visible("app", "stranger", "s.api") {
		t.Fatalf("exported but unreadable must stay hidden")
	}
}

func TestAutomaticName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"guava-31.1-jre.jar", "guava"},
		{"commons-lang3-3.12.0.jar", "commons.lang3"},
		{"/deps/spring-core-5.3.21.jar", "spring.core"},
		{"foo-bar.jar", "foo.bar"},
		{"simple.jar", "simple"},
		{"weird__name.zip", "weird.name"},
	}
	for _, c := range cases {
		if got := AutomaticName(c.in); got != c.want {
			t.Fatalf("AutomaticName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPackageOf(t *testing.T) {
	if got := PackageOf("java.util.List"); got != "java.util" {
		t.Fatalf("PackageOf = %q", got)
	}
	if got := PackageOf("TopLevel"); got != "" {
		t.Fatalf("unpackaged name should yield empty package, got %q", got)
	}
}
