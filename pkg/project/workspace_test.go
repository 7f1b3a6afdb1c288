package project

import (
	"path/filepath"
	"testing"

	"javasem/analyzer-go/pkg/classpath"
)

const fixtureUnit = `{
  "path": "p/C.java",
  "package": "p",
  "types": [{
    "kind": "class", "name": "C", "modifiers": ["public"],
    "methods": [{
      "name": "f", "return": "int",
      "body": {"kind": "block", "stmts": [
        {"kind": "return", "value": {"kind": "literal", "literal": "int", "text": "41",
          "span": {"start": 30, "end": 32}}}
      ]}
    }]
  }]
}`

const fixtureStubs = `[
  {"name": "com.acme.Util", "access_flags": 1, "super": "java.lang.Object",
   "methods": [{"name": "max", "descriptor": "(II)I", "access_flags": 9}]}
]`

func fixtureProject(t *testing.T, extraConfig string) *Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `
name: demo
classpath:
  - lib/util.stubs.json
module_path:
  - lib/acme-core-1.2.stubs.json
`+extraConfig)
	writeFile(t, filepath.Join(dir, "src", "C.hir.json"), fixtureUnit)
	writeFile(t, filepath.Join(dir, "lib", "util.stubs.json"), fixtureStubs)
	writeFile(t, filepath.Join(dir, "lib", "acme-core-1.2.stubs.json"), `[
	  {"name": "com.acme.core.Core", "access_flags": 1, "super": "java.lang.Object"}
	]`)

	cfg, err := LoadConfig(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestLoadWorkspace(t *testing.T) {
	cfg := fixtureProject(t, "")

	ws, err := LoadWorkspace(cfg)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if len(ws.Files) != 1 || ws.Files[0].Path != "p/C.java" {
		t.Fatalf("files = %+v", ws.Files)
	}
	if !ws.Classpath.HasType("com.acme.Util") {
		t.Fatal("classpath entry not indexed")
	}
	stub, ok := ws.Classpath.Lookup("com.acme.core.Core")
	if !ok || stub.Module != "acme.core" {
		t.Fatalf("module attribution = %+v", stub)
	}
	if len(ws.ModulePath) != 1 || ws.ModulePath[0] != "acme.core" {
		t.Fatalf("module path names = %v", ws.ModulePath)
	}
}

func TestWorkspaceSnapshotChecks(t *testing.T) {
	cfg := fixtureProject(t, "")
	ws, err := LoadWorkspace(cfg)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}

	snap := ws.NewSnapshot()
	diags, err := snap.Diagnostics("p/C.java")
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	text, ok, err := snap.TypeAtOffset("p/C.java", 31)
	if err != nil {
		t.Fatalf("TypeAtOffset: %v", err)
	}
	if !ok || text != "int" {
		t.Fatalf("type at offset = %q ok=%v", text, ok)
	}
}

func TestLoadWorkspaceStubStore(t *testing.T) {
	cfg := fixtureProject(t, "stub_store: .javasem/stubs.db\n")

	if _, err := LoadWorkspace(cfg); err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}

	// The first load writes through to the store.
	store, err := classpath.OpenStore(cfg.StubStore)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
	checksum, err := classpath.EntryChecksum(cfg.Classpath[0])
	if err != nil {
		t.Fatalf("EntryChecksum: %v", err)
	}
	stubs, ok, err := store.Load(checksum)
	if err != nil || !ok {
		t.Fatalf("cached stubs missing: ok=%v err=%v", ok, err)
	}
	if len(stubs) != 1 || stubs[0].Name != "com.acme.Util" {
		t.Fatalf("cached stubs = %+v", stubs)
	}

	// The second load reads from the cache and still indexes everything.
	ws, err := LoadWorkspace(cfg)
	if err != nil {
		t.Fatalf("LoadWorkspace again: %v", err)
	}
	if !ws.Classpath.HasType("com.acme.Util") {
		t.Fatal("cache read-through lost the entry")
	}
}

func TestLoadWorkspaceSkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), "name: empty\nsource_roots: [does-not-exist]\n")
	cfg, err := LoadConfig(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	ws, err := LoadWorkspace(cfg)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if len(ws.Files) != 0 {
		t.Fatalf("files = %+v", ws.Files)
	}
}
