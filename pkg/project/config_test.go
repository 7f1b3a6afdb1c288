package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "name: demo\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "demo" {
		t.Fatalf("name = %q", cfg.Name)
	}
	if cfg.Release != 17 {
		t.Fatalf("default release = %d", cfg.Release)
	}
	if len(cfg.SourceRoots) != 1 || cfg.SourceRoots[0] != filepath.Join(dir, "src") {
		t.Fatalf("default source roots = %v", cfg.SourceRoots)
	}
	if cfg.StubStore != "" || len(cfg.Classpath) != 0 || len(cfg.Deps) != 0 {
		t.Fatalf("unexpected non-defaults: %+v", cfg)
	}
}

func TestLoadConfigFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `
name: app
java: 11
source_roots:
  - src/main
  - src/gen
classpath:
  - lib/guava.stubs.json
module_path:
  - lib/acme-core-1.2.stubs.json
  - {path: lib/extra.stubs.json, name: com.acme.extra}
stub_store: .javasem/stubs.db
dependencies:
  acme-utils:
    git: https://example.com/acme/utils.git
    tag: v1.2.0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Release != 11 {
		t.Fatalf("release = %d", cfg.Release)
	}
	if len(cfg.SourceRoots) != 2 || cfg.SourceRoots[1] != filepath.Join(dir, "src", "gen") {
		t.Fatalf("source roots = %v", cfg.SourceRoots)
	}
	if len(cfg.Classpath) != 1 || cfg.Classpath[0] != filepath.Join(dir, "lib", "guava.stubs.json") {
		t.Fatalf("classpath = %v", cfg.Classpath)
	}
	if len(cfg.ModulePath) != 2 {
		t.Fatalf("module path = %v", cfg.ModulePath)
	}
	if cfg.ModulePath[0].Name != "" || cfg.ModulePath[1].Name != "com.acme.extra" {
		t.Fatalf("module names = %q %q", cfg.ModulePath[0].Name, cfg.ModulePath[1].Name)
	}
	if cfg.StubStore != filepath.Join(dir, ".javasem", "stubs.db") {
		t.Fatalf("stub store = %q", cfg.StubStore)
	}
	dep := cfg.Deps["acme-utils"]
	if dep == nil || dep.Git != "https://example.com/acme/utils.git" || dep.Tag != "v1.2.0" {
		t.Fatalf("dependency = %+v", dep)
	}
	if names := cfg.DepNames(); len(names) != 1 || names[0] != "acme-utils" {
		t.Fatalf("dep names = %v", names)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `
dependencies:
  broken:
    rev: abc123
  twice:
    git: https://example.com/r.git
    tag: v1
    branch: main
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	msg := verr.Error()
	for _, want := range []string{
		"name must be provided",
		"dependencies.broken: git URL required",
		"dependencies.twice: rev, tag, and branch are mutually exclusive",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing issue %q in:\n%s", want, msg)
		}
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "name: demo\nbogus: true\n")

	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("unknown key not rejected: %v", err)
	}
}

func TestFindConfigWalksUpwards(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "name: demo\n")
	nested := filepath.Join(root, "src", "main", "java")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != filepath.Join(root, ConfigFileName) {
		t.Fatalf("found = %q", found)
	}
}

func TestFindConfigNotFound(t *testing.T) {
	_, err := FindConfig(t.TempDir())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v", err)
	}
}
