package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initFixtureRepo creates a one-commit repository and returns its commit
// hash.
func initFixtureRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	writeFile(t, filepath.Join(dir, "README.md"), "fixture dependency\n")
	if _, err := worktree.Add("README.md"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Fixture",
			Email: "fixture@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestEnsureDepsClonesPinnedRev(t *testing.T) {
	repoDir := filepath.Join(t.TempDir(), "upstream")
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	commit := initFixtureRepo(t, repoDir)

	cfg := &Config{
		Deps:     map[string]*DependencySpec{"fixture": {Git: repoDir, Rev: commit}},
		depOrder: []string{"fixture"},
	}
	cacheDir := t.TempDir()

	resolved, err := EnsureDeps(cfg, cacheDir)
	if err != nil {
		t.Fatalf("EnsureDeps: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("resolved = %+v", resolved)
	}
	dep := resolved[0]
	if dep.Name != "fixture" || dep.Commit != commit {
		t.Fatalf("resolved dep = %+v", dep)
	}
	if _, err := os.Stat(filepath.Join(dep.Dir, "README.md")); err != nil {
		t.Fatalf("checkout missing content: %v", err)
	}

	// A second run finds the existing checkout without cloning.
	again, err := EnsureDeps(cfg, cacheDir)
	if err != nil {
		t.Fatalf("EnsureDeps again: %v", err)
	}
	if again[0].Dir != dep.Dir {
		t.Fatalf("checkout moved: %q vs %q", again[0].Dir, dep.Dir)
	}
}

func TestEnsureDepsBranchPin(t *testing.T) {
	repoDir := filepath.Join(t.TempDir(), "upstream")
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	commit := initFixtureRepo(t, repoDir)

	cfg := &Config{
		Deps:     map[string]*DependencySpec{"fixture": {Git: repoDir, Branch: "master"}},
		depOrder: []string{"fixture"},
	}

	resolved, err := EnsureDeps(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("EnsureDeps: %v", err)
	}
	dep := resolved[0]
	if dep.Commit != commit {
		t.Fatalf("commit = %q, want %q", dep.Commit, commit)
	}
	if !strings.HasPrefix(dep.Version, "master@") {
		t.Fatalf("version = %q", dep.Version)
	}
}

func TestEnsureDepsRequiresCacheDir(t *testing.T) {
	if _, err := EnsureDeps(&Config{}, ""); err == nil {
		t.Fatal("expected error for empty cache dir")
	}
}

func TestPathSegmentSanitizes(t *testing.T) {
	if got := pathSegment("v1.2/beta x"); got != "v1.2-beta-x" {
		t.Fatalf("pathSegment = %q", got)
	}
	if got := pathSegment("  "); got != "head" {
		t.Fatalf("pathSegment empty = %q", got)
	}
}
