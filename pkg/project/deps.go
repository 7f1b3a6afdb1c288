package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ResolvedDep records where a dependency checkout landed and which
// commit it pins.
type ResolvedDep struct {
	Name    string
	Version string // rev/tag/branch descriptor, suffixed with the commit when they differ
	Commit  string
	Dir     string
}

// EnsureDeps makes every git dependency of the config present under the
// cache directory, cloning and checking out the pinned revision when the
// checkout does not already exist. Dependencies resolve in name order so
// output and failures are deterministic.
func EnsureDeps(cfg *Config, cacheDir string) ([]ResolvedDep, error) {
	if cacheDir == "" {
		return nil, errors.New("deps: cache directory required")
	}
	var out []ResolvedDep
	for _, name := range cfg.DepNames() {
		spec := cfg.Deps[name]
		if spec == nil {
			continue
		}
		resolved, err := ensureGitCheckout(filepath.Join(cacheDir, "deps", name), name, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func ensureGitCheckout(baseDir, name string, spec *DependencySpec) (ResolvedDep, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return ResolvedDep{}, err
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return ResolvedDep{}, fmt.Errorf("dependency %q: git URL required", name)
	}
	revision, descriptor, err := gitRevision(spec)
	if err != nil {
		return ResolvedDep{}, fmt.Errorf("dependency %q: %w", name, err)
	}

	// An explicit rev is already a complete pin: if its checkout exists
	// the clone can be skipped entirely.
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, pathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return ResolvedDep{Name: name, Version: rev, Commit: rev, Dir: existing}, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return ResolvedDep{}, err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return ResolvedDep{}, err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return ResolvedDep{}, fmt.Errorf("dependency %q: git clone %s: %w", name, url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return ResolvedDep{}, fmt.Errorf("dependency %q: resolve revision %s: %w", name, revision, err)
	}

	version := pinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, pathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return ResolvedDep{Name: name, Version: version, Commit: hash.String(), Dir: targetDir}, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return ResolvedDep{}, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return ResolvedDep{}, fmt.Errorf("dependency %q: git checkout %s: %w", name, revision, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return ResolvedDep{}, err
	}
	return ResolvedDep{Name: name, Version: version, Commit: hash.String(), Dir: targetDir}, nil
}

func gitRevision(spec *DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", errors.New("git dependencies require rev, tag, or branch")
}

func pinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return descriptor + "@" + commit
}

func pathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
