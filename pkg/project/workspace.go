package project

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"javasem/analyzer-go/pkg/classpath"
	"javasem/analyzer-go/pkg/engine"
	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/modules"
)

// HIRSuffix marks lowered compilation-unit files under the source roots.
const HIRSuffix = ".hir.json"

// StubSuffix marks classpath/module-path stub entry files.
const StubSuffix = ".stubs.json"

// Workspace is a loaded project: the lowered files plus the external
// indexes the config names, ready to back a snapshot.
type Workspace struct {
	Config     *Config
	Files      []*hir.File
	Classpath  *classpath.Index
	ModulePath []string
}

// LoadWorkspace reads the lowered-IR files under the config's source
// roots and the stub entries on its classpath and module path. Stub
// entries go through the SQLite store when the config names one, so an
// unchanged entry file is decoded from cache rather than re-parsed.
func LoadWorkspace(cfg *Config) (*Workspace, error) {
	files, err := loadHIRFiles(cfg.SourceRoots)
	if err != nil {
		return nil, err
	}

	var store *classpath.Store
	if cfg.StubStore != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StubStore), 0o755); err != nil {
			return nil, fmt.Errorf("stub store: %w", err)
		}
		store, err = classpath.OpenStore(cfg.StubStore)
		if err != nil {
			return nil, err
		}
		defer store.Close()
	}

	index := classpath.NewIndex()
	for _, entry := range cfg.Classpath {
		stubs, err := loadEntry(entry, store)
		if err != nil {
			return nil, err
		}
		for _, s := range stubs {
			index.Add(s)
		}
	}

	var moduleNames []string
	for _, entry := range cfg.ModulePath {
		stubs, err := loadEntry(entry.Path, store)
		if err != nil {
			return nil, err
		}
		name := entry.Name
		if name == "" {
			name = modules.AutomaticName(strings.TrimSuffix(filepath.Base(entry.Path), StubSuffix))
		}
		index.AddAll(classpath.ModuleEntry(entry.Path, name, stubs...))
		moduleNames = append(moduleNames, name)
	}

	return &Workspace{
		Config:     cfg,
		Files:      files,
		Classpath:  index,
		ModulePath: moduleNames,
	}, nil
}

// NewSnapshot builds an engine snapshot over the workspace.
func (w *Workspace) NewSnapshot() *engine.Snapshot {
	return engine.NewSnapshot(engine.Options{
		Files:      w.Files,
		Classpath:  w.Classpath,
		ModulePath: w.ModulePath,
		Release:    w.Config.Release,
	})
}

// loadHIRFiles walks the source roots for *.hir.json files, sorted by
// path so the file order, and with it base-store interning, is stable. A
// missing root is skipped; a root that exists but cannot be read is an
// error.
func loadHIRFiles(roots []string) ([]*hir.File, error) {
	var paths []string
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), HIRSuffix) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}
	sort.Strings(paths)

	files := make([]*hir.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		f, err := hir.DecodeFile(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if f.Path == "" {
			f.Path = filepath.ToSlash(path)
		}
		files = append(files, f)
	}
	return files, nil
}

// loadEntry reads one stub entry file: a JSON array of class stubs. With
// a store, the entry's checksum is tried first and a miss is written
// back.
func loadEntry(path string, store *classpath.Store) ([]*classpath.ClassStub, error) {
	if store != nil {
		checksum, err := classpath.EntryChecksum(path)
		if err != nil {
			return nil, err
		}
		if stubs, ok, err := store.Load(checksum); err != nil {
			return nil, err
		} else if ok {
			return stubs, nil
		}
		stubs, err := parseEntry(path)
		if err != nil {
			return nil, err
		}
		if err := store.Save(checksum, stubs); err != nil {
			return nil, err
		}
		return stubs, nil
	}
	return parseEntry(path)
}

func parseEntry(path string) ([]*classpath.ClassStub, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", path, err)
	}
	var stubs []*classpath.ClassStub
	if err := json.Unmarshal(data, &stubs); err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", path, err)
	}
	for i, s := range stubs {
		if s == nil || s.Name == "" {
			return nil, fmt.Errorf("decode entry %s: stub %d has no name", path, i)
		}
	}
	return stubs, nil
}
