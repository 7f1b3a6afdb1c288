package engine

import (
	"errors"
	"sync"
	"sync/atomic"

	"javasem/analyzer-go/pkg/classpath"
	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/jdk"
	"javasem/analyzer-go/pkg/modules"
	"javasem/analyzer-go/pkg/types"
)

// ErrCancelled aborts a query whose snapshot has been cancelled. It
// propagates out of every entry point instead of a partial result.
var ErrCancelled = errors.New("snapshot cancelled")

// Cancellation cadence: checker steps between checkpoints, and the
// tighter bound used by the interning loops of base-store construction.
// The loader carries its own cadence for recursive stub loads.
const (
	checkpointEvery = 256
	internEvery     = 32
)

// Stats counts what a snapshot actually executed. The demand path is
// required to leave BodyChecks untouched, and tests hold it to that.
type Stats struct {
	BodyChecks   int64 // full-body checker runs (cache misses only)
	DemandChecks int64 // demand-path statement checks
	MemoHits     int64
	MemoMisses   int64
}

type statCounters struct {
	bodyChecks   atomic.Int64
	demandChecks atomic.Int64
	memoHits     atomic.Int64
	memoMisses   atomic.Int64
}

// MemberKind says which declaration list a member reference indexes.
type MemberKind string

const (
	MemberField  MemberKind = "field"
	MemberMethod MemberKind = "method"
	MemberCtor   MemberKind = "ctor"
	MemberInit   MemberKind = "init"
)

// BodyRef identifies one checkable body: a method or constructor body, a
// field initializer, or an initializer block. Index counts members of
// the same kind in declaration order; Name is checked when non-empty.
type BodyRef struct {
	Type  string // declaring type's binary name
	Kind  MemberKind
	Name  string // "" for constructors and initializer blocks
	Index int
}

// MethodRef names a method body of a type by declaration index.
func MethodRef(binary, name string, index int) BodyRef {
	return BodyRef{Type: binary, Kind: MemberMethod, Name: name, Index: index}
}

// FieldRef names a field initializer of a type by declaration index.
func FieldRef(binary, name string, index int) BodyRef {
	return BodyRef{Type: binary, Kind: MemberField, Name: name, Index: index}
}

// CtorRef names a constructor body by declaration index.
func CtorRef(binary string, index int) BodyRef {
	return BodyRef{Type: binary, Kind: MemberCtor, Index: index}
}

// InitRef names an initializer block by declaration index.
func InitRef(binary string, index int) BodyRef {
	return BodyRef{Type: binary, Kind: MemberInit, Index: index}
}

// SourceTypes is the project-scoped signature cache computed alongside
// the base store: declared field types, member ownership, and the
// type-parameter name tables bodies resolve written types against.
// Every contained type uses base-store ids, so clones see them as-is.
type SourceTypes struct {
	FieldTypes map[BodyRef]types.Type
	Owners     map[BodyRef]string
	ClassVars  map[string]map[string]types.TypeVarID
	MethodVars map[BodyRef]map[string]types.TypeVarID
}

// Options configures a snapshot.
type Options struct {
	Files     []*hir.File
	Classpath *classpath.Index // nil for an empty classpath
	Platform  *jdk.Index       // nil picks the built-in platform index
	// ModulePath lists automatic module names contributed by module-path
	// entries whose stubs were merged into Classpath. Workspace modules
	// register themselves through their module-info files.
	ModulePath []string
	Release    int // Java release level; informational
}

// Snapshot is one immutable view of a project: the lowered files, the
// external indexes, the module graph, and per-snapshot memo tables.
// Queries may run concurrently; each body check works on its own clone
// of the shared base store and never mutates snapshot state besides the
// memo tables.
type Snapshot struct {
	files   []*hir.File
	byPath  map[string]*hir.File
	defs    *DefMap
	cp      *classpath.Index
	jdk     *jdk.Index
	graph   *modules.Graph
	release int

	cancelled atomic.Bool

	baseOnce sync.Once
	base     *baseState
	baseErr  error

	mu   sync.Mutex
	memo map[string]any

	stats statCounters
}

// NewSnapshot builds a snapshot over the given project state.
func NewSnapshot(opts Options) *Snapshot {
	cp := opts.Classpath
	if cp == nil {
		cp = classpath.NewIndex()
	}
	platform := opts.Platform
	if platform == nil {
		platform = jdk.NewIndex()
	}
	graph := GraphFromFiles(opts.Files)
	if _, ok := graph.Lookup("java.base"); !ok {
		graph.Add(&modules.Module{Name: "java.base", Open: true})
	}
	for _, name := range opts.ModulePath {
		if _, ok := graph.Lookup(name); !ok {
			graph.AddAutomatic(name)
		}
	}
	s := &Snapshot{
		files:   opts.Files,
		byPath:  make(map[string]*hir.File, len(opts.Files)),
		defs:    BuildDefMap(opts.Files),
		cp:      cp,
		jdk:     platform,
		graph:   graph,
		release: opts.Release,
		memo:    make(map[string]any),
	}
	for _, f := range opts.Files {
		s.byPath[f.Path] = f
	}
	return s
}

// Files returns the snapshot's files in load order.
func (s *Snapshot) Files() []*hir.File { return s.files }

// File returns the file with the given path.
func (s *Snapshot) File(path string) (*hir.File, bool) {
	f, ok := s.byPath[path]
	return f, ok
}

// Defs returns the workspace definition map.
func (s *Snapshot) Defs() *DefMap { return s.defs }

// Modules returns the snapshot's module graph.
func (s *Snapshot) Modules() *modules.Graph { return s.graph }

// Release returns the configured Java release level.
func (s *Snapshot) Release() int { return s.release }

// Cancel marks the snapshot cancelled. In-flight queries notice at
// their next checkpoint and return ErrCancelled.
func (s *Snapshot) Cancel() { s.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called.
func (s *Snapshot) Cancelled() bool { return s.cancelled.Load() }

// checkErr is the cancellation checkpoint threaded through the loader
// and the checker.
func (s *Snapshot) checkErr() error {
	if s.cancelled.Load() {
		return ErrCancelled
	}
	return nil
}

// Stats returns a copy of the execution counters.
func (s *Snapshot) Stats() Stats {
	return Stats{
		BodyChecks:   s.stats.bodyChecks.Load(),
		DemandChecks: s.stats.demandChecks.Load(),
		MemoHits:     s.stats.memoHits.Load(),
		MemoMisses:   s.stats.memoMisses.Load(),
	}
}

// EstimatedBytes reports the approximate retained size of the snapshot's
// caches, for external cache accounting.
func (s *Snapshot) EstimatedBytes() int64 {
	var total int64
	if s.base != nil && s.base.store != nil {
		total += s.base.store.EstimatedBytes()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.memo {
		total += 64
		if r, ok := v.(*BodyResult); ok && r.Store != nil {
			total += r.Store.EstimatedBytes()
		}
	}
	return total
}

func (s *Snapshot) memoGet(key string) (any, bool) {
	s.mu.Lock()
	v, ok := s.memo[key]
	s.mu.Unlock()
	if ok {
		s.stats.memoHits.Add(1)
	} else {
		s.stats.memoMisses.Add(1)
	}
	return v, ok
}

func (s *Snapshot) memoPut(key string, v any) {
	s.mu.Lock()
	s.memo[key] = v
	s.mu.Unlock()
}
