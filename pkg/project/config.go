// Package project loads the javasem.yml configuration, materializes the
// workspace it describes (lowered-IR files, classpath and module-path
// stub entries), and fetches git-sourced dependencies into the cache
// directory.
package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project configuration file searched for upwards
// from the working directory.
const ConfigFileName = "javasem.yml"

// ErrConfigNotFound reports that no javasem.yml exists from the search
// start upwards.
var ErrConfigNotFound = errors.New("javasem.yml not found")

// Config is the parsed and validated project configuration. All paths
// are absolute, normalized against the config file's directory.
type Config struct {
	Path        string // absolute path of javasem.yml
	Name        string
	Release     int      // Java release level, default 17
	SourceRoots []string // directories scanned for *.hir.json files
	Classpath   []string // stub-entry files for the compiled classpath
	ModulePath  []ModulePathEntry
	StubStore   string // optional SQLite stub cache, "" disables it
	Deps        map[string]*DependencySpec
	depOrder    []string
}

// ModulePathEntry is one module-path stub entry. An empty Name derives
// the automatic module name from the entry's file name.
type ModulePathEntry struct {
	Path string
	Name string
}

// DependencySpec pins one git-sourced dependency.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig parses javasem.yml from disk, returning a validated config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", absPath)
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := raw.toConfig(absPath)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfig searches from start upwards for javasem.yml and returns its
// path. Wraps ErrConfigNotFound when nothing is found.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ConfigFileName, origin, ErrConfigNotFound)
		}
		dir = parent
	}
}

// CacheDir resolves the dependency cache directory: JAVASEM_HOME when
// set, else ~/.javasem.
func CacheDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv("JAVASEM_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve JAVASEM_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".javasem"), nil
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return filepath.Dir(c.Path) }

// DepNames lists the dependency names in sorted order.
func (c *Config) DepNames() []string {
	return append([]string(nil), c.depOrder...)
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if c.Release < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("java release %d is negative", c.Release))
	}
	for i, root := range c.SourceRoots {
		if root == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("source_roots[%d] must be a non-empty path", i))
		}
	}
	for i, entry := range c.Classpath {
		if entry == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("classpath[%d] must be a non-empty path", i))
		}
	}
	for i, entry := range c.ModulePath {
		if entry.Path == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("module_path[%d] must name an entry file", i))
		}
	}
	for _, name := range c.depOrder {
		dep := c.Deps[name]
		if dep == nil {
			continue
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d.Git == "" {
		errs = append(errs, "git URL required")
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if pins == 0 {
		errs = append(errs, "must pin rev, tag, or branch")
	}
	if pins > 1 {
		errs = append(errs, "rev, tag, and branch are mutually exclusive")
	}
	return errs
}

type configFile struct {
	Name       string         `yaml:"name"`
	Java       int            `yaml:"java"`
	SourceRoot stringList     `yaml:"source_roots"`
	Classpath  stringList     `yaml:"classpath"`
	ModulePath modulePathList `yaml:"module_path"`
	StubStore  string         `yaml:"stub_store"`
	Deps       dependencyMap  `yaml:"dependencies"`
}

func (cf configFile) toConfig(path string) *Config {
	base := filepath.Dir(path)
	cfg := &Config{
		Path:      path,
		Name:      strings.TrimSpace(cf.Name),
		Release:   cf.Java,
		StubStore: strings.TrimSpace(cf.StubStore),
		Deps:      make(map[string]*DependencySpec, len(cf.Deps)),
	}
	if cfg.Release == 0 {
		cfg.Release = 17
	}
	roots := cf.SourceRoot.Clone()
	if len(roots) == 0 {
		roots = []string{"src"}
	}
	for _, root := range roots {
		cfg.SourceRoots = append(cfg.SourceRoots, absAgainst(base, root))
	}
	for _, entry := range cf.Classpath.Clone() {
		cfg.Classpath = append(cfg.Classpath, absAgainst(base, entry))
	}
	for _, entry := range cf.ModulePath.items {
		cfg.ModulePath = append(cfg.ModulePath, ModulePathEntry{
			Path: absAgainst(base, entry.Path),
			Name: entry.Name,
		})
	}
	if cfg.StubStore != "" && !filepath.IsAbs(cfg.StubStore) {
		cfg.StubStore = absAgainst(base, cfg.StubStore)
	}
	for name, dep := range cf.Deps {
		cfg.Deps[name] = dep.clone()
		cfg.depOrder = append(cfg.depOrder, name)
	}
	sort.Strings(cfg.depOrder)
	return cfg
}

func absAgainst(base, path string) string {
	path = filepath.FromSlash(strings.TrimSpace(path))
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

type stringList []string

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("config: expected string or sequence for list but found %s", value.ShortTag())
	}
}

type modulePathList struct {
	items []ModulePathEntry
}

// Entries are either a bare path (automatic module name derived from the
// file name) or a {path, name} mapping.
func (ml *modulePathList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		ml.items = nil
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("config: module_path must be a sequence")
	}
	items := make([]ModulePathEntry, 0, len(value.Content))
	for _, node := range value.Content {
		switch node.Kind {
		case yaml.ScalarNode:
			items = append(items, ModulePathEntry{Path: strings.TrimSpace(node.Value)})
		case yaml.MappingNode:
			var raw struct {
				Path string `yaml:"path"`
				Name string `yaml:"name"`
			}
			if err := node.Decode(&raw); err != nil {
				return err
			}
			items = append(items, ModulePathEntry{
				Path: strings.TrimSpace(raw.Path),
				Name: strings.TrimSpace(raw.Name),
			})
		default:
			return fmt.Errorf("config: module_path entries must be strings or mappings")
		}
	}
	ml.items = items
	return nil
}

type dependencyMap map[string]*DependencySpec

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("config: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("config: dependency %q: %w", key, err)
		}
		result[key] = dep.clone()
	}
	*dm = result
	return nil
}

func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected mapping, found %s", value.ShortTag())
	}
}

func (d *DependencySpec) clone() *DependencySpec {
	if d == nil {
		return nil
	}
	copy := *d
	return &copy
}
