package main

import (
	"errors"
	"fmt"
	"os"

	"javasem/analyzer-go/pkg/engine"
	"javasem/analyzer-go/pkg/project"
	"javasem/analyzer-go/pkg/types"
)

const cliToolVersion = "javasem 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "check":
		return runCheck(args[1:])
	case "deps":
		return runDeps(args[1:])
	case "repl":
		return runRepl(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 2
	}
}

// loadSnapshot resolves the config from the optional directory argument
// and builds a snapshot over the workspace it describes.
func loadSnapshot(args []string) (*engine.Snapshot, error) {
	start := "."
	switch len(args) {
	case 0:
	case 1:
		start = args[0]
	default:
		return nil, fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	configPath, err := project.FindConfig(start)
	if err != nil {
		return nil, err
	}
	cfg, err := project.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	ws, err := project.LoadWorkspace(cfg)
	if err != nil {
		return nil, err
	}
	return ws.NewSnapshot(), nil
}

func runCheck(args []string) int {
	snap, err := loadSnapshot(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, project.ErrConfigNotFound) {
			return 2
		}
		return 1
	}

	failed := false
	for _, f := range snap.Files() {
		diags, err := snap.Diagnostics(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "check %s: %v\n", f.Path, err)
			return 1
		}
		for _, d := range diags {
			fmt.Fprintln(os.Stdout, renderDiagnostic(f.Path, d))
		}
		if types.HasErrors(diags) {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func renderDiagnostic(path string, d types.Diagnostic) string {
	if d.Span != nil {
		return fmt.Sprintf("%s:%d-%d: %s: [%s] %s", path, d.Span.Start, d.Span.End, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: [%s] %s", path, d.Severity, d.Code, d.Message)
}

func runDeps(args []string) int {
	start := "."
	if len(args) == 1 {
		start = args[0]
	} else if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", args[1:])
		return 2
	}
	configPath, err := project.FindConfig(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	cfg, err := project.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	cacheDir, err := project.CacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve JAVASEM_HOME: %v\n", err)
		return 1
	}
	if len(cfg.Deps) == 0 {
		fmt.Fprintln(os.Stdout, "no dependencies declared")
		return 0
	}
	resolved, err := project.EnsureDeps(cfg, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, dep := range resolved {
		fmt.Fprintf(os.Stdout, "%s %s (%s)\n", dep.Name, dep.Version, dep.Dir)
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  javasem check [dir]")
	fmt.Fprintln(os.Stderr, "  javasem deps [dir]")
	fmt.Fprintln(os.Stderr, "  javasem repl [dir]")
	fmt.Fprintln(os.Stderr, "  javasem --version")
}
