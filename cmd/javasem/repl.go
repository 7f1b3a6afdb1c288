package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"javasem/analyzer-go/pkg/engine"
	"javasem/analyzer-go/pkg/types"
)

const replHistoryFile = ".javasem_history"

func runRepl(args []string) int {
	snap, err := loadSnapshot(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintln(os.Stdout, "commands: :type <file> <offset> | :diags <file> | :lookup <binary-name> | :quit")
	for {
		input, err := line.Prompt("javasem> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == ":quit" || input == ":q" {
			break
		}
		if out, quit := replCommand(snap, input); quit {
			break
		} else if out != "" {
			fmt.Fprintln(os.Stdout, out)
		}
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return 0
}

// replCommand evaluates one prompt line against the snapshot.
func replCommand(snap *engine.Snapshot, input string) (output string, quit bool) {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		return "", true
	case ":type":
		if len(fields) != 3 {
			return "usage: :type <file> <offset>", false
		}
		offset, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return fmt.Sprintf("bad offset %q", fields[2]), false
		}
		text, ok, err := snap.TypeAtOffset(fields[1], uint32(offset))
		if err != nil {
			return err.Error(), false
		}
		if !ok {
			return "no expression at offset", false
		}
		return text, false
	case ":diags":
		if len(fields) != 2 {
			return "usage: :diags <file>", false
		}
		diags, err := snap.Diagnostics(fields[1])
		if err != nil {
			return err.Error(), false
		}
		if len(diags) == 0 {
			return "no diagnostics", false
		}
		var b strings.Builder
		for i, d := range diags {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(renderDiagnostic(fields[1], d))
		}
		return b.String(), false
	case ":lookup":
		if len(fields) != 2 {
			return "usage: :lookup <binary-name>", false
		}
		return replLookup(snap, fields[1]), false
	default:
		return fmt.Sprintf("unknown command %q", fields[0]), false
	}
}

func replLookup(snap *engine.Snapshot, name string) string {
	store, err := snap.BaseTypeStore()
	if err != nil {
		return err.Error()
	}
	id, ok := store.Lookup(name)
	if !ok {
		return fmt.Sprintf("no type %q in snapshot", name)
	}
	def := store.Class(id)
	if def == nil {
		return fmt.Sprintf("%s: placeholder (not loadable from here)", name)
	}
	kind := "class"
	if def.IsInterface {
		kind = "interface"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", kind, def.Name)
	if def.Module != "" {
		fmt.Fprintf(&b, " [module %s]", def.Module)
	}
	for _, sup := range def.Supertypes {
		fmt.Fprintf(&b, "\n  extends %s", types.FormatType(store, sup))
	}
	fmt.Fprintf(&b, "\n  %d fields, %d methods, %d constructors",
		len(def.Fields), len(def.Methods), len(def.Constructors))
	return b.String()
}
