package engine

import (
	"strings"
	"testing"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/types"
)

// Fixtures build one-class files around hand-built bodies. A method's
// parameters must be declared twice: as builder slots (so names resolve)
// and as ParamDecls (so the store knows their types); the two lists align
// by position.

// Fixture files import the java.util, java.util.function, and java.io
// packages on demand so simple names like List or PrintStream resolve the
// way they would in ordinary source.
func classFile(path, pkg string, decls ...*hir.TypeDecl) *hir.File {
	return &hir.File{Path: path, Package: pkg, Imports: []hir.Import{
		{Path: "java.util", OnDemand: true},
		{Path: "java.util.function", OnDemand: true},
		{Path: "java.io", OnDemand: true},
	}, Types: decls}
}

func class(name string, methods ...hir.MethodDecl) *hir.TypeDecl {
	return &hir.TypeDecl{Kind: hir.KindClass, Name: name, Methods: methods}
}

func param(name, ty string) hir.ParamDecl {
	return hir.ParamDecl{Name: name, Type: hir.Ty(ty)}
}

func method(name, ret string, body *hir.Body, params ...hir.ParamDecl) hir.MethodDecl {
	return hir.MethodDecl{Name: name, Return: hir.Ty(ret), Params: params, Body: body}
}

func staticMethod(name, ret string, body *hir.Body, params ...hir.ParamDecl) hir.MethodDecl {
	m := method(name, ret, body, params...)
	m.Modifiers = hir.ModStatic
	return m
}

func snapOf(files ...*hir.File) *Snapshot {
	return NewSnapshot(Options{Files: files})
}

func mustCheck(t *testing.T, s *Snapshot, ref BodyRef) *BodyResult {
	t.Helper()
	res, err := s.CheckBody(ref)
	if err != nil {
		t.Fatalf("CheckBody(%v): %v", ref, err)
	}
	return res
}

// checkMethod checks one method body declared on a minimal class p.A.
func checkMethod(t *testing.T, ret string, body *hir.Body, params ...hir.ParamDecl) *BodyResult {
	t.Helper()
	f := classFile("A.hir.json", "p", class("A", method("f", ret, body, params...)))
	return mustCheck(t, snapOf(f), MethodRef("p.A", "f", 0))
}

func diagStrings(diags []types.Diagnostic) string {
	if len(diags) == 0 {
		return "(none)"
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Code + ": " + d.Message
	}
	return strings.Join(parts, "\n")
}

// wantDiag fails unless some diagnostic carries the code and contains the
// message fragment.
func wantDiag(t *testing.T, diags []types.Diagnostic, code, fragment string) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code && strings.Contains(d.Message, fragment) {
			return
		}
	}
	t.Fatalf("no %s diagnostic containing %q, got:\n%s", code, fragment, diagStrings(diags))
}

func wantNoDiags(t *testing.T, diags []types.Diagnostic) {
	t.Helper()
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diagStrings(diags))
	}
}

func wantNoErrors(t *testing.T, diags []types.Diagnostic) {
	t.Helper()
	for _, d := range diags {
		if d.Severity == types.SeverityError {
			t.Fatalf("unexpected error diagnostics:\n%s", diagStrings(diags))
		}
	}
}

// wantType fails unless the checked type of expr renders as want.
func wantType(t *testing.T, res *BodyResult, expr hir.ExprID, want string) {
	t.Helper()
	tt := res.ExprTypes[expr]
	if tt == nil {
		t.Fatalf("expression %d has no type, want %s", expr, want)
	}
	if got := types.FormatType(res.Store, tt); got != want {
		t.Fatalf("expression %d typed %s, want %s", expr, got, want)
	}
}

func wantIntConst(t *testing.T, res *BodyResult, expr hir.ExprID, want int64) {
	t.Helper()
	cv := res.Consts[expr]
	if cv == nil {
		t.Fatalf("expression %d folded to no constant, want %d", expr, want)
	}
	if cv.I != want {
		t.Fatalf("expression %d folded to %d, want %d", expr, cv.I, want)
	}
}
