package engine

import (
	"errors"
	"testing"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/types"
)

type demandFixture struct {
	file   *hir.File
	body   *hir.Body
	concat hir.ExprID
	call   hir.ExprID
	mul    hir.ExprID
	two    hir.ExprID
}

func buildDemandFixture() demandFixture {
	b := hir.NewBodyBuilder()
	concat := b.Bin("+", b.Str("a"), b.Int("1"))
	_, d1 := b.DeclVar("s", concat)
	call := b.Call(b.Field(b.Name("s"), "length"))
	_, d2 := b.Decl("n", "int", call)
	two := b.Int("2")
	mul := b.Bin("*", b.Name("n"), two)
	body := b.Finish(b.Block(d1, d2, b.Ret(mul)))

	f := classFile("A.hir.json", "p", class("A", method("f", "int", body)))
	return demandFixture{file: f, body: body, concat: concat, call: call, mul: mul, two: two}
}

func TestDemandMatchesFullCheck(t *testing.T) {
	fx := buildDemandFixture()
	full := mustCheck(t, snapOf(fx.file), MethodRef("p.A", "f", 0))
	wantNoDiags(t, full.Diags)

	demand := snapOf(buildDemandFixture().file)
	ref := MethodRef("p.A", "f", 0)
	for _, e := range []hir.ExprID{fx.concat, fx.call, fx.mul} {
		dt, err := demand.TypeOfExpr(ref, e)
		if err != nil {
			t.Fatalf("TypeOfExpr(%d): %v", e, err)
		}
		want := types.FormatType(full.Store, full.ExprTypes[e])
		r, err := demand.DemandResult(ref, e)
		if err != nil {
			t.Fatalf("DemandResult(%d): %v", e, err)
		}
		if got := types.FormatType(r.Store, dt); got != want {
			t.Fatalf("expression %d demanded as %s, full check says %s", e, got, want)
		}
	}
	if st := demand.Stats(); st.BodyChecks != 0 {
		t.Fatalf("demand queries ran %d body checks, want 0", st.BodyChecks)
	}
	if st := demand.Stats(); st.DemandChecks == 0 {
		t.Fatalf("demand queries recorded no demand checks")
	}
}

func TestDemandConstants(t *testing.T) {
	fx := buildDemandFixture()
	s := snapOf(fx.file)
	r, err := s.DemandResult(MethodRef("p.A", "f", 0), fx.concat)
	if err != nil {
		t.Fatalf("DemandResult: %v", err)
	}
	if r.Const == nil || r.Const.S != "a1" {
		t.Fatalf("demanded constant %+v, want \"a1\"", r.Const)
	}
}

func TestCheckBodyMemoized(t *testing.T) {
	fx := buildDemandFixture()
	s := snapOf(fx.file)
	ref := MethodRef("p.A", "f", 0)
	first := mustCheck(t, s, ref)
	second := mustCheck(t, s, ref)
	if first != second {
		t.Fatalf("repeated CheckBody returned distinct results")
	}
	st := s.Stats()
	if st.BodyChecks != 1 {
		t.Fatalf("two CheckBody calls ran %d checks, want 1", st.BodyChecks)
	}
	if st.MemoHits == 0 {
		t.Fatalf("second CheckBody missed the memo")
	}
}

func TestDemandInsideLambda(t *testing.T) {
	b := hir.NewBodyBuilder()
	x := b.LambdaParam("x")
	sum := b.Bin("+", b.Name("x"), b.Int("1"))
	lam := b.Lambda([]hir.LocalID{x}, sum)
	_, decl := b.Decl("f", "Function<Integer, Integer>", lam)
	body := b.Finish(b.Block(decl))

	f := classFile("A.hir.json", "p", class("A", method("g", "void", body)))
	s := snapOf(f)
	dt, err := s.TypeOfExpr(MethodRef("p.A", "g", 0), sum)
	if err != nil {
		t.Fatalf("TypeOfExpr: %v", err)
	}
	r, err := s.DemandResult(MethodRef("p.A", "g", 0), sum)
	if err != nil {
		t.Fatalf("DemandResult: %v", err)
	}
	if got := types.FormatType(r.Store, dt); got != "int" {
		t.Fatalf("lambda body expression demanded as %s, want int", got)
	}
}

func TestDemandUntargetedLambdaBody(t *testing.T) {
	b := hir.NewBodyBuilder()
	y := b.LambdaParam("y")
	use := b.Name("y")
	lam := b.Lambda([]hir.LocalID{y}, use)
	_, decl := b.DeclVar("g", lam)
	body := b.Finish(b.Block(decl))

	f := classFile("A.hir.json", "p", class("A", method("h", "void", body)))
	s := snapOf(f)
	dt, err := s.TypeOfExpr(MethodRef("p.A", "h", 0), use)
	if err != nil {
		t.Fatalf("TypeOfExpr: %v", err)
	}
	if !types.IsUnknown(dt) {
		t.Fatalf("untargeted lambda body demanded as %v, want unknown", dt)
	}
}

func TestResolveCallDemand(t *testing.T) {
	b := hir.NewBodyBuilder()
	b.Param("s", "String")
	good := b.Call(b.Field(b.Name("s"), "length"))
	_, d1 := b.Decl("n", "int", good)
	bad := b.Call(b.Field(b.Name("s"), "nosuch"))
	body := b.Finish(b.Block(d1, b.Stmt(bad)))

	f := classFile("A.hir.json", "p",
		class("A", method("f", "void", body, param("s", "String"))))
	s := snapOf(f)
	ref := MethodRef("p.A", "f", 0)

	m, err := s.ResolveCallDemand(ref, good)
	if err != nil {
		t.Fatalf("ResolveCallDemand: %v", err)
	}
	if m == nil || m.Name != "length" {
		t.Fatalf("call resolved to %+v, want length", m)
	}
	m, err = s.ResolveCallDemand(ref, bad)
	if err != nil {
		t.Fatalf("ResolveCallDemand on unresolved site: %v", err)
	}
	if m != nil {
		t.Fatalf("unresolved site answered %+v, want nil", m)
	}
}

func TestTypeAtOffset(t *testing.T) {
	fx := buildDemandFixture()
	s := snapOf(fx.file)

	text, ok, err := s.TypeAtOffset("A.hir.json", fx.body.ExprSpan(fx.two).Start)
	if err != nil {
		t.Fatalf("TypeAtOffset: %v", err)
	}
	if !ok || text != "int" {
		t.Fatalf("TypeAtOffset answered %q/%v, want int", text, ok)
	}

	_, ok, err = s.TypeAtOffset("A.hir.json", 1<<20)
	if err != nil {
		t.Fatalf("TypeAtOffset past the end: %v", err)
	}
	if ok {
		t.Fatalf("offset past every span still found an expression")
	}
	if st := s.Stats(); st.BodyChecks != 0 {
		t.Fatalf("TypeAtOffset ran %d body checks, want 0", st.BodyChecks)
	}
}

func TestCancelledSnapshot(t *testing.T) {
	fx := buildDemandFixture()
	s := snapOf(fx.file)
	s.Cancel()
	if !s.Cancelled() {
		t.Fatalf("Cancel did not mark the snapshot")
	}
	if _, err := s.CheckBody(MethodRef("p.A", "f", 0)); !errors.Is(err, ErrCancelled) {
		t.Fatalf("CheckBody on cancelled snapshot: %v, want ErrCancelled", err)
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	build := func(text string) (*hir.File, hir.ExprID) {
		b := hir.NewBodyBuilder()
		lit := b.Int(text)
		_, decl := b.Decl("x", "int", lit)
		body := b.Finish(b.Block(decl))
		return classFile("A.hir.json", "p", class("A", method("f", "void", body))), lit
	}

	f1, lit1 := build("41")
	s1 := snapOf(f1)
	res1 := mustCheck(t, s1, MethodRef("p.A", "f", 0))
	wantNoDiags(t, res1.Diags)
	wantIntConst(t, res1, lit1, 41)

	f2, lit2 := build("42")
	s2 := snapOf(f2)
	res2 := mustCheck(t, s2, MethodRef("p.A", "f", 0))
	wantNoDiags(t, res2.Diags)
	wantIntConst(t, res2, lit2, 42)

	// The older snapshot still answers from its own state.
	again := mustCheck(t, s1, MethodRef("p.A", "f", 0))
	wantIntConst(t, again, lit1, 41)
}

func TestQueryOrderDoesNotChangeAnswers(t *testing.T) {
	build := func() (*hir.File, hir.ExprID, hir.ExprID) {
		b := hir.NewBodyBuilder()
		of := b.Call(b.Field(b.Name("List"), "of"), b.Str("x"))
		_, d1 := b.DeclVar("l", of)
		mk := b.NewDiamond("HashMap")
		_, d2 := b.Decl("m", "Map<String, Integer>", mk)
		body := b.Finish(b.Block(d1, d2))
		f := classFile("A.hir.json", "p", class("A", method("f", "void", body)))
		return f, of, mk
	}

	f1, of1, mk1 := build()
	s1 := snapOf(f1)
	ref := MethodRef("p.A", "f", 0)
	r1a, err := s1.DemandResult(ref, of1)
	if err != nil {
		t.Fatalf("DemandResult: %v", err)
	}
	r1b, err := s1.DemandResult(ref, mk1)
	if err != nil {
		t.Fatalf("DemandResult: %v", err)
	}

	f2, of2, mk2 := build()
	s2 := snapOf(f2)
	r2b, err := s2.DemandResult(ref, mk2)
	if err != nil {
		t.Fatalf("DemandResult: %v", err)
	}
	r2a, err := s2.DemandResult(ref, of2)
	if err != nil {
		t.Fatalf("DemandResult: %v", err)
	}

	if a, b := types.FormatType(r1a.Store, r1a.Type), types.FormatType(r2a.Store, r2a.Type); a != b {
		t.Fatalf("query order changed an answer: %s vs %s", a, b)
	}
	if a, b := types.FormatType(r1b.Store, r1b.Type), types.FormatType(r2b.Store, r2b.Type); a != b {
		t.Fatalf("query order changed an answer: %s vs %s", a, b)
	}
}
