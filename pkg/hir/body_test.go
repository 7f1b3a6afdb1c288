package hir

import "testing"

func TestExprAtPicksInnermost(t *testing.T) {
	b := NewBodyBuilder()
	left := b.Name("alpha")
	right := b.Name("beta")
	sum := b.Bin("+", left, right)
	body := b.Finish(b.Block(b.Stmt(sum)))

	at := body.ExprSpan(left).Start
	if got := body.ExprAt(at); got != left {
		t.Fatalf("ExprAt(%d) = %d, want the operand %d", at, got, left)
	}
	// The gap between the operands belongs to the sum alone.
	gap := body.ExprSpan(left).End
	if got := body.ExprAt(gap); got != sum {
		t.Fatalf("ExprAt(%d) = %d, want the binary %d", gap, got, sum)
	}
	if got := body.ExprAt(9999); got != NoExpr {
		t.Fatalf("ExprAt out of range = %d, want NoExpr", got)
	}
}

func TestBuilderSpanLayout(t *testing.T) {
	b := NewBodyBuilder()
	x := b.Name("x")
	y := b.Name("y")
	sum := b.Bin("+", x, y)
	body := b.Finish(b.Block(b.Stmt(sum)))

	sx, sy := body.ExprSpan(x), body.ExprSpan(y)
	if sx.End >= sy.Start {
		t.Fatalf("leaf spans overlap: %+v %+v", sx, sy)
	}
	if got := body.ExprSpan(sum); got != sx.Cover(sy) {
		t.Fatalf("binary span = %+v, want cover of %+v and %+v", got, sx, sy)
	}
}

func TestBodyRoots(t *testing.T) {
	b := NewBodyBuilder()
	stmts := b.Finish(b.Block())
	if stmts.Root() == NoStmt || stmts.RootExpr() != NoExpr {
		t.Fatalf("statement body roots = %d %d", stmts.Root(), stmts.RootExpr())
	}

	b = NewBodyBuilder()
	init := b.FinishExpr(b.Int("1"))
	if init.RootExpr() == NoExpr || init.Root() != NoStmt {
		t.Fatalf("expression body roots = %d %d", init.Root(), init.RootExpr())
	}
}

func TestTypeRefMarkers(t *testing.T) {
	if !Ty("var").IsVar() || !Ty(" var ").IsVar() {
		t.Fatalf("var annotation not detected")
	}
	if Ty("var").IsInferred() || !Ty("").IsInferred() {
		t.Fatalf("inferred annotation misdetected")
	}
	if Ty("int").IsVar() || Ty("int").IsInferred() {
		t.Fatalf("plain type misdetected")
	}
	if Ty("variable").IsVar() {
		t.Fatalf("prefix mistaken for var")
	}
}
