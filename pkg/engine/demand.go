package engine

import (
	"fmt"

	"javasem/analyzer-go/pkg/hir"
)

// bodyMaps relates every node to its typing boundary. exprOwner gives the
// statement whose check types an expression; stmtOwner gives the lambda
// or switch expression a statement lives inside, NoExpr at the top level.
type bodyMaps struct {
	exprOwner []hir.StmtID
	stmtOwner []hir.ExprID
}

func buildBodyMaps(b *hir.Body) *bodyMaps {
	m := &bodyMaps{
		exprOwner: make([]hir.StmtID, b.NumExprs()),
		stmtOwner: make([]hir.ExprID, b.NumStmts()),
	}
	for i := range m.exprOwner {
		m.exprOwner[i] = hir.NoStmt
	}
	for i := range m.stmtOwner {
		m.stmtOwner[i] = hir.NoExpr
	}
	if b.Root() != hir.NoStmt {
		m.walkStmt(b, b.Root(), hir.NoExpr)
	}
	if b.RootExpr() != hir.NoExpr {
		m.walkExpr(b, b.RootExpr(), hir.NoStmt)
	}
	return m
}

// boundary returns the statement a demand check must run to type expr:
// the owning statement, hoisted out of any enclosing lambda or switch
// expression since those type together with their owner.
func (m *bodyMaps) boundary(e hir.ExprID) hir.StmtID {
	if e == hir.NoExpr || int(e) >= len(m.exprOwner) {
		return hir.NoStmt
	}
	s := m.exprOwner[e]
	for s != hir.NoStmt {
		owner := m.stmtOwner[s]
		if owner == hir.NoExpr {
			return s
		}
		s = m.exprOwner[owner]
	}
	return hir.NoStmt
}

func (m *bodyMaps) walkStmt(b *hir.Body, id hir.StmtID, owner hir.ExprID) {
	if id == hir.NoStmt {
		return
	}
	m.stmtOwner[id] = owner
	switch s := b.Stmt(id).(type) {
	case *hir.BlockStmt:
		for _, st := range s.Stmts {
			m.walkStmt(b, st, owner)
		}
	case *hir.LocalDeclStmt:
		m.walkExpr(b, s.Init, id)
	case *hir.ExprStmt:
		m.walkExpr(b, s.Expr, id)
	case *hir.ReturnStmt:
		m.walkExpr(b, s.Value, id)
	case *hir.IfStmt:
		m.walkExpr(b, s.Cond, id)
		m.walkStmt(b, s.Then, owner)
		m.walkStmt(b, s.Else, owner)
	case *hir.WhileStmt:
		m.walkExpr(b, s.Cond, id)
		m.walkStmt(b, s.Body, owner)
	case *hir.ForStmt:
		for _, st := range s.Init {
			m.walkStmt(b, st, owner)
		}
		m.walkExpr(b, s.Cond, id)
		for _, u := range s.Update {
			m.walkExpr(b, u, id)
		}
		m.walkStmt(b, s.Body, owner)
	case *hir.ForEachStmt:
		m.walkExpr(b, s.Iterable, id)
		m.walkStmt(b, s.Body, owner)
	case *hir.SwitchStmt:
		m.walkExpr(b, s.Selector, id)
		for _, arm := range s.Arms {
			for _, l := range arm.Labels {
				m.walkExpr(b, l, id)
			}
			m.walkExpr(b, arm.Value, id)
			for _, st := range arm.Body {
				m.walkStmt(b, st, owner)
			}
		}
	case *hir.YieldStmt:
		m.walkExpr(b, s.Value, id)
	case *hir.ThrowStmt:
		m.walkExpr(b, s.Value, id)
	case *hir.TryStmt:
		m.walkStmt(b, s.Body, owner)
		for _, cl := range s.Catches {
			m.walkStmt(b, cl.Body, owner)
		}
		m.walkStmt(b, s.Finally, owner)
	case *hir.SyncStmt:
		m.walkExpr(b, s.Lock, id)
		m.walkStmt(b, s.Body, owner)
	case *hir.AssertStmt:
		m.walkExpr(b, s.Cond, id)
		m.walkExpr(b, s.Message, id)
	}
}

func (m *bodyMaps) walkExpr(b *hir.Body, id hir.ExprID, stmt hir.StmtID) {
	if id == hir.NoExpr {
		return
	}
	m.exprOwner[id] = stmt
	switch e := b.Expr(id).(type) {
	case *hir.FieldAccessExpr:
		m.walkExpr(b, e.Receiver, stmt)
	case *hir.IndexExpr:
		m.walkExpr(b, e.Array, stmt)
		m.walkExpr(b, e.Index, stmt)
	case *hir.CallExpr:
		m.walkExpr(b, e.Callee, stmt)
		for _, a := range e.Args {
			m.walkExpr(b, a, stmt)
		}
	case *hir.NewExpr:
		for _, a := range e.Args {
			m.walkExpr(b, a, stmt)
		}
	case *hir.NewArrayExpr:
		for _, d := range e.Dims {
			m.walkExpr(b, d, stmt)
		}
		m.walkExpr(b, e.Init, stmt)
	case *hir.ArrayInitExpr:
		for _, el := range e.Elems {
			m.walkExpr(b, el, stmt)
		}
	case *hir.UnaryExpr:
		m.walkExpr(b, e.Operand, stmt)
	case *hir.BinaryExpr:
		m.walkExpr(b, e.Left, stmt)
		m.walkExpr(b, e.Right, stmt)
	case *hir.AssignExpr:
		m.walkExpr(b, e.Target, stmt)
		m.walkExpr(b, e.Value, stmt)
	case *hir.CondExpr:
		m.walkExpr(b, e.Cond, stmt)
		m.walkExpr(b, e.Then, stmt)
		m.walkExpr(b, e.Else, stmt)
	case *hir.CastExpr:
		m.walkExpr(b, e.Expr, stmt)
	case *hir.InstanceofExpr:
		m.walkExpr(b, e.Expr, stmt)
	case *hir.MethodRefExpr:
		m.walkExpr(b, e.Receiver, stmt)
	case *hir.CtorRefExpr:
		m.walkExpr(b, e.Receiver, stmt)
	case *hir.ClassLiteralExpr:
		m.walkExpr(b, e.Target, stmt)
	case *hir.LambdaExpr:
		m.walkExpr(b, e.Expr, stmt)
		m.walkStmt(b, e.Block, id)
	case *hir.SwitchExpr:
		m.walkExpr(b, e.Selector, stmt)
		for _, arm := range e.Arms {
			for _, l := range arm.Labels {
				m.walkExpr(b, l, stmt)
			}
			m.walkExpr(b, arm.Value, stmt)
			for _, st := range arm.Body {
				m.walkStmt(b, st, id)
			}
		}
	case *hir.InvalidExpr:
		for _, ch := range e.Children {
			m.walkExpr(b, ch, stmt)
		}
	}
}

// demandCheck types only the boundary statement containing expr. An
// expression the boundary never reaches, a lambda body with no target for
// one, stays untyped, exactly as a full check would leave it.
func (s *Snapshot) demandCheck(ref BodyRef, expr hir.ExprID) (*checker, error) {
	base, err := s.ensureBase()
	if err != nil {
		return nil, err
	}
	c, err := newChecker(s, base, ref)
	if err != nil {
		return nil, err
	}
	if expr == hir.NoExpr || int(expr) >= c.body.NumExprs() {
		return nil, fmt.Errorf("no expression %d in %s.%s", expr, ref.Type, ref.Name)
	}
	s.stats.demandChecks.Add(1)
	if c.body.Root() == hir.NoStmt {
		// An expression body types as a whole in any mode.
		return c, c.checkAll()
	}
	c.skipNested = true
	if b := buildBodyMaps(c.body).boundary(expr); b != hir.NoStmt {
		if err := c.checkStmt(b); err != nil {
			return nil, err
		}
	}
	return c, nil
}
