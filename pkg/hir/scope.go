package hir

// ScopeID indexes a scope in an ExprScopes graph.
type ScopeID int32

// NoScope is the parent of the root scope and the scope of unreachable
// nodes.
const NoScope ScopeID = -1

// ScopeEntry binds a name to a variable slot.
type ScopeEntry struct {
	Name  string
	Local LocalID
}

// ScopeData is one link in a scope chain.
type ScopeData struct {
	Parent  ScopeID
	Entries []ScopeEntry
}

// ExprScopes maps every expression and statement of a body to the
// innermost scope covering it. Each declaration opens a fresh scope
// chained onto the previous one, so "declared before use" falls out of
// the chain shape with no position arithmetic.
type ExprScopes struct {
	scopes     []ScopeData
	exprScopes []ScopeID
	stmtScopes []ScopeID
	root       ScopeID
}

// BuildScopes computes the scope graph for a body. Parameters populate the
// root scope; a local is in scope inside its own initializer.
func BuildScopes(body *Body) *ExprScopes {
	res := &ExprScopes{
		exprScopes: make([]ScopeID, body.NumExprs()),
		stmtScopes: make([]ScopeID, body.NumStmts()),
	}
	for i := range res.exprScopes {
		res.exprScopes[i] = NoScope
	}
	for i := range res.stmtScopes {
		res.stmtScopes[i] = NoScope
	}
	b := &scopeBuilder{body: body, res: res}
	res.root = b.newScope(NoScope)
	for _, p := range body.Params() {
		b.addEntry(res.root, p)
	}
	if r := body.Root(); r != NoStmt {
		b.walkStmt(r, res.root)
	}
	if r := body.RootExpr(); r != NoExpr {
		b.walkExpr(r, res.root)
	}
	return res
}

// Root returns the scope holding the parameters.
func (s *ExprScopes) Root() ScopeID { return s.root }

// Scope returns the data for id, which must be valid.
func (s *ExprScopes) Scope(id ScopeID) ScopeData { return s.scopes[id] }

// ExprScope returns the scope covering an expression, or NoScope if the
// expression is not reachable from the body root.
func (s *ExprScopes) ExprScope(id ExprID) ScopeID { return s.exprScopes[id] }

// StmtScope returns the scope covering a statement.
func (s *ExprScopes) StmtScope(id StmtID) ScopeID { return s.stmtScopes[id] }

// Resolve looks name up from scope outward. Entries later in a scope
// shadow earlier ones.
func (s *ExprScopes) Resolve(scope ScopeID, name string) (LocalID, bool) {
	for scope != NoScope {
		entries := s.scopes[scope].Entries
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Name == name {
				return entries[i].Local, true
			}
		}
		scope = s.scopes[scope].Parent
	}
	return NoLocal, false
}

type scopeBuilder struct {
	body *Body
	res  *ExprScopes
}

func (b *scopeBuilder) newScope(parent ScopeID) ScopeID {
	b.res.scopes = append(b.res.scopes, ScopeData{Parent: parent})
	return ScopeID(len(b.res.scopes) - 1)
}

func (b *scopeBuilder) addEntry(scope ScopeID, local LocalID) {
	if local == NoLocal {
		return
	}
	sc := &b.res.scopes[scope]
	sc.Entries = append(sc.Entries, ScopeEntry{Name: b.body.Local(local).Name, Local: local})
}

// walkStmt records the statement's scope and returns the scope the next
// statement in the same sequence should use. Only declarations return a
// different scope than they were given.
func (b *scopeBuilder) walkStmt(id StmtID, scope ScopeID) ScopeID {
	b.res.stmtScopes[id] = scope
	switch s := b.body.Stmt(id).(type) {
	case *BlockStmt:
		inner := b.newScope(scope)
		for _, st := range s.Stmts {
			inner = b.walkStmt(st, inner)
		}
	case *LocalDeclStmt:
		inner := b.newScope(scope)
		b.addEntry(inner, s.Local)
		b.walkExpr(s.Init, inner)
		return inner
	case *ExprStmt:
		b.walkExpr(s.Expr, scope)
	case *ReturnStmt:
		b.walkExpr(s.Value, scope)
	case *IfStmt:
		b.walkExpr(s.Cond, scope)
		b.walkStmt(s.Then, b.newScope(scope))
		if s.Else != NoStmt {
			b.walkStmt(s.Else, b.newScope(scope))
		}
	case *WhileStmt:
		b.walkExpr(s.Cond, scope)
		b.walkStmt(s.Body, b.newScope(scope))
	case *ForStmt:
		inner := b.newScope(scope)
		for _, st := range s.Init {
			inner = b.walkStmt(st, inner)
		}
		b.walkExpr(s.Cond, inner)
		for _, u := range s.Update {
			b.walkExpr(u, inner)
		}
		b.walkStmt(s.Body, inner)
	case *ForEachStmt:
		b.walkExpr(s.Iterable, scope)
		inner := b.newScope(scope)
		b.addEntry(inner, s.Local)
		b.walkStmt(s.Body, inner)
	case *SwitchStmt:
		b.walkExpr(s.Selector, scope)
		b.walkArms(s.Arms, scope)
	case *YieldStmt:
		b.walkExpr(s.Value, scope)
	case *ThrowStmt:
		b.walkExpr(s.Value, scope)
	case *TryStmt:
		b.walkStmt(s.Body, b.newScope(scope))
		for _, c := range s.Catches {
			inner := b.newScope(scope)
			b.addEntry(inner, c.Param)
			b.walkStmt(c.Body, inner)
		}
		if s.Finally != NoStmt {
			b.walkStmt(s.Finally, b.newScope(scope))
		}
	case *SyncStmt:
		b.walkExpr(s.Lock, scope)
		b.walkStmt(s.Body, b.newScope(scope))
	case *AssertStmt:
		b.walkExpr(s.Cond, scope)
		b.walkExpr(s.Message, scope)
	}
	return scope
}

func (b *scopeBuilder) walkArms(arms []SwitchArm, scope ScopeID) {
	for _, arm := range arms {
		inner := b.newScope(scope)
		for _, l := range arm.Labels {
			b.walkExpr(l, inner)
		}
		b.walkExpr(arm.Value, inner)
		for _, st := range arm.Body {
			inner = b.walkStmt(st, inner)
		}
	}
}

func (b *scopeBuilder) walkExpr(id ExprID, scope ScopeID) {
	if id == NoExpr {
		return
	}
	b.res.exprScopes[id] = scope
	switch e := b.body.Expr(id).(type) {
	case *FieldAccessExpr:
		b.walkExpr(e.Receiver, scope)
	case *IndexExpr:
		b.walkExpr(e.Array, scope)
		b.walkExpr(e.Index, scope)
	case *CallExpr:
		b.walkExpr(e.Callee, scope)
		for _, a := range e.Args {
			b.walkExpr(a, scope)
		}
	case *NewExpr:
		for _, a := range e.Args {
			b.walkExpr(a, scope)
		}
	case *NewArrayExpr:
		for _, d := range e.Dims {
			b.walkExpr(d, scope)
		}
		b.walkExpr(e.Init, scope)
	case *ArrayInitExpr:
		for _, el := range e.Elems {
			b.walkExpr(el, scope)
		}
	case *UnaryExpr:
		b.walkExpr(e.Operand, scope)
	case *BinaryExpr:
		b.walkExpr(e.Left, scope)
		b.walkExpr(e.Right, scope)
	case *AssignExpr:
		b.walkExpr(e.Target, scope)
		b.walkExpr(e.Value, scope)
	case *CondExpr:
		b.walkExpr(e.Cond, scope)
		b.walkExpr(e.Then, scope)
		b.walkExpr(e.Else, scope)
	case *CastExpr:
		b.walkExpr(e.Expr, scope)
	case *InstanceofExpr:
		b.walkExpr(e.Expr, scope)
	case *MethodRefExpr:
		b.walkExpr(e.Receiver, scope)
	case *CtorRefExpr:
		b.walkExpr(e.Receiver, scope)
	case *ClassLiteralExpr:
		b.walkExpr(e.Target, scope)
	case *LambdaExpr:
		inner := b.newScope(scope)
		for _, p := range e.Params {
			b.addEntry(inner, p)
		}
		b.walkExpr(e.Expr, inner)
		if e.Block != NoStmt {
			b.walkStmt(e.Block, inner)
		}
	case *SwitchExpr:
		b.walkExpr(e.Selector, scope)
		b.walkArms(e.Arms, scope)
	case *InvalidExpr:
		for _, c := range e.Children {
			b.walkExpr(c, scope)
		}
	}
}
