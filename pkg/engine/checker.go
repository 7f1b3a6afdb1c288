package engine

import (
	"fmt"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/jdk"
	"javasem/analyzer-go/pkg/loader"
	"javasem/analyzer-go/pkg/types"
)

// checker runs the body checker over one lowered body against one store
// clone. Expression types, constant values and call resolutions memoize
// per node, and local slots resolve lazily with a computing marker so
// the full walk and the demand path share one inference core. Nothing
// here is safe for concurrent use; each check owns its checker.
type checker struct {
	snap   *Snapshot
	base   *baseState
	store  *types.Store
	ld     *loader.Loader
	body   *hir.Body
	scopes *hir.ExprScopes
	owner  ownerInfo
	refs   *refEnv

	exprTypes  []types.Type
	exprConsts []*types.ConstValue
	calls      map[hir.ExprID]*types.ResolvedMethod
	reinferred map[hir.ExprID]bool

	denotTypes map[hir.ExprID]types.Type
	denotPkgs  map[hir.ExprID]string
	assignable map[hir.ExprID]bool

	localStates []localState
	localTypes  []types.Type
	localSites  []declSite

	enclosing []enclosingCtx
	retStack  []retCtx
	yields    []*switchSink

	ctorCallOK hir.ExprID // the one explicit constructor invocation allowed

	skipNested bool // demand mode: do not descend into nested statements

	diags []types.Diagnostic
	steps int
}

type localState uint8

const (
	localUncomputed localState = iota
	localComputing
	localComputed
)

type declKind uint8

const (
	declParam declKind = iota
	declLocal
	declForEach
	declCatch
	declLambda
)

// declSite records where a local slot was declared, for lazy typing.
type declSite struct {
	kind  declKind
	stmt  hir.StmtID
	expr  hir.ExprID
	index int
}

// enclosingCtx is one type of the lexical nesting chain, innermost
// first, with whether an instance of it is reachable from the body.
type enclosingCtx struct {
	typ       types.ClassType
	decl      *hir.TypeDecl
	reachable bool
}

type retKind uint8

const (
	retMethod retKind = iota
	retLambda
)

// retCtx is one frame of the return-target stack: the body's own frame
// at the bottom, one more per enclosing lambda block.
type retCtx struct {
	kind retKind
	t    types.Type // nil when returning a value is not allowed
}

// switchSink collects the arm results of one switch expression.
type switchSink struct {
	expected types.Type
	results  []armResult
}

type armResult struct {
	t    types.Type
	span types.Span
}

// ownerInfo is the declaration context of a checked body.
type ownerInfo struct {
	ref      BodyRef
	item     *TypeItem
	id       types.ClassID
	thisType types.ClassType
	static   bool
	isCtor   bool
	isInit   bool       // initializer block or field initializer
	ret      types.Type // nil when the context cannot return a value
	params   []types.Type
	fieldT   types.Type // declared type of a field-initializer body
}

// newChecker locates the body named by ref and prepares a checker over a
// fresh clone of the base store, gated by the owning module.
func newChecker(s *Snapshot, base *baseState, ref BodyRef) (*checker, error) {
	it, ok := s.defs.Lookup(ref.Type)
	if !ok {
		return nil, fmt.Errorf("no workspace type %q", ref.Type)
	}
	if jdk.IsReservedName(ref.Type) && s.jdk.HasType(ref.Type) {
		return nil, fmt.Errorf("type %q is owned by the platform", ref.Type)
	}
	store := base.store.Clone()
	s.pruneInvisible(store, it.Module)
	id, found := store.Lookup(ref.Type)
	if !found {
		return nil, fmt.Errorf("type %q was never interned", ref.Type)
	}
	def := store.Class(id)
	if def == nil {
		return nil, fmt.Errorf("type %q has no definition", ref.Type)
	}

	owner := ownerInfo{ref: ref, item: it, id: id, thisType: selfRef(store, id)}
	var body *hir.Body
	decl := it.Decl
	switch ref.Kind {
	case MemberMethod:
		if ref.Index < 0 || ref.Index >= len(decl.Methods) {
			return nil, fmt.Errorf("%s has no method #%d", ref.Type, ref.Index)
		}
		m := &decl.Methods[ref.Index]
		if ref.Name != "" && m.Name != ref.Name {
			return nil, fmt.Errorf("%s method #%d is %q, not %q", ref.Type, ref.Index, m.Name, ref.Name)
		}
		if m.Body == nil {
			return nil, fmt.Errorf("%s.%s has no body", ref.Type, m.Name)
		}
		body = m.Body
		owner.static = m.Modifiers.IsStatic()
		if ref.Index < len(def.Methods) {
			owner.ret = def.Methods[ref.Index].Return
			owner.params = def.Methods[ref.Index].Params
		}
	case MemberCtor:
		if ref.Index < 0 || ref.Index >= len(decl.Ctors) {
			return nil, fmt.Errorf("%s has no constructor #%d", ref.Type, ref.Index)
		}
		c := &decl.Ctors[ref.Index]
		if c.Body == nil {
			return nil, fmt.Errorf("%s constructor #%d has no body", ref.Type, ref.Index)
		}
		body = c.Body
		owner.isCtor = true
		if ref.Index < len(def.Constructors) {
			owner.params = def.Constructors[ref.Index].Params
		}
	case MemberInit:
		if ref.Index < 0 || ref.Index >= len(decl.Inits) {
			return nil, fmt.Errorf("%s has no initializer #%d", ref.Type, ref.Index)
		}
		body = decl.Inits[ref.Index].Body
		owner.isInit = true
		owner.static = decl.Inits[ref.Index].Static
	case MemberField:
		if ref.Index < 0 || ref.Index >= len(decl.Fields) {
			return nil, fmt.Errorf("%s has no field #%d", ref.Type, ref.Index)
		}
		f := &decl.Fields[ref.Index]
		if ref.Name != "" && f.Name != ref.Name {
			return nil, fmt.Errorf("%s field #%d is %q, not %q", ref.Type, ref.Index, f.Name, ref.Name)
		}
		if f.Init == nil {
			return nil, fmt.Errorf("%s.%s has no initializer", ref.Type, f.Name)
		}
		body = f.Init
		owner.isInit = true
		owner.static = f.Modifiers.IsStatic() || def.IsInterface
		if ref.Index < len(def.Fields) {
			owner.fieldT = def.Fields[ref.Index].Type
		}
	default:
		return nil, fmt.Errorf("unknown member kind %q", ref.Kind)
	}

	c := &checker{
		snap:        s,
		base:        base,
		store:       store,
		body:        body,
		scopes:      hir.BuildScopes(body),
		owner:       owner,
		exprTypes:   make([]types.Type, body.NumExprs()),
		exprConsts:  make([]*types.ConstValue, body.NumExprs()),
		calls:       make(map[hir.ExprID]*types.ResolvedMethod),
		reinferred:  make(map[hir.ExprID]bool),
		denotTypes:  make(map[hir.ExprID]types.Type),
		denotPkgs:   make(map[hir.ExprID]string),
		assignable:  make(map[hir.ExprID]bool),
		localStates: make([]localState, body.NumLocals()),
		localTypes:  make([]types.Type, body.NumLocals()),
		ctorCallOK:  hir.NoExpr,
	}
	c.ld = s.newLoader(store, it.Module)
	c.refs = &refEnv{
		resolver: base.resolvers[it.File.Path],
		loader:   c.ld,
		report:   func(d types.Diagnostic) { c.diags = append(c.diags, d) },
	}
	for _, vars := range s.visibleEnclosingVars(base, it) {
		c.refs.pushVars(vars)
	}
	if vars, ok := base.source.ClassVars[ref.Type]; ok {
		c.refs.pushVars(vars)
	}
	if vars, ok := base.source.MethodVars[BodyRef{Type: ref.Type, Kind: ref.Kind, Name: ref.Name, Index: ref.Index}]; ok {
		c.refs.pushVars(vars)
	}

	c.buildEnclosing()
	c.buildLocalSites()
	c.retStack = []retCtx{{kind: retMethod, t: owner.ret}}
	if owner.isCtor {
		c.ctorCallOK = firstCtorCall(body)
	}
	return c, nil
}

// selfRef builds the self-view of a class: its own type parameters as
// arguments.
func selfRef(env types.Env, id types.ClassID) types.ClassType {
	def := env.Class(id)
	if def == nil || len(def.TypeParams) == 0 {
		return types.ClassType{Class: id}
	}
	args := make([]types.Type, len(def.TypeParams))
	for i, v := range def.TypeParams {
		args[i] = types.TypeVarType{Var: v}
	}
	return types.ClassType{Class: id, Args: args}
}

// buildEnclosing computes the lexical nesting chain, innermost first,
// and whether each level's instance is reachable from this body.
func (c *checker) buildEnclosing() {
	reachable := !c.owner.static
	c.enclosing = append(c.enclosing, enclosingCtx{
		typ:       c.owner.thisType,
		decl:      c.owner.item.Decl,
		reachable: reachable,
	})
	cur := c.owner.item.Decl
	chain := enclosingBinaries(c.owner.ref.Type)
	for i := len(chain) - 1; i >= 0; i-- {
		reachable = reachable && !staticNested(cur)
		outer, ok := c.snap.defs.Lookup(chain[i])
		if !ok {
			break
		}
		oid, found := c.store.Lookup(chain[i])
		if !found {
			break
		}
		c.enclosing = append(c.enclosing, enclosingCtx{
			typ:       selfRef(c.store, oid),
			decl:      outer.Decl,
			reachable: reachable,
		})
		cur = outer.Decl
	}
}

// buildLocalSites records where every local slot is declared so lazy
// typing can find its way back.
func (c *checker) buildLocalSites() {
	c.localSites = make([]declSite, c.body.NumLocals())
	for i, p := range c.body.Params() {
		c.localSites[p] = declSite{kind: declParam, index: i}
	}
	for i := 0; i < c.body.NumStmts(); i++ {
		id := hir.StmtID(i)
		switch s := c.body.Stmt(id).(type) {
		case *hir.LocalDeclStmt:
			c.localSites[s.Local] = declSite{kind: declLocal, stmt: id}
		case *hir.ForEachStmt:
			c.localSites[s.Local] = declSite{kind: declForEach, stmt: id}
		case *hir.TryStmt:
			for _, cl := range s.Catches {
				c.localSites[cl.Param] = declSite{kind: declCatch, stmt: id, index: int(cl.Param)}
			}
		}
	}
	for i := 0; i < c.body.NumExprs(); i++ {
		if lam, ok := c.body.Expr(hir.ExprID(i)).(*hir.LambdaExpr); ok {
			for j, p := range lam.Params {
				c.localSites[p] = declSite{kind: declLambda, expr: hir.ExprID(i), index: j}
			}
		}
	}
}

// firstCtorCall returns the explicit this(...)/super(...) invocation in
// first-statement position, or NoExpr.
func firstCtorCall(body *hir.Body) hir.ExprID {
	root := body.Root()
	if root == hir.NoStmt {
		return hir.NoExpr
	}
	block, ok := body.Stmt(root).(*hir.BlockStmt)
	if !ok || len(block.Stmts) == 0 {
		return hir.NoExpr
	}
	es, ok := body.Stmt(block.Stmts[0]).(*hir.ExprStmt)
	if !ok {
		return hir.NoExpr
	}
	if call, ok := body.Expr(es.Expr).(*hir.CallExpr); ok {
		switch body.Expr(call.Callee).(type) {
		case *hir.ThisExpr, *hir.SuperExpr:
			return es.Expr
		}
	}
	return hir.NoExpr
}

func (c *checker) tick() error {
	c.steps++
	if c.steps%checkpointEvery == 0 {
		return c.snap.checkErr()
	}
	return nil
}

func (c *checker) env() types.Env { return c.store }

func (c *checker) errAt(code string, span types.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if span.End > span.Start {
		c.diags = append(c.diags, types.ErrAt(code, msg, span))
	} else {
		c.diags = append(c.diags, types.Err(code, msg))
	}
}

func (c *checker) warnAt(code string, span types.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if span.End > span.Start {
		c.diags = append(c.diags, types.WarnAt(code, msg, span))
	} else {
		c.diags = append(c.diags, types.Warn(code, msg))
	}
}

func (c *checker) fmtType(t types.Type) string { return types.FormatType(c.store, t) }

func (c *checker) exprErr(code string, id hir.ExprID, format string, args ...any) {
	c.errAt(code, c.body.ExprSpan(id), format, args...)
}

// inStaticContext reports whether the body has no `this`.
func (c *checker) inStaticContext() bool { return c.owner.static }

// checkAll runs the full body walk.
func (c *checker) checkAll() error {
	if root := c.body.Root(); root != hir.NoStmt {
		return c.checkStmt(root)
	}
	if root := c.body.RootExpr(); root != hir.NoExpr {
		expected := c.owner.fieldT
		t, err := c.inferExpr(root, expected)
		if err != nil {
			return err
		}
		if expected != nil {
			c.checkAssignable(t, expected, root)
		}
		return nil
	}
	return nil
}

// checkAssignable reports a type-mismatch unless from converts to to by
// assignment conversion. Errorish sides stay silent to stop cascades.
func (c *checker) checkAssignable(from, to types.Type, at hir.ExprID) {
	if types.IsErrorish(from) || types.IsErrorish(to) {
		return
	}
	conv, ok := types.AssignmentConversion(c.env(), from, to, c.exprConsts[at])
	if !ok {
		c.exprErr("type-mismatch", at, "incompatible types: `%s` cannot be converted to `%s`", c.fmtType(from), c.fmtType(to))
		return
	}
	for _, w := range conv.Warnings {
		c.warnAt(w, c.body.ExprSpan(at), "unchecked conversion from `%s` to `%s`", c.fmtType(from), c.fmtType(to))
	}
}

// localType resolves a local slot's declared or inferred type, lazily
// and at most once. A slot observed while it is being computed is a
// self-referential `var` and comes back as Error.
func (c *checker) localType(id hir.LocalID) (types.Type, error) {
	if id == hir.NoLocal {
		return types.Error, nil
	}
	switch c.localStates[id] {
	case localComputed:
		return c.localTypes[id], nil
	case localComputing:
		local := c.body.Local(id)
		c.errAt("cyclic-var", local.NameSpan, "cannot infer type of `%s`: its initializer refers to itself", local.Name)
		c.localTypes[id] = types.Error
		c.localStates[id] = localComputed
		return types.Error, nil
	}
	site := c.localSites[id]
	if site.kind == declLambda {
		// Lambda parameters are bound when the lambda meets its target
		// type; until then the slot has no type of its own.
		return types.Unknown, nil
	}
	c.localStates[id] = localComputing
	t, err := c.computeLocalType(id, site)
	if err != nil {
		c.localStates[id] = localUncomputed
		return nil, err
	}
	// A cyclic initializer resolves the slot to Error mid-computation;
	// the first answer stays.
	if c.localStates[id] == localComputing {
		c.localTypes[id] = t
		c.localStates[id] = localComputed
	}
	return c.localTypes[id], nil
}

func (c *checker) computeLocalType(id hir.LocalID, site declSite) (types.Type, error) {
	local := c.body.Local(id)
	switch site.kind {
	case declParam:
		if site.index < len(c.owner.params) && c.owner.params[site.index] != nil {
			return c.owner.params[site.index], nil
		}
		return c.refs.resolveRef(local.Type)
	case declLocal:
		decl := c.body.Stmt(site.stmt).(*hir.LocalDeclStmt)
		if !local.Type.IsVar() {
			return c.refs.resolveRef(local.Type)
		}
		return c.inferVarLocal(local, decl.Init)
	case declForEach:
		fe := c.body.Stmt(site.stmt).(*hir.ForEachStmt)
		if !local.Type.IsVar() {
			return c.refs.resolveRef(local.Type)
		}
		it, err := c.inferExpr(fe.Iterable, nil)
		if err != nil {
			return nil, err
		}
		elem, ok := c.iterableElement(it)
		if !ok {
			return types.Error, nil
		}
		return elem, nil
	case declCatch:
		return c.refs.resolveRef(local.Type)
	}
	return types.Error, nil
}

// inferVarLocal applies the `var` rules to a declaration initializer.
func (c *checker) inferVarLocal(local hir.Local, init hir.ExprID) (types.Type, error) {
	if init == hir.NoExpr {
		c.errAt("var-cannot-infer", local.NameSpan, "cannot infer type of `%s`: no initializer", local.Name)
		return types.Error, nil
	}
	t, err := c.inferExpr(init, nil)
	if err != nil {
		return nil, err
	}
	switch c.body.Expr(init).(type) {
	case *hir.LambdaExpr, *hir.MethodRefExpr, *hir.CtorRefExpr:
		c.errAt("var-poly-expression", local.NameSpan, "cannot infer type of `%s`: the initializer needs an explicit target type", local.Name)
		return types.Error, nil
	}
	if types.IsVoid(t) {
		c.errAt("var-void-initializer", local.NameSpan, "cannot infer type of `%s`: the initializer is `void`", local.Name)
		return types.Error, nil
	}
	if types.IsNull(t) {
		c.errAt("var-cannot-infer", local.NameSpan, "cannot infer type of `%s`: the initializer is `null`", local.Name)
		return types.Error, nil
	}
	if types.IsErrorish(t) {
		return types.Error, nil
	}
	return types.InferVarType(t), nil
}

// iterableElement returns the element type an enhanced for loop iterates
// over: the component for arrays, the Iterable argument otherwise.
func (c *checker) iterableElement(t types.Type) (types.Type, bool) {
	if types.IsErrorish(t) {
		return types.Error, true
	}
	if arr, ok := t.(types.ArrayType); ok {
		return arr.Element, true
	}
	view := t
	if rv, ok := types.ReceiverView(c.env(), t); ok {
		view = rv
	}
	if ref, ok := view.(types.ClassType); ok {
		if inst, ok := types.InstantiateAs(c.env(), ref, c.store.WellKnown().Iterable); ok {
			if len(inst.Args) == 1 {
				return boundOfArg(c.env(), inst.Args[0]), true
			}
			return types.ClassType{Class: c.store.WellKnown().Object}, true
		}
	}
	return nil, false
}

// boundOfArg flattens a type argument to the type its values have.
func boundOfArg(env types.Env, a types.Type) types.Type {
	if w, ok := a.(types.WildcardType); ok {
		if w.Kind == types.WildcardExtends && w.Bound != nil {
			return w.Bound
		}
		return types.ClassType{Class: env.WellKnown().Object}
	}
	return a
}

func (c *checker) currentReturn() retCtx { return c.retStack[len(c.retStack)-1] }

func (c *checker) pushReturn(ctx retCtx) { c.retStack = append(c.retStack, ctx) }

func (c *checker) popReturn() { c.retStack = c.retStack[:len(c.retStack)-1] }

func (c *checker) pushSwitch(sink *switchSink) { c.yields = append(c.yields, sink) }

func (c *checker) popSwitch() { c.yields = c.yields[:len(c.yields)-1] }

func (c *checker) currentSwitch() *switchSink {
	if len(c.yields) == 0 {
		return nil
	}
	return c.yields[len(c.yields)-1]
}

func (c *checker) checkStmt(id hir.StmtID) error {
	if id == hir.NoStmt {
		return nil
	}
	if err := c.tick(); err != nil {
		return err
	}
	switch s := c.body.Stmt(id).(type) {
	case *hir.BlockStmt:
		if c.skipNested {
			return nil
		}
		for _, st := range s.Stmts {
			if err := c.checkStmt(st); err != nil {
				return err
			}
		}
	case *hir.LocalDeclStmt:
		return c.checkLocalDecl(s)
	case *hir.ExprStmt:
		return c.checkExprStmt(s.Expr)
	case *hir.ReturnStmt:
		return c.checkReturn(id, s)
	case *hir.IfStmt:
		if err := c.checkCondition(s.Cond); err != nil {
			return err
		}
		if c.skipNested {
			return nil
		}
		if err := c.checkStmt(s.Then); err != nil {
			return err
		}
		return c.checkStmt(s.Else)
	case *hir.WhileStmt:
		if err := c.checkCondition(s.Cond); err != nil {
			return err
		}
		if c.skipNested {
			return nil
		}
		return c.checkStmt(s.Body)
	case *hir.ForStmt:
		for _, st := range s.Init {
			if err := c.checkStmt(st); err != nil {
				return err
			}
		}
		if s.Cond != hir.NoExpr {
			if err := c.checkCondition(s.Cond); err != nil {
				return err
			}
		}
		for _, u := range s.Update {
			if err := c.checkExprStmt(u); err != nil {
				return err
			}
		}
		if c.skipNested {
			return nil
		}
		return c.checkStmt(s.Body)
	case *hir.ForEachStmt:
		return c.checkForEach(s)
	case *hir.SwitchStmt:
		return c.checkSwitchStmt(s)
	case *hir.YieldStmt:
		return c.checkYield(id, s)
	case *hir.BreakStmt, *hir.ContinueStmt, *hir.EmptyStmt:
	case *hir.ThrowStmt:
		t, err := c.inferExpr(s.Value, nil)
		if err != nil {
			return err
		}
		if !c.isThrowable(t) {
			c.exprErr("throw-not-throwable", s.Value, "thrown expression must be a `Throwable`, found `%s`", c.fmtType(t))
		}
	case *hir.TryStmt:
		return c.checkTry(s)
	case *hir.SyncStmt:
		t, err := c.inferExpr(s.Lock, nil)
		if err != nil {
			return err
		}
		if !types.IsErrorish(t) && !types.IsReference(t) && !types.IsNull(t) {
			c.exprErr("synchronized-not-reference", s.Lock, "`synchronized` needs a reference type, found `%s`", c.fmtType(t))
		}
		if c.skipNested {
			return nil
		}
		return c.checkStmt(s.Body)
	case *hir.AssertStmt:
		t, err := c.inferExpr(s.Cond, nil)
		if err != nil {
			return err
		}
		if !types.ConditionKind(c.env(), t) {
			c.exprErr("assert-not-boolean", s.Cond, "`assert` condition must be `boolean`, found `%s`", c.fmtType(t))
		}
		if s.Message != hir.NoExpr {
			if _, err := c.inferExpr(s.Message, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *checker) checkLocalDecl(s *hir.LocalDeclStmt) error {
	lt, err := c.localType(s.Local)
	if err != nil {
		return err
	}
	if s.Init == hir.NoExpr {
		return nil
	}
	local := c.body.Local(s.Local)
	if local.Type.IsVar() {
		// localType already walked the initializer under the var rules.
		return nil
	}
	expected := lt
	if types.IsErrorish(lt) {
		expected = nil
	}
	it, err := c.inferExpr(s.Init, expected)
	if err != nil {
		return err
	}
	c.checkAssignable(it, lt, s.Init)
	return nil
}

// checkExprStmt types an expression in statement position and enforces
// the statement-expression restriction.
func (c *checker) checkExprStmt(id hir.ExprID) error {
	if _, err := c.inferExpr(id, nil); err != nil {
		return err
	}
	switch e := c.body.Expr(id).(type) {
	case *hir.CallExpr, *hir.NewExpr, *hir.AssignExpr, *hir.InvalidExpr, *hir.MissingExpr:
		return nil
	case *hir.UnaryExpr:
		if e.Op == hir.UnaryInc || e.Op == hir.UnaryDec {
			return nil
		}
	}
	c.exprErr("invalid-statement-expression", id, "not a statement")
	return nil
}

func (c *checker) checkReturn(id hir.StmtID, s *hir.ReturnStmt) error {
	ctx := c.currentReturn()
	span := c.body.StmtSpan(id)

	if ctx.kind == retMethod && ctx.t == nil {
		if c.owner.isInit {
			if s.Value != hir.NoExpr {
				if _, err := c.inferExpr(s.Value, nil); err != nil {
					return err
				}
				c.errAt("return-in-initializer", span, "cannot return a value from an initializer")
			} else {
				c.errAt("return-in-initializer", span, "cannot return from an initializer")
			}
			return nil
		}
		// Constructor: bare return only.
		if s.Value != hir.NoExpr {
			if _, err := c.inferExpr(s.Value, nil); err != nil {
				return err
			}
			c.errAt("return-mismatch", span, "constructor cannot return a value")
		}
		return nil
	}

	if ctx.kind == retLambda && (ctx.t == nil || types.IsErrorish(ctx.t)) {
		if s.Value != hir.NoExpr {
			if _, err := c.inferExpr(s.Value, nil); err != nil {
				return err
			}
		}
		return nil
	}

	want := ctx.t
	if types.IsVoid(want) {
		if s.Value != hir.NoExpr {
			if _, err := c.inferExpr(s.Value, nil); err != nil {
				return err
			}
			c.errAt("return-mismatch", c.body.ExprSpan(s.Value), "cannot return a value from a `void` context")
		}
		return nil
	}
	if s.Value == hir.NoExpr {
		c.errAt("return-mismatch", span, "missing return value, expected `%s`", c.fmtType(want))
		return nil
	}
	got, err := c.inferExpr(s.Value, want)
	if err != nil {
		return err
	}
	if types.IsErrorish(got) || types.IsErrorish(want) {
		return nil
	}
	conv, ok := types.AssignmentConversion(c.env(), got, want, c.exprConsts[s.Value])
	if !ok {
		c.errAt("return-mismatch", c.body.ExprSpan(s.Value), "incompatible return value: `%s` cannot be converted to `%s`", c.fmtType(got), c.fmtType(want))
		return nil
	}
	for _, w := range conv.Warnings {
		c.warnAt(w, c.body.ExprSpan(s.Value), "unchecked conversion from `%s` to `%s`", c.fmtType(got), c.fmtType(want))
	}
	return nil
}

func (c *checker) checkCondition(id hir.ExprID) error {
	t, err := c.inferExpr(id, nil)
	if err != nil {
		return err
	}
	if !types.ConditionKind(c.env(), t) {
		c.exprErr("condition-not-boolean", id, "condition must be `boolean`, found `%s`", c.fmtType(t))
	}
	return nil
}

func (c *checker) checkForEach(s *hir.ForEachStmt) error {
	it, err := c.inferExpr(s.Iterable, nil)
	if err != nil {
		return err
	}
	lt, err := c.localType(s.Local)
	if err != nil {
		return err
	}
	elem, ok := c.iterableElement(it)
	if !ok {
		c.exprErr("type-mismatch", s.Iterable, "for-each needs an array or `java.lang.Iterable`, found `%s`", c.fmtType(it))
	} else if !types.IsErrorish(elem) && !types.IsErrorish(lt) {
		if _, convOK := types.AssignmentConversion(c.env(), elem, lt, nil); !convOK {
			local := c.body.Local(s.Local)
			c.errAt("type-mismatch", local.NameSpan, "incompatible types: `%s` cannot be converted to `%s`", c.fmtType(elem), c.fmtType(lt))
		}
	}
	if c.skipNested {
		return nil
	}
	return c.checkStmt(s.Body)
}

func (c *checker) checkTry(s *hir.TryStmt) error {
	if !c.skipNested {
		if err := c.checkStmt(s.Body); err != nil {
			return err
		}
	}
	for _, cl := range s.Catches {
		t, err := c.localType(cl.Param)
		if err != nil {
			return err
		}
		if !c.isThrowable(t) {
			local := c.body.Local(cl.Param)
			span := local.Type.Span
			if span.Len() == 0 {
				span = local.NameSpan
			}
			c.errAt("catch-not-throwable", span, "catch parameter must be a `Throwable`, found `%s`", c.fmtType(t))
		}
		if !c.skipNested {
			if err := c.checkStmt(cl.Body); err != nil {
				return err
			}
		}
	}
	if !c.skipNested {
		return c.checkStmt(s.Finally)
	}
	return nil
}

func (c *checker) isThrowable(t types.Type) bool {
	if types.IsErrorish(t) || types.IsNull(t) {
		return true
	}
	throwable := types.ClassType{Class: c.store.WellKnown().Throwable}
	return types.IsSubtype(c.env(), t, throwable)
}

func (c *checker) checkYield(id hir.StmtID, s *hir.YieldStmt) error {
	sink := c.currentSwitch()
	if sink == nil {
		if s.Value != hir.NoExpr {
			if _, err := c.inferExpr(s.Value, nil); err != nil {
				return err
			}
		}
		c.errAt("yield-outside-switch", c.body.StmtSpan(id), "`yield` outside a switch expression")
		return nil
	}
	t, err := c.inferExpr(s.Value, sink.expected)
	if err != nil {
		return err
	}
	sink.results = append(sink.results, armResult{t: t, span: c.body.ExprSpan(s.Value)})
	return nil
}

// checkSwitchStmt checks a statement switch: the selector, the labels
// against it, and every arm body.
func (c *checker) checkSwitchStmt(s *hir.SwitchStmt) error {
	sel, err := c.inferExpr(s.Selector, nil)
	if err != nil {
		return err
	}
	for _, arm := range s.Arms {
		if err := c.checkArmLabels(arm, sel); err != nil {
			return err
		}
		if arm.Value != hir.NoExpr {
			// Arrow statement arm: the value is evaluated for effect.
			if err := c.checkExprStmt(arm.Value); err != nil {
				return err
			}
		}
		if c.skipNested {
			continue
		}
		for _, st := range arm.Body {
			if err := c.checkStmt(st); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkArmLabels types case labels against the selector. Labels of an
// enum selector resolve as the enum's constants.
func (c *checker) checkArmLabels(arm hir.SwitchArm, sel types.Type) error {
	enumID, isEnum := c.enumClassOf(sel)
	for _, label := range arm.Labels {
		if isEnum {
			if name, ok := c.body.Expr(label).(*hir.NameExpr); ok {
				ref := types.ClassType{Class: enumID}
				if f, found := types.ResolveField(c.env(), ref, name.Name, types.CallStatic); found {
					c.exprTypes[label] = f.Type
					continue
				}
				c.exprErr("unresolved-name", label, "enum `%s` has no constant `%s`", c.store.ClassName(enumID), name.Name)
				c.exprTypes[label] = types.Error
				continue
			}
		}
		lt, err := c.inferExpr(label, nil)
		if err != nil {
			return err
		}
		if types.IsErrorish(lt) || types.IsErrorish(sel) || types.IsNull(lt) {
			continue
		}
		if _, ok := types.AssignmentConversion(c.env(), lt, sel, c.exprConsts[label]); !ok {
			c.exprErr("type-mismatch", label, "case label `%s` is not compatible with selector `%s`", c.fmtType(lt), c.fmtType(sel))
		}
	}
	return nil
}

// enumClassOf reports the enum class a selector type names, if any.
func (c *checker) enumClassOf(t types.Type) (types.ClassID, bool) {
	ref, ok := t.(types.ClassType)
	if !ok {
		return 0, false
	}
	enumID, found := c.store.Lookup("java.lang.Enum")
	if !found {
		return 0, false
	}
	def := c.store.Class(ref.Class)
	if def == nil {
		return 0, false
	}
	for _, sup := range def.Supertypes {
		if sref, ok := sup.(types.ClassType); ok && sref.Class == enumID {
			return ref.Class, true
		}
	}
	return 0, false
}
