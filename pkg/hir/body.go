// Package hir holds the lowered form of Java sources that the checker
// consumes: flat per-body statement and expression arenas, the per-file
// item tree, and name resolution over both. Lowering is deliberately
// loose. Malformed source still produces a body, with Invalid and
// Missing nodes standing in for the parts that could not be read, so
// checking always has something to walk.
package hir

import (
	"strings"

	"javasem/analyzer-go/pkg/types"
)

// ExprID indexes an expression in a Body. Ids are dense and allocated in
// lowering order, so the same source always yields the same ids.
type ExprID int32

// StmtID indexes a statement in a Body.
type StmtID int32

// LocalID indexes a variable slot in a Body. Method parameters, local
// declarations, catch parameters, for-each variables and lambda
// parameters all occupy slots in the same arena.
type LocalID int32

// Sentinels for absent children.
const (
	NoExpr  ExprID  = -1
	NoStmt  StmtID  = -1
	NoLocal LocalID = -1
)

// TypeRef is a type annotation exactly as written in source, generics and
// array suffixes included. Resolution happens later, against the scope the
// reference appears in.
type TypeRef struct {
	Text string
	Span types.Span
}

// IsVar reports whether the annotation is the `var` marker. Whether that
// means inference or a type named var depends on the language level.
func (r TypeRef) IsVar() bool { return strings.TrimSpace(r.Text) == "var" }

// IsInferred reports whether the annotation was omitted entirely, as for
// lambda parameters.
func (r TypeRef) IsInferred() bool { return strings.TrimSpace(r.Text) == "" }

// Local is one declared variable slot.
type Local struct {
	Name     string
	NameSpan types.Span
	Type     TypeRef // zero Text when the type is inferred
	Span     types.Span
}

// Body is the lowered form of one executable body: a method or constructor
// body, a field initializer, or an initializer block. Nodes live in flat
// arenas indexed by their ids; spans are kept in parallel slices.
//
// Exactly one of Root and RootExpr is set: statement bodies root at a
// block, initializer-expression bodies at a single expression.
type Body struct {
	exprs     []ExprData
	stmts     []StmtData
	exprSpans []types.Span
	stmtSpans []types.Span
	locals    []Local
	params    []LocalID
	root      StmtID
	rootExpr  ExprID
}

// Expr returns the node for id, which must be valid.
func (b *Body) Expr(id ExprID) ExprData { return b.exprs[id] }

// Stmt returns the node for id, which must be valid.
func (b *Body) Stmt(id StmtID) StmtData { return b.stmts[id] }

// Local returns the slot for id, which must be valid.
func (b *Body) Local(id LocalID) Local { return b.locals[id] }

// ExprSpan returns the source span of an expression.
func (b *Body) ExprSpan(id ExprID) types.Span { return b.exprSpans[id] }

// StmtSpan returns the source span of a statement.
func (b *Body) StmtSpan(id StmtID) types.Span { return b.stmtSpans[id] }

// Params lists the parameter slots in declaration order.
func (b *Body) Params() []LocalID { return b.params }

// Root returns the root statement, or NoStmt for an expression body.
func (b *Body) Root() StmtID { return b.root }

// RootExpr returns the root expression, or NoExpr for a statement body.
func (b *Body) RootExpr() ExprID { return b.rootExpr }

// NumExprs returns the number of expressions in the body.
func (b *Body) NumExprs() int { return len(b.exprs) }

// NumStmts returns the number of statements in the body.
func (b *Body) NumStmts() int { return len(b.stmts) }

// NumLocals returns the number of variable slots in the body.
func (b *Body) NumLocals() int { return len(b.locals) }

// ExprAt returns the smallest expression whose span contains the byte
// offset, or NoExpr. Ties go to the earlier node; children allocate
// before their parents, so that is the inner one.
func (b *Body) ExprAt(offset uint32) ExprID {
	best := NoExpr
	for i, sp := range b.exprSpans {
		if !sp.Contains(offset) {
			continue
		}
		if best == NoExpr || sp.Len() < b.exprSpans[best].Len() {
			best = ExprID(i)
		}
	}
	return best
}

// BodyBuilder assembles a Body. Ids are handed out in call order; use one
// builder per body and do not reuse it after Finish.
type BodyBuilder struct {
	body   Body
	cursor uint32
}

// NewBodyBuilder returns an empty builder.
func NewBodyBuilder() *BodyBuilder {
	return &BodyBuilder{body: Body{root: NoStmt, rootExpr: NoExpr}}
}

// AddExpr appends an expression node with an explicit span.
func (b *BodyBuilder) AddExpr(data ExprData, span types.Span) ExprID {
	b.body.exprs = append(b.body.exprs, data)
	b.body.exprSpans = append(b.body.exprSpans, span)
	return ExprID(len(b.body.exprs) - 1)
}

// AddStmt appends a statement node with an explicit span.
func (b *BodyBuilder) AddStmt(data StmtData, span types.Span) StmtID {
	b.body.stmts = append(b.body.stmts, data)
	b.body.stmtSpans = append(b.body.stmtSpans, span)
	return StmtID(len(b.body.stmts) - 1)
}

// AddLocal appends a variable slot.
func (b *BodyBuilder) AddLocal(l Local) LocalID {
	b.body.locals = append(b.body.locals, l)
	return LocalID(len(b.body.locals) - 1)
}

// AddParam appends a variable slot and registers it as a parameter.
func (b *BodyBuilder) AddParam(l Local) LocalID {
	id := b.AddLocal(l)
	b.body.params = append(b.body.params, id)
	return id
}

// Finish seals the builder into a statement body rooted at root.
func (b *BodyBuilder) Finish(root StmtID) *Body {
	b.body.root = root
	out := b.body
	return &out
}

// FinishExpr seals the builder into an expression body rooted at root.
func (b *BodyBuilder) FinishExpr(root ExprID) *Body {
	b.body.rootExpr = root
	out := b.body
	return &out
}

// ExprData is implemented by every expression node.
type ExprData interface{ isExpr() }

// StmtData is implemented by every statement node.
type StmtData interface{ isStmt() }

// LiteralKind says which literal grammar produced a LiteralExpr.
type LiteralKind string

const (
	LitInt       LiteralKind = "int"
	LitLong      LiteralKind = "long"
	LitFloat     LiteralKind = "float"
	LitDouble    LiteralKind = "double"
	LitChar      LiteralKind = "char"
	LitString    LiteralKind = "string"
	LitTextBlock LiteralKind = "text-block"
	LitBool      LiteralKind = "bool"
)

// UnaryOp is a prefix or postfix operator spelling.
type UnaryOp string

const (
	UnaryPlus   UnaryOp = "+"
	UnaryMinus  UnaryOp = "-"
	UnaryNot    UnaryOp = "!"
	UnaryBitNot UnaryOp = "~"
	UnaryInc    UnaryOp = "++"
	UnaryDec    UnaryOp = "--"
)

// AssignOp is an assignment operator spelling.
type AssignOp string

const (
	AssignSet  AssignOp = "="
	AssignAdd  AssignOp = "+="
	AssignSub  AssignOp = "-="
	AssignMul  AssignOp = "*="
	AssignDiv  AssignOp = "/="
	AssignRem  AssignOp = "%="
	AssignAnd  AssignOp = "&="
	AssignOr   AssignOp = "|="
	AssignXor  AssignOp = "^="
	AssignShl  AssignOp = "<<="
	AssignShr  AssignOp = ">>="
	AssignUShr AssignOp = ">>>="
)

// NameExpr is an unqualified identifier in expression position.
type NameExpr struct {
	Name string
}

// LiteralExpr keeps the raw source text of a literal. The checker parses
// the value itself so it can diagnose malformed and out-of-range spellings.
type LiteralExpr struct {
	Kind LiteralKind
	Text string
}

// NullExpr is the null literal.
type NullExpr struct{}

// ThisExpr is a bare `this`.
type ThisExpr struct{}

// SuperExpr appears only as a call callee or member-access receiver.
type SuperExpr struct{}

// FieldAccessExpr is `receiver.name`. Qualified type names arrive as
// nested field accesses; the checker works out which prefix is a package
// or type.
type FieldAccessExpr struct {
	Receiver ExprID
	Name     string
	NameSpan types.Span
}

// IndexExpr is `array[index]`.
type IndexExpr struct {
	Array ExprID
	Index ExprID
}

// CallExpr is any invocation. The callee shape decides the form: a
// NameExpr callee is an unqualified call, a FieldAccessExpr callee a
// receiver call, and a ThisExpr or SuperExpr callee an explicit
// constructor invocation.
type CallExpr struct {
	Callee   ExprID
	Args     []ExprID
	TypeArgs []TypeRef
}

// NewExpr is `new C(args)`. Diamond is set for `new C<>(...)`; any written
// type arguments stay in the class text.
type NewExpr struct {
	Class   TypeRef
	Diamond bool
	Args    []ExprID
}

// NewArrayExpr is `new T[d0][d1][]...` or `new T[]{...}`. Dims holds the
// sized dimensions, ExtraDims the trailing empty bracket pairs.
type NewArrayExpr struct {
	Elem      TypeRef
	Dims      []ExprID
	ExtraDims int
	Init      ExprID // NoExpr unless a brace initializer follows
}

// ArrayInitExpr is a brace initializer `{a, b, c}`.
type ArrayInitExpr struct {
	Elems []ExprID
}

// UnaryExpr covers the prefix operators and, with Postfix set, the postfix
// increment and decrement forms.
type UnaryExpr struct {
	Op      UnaryOp
	Operand ExprID
	Postfix bool
}

// BinaryExpr is an infix operation. Operators keep their source spelling.
type BinaryExpr struct {
	Op    string
	Left  ExprID
	Right ExprID
}

// AssignExpr is a simple or compound assignment.
type AssignExpr struct {
	Op     AssignOp
	Target ExprID
	Value  ExprID
}

// CondExpr is the ternary `cond ? then : else`.
type CondExpr struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

// CastExpr is `(T) expr`.
type CastExpr struct {
	Type TypeRef
	Expr ExprID
}

// InstanceofExpr is `expr instanceof T`.
type InstanceofExpr struct {
	Expr ExprID
	Type TypeRef
}

// MethodRefExpr is `receiver::name`.
type MethodRefExpr struct {
	Receiver ExprID
	Name     string
	NameSpan types.Span
}

// CtorRefExpr is `receiver::new`.
type CtorRefExpr struct {
	Receiver ExprID
}

// ClassLiteralExpr is `T.class`. The target is the type lowered as an
// expression, usually a name or field-access chain.
type ClassLiteralExpr struct {
	Target ExprID
}

// LambdaExpr is `(params) -> body`. Parameter slots usually carry no type
// text. Exactly one of Expr and Block is set.
type LambdaExpr struct {
	Params []LocalID
	Expr   ExprID
	Block  StmtID
}

// SwitchExpr is a switch in value position. Arrow arms yield their value
// expression; block and colon arms yield through yield statements.
type SwitchExpr struct {
	Selector ExprID
	Arms     []SwitchArm
}

// InvalidExpr wraps the children of a source region lowering could not
// interpret. Children are still checked so their diagnostics survive.
type InvalidExpr struct {
	Children []ExprID
}

// MissingExpr stands in for a syntax hole left by a parse error.
type MissingExpr struct{}

// SwitchArm is one case or default group of a switch statement or
// expression. Arrow arms with an expression result carry it in Value;
// block and colon-form groups carry their statements in Body.
type SwitchArm struct {
	Labels  []ExprID // empty for default
	Default bool
	Value   ExprID // NoExpr unless an arrow arm yields an expression
	Body    []StmtID
	Span    types.Span
}

// BlockStmt is `{ ... }`.
type BlockStmt struct {
	Stmts []StmtID
}

// LocalDeclStmt declares one local. Multi-declarator statements lower to a
// run of single declarations.
type LocalDeclStmt struct {
	Local LocalID
	Init  ExprID // NoExpr when absent
}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	Expr ExprID
}

// ReturnStmt is `return` with or without a value.
type ReturnStmt struct {
	Value ExprID // NoExpr for a bare return
}

// IfStmt is `if (cond) then else els`.
type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmt when absent
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

// ForStmt is the classic three-part loop. Init holds declarations or
// expression statements.
type ForStmt struct {
	Init   []StmtID
	Cond   ExprID // NoExpr for an infinite loop
	Update []ExprID
	Body   StmtID
}

// ForEachStmt is `for (T x : iterable) body`.
type ForEachStmt struct {
	Local    LocalID
	Iterable ExprID
	Body     StmtID
}

// SwitchStmt is a switch in statement position.
type SwitchStmt struct {
	Selector ExprID
	Arms     []SwitchArm
}

// YieldStmt produces the value of the enclosing switch expression.
type YieldStmt struct {
	Value ExprID
}

// BreakStmt is an unlabeled break.
type BreakStmt struct{}

// ContinueStmt is an unlabeled continue.
type ContinueStmt struct{}

// ThrowStmt is `throw value`.
type ThrowStmt struct {
	Value ExprID
}

// TryStmt is try/catch/finally.
type TryStmt struct {
	Body    StmtID
	Catches []CatchClause
	Finally StmtID // NoStmt when absent
}

// CatchClause is one catch arm. Multi-catch keeps the union in the
// parameter's type text.
type CatchClause struct {
	Param LocalID
	Body  StmtID
	Span  types.Span
}

// SyncStmt is `synchronized (lock) body`.
type SyncStmt struct {
	Lock ExprID
	Body StmtID
}

// AssertStmt is `assert cond` or `assert cond : message`.
type AssertStmt struct {
	Cond    ExprID
	Message ExprID // NoExpr when absent
}

// EmptyStmt is a stray semicolon.
type EmptyStmt struct{}

func (*NameExpr) isExpr()         {}
func (*LiteralExpr) isExpr()      {}
func (*NullExpr) isExpr()         {}
func (*ThisExpr) isExpr()         {}
func (*SuperExpr) isExpr()        {}
func (*FieldAccessExpr) isExpr()  {}
func (*IndexExpr) isExpr()        {}
func (*CallExpr) isExpr()         {}
func (*NewExpr) isExpr()          {}
func (*NewArrayExpr) isExpr()     {}
func (*ArrayInitExpr) isExpr()    {}
func (*UnaryExpr) isExpr()        {}
func (*BinaryExpr) isExpr()       {}
func (*AssignExpr) isExpr()       {}
func (*CondExpr) isExpr()         {}
func (*CastExpr) isExpr()         {}
func (*InstanceofExpr) isExpr()   {}
func (*MethodRefExpr) isExpr()    {}
func (*CtorRefExpr) isExpr()      {}
func (*ClassLiteralExpr) isExpr() {}
func (*LambdaExpr) isExpr()       {}
func (*SwitchExpr) isExpr()       {}
func (*InvalidExpr) isExpr()      {}
func (*MissingExpr) isExpr()      {}

func (*BlockStmt) isStmt()     {}
func (*LocalDeclStmt) isStmt() {}
func (*ExprStmt) isStmt()      {}
func (*ReturnStmt) isStmt()    {}
func (*IfStmt) isStmt()        {}
func (*WhileStmt) isStmt()     {}
func (*ForStmt) isStmt()       {}
func (*ForEachStmt) isStmt()   {}
func (*SwitchStmt) isStmt()    {}
func (*YieldStmt) isStmt()     {}
func (*BreakStmt) isStmt()     {}
func (*ContinueStmt) isStmt()  {}
func (*ThrowStmt) isStmt()     {}
func (*TryStmt) isStmt()       {}
func (*SyncStmt) isStmt()      {}
func (*EmptyStmt) isStmt()     {}
func (*AssertStmt) isStmt()    {}
