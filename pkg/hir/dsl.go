package hir

import (
	"strconv"

	"javasem/analyzer-go/pkg/types"
)

// Short constructors for building bodies by hand, mostly in tests. Every
// leaf takes the next free byte range from the builder's cursor and
// composites cover their children, so hand-built bodies come out with
// distinct, ordered spans without anyone spelling offsets.

// Ty returns a spanless type annotation.
func Ty(text string) TypeRef { return TypeRef{Text: text} }

// TyAt returns a type annotation with an explicit span.
func TyAt(text string, start, end uint32) TypeRef {
	return TypeRef{Text: text, Span: types.NewSpan(start, end)}
}

// Refs turns type texts into spanless annotations.
func Refs(texts ...string) []TypeRef {
	out := make([]TypeRef, len(texts))
	for i, t := range texts {
		out[i] = Ty(t)
	}
	return out
}

func (b *BodyBuilder) leafSpan(width int) types.Span {
	if width < 1 {
		width = 1
	}
	sp := types.NewSpan(b.cursor, b.cursor+uint32(width))
	b.cursor = sp.End + 1
	return sp
}

func (b *BodyBuilder) exprCover(ids ...ExprID) types.Span {
	var sp types.Span
	for _, id := range ids {
		if id != NoExpr {
			sp = cover(sp, b.body.exprSpans[id])
		}
	}
	return sp
}

func (b *BodyBuilder) stmtCover(sp types.Span, ids ...StmtID) types.Span {
	for _, id := range ids {
		if id != NoStmt {
			sp = cover(sp, b.body.stmtSpans[id])
		}
	}
	return sp
}

// tyRef gives a spanless annotation its own leaf range.
func (b *BodyBuilder) tyRef(text string) TypeRef {
	if text == "" {
		return TypeRef{}
	}
	return TypeRef{Text: text, Span: b.leafSpan(len(text))}
}

// Param declares a parameter slot.
func (b *BodyBuilder) Param(name, ty string) LocalID {
	t := b.tyRef(ty)
	return b.AddParam(Local{Name: name, NameSpan: b.leafSpan(len(name)), Type: t})
}

// LambdaParam declares an untyped lambda parameter slot.
func (b *BodyBuilder) LambdaParam(name string) LocalID {
	return b.AddLocal(Local{Name: name, NameSpan: b.leafSpan(len(name))})
}

func (b *BodyBuilder) Name(name string) ExprID {
	return b.AddExpr(&NameExpr{Name: name}, b.leafSpan(len(name)))
}

func (b *BodyBuilder) Lit(kind LiteralKind, text string) ExprID {
	return b.AddExpr(&LiteralExpr{Kind: kind, Text: text}, b.leafSpan(len(text)))
}

func (b *BodyBuilder) Int(text string) ExprID  { return b.Lit(LitInt, text) }
func (b *BodyBuilder) Long(text string) ExprID { return b.Lit(LitLong, text) }
func (b *BodyBuilder) Flt(text string) ExprID  { return b.Lit(LitFloat, text) }
func (b *BodyBuilder) Dbl(text string) ExprID  { return b.Lit(LitDouble, text) }

// Str quotes s the way source would.
func (b *BodyBuilder) Str(s string) ExprID { return b.Lit(LitString, `"`+s+`"`) }

// Chr quotes a character literal body, escapes included.
func (b *BodyBuilder) Chr(s string) ExprID { return b.Lit(LitChar, "'"+s+"'") }

func (b *BodyBuilder) Bool(v bool) ExprID { return b.Lit(LitBool, strconv.FormatBool(v)) }

func (b *BodyBuilder) Null() ExprID  { return b.AddExpr(&NullExpr{}, b.leafSpan(4)) }
func (b *BodyBuilder) This() ExprID  { return b.AddExpr(&ThisExpr{}, b.leafSpan(4)) }
func (b *BodyBuilder) Super() ExprID { return b.AddExpr(&SuperExpr{}, b.leafSpan(5)) }

func (b *BodyBuilder) Field(recv ExprID, name string) ExprID {
	nameSpan := b.leafSpan(len(name))
	e := &FieldAccessExpr{Receiver: recv, Name: name, NameSpan: nameSpan}
	return b.AddExpr(e, cover(b.exprCover(recv), nameSpan))
}

func (b *BodyBuilder) Index(arr, idx ExprID) ExprID {
	return b.AddExpr(&IndexExpr{Array: arr, Index: idx}, b.exprCover(arr, idx))
}

func (b *BodyBuilder) Call(callee ExprID, args ...ExprID) ExprID {
	e := &CallExpr{Callee: callee, Args: args}
	return b.AddExpr(e, b.exprCover(append([]ExprID{callee}, args...)...))
}

// CallT is Call with explicit type arguments.
func (b *BodyBuilder) CallT(callee ExprID, typeArgs []TypeRef, args ...ExprID) ExprID {
	e := &CallExpr{Callee: callee, Args: args, TypeArgs: typeArgs}
	return b.AddExpr(e, b.exprCover(append([]ExprID{callee}, args...)...))
}

func (b *BodyBuilder) New(class string, args ...ExprID) ExprID {
	t := b.tyRef(class)
	e := &NewExpr{Class: t, Args: args}
	return b.AddExpr(e, cover(t.Span, b.exprCover(args...)))
}

// NewDiamond is `new class<>(args)`.
func (b *BodyBuilder) NewDiamond(class string, args ...ExprID) ExprID {
	t := b.tyRef(class)
	e := &NewExpr{Class: t, Diamond: true, Args: args}
	return b.AddExpr(e, cover(t.Span, b.exprCover(args...)))
}

func (b *BodyBuilder) NewArray(elem string, dims ...ExprID) ExprID {
	t := b.tyRef(elem)
	e := &NewArrayExpr{Elem: t, Dims: dims, Init: NoExpr}
	return b.AddExpr(e, cover(t.Span, b.exprCover(dims...)))
}

// NewArrayOf is `new elem[]{...}`.
func (b *BodyBuilder) NewArrayOf(elem string, init ExprID) ExprID {
	t := b.tyRef(elem)
	e := &NewArrayExpr{Elem: t, ExtraDims: 1, Init: init}
	return b.AddExpr(e, cover(t.Span, b.exprCover(init)))
}

func (b *BodyBuilder) ArrayInit(elems ...ExprID) ExprID {
	return b.AddExpr(&ArrayInitExpr{Elems: elems}, b.exprCover(elems...))
}

func (b *BodyBuilder) Un(op UnaryOp, operand ExprID) ExprID {
	return b.AddExpr(&UnaryExpr{Op: op, Operand: operand}, b.exprCover(operand))
}

// Post is a postfix ++ or --.
func (b *BodyBuilder) Post(op UnaryOp, operand ExprID) ExprID {
	return b.AddExpr(&UnaryExpr{Op: op, Operand: operand, Postfix: true}, b.exprCover(operand))
}

func (b *BodyBuilder) Bin(op string, left, right ExprID) ExprID {
	return b.AddExpr(&BinaryExpr{Op: op, Left: left, Right: right}, b.exprCover(left, right))
}

func (b *BodyBuilder) Assign(target, value ExprID) ExprID {
	return b.AddExpr(&AssignExpr{Op: AssignSet, Target: target, Value: value}, b.exprCover(target, value))
}

func (b *BodyBuilder) OpAssign(op AssignOp, target, value ExprID) ExprID {
	return b.AddExpr(&AssignExpr{Op: op, Target: target, Value: value}, b.exprCover(target, value))
}

func (b *BodyBuilder) Cond(cond, then, els ExprID) ExprID {
	return b.AddExpr(&CondExpr{Cond: cond, Then: then, Else: els}, b.exprCover(cond, then, els))
}

func (b *BodyBuilder) Cast(ty string, expr ExprID) ExprID {
	t := b.tyRef(ty)
	return b.AddExpr(&CastExpr{Type: t, Expr: expr}, cover(t.Span, b.exprCover(expr)))
}

func (b *BodyBuilder) InstanceOf(expr ExprID, ty string) ExprID {
	t := b.tyRef(ty)
	return b.AddExpr(&InstanceofExpr{Expr: expr, Type: t}, cover(b.exprCover(expr), t.Span))
}

func (b *BodyBuilder) MethodRef(recv ExprID, name string) ExprID {
	nameSpan := b.leafSpan(len(name))
	e := &MethodRefExpr{Receiver: recv, Name: name, NameSpan: nameSpan}
	return b.AddExpr(e, cover(b.exprCover(recv), nameSpan))
}

func (b *BodyBuilder) CtorRef(recv ExprID) ExprID {
	return b.AddExpr(&CtorRefExpr{Receiver: recv}, b.exprCover(recv))
}

func (b *BodyBuilder) ClassLit(target ExprID) ExprID {
	return b.AddExpr(&ClassLiteralExpr{Target: target}, b.exprCover(target))
}

func (b *BodyBuilder) Lambda(params []LocalID, expr ExprID) ExprID {
	e := &LambdaExpr{Params: params, Expr: expr, Block: NoStmt}
	return b.AddExpr(e, b.exprCover(expr))
}

func (b *BodyBuilder) LambdaBlock(params []LocalID, block StmtID) ExprID {
	e := &LambdaExpr{Params: params, Expr: NoExpr, Block: block}
	return b.AddExpr(e, b.stmtCover(types.Span{}, block))
}

// SwitchVal is a switch in value position.
func (b *BodyBuilder) SwitchVal(selector ExprID, arms ...SwitchArm) ExprID {
	e := &SwitchExpr{Selector: selector, Arms: arms}
	return b.AddExpr(e, b.armCover(selector, arms))
}

func (b *BodyBuilder) Invalid(children ...ExprID) ExprID {
	return b.AddExpr(&InvalidExpr{Children: children}, b.exprCover(children...))
}

func (b *BodyBuilder) Missing() ExprID {
	return b.AddExpr(&MissingExpr{}, b.leafSpan(1))
}

// Case is an arrow arm yielding an expression.
func (b *BodyBuilder) Case(label, value ExprID) SwitchArm {
	return SwitchArm{Labels: []ExprID{label}, Value: value, Span: b.exprCover(label, value)}
}

// CaseStmts is a colon or block arm.
func (b *BodyBuilder) CaseStmts(label ExprID, body ...StmtID) SwitchArm {
	return SwitchArm{Labels: []ExprID{label}, Value: NoExpr, Body: body, Span: b.stmtCover(b.exprCover(label), body...)}
}

// Default is an arrow default arm yielding an expression.
func (b *BodyBuilder) Default(value ExprID) SwitchArm {
	return SwitchArm{Default: true, Value: value, Span: b.exprCover(value)}
}

// DefaultStmts is a colon or block default arm.
func (b *BodyBuilder) DefaultStmts(body ...StmtID) SwitchArm {
	return SwitchArm{Default: true, Value: NoExpr, Body: body, Span: b.stmtCover(types.Span{}, body...)}
}

func (b *BodyBuilder) armCover(selector ExprID, arms []SwitchArm) types.Span {
	sp := b.exprCover(selector)
	for _, a := range arms {
		sp = cover(sp, a.Span)
	}
	return sp
}

func (b *BodyBuilder) Block(stmts ...StmtID) StmtID {
	return b.AddStmt(&BlockStmt{Stmts: stmts}, b.stmtCover(types.Span{}, stmts...))
}

// Decl declares a typed local. Pass "var" for inference and NoExpr for a
// bare declaration.
func (b *BodyBuilder) Decl(name, ty string, init ExprID) (LocalID, StmtID) {
	t := b.tyRef(ty)
	nameSpan := b.leafSpan(len(name))
	local := b.AddLocal(Local{Name: name, NameSpan: nameSpan, Type: t, Span: cover(t.Span, nameSpan)})
	span := cover(cover(t.Span, nameSpan), b.exprCover(init))
	return local, b.AddStmt(&LocalDeclStmt{Local: local, Init: init}, span)
}

// DeclVar declares a `var` local.
func (b *BodyBuilder) DeclVar(name string, init ExprID) (LocalID, StmtID) {
	return b.Decl(name, "var", init)
}

// Stmt wraps an expression into a statement.
func (b *BodyBuilder) Stmt(expr ExprID) StmtID {
	return b.AddStmt(&ExprStmt{Expr: expr}, b.exprCover(expr))
}

// Ret is `return expr`; pass NoExpr for a bare return.
func (b *BodyBuilder) Ret(value ExprID) StmtID {
	sp := b.exprCover(value)
	if value == NoExpr {
		sp = b.leafSpan(6)
	}
	return b.AddStmt(&ReturnStmt{Value: value}, sp)
}

func (b *BodyBuilder) If(cond ExprID, then, els StmtID) StmtID {
	return b.AddStmt(&IfStmt{Cond: cond, Then: then, Else: els}, b.stmtCover(b.exprCover(cond), then, els))
}

func (b *BodyBuilder) While(cond ExprID, body StmtID) StmtID {
	return b.AddStmt(&WhileStmt{Cond: cond, Body: body}, b.stmtCover(b.exprCover(cond), body))
}

func (b *BodyBuilder) For(init []StmtID, cond ExprID, update []ExprID, body StmtID) StmtID {
	sp := b.stmtCover(b.exprCover(append([]ExprID{cond}, update...)...), append(init, body)...)
	return b.AddStmt(&ForStmt{Init: init, Cond: cond, Update: update, Body: body}, sp)
}

// ForEach declares the loop variable and returns it with the statement.
func (b *BodyBuilder) ForEach(name, ty string, iterable ExprID, body StmtID) (LocalID, StmtID) {
	t := b.tyRef(ty)
	nameSpan := b.leafSpan(len(name))
	local := b.AddLocal(Local{Name: name, NameSpan: nameSpan, Type: t, Span: cover(t.Span, nameSpan)})
	sp := b.stmtCover(cover(t.Span, b.exprCover(iterable)), body)
	return local, b.AddStmt(&ForEachStmt{Local: local, Iterable: iterable, Body: body}, sp)
}

func (b *BodyBuilder) Switch(selector ExprID, arms ...SwitchArm) StmtID {
	return b.AddStmt(&SwitchStmt{Selector: selector, Arms: arms}, b.armCover(selector, arms))
}

func (b *BodyBuilder) Yield(value ExprID) StmtID {
	return b.AddStmt(&YieldStmt{Value: value}, b.exprCover(value))
}

func (b *BodyBuilder) Break() StmtID    { return b.AddStmt(&BreakStmt{}, b.leafSpan(5)) }
func (b *BodyBuilder) Continue() StmtID { return b.AddStmt(&ContinueStmt{}, b.leafSpan(8)) }
func (b *BodyBuilder) Empty() StmtID    { return b.AddStmt(&EmptyStmt{}, b.leafSpan(1)) }

func (b *BodyBuilder) Throw(value ExprID) StmtID {
	return b.AddStmt(&ThrowStmt{Value: value}, b.exprCover(value))
}

// Catch declares the catch parameter and returns the clause. Multi-catch
// goes in the type text with `|`.
func (b *BodyBuilder) Catch(name, ty string, body StmtID) CatchClause {
	t := b.tyRef(ty)
	nameSpan := b.leafSpan(len(name))
	local := b.AddLocal(Local{Name: name, NameSpan: nameSpan, Type: t, Span: cover(t.Span, nameSpan)})
	return CatchClause{Param: local, Body: body, Span: b.stmtCover(cover(t.Span, nameSpan), body)}
}

func (b *BodyBuilder) Try(body StmtID, catches []CatchClause, fin StmtID) StmtID {
	sp := b.stmtCover(types.Span{}, body, fin)
	for _, c := range catches {
		sp = cover(sp, c.Span)
	}
	return b.AddStmt(&TryStmt{Body: body, Catches: catches, Finally: fin}, sp)
}

func (b *BodyBuilder) Sync(lock ExprID, body StmtID) StmtID {
	return b.AddStmt(&SyncStmt{Lock: lock, Body: body}, b.stmtCover(b.exprCover(lock), body))
}

// Assert is `assert cond : message`; pass NoExpr for no message.
func (b *BodyBuilder) Assert(cond, message ExprID) StmtID {
	return b.AddStmt(&AssertStmt{Cond: cond, Message: message}, b.exprCover(cond, message))
}
