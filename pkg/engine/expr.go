package engine

import (
	"strings"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/types"
)

// inferExpr types an expression under an optional expected type and
// memoizes the result. Poly expressions first visited without a target
// come back Unknown and recompute exactly once when a target arrives;
// everything else keeps its first answer, so revisits never duplicate
// diagnostics.
func (c *checker) inferExpr(id hir.ExprID, expected types.Type) (types.Type, error) {
	if id == hir.NoExpr {
		return types.Unknown, nil
	}
	if t := c.exprTypes[id]; t != nil {
		if expected != nil && !types.IsErrorish(expected) && types.IsUnknown(t) && c.isPolyExpr(id) && !c.reinferred[id] {
			c.reinferred[id] = true
			nt, err := c.computeExpr(id, expected)
			if err != nil {
				return nil, err
			}
			c.exprTypes[id] = nt
			return nt, nil
		}
		return t, nil
	}
	if err := c.tick(); err != nil {
		return nil, err
	}
	t, err := c.computeExpr(id, expected)
	if err != nil {
		return nil, err
	}
	c.exprTypes[id] = t
	return t, nil
}

// isPolyExpr reports whether a node takes its type from the target.
func (c *checker) isPolyExpr(id hir.ExprID) bool {
	switch c.body.Expr(id).(type) {
	case *hir.LambdaExpr, *hir.MethodRefExpr, *hir.CtorRefExpr:
		return true
	}
	return false
}

func (c *checker) computeExpr(id hir.ExprID, expected types.Type) (types.Type, error) {
	switch e := c.body.Expr(id).(type) {
	case *hir.LiteralExpr:
		return c.literalType(id, e, false)
	case *hir.NullExpr:
		return types.Null, nil
	case *hir.ThisExpr:
		if c.inStaticContext() {
			c.exprErr("static-context", id, "cannot use `this` in a static context")
		}
		return c.owner.thisType, nil
	case *hir.SuperExpr:
		c.exprErr("unresolved-name", id, "`super` can only qualify a member access or call")
		return types.Error, nil
	case *hir.NameExpr:
		return c.checkName(id, e, false)
	case *hir.FieldAccessExpr:
		return c.checkFieldAccess(id, e, false)
	case *hir.IndexExpr:
		return c.checkIndex(id, e)
	case *hir.CallExpr:
		return c.checkCall(id, e, expected)
	case *hir.NewExpr:
		return c.checkNew(id, e, expected)
	case *hir.NewArrayExpr:
		return c.checkNewArray(id, e)
	case *hir.ArrayInitExpr:
		return c.checkArrayInit(id, e, expected)
	case *hir.UnaryExpr:
		return c.checkUnary(id, e)
	case *hir.BinaryExpr:
		return c.checkBinary(id, e)
	case *hir.AssignExpr:
		return c.checkAssign(id, e)
	case *hir.CondExpr:
		return c.checkCond(id, e, expected)
	case *hir.CastExpr:
		return c.checkCast(id, e)
	case *hir.InstanceofExpr:
		return c.checkInstanceof(id, e)
	case *hir.MethodRefExpr:
		return c.checkMethodRef(id, e, expected)
	case *hir.CtorRefExpr:
		return c.checkCtorRef(id, e, expected)
	case *hir.ClassLiteralExpr:
		return c.checkClassLiteral(id, e)
	case *hir.LambdaExpr:
		return c.checkLambda(id, e, expected)
	case *hir.SwitchExpr:
		return c.checkSwitchExpr(id, e, expected)
	case *hir.InvalidExpr:
		for _, ch := range e.Children {
			if _, err := c.inferExpr(ch, nil); err != nil {
				return nil, err
			}
		}
		return types.Error, nil
	case *hir.MissingExpr:
		return types.Error, nil
	}
	return types.Error, nil
}

func (c *checker) strType() types.Type {
	return types.ClassType{Class: c.store.WellKnown().String}
}

func (c *checker) isString(t types.Type) bool {
	ref, ok := t.(types.ClassType)
	return ok && ref.Class == c.store.WellKnown().String
}

func (c *checker) checkIndex(id hir.ExprID, e *hir.IndexExpr) (types.Type, error) {
	at, err := c.inferExpr(e.Array, nil)
	if err != nil {
		return nil, err
	}
	it, err := c.inferExpr(e.Index, nil)
	if err != nil {
		return nil, err
	}
	c.checkIntSized(e.Index, it, "index")
	c.assignable[id] = true
	if types.IsErrorish(at) {
		return types.Error, nil
	}
	arr, ok := at.(types.ArrayType)
	if !ok {
		c.exprErr("array-required", e.Array, "array required, found `%s`", c.fmtType(at))
		return types.Error, nil
	}
	return arr.Element, nil
}

// checkIntSized enforces that an index or dimension promotes to int.
func (c *checker) checkIntSized(at hir.ExprID, t types.Type, what string) {
	if types.IsErrorish(t) {
		return
	}
	if p, ok := types.UnaryPromote(c.env(), t); ok && p.Kind == types.PrimInt {
		return
	}
	c.exprErr("index-not-integral", at, "array %s must be `int`, found `%s`", what, c.fmtType(t))
}

func (c *checker) checkUnary(id hir.ExprID, e *hir.UnaryExpr) (types.Type, error) {
	// A minus applied directly to an int or long literal parses together
	// with it, so the MIN_VALUE spellings stay in range.
	if e.Op == hir.UnaryMinus && !e.Postfix {
		if lit, ok := c.body.Expr(e.Operand).(*hir.LiteralExpr); ok && (lit.Kind == hir.LitInt || lit.Kind == hir.LitLong) {
			t, err := c.literalType(e.Operand, lit, true)
			if err != nil {
				return nil, err
			}
			c.exprTypes[e.Operand] = t
			c.exprConsts[id] = c.exprConsts[e.Operand]
			return t, nil
		}
	}

	ot, err := c.inferExpr(e.Operand, nil)
	if err != nil {
		return nil, err
	}
	bad := func() types.Type {
		if !types.IsErrorish(ot) {
			c.exprErr("invalid-unary", id, "operator `%s` cannot be applied to `%s`", e.Op, c.fmtType(ot))
		}
		return types.Error
	}
	switch e.Op {
	case hir.UnaryPlus, hir.UnaryMinus:
		p, ok := types.UnaryPromote(c.env(), ot)
		if !ok {
			return bad(), nil
		}
		c.foldUnary(id, string(e.Op), e.Operand)
		return p, nil
	case hir.UnaryBitNot:
		p, ok := types.UnaryPromote(c.env(), ot)
		if !ok || !types.IsIntegralPrimitive(p) {
			return bad(), nil
		}
		c.foldUnary(id, string(e.Op), e.Operand)
		return p, nil
	case hir.UnaryNot:
		if !types.ConditionKind(c.env(), ot) {
			return bad(), nil
		}
		c.foldUnary(id, string(e.Op), e.Operand)
		return types.Boolean, nil
	case hir.UnaryInc, hir.UnaryDec:
		if !types.IsErrorish(ot) && !c.assignable[e.Operand] {
			c.exprErr("lvalue-required", e.Operand, "the target of `%s` must be a variable", e.Op)
		}
		if _, ok := types.NumericKind(c.env(), ot); !ok {
			return bad(), nil
		}
		// The result keeps the variable's own type.
		return ot, nil
	}
	return types.Error, nil
}

func (c *checker) foldUnary(id hir.ExprID, op string, operand hir.ExprID) {
	v := c.exprConsts[operand]
	if v == nil {
		return
	}
	if out, ok := types.FoldUnary(op, *v); ok {
		c.exprConsts[id] = &out
	}
}

func (c *checker) checkBinary(id hir.ExprID, e *hir.BinaryExpr) (types.Type, error) {
	lt, err := c.inferExpr(e.Left, nil)
	if err != nil {
		return nil, err
	}
	rt, err := c.inferExpr(e.Right, nil)
	if err != nil {
		return nil, err
	}
	t := c.binaryType(id, e.Op, lt, rt)
	if !types.IsErrorish(t) {
		c.foldBinary(id, e.Op, e.Left, e.Right)
	}
	return t, nil
}

func (c *checker) binaryType(id hir.ExprID, op string, lt, rt types.Type) types.Type {
	if types.IsErrorish(lt) || types.IsErrorish(rt) {
		switch op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return types.Boolean
		}
		return types.Error
	}
	bad := func() types.Type {
		c.exprErr("invalid-operands", id, "operator `%s` cannot be applied to `%s`, `%s`", op, c.fmtType(lt), c.fmtType(rt))
		return types.Error
	}
	switch op {
	case "+":
		if c.isString(lt) || c.isString(rt) {
			if types.IsVoid(lt) || types.IsVoid(rt) {
				return bad()
			}
			return c.strType()
		}
		if p, ok := types.BinaryPromote(c.env(), lt, rt); ok {
			return p
		}
		return bad()
	case "-", "*", "/", "%":
		if p, ok := types.BinaryPromote(c.env(), lt, rt); ok {
			return p
		}
		return bad()
	case "<", "<=", ">", ">=":
		if _, ok := types.BinaryPromote(c.env(), lt, rt); !ok {
			bad()
		}
		return types.Boolean
	case "==", "!=":
		if !c.equalityOK(lt, rt) {
			c.exprErr("invalid-operands", id, "incomparable types: `%s` and `%s`", c.fmtType(lt), c.fmtType(rt))
		}
		return types.Boolean
	case "&&", "||":
		if !types.ConditionKind(c.env(), lt) || !types.ConditionKind(c.env(), rt) {
			bad()
		}
		return types.Boolean
	case "&", "|", "^":
		if types.ConditionKind(c.env(), lt) && types.ConditionKind(c.env(), rt) {
			return types.Boolean
		}
		if p, ok := types.BinaryPromote(c.env(), lt, rt); ok && types.IsIntegralPrimitive(p) {
			return p
		}
		return bad()
	case "<<", ">>", ">>>":
		if !c.shiftOK(lt, rt) {
			return bad()
		}
		p, _ := types.UnaryPromote(c.env(), lt)
		return p
	}
	return types.Error
}

func (c *checker) shiftOK(a, b types.Type) bool {
	pa, ok := types.UnaryPromote(c.env(), a)
	if !ok || !types.IsIntegralPrimitive(pa) {
		return false
	}
	pb, ok := types.UnaryPromote(c.env(), b)
	return ok && types.IsIntegralPrimitive(pb)
}

func (c *checker) equalityOK(a, b types.Type) bool {
	if types.IsNull(a) || types.IsNull(b) {
		other := a
		if types.IsNull(a) {
			other = b
		}
		return types.IsNull(other) || types.IsReference(other)
	}
	if _, ok := types.NumericKind(c.env(), a); ok {
		_, ok2 := types.NumericKind(c.env(), b)
		return ok2
	}
	if types.ConditionKind(c.env(), a) {
		return types.ConditionKind(c.env(), b)
	}
	if types.IsReference(a) && types.IsReference(b) {
		return types.IsCastable(c.env(), a, b) || types.IsCastable(c.env(), b, a)
	}
	return false
}

func (c *checker) foldBinary(id hir.ExprID, op string, l, r hir.ExprID) {
	lv, rv := c.exprConsts[l], c.exprConsts[r]
	if lv == nil || rv == nil {
		return
	}
	if out, ok := types.FoldBinary(op, *lv, *rv); ok {
		c.exprConsts[id] = &out
	}
}

func (c *checker) checkAssign(id hir.ExprID, e *hir.AssignExpr) (types.Type, error) {
	tt, err := c.inferExpr(e.Target, nil)
	if err != nil {
		return nil, err
	}
	if !types.IsErrorish(tt) && !c.assignable[e.Target] {
		c.exprErr("lvalue-required", e.Target, "assignment target must be a variable")
	}

	if e.Op == hir.AssignSet {
		expected := tt
		if types.IsErrorish(tt) {
			expected = nil
		}
		vt, err := c.inferExpr(e.Value, expected)
		if err != nil {
			return nil, err
		}
		c.checkAssignable(vt, tt, e.Value)
		return tt, nil
	}

	vt, err := c.inferExpr(e.Value, nil)
	if err != nil {
		return nil, err
	}
	if types.IsErrorish(tt) || types.IsErrorish(vt) {
		return tt, nil
	}
	op := strings.TrimSuffix(string(e.Op), "=")
	if !c.compoundOK(op, tt, vt) {
		c.exprErr("invalid-operands", id, "operator `%s` cannot be applied to `%s`, `%s`", e.Op, c.fmtType(tt), c.fmtType(vt))
	}
	// A compound assignment narrows its result back to the target type.
	return tt, nil
}

// compoundOK reports whether `target op= value` has a valid underlying
// binary operation.
func (c *checker) compoundOK(op string, tt, vt types.Type) bool {
	if op == "+" && c.isString(tt) {
		return !types.IsVoid(vt)
	}
	switch op {
	case "<<", ">>", ">>>":
		return c.shiftOK(tt, vt)
	case "&", "|", "^":
		if types.ConditionKind(c.env(), tt) && types.ConditionKind(c.env(), vt) {
			return true
		}
		p, ok := types.BinaryPromote(c.env(), tt, vt)
		return ok && types.IsIntegralPrimitive(p)
	default:
		_, ok := types.BinaryPromote(c.env(), tt, vt)
		return ok
	}
}

func (c *checker) checkCond(id hir.ExprID, e *hir.CondExpr, expected types.Type) (types.Type, error) {
	if err := c.checkCondition(e.Cond); err != nil {
		return nil, err
	}
	tt, err := c.inferExpr(e.Then, expected)
	if err != nil {
		return nil, err
	}
	et, err := c.inferExpr(e.Else, expected)
	if err != nil {
		return nil, err
	}
	return c.combineBranches(tt, et), nil
}

// combineBranches merges the two arms of a conditional: identical types
// stay, numeric pairs promote, anything else takes the least upper
// bound.
func (c *checker) combineBranches(a, b types.Type) types.Type {
	switch {
	case types.IsErrorish(a) && types.IsErrorish(b):
		return types.Error
	case types.IsErrorish(a):
		return b
	case types.IsErrorish(b):
		return a
	}
	if types.Same(a, b) {
		return a
	}
	if p, ok := types.BinaryPromote(c.env(), a, b); ok {
		return p
	}
	return types.Lub(c.env(), a, b)
}

func (c *checker) checkCast(id hir.ExprID, e *hir.CastExpr) (types.Type, error) {
	target, err := c.refs.resolveRef(e.Type)
	if err != nil {
		return nil, err
	}
	var expected types.Type
	if !types.IsErrorish(target) {
		expected = target
	}
	ot, err := c.inferExpr(e.Expr, expected)
	if err != nil {
		return nil, err
	}
	if types.IsErrorish(target) {
		return types.Error, nil
	}
	if !types.IsErrorish(ot) {
		if !types.IsCastable(c.env(), ot, target) {
			c.exprErr("invalid-cast", id, "cannot cast `%s` to `%s`", c.fmtType(ot), c.fmtType(target))
		} else {
			c.castConst(id, e.Expr, target)
		}
	}
	return target, nil
}

// castConst carries the operand's constant onto the cast expression when
// the conversion folds.
func (c *checker) castConst(id, operand hir.ExprID, target types.Type) {
	v := c.exprConsts[operand]
	if v == nil {
		return
	}
	if c.isString(target) && v.Kind == types.ConstString {
		c.exprConsts[id] = v
		return
	}
	p, ok := target.(types.PrimitiveType)
	if !ok {
		return
	}
	if out, ok := castConstValue(*v, p.Kind); ok {
		c.exprConsts[id] = &out
	}
}

// castConstValue folds a constant through a primitive cast. Narrowing an
// int-like constant folds only when the value is representable in the
// target; identity and widening casts always fold.
func castConstValue(v types.ConstValue, k types.PrimitiveKind) (types.ConstValue, bool) {
	intLike := v.Kind == types.ConstInt || v.Kind == types.ConstLong || v.Kind == types.ConstChar
	switch k {
	case types.PrimBoolean:
		if v.Kind == types.ConstBool {
			return v, true
		}
	case types.PrimChar:
		if intLike && v.RepresentableIn(k) {
			return types.CharConst(rune(v.I)), true
		}
	case types.PrimByte, types.PrimShort, types.PrimInt:
		if intLike && v.RepresentableIn(k) {
			return types.IntConst(int32(v.I)), true
		}
	case types.PrimLong:
		if intLike {
			return types.LongConst(v.I), true
		}
	case types.PrimFloat:
		if intLike {
			return types.FloatConst(float64(v.I)), true
		}
		if v.Kind == types.ConstFloat || v.Kind == types.ConstDouble {
			return types.FloatConst(v.F), true
		}
	case types.PrimDouble:
		if intLike {
			return types.DoubleConst(float64(v.I)), true
		}
		if v.Kind == types.ConstFloat || v.Kind == types.ConstDouble {
			return types.DoubleConst(v.F), true
		}
	}
	return types.ConstValue{}, false
}

func (c *checker) checkInstanceof(id hir.ExprID, e *hir.InstanceofExpr) (types.Type, error) {
	ot, err := c.inferExpr(e.Expr, nil)
	if err != nil {
		return nil, err
	}
	target, err := c.refs.resolveRef(e.Type)
	if err != nil {
		return nil, err
	}
	operandOK := types.IsErrorish(ot) || types.IsReference(ot) || types.IsNull(ot)
	if !operandOK {
		c.exprErr("instanceof-invalid", e.Expr, "left operand of `instanceof` must be a reference, found `%s`", c.fmtType(ot))
	}
	targetOK := types.IsErrorish(target)
	if !targetOK {
		switch {
		case !types.IsReference(target):
			c.errAt("instanceof-invalid", e.Type.Span, "`instanceof` needs a reference type, found `%s`", c.fmtType(target))
		case !types.IsReifiable(c.env(), target):
			c.errAt("instanceof-invalid", e.Type.Span, "`%s` is not reifiable and cannot be used with `instanceof`", c.fmtType(target))
		default:
			targetOK = true
		}
	}
	if operandOK && targetOK && !types.IsErrorish(ot) && !types.IsErrorish(target) {
		if !types.IsCastable(c.env(), ot, target) {
			c.exprErr("instanceof-invalid", id, "incompatible types: `%s` can never be `%s`", c.fmtType(ot), c.fmtType(target))
		}
	}
	return types.Boolean, nil
}

func (c *checker) checkNewArray(id hir.ExprID, e *hir.NewArrayExpr) (types.Type, error) {
	elem, err := c.refs.resolveRef(e.Elem)
	if err != nil {
		return nil, err
	}
	for _, d := range e.Dims {
		dt, err := c.inferExpr(d, nil)
		if err != nil {
			return nil, err
		}
		c.checkIntSized(d, dt, "dimension")
	}
	if types.IsErrorish(elem) {
		if e.Init != hir.NoExpr {
			if _, err := c.inferExpr(e.Init, nil); err != nil {
				return nil, err
			}
		}
		return types.Error, nil
	}
	result := elem
	for i := 0; i < len(e.Dims)+e.ExtraDims; i++ {
		result = types.ArrayType{Element: result}
	}
	if e.Init != hir.NoExpr {
		if _, err := c.inferExpr(e.Init, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *checker) checkArrayInit(id hir.ExprID, e *hir.ArrayInitExpr, expected types.Type) (types.Type, error) {
	arr, ok := expected.(types.ArrayType)
	if !ok {
		for _, el := range e.Elems {
			if _, err := c.inferExpr(el, nil); err != nil {
				return nil, err
			}
		}
		if expected == nil || !types.IsErrorish(expected) {
			c.exprErr("type-mismatch", id, "array initializer needs an array target type")
		}
		return types.Error, nil
	}
	for _, el := range e.Elems {
		et, err := c.inferExpr(el, arr.Element)
		if err != nil {
			return nil, err
		}
		c.checkAssignable(et, arr.Element, el)
	}
	return arr, nil
}

func (c *checker) checkLambda(id hir.ExprID, e *hir.LambdaExpr, expected types.Type) (types.Type, error) {
	if expected == nil {
		return types.Unknown, nil
	}
	if types.IsErrorish(expected) {
		return types.Error, nil
	}
	params, ret, ok := types.SAMSignature(c.env(), expected)
	if !ok {
		c.exprErr("type-mismatch", id, "lambda needs a functional interface target, found `%s`", c.fmtType(expected))
		return types.Error, nil
	}
	if len(params) != len(e.Params) {
		c.exprErr("type-mismatch", id, "lambda has %d parameters, `%s` expects %d", len(e.Params), c.fmtType(expected), len(params))
	}
	for i, p := range e.Params {
		var pt types.Type = types.Error
		if i < len(params) {
			pt = params[i]
		}
		local := c.body.Local(p)
		if !local.Type.IsInferred() && !local.Type.IsVar() {
			declared, err := c.refs.resolveRef(local.Type)
			if err != nil {
				return nil, err
			}
			if !types.IsErrorish(declared) {
				if i < len(params) && !types.Same(declared, params[i]) {
					c.errAt("type-mismatch", local.NameSpan, "lambda parameter `%s` has type `%s`, `%s` expects `%s`",
						local.Name, c.fmtType(declared), c.fmtType(expected), c.fmtType(params[i]))
				}
				pt = declared
			}
		}
		c.localTypes[p] = pt
		c.localStates[p] = localComputed
	}

	if e.Expr != hir.NoExpr {
		var want types.Type
		if !types.IsVoid(ret) && !types.IsErrorish(ret) {
			want = ret
		}
		bt, err := c.inferExpr(e.Expr, want)
		if err != nil {
			return nil, err
		}
		if want != nil && !types.IsErrorish(bt) {
			if _, ok := types.AssignmentConversion(c.env(), bt, ret, c.exprConsts[e.Expr]); !ok {
				c.exprErr("return-mismatch", e.Expr, "lambda result `%s` cannot be converted to `%s`", c.fmtType(bt), c.fmtType(ret))
			}
		}
	} else if e.Block != hir.NoStmt {
		c.pushReturn(retCtx{kind: retLambda, t: ret})
		saved := c.skipNested
		c.skipNested = false
		err := c.checkStmt(e.Block)
		c.skipNested = saved
		c.popReturn()
		if err != nil {
			return nil, err
		}
	}
	return expected, nil
}

func (c *checker) checkSwitchExpr(id hir.ExprID, e *hir.SwitchExpr, expected types.Type) (types.Type, error) {
	sel, err := c.inferExpr(e.Selector, nil)
	if err != nil {
		return nil, err
	}
	sink := &switchSink{expected: expected}
	c.pushSwitch(sink)
	defer c.popSwitch()
	for _, arm := range e.Arms {
		if err := c.checkArmLabels(arm, sel); err != nil {
			return nil, err
		}
		if arm.Value != hir.NoExpr {
			vt, err := c.inferExpr(arm.Value, expected)
			if err != nil {
				return nil, err
			}
			sink.results = append(sink.results, armResult{t: vt, span: c.body.ExprSpan(arm.Value)})
		}
		for _, st := range arm.Body {
			saved := c.skipNested
			c.skipNested = false
			err := c.checkStmt(st)
			c.skipNested = saved
			if err != nil {
				return nil, err
			}
		}
	}
	return c.combineArms(sink), nil
}

// combineArms merges every yielded arm result: identical types stay,
// all-numeric sets promote pairwise, and mixed reference sets take the
// least upper bound. Arms with no value are errors.
func (c *checker) combineArms(sink *switchSink) types.Type {
	var usable []armResult
	for _, r := range sink.results {
		if types.IsVoid(r.t) {
			c.errAt("switch-arm-mismatch", r.span, "switch arm yields no value")
			continue
		}
		if types.IsErrorish(r.t) {
			continue
		}
		usable = append(usable, r)
	}
	if len(usable) == 0 {
		return types.Error
	}

	identical := true
	for _, r := range usable[1:] {
		if !types.Same(r.t, usable[0].t) {
			identical = false
			break
		}
	}
	if identical {
		return usable[0].t
	}

	numeric := usable[0].t
	allNumeric := true
	for _, r := range usable[1:] {
		p, ok := types.BinaryPromote(c.env(), numeric, r.t)
		if !ok {
			allNumeric = false
			break
		}
		numeric = p
	}
	if allNumeric {
		if _, ok := types.NumericKind(c.env(), usable[0].t); ok {
			return numeric
		}
	}

	ts := make([]types.Type, len(usable))
	for i, r := range usable {
		ts[i] = r.t
	}
	lub := types.LubAll(c.env(), ts)
	if lub == nil {
		c.errAt("switch-arm-mismatch", usable[0].span, "incompatible switch arms: `%s` and `%s`", c.fmtType(usable[0].t), c.fmtType(usable[1].t))
		return types.Error
	}
	return lub
}
