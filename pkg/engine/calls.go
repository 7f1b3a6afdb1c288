package engine

import (
	"errors"
	"fmt"
	"strings"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/types"
)

type qualKind uint8

const (
	qualValue qualKind = iota
	qualType
	qualPackage
)

// qualifier is what a member-access prefix denotes: a value with a type,
// a type name, or a package prefix.
type qualifier struct {
	kind qualKind
	t    types.Type
	pkg  string
}

// resolveQualifier types an expression in receiver position, where type
// names and package prefixes are legal alongside values.
func (c *checker) resolveQualifier(id hir.ExprID) (qualifier, error) {
	if dt, ok := c.denotTypes[id]; ok {
		return qualifier{kind: qualType, t: dt}, nil
	}
	if p, ok := c.denotPkgs[id]; ok {
		return qualifier{kind: qualPackage, pkg: p}, nil
	}
	if t := c.exprTypes[id]; t != nil {
		return qualifier{kind: qualValue, t: t}, nil
	}
	if err := c.tick(); err != nil {
		return qualifier{}, err
	}

	var t types.Type
	var err error
	switch e := c.body.Expr(id).(type) {
	case *hir.NameExpr:
		t, err = c.checkName(id, e, true)
	case *hir.FieldAccessExpr:
		t, err = c.checkFieldAccess(id, e, true)
	case *hir.SuperExpr:
		t, err = c.checkSuper(id)
	default:
		t, err = c.inferExpr(id, nil)
	}
	if err != nil {
		return qualifier{}, err
	}
	c.exprTypes[id] = t
	if dt, ok := c.denotTypes[id]; ok {
		return qualifier{kind: qualType, t: dt}, nil
	}
	if p, ok := c.denotPkgs[id]; ok {
		return qualifier{kind: qualPackage, pkg: p}, nil
	}
	return qualifier{kind: qualValue, t: t}, nil
}

// checkSuper types `super` in receiver position as the superclass view of
// the current instance.
func (c *checker) checkSuper(id hir.ExprID) (types.Type, error) {
	if c.inStaticContext() {
		c.exprErr("static-context", id, "cannot use `super` in a static context")
	}
	return c.superclassType(), nil
}

// superclassType returns the first class supertype of the checked type,
// falling back to Object.
func (c *checker) superclassType() types.Type {
	def := c.store.Class(c.owner.id)
	if def != nil {
		for _, sup := range def.Supertypes {
			ref, ok := sup.(types.ClassType)
			if !ok {
				continue
			}
			sdef := c.store.Class(ref.Class)
			if sdef != nil && !sdef.IsInterface {
				return sup
			}
		}
	}
	return types.ClassType{Class: c.store.WellKnown().Object}
}

// checkName resolves an unqualified identifier. Resolution order is
// locals, then members of the enclosing types from the inside out, then
// static imports, then type names, then package prefixes. Type and
// package answers are values only for a qualifier.
func (c *checker) checkName(id hir.ExprID, e *hir.NameExpr, asQualifier bool) (types.Type, error) {
	if lid, ok := c.scopes.Resolve(c.scopes.ExprScope(id), e.Name); ok {
		t, err := c.localType(lid)
		if err != nil {
			return nil, err
		}
		c.assignable[id] = true
		return t, nil
	}

	for _, ctx := range c.enclosing {
		f, ok := types.ResolveField(c.env(), ctx.typ, e.Name, types.CallInstance)
		if !ok {
			continue
		}
		if !f.IsStatic && !ctx.reachable {
			c.exprErr("static-context", id, "cannot reference instance field `%s` from a static context", e.Name)
		}
		c.assignable[id] = true
		return f.Type, nil
	}

	for _, ownerBin := range c.refs.resolver.StaticCandidates(e.Name) {
		cid, err := c.ld.EnsureClass(ownerBin)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return nil, err
			}
			continue
		}
		if f, ok := types.ResolveField(c.env(), types.ClassType{Class: cid}, e.Name, types.CallStatic); ok {
			if f.Private && !c.sameNest(f.Owner) {
				continue
			}
			c.assignable[id] = true
			return f.Type, nil
		}
	}

	res := c.refs.resolver.ResolveType(e.Name)
	if len(res.Ambiguous) > 1 {
		c.exprErr("ambiguous-name", id, "reference to `%s` is ambiguous: %s", e.Name, strings.Join(res.Ambiguous, ", "))
		return types.Error, nil
	}
	if res.Binary != "" {
		cid, err := c.ld.EnsureClass(res.Binary)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return nil, err
			}
			c.exprErr("unresolved-type", id, "cannot load type `%s`: %v", res.Binary, err)
			return types.Error, nil
		}
		c.denotTypes[id] = types.ClassType{Class: cid}
		if asQualifier {
			return types.Error, nil
		}
		c.exprErr("unresolved-name", id, "`%s` is a type, not a value", e.Name)
		return types.Error, nil
	}
	if c.refs.resolver.PackageExists(e.Name) {
		c.denotPkgs[id] = e.Name
		if asQualifier {
			return types.Error, nil
		}
		c.exprErr("unresolved-name", id, "package `%s` is not a value", e.Name)
		return types.Error, nil
	}

	c.exprErr("unresolved-name", id, "cannot resolve `%s`", e.Name)
	return types.Error, nil
}

// checkFieldAccess resolves `receiver.name` for every receiver shape:
// package prefixes extend or yield types, type names reach static
// members and nested types, values reach fields.
func (c *checker) checkFieldAccess(id hir.ExprID, e *hir.FieldAccessExpr, asQualifier bool) (types.Type, error) {
	q, err := c.resolveQualifier(e.Receiver)
	if err != nil {
		return nil, err
	}
	span := e.NameSpan
	if span.Len() == 0 {
		span = c.body.ExprSpan(id)
	}

	switch q.kind {
	case qualPackage:
		full := q.pkg + "." + e.Name
		if c.refs.resolver.HasType(full) {
			cid, err := c.ld.EnsureClass(full)
			if err != nil {
				if errors.Is(err, ErrCancelled) {
					return nil, err
				}
				c.errAt("unresolved-type", span, "cannot load type `%s`: %v", full, err)
				return types.Error, nil
			}
			c.denotTypes[id] = types.ClassType{Class: cid}
			if asQualifier {
				return types.Error, nil
			}
			c.errAt("unresolved-name", span, "`%s` is a type, not a value", full)
			return types.Error, nil
		}
		if c.refs.resolver.PackageExists(full) {
			c.denotPkgs[id] = full
			if asQualifier {
				return types.Error, nil
			}
			c.errAt("unresolved-name", span, "package `%s` is not a value", full)
			return types.Error, nil
		}
		c.errAt("unresolved-name", span, "package `%s` has no member `%s`", q.pkg, e.Name)
		return types.Error, nil

	case qualType:
		ref, _ := q.t.(types.ClassType)
		if f, ok := types.ResolveField(c.env(), q.t, e.Name, types.CallStatic); ok {
			if !f.IsStatic {
				c.errAt("static-context", span, "instance field `%s` cannot be referenced from a static context", e.Name)
			}
			if f.Private && !c.sameNest(f.Owner) {
				c.errAt("unresolved-static-member", span, "`%s` has private access in `%s`", e.Name, types.SimpleName(c.store.ClassName(f.Owner)))
			}
			c.assignable[id] = true
			return f.Type, nil
		}
		nested := c.store.ClassName(ref.Class) + "$" + e.Name
		if c.refs.resolver.HasType(nested) {
			cid, err := c.ld.EnsureClass(nested)
			if err != nil {
				if errors.Is(err, ErrCancelled) {
					return nil, err
				}
				c.errAt("unresolved-type", span, "cannot load type `%s`: %v", nested, err)
				return types.Error, nil
			}
			c.denotTypes[id] = types.ClassType{Class: cid}
			if asQualifier {
				return types.Error, nil
			}
			c.errAt("unresolved-name", span, "`%s` is a type, not a value", nested)
			return types.Error, nil
		}
		c.errAt("unresolved-static-member", span, "type `%s` has no static member `%s`", c.fmtType(q.t), e.Name)
		return types.Error, nil

	default:
		if types.IsErrorish(q.t) {
			return types.Error, nil
		}
		if _, ok := q.t.(types.ArrayType); ok && e.Name == "length" {
			return types.Int, nil
		}
		f, ok := types.ResolveField(c.env(), q.t, e.Name, types.CallInstance)
		if !ok {
			c.errAt("unresolved-field", span, "`%s` has no field `%s`", c.fmtType(q.t), e.Name)
			return types.Error, nil
		}
		if f.Private && !c.sameNest(f.Owner) {
			c.errAt("unresolved-field", span, "`%s` has private access in `%s`", e.Name, types.SimpleName(c.store.ClassName(f.Owner)))
		}
		if f.ViaInstance {
			c.warnAt("static-via-instance", span, "static field `%s` accessed through an instance", e.Name)
		}
		c.assignable[id] = true
		return f.Type, nil
	}
}

func (c *checker) checkCall(id hir.ExprID, e *hir.CallExpr, expected types.Type) (types.Type, error) {
	var targs []types.Type
	for _, r := range e.TypeArgs {
		t, err := c.refs.resolveRef(r)
		if err != nil {
			return nil, err
		}
		targs = append(targs, t)
	}
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		t, err := c.inferExpr(a, nil)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}

	switch callee := c.body.Expr(e.Callee).(type) {
	case *hir.ThisExpr, *hir.SuperExpr:
		return c.checkCtorInvocation(id, e, argTypes, targs)
	case *hir.NameExpr:
		return c.checkUnqualifiedCall(id, e, callee, argTypes, targs, expected)
	case *hir.FieldAccessExpr:
		return c.checkQualifiedCall(id, e, callee, argTypes, targs, expected)
	default:
		if _, err := c.inferExpr(e.Callee, nil); err != nil {
			return nil, err
		}
		c.exprErr("unresolved-method", e.Callee, "only named methods can be called")
		return types.Error, nil
	}
}

// checkCtorInvocation handles `this(...)` and `super(...)`, which are
// legal only as the first statement of a constructor body.
func (c *checker) checkCtorInvocation(id hir.ExprID, e *hir.CallExpr, argTypes, targs []types.Type) (types.Type, error) {
	var target types.ClassType
	var word string
	switch c.body.Expr(e.Callee).(type) {
	case *hir.ThisExpr:
		target = c.owner.thisType
		word = "this"
	default:
		word = "super"
		if ref, ok := c.superclassType().(types.ClassType); ok {
			target = ref
		}
	}
	c.exprTypes[e.Callee] = target

	if id != c.ctorCallOK {
		c.exprErr("misplaced-constructor-call", id, "`%s(...)` is only allowed as the first statement of a constructor", word)
	}

	res := types.ResolveConstructorCall(c.env(), target, types.MethodCall{
		Receiver:         target,
		Args:             argTypes,
		ExplicitTypeArgs: targs,
	})
	if res.OK() {
		if _, err := c.applyResolved(id, e, res.Method, false); err != nil {
			return nil, err
		}
		return types.Void, nil
	}
	if res.IsAmbiguous() {
		c.reportAmbiguous(c.body.ExprSpan(id), fmt.Sprintf("ambiguous constructor call for `%s`", c.fmtType(target)), res.Ambiguous, "ambiguous-constructor")
		return types.Error, nil
	}
	if anyError(argTypes) {
		return types.Error, nil
	}
	c.reportUnresolvedCtor(c.body.ExprSpan(id), target, argTypes, res.Failures)
	return types.Error, nil
}

func (c *checker) checkUnqualifiedCall(id hir.ExprID, e *hir.CallExpr, callee *hir.NameExpr, argTypes, targs []types.Type, expected types.Type) (types.Type, error) {
	name := callee.Name
	var firstFailures []types.FailedCandidate
	var firstReceiver types.Type

	for _, ctx := range c.enclosing {
		res := types.ResolveMethodCall(c.env(), types.MethodCall{
			Receiver:         ctx.typ,
			Kind:             types.CallInstance,
			Name:             name,
			Args:             argTypes,
			Expected:         expected,
			ExplicitTypeArgs: targs,
		})
		if res.OK() {
			if !res.Method.IsStatic && !ctx.reachable {
				c.exprErr("static-context", e.Callee, "cannot call instance method `%s` from a static context", name)
			}
			return c.applyResolved(id, e, res.Method, false)
		}
		if res.IsAmbiguous() {
			c.reportAmbiguous(c.calleeSpan(e), fmt.Sprintf("ambiguous call to `%s`", name), res.Ambiguous, "ambiguous-method")
			return types.Error, nil
		}
		if firstFailures == nil && len(res.Failures) > 0 {
			firstFailures = res.Failures
			firstReceiver = ctx.typ
		}
	}

	for _, ownerBin := range c.refs.resolver.StaticCandidates(name) {
		cid, err := c.ld.EnsureClass(ownerBin)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return nil, err
			}
			continue
		}
		res := types.ResolveMethodCall(c.env(), types.MethodCall{
			Receiver:         types.ClassType{Class: cid},
			Kind:             types.CallStatic,
			Name:             name,
			Args:             argTypes,
			Expected:         expected,
			ExplicitTypeArgs: targs,
		})
		if res.OK() {
			return c.applyResolved(id, e, res.Method, false)
		}
		if res.IsAmbiguous() {
			c.reportAmbiguous(c.calleeSpan(e), fmt.Sprintf("ambiguous call to `%s`", name), res.Ambiguous, "ambiguous-method")
			return types.Error, nil
		}
		if firstFailures == nil && len(res.Failures) > 0 {
			firstFailures = res.Failures
			firstReceiver = types.ClassType{Class: cid}
		}
	}

	if anyError(argTypes) {
		return types.Error, nil
	}
	if firstReceiver == nil {
		firstReceiver = c.owner.thisType
	}
	c.reportUnresolvedMethod(c.calleeSpan(e), name, firstReceiver, argTypes, firstFailures)
	return types.Error, nil
}

func (c *checker) checkQualifiedCall(id hir.ExprID, e *hir.CallExpr, callee *hir.FieldAccessExpr, argTypes, targs []types.Type, expected types.Type) (types.Type, error) {
	q, err := c.resolveQualifier(callee.Receiver)
	if err != nil {
		return nil, err
	}
	span := c.calleeSpan(e)

	switch q.kind {
	case qualPackage:
		c.errAt("unresolved-name", span, "package `%s` has no member `%s`", q.pkg, callee.Name)
		return types.Error, nil
	case qualType:
		res := types.ResolveMethodCall(c.env(), types.MethodCall{
			Receiver:         q.t,
			Kind:             types.CallStatic,
			Name:             callee.Name,
			Args:             argTypes,
			Expected:         expected,
			ExplicitTypeArgs: targs,
		})
		return c.finishCall(id, e, span, callee.Name, q.t, argTypes, res, false)
	default:
		if types.IsErrorish(q.t) {
			return types.Error, nil
		}
		res := types.ResolveMethodCall(c.env(), types.MethodCall{
			Receiver:         q.t,
			Kind:             types.CallInstance,
			Name:             callee.Name,
			Args:             argTypes,
			Expected:         expected,
			ExplicitTypeArgs: targs,
		})
		return c.finishCall(id, e, span, callee.Name, q.t, argTypes, res, true)
	}
}

func (c *checker) finishCall(id hir.ExprID, e *hir.CallExpr, span types.Span, name string, receiver types.Type, argTypes []types.Type, res types.Resolution, viaValue bool) (types.Type, error) {
	if res.OK() {
		return c.applyResolved(id, e, res.Method, viaValue)
	}
	if res.IsAmbiguous() {
		c.reportAmbiguous(span, fmt.Sprintf("ambiguous call to `%s`", name), res.Ambiguous, "ambiguous-method")
		return types.Error, nil
	}
	if anyError(argTypes) {
		return types.Error, nil
	}
	c.reportUnresolvedMethod(span, name, receiver, argTypes, res.Failures)
	return types.Error, nil
}

// applyResolved records a successful resolution, re-infers poly arguments
// against the chosen parameter types, and surfaces the call's warnings.
func (c *checker) applyResolved(id hir.ExprID, e *hir.CallExpr, m *types.ResolvedMethod, viaValue bool) (types.Type, error) {
	c.calls[id] = m
	if m.Private && !c.sameNest(m.Owner) {
		owner := types.SimpleName(c.store.ClassName(m.Owner))
		if m.Name == "<init>" {
			c.exprErr("unresolved-constructor", id, "`%s(...)` has private access in `%s`", owner, owner)
		} else {
			c.exprErr("unresolved-method", id, "`%s` has private access in `%s`", m.Name, owner)
		}
	}
	if viaValue && m.ViaInstance {
		c.warnAt("static-via-instance", c.calleeSpan(e), "static method `%s` invoked through an instance", m.Name)
	}
	for _, w := range m.Warnings {
		c.warnAt(w, c.body.ExprSpan(id), "unchecked invocation of `%s`", m.Name)
	}
	for i, a := range e.Args {
		if i >= len(m.Params) {
			break
		}
		if c.isPolyExpr(a) && c.exprTypes[a] != nil && types.IsUnknown(c.exprTypes[a]) {
			if _, err := c.inferExpr(a, m.Params[i]); err != nil {
				return nil, err
			}
		}
	}
	if m.Return == nil {
		return types.Void, nil
	}
	return m.Return, nil
}

func (c *checker) calleeSpan(e *hir.CallExpr) types.Span {
	if fa, ok := c.body.Expr(e.Callee).(*hir.FieldAccessExpr); ok && fa.NameSpan.Len() > 0 {
		return fa.NameSpan
	}
	return c.body.ExprSpan(e.Callee)
}

func anyError(ts []types.Type) bool {
	for _, t := range ts {
		if types.IsError(t) {
			return true
		}
	}
	return false
}

// sameNest reports whether a member's owner shares a top-level declaration
// with the checked body, which is what `private` access comes down to.
func (c *checker) sameNest(owner types.ClassID) bool {
	return topLevelOf(c.store.ClassName(owner)) == topLevelOf(c.owner.ref.Type)
}

func topLevelOf(binary string) string {
	if i := strings.IndexByte(binary, '$'); i >= 0 {
		return binary[:i]
	}
	return binary
}

func (c *checker) checkNew(id hir.ExprID, e *hir.NewExpr, expected types.Type) (types.Type, error) {
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		t, err := c.inferExpr(a, nil)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}
	t, err := c.refs.resolveRef(e.Class)
	if err != nil {
		return nil, err
	}
	if types.IsErrorish(t) {
		return types.Error, nil
	}
	ref, ok := t.(types.ClassType)
	if !ok {
		c.errAt("unresolved-constructor", e.Class.Span, "`new` needs a class type, found `%s`", c.fmtType(t))
		return types.Error, nil
	}
	if e.Diamond && len(ref.Args) == 0 {
		ref.Args = types.InferDiamondTypeArgs(c.env(), ref.Class, expected)
	}

	res := types.ResolveConstructorCall(c.env(), ref, types.MethodCall{
		Receiver: ref,
		Args:     argTypes,
		Expected: expected,
	})
	if res.OK() {
		if _, err := c.applyResolved(id, e2CallShim(e), res.Method, false); err != nil {
			return nil, err
		}
		if ret, ok := res.Method.Return.(types.ClassType); ok {
			return ret, nil
		}
		return ref, nil
	}
	if res.IsAmbiguous() {
		c.reportAmbiguous(e.Class.Span, fmt.Sprintf("ambiguous constructor call for `%s`", c.fmtType(ref)), res.Ambiguous, "ambiguous-constructor")
		return ref, nil
	}
	if !anyError(argTypes) {
		c.reportUnresolvedCtor(e.Class.Span, ref, argTypes, res.Failures)
	}
	return ref, nil
}

// e2CallShim views a new-expression's arguments through the call shape
// applyResolved walks.
func e2CallShim(e *hir.NewExpr) *hir.CallExpr {
	return &hir.CallExpr{Callee: hir.NoExpr, Args: e.Args}
}

func (c *checker) checkMethodRef(id hir.ExprID, e *hir.MethodRefExpr, expected types.Type) (types.Type, error) {
	if expected == nil {
		return types.Unknown, nil
	}
	if types.IsErrorish(expected) {
		return types.Error, nil
	}
	params, ret, ok := types.SAMSignature(c.env(), expected)
	if !ok {
		c.exprErr("type-mismatch", id, "method reference needs a functional interface target, found `%s`", c.fmtType(expected))
		return types.Error, nil
	}
	q, err := c.resolveQualifier(e.Receiver)
	if err != nil {
		return nil, err
	}
	span := e.NameSpan
	if span.Len() == 0 {
		span = c.body.ExprSpan(id)
	}

	var m *types.ResolvedMethod
	var failures []types.FailedCandidate
	receiver := q.t
	switch q.kind {
	case qualPackage:
		c.errAt("unresolved-name", span, "package `%s` cannot qualify a method reference", q.pkg)
		return types.Error, nil
	case qualType:
		res := types.ResolveMethodCall(c.env(), types.MethodCall{
			Receiver: q.t, Kind: types.CallStatic, Name: e.Name, Args: params,
		})
		if res.OK() {
			m = res.Method
		} else {
			failures = res.Failures
			// An unbound reference invokes an instance method on the
			// first functional parameter.
			if len(params) > 0 && !types.IsErrorish(params[0]) {
				res2 := types.ResolveMethodCall(c.env(), types.MethodCall{
					Receiver: params[0], Kind: types.CallInstance, Name: e.Name, Args: params[1:],
				})
				if res2.OK() {
					m = res2.Method
				} else {
					failures = append(failures, res2.Failures...)
				}
			}
		}
	default:
		if types.IsErrorish(q.t) {
			return types.Error, nil
		}
		res := types.ResolveMethodCall(c.env(), types.MethodCall{
			Receiver: q.t, Kind: types.CallInstance, Name: e.Name, Args: params,
		})
		if res.OK() {
			m = res.Method
		} else {
			failures = res.Failures
		}
	}

	if m == nil {
		c.reportUnresolvedMethod(span, e.Name, receiver, params, failures)
		return types.Error, nil
	}
	if m.Private && !c.sameNest(m.Owner) {
		c.errAt("unresolved-method", span, "`%s` has private access in `%s`", e.Name, types.SimpleName(c.store.ClassName(m.Owner)))
	}
	c.calls[id] = m
	if !types.IsVoid(ret) && !types.IsErrorish(ret) && m.Return != nil && !types.IsErrorish(m.Return) {
		if _, ok := types.AssignmentConversion(c.env(), m.Return, ret, nil); !ok {
			c.errAt("return-mismatch", span, "method reference result `%s` cannot be converted to `%s`", c.fmtType(m.Return), c.fmtType(ret))
		}
	}
	return expected, nil
}

func (c *checker) checkCtorRef(id hir.ExprID, e *hir.CtorRefExpr, expected types.Type) (types.Type, error) {
	if expected == nil {
		return types.Unknown, nil
	}
	if types.IsErrorish(expected) {
		return types.Error, nil
	}
	params, ret, ok := types.SAMSignature(c.env(), expected)
	if !ok {
		c.exprErr("type-mismatch", id, "constructor reference needs a functional interface target, found `%s`", c.fmtType(expected))
		return types.Error, nil
	}
	q, err := c.resolveQualifier(e.Receiver)
	if err != nil {
		return nil, err
	}
	if q.kind != qualType {
		c.exprErr("unresolved-constructor", e.Receiver, "`::new` needs a class type")
		return types.Error, nil
	}
	ref, _ := q.t.(types.ClassType)
	if len(ref.Args) == 0 {
		if args := types.InferDiamondTypeArgs(c.env(), ref.Class, ret); args != nil {
			ref.Args = args
		}
	}
	res := types.ResolveConstructorCall(c.env(), ref, types.MethodCall{
		Receiver: ref, Args: params, Expected: ret,
	})
	if res.OK() {
		m := res.Method
		if m.Private && !c.sameNest(m.Owner) {
			owner := types.SimpleName(c.store.ClassName(m.Owner))
			c.exprErr("unresolved-constructor", id, "`%s(...)` has private access in `%s`", owner, owner)
		}
		c.calls[id] = m
		result := m.Return
		if result == nil {
			result = ref
		}
		if !types.IsVoid(ret) && !types.IsErrorish(ret) {
			if _, ok := types.AssignmentConversion(c.env(), result, ret, nil); !ok {
				c.exprErr("return-mismatch", id, "constructed `%s` cannot be converted to `%s`", c.fmtType(result), c.fmtType(ret))
			}
		}
		return expected, nil
	}
	if res.IsAmbiguous() {
		c.reportAmbiguous(c.body.ExprSpan(id), fmt.Sprintf("ambiguous constructor call for `%s`", c.fmtType(ref)), res.Ambiguous, "ambiguous-constructor")
		return types.Error, nil
	}
	c.reportUnresolvedCtor(c.body.ExprSpan(id), ref, params, res.Failures)
	return types.Error, nil
}

func (c *checker) checkClassLiteral(id hir.ExprID, e *hir.ClassLiteralExpr) (types.Type, error) {
	classID := c.store.WellKnown().Class
	if n, ok := c.body.Expr(e.Target).(*hir.NameExpr); ok {
		if k, found := primitiveKinds[n.Name]; found {
			c.exprTypes[e.Target] = types.PrimitiveType{Kind: k}
			box := types.ClassType{Class: types.BoxOf(c.env(), k)}
			return types.ClassType{Class: classID, Args: []types.Type{box}}, nil
		}
		if n.Name == "void" {
			c.exprTypes[e.Target] = types.Void
			if vid, ok := c.store.Lookup("java.lang.Void"); ok {
				return types.ClassType{Class: classID, Args: []types.Type{types.ClassType{Class: vid}}}, nil
			}
			return types.ClassType{Class: classID}, nil
		}
	}
	q, err := c.resolveQualifier(e.Target)
	if err != nil {
		return nil, err
	}
	if q.kind != qualType {
		c.exprErr("unresolved-type", e.Target, "`.class` needs a type name")
		return types.Error, nil
	}
	return types.ClassType{Class: classID, Args: []types.Type{q.t}}, nil
}

func (c *checker) reportUnresolvedMethod(span types.Span, name string, receiver types.Type, args []types.Type, failures []types.FailedCandidate) {
	var b strings.Builder
	fmt.Fprintf(&b, "unresolved method `%s` for receiver `%s` with arguments (%s)",
		name, c.fmtType(receiver), types.FormatTypes(c.env(), args))
	c.writeCandidates(&b, failures, 5)
	c.errAt("unresolved-method", span, "%s", b.String())
}

func (c *checker) reportUnresolvedCtor(span types.Span, target types.ClassType, args []types.Type, failures []types.FailedCandidate) {
	var b strings.Builder
	fmt.Fprintf(&b, "no constructor of `%s` matches arguments (%s)",
		c.fmtType(target), types.FormatTypes(c.env(), args))
	c.writeCandidates(&b, failures, 5)
	c.errAt("unresolved-constructor", span, "%s", b.String())
}

func (c *checker) writeCandidates(b *strings.Builder, failures []types.FailedCandidate, limit int) {
	if len(failures) == 0 {
		return
	}
	b.WriteString("\ncandidates:")
	shown := failures
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for _, fc := range shown {
		sig := types.FormatCandidate(c.env(), fc)
		if len(fc.Failures) > 0 {
			fmt.Fprintf(b, "\n  - %s: %s", sig, fc.Failures[0].Describe(c.env()))
		} else {
			fmt.Fprintf(b, "\n  - %s", sig)
		}
	}
	if rest := len(failures) - len(shown); rest > 0 {
		fmt.Fprintf(b, "\n  ... and %d more", rest)
	}
}

func (c *checker) reportAmbiguous(span types.Span, headline string, cands []*types.ResolvedMethod, code string) {
	var b strings.Builder
	b.WriteString(headline)
	b.WriteString("\ncandidates:")
	shown := cands
	if len(shown) > 8 {
		shown = shown[:8]
	}
	for _, r := range shown {
		fmt.Fprintf(&b, "\n  - %s", types.FormatResolved(c.env(), r))
	}
	if rest := len(cands) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n  ... and %d more", rest)
	}
	c.errAt(code, span, "%s", b.String())
}
