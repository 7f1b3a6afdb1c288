package hir

import (
	"encoding/json"
	"fmt"

	"javasem/analyzer-go/pkg/types"
)

// DecodeFile reads the JSON form of a lowered compilation unit, the
// `*.hir.json` files the CLI and tests feed the engine. The layout mirrors
// the item tree: a file object with `package`, `imports`, `types` and
// optionally `module`; declarations carry their members, and bodies are
// nested node objects discriminated by a `kind` field. Spans are optional
// `{"start": n, "end": n}` objects; a node without one covers its
// children.
func DecodeFile(data []byte) (*File, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("hir: parse file: %w", err)
	}
	return decodeFile(raw)
}

func decodeFile(m map[string]any) (*File, error) {
	f := &File{
		Path:    optString(m, "path"),
		Package: optString(m, "package"),
	}
	for i, v := range optArr(m, "imports") {
		im, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: import %d: expected object", i)
		}
		path, err := strField(im, "path")
		if err != nil {
			return nil, fmt.Errorf("hir: import %d: %w", i, err)
		}
		f.Imports = append(f.Imports, Import{
			Path:     path,
			Static:   optBool(im, "static"),
			OnDemand: optBool(im, "onDemand"),
			Span:     optSpan(im, "span"),
		})
	}
	if mod := optObj(m, "module"); mod != nil {
		decl, err := decodeModule(mod)
		if err != nil {
			return nil, err
		}
		f.Module = decl
	}
	for i, v := range optArr(m, "types") {
		tm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: type %d: expected object", i)
		}
		td, err := decodeType(tm)
		if err != nil {
			return nil, err
		}
		f.Types = append(f.Types, td)
	}
	return f, nil
}

func decodeModule(m map[string]any) (*ModuleDecl, error) {
	name, err := strField(m, "name")
	if err != nil {
		return nil, fmt.Errorf("hir: module: %w", err)
	}
	decl := &ModuleDecl{Name: name, Open: optBool(m, "open")}
	for _, v := range optArr(m, "requires") {
		rm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: module %s: malformed requires", name)
		}
		mod, err := strField(rm, "module")
		if err != nil {
			return nil, fmt.Errorf("hir: module %s: %w", name, err)
		}
		decl.Requires = append(decl.Requires, Requires{
			Module:     mod,
			Transitive: optBool(rm, "transitive"),
			Static:     optBool(rm, "static"),
		})
	}
	for _, v := range optArr(m, "exports") {
		em, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: module %s: malformed exports", name)
		}
		pkg, err := strField(em, "package")
		if err != nil {
			return nil, fmt.Errorf("hir: module %s: %w", name, err)
		}
		exp := Exports{Package: pkg}
		for _, t := range optArr(em, "to") {
			s, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("hir: module %s: exports %s: malformed to", name, pkg)
			}
			exp.To = append(exp.To, s)
		}
		decl.Exports = append(decl.Exports, exp)
	}
	return decl, nil
}

func decodeType(m map[string]any) (*TypeDecl, error) {
	name, err := strField(m, "name")
	if err != nil {
		return nil, fmt.Errorf("hir: type: %w", err)
	}
	kind := TypeKind(optString(m, "kind"))
	if kind == "" {
		kind = KindClass
	}
	switch kind {
	case KindClass, KindInterface, KindEnum, KindRecord, KindAnnotation:
	default:
		return nil, fmt.Errorf("hir: type %s: unknown kind %q", name, kind)
	}
	mods, err := decodeModifiers(m)
	if err != nil {
		return nil, fmt.Errorf("hir: type %s: %w", name, err)
	}
	td := &TypeDecl{
		Kind:      kind,
		Name:      name,
		NameSpan:  optSpan(m, "nameSpan"),
		Modifiers: mods,
		Span:      optSpan(m, "span"),
	}
	if td.TypeParams, err = decodeTypeParams(m); err != nil {
		return nil, fmt.Errorf("hir: type %s: %w", name, err)
	}
	if td.Extends, err = decodeTypeRefs(m, "extends"); err != nil {
		return nil, fmt.Errorf("hir: type %s: %w", name, err)
	}
	if td.Implements, err = decodeTypeRefs(m, "implements"); err != nil {
		return nil, fmt.Errorf("hir: type %s: %w", name, err)
	}
	for i, v := range optArr(m, "fields") {
		fm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: type %s: field %d: expected object", name, i)
		}
		fd, err := decodeField(fm)
		if err != nil {
			return nil, fmt.Errorf("hir: type %s: %w", name, err)
		}
		td.Fields = append(td.Fields, fd)
	}
	for i, v := range optArr(m, "methods") {
		mm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: type %s: method %d: expected object", name, i)
		}
		md, err := decodeMethod(mm)
		if err != nil {
			return nil, fmt.Errorf("hir: type %s: %w", name, err)
		}
		td.Methods = append(td.Methods, md)
	}
	for i, v := range optArr(m, "ctors") {
		cm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: type %s: ctor %d: expected object", name, i)
		}
		cd, err := decodeCtor(cm)
		if err != nil {
			return nil, fmt.Errorf("hir: type %s: %w", name, err)
		}
		td.Ctors = append(td.Ctors, cd)
	}
	for i, v := range optArr(m, "inits") {
		im, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: type %s: init %d: expected object", name, i)
		}
		body, err := decodeStmtBody(im, "body", nil)
		if err != nil {
			return nil, fmt.Errorf("hir: type %s: init %d: %w", name, i, err)
		}
		td.Inits = append(td.Inits, Initializer{
			Static: optBool(im, "static"),
			Body:   body,
			Span:   optSpan(im, "span"),
		})
	}
	for i, v := range optArr(m, "nested") {
		nm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hir: type %s: nested %d: expected object", name, i)
		}
		nd, err := decodeType(nm)
		if err != nil {
			return nil, err
		}
		td.Nested = append(td.Nested, nd)
	}
	return td, nil
}

func decodeField(m map[string]any) (FieldDecl, error) {
	name, err := strField(m, "name")
	if err != nil {
		return FieldDecl{}, fmt.Errorf("field: %w", err)
	}
	kind := FieldKind(optString(m, "kind"))
	if kind == "" {
		kind = FieldOrdinary
	}
	mods, err := decodeModifiers(m)
	if err != nil {
		return FieldDecl{}, fmt.Errorf("field %s: %w", name, err)
	}
	ty, err := optTypeRef(m, "type")
	if err != nil {
		return FieldDecl{}, fmt.Errorf("field %s: %w", name, err)
	}
	fd := FieldDecl{
		Kind:      kind,
		Modifiers: mods,
		Type:      ty,
		Name:      name,
		NameSpan:  optSpan(m, "nameSpan"),
		Span:      optSpan(m, "span"),
	}
	if init := optObj(m, "init"); init != nil {
		d := &bodyDecoder{b: NewBodyBuilder()}
		root, err := d.expr(init)
		if err != nil {
			return FieldDecl{}, fmt.Errorf("field %s: %w", name, err)
		}
		fd.Init = d.b.FinishExpr(root)
	}
	return fd, nil
}

func decodeMethod(m map[string]any) (MethodDecl, error) {
	name, err := strField(m, "name")
	if err != nil {
		return MethodDecl{}, fmt.Errorf("method: %w", err)
	}
	mods, err := decodeModifiers(m)
	if err != nil {
		return MethodDecl{}, fmt.Errorf("method %s: %w", name, err)
	}
	ret, err := optTypeRef(m, "return")
	if err != nil {
		return MethodDecl{}, fmt.Errorf("method %s: %w", name, err)
	}
	md := MethodDecl{
		Modifiers: mods,
		Return:    ret,
		Name:      name,
		NameSpan:  optSpan(m, "nameSpan"),
		Span:      optSpan(m, "span"),
	}
	if md.TypeParams, err = decodeTypeParams(m); err != nil {
		return MethodDecl{}, fmt.Errorf("method %s: %w", name, err)
	}
	if md.Params, err = decodeParams(m); err != nil {
		return MethodDecl{}, fmt.Errorf("method %s: %w", name, err)
	}
	if md.Throws, err = decodeTypeRefs(m, "throws"); err != nil {
		return MethodDecl{}, fmt.Errorf("method %s: %w", name, err)
	}
	if md.Body, err = decodeStmtBody(m, "body", md.Params); err != nil {
		return MethodDecl{}, fmt.Errorf("method %s: %w", name, err)
	}
	return md, nil
}

func decodeCtor(m map[string]any) (CtorDecl, error) {
	mods, err := decodeModifiers(m)
	if err != nil {
		return CtorDecl{}, fmt.Errorf("ctor: %w", err)
	}
	cd := CtorDecl{Modifiers: mods, Span: optSpan(m, "span")}
	if cd.TypeParams, err = decodeTypeParams(m); err != nil {
		return CtorDecl{}, fmt.Errorf("ctor: %w", err)
	}
	if cd.Params, err = decodeParams(m); err != nil {
		return CtorDecl{}, fmt.Errorf("ctor: %w", err)
	}
	if cd.Throws, err = decodeTypeRefs(m, "throws"); err != nil {
		return CtorDecl{}, fmt.Errorf("ctor: %w", err)
	}
	if cd.Body, err = decodeStmtBody(m, "body", cd.Params); err != nil {
		return CtorDecl{}, fmt.Errorf("ctor: %w", err)
	}
	return cd, nil
}

func decodeTypeParams(m map[string]any) ([]TypeParamDecl, error) {
	var out []TypeParamDecl
	for i, v := range optArr(m, "typeParams") {
		switch tp := v.(type) {
		case string:
			out = append(out, TypeParamDecl{Name: tp})
		case map[string]any:
			name, err := strField(tp, "name")
			if err != nil {
				return nil, fmt.Errorf("type param %d: %w", i, err)
			}
			bounds, err := decodeTypeRefs(tp, "bounds")
			if err != nil {
				return nil, fmt.Errorf("type param %s: %w", name, err)
			}
			out = append(out, TypeParamDecl{Name: name, NameSpan: optSpan(tp, "nameSpan"), Bounds: bounds})
		default:
			return nil, fmt.Errorf("type param %d: expected string or object", i)
		}
	}
	return out, nil
}

func decodeParams(m map[string]any) ([]ParamDecl, error) {
	var out []ParamDecl
	for i, v := range optArr(m, "params") {
		pm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("param %d: expected object", i)
		}
		name, err := strField(pm, "name")
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		ty, err := optTypeRef(pm, "type")
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		mods, err := decodeModifiers(pm)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		out = append(out, ParamDecl{
			Modifiers: mods,
			Type:      ty,
			Name:      name,
			Varargs:   optBool(pm, "varargs"),
		})
	}
	return out, nil
}

// decodeStmtBody builds the statement body stored under key, seeding the
// arena with one slot per parameter.
func decodeStmtBody(m map[string]any, key string, params []ParamDecl) (*Body, error) {
	node := optObj(m, key)
	if node == nil {
		return nil, nil
	}
	d := &bodyDecoder{b: NewBodyBuilder()}
	for _, p := range params {
		d.b.AddParam(Local{Name: p.Name, Type: p.Type})
	}
	root, err := d.stmt(node)
	if err != nil {
		return nil, err
	}
	return d.b.Finish(root), nil
}

type bodyDecoder struct {
	b *BodyBuilder
}

func (d *bodyDecoder) stmt(m map[string]any) (StmtID, error) {
	kind, err := strField(m, "kind")
	if err != nil {
		return NoStmt, err
	}
	switch kind {
	case "block":
		var stmts []StmtID
		var span types.Span
		for i, v := range optArr(m, "stmts") {
			sm, ok := v.(map[string]any)
			if !ok {
				return NoStmt, fmt.Errorf("block stmt %d: expected object", i)
			}
			id, err := d.stmt(sm)
			if err != nil {
				return NoStmt, err
			}
			stmts = append(stmts, id)
			span = cover(span, d.stmtSpan(id))
		}
		return d.addStmt(m, &BlockStmt{Stmts: stmts}, span), nil
	case "local":
		local, err := d.local(m)
		if err != nil {
			return NoStmt, err
		}
		init, err := d.optExpr(m, "init")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &LocalDeclStmt{Local: local, Init: init}, d.exprSpan(init)), nil
	case "exprStmt":
		e, err := d.reqExpr(m, "expr")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &ExprStmt{Expr: e}, d.exprSpan(e)), nil
	case "return":
		v, err := d.optExpr(m, "value")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &ReturnStmt{Value: v}, d.exprSpan(v)), nil
	case "if":
		cond, err := d.reqExpr(m, "cond")
		if err != nil {
			return NoStmt, err
		}
		then, err := d.reqStmt(m, "then")
		if err != nil {
			return NoStmt, err
		}
		els, err := d.optStmt(m, "else")
		if err != nil {
			return NoStmt, err
		}
		span := cover(cover(d.exprSpan(cond), d.stmtSpan(then)), d.stmtSpan(els))
		return d.addStmt(m, &IfStmt{Cond: cond, Then: then, Else: els}, span), nil
	case "while":
		cond, err := d.reqExpr(m, "cond")
		if err != nil {
			return NoStmt, err
		}
		body, err := d.reqStmt(m, "body")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &WhileStmt{Cond: cond, Body: body}, cover(d.exprSpan(cond), d.stmtSpan(body))), nil
	case "for":
		var inits []StmtID
		for i, v := range optArr(m, "init") {
			sm, ok := v.(map[string]any)
			if !ok {
				return NoStmt, fmt.Errorf("for init %d: expected object", i)
			}
			id, err := d.stmt(sm)
			if err != nil {
				return NoStmt, err
			}
			inits = append(inits, id)
		}
		cond, err := d.optExpr(m, "cond")
		if err != nil {
			return NoStmt, err
		}
		var updates []ExprID
		for i, v := range optArr(m, "update") {
			em, ok := v.(map[string]any)
			if !ok {
				return NoStmt, fmt.Errorf("for update %d: expected object", i)
			}
			id, err := d.expr(em)
			if err != nil {
				return NoStmt, err
			}
			updates = append(updates, id)
		}
		body, err := d.reqStmt(m, "body")
		if err != nil {
			return NoStmt, err
		}
		span := d.stmtSpan(body)
		for _, s := range inits {
			span = cover(span, d.stmtSpan(s))
		}
		return d.addStmt(m, &ForStmt{Init: inits, Cond: cond, Update: updates, Body: body}, span), nil
	case "forEach":
		local, err := d.local(m)
		if err != nil {
			return NoStmt, err
		}
		iter, err := d.reqExpr(m, "iterable")
		if err != nil {
			return NoStmt, err
		}
		body, err := d.reqStmt(m, "body")
		if err != nil {
			return NoStmt, err
		}
		span := cover(d.exprSpan(iter), d.stmtSpan(body))
		return d.addStmt(m, &ForEachStmt{Local: local, Iterable: iter, Body: body}, span), nil
	case "switch":
		sel, err := d.reqExpr(m, "selector")
		if err != nil {
			return NoStmt, err
		}
		arms, err := d.arms(m)
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &SwitchStmt{Selector: sel, Arms: arms}, d.exprSpan(sel)), nil
	case "yield":
		v, err := d.reqExpr(m, "value")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &YieldStmt{Value: v}, d.exprSpan(v)), nil
	case "break":
		return d.addStmt(m, &BreakStmt{}, types.Span{}), nil
	case "continue":
		return d.addStmt(m, &ContinueStmt{}, types.Span{}), nil
	case "throw":
		v, err := d.reqExpr(m, "value")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &ThrowStmt{Value: v}, d.exprSpan(v)), nil
	case "try":
		body, err := d.reqStmt(m, "body")
		if err != nil {
			return NoStmt, err
		}
		var catches []CatchClause
		for i, v := range optArr(m, "catches") {
			cm, ok := v.(map[string]any)
			if !ok {
				return NoStmt, fmt.Errorf("catch %d: expected object", i)
			}
			param, err := d.local(cm)
			if err != nil {
				return NoStmt, err
			}
			cbody, err := d.reqStmt(cm, "body")
			if err != nil {
				return NoStmt, err
			}
			catches = append(catches, CatchClause{Param: param, Body: cbody, Span: optSpan(cm, "span")})
		}
		fin, err := d.optStmt(m, "finally")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &TryStmt{Body: body, Catches: catches, Finally: fin}, d.stmtSpan(body)), nil
	case "sync":
		lock, err := d.reqExpr(m, "lock")
		if err != nil {
			return NoStmt, err
		}
		body, err := d.reqStmt(m, "body")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &SyncStmt{Lock: lock, Body: body}, cover(d.exprSpan(lock), d.stmtSpan(body))), nil
	case "assert":
		cond, err := d.reqExpr(m, "cond")
		if err != nil {
			return NoStmt, err
		}
		msg, err := d.optExpr(m, "message")
		if err != nil {
			return NoStmt, err
		}
		return d.addStmt(m, &AssertStmt{Cond: cond, Message: msg}, d.exprSpan(cond)), nil
	case "empty":
		return d.addStmt(m, &EmptyStmt{}, types.Span{}), nil
	default:
		return NoStmt, fmt.Errorf("unsupported statement kind %q", kind)
	}
}

func (d *bodyDecoder) expr(m map[string]any) (ExprID, error) {
	kind, err := strField(m, "kind")
	if err != nil {
		return NoExpr, err
	}
	switch kind {
	case "name":
		name, err := strField(m, "name")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &NameExpr{Name: name}, types.Span{}), nil
	case "literal":
		lit, err := strField(m, "literal")
		if err != nil {
			return NoExpr, err
		}
		lk := LiteralKind(lit)
		switch lk {
		case LitInt, LitLong, LitFloat, LitDouble, LitChar, LitString, LitTextBlock, LitBool:
		default:
			return NoExpr, fmt.Errorf("unsupported literal kind %q", lit)
		}
		text, err := strField(m, "text")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &LiteralExpr{Kind: lk, Text: text}, types.Span{}), nil
	case "null":
		return d.addExpr(m, &NullExpr{}, types.Span{}), nil
	case "this":
		return d.addExpr(m, &ThisExpr{}, types.Span{}), nil
	case "super":
		return d.addExpr(m, &SuperExpr{}, types.Span{}), nil
	case "field":
		recv, err := d.reqExpr(m, "receiver")
		if err != nil {
			return NoExpr, err
		}
		name, err := strField(m, "name")
		if err != nil {
			return NoExpr, err
		}
		e := &FieldAccessExpr{Receiver: recv, Name: name, NameSpan: optSpan(m, "nameSpan")}
		return d.addExpr(m, e, cover(d.exprSpan(recv), e.NameSpan)), nil
	case "index":
		arr, err := d.reqExpr(m, "array")
		if err != nil {
			return NoExpr, err
		}
		idx, err := d.reqExpr(m, "index")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &IndexExpr{Array: arr, Index: idx}, cover(d.exprSpan(arr), d.exprSpan(idx))), nil
	case "call":
		callee, err := d.reqExpr(m, "callee")
		if err != nil {
			return NoExpr, err
		}
		args, err := d.exprList(m, "args")
		if err != nil {
			return NoExpr, err
		}
		typeArgs, err := decodeTypeRefs(m, "typeArgs")
		if err != nil {
			return NoExpr, err
		}
		span := d.exprSpan(callee)
		for _, a := range args {
			span = cover(span, d.exprSpan(a))
		}
		return d.addExpr(m, &CallExpr{Callee: callee, Args: args, TypeArgs: typeArgs}, span), nil
	case "new":
		class, err := reqTypeRef(m, "class")
		if err != nil {
			return NoExpr, err
		}
		args, err := d.exprList(m, "args")
		if err != nil {
			return NoExpr, err
		}
		span := class.Span
		for _, a := range args {
			span = cover(span, d.exprSpan(a))
		}
		return d.addExpr(m, &NewExpr{Class: class, Diamond: optBool(m, "diamond"), Args: args}, span), nil
	case "newArray":
		elem, err := reqTypeRef(m, "elem")
		if err != nil {
			return NoExpr, err
		}
		dims, err := d.exprList(m, "dims")
		if err != nil {
			return NoExpr, err
		}
		init, err := d.optExpr(m, "init")
		if err != nil {
			return NoExpr, err
		}
		e := &NewArrayExpr{Elem: elem, Dims: dims, ExtraDims: optInt(m, "extraDims"), Init: init}
		return d.addExpr(m, e, elem.Span), nil
	case "arrayInit":
		elems, err := d.exprList(m, "elems")
		if err != nil {
			return NoExpr, err
		}
		var span types.Span
		for _, el := range elems {
			span = cover(span, d.exprSpan(el))
		}
		return d.addExpr(m, &ArrayInitExpr{Elems: elems}, span), nil
	case "unary":
		op, err := strField(m, "op")
		if err != nil {
			return NoExpr, err
		}
		operand, err := d.reqExpr(m, "operand")
		if err != nil {
			return NoExpr, err
		}
		e := &UnaryExpr{Op: UnaryOp(op), Operand: operand, Postfix: optBool(m, "postfix")}
		return d.addExpr(m, e, d.exprSpan(operand)), nil
	case "binary":
		op, err := strField(m, "op")
		if err != nil {
			return NoExpr, err
		}
		left, err := d.reqExpr(m, "left")
		if err != nil {
			return NoExpr, err
		}
		right, err := d.reqExpr(m, "right")
		if err != nil {
			return NoExpr, err
		}
		e := &BinaryExpr{Op: op, Left: left, Right: right}
		return d.addExpr(m, e, cover(d.exprSpan(left), d.exprSpan(right))), nil
	case "assign":
		op := optString(m, "op")
		if op == "" {
			op = "="
		}
		target, err := d.reqExpr(m, "target")
		if err != nil {
			return NoExpr, err
		}
		value, err := d.reqExpr(m, "value")
		if err != nil {
			return NoExpr, err
		}
		e := &AssignExpr{Op: AssignOp(op), Target: target, Value: value}
		return d.addExpr(m, e, cover(d.exprSpan(target), d.exprSpan(value))), nil
	case "cond":
		cond, err := d.reqExpr(m, "cond")
		if err != nil {
			return NoExpr, err
		}
		then, err := d.reqExpr(m, "then")
		if err != nil {
			return NoExpr, err
		}
		els, err := d.reqExpr(m, "else")
		if err != nil {
			return NoExpr, err
		}
		span := cover(cover(d.exprSpan(cond), d.exprSpan(then)), d.exprSpan(els))
		return d.addExpr(m, &CondExpr{Cond: cond, Then: then, Else: els}, span), nil
	case "cast":
		ty, err := reqTypeRef(m, "type")
		if err != nil {
			return NoExpr, err
		}
		inner, err := d.reqExpr(m, "expr")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &CastExpr{Type: ty, Expr: inner}, cover(ty.Span, d.exprSpan(inner))), nil
	case "instanceof":
		inner, err := d.reqExpr(m, "expr")
		if err != nil {
			return NoExpr, err
		}
		ty, err := reqTypeRef(m, "type")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &InstanceofExpr{Expr: inner, Type: ty}, cover(d.exprSpan(inner), ty.Span)), nil
	case "methodRef":
		recv, err := d.reqExpr(m, "receiver")
		if err != nil {
			return NoExpr, err
		}
		name, err := strField(m, "name")
		if err != nil {
			return NoExpr, err
		}
		e := &MethodRefExpr{Receiver: recv, Name: name, NameSpan: optSpan(m, "nameSpan")}
		return d.addExpr(m, e, cover(d.exprSpan(recv), e.NameSpan)), nil
	case "ctorRef":
		recv, err := d.reqExpr(m, "receiver")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &CtorRefExpr{Receiver: recv}, d.exprSpan(recv)), nil
	case "classLit":
		target, err := d.reqExpr(m, "target")
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &ClassLiteralExpr{Target: target}, d.exprSpan(target)), nil
	case "lambda":
		var params []LocalID
		for i, v := range optArr(m, "params") {
			pm, ok := v.(map[string]any)
			if !ok {
				return NoExpr, fmt.Errorf("lambda param %d: expected object", i)
			}
			p, err := d.local(pm)
			if err != nil {
				return NoExpr, err
			}
			params = append(params, p)
		}
		e := &LambdaExpr{Params: params, Expr: NoExpr, Block: NoStmt}
		var span types.Span
		if body := optObj(m, "expr"); body != nil {
			id, err := d.expr(body)
			if err != nil {
				return NoExpr, err
			}
			e.Expr = id
			span = d.exprSpan(id)
		} else if body := optObj(m, "block"); body != nil {
			id, err := d.stmt(body)
			if err != nil {
				return NoExpr, err
			}
			e.Block = id
			span = d.stmtSpan(id)
		} else {
			return NoExpr, fmt.Errorf("lambda: missing expr or block")
		}
		return d.addExpr(m, e, span), nil
	case "switchExpr":
		sel, err := d.reqExpr(m, "selector")
		if err != nil {
			return NoExpr, err
		}
		arms, err := d.arms(m)
		if err != nil {
			return NoExpr, err
		}
		return d.addExpr(m, &SwitchExpr{Selector: sel, Arms: arms}, d.exprSpan(sel)), nil
	case "invalid":
		children, err := d.exprList(m, "children")
		if err != nil {
			return NoExpr, err
		}
		var span types.Span
		for _, c := range children {
			span = cover(span, d.exprSpan(c))
		}
		return d.addExpr(m, &InvalidExpr{Children: children}, span), nil
	case "missing":
		return d.addExpr(m, &MissingExpr{}, types.Span{}), nil
	default:
		return NoExpr, fmt.Errorf("unsupported expression kind %q", kind)
	}
}

func (d *bodyDecoder) arms(m map[string]any) ([]SwitchArm, error) {
	var arms []SwitchArm
	for i, v := range optArr(m, "arms") {
		am, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("arm %d: expected object", i)
		}
		labels, err := d.exprList(am, "labels")
		if err != nil {
			return nil, err
		}
		value, err := d.optExpr(am, "value")
		if err != nil {
			return nil, err
		}
		var body []StmtID
		for j, sv := range optArr(am, "body") {
			sm, ok := sv.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("arm %d stmt %d: expected object", i, j)
			}
			id, err := d.stmt(sm)
			if err != nil {
				return nil, err
			}
			body = append(body, id)
		}
		arms = append(arms, SwitchArm{
			Labels:  labels,
			Default: optBool(am, "default"),
			Value:   value,
			Body:    body,
			Span:    optSpan(am, "span"),
		})
	}
	return arms, nil
}

// local decodes the name/type pair shared by local declarations, catch
// clauses, for-each variables and lambda parameters.
func (d *bodyDecoder) local(m map[string]any) (LocalID, error) {
	name, err := strField(m, "name")
	if err != nil {
		return NoLocal, err
	}
	ty, err := optTypeRef(m, "type")
	if err != nil {
		return NoLocal, fmt.Errorf("local %s: %w", name, err)
	}
	return d.b.AddLocal(Local{
		Name:     name,
		NameSpan: optSpan(m, "nameSpan"),
		Type:     ty,
		Span:     optSpan(m, "span"),
	}), nil
}

func (d *bodyDecoder) exprList(m map[string]any, key string) ([]ExprID, error) {
	var out []ExprID
	for i, v := range optArr(m, key) {
		em, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s %d: expected object", key, i)
		}
		id, err := d.expr(em)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *bodyDecoder) reqExpr(m map[string]any, key string) (ExprID, error) {
	node := optObj(m, key)
	if node == nil {
		return NoExpr, fmt.Errorf("missing %s", key)
	}
	return d.expr(node)
}

func (d *bodyDecoder) optExpr(m map[string]any, key string) (ExprID, error) {
	node := optObj(m, key)
	if node == nil {
		return NoExpr, nil
	}
	return d.expr(node)
}

func (d *bodyDecoder) reqStmt(m map[string]any, key string) (StmtID, error) {
	node := optObj(m, key)
	if node == nil {
		return NoStmt, fmt.Errorf("missing %s", key)
	}
	return d.stmt(node)
}

func (d *bodyDecoder) optStmt(m map[string]any, key string) (StmtID, error) {
	node := optObj(m, key)
	if node == nil {
		return NoStmt, nil
	}
	return d.stmt(node)
}

// addExpr prefers the node's explicit span over the computed fallback.
func (d *bodyDecoder) addExpr(m map[string]any, data ExprData, fallback types.Span) ExprID {
	span := fallback
	if sp := optObj(m, "span"); sp != nil {
		span = decodeSpan(sp)
	}
	return d.b.AddExpr(data, span)
}

func (d *bodyDecoder) addStmt(m map[string]any, data StmtData, fallback types.Span) StmtID {
	span := fallback
	if sp := optObj(m, "span"); sp != nil {
		span = decodeSpan(sp)
	}
	return d.b.AddStmt(data, span)
}

func (d *bodyDecoder) exprSpan(id ExprID) types.Span {
	if id == NoExpr {
		return types.Span{}
	}
	return d.b.body.exprSpans[id]
}

func (d *bodyDecoder) stmtSpan(id StmtID) types.Span {
	if id == NoStmt {
		return types.Span{}
	}
	return d.b.body.stmtSpans[id]
}

// cover unions two spans, ignoring zero spans so absent children do not
// drag ranges to offset zero.
func cover(a, b types.Span) types.Span {
	if a == (types.Span{}) {
		return b
	}
	if b == (types.Span{}) {
		return a
	}
	return a.Cover(b)
}

func decodeModifiers(m map[string]any) (Modifiers, error) {
	var mods Modifiers
	for _, v := range optArr(m, "modifiers") {
		s, ok := v.(string)
		if !ok {
			return 0, fmt.Errorf("malformed modifiers")
		}
		bit := ParseModifier(s)
		if bit == 0 {
			return 0, fmt.Errorf("unknown modifier %q", s)
		}
		mods |= bit
	}
	return mods, nil
}

// decodeTypeRef accepts either a plain string or {"text": ..., "span": ...}.
func decodeTypeRef(v any) (TypeRef, error) {
	switch t := v.(type) {
	case string:
		return TypeRef{Text: t}, nil
	case map[string]any:
		text, err := strField(t, "text")
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Text: text, Span: optSpan(t, "span")}, nil
	default:
		return TypeRef{}, fmt.Errorf("expected type text")
	}
}

func reqTypeRef(m map[string]any, key string) (TypeRef, error) {
	v, ok := m[key]
	if !ok {
		return TypeRef{}, fmt.Errorf("missing %s", key)
	}
	return decodeTypeRef(v)
}

func optTypeRef(m map[string]any, key string) (TypeRef, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return TypeRef{}, nil
	}
	return decodeTypeRef(v)
}

func decodeTypeRefs(m map[string]any, key string) ([]TypeRef, error) {
	var out []TypeRef
	for i, v := range optArr(m, key) {
		tr, err := decodeTypeRef(v)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", key, i, err)
		}
		out = append(out, tr)
	}
	return out, nil
}

func decodeSpan(m map[string]any) types.Span {
	start, _ := m["start"].(float64)
	end, _ := m["end"].(float64)
	return types.NewSpan(uint32(start), uint32(end))
}

func optSpan(m map[string]any, key string) types.Span {
	if sp := optObj(m, key); sp != nil {
		return decodeSpan(sp)
	}
	return types.Span{}
}

func strField(m map[string]any, key string) (string, error) {
	v, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

func optString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func optBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func optInt(m map[string]any, key string) int {
	v, _ := m[key].(float64)
	return int(v)
}

func optObj(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func optArr(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}
