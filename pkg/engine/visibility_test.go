package engine

import (
	"testing"

	"javasem/analyzer-go/pkg/hir"
)

func TestPrivateMembersResolveWithinClass(t *testing.T) {
	hb := hir.NewBodyBuilder()
	helperBody := hb.Finish(hb.Block(hb.Ret(hb.Name("f"))))

	ub := hir.NewBodyBuilder()
	call := ub.Call(ub.Name("helper"))
	sum := ub.Bin("+", call, ub.Bin("+", ub.Name("f"), ub.Field(ub.This(), "f")))
	useBody := ub.Finish(ub.Block(ub.Ret(sum)))

	decl := &hir.TypeDecl{Kind: hir.KindClass, Name: "A",
		Fields: []hir.FieldDecl{{Modifiers: hir.ModPrivate, Type: hir.Ty("int"), Name: "f"}},
		Methods: []hir.MethodDecl{
			{Modifiers: hir.ModPrivate, Return: hir.Ty("int"), Name: "helper", Body: helperBody},
			method("use", "int", useBody),
		},
	}
	res := mustCheck(t, snapOf(classFile("A.hir.json", "p", decl)), MethodRef("p.A", "use", 1))
	wantNoDiags(t, res.Diags)
	wantType(t, res, sum, "int")
}

func TestPrivateInstanceMembersAcrossClasses(t *testing.T) {
	sb := hir.NewBodyBuilder()
	secretBody := sb.Finish(sb.Block(sb.Ret(sb.Name("f"))))
	a := &hir.TypeDecl{Kind: hir.KindClass, Name: "A",
		Fields: []hir.FieldDecl{{Modifiers: hir.ModPrivate, Type: hir.Ty("int"), Name: "f"}},
		Methods: []hir.MethodDecl{
			{Modifiers: hir.ModPrivate, Return: hir.Ty("int"), Name: "secret", Body: secretBody},
		},
	}

	bb := hir.NewBodyBuilder()
	bb.Param("a", "A")
	fr := bb.Field(bb.Name("a"), "f")
	_, d1 := bb.Decl("x", "int", fr)
	call := bb.Call(bb.Field(bb.Name("a"), "secret"))
	gBody := bb.Finish(bb.Block(d1, bb.Stmt(call)))
	b := class("B", method("g", "void", gBody, param("a", "A")))

	res := mustCheck(t, snapOf(classFile("A.hir.json", "p", a, b)), MethodRef("p.B", "g", 0))
	wantDiag(t, res.Diags, "unresolved-field", "`f` has private access in `A`")
	wantDiag(t, res.Diags, "unresolved-method", "`secret` has private access in `A`")
	// Resolution still found the members, so types flow past the report.
	wantType(t, res, fr, "int")
	wantType(t, res, call, "int")
}

func TestPrivateStaticMemberQualifiedAccess(t *testing.T) {
	a := &hir.TypeDecl{Kind: hir.KindClass, Name: "A",
		Fields: []hir.FieldDecl{{Modifiers: hir.ModPrivate | hir.ModStatic, Type: hir.Ty("int"), Name: "SECRET"}},
	}
	b := hir.NewBodyBuilder()
	read := b.Field(b.Name("A"), "SECRET")
	_, d := b.Decl("x", "int", read)
	body := b.Finish(b.Block(d))
	use := class("Use", method("f", "void", body))

	res := mustCheck(t, snapOf(classFile("A.hir.json", "p", a, use)), MethodRef("p.Use", "f", 0))
	wantDiag(t, res.Diags, "unresolved-static-member", "`SECRET` has private access in `A`")
	wantType(t, res, read, "int")
}

func TestPrivateConstructorsAcrossClasses(t *testing.T) {
	cb := hir.NewBodyBuilder()
	locked := class("Locked")
	locked.Ctors = []hir.CtorDecl{{Modifiers: hir.ModPrivate, Body: cb.Finish(cb.Block())}}

	enum := &hir.TypeDecl{Kind: hir.KindEnum, Name: "E", Fields: []hir.FieldDecl{
		{Kind: hir.FieldEnumConstant, Name: "A"},
	}}

	b := hir.NewBodyBuilder()
	nl := b.New("Locked")
	ne := b.New("E")
	body := b.Finish(b.Block(b.Stmt(nl), b.Stmt(ne)))
	use := class("Use", method("f", "void", body))

	res := mustCheck(t, snapOf(classFile("L.hir.json", "p", locked, enum, use)), MethodRef("p.Use", "f", 0))
	wantDiag(t, res.Diags, "unresolved-constructor", "`Locked(...)` has private access in `Locked`")
	wantDiag(t, res.Diags, "unresolved-constructor", "`E(...)` has private access in `E`")
}

func TestNestMatesShareAccess(t *testing.T) {
	hb := hir.NewBodyBuilder()
	helpBody := hb.Finish(hb.Block(hb.Ret(hb.Int("1"))))

	gb := hir.NewBodyBuilder()
	sum := gb.Bin("+", gb.Field(gb.Name("A"), "SECRET"), gb.Call(gb.Field(gb.Name("A"), "help")))
	gBody := gb.Finish(gb.Block(gb.Ret(sum)))
	inner := &hir.TypeDecl{Kind: hir.KindClass, Name: "Inner",
		Fields:  []hir.FieldDecl{{Modifiers: hir.ModPrivate | hir.ModStatic, Type: hir.Ty("int"), Name: "IN"}},
		Methods: []hir.MethodDecl{method("g", "int", gBody)},
	}

	mb := hir.NewBodyBuilder()
	in := mb.Field(mb.Field(mb.Name("A"), "Inner"), "IN")
	_, d := mb.Decl("x", "int", in)
	mBody := mb.Finish(mb.Block(d))

	outer := &hir.TypeDecl{Kind: hir.KindClass, Name: "A",
		Fields: []hir.FieldDecl{{Modifiers: hir.ModPrivate | hir.ModStatic, Type: hir.Ty("int"), Name: "SECRET"}},
		Methods: []hir.MethodDecl{
			{Modifiers: hir.ModPrivate | hir.ModStatic, Return: hir.Ty("int"), Name: "help", Body: helpBody},
			method("m", "void", mBody),
		},
		Nested: []*hir.TypeDecl{inner},
	}

	s := snapOf(classFile("A.hir.json", "p", outer))

	// The nested class reaches the outer class's private statics.
	res := mustCheck(t, s, MethodRef("p.A$Inner", "g", 0))
	wantNoDiags(t, res.Diags)
	wantType(t, res, sum, "int")

	// And the outer class reaches into the nested class.
	res = mustCheck(t, s, MethodRef("p.A", "m", 1))
	wantNoDiags(t, res.Diags)
	wantType(t, res, in, "int")
}

func TestPrivateMembersNotInherited(t *testing.T) {
	sb := hir.NewBodyBuilder()
	secretBody := sb.Finish(sb.Block(sb.Ret(sb.Int("1"))))
	base := &hir.TypeDecl{Kind: hir.KindClass, Name: "Base",
		Methods: []hir.MethodDecl{
			{Modifiers: hir.ModPrivate, Return: hir.Ty("int"), Name: "secret", Body: secretBody},
		},
	}

	rb := hir.NewBodyBuilder()
	rb.Param("s", "Sub")
	implicit := rb.Call(rb.Name("secret"))
	qualified := rb.Call(rb.Field(rb.Name("s"), "secret"))
	runBody := rb.Finish(rb.Block(rb.Stmt(implicit), rb.Stmt(qualified)))
	sub := class("Sub", method("run", "void", runBody, param("s", "Sub")))
	sub.Extends = []hir.TypeRef{hir.Ty("Base")}

	res := mustCheck(t, snapOf(classFile("S.hir.json", "p", base, sub)), MethodRef("p.Sub", "run", 0))
	wantDiag(t, res.Diags, "unresolved-method", "unresolved method `secret` for receiver `Sub`")
	if len(res.Diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2:\n%s", len(res.Diags), diagStrings(res.Diags))
	}
}

func TestStaticImportsAndPrivateMembers(t *testing.T) {
	mb := hir.NewBodyBuilder()
	mixBody := mb.Finish(mb.Block(mb.Ret(mb.Int("1"))))
	util := &hir.TypeDecl{Kind: hir.KindClass, Name: "Util",
		Fields: []hir.FieldDecl{
			{Modifiers: hir.ModPrivate | hir.ModStatic, Type: hir.Ty("int"), Name: "HIDDEN"},
			{Modifiers: hir.ModStatic, Type: hir.Ty("int"), Name: "SHOWN"},
		},
		Methods: []hir.MethodDecl{
			{Modifiers: hir.ModPrivate | hir.ModStatic, Return: hir.Ty("int"), Name: "mix", Body: mixBody},
		},
	}

	b := hir.NewBodyBuilder()
	shown := b.Name("SHOWN")
	_, d1 := b.Decl("a", "int", shown)
	hidden := b.Name("HIDDEN")
	_, d2 := b.Decl("h", "int", hidden)
	mix := b.Call(b.Name("mix"))
	body := b.Finish(b.Block(d1, d2, b.Stmt(mix)))
	f := &hir.File{Path: "Use.hir.json", Package: "p",
		Imports: []hir.Import{
			{Path: "util.Util.SHOWN", Static: true},
			{Path: "util.Util.HIDDEN", Static: true},
			{Path: "util.Util.mix", Static: true},
		},
		Types: []*hir.TypeDecl{class("Use", method("f", "void", body))},
	}

	s := snapOf(classFile("Util.hir.json", "util", util), f)
	res := mustCheck(t, s, MethodRef("p.Use", "f", 0))
	wantType(t, res, shown, "int")
	// A private static field never matches a static import from outside
	// its nest; a private method matches and is then reported.
	wantDiag(t, res.Diags, "unresolved-name", "cannot resolve `HIDDEN`")
	wantDiag(t, res.Diags, "unresolved-method", "`mix` has private access in `Util`")
}
