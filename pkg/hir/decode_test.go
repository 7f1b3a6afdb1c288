package hir

import (
	"strings"
	"testing"

	"javasem/analyzer-go/pkg/types"
)

func TestDecodeFileItems(t *testing.T) {
	src := `{
	  "path": "p/C.java",
	  "package": "p",
	  "imports": [
	    {"path": "java.util.List"},
	    {"path": "java.util", "onDemand": true},
	    {"path": "java.lang.Math.max", "static": true}
	  ],
	  "types": [{
	    "kind": "class", "name": "C", "modifiers": ["public", "final"],
	    "typeParams": [{"name": "T", "bounds": ["Comparable<T>"]}],
	    "extends": ["Base"],
	    "implements": ["Runnable"],
	    "fields": [{
	      "name": "count", "type": "int", "modifiers": ["static"],
	      "init": {"kind": "literal", "literal": "int", "text": "1"}
	    }],
	    "methods": [{
	      "name": "add", "return": "int",
	      "params": [{"type": "int", "name": "a"}, {"type": "int", "name": "b"}],
	      "body": {"kind": "block", "stmts": [
	        {"kind": "return", "value": {"kind": "binary", "op": "+",
	          "left": {"kind": "name", "name": "a", "span": {"start": 40, "end": 41}},
	          "right": {"kind": "name", "name": "b", "span": {"start": 44, "end": 45}}}}
	      ]}
	    }],
	    "ctors": [{
	      "params": [{"type": "int", "name": "n"}],
	      "body": {"kind": "block", "stmts": []}
	    }],
	    "inits": [{"static": true, "body": {"kind": "block", "stmts": []}}],
	    "nested": [{"kind": "interface", "name": "Inner", "methods": [{"name": "run", "return": "void"}]}]
	  }]
	}`

	f, err := DecodeFile([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if f.Package != "p" || f.Path != "p/C.java" {
		t.Fatalf("header = %q %q", f.Package, f.Path)
	}
	if len(f.Imports) != 3 || !f.Imports[1].OnDemand || !f.Imports[2].Static {
		t.Fatalf("imports decoded wrong: %+v", f.Imports)
	}

	c := f.Types[0]
	if c.Kind != KindClass || c.Name != "C" {
		t.Fatalf("type header = %s %s", c.Kind, c.Name)
	}
	if !c.Modifiers.Has(ModPublic | ModFinal) {
		t.Fatalf("modifiers = %s", c.Modifiers)
	}
	if len(c.TypeParams) != 1 || c.TypeParams[0].Bounds[0].Text != "Comparable<T>" {
		t.Fatalf("type params = %+v", c.TypeParams)
	}
	if c.Extends[0].Text != "Base" || c.Implements[0].Text != "Runnable" {
		t.Fatalf("supertypes = %+v %+v", c.Extends, c.Implements)
	}

	count := c.Fields[0]
	if count.Kind != FieldOrdinary || !count.Modifiers.IsStatic() || count.Type.Text != "int" {
		t.Fatalf("field = %+v", count)
	}
	root := count.Init.RootExpr()
	lit, ok := count.Init.Expr(root).(*LiteralExpr)
	if !ok || lit.Kind != LitInt || lit.Text != "1" {
		t.Fatalf("field initializer = %#v", count.Init.Expr(root))
	}

	add := c.Methods[0]
	if add.Return.Text != "int" || len(add.Params) != 2 {
		t.Fatalf("method signature = %+v", add)
	}
	body := add.Body
	if len(body.Params()) != 2 || body.Local(body.Params()[0]).Name != "a" {
		t.Fatalf("parameter slots not seeded: %+v", body.Params())
	}
	blk := body.Stmt(body.Root()).(*BlockStmt)
	ret := body.Stmt(blk.Stmts[0]).(*ReturnStmt)
	bin := body.Expr(ret.Value).(*BinaryExpr)
	if bin.Op != "+" {
		t.Fatalf("return value = %#v", bin)
	}
	if got := body.ExprSpan(ret.Value); got != types.NewSpan(40, 45) {
		t.Fatalf("binary span = %+v, want cover of its operands", got)
	}
	if got := body.ExprSpan(bin.Left); got != types.NewSpan(40, 41) {
		t.Fatalf("explicit span lost: %+v", got)
	}

	if len(c.Ctors) != 1 || c.Ctors[0].Params[0].Name != "n" {
		t.Fatalf("ctor = %+v", c.Ctors)
	}
	if len(c.Inits) != 1 || !c.Inits[0].Static {
		t.Fatalf("inits = %+v", c.Inits)
	}
	inner := c.Nested[0]
	if inner.Kind != KindInterface || inner.Methods[0].Body != nil {
		t.Fatalf("nested = %+v", inner)
	}
}

func TestDecodeStatements(t *testing.T) {
	src := `{"types": [{"name": "S", "methods": [{"name": "m", "return": "void",
	  "body": {"kind": "block", "stmts": [
	    {"kind": "local", "name": "x", "type": "var",
	     "init": {"kind": "literal", "literal": "int", "text": "42"}},
	    {"kind": "if",
	     "cond": {"kind": "binary", "op": ">", "left": {"kind": "name", "name": "x"}, "right": {"kind": "literal", "literal": "int", "text": "0"}},
	     "then": {"kind": "exprStmt", "expr": {"kind": "assign", "target": {"kind": "name", "name": "x"}, "value": {"kind": "literal", "literal": "int", "text": "0"}}}},
	    {"kind": "forEach", "name": "c", "type": "char",
	     "iterable": {"kind": "name", "name": "chars"},
	     "body": {"kind": "block", "stmts": [{"kind": "continue"}]}},
	    {"kind": "try",
	     "body": {"kind": "block", "stmts": [{"kind": "throw", "value": {"kind": "null"}}]},
	     "catches": [{"name": "e", "type": "RuntimeException | Error",
	       "body": {"kind": "block", "stmts": [{"kind": "empty"}]}}],
	     "finally": {"kind": "block", "stmts": []}},
	    {"kind": "switch", "selector": {"kind": "name", "name": "x"},
	     "arms": [
	       {"labels": [{"kind": "literal", "literal": "int", "text": "1"}],
	        "value": {"kind": "literal", "literal": "int", "text": "10"}},
	       {"default": true, "body": [{"kind": "break"}]}
	     ]}
	  ]}}]}]}`

	f, err := DecodeFile([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	body := f.Types[0].Methods[0].Body
	blk := body.Stmt(body.Root()).(*BlockStmt)
	if len(blk.Stmts) != 5 {
		t.Fatalf("decoded %d statements, want 5", len(blk.Stmts))
	}

	decl := body.Stmt(blk.Stmts[0]).(*LocalDeclStmt)
	if local := body.Local(decl.Local); !local.Type.IsVar() {
		t.Fatalf("local type = %+v, want var", local.Type)
	}
	ifs := body.Stmt(blk.Stmts[1]).(*IfStmt)
	if ifs.Else != NoStmt {
		t.Fatalf("absent else decoded as %d", ifs.Else)
	}
	fe := body.Stmt(blk.Stmts[2]).(*ForEachStmt)
	if body.Local(fe.Local).Type.Text != "char" {
		t.Fatalf("for-each variable = %+v", body.Local(fe.Local))
	}
	try := body.Stmt(blk.Stmts[3]).(*TryStmt)
	if len(try.Catches) != 1 || try.Finally == NoStmt {
		t.Fatalf("try = %+v", try)
	}
	if got := body.Local(try.Catches[0].Param).Type.Text; got != "RuntimeException | Error" {
		t.Fatalf("multi-catch type text = %q", got)
	}
	sw := body.Stmt(blk.Stmts[4]).(*SwitchStmt)
	if len(sw.Arms) != 2 || sw.Arms[0].Value == NoExpr || !sw.Arms[1].Default {
		t.Fatalf("switch arms = %+v", sw.Arms)
	}
}

func TestDecodeModuleInfo(t *testing.T) {
	src := `{"path": "module-info.java", "module": {
	  "name": "m.app", "open": true,
	  "requires": [{"module": "m.lib", "transitive": true}, {"module": "m.test", "static": true}],
	  "exports": [{"package": "m.app.api", "to": ["m.lib"]}, {"package": "m.app.spi"}]
	}}`

	f, err := DecodeFile([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	mod := f.Module
	if mod == nil || mod.Name != "m.app" || !mod.Open {
		t.Fatalf("module = %+v", mod)
	}
	if !mod.Requires[0].Transitive || !mod.Requires[1].Static {
		t.Fatalf("requires = %+v", mod.Requires)
	}
	if mod.Exports[0].To[0] != "m.lib" || mod.Exports[1].To != nil {
		t.Fatalf("exports = %+v", mod.Exports)
	}
}

func TestDecodeRejectsUnknownShapes(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`{"types": [{"name": "C", "methods": [{"name": "m", "body": {"kind": "goto"}}]}]}`, "goto"},
		{`{"types": [{"name": "C", "fields": [{"name": "f", "init": {"kind": "literal", "literal": "byte", "text": "1"}}]}]}`, "literal"},
		{`{"types": [{"name": "C", "modifiers": ["sticky"]}]}`, "sticky"},
		{`{"types": [{"kind": "struct", "name": "C"}]}`, "struct"},
		{`{"types": [{"name": "C", "methods": [{"name": "m", "body": {"kind": "exprStmt"}}]}]}`, "missing expr"},
		{`not json`, "parse"},
	}
	for _, tc := range cases {
		_, err := DecodeFile([]byte(tc.src))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("decode of %q: error = %v, want mention of %q", tc.src, err, tc.want)
		}
	}
}
