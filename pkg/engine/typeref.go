package engine

import (
	"errors"
	"fmt"
	"strings"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/loader"
	"javasem/analyzer-go/pkg/types"
)

// refEnv resolves source type references. Type parameters in scope
// shadow imported names; everything else goes through the file's
// resolver and is materialized by the loader. Unresolved and ambiguous
// names degrade to types.Error after reporting, so downstream checks do
// not cascade.
type refEnv struct {
	vars     []map[string]types.TypeVarID // outermost first, innermost shadows
	resolver *hir.Resolver
	loader   *loader.Loader
	report   func(types.Diagnostic)
}

func (r *refEnv) pushVars(m map[string]types.TypeVarID) {
	r.vars = append(r.vars, m)
}

func (r *refEnv) popVars() {
	r.vars = r.vars[:len(r.vars)-1]
}

func (r *refEnv) lookupVar(name string) (types.TypeVarID, bool) {
	for i := len(r.vars) - 1; i >= 0; i-- {
		if id, ok := r.vars[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (r *refEnv) diag(code, msg string, span types.Span) {
	if r.report == nil {
		return
	}
	if span.End > span.Start {
		r.report(types.ErrAt(code, msg, span))
	} else {
		r.report(types.Err(code, msg))
	}
}

// resolveRef resolves one written annotation. An absent annotation comes
// back as Error without a diagnostic; `var` is the caller's business.
func (r *refEnv) resolveRef(ref hir.TypeRef) (types.Type, error) {
	if ref.IsInferred() || ref.IsVar() {
		return types.Error, nil
	}
	p := &refParser{env: r, text: ref.Text, span: ref.Span}
	t, err := p.parseUnion()
	if err != nil || t == nil {
		if err != nil {
			return nil, err
		}
		r.diag("unresolved-type", fmt.Sprintf("cannot resolve type `%s`", strings.TrimSpace(ref.Text)), ref.Span)
		return types.Error, nil
	}
	return t, nil
}

// refParser scans a source type text: primitives, dotted names with type
// arguments, wildcards, array suffixes and multi-catch unions.
type refParser struct {
	env  *refEnv
	text string
	pos  int
	span types.Span
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.text) && (p.text[p.pos] == ' ' || p.text[p.pos] == '\t' || p.text[p.pos] == '\n') {
		p.pos++
	}
}

func (p *refParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.text) {
		return 0
	}
	return p.text[p.pos]
}

func (p *refParser) eat(b byte) bool {
	if p.peek() == b {
		p.pos++
		return true
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func (p *refParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.text) && isIdentByte(p.text[p.pos]) {
		p.pos++
	}
	return p.text[start:p.pos]
}

// parseUnion handles the multi-catch form `A | B`; the declared type of
// the parameter is the least upper bound of the alternatives.
func (p *refParser) parseUnion() (types.Type, error) {
	first, err := p.parseSingle()
	if err != nil || first == nil {
		return first, err
	}
	parts := []types.Type{first}
	for p.eat('|') {
		next, err := p.parseSingle()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		parts = append(parts, next)
	}
	if len(parts) == 1 {
		return first, nil
	}
	return types.LubAll(p.env.loader.Store(), parts), nil
}

func (p *refParser) parseSingle() (types.Type, error) {
	core, err := p.parseCore()
	if err != nil || core == nil {
		return core, err
	}
	for {
		save := p.pos
		if p.eat('[') && p.eat(']') {
			core = types.ArrayType{Element: core}
			continue
		}
		p.pos = save
		if strings.HasPrefix(p.text[p.pos:], "...") {
			p.pos += 3
			core = types.ArrayType{Element: core}
			continue
		}
		return core, nil
	}
}

var primitiveKinds = map[string]types.PrimitiveKind{
	"boolean": types.PrimBoolean,
	"byte":    types.PrimByte,
	"short":   types.PrimShort,
	"char":    types.PrimChar,
	"int":     types.PrimInt,
	"long":    types.PrimLong,
	"float":   types.PrimFloat,
	"double":  types.PrimDouble,
}

func (p *refParser) parseCore() (types.Type, error) {
	if p.peek() == '?' {
		p.pos++
		return p.parseWildcard()
	}
	name := p.ident()
	if name == "" {
		return nil, nil
	}
	if name == "void" {
		return types.Void, nil
	}
	if kind, ok := primitiveKinds[name]; ok {
		return types.PrimitiveType{Kind: kind}, nil
	}

	segments := []string{name}
	var args []types.Type
	haveArgs := false
	for {
		if p.peek() == '<' {
			p.pos++
			segArgs, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			args = segArgs
			haveArgs = true
		}
		save := p.pos
		if p.eat('.') {
			next := p.ident()
			if next == "" {
				p.pos = save
				break
			}
			segments = append(segments, next)
			continue
		}
		break
	}

	if !haveArgs && len(segments) == 1 {
		if id, ok := p.env.lookupVar(segments[0]); ok {
			return types.TypeVarType{Var: id}, nil
		}
	}
	return p.resolveNamed(segments, args)
}

func (p *refParser) parseWildcard() (types.Type, error) {
	save := p.pos
	word := p.ident()
	switch word {
	case "extends":
		bound, err := p.parseSingle()
		if err != nil || bound == nil {
			return bound, err
		}
		return types.WildcardType{Kind: types.WildcardExtends, Bound: bound}, nil
	case "super":
		bound, err := p.parseSingle()
		if err != nil || bound == nil {
			return bound, err
		}
		return types.WildcardType{Kind: types.WildcardSuper, Bound: bound}, nil
	default:
		p.pos = save
		return types.WildcardType{Kind: types.WildcardAny}, nil
	}
}

func (p *refParser) parseArgs() ([]types.Type, error) {
	// `<>` inside a written type is the diamond; NewExpr carries that as a
	// flag, so an empty list here just means raw-with-brackets.
	if p.eat('>') {
		return nil, nil
	}
	var out []types.Type
	for {
		arg, err := p.parseSingle()
		if err != nil {
			return nil, err
		}
		if arg == nil {
			return nil, nil
		}
		out = append(out, arg)
		if p.eat(',') {
			continue
		}
		p.eat('>')
		return out, nil
	}
}

func (p *refParser) resolveNamed(segments []string, args []types.Type) (types.Type, error) {
	written := strings.Join(segments, ".")
	var res hir.TypeResolution
	if len(segments) == 1 {
		res = p.env.resolver.ResolveType(segments[0])
	} else {
		res = p.env.resolver.ResolveDotted(segments)
	}
	if len(res.Ambiguous) > 0 {
		msg := fmt.Sprintf("reference to `%s` is ambiguous: %s", written, strings.Join(res.Ambiguous, ", "))
		p.env.diag("ambiguous-name", msg, p.span)
		return types.Error, nil
	}
	if res.Binary == "" {
		p.env.diag("unresolved-type", fmt.Sprintf("cannot resolve type `%s`", written), p.span)
		return types.Error, nil
	}
	t, err := p.env.loader.ResolveName(res.Binary)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		// A malformed stub degrades to Error at the reference instead of
		// failing the whole check.
		p.env.diag("unresolved-type", fmt.Sprintf("cannot load type `%s`: %v", written, err), p.span)
		return types.Error, nil
	}
	switch ref := t.(type) {
	case types.ClassType:
		ref.Args = args
		return ref, nil
	case types.NamedType:
		p.env.diag("unresolved-type", fmt.Sprintf("cannot resolve type `%s`", written), p.span)
		return ref, nil
	default:
		return t, nil
	}
}
