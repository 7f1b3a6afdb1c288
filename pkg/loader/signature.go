package loader

import (
	"fmt"
	"strings"

	"javasem/analyzer-go/pkg/types"
)

// Parsed forms of JVM descriptors and generic signatures. Both grammars
// share one little AST; conversion into types.Type happens in the Loader,
// which knows how to intern the class references.

type sigType interface{ isSig() }

type sigPrim struct{ kind types.PrimitiveKind }

type sigArray struct{ elem sigType }

type sigVar struct{ name string }

// sigClass is a possibly-parameterized class reference. The binary name
// is the package joined with dots plus the segments joined with dollars;
// only the last segment's type arguments matter for the reference type.
type sigClass struct {
	pkg      []string
	segments []sigSegment
}

type sigSegment struct {
	name string
	args []sigArg
}

type sigArgKind uint8

const (
	argExact sigArgKind = iota
	argExtends
	argSuper
	argAny
)

type sigArg struct {
	kind sigArgKind
	typ  sigType // nil for argAny
}

func (sigPrim) isSig()  {}
func (sigArray) isSig() {}
func (sigVar) isSig()   {}
func (sigClass) isSig() {}

func (c sigClass) binaryName() string {
	var b strings.Builder
	for _, p := range c.pkg {
		b.WriteString(p)
		b.WriteByte('.')
	}
	for i, seg := range c.segments {
		if i > 0 {
			b.WriteByte('$')
		}
		b.WriteString(seg.name)
	}
	return b.String()
}

func (c sigClass) typeArgs() []sigArg {
	if len(c.segments) == 0 {
		return nil
	}
	return c.segments[len(c.segments)-1].args
}

// sigTypeParam is one declared type parameter with its bounds. A nil
// classBound means the bound slot was empty (interface bounds only).
type sigTypeParam struct {
	name        string
	classBound  sigType
	ifaceBounds []sigType
}

// classSig is a parsed ClassSignature attribute.
type classSig struct {
	params []sigTypeParam
	super  sigClass
	ifaces []sigClass
}

// methodSig is a parsed MethodSignature attribute. A nil ret is void.
type methodSig struct {
	params []sigTypeParam
	args   []sigType
	ret    sigType
}

type sigParser struct {
	src string
	pos int
}

func (p *sigParser) errf(format string, a ...any) error {
	prefix := fmt.Sprintf("signature %q at %d: ", p.src, p.pos)
	return fmt.Errorf(prefix+format, a...)
}

func (p *sigParser) eof() bool { return p.pos >= len(p.src) }

func (p *sigParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *sigParser) next() byte {
	c := p.peek()
	p.pos++
	return c
}

func (p *sigParser) expect(c byte) error {
	if p.peek() != c {
		return p.errf("expected %q, found %q", string(c), string(p.peek()))
	}
	p.pos++
	return nil
}

// identifier reads up to the next structural character. Dollar signs are
// legal identifier characters, so compiled nested names pass through.
func (p *sigParser) identifier() (string, error) {
	start := p.pos
	for !p.eof() {
		switch p.peek() {
		case '.', ';', '[', '/', '<', '>', ':':
			goto done
		}
		p.pos++
	}
done:
	if p.pos == start {
		return "", p.errf("expected identifier")
	}
	return p.src[start:p.pos], nil
}

func primFor(c byte) (types.PrimitiveKind, bool) {
	switch c {
	case 'B':
		return types.PrimByte, true
	case 'C':
		return types.PrimChar, true
	case 'D':
		return types.PrimDouble, true
	case 'F':
		return types.PrimFloat, true
	case 'I':
		return types.PrimInt, true
	case 'J':
		return types.PrimLong, true
	case 'S':
		return types.PrimShort, true
	case 'Z':
		return types.PrimBoolean, true
	}
	return 0, false
}

// typeSignature parses TypeSignature: a base type or a field type.
func (p *sigParser) typeSignature() (sigType, error) {
	if k, ok := primFor(p.peek()); ok {
		p.pos++
		return sigPrim{kind: k}, nil
	}
	return p.fieldType()
}

// fieldType parses FieldTypeSignature: class, array or type variable.
func (p *sigParser) fieldType() (sigType, error) {
	switch p.peek() {
	case 'L':
		return p.classType()
	case '[':
		p.pos++
		elem, err := p.typeSignature()
		if err != nil {
			return nil, err
		}
		return sigArray{elem: elem}, nil
	case 'T':
		p.pos++
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		if err := p.expect(';'); err != nil {
			return nil, err
		}
		return sigVar{name: name}, nil
	}
	return nil, p.errf("expected L, [ or T")
}

// classType parses ClassTypeSignature after detecting the leading L:
// package parts separated by slashes, then dot-suffixed segments, each
// with optional type arguments, closed by a semicolon.
func (p *sigParser) classType() (sigClass, error) {
	var out sigClass
	if err := p.expect('L'); err != nil {
		return out, err
	}
	for {
		name, err := p.identifier()
		if err != nil {
			return out, err
		}
		if p.peek() == '/' {
			p.pos++
			out.pkg = append(out.pkg, name)
			continue
		}
		seg := sigSegment{name: name}
		if p.peek() == '<' {
			seg.args, err = p.typeArgs()
			if err != nil {
				return out, err
			}
		}
		out.segments = append(out.segments, seg)
		break
	}
	for p.peek() == '.' {
		p.pos++
		name, err := p.identifier()
		if err != nil {
			return out, err
		}
		seg := sigSegment{name: name}
		if p.peek() == '<' {
			seg.args, err = p.typeArgs()
			if err != nil {
				return out, err
			}
		}
		out.segments = append(out.segments, seg)
	}
	if err := p.expect(';'); err != nil {
		return out, err
	}
	return out, nil
}

func (p *sigParser) typeArgs() ([]sigArg, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var out []sigArg
	for p.peek() != '>' {
		if p.eof() {
			return nil, p.errf("unterminated type arguments")
		}
		switch p.peek() {
		case '*':
			p.pos++
			out = append(out, sigArg{kind: argAny})
		case '+':
			p.pos++
			t, err := p.fieldType()
			if err != nil {
				return nil, err
			}
			out = append(out, sigArg{kind: argExtends, typ: t})
		case '-':
			p.pos++
			t, err := p.fieldType()
			if err != nil {
				return nil, err
			}
			out = append(out, sigArg{kind: argSuper, typ: t})
		default:
			t, err := p.fieldType()
			if err != nil {
				return nil, err
			}
			out = append(out, sigArg{kind: argExact, typ: t})
		}
	}
	p.pos++
	return out, nil
}

// typeParams parses the <T:...;U:...> block shared by class and method
// signatures.
func (p *sigParser) typeParams() ([]sigTypeParam, error) {
	if p.peek() != '<' {
		return nil, nil
	}
	p.pos++
	var out []sigTypeParam
	for p.peek() != '>' {
		if p.eof() {
			return nil, p.errf("unterminated type parameters")
		}
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		tp := sigTypeParam{name: name}
		// The class-bound slot may be empty: `T::Liface;`.
		if p.peek() != ':' && p.peek() != '>' {
			tp.classBound, err = p.fieldType()
			if err != nil {
				return nil, err
			}
		}
		for p.peek() == ':' {
			p.pos++
			bound, err := p.fieldType()
			if err != nil {
				return nil, err
			}
			tp.ifaceBounds = append(tp.ifaceBounds, bound)
		}
		out = append(out, tp)
	}
	p.pos++
	return out, nil
}

// parseClassSignature parses a ClassSignature attribute.
func parseClassSignature(s string) (classSig, error) {
	p := &sigParser{src: s}
	var out classSig
	var err error
	out.params, err = p.typeParams()
	if err != nil {
		return out, err
	}
	out.super, err = p.classType()
	if err != nil {
		return out, err
	}
	for !p.eof() {
		iface, err := p.classType()
		if err != nil {
			return out, err
		}
		out.ifaces = append(out.ifaces, iface)
	}
	return out, nil
}

// parseMethodSignature parses a MethodSignature attribute. Throws
// clauses are validated and dropped.
func parseMethodSignature(s string) (methodSig, error) {
	p := &sigParser{src: s}
	var out methodSig
	var err error
	out.params, err = p.typeParams()
	if err != nil {
		return out, err
	}
	if err := p.expect('('); err != nil {
		return out, err
	}
	for p.peek() != ')' {
		if p.eof() {
			return out, p.errf("unterminated parameter list")
		}
		arg, err := p.typeSignature()
		if err != nil {
			return out, err
		}
		out.args = append(out.args, arg)
	}
	p.pos++
	if p.peek() == 'V' {
		p.pos++
	} else {
		out.ret, err = p.typeSignature()
		if err != nil {
			return out, err
		}
	}
	for p.peek() == '^' {
		p.pos++
		if _, err := p.fieldType(); err != nil {
			return out, err
		}
	}
	if !p.eof() {
		return out, p.errf("trailing input")
	}
	return out, nil
}

// parseFieldSignature parses a FieldSignature attribute.
func parseFieldSignature(s string) (sigType, error) {
	p := &sigParser{src: s}
	t, err := p.fieldType()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errf("trailing input")
	}
	return t, nil
}
