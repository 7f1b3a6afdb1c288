// Package types models the Java type system: an interned store of classes and
// type variables plus the algorithms that operate on them (subtyping,
// conversions, promotion, least upper bounds, member lookup, overload
// resolution, and generic inference).
package types

import (
	"fmt"
	"sort"
	"strings"
)

// ClassID is a stable handle into a Store's class arena.
type ClassID uint32

// TypeVarID is a stable handle into a Store's type-variable arena. IDs with
// the high bit set belong to a Context rather than the shared arena.
type TypeVarID uint32

// PrimitiveKind enumerates the eight Java primitive types.
type PrimitiveKind uint8

const (
	PrimBoolean PrimitiveKind = iota
	PrimByte
	PrimShort
	PrimChar
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBoolean:
		return "boolean"
	case PrimByte:
		return "byte"
	case PrimShort:
		return "short"
	case PrimChar:
		return "char"
	case PrimInt:
		return "int"
	case PrimLong:
		return "long"
	case PrimFloat:
		return "float"
	case PrimDouble:
		return "double"
	}
	return "primitive?"
}

// Type is the union of everything an expression or declaration can denote.
// Values are immutable; algorithms build new ones rather than mutating.
type Type interface {
	Name() string
}

// VoidType is the type of a void method invocation.
type VoidType struct{}

// PrimitiveType is one of the eight primitive types.
type PrimitiveType struct {
	Kind PrimitiveKind
}

// ClassType is a class or interface reference, possibly parameterized.
// An empty Args on a generic class is the raw type.
type ClassType struct {
	Class ClassID
	Args  []Type
}

// ArrayType is a Java array with the given element type.
type ArrayType struct {
	Element Type
}

// TypeVarType references a declared type variable.
type TypeVarType struct {
	Var TypeVarID
}

// WildcardKind distinguishes the three wildcard forms.
type WildcardKind uint8

const (
	WildcardAny WildcardKind = iota
	WildcardExtends
	WildcardSuper
)

// WildcardType is a type argument wildcard. Bound is nil for the unbounded
// form.
type WildcardType struct {
	Kind  WildcardKind
	Bound Type
}

// IntersectionType is an ordered intersection such as a multi-bounded type
// parameter or a capture bound.
type IntersectionType struct {
	Parts []Type
}

// VirtualInnerType names a member type of an owner that is not a plain class,
// for example T.Inner where T is a type variable.
type VirtualInnerType struct {
	Owner Type
	Inner string
}

// NamedType is a reference by qualified name that has not been resolved to a
// ClassID. It survives checking so diagnostics can spell the name.
type NamedType struct {
	Qualified string
}

// NullType is the type of the null literal.
type NullType struct{}

// UnknownType marks a type that has not been inferred yet. Target-typed
// expressions start here and are re-inferred exactly once.
type UnknownType struct{}

// ErrorType marks a type that failed to check. It converts to and from
// anything so one failure does not cascade.
type ErrorType struct{}

func (VoidType) Name() string        { return "void" }
func (p PrimitiveType) Name() string { return p.Kind.String() }

func (c ClassType) Name() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("class#%d", c.Class)
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = typeName(a)
	}
	return fmt.Sprintf("class#%d<%s>", c.Class, strings.Join(parts, ", "))
}

func (a ArrayType) Name() string { return typeName(a.Element) + "[]" }
func (v TypeVarType) Name() string {
	if v.Var&contextVarBit != 0 {
		return fmt.Sprintf("cv#%d", v.Var&^contextVarBit)
	}
	return fmt.Sprintf("tv#%d", v.Var)
}

func (w WildcardType) Name() string {
	switch w.Kind {
	case WildcardExtends:
		return "? extends " + typeName(w.Bound)
	case WildcardSuper:
		return "? super " + typeName(w.Bound)
	}
	return "?"
}

func (i IntersectionType) Name() string {
	parts := make([]string, len(i.Parts))
	for j, p := range i.Parts {
		parts[j] = typeName(p)
	}
	return strings.Join(parts, " & ")
}

func (v VirtualInnerType) Name() string { return typeName(v.Owner) + "." + v.Inner }
func (n NamedType) Name() string        { return n.Qualified }
func (NullType) Name() string           { return "null" }
func (UnknownType) Name() string        { return "unknown" }
func (ErrorType) Name() string          { return "error" }

// Handy values for the types that carry no payload.
var (
	Void    = VoidType{}
	Boolean = PrimitiveType{Kind: PrimBoolean}
	Byte    = PrimitiveType{Kind: PrimByte}
	Short   = PrimitiveType{Kind: PrimShort}
	Char    = PrimitiveType{Kind: PrimChar}
	Int     = PrimitiveType{Kind: PrimInt}
	Long    = PrimitiveType{Kind: PrimLong}
	Float   = PrimitiveType{Kind: PrimFloat}
	Double  = PrimitiveType{Kind: PrimDouble}
	Null    = NullType{}
	Unknown = UnknownType{}
	Error   = ErrorType{}
)

func typeName(t Type) string {
	if t == nil {
		return "unknown"
	}
	return t.Name()
}

// IsErrorish reports whether t is Unknown or Error, the two placeholder types
// that silently absorb further checking.
func IsErrorish(t Type) bool {
	switch t.(type) {
	case UnknownType, ErrorType:
		return true
	}
	return t == nil
}

func IsUnknown(t Type) bool {
	_, ok := t.(UnknownType)
	return ok || t == nil
}

func IsError(t Type) bool {
	_, ok := t.(ErrorType)
	return ok
}

func IsNull(t Type) bool {
	_, ok := t.(NullType)
	return ok
}

func IsVoid(t Type) bool {
	_, ok := t.(VoidType)
	return ok
}

// IsReference reports whether t denotes a reference type. The null type
// counts: it is only ever assignable where a reference is expected.
func IsReference(t Type) bool {
	switch t.(type) {
	case ClassType, ArrayType, TypeVarType, IntersectionType, VirtualInnerType, NamedType, NullType:
		return true
	}
	return false
}

func IsPrimitive(t Type) bool {
	_, ok := t.(PrimitiveType)
	return ok
}

func IsNumericPrimitive(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind != PrimBoolean
}

func IsIntegralPrimitive(t Type) bool {
	p, ok := t.(PrimitiveType)
	if !ok {
		return false
	}
	switch p.Kind {
	case PrimByte, PrimShort, PrimChar, PrimInt, PrimLong:
		return true
	}
	return false
}

// Same reports deep structural equality.
func Same(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	case NullType:
		_, ok := b.(NullType)
		return ok
	case UnknownType:
		_, ok := b.(UnknownType)
		return ok
	case ErrorType:
		_, ok := b.(ErrorType)
		return ok
	case PrimitiveType:
		bv, ok := b.(PrimitiveType)
		return ok && av.Kind == bv.Kind
	case ClassType:
		bv, ok := b.(ClassType)
		if !ok || av.Class != bv.Class || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Same(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case ArrayType:
		bv, ok := b.(ArrayType)
		return ok && Same(av.Element, bv.Element)
	case TypeVarType:
		bv, ok := b.(TypeVarType)
		return ok && av.Var == bv.Var
	case WildcardType:
		bv, ok := b.(WildcardType)
		return ok && av.Kind == bv.Kind && Same(av.Bound, bv.Bound)
	case IntersectionType:
		bv, ok := b.(IntersectionType)
		if !ok || len(av.Parts) != len(bv.Parts) {
			return false
		}
		for i := range av.Parts {
			if !Same(av.Parts[i], bv.Parts[i]) {
				return false
			}
		}
		return true
	case VirtualInnerType:
		bv, ok := b.(VirtualInnerType)
		return ok && av.Inner == bv.Inner && Same(av.Owner, bv.Owner)
	case NamedType:
		bv, ok := b.(NamedType)
		return ok && av.Qualified == bv.Qualified
	}
	return false
}

// key renders a canonical encoding of t, used for dedupe maps and for the
// deterministic orderings that keep results stable across runs.
func key(t Type) string {
	if t == nil {
		return "U"
	}
	switch v := t.(type) {
	case VoidType:
		return "V"
	case PrimitiveType:
		return "P" + v.Kind.String()
	case ClassType:
		var sb strings.Builder
		fmt.Fprintf(&sb, "C%d", v.Class)
		if len(v.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range v.Args {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(key(a))
			}
			sb.WriteByte('>')
		}
		return sb.String()
	case ArrayType:
		return "[" + key(v.Element)
	case TypeVarType:
		return fmt.Sprintf("T%d", v.Var)
	case WildcardType:
		switch v.Kind {
		case WildcardExtends:
			return "W+" + key(v.Bound)
		case WildcardSuper:
			return "W-" + key(v.Bound)
		}
		return "W*"
	case IntersectionType:
		parts := make([]string, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = key(p)
		}
		return "I(" + strings.Join(parts, "&") + ")"
	case VirtualInnerType:
		return "M(" + key(v.Owner) + "." + v.Inner + ")"
	case NamedType:
		return "Q" + v.Qualified
	case NullType:
		return "N"
	case UnknownType:
		return "U"
	case ErrorType:
		return "E"
	}
	return "?"
}

// sortKey orders types deterministically. Class and variable handles sort
// numerically so the order tracks interning order, which is itself
// deterministic.
func sortKey(t Type) string {
	if t == nil {
		return "zz"
	}
	switch v := t.(type) {
	case ClassType:
		return fmt.Sprintf("a%010d%s", v.Class, key(t))
	case ArrayType:
		return "b" + sortKey(v.Element)
	case TypeVarType:
		return fmt.Sprintf("c%010d", v.Var)
	case PrimitiveType:
		return fmt.Sprintf("d%d", v.Kind)
	default:
		return "e" + key(t)
	}
}

func sortTypes(ts []Type) {
	sort.SliceStable(ts, func(i, j int) bool {
		return sortKey(ts[i]) < sortKey(ts[j])
	})
}

func dedupeTypes(ts []Type) []Type {
	seen := make(map[string]struct{}, len(ts))
	out := ts[:0]
	for _, t := range ts {
		k := key(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ContainsVar reports whether t mentions the given type variable.
func ContainsVar(t Type, id TypeVarID) bool {
	switch v := t.(type) {
	case TypeVarType:
		return v.Var == id
	case ClassType:
		for _, a := range v.Args {
			if ContainsVar(a, id) {
				return true
			}
		}
	case ArrayType:
		return ContainsVar(v.Element, id)
	case WildcardType:
		return v.Bound != nil && ContainsVar(v.Bound, id)
	case IntersectionType:
		for _, p := range v.Parts {
			if ContainsVar(p, id) {
				return true
			}
		}
	case VirtualInnerType:
		return ContainsVar(v.Owner, id)
	}
	return false
}
