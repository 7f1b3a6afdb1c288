package hir

import (
	"strings"

	"javasem/analyzer-go/pkg/types"
)

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModDefault
	ModNative
	ModSynchronized
	ModTransient
	ModVolatile
	ModStrictfp
	ModSealed
	ModNonSealed
)

// Has reports whether every bit of flag is set.
func (m Modifiers) Has(flag Modifiers) bool { return m&flag == flag }

// IsStatic reports the static modifier.
func (m Modifiers) IsStatic() bool { return m&ModStatic != 0 }

// IsAbstract reports the abstract modifier.
func (m Modifiers) IsAbstract() bool { return m&ModAbstract != 0 }

// IsFinal reports the final modifier.
func (m Modifiers) IsFinal() bool { return m&ModFinal != 0 }

var modifierNames = []struct {
	bit  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModAbstract, "abstract"},
	{ModDefault, "default"},
	{ModNative, "native"},
	{ModSynchronized, "synchronized"},
	{ModTransient, "transient"},
	{ModVolatile, "volatile"},
	{ModStrictfp, "strictfp"},
	{ModSealed, "sealed"},
	{ModNonSealed, "non-sealed"},
}

func (m Modifiers) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m&mn.bit != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier maps a keyword to its bit, or 0 for an unknown word.
func ParseModifier(word string) Modifiers {
	for _, mn := range modifierNames {
		if mn.name == word {
			return mn.bit
		}
	}
	return 0
}

// File is the item tree of one compilation unit: the declared types plus
// the header needed to resolve names inside them.
type File struct {
	Path    string
	Package string // "" for the unnamed package
	Imports []Import
	Module  *ModuleDecl // module-info only
	Types   []*TypeDecl
}

// Import is one import declaration. Path never includes the trailing `.*`.
type Import struct {
	Path     string
	Static   bool
	OnDemand bool
	Span     types.Span
}

// TypeKind says which declaration form introduced a type.
type TypeKind string

const (
	KindClass      TypeKind = "class"
	KindInterface  TypeKind = "interface"
	KindEnum       TypeKind = "enum"
	KindRecord     TypeKind = "record"
	KindAnnotation TypeKind = "annotation"
)

// TypeDecl is a class, interface, enum, record or annotation declaration.
// Names are simple; binary names are derived from the nesting chain.
type TypeDecl struct {
	Kind       TypeKind
	Name       string
	NameSpan   types.Span
	Modifiers  Modifiers
	TypeParams []TypeParamDecl
	Extends    []TypeRef // classes have at most one entry, interfaces may list several
	Implements []TypeRef
	Fields     []FieldDecl
	Methods    []MethodDecl
	Ctors      []CtorDecl
	Inits      []Initializer
	Nested     []*TypeDecl
	Span       types.Span
}

// IsInterface reports whether members default to abstract and static
// resolution applies interface rules.
func (d *TypeDecl) IsInterface() bool {
	return d.Kind == KindInterface || d.Kind == KindAnnotation
}

// TypeParamDecl declares one type parameter and its bounds.
type TypeParamDecl struct {
	Name     string
	NameSpan types.Span
	Bounds   []TypeRef
}

// FieldKind separates ordinary fields from enum constants and record
// components.
type FieldKind string

const (
	FieldOrdinary        FieldKind = "field"
	FieldEnumConstant    FieldKind = "enum-constant"
	FieldRecordComponent FieldKind = "record-component"
)

// FieldDecl is one declared field. Multi-declarator fields lower to a run
// of single declarations. Enum constants carry no type text; their type is
// the enum itself.
type FieldDecl struct {
	Kind      FieldKind
	Modifiers Modifiers
	Type      TypeRef
	Name      string
	NameSpan  types.Span
	Init      *Body // expression body, nil when absent
	Span      types.Span
}

// ParamDecl is one formal parameter.
type ParamDecl struct {
	Modifiers Modifiers
	Type      TypeRef
	Name      string
	Varargs   bool
}

// MethodDecl is one declared method.
type MethodDecl struct {
	Modifiers  Modifiers
	TypeParams []TypeParamDecl
	Return     TypeRef
	Name       string
	NameSpan   types.Span
	Params     []ParamDecl
	Throws     []TypeRef
	Body       *Body // nil for abstract and native methods
	Span       types.Span
}

// IsVarargs reports whether the last parameter is a varargs parameter.
func (m *MethodDecl) IsVarargs() bool {
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Varargs
}

// CtorDecl is one declared constructor.
type CtorDecl struct {
	Modifiers  Modifiers
	TypeParams []TypeParamDecl
	Params     []ParamDecl
	Throws     []TypeRef
	Body       *Body
	Span       types.Span
}

// Initializer is an instance or static initializer block.
type Initializer struct {
	Static bool
	Body   *Body
	Span   types.Span
}

// ModuleDecl is the header of a module-info.java.
type ModuleDecl struct {
	Name     string
	Open     bool
	Requires []Requires
	Exports  []Exports
}

// Requires is one requires directive.
type Requires struct {
	Module     string
	Transitive bool
	Static     bool
}

// Exports is one exports directive. Empty To exports to every module.
type Exports struct {
	Package string
	To      []string
}
