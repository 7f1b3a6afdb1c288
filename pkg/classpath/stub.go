// Package classpath indexes the compiled dependencies of a project as
// class stubs: the classfile-level skeleton of each type, with members
// kept as raw JVM descriptors and generic signatures for the loader to
// parse on demand. Stubs can be attributed to a JPMS module and cached
// across runs in a SQLite store keyed by the checksum of the entry they
// came from.
package classpath

// Classfile access flags, as far as stub construction cares.
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccVarargs    = 0x0080
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// ClassStub is the skeleton of one dependency type. Names are binary
// (dot-separated, `$` for nesting); member types stay in descriptor and
// signature form until the loader materializes them.
type ClassStub struct {
	Name        string       `json:"name"`
	AccessFlags uint16       `json:"access_flags"`
	Signature   string       `json:"signature,omitempty"`
	Super       string       `json:"super,omitempty"`
	Interfaces  []string     `json:"interfaces,omitempty"`
	Fields      []FieldStub  `json:"fields,omitempty"`
	Methods     []MethodStub `json:"methods,omitempty"`
	Module      string       `json:"module,omitempty"`
}

// FieldStub is one field in descriptor form.
type FieldStub struct {
	Name        string `json:"name"`
	Descriptor  string `json:"descriptor"`
	Signature   string `json:"signature,omitempty"`
	AccessFlags uint16 `json:"access_flags"`
}

// MethodStub is one method or constructor in descriptor form. `<init>`
// entries are constructors, `<clinit>` entries are ignored downstream.
type MethodStub struct {
	Name        string `json:"name"`
	Descriptor  string `json:"descriptor"`
	Signature   string `json:"signature,omitempty"`
	AccessFlags uint16 `json:"access_flags"`
}

// IsInterface reports the interface flag. Annotation types count.
func (s *ClassStub) IsInterface() bool {
	return s.AccessFlags&AccInterface != 0
}

// SupertypeNames returns the direct supertype binary names: the
// superclass, if any, then the interfaces in declared order.
func (s *ClassStub) SupertypeNames() []string {
	var out []string
	if s.Super != "" {
		out = append(out, s.Super)
	}
	out = append(out, s.Interfaces...)
	return out
}

// HasStaticMember reports whether the stub declares a non-private static
// field or method of the given name.
func (s *ClassStub) HasStaticMember(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name && f.AccessFlags&AccStatic != 0 && f.AccessFlags&AccPrivate == 0 {
			return true
		}
	}
	for _, m := range s.Methods {
		if m.Name == name && m.AccessFlags&AccStatic != 0 && m.AccessFlags&AccPrivate == 0 {
			return true
		}
	}
	return false
}
