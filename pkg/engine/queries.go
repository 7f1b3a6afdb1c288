package engine

import (
	"fmt"

	"javasem/analyzer-go/pkg/hir"
	"javasem/analyzer-go/pkg/jdk"
	"javasem/analyzer-go/pkg/types"
)

// BodyResult is a full-body check: every expression's type, constant, and
// resolved call, local types, and the diagnostics, all over the check's
// own store clone.
type BodyResult struct {
	Ref        BodyRef
	Store      *types.Store
	ExprTypes  []types.Type
	LocalTypes []types.Type
	Consts     []*types.ConstValue
	Calls      map[hir.ExprID]*types.ResolvedMethod
	Diags      []types.Diagnostic
}

// DemandResult is a single-expression answer. Diags holds only what the
// boundary statement's check emitted.
type DemandResult struct {
	Type  types.Type
	Const *types.ConstValue
	Call  *types.ResolvedMethod
	Store *types.Store
	Diags []types.Diagnostic
}

// BaseTypeStore returns the shared base store: workspace signatures and
// every loaded stub, interned in deterministic order. Callers must treat
// it as read-only; checks clone it.
func (s *Snapshot) BaseTypeStore() (*types.Store, error) {
	base, err := s.ensureBase()
	if err != nil {
		return nil, err
	}
	return base.store, nil
}

// SourceTypes returns the project signature cache computed with the base
// store.
func (s *Snapshot) SourceTypes() (*SourceTypes, error) {
	base, err := s.ensureBase()
	if err != nil {
		return nil, err
	}
	return base.source, nil
}

// CheckBody runs the checker over one body. Results are memoized per
// snapshot; only misses count as body checks.
func (s *Snapshot) CheckBody(ref BodyRef) (*BodyResult, error) {
	key := fmt.Sprintf("body|%s|%s|%s|%d", ref.Type, ref.Kind, ref.Name, ref.Index)
	if v, ok := s.memoGet(key); ok {
		return v.(*BodyResult), nil
	}
	base, err := s.ensureBase()
	if err != nil {
		return nil, err
	}
	c, err := newChecker(s, base, ref)
	if err != nil {
		return nil, err
	}
	s.stats.bodyChecks.Add(1)
	if err := c.checkAll(); err != nil {
		return nil, err
	}
	res := &BodyResult{
		Ref:        ref,
		Store:      c.store,
		ExprTypes:  c.exprTypes,
		LocalTypes: c.localTypes,
		Consts:     c.exprConsts,
		Calls:      c.calls,
		Diags:      c.diags,
	}
	s.memoPut(key, res)
	return res, nil
}

// DemandResult types one expression by checking only its boundary
// statement, never the whole body. An expression a full check would leave
// untyped, the body of a targetless lambda for one, answers Unknown.
func (s *Snapshot) DemandResult(owner BodyRef, expr hir.ExprID) (*DemandResult, error) {
	key := fmt.Sprintf("demand|%s|%s|%s|%d|%d", owner.Type, owner.Kind, owner.Name, owner.Index, expr)
	if v, ok := s.memoGet(key); ok {
		return v.(*DemandResult), nil
	}
	c, err := s.demandCheck(owner, expr)
	if err != nil {
		return nil, err
	}
	t := c.exprTypes[expr]
	if t == nil {
		t = types.Unknown
	}
	res := &DemandResult{
		Type:  t,
		Const: c.exprConsts[expr],
		Call:  c.calls[expr],
		Store: c.store,
		Diags: c.diags,
	}
	s.memoPut(key, res)
	return res, nil
}

// TypeOfExpr is the type-only view of DemandResult.
func (s *Snapshot) TypeOfExpr(owner BodyRef, expr hir.ExprID) (types.Type, error) {
	r, err := s.DemandResult(owner, expr)
	if err != nil {
		return nil, err
	}
	return r.Type, nil
}

// ResolveCallDemand resolves the call at one site on the demand path. A
// nil method with nil error means the site did not resolve to anything.
func (s *Snapshot) ResolveCallDemand(owner BodyRef, call hir.ExprID) (*types.ResolvedMethod, error) {
	r, err := s.DemandResult(owner, call)
	if err != nil {
		return nil, err
	}
	return r.Call, nil
}

// TypeOfDef answers a member's type from signatures alone and never runs
// a body check: a field's declared type, a method's return type, a
// constructor's class.
func (s *Snapshot) TypeOfDef(ref BodyRef) (types.Type, error) {
	base, err := s.ensureBase()
	if err != nil {
		return nil, err
	}
	switch ref.Kind {
	case MemberField:
		if ref.Name == "" {
			if it, ok := s.defs.Lookup(ref.Type); ok && ref.Index >= 0 && ref.Index < len(it.Decl.Fields) {
				ref.Name = it.Decl.Fields[ref.Index].Name
			}
		}
		if t, ok := base.source.FieldTypes[ref]; ok {
			return t, nil
		}
		return nil, fmt.Errorf("no field %s.%s", ref.Type, ref.Name)
	case MemberMethod:
		id, ok := base.store.Lookup(ref.Type)
		if !ok {
			return nil, fmt.Errorf("no workspace type %q", ref.Type)
		}
		def := base.store.Class(id)
		if def == nil || ref.Index < 0 || ref.Index >= len(def.Methods) {
			return nil, fmt.Errorf("%s has no method #%d", ref.Type, ref.Index)
		}
		if ret := def.Methods[ref.Index].Return; ret != nil {
			return ret, nil
		}
		return types.Void, nil
	case MemberCtor:
		id, ok := base.store.Lookup(ref.Type)
		if !ok {
			return nil, fmt.Errorf("no workspace type %q", ref.Type)
		}
		return selfRef(base.store, id), nil
	}
	return nil, fmt.Errorf("member kind %q has no type", ref.Kind)
}

// Diagnostics collects a file's diagnostics: item-signature diagnostics
// from base construction plus every body's, sorted by position then
// message with spanless entries last.
func (s *Snapshot) Diagnostics(path string) ([]types.Diagnostic, error) {
	key := "diags|" + path
	if v, ok := s.memoGet(key); ok {
		return v.([]types.Diagnostic), nil
	}
	f, ok := s.byPath[path]
	if !ok {
		return nil, fmt.Errorf("no file %q in snapshot", path)
	}
	base, err := s.ensureBase()
	if err != nil {
		return nil, err
	}
	var out []types.Diagnostic
	out = append(out, base.itemDiags[path]...)
	for _, fb := range s.fileBodies(f) {
		r, err := s.CheckBody(fb.ref)
		if err != nil {
			return nil, err
		}
		out = append(out, r.Diags...)
	}
	types.SortDiagnostics(out)
	s.memoPut(key, out)
	return out, nil
}

// TypeAtOffset locates the smallest expression covering the byte offset
// and renders its type for display. ok is false when no expression of any
// body covers the offset.
func (s *Snapshot) TypeAtOffset(path string, offset uint32) (text string, ok bool, err error) {
	f, found := s.byPath[path]
	if !found {
		return "", false, fmt.Errorf("no file %q in snapshot", path)
	}
	for _, fb := range s.fileBodies(f) {
		e := fb.body.ExprAt(offset)
		if e == hir.NoExpr {
			continue
		}
		r, err := s.DemandResult(fb.ref, e)
		if err != nil {
			return "", false, err
		}
		return types.FormatType(r.Store, r.Type), true, nil
	}
	return "", false, nil
}

type fileBody struct {
	ref  BodyRef
	body *hir.Body
}

// fileBodies lists a file's checkable bodies in declaration order:
// fields, methods, constructors, then initializers per type, nested
// types after their enclosing type. Platform-owned declarations and
// duplicate losers contribute nothing.
func (s *Snapshot) fileBodies(f *hir.File) []fileBody {
	var out []fileBody
	var walk func(binary string, d *hir.TypeDecl)
	walk = func(binary string, d *hir.TypeDecl) {
		it, ok := s.defs.Lookup(binary)
		if !ok || it.Decl != d {
			return
		}
		owned := jdk.IsReservedName(binary) && s.jdk.HasType(binary)
		if !owned {
			for i := range d.Fields {
				if d.Fields[i].Init != nil {
					out = append(out, fileBody{FieldRef(binary, d.Fields[i].Name, i), d.Fields[i].Init})
				}
			}
			for i := range d.Methods {
				if d.Methods[i].Body != nil {
					out = append(out, fileBody{MethodRef(binary, d.Methods[i].Name, i), d.Methods[i].Body})
				}
			}
			for i := range d.Ctors {
				if d.Ctors[i].Body != nil {
					out = append(out, fileBody{CtorRef(binary, i), d.Ctors[i].Body})
				}
			}
			for i := range d.Inits {
				if d.Inits[i].Body != nil {
					out = append(out, fileBody{InitRef(binary, i), d.Inits[i].Body})
				}
			}
		}
		for _, n := range d.Nested {
			walk(binary+"$"+n.Name, n)
		}
	}
	for _, t := range f.Types {
		binary := t.Name
		if f.Package != "" {
			binary = f.Package + "." + t.Name
		}
		walk(binary, t)
	}
	return out
}
