package graph

import "cpg/internal/types"

// Record is a class or struct declaration. Supertypes are kept by name until
// the type engine resolves them.
type Record struct {
	Name   string
	Supers []string
	Scope  *Scope

	params []types.TypeID
}

func (r *Record) DeclName() string { return r.Name }
func (r *Record) SuperTypeNames() []string { return r.Supers }
func (r *Record) TypeParameters() []types.TypeID { return r.params }
func (r *Record) AddTypeParameter(id types.TypeID) { r.params = append(r.params, id) }

// ResetTypeParameters drops parameters interned by an earlier type context.
func (r *Record) ResetTypeParameters() { r.params = nil }

// Template is a generic function or class template. ParamNames lists the
// declared type parameters in order; the interned parameters are attached
// by the type engine.
type Template struct {
	Name       string
	ParamNames []string
	Scope      *Scope

	params []types.TypeID
}

func (t *Template) DeclName() string { return t.Name }
func (t *Template) SuperTypeNames() []string { return nil }
func (t *Template) TypeParameters() []types.TypeID { return t.params }
func (t *Template) AddTypeParameter(id types.TypeID) { t.params = append(t.params, id) }
func (t *Template) ResetTypeParameters() { t.params = nil }
