package graph

import "cpg/internal/types"

// ScopeID identifies a scope inside one Graph.
type ScopeID uint32

// Scope is a lexical scope. Typedef holds the raw typedef source seen in
// the scope; the interned aliases are attached by the type engine.
type Scope struct {
	ID      ScopeID
	Parent  *Scope
	Owner   types.Declarer
	Typedef []string

	typedefs []types.Typedef
}

// ParentScope returns the enclosing scope. The top scope reports a nil
// interface, not a typed nil.
func (s *Scope) ParentScope() types.LexicalScope {
	if s.Parent == nil {
		return nil
	}
	return s.Parent
}

// TemplateOwner returns the template declaring this scope, if any.
func (s *Scope) TemplateOwner() types.Declarer {
	if t, ok := s.Owner.(*Template); ok {
		return t
	}
	return nil
}

func (s *Scope) Typedefs() []types.Typedef { return s.typedefs }
func (s *Scope) AddTypedef(td types.Typedef) { s.typedefs = append(s.typedefs, td) }
func (s *Scope) ResetTypedefs() { s.typedefs = nil }
