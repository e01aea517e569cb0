package types

type testRecord struct {
	name   string
	supers []string
	params []TypeID
}

func (r *testRecord) DeclName() string { return r.name }
func (r *testRecord) SuperTypeNames() []string { return r.supers }
func (r *testRecord) TypeParameters() []TypeID { return r.params }
func (r *testRecord) AddTypeParameter(id TypeID) { r.params = append(r.params, id) }

type testScope struct {
	parent   *testScope
	owner    Declarer
	typedefs []Typedef
}

func (s *testScope) ParentScope() LexicalScope {
	if s.parent == nil {
		return nil
	}
	return s.parent
}
func (s *testScope) TemplateOwner() Declarer { return s.owner }
func (s *testScope) Typedefs() []Typedef { return s.typedefs }
func (s *testScope) AddTypedef(td Typedef) { s.typedefs = append(s.typedefs, td) }

// declare registers records named by the keys with the listed supertypes.
func declare(c *Context, hierarchy map[string][]string) {
	for name, supers := range hierarchy {
		c.AddRecord(&testRecord{name: name, supers: supers})
	}
}

// diamond builds the multi-inheritance lattice used by the LCA tests:
// Root is extended by Level0 and Level1C, Level0B is a second root,
// Level1B and Level1C extend Level0B, Level2B extends Level1B and Level1C.
func diamond(c *Context) {
	declare(c, map[string][]string{
		"Root":    nil,
		"Level0":  {"Root"},
		"Level0B": nil,
		"Level1":  {"Level0"},
		"Level1B": {"Level0", "Level0B"},
		"Level1C": {"Root", "Level0B"},
		"Level2":  {"Level1"},
		"Level2B": {"Level1B", "Level1C"},
	})
}
