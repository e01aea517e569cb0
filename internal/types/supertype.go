package types

// IsSupertypeOf reports whether a value of type sub can be used where super
// is expected. Structural answers always win over the assignability oracle.
func (c *Context) IsSupertypeOf(super, sub TypeID) bool {
	if _, ok := c.reg.Lookup(super); !ok {
		return false
	}
	if _, ok := c.reg.Lookup(sub); !ok {
		return false
	}
	if c.reg.Depth(super) != c.reg.Depth(sub) {
		return false
	}
	if c.reg.RootName(super) == c.reg.RootName(sub) && c.reg.SameShape(super, sub) {
		return true
	}
	if st := c.reg.MustLookup(super); st.Kind == KindReference {
		if sb := c.reg.MustLookup(sub); sb.Kind == KindReference {
			return c.IsSupertypeOf(st.Elem, sb.Elem)
		}
		return c.IsSupertypeOf(st.Elem, sub)
	}
	if common, ok := c.CommonType([]TypeID{super, sub}); ok {
		return common == super
	}
	if c.oracle == nil || c.Declaration(super) != nil || c.Declaration(sub) != nil {
		return false
	}
	return c.oracle.Assignable(c.reg.RootName(super), c.reg.RootName(sub))
}

// CheckArrayAndPointer reports whether a and b only differ in pointer versus
// array origin.
func (c *Context) CheckArrayAndPointer(a, b TypeID) bool {
	if c.reg.Depth(a) != c.reg.Depth(b) {
		return false
	}
	return c.reg.RootName(a) == c.reg.RootName(b) && c.reg.SameShape(a, b)
}
