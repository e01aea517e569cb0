package types

// WrapState records what Unwrap stripped so Rewrap can restore it.
type WrapState struct {
	Depth     int           // pointer/array layers
	Origin    PointerOrigin // origin of the outermost stripped layer
	Reference bool          // one reference layer was stripped
}

// IsZero reports whether nothing was stripped.
func (ws WrapState) IsZero() bool {
	return ws.Depth == 0 && !ws.Reference
}

// Unwrap strips a shared reference layer and then a shared pointer depth
// from ids. A nil result means the inputs have irreconcilable wrapping.
// Inputs without wrapping are returned unchanged with a zero state.
func (c *Context) Unwrap(ids []TypeID) ([]TypeID, WrapState) {
	var ws WrapState
	if len(ids) == 0 {
		return nil, ws
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)

	if c.allReferences(out) {
		for i, id := range out {
			out[i] = c.reg.MustLookup(id).Elem
		}
		ws.Reference = true
	}

	anyPointer := false
	for _, id := range out {
		if c.reg.Kind(id) == KindPointer {
			anyPointer = true
			break
		}
	}
	if !anyPointer {
		return out, ws
	}

	depth := c.reg.Depth(out[0])
	for _, id := range out {
		if c.reg.Kind(id) != KindPointer || c.reg.Depth(id) != depth {
			return nil, WrapState{}
		}
	}
	ws.Origin = c.reg.MustLookup(out[0]).Origin
	ws.Depth = depth
	for i, id := range out {
		out[i] = c.stripPointers(id, depth)
	}
	return out, ws
}

func (c *Context) allReferences(ids []TypeID) bool {
	for _, id := range ids {
		if c.reg.Kind(id) != KindReference || !c.reg.SameShape(ids[0], id) {
			return false
		}
	}
	return true
}

func (c *Context) stripPointers(id TypeID, depth int) TypeID {
	for depth > 0 {
		t, ok := c.reg.Lookup(id)
		if !ok {
			return id
		}
		if t.Kind == KindPointer {
			depth--
		}
		id = t.Elem
	}
	return id
}

// Rewrap reapplies ws to id: pointer layers first, then the reference.
func (c *Context) Rewrap(id TypeID, ws WrapState) TypeID {
	if id == NoTypeID {
		return id
	}
	origin := ws.Origin
	if origin == OriginNone {
		origin = OriginPointer
	}
	for range ws.Depth {
		id = c.Pointer(id, origin)
	}
	if ws.Reference {
		id = c.Reference(id)
	}
	return id
}

// layer is one wrapping step of a chain, outermost first.
type layer struct {
	kind   Kind
	origin PointerOrigin
}

func (c *Context) layers(id TypeID) []layer {
	var out []layer
	for {
		t, ok := c.reg.Lookup(id)
		if !ok || t.Kind.FirstOrder() {
			return out
		}
		out = append(out, layer{kind: t.Kind, origin: t.Origin})
		id = t.Elem
	}
}

// ReplaceRoot rebuilds the wrapping of chain around newRoot. newRoot may
// itself be wrapped; its layers end up innermost.
func (c *Context) ReplaceRoot(chain, newRoot TypeID) TypeID {
	ls := c.layers(chain)
	id := newRoot
	for i := len(ls) - 1; i >= 0; i-- {
		if ls[i].kind == KindReference {
			id = c.Reference(id)
		} else {
			id = c.Pointer(id, ls[i].origin)
		}
	}
	return id
}
