package types

import (
	"cmp"
	"slices"

	"cpg/internal/diag"
)

// ancestor is a supertype name paired with its depth. Depth counts from the
// leaf while collecting and is renormalised so 0 is the topmost ancestor.
type ancestor struct {
	name  string
	depth int
}

// CommonType returns the most specific type shared by ids.
func (c *Context) CommonType(ids []TypeID) (TypeID, bool) {
	ids = uniqueIDs(ids)
	switch len(ids) {
	case 0:
		return NoTypeID, false
	case 1:
		return ids[0], true
	}
	if !c.enabled {
		return NoTypeID, false
	}

	kind := c.reg.Kind(ids[0])
	for _, id := range ids[1:] {
		if c.reg.Kind(id) != kind {
			return NoTypeID, false
		}
	}

	roots, ws := c.Unwrap(ids)
	if len(roots) == 0 {
		return NoTypeID, false
	}
	roots = uniqueIDs(roots)
	if len(roots) == 1 {
		return c.Rewrap(roots[0], ws), true
	}

	var common map[string]int
	for _, root := range roots {
		t, _ := c.reg.Lookup(root)
		if t.Kind != KindObject {
			return NoTypeID, false
		}
		set := c.ancestors(t.Name)
		if common == nil {
			common = set
			continue
		}
		for name, depth := range common {
			other, ok := set[name]
			if !ok {
				delete(common, name)
				continue
			}
			common[name] = max(depth, other)
		}
	}
	if len(common) == 0 {
		return NoTypeID, false
	}

	best := ancestor{depth: -1}
	for _, a := range sortedAncestors(common) {
		if a.depth > best.depth {
			best = a
		}
	}
	return c.Rewrap(c.Object(best.name), ws), true
}

// ancestors collects name and every transitive supertype with renormalised
// depths. A supertype reached on several paths keeps its largest distance
// from the leaf. Supertype names without a record are kept as tops.
func (c *Context) ancestors(name string) map[string]int {
	fromLeaf := make(map[string]int)
	onPath := make(map[string]bool)

	var walk func(n string, depth int)
	walk = func(n string, depth int) {
		if d, ok := fromLeaf[n]; !ok || depth > d {
			fromLeaf[n] = depth
		}
		rec := c.records[n]
		if rec == nil {
			return
		}
		onPath[n] = true
		for _, super := range rec.SuperTypeNames() {
			if onPath[super] {
				c.warnOnce(diag.TypSupertypeCycle, "ignoring cyclic supertype "+super+" of "+n)
				continue
			}
			walk(super, depth+1)
		}
		onPath[n] = false
	}
	walk(name, 0)

	maxDepth := 0
	for _, d := range fromLeaf {
		maxDepth = max(maxDepth, d)
	}
	for n, d := range fromLeaf {
		fromLeaf[n] = maxDepth - d
	}
	return fromLeaf
}

func sortedAncestors(m map[string]int) []ancestor {
	out := make([]ancestor, 0, len(m))
	for n, d := range m {
		out = append(out, ancestor{name: n, depth: d})
	}
	slices.SortFunc(out, func(a, b ancestor) int { return cmp.Compare(a.name, b.name) })
	return out
}

func uniqueIDs(ids []TypeID) []TypeID {
	out := make([]TypeID, 0, len(ids))
	for _, id := range ids {
		if id != NoTypeID && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
