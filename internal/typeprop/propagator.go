package typeprop

import (
	"slices"

	"github.com/hashicorp/go-set/v3"

	"cpg/internal/graph"
	"cpg/internal/trace"
	"cpg/internal/types"
)

// item is one pending type update. root holds the nodes already changed by
// the propagation the item belongs to.
type item struct {
	node *graph.Node
	typ  types.TypeID
	root *set.Set[*graph.Node]
}

// Propagator assigns types to graph nodes and pushes every change to the
// node's type listeners through a FIFO worklist.
type Propagator struct {
	tc     *types.Context
	tracer trace.Tracer

	steps   int
	changed int
}

// New returns a propagator over tc. A nil tracer disables trace points.
func New(tc *types.Context, tracer trace.Tracer) *Propagator {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Propagator{tc: tc, tracer: tracer}
}

// Steps counts the worklist items processed so far.
func (p *Propagator) Steps() int { return p.steps }

// Changed counts the node updates that altered a node's type.
func (p *Propagator) Changed() int { return p.changed }

// SetType offers t to n and propagates the result to n's listeners. Each
// node changes at most once per call, so cyclic listeners terminate.
// It returns the number of nodes whose type changed.
func (p *Propagator) SetType(n *graph.Node, t types.TypeID) int {
	if n == nil {
		return 0
	}
	changed := 0
	queue := []item{{node: n, typ: t, root: set.New[*graph.Node](8)}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		p.steps++
		if !p.apply(it) {
			continue
		}
		changed++
		it.root.Insert(it.node)
		next := p.propagationType(it.node.Type)
		for _, l := range it.node.TypeListeners() {
			queue = append(queue, item{node: l, typ: next, root: it.root})
		}
	}
	p.changed += changed
	if changed > 1 {
		trace.Point(p.tracer, trace.ScopeNode, "types:propagate", n.String(), 0)
	}
	return changed
}

// apply merges it.typ into the node and reports whether its type changed.
func (p *Propagator) apply(it item) bool {
	n, t := it.node, it.typ
	reg := p.tc.Registry()

	if !p.tc.Enabled() {
		// type system off: remember the type without unification
		n.Type = t
		if t != types.NoTypeID && !slices.Contains(n.SubTypes, t) {
			n.SubTypes = append(n.SubTypes, t)
		}
		return false
	}

	if t == types.NoTypeID ||
		it.root.Contains(n) ||
		reg.Kind(t) == types.KindUnknown ||
		p.stopPropagation(n.Type, t) ||
		(reg.Kind(n.Type) == types.KindFunctionPointer && reg.Kind(t) != types.KindFunctionPointer) {
		return false
	}

	old := n.Type
	subs := make([]types.TypeID, 0, len(n.SubTypes)+1)
	for _, s := range n.SubTypes {
		if !p.similar(s, t) {
			subs = append(subs, s)
		}
	}
	subs = append(subs, t)

	common, ok := p.tc.CommonType(subs)
	if !ok {
		common = t
	}
	n.Type = reg.Register(common)

	kept := make([]types.TypeID, 0, len(subs))
	for _, s := range subs {
		if p.tc.IsSupertypeOf(n.Type, s) {
			kept = append(kept, reg.Register(s))
		}
	}
	n.SubTypes = kept
	return old != n.Type
}

// stopPropagation keeps an instantiated generic type from being replaced
// by the same type over template parameters.
func (p *Propagator) stopPropagation(cur, next types.TypeID) bool {
	reg := p.tc.Registry()
	if reg.Kind(cur) != types.KindObject || reg.Kind(next) != types.KindObject {
		return false
	}
	if reg.MustLookup(cur).Name != reg.MustLookup(next).Name {
		return false
	}
	return p.hasParam(reg.Generics(next)) && !p.hasParam(reg.Generics(cur))
}

func (p *Propagator) hasParam(ids []types.TypeID) bool {
	reg := p.tc.Registry()
	for _, id := range ids {
		if reg.Kind(id) == types.KindParameterized {
			return true
		}
	}
	return false
}

// similar reports whether a and b are equal or share a root name.
func (p *Propagator) similar(a, b types.TypeID) bool {
	if a == b {
		return true
	}
	reg := p.tc.Registry()
	return reg.RootName(a) == reg.RootName(b)
}

// propagationType is what listeners receive: the element of a reference,
// otherwise the type itself.
func (p *Propagator) propagationType(t types.TypeID) types.TypeID {
	reg := p.tc.Registry()
	if reg.Kind(t) == types.KindReference {
		return reg.MustLookup(t).Elem
	}
	return t
}
