package dfg

import (
	"github.com/hashicorp/go-set/v3"

	"cpg/internal/graph"
)

// Reaching maps a tracked variable declaration to the nodes that may
// produce its value on the current path.
type Reaching map[*graph.Node]*set.Set[*graph.Node]

// Tracks reports whether decl is tracked.
func (r Reaching) Tracks(decl *graph.Node) bool {
	_, ok := r[decl]
	return ok
}

// Defs returns the reaching definitions of decl ordered by node ID.
func (r Reaching) Defs(decl *graph.Node) []*graph.Node {
	s, ok := r[decl]
	if !ok {
		return nil
	}
	out := s.Slice()
	graph.SortNodes(out)
	return out
}

// Vars lists tracked declarations ordered by node ID.
func (r Reaching) Vars() []*graph.Node {
	out := make([]*graph.Node, 0, len(r))
	for decl := range r {
		out = append(out, decl)
	}
	graph.SortNodes(out)
	return out
}

func (r Reaching) set(decl *graph.Node, defs []*graph.Node) {
	r[decl] = set.From(defs)
}

// Clone deep-copies r.
func (r Reaching) Clone() Reaching {
	out := make(Reaching, len(r))
	for decl, s := range r {
		out[decl] = s.Copy()
	}
	return out
}

// union merges other into r per variable.
func (r Reaching) union(other Reaching) {
	for decl, s := range other {
		if mine, ok := r[decl]; ok {
			mine.InsertSet(s)
			continue
		}
		r[decl] = s.Copy()
	}
}

// Edge is a DFG edge from a producer into a consumer.
type Edge struct {
	From *graph.Node
	To   *graph.Node
}

// Removals maps a refined consumer to the generic producers whose edges
// into it are superseded.
type Removals map[*graph.Node]*set.Set[*graph.Node]

func (r Removals) add(node, prev *graph.Node) {
	s, ok := r[node]
	if !ok {
		s = set.New[*graph.Node](1)
		r[node] = s
	}
	s.Insert(prev)
}

// Has reports whether the edge prev -> node is scheduled for removal.
func (r Removals) Has(node, prev *graph.Node) bool {
	s, ok := r[node]
	return ok && s.Contains(prev)
}

// Len counts scheduled edges.
func (r Removals) Len() int {
	n := 0
	for _, s := range r {
		n += s.Size()
	}
	return n
}

// Edges lists scheduled edges ordered by consumer, then producer.
func (r Removals) Edges() []Edge {
	nodes := make([]*graph.Node, 0, len(r))
	for n := range r {
		nodes = append(nodes, n)
	}
	graph.SortNodes(nodes)
	var out []Edge
	for _, n := range nodes {
		prevs := r[n].Slice()
		graph.SortNodes(prevs)
		for _, p := range prevs {
			out = append(out, Edge{From: p, To: n})
		}
	}
	return out
}

// Apply deletes every scheduled edge from g and returns how many existed.
func (r Removals) Apply(g *graph.Graph) int {
	removed := 0
	for _, e := range r.Edges() {
		if g.RemoveDFG(e.From, e.To) {
			removed++
		}
	}
	return removed
}

// state is the per-path analysis state. Branch frames own a clone; the
// sub-walk of an assignment shares its parent's state.
type state struct {
	reaching Reaching
	visited  *set.Set[*graph.Node]
}

func newState() *state {
	return &state{
		reaching: make(Reaching),
		visited:  set.New[*graph.Node](32),
	}
}

func (s *state) clone() *state {
	return &state{
		reaching: s.reaching.Clone(),
		visited:  s.visited.Copy(),
	}
}

func (s *state) merge(other *state) {
	s.reaching.union(other.reaching)
	s.visited.InsertSet(other.visited)
}
