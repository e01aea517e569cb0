package graph

import (
	"fmt"

	"fortio.org/safecast"

	"cpg/internal/types"
)

// Graph owns the nodes, declarations and scopes of one analysis unit.
type Graph struct {
	Name string

	nodes     []*Node // index 0 reserved for NoNodeID
	scopes    []*Scope
	records   []*Record
	templates []*Template
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:   name,
		nodes:  make([]*Node, 1, 64),
		scopes: make([]*Scope, 1, 8),
	}
}

// AddNode allocates a node of the given kind.
func (g *Graph) AddNode(kind Kind, name string) *Node {
	value, err := safecast.Conv[uint32](len(g.nodes))
	if err != nil {
		panic(fmt.Errorf("node arena overflow: %w", err))
	}
	n := newNode(NodeID(value), kind, name)
	g.nodes = append(g.nodes, n)
	return n
}

// Node returns the node with the given ID or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id == NoNodeID || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes in ID order.
func (g *Graph) Nodes() []*Node { return g.nodes[1:] }

// Len reports the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) - 1 }

// Functions returns the function nodes in ID order.
func (g *Graph) Functions() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Kind == KindFunction {
			out = append(out, n)
		}
	}
	return out
}

// AddScope allocates a scope nested in parent (nil for a top scope).
func (g *Graph) AddScope(parent *Scope, owner types.Declarer) *Scope {
	value, err := safecast.Conv[uint32](len(g.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	s := &Scope{ID: ScopeID(value), Parent: parent}
	switch o := owner.(type) {
	case *Record:
		if o != nil {
			s.Owner = o
			o.Scope = s
		}
	case *Template:
		if o != nil {
			s.Owner = o
			o.Scope = s
		}
	}
	g.scopes = append(g.scopes, s)
	return s
}

// Scope returns the scope with the given ID or nil.
func (g *Graph) Scope(id ScopeID) *Scope {
	if id == 0 || int(id) >= len(g.scopes) {
		return nil
	}
	return g.scopes[id]
}

// Scopes returns all scopes in ID order.
func (g *Graph) Scopes() []*Scope { return g.scopes[1:] }

// AddRecord declares a record with the given supertypes.
func (g *Graph) AddRecord(name string, supers ...string) *Record {
	r := &Record{Name: name, Supers: supers}
	g.records = append(g.records, r)
	return r
}

// Records returns the record declarations in declaration order.
func (g *Graph) Records() []*Record { return g.records }

// AddTemplate declares a template with the given type parameter names.
func (g *Graph) AddTemplate(name string, params ...string) *Template {
	t := &Template{Name: name, ParamNames: params}
	g.templates = append(g.templates, t)
	return t
}

// Templates returns the template declarations in declaration order.
func (g *Graph) Templates() []*Template { return g.templates }

// AddEOG appends to as an evaluation-order successor of from. Duplicate
// edges are ignored.
func (g *Graph) AddEOG(from, to *Node) {
	if from == nil || to == nil {
		return
	}
	for _, n := range from.nextEOG {
		if n == to {
			return
		}
	}
	from.nextEOG = append(from.nextEOG, to)
	to.prevEOG = append(to.prevEOG, from)
}

// AddDFG records that the value of from flows into to.
func (g *Graph) AddDFG(from, to *Node) {
	if from == nil || to == nil {
		return
	}
	from.nextDFG.Insert(to)
	to.prevDFG.Insert(from)
}

// RemoveDFG deletes the edge from -> to in both directions.
func (g *Graph) RemoveDFG(from, to *Node) bool {
	if from == nil || to == nil {
		return false
	}
	removed := to.prevDFG.Remove(from)
	from.nextDFG.Remove(to)
	return removed
}

// Stats summarizes the size of a graph.
type Stats struct {
	Nodes     int
	Functions int
	EOGEdges  int
	DFGEdges  int
	Records   int
	Templates int
}

// Stats counts nodes and edges.
func (g *Graph) Stats() Stats {
	st := Stats{
		Nodes:     g.Len(),
		Records:   len(g.records),
		Templates: len(g.templates),
	}
	for _, n := range g.Nodes() {
		if n.Kind == KindFunction {
			st.Functions++
		}
		st.EOGEdges += len(n.nextEOG)
		st.DFGEdges += n.nextDFG.Size()
	}
	return st
}
