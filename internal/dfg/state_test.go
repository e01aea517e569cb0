package dfg

import (
	"testing"

	"cpg/internal/graph"
)

func TestReachingCloneIsIndependent(t *testing.T) {
	g := graph.New("state")
	x := g.AddNode(graph.KindVariable, "x")
	one := g.AddNode(graph.KindLiteral, "")
	two := g.AddNode(graph.KindLiteral, "")

	r := make(Reaching)
	r.set(x, nil)
	if !r.Tracks(x) || len(r.Defs(x)) != 0 {
		t.Fatalf("a declaration without definitions is still tracked")
	}
	c := r.Clone()
	c.set(x, []*graph.Node{one})
	if len(r.Defs(x)) != 0 {
		t.Fatalf("clone shares sets with its source")
	}
	r.set(x, []*graph.Node{two})
	r.union(c)
	if defs := r.Defs(x); len(defs) != 2 || defs[0] != one || defs[1] != two {
		t.Fatalf("union = %v", defs)
	}
}

func TestRemovalsApply(t *testing.T) {
	g := graph.New("removals")
	x := g.AddNode(graph.KindVariable, "x")
	r1 := g.AddNode(graph.KindRef, "x")
	r2 := g.AddNode(graph.KindRef, "x")
	g.AddDFG(x, r1)
	g.AddDFG(x, r2)

	rm := make(Removals)
	rm.add(r2, x)
	rm.add(r1, x)
	rm.add(r1, x)
	if rm.Len() != 2 || !rm.Has(r1, x) || rm.Has(x, r1) {
		t.Fatalf("unexpected removals %v", rm.Edges())
	}
	if e := rm.Edges(); e[0].To != r1 || e[1].To != r2 || e[0].From != x {
		t.Fatalf("edges not ordered by consumer: %v", e)
	}
	if n := rm.Apply(g); n != 2 {
		t.Fatalf("removed %d edges", n)
	}
	if x.HasNextDFG(r1) || r2.HasPrevDFG(x) {
		t.Fatalf("edges must be removed in both directions")
	}
	if n := rm.Apply(g); n != 0 {
		t.Fatalf("second apply removed %d edges", n)
	}
}
