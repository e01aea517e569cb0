package typeprop

import (
	"testing"

	"cpg/internal/graph"
	"cpg/internal/types"
)

func pair(t *testing.T) (*graph.Node, *graph.Node) {
	t.Helper()
	g := graph.New("prop")
	x := g.AddNode(graph.KindVariable, "x")
	r := g.AddNode(graph.KindRef, "x")
	x.AddTypeListener(r)
	return x, r
}

func TestListenersFollowCommonType(t *testing.T) {
	tc := types.NewContext()
	tc.AddRecord(&graph.Record{Name: "Base"})
	tc.AddRecord(&graph.Record{Name: "A", Supers: []string{"Base"}})
	tc.AddRecord(&graph.Record{Name: "B", Supers: []string{"Base"}})
	a, b, base := tc.Object("A"), tc.Object("B"), tc.Object("Base")

	x, r := pair(t)
	p := New(tc, nil)
	if n := p.SetType(x, a); n != 2 {
		t.Fatalf("expected declaration and listener to change, got %d", n)
	}
	if r.Type != a {
		t.Fatalf("listener type %s", tc.Registry().Name(r.Type))
	}

	p.SetType(x, b)
	if x.Type != base || r.Type != base {
		t.Fatalf("types %s / %s, want Base", tc.Registry().Name(x.Type), tc.Registry().Name(r.Type))
	}
	if len(x.SubTypes) != 2 || x.SubTypes[0] != a || x.SubTypes[1] != b {
		t.Fatalf("possible subtypes %v", x.SubTypes)
	}
}

func TestCyclicListenersTerminate(t *testing.T) {
	tc := types.NewContext()
	x, r := pair(t)
	r.AddTypeListener(x)

	p := New(tc, nil)
	if n := p.SetType(x, tc.Object("int")); n != 2 {
		t.Fatalf("changed %d nodes", n)
	}
	if p.Steps() != 3 {
		t.Fatalf("expected the cycle to stop after revisiting x, took %d steps", p.Steps())
	}
}

func TestReferencePropagatesElement(t *testing.T) {
	tc := types.NewContext()
	i := tc.Object("int")
	x, r := pair(t)
	New(tc, nil).SetType(x, tc.Reference(i))
	if x.Type != tc.Reference(i) || r.Type != i {
		t.Fatalf("got %s / %s", tc.Registry().Name(x.Type), tc.Registry().Name(r.Type))
	}
}

func TestRejectedUpdates(t *testing.T) {
	tc := types.NewContext()
	i := tc.Object("int")
	fp := tc.FunctionPointer(i, tc.Object("char"))
	owner := &graph.Template{Name: "List", ParamNames: []string{"T"}}
	list := tc.Object("List", i)
	generic := tc.Object("List", tc.GetOrCreateTypeParameter(owner, "T"))

	tests := []struct {
		name    string
		initial types.TypeID
		next    types.TypeID
	}{
		{"unknown", types.NoTypeID, tc.Unknown()},
		{"absent", types.NoTypeID, types.NoTypeID},
		{"function pointer kept", fp, i},
		{"instantiated generic kept", list, generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, r := pair(t)
			p := New(tc, nil)
			if tt.initial != types.NoTypeID {
				p.SetType(x, tt.initial)
			}
			if n := p.SetType(x, tt.next); n != 0 {
				t.Fatalf("update accepted, %d nodes changed", n)
			}
			if x.Type != tt.initial || r.Type != tt.initial {
				t.Fatalf("type changed to %s", tc.Registry().Name(x.Type))
			}
		})
	}
}

func TestDisabledTypeSystem(t *testing.T) {
	tc := types.NewContext()
	tc.SetEnabled(false)
	i := tc.Object("int")
	x, r := pair(t)
	if n := New(tc, nil).SetType(x, i); n != 0 {
		t.Fatalf("disabled type system must not propagate")
	}
	if x.Type != i || len(x.SubTypes) != 1 || r.Type != types.NoTypeID {
		t.Fatalf("unexpected state %v %v %v", x.Type, x.SubTypes, r.Type)
	}
}
