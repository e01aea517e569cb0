package typeprop

import (
	"context"
	"testing"

	"cpg/internal/graph"
	"cpg/internal/types"
)

func TestPassTypesGraph(t *testing.T) {
	b := graph.NewBuilder("pass")
	g := b.Graph()
	b.Typedef("typedef unsigned long long int u64;")
	g.AddRecord("Shape")
	g.AddRecord("Circle", "Shape")

	fn := b.Function("main")
	v := b.Variable("v", "u64*", nil)
	r := b.Read(v)
	v.AddTypeListener(r)
	shape := b.Variable("s", "Circle&", nil)
	bad := b.Variable("q", "Map<int", nil)

	box := g.AddTemplate("Box", "T")
	b.Enter(box)
	elem := b.Variable("elem", "T", nil)
	b.Leave()
	b.Chain(fn, v, r, shape, bad)

	tc := types.NewContext()
	st := Pass(context.Background(), tc, g)
	if st.Records != 2 || st.Params != 1 || st.Typedefs != 1 || st.Unknown != 1 {
		t.Fatalf("unexpected stats %s", st)
	}

	want := tc.Pointer(tc.Object("unsigned long long int"), types.OriginPointer)
	if v.Type != want || r.Type != want {
		t.Fatalf("v: %s, r: %s", tc.Registry().Name(v.Type), tc.Registry().Name(r.Type))
	}
	if shape.Type != tc.Reference(tc.Object("Circle")) {
		t.Fatalf("s: %s", tc.Registry().Name(shape.Type))
	}
	if bad.Type != types.NoTypeID {
		t.Fatalf("unparsable type text must leave the node untyped")
	}
	param, ok := tc.TypeParameter(box, "T")
	if !ok || elem.Type != param {
		t.Fatalf("template parameter not resolved: %s", tc.Registry().Name(elem.Type))
	}
	if !tc.IsSupertypeOf(tc.Object("Shape"), tc.Object("Circle")) {
		t.Fatalf("records were not registered")
	}

	// a second run with a fresh context starts from clean declarations
	tc2 := types.NewContext()
	Pass(context.Background(), tc2, g)
	if got := box.TypeParameters(); len(got) != 1 {
		t.Fatalf("template carries %d parameters after rerun", len(got))
	}
	if v.Type != tc2.Pointer(tc2.Object("unsigned long long int"), types.OriginPointer) {
		t.Fatalf("rerun did not retype v")
	}
}
