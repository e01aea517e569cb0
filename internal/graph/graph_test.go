package graph

import "testing"

func TestEdgesAreMirrored(t *testing.T) {
	g := New("t")
	a := g.AddNode(KindLiteral, "a")
	b := g.AddNode(KindRef, "b")

	g.AddEOG(a, b)
	g.AddEOG(a, b)
	if len(a.NextEOG()) != 1 || len(b.PrevEOG()) != 1 {
		t.Fatalf("duplicate EOG edge was not ignored")
	}

	g.AddDFG(a, b)
	if !b.HasPrevDFG(a) || !a.HasNextDFG(b) {
		t.Fatalf("DFG edge must be visible from both ends")
	}
	if !g.RemoveDFG(a, b) {
		t.Fatalf("RemoveDFG should report the removed edge")
	}
	if b.HasPrevDFG(a) || a.HasNextDFG(b) {
		t.Fatalf("DFG edge must be removed from both ends")
	}
	if g.RemoveDFG(a, b) {
		t.Fatalf("second removal must be a no-op")
	}
}

func TestEOGKeepsBranchOrder(t *testing.T) {
	b := NewBuilder("t")
	cond := b.Node(KindIf, "if")
	then := b.Literal("1", "int")
	els := b.Literal("2", "int")
	b.Chain(cond, then)
	b.Chain(cond, els)

	next := cond.NextEOG()
	if len(next) != 2 || next[0] != then || next[1] != els {
		t.Fatalf("successor order lost: %v", next)
	}
}

func TestBuilderFlowInsensitiveEdges(t *testing.T) {
	b := NewBuilder("t")
	one := b.Literal("1", "int")
	x := b.Variable("x", "int", one)
	w := b.Write(x)
	two := b.Literal("2", "int")
	asg := b.Assign(w, two)
	r := b.Read(x)
	rw := b.Ref(x, AccessReadWrite)

	tests := []struct {
		name     string
		from, to *Node
	}{
		{"initializer", one, x},
		{"write into decl", w, x},
		{"rhs into lhs", two, w},
		{"rhs into assign", two, asg},
		{"decl into read", x, r},
		{"decl into readwrite", x, rw},
		{"readwrite into decl", rw, x},
	}
	for _, tt := range tests {
		if !tt.to.HasPrevDFG(tt.from) {
			t.Errorf("%s: missing edge %s -> %s", tt.name, tt.from, tt.to)
		}
	}
	if x.HasPrevDFG(r) {
		t.Fatalf("reads must not flow into the declaration")
	}
	if r.Decl != x || w.Decl != x || asg.LHS[0] != w {
		t.Fatalf("references not wired")
	}
}

func TestScopesAndDeclarations(t *testing.T) {
	b := NewBuilder("t")
	g := b.Graph()
	tmpl := g.AddTemplate("Box", "T")
	inner := b.Enter(tmpl)
	if tmpl.Scope != inner || inner.TemplateOwner() != tmpl {
		t.Fatalf("template scope not linked")
	}
	b.Leave()
	if b.Scope().ParentScope() != nil {
		t.Fatalf("top scope must report a nil parent")
	}
	if inner.ParentScope() != b.Scope() {
		t.Fatalf("nested scope must report its parent")
	}

	rec := g.AddRecord("Derived", "Base")
	rs := g.AddScope(b.Scope(), rec)
	if rs.TemplateOwner() != nil {
		t.Fatalf("record scopes are not template scopes")
	}

	st := g.Stats()
	if st.Records != 1 || st.Templates != 1 || st.Nodes != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestTypeListeners(t *testing.T) {
	g := New("t")
	a := g.AddNode(KindRef, "a")
	b := g.AddNode(KindRef, "b")
	a.AddTypeListener(b)
	a.AddTypeListener(b)
	a.AddTypeListener(a)
	if got := a.TypeListeners(); len(got) != 1 || got[0] != b {
		t.Fatalf("unexpected listeners %v", got)
	}
}
