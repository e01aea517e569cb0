package types

import "testing"

func TestIsSupertypeOf(t *testing.T) {
	c := NewContext()
	diamond(c)
	root, l1, l0b := c.Object("Root"), c.Object("Level1"), c.Object("Level0B")
	ptr := func(id TypeID) TypeID { return c.Pointer(id, OriginPointer) }
	arr := func(id TypeID) TypeID { return c.Pointer(id, OriginArray) }

	tests := []struct {
		name       string
		super, sub TypeID
		want       bool
	}{
		{"identity", l1, l1, true},
		{"base of derived", root, l1, true},
		{"derived of base", l1, root, false},
		{"unrelated", l0b, l1, false},
		{"pointer to base", ptr(root), ptr(l1), true},
		{"array versus pointer", arr(l1), ptr(l1), true},
		{"depth mismatch", ptr(root), l1, false},
		{"reference super", c.Reference(root), l1, true},
		{"reference both", c.Reference(root), c.Reference(l1), true},
		{"reference unrelated", c.Reference(l0b), l1, false},
		{"unregistered ids", 999, 998, false},
		{"unregistered sub", l1, 999, false},
	}
	for _, tt := range tests {
		if got := c.IsSupertypeOf(tt.super, tt.sub); got != tt.want {
			t.Errorf("%s: IsSupertypeOf(%s, %s) = %v, want %v", tt.name,
				c.Registry().Name(tt.super), c.Registry().Name(tt.sub), got, tt.want)
		}
	}
}

func TestSupertypeOracleFallback(t *testing.T) {
	c := NewContext()
	number, integer := c.Object("java.lang.Number"), c.Object("java.lang.Integer")
	if !c.IsSupertypeOf(number, integer) {
		t.Fatalf("oracle should know Integer extends Number")
	}
	if c.IsSupertypeOf(integer, number) {
		t.Fatalf("oracle must not invert the hierarchy")
	}

	// a declared record wins over the oracle
	c.AddRecord(&testRecord{name: "java.lang.Integer"})
	if c.IsSupertypeOf(number, integer) {
		t.Fatalf("structural answer must not be overridden by the oracle")
	}

	off := NewContext(WithOracle(nil))
	if off.IsSupertypeOf(off.Object("java.lang.Number"), off.Object("java.lang.Integer")) {
		t.Fatalf("disabled oracle must answer false")
	}
}

func TestCheckArrayAndPointer(t *testing.T) {
	c := NewContext()
	foo := c.Object("Foo")
	if !c.CheckArrayAndPointer(c.Pointer(foo, OriginArray), c.Pointer(foo, OriginPointer)) {
		t.Fatalf("array and pointer of the same element are interchangeable")
	}
	if c.CheckArrayAndPointer(c.Pointer(foo, OriginArray), foo) {
		t.Fatalf("depth must match")
	}
}

func TestTypeParameters(t *testing.T) {
	c := NewContext()
	box := &testRecord{name: "Box"}
	pair := &testRecord{name: "Pair"}

	t1 := c.GetOrCreateTypeParameter(box, "T")
	t2 := c.GetOrCreateTypeParameter(box, "T")
	if t1 != t2 {
		t.Fatalf("same owner and name must share identity")
	}
	if len(box.params) != 1 || box.params[0] != t1 {
		t.Fatalf("parameter not written back to its owner: %v", box.params)
	}
	if c.GetOrCreateTypeParameter(pair, "T") == t1 {
		t.Fatalf("parameters of different declarations are distinct")
	}
	if info, ok := c.Registry().ParamInfo(t1); !ok || info.Owner != box || info.Name != "T" {
		t.Fatalf("unexpected param info %+v", info)
	}
	if got := c.Params(box); len(got) != 1 {
		t.Fatalf("expected one parameter for Box, got %v", got)
	}
}

func TestTypeParameterOwnerAcrossContexts(t *testing.T) {
	a := &testRecord{name: "A"}
	b := &testRecord{name: "B"}

	first := NewContext()
	first.GetOrCreateTypeParameter(a, "T")

	// a keeps the ID of the first context, which the second one reuses for b
	second := NewContext()
	bt := second.GetOrCreateTypeParameter(b, "T")
	at := second.GetOrCreateTypeParameter(a, "T")
	if at == bt {
		t.Fatalf("parameter T of A resolved to the parameter of B")
	}
	if info, ok := second.Registry().ParamInfo(at); !ok || info.Owner != a {
		t.Fatalf("A.T owned by %+v", info.Owner)
	}
	if got, ok := second.TypeParameter(a, "T"); !ok || got != at {
		t.Fatalf("lookup of A.T = %d, want %d", got, at)
	}
}

func TestResolveInLexicalScope(t *testing.T) {
	c := NewContext()
	tmpl := &testRecord{name: "Vec"}
	elem := c.GetOrCreateTypeParameter(tmpl, "E")

	outer := &testScope{}
	tmplScope := &testScope{parent: outer, owner: tmpl}
	body := &testScope{parent: &testScope{parent: tmplScope}}

	got, ok := c.ResolveInLexicalScope(body, "E")
	if !ok || got != elem {
		t.Fatalf("expected E from enclosing template scope")
	}
	if _, ok := c.ResolveInLexicalScope(body, "K"); ok {
		t.Fatalf("unknown parameter must be absent")
	}
	if _, ok := c.ResolveInLexicalScope(nil, "E"); ok {
		t.Fatalf("nil scope must be absent")
	}
	if _, ok := c.ResolveInLexicalScope(outer, "E"); ok {
		t.Fatalf("scopes outside the template must not see E")
	}
}
