package types

import "testing"

func TestParseNames(t *testing.T) {
	c := NewContext()
	tests := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{"const unsigned long*", "unsigned long*"},
		{"char **", "char**"},
		{"int[4]", "int[]"},
		{"Foo&", "Foo&"},
		{"Foo&&", "Foo&"},
		{"std::map<int, Foo*>&", "std::map<int,Foo*>&"},
		{"struct Node*", "Node*"},
		{"int (*)(char, long)", "int(char,long)"},
		{"void (*)(void)", "void()"},
	}
	for _, tt := range tests {
		if got := c.Registry().Name(c.Parse(tt.in)); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSentinels(t *testing.T) {
	c := NewContext()
	for _, in := range []string{"", "  ", "?", "const", "Map<int"} {
		if got := c.Parse(in); got != c.Unknown() {
			t.Errorf("Parse(%q) = %s, want unknown", in, c.Registry().Name(got))
		}
	}
	if c.Parse("void") != c.Incomplete() {
		t.Fatalf("void must map to the incomplete sentinel")
	}
	if c.Parse("int*") != c.Pointer(c.Object("int"), OriginPointer) {
		t.Fatalf("parsed and constructed types must share identity")
	}
}

func TestParseInScope(t *testing.T) {
	c := NewContext()
	tmpl := &testRecord{name: "List"}
	elem := c.GetOrCreateTypeParameter(tmpl, "T")
	scope := &testScope{owner: tmpl}
	c.HandleTypedef("typedef unsigned long long int u64;", scope)

	if got := c.ParseInScope("T*", scope); got != c.Pointer(elem, OriginPointer) {
		t.Fatalf("T* resolved to %s", c.Registry().Name(got))
	}
	if got := c.ParseInScope("const u64*", scope); got != c.Parse("unsigned long long int*") {
		t.Fatalf("typedef not resolved: %s", c.Registry().Name(got))
	}
	if got := c.Parse("T"); got == elem {
		t.Fatalf("without a scope T is a plain object type")
	}
}

func TestSplitOuter(t *testing.T) {
	got := splitOuter("Map<a, b>, (x, y), c[1,2]", ",")
	want := []string{"Map<a, b>", "(x, y)", "c[1,2]"}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("part %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if stripRedundantParens("((a))") != "a" || stripRedundantParens("(*f)(int)") != "(*f)(int)" {
		t.Fatalf("unexpected parenthesis handling")
	}
}
