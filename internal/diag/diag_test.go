package diag

import "testing"

func TestBagSortAndFormat(t *testing.T) {
	bag := NewBag(10)
	r := &BagReporter{Bag: bag}
	ReportWarning(r, DfgNoJoinPoint, Location{File: "b.cpg", Line: 3, Column: 1}, "no join").Emit()
	ReportError(r, IOLoadFailed, Location{File: "a.cpg", Line: 9, Column: 2}, "bad\nfile").
		WithNote(Location{Node: 7}, "here").
		Emit()

	bag.Sort()
	want := "error IO4001 a.cpg:9:2 bad file\n" +
		"  note node#7 here\n" +
		"warning DFG2001 b.cpg:3:1 no join"
	if got := bag.FormatShort(true); got != want {
		t.Fatalf("unexpected format:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("expected errors and warnings")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if bag.Cap() != 1 {
		t.Fatalf("Cap = %d, want 1", bag.Cap())
	}
	if !bag.Add(New(SevInfo, TypInfo, Location{}, "one")) {
		t.Fatalf("first add should succeed")
	}
	if bag.Add(New(SevInfo, TypInfo, Location{}, "two")) {
		t.Fatalf("second add should be dropped")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	for range 3 {
		r.Report(TypNoLexicalScope, SevWarning, Location{}, "missing scope", nil)
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	b := ReportInfo(&BagReporter{Bag: bag}, DfgInfo, Location{}, "x")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single emission, got %d", bag.Len())
	}
	if got := TypSupertypeCycle.ID(); got != "TYP1005" {
		t.Fatalf("unexpected code id %q", got)
	}
}
