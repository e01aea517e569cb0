package observ

import (
	"strings"
	"testing"
)

func TestMergeSumsByPhase(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "dfg", DurationMS: 2}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "types", DurationMS: 1}, {Name: "load", DurationMS: 3, Note: "x"}}}

	got := Merge(a, b)
	if got.TotalMS != 7 || len(got.Phases) != 3 {
		t.Fatalf("merged %+v", got)
	}
	want := []PhaseReport{{Name: "load", DurationMS: 4}, {Name: "dfg", DurationMS: 2}, {Name: "types", DurationMS: 1}}
	for i, p := range want {
		if got.Phases[i] != p {
			t.Fatalf("phase %d = %+v, want %+v", i, got.Phases[i], p)
		}
	}
	if s := got.Summary("timings"); !strings.HasPrefix(s, "timings:\n") || !strings.Contains(s, "total") {
		t.Fatalf("summary %q", s)
	}
}

func TestTimerReport(t *testing.T) {
	var nilTimer *Timer
	if r := nilTimer.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "1 node")
	tm.End(7, "ignored")
	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Name != "load" || r.Phases[0].Note != "1 node" {
		t.Fatalf("report %+v", r)
	}
}
