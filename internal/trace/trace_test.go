package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	unit := Begin(tr, ScopeUnit, "unit:a.cpg", 0)
	pass := Begin(tr, ScopePass, "dfg", unit.ID())
	pass.End("")
	unit.WithExtra("nodes", "12").End("ok")

	out := buf.String()
	if strings.Contains(out, "dfg") {
		t.Fatalf("pass span must be filtered at phase level:\n%s", out)
	}
	if !strings.Contains(out, "← unit:a.cpg (ok) {nodes=12}") {
		t.Fatalf("missing unit end event:\n%s", out)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeNode, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestMultiTracerAndNDJSON(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelDetail)
	m := NewMultiTracer(LevelDetail, NewStreamTracer(&buf, LevelDetail, FormatNDJSON), ring)
	Begin(m, ScopePass, "types", 0).End("done")

	if got := len(ring.Snapshot()); got != 2 {
		t.Fatalf("expected 2 ring events, got %d", got)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], `"kind":"end"`) {
		t.Fatalf("unexpected ndjson output:\n%s", buf.String())
	}
	if m.Ring() != ring {
		t.Fatalf("Ring should expose the ring sink")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop for empty context")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	span := Begin(FromContext(ctx), ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, span)
	if ParentSpan(ctx) != span.ID() {
		t.Fatalf("parent span not propagated")
	}
}

func TestParseHelpers(t *testing.T) {
	if lvl, err := ParseLevel("DETAIL"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", lvl, err)
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff should yield a disabled tracer")
	}
}
