package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"cpg/internal/pipeline"
)

func TestApplyEventTracksUnits(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("cpg run", []string{"a.cpg", "b.cpg"}, events).(*progressModel)

	m.applyEvent(pipeline.Event{File: "a.cpg", Stage: pipeline.StageDFG, Status: pipeline.StatusWorking})
	if m.units[0].status != "refining" {
		t.Fatalf("status %q", m.units[0].status)
	}
	m.applyEvent(pipeline.Event{File: "a.cpg", Stage: pipeline.StageStore, Status: pipeline.StatusSkipped, Elapsed: time.Millisecond})
	m.applyEvent(pipeline.Event{File: "b.cpg", Stage: pipeline.StageLoad, Status: pipeline.StatusError})
	m.applyEvent(pipeline.Event{File: "b.cpg", Stage: pipeline.StageTypes, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{File: "unknown.cpg", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})

	if m.units[0].status != "done" || m.units[1].status != "error" {
		t.Fatalf("statuses %q %q", m.units[0].status, m.units[1].status)
	}
	if p := m.percent(); p != 1 {
		t.Fatalf("percent %v", p)
	}
	view := m.View()
	if !strings.Contains(view, "a.cpg") || !strings.Contains(view, "error") {
		t.Fatalf("view %q", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("short values must be kept, got %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("zero width keeps the value, got %q", got)
	}
	got := truncate("a/very/long/path.cpg", 10)
	if !strings.HasSuffix(got, "...") || runewidth.StringWidth(got) > 10 {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); runewidth.StringWidth(got) > 2 || strings.Contains(got, ".") {
		t.Fatalf("narrow truncate = %q", got)
	}
}
