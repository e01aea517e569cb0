package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredPlainWhenDisabled(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	orig := Version
	defer func() { Version = orig }()

	tests := []string{"0.1.0-dev", "1.2.3", "2.0"}
	for _, v := range tests {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestDetails(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = "", ""
	if d := Details(); len(d) != 0 {
		t.Fatalf("expected no details, got %v", d)
	}
	GitCommit, BuildDate = "abc123", "2026-01-15T10:30:00Z"
	if d := Details(); len(d) != 2 || d[0] != "commit abc123" {
		t.Fatalf("details %v", d)
	}
}
