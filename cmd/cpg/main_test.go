package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"cpg/internal/config"
	"cpg/internal/dfg"
)

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{" ON ", uiModeOn, true},
		{"off", uiModeOff, true},
		{"fancy", "", false},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeOff, false) || !shouldUseTUI(uiModeOn, true) {
		t.Fatalf("explicit ui modes must win")
	}
}

func newRunCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "cpg"}
	root.PersistentFlags().Int("max-diagnostics", 0, "")
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd.Flags())
	root.AddCommand(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestPipelineOptionsFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Jobs = 4
	cfg.DFG.JoinFallback = "stop"

	opts, err := pipelineOptions(newRunCommand(t), cfg)
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if opts.Jobs != 4 || opts.Fallback != dfg.FallbackStop || !opts.Types {
		t.Fatalf("config values lost: %+v", opts)
	}

	opts, err = pipelineOptions(newRunCommand(t, "--jobs", "2", "--no-types", "--join-fallback", "function-end", "-o", "out/"), cfg)
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if opts.Jobs != 2 || opts.Types || opts.Fallback != dfg.FallbackFunctionEnd || opts.OutputDir != filepath.Clean("out/") {
		t.Fatalf("flags not applied: %+v", opts)
	}

	if _, err := pipelineOptions(newRunCommand(t, "--join-fallback", "maybe"), cfg); err == nil {
		t.Fatalf("invalid fallback accepted")
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if payload.Tool != "cpg" || payload.Version == "" {
		t.Fatalf("payload %+v", payload)
	}
}
