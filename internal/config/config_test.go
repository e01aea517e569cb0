package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cpg/internal/dfg"
	"cpg/internal/trace"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[types]
enabled = false

[dfg]
join_fallback = "stop"

[trace]
level = "detail"
heartbeat = "2s"

[pipeline]
jobs = 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Types.Enabled || cfg.Pipeline.Jobs != 3 {
		t.Fatalf("values not applied: %+v", cfg)
	}
	if cfg.Pipeline.MaxDiagnostics != 100 || cfg.Trace.Mode != "stream" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if fb, _ := cfg.Fallback(); fb != dfg.FallbackStop {
		t.Fatalf("fallback = %v", fb)
	}
	tc, err := cfg.TracerConfig()
	if err != nil {
		t.Fatalf("TracerConfig: %v", err)
	}
	if tc.Level != trace.LevelDetail || tc.Heartbeat != 2*time.Second || tc.RingSize != 4096 {
		t.Fatalf("tracer config %+v", tc)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[dfg]\nfixpoint = true\n"},
		{"fallback", "[dfg]\njoin_fallback = \"never\"\n"},
		{"level", "[trace]\nlevel = \"loud\"\n"},
		{"heartbeat", "[trace]\nheartbeat = \"soon\"\n"},
		{"jobs", "[pipeline]\njobs = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.body)
			_, err := Load(path)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	path := writeFile(t, t.TempDir(), "[types\n")
	if _, err := Load(path); err == nil || errors.Is(err, ErrInvalid) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := writeFile(t, root, "[pipeline]\njobs = 2\n")

	cfg, path, err := LoadNearest(nested)
	if err != nil {
		t.Fatalf("LoadNearest: %v", err)
	}
	if got, _ := filepath.EvalSymlinks(path); got != mustEval(t, want) {
		t.Fatalf("found %s, want %s", path, want)
	}
	if cfg.Pipeline.Jobs != 2 {
		t.Fatalf("jobs = %d", cfg.Pipeline.Jobs)
	}
}

func mustEval(t *testing.T, p string) string {
	t.Helper()
	out, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Fatalf("existing file must not be overwritten")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Fatalf("forced WriteDefault: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("round trip changed config: %+v", cfg)
	}
}
