package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"cpg/internal/dfg"
	"cpg/internal/trace"
)

// FileName is the configuration file looked up by FindConfig.
const FileName = "cpg.toml"

// Config mirrors cpg.toml.
type Config struct {
	Types    TypesConfig    `toml:"types"`
	DFG      DFGConfig      `toml:"dfg"`
	Trace    TraceConfig    `toml:"trace"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

type TypesConfig struct {
	Enabled bool `toml:"enabled"`
}

type DFGConfig struct {
	// JoinFallback is "function-end" or "stop".
	JoinFallback string `toml:"join_fallback"`
}

type TraceConfig struct {
	Level     string `toml:"level"`
	Mode      string `toml:"mode"`
	Output    string `toml:"output"`
	RingSize  int    `toml:"ring_size"`
	Heartbeat string `toml:"heartbeat"`
}

type PipelineConfig struct {
	Jobs           int `toml:"jobs"` // 0 means GOMAXPROCS
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the configuration used when no cpg.toml exists.
func Default() Config {
	return Config{
		Types: TypesConfig{Enabled: true},
		DFG:   DFGConfig{JoinFallback: dfg.FallbackFunctionEnd.String()},
		Trace: TraceConfig{
			Level:    trace.LevelOff.String(),
			Mode:     trace.ModeStream.String(),
			RingSize: 4096,
		},
		Pipeline: PipelineConfig{MaxDiagnostics: 100},
	}
}

// Load decodes path on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys %s: %w", path, strings.Join(keys, ", "), ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadNearest loads the closest cpg.toml above startDir. Without one it
// returns Default and an empty path.
func LoadNearest(startDir string) (Config, string, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// Validate checks every enumerated and numeric value.
func (c Config) Validate() error {
	if _, err := c.Fallback(); err != nil {
		return fmt.Errorf("[dfg] join_fallback: %w: %w", ErrInvalid, err)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace] level: %w: %w", ErrInvalid, err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace] mode: %w: %w", ErrInvalid, err)
	}
	if _, err := c.heartbeat(); err != nil {
		return fmt.Errorf("[trace] heartbeat: %w: %w", ErrInvalid, err)
	}
	if c.Trace.RingSize < 0 {
		return fmt.Errorf("[trace] ring_size must not be negative: %w", ErrInvalid)
	}
	if c.Pipeline.Jobs < 0 {
		return fmt.Errorf("[pipeline] jobs must not be negative: %w", ErrInvalid)
	}
	if c.Pipeline.MaxDiagnostics < 0 {
		return fmt.Errorf("[pipeline] max_diagnostics must not be negative: %w", ErrInvalid)
	}
	return nil
}

// Fallback parses [dfg] join_fallback.
func (c Config) Fallback() (dfg.JoinFallback, error) {
	return dfg.ParseJoinFallback(c.DFG.JoinFallback)
}

// TracerConfig converts [trace] into a tracer configuration.
func (c Config) TracerConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	hb, err := c.heartbeat()
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
		Heartbeat:  hb,
	}, nil
}

func (c Config) heartbeat() (time.Duration, error) {
	if c.Trace.Heartbeat == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Trace.Heartbeat)
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %q: %w", path, err)
		}
	}
	var sb strings.Builder
	sb.WriteString("# cpg analysis settings\n\n")
	if err := toml.NewEncoder(&sb).Encode(Default()); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
