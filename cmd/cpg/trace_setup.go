package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cpg/internal/config"
	"cpg/internal/trace"
)

// setupTracing builds the tracer from [trace] in cfg, overridden by any
// trace flag set on the command line, and attaches it to the command
// context. The returned cleanup flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg config.Config) (cleanup func(), toStderr bool, err error) {
	flags := cmd.Root().PersistentFlags()
	tc := cfg.Trace
	if flags.Changed("trace") {
		if tc.Output, err = flags.GetString("trace"); err != nil {
			return nil, false, fmt.Errorf("failed to get trace flag: %w", err)
		}
		if !flags.Changed("trace-level") && (tc.Level == "" || tc.Level == trace.LevelOff.String()) {
			tc.Level = trace.LevelPhase.String()
		}
	}
	if flags.Changed("trace-level") {
		if tc.Level, err = flags.GetString("trace-level"); err != nil {
			return nil, false, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if flags.Changed("trace-mode") {
		if tc.Mode, err = flags.GetString("trace-mode"); err != nil {
			return nil, false, fmt.Errorf("failed to get trace-mode flag: %w", err)
		}
	}
	if flags.Changed("trace-ring-size") {
		if tc.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
			return nil, false, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
		}
	}
	if flags.Changed("trace-heartbeat") {
		hb, err := flags.GetDuration("trace-heartbeat")
		if err != nil {
			return nil, false, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
		}
		tc.Heartbeat = hb.String()
	}
	cfg.Trace = tc

	tcfg, err := cfg.TracerConfig()
	if err != nil {
		return nil, false, fmt.Errorf("invalid trace settings: %w", err)
	}
	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, false, nil
	}

	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	var heartbeat *trace.Heartbeat
	if tcfg.Heartbeat > 0 {
		heartbeat = trace.StartHeartbeat(tracer, tcfg.Heartbeat)
	}
	toStderr = tcfg.Mode != trace.ModeRing && (tcfg.OutputPath == "" || tcfg.OutputPath == "-")

	return func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, toStderr, nil
}
