package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cpg/internal/config"
	"cpg/internal/dfg"
	"cpg/internal/diag"
	"cpg/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <graph.cpg>...",
	Short: "Resolve types and refine data flow of stored graphs",
	Long: `run loads every graph file, resolves node types, replaces
flow-insensitive variable edges with path-sensitive ones and prints a
summary. Refined graphs are written with -o, DOT exports with --dot.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalysis,
}

func init() {
	addRunFlags(runCmd.Flags())
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.String("ui", "auto", "progress view (auto|on|off)")
	fs.Int("jobs", 0, "graphs analysed in parallel (default from cpg.toml, 0 = GOMAXPROCS)")
	fs.StringP("output", "o", "", "directory for refined graph files")
	fs.String("dot", "", "directory for DOT exports")
	fs.Bool("no-types", false, "record types as found without unification")
	fs.String("join-fallback", "", "branches without a join point: function-end|stop (default from cpg.toml)")
	fs.Bool("quiet", false, "print only failures")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cmd, cfg)
	if err != nil {
		return err
	}

	cleanup, tracingToStderr, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var res pipeline.Result
	if shouldUseTUI(mode, tracingToStderr) {
		res, err = runWithUI(ctx, "cpg run", args, opts)
	} else {
		res, err = pipeline.Run(ctx, args, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfgPath != "" && !quiet {
		fmt.Fprintf(out, "config %s\n", cfgPath)
	}
	printUnits(out, res, quiet)
	if !quiet {
		printTotals(out, res)
	}
	if showTimings {
		fmt.Fprint(out, res.Timings().Summary("timings"))
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d of %d graphs failed", n, len(res.Units))
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, "", err
	}
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.LoadNearest(wd)
}

// pipelineOptions merges cfg with the flags set on the command line.
func pipelineOptions(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	flags := cmd.Flags()
	opts := pipeline.Options{
		Jobs:           cfg.Pipeline.Jobs,
		MaxDiagnostics: cfg.Pipeline.MaxDiagnostics,
		Types:          cfg.Types.Enabled,
	}
	fallback, err := cfg.Fallback()
	if err != nil {
		return opts, err
	}
	opts.Fallback = fallback

	if flags.Changed("jobs") {
		if opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return opts, err
		}
	}
	if cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		if opts.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
			return opts, err
		}
	}
	if noTypes, _ := flags.GetBool("no-types"); noTypes {
		opts.Types = false
	}
	if flags.Changed("join-fallback") {
		raw, _ := flags.GetString("join-fallback")
		if opts.Fallback, err = dfg.ParseJoinFallback(raw); err != nil {
			return opts, err
		}
	}
	if opts.OutputDir, err = flags.GetString("output"); err != nil {
		return opts, err
	}
	if opts.DOTDir, err = flags.GetString("dot"); err != nil {
		return opts, err
	}
	if opts.OutputDir != "" {
		opts.OutputDir = filepath.Clean(opts.OutputDir)
	}
	return opts, nil
}

func printUnits(out io.Writer, res pipeline.Result, quiet bool) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	for _, u := range res.Units {
		if u.Err == nil && quiet {
			continue
		}
		if u.Err != nil {
			fmt.Fprintf(out, "%s %s\n", bad("FAIL"), u.Path)
		} else {
			line := fmt.Sprintf("%s %s  %s", ok("ok"), u.Path, u.DFG)
			if u.Output != "" {
				line += " -> " + u.Output
			}
			fmt.Fprintln(out, line)
		}
		for _, d := range u.Bag.Items() {
			fmt.Fprintf(out, "  %s\n", severityColor(d.Severity).Sprint(d.String()))
		}
	}
}

func printTotals(out io.Writer, res pipeline.Result) {
	st := res.DFG()
	fmt.Fprintf(out, "%s %d graphs, %d functions, %d edges added, %d removed in %s\n",
		color.New(color.Bold).Sprint("total"),
		len(res.Units), st.Functions, st.Added, st.Removed,
		res.Elapsed.Round(time.Millisecond))
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed)
	case diag.SevWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
