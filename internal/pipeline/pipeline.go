package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cpg/internal/dfg"
	"cpg/internal/diag"
	"cpg/internal/graph"
	"cpg/internal/observ"
	"cpg/internal/trace"
	"cpg/internal/typeprop"
	"cpg/internal/types"
)

// Options configures Run.
type Options struct {
	Jobs           int  // 0 means GOMAXPROCS
	MaxDiagnostics int  // per unit, 0 means DefaultMaxDiagnostics
	Types          bool // unify types; when false types are recorded as found
	Fallback       dfg.JoinFallback
	OutputDir      string // refined graphs are written here when set
	DOTDir         string // DOT exports are written here when set
	Progress       ProgressSink
}

// DefaultMaxDiagnostics caps the diagnostics kept per unit.
const DefaultMaxDiagnostics = 100

// UnitResult is the outcome for one graph file.
type UnitResult struct {
	Path   string
	Output string
	Graph  *graph.Graph
	Types  *types.Context
	TypeSt typeprop.Stats
	DFG    dfg.PassStats
	Bag    *diag.Bag
	Timing observ.Report
	Err    error
}

// Result collects the unit results in input order.
type Result struct {
	Units   []UnitResult
	Elapsed time.Duration
}

// Timings sums the stage timings of every unit.
func (r Result) Timings() observ.Report {
	reports := make([]observ.Report, 0, len(r.Units))
	for _, u := range r.Units {
		reports = append(reports, u.Timing)
	}
	return observ.Merge(reports...)
}

// Failed counts units that stopped with an error.
func (r Result) Failed() int {
	n := 0
	for _, u := range r.Units {
		if u.Err != nil {
			n++
		}
	}
	return n
}

// DFG sums the refiner statistics of every unit.
func (r Result) DFG() dfg.PassStats {
	var st dfg.PassStats
	for _, u := range r.Units {
		st.Functions += u.DFG.Functions
		st.Removed += u.DFG.Removed
		st.Added += u.DFG.Added
		st.Restored += u.DFG.Restored
		st.Resumed += u.DFG.Resumed
	}
	return st
}

// Run analyses every graph file in paths. Units are independent: each gets
// its own graph, type context and diagnostics bag. A unit that fails is
// reported in its UnitResult; Run itself only fails when ctx is cancelled.
func Run(ctx context.Context, paths []string, opts Options) (Result, error) {
	start := time.Now()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "cpg:run", trace.ParentSpan(ctx))
	span.WithExtra("units", fmt.Sprint(len(paths)))
	ctx = trace.WithSpan(ctx, span)

	res := Result{Units: make([]UnitResult, len(paths))}
	if len(paths) == 0 {
		span.End("no units")
		return res, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// slots are per index, no lock needed
			res.Units[i] = runUnit(gctx, path, opts)
			return nil
		})
	}
	err := g.Wait()
	res.Elapsed = time.Since(start)
	span.End(fmt.Sprintf("failed=%d", res.Failed()))
	if err != nil {
		return res, fmt.Errorf("analysis cancelled: %w", err)
	}
	return res, nil
}

func runUnit(ctx context.Context, path string, opts Options) (u UnitResult) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, path, trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	bag := diag.NewBag(cmp.Or(opts.MaxDiagnostics, DefaultMaxDiagnostics))
	// typedef and join point warnings repeat across nodes of one graph
	reporter := diag.NewDedupReporter(&diag.BagReporter{Bag: bag})
	u = UnitResult{Path: path, Bag: bag}
	timer := observ.NewTimer()
	defer func() {
		u.Timing = timer.Report()
		bag.Sort()
		span.End(u.DFG.String())
	}()

	stage := func(s Stage, run func() (string, error)) bool {
		emit(opts.Progress, Event{File: path, Stage: s, Status: StatusWorking})
		idx := timer.Begin(string(s))
		note, err := run()
		elapsed := timer.End(idx, note)
		if err != nil {
			u.Err = err
			emit(opts.Progress, Event{File: path, Stage: s, Status: StatusError, Err: err, Elapsed: elapsed})
			return false
		}
		emit(opts.Progress, Event{File: path, Stage: s, Status: StatusDone, Elapsed: elapsed})
		return true
	}

	ok := stage(StageLoad, func() (string, error) {
		g, err := graph.LoadFile(path)
		if err != nil {
			diag.ReportError(reporter, loadCode(err), diag.Location{File: path}, err.Error()).Emit()
			return "", err
		}
		u.Graph = g
		return fmt.Sprintf("%d nodes", g.Len()), nil
	})
	if !ok {
		return u
	}

	u.Types = types.NewContext(types.WithReporter(reporter), types.WithTracer(trace.FromContext(ctx)))
	u.Types.SetEnabled(opts.Types)
	stage(StageTypes, func() (string, error) {
		u.TypeSt = typeprop.Pass(ctx, u.Types, u.Graph)
		return u.TypeSt.String(), nil
	})
	stage(StageDFG, func() (string, error) {
		u.DFG = dfg.Pass(ctx, u.Graph, dfg.Options{Reporter: reporter, Fallback: opts.Fallback})
		return u.DFG.String(), nil
	})

	if opts.OutputDir == "" && opts.DOTDir == "" {
		emit(opts.Progress, Event{File: path, Stage: StageStore, Status: StatusSkipped})
		return u
	}
	stage(StageStore, func() (string, error) {
		written, err := store(u, opts)
		if err != nil {
			diag.ReportError(reporter, diag.IOStoreFailed, diag.Location{File: path}, err.Error()).Emit()
			return "", err
		}
		u.Output = written
		return written, nil
	})
	return u
}

// store writes the refined graph and its DOT export and returns the path
// of the graph file, or of the DOT file when no graph is written.
func store(u UnitResult, opts Options) (string, error) {
	base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
	var written string
	if opts.OutputDir != "" {
		written = filepath.Join(opts.OutputDir, base+".cpg")
		if err := graph.SaveFile(written, u.Graph, u.Types.Registry()); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", written, err)
		}
	}
	if opts.DOTDir != "" {
		dot := filepath.Join(opts.DOTDir, base+".dot")
		if err := writeDOT(dot, u.Graph); err != nil {
			return "", err
		}
		if written == "" {
			written = dot
		}
	}
	return written, nil
}

func writeDOT(path string, g *graph.Graph) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := graph.WriteDOT(f, g, graph.DOTOptions{EOG: true, DFG: true}); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return nil
}

func loadCode(err error) diag.Code {
	switch {
	case errors.Is(err, graph.ErrSchema):
		return diag.IOBadVersion
	case errors.Is(err, graph.ErrFingerprint):
		return diag.IOFingerprint
	default:
		return diag.IOLoadFailed
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
