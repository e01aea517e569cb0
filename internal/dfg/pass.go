package dfg

import (
	"context"
	"fmt"

	"cpg/internal/graph"
	"cpg/internal/trace"
)

// PassStats sums the results of refining every function of a graph.
type PassStats struct {
	Functions int
	Removed   int
	Added     int
	Restored  int
	Resumed   int
}

func (s PassStats) String() string {
	return fmt.Sprintf("functions=%d added=%d removed=%d restored=%d resumed=%d",
		s.Functions, s.Added, s.Removed, s.Restored, s.Resumed)
}

// Pass refines every function of g and applies the removals.
func Pass(ctx context.Context, g *graph.Graph, opts Options) PassStats {
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	parent := trace.ParentSpan(ctx)

	var st PassStats
	for _, fn := range g.Functions() {
		span := trace.Begin(opts.Tracer, trace.ScopePass, "dfg:"+fn.Name, parent)
		res := Refine(g, fn, opts)
		removed := res.Removals.Apply(g)

		st.Functions++
		st.Removed += removed
		st.Added += res.Added
		st.Restored += res.Restored
		st.Resumed += res.Resumed
		span.WithExtra("removed", fmt.Sprint(removed)).End("")
	}
	return st
}
