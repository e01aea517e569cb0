// Package trace records what the analysis pipeline is doing.
//
// Enable it from the command line:
//
//	cpg run --trace=- --trace-level=detail prog.cpg
//
// Sinks: StreamTracer writes immediately, RingTracer keeps the last N
// events for post-mortem dumps, MultiTracer fans out, Nop does nothing.
//
// Levels gate scopes: phase shows driver and unit spans, detail adds one
// span per pass, debug adds node events such as branch splits and join
// points from the data-flow refiner.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "dfg", trace.ParentSpan(ctx))
//	defer span.End("")
package trace
