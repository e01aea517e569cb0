// Package diag defines the diagnostic model shared by the semantic passes.
//
// Passes never fail on malformed or partial graphs. Conditions worth telling
// the user about (missing lexical context for a typedef, a supertype cycle,
// branches that never rejoin) are emitted as warnings through a Reporter and
// collected into a Bag by the pipeline.
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form (TYP1001).
//   - Primary: the graph Location the finding refers to.
//   - Notes: optional secondary locations.
//
// Use ReportWarning(...).Emit() for one-off findings, or Reporter.Report
// directly. DedupReporter suppresses repeats across a run.
package diag
