// Package dfg refines flow-insensitive data-flow edges into
// path-sensitive ones.
//
// Refine replays the evaluation order of a function with an explicit frame
// stack. Exclusive branches (if, switch, conditional) run on private copies
// of the reaching definitions and are merged by union at their join point.
// Writes kill earlier definitions, reads get one edge per reaching
// definition, and the superseded edges from declarations are collected in
// Removals for the caller to apply. Loop back edges are not iterated to a
// fixpoint: successors left behind by a path are resumed once with the
// definitions they had when the path left them.
package dfg
