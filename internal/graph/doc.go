// Package graph is the in-memory code property graph the passes work on:
// nodes with ordered EOG edges and DFG edge sets, record and template
// declarations, lexical scopes with their typedefs. Graphs are persisted
// as fingerprinted msgpack documents and can be exported to DOT.
package graph
