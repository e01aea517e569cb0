// Package types interns CPG types and answers subtype questions over them.
//
// A Context carries every piece of mutable state of one analysis run: the
// Registry, record declarations, type parameters, typedefs and the
// assignability oracle used for library types. CommonType computes the
// lowest common ancestor of a set of types through name-keyed supertype
// walks, keeping the shared pointer and reference wrapping.
package types
