package graph

import "cpg/internal/types"

// Builder assembles graphs the way a front end would: declarations and
// expressions get their flow-insensitive DFG edges on creation, EOG edges
// are added explicitly with Chain.
type Builder struct {
	g     *Graph
	scope *Scope
}

// NewBuilder starts a graph with one top-level scope.
func NewBuilder(name string) *Builder {
	g := New(name)
	return &Builder{g: g, scope: g.AddScope(nil, nil)}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *Graph { return b.g }

// Scope returns the current scope.
func (b *Builder) Scope() *Scope { return b.scope }

// Enter opens a scope nested in the current one.
func (b *Builder) Enter(owner types.Declarer) *Scope {
	b.scope = b.g.AddScope(b.scope, owner)
	return b.scope
}

// Leave returns to the enclosing scope.
func (b *Builder) Leave() {
	if b.scope.Parent != nil {
		b.scope = b.scope.Parent
	}
}

// Typedef records raw typedef source in the current scope.
func (b *Builder) Typedef(raw string) {
	b.scope.Typedef = append(b.scope.Typedef, raw)
}

// Node adds a bare node in the current scope.
func (b *Builder) Node(kind Kind, name string) *Node {
	n := b.g.AddNode(kind, name)
	n.Scope = b.scope
	return n
}

func (b *Builder) Function(name string) *Node {
	return b.Node(KindFunction, name)
}

// Variable declares a local variable. A non-nil init flows into it.
func (b *Builder) Variable(name, typeName string, init *Node) *Node {
	n := b.Node(KindVariable, name)
	n.TypeName = typeName
	b.g.AddDFG(init, n)
	return n
}

func (b *Builder) Param(name, typeName string) *Node {
	n := b.Node(KindParam, name)
	n.TypeName = typeName
	return n
}

func (b *Builder) Literal(code, typeName string) *Node {
	n := b.Node(KindLiteral, "")
	n.Code = code
	n.TypeName = typeName
	return n
}

// Ref adds a reference to decl with flow-insensitive edges matching its
// access: reads flow from the declaration, writes flow into it.
func (b *Builder) Ref(decl *Node, access Access) *Node {
	n := b.Node(KindRef, decl.Name)
	n.Decl = decl
	n.Access = access
	n.TypeName = decl.TypeName
	if n.IsRead() {
		b.g.AddDFG(decl, n)
	}
	if n.IsWrite() {
		b.g.AddDFG(n, decl)
	}
	return n
}

func (b *Builder) Read(decl *Node) *Node { return b.Ref(decl, AccessRead) }
func (b *Builder) Write(decl *Node) *Node { return b.Ref(decl, AccessWrite) }

// Assign adds lhs = rhs. The value of rhs flows into the written reference
// and into the assignment expression.
func (b *Builder) Assign(lhs, rhs *Node) *Node {
	n := b.Node(KindAssign, "=")
	n.LHS = []*Node{lhs}
	n.RHS = []*Node{rhs}
	b.g.AddDFG(rhs, lhs)
	b.g.AddDFG(rhs, n)
	return n
}

// Binary adds an operator node consuming both operands.
func (b *Builder) Binary(op string, lhs, rhs *Node) *Node {
	n := b.Node(KindBinary, op)
	b.g.AddDFG(lhs, n)
	b.g.AddDFG(rhs, n)
	return n
}

// Call adds a call consuming args.
func (b *Builder) Call(name string, args ...*Node) *Node {
	n := b.Node(KindCall, name)
	for _, a := range args {
		b.g.AddDFG(a, n)
	}
	return n
}

// Chain links nodes in evaluation order.
func (b *Builder) Chain(nodes ...*Node) {
	for i := 1; i < len(nodes); i++ {
		b.g.AddEOG(nodes[i-1], nodes[i])
	}
}
