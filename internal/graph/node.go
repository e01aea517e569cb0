package graph

import (
	"slices"

	"github.com/hashicorp/go-set/v3"

	"cpg/internal/diag"
	"cpg/internal/types"
)

// NodeID identifies a node inside one Graph. Zero is reserved.
type NodeID uint32

// NoNodeID marks an absent node.
const NoNodeID NodeID = 0

// Node is one CPG vertex. EOG successors keep insertion order because the
// first successor of a branch is its "then" path; DFG edges are sets.
type Node struct {
	ID     NodeID
	Kind   Kind
	Name   string
	Code   string
	Loc    diag.Location
	Access Access
	Scope  *Scope

	// TypeName is the type text as reported by the front end. Type is the
	// interned type, valid only for the types.Context that resolved it.
	TypeName string
	Type     types.TypeID
	SubTypes []types.TypeID

	// Decl is the declaration a reference refers to.
	Decl *Node
	// LHS and RHS are the operands of an assignment.
	LHS []*Node
	RHS []*Node

	nextEOG []*Node
	prevEOG []*Node
	nextDFG *set.Set[*Node]
	prevDFG *set.Set[*Node]

	listeners []*Node
}

func newNode(id NodeID, kind Kind, name string) *Node {
	return &Node{
		ID:      id,
		Kind:    kind,
		Name:    name,
		Loc:     diag.Location{Node: uint32(id)},
		nextDFG: set.New[*Node](2),
		prevDFG: set.New[*Node](2),
	}
}

// NextEOG returns evaluation-order successors in insertion order.
func (n *Node) NextEOG() []*Node { return n.nextEOG }

// PrevEOG returns evaluation-order predecessors in insertion order.
func (n *Node) PrevEOG() []*Node { return n.prevEOG }

// NextDFG returns the nodes n flows into, ordered by ID.
func (n *Node) NextDFG() []*Node { return sortedNodes(n.nextDFG) }

// PrevDFG returns the producers flowing into n, ordered by ID.
func (n *Node) PrevDFG() []*Node { return sortedNodes(n.prevDFG) }

// HasPrevDFG reports whether from flows into n.
func (n *Node) HasPrevDFG(from *Node) bool { return n.prevDFG.Contains(from) }

// HasNextDFG reports whether n flows into to.
func (n *Node) HasNextDFG(to *Node) bool { return n.nextDFG.Contains(to) }

// AddTypeListener registers l to be revisited when the type of n changes.
func (n *Node) AddTypeListener(l *Node) {
	if l == nil || l == n || slices.Contains(n.listeners, l) {
		return
	}
	n.listeners = append(n.listeners, l)
}

// TypeListeners returns the registered listeners in registration order.
func (n *Node) TypeListeners() []*Node { return n.listeners }

// IsWrite reports whether n is a reference writing its variable.
func (n *Node) IsWrite() bool {
	return n.Kind == KindRef && (n.Access == AccessWrite || n.Access == AccessReadWrite)
}

// IsRead reports whether n is a reference reading its variable.
func (n *Node) IsRead() bool {
	return n.Kind == KindRef && (n.Access == AccessRead || n.Access == AccessReadWrite)
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return n.Kind.String() + " " + n.Name
	}
	if n.Code != "" {
		return n.Kind.String() + " " + n.Code
	}
	return n.Kind.String()
}

// SortNodes orders nodes by ID in place.
func SortNodes(nodes []*Node) {
	slices.SortFunc(nodes, func(a, b *Node) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

func sortedNodes(s *set.Set[*Node]) []*Node {
	out := s.Slice()
	SortNodes(out)
	return out
}
