package graph

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	graphlib "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// DOTOptions selects which edges WriteDOT draws.
type DOTOptions struct {
	EOG bool
	DFG bool
	// Function restricts output to nodes EOG-reachable from it.
	Function *Node
}

// WriteDOT renders g in Graphviz format. EOG edges are solid, DFG edges
// dashed; a pair connected by both is drawn once in purple.
func WriteDOT(w io.Writer, g *Graph, opts DOTOptions) error {
	nodes := g.Nodes()
	if opts.Function != nil {
		nodes = reachable(opts.Function)
	}
	included := make(map[NodeID]bool, len(nodes))
	dg := graphlib.New(func(id NodeID) NodeID { return id }, graphlib.Directed())
	for _, n := range nodes {
		included[n.ID] = true
		err := dg.AddVertex(n.ID,
			graphlib.VertexAttribute("label", dotEscape(n.String())),
			graphlib.VertexAttribute("shape", vertexShape(n.Kind)),
		)
		if err != nil {
			return fmt.Errorf("vertex %d: %w", n.ID, err)
		}
	}

	for _, n := range nodes {
		if opts.EOG {
			for i, to := range n.nextEOG {
				if !included[to.ID] {
					continue
				}
				label := ""
				if len(n.nextEOG) > 1 {
					label = strconv.Itoa(i)
				}
				err := dg.AddEdge(n.ID, to.ID,
					graphlib.EdgeAttribute("label", label),
					graphlib.EdgeAttribute("color", "black"),
				)
				if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
					return fmt.Errorf("eog %d->%d: %w", n.ID, to.ID, err)
				}
			}
		}
		if opts.DFG {
			for _, to := range n.NextDFG() {
				if !included[to.ID] {
					continue
				}
				err := dg.AddEdge(n.ID, to.ID,
					graphlib.EdgeAttribute("style", "dashed"),
					graphlib.EdgeAttribute("color", "blue"),
				)
				if errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
					err = dg.UpdateEdge(n.ID, to.ID, graphlib.EdgeAttribute("color", "purple"))
				}
				if err != nil {
					return fmt.Errorf("dfg %d->%d: %w", n.ID, to.ID, err)
				}
			}
		}
	}
	return draw.DOT(dg, w)
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotEscape(s string) string { return dotEscaper.Replace(s) }

func vertexShape(k Kind) string {
	switch k {
	case KindFunction:
		return "doubleoctagon"
	case KindVariable, KindParam:
		return "box"
	case KindIf, KindSwitch, KindConditional, KindWhile, KindFor:
		return "diamond"
	default:
		return "ellipse"
	}
}

// reachable collects nodes EOG-reachable from start, start included, in
// ID order.
func reachable(start *Node) []*Node {
	seen := map[*Node]bool{start: true}
	out := []*Node{start}
	for i := 0; i < len(out); i++ {
		for _, next := range out[i].nextEOG {
			if !seen[next] {
				seen[next] = true
				out = append(out, next)
			}
		}
	}
	SortNodes(out)
	return out
}
