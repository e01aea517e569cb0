package dfg

import (
	"slices"

	"cpg/internal/graph"
)

// distances maps every node EOG-reachable from start to its BFS distance.
// start itself is included at distance 0.
func (r *refiner) distances(start *graph.Node) map[*graph.Node]int {
	if d, ok := r.reach[start]; ok {
		return d
	}
	d := map[*graph.Node]int{start: 0}
	queue := []*graph.Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range n.NextEOG() {
			if _, seen := d[next]; !seen {
				d[next] = d[n] + 1
				queue = append(queue, next)
			}
		}
	}
	r.reach[start] = d
	return d
}

// joinPoint returns the earliest node reachable from every successor of
// split, or nil when the branches never meet.
func (r *refiner) joinPoint(split *graph.Node) *graph.Node {
	branches := split.NextEOG()
	if len(branches) == 0 {
		return nil
	}
	reach := make([]map[*graph.Node]int, len(branches))
	for i, b := range branches {
		reach[i] = r.distances(b)
	}

	type candidate struct {
		node *graph.Node
		dist int // longest of the per-branch distances
	}
	var cands []candidate
	for n, d := range reach[0] {
		if n == split {
			continue
		}
		common := true
		for _, other := range reach[1:] {
			od, ok := other[n]
			if !ok {
				common = false
				break
			}
			d = max(d, od)
		}
		if common {
			cands = append(cands, candidate{node: n, dist: d})
		}
	}
	if len(cands) == 0 {
		return nil
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}
		return int(a.node.ID) - int(b.node.ID)
	})

	// drop every candidate reachable from an earlier one
	alive := make(map[*graph.Node]bool, len(cands))
	for _, c := range cands {
		alive[c.node] = true
	}
	remaining := len(cands)
	for _, c := range cands {
		if remaining == 1 {
			break
		}
		if !alive[c.node] {
			continue
		}
		for n := range r.distances(c.node) {
			if n != c.node && alive[n] {
				alive[n] = false
				remaining--
			}
		}
	}
	for _, c := range cands {
		if alive[c.node] {
			return c.node
		}
	}
	return nil
}
