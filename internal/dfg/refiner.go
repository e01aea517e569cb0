package dfg

import (
	"fmt"
	"strings"

	"cpg/internal/diag"
	"cpg/internal/graph"
	"cpg/internal/trace"
)

// JoinFallback decides what happens at a branch whose paths never meet.
type JoinFallback uint8

const (
	// FallbackFunctionEnd explores every branch to the end of the function
	// and merges the results there.
	FallbackFunctionEnd JoinFallback = iota
	// FallbackStop ends the walk at the branch.
	FallbackStop
)

func (f JoinFallback) String() string {
	if f == FallbackStop {
		return "stop"
	}
	return "function-end"
}

// ParseJoinFallback accepts "function-end" and "stop".
func ParseJoinFallback(s string) (JoinFallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "function-end":
		return FallbackFunctionEnd, nil
	case "stop":
		return FallbackStop, nil
	default:
		return FallbackFunctionEnd, fmt.Errorf("unknown join fallback %q", s)
	}
}

// Options configures a refinement run.
type Options struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
	Fallback JoinFallback
}

// Result is the outcome of Refine. Removals have not been applied yet.
type Result struct {
	Removals Removals
	Reaching Reaching
	Added    int // precise edges added
	Restored int // single definitions re-attached to their declaration
	Resumed  int // deferred successors walked after a path ended
}

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameBranch
	frameAssign
)

// pending is a node whose later successors still need a walk, with the
// reaching definitions it had when the walk left it.
type pending struct {
	node     *graph.Node
	snapshot Reaching
	from     int
}

type frame struct {
	kind    frameKind
	cur     *graph.Node
	end     *graph.Node
	st      *state
	pending []pending
	parent  *frame

	write *graph.Node // frameAssign: reference whose write waits for end

	// bookkeeping while branch children run
	join        *graph.Node
	outstanding int
	merged      *state
}

type refiner struct {
	g        *graph.Graph
	opts     Options
	removals Removals
	reach    map[*graph.Node]map[*graph.Node]int
	res      Result
}

// Refine replays the EOG from start and replaces flow-insensitive edges
// from variable declarations with edges from the definitions reaching each
// read. When start is a function, variables left with a single reaching
// definition get that definition attached to their declaration.
func Refine(g *graph.Graph, start *graph.Node, opts Options) Result {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	r := &refiner{
		g:        g,
		opts:     opts,
		removals: make(Removals),
		reach:    make(map[*graph.Node]map[*graph.Node]int),
	}
	if start == nil {
		r.res.Removals, r.res.Reaching = r.removals, make(Reaching)
		return r.res
	}

	root := &frame{kind: frameRoot, cur: start, st: newState()}
	r.run(root)

	r.res.Removals = r.removals
	r.res.Reaching = root.st.reaching
	if start.Kind == graph.KindFunction {
		r.restore(root.st.reaching)
	}
	return r.res
}

func (r *refiner) run(root *frame) {
	stack := []*frame{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		n := r.advance(f)
		if n == nil {
			stack = stack[:len(stack)-1]
			r.finish(f)
			continue
		}
		children := r.visit(f, n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// advance returns the next node f has to visit, resuming deferred
// successors once the current path is exhausted.
func (r *refiner) advance(f *frame) *graph.Node {
	for {
		if f.cur != nil && f.cur != f.end && !f.st.visited.Contains(f.cur) {
			return f.cur
		}
		f.cur = nil
		if len(f.pending) == 0 {
			return nil
		}
		p := f.pending[len(f.pending)-1]
		f.pending = f.pending[:len(f.pending)-1]
		succ := p.node.NextEOG()
		for i := p.from; i < len(succ); i++ {
			if f.st.visited.Contains(succ[i]) {
				continue
			}
			if i+1 < len(succ) {
				f.pending = append(f.pending, pending{node: p.node, snapshot: p.snapshot, from: i + 1})
			}
			f.st.reaching.union(p.snapshot)
			f.cur = succ[i]
			r.res.Resumed++
			trace.Point(r.opts.Tracer, trace.ScopeNode, "dfg:resume", p.node.String(), 0)
			break
		}
	}
}

func (r *refiner) visit(f *frame, n *graph.Node) []*frame {
	f.st.visited.Insert(n)
	switch {
	case n.Kind == graph.KindVariable:
		r.track(f.st, n)
	case n.Kind.IsExclusiveSplit() && len(n.NextEOG()) > 1:
		return r.split(f, n)
	case n.Kind == graph.KindRef:
		if n.IsRead() {
			r.read(f.st, n)
		}
		switch n.Access {
		case graph.AccessReadWrite:
			r.write(f.st, n, []*graph.Node{n})
		case graph.AccessWrite:
			if child := r.delayWrite(f, n); child != nil {
				return []*frame{child}
			}
		}
	}
	r.step(f, n)
	return nil
}

// step moves f to the first unvisited successor of n and defers the rest.
func (r *refiner) step(f *frame, n *graph.Node) {
	f.cur = nil
	succ := n.NextEOG()
	for i, s := range succ {
		if f.st.visited.Contains(s) {
			continue
		}
		f.cur = s
		if i+1 < len(succ) {
			f.pending = append(f.pending, pending{node: n, snapshot: f.st.reaching.Clone(), from: i + 1})
		}
		return
	}
}

func (r *refiner) finish(f *frame) {
	switch f.kind {
	case frameAssign:
		p := f.parent
		r.write(p.st, f.write, r.producers(f.write))
		p.cur = f.end
	case frameBranch:
		p := f.parent
		if p.merged == nil {
			p.merged = f.st
		} else {
			p.merged.merge(f.st)
		}
		p.outstanding--
		if p.outstanding == 0 {
			// assignment frames share their state with the parent, so the
			// merged result is copied in place
			*p.st = *p.merged
			p.merged = nil
			p.cur = p.join
		}
	}
}

// split runs one child per successor of n, bounded by the join point.
func (r *refiner) split(f *frame, n *graph.Node) []*frame {
	join := r.joinPoint(n)
	if join == nil {
		r.warn(diag.DfgNoJoinPoint, n, fmt.Sprintf("branches of %s never rejoin, fallback %s", n, r.opts.Fallback))
		if r.opts.Fallback == FallbackStop {
			f.cur = nil
			return nil
		}
	}
	succ := n.NextEOG()
	children := make([]*frame, 0, len(succ))
	for _, s := range succ {
		children = append(children, &frame{
			kind:   frameBranch,
			cur:    s,
			end:    join,
			st:     f.st.clone(),
			parent: f,
		})
	}
	f.join = join
	f.outstanding = len(children)
	f.merged = nil
	f.cur = nil
	return children
}

// delayWrite walks the rest of the assignment n belongs to before n's
// write takes effect, so a = a + 1 reads the old definition of a.
func (r *refiner) delayWrite(f *frame, n *graph.Node) *frame {
	assign := assignmentOf(n)
	next := n.NextEOG()
	if assign == nil || len(next) == 0 || next[0] == assign || f.st.visited.Contains(next[0]) {
		if assign == nil {
			r.warn(diag.DfgNoAssign, n, fmt.Sprintf("no assignment found for write of %s", n.Name))
		}
		r.write(f.st, n, r.producers(n))
		return nil
	}
	f.cur = nil
	return &frame{
		kind:   frameAssign,
		cur:    next[0],
		end:    assign,
		st:     f.st,
		parent: f,
		write:  n,
	}
}

// assignmentOf finds the assignment with ref on its left-hand side among
// the nodes EOG-reachable from ref.
func assignmentOf(ref *graph.Node) *graph.Node {
	seen := map[*graph.Node]bool{ref: true}
	queue := append([]*graph.Node(nil), ref.NextEOG()...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		if n.Kind == graph.KindAssign {
			for _, lhs := range n.LHS {
				if lhs == ref {
					return n
				}
			}
		}
		queue = append(queue, n.NextEOG()...)
	}
	return nil
}

// track starts tracking decl, seeded with its producers seen on this path.
func (r *refiner) track(st *state, decl *graph.Node) {
	var defs []*graph.Node
	for _, p := range decl.PrevDFG() {
		if st.visited.Contains(p) {
			defs = append(defs, p)
		}
	}
	st.reaching.set(decl, defs)
}

// read replaces the edges from tracked declarations into n by edges from
// their reaching definitions.
func (r *refiner) read(st *state, n *graph.Node) {
	for _, prev := range n.PrevDFG() {
		if prev.Kind != graph.KindVariable || !st.reaching.Tracks(prev) {
			continue
		}
		for _, def := range st.reaching.Defs(prev) {
			if def == n || n.HasPrevDFG(def) {
				continue
			}
			r.g.AddDFG(def, n)
			r.res.Added++
		}
		r.removals.add(n, prev)
	}
}

// write makes defs the only reaching definitions of every tracked
// declaration n flows into.
func (r *refiner) write(st *state, n *graph.Node, defs []*graph.Node) {
	for _, next := range n.NextDFG() {
		if next.Kind == graph.KindVariable && st.reaching.Tracks(next) {
			st.reaching.set(next, defs)
		}
	}
}

// producers lists what flows into n, minus edges already superseded.
func (r *refiner) producers(n *graph.Node) []*graph.Node {
	var out []*graph.Node
	for _, p := range n.PrevDFG() {
		if !r.removals.Has(n, p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *refiner) restore(reaching Reaching) {
	for _, decl := range reaching.Vars() {
		defs := reaching.Defs(decl)
		if len(defs) != 1 || decl.HasPrevDFG(defs[0]) {
			continue
		}
		r.g.AddDFG(defs[0], decl)
		r.res.Restored++
	}
}

func (r *refiner) warn(code diag.Code, n *graph.Node, msg string) {
	diag.ReportWarning(r.opts.Reporter, code, n.Loc, msg).Emit()
	trace.Point(r.opts.Tracer, trace.ScopeNode, "dfg:"+code.ID(), msg, 0)
}
