package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cpg/internal/diag"
	"cpg/internal/graph"
)

// writeIfElse stores int x; if (c) x = 1; else x = 2; use(x); and returns
// the IDs of the literals and the final read.
func writeIfElse(t *testing.T, dir string) (path string, one, two, use graph.NodeID) {
	t.Helper()
	b := graph.NewBuilder("if_else")
	fn := b.Function("main")
	x := b.Variable("x", "int", nil)
	cond := b.Node(graph.KindIf, "if")
	w1, l1 := b.Write(x), b.Literal("1", "int")
	a1 := b.Assign(w1, l1)
	w2, l2 := b.Write(x), b.Literal("2", "int")
	a2 := b.Assign(w2, l2)
	r := b.Read(x)
	call := b.Call("use", r)
	b.Chain(fn, x, cond, w1, l1, a1, r, call)
	b.Chain(cond, w2, l2, a2, r)

	path = filepath.Join(dir, "if_else.cpg")
	if err := graph.SaveFile(path, b.Graph(), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	return path, l1.ID, l2.ID, r.ID
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) count(file string, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.File == file && e.Status == status {
			n++
		}
	}
	return n
}

func TestRunRefinesAndStores(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	path, one, two, use := writeIfElse(t, in)
	missing := filepath.Join(in, "missing.cpg")

	rec := &recorder{}
	res, err := Run(context.Background(), []string{path, missing}, Options{
		Jobs:      2,
		Types:     true,
		OutputDir: out,
		DOTDir:    out,
		Progress:  rec,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Units) != 2 || res.Failed() != 1 {
		t.Fatalf("unexpected result: %d units, %d failed", len(res.Units), res.Failed())
	}

	ok := res.Units[0]
	if ok.Err != nil {
		t.Fatalf("unit failed: %v", ok.Err)
	}
	if st := res.DFG(); st.Functions != 1 || st.Removed != 1 || st.Added != 2 {
		t.Fatalf("dfg stats %s", st)
	}
	if ok.TypeSt.Typed == 0 {
		t.Fatalf("type pass did not run: %s", ok.TypeSt)
	}
	if rec.count(path, StatusDone) != len(Stages) {
		t.Fatalf("expected every stage to finish for %s", path)
	}
	if len(res.Timings().Phases) != len(Stages) {
		t.Fatalf("timings %+v", res.Timings())
	}

	g, err := graph.LoadFile(ok.Output)
	if err != nil {
		t.Fatalf("LoadFile(%s): %v", ok.Output, err)
	}
	prev := g.Node(use).PrevDFG()
	if len(prev) != 2 || prev[0].ID != one || prev[1].ID != two {
		t.Fatalf("stored read has producers %v", prev)
	}
	if g.Node(use).TypeName != "int" {
		t.Fatalf("stored type %q", g.Node(use).TypeName)
	}
	dot, err := os.ReadFile(filepath.Join(out, "if_else.dot"))
	if err != nil || !strings.Contains(string(dot), "digraph") {
		t.Fatalf("dot export missing: %v", err)
	}

	bad := res.Units[1]
	if bad.Err == nil || bad.Graph != nil {
		t.Fatalf("missing file must fail to load")
	}
	if items := bad.Bag.Items(); len(items) != 1 || items[0].Code != diag.IOLoadFailed {
		t.Fatalf("diagnostics %v", items)
	}
	if rec.count(missing, StatusError) != 1 {
		t.Fatalf("expected one error event for %s", missing)
	}
}

func TestRunWithoutOutputSkipsStore(t *testing.T) {
	path, _, _, _ := writeIfElse(t, t.TempDir())
	rec := &recorder{}
	res, err := Run(context.Background(), []string{path}, Options{Progress: rec})
	if err != nil || res.Failed() != 0 {
		t.Fatalf("Run: %v, failed=%d", err, res.Failed())
	}
	if rec.count(path, StatusSkipped) != 1 || res.Units[0].Output != "" {
		t.Fatalf("store stage should be skipped")
	}
}

func TestRunCancelled(t *testing.T) {
	path, _, _, _ := writeIfElse(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, []string{path}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
