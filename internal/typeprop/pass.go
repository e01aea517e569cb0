package typeprop

import (
	"context"
	"fmt"

	"cpg/internal/graph"
	"cpg/internal/trace"
	"cpg/internal/types"
)

// Stats summarises one type pass.
type Stats struct {
	Records  int
	Params   int
	Typedefs int
	Typed    int // nodes that received a type from their type text
	Changed  int // node updates, listeners included
	Unknown  int // type texts that did not parse
}

func (s Stats) String() string {
	return fmt.Sprintf("records=%d params=%d typedefs=%d typed=%d changed=%d unknown=%d",
		s.Records, s.Params, s.Typedefs, s.Typed, s.Changed, s.Unknown)
}

// Pass makes the declarations of g known to tc, interns the typedefs of
// every scope, then types every node carrying type text and propagates
// the result along type listeners. Type state left on g by an earlier
// context is discarded first.
func Pass(ctx context.Context, tc *types.Context, g *graph.Graph) Stats {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "types", trace.ParentSpan(ctx))
	var st Stats
	defer func() { span.End(st.String()) }()

	for _, rec := range g.Records() {
		rec.ResetTypeParameters()
		tc.AddRecord(rec)
		st.Records++
	}
	for _, tpl := range g.Templates() {
		tpl.ResetTypeParameters()
		for _, name := range tpl.ParamNames {
			tc.GetOrCreateTypeParameter(tpl, name)
			st.Params++
		}
	}
	for _, s := range g.Scopes() {
		s.ResetTypedefs()
	}
	// outer scopes first so nested typedefs can build on them
	for _, s := range g.Scopes() {
		for _, raw := range s.Typedef {
			tc.HandleTypedef(raw, s)
		}
		st.Typedefs += len(s.Typedefs())
	}

	prop := New(tc, tracer)
	for _, n := range g.Nodes() {
		n.Type, n.SubTypes = types.NoTypeID, nil
	}
	for _, n := range g.Nodes() {
		if n.TypeName == "" {
			continue
		}
		id := tc.ParseInScope(n.TypeName, lexical(n.Scope))
		if tc.Registry().Kind(id) == types.KindUnknown {
			st.Unknown++
			continue
		}
		prop.SetType(n, id)
		st.Typed++
	}
	st.Changed = prop.Changed()
	return st
}

// lexical converts a possibly nil scope without producing a typed nil.
func lexical(s *graph.Scope) types.LexicalScope {
	if s == nil {
		return nil
	}
	return s
}
