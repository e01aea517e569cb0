package graph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"cpg/internal/types"
)

// StoreSchema is bumped whenever the layout of storedGraph changes.
const StoreSchema uint16 = 1

var (
	ErrSchema      = errors.New("unsupported graph file schema")
	ErrFingerprint = errors.New("graph file fingerprint mismatch")
)

// TypeNamer renders interned types back to text; *types.Registry is one.
type TypeNamer interface {
	Name(id types.TypeID) string
}

type envelope struct {
	Schema      uint16
	Fingerprint uint64
	Body        []byte
}

type storedGraph struct {
	Name      string
	Scopes    []storedScope
	Records   []storedDecl
	Templates []storedDecl
	Nodes     []storedNode
}

const (
	ownerNone uint8 = iota
	ownerRecord
	ownerTemplate
)

type storedScope struct {
	Parent    uint32
	OwnerKind uint8
	Owner     uint32 // 1-based index into Records or Templates
	Typedefs  []string
}

type storedDecl struct {
	Name  string
	Names []string // supertypes for records, parameter names for templates
}

type storedNode struct {
	Kind      uint8
	Name      string
	Code      string
	File      string
	Line      uint32
	Column    uint32
	Access    uint8
	Scope     uint32
	Type      string
	Decl      uint32
	LHS       []uint32
	RHS       []uint32
	EOG       []uint32
	DFG       []uint32
	Listeners []uint32
}

// Encode writes g as a fingerprinted msgpack document. Interned types are
// rendered through names when it is non-nil.
func Encode(w io.Writer, g *Graph, names TypeNamer) error {
	body, err := encodeBody(g, names)
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(&envelope{
		Schema:      StoreSchema,
		Fingerprint: xxh3.Hash(body),
		Body:        body,
	})
}

// Fingerprint hashes the canonical encoding of g. Equal graphs built in the
// same order hash equally.
func Fingerprint(g *Graph, names TypeNamer) (uint64, error) {
	body, err := encodeBody(g, names)
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(body), nil
}

// Decode reads a graph written by Encode.
func Decode(r io.Reader) (*Graph, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Schema != StoreSchema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, env.Schema, StoreSchema)
	}
	if got := xxh3.Hash(env.Body); got != env.Fingerprint {
		return nil, fmt.Errorf("%w: got %016x, want %016x", ErrFingerprint, got, env.Fingerprint)
	}
	var sg storedGraph
	if err := msgpack.Unmarshal(env.Body, &sg); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return sg.build()
}

// SaveFile writes g to path atomically.
func SaveFile(path string, g *Graph, names TypeNamer) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".cpg-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// after a successful rename the temp file is already gone
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()
	if err := Encode(f, g, names); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", g.Name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile reads a graph file.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func encodeBody(g *Graph, names TypeNamer) ([]byte, error) {
	sg, err := flatten(g, names)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(sg); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return buf.Bytes(), nil
}

func flatten(g *Graph, names TypeNamer) (*storedGraph, error) {
	sg := &storedGraph{Name: g.Name}

	recordIdx := make(map[*Record]uint32, len(g.records))
	for i, r := range g.records {
		idx, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return nil, err
		}
		recordIdx[r] = idx
		sg.Records = append(sg.Records, storedDecl{Name: r.Name, Names: r.Supers})
	}
	templateIdx := make(map[*Template]uint32, len(g.templates))
	for i, t := range g.templates {
		idx, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return nil, err
		}
		templateIdx[t] = idx
		sg.Templates = append(sg.Templates, storedDecl{Name: t.Name, Names: t.ParamNames})
	}

	for _, s := range g.Scopes() {
		ss := storedScope{Parent: scopeRef(s.Parent), Typedefs: s.Typedef}
		switch o := s.Owner.(type) {
		case *Record:
			ss.OwnerKind, ss.Owner = ownerRecord, recordIdx[o]
		case *Template:
			ss.OwnerKind, ss.Owner = ownerTemplate, templateIdx[o]
		}
		sg.Scopes = append(sg.Scopes, ss)
	}

	for _, n := range g.Nodes() {
		typeName := n.TypeName
		if names != nil && n.Type != types.NoTypeID {
			typeName = names.Name(n.Type)
		}
		sg.Nodes = append(sg.Nodes, storedNode{
			Kind:      uint8(n.Kind),
			Name:      n.Name,
			Code:      n.Code,
			File:      n.Loc.File,
			Line:      n.Loc.Line,
			Column:    n.Loc.Column,
			Access:    uint8(n.Access),
			Scope:     scopeRef(n.Scope),
			Type:      typeName,
			Decl:      nodeRef(n.Decl),
			LHS:       nodeRefs(n.LHS),
			RHS:       nodeRefs(n.RHS),
			EOG:       nodeRefs(n.nextEOG),
			DFG:       nodeRefs(n.NextDFG()),
			Listeners: nodeRefs(n.listeners),
		})
	}
	return sg, nil
}

func (sg *storedGraph) build() (*Graph, error) {
	g := New(sg.Name)
	for _, r := range sg.Records {
		g.AddRecord(r.Name, r.Names...)
	}
	for _, t := range sg.Templates {
		g.AddTemplate(t.Name, t.Names...)
	}
	for i, ss := range sg.Scopes {
		var parent *Scope
		if ss.Parent != 0 {
			if int(ss.Parent) > i {
				return nil, fmt.Errorf("scope %d: parent %d is not declared before it", i+1, ss.Parent)
			}
			parent = g.Scope(ScopeID(ss.Parent))
		}
		var owner types.Declarer
		switch ss.OwnerKind {
		case ownerRecord:
			r, err := pick(g.records, ss.Owner)
			if err != nil {
				return nil, fmt.Errorf("scope %d: record: %w", i+1, err)
			}
			owner = r
		case ownerTemplate:
			t, err := pick(g.templates, ss.Owner)
			if err != nil {
				return nil, fmt.Errorf("scope %d: template: %w", i+1, err)
			}
			owner = t
		}
		s := g.AddScope(parent, owner)
		s.Typedef = ss.Typedefs
	}

	for _, sn := range sg.Nodes {
		n := g.AddNode(Kind(sn.Kind), sn.Name)
		n.Code = sn.Code
		n.Loc.File, n.Loc.Line, n.Loc.Column = sn.File, sn.Line, sn.Column
		n.Access = Access(sn.Access)
		n.TypeName = sn.Type
		if sn.Scope != 0 {
			if n.Scope = g.Scope(ScopeID(sn.Scope)); n.Scope == nil {
				return nil, fmt.Errorf("node %d: scope %d out of range", n.ID, sn.Scope)
			}
		}
	}
	for i, sn := range sg.Nodes {
		n := g.nodes[i+1]
		var err error
		if sn.Decl != 0 {
			if n.Decl, err = g.resolve(sn.Decl); err != nil {
				return nil, fmt.Errorf("node %d: decl: %w", n.ID, err)
			}
		}
		if n.LHS, err = g.resolveAll(sn.LHS); err != nil {
			return nil, fmt.Errorf("node %d: lhs: %w", n.ID, err)
		}
		if n.RHS, err = g.resolveAll(sn.RHS); err != nil {
			return nil, fmt.Errorf("node %d: rhs: %w", n.ID, err)
		}
		next, err := g.resolveAll(sn.EOG)
		if err != nil {
			return nil, fmt.Errorf("node %d: eog: %w", n.ID, err)
		}
		for _, to := range next {
			g.AddEOG(n, to)
		}
		flows, err := g.resolveAll(sn.DFG)
		if err != nil {
			return nil, fmt.Errorf("node %d: dfg: %w", n.ID, err)
		}
		for _, to := range flows {
			g.AddDFG(n, to)
		}
		listeners, err := g.resolveAll(sn.Listeners)
		if err != nil {
			return nil, fmt.Errorf("node %d: listeners: %w", n.ID, err)
		}
		for _, l := range listeners {
			n.AddTypeListener(l)
		}
	}
	return g, nil
}

func (g *Graph) resolve(ref uint32) (*Node, error) {
	n := g.Node(NodeID(ref))
	if n == nil {
		return nil, fmt.Errorf("node %d out of range", ref)
	}
	return n, nil
}

func (g *Graph) resolveAll(refs []uint32) ([]*Node, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]*Node, 0, len(refs))
	for _, ref := range refs {
		n, err := g.resolve(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func pick[T any](items []*T, ref uint32) (*T, error) {
	i, err := safecast.Conv[int](ref)
	if err != nil {
		return nil, err
	}
	if i < 1 || i > len(items) {
		return nil, fmt.Errorf("index %d out of range", ref)
	}
	return items[i-1], nil
}

func scopeRef(s *Scope) uint32 {
	if s == nil {
		return 0
	}
	return uint32(s.ID)
}

func nodeRef(n *Node) uint32 {
	if n == nil {
		return 0
	}
	return uint32(n.ID)
}

func nodeRefs(nodes []*Node) []uint32 {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]uint32, len(nodes))
	for i, n := range nodes {
		out[i] = nodeRef(n)
	}
	return out
}
