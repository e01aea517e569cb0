package types

import (
	"slices"

	"cpg/internal/diag"
	"cpg/internal/trace"
)

// Declarer is a record or template declaration that front ends attach to
// the graph. Supertypes are reported by name, before resolution.
// Implementations are used as map keys and must be pointer types.
type Declarer interface {
	DeclName() string
	SuperTypeNames() []string
	TypeParameters() []TypeID
	AddTypeParameter(id TypeID)
}

// LexicalScope is the view of a front-end scope the type engine needs.
// ParentScope must return a nil interface at the outermost scope.
type LexicalScope interface {
	ParentScope() LexicalScope
	// TemplateOwner returns the template declaration owning this scope, or nil.
	TemplateOwner() Declarer
	Typedefs() []Typedef
	AddTypedef(td Typedef)
}

// Typedef maps an alias root onto a target type.
type Typedef struct {
	Alias  TypeID
	Target TypeID
	Code   string
}

// Context owns every piece of type state of one analysis run. Construct a
// new Context instead of resetting an old one.
type Context struct {
	reg      *Registry
	enabled  bool
	records  map[string]Declarer
	params   map[paramKey]TypeID
	typedefs []Typedef // recorded without a lexical scope

	reporter diag.Reporter
	tracer   trace.Tracer
	oracle   AssignabilityOracle
	warned   map[diag.Code]bool
}

type paramKey struct {
	owner Declarer
	name  string
}

// Option configures a Context.
type Option func(*Context)

// WithReporter routes warnings to r.
func WithReporter(r diag.Reporter) Option {
	return func(c *Context) { c.reporter = r }
}

// WithTracer routes node-level trace points to t.
func WithTracer(t trace.Tracer) Option {
	return func(c *Context) { c.tracer = t }
}

// WithOracle replaces the assignability fallback used for types without
// declarations. Passing nil disables the fallback.
func WithOracle(o AssignabilityOracle) Option {
	return func(c *Context) { c.oracle = o }
}

// NewContext returns an empty, enabled type context.
func NewContext(opts ...Option) *Context {
	c := &Context{
		reg:      NewRegistry(),
		enabled:  true,
		records:  make(map[string]Declarer),
		params:   make(map[paramKey]TypeID),
		reporter: diag.NopReporter{},
		tracer:   trace.Nop,
		oracle:   DefaultOracle(),
		warned:   make(map[diag.Code]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry exposes the underlying interner.
func (c *Context) Registry() *Registry { return c.reg }

// Enabled reports whether the type system is active.
func (c *Context) Enabled() bool { return c.enabled }

// SetEnabled toggles the type system. While disabled, Register does not
// classify types and CommonType only answers the trivial single-type case.
func (c *Context) SetEnabled(on bool) { c.enabled = on }

// Unknown returns the unknown sentinel.
func (c *Context) Unknown() TypeID { return c.reg.builtins.Unknown }

// Incomplete returns the incomplete (void) sentinel.
func (c *Context) Incomplete() TypeID { return c.reg.builtins.Incomplete }

// Register interns t and records it in the first- or second-order set.
func (c *Context) Register(t Type) TypeID {
	id := c.reg.Intern(t)
	if !c.enabled {
		return id
	}
	return c.reg.Register(id)
}

// Object returns the registered object type name<generics...>.
func (c *Context) Object(name string, generics ...TypeID) TypeID {
	return c.registerID(c.reg.Object(name, generics...))
}

// Pointer returns the registered pointer to elem.
func (c *Context) Pointer(elem TypeID, origin PointerOrigin) TypeID {
	return c.registerID(c.reg.Pointer(elem, origin))
}

// Reference returns the registered reference to elem.
func (c *Context) Reference(elem TypeID) TypeID {
	return c.registerID(c.reg.Reference(elem))
}

// FunctionPointer returns the registered function pointer type.
func (c *Context) FunctionPointer(ret TypeID, params ...TypeID) TypeID {
	return c.registerID(c.reg.FunctionPointer(ret, params...))
}

func (c *Context) registerID(id TypeID) TypeID {
	if c.enabled {
		c.reg.Register(id)
	}
	return id
}

// AddRecord makes d available for supertype lookups by its name.
func (c *Context) AddRecord(d Declarer) {
	if d == nil {
		return
	}
	c.records[d.DeclName()] = d
	c.Object(d.DeclName())
}

// Declaration returns the declaring entity of the root of id.
func (c *Context) Declaration(id TypeID) Declarer {
	root, ok := c.reg.Lookup(c.reg.Root(id))
	if !ok || root.Kind != KindObject {
		return nil
	}
	return c.records[root.Name]
}

// GetOrCreateTypeParameter returns the parameterized type name of owner,
// creating and attaching it on first use.
func (c *Context) GetOrCreateTypeParameter(owner Declarer, name string) TypeID {
	if id, ok := c.TypeParameter(owner, name); ok {
		return id
	}
	id := c.registerID(c.reg.newParam(owner, name))
	c.params[paramKey{owner: owner, name: name}] = id
	if owner != nil {
		owner.AddTypeParameter(id)
	}
	return id
}

// TypeParameter looks up an existing parameterized type of owner.
func (c *Context) TypeParameter(owner Declarer, name string) (TypeID, bool) {
	if id, ok := c.params[paramKey{owner: owner, name: name}]; ok {
		return id, true
	}
	if owner == nil {
		return NoTypeID, false
	}
	// parameters attached by a front end before this context existed
	for _, id := range owner.TypeParameters() {
		// IDs from an earlier context may name another owner's parameter here
		if info, ok := c.reg.ParamInfo(id); ok && info.Owner == owner && info.Name == name {
			return id, true
		}
	}
	return NoTypeID, false
}

// ResolveInLexicalScope walks scope outward until a template-owned scope
// defines name.
func (c *Context) ResolveInLexicalScope(scope LexicalScope, name string) (TypeID, bool) {
	for s := scope; s != nil; s = s.ParentScope() {
		owner := s.TemplateOwner()
		if owner == nil {
			continue
		}
		if id, ok := c.TypeParameter(owner, name); ok {
			return id, true
		}
	}
	return NoTypeID, false
}

// Params lists the parameterized types created for owner, in creation order.
func (c *Context) Params(owner Declarer) []TypeID {
	var out []TypeID
	for k, id := range c.params {
		if k.owner == owner {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// warnOnce reports code the first time it is raised in this context.
func (c *Context) warnOnce(code diag.Code, msg string) {
	if c.warned[code] {
		return
	}
	c.warned[code] = true
	c.warn(code, msg)
}

func (c *Context) warn(code diag.Code, msg string) {
	diag.ReportWarning(c.reporter, code, diag.Location{}, msg).Emit()
	trace.Point(c.tracer, trace.ScopeNode, "types:"+code.ID(), msg, 0)
}
