package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/hashicorp/go-set/v3"
)

// FuncInfo stores the signature of a function pointer type.
type FuncInfo struct {
	Return TypeID
	Params []TypeID
}

// ParamInfo stores the owner and name of a parameterized type.
type ParamInfo struct {
	Owner Declarer
	Name  string
}

// Registry provides stable TypeIDs by hashing structural descriptors and
// partitions registered types into first-order and second-order sets.
type Registry struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	args      [][]TypeID
	argIndex  map[string]uint32
	funcs     []FuncInfo
	funcIndex map[string]uint32
	params    []ParamInfo

	firstOrder  *set.Set[TypeID]
	secondOrder *set.Set[TypeID]
}

// NewRegistry constructs a registry seeded with the sentinel types.
func NewRegistry() *Registry {
	r := &Registry{
		index:       make(map[typeKey]TypeID, 64),
		argIndex:    make(map[string]uint32),
		funcIndex:   make(map[string]uint32),
		firstOrder:  set.New[TypeID](32),
		secondOrder: set.New[TypeID](32),
	}
	r.types = append(r.types, Type{}) // reserve 0 as NoTypeID
	r.args = append(r.args, nil)
	r.funcs = append(r.funcs, FuncInfo{})
	r.params = append(r.params, ParamInfo{})
	r.builtins.Unknown = r.Intern(Type{Kind: KindUnknown, Name: "UNKNOWN"})
	r.builtins.Incomplete = r.Intern(Type{Kind: KindIncomplete, Name: "void"})
	return r
}

// Builtins returns the sentinel TypeIDs.
func (r *Registry) Builtins() Builtins {
	return r.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (r *Registry) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := r.index[typeKey(t)]; ok {
		return id
	}
	return r.internRaw(t)
}

func (r *Registry) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(r.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	r.types = append(r.types, t)
	r.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (r *Registry) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(r.types) {
		return Type{}, false
	}
	return r.types[id], true
}

// MustLookup panics when id is invalid.
func (r *Registry) MustLookup(id TypeID) Type {
	t, ok := r.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Kind returns the kind of id, KindInvalid when id is unknown to the registry.
func (r *Registry) Kind(id TypeID) Kind {
	t, _ := r.Lookup(id)
	return t.Kind
}

// Object interns a named object type with optional generic arguments.
func (r *Registry) Object(name string, generics ...TypeID) TypeID {
	t := MakeObject(name)
	if len(generics) > 0 {
		t.Payload = r.slot(generics)
	}
	return r.Intern(t)
}

func (r *Registry) slot(ids []TypeID) uint32 {
	key := joinIDs(ids)
	if s, ok := r.argIndex[key]; ok {
		return s
	}
	s, err := safecast.Conv[uint32](len(r.args))
	if err != nil {
		panic(fmt.Errorf("len(args) overflow: %w", err))
	}
	r.args = append(r.args, slices.Clone(ids))
	r.argIndex[key] = s
	return s
}

// Generics returns the generic arguments of an object type.
func (r *Registry) Generics(id TypeID) []TypeID {
	t, ok := r.Lookup(id)
	if !ok || t.Kind != KindObject || t.Payload == 0 {
		return nil
	}
	return r.args[t.Payload]
}

// FunctionPointer interns a function pointer type with the given signature.
func (r *Registry) FunctionPointer(ret TypeID, params ...TypeID) TypeID {
	key := joinIDs(append([]TypeID{ret}, params...))
	s, ok := r.funcIndex[key]
	if !ok {
		n, err := safecast.Conv[uint32](len(r.funcs))
		if err != nil {
			panic(fmt.Errorf("len(funcs) overflow: %w", err))
		}
		s = n
		r.funcs = append(r.funcs, FuncInfo{Return: ret, Params: slices.Clone(params)})
		r.funcIndex[key] = s
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, r.Name(p))
	}
	name := r.Name(ret) + "(" + strings.Join(names, ",") + ")"
	return r.Intern(Type{Kind: KindFunctionPointer, Name: name, Payload: s})
}

// FuncInfo returns the signature of a function pointer type.
func (r *Registry) FuncInfo(id TypeID) (FuncInfo, bool) {
	t, ok := r.Lookup(id)
	if !ok || t.Kind != KindFunctionPointer {
		return FuncInfo{}, false
	}
	return r.funcs[t.Payload], true
}

// newParam always allocates a fresh parameterized type; identity is
// tracked by the owning Context.
func (r *Registry) newParam(owner Declarer, name string) TypeID {
	s, err := safecast.Conv[uint32](len(r.params))
	if err != nil {
		panic(fmt.Errorf("len(params) overflow: %w", err))
	}
	r.params = append(r.params, ParamInfo{Owner: owner, Name: name})
	return r.internRaw(Type{Kind: KindParameterized, Name: name, Payload: s})
}

// ParamInfo returns owner and name of a parameterized type.
func (r *Registry) ParamInfo(id TypeID) (ParamInfo, bool) {
	t, ok := r.Lookup(id)
	if !ok || t.Kind != KindParameterized {
		return ParamInfo{}, false
	}
	return r.params[t.Payload], true
}

// Pointer interns a pointer (or array) wrapping elem.
func (r *Registry) Pointer(elem TypeID, origin PointerOrigin) TypeID {
	if elem == NoTypeID {
		return NoTypeID
	}
	return r.Intern(MakePointer(elem, origin))
}

// Reference interns a reference wrapping elem.
func (r *Registry) Reference(elem TypeID) TypeID {
	if elem == NoTypeID {
		return NoTypeID
	}
	// references collapse, there is at most one layer
	if r.Kind(elem) == KindReference {
		return elem
	}
	return r.Intern(MakeReference(elem))
}

// Register classifies id as first- or second-order. Second-order types
// register their element first. Registering twice is a no-op.
func (r *Registry) Register(id TypeID) TypeID {
	t, ok := r.Lookup(id)
	if !ok {
		return NoTypeID
	}
	if t.Kind.FirstOrder() {
		r.firstOrder.Insert(id)
		return id
	}
	r.Register(t.Elem)
	r.secondOrder.Insert(id)
	return id
}

// IsFirstOrder reports whether id was registered as a first-order type.
func (r *Registry) IsFirstOrder(id TypeID) bool { return r.firstOrder.Contains(id) }

// IsSecondOrder reports whether id was registered as a second-order type.
func (r *Registry) IsSecondOrder(id TypeID) bool { return r.secondOrder.Contains(id) }

// FirstOrder lists registered first-order types in ID order.
func (r *Registry) FirstOrder() []TypeID { return sortedIDs(r.firstOrder) }

// SecondOrder lists registered second-order types in ID order.
func (r *Registry) SecondOrder() []TypeID { return sortedIDs(r.secondOrder) }

// Len reports the number of interned descriptors, sentinels included.
func (r *Registry) Len() int { return len(r.types) - 1 }

// Name renders id in C-family notation.
func (r *Registry) Name(id TypeID) string {
	t, ok := r.Lookup(id)
	if !ok {
		return "<none>"
	}
	switch t.Kind {
	case KindPointer:
		if t.Origin == OriginArray {
			return r.Name(t.Elem) + "[]"
		}
		return r.Name(t.Elem) + "*"
	case KindReference:
		return r.Name(t.Elem) + "&"
	case KindObject:
		args := r.Generics(id)
		if len(args) == 0 {
			return t.Name
		}
		names := make([]string, 0, len(args))
		for _, a := range args {
			names = append(names, r.Name(a))
		}
		return t.Name + "<" + strings.Join(names, ",") + ">"
	default:
		return t.Name
	}
}

// Root strips every pointer and reference layer.
func (r *Registry) Root(id TypeID) TypeID {
	for {
		t, ok := r.Lookup(id)
		if !ok || t.Kind.FirstOrder() {
			return id
		}
		id = t.Elem
	}
}

// RootName returns the name of the root of id.
func (r *Registry) RootName(id TypeID) string {
	t, _ := r.Lookup(r.Root(id))
	return t.Name
}

// Depth counts the pointer and array layers of id. Reference layers are not
// counted.
func (r *Registry) Depth(id TypeID) int {
	depth := 0
	for {
		t, ok := r.Lookup(id)
		if !ok || t.Kind.FirstOrder() {
			return depth
		}
		if t.Kind == KindPointer {
			depth++
		}
		id = t.Elem
	}
}

// SameShape reports whether a and b have the same reference layering and
// pointer depth. Pointer and array origins are interchangeable.
func (r *Registry) SameShape(a, b TypeID) bool {
	if a == b {
		return true
	}
	refA := r.Kind(a) == KindReference
	refB := r.Kind(b) == KindReference
	return refA == refB && r.Depth(a) == r.Depth(b)
}

type typeKey struct {
	Kind    Kind
	Name    string
	Elem    TypeID
	Origin  PointerOrigin
	Payload uint32
}

func joinIDs(ids []TypeID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}

func sortedIDs(s *set.Set[TypeID]) []TypeID {
	out := s.Slice()
	slices.Sort(out)
	return out
}
