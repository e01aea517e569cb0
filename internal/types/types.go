package types

import "fmt"

// TypeID uniquely identifies a type inside the registry.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the closed set of type variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindObject is a primitive or named object type, optionally with generic arguments.
	KindObject
	// KindFunctionPointer is an atomic root carrying a return and parameter types.
	KindFunctionPointer
	// KindParameterized is a placeholder bound to one type parameter of one declaration.
	KindParameterized
	// KindIncomplete is an intentionally unspecified type such as void.
	KindIncomplete
	// KindUnknown marks a type that could not be determined.
	KindUnknown
	// KindPointer wraps one element with an origin of pointer or array.
	KindPointer
	// KindReference wraps one element as a reference.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindObject:
		return "object"
	case KindFunctionPointer:
		return "function-pointer"
	case KindParameterized:
		return "parameterized"
	case KindIncomplete:
		return "incomplete"
	case KindUnknown:
		return "unknown"
	case KindPointer:
		return "pointer"
	case KindReference:
		return "reference"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// FirstOrder reports whether the kind is an atomic (non-wrapping) type.
func (k Kind) FirstOrder() bool {
	return k != KindInvalid && k != KindPointer && k != KindReference
}

// PointerOrigin distinguishes pointer wrapping from array wrapping.
type PointerOrigin uint8

const (
	OriginNone PointerOrigin = iota
	OriginPointer
	OriginArray
)

func (o PointerOrigin) String() string {
	switch o {
	case OriginPointer:
		return "pointer"
	case OriginArray:
		return "array"
	default:
		return "none"
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Name    string        // root name for first-order kinds
	Elem    TypeID        // element of pointer/reference
	Origin  PointerOrigin // for pointers
	Payload uint32        // index into kind-specific side tables
}

// MakePointer builds a pointer descriptor wrapping elem.
func MakePointer(elem TypeID, origin PointerOrigin) Type {
	if origin == OriginNone {
		origin = OriginPointer
	}
	return Type{Kind: KindPointer, Elem: elem, Origin: origin}
}

// MakeReference builds a reference descriptor wrapping elem.
func MakeReference(elem TypeID) Type {
	return Type{Kind: KindReference, Elem: elem}
}

// MakeObject builds an object descriptor without generic arguments.
func MakeObject(name string) Type {
	return Type{Kind: KindObject, Name: name}
}

// Builtins stores TypeIDs for the sentinel types.
type Builtins struct {
	Unknown    TypeID
	Incomplete TypeID
}
