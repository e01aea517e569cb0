package graph

// Kind classifies a graph node for the passes. Front ends map their own
// node classes onto this set.
type Kind uint8

const (
	KindOther Kind = iota
	KindFunction
	KindVariable
	KindParam
	KindRef
	KindLiteral
	KindAssign
	KindBinary
	KindUnary
	KindCall
	KindReturn
	KindBlock
	KindIf
	KindSwitch
	KindCase
	KindConditional
	KindWhile
	KindFor
	KindBreak
	KindTry
)

var kindNames = [...]string{
	KindOther:       "other",
	KindFunction:    "function",
	KindVariable:    "variable",
	KindParam:       "param",
	KindRef:         "ref",
	KindLiteral:     "literal",
	KindAssign:      "assign",
	KindBinary:      "binary",
	KindUnary:       "unary",
	KindCall:        "call",
	KindReturn:      "return",
	KindBlock:       "block",
	KindIf:          "if",
	KindSwitch:      "switch",
	KindCase:        "case",
	KindConditional: "conditional",
	KindWhile:       "while",
	KindFor:         "for",
	KindBreak:       "break",
	KindTry:         "try",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// IsDeclaration reports whether nodes of this kind declare a tracked variable.
func (k Kind) IsDeclaration() bool {
	return k == KindVariable || k == KindParam
}

// IsExclusiveSplit reports whether the successors of a node of this kind
// are mutually exclusive paths. Try statements are excluded: a catch clause
// may run after any prefix of the try body.
func (k Kind) IsExclusiveSplit() bool {
	switch k {
	case KindIf, KindSwitch, KindConditional:
		return true
	default:
		return false
	}
}

// Access is the way a reference touches its variable.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

func (a Access) String() string {
	switch a {
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "readwrite"
	default:
		return "read"
	}
}
