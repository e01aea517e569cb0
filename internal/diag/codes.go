package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Type engine
	TypInfo              Code = 1000
	TypNoLexicalScope    Code = 1001
	TypStructTypedefName Code = 1002
	TypTypedefNoAlias    Code = 1003
	TypFunctionPtrAlias  Code = 1004
	TypSupertypeCycle    Code = 1005

	// Data-flow refiner
	DfgInfo        Code = 2000
	DfgNoJoinPoint Code = 2001
	DfgNoAssign    Code = 2002

	// Graph IO
	IOLoadFailed  Code = 4001
	IOStoreFailed Code = 4002
	IOBadVersion  Code = 4003
	IOFingerprint Code = 4004
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown diagnostic",
	TypInfo:              "Type engine information",
	TypNoLexicalScope:    "No lexical scope available for typedef handling",
	TypStructTypedefName: "Could not extract alias name from struct typedef",
	TypTypedefNoAlias:    "Typedef contains no alias to split on",
	TypFunctionPtrAlias:  "Could not find alias name in function pointer typedef",
	TypSupertypeCycle:    "Supertype hierarchy contains a cycle",
	DfgInfo:              "Data-flow refiner information",
	DfgNoJoinPoint:       "Branches never rejoin, analysing to function end",
	DfgNoAssign:          "Write reference without enclosing assignment",
	IOLoadFailed:         "Graph file could not be loaded",
	IOStoreFailed:        "Graph file could not be written",
	IOBadVersion:         "Unsupported graph file version",
	IOFingerprint:        "Graph fingerprint mismatch",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DFG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
