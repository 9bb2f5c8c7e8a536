package types

import (
	"nickandperla.net/wordplay/internal/ast"
)

// Reason says why a type could not be determined.
type Reason int

const (
	ReasonUnknownName Reason = iota
	ReasonCycle
	ReasonUnresolvedVariable
	ReasonUnparsable
	ReasonNotAFunction
	ReasonUnknownProperty
	ReasonUnknownConversion
	ReasonUnknownOperator
	ReasonNotAStream
	ReasonPlaceholder
	ReasonNoExpression
	ReasonUnknownBorrow
)

var reasonNames = map[Reason]string{
	ReasonUnknownName:        "unknown name",
	ReasonCycle:              "cycle",
	ReasonUnresolvedVariable: "unresolved type variable",
	ReasonUnparsable:         "unparsable",
	ReasonNotAFunction:       "not a function",
	ReasonUnknownProperty:    "unknown property",
	ReasonUnknownConversion:  "unknown conversion",
	ReasonUnknownOperator:    "unknown operator",
	ReasonNotAStream:         "not a stream",
	ReasonPlaceholder:        "placeholder",
	ReasonNoExpression:       "no expression",
	ReasonUnknownBorrow:      "unknown borrow",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "unknown"
}

// Unknown is the type of an expression whose type could not be determined.
// Node is where inference failed. Definition is set when a definition is
// to blame, such as the generic function whose type variable could not be
// resolved. Cause links to the failure this one stems from.
type Unknown struct {
	Reason     Reason
	Node       ast.Node
	Definition ast.Definition
	Cause      *Unknown
}

// NewUnknown returns an Unknown for a node.
func NewUnknown(reason Reason, node ast.Node) *Unknown {
	return &Unknown{Reason: reason, Node: node}
}

// Because returns a copy of u caused by cause. Non-Unknown causes are
// ignored.
func (u *Unknown) Because(cause Type) *Unknown {
	c, ok := cause.(*Unknown)
	if !ok {
		return u
	}
	out := *u
	out.Cause = c
	return &out
}

// Chain returns u and its causes, outermost first.
func (u *Unknown) Chain() []*Unknown {
	var out []*Unknown
	seen := map[*Unknown]bool{}
	for c := u; c != nil && !seen[c]; c = c.Cause {
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (*Unknown) accepts(Type, *Context) bool { return true }

func (u *Unknown) String() string { return "unknown" }

// IsUnknown reports whether t is or contains an Unknown.
func IsUnknown(t Type) bool {
	switch t := t.(type) {
	case *Unknown:
		return true
	case *Union:
		for _, m := range t.Members {
			if IsUnknown(m) {
				return true
			}
		}
	}
	return false
}
