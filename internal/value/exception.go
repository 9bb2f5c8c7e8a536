package value

import (
	"fmt"

	"nickandperla.net/wordplay/internal/ast"
)

// ExceptionKind classifies runtime exceptions.
type ExceptionKind int

const (
	// ValueException is a value missing or out of range, such as a missing
	// input or an unparsable number.
	ValueException ExceptionKind = iota
	// TypeException is a value of the wrong type.
	TypeException
	// NameException is a name that is not bound.
	NameException
	// FunctionException is an evaluation of something that is not a
	// function, or with inputs that do not match.
	FunctionException
	// ConversionException is a conversion with no path.
	ConversionException
	// Unimplemented is a placeholder or unparsable code that was reached.
	Unimplemented
	// StepLimit is an evaluation that took too many steps.
	StepLimit
	// CallDepth is an evaluation nested too deeply.
	CallDepth
	// Canceled is a run stopped by its context.
	Canceled
)

var exceptionNames = [...]string{
	ValueException:      "ValueException",
	TypeException:       "TypeException",
	NameException:       "NameException",
	FunctionException:   "FunctionException",
	ConversionException: "ConversionException",
	Unimplemented:       "Unimplemented",
	StepLimit:           "StepLimit",
	CallDepth:           "CallDepth",
	Canceled:            "Canceled",
}

func (k ExceptionKind) String() string {
	if int(k) < len(exceptionNames) {
		return exceptionNames[k]
	}
	return fmt.Sprintf("ExceptionKind(%d)", int(k))
}

// Exception is the value of an evaluation that failed. It halts the
// evaluator; it is never a Go error.
type Exception struct {
	Kind    ExceptionKind
	Node    ast.Node
	Message string
}

// NewException returns an exception raised at node.
func NewException(kind ExceptionKind, node ast.Node, format string, args ...any) *Exception {
	return &Exception{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)}
}

func (e *Exception) String() string { return e.Kind.String() + ": " + e.Message }

func (*Exception) value() {}
