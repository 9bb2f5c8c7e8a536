// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval compiles wordplay programs to steps and evaluates them one
// step at a time.
package eval

import (
	"fmt"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/value"
)

// StepKind is what a step does.
type StepKind int

const (
	// Start prepares to evaluate a node, such as entering a block's scope.
	Start StepKind = iota
	// Finish computes a node's value from the values its parts left on the
	// stack.
	Finish
	// Jump skips the given number of following steps.
	Jump
	// JumpIf pops a Boolean and skips the given number of following steps
	// if it equals When.
	JumpIf
	// StartEvaluation pops a function and its inputs and evaluates it.
	StartEvaluation
	// Check inspects or updates a reaction's stream.
	Check
	// Halt stops evaluation with an exception.
	Halt
)

var stepKindNames = [...]string{
	Start:           "Start",
	Finish:          "Finish",
	Jump:            "Jump",
	JumpIf:          "JumpIf",
	StartEvaluation: "StartEvaluation",
	Check:           "Check",
	Halt:            "Halt",
}

func (k StepKind) String() string {
	if int(k) < len(stepKindNames) {
		return stepKindNames[k]
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// CheckKind is what a Check step does.
type CheckKind int

const (
	// Exists pushes whether the reaction's stream exists yet.
	Exists CheckKind = iota
	// Record pops a value and adds it to the reaction's stream, creating the
	// stream if needed.
	Record
)

// Step is one instruction of a compiled node.
type Step struct {
	Kind StepKind
	Node ast.Node
	// Offset is the number of following steps a jump skips.
	Offset int
	// When is the value that makes a JumpIf jump.
	When bool
	// Check is the check a Check step performs.
	Check CheckKind
	// Raw keeps streams as streams rather than their latest values, for
	// expressions whose stream itself is needed, as in ∆ Time().
	Raw bool
	// Exception is the kind of exception a Halt step raises.
	Exception value.ExceptionKind
}

func (s Step) String() string {
	switch s.Kind {
	case Jump:
		return fmt.Sprintf("Jump(%d)", s.Offset)
	case JumpIf:
		return fmt.Sprintf("JumpIf(%t, %d)", s.When, s.Offset)
	case Check:
		if s.Check == Exists {
			return "Check(Exists)"
		}
		return "Check(Record)"
	case Halt:
		return "Halt(" + s.Exception.String() + ")"
	}
	if s.Node == nil {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.Node.Kind().String() + ")"
}
