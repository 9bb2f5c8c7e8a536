// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package conflict defines the static problems analysis reports against
// syntax tree nodes.
package conflict

import (
	"fmt"
	"sort"

	"nickandperla.net/wordplay/internal/ast"
)

// Severity says whether a conflict must be fixed before the program's
// meaning is well defined.
type Severity int

const (
	// Hard conflicts leave evaluation semantics undefined.
	Hard Severity = iota
	// Advisory conflicts are worth fixing but do not block evaluation.
	Advisory
)

func (s Severity) String() string {
	if s == Advisory {
		return "advisory"
	}
	return "hard"
}

// Kind identifies a conflict.
type Kind int

const (
	UnclosedDelimiter Kind = iota
	Unparsable
	UnknownName
	DuplicateName
	UnusedBind
	MisplacedShare
	IgnoredExpression
	OrderOfOperations
	IncompatibleBind
	IncompatibleInput
	MissingInput
	UnexpectedInput
	NotAFunction
	UnknownOperator
	UnknownProperty
	UnknownConversion
	UnknownTypeName
	InvalidTypeInput
	IncompatibleType
	IncompatibleOutput
	NotAStream
	MisplacedThis
	Placeholder
	ImpossibleType
	ExpectedExpression
	UnknownBorrow
	BorrowCycle
	IncompleteImplementation
	DuplicateTypeVariable
)

var kindNames = [...]string{
	UnclosedDelimiter:        "UnclosedDelimiter",
	Unparsable:               "Unparsable",
	UnknownName:              "UnknownName",
	DuplicateName:            "DuplicateName",
	UnusedBind:               "UnusedBind",
	MisplacedShare:           "MisplacedShare",
	IgnoredExpression:        "IgnoredExpression",
	OrderOfOperations:        "OrderOfOperations",
	IncompatibleBind:         "IncompatibleBind",
	IncompatibleInput:        "IncompatibleInput",
	MissingInput:             "MissingInput",
	UnexpectedInput:          "UnexpectedInput",
	NotAFunction:             "NotAFunction",
	UnknownOperator:          "UnknownOperator",
	UnknownProperty:          "UnknownProperty",
	UnknownConversion:        "UnknownConversion",
	UnknownTypeName:          "UnknownTypeName",
	InvalidTypeInput:         "InvalidTypeInput",
	IncompatibleType:         "IncompatibleType",
	IncompatibleOutput:       "IncompatibleOutput",
	NotAStream:               "NotAStream",
	MisplacedThis:            "MisplacedThis",
	Placeholder:              "Placeholder",
	ImpossibleType:           "ImpossibleType",
	ExpectedExpression:       "ExpectedExpression",
	UnknownBorrow:            "UnknownBorrow",
	BorrowCycle:              "BorrowCycle",
	IncompleteImplementation: "IncompleteImplementation",
	DuplicateTypeVariable:    "DuplicateTypeVariable",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Severity returns the kind's usual severity.
func (k Kind) Severity() Severity {
	switch k {
	case UnusedBind, MisplacedShare, IgnoredExpression, OrderOfOperations, Placeholder:
		return Advisory
	}
	return Hard
}

// Conflict is one static problem. Primary is the node the problem is
// reported against; Secondary lists related nodes, such as the earlier
// definition a duplicate name collides with.
type Conflict struct {
	Kind      Kind
	Severity  Severity
	Primary   ast.Node
	Secondary []ast.Node
	Message   string
}

// New returns a conflict of the given kind with its usual severity.
func New(kind Kind, primary ast.Node, format string, args ...any) Conflict {
	return Conflict{
		Kind:     kind,
		Severity: kind.Severity(),
		Primary:  primary,
		Message:  fmt.Sprintf(format, args...),
	}
}

// With returns a copy of c with secondary nodes attached.
func (c Conflict) With(secondary ...ast.Node) Conflict {
	c.Secondary = append(append([]ast.Node(nil), c.Secondary...), secondary...)
	return c
}

// IsHard reports whether c is a hard conflict.
func (c Conflict) IsHard() bool { return c.Severity == Hard }

func (c Conflict) String() string {
	return c.Kind.String() + ": " + c.Message
}

// HardOnly returns the hard conflicts of cs.
func HardOnly(cs []Conflict) []Conflict {
	var out []Conflict
	for _, c := range cs {
		if c.IsHard() {
			out = append(out, c)
		}
	}
	return out
}

// Sort orders conflicts by the preorder position of their primary node in
// tree, then by kind and message. Conflicts whose primary node is outside
// tree sort last.
func Sort(cs []Conflict, tree *ast.Tree) {
	index := map[ast.Node]int{}
	for i, n := range tree.Nodes() {
		index[n] = i
	}
	pos := func(n ast.Node) int {
		if i, ok := index[n]; ok {
			return i
		}
		return len(index)
	}
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if pa, pb := pos(a.Primary), pos(b.Primary); pa != pb {
			return pa < pb
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
}
