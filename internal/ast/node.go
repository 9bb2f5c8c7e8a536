// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package ast defines the wordplay syntax tree.
//
// Every node declares a grammar: an ordered list of fields, each accepting a
// set of child kinds with an arity. Slots returns the node's children aligned
// with its grammar, and the generic algorithms in this package (traversal,
// cloning with replacement, source text, validation) are written against that
// contract alone. Nodes are immutable; edits return structurally shared
// clones.
package ast

import (
	"sync/atomic"

	"nickandperla.net/wordplay/internal/token"
)

// ID identifies a node. Clones made by edits keep the ID of the node they
// replace, so IDs survive functional updates.
type ID uint64

var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// Node is the interface all syntax tree elements implement.
type Node interface {
	// ID returns the node's identity, assigned lazily on first use.
	ID() ID
	// Kind returns the node's kind.
	Kind() Kind
	// Grammar returns the node's fields in order.
	Grammar() []Field
	// Slots returns the node's children, one slot per grammar field.
	Slots() []Slot
	// withSlots builds a node of the same kind with the given children.
	withSlots(id uint64, slots []Slot) Node
	rawID() uint64
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expression()
}

// TypeNode is a node that denotes a type.
type TypeNode interface {
	Node
	typeNode()
}

// Definition is something a name can resolve to.
type Definition interface {
	Node
	// Names returns every name the definition is known by.
	Names() []string
}

// Slot holds the children of one grammar field. Single and optional fields
// hold at most one node.
type Slot []Node

type base struct {
	id uint64
}

func (b *base) ID() ID {
	if id := atomic.LoadUint64(&b.id); id != 0 {
		return ID(id)
	}
	atomic.CompareAndSwapUint64(&b.id, 0, nextID())
	return ID(atomic.LoadUint64(&b.id))
}

func (b *base) rawID() uint64 { return atomic.LoadUint64(&b.id) }

// Arity describes how many children a field holds.
type Arity int

const (
	One Arity = iota
	Optional
	Many
)

// Requirement is a type constraint the analyzer enforces on a field's value.
type Requirement int

const (
	RequireNothing Requirement = iota
	RequireBoolean
	RequireNumber
)

// Field is one entry of a node's grammar.
type Field struct {
	Name    string
	Arity   Arity
	Kinds   []Kind
	Tokens  []token.Kind // for token fields, the accepted token kinds
	Require Requirement
}

// Accepts reports whether a node may appear in this field.
func (f Field) Accepts(n Node) bool {
	for _, k := range f.Kinds {
		switch k {
		case AnyExpression:
			if _, ok := n.(Expression); ok {
				return true
			}
		case AnyType:
			if _, ok := n.(TypeNode); ok {
				return true
			}
		case AnyStatement:
			if IsStatement(n) {
				return true
			}
		case KindToken:
			t, ok := n.(*Token)
			if !ok {
				continue
			}
			if len(f.Tokens) == 0 {
				return true
			}
			for _, tk := range f.Tokens {
				if t.Category == tk {
					return true
				}
			}
		default:
			if n.Kind() == k {
				return true
			}
		}
	}
	return false
}

// IsStatement reports whether a node may appear as a block statement.
func IsStatement(n Node) bool {
	switch n.(type) {
	case *Bind, *FunctionDefinition, *StructureDefinition, *ConversionDefinition:
		return true
	}
	_, ok := n.(Expression)
	return ok
}

func tokenField(name string, arity Arity, kinds ...token.Kind) Field {
	return Field{Name: name, Arity: arity, Kinds: []Kind{KindToken}, Tokens: kinds}
}

func nodeField(name string, arity Arity, kinds ...Kind) Field {
	return Field{Name: name, Arity: arity, Kinds: kinds}
}

func required(f Field, r Requirement) Field {
	f.Require = r
	return f
}

// opt wraps a possibly nil node as a slot.
func opt[T Node](n T) Slot {
	var zero T
	if any(n) == any(zero) {
		return nil
	}
	return Slot{n}
}

func many[T Node](ns []T) Slot {
	s := make(Slot, 0, len(ns))
	for _, n := range ns {
		s = append(s, n)
	}
	return s
}

func get[T Node](s Slot) T {
	var zero T
	if len(s) == 0 {
		return zero
	}
	v, _ := s[0].(T)
	return v
}

func list[T Node](s Slot) []T {
	out := make([]T, 0, len(s))
	for _, n := range s {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Field returns the named field's slot of a node.
func FieldSlot(n Node, name string) (Field, Slot, bool) {
	slots := n.Slots()
	for i, f := range n.Grammar() {
		if f.Name == name {
			return f, slots[i], true
		}
	}
	return Field{}, nil, false
}

// Children returns a node's children in grammar order.
func Children(n Node) []Node {
	var out []Node
	for _, s := range n.Slots() {
		out = append(out, s...)
	}
	return out
}
