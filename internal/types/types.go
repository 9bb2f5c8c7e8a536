// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package types implements wordplay's structural types.
//
// Type is a closed set of variants. Accepts is the single subtyping test
// that every other algorithm builds on; Unknown and Any are accepted by and
// accept everything, so a failed inference never cascades into further
// conflicts.
package types

import (
	"fmt"
	"strings"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/unit"
)

// Type is the statically known shape of an expression.
type Type interface {
	fmt.Stringer
	accepts(candidate Type, ctx *Context) bool
}

// Any accepts every type. It is the type of untyped inputs and of the items
// of empty collections.
type Any struct{}

// Boolean is the type of ⊤ and ⊥.
type Boolean struct{}

// Text is the type of text values.
type Text struct{}

// None is the type of ø.
type None struct{}

// Shared instances of the types without parameters.
var (
	AnyType     = &Any{}
	BooleanType = &Boolean{}
	TextType    = &Text{}
	NoneType    = &None{}
)

// Number is a number with a unit. A wildcard unit accepts numbers of any
// unit.
type Number struct {
	Unit unit.Unit
}

// NewNumber returns a number type with the given unit.
func NewNumber(u unit.Unit) *Number { return &Number{Unit: u} }

// List is an ordered collection; a nil Item accepts any item.
type List struct{ Item Type }

// Set is an unordered collection of unique keys.
type Set struct{ Key Type }

// Map associates keys with values.
type Map struct{ Key, Value Type }

// Input is one input of a function type.
type Input struct {
	Names    []string
	Type     Type
	Optional bool
}

// Function is the type of a function definition or function value.
type Function struct {
	Definition *ast.FunctionDefinition
	Variables  []*ast.TypeVariable
	Inputs     []Input
	Output     Type
}

// Required returns the number of inputs without defaults.
func (t *Function) Required() int {
	n := 0
	for _, in := range t.Inputs {
		if !in.Optional {
			n++
		}
	}
	return n
}

// Input returns the index of the input with the given name.
func (t *Function) Input(name string) (int, bool) {
	for i, in := range t.Inputs {
		for _, n := range in.Names {
			if n == name {
				return i, true
			}
		}
	}
	return -1, false
}

// Structure is the type of a value created by evaluating a structure
// definition. Interfaces lists the resolved interfaces the definition
// implements; Arguments binds the definition's type variables.
type Structure struct {
	Definition *ast.StructureDefinition
	Interfaces []*ast.StructureDefinition
	Arguments  map[*ast.TypeVariable]Type
}

// StructureDefinition is the type of a reference to a structure's name.
// Evaluating it creates a Structure.
type StructureDefinition struct {
	Definition *ast.StructureDefinition
	Structure  *Structure
}

// StreamDefinition is the type of a reference to a stream's name.
// Evaluating it produces a Stream.
type StreamDefinition struct {
	Definition *ast.StreamDefinition
	Output     Type
}

// Stream is the type of a time varying value.
type Stream struct{ Value Type }

// Union accepts any type one of its members accepts.
type Union struct{ Members []Type }

// Variable is a type variable that has not been bound to a concrete type.
type Variable struct{ Definition *ast.TypeVariable }

// Accepts reports whether a value of type candidate may be used where
// expected is required.
func Accepts(expected, candidate Type, ctx *Context) bool {
	if expected == nil || candidate == nil {
		return true
	}
	switch expected.(type) {
	case *Any, *Unknown:
		return true
	}
	switch c := candidate.(type) {
	case *Any, *Unknown:
		return true
	case *Union:
		for _, m := range c.Members {
			if !Accepts(expected, m, ctx) {
				return false
			}
		}
		return true
	case *Stream:
		if _, ok := expected.(*Stream); !ok {
			return Accepts(expected, c.Value, ctx)
		}
	}
	return expected.accepts(candidate, ctx)
}

// Equal reports whether two types accept each other.
func Equal(a, b Type, ctx *Context) bool {
	return Accepts(a, b, ctx) && Accepts(b, a, ctx)
}

func (*Any) accepts(Type, *Context) bool { return true }

func (*Boolean) accepts(c Type, _ *Context) bool {
	_, ok := c.(*Boolean)
	return ok
}

func (*Text) accepts(c Type, _ *Context) bool {
	_, ok := c.(*Text)
	return ok
}

func (*None) accepts(c Type, _ *Context) bool {
	_, ok := c.(*None)
	return ok
}

func (t *Number) accepts(c Type, _ *Context) bool {
	n, ok := c.(*Number)
	return ok && t.Unit.Equal(n.Unit)
}

func (t *List) accepts(c Type, ctx *Context) bool {
	l, ok := c.(*List)
	return ok && Accepts(t.Item, l.Item, ctx)
}

func (t *Set) accepts(c Type, ctx *Context) bool {
	s, ok := c.(*Set)
	return ok && Accepts(t.Key, s.Key, ctx)
}

func (t *Map) accepts(c Type, ctx *Context) bool {
	m, ok := c.(*Map)
	return ok && Accepts(t.Key, m.Key, ctx) && Accepts(t.Value, m.Value, ctx)
}

func (t *Function) accepts(c Type, ctx *Context) bool {
	f, ok := c.(*Function)
	if !ok || len(f.Inputs) != len(t.Inputs) {
		return false
	}
	for i := range t.Inputs {
		// Inputs are contravariant.
		if !Accepts(f.Inputs[i].Type, t.Inputs[i].Type, ctx) {
			return false
		}
	}
	return Accepts(t.Output, f.Output, ctx)
}

func (t *Structure) accepts(c Type, ctx *Context) bool {
	s, ok := c.(*Structure)
	if !ok {
		return false
	}
	if s.Definition == t.Definition {
		for v, arg := range t.Arguments {
			if other, ok := s.Arguments[v]; ok && !Accepts(arg, other, ctx) {
				return false
			}
		}
		return true
	}
	for _, iface := range s.Interfaces {
		if iface == t.Definition {
			return true
		}
	}
	return false
}

func (t *StructureDefinition) accepts(c Type, _ *Context) bool {
	s, ok := c.(*StructureDefinition)
	return ok && s.Definition == t.Definition
}

func (t *StreamDefinition) accepts(c Type, _ *Context) bool {
	s, ok := c.(*StreamDefinition)
	return ok && s.Definition == t.Definition
}

func (t *Stream) accepts(c Type, ctx *Context) bool {
	s, ok := c.(*Stream)
	return ok && Accepts(t.Value, s.Value, ctx)
}

func (t *Union) accepts(c Type, ctx *Context) bool {
	for _, m := range t.Members {
		if Accepts(m, c, ctx) {
			return true
		}
	}
	return false
}

func (t *Variable) accepts(c Type, _ *Context) bool {
	v, ok := c.(*Variable)
	return ok && v.Definition == t.Definition
}

func (*Any) String() string     { return "*" }
func (*Boolean) String() string { return "?" }
func (*Text) String() string    { return "''" }
func (*None) String() string    { return "ø" }

func (t *Number) String() string {
	if t.Unit.IsWildcard() {
		return "#*"
	}
	return "#" + t.Unit.String()
}

func (t *List) String() string { return "[" + str(t.Item) + "]" }
func (t *Set) String() string  { return "{" + str(t.Key) + "}" }
func (t *Map) String() string  { return "{" + str(t.Key) + ":" + str(t.Value) + "}" }

func (t *Function) String() string {
	var sb strings.Builder
	sb.WriteString("ƒ(")
	for i, in := range t.Inputs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if len(in.Names) > 0 {
			sb.WriteString(in.Names[0])
		} else {
			sb.WriteString("_")
		}
		sb.WriteString("•")
		sb.WriteString(str(in.Type))
	}
	sb.WriteString(") ")
	sb.WriteString(str(t.Output))
	return sb.String()
}

func (t *Structure) String() string {
	name := definitionName(t.Definition)
	vars := t.Definition.Variables()
	if len(vars) == 0 || len(t.Arguments) == 0 {
		return name
	}
	args := make([]string, 0, len(vars))
	for _, v := range vars {
		args = append(args, str(t.Arguments[v]))
	}
	return name + "⸨" + strings.Join(args, " ") + "⸩"
}

func (t *StructureDefinition) String() string { return "•" + definitionName(t.Definition) }

func (t *StreamDefinition) String() string {
	return "…" + strings.Join(t.Definition.Names(), ",")
}

func (t *Stream) String() string { return "…" + str(t.Value) }

func (t *Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = str(m)
	}
	return strings.Join(parts, "|")
}

func (t *Variable) String() string {
	if names := t.Definition.Names(); len(names) > 0 {
		return names[0]
	}
	return "_"
}

func str(t Type) string {
	if t == nil {
		return "*"
	}
	return t.String()
}

func definitionName(d ast.Definition) string {
	if names := d.Names(); len(names) > 0 {
		return names[0]
	}
	return "_"
}
