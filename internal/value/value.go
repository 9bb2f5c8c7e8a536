// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the runtime values of wordplay programs.
package value

import (
	"strconv"
	"strings"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/unit"
)

// Value is a runtime value. Values are immutable once created, except for
// streams, which grow as they receive values.
type Value interface {
	String() string
	value()
}

// Number is a number with a unit.
type Number struct {
	Amount float64
	Unit   unit.Unit
}

// Text is a sequence of characters.
type Text struct {
	Value string
}

// Boolean is ⊤ or ⊥.
type Boolean struct {
	Value bool
}

// None is ø.
type None struct{}

// List is an ordered sequence of values.
type List struct {
	Items []Value
}

// Set is an ordered collection of distinct values.
type Set struct {
	Items []Value
}

// Map associates keys with values, in insertion order.
type Map struct {
	Keys   []Value
	Values []Value
}

// Function is a function closed over the scope it was defined in. Receiver
// is the value the function was accessed on, as in list.first, if any.
type Function struct {
	Definition *ast.FunctionDefinition
	Closure    *Scope
	Receiver   Value
}

// Structure is an instance of a structure definition. Its inputs and
// members are bound in Scope.
type Structure struct {
	Definition *ast.StructureDefinition
	Scope      *Scope
}

// StructureDefinition is the value of a structure's name, which can be
// evaluated to create a structure.
type StructureDefinition struct {
	Definition *ast.StructureDefinition
	Closure    *Scope
}

// StreamDefinition is the value of a stream's name, which can be evaluated
// to create a stream.
type StreamDefinition struct {
	Definition *ast.StreamDefinition
}

var (
	// True and False are the Boolean values.
	True  = &Boolean{Value: true}
	False = &Boolean{Value: false}
	// Nothing is the None value.
	Nothing = &None{}
)

// NewNumber returns a number with a unit.
func NewNumber(amount float64, u unit.Unit) *Number {
	return &Number{Amount: amount, Unit: u}
}

// NewText returns a text value.
func NewText(s string) *Text { return &Text{Value: s} }

// Bool returns True or False.
func Bool(b bool) *Boolean {
	if b {
		return True
	}
	return False
}

// NewSet returns a set of the distinct values among items, keeping the
// first occurrence of each.
func NewSet(items ...Value) *Set {
	s := &Set{}
	for _, v := range items {
		if !s.Has(v) {
			s.Items = append(s.Items, v)
		}
	}
	return s
}

// Has reports whether the set contains v.
func (s *Set) Has(v Value) bool {
	return index(s.Items, v) >= 0
}

// Get returns the value for key.
func (m *Map) Get(key Value) (Value, bool) {
	if i := index(m.Keys, key); i >= 0 {
		return m.Values[i], true
	}
	return nil, false
}

// With returns a copy of m with key set to v.
func (m *Map) With(key, v Value) *Map {
	out := &Map{
		Keys:   append([]Value(nil), m.Keys...),
		Values: append([]Value(nil), m.Values...),
	}
	if i := index(out.Keys, key); i >= 0 {
		out.Values[i] = v
		return out
	}
	out.Keys = append(out.Keys, key)
	out.Values = append(out.Values, v)
	return out
}

// Without returns a copy of m without key.
func (m *Map) Without(key Value) *Map {
	out := &Map{}
	for i, k := range m.Keys {
		if !Equal(k, key) {
			out.Keys = append(out.Keys, k)
			out.Values = append(out.Values, m.Values[i])
		}
	}
	return out
}

func index(items []Value, v Value) int {
	for i, item := range items {
		if Equal(item, v) {
			return i
		}
	}
	return -1
}

// Equal reports whether two values are equal. Numbers are equal when both
// amount and unit are; collections compare their contents; functions and
// structures compare by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *Number:
		b, ok := b.(*Number)
		return ok && a.Amount == b.Amount && a.Unit.Equal(b.Unit)
	case *Text:
		b, ok := b.(*Text)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *None:
		_, ok := b.(*None)
		return ok
	case *List:
		b, ok := b.(*List)
		return ok && equalItems(a.Items, b.Items)
	case *Set:
		b, ok := b.(*Set)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for _, v := range a.Items {
			if !b.Has(v) {
				return false
			}
		}
		return true
	case *Map:
		b, ok := b.(*Map)
		if !ok || len(a.Keys) != len(b.Keys) {
			return false
		}
		for i, k := range a.Keys {
			v, ok := b.Get(k)
			if !ok || !Equal(a.Values[i], v) {
				return false
			}
		}
		return true
	case *Stream:
		if b, ok := b.(*Stream); ok {
			return a == b
		}
		return Equal(a.Latest(), b)
	}
	return a == b
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// FormatNumber formats an amount without trailing zeros.
func FormatNumber(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func (v *Number) String() string { return FormatNumber(v.Amount) + v.Unit.String() }
func (v *Text) String() string   { return "'" + v.Value + "'" }
func (v *Boolean) String() string {
	if v.Value {
		return "⊤"
	}
	return "⊥"
}
func (*None) String() string   { return "ø" }
func (v *List) String() string { return "[" + join(v.Items) + "]" }
func (v *Set) String() string  { return "{" + join(v.Items) + "}" }

func (v *Map) String() string {
	if len(v.Keys) == 0 {
		return "{:}"
	}
	parts := make([]string, len(v.Keys))
	for i, k := range v.Keys {
		parts[i] = k.String() + ":" + v.Values[i].String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func (v *Function) String() string {
	if names := v.Definition.Names(); len(names) > 0 {
		return "ƒ " + names[0]
	}
	return "ƒ"
}

func (v *Structure) String() string {
	name := "•"
	if names := v.Definition.Names(); len(names) > 0 {
		name = names[0]
	}
	var fields []string
	for _, in := range v.Definition.Inputs {
		for _, n := range in.Names() {
			if f, ok := v.Scope.Own(n); ok {
				fields = append(fields, n+":"+f.String())
			}
			break
		}
	}
	return name + "(" + strings.Join(fields, " ") + ")"
}

func (v *StructureDefinition) String() string {
	if names := v.Definition.Names(); len(names) > 0 {
		return "•" + names[0]
	}
	return "•"
}

func (v *StreamDefinition) String() string {
	return "…" + strings.Join(v.Definition.Names(), ",")
}

func join(items []Value) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

func (*Number) value()              {}
func (*Text) value()                {}
func (*Boolean) value()             {}
func (*None) value()                {}
func (*List) value()                {}
func (*Set) value()                 {}
func (*Map) value()                 {}
func (*Function) value()            {}
func (*Structure) value()           {}
func (*StructureDefinition) value() {}
func (*StreamDefinition) value()    {}
