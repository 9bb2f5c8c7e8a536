// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

// Scope binds names to values. Scopes chain to a parent; lookups search
// outward. Bindings are held in a persistent tree, so the state of a scope
// at any moment can be kept and later restored in constant time.
type Scope struct {
	parent   *Scope
	bindings *iradix.Tree[Value]
	// Fallback resolves names this scope does not bind before the parent
	// is searched, such as the members of a method's receiver.
	Fallback func(name string) (Value, bool)
}

// Bindings is a snapshot of a scope's own bindings.
type Bindings struct {
	tree *iradix.Tree[Value]
}

// NewScope returns an empty scope inside parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, bindings: iradix.New[Value]()}
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Bind binds name to v in this scope.
func (s *Scope) Bind(name string, v Value) {
	s.bindings, _, _ = s.bindings.Insert([]byte(name), v)
}

// Own returns the value bound to name in this scope only.
func (s *Scope) Own(name string) (Value, bool) {
	return s.bindings.Get([]byte(name))
}

// Lookup returns the value bound to name here or in an enclosing scope.
func (s *Scope) Lookup(name string) (Value, bool) {
	for c := s; c != nil; c = c.parent {
		if v, ok := c.bindings.Get([]byte(name)); ok {
			return v, true
		}
		if c.Fallback != nil {
			if v, ok := c.Fallback(name); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// Names returns the names bound in this scope, in order.
func (s *Scope) Names() []string {
	names := make([]string, 0, s.bindings.Len())
	s.bindings.Root().Walk(func(k []byte, _ Value) bool {
		names = append(names, string(k))
		return false
	})
	return names
}

// Snapshot returns the scope's current bindings.
func (s *Scope) Snapshot() Bindings { return Bindings{tree: s.bindings} }

// Restore returns the scope to a snapshot taken from it.
func (s *Scope) Restore(b Bindings) {
	if b.tree != nil {
		s.bindings = b.tree
	}
}
