// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package types

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/basis"
)

// Borrower supplies the trees of other sources in a project for ↓ borrows.
type Borrower interface {
	Source(name string) (*ast.Tree, bool)
	Sources() []string
}

// Context is the state of one analysis pass: a stack of nodes whose types
// are being computed, used to detect cycles, and caches of computed types,
// resolved definitions and narrowed types. A Context must not be shared
// between concurrent passes, and must be discarded after any edit.
type Context struct {
	Source   *ast.Tree
	Basis    *basis.Basis
	Borrower Borrower

	trees       []*ast.Tree
	stack       []ast.Node
	visiting    map[ast.Node]int
	types       map[ast.Node]Type
	definitions map[definitionKey]ast.Definition
	narrowed    map[ast.Node]Type
}

type definitionKey struct {
	node ast.Node
	name string
}

// Option configures a Context.
type Option func(*Context)

// WithBasis sets the basis; the default basis is used otherwise.
func WithBasis(b *basis.Basis) Option {
	return func(c *Context) { c.Basis = b }
}

// WithBorrower sets where ↓ borrows are resolved.
func WithBorrower(b Borrower) Option {
	return func(c *Context) { c.Borrower = b }
}

// NewContext creates a fresh context for analyzing source.
func NewContext(source *ast.Tree, opts ...Option) *Context {
	c := &Context{
		Source:      source,
		visiting:    map[ast.Node]int{},
		types:       map[ast.Node]Type{},
		definitions: map[definitionKey]ast.Definition{},
		narrowed:    map[ast.Node]Type{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Basis == nil {
		c.Basis = basis.Default()
	}
	return c
}

// AddTree makes another tree's nodes known to the context, such as a
// borrowed source.
func (c *Context) AddTree(t *ast.Tree) {
	for _, existing := range c.trees {
		if existing == t {
			return
		}
	}
	c.trees = append(c.trees, t)
}

// Tree returns the tree that contains n, searching the source, added trees
// and the basis.
func (c *Context) Tree(n ast.Node) *ast.Tree {
	if c.Source != nil && c.Source.Contains(n) {
		return c.Source
	}
	for _, t := range c.trees {
		if t.Contains(n) {
			return t
		}
	}
	for _, t := range c.Basis.Trees() {
		if t.Contains(n) {
			return t
		}
	}
	return nil
}

// Parent returns n's parent in whichever tree contains it.
func (c *Context) Parent(n ast.Node) ast.Node {
	if t := c.Tree(n); t != nil {
		return t.Parent(n)
	}
	return nil
}

// Enter pushes n on the visit stack. It returns false, leaving the stack
// unchanged, if n is already being visited.
func (c *Context) Enter(n ast.Node) bool {
	if c.visiting[n] > 0 {
		return false
	}
	c.visiting[n]++
	c.stack = append(c.stack, n)
	return true
}

// Exit pops n from the visit stack.
func (c *Context) Exit(n ast.Node) {
	if len(c.stack) > 0 && c.stack[len(c.stack)-1] == n {
		c.stack = c.stack[:len(c.stack)-1]
	}
	if c.visiting[n] > 0 {
		c.visiting[n]--
	}
}

// Visiting reports whether n is on the visit stack.
func (c *Context) Visiting(n ast.Node) bool { return c.visiting[n] > 0 }

// Depth returns the size of the visit stack.
func (c *Context) Depth() int { return len(c.stack) }

// CachedType returns a previously computed type.
func (c *Context) CachedType(n ast.Node) (Type, bool) {
	t, ok := c.types[n]
	return t, ok
}

// CacheType records a node's computed type.
func (c *Context) CacheType(n ast.Node, t Type) { c.types[n] = t }

// CachedDefinition returns a previous resolution of name at n, which may
// be nil if the name did not resolve.
func (c *Context) CachedDefinition(n ast.Node, name string) (ast.Definition, bool) {
	d, ok := c.definitions[definitionKey{n, name}]
	return d, ok
}

// CacheDefinition records the resolution of name at n.
func (c *Context) CacheDefinition(n ast.Node, name string, d ast.Definition) {
	c.definitions[definitionKey{n, name}] = d
}

// Narrowed returns the type a guarded conditional narrowed n to.
func (c *Context) Narrowed(n ast.Node) (Type, bool) {
	t, ok := c.narrowed[n]
	return t, ok
}

// Narrow records a narrowed type for n.
func (c *Context) Narrow(n ast.Node, t Type) { c.narrowed[n] = t }
