// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// Position is a 1-based line and grapheme column.
type Position struct {
	Line   int
	Column int
}

// Tree indexes an immutable root for parent lookups, preorder traversal and
// source positions. A Tree is safe for concurrent reads.
type Tree struct {
	Root Node

	parents   map[Node]Node
	order     []Node
	index     map[Node]int
	positions map[*Token]Position

	keysOnce sync.Once
	keys     map[Node]string
}

// NewTree indexes root.
func NewTree(root Node) *Tree {
	t := &Tree{
		Root:      root,
		parents:   map[Node]Node{},
		index:     map[Node]int{},
		positions: map[*Token]Position{},
	}
	var visit func(n, parent Node)
	visit = func(n, parent Node) {
		if parent != nil {
			t.parents[n] = parent
		}
		t.index[n] = len(t.order)
		t.order = append(t.order, n)
		for _, s := range n.Slots() {
			for _, c := range s {
				visit(c, n)
			}
		}
	}
	if root != nil {
		visit(root, nil)
	}

	pos := Position{Line: 1, Column: 1}
	advance := func(s string) {
		g := uniseg.NewGraphemes(s)
		for g.Next() {
			if strings.Contains(g.Str(), "\n") {
				pos.Line++
				pos.Column = 1
			} else {
				pos.Column++
			}
		}
	}
	for _, n := range t.order {
		tok, ok := n.(*Token)
		if !ok {
			continue
		}
		advance(tok.Space)
		t.positions[tok] = pos
		advance(tok.Text)
	}
	return t
}

// Contains reports whether n is part of the tree.
func (t *Tree) Contains(n Node) bool {
	_, ok := t.index[n]
	return ok
}

// Parent returns n's parent, or nil for the root and unknown nodes.
func (t *Tree) Parent(n Node) Node { return t.parents[n] }

// Ancestors returns n's ancestors, nearest first.
func (t *Tree) Ancestors(n Node) []Node {
	var out []Node
	for p := t.parents[n]; p != nil; p = t.parents[p] {
		out = append(out, p)
	}
	return out
}

// IsInside reports whether n is a strict descendant of ancestor.
func (t *Tree) IsInside(n, ancestor Node) bool {
	for p := t.parents[n]; p != nil; p = t.parents[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Nodes returns every node in preorder.
func (t *Tree) Nodes() []Node { return t.order }

// Precedes reports whether a comes before b in preorder.
func (t *Tree) Precedes(a, b Node) bool {
	ia, oka := t.index[a]
	ib, okb := t.index[b]
	return oka && okb && ia < ib
}

// FieldOf returns the grammar field of n's parent that holds n.
func (t *Tree) FieldOf(n Node) (Field, bool) {
	p := t.parents[n]
	if p == nil {
		return Field{}, false
	}
	grammar := p.Grammar()
	for i, s := range p.Slots() {
		for _, c := range s {
			if c == n {
				return grammar[i], true
			}
		}
	}
	return Field{}, false
}

// Position returns where n's first token begins. Nodes without tokens take
// the position of the nearest ancestor that has one.
func (t *Tree) Position(n Node) Position {
	for cur := n; cur != nil; cur = t.parents[cur] {
		if tok := FirstToken(cur); tok != nil {
			if p, ok := t.positions[tok]; ok {
				return p
			}
		}
	}
	return Position{Line: 1, Column: 1}
}

// TokenAt returns the token whose text covers the given position, if any.
func (t *Tree) TokenAt(p Position) *Token {
	for _, n := range t.order {
		tok, ok := n.(*Token)
		if !ok {
			continue
		}
		start := t.positions[tok]
		if start.Line == p.Line && p.Column >= start.Column && p.Column < start.Column+tok.Length() {
			return tok
		}
	}
	return nil
}

// EnclosingDefinitions returns the definitions that contain n, nearest
// first.
func (t *Tree) EnclosingDefinitions(n Node) []Definition {
	var out []Definition
	for _, a := range t.Ancestors(n) {
		if d, ok := a.(Definition); ok {
			out = append(out, d)
		}
	}
	return out
}
