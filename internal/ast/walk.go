// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Walk visits n and its descendants in preorder. Returning false from visit
// skips the node's children.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, s := range n.Slots() {
		for _, c := range s {
			Walk(c, visit)
		}
	}
}

// Tokens returns the tokens under n in source order.
func Tokens(n Node) []*Token {
	var out []*Token
	Walk(n, func(c Node) bool {
		if t, ok := c.(*Token); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// FirstToken returns the first token under n, or nil.
func FirstToken(n Node) *Token {
	var first *Token
	Walk(n, func(c Node) bool {
		if first != nil {
			return false
		}
		if t, ok := c.(*Token); ok {
			first = t
			return false
		}
		return true
	})
	return first
}

// LastToken returns the last token under n, or nil.
func LastToken(n Node) *Token {
	ts := Tokens(n)
	if len(ts) == 0 {
		return nil
	}
	return ts[len(ts)-1]
}

// SourceText reproduces the exact source of n, including the whitespace
// preceding each token. For a parsed Program it returns the parsed text.
func SourceText(n Node) string {
	var sb strings.Builder
	for _, t := range Tokens(n) {
		sb.WriteString(t.Space)
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Text is like SourceText but omits the whitespace before the first token.
func Text(n Node) string {
	return strings.TrimPrefix(SourceText(n), spaceOf(FirstToken(n)))
}

func spaceOf(t *Token) string {
	if t == nil {
		return ""
	}
	return t.Space
}

// Validate checks that every node's slots match its grammar: one slot per
// field, arity respected and every child accepted by its field.
func Validate(n Node) error {
	var result *multierror.Error
	Walk(n, func(c Node) bool {
		grammar, slots := c.Grammar(), c.Slots()
		if len(grammar) != len(slots) {
			result = multierror.Append(result, fmt.Errorf("%s: %d fields but %d slots", c.Kind(), len(grammar), len(slots)))
			return true
		}
		for i, f := range grammar {
			if err := checkSlot(f, slots[i]); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", c.Kind(), err))
			}
		}
		return true
	})
	return result.ErrorOrNil()
}

func checkSlot(f Field, s Slot) error {
	switch f.Arity {
	case One:
		if len(s) != 1 {
			return fmt.Errorf("field %s requires one node, has %d", f.Name, len(s))
		}
	case Optional:
		if len(s) > 1 {
			return fmt.Errorf("field %s allows at most one node, has %d", f.Name, len(s))
		}
	}
	for _, c := range s {
		if c == nil {
			return fmt.Errorf("field %s holds a nil node", f.Name)
		}
		if !f.Accepts(c) {
			return fmt.Errorf("field %s does not accept %s", f.Name, c.Kind())
		}
	}
	return nil
}
