// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an edit's target is not part of the root.
var ErrNotFound = errors.New("node not found in tree")

// Caret anchors an editor caret after an edit: Offset graphemes into the text
// of Token. A nil Token places the caret at the start of the source.
type Caret struct {
	Token  *Token
	Offset int
}

// Edit is the result of a functional update: the new root and where the
// caret should go.
type Edit struct {
	Root  Node
	Caret Caret
}

// Replace returns a copy of root with target replaced. A nil replacement
// removes target from an optional or list field. Nodes off the path from
// root to target are shared with the original tree and keep their IDs.
func Replace(root, target, replacement Node) (Edit, error) {
	if target == root && replacement == nil {
		return Edit{}, errors.New("cannot remove the root")
	}
	newRoot, found, err := update(root, target, func(Node) (Node, error) { return replacement, nil })
	if err != nil {
		return Edit{}, err
	}
	if !found {
		return Edit{}, ErrNotFound
	}
	return Edit{Root: newRoot, Caret: caretAfter(root, target, replacement)}, nil
}

// Splice returns a copy of root in which the named list field of parent has
// remove nodes starting at index replaced by insert.
func Splice(root, parent Node, field string, index, remove int, insert ...Node) (Edit, error) {
	var anchor Node
	newRoot, found, err := update(root, parent, func(p Node) (Node, error) {
		grammar, slots := p.Grammar(), p.Slots()
		for i, f := range grammar {
			if f.Name != field {
				continue
			}
			s := slots[i]
			if index < 0 || index > len(s) || remove < 0 || index+remove > len(s) {
				return nil, fmt.Errorf("splice %s[%d:%d] out of range (length %d)", field, index, index+remove, len(s))
			}
			next := make(Slot, 0, len(s)-remove+len(insert))
			next = append(next, s[:index]...)
			next = append(next, insert...)
			next = append(next, s[index+remove:]...)
			if err := checkSlot(f, next); err != nil {
				return nil, err
			}
			if index > 0 {
				anchor = s[index-1]
			} else {
				for _, earlier := range slots[:i] {
					for _, c := range earlier {
						if FirstToken(c) != nil {
							anchor = c
						}
					}
				}
			}
			ns := append([]Slot(nil), slots...)
			ns[i] = next
			return p.withSlots(uint64(p.ID()), ns), nil
		}
		return nil, fmt.Errorf("%s has no field %q", p.Kind(), field)
	})
	if err != nil {
		return Edit{}, err
	}
	if !found {
		return Edit{}, ErrNotFound
	}
	var caret Caret
	if len(insert) > 0 {
		caret = endOf(LastToken(insert[len(insert)-1]))
	} else if anchor != nil {
		caret = endOf(LastToken(anchor))
	} else {
		caret = endOf(tokenBefore(root, parent))
	}
	return Edit{Root: newRoot, Caret: caret}, nil
}

func update(n, target Node, change func(Node) (Node, error)) (Node, bool, error) {
	if n == target {
		r, err := change(n)
		return r, true, err
	}
	slots := n.Slots()
	grammar := n.Grammar()
	for i, s := range slots {
		for j, c := range s {
			r, found, err := update(c, target, change)
			if !found {
				continue
			}
			if err != nil {
				return nil, true, err
			}
			if r == c {
				return n, true, nil
			}
			next := make(Slot, 0, len(s))
			next = append(next, s[:j]...)
			if r != nil {
				next = append(next, r)
			}
			next = append(next, s[j+1:]...)
			if err := checkSlot(grammar[i], next); err != nil {
				return nil, true, err
			}
			ns := append([]Slot(nil), slots...)
			ns[i] = next
			return n.withSlots(uint64(n.ID()), ns), true, nil
		}
	}
	return n, false, nil
}

func caretAfter(root, target, replacement Node) Caret {
	if replacement != nil {
		if t := LastToken(replacement); t != nil {
			return endOf(t)
		}
	}
	return endOf(tokenBefore(root, target))
}

func endOf(t *Token) Caret {
	if t == nil {
		return Caret{}
	}
	return Caret{Token: t, Offset: t.Length()}
}

// tokenBefore returns the last token preceding target in root.
func tokenBefore(root, target Node) *Token {
	first := FirstToken(target)
	var prev *Token
	done := false
	Walk(root, func(n Node) bool {
		if done {
			return false
		}
		if n == target {
			done = true
			return false
		}
		if t, ok := n.(*Token); ok {
			if t == first {
				done = true
				return false
			}
			prev = t
		}
		return true
	})
	return prev
}
