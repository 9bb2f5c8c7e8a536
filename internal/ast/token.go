// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"github.com/rivo/uniseg"

	"nickandperla.net/wordplay/internal/token"
)

// Token is an immutable leaf: a lexical category, its exact source text and
// the whitespace that preceded it.
type Token struct {
	base
	Category token.Kind
	Text     string
	Space    string
}

// NewToken creates a token with no preceding whitespace.
func NewToken(kind token.Kind, text string) *Token {
	return &Token{Category: kind, Text: text}
}

// NewSpacedToken creates a token preceded by whitespace.
func NewSpacedToken(kind token.Kind, text, space string) *Token {
	return &Token{Category: kind, Text: text, Space: space}
}

func (t *Token) Kind() Kind       { return KindToken }
func (t *Token) Grammar() []Field { return nil }
func (t *Token) Slots() []Slot    { return nil }

func (t *Token) withSlots(id uint64, _ []Slot) Node {
	return &Token{base: base{id: id}, Category: t.Category, Text: t.Text, Space: t.Space}
}

// Is reports whether the token has the given kind.
func (t *Token) Is(k token.Kind) bool { return t != nil && t.Category == k }

// TokenKind returns the lexical category.
func (t *Token) TokenKind() token.Kind { return t.Category }

// Length returns the number of grapheme clusters in the token's text.
func (t *Token) Length() int { return uniseg.GraphemeClusterCount(t.Text) }

// Width returns the display width of the token's text in monospace columns.
func (t *Token) Width() int { return uniseg.StringWidth(t.Text) }

// HasNewline reports whether the preceding whitespace contains a line break.
func (t *Token) HasNewline() bool {
	for i := 0; i < len(t.Space); i++ {
		if t.Space[i] == '\n' {
			return true
		}
	}
	return false
}

// WithSpace returns a copy of the token with different preceding whitespace.
func (t *Token) WithSpace(space string) *Token {
	return &Token{base: base{id: t.rawID()}, Category: t.Category, Text: t.Text, Space: space}
}

func (t *Token) String() string { return t.Category.String() + "(" + t.Text + ")" }
