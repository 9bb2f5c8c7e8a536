// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a Unicode-aware lexer for wordplay.
//
// Scanning is total: any input produces a token sequence ending in an End
// token. Whitespace is never emitted on its own; it is attached to the token
// that follows it, and the End token carries any trailing whitespace, so
// concatenating every token's Space and Text reproduces the input exactly.
package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/token"
)

// frame is one level of the text/code delimiter stack.
type frame struct {
	closer rune // for text frames, the closing delimiter
	code   bool
}

// Scanner tokenizes wordplay source.
type Scanner struct {
	src    string
	pos    int
	stack  []frame
	prev   token.Kind
	peeked *ast.Token
	done   bool
}

// New creates a new Scanner over src.
func New(src string) *Scanner {
	return &Scanner{src: src, prev: token.End}
}

// Tokenize scans all of src.
func Tokenize(src string) []*ast.Token {
	s := New(src)
	var out []*ast.Token
	for {
		t := s.Next()
		out = append(out, t)
		if t.Category == token.End {
			return out
		}
	}
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() *ast.Token {
	if s.peeked == nil {
		s.peeked = s.Next()
	}
	return s.peeked
}

// Next returns the next token. After the End token it keeps returning End
// tokens with no text.
func (s *Scanner) Next() *ast.Token {
	if s.peeked != nil {
		t := s.peeked
		s.peeked = nil
		return t
	}
	if s.done {
		return ast.NewToken(token.End, "")
	}
	t := s.scan()
	s.prev = t.Category
	if t.Category == token.End {
		s.done = true
	}
	return t
}

func (s *Scanner) top() (frame, bool) {
	if len(s.stack) == 0 {
		return frame{}, false
	}
	return s.stack[len(s.stack)-1], true
}

func (s *Scanner) pop() { s.stack = s.stack[:len(s.stack)-1] }

func (s *Scanner) rest() string { return s.src[s.pos:] }

func (s *Scanner) peekRune(offset int) rune {
	i := s.pos
	for ; offset > 0 && i < len(s.src); offset-- {
		_, size := utf8.DecodeRuneInString(s.src[i:])
		i += size
	}
	if i >= len(s.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.src[i:])
	return r
}

func (s *Scanner) emit(kind token.Kind, length int, space string) *ast.Token {
	text := s.src[s.pos : s.pos+length]
	s.pos += length
	return ast.NewSpacedToken(kind, text, space)
}

func (s *Scanner) scan() *ast.Token {
	if f, ok := s.top(); ok && !f.code {
		if t := s.scanText(f); t != nil {
			return t
		}
	}

	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.rest())
		if !unicode.IsSpace(r) {
			break
		}
		s.pos += size
	}
	space := s.src[start:s.pos]
	if s.pos >= len(s.src) {
		return ast.NewSpacedToken(token.End, "", space)
	}

	rest := s.rest()
	r, size := utf8.DecodeRuneInString(rest)

	// Inside code embedded in text, a backslash returns to the text.
	if f, ok := s.top(); ok && f.code && r == token.GlyphCode {
		s.pop()
		return s.emit(token.Code, size, space)
	}

	if r == token.GlyphDoc {
		end := strings.IndexRune(rest[size:], token.GlyphDoc)
		if end < 0 {
			return s.emit(token.Doc, len(rest), space)
		}
		return s.emit(token.Doc, size+end+size, space)
	}

	if strings.HasPrefix(rest, token.StreamASCII) {
		return s.emit(token.Stream, len(token.StreamASCII), space)
	}
	if strings.HasPrefix(rest, token.ConvertASCII) {
		return s.emit(token.Convert, len(token.ConvertASCII), space)
	}

	if n := s.numberLength(); n > 0 {
		return s.emit(token.Number, n, space)
	}

	if closer, ok := token.TextDelimiters[r]; ok {
		s.stack = append(s.stack, frame{closer: closer})
		return s.emit(token.TextOpen, size, space)
	}

	for _, op := range token.Operators {
		if strings.HasPrefix(rest, op) {
			return s.emit(token.Operator, len(op), space)
		}
	}

	if r == token.GlyphPlaceholder && !isNameRune(s.peekRune(1)) {
		return s.emit(token.Placeholder, size, space)
	}

	if kind, ok := token.KindFromGlyph(r); ok && r != token.GlyphPlaceholder {
		return s.emit(kind, size, space)
	}

	if n := nameLength(rest); n > 0 {
		return s.emit(token.Name, n, space)
	}

	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
	if len(cluster) == 0 {
		cluster = rest[:size]
	}
	return s.emit(token.Unknown, len(cluster), space)
}

// scanText scans inside a text literal: words up to the closing delimiter, a
// backslash opening embedded code, or a line break. Text left open at a line
// break or the end of input is abandoned and normal scanning resumes.
func (s *Scanner) scanText(f frame) *ast.Token {
	rest := s.rest()
	end := 0
	for end < len(rest) {
		r, size := utf8.DecodeRuneInString(rest[end:])
		if r == f.closer || r == token.GlyphCode || r == '\n' {
			break
		}
		end += size
	}
	if end > 0 {
		return s.emit(token.Words, end, "")
	}
	if len(rest) == 0 {
		s.pop()
		return nil
	}
	r, size := utf8.DecodeRuneInString(rest)
	switch r {
	case f.closer:
		s.pop()
		return s.emit(token.TextClose, size, "")
	case token.GlyphCode:
		s.stack = append(s.stack, frame{code: true})
		return s.emit(token.Code, size, "")
	}
	s.pop()
	return nil
}

// numberLength returns the byte length of a number at the current position:
// digits with an optional fraction, π or ∞, optionally negated when the
// previous token cannot end an operand.
func (s *Scanner) numberLength() int {
	rest := s.rest()
	n := 0
	if strings.HasPrefix(rest, "-") && !s.prev.EndsOperand() {
		n = 1
	}
	body := rest[n:]
	r, size := utf8.DecodeRuneInString(body)
	if r == token.GlyphPi || r == token.GlyphInfinity {
		return n + size
	}
	digits := leadingDigits(body)
	if digits == 0 {
		return 0
	}
	n += digits
	if strings.HasPrefix(rest[n:], ".") {
		if frac := leadingDigits(rest[n+1:]); frac > 0 {
			n += 1 + frac
		}
	}
	return n
}

func leadingDigits(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func isNameRune(r rune) bool {
	if r == utf8.RuneError || unicode.IsSpace(r) {
		return false
	}
	return r == token.GlyphPlaceholder || !token.IsReserved(r)
}

// nameLength returns the byte length of a name: a non-digit first rune
// followed by any runes that are not whitespace or reserved. A lone
// underscore is a placeholder, not a name.
func nameLength(s string) int {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError || unicode.IsDigit(first) || !isNameRune(first) {
		return 0
	}
	n := size
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !isNameRune(r) {
			break
		}
		n += size
	}
	return n
}
