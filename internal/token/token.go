// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines wordplay token kinds and reserved glyph constants.
package token

// Kind represents a wordplay token category.
type Kind int

const (
	End Kind = iota
	Unknown

	Name
	Number
	Operator

	Bind      // :
	Separator // ,

	EvalOpen      // (
	EvalClose     // )
	ListOpen      // [
	ListClose     // ]
	SetOpen       // {
	SetClose      // }
	TypeVarsOpen  // ⸨
	TypeVarsClose // ⸩

	TextOpen
	TextClose
	Words
	Code // \ between text and an embedded expression

	Access      // .
	Function    // ƒ
	Type        // •
	Convert     // →
	Stream      // …
	Change      // ∆
	Previous    // ←
	Conditional // ?
	Borrow      // ↓
	Share       // ↑
	Doc         // ¶...¶
	True        // ⊤
	False       // ⊥
	None        // ø
	Initial     // ◆
	Placeholder // _
	NumberType  // #
)

// Reserved glyphs.
const (
	GlyphBind          = ':'
	GlyphSeparator     = ','
	GlyphEvalOpen      = '('
	GlyphEvalClose     = ')'
	GlyphListOpen      = '['
	GlyphListClose     = ']'
	GlyphSetOpen       = '{'
	GlyphSetClose      = '}'
	GlyphTypeVarsOpen  = '⸨'
	GlyphTypeVarsClose = '⸩'
	GlyphCode          = '\\'
	GlyphAccess        = '.'
	GlyphFunction      = 'ƒ'
	GlyphType          = '•'
	GlyphConvert       = '→'
	GlyphStream        = '…'
	GlyphChange        = '∆'
	GlyphPrevious      = '←'
	GlyphConditional   = '?'
	GlyphBorrow        = '↓'
	GlyphShare         = '↑'
	GlyphDoc           = '¶'
	GlyphTrue          = '⊤'
	GlyphFalse         = '⊥'
	GlyphNone          = 'ø'
	GlyphInitial       = '◆'
	GlyphPlaceholder   = '_'
	GlyphNumberType    = '#'
	GlyphPi            = 'π'
	GlyphInfinity      = '∞'
)

// Multi-rune ASCII spellings that are lexed as a single glyph.
const (
	StreamASCII  = "..."
	ConvertASCII = "->"
)

// Operators lists every operator spelling, longest first so that the lexer can
// take the longest match.
var Operators = []string{
	"<=", ">=", "!=",
	"+", "-", "×", "·", "*", "÷", "/", "%", "^",
	"<", ">", "≤", "≥", "=", "≠",
	"&", "|", "~", "¬", "√",
}

// UnaryOperators are the operators that may prefix an operand.
var UnaryOperators = map[string]bool{
	"-": true,
	"~": true,
	"¬": true,
	"√": true,
}

// TextDelimiters maps each text opening glyph to its closing glyph.
var TextDelimiters = map[rune]rune{
	'\'': '\'',
	'"':  '"',
	'‘':  '’',
	'“':  '”',
	'«':  '»',
	'「':  '」',
}

// IsTextCloser reports whether r closes some text delimiter.
func IsTextCloser(r rune) bool {
	for _, c := range TextDelimiters {
		if c == r {
			return true
		}
	}
	return false
}

var glyphKinds = map[rune]Kind{
	GlyphBind:          Bind,
	GlyphSeparator:     Separator,
	GlyphEvalOpen:      EvalOpen,
	GlyphEvalClose:     EvalClose,
	GlyphListOpen:      ListOpen,
	GlyphListClose:     ListClose,
	GlyphSetOpen:       SetOpen,
	GlyphSetClose:      SetClose,
	GlyphTypeVarsOpen:  TypeVarsOpen,
	GlyphTypeVarsClose: TypeVarsClose,
	GlyphCode:          Code,
	GlyphAccess:        Access,
	GlyphFunction:      Function,
	GlyphType:          Type,
	GlyphConvert:       Convert,
	GlyphStream:        Stream,
	GlyphChange:        Change,
	GlyphPrevious:      Previous,
	GlyphConditional:   Conditional,
	GlyphBorrow:        Borrow,
	GlyphShare:         Share,
	GlyphTrue:          True,
	GlyphFalse:         False,
	GlyphNone:          None,
	GlyphInitial:       Initial,
	GlyphPlaceholder:   Placeholder,
	GlyphNumberType:    NumberType,
}

// KindFromGlyph returns the token kind for a single reserved glyph.
func KindFromGlyph(r rune) (Kind, bool) {
	k, ok := glyphKinds[r]
	return k, ok
}

// IsReserved returns true if the rune cannot appear inside a name.
func IsReserved(r rune) bool {
	if _, ok := glyphKinds[r]; ok {
		return true
	}
	if _, ok := TextDelimiters[r]; ok {
		return true
	}
	if IsTextCloser(r) || r == GlyphDoc || r == GlyphPi || r == GlyphInfinity {
		return true
	}
	for _, op := range Operators {
		if len([]rune(op)) == 1 && []rune(op)[0] == r {
			return true
		}
	}
	return false
}

// String returns the name of a token kind.
func (k Kind) String() string {
	switch k {
	case End:
		return "END"
	case Unknown:
		return "UNKNOWN"
	case Name:
		return "NAME"
	case Number:
		return "NUMBER"
	case Operator:
		return "OPERATOR"
	case Bind:
		return "BIND"
	case Separator:
		return "SEPARATOR"
	case EvalOpen:
		return "EVAL_OPEN"
	case EvalClose:
		return "EVAL_CLOSE"
	case ListOpen:
		return "LIST_OPEN"
	case ListClose:
		return "LIST_CLOSE"
	case SetOpen:
		return "SET_OPEN"
	case SetClose:
		return "SET_CLOSE"
	case TypeVarsOpen:
		return "TYPE_VARS_OPEN"
	case TypeVarsClose:
		return "TYPE_VARS_CLOSE"
	case TextOpen:
		return "TEXT_OPEN"
	case TextClose:
		return "TEXT_CLOSE"
	case Words:
		return "WORDS"
	case Code:
		return "CODE"
	case Access:
		return "ACCESS"
	case Function:
		return "FUNCTION"
	case Type:
		return "TYPE"
	case Convert:
		return "CONVERT"
	case Stream:
		return "STREAM"
	case Change:
		return "CHANGE"
	case Previous:
		return "PREVIOUS"
	case Conditional:
		return "CONDITIONAL"
	case Borrow:
		return "BORROW"
	case Share:
		return "SHARE"
	case Doc:
		return "DOC"
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	case None:
		return "NONE"
	case Initial:
		return "INITIAL"
	case Placeholder:
		return "PLACEHOLDER"
	case NumberType:
		return "NUMBER_TYPE"
	}
	return "UNKNOWN"
}

// EndsOperand returns true if a token of this kind can end an operand. The
// lexer uses it to decide whether a following '-' is binary or unary.
func (k Kind) EndsOperand() bool {
	switch k {
	case Name, Number, EvalClose, ListClose, SetClose, TextClose, True, False, None, Placeholder, Initial:
		return true
	}
	return false
}

// IsCloser returns true for delimiters that close a construct.
func (k Kind) IsCloser() bool {
	switch k {
	case EvalClose, ListClose, SetClose, TypeVarsClose, TextClose:
		return true
	}
	return false
}
