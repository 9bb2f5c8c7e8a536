package ast

import (
	"math"
	"strconv"
	"strings"

	"nickandperla.net/wordplay/internal/token"
	"nickandperla.net/wordplay/internal/unit"
)

// NumberLiteral is a number with an optional unit, such as 5ms.
type NumberLiteral struct {
	base
	Number *Token
	Unit   *Unit
}

var numberGrammar = []Field{
	tokenField("number", One, token.Number),
	nodeField("unit", Optional, KindUnit),
}

func (n *NumberLiteral) Kind() Kind       { return KindNumberLiteral }
func (n *NumberLiteral) Grammar() []Field { return numberGrammar }
func (n *NumberLiteral) Slots() []Slot    { return []Slot{opt(n.Number), opt(n.Unit)} }
func (n *NumberLiteral) withSlots(id uint64, s []Slot) Node {
	return &NumberLiteral{base: base{id}, Number: get[*Token](s[0]), Unit: get[*Unit](s[1])}
}
func (n *NumberLiteral) expression() {}

// Value returns the literal's numeric value.
func (n *NumberLiteral) Value() float64 { return ParseNumber(n.Number.Text) }

// Measure returns the literal's unit.
func (n *NumberLiteral) Measure() unit.Unit {
	if n.Unit == nil {
		return unit.None
	}
	return n.Unit.Measure()
}

// ParseNumber converts number token text to a float, accepting π and ∞ and
// a leading minus sign.
func ParseNumber(text string) float64 {
	sign := 1.0
	if strings.HasPrefix(text, "-") {
		sign = -1
		text = text[1:]
	}
	switch text {
	case string(token.GlyphPi):
		return sign * math.Pi
	case string(token.GlyphInfinity):
		return sign * math.Inf(1)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.NaN()
	}
	return sign * f
}

// Unit is the unit suffix of a number literal or number type, such as m/s^2.
type Unit struct {
	base
	Tokens []*Token
}

var unitGrammar = []Field{
	tokenField("parts", Many, token.Name, token.Operator, token.Number),
}

func (n *Unit) Kind() Kind       { return KindUnit }
func (n *Unit) Grammar() []Field { return unitGrammar }
func (n *Unit) Slots() []Slot    { return []Slot{many(n.Tokens)} }
func (n *Unit) withSlots(id uint64, s []Slot) Node {
	return &Unit{base: base{id}, Tokens: list[*Token](s[0])}
}

// Measure parses the unit's tokens.
func (n *Unit) Measure() unit.Unit {
	var sb strings.Builder
	for _, t := range n.Tokens {
		sb.WriteString(t.Text)
	}
	return unit.Parse(sb.String())
}

// TextLiteral is a quoted piece of text.
type TextLiteral struct {
	base
	Open  *Token
	Words *Token
	Close *Token
}

var textGrammar = []Field{
	tokenField("open", One, token.TextOpen),
	tokenField("words", Optional, token.Words),
	tokenField("close", Optional, token.TextClose),
}

func (n *TextLiteral) Kind() Kind       { return KindTextLiteral }
func (n *TextLiteral) Grammar() []Field { return textGrammar }
func (n *TextLiteral) Slots() []Slot    { return []Slot{opt(n.Open), opt(n.Words), opt(n.Close)} }
func (n *TextLiteral) withSlots(id uint64, s []Slot) Node {
	return &TextLiteral{base: base{id}, Open: get[*Token](s[0]), Words: get[*Token](s[1]), Close: get[*Token](s[2])}
}
func (n *TextLiteral) expression() {}

// Value returns the text between the delimiters.
func (n *TextLiteral) Value() string {
	if n.Words == nil {
		return ""
	}
	return n.Words.Text
}

// Template is text with embedded expressions: 'sum \a + b\ done'. Parts are
// Words and Code tokens interleaved with expressions.
type Template struct {
	base
	Open  *Token
	Parts []Node
	Close *Token
}

var templateGrammar = []Field{
	tokenField("open", One, token.TextOpen),
	{Name: "parts", Arity: Many, Kinds: []Kind{KindToken, AnyExpression}, Tokens: []token.Kind{token.Words, token.Code}},
	tokenField("close", Optional, token.TextClose),
}

func (n *Template) Kind() Kind       { return KindTemplate }
func (n *Template) Grammar() []Field { return templateGrammar }
func (n *Template) Slots() []Slot    { return []Slot{opt(n.Open), Slot(append([]Node(nil), n.Parts...)), opt(n.Close)} }
func (n *Template) withSlots(id uint64, s []Slot) Node {
	return &Template{base: base{id}, Open: get[*Token](s[0]), Parts: []Node(s[1]), Close: get[*Token](s[2])}
}
func (n *Template) expression() {}

// Expressions returns the embedded expressions in order.
func (n *Template) Expressions() []Expression {
	return list[Expression](Slot(n.Parts))
}

// BooleanLiteral is ⊤ or ⊥.
type BooleanLiteral struct {
	base
	Literal *Token
}

var booleanGrammar = []Field{tokenField("value", One, token.True, token.False)}

func (n *BooleanLiteral) Kind() Kind       { return KindBooleanLiteral }
func (n *BooleanLiteral) Grammar() []Field { return booleanGrammar }
func (n *BooleanLiteral) Slots() []Slot    { return []Slot{opt(n.Literal)} }
func (n *BooleanLiteral) withSlots(id uint64, s []Slot) Node {
	return &BooleanLiteral{base: base{id}, Literal: get[*Token](s[0])}
}
func (n *BooleanLiteral) expression() {}

// Value reports whether the literal is ⊤.
func (n *BooleanLiteral) Value() bool { return n.Literal.Is(token.True) }

// NoneLiteral is ø.
type NoneLiteral struct {
	base
	None *Token
}

var noneGrammar = []Field{tokenField("none", One, token.None)}

func (n *NoneLiteral) Kind() Kind       { return KindNoneLiteral }
func (n *NoneLiteral) Grammar() []Field { return noneGrammar }
func (n *NoneLiteral) Slots() []Slot    { return []Slot{opt(n.None)} }
func (n *NoneLiteral) withSlots(id uint64, s []Slot) Node {
	return &NoneLiteral{base: base{id}, None: get[*Token](s[0])}
}
func (n *NoneLiteral) expression() {}

// ListLiteral is [a b c].
type ListLiteral struct {
	base
	Open   *Token
	Values []Expression
	Close  *Token
}

var listGrammar = []Field{
	tokenField("open", One, token.ListOpen),
	nodeField("values", Many, AnyExpression),
	tokenField("close", Optional, token.ListClose),
}

func (n *ListLiteral) Kind() Kind       { return KindListLiteral }
func (n *ListLiteral) Grammar() []Field { return listGrammar }
func (n *ListLiteral) Slots() []Slot    { return []Slot{opt(n.Open), many(n.Values), opt(n.Close)} }
func (n *ListLiteral) withSlots(id uint64, s []Slot) Node {
	return &ListLiteral{base: base{id}, Open: get[*Token](s[0]), Values: list[Expression](s[1]), Close: get[*Token](s[2])}
}
func (n *ListLiteral) expression() {}

// SetLiteral is {a b c}.
type SetLiteral struct {
	base
	Open   *Token
	Values []Expression
	Close  *Token
}

var setGrammar = []Field{
	tokenField("open", One, token.SetOpen),
	nodeField("values", Many, AnyExpression),
	tokenField("close", Optional, token.SetClose),
}

func (n *SetLiteral) Kind() Kind       { return KindSetLiteral }
func (n *SetLiteral) Grammar() []Field { return setGrammar }
func (n *SetLiteral) Slots() []Slot    { return []Slot{opt(n.Open), many(n.Values), opt(n.Close)} }
func (n *SetLiteral) withSlots(id uint64, s []Slot) Node {
	return &SetLiteral{base: base{id}, Open: get[*Token](s[0]), Values: list[Expression](s[1]), Close: get[*Token](s[2])}
}
func (n *SetLiteral) expression() {}

// MapLiteral is {k:v k2:v2}, or {:} when empty.
type MapLiteral struct {
	base
	Open    *Token
	Entries []*KeyValue
	Bind    *Token
	Close   *Token
}

var mapGrammar = []Field{
	tokenField("open", One, token.SetOpen),
	nodeField("entries", Many, KindKeyValue),
	tokenField("bind", Optional, token.Bind),
	tokenField("close", Optional, token.SetClose),
}

func (n *MapLiteral) Kind() Kind       { return KindMapLiteral }
func (n *MapLiteral) Grammar() []Field { return mapGrammar }
func (n *MapLiteral) Slots() []Slot {
	return []Slot{opt(n.Open), many(n.Entries), opt(n.Bind), opt(n.Close)}
}
func (n *MapLiteral) withSlots(id uint64, s []Slot) Node {
	return &MapLiteral{base: base{id}, Open: get[*Token](s[0]), Entries: list[*KeyValue](s[1]), Bind: get[*Token](s[2]), Close: get[*Token](s[3])}
}
func (n *MapLiteral) expression() {}

// KeyValue is one entry of a map literal.
type KeyValue struct {
	base
	Key   Expression
	Bind  *Token
	Value Expression
}

var keyValueGrammar = []Field{
	nodeField("key", One, AnyExpression),
	tokenField("bind", Optional, token.Bind),
	nodeField("value", Optional, AnyExpression),
}

func (n *KeyValue) Kind() Kind       { return KindKeyValue }
func (n *KeyValue) Grammar() []Field { return keyValueGrammar }
func (n *KeyValue) Slots() []Slot    { return []Slot{opt(n.Key), opt(n.Bind), opt(n.Value)} }
func (n *KeyValue) withSlots(id uint64, s []Slot) Node {
	return &KeyValue{base: base{id}, Key: get[Expression](s[0]), Bind: get[*Token](s[1]), Value: get[Expression](s[2])}
}
