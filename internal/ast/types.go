package ast

import (
	"nickandperla.net/wordplay/internal/token"
	"nickandperla.net/wordplay/internal/unit"
)

// NumberType is #, optionally with a unit.
type NumberType struct {
	base
	Hash *Token
	Unit *Unit
}

var numberTypeGrammar = []Field{
	tokenField("hash", One, token.NumberType),
	nodeField("unit", Optional, KindUnit),
}

func (n *NumberType) Kind() Kind       { return KindNumberType }
func (n *NumberType) Grammar() []Field { return numberTypeGrammar }
func (n *NumberType) Slots() []Slot    { return []Slot{opt(n.Hash), opt(n.Unit)} }
func (n *NumberType) withSlots(id uint64, s []Slot) Node {
	return &NumberType{base: base{id}, Hash: get[*Token](s[0]), Unit: get[*Unit](s[1])}
}
func (n *NumberType) typeNode() {}

// Measure returns the declared unit, or unit.None.
func (n *NumberType) Measure() unit.Unit {
	if n.Unit == nil {
		return unit.None
	}
	return n.Unit.Measure()
}

// TextType is ''.
type TextType struct {
	base
	Open  *Token
	Close *Token
}

var textTypeGrammar = []Field{
	tokenField("open", One, token.TextOpen),
	tokenField("close", Optional, token.TextClose),
}

func (n *TextType) Kind() Kind       { return KindTextType }
func (n *TextType) Grammar() []Field { return textTypeGrammar }
func (n *TextType) Slots() []Slot    { return []Slot{opt(n.Open), opt(n.Close)} }
func (n *TextType) withSlots(id uint64, s []Slot) Node {
	return &TextType{base: base{id}, Open: get[*Token](s[0]), Close: get[*Token](s[1])}
}
func (n *TextType) typeNode() {}

// BooleanType is ?.
type BooleanType struct {
	base
	Question *Token
}

var booleanTypeGrammar = []Field{tokenField("question", One, token.Conditional)}

func (n *BooleanType) Kind() Kind       { return KindBooleanType }
func (n *BooleanType) Grammar() []Field { return booleanTypeGrammar }
func (n *BooleanType) Slots() []Slot    { return []Slot{opt(n.Question)} }
func (n *BooleanType) withSlots(id uint64, s []Slot) Node {
	return &BooleanType{base: base{id}, Question: get[*Token](s[0])}
}
func (n *BooleanType) typeNode() {}

// NoneType is ø in a type position.
type NoneType struct {
	base
	None *Token
}

var noneTypeGrammar = []Field{tokenField("none", One, token.None)}

func (n *NoneType) Kind() Kind       { return KindNoneType }
func (n *NoneType) Grammar() []Field { return noneTypeGrammar }
func (n *NoneType) Slots() []Slot    { return []Slot{opt(n.None)} }
func (n *NoneType) withSlots(id uint64, s []Slot) Node {
	return &NoneType{base: base{id}, None: get[*Token](s[0])}
}
func (n *NoneType) typeNode() {}

// ListType is [T].
type ListType struct {
	base
	Open  *Token
	Item  TypeNode
	Close *Token
}

var listTypeGrammar = []Field{
	tokenField("open", One, token.ListOpen),
	nodeField("type", Optional, AnyType),
	tokenField("close", Optional, token.ListClose),
}

func (n *ListType) Kind() Kind       { return KindListType }
func (n *ListType) Grammar() []Field { return listTypeGrammar }
func (n *ListType) Slots() []Slot    { return []Slot{opt(n.Open), opt(n.Item), opt(n.Close)} }
func (n *ListType) withSlots(id uint64, s []Slot) Node {
	return &ListType{base: base{id}, Open: get[*Token](s[0]), Item: get[TypeNode](s[1]), Close: get[*Token](s[2])}
}
func (n *ListType) typeNode() {}

// SetType is {T}.
type SetType struct {
	base
	Open  *Token
	Key   TypeNode
	Close *Token
}

var setTypeGrammar = []Field{
	tokenField("open", One, token.SetOpen),
	nodeField("key", Optional, AnyType),
	tokenField("close", Optional, token.SetClose),
}

func (n *SetType) Kind() Kind       { return KindSetType }
func (n *SetType) Grammar() []Field { return setTypeGrammar }
func (n *SetType) Slots() []Slot    { return []Slot{opt(n.Open), opt(n.Key), opt(n.Close)} }
func (n *SetType) withSlots(id uint64, s []Slot) Node {
	return &SetType{base: base{id}, Open: get[*Token](s[0]), Key: get[TypeNode](s[1]), Close: get[*Token](s[2])}
}
func (n *SetType) typeNode() {}

// MapType is {K:V}.
type MapType struct {
	base
	Open  *Token
	Key   TypeNode
	Bind  *Token
	Value TypeNode
	Close *Token
}

var mapTypeGrammar = []Field{
	tokenField("open", One, token.SetOpen),
	nodeField("key", Optional, AnyType),
	tokenField("bind", One, token.Bind),
	nodeField("value", Optional, AnyType),
	tokenField("close", Optional, token.SetClose),
}

func (n *MapType) Kind() Kind       { return KindMapType }
func (n *MapType) Grammar() []Field { return mapTypeGrammar }
func (n *MapType) Slots() []Slot {
	return []Slot{opt(n.Open), opt(n.Key), opt(n.Bind), opt(n.Value), opt(n.Close)}
}
func (n *MapType) withSlots(id uint64, s []Slot) Node {
	return &MapType{base: base{id}, Open: get[*Token](s[0]), Key: get[TypeNode](s[1]), Bind: get[*Token](s[2]), Value: get[TypeNode](s[3]), Close: get[*Token](s[4])}
}
func (n *MapType) typeNode() {}

// FunctionType is ƒ(a•T) U.
type FunctionType struct {
	base
	Fun      *Token
	TypeVars *TypeVariables
	Open     *Token
	Inputs   []*Bind
	Close    *Token
	Output   TypeNode
}

var functionTypeGrammar = []Field{
	tokenField("fun", One, token.Function),
	nodeField("typeVars", Optional, KindTypeVariables),
	tokenField("open", One, token.EvalOpen),
	nodeField("inputs", Many, KindBind),
	tokenField("close", Optional, token.EvalClose),
	nodeField("output", Optional, AnyType),
}

func (n *FunctionType) Kind() Kind       { return KindFunctionType }
func (n *FunctionType) Grammar() []Field { return functionTypeGrammar }
func (n *FunctionType) Slots() []Slot {
	return []Slot{opt(n.Fun), opt(n.TypeVars), opt(n.Open), many(n.Inputs), opt(n.Close), opt(n.Output)}
}
func (n *FunctionType) withSlots(id uint64, s []Slot) Node {
	return &FunctionType{
		base:     base{id},
		Fun:      get[*Token](s[0]),
		TypeVars: get[*TypeVariables](s[1]),
		Open:     get[*Token](s[2]),
		Inputs:   list[*Bind](s[3]),
		Close:    get[*Token](s[4]),
		Output:   get[TypeNode](s[5]),
	}
}
func (n *FunctionType) typeNode() {}

// NameType refers to a structure, type variable or stream by name.
type NameType struct {
	base
	Name  *Token
	Types *TypeInputs
}

var nameTypeGrammar = []Field{
	tokenField("name", One, token.Name),
	nodeField("types", Optional, KindTypeInputs),
}

func (n *NameType) Kind() Kind       { return KindNameType }
func (n *NameType) Grammar() []Field { return nameTypeGrammar }
func (n *NameType) Slots() []Slot    { return []Slot{opt(n.Name), opt(n.Types)} }
func (n *NameType) withSlots(id uint64, s []Slot) Node {
	return &NameType{base: base{id}, Name: get[*Token](s[0]), Types: get[*TypeInputs](s[1])}
}
func (n *NameType) typeNode() {}

// Identifier returns the referenced type name.
func (n *NameType) Identifier() string { return n.Name.Text }

// TypeArguments returns the explicit type inputs, if any.
func (n *NameType) TypeArguments() []TypeNode {
	if n.Types == nil {
		return nil
	}
	return n.Types.Types
}

// UnionType is A | B.
type UnionType struct {
	base
	Left  TypeNode
	Or    *Token
	Right TypeNode
}

var unionTypeGrammar = []Field{
	nodeField("left", One, AnyType),
	tokenField("or", One, token.Operator),
	nodeField("right", One, AnyType),
}

func (n *UnionType) Kind() Kind       { return KindUnionType }
func (n *UnionType) Grammar() []Field { return unionTypeGrammar }
func (n *UnionType) Slots() []Slot    { return []Slot{opt(n.Left), opt(n.Or), opt(n.Right)} }
func (n *UnionType) withSlots(id uint64, s []Slot) Node {
	return &UnionType{base: base{id}, Left: get[TypeNode](s[0]), Or: get[*Token](s[1]), Right: get[TypeNode](s[2])}
}
func (n *UnionType) typeNode() {}

// TypePlaceholder is _ in a type position.
type TypePlaceholder struct {
	base
	Underscore *Token
}

var typePlaceholderGrammar = []Field{tokenField("placeholder", One, token.Placeholder)}

func (n *TypePlaceholder) Kind() Kind       { return KindTypePlaceholder }
func (n *TypePlaceholder) Grammar() []Field { return typePlaceholderGrammar }
func (n *TypePlaceholder) Slots() []Slot    { return []Slot{opt(n.Underscore)} }
func (n *TypePlaceholder) withSlots(id uint64, s []Slot) Node {
	return &TypePlaceholder{base: base{id}, Underscore: get[*Token](s[0])}
}
func (n *TypePlaceholder) typeNode() {}

// UnparsableType wraps tokens that did not match any type.
type UnparsableType struct {
	base
	Tokens []*Token
}

func (n *UnparsableType) Kind() Kind       { return KindUnparsableType }
func (n *UnparsableType) Grammar() []Field { return unparsableGrammar }
func (n *UnparsableType) Slots() []Slot    { return []Slot{many(n.Tokens)} }
func (n *UnparsableType) withSlots(id uint64, s []Slot) Node {
	return &UnparsableType{base: base{id}, Tokens: list[*Token](s[0])}
}
func (n *UnparsableType) typeNode() {}
