// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"nickandperla.net/wordplay/internal/token"
)

// TypeInputs supplies explicit type arguments to an evaluation or a named
// type.
type TypeInputs struct {
	base
	Open  *Token
	Types []TypeNode
	Close *Token
}

var typeInputsGrammar = []Field{
	tokenField("open", One, token.TypeVarsOpen),
	nodeField("types", Many, AnyType),
	tokenField("close", Optional, token.TypeVarsClose),
}

func (n *TypeInputs) Kind() Kind       { return KindTypeInputs }
func (n *TypeInputs) Grammar() []Field { return typeInputsGrammar }
func (n *TypeInputs) Slots() []Slot {
	return []Slot{opt(n.Open), many(n.Types), opt(n.Close)}
}
func (n *TypeInputs) withSlots(id uint64, s []Slot) Node {
	return &TypeInputs{base: base{id}, Open: get[*Token](s[0]), Types: list[TypeNode](s[1]), Close: get[*Token](s[2])}
}

// Evaluate applies a function, structure or stream definition to inputs.
// Inputs are positional expressions or named Binds.
type Evaluate struct {
	base
	Function Expression
	Types    *TypeInputs
	Open     *Token
	Inputs   []Expression
	Close    *Token
}

var evaluateGrammar = []Field{
	nodeField("function", One, AnyExpression),
	nodeField("types", Optional, KindTypeInputs),
	tokenField("open", One, token.EvalOpen),
	nodeField("inputs", Many, AnyExpression),
	tokenField("close", Optional, token.EvalClose),
}

func (n *Evaluate) Kind() Kind       { return KindEvaluate }
func (n *Evaluate) Grammar() []Field { return evaluateGrammar }
func (n *Evaluate) Slots() []Slot {
	return []Slot{opt(n.Function), opt(n.Types), opt(n.Open), many(n.Inputs), opt(n.Close)}
}
func (n *Evaluate) withSlots(id uint64, s []Slot) Node {
	return &Evaluate{
		base:     base{id},
		Function: get[Expression](s[0]),
		Types:    get[*TypeInputs](s[1]),
		Open:     get[*Token](s[2]),
		Inputs:   list[Expression](s[3]),
		Close:    get[*Token](s[4]),
	}
}
func (n *Evaluate) expression() {}

// TypeArguments returns the explicit type inputs, if any.
func (n *Evaluate) TypeArguments() []TypeNode {
	if n.Types == nil {
		return nil
	}
	return n.Types.Types
}

// BinaryOperation applies an infix operator. Operations associate strictly
// left to right with no precedence.
type BinaryOperation struct {
	base
	Left     Expression
	Operator *Token
	Right    Expression
}

var binaryGrammar = []Field{
	nodeField("left", One, AnyExpression),
	tokenField("operator", One, token.Operator),
	nodeField("right", One, AnyExpression),
}

func (n *BinaryOperation) Kind() Kind       { return KindBinaryOperation }
func (n *BinaryOperation) Grammar() []Field { return binaryGrammar }
func (n *BinaryOperation) Slots() []Slot {
	return []Slot{opt(n.Left), opt(n.Operator), opt(n.Right)}
}
func (n *BinaryOperation) withSlots(id uint64, s []Slot) Node {
	return &BinaryOperation{base: base{id}, Left: get[Expression](s[0]), Operator: get[*Token](s[1]), Right: get[Expression](s[2])}
}
func (n *BinaryOperation) expression() {}

// OperatorName returns the operator's glyph.
func (n *BinaryOperation) OperatorName() string { return n.Operator.Text }

// UnaryOperation applies a prefix operator.
type UnaryOperation struct {
	base
	Operator *Token
	Operand  Expression
}

var unaryGrammar = []Field{
	tokenField("operator", One, token.Operator),
	nodeField("operand", One, AnyExpression),
}

func (n *UnaryOperation) Kind() Kind       { return KindUnaryOperation }
func (n *UnaryOperation) Grammar() []Field { return unaryGrammar }
func (n *UnaryOperation) Slots() []Slot    { return []Slot{opt(n.Operator), opt(n.Operand)} }
func (n *UnaryOperation) withSlots(id uint64, s []Slot) Node {
	return &UnaryOperation{base: base{id}, Operator: get[*Token](s[0]), Operand: get[Expression](s[1])}
}
func (n *UnaryOperation) expression() {}

// OperatorName returns the operator's glyph.
func (n *UnaryOperation) OperatorName() string { return n.Operator.Text }

// Conditional chooses between two expressions.
type Conditional struct {
	base
	Condition Expression
	Question  *Token
	Yes       Expression
	No        Expression
}

var conditionalGrammar = []Field{
	required(nodeField("condition", One, AnyExpression), RequireBoolean),
	tokenField("question", One, token.Conditional),
	nodeField("yes", One, AnyExpression),
	nodeField("no", One, AnyExpression),
}

func (n *Conditional) Kind() Kind       { return KindConditional }
func (n *Conditional) Grammar() []Field { return conditionalGrammar }
func (n *Conditional) Slots() []Slot {
	return []Slot{opt(n.Condition), opt(n.Question), opt(n.Yes), opt(n.No)}
}
func (n *Conditional) withSlots(id uint64, s []Slot) Node {
	return &Conditional{base: base{id}, Condition: get[Expression](s[0]), Question: get[*Token](s[1]), Yes: get[Expression](s[2]), No: get[Expression](s[3])}
}
func (n *Conditional) expression() {}

// Reference names a definition in scope.
type Reference struct {
	base
	Name *Token
}

var referenceGrammar = []Field{
	tokenField("name", One, token.Name, token.Operator),
}

func (n *Reference) Kind() Kind       { return KindReference }
func (n *Reference) Grammar() []Field { return referenceGrammar }
func (n *Reference) Slots() []Slot    { return []Slot{opt(n.Name)} }
func (n *Reference) withSlots(id uint64, s []Slot) Node {
	return &Reference{base: base{id}, Name: get[*Token](s[0])}
}
func (n *Reference) expression() {}

// Identifier returns the referenced name.
func (n *Reference) Identifier() string { return n.Name.Text }

// PropertyReference reads a member of a structure value.
type PropertyReference struct {
	base
	Structure Expression
	Dot       *Token
	Name      *Token
}

var propertyGrammar = []Field{
	nodeField("structure", One, AnyExpression),
	tokenField("dot", One, token.Access),
	tokenField("name", Optional, token.Name, token.Operator),
}

func (n *PropertyReference) Kind() Kind       { return KindPropertyReference }
func (n *PropertyReference) Grammar() []Field { return propertyGrammar }
func (n *PropertyReference) Slots() []Slot {
	return []Slot{opt(n.Structure), opt(n.Dot), opt(n.Name)}
}
func (n *PropertyReference) withSlots(id uint64, s []Slot) Node {
	return &PropertyReference{base: base{id}, Structure: get[Expression](s[0]), Dot: get[*Token](s[1]), Name: get[*Token](s[2])}
}
func (n *PropertyReference) expression() {}

// Property returns the accessed member name, or "".
func (n *PropertyReference) Property() string {
	if n.Name == nil {
		return ""
	}
	return n.Name.Text
}

// ListAccess indexes a list. Indices start at 1.
type ListAccess struct {
	base
	List  Expression
	Open  *Token
	Index Expression
	Close *Token
}

var listAccessGrammar = []Field{
	nodeField("list", One, AnyExpression),
	tokenField("open", One, token.ListOpen),
	required(nodeField("index", One, AnyExpression), RequireNumber),
	tokenField("close", Optional, token.ListClose),
}

func (n *ListAccess) Kind() Kind       { return KindListAccess }
func (n *ListAccess) Grammar() []Field { return listAccessGrammar }
func (n *ListAccess) Slots() []Slot {
	return []Slot{opt(n.List), opt(n.Open), opt(n.Index), opt(n.Close)}
}
func (n *ListAccess) withSlots(id uint64, s []Slot) Node {
	return &ListAccess{base: base{id}, List: get[Expression](s[0]), Open: get[*Token](s[1]), Index: get[Expression](s[2]), Close: get[*Token](s[3])}
}
func (n *ListAccess) expression() {}

// SetOrMapAccess checks set membership or reads a map value.
type SetOrMapAccess struct {
	base
	Collection Expression
	Open       *Token
	Key        Expression
	Close      *Token
}

var setOrMapAccessGrammar = []Field{
	nodeField("collection", One, AnyExpression),
	tokenField("open", One, token.SetOpen),
	nodeField("key", One, AnyExpression),
	tokenField("close", Optional, token.SetClose),
}

func (n *SetOrMapAccess) Kind() Kind       { return KindSetOrMapAccess }
func (n *SetOrMapAccess) Grammar() []Field { return setOrMapAccessGrammar }
func (n *SetOrMapAccess) Slots() []Slot {
	return []Slot{opt(n.Collection), opt(n.Open), opt(n.Key), opt(n.Close)}
}
func (n *SetOrMapAccess) withSlots(id uint64, s []Slot) Node {
	return &SetOrMapAccess{base: base{id}, Collection: get[Expression](s[0]), Open: get[*Token](s[1]), Key: get[Expression](s[2]), Close: get[*Token](s[3])}
}
func (n *SetOrMapAccess) expression() {}

// Is tests a value's type.
type Is struct {
	base
	Expression Expression
	Dot        *Token
	Type       TypeNode
}

var isGrammar = []Field{
	nodeField("expression", One, AnyExpression),
	tokenField("dot", One, token.Type),
	nodeField("type", One, AnyType),
}

func (n *Is) Kind() Kind       { return KindIs }
func (n *Is) Grammar() []Field { return isGrammar }
func (n *Is) Slots() []Slot    { return []Slot{opt(n.Expression), opt(n.Dot), opt(n.Type)} }
func (n *Is) withSlots(id uint64, s []Slot) Node {
	return &Is{base: base{id}, Expression: get[Expression](s[0]), Dot: get[*Token](s[1]), Type: get[TypeNode](s[2])}
}
func (n *Is) expression() {}

// Convert converts a value to another type through declared conversions.
type Convert struct {
	base
	Expression Expression
	Arrow      *Token
	Type       TypeNode
}

var convertGrammar = []Field{
	nodeField("expression", One, AnyExpression),
	tokenField("arrow", One, token.Convert),
	nodeField("type", One, AnyType),
}

func (n *Convert) Kind() Kind       { return KindConvert }
func (n *Convert) Grammar() []Field { return convertGrammar }
func (n *Convert) Slots() []Slot    { return []Slot{opt(n.Expression), opt(n.Arrow), opt(n.Type)} }
func (n *Convert) withSlots(id uint64, s []Slot) Node {
	return &Convert{base: base{id}, Expression: get[Expression](s[0]), Arrow: get[*Token](s[1]), Type: get[TypeNode](s[2])}
}
func (n *Convert) expression() {}

// Reaction produces a stream: the initial value first, then the next value
// whenever the condition holds on a re-run.
type Reaction struct {
	base
	Initial   Expression
	Dots      *Token
	Condition Expression
	NextDots  *Token
	Next      Expression
}

var reactionGrammar = []Field{
	nodeField("initial", One, AnyExpression),
	tokenField("dots", One, token.Stream),
	required(nodeField("condition", One, AnyExpression), RequireBoolean),
	tokenField("nextDots", Optional, token.Stream),
	nodeField("next", Optional, AnyExpression),
}

func (n *Reaction) Kind() Kind       { return KindReaction }
func (n *Reaction) Grammar() []Field { return reactionGrammar }
func (n *Reaction) Slots() []Slot {
	return []Slot{opt(n.Initial), opt(n.Dots), opt(n.Condition), opt(n.NextDots), opt(n.Next)}
}
func (n *Reaction) withSlots(id uint64, s []Slot) Node {
	return &Reaction{
		base:      base{id},
		Initial:   get[Expression](s[0]),
		Dots:      get[*Token](s[1]),
		Condition: get[Expression](s[2]),
		NextDots:  get[*Token](s[3]),
		Next:      get[Expression](s[4]),
	}
}
func (n *Reaction) expression() {}

// Changed is true when the stream changed since the previous run.
type Changed struct {
	base
	Change *Token
	Stream Expression
}

var changedGrammar = []Field{
	tokenField("change", One, token.Change),
	nodeField("stream", One, AnyExpression),
}

func (n *Changed) Kind() Kind       { return KindChanged }
func (n *Changed) Grammar() []Field { return changedGrammar }
func (n *Changed) Slots() []Slot    { return []Slot{opt(n.Change), opt(n.Stream)} }
func (n *Changed) withSlots(id uint64, s []Slot) Node {
	return &Changed{base: base{id}, Change: get[*Token](s[0]), Stream: get[Expression](s[1])}
}
func (n *Changed) expression() {}

// Previous reads an older value of a stream; ← 1 s is the value before the
// latest.
type Previous struct {
	base
	Arrow  *Token
	Index  Expression
	Stream Expression
}

var previousGrammar = []Field{
	tokenField("previous", One, token.Previous),
	required(nodeField("index", One, AnyExpression), RequireNumber),
	nodeField("stream", One, AnyExpression),
}

func (n *Previous) Kind() Kind       { return KindPrevious }
func (n *Previous) Grammar() []Field { return previousGrammar }
func (n *Previous) Slots() []Slot    { return []Slot{opt(n.Arrow), opt(n.Index), opt(n.Stream)} }
func (n *Previous) withSlots(id uint64, s []Slot) Node {
	return &Previous{base: base{id}, Arrow: get[*Token](s[0]), Index: get[Expression](s[1]), Stream: get[Expression](s[2])}
}
func (n *Previous) expression() {}

// This refers to the enclosing structure, or in a reaction to the reaction's
// latest value.
type This struct {
	base
	Dot *Token
}

var thisGrammar = []Field{tokenField("dot", One, token.Access)}

func (n *This) Kind() Kind       { return KindThis }
func (n *This) Grammar() []Field { return thisGrammar }
func (n *This) Slots() []Slot    { return []Slot{opt(n.Dot)} }
func (n *This) withSlots(id uint64, s []Slot) Node {
	return &This{base: base{id}, Dot: get[*Token](s[0])}
}
func (n *This) expression() {}

// Initial is true during a program's first evaluation.
type Initial struct {
	base
	Diamond *Token
}

var initialGrammar = []Field{tokenField("diamond", One, token.Initial)}

func (n *Initial) Kind() Kind       { return KindInitial }
func (n *Initial) Grammar() []Field { return initialGrammar }
func (n *Initial) Slots() []Slot    { return []Slot{opt(n.Diamond)} }
func (n *Initial) withSlots(id uint64, s []Slot) Node {
	return &Initial{base: base{id}, Diamond: get[*Token](s[0])}
}
func (n *Initial) expression() {}

// Placeholder stands for an expression yet to be written.
type Placeholder struct {
	base
	Underscore *Token
	Dot        *Token
	Type       TypeNode
}

var placeholderGrammar = []Field{
	tokenField("placeholder", One, token.Placeholder),
	tokenField("dot", Optional, token.Type),
	nodeField("type", Optional, AnyType),
}

func (n *Placeholder) Kind() Kind       { return KindPlaceholder }
func (n *Placeholder) Grammar() []Field { return placeholderGrammar }
func (n *Placeholder) Slots() []Slot {
	return []Slot{opt(n.Underscore), opt(n.Dot), opt(n.Type)}
}
func (n *Placeholder) withSlots(id uint64, s []Slot) Node {
	return &Placeholder{base: base{id}, Underscore: get[*Token](s[0]), Dot: get[*Token](s[1]), Type: get[TypeNode](s[2])}
}
func (n *Placeholder) expression() {}

// NativeExpression is the body of a built-in function or conversion. Name
// selects the host implementation.
type NativeExpression struct {
	base
	Name string
	Type TypeNode
}

var nativeGrammar = []Field{
	nodeField("type", One, AnyType),
}

func (n *NativeExpression) Kind() Kind       { return KindNativeExpression }
func (n *NativeExpression) Grammar() []Field { return nativeGrammar }
func (n *NativeExpression) Slots() []Slot    { return []Slot{opt(n.Type)} }
func (n *NativeExpression) withSlots(id uint64, s []Slot) Node {
	return &NativeExpression{base: base{id}, Name: n.Name, Type: get[TypeNode](s[0])}
}
func (n *NativeExpression) expression() {}

// Unparsable wraps tokens that did not match any expression.
type Unparsable struct {
	base
	Tokens []*Token
}

var unparsableGrammar = []Field{
	{Name: "tokens", Arity: Many, Kinds: []Kind{KindToken}},
}

func (n *Unparsable) Kind() Kind       { return KindUnparsable }
func (n *Unparsable) Grammar() []Field { return unparsableGrammar }
func (n *Unparsable) Slots() []Slot    { return []Slot{many(n.Tokens)} }
func (n *Unparsable) withSlots(id uint64, s []Slot) Node {
	return &Unparsable{base: base{id}, Tokens: list[*Token](s[0])}
}
func (n *Unparsable) expression() {}
