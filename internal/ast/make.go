// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"strconv"
	"strings"
	"unicode"

	"nickandperla.net/wordplay/internal/token"
)

// The Make functions build well-formed nodes programmatically, with single
// spaces between tokens where the grammar needs them. They are used by the
// basis and by edits that synthesize code.

func tok(kind token.Kind, text string) *Token { return NewToken(kind, text) }

func spaced[T Node](n T) T {
	first := FirstToken(n)
	if first == nil || first.Space != "" {
		return n
	}
	e, err := Replace(n, first, first.WithSpace(" "))
	if err != nil {
		return n
	}
	out, ok := e.Root.(T)
	if !ok {
		return n
	}
	return out
}

func spacedAll[T Node](ns []T, skipFirst bool) []T {
	out := make([]T, len(ns))
	for i, n := range ns {
		if i == 0 && skipFirst {
			out[i] = n
			continue
		}
		out[i] = spaced(n)
	}
	return out
}

func nameTokens(names string) []*Token {
	var out []*Token
	for i, name := range strings.Split(names, ",") {
		if i > 0 {
			out = append(out, tok(token.Separator, ","))
		}
		kind := token.Name
		if isOperatorName(name) {
			kind = token.Operator
		}
		out = append(out, tok(kind, name))
	}
	return out
}

func isOperatorName(name string) bool {
	for _, op := range token.Operators {
		if op == name {
			return true
		}
	}
	return false
}

// MakeReference builds a reference to name.
func MakeReference(name string) *Reference {
	return &Reference{Name: tok(token.Name, name)}
}

// MakeNumber builds a number literal from its text and unit, such as
// MakeNumber("5", "ms").
func MakeNumber(text, unit string) *NumberLiteral {
	n := &NumberLiteral{Number: tok(token.Number, text)}
	if unit != "" {
		n.Unit = MakeUnit(unit)
	}
	return n
}

// MakeNumberValue builds a number literal for f.
func MakeNumberValue(f float64, unit string) *NumberLiteral {
	return MakeNumber(strconv.FormatFloat(f, 'f', -1, 64), unit)
}

// MakeUnit splits unit text into name, operator and exponent tokens.
func MakeUnit(text string) *Unit {
	var tokens []*Token
	var cur strings.Builder
	kind := token.Name
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, tok(kind, cur.String()))
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '/' || r == '·' || r == '^':
			flush()
			tokens = append(tokens, tok(token.Operator, string(r)))
		case unicode.IsDigit(r):
			if kind != token.Number {
				flush()
				kind = token.Number
			}
			cur.WriteRune(r)
		default:
			if kind != token.Name {
				flush()
				kind = token.Name
			}
			cur.WriteRune(r)
		}
	}
	flush()
	return &Unit{Tokens: tokens}
}

// MakeText builds a single-quoted text literal.
func MakeText(s string) *TextLiteral {
	t := &TextLiteral{Open: tok(token.TextOpen, "'"), Close: tok(token.TextClose, "'")}
	if s != "" {
		t.Words = tok(token.Words, s)
	}
	return t
}

// MakeBoolean builds ⊤ or ⊥.
func MakeBoolean(b bool) *BooleanLiteral {
	if b {
		return &BooleanLiteral{Literal: tok(token.True, string(token.GlyphTrue))}
	}
	return &BooleanLiteral{Literal: tok(token.False, string(token.GlyphFalse))}
}

// MakeNone builds ø.
func MakeNone() *NoneLiteral {
	return &NoneLiteral{None: tok(token.None, string(token.GlyphNone))}
}

// MakeList builds a list literal.
func MakeList(values ...Expression) *ListLiteral {
	return &ListLiteral{
		Open:   tok(token.ListOpen, "["),
		Values: spacedAll(values, true),
		Close:  tok(token.ListClose, "]"),
	}
}

// MakeEvaluate builds fn(inputs...).
func MakeEvaluate(fn Expression, inputs ...Expression) *Evaluate {
	return &Evaluate{
		Function: fn,
		Open:     tok(token.EvalOpen, "("),
		Inputs:   spacedAll(inputs, true),
		Close:    tok(token.EvalClose, ")"),
	}
}

// MakeBinary builds left op right.
func MakeBinary(left Expression, op string, right Expression) *BinaryOperation {
	return &BinaryOperation{
		Left:     left,
		Operator: NewSpacedToken(token.Operator, op, " "),
		Right:    spaced(right),
	}
}

// MakeUnary builds op operand.
func MakeUnary(op string, operand Expression) *UnaryOperation {
	return &UnaryOperation{Operator: tok(token.Operator, op), Operand: operand}
}

// MakeConditional builds condition ? yes no.
func MakeConditional(condition, yes, no Expression) *Conditional {
	return &Conditional{
		Condition: condition,
		Question:  NewSpacedToken(token.Conditional, string(token.GlyphConditional), " "),
		Yes:       spaced(yes),
		No:        spaced(no),
	}
}

// MakeConvert builds expression → type.
func MakeConvert(expression Expression, t TypeNode) *Convert {
	return &Convert{
		Expression: expression,
		Arrow:      NewSpacedToken(token.Convert, string(token.GlyphConvert), " "),
		Type:       spaced(t),
	}
}

// MakeIs builds expression•type.
func MakeIs(expression Expression, t TypeNode) *Is {
	return &Is{Expression: expression, Dot: tok(token.Type, string(token.GlyphType)), Type: t}
}

// MakeBlock builds a parenthesized block.
func MakeBlock(statements ...Expression) *Block {
	return &Block{
		Open:       tok(token.EvalOpen, "("),
		Statements: spacedAll(statements, true),
		Close:      tok(token.EvalClose, ")"),
	}
}

func makeLines[T Node](statements []T) []T {
	out := make([]T, len(statements))
	for i, s := range statements {
		out[i] = s
		if i == 0 {
			continue
		}
		if first := FirstToken(s); first != nil && first.Space == "" {
			if e, err := Replace(s, first, first.WithSpace("\n")); err == nil {
				if v, ok := e.Root.(T); ok {
					out[i] = v
				}
			}
		}
	}
	return out
}

// MakeProgram builds a program whose root block holds the statements, one
// per line.
func MakeProgram(statements ...Expression) *Program {
	return &Program{
		Block: &Block{Statements: makeLines(statements)},
		End:   tok(token.End, ""),
	}
}

// MakeBind builds names•type: value. names may list aliases separated by
// commas; t and value may be nil.
func MakeBind(names string, t TypeNode, value Expression) *Bind {
	b := &Bind{NameTokens: nameTokens(names)}
	if t != nil {
		b.Dot = tok(token.Type, string(token.GlyphType))
		b.Type = t
	}
	if value != nil {
		b.Colon = tok(token.Bind, ":")
		b.Value = value
	}
	return b
}

// MakeTypeVariables builds ⸨A B⸩.
func MakeTypeVariables(names ...string) *TypeVariables {
	if len(names) == 0 {
		return nil
	}
	vars := make([]*TypeVariable, len(names))
	for i, n := range names {
		space := ""
		if i > 0 {
			space = " "
		}
		vars[i] = &TypeVariable{Name: NewSpacedToken(token.Name, n, space)}
	}
	return &TypeVariables{
		Open:      tok(token.TypeVarsOpen, string(token.GlyphTypeVarsOpen)),
		Variables: vars,
		Close:     tok(token.TypeVarsClose, string(token.GlyphTypeVarsClose)),
	}
}

// MakeTypeInputs builds ⸨T U⸩.
func MakeTypeInputs(types ...TypeNode) *TypeInputs {
	if len(types) == 0 {
		return nil
	}
	return &TypeInputs{
		Open:  tok(token.TypeVarsOpen, string(token.GlyphTypeVarsOpen)),
		Types: spacedAll(types, true),
		Close: tok(token.TypeVarsClose, string(token.GlyphTypeVarsClose)),
	}
}

// MakeFunction builds ƒ names⸨vars⸩(inputs) •output body.
func MakeFunction(names string, typeVars []string, inputs []*Bind, output TypeNode, body Expression) *FunctionDefinition {
	f := &FunctionDefinition{
		Fun:      tok(token.Function, string(token.GlyphFunction)),
		TypeVars: MakeTypeVariables(typeVars...),
		Open:     tok(token.EvalOpen, "("),
		Inputs:   spacedAll(inputs, true),
		Close:    tok(token.EvalClose, ")"),
	}
	if names != "" {
		f.NameTokens = nameTokens(names)
		f.NameTokens[0] = f.NameTokens[0].WithSpace(" ")
	}
	if output != nil {
		f.Dot = NewSpacedToken(token.Type, string(token.GlyphType), " ")
		f.Output = output
	}
	if body != nil {
		f.Body = spaced(body)
	}
	return f
}

// MakeStructure builds •name⸨vars⸩(inputs) ( members ).
func MakeStructure(name string, typeVars []string, inputs []*Bind, members ...Expression) *StructureDefinition {
	s := &StructureDefinition{
		Dot:        tok(token.Type, string(token.GlyphType)),
		NameTokens: nameTokens(name),
		TypeVars:   MakeTypeVariables(typeVars...),
		Open:       tok(token.EvalOpen, "("),
		Inputs:     spacedAll(inputs, true),
		Close:      tok(token.EvalClose, ")"),
	}
	if len(members) > 0 {
		s.Members = spaced(MakeBlock(makeLines(members)...))
	}
	return s
}

// MakeConversion builds → input output body.
func MakeConversion(input, output TypeNode, body Expression) *ConversionDefinition {
	return &ConversionDefinition{
		Arrow:  tok(token.Convert, string(token.GlyphConvert)),
		Input:  spaced(input),
		Output: spaced(output),
		Body:   spaced(body),
	}
}

// MakeStreamDefinition builds … name(inputs) •output.
func MakeStreamDefinition(name string, inputs []*Bind, output TypeNode) *StreamDefinition {
	names := nameTokens(name)
	names[0] = names[0].WithSpace(" ")
	return &StreamDefinition{
		Stream:     tok(token.Stream, string(token.GlyphStream)),
		NameTokens: names,
		Open:       tok(token.EvalOpen, "("),
		Inputs:     spacedAll(inputs, true),
		Close:      tok(token.EvalClose, ")"),
		Dot:        NewSpacedToken(token.Type, string(token.GlyphType), " "),
		Output:     output,
	}
}

// MakeNative builds the body of a built-in function implemented by the host
// under name.
func MakeNative(name string, t TypeNode) *NativeExpression {
	return &NativeExpression{Name: name, Type: t}
}

// MakeNumberType builds # with an optional unit.
func MakeNumberType(unit string) *NumberType {
	n := &NumberType{Hash: tok(token.NumberType, string(token.GlyphNumberType))}
	if unit != "" {
		n.Unit = MakeUnit(unit)
	}
	return n
}

// MakeTextType builds ''.
func MakeTextType() *TextType {
	return &TextType{Open: tok(token.TextOpen, "'"), Close: tok(token.TextClose, "'")}
}

// MakeBooleanType builds ?.
func MakeBooleanType() *BooleanType {
	return &BooleanType{Question: tok(token.Conditional, string(token.GlyphConditional))}
}

// MakeNoneType builds ø as a type.
func MakeNoneType() *NoneType {
	return &NoneType{None: tok(token.None, string(token.GlyphNone))}
}

// MakeListType builds [item].
func MakeListType(item TypeNode) *ListType {
	return &ListType{Open: tok(token.ListOpen, "["), Item: item, Close: tok(token.ListClose, "]")}
}

// MakeSetType builds {key}.
func MakeSetType(key TypeNode) *SetType {
	return &SetType{Open: tok(token.SetOpen, "{"), Key: key, Close: tok(token.SetClose, "}")}
}

// MakeMapType builds {key:value}.
func MakeMapType(key, value TypeNode) *MapType {
	return &MapType{
		Open:  tok(token.SetOpen, "{"),
		Key:   key,
		Bind:  tok(token.Bind, ":"),
		Value: value,
		Close: tok(token.SetClose, "}"),
	}
}

// MakeFunctionType builds ƒ(inputs) output.
func MakeFunctionType(inputs []*Bind, output TypeNode) *FunctionType {
	return &FunctionType{
		Fun:    tok(token.Function, string(token.GlyphFunction)),
		Open:   tok(token.EvalOpen, "("),
		Inputs: spacedAll(inputs, true),
		Close:  tok(token.EvalClose, ")"),
		Output: spaced(output),
	}
}

// MakeNameType builds name⸨args⸩.
func MakeNameType(name string, args ...TypeNode) *NameType {
	return &NameType{Name: tok(token.Name, name), Types: MakeTypeInputs(args...)}
}

// MakeUnionType builds left | right.
func MakeUnionType(left, right TypeNode) *UnionType {
	return &UnionType{Left: left, Or: NewSpacedToken(token.Operator, "|", " "), Right: spaced(right)}
}
