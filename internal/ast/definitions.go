// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"nickandperla.net/wordplay/internal/token"
)

// namesOf extracts the names from a names slot, skipping separators.
func namesOf(tokens []*Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Category == token.Name || t.Category == token.Operator {
			out = append(out, t.Text)
		}
	}
	return out
}

func docsOf(tokens []*Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		text := t.Text
		if len(text) >= 4 {
			// Strip the ¶ delimiters, two bytes each.
			text = text[len("¶") : len(text)-len("¶")]
		}
		out = append(out, text)
	}
	return out
}

// Program is the root of a source: borrows followed by a root block.
type Program struct {
	base
	Borrows []*Borrow
	Block   *Block
	End     *Token
}

var programGrammar = []Field{
	nodeField("borrows", Many, KindBorrow),
	nodeField("block", One, KindBlock),
	tokenField("end", One, token.End),
}

func (n *Program) Kind() Kind       { return KindProgram }
func (n *Program) Grammar() []Field { return programGrammar }
func (n *Program) Slots() []Slot {
	return []Slot{many(n.Borrows), opt(n.Block), opt(n.End)}
}
func (n *Program) withSlots(id uint64, s []Slot) Node {
	return &Program{base: base{id}, Borrows: list[*Borrow](s[0]), Block: get[*Block](s[1]), End: get[*Token](s[2])}
}

// Borrow imports a shared definition from another source of the project.
type Borrow struct {
	base
	Arrow  *Token
	Source *Token
	Dot    *Token
	Name   *Token
}

var borrowGrammar = []Field{
	tokenField("borrow", One, token.Borrow),
	tokenField("source", Optional, token.Name),
	tokenField("dot", Optional, token.Access),
	tokenField("name", Optional, token.Name),
}

func (n *Borrow) Kind() Kind       { return KindBorrow }
func (n *Borrow) Grammar() []Field { return borrowGrammar }
func (n *Borrow) Slots() []Slot {
	return []Slot{opt(n.Arrow), opt(n.Source), opt(n.Dot), opt(n.Name)}
}
func (n *Borrow) withSlots(id uint64, s []Slot) Node {
	return &Borrow{base: base{id}, Arrow: get[*Token](s[0]), Source: get[*Token](s[1]), Dot: get[*Token](s[2]), Name: get[*Token](s[3])}
}

// SourceName returns the borrowed source's name.
func (n *Borrow) SourceName() string {
	if n.Source == nil {
		return ""
	}
	return n.Source.Text
}

// DefinitionName returns the borrowed definition's name, or "" to borrow
// every shared definition of the source.
func (n *Borrow) DefinitionName() string {
	if n.Name == nil {
		return ""
	}
	return n.Name.Text
}

// Block is a sequence of statements whose value is its last statement. The
// program's root block has no delimiters.
type Block struct {
	base
	Open       *Token
	Statements []Expression
	Close      *Token
}

var blockGrammar = []Field{
	tokenField("open", Optional, token.EvalOpen),
	nodeField("statements", Many, AnyStatement),
	tokenField("close", Optional, token.EvalClose),
}

func (n *Block) Kind() Kind       { return KindBlock }
func (n *Block) Grammar() []Field { return blockGrammar }
func (n *Block) Slots() []Slot {
	return []Slot{opt(n.Open), many(n.Statements), opt(n.Close)}
}
func (n *Block) withSlots(id uint64, s []Slot) Node {
	return &Block{base: base{id}, Open: get[*Token](s[0]), Statements: list[Expression](s[1]), Close: get[*Token](s[2])}
}
func (n *Block) expression() {}

// IsRoot reports whether the block is a program's undelimited root block.
func (n *Block) IsRoot() bool { return n.Open == nil }

// Bind names a value, optionally with a declared type. Binds appear as block
// statements, structure and function inputs, and named evaluate inputs.
type Bind struct {
	base
	Docs       []*Token
	Share      *Token
	NameTokens []*Token
	Dot        *Token
	Type       TypeNode
	Colon      *Token
	Value      Expression
}

var bindGrammar = []Field{
	tokenField("docs", Many, token.Doc),
	tokenField("share", Optional, token.Share),
	tokenField("names", Many, token.Name, token.Operator, token.Separator),
	tokenField("dot", Optional, token.Type),
	nodeField("type", Optional, AnyType),
	tokenField("colon", Optional, token.Bind),
	nodeField("value", Optional, AnyExpression),
}

func (n *Bind) Kind() Kind       { return KindBind }
func (n *Bind) Grammar() []Field { return bindGrammar }
func (n *Bind) Slots() []Slot {
	return []Slot{many(n.Docs), opt(n.Share), many(n.NameTokens), opt(n.Dot), opt(n.Type), opt(n.Colon), opt(n.Value)}
}
func (n *Bind) withSlots(id uint64, s []Slot) Node {
	return &Bind{
		base:       base{id},
		Docs:       list[*Token](s[0]),
		Share:      get[*Token](s[1]),
		NameTokens: list[*Token](s[2]),
		Dot:        get[*Token](s[3]),
		Type:       get[TypeNode](s[4]),
		Colon:      get[*Token](s[5]),
		Value:      get[Expression](s[6]),
	}
}
func (n *Bind) expression() {}

func (n *Bind) Names() []string { return namesOf(n.NameTokens) }

// Documentation returns the bind's doc comments without delimiters.
func (n *Bind) Documentation() []string { return docsOf(n.Docs) }

// IsShared reports whether the bind is marked with ↑.
func (n *Bind) IsShared() bool { return n.Share != nil }

// HasName reports whether the bind is known by the given name.
func (n *Bind) HasName(name string) bool {
	for _, s := range n.Names() {
		if s == name {
			return true
		}
	}
	return false
}

// FunctionDefinition declares a function. Its names may be operator glyphs,
// and it has no names when anonymous.
type FunctionDefinition struct {
	base
	Docs       []*Token
	Share      *Token
	Fun        *Token
	NameTokens []*Token
	TypeVars   *TypeVariables
	Open       *Token
	Inputs     []*Bind
	Close      *Token
	Dot        *Token
	Output     TypeNode
	Body       Expression
}

var functionGrammar = []Field{
	tokenField("docs", Many, token.Doc),
	tokenField("share", Optional, token.Share),
	tokenField("fun", One, token.Function),
	tokenField("names", Many, token.Name, token.Operator, token.Separator),
	nodeField("typeVars", Optional, KindTypeVariables),
	tokenField("open", Optional, token.EvalOpen),
	nodeField("inputs", Many, KindBind),
	tokenField("close", Optional, token.EvalClose),
	tokenField("dot", Optional, token.Type),
	nodeField("output", Optional, AnyType),
	nodeField("expression", Optional, AnyExpression),
}

func (n *FunctionDefinition) Kind() Kind       { return KindFunctionDefinition }
func (n *FunctionDefinition) Grammar() []Field { return functionGrammar }
func (n *FunctionDefinition) Slots() []Slot {
	return []Slot{
		many(n.Docs), opt(n.Share), opt(n.Fun), many(n.NameTokens), opt(n.TypeVars), opt(n.Open),
		many(n.Inputs), opt(n.Close), opt(n.Dot), opt(n.Output), opt(n.Body),
	}
}
func (n *FunctionDefinition) withSlots(id uint64, s []Slot) Node {
	return &FunctionDefinition{
		base:       base{id},
		Docs:       list[*Token](s[0]),
		Share:      get[*Token](s[1]),
		Fun:        get[*Token](s[2]),
		NameTokens: list[*Token](s[3]),
		TypeVars:   get[*TypeVariables](s[4]),
		Open:       get[*Token](s[5]),
		Inputs:     list[*Bind](s[6]),
		Close:      get[*Token](s[7]),
		Dot:        get[*Token](s[8]),
		Output:     get[TypeNode](s[9]),
		Body:       get[Expression](s[10]),
	}
}
func (n *FunctionDefinition) expression() {}

func (n *FunctionDefinition) Names() []string { return namesOf(n.NameTokens) }

// Documentation returns the function's doc comments without delimiters.
func (n *FunctionDefinition) Documentation() []string { return docsOf(n.Docs) }

// IsShared reports whether the function is marked with ↑.
func (n *FunctionDefinition) IsShared() bool { return n.Share != nil }

// Variables returns the declared type variables.
func (n *FunctionDefinition) Variables() []*TypeVariable {
	if n.TypeVars == nil {
		return nil
	}
	return n.TypeVars.Variables
}

// IsAbstract reports whether the function has no body or only a
// placeholder for one.
func (n *FunctionDefinition) IsAbstract() bool {
	if n.Body == nil {
		return true
	}
	_, ok := n.Body.(*Placeholder)
	return ok
}

// IsOperator reports whether one of the function's names is an operator.
func (n *FunctionDefinition) IsOperator() bool {
	for _, t := range n.NameTokens {
		if t.Category == token.Operator {
			return true
		}
	}
	return false
}

// StructureDefinition declares a structure: named inputs, an optional block
// of member definitions and the interfaces it implements. A structure with
// unimplemented functions is an interface.
type StructureDefinition struct {
	base
	Docs       []*Token
	Share      *Token
	Dot        *Token
	NameTokens []*Token
	Interfaces []*Reference
	TypeVars   *TypeVariables
	Open       *Token
	Inputs     []*Bind
	Close      *Token
	Members    *Block
}

var structureGrammar = []Field{
	tokenField("docs", Many, token.Doc),
	tokenField("share", Optional, token.Share),
	tokenField("dot", One, token.Type),
	tokenField("names", Many, token.Name, token.Separator),
	nodeField("interfaces", Many, KindReference),
	nodeField("typeVars", Optional, KindTypeVariables),
	tokenField("open", Optional, token.EvalOpen),
	nodeField("inputs", Many, KindBind),
	tokenField("close", Optional, token.EvalClose),
	nodeField("block", Optional, KindBlock),
}

func (n *StructureDefinition) Kind() Kind       { return KindStructureDefinition }
func (n *StructureDefinition) Grammar() []Field { return structureGrammar }
func (n *StructureDefinition) Slots() []Slot {
	return []Slot{
		many(n.Docs), opt(n.Share), opt(n.Dot), many(n.NameTokens), many(n.Interfaces),
		opt(n.TypeVars), opt(n.Open), many(n.Inputs), opt(n.Close), opt(n.Members),
	}
}
func (n *StructureDefinition) withSlots(id uint64, s []Slot) Node {
	return &StructureDefinition{
		base:       base{id},
		Docs:       list[*Token](s[0]),
		Share:      get[*Token](s[1]),
		Dot:        get[*Token](s[2]),
		NameTokens: list[*Token](s[3]),
		Interfaces: list[*Reference](s[4]),
		TypeVars:   get[*TypeVariables](s[5]),
		Open:       get[*Token](s[6]),
		Inputs:     list[*Bind](s[7]),
		Close:      get[*Token](s[8]),
		Members:    get[*Block](s[9]),
	}
}
func (n *StructureDefinition) expression() {}

func (n *StructureDefinition) Names() []string { return namesOf(n.NameTokens) }

// IsShared reports whether the structure is marked with ↑.
func (n *StructureDefinition) IsShared() bool { return n.Share != nil }

// Variables returns the declared type variables.
func (n *StructureDefinition) Variables() []*TypeVariable {
	if n.TypeVars == nil {
		return nil
	}
	return n.TypeVars.Variables
}

// Functions returns the function definitions in the structure's block.
func (n *StructureDefinition) Functions() []*FunctionDefinition {
	var out []*FunctionDefinition
	if n.Members == nil {
		return nil
	}
	for _, s := range n.Members.Statements {
		if f, ok := s.(*FunctionDefinition); ok {
			out = append(out, f)
		}
	}
	return out
}

// Conversions returns the conversion definitions in the structure's block.
func (n *StructureDefinition) Conversions() []*ConversionDefinition {
	var out []*ConversionDefinition
	if n.Members == nil {
		return nil
	}
	for _, s := range n.Members.Statements {
		if c, ok := s.(*ConversionDefinition); ok {
			out = append(out, c)
		}
	}
	return out
}

// Binds returns the binds in the structure's block.
func (n *StructureDefinition) Binds() []*Bind {
	var out []*Bind
	if n.Members == nil {
		return nil
	}
	for _, s := range n.Members.Statements {
		if b, ok := s.(*Bind); ok {
			out = append(out, b)
		}
	}
	return out
}

// IsInterface reports whether some member function is abstract.
func (n *StructureDefinition) IsInterface() bool {
	for _, f := range n.Functions() {
		if f.IsAbstract() {
			return true
		}
	}
	return false
}

// Member returns the input, bind or function with the given name.
func (n *StructureDefinition) Member(name string) Definition {
	for _, in := range n.Inputs {
		if in.HasName(name) {
			return in
		}
	}
	for _, b := range n.Binds() {
		if b.HasName(name) {
			return b
		}
	}
	for _, f := range n.Functions() {
		for _, fn := range f.Names() {
			if fn == name {
				return f
			}
		}
	}
	return nil
}

// ConversionDefinition declares a conversion from one type to another.
type ConversionDefinition struct {
	base
	Docs   []*Token
	Arrow  *Token
	Input  TypeNode
	Output TypeNode
	Body   Expression
}

var conversionGrammar = []Field{
	tokenField("docs", Many, token.Doc),
	tokenField("arrow", One, token.Convert),
	nodeField("input", One, AnyType),
	nodeField("output", One, AnyType),
	nodeField("expression", Optional, AnyExpression),
}

func (n *ConversionDefinition) Kind() Kind       { return KindConversionDefinition }
func (n *ConversionDefinition) Grammar() []Field { return conversionGrammar }
func (n *ConversionDefinition) Slots() []Slot {
	return []Slot{many(n.Docs), opt(n.Arrow), opt(n.Input), opt(n.Output), opt(n.Body)}
}
func (n *ConversionDefinition) withSlots(id uint64, s []Slot) Node {
	return &ConversionDefinition{
		base:   base{id},
		Docs:   list[*Token](s[0]),
		Arrow:  get[*Token](s[1]),
		Input:  get[TypeNode](s[2]),
		Output: get[TypeNode](s[3]),
		Body:   get[Expression](s[4]),
	}
}
func (n *ConversionDefinition) expression() {}

// StreamDefinition declares a built-in stream such as Time or Key. It only
// appears in the basis.
type StreamDefinition struct {
	base
	Docs       []*Token
	Stream     *Token
	NameTokens []*Token
	Open       *Token
	Inputs     []*Bind
	Close      *Token
	Dot        *Token
	Output     TypeNode
}

var streamGrammar = []Field{
	tokenField("docs", Many, token.Doc),
	tokenField("stream", One, token.Stream),
	tokenField("names", Many, token.Name, token.Separator),
	tokenField("open", One, token.EvalOpen),
	nodeField("inputs", Many, KindBind),
	tokenField("close", Optional, token.EvalClose),
	tokenField("dot", One, token.Type),
	nodeField("output", One, AnyType),
}

func (n *StreamDefinition) Kind() Kind       { return KindStreamDefinition }
func (n *StreamDefinition) Grammar() []Field { return streamGrammar }
func (n *StreamDefinition) Slots() []Slot {
	return []Slot{many(n.Docs), opt(n.Stream), many(n.NameTokens), opt(n.Open), many(n.Inputs), opt(n.Close), opt(n.Dot), opt(n.Output)}
}
func (n *StreamDefinition) withSlots(id uint64, s []Slot) Node {
	return &StreamDefinition{
		base:       base{id},
		Docs:       list[*Token](s[0]),
		Stream:     get[*Token](s[1]),
		NameTokens: list[*Token](s[2]),
		Open:       get[*Token](s[3]),
		Inputs:     list[*Bind](s[4]),
		Close:      get[*Token](s[5]),
		Dot:        get[*Token](s[6]),
		Output:     get[TypeNode](s[7]),
	}
}

func (n *StreamDefinition) Names() []string { return namesOf(n.NameTokens) }

// TypeVariables declares the type variables of a function or structure.
type TypeVariables struct {
	base
	Open      *Token
	Variables []*TypeVariable
	Close     *Token
}

var typeVariablesGrammar = []Field{
	tokenField("open", One, token.TypeVarsOpen),
	nodeField("variables", Many, KindTypeVariable),
	tokenField("close", Optional, token.TypeVarsClose),
}

func (n *TypeVariables) Kind() Kind       { return KindTypeVariables }
func (n *TypeVariables) Grammar() []Field { return typeVariablesGrammar }
func (n *TypeVariables) Slots() []Slot {
	return []Slot{opt(n.Open), many(n.Variables), opt(n.Close)}
}
func (n *TypeVariables) withSlots(id uint64, s []Slot) Node {
	return &TypeVariables{base: base{id}, Open: get[*Token](s[0]), Variables: list[*TypeVariable](s[1]), Close: get[*Token](s[2])}
}

// TypeVariable is a generic parameter.
type TypeVariable struct {
	base
	Name *Token
}

var typeVariableGrammar = []Field{
	tokenField("name", One, token.Name),
}

func (n *TypeVariable) Kind() Kind       { return KindTypeVariable }
func (n *TypeVariable) Grammar() []Field { return typeVariableGrammar }
func (n *TypeVariable) Slots() []Slot    { return []Slot{opt(n.Name)} }
func (n *TypeVariable) withSlots(id uint64, s []Slot) Node {
	return &TypeVariable{base: base{id}, Name: get[*Token](s[0])}
}

func (n *TypeVariable) Names() []string {
	if n.Name == nil {
		return nil
	}
	return []string{n.Name.Text}
}
