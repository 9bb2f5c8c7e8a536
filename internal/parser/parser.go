// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parser builds wordplay syntax trees.
//
// The parser is recursive descent with one function per production. It never
// fails: input that matches no production becomes an Unparsable node holding
// the tokens it skipped, and missing closing delimiters leave the node's close
// slot empty. Every token of the input, including the End token, appears in
// the resulting tree exactly once, so ast.SourceText(Parse(s)) == s.
package parser

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/scanner"
	"nickandperla.net/wordplay/internal/token"
)

// Parser holds the token stream and the read position.
type Parser struct {
	tokens []*ast.Token
	pos    int
}

// Parse tokenizes and parses src.
func Parse(src string) *ast.Program {
	return ParseTokens(scanner.Tokenize(src))
}

// ParseTokens parses a token stream. A missing End token is supplied.
func ParseTokens(tokens []*ast.Token) *ast.Program {
	if len(tokens) == 0 || tokens[len(tokens)-1].Category != token.End {
		tokens = append(append([]*ast.Token(nil), tokens...), ast.NewToken(token.End, ""))
	}
	p := &Parser{tokens: tokens}
	return p.parseProgram()
}

// ParseExpression parses src as a single expression, ignoring anything after
// it. It is used for basis definitions and tests.
func ParseExpression(src string) ast.Expression {
	p := &Parser{tokens: scanner.Tokenize(src)}
	return p.parseExpression(true)
}

// ParseType parses src as a type.
func ParseType(src string) ast.TypeNode {
	p := &Parser{tokens: scanner.Tokenize(src)}
	return p.parseType()
}

func (p *Parser) peek() *ast.Token { return p.peekAt(0) }

func (p *Parser) peekAt(offset int) *ast.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) next() *ast.Token {
	t := p.peek()
	if t.Category != token.End {
		p.pos++
	}
	return t
}

func (p *Parser) is(kinds ...token.Kind) bool {
	t := p.peek()
	for _, k := range kinds {
		if t.Category == k {
			return true
		}
	}
	return false
}

// isAdjacent reports whether the next token has the kind and no preceding
// whitespace.
func (p *Parser) isAdjacent(kind token.Kind) bool {
	t := p.peek()
	return t.Category == kind && t.Space == ""
}

func (p *Parser) accept(kind token.Kind) *ast.Token {
	if p.is(kind) {
		return p.next()
	}
	return nil
}

func (p *Parser) atEnd() bool { return p.is(token.End) }

func (p *Parser) atCloser() bool { return p.peek().Category.IsCloser() || p.is(token.Code) }

func (p *Parser) parseProgram() *ast.Program {
	var borrows []*ast.Borrow
	for p.is(token.Borrow) {
		borrows = append(borrows, p.parseBorrow())
	}
	block := &ast.Block{}
	for !p.atEnd() {
		block.Statements = append(block.Statements, p.parseRootStatement())
	}
	return &ast.Program{Borrows: borrows, Block: block, End: p.next()}
}

// parseRootStatement parses a statement, turning stray closing delimiters
// into Unparsable nodes so that every token lands in the tree.
func (p *Parser) parseRootStatement() ast.Expression {
	if p.atCloser() {
		return &ast.Unparsable{Tokens: []*ast.Token{p.next()}}
	}
	start := p.pos
	s := p.parseStatement()
	if p.pos == start {
		return &ast.Unparsable{Tokens: []*ast.Token{p.next()}}
	}
	return s
}

func (p *Parser) parseBorrow() *ast.Borrow {
	b := &ast.Borrow{Arrow: p.next()}
	if p.is(token.Name) && !p.peek().HasNewline() {
		b.Source = p.next()
		if p.isAdjacent(token.Access) && p.peekAt(1).Category == token.Name && p.peekAt(1).Space == "" {
			b.Dot = p.next()
			b.Name = p.next()
		}
	}
	return b
}

// parseStatement parses a definition or an expression.
func (p *Parser) parseStatement() ast.Expression {
	start := p.pos
	var docs []*ast.Token
	for p.is(token.Doc) {
		docs = append(docs, p.next())
	}
	share := p.accept(token.Share)

	switch {
	case p.is(token.Function):
		f := p.parseFunction()
		f.Docs, f.Share = docs, share
		return f
	case p.is(token.Type) && p.peekAt(1).Category == token.Name:
		s := p.parseStructure()
		s.Docs, s.Share = docs, share
		return s
	case p.is(token.Convert) && share == nil:
		c := p.parseConversion()
		c.Docs = docs
		return c
	}
	if b := p.tryBind(true); b != nil {
		b.Docs, b.Share = docs, share
		return b
	}
	if p.pos > start {
		// Docs or a share marker with nothing they can apply to.
		return &ast.Unparsable{Tokens: append([]*ast.Token(nil), p.tokens[start:p.pos]...)}
	}
	return p.parseExpression(true)
}

// tryBind parses a bind if one starts here, otherwise it restores the
// position and returns nil. Statement binds need a value; input binds don't.
func (p *Parser) tryBind(requireColon bool) *ast.Bind {
	start := p.pos
	if !p.is(token.Name) {
		return nil
	}
	b := &ast.Bind{NameTokens: p.parseNames(false)}
	if p.isAdjacent(token.Type) {
		b.Dot = p.next()
		b.Type = p.parseType()
	}
	if p.is(token.Bind) {
		b.Colon = p.next()
		b.Value = p.parseExpression(true)
		return b
	}
	if requireColon {
		p.pos = start
		return nil
	}
	return b
}

// parseNames parses name (, name)*. Operators are accepted as names for
// functions.
func (p *Parser) parseNames(operators bool) []*ast.Token {
	var names []*ast.Token
	isName := func(t *ast.Token) bool {
		return t.Category == token.Name || (operators && t.Category == token.Operator)
	}
	if !isName(p.peek()) {
		return nil
	}
	names = append(names, p.next())
	for p.is(token.Separator) && isName(p.peekAt(1)) {
		names = append(names, p.next(), p.next())
	}
	return names
}

// parseInputs parses binds up to a closing parenthesis.
func (p *Parser) parseInputs() []*ast.Bind {
	var inputs []*ast.Bind
	for p.is(token.Name, token.Doc) {
		start := p.pos
		var docs []*ast.Token
		for p.is(token.Doc) {
			docs = append(docs, p.next())
		}
		b := p.tryBind(false)
		if b == nil {
			p.pos = start
			break
		}
		b.Docs = docs
		inputs = append(inputs, b)
	}
	return inputs
}

func (p *Parser) parseTypeVariables() *ast.TypeVariables {
	if !p.is(token.TypeVarsOpen) {
		return nil
	}
	tv := &ast.TypeVariables{Open: p.next()}
	for p.is(token.Name) {
		tv.Variables = append(tv.Variables, &ast.TypeVariable{Name: p.next()})
	}
	tv.Close = p.accept(token.TypeVarsClose)
	return tv
}

func (p *Parser) parseTypeInputs() *ast.TypeInputs {
	ti := &ast.TypeInputs{Open: p.next()}
	for !p.atEnd() && !p.atCloser() {
		start := p.pos
		ti.Types = append(ti.Types, p.parseType())
		if p.pos == start {
			break
		}
	}
	ti.Close = p.accept(token.TypeVarsClose)
	return ti
}

// parseFunction parses ƒ names⸨T⸩(inputs) •output body. A function with no
// input list ends after its names.
func (p *Parser) parseFunction() *ast.FunctionDefinition {
	f := &ast.FunctionDefinition{Fun: p.next()}
	f.NameTokens = p.parseNames(true)
	f.TypeVars = p.parseTypeVariables()
	if !p.is(token.EvalOpen) {
		return f
	}
	f.Open = p.next()
	f.Inputs = p.parseInputs()
	f.Close = p.accept(token.EvalClose)
	if p.is(token.Type) {
		f.Dot = p.next()
		f.Output = p.parseType()
	}
	if !p.atEnd() && !p.atCloser() {
		f.Body = p.parseExpression(true)
	}
	return f
}

// parseStructure parses •Name Interface⸨T⸩(inputs) ( members ).
func (p *Parser) parseStructure() *ast.StructureDefinition {
	s := &ast.StructureDefinition{Dot: p.next()}
	s.NameTokens = p.parseNames(false)
	for p.is(token.Name) && !p.peek().HasNewline() {
		s.Interfaces = append(s.Interfaces, &ast.Reference{Name: p.next()})
	}
	s.TypeVars = p.parseTypeVariables()
	if p.is(token.EvalOpen) && !p.peek().HasNewline() {
		s.Open = p.next()
		s.Inputs = p.parseInputs()
		s.Close = p.accept(token.EvalClose)
	}
	if p.is(token.EvalOpen) && !p.peek().HasNewline() {
		s.Members = p.parseBlock()
	}
	return s
}

func (p *Parser) parseConversion() *ast.ConversionDefinition {
	c := &ast.ConversionDefinition{Arrow: p.next()}
	c.Input = p.parseType()
	c.Output = p.parseType()
	if !p.atEnd() && !p.atCloser() {
		c.Body = p.parseExpression(true)
	}
	return c
}

func (p *Parser) parseBlock() *ast.Block {
	b := &ast.Block{Open: p.next()}
	for !p.atEnd() && !p.is(token.EvalClose) && !p.is(token.Code) {
		if p.atCloser() {
			// A mismatched closer inside the block.
			b.Statements = append(b.Statements, &ast.Unparsable{Tokens: []*ast.Token{p.next()}})
			continue
		}
		start := p.pos
		s := p.parseStatement()
		if p.pos == start {
			s = &ast.Unparsable{Tokens: []*ast.Token{p.next()}}
		}
		b.Statements = append(b.Statements, s)
	}
	b.Close = p.accept(token.EvalClose)
	return b
}

// parseExpression parses an expression followed by an optional conditional
// or, when reactions are allowed, a reaction.
func (p *Parser) parseExpression(reactions bool) ast.Expression {
	left := p.parseBinary()
	if p.is(token.Conditional) {
		c := &ast.Conditional{Condition: left, Question: p.next()}
		c.Yes = p.parseExpression(reactions)
		c.No = p.parseExpression(reactions)
		return c
	}
	if reactions && p.is(token.Stream) {
		r := &ast.Reaction{Initial: left, Dots: p.next()}
		r.Condition = p.parseExpression(false)
		if p.is(token.Stream) {
			r.NextDots = p.next()
			r.Next = p.parseExpression(true)
		}
		return r
	}
	return left
}

// parseBinary parses operations strictly left to right, with type tests and
// conversions as postfix steps in the same chain. A • or → that starts a
// line begins a new statement instead.
func (p *Parser) parseBinary() ast.Expression {
	left := p.parseUnary()
	for {
		switch {
		case p.is(token.Operator):
			op := p.next()
			left = &ast.BinaryOperation{Left: left, Operator: op, Right: p.parseUnary()}
		case (p.is(token.Type) || p.is(token.Convert)) && p.peek().HasNewline():
			return left
		case p.is(token.Type):
			dot := p.next()
			left = &ast.Is{Expression: left, Dot: dot, Type: p.parseType()}
		case p.is(token.Convert):
			arrow := p.next()
			left = &ast.Convert{Expression: left, Arrow: arrow, Type: p.parseType()}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	if t := p.peek(); t.Category == token.Operator && token.UnaryOperators[t.Text] {
		op := p.next()
		return &ast.UnaryOperation{Operator: op, Operand: p.parseUnary()}
	}
	return p.parsePostfix()
}

// parsePostfix parses an atom followed by evaluations, property reads and
// accesses. Postfix delimiters must touch the expression they apply to.
func (p *Parser) parsePostfix() ast.Expression {
	left := p.parseAtom()
	for {
		switch {
		case p.isAdjacent(token.EvalOpen):
			left = p.parseEvaluate(left, nil)
		case p.isAdjacent(token.TypeVarsOpen):
			start := p.pos
			types := p.parseTypeInputs()
			if !p.isAdjacent(token.EvalOpen) {
				p.pos = start
				return left
			}
			left = p.parseEvaluate(left, types)
		case p.isAdjacent(token.Access):
			ref := &ast.PropertyReference{Structure: left, Dot: p.next()}
			if t := p.peek(); (t.Category == token.Name || t.Category == token.Operator) && t.Space == "" {
				ref.Name = p.next()
			}
			left = ref
		case p.isAdjacent(token.ListOpen):
			a := &ast.ListAccess{List: left, Open: p.next()}
			a.Index = p.parseExpression(true)
			a.Close = p.accept(token.ListClose)
			left = a
		case p.isAdjacent(token.SetOpen):
			a := &ast.SetOrMapAccess{Collection: left, Open: p.next()}
			a.Key = p.parseExpression(true)
			a.Close = p.accept(token.SetClose)
			left = a
		default:
			return left
		}
	}
}

func (p *Parser) parseEvaluate(fn ast.Expression, types *ast.TypeInputs) *ast.Evaluate {
	e := &ast.Evaluate{Function: fn, Types: types, Open: p.next()}
	for !p.atEnd() && !p.atCloser() {
		start := p.pos
		var input ast.Expression
		if p.is(token.Name) && p.peekAt(1).Category == token.Bind {
			if b := p.tryBind(true); b != nil {
				input = b
			}
		}
		if input == nil {
			input = p.parseExpression(true)
		}
		if p.pos == start {
			break
		}
		e.Inputs = append(e.Inputs, input)
	}
	e.Close = p.accept(token.EvalClose)
	return e
}

func (p *Parser) parseAtom() ast.Expression {
	t := p.peek()
	switch t.Category {
	case token.Number:
		return p.parseNumber()
	case token.Name:
		return &ast.Reference{Name: p.next()}
	case token.TextOpen:
		return p.parseText()
	case token.True, token.False:
		return &ast.BooleanLiteral{Literal: p.next()}
	case token.None:
		return &ast.NoneLiteral{None: p.next()}
	case token.ListOpen:
		return p.parseList()
	case token.SetOpen:
		return p.parseSetOrMap()
	case token.EvalOpen:
		return p.parseBlock()
	case token.Function:
		return p.parseFunction()
	case token.Type:
		if p.peekAt(1).Category == token.Name {
			return p.parseStructure()
		}
	case token.Change:
		c := &ast.Changed{Change: p.next()}
		c.Stream = p.parsePostfix()
		return c
	case token.Previous:
		prev := &ast.Previous{Arrow: p.next()}
		prev.Index = p.parsePostfix()
		prev.Stream = p.parsePostfix()
		return prev
	case token.Access:
		return &ast.This{Dot: p.next()}
	case token.Initial:
		return &ast.Initial{Diamond: p.next()}
	case token.Placeholder:
		ph := &ast.Placeholder{Underscore: p.next()}
		if p.isAdjacent(token.Type) {
			ph.Dot = p.next()
			ph.Type = p.parseType()
		}
		return ph
	}
	return p.parseUnparsable()
}

// parseUnparsable consumes tokens up to the next line break or closing
// delimiter. At a closer or the end of input it consumes nothing.
func (p *Parser) parseUnparsable() *ast.Unparsable {
	u := &ast.Unparsable{}
	if p.atEnd() || p.atCloser() {
		return u
	}
	u.Tokens = append(u.Tokens, p.next())
	for !p.atEnd() && !p.atCloser() && !p.peek().HasNewline() {
		u.Tokens = append(u.Tokens, p.next())
	}
	return u
}

// parseNumber parses a number and an adjacent unit such as ms or m/s^2.
func (p *Parser) parseNumber() *ast.NumberLiteral {
	n := &ast.NumberLiteral{Number: p.next()}
	n.Unit = p.parseUnit()
	return n
}

func (p *Parser) parseUnit() *ast.Unit {
	if !p.isAdjacent(token.Name) {
		return nil
	}
	u := &ast.Unit{Tokens: []*ast.Token{p.next()}}
	for {
		op, operand := p.peek(), p.peekAt(1)
		if op.Category != token.Operator || op.Space != "" || operand.Space != "" {
			return u
		}
		switch op.Text {
		case "/", "·":
			if operand.Category != token.Name {
				return u
			}
		case "^":
			if operand.Category != token.Number {
				return u
			}
		default:
			return u
		}
		u.Tokens = append(u.Tokens, p.next(), p.next())
	}
}

// parseText parses a text literal, or a template when it embeds code.
func (p *Parser) parseText() ast.Expression {
	open := p.next()
	var parts []ast.Node
	template := false
	for {
		switch {
		case p.is(token.Words):
			parts = append(parts, p.next())
			continue
		case p.is(token.Code):
			template = true
			parts = append(parts, p.next())
			if !p.atEnd() && !p.atCloser() {
				parts = append(parts, p.parseExpression(true))
			}
			if p.is(token.Code) {
				parts = append(parts, p.next())
				continue
			}
		}
		break
	}
	closer := p.accept(token.TextClose)
	if template {
		return &ast.Template{Open: open, Parts: parts, Close: closer}
	}
	t := &ast.TextLiteral{Open: open, Close: closer}
	if len(parts) > 0 {
		t.Words = parts[0].(*ast.Token)
	}
	return t
}

func (p *Parser) parseList() *ast.ListLiteral {
	l := &ast.ListLiteral{Open: p.next()}
	l.Values = p.parseValues()
	l.Close = p.accept(token.ListClose)
	return l
}

func (p *Parser) parseValues() []ast.Expression {
	var values []ast.Expression
	for !p.atEnd() && !p.atCloser() {
		start := p.pos
		v := p.parseExpression(true)
		if p.pos == start {
			break
		}
		values = append(values, v)
	}
	return values
}

// parseSetOrMap parses {a b}, {k:v}, or the empty map {:}.
func (p *Parser) parseSetOrMap() ast.Expression {
	open := p.next()
	if p.is(token.Bind) {
		m := &ast.MapLiteral{Open: open, Bind: p.next()}
		m.Close = p.accept(token.SetClose)
		return m
	}
	var values []ast.Expression
	var entries []*ast.KeyValue
	for !p.atEnd() && !p.atCloser() {
		start := p.pos
		v := p.parseExpression(true)
		if p.pos == start {
			break
		}
		if p.is(token.Bind) && len(values) == 0 {
			kv := &ast.KeyValue{Key: v, Bind: p.next()}
			kv.Value = p.parseExpression(true)
			entries = append(entries, kv)
			continue
		}
		if len(entries) > 0 {
			// A map entry without a value.
			entries = append(entries, &ast.KeyValue{Key: v})
			continue
		}
		values = append(values, v)
	}
	if len(entries) > 0 {
		m := &ast.MapLiteral{Open: open, Entries: entries}
		m.Close = p.accept(token.SetClose)
		return m
	}
	s := &ast.SetLiteral{Open: open, Values: values}
	s.Close = p.accept(token.SetClose)
	return s
}
