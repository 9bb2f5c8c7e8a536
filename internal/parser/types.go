package parser

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/token"
)

// parseType parses a type, with unions associating left to right.
func (p *Parser) parseType() ast.TypeNode {
	left := p.parseTypeAtom()
	for p.is(token.Operator) && p.peek().Text == "|" {
		or := p.next()
		left = &ast.UnionType{Left: left, Or: or, Right: p.parseTypeAtom()}
	}
	return left
}

func (p *Parser) parseTypeAtom() ast.TypeNode {
	switch p.peek().Category {
	case token.NumberType:
		n := &ast.NumberType{Hash: p.next()}
		if p.isAdjacent(token.Operator) && p.peek().Text == "*" {
			n.Unit = &ast.Unit{Tokens: []*ast.Token{p.next()}}
			return n
		}
		n.Unit = p.parseUnit()
		return n
	case token.TextOpen:
		if p.peekAt(1).Category == token.TextClose {
			return &ast.TextType{Open: p.next(), Close: p.next()}
		}
	case token.Conditional:
		return &ast.BooleanType{Question: p.next()}
	case token.None:
		return &ast.NoneType{None: p.next()}
	case token.ListOpen:
		l := &ast.ListType{Open: p.next()}
		if !p.is(token.ListClose) && !p.atEnd() {
			l.Item = p.optionalType()
		}
		l.Close = p.accept(token.ListClose)
		return l
	case token.SetOpen:
		return p.parseSetOrMapType()
	case token.Function:
		return p.parseFunctionType()
	case token.Name:
		n := &ast.NameType{Name: p.next()}
		if p.isAdjacent(token.TypeVarsOpen) {
			n.Types = p.parseTypeInputs()
		}
		return n
	case token.Placeholder:
		return &ast.TypePlaceholder{Underscore: p.next()}
	}
	return p.parseUnparsableType()
}

// optionalType parses a type if one starts here.
func (p *Parser) optionalType() ast.TypeNode {
	start := p.pos
	t := p.parseType()
	if u, ok := t.(*ast.UnparsableType); ok && len(u.Tokens) == 0 {
		p.pos = start
		return nil
	}
	return t
}

func (p *Parser) parseSetOrMapType() ast.TypeNode {
	open := p.next()
	var key ast.TypeNode
	if !p.is(token.Bind) && !p.is(token.SetClose) {
		key = p.optionalType()
	}
	if p.is(token.Bind) {
		m := &ast.MapType{Open: open, Key: key, Bind: p.next()}
		if !p.is(token.SetClose) {
			m.Value = p.optionalType()
		}
		m.Close = p.accept(token.SetClose)
		return m
	}
	return &ast.SetType{Open: open, Key: key, Close: p.accept(token.SetClose)}
}

func (p *Parser) parseFunctionType() ast.TypeNode {
	start := p.pos
	f := &ast.FunctionType{Fun: p.next()}
	f.TypeVars = p.parseTypeVariables()
	if !p.is(token.EvalOpen) {
		p.pos = start
		return p.parseUnparsableType()
	}
	f.Open = p.next()
	f.Inputs = p.parseInputs()
	f.Close = p.accept(token.EvalClose)
	f.Output = p.optionalType()
	return f
}

// parseUnparsableType consumes at most the rest of the line, stopping at
// closing delimiters and at tokens that end a type position.
func (p *Parser) parseUnparsableType() *ast.UnparsableType {
	u := &ast.UnparsableType{}
	if p.atEnd() || p.atCloser() || p.is(token.Bind) {
		return u
	}
	u.Tokens = append(u.Tokens, p.next())
	return u
}
