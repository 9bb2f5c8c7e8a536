// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package analysis

import (
	"strings"

	"github.com/agext/levenshtein"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/conflict"
	"nickandperla.net/wordplay/internal/types"
)

// Conflicts returns every conflict in the context's source, ordered by the
// position of the node each is reported against. Running it twice on the
// same tree with fresh contexts gives equal results.
func Conflicts(ctx *types.Context) []conflict.Conflict {
	if ctx.Source == nil {
		return nil
	}
	c := &checker{ctx: ctx, used: map[ast.Node]bool{}}
	for _, n := range ctx.Source.Nodes() {
		if r, ok := n.(*ast.Reference); ok {
			if d := Resolve(r.Identifier(), r, ctx); d != nil {
				c.used[d] = true
			}
		}
	}
	for _, n := range ctx.Source.Nodes() {
		c.check(n)
	}
	conflict.Sort(c.out, ctx.Source)
	return c.out
}

type checker struct {
	ctx  *types.Context
	used map[ast.Node]bool
	out  []conflict.Conflict
}

func (c *checker) add(k conflict.Kind, primary ast.Node, format string, args ...any) *conflict.Conflict {
	c.out = append(c.out, conflict.New(k, primary, format, args...))
	return &c.out[len(c.out)-1]
}

// settled reports whether t is known well enough to check against: unknown
// and unconstrained types never cause further conflicts.
func settled(t types.Type) bool {
	switch t.(type) {
	case *types.Unknown, *types.Any, *types.Variable:
		return false
	}
	return !types.IsUnknown(t)
}

func (c *checker) check(n ast.Node) {
	if _, ok := n.(*ast.Token); ok {
		return
	}
	c.checkDelimiters(n)
	c.checkRequirements(n)

	switch n := n.(type) {
	case *ast.Unparsable:
		c.add(conflict.Unparsable, n, "%q is not an expression", ast.Text(n))
	case *ast.UnparsableType:
		c.add(conflict.Unparsable, n, "%q is not a type", ast.Text(n))
	case *ast.Placeholder:
		if !c.isAbstractBody(n) {
			c.add(conflict.Placeholder, n, "placeholder needs an expression")
		}
	case *ast.TypePlaceholder:
		c.add(conflict.Placeholder, n, "placeholder needs a type")
	case *ast.Block:
		c.checkBlock(n)
	case *ast.Bind:
		c.checkBind(n)
	case *ast.FunctionDefinition:
		c.checkFunction(n)
	case *ast.StructureDefinition:
		c.checkStructure(n)
	case *ast.TypeVariables:
		c.checkDuplicates(conflict.DuplicateTypeVariable, typeVariableDefinitions(n.Variables))
	case *ast.Reference:
		c.checkReference(n)
	case *ast.Evaluate:
		c.checkEvaluate(n)
	case *ast.BinaryOperation:
		c.checkBinary(n)
	case *ast.UnaryOperation:
		c.checkUnknownResult(n, types.ReasonUnknownOperator, conflict.UnknownOperator, n.Operator,
			"no operator %s on this value", n.OperatorName())
	case *ast.PropertyReference:
		c.checkUnknownResult(n, types.ReasonUnknownProperty, conflict.UnknownProperty, n,
			"no property %q", n.Property())
	case *ast.ListAccess:
		c.checkUnknownResult(n, types.ReasonUnknownProperty, conflict.IncompatibleType, n.List, "only lists can be indexed")
	case *ast.SetOrMapAccess:
		c.checkUnknownResult(n, types.ReasonUnknownProperty, conflict.IncompatibleType, n.Collection, "only sets and maps can be accessed by key")
	case *ast.Convert:
		c.checkConvert(n)
	case *ast.Is:
		c.checkIs(n)
	case *ast.Changed:
		c.checkStream(n.Stream)
	case *ast.Previous:
		c.checkStream(n.Stream)
	case *ast.This:
		if u, ok := typeOf(n, c.ctx).(*types.Unknown); ok && u.Node == ast.Node(n) && u.Reason == types.ReasonUnknownName {
			c.add(conflict.MisplacedThis, n, ". must be inside a structure, conversion or reaction")
		}
	case *ast.Reaction:
		if n.Next == nil {
			c.add(conflict.ExpectedExpression, n, "reaction needs a next value")
		}
	case *ast.KeyValue:
		if n.Value == nil {
			c.add(conflict.ExpectedExpression, n, "map entry needs a value")
		}
	case *ast.NameType:
		c.checkNameType(n)
	case *ast.Borrow:
		c.checkBorrow(n)
	}
}

// checkDelimiters reports an opening delimiter whose closing delimiter is
// missing.
func (c *checker) checkDelimiters(n ast.Node) {
	_, open, ok := ast.FieldSlot(n, "open")
	if !ok || len(open) == 0 {
		return
	}
	_, closing, ok := ast.FieldSlot(n, "close")
	if !ok || len(closing) > 0 {
		return
	}
	c.add(conflict.UnclosedDelimiter, open[0], "%s is not closed", ast.Text(open[0]))
}

// checkRequirements enforces the type requirements grammar fields declare,
// such as a conditional's condition being Boolean.
func (c *checker) checkRequirements(n ast.Node) {
	slots := n.Slots()
	for i, f := range n.Grammar() {
		if f.Require == ast.RequireNothing || len(slots[i]) == 0 {
			continue
		}
		e, ok := slots[i][0].(ast.Expression)
		if !ok {
			continue
		}
		t := valueType(typeOf(e, c.ctx))
		if !settled(t) {
			continue
		}
		switch f.Require {
		case ast.RequireBoolean:
			if !types.Accepts(types.BooleanType, t, c.ctx) {
				c.add(conflict.IncompatibleType, e, "expected ? but this is %s", t)
			}
		case ast.RequireNumber:
			if _, ok := t.(*types.Number); !ok {
				c.add(conflict.IncompatibleType, e, "expected # but this is %s", t)
			}
		}
	}
}

func (c *checker) isAbstractBody(p *ast.Placeholder) bool {
	fn, ok := c.ctx.Parent(p).(*ast.FunctionDefinition)
	if !ok || ast.Node(fn.Body) != ast.Node(p) {
		return false
	}
	block, ok := c.ctx.Parent(fn).(*ast.Block)
	if !ok {
		return false
	}
	_, ok = c.ctx.Parent(block).(*ast.StructureDefinition)
	return ok
}

func (c *checker) isRootStatement(n ast.Node) bool {
	block, ok := c.ctx.Parent(n).(*ast.Block)
	if !ok {
		return false
	}
	_, ok = c.ctx.Parent(block).(*ast.Program)
	return ok
}

func (c *checker) checkBlock(b *ast.Block) {
	var defs []ast.Definition
	for i, s := range b.Statements {
		switch d := s.(type) {
		case *ast.Bind, *ast.FunctionDefinition, *ast.StructureDefinition:
			defs = append(defs, d.(ast.Definition))
		case *ast.ConversionDefinition:
		default:
			if i < len(b.Statements)-1 {
				c.add(conflict.IgnoredExpression, s, "this value is not used")
			}
		}
	}
	c.checkDuplicates(conflict.DuplicateName, defs)
}

// checkDuplicates reports definitions that reuse an earlier definition's
// name. Functions taking different numbers of inputs may share a name.
func (c *checker) checkDuplicates(kind conflict.Kind, defs []ast.Definition) {
	for i, d := range defs {
		for _, earlier := range defs[:i] {
			name, clash := sharedName(earlier, d)
			if !clash {
				continue
			}
			f1, ok1 := earlier.(*ast.FunctionDefinition)
			f2, ok2 := d.(*ast.FunctionDefinition)
			if ok1 && ok2 && len(f1.Inputs) != len(f2.Inputs) {
				continue
			}
			c.add(kind, d, "%s is already defined", name).Secondary = []ast.Node{earlier}
			break
		}
	}
}

func sharedName(a, b ast.Definition) (string, bool) {
	for _, n := range a.Names() {
		if hasName(b, Normalize(n)) {
			return n, true
		}
	}
	return "", false
}

func typeVariableDefinitions(vars []*ast.TypeVariable) []ast.Definition {
	out := make([]ast.Definition, 0, len(vars))
	for _, v := range vars {
		out = append(out, v)
	}
	return out
}

func bindDefinitions(binds []*ast.Bind) []ast.Definition {
	out := make([]ast.Definition, 0, len(binds))
	for _, b := range binds {
		out = append(out, b)
	}
	return out
}

func (c *checker) checkShare(n ast.Node, share *ast.Token) {
	if share != nil && !c.isRootStatement(n) {
		c.add(conflict.MisplacedShare, share, "only top level definitions can be shared")
	}
}

func (c *checker) checkBind(b *ast.Bind) {
	c.checkShare(b, b.Share)
	if b.Colon != nil && b.Value == nil {
		c.add(conflict.ExpectedExpression, b, "%s needs a value", strings.Join(b.Names(), ","))
	}
	if b.Type != nil && b.Value != nil {
		expected := typeOf(b.Type, c.ctx)
		actual := typeOf(b.Value, c.ctx)
		if settled(expected) && settled(valueType(actual)) && !types.Accepts(expected, actual, c.ctx) {
			c.add(conflict.IncompatibleBind, b.Value, "%s is %s but this is %s", strings.Join(b.Names(), ","), expected, actual)
		}
	}
	if block, ok := c.ctx.Parent(b).(*ast.Block); ok && !block.IsRoot() && !c.used[b] {
		if _, members := c.ctx.Parent(block).(*ast.StructureDefinition); !members {
			c.add(conflict.UnusedBind, b, "%s is never used", strings.Join(b.Names(), ","))
		}
	}
}

func (c *checker) checkFunction(f *ast.FunctionDefinition) {
	c.checkShare(f, f.Share)
	c.checkDuplicates(conflict.DuplicateName, bindDefinitions(f.Inputs))
	if f.Body == nil {
		if block, ok := c.ctx.Parent(f).(*ast.Block); !ok || !isMembers(block, c.ctx) {
			c.add(conflict.ExpectedExpression, f, "function needs a body")
		}
		return
	}
	if f.Output == nil || f.IsAbstract() {
		return
	}
	if _, native := f.Body.(*ast.NativeExpression); native {
		return
	}
	expected := typeOf(f.Output, c.ctx)
	actual := valueType(typeOf(f.Body, c.ctx))
	if settled(expected) && settled(actual) && !types.Accepts(expected, actual, c.ctx) {
		c.add(conflict.IncompatibleOutput, f.Body, "function should give %s but gives %s", expected, actual)
	}
}

func isMembers(b *ast.Block, ctx *types.Context) bool {
	_, ok := ctx.Parent(b).(*ast.StructureDefinition)
	return ok
}

func (c *checker) checkStructure(s *ast.StructureDefinition) {
	c.checkShare(s, s.Share)
	c.checkDuplicates(conflict.DuplicateName, bindDefinitions(s.Inputs))
	for _, ref := range s.Interfaces {
		def := Resolve(ref.Identifier(), ref, c.ctx)
		if def == nil {
			continue
		}
		iface, ok := def.(*ast.StructureDefinition)
		if !ok || iface == s {
			c.add(conflict.UnknownTypeName, ref, "%s is not a structure", ref.Identifier())
			continue
		}
		for _, f := range iface.Functions() {
			if !f.IsAbstract() || len(f.Names()) == 0 {
				continue
			}
			impl, ok := Member(s, f.Names()[0], len(f.Inputs)).(*ast.FunctionDefinition)
			if !ok || impl.IsAbstract() || len(impl.Inputs) != len(f.Inputs) {
				c.add(conflict.IncompleteImplementation, s, "%s does not implement %s from %s",
					strings.Join(s.Names(), ","), f.Names()[0], ref.Identifier()).Secondary = []ast.Node{f}
			}
		}
	}
}

func (c *checker) checkReference(r *ast.Reference) {
	if Resolve(r.Identifier(), r, c.ctx) != nil {
		return
	}
	if s := c.suggest(r.Identifier(), r); s != "" {
		c.add(conflict.UnknownName, r, "unknown name %s; did you mean %s?", r.Identifier(), s)
		return
	}
	c.add(conflict.UnknownName, r, "unknown name %s", r.Identifier())
}

// suggest returns the visible name closest in spelling to name, if any is
// close enough to be a likely typo.
func (c *checker) suggest(name string, at ast.Node) string {
	best, bestDistance := "", 3
	for _, d := range Visible(at, c.ctx) {
		for _, candidate := range d.Names() {
			if dist := levenshtein.Distance(name, candidate, nil); dist < bestDistance {
				best, bestDistance = candidate, dist
			}
		}
	}
	return best
}

func (c *checker) checkEvaluate(e *ast.Evaluate) {
	fnType := typeOf(e.Function, c.ctx)
	if !settled(fnType) {
		return
	}
	callee, ok := CalleeOf(e, c.ctx)
	if !ok {
		c.add(conflict.NotAFunction, e.Function, "%s is not a function", fnType)
		return
	}
	var vars []*ast.TypeVariable
	switch {
	case callee.Function != nil && callee.Function.Definition != nil:
		vars = callee.Function.Definition.Variables()
	case callee.Structure != nil:
		vars = callee.Structure.Variables()
	}
	if len(e.TypeArguments()) > len(vars) {
		c.add(conflict.InvalidTypeInput, e.Types, "expected %d type inputs", len(vars))
	}
	if r := receiverOf(e.Function, c.ctx); r != nil {
		if num, ok := valueType(r).(*types.Number); ok {
			if _, numeric := NumberOperationOf(e.Function.(*ast.PropertyReference).Property()); numeric {
				if len(e.Inputs) == 1 {
					c.checkNumberOperand(e.Function.(*ast.PropertyReference).Property(), num, e.Inputs[0])
				}
				return
			}
		}
	}
	for i, in := range callee.Inputs {
		value, source := callee.Match.Values[i], callee.Match.Sources[i]
		if source == nil {
			if !in.Optional {
				c.add(conflict.MissingInput, e, "missing input %s", inputName(in))
			}
			continue
		}
		if value == nil {
			continue
		}
		actual := typeOf(value, c.ctx)
		if settled(in.Type) && settled(valueType(actual)) && !types.Accepts(in.Type, actual, c.ctx) {
			c.add(conflict.IncompatibleInput, value, "%s should be %s but this is %s", inputName(in), in.Type, actual)
		}
	}
	for _, x := range callee.Match.Extra {
		c.add(conflict.UnexpectedInput, x, "unexpected input")
	}
}

func inputName(in types.Input) string {
	if len(in.Names) == 0 {
		return "_"
	}
	return in.Names[0]
}

func (c *checker) checkNumberOperand(op string, left *types.Number, operand ast.Expression) {
	right := valueType(typeOf(operand, c.ctx))
	if !settled(right) {
		return
	}
	r, ok := right.(*types.Number)
	if !ok {
		c.add(conflict.IncompatibleInput, operand, "%s needs a number but this is %s", op, right)
		return
	}
	if !UnitsAgree(op, left, r) {
		c.add(conflict.IncompatibleInput, operand, "%s needs %s but this is %s", op, left, r)
	}
}

var precedence = map[string]int{
	"^": 3,
	"×": 2, "·": 2, "*": 2, "÷": 2, "/": 2, "%": 2,
	"+": 1, "-": 1,
}

func (c *checker) checkBinary(n *ast.BinaryOperation) {
	op := n.OperatorName()
	if left, ok := n.Left.(*ast.BinaryOperation); ok {
		outer, ok1 := precedence[op]
		inner, ok2 := precedence[left.OperatorName()]
		if ok1 && ok2 && outer > inner {
			c.add(conflict.OrderOfOperations, n, "evaluated left to right; use ( ) to make the order clear")
		}
	}
	if IsEquality(op) {
		return
	}
	if c.checkUnknownResult(n, types.ReasonUnknownOperator, conflict.UnknownOperator, n.Operator, "no operator %s on this value", op) {
		return
	}
	left := valueType(typeOf(n.Left, c.ctx))
	if !settled(left) {
		return
	}
	if num, ok := left.(*types.Number); ok {
		if _, numeric := NumberOperationOf(op); numeric {
			c.checkNumberOperand(op, num, n.Right)
			return
		}
	}
	fn, ok := Operator(left, op, 1, c.ctx)
	if !ok {
		return
	}
	t, ok := memberType(left, fn, c.ctx).(*types.Function)
	if !ok || len(t.Inputs) == 0 {
		return
	}
	concrete := ConcreteFunction(t, nil, left, []ast.Expression{n.Right}, n, c.ctx)
	right := typeOf(n.Right, c.ctx)
	expected := concrete.Inputs[0].Type
	if settled(expected) && settled(valueType(right)) && !types.Accepts(expected, right, c.ctx) {
		c.add(conflict.IncompatibleInput, n.Right, "%s needs %s but this is %s", op, expected, right)
	}
}

// checkUnknownResult reports a conflict when n's own type is unknown for
// the given reason, and not merely because one of its parts is unknown.
func (c *checker) checkUnknownResult(n ast.Node, reason types.Reason, kind conflict.Kind, anchor ast.Node, format string, args ...any) bool {
	u, ok := typeOf(n, c.ctx).(*types.Unknown)
	if !ok || u.Node != n || u.Reason != reason || u.Cause != nil {
		return false
	}
	if anchor == nil {
		anchor = n
	}
	c.add(kind, anchor, format, args...)
	return true
}

func (c *checker) checkConvert(n *ast.Convert) {
	from := valueType(typeOf(n.Expression, c.ctx))
	to := typeOf(n.Type, c.ctx)
	if !settled(from) || !settled(to) {
		return
	}
	if _, ok := ConversionPath(n, c.ctx); !ok {
		c.add(conflict.UnknownConversion, n, "no conversion from %s to %s", from, to)
	}
}

func (c *checker) checkIs(n *ast.Is) {
	actual := valueType(typeOf(n.Expression, c.ctx))
	tested := typeOf(n.Type, c.ctx)
	if !settled(actual) || !settled(tested) {
		return
	}
	if types.Accepts(actual, tested, c.ctx) || types.Accepts(tested, actual, c.ctx) {
		return
	}
	if u, ok := actual.(*types.Union); ok {
		for _, m := range u.Members {
			if types.Accepts(tested, m, c.ctx) {
				return
			}
		}
	}
	c.add(conflict.ImpossibleType, n, "%s can never be %s", actual, tested)
}

func (c *checker) checkStream(e ast.Expression) {
	t := typeOf(e, c.ctx)
	if !settled(t) {
		return
	}
	if _, ok := t.(*types.Stream); !ok {
		c.add(conflict.NotAStream, e, "%s is not a stream", t)
	}
}

func (c *checker) checkNameType(n *ast.NameType) {
	def := Resolve(n.Identifier(), n, c.ctx)
	var vars []*ast.TypeVariable
	switch d := def.(type) {
	case *ast.StructureDefinition:
		vars = d.Variables()
	case *ast.TypeVariable, *ast.StreamDefinition:
	default:
		c.add(conflict.UnknownTypeName, n, "unknown type %s", n.Identifier())
		return
	}
	if len(n.TypeArguments()) > len(vars) {
		c.add(conflict.InvalidTypeInput, n.Types, "%s takes %d type inputs", n.Identifier(), len(vars))
	}
}

func (c *checker) checkBorrow(b *ast.Borrow) {
	if b.SourceName() == "" {
		c.add(conflict.UnknownBorrow, b, "borrow needs a source name")
		return
	}
	var tree *ast.Tree
	ok := false
	if c.ctx.Borrower != nil {
		tree, ok = c.ctx.Borrower.Source(b.SourceName())
	}
	if !ok {
		c.add(conflict.UnknownBorrow, b, "no source named %s", b.SourceName())
		return
	}
	if tree == c.ctx.Source || c.reaches(tree, map[*ast.Tree]bool{}) {
		c.add(conflict.BorrowCycle, b, "%s borrows from this source", b.SourceName())
		return
	}
	if name := b.DefinitionName(); name != "" {
		found := false
		for _, d := range Shared(tree) {
			if hasName(d, Normalize(name)) {
				found = true
			}
		}
		if !found {
			c.add(conflict.UnknownBorrow, b, "%s does not share %s", b.SourceName(), name)
		}
	}
}

// reaches reports whether tree borrows, directly or not, from the
// context's source.
func (c *checker) reaches(tree *ast.Tree, visited map[*ast.Tree]bool) bool {
	if visited[tree] {
		return false
	}
	visited[tree] = true
	program, ok := tree.Root.(*ast.Program)
	if !ok {
		return false
	}
	for _, b := range program.Borrows {
		next, ok := c.ctx.Borrower.Source(b.SourceName())
		if !ok {
			continue
		}
		if next == c.ctx.Source || c.reaches(next, visited) {
			return true
		}
	}
	return false
}
