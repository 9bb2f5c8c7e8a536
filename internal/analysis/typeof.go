// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package analysis

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/basis"
	"nickandperla.net/wordplay/internal/types"
	"nickandperla.net/wordplay/internal/unit"
)

// TypeOf returns the type of an expression. It never fails: expressions
// whose type cannot be determined have an Unknown type explaining why.
func TypeOf(e ast.Expression, ctx *types.Context) types.Type { return typeOf(e, ctx) }

// TypeOfNode returns the type a type node denotes.
func TypeOfNode(t ast.TypeNode, ctx *types.Context) types.Type { return typeOf(t, ctx) }

// TypeOfDefinition returns the type of a reference to d.
func TypeOfDefinition(d ast.Definition, ctx *types.Context) types.Type { return typeOf(d, ctx) }

// typeOf memoizes types in the context and guards against cycles: a node
// whose type is needed while it is being computed is Unknown.
func typeOf(n ast.Node, ctx *types.Context) types.Type {
	if n == nil {
		return types.NewUnknown(types.ReasonNoExpression, nil)
	}
	if t, ok := ctx.CachedType(n); ok {
		return t
	}
	if !ctx.Enter(n) {
		return types.NewUnknown(types.ReasonCycle, n)
	}
	t := computeType(n, ctx)
	ctx.Exit(n)
	ctx.CacheType(n, t)
	return t
}

// valueType unwraps a stream to the type of its values.
func valueType(t types.Type) types.Type {
	if s, ok := t.(*types.Stream); ok {
		return s.Value
	}
	return t
}

func computeType(n ast.Node, ctx *types.Context) types.Type {
	switch n := n.(type) {
	case *ast.Program:
		return typeOf(n.Block, ctx)
	case *ast.Block:
		if len(n.Statements) == 0 {
			return types.NoneType
		}
		last := n.Statements[len(n.Statements)-1]
		if _, ok := last.(*ast.ConversionDefinition); ok {
			return types.NoneType
		}
		return typeOf(last, ctx)
	case *ast.Bind:
		return bindType(n, ctx)
	case *ast.FunctionDefinition:
		return functionType(n, ctx)
	case *ast.StructureDefinition:
		return &types.StructureDefinition{Definition: n, Structure: structureType(n, nil, ctx)}
	case *ast.ConversionDefinition:
		return types.NoneType
	case *ast.StreamDefinition:
		return &types.StreamDefinition{Definition: n, Output: typeOf(n.Output, ctx)}
	case *ast.TypeVariable:
		return &types.Variable{Definition: n}
	case *ast.Evaluate:
		return evaluateType(n, ctx)
	case *ast.BinaryOperation:
		return binaryType(n, ctx)
	case *ast.UnaryOperation:
		return unaryType(n, ctx)
	case *ast.Conditional:
		return types.PossibleUnion(ctx, typeOf(n.Yes, ctx), typeOf(n.No, ctx))
	case *ast.Reference:
		return referenceType(n, ctx)
	case *ast.PropertyReference:
		return propertyType(n, ctx)
	case *ast.NumberLiteral:
		return types.NewNumber(n.Measure())
	case *ast.TextLiteral, *ast.Template:
		return types.TextType
	case *ast.BooleanLiteral, *ast.Is, *ast.Changed, *ast.Initial:
		return types.BooleanType
	case *ast.NoneLiteral:
		return types.NoneType
	case *ast.ListLiteral:
		return &types.List{Item: itemsType(n.Values, ctx)}
	case *ast.SetLiteral:
		return &types.Set{Key: itemsType(n.Values, ctx)}
	case *ast.MapLiteral:
		keys := make([]ast.Expression, 0, len(n.Entries))
		values := make([]ast.Expression, 0, len(n.Entries))
		for _, kv := range n.Entries {
			keys = append(keys, kv.Key)
			if kv.Value != nil {
				values = append(values, kv.Value)
			}
		}
		return &types.Map{Key: itemsType(keys, ctx), Value: itemsType(values, ctx)}
	case *ast.ListAccess:
		switch l := valueType(typeOf(n.List, ctx)).(type) {
		case *types.List:
			return l.Item
		case *types.Unknown, *types.Any:
			return l
		}
		return types.NewUnknown(types.ReasonUnknownProperty, n)
	case *ast.SetOrMapAccess:
		switch c := valueType(typeOf(n.Collection, ctx)).(type) {
		case *types.Set:
			return types.BooleanType
		case *types.Map:
			return c.Value
		case *types.Unknown, *types.Any:
			return c
		}
		return types.NewUnknown(types.ReasonUnknownProperty, n)
	case *ast.Convert:
		return typeOf(n.Type, ctx)
	case *ast.Reaction:
		if n.Next == nil {
			return &types.Stream{Value: valueType(typeOf(n.Initial, ctx))}
		}
		return &types.Stream{Value: types.PossibleUnion(ctx, valueType(typeOf(n.Initial, ctx)), valueType(typeOf(n.Next, ctx)))}
	case *ast.Previous:
		s, ok := typeOf(n.Stream, ctx).(*types.Stream)
		if !ok {
			return types.NewUnknown(types.ReasonNotAStream, n)
		}
		return s.Value
	case *ast.This:
		return thisType(n, ctx)
	case *ast.Placeholder:
		if n.Type != nil {
			return typeOf(n.Type, ctx)
		}
		return types.NewUnknown(types.ReasonPlaceholder, n)
	case *ast.NativeExpression:
		return typeOf(n.Type, ctx)
	case *ast.Unparsable, *ast.UnparsableType:
		return types.NewUnknown(types.ReasonUnparsable, n)

	case *ast.NumberType:
		return types.NewNumber(n.Measure())
	case *ast.TextType:
		return types.TextType
	case *ast.BooleanType:
		return types.BooleanType
	case *ast.NoneType:
		return types.NoneType
	case *ast.ListType:
		return &types.List{Item: optionalType(n.Item, ctx)}
	case *ast.SetType:
		return &types.Set{Key: optionalType(n.Key, ctx)}
	case *ast.MapType:
		return &types.Map{Key: optionalType(n.Key, ctx), Value: optionalType(n.Value, ctx)}
	case *ast.FunctionType:
		f := &types.Function{Output: optionalType(n.Output, ctx), Inputs: inputsOf(n.Inputs, ctx)}
		if n.TypeVars != nil {
			f.Variables = n.TypeVars.Variables
		}
		return f
	case *ast.NameType:
		return nameType(n, ctx)
	case *ast.UnionType:
		return types.PossibleUnion(ctx, typeOf(n.Left, ctx), typeOf(n.Right, ctx))
	case *ast.TypePlaceholder:
		return types.NewUnknown(types.ReasonPlaceholder, n)
	}
	return types.NewUnknown(types.ReasonNoExpression, n)
}

func optionalType(t ast.TypeNode, ctx *types.Context) types.Type {
	if t == nil {
		return types.AnyType
	}
	return typeOf(t, ctx)
}

func itemsType(values []ast.Expression, ctx *types.Context) types.Type {
	ts := make([]types.Type, 0, len(values))
	for _, v := range values {
		ts = append(ts, valueType(typeOf(v, ctx)))
	}
	return types.PossibleUnion(ctx, ts...)
}

// bindType is the declared type of a bind, or else the type of its value.
// Inputs of functions passed directly as inputs take the type the receiving
// function expects; other inputs without a type or default accept anything.
func bindType(b *ast.Bind, ctx *types.Context) types.Type {
	if b.Type != nil {
		return typeOf(b.Type, ctx)
	}
	if b.Value != nil {
		return typeOf(b.Value, ctx)
	}
	if fn, ok := ctx.Parent(b).(*ast.FunctionDefinition); ok {
		if t, ok := lambdaInputType(b, fn, ctx); ok {
			return t
		}
	}
	return types.AnyType
}

func inputsOf(binds []*ast.Bind, ctx *types.Context) []types.Input {
	inputs := make([]types.Input, 0, len(binds))
	for _, b := range binds {
		names := make([]string, 0, len(b.Names()))
		for _, n := range b.Names() {
			names = append(names, Normalize(n))
		}
		inputs = append(inputs, types.Input{Names: names, Type: typeOf(b, ctx), Optional: b.Value != nil})
	}
	return inputs
}

func functionType(def *ast.FunctionDefinition, ctx *types.Context) *types.Function {
	f := &types.Function{Definition: def, Variables: def.Variables(), Inputs: inputsOf(def.Inputs, ctx)}
	switch {
	case def.Output != nil:
		f.Output = typeOf(def.Output, ctx)
	case def.Body != nil:
		f.Output = valueType(typeOf(def.Body, ctx))
	default:
		f.Output = types.NewUnknown(types.ReasonNoExpression, def)
	}
	return f
}

// structureType returns the type of values of def with the given type
// arguments.
func structureType(def *ast.StructureDefinition, args map[*ast.TypeVariable]types.Type, ctx *types.Context) *types.Structure {
	return &types.Structure{Definition: def, Interfaces: Interfaces(def, ctx), Arguments: args}
}

// Interfaces resolves the interfaces a structure declares it implements.
func Interfaces(def *ast.StructureDefinition, ctx *types.Context) []*ast.StructureDefinition {
	var out []*ast.StructureDefinition
	for _, ref := range def.Interfaces {
		if s, ok := Resolve(ref.Identifier(), ref, ctx).(*ast.StructureDefinition); ok && s != def {
			out = append(out, s)
		}
	}
	return out
}

func referenceType(ref *ast.Reference, ctx *types.Context) types.Type {
	def := Resolve(ref.Identifier(), ref, ctx)
	if def == nil {
		return types.NewUnknown(types.ReasonUnknownName, ref)
	}
	if t, ok := narrowed(ref, def, ctx); ok {
		return t
	}
	if b, ok := def.(*ast.Bind); ok && b.Type == nil {
		if r, ok := b.Value.(*ast.Reaction); ok && ctx.Visiting(r) {
			return &types.Stream{Value: valueType(typeOf(r.Initial, ctx))}
		}
	}
	return typeOf(def, ctx)
}

// narrowed applies the guard of an enclosing conditional that tests the
// referenced definition's type: in c•T ? yes no, c is a T in yes and
// anything but a T in no.
func narrowed(ref *ast.Reference, def ast.Definition, ctx *types.Context) (types.Type, bool) {
	if t, ok := ctx.Narrowed(ref); ok {
		return t, true
	}
	child := ast.Node(ref)
	for p := ctx.Parent(ref); p != nil; child, p = p, ctx.Parent(p) {
		c, ok := p.(*ast.Conditional)
		if !ok || child == ast.Node(c.Condition) {
			continue
		}
		is, ok := c.Condition.(*ast.Is)
		if !ok {
			continue
		}
		subject, ok := is.Expression.(*ast.Reference)
		if !ok || Resolve(subject.Identifier(), subject, ctx) != def {
			continue
		}
		guard := typeOf(is.Type, ctx)
		t := guard
		if child != ast.Node(c.Yes) {
			t = types.Without(ctx, typeOf(def, ctx), guard)
		}
		ctx.Narrow(ref, t)
		return t, true
	}
	return nil, false
}

func thisType(n *ast.This, ctx *types.Context) types.Type {
	child := ast.Node(n)
	for p := ctx.Parent(n); p != nil; child, p = p, ctx.Parent(p) {
		switch p := p.(type) {
		case *ast.Reaction:
			if child != ast.Node(p.Initial) {
				return valueType(typeOf(p.Initial, ctx))
			}
		case *ast.ConversionDefinition:
			return conversionSide(p.Input, p, ctx)
		case *ast.StructureDefinition:
			return structureType(p, nil, ctx)
		}
	}
	return types.NewUnknown(types.ReasonUnknownName, n)
}

// nameType resolves a named type: a structure, a type variable, a stream,
// or one of the basis structures that back the primitive types.
func nameType(n *ast.NameType, ctx *types.Context) types.Type {
	def := Resolve(n.Identifier(), n, ctx)
	args := make([]types.Type, 0, len(n.TypeArguments()))
	for _, a := range n.TypeArguments() {
		args = append(args, typeOf(a, ctx))
	}
	switch d := def.(type) {
	case *ast.TypeVariable:
		return &types.Variable{Definition: d}
	case *ast.StreamDefinition:
		return &types.Stream{Value: typeOf(d.Output, ctx)}
	case *ast.StructureDefinition:
		if t, ok := primitiveType(d, args, ctx); ok {
			return t
		}
		bindings := map[*ast.TypeVariable]types.Type{}
		for i, v := range d.Variables() {
			if i < len(args) {
				bindings[v] = args[i]
			}
		}
		if len(bindings) == 0 {
			bindings = nil
		}
		return structureType(d, bindings, ctx)
	}
	return types.NewUnknown(types.ReasonUnknownName, n)
}

// primitiveType maps a basis structure to the type it backs.
func primitiveType(def *ast.StructureDefinition, args []types.Type, ctx *types.Context) (types.Type, bool) {
	arg := func(i int) types.Type {
		if i < len(args) {
			return args[i]
		}
		return types.AnyType
	}
	b := ctx.Basis
	switch def {
	case b.Structure(basis.BooleanName):
		return types.BooleanType, true
	case b.Structure(basis.NumberName):
		return types.NewNumber(unit.Any), true
	case b.Structure(basis.TextName):
		return types.TextType, true
	case b.Structure(basis.NoneName):
		return types.NoneType, true
	case b.Structure(basis.ListName):
		return &types.List{Item: arg(0)}, true
	case b.Structure(basis.SetName):
		return &types.Set{Key: arg(0)}, true
	case b.Structure(basis.MapName):
		return &types.Map{Key: arg(0), Value: arg(1)}, true
	}
	return nil, false
}

// StructureOf returns the structure whose members values of type t have.
// Primitive types are backed by basis structures.
func StructureOf(t types.Type, ctx *types.Context) *ast.StructureDefinition {
	b := ctx.Basis
	switch t := valueType(t).(type) {
	case *types.Structure:
		return t.Definition
	case *types.Boolean:
		return b.Structure(basis.BooleanName)
	case *types.Number:
		return b.Structure(basis.NumberName)
	case *types.Text:
		return b.Structure(basis.TextName)
	case *types.None:
		return b.Structure(basis.NoneName)
	case *types.List:
		return b.Structure(basis.ListName)
	case *types.Set:
		return b.Structure(basis.SetName)
	case *types.Map:
		return b.Structure(basis.MapName)
	}
	return nil
}

// ReceiverBindings returns what the type variables of t's structure are
// bound to.
func ReceiverBindings(t types.Type, ctx *types.Context) map[*ast.TypeVariable]types.Type {
	bindings := map[*ast.TypeVariable]types.Type{}
	bind := func(name string, i int, arg types.Type) {
		vars := ctx.Basis.Structure(name).Variables()
		if i < len(vars) && arg != nil {
			if _, unbound := arg.(*types.Any); !unbound {
				bindings[vars[i]] = arg
			}
		}
	}
	switch t := valueType(t).(type) {
	case *types.Structure:
		for v, a := range t.Arguments {
			bindings[v] = a
		}
	case *types.List:
		bind(basis.ListName, 0, t.Item)
	case *types.Set:
		bind(basis.SetName, 0, t.Key)
	case *types.Map:
		bind(basis.MapName, 0, t.Key)
		bind(basis.MapName, 1, t.Value)
	}
	return bindings
}

// Member finds the input, bind or function of def with the given name.
// When several functions share the name, the one taking arity inputs is
// preferred; a negative arity matches the first.
func Member(def *ast.StructureDefinition, name string, arity int) ast.Definition {
	name = Normalize(name)
	var fallback ast.Definition
	for _, in := range def.Inputs {
		if hasName(in, name) {
			return in
		}
	}
	for _, b := range def.Binds() {
		if hasName(b, name) {
			return b
		}
	}
	for _, f := range def.Functions() {
		if !hasName(f, name) {
			continue
		}
		if arity < 0 || len(f.Inputs) == arity {
			return f
		}
		if fallback == nil {
			fallback = f
		}
	}
	return fallback
}

// memberType is the type of a member as seen through a receiver of type
// receiver, with the receiver's type arguments substituted.
func memberType(receiver types.Type, member ast.Definition, ctx *types.Context) types.Type {
	return types.Substitute(typeOf(member, ctx), ReceiverBindings(receiver, ctx))
}

func propertyType(n *ast.PropertyReference, ctx *types.Context) types.Type {
	receiver := typeOf(n.Structure, ctx)
	switch r := valueType(receiver).(type) {
	case *types.Unknown:
		return types.NewUnknown(types.ReasonUnknownProperty, n).Because(r)
	case *types.Any, *types.Variable:
		return types.AnyType
	}
	def := StructureOf(receiver, ctx)
	if def == nil || n.Property() == "" {
		return types.NewUnknown(types.ReasonUnknownProperty, n)
	}
	member := Member(def, n.Property(), -1)
	if member == nil {
		return types.NewUnknown(types.ReasonUnknownProperty, n)
	}
	return memberType(receiver, member, ctx)
}

// StructureType returns the type of an instance of def with no type
// arguments bound.
func StructureType(def *ast.StructureDefinition, ctx *types.Context) *types.Structure {
	return structureType(def, nil, ctx)
}
