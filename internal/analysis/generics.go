package analysis

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/types"
)

// Inputs is the result of matching an evaluation's inputs to the inputs of
// the function or structure it evaluates.
type Inputs struct {
	// Values holds, per declared input, the expression supplying it or nil.
	Values []ast.Expression
	// Sources holds, per declared input, the evaluate input that supplied
	// it: the expression itself, or a named Bind.
	Sources []ast.Expression
	// Extra lists inputs that matched nothing.
	Extra []ast.Expression
}

// MatchInputs assigns an evaluation's inputs to declared inputs: named
// inputs by name, the rest in order.
func MatchInputs(declared []types.Input, given []ast.Expression) Inputs {
	m := Inputs{
		Values:  make([]ast.Expression, len(declared)),
		Sources: make([]ast.Expression, len(declared)),
	}
	index := func(name string) int {
		name = Normalize(name)
		for i, in := range declared {
			for _, n := range in.Names {
				if n == name {
					return i
				}
			}
		}
		return -1
	}
	next := 0
	for _, g := range given {
		if b, ok := g.(*ast.Bind); ok && len(b.Names()) > 0 {
			i := index(b.Names()[0])
			if i < 0 || m.Sources[i] != nil {
				m.Extra = append(m.Extra, g)
				continue
			}
			m.Values[i], m.Sources[i] = b.Value, g
			continue
		}
		for next < len(declared) && m.Sources[next] != nil {
			next++
		}
		if next >= len(declared) {
			m.Extra = append(m.Extra, g)
			continue
		}
		m.Values[next], m.Sources[next] = g, g
		next++
	}
	return m
}

// receiverOf returns the type of the value a function is accessed on, as
// in list.first(), or nil.
func receiverOf(fn ast.Expression, ctx *types.Context) types.Type {
	if p, ok := fn.(*ast.PropertyReference); ok {
		return typeOf(p.Structure, ctx)
	}
	return nil
}

// explicitBindings binds variables to explicit type inputs, in order.
func explicitBindings(vars []*ast.TypeVariable, args []ast.TypeNode, bindings map[*ast.TypeVariable]types.Type, ctx *types.Context) {
	for i, v := range vars {
		if i < len(args) {
			bindings[v] = typeOf(args[i], ctx)
		}
	}
}

// ConcreteFunction resolves the type variables of fn for one use of it.
// Variables are bound, in order of priority, by explicit type inputs, by
// the type of the receiver the function was accessed on, and by the types
// of the inputs given, including the output type of a function given as
// an input. Variables still unbound become Unknown types that name fn's
// definition.
func ConcreteFunction(fn *types.Function, typeArgs []ast.TypeNode, receiver types.Type, values []ast.Expression, at ast.Node, ctx *types.Context) *types.Function {
	bindings := map[*ast.TypeVariable]types.Type{}
	explicitBindings(fn.Variables, typeArgs, bindings, ctx)
	owned := append([]*ast.TypeVariable(nil), fn.Variables...)
	if receiver != nil {
		for v, t := range ReceiverBindings(receiver, ctx) {
			if _, ok := bindings[v]; !ok {
				bindings[v] = t
			}
		}
		if def := StructureOf(receiver, ctx); def != nil {
			owned = append(owned, def.Variables()...)
		}
	}
	for i, v := range values {
		if v == nil || i >= len(fn.Inputs) || !types.HasVariables(fn.Inputs[i].Type) {
			continue
		}
		types.Bind(types.Substitute(fn.Inputs[i].Type, bindings), typeOf(v, ctx), bindings)
	}
	var def ast.Definition
	if fn.Definition != nil {
		def = fn.Definition
	}
	for _, v := range owned {
		if _, ok := bindings[v]; !ok {
			u := types.NewUnknown(types.ReasonUnresolvedVariable, at)
			u.Definition = def
			bindings[v] = u
		}
	}
	if concrete, ok := types.Substitute(fn, bindings).(*types.Function); ok {
		return concrete
	}
	return fn
}

// ConcreteStructure resolves the type variables of a structure for one
// evaluation of it, from explicit type inputs and then from the inputs
// given.
func ConcreteStructure(def *ast.StructureDefinition, typeArgs []ast.TypeNode, values []ast.Expression, at ast.Node, ctx *types.Context) *types.Structure {
	vars := def.Variables()
	if len(vars) == 0 {
		return structureType(def, nil, ctx)
	}
	bindings := map[*ast.TypeVariable]types.Type{}
	explicitBindings(vars, typeArgs, bindings, ctx)
	inputs := inputsOf(def.Inputs, ctx)
	for i, v := range values {
		if v != nil && i < len(inputs) {
			types.Bind(types.Substitute(inputs[i].Type, bindings), typeOf(v, ctx), bindings)
		}
	}
	for _, v := range vars {
		if _, ok := bindings[v]; !ok {
			u := types.NewUnknown(types.ReasonUnresolvedVariable, at)
			u.Definition = def
			bindings[v] = u
		}
	}
	return structureType(def, bindings, ctx)
}

// Callee describes what an evaluation evaluates.
type Callee struct {
	// Function is the concrete type of the function evaluated, if any.
	Function *types.Function
	// Structure is set when the evaluation creates a structure.
	Structure *ast.StructureDefinition
	// Stream is set when the evaluation creates a stream.
	Stream *ast.StreamDefinition
	// Inputs are the declared inputs, concretized.
	Inputs []types.Input
	// Match assigns the given inputs to the declared ones.
	Match Inputs
}

// CalleeOf resolves what e evaluates. ok is false if e's function is not
// something that can be evaluated, or its type is unknown.
func CalleeOf(e *ast.Evaluate, ctx *types.Context) (Callee, bool) {
	switch t := typeOf(e.Function, ctx).(type) {
	case *types.Function:
		m := MatchInputs(t.Inputs, e.Inputs)
		fn := ConcreteFunction(t, e.TypeArguments(), receiverOf(e.Function, ctx), m.Values, e, ctx)
		return Callee{Function: fn, Inputs: fn.Inputs, Match: m}, true
	case *types.StructureDefinition:
		inputs := inputsOf(t.Definition.Inputs, ctx)
		m := MatchInputs(inputs, e.Inputs)
		s := ConcreteStructure(t.Definition, e.TypeArguments(), m.Values, e, ctx)
		for i := range inputs {
			inputs[i].Type = types.Substitute(inputs[i].Type, s.Arguments)
		}
		return Callee{Structure: t.Definition, Inputs: inputs, Match: m}, true
	case *types.StreamDefinition:
		inputs := inputsOf(t.Definition.Inputs, ctx)
		return Callee{Stream: t.Definition, Inputs: inputs, Match: MatchInputs(inputs, e.Inputs)}, true
	}
	return Callee{}, false
}

func evaluateType(e *ast.Evaluate, ctx *types.Context) types.Type {
	fnType := typeOf(e.Function, ctx)
	switch t := fnType.(type) {
	case *types.Unknown:
		return types.NewUnknown(types.ReasonNotAFunction, e).Because(t)
	case *types.Any:
		return types.AnyType
	case *types.Function:
		if r := receiverOf(e.Function, ctx); r != nil {
			if result, ok := numberMethod(e, r, ctx); ok {
				return result
			}
		}
		m := MatchInputs(t.Inputs, e.Inputs)
		return ConcreteFunction(t, e.TypeArguments(), receiverOf(e.Function, ctx), m.Values, e, ctx).Output
	case *types.StructureDefinition:
		inputs := inputsOf(t.Definition.Inputs, ctx)
		m := MatchInputs(inputs, e.Inputs)
		return ConcreteStructure(t.Definition, e.TypeArguments(), m.Values, e, ctx)
	case *types.StreamDefinition:
		return &types.Stream{Value: t.Output}
	}
	return types.NewUnknown(types.ReasonNotAFunction, e)
}

// lambdaInputType infers the type of an untyped input of a function given
// directly as an input to an evaluation, from the function type the
// evaluated function expects there. Only explicit type inputs and the
// receiver are used to resolve variables, since the given inputs may
// include this very function.
func lambdaInputType(b *ast.Bind, fn *ast.FunctionDefinition, ctx *types.Context) (types.Type, bool) {
	var e *ast.Evaluate
	var source ast.Expression = fn
	switch p := ctx.Parent(fn).(type) {
	case *ast.Evaluate:
		e = p
	case *ast.Bind:
		if outer, ok := ctx.Parent(p).(*ast.Evaluate); ok && ast.Node(p.Value) == ast.Node(fn) {
			e, source = outer, p
		}
	}
	if e == nil || ast.Node(e.Function) == ast.Node(fn) {
		return nil, false
	}
	callee, ok := typeOf(e.Function, ctx).(*types.Function)
	if !ok {
		return nil, false
	}
	m := MatchInputs(callee.Inputs, e.Inputs)
	param := -1
	for i, s := range m.Sources {
		if s == source {
			param = i
		}
	}
	if param < 0 {
		return nil, false
	}
	bindings := map[*ast.TypeVariable]types.Type{}
	explicitBindings(callee.Variables, e.TypeArguments(), bindings, ctx)
	if r := receiverOf(e.Function, ctx); r != nil {
		for v, t := range ReceiverBindings(r, ctx) {
			if _, ok := bindings[v]; !ok {
				bindings[v] = t
			}
		}
	}
	expected, ok := types.Substitute(callee.Inputs[param].Type, bindings).(*types.Function)
	if !ok {
		return nil, false
	}
	for i, in := range fn.Inputs {
		if in != b {
			continue
		}
		if i >= len(expected.Inputs) || types.HasVariables(expected.Inputs[i].Type) {
			return types.AnyType, true
		}
		return expected.Inputs[i].Type, true
	}
	return nil, false
}
