package eval

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/value"
)

// Compile translates a node into the steps that evaluate it. Evaluating
// the steps of an expression leaves exactly one value on the stack, or
// halts.
//
// A conditional compiles to
//
//	Start, condition, JumpIf(false, len(yes)+1), yes, Jump(len(no)), no, Finish
//
// and a reaction to
//
//	Start, condition, Check(Exists), JumpIf(true, len(initial)+2),
//	initial, Check(Record), Jump(len(next)+2),
//	JumpIf(false, len(next)+1), next, Check(Record), Finish
//
// so that next is only evaluated once the stream exists and the condition
// holds.
func Compile(n ast.Node) []Step {
	return compile(n, false)
}

func compile(n ast.Node, raw bool) []Step {
	one := func(k StepKind) Step { return Step{Kind: k, Node: n, Raw: raw} }
	leaf := []Step{one(Finish)}

	switch n := n.(type) {
	case *ast.Program:
		return concat([]Step{one(Start)}, expression(n.Block, n, false), []Step{one(Finish)})

	case *ast.Block:
		steps := []Step{one(Start)}
		for _, s := range n.Statements {
			steps = append(steps, compile(s, false)...)
		}
		return append(steps, one(Finish))

	case *ast.Bind:
		if n.Value == nil {
			return leaf
		}
		return append(compile(n.Value, true), one(Finish))

	case *ast.NumberLiteral, *ast.TextLiteral, *ast.BooleanLiteral, *ast.NoneLiteral,
		*ast.Reference, *ast.This, *ast.Initial,
		*ast.FunctionDefinition, *ast.StructureDefinition, *ast.ConversionDefinition, *ast.StreamDefinition:
		return leaf

	case *ast.Placeholder, *ast.Unparsable, *ast.NativeExpression:
		return []Step{{Kind: Halt, Node: n, Exception: value.Unimplemented}}

	case *ast.BinaryOperation:
		return concat(expression(n.Left, n, false), expression(n.Right, n, false), leaf)

	case *ast.UnaryOperation:
		return append(expression(n.Operand, n, false), one(Finish))

	case *ast.Conditional:
		condition := expression(n.Condition, n, false)
		yes := expression(n.Yes, n, raw)
		no := expression(n.No, n, raw)
		return concat(
			[]Step{one(Start)},
			condition,
			[]Step{{Kind: JumpIf, Node: n, When: false, Offset: len(yes) + 1}},
			yes,
			[]Step{{Kind: Jump, Node: n, Offset: len(no)}},
			no,
			[]Step{one(Finish)},
		)

	case *ast.Reaction:
		condition := expression(n.Condition, n, false)
		initial := expression(n.Initial, n, false)
		next := expression(n.Next, n, false)
		return concat(
			[]Step{one(Start)},
			condition,
			[]Step{
				{Kind: Check, Node: n, Check: Exists},
				{Kind: JumpIf, Node: n, When: true, Offset: len(initial) + 2},
			},
			initial,
			[]Step{
				{Kind: Check, Node: n, Check: Record},
				{Kind: Jump, Node: n, Offset: len(next) + 2},
				{Kind: JumpIf, Node: n, When: false, Offset: len(next) + 1},
			},
			next,
			[]Step{{Kind: Check, Node: n, Check: Record}, one(Finish)},
		)

	case *ast.Evaluate:
		steps := expression(n.Function, n, false)
		for _, in := range n.Inputs {
			if b, ok := in.(*ast.Bind); ok {
				steps = append(steps, expression(b.Value, b, false)...)
				continue
			}
			steps = append(steps, compile(in, false)...)
		}
		return append(steps, one(StartEvaluation))

	case *ast.PropertyReference:
		return append(expression(n.Structure, n, false), one(Finish))

	case *ast.ListLiteral:
		return concat(expressions(n.Values), leaf)

	case *ast.SetLiteral:
		return concat(expressions(n.Values), leaf)

	case *ast.MapLiteral:
		var steps []Step
		for _, kv := range n.Entries {
			steps = append(steps, expression(kv.Key, kv, false)...)
			steps = append(steps, expression(kv.Value, kv, false)...)
		}
		return append(steps, one(Finish))

	case *ast.ListAccess:
		return concat(expression(n.List, n, false), expression(n.Index, n, false), leaf)

	case *ast.SetOrMapAccess:
		return concat(expression(n.Collection, n, false), expression(n.Key, n, false), leaf)

	case *ast.Is:
		return append(expression(n.Expression, n, false), one(Finish))

	case *ast.Convert:
		return append(expression(n.Expression, n, false), one(Finish))

	case *ast.Template:
		return concat(expressions(n.Expressions()), leaf)

	case *ast.Changed:
		return append(expression(n.Stream, n, true), Step{Kind: Finish, Node: n})

	case *ast.Previous:
		return concat(expression(n.Index, n, false), expression(n.Stream, n, true), []Step{{Kind: Finish, Node: n}})
	}
	return []Step{{Kind: Halt, Node: n, Exception: value.Unimplemented}}
}

// expression compiles a required part of parent, halting if it is missing.
func expression(e ast.Node, parent ast.Node, raw bool) []Step {
	if isNil(e) {
		return []Step{{Kind: Halt, Node: parent, Exception: value.ValueException}}
	}
	return compile(e, raw)
}

func expressions(es []ast.Expression) []Step {
	var steps []Step
	for _, e := range es {
		steps = append(steps, compile(e, false)...)
	}
	return steps
}

func isNil(n ast.Node) bool {
	if b, ok := n.(*ast.Block); ok {
		return b == nil
	}
	return n == nil
}

func concat(parts ...[]Step) []Step {
	var out []Step
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
