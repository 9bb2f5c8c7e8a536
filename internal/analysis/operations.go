package analysis

import (
	"math"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/types"
	"nickandperla.net/wordplay/internal/unit"
)

// IsEquality reports whether op compares any two values for equality.
// Equality is defined for every type rather than per structure.
func IsEquality(op string) bool {
	switch op {
	case "=", "≠", "!=":
		return true
	}
	return false
}

// NumberOperation is how an operator combines the units of its operands.
type NumberOperation int

const (
	// SameUnit requires both operands to share a unit, which the result
	// keeps: + - %.
	SameUnit NumberOperation = iota
	// Compare requires both operands to share a unit and is a Boolean.
	Compare
	// Multiply multiplies units.
	Multiply
	// Divide divides units.
	Divide
	// Power raises the unit to the exponent.
	Power
	// Keep applies to one operand and keeps its unit.
	Keep
	// SquareRoot halves the unit's exponents.
	SquareRoot
)

var numberOperations = map[string]NumberOperation{
	"+": SameUnit, "-": SameUnit, "%": SameUnit,
	"<": Compare, ">": Compare, "≤": Compare, "<=": Compare, "≥": Compare, ">=": Compare,
	"×": Multiply, "·": Multiply, "*": Multiply,
	"÷": Divide, "/": Divide, "^": Power,
	"round": Keep, "abs": Keep, "√": SquareRoot,
}

// NumberOperationOf classifies a Number member function by name.
func NumberOperationOf(name string) (NumberOperation, bool) {
	op, ok := numberOperations[name]
	return op, ok
}

// numberResult computes the type of a number operation. right is nil for
// operations on one operand; exponent is the literal exponent of ^ if any.
func numberResult(name string, left *types.Number, right types.Type, exponent ast.Expression) (types.Type, bool) {
	op, ok := NumberOperationOf(name)
	if !ok {
		return nil, false
	}
	if right == nil {
		switch {
		case op == SquareRoot:
			if root, ok := left.Unit.Root(2); ok {
				return types.NewNumber(root), true
			}
			return types.NewNumber(unit.Any), true
		case name == "-" || op == Keep:
			return types.NewNumber(left.Unit), true
		}
		return nil, false
	}
	r, ok := right.(*types.Number)
	if !ok {
		r = types.NewNumber(unit.Any)
	}
	switch op {
	case SameUnit:
		return types.NewNumber(left.Unit), true
	case Compare:
		return types.BooleanType, true
	case Multiply:
		return types.NewNumber(left.Unit.Product(r.Unit)), true
	case Divide:
		return types.NewNumber(left.Unit.Quotient(r.Unit)), true
	case Power:
		if left.Unit.IsUnitless() {
			return types.NewNumber(unit.None), true
		}
		if lit, ok := exponent.(*ast.NumberLiteral); ok {
			if v := lit.Value(); v == math.Trunc(v) && !math.IsInf(v, 0) {
				return types.NewNumber(left.Unit.Power(int(v))), true
			}
		}
		return types.NewNumber(unit.Any), true
	}
	return nil, false
}

// UnitsAgree reports whether a number operation's operands have units it
// can combine.
func UnitsAgree(name string, left, right *types.Number) bool {
	op, _ := NumberOperationOf(name)
	switch op {
	case SameUnit, Compare:
		return left.Unit.Equal(right.Unit)
	case Power:
		return right.Unit.IsUnitless() || right.Unit.IsWildcard()
	}
	return true
}

// Operator returns the function implementing op on values of type
// operand, looked up among its structure's members by name and arity.
func Operator(operand types.Type, op string, arity int, ctx *types.Context) (*ast.FunctionDefinition, bool) {
	def := StructureOf(operand, ctx)
	if def == nil {
		return nil, false
	}
	fn, ok := Member(def, op, arity).(*ast.FunctionDefinition)
	return fn, ok
}

func binaryType(n *ast.BinaryOperation, ctx *types.Context) types.Type {
	op := n.OperatorName()
	if IsEquality(op) {
		return types.BooleanType
	}
	left := valueType(typeOf(n.Left, ctx))
	switch l := left.(type) {
	case *types.Unknown:
		return types.NewUnknown(types.ReasonUnknownOperator, n).Because(l)
	case *types.Any, *types.Variable:
		return types.AnyType
	case *types.Number:
		if t, ok := numberResult(op, l, valueType(typeOf(n.Right, ctx)), n.Right); ok {
			return t
		}
	}
	fn, ok := Operator(left, op, 1, ctx)
	if !ok {
		return types.NewUnknown(types.ReasonUnknownOperator, n)
	}
	t, ok := memberType(left, fn, ctx).(*types.Function)
	if !ok {
		return types.NewUnknown(types.ReasonUnknownOperator, n)
	}
	return ConcreteFunction(t, nil, left, []ast.Expression{n.Right}, n, ctx).Output
}

func unaryType(n *ast.UnaryOperation, ctx *types.Context) types.Type {
	op := n.OperatorName()
	operand := valueType(typeOf(n.Operand, ctx))
	switch o := operand.(type) {
	case *types.Unknown:
		return types.NewUnknown(types.ReasonUnknownOperator, n).Because(o)
	case *types.Any, *types.Variable:
		return types.AnyType
	case *types.Number:
		if t, ok := numberResult(op, o, nil, nil); ok {
			return t
		}
	}
	fn, ok := Operator(operand, op, 0, ctx)
	if !ok {
		return types.NewUnknown(types.ReasonUnknownOperator, n)
	}
	t, ok := memberType(operand, fn, ctx).(*types.Function)
	if !ok {
		return types.NewUnknown(types.ReasonUnknownOperator, n)
	}
	return ConcreteFunction(t, nil, operand, nil, n, ctx).Output
}

// numberMethod types number member functions evaluated like methods, such
// as 5m.round() or 2m.×(3s), with unit arithmetic.
func numberMethod(e *ast.Evaluate, receiver types.Type, ctx *types.Context) (types.Type, bool) {
	num, ok := valueType(receiver).(*types.Number)
	if !ok {
		return nil, false
	}
	name := e.Function.(*ast.PropertyReference).Property()
	switch len(e.Inputs) {
	case 0:
		return numberResult(name, num, nil, nil)
	case 1:
		return numberResult(name, num, valueType(typeOf(e.Inputs[0], ctx)), e.Inputs[0])
	}
	return nil, false
}
