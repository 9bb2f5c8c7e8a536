package eval

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nickandperla.net/wordplay/internal/analysis"
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/internal/unit"
	"nickandperla.net/wordplay/internal/value"
)

// NativeFunc implements a basis function. receiver is the value the
// function was called on.
type NativeFunc func(at ast.Node, receiver value.Value, args []value.Value) value.Value

// NativeConversion implements a basis conversion.
type NativeConversion func(at ast.Node, v value.Value) value.Value

// native returns the implementation of the named basis function, or nil.
func native(name string) NativeFunc {
	owner, fn, _ := strings.Cut(name, ".")
	switch owner {
	case "Number":
		return numberNative(fn)
	case "Boolean":
		return booleanNative(fn)
	case "Text":
		return textNative(fn)
	case "List":
		return listNative(fn)
	case "Set":
		return setNative(fn)
	case "Map":
		return mapNative(fn)
	}
	return nil
}

func typeError(at ast.Node, format string, args ...any) value.Value {
	return value.NewException(value.TypeException, at, format, args...)
}

func arity(at ast.Node, args []value.Value, n int) value.Value {
	if len(args) < n {
		return value.NewException(value.FunctionException, at, "expected %d inputs, got %d", n, len(args))
	}
	return nil
}

func numberNative(name string) NativeFunc {
	op, ok := analysis.NumberOperationOf(name)
	if !ok {
		return nil
	}
	return func(at ast.Node, receiver value.Value, args []value.Value) value.Value {
		left, ok := receiver.(*value.Number)
		if !ok {
			return typeError(at, "%s is not a number", receiver)
		}
		if len(args) == 0 {
			switch {
			case name == "-":
				return value.NewNumber(-left.Amount, left.Unit)
			case name == "round":
				return value.NewNumber(math.Round(left.Amount), left.Unit)
			case name == "abs":
				return value.NewNumber(math.Abs(left.Amount), left.Unit)
			case op == analysis.SquareRoot:
				if left.Amount < 0 {
					return value.NewException(value.ValueException, at, "square root of %s", left)
				}
				root, ok := left.Unit.Root(2)
				if !ok {
					return typeError(at, "%s has no square root unit", left.Unit)
				}
				return value.NewNumber(math.Sqrt(left.Amount), root)
			}
			return arity(at, args, 1)
		}
		right, ok := args[0].(*value.Number)
		if !ok {
			return typeError(at, "%s is not a number", args[0])
		}
		switch op {
		case analysis.SameUnit, analysis.Compare:
			if !left.Unit.Equal(right.Unit) {
				return typeError(at, "cannot combine %s and %s", left, right)
			}
		}
		switch name {
		case "+":
			return value.NewNumber(left.Amount+right.Amount, left.Unit)
		case "-":
			return value.NewNumber(left.Amount-right.Amount, left.Unit)
		case "%":
			if right.Amount == 0 {
				return value.NewException(value.ValueException, at, "remainder of division by zero")
			}
			return value.NewNumber(math.Mod(left.Amount, right.Amount), left.Unit)
		case "×":
			return value.NewNumber(left.Amount*right.Amount, left.Unit.Product(right.Unit))
		case "÷":
			if right.Amount == 0 {
				return value.NewException(value.ValueException, at, "division by zero")
			}
			return value.NewNumber(left.Amount/right.Amount, left.Unit.Quotient(right.Unit))
		case "^":
			if !right.Unit.IsUnitless() {
				return typeError(at, "exponent %s has a unit", right)
			}
			u := left.Unit
			if !u.IsUnitless() {
				if right.Amount != math.Trunc(right.Amount) {
					return typeError(at, "cannot raise %s to a fractional power", left.Unit)
				}
				u = u.Power(int(right.Amount))
			}
			return value.NewNumber(math.Pow(left.Amount, right.Amount), u)
		case "<":
			return value.Bool(left.Amount < right.Amount)
		case ">":
			return value.Bool(left.Amount > right.Amount)
		case "≤":
			return value.Bool(left.Amount <= right.Amount)
		case "≥":
			return value.Bool(left.Amount >= right.Amount)
		}
		return value.NewException(value.Unimplemented, at, "Number.%s is not implemented", name)
	}
}

func booleanNative(name string) NativeFunc {
	return func(at ast.Node, receiver value.Value, args []value.Value) value.Value {
		left, ok := receiver.(*value.Boolean)
		if !ok {
			return typeError(at, "%s is not a truth value", receiver)
		}
		if name == "~" {
			return value.Bool(!left.Value)
		}
		if ex := arity(at, args, 1); ex != nil {
			return ex
		}
		right, ok := args[0].(*value.Boolean)
		if !ok {
			return typeError(at, "%s is not a truth value", args[0])
		}
		switch name {
		case "&":
			return value.Bool(left.Value && right.Value)
		case "|":
			return value.Bool(left.Value || right.Value)
		}
		return value.NewException(value.Unimplemented, at, "Boolean.%s is not implemented", name)
	}
}

func textNative(name string) NativeFunc {
	return func(at ast.Node, receiver value.Value, args []value.Value) value.Value {
		t, ok := receiver.(*value.Text)
		if !ok {
			return typeError(at, "%s is not text", receiver)
		}
		switch name {
		case "length":
			return value.NewNumber(float64(uniseg.GraphemeClusterCount(t.Value)), unit.None)
		case "upper":
			return value.NewText(cases.Upper(language.Und).String(t.Value))
		case "lower":
			return value.NewText(cases.Lower(language.Und).String(t.Value))
		}
		if ex := arity(at, args, 1); ex != nil {
			return ex
		}
		other, ok := args[0].(*value.Text)
		if !ok {
			return typeError(at, "%s is not text", args[0])
		}
		switch name {
		case "+":
			return value.NewText(t.Value + other.Value)
		case "has":
			return value.Bool(strings.Contains(t.Value, other.Value))
		}
		return value.NewException(value.Unimplemented, at, "Text.%s is not implemented", name)
	}
}

func listNative(name string) NativeFunc {
	return func(at ast.Node, receiver value.Value, args []value.Value) value.Value {
		l, ok := receiver.(*value.List)
		if !ok {
			return typeError(at, "%s is not a list", receiver)
		}
		items := l.Items
		switch name {
		case "length":
			return value.NewNumber(float64(len(items)), unit.None)
		case "first":
			if len(items) == 0 {
				return value.Nothing
			}
			return items[0]
		case "last":
			if len(items) == 0 {
				return value.Nothing
			}
			return items[len(items)-1]
		case "rest":
			if len(items) == 0 {
				return &value.List{}
			}
			return &value.List{Items: append([]value.Value(nil), items[1:]...)}
		case "reverse":
			out := make([]value.Value, len(items))
			for i, v := range items {
				out[len(items)-1-i] = v
			}
			return &value.List{Items: out}
		}
		if ex := arity(at, args, 1); ex != nil {
			return ex
		}
		switch name {
		case "has":
			for _, v := range items {
				if value.Equal(v, args[0]) {
					return value.True
				}
			}
			return value.False
		case "+":
			other, ok := args[0].(*value.List)
			if !ok {
				return typeError(at, "%s is not a list", args[0])
			}
			out := append(append([]value.Value(nil), items...), other.Items...)
			return &value.List{Items: out}
		}
		return value.NewException(value.Unimplemented, at, "List.%s is not implemented", name)
	}
}

func setNative(name string) NativeFunc {
	return func(at ast.Node, receiver value.Value, args []value.Value) value.Value {
		s, ok := receiver.(*value.Set)
		if !ok {
			return typeError(at, "%s is not a set", receiver)
		}
		if name == "size" {
			return value.NewNumber(float64(len(s.Items)), unit.None)
		}
		if ex := arity(at, args, 1); ex != nil {
			return ex
		}
		switch name {
		case "has":
			return value.Bool(s.Has(args[0]))
		case "+":
			return value.NewSet(append(append([]value.Value(nil), s.Items...), args[0])...)
		case "-":
			var out []value.Value
			for _, v := range s.Items {
				if !value.Equal(v, args[0]) {
					out = append(out, v)
				}
			}
			return value.NewSet(out...)
		}
		return value.NewException(value.Unimplemented, at, "Set.%s is not implemented", name)
	}
}

func mapNative(name string) NativeFunc {
	return func(at ast.Node, receiver value.Value, args []value.Value) value.Value {
		m, ok := receiver.(*value.Map)
		if !ok {
			return typeError(at, "%s is not a map", receiver)
		}
		switch name {
		case "size":
			return value.NewNumber(float64(len(m.Keys)), unit.None)
		case "keys":
			return &value.List{Items: append([]value.Value(nil), m.Keys...)}
		case "values":
			return &value.List{Items: append([]value.Value(nil), m.Values...)}
		}
		if ex := arity(at, args, 1); ex != nil {
			return ex
		}
		switch name {
		case "has":
			_, ok := m.Get(args[0])
			return value.Bool(ok)
		case "remove":
			return m.Without(args[0])
		case "set":
			if ex := arity(at, args, 2); ex != nil {
				return ex
			}
			return m.With(args[0], args[1])
		}
		return value.NewException(value.Unimplemented, at, "Map.%s is not implemented", name)
	}
}

// conversion returns the implementation of the named basis conversion,
// or nil.
func conversion(name string) NativeConversion {
	switch name {
	case "?→''", "#*→''", "ø→''", "[T]→''":
		return func(_ ast.Node, v value.Value) value.Value { return value.NewText(Display(v)) }
	case "#s→#ms":
		return scale(1000, 1, "ms")
	case "#ms→#s":
		return scale(1, 1000, "s")
	case "#min→#s":
		return scale(60, 1, "s")
	case "#s→#min":
		return scale(1, 60, "min")
	case "#h→#min":
		return scale(60, 1, "min")
	case "#min→#h":
		return scale(1, 60, "h")
	case "''→#":
		return func(at ast.Node, v value.Value) value.Value {
			t, ok := v.(*value.Text)
			if !ok {
				return typeError(at, "%s is not text", v)
			}
			text := strings.TrimSpace(t.Value)
			sign := 1.0
			if rest, ok := strings.CutPrefix(text, "-"); ok {
				sign, text = -1, rest
			}
			lit, ok := parser.ParseExpression(text).(*ast.NumberLiteral)
			if !ok || ast.Text(lit) != text {
				return value.NewException(value.ConversionException, at, "%s is not a number", t)
			}
			return value.NewNumber(sign*lit.Value(), lit.Measure())
		}
	case "''→['']":
		return func(at ast.Node, v value.Value) value.Value {
			t, ok := v.(*value.Text)
			if !ok {
				return typeError(at, "%s is not text", v)
			}
			var out []value.Value
			g := uniseg.NewGraphemes(t.Value)
			for g.Next() {
				out = append(out, value.NewText(g.Str()))
			}
			return &value.List{Items: out}
		}
	case "{T}→[T]":
		return func(at ast.Node, v value.Value) value.Value {
			s, ok := v.(*value.Set)
			if !ok {
				return typeError(at, "%s is not a set", v)
			}
			return &value.List{Items: append([]value.Value(nil), s.Items...)}
		}
	}
	return nil
}

// scale converts between units of time by multiplying by times and then
// dividing by per, which keeps whole results exact.
func scale(times, per float64, to string) NativeConversion {
	return func(at ast.Node, v value.Value) value.Value {
		n, ok := v.(*value.Number)
		if !ok {
			return typeError(at, "%s is not a number", v)
		}
		return value.NewNumber(n.Amount*times/per, unit.Of(to))
	}
}
