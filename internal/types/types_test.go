package types

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/basis"
	"nickandperla.net/wordplay/internal/unit"
)

func TestAcceptsPrimitives(t *testing.T) {
	tests := []struct {
		name      string
		expected  Type
		candidate Type
		want      bool
	}{
		{"same number", NewNumber(unit.None), NewNumber(unit.None), true},
		{"unit mismatch", NewNumber(unit.Of("m")), NewNumber(unit.Of("s")), false},
		{"unit match", NewNumber(unit.Parse("m/s")), NewNumber(unit.Parse("m/s")), true},
		{"wildcard unit", NewNumber(unit.Any), NewNumber(unit.Of("kg")), true},
		{"text for number", NewNumber(unit.None), TextType, false},
		{"boolean", BooleanType, BooleanType, true},
		{"none for text", TextType, NoneType, false},
		{"any accepts", AnyType, TextType, true},
		{"any accepted", TextType, AnyType, true},
		{"unknown accepts", NewUnknown(ReasonCycle, nil), BooleanType, true},
		{"unknown accepted", BooleanType, NewUnknown(ReasonCycle, nil), true},
		{"list items", &List{Item: TextType}, &List{Item: TextType}, true},
		{"list item mismatch", &List{Item: TextType}, &List{Item: BooleanType}, false},
		{"empty list", &List{Item: TextType}, &List{Item: AnyType}, true},
		{"map", &Map{Key: TextType, Value: BooleanType}, &Map{Key: TextType, Value: BooleanType}, true},
		{"map value mismatch", &Map{Key: TextType, Value: BooleanType}, &Map{Key: TextType, Value: TextType}, false},
		{"set is not list", &Set{Key: TextType}, &List{Item: TextType}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Accepts(tt.expected, tt.candidate, nil))
		})
	}
}

func TestAcceptsUnions(t *testing.T) {
	textOrNone := &Union{Members: []Type{TextType, NoneType}}
	require.True(t, Accepts(textOrNone, TextType, nil))
	require.True(t, Accepts(textOrNone, NoneType, nil))
	require.False(t, Accepts(textOrNone, BooleanType, nil))

	// Every member of a candidate union must be accepted.
	require.False(t, Accepts(TextType, textOrNone, nil))
	require.True(t, Accepts(textOrNone, &Union{Members: []Type{NoneType, TextType}}, nil))
}

func TestAcceptsStreams(t *testing.T) {
	s := &Stream{Value: NewNumber(unit.Of("ms"))}
	require.True(t, Accepts(NewNumber(unit.Of("ms")), s, nil), "streams are usable as their values")
	require.False(t, Accepts(s, NewNumber(unit.Of("ms")), nil), "values are not streams")
	require.True(t, Accepts(s, &Stream{Value: NewNumber(unit.Of("ms"))}, nil))
}

func TestAcceptsFunctions(t *testing.T) {
	number := NewNumber(unit.None)
	takesAny := &Function{Inputs: []Input{{Names: []string{"x"}, Type: AnyType}}, Output: number}
	takesNumber := &Function{Inputs: []Input{{Names: []string{"x"}, Type: number}}, Output: number}
	takesText := &Function{Inputs: []Input{{Names: []string{"x"}, Type: TextType}}, Output: number}
	noInputs := &Function{Output: number}

	require.True(t, Accepts(takesNumber, takesAny, nil), "a more general input is acceptable")
	require.False(t, Accepts(takesNumber, takesText, nil))
	require.False(t, Accepts(takesNumber, noInputs, nil))
	require.False(t, Accepts(takesNumber, &Function{Inputs: takesNumber.Inputs, Output: TextType}, nil))
	require.Equal(t, 1, takesNumber.Required())
	i, ok := takesNumber.Input("x")
	require.True(t, ok)
	require.Equal(t, 0, i)
}

func TestAcceptsStructures(t *testing.T) {
	shape := ast.MakeStructure("Shape", nil, nil)
	circle := ast.MakeStructure("Circle", nil, nil)
	square := ast.MakeStructure("Square", nil, nil)

	shapeType := &Structure{Definition: shape}
	circleType := &Structure{Definition: circle, Interfaces: []*ast.StructureDefinition{shape}}
	squareType := &Structure{Definition: square}

	require.True(t, Accepts(shapeType, circleType, nil))
	require.False(t, Accepts(circleType, shapeType, nil))
	require.False(t, Accepts(shapeType, squareType, nil))
	require.True(t, Accepts(circleType, &Structure{Definition: circle}, nil))
	require.Equal(t, "Circle", circleType.String())
}

func TestPossibleUnion(t *testing.T) {
	number := NewNumber(unit.None)
	u := PossibleUnion(nil, number, TextType, NewNumber(unit.None), &Union{Members: []Type{TextType, NoneType}})
	union, ok := u.(*Union)
	require.True(t, ok)
	require.Len(t, union.Members, 3)
	require.Equal(t, "#|''|ø", u.String())

	again := PossibleUnion(nil, u)
	require.True(t, Equal(u, again, nil))
	require.Equal(t, u.String(), again.String())

	require.Same(t, TextType, PossibleUnion(nil, TextType, TextType))
	require.Same(t, AnyType, PossibleUnion(nil))
}

func TestWithout(t *testing.T) {
	u := &Union{Members: []Type{TextType, NoneType}}
	require.Same(t, TextType, Without(nil, u, NoneType))
	require.Same(t, TextType, Without(nil, TextType, NoneType))
}

func TestSubstituteAndBind(t *testing.T) {
	vars := ast.MakeTypeVariables("T")
	v := vars.Variables[0]
	param := &List{Item: &Variable{Definition: v}}
	require.True(t, HasVariables(param))

	bindings := map[*ast.TypeVariable]Type{}
	Bind(param, &List{Item: TextType}, bindings)
	require.Same(t, TextType, bindings[v])

	// Existing bindings win.
	Bind(param, &List{Item: BooleanType}, bindings)
	require.Same(t, TextType, bindings[v])

	got := Substitute(param, bindings)
	require.False(t, HasVariables(got))
	require.Equal(t, "['']", got.String())

	// Streams bind through to their values.
	fresh := map[*ast.TypeVariable]Type{}
	Bind(&Variable{Definition: v}, &Stream{Value: BooleanType}, fresh)
	require.Same(t, BooleanType, fresh[v])

	// Unknown types never bind.
	unknown := map[*ast.TypeVariable]Type{}
	Bind(&Variable{Definition: v}, NewUnknown(ReasonCycle, nil), unknown)
	require.Empty(t, unknown)
}

func conversion(from, to Type) Conversion {
	return Conversion{Input: from, Output: to}
}

func TestConversionPath(t *testing.T) {
	s := NewNumber(unit.Of("s"))
	ms := NewNumber(unit.Of("ms"))
	min := NewNumber(unit.Of("min"))
	conversions := []Conversion{
		conversion(s, ms),
		conversion(min, s),
		conversion(ms, TextType),
	}

	path, ok := ConversionPath(nil, min, TextType, conversions)
	require.True(t, ok)
	require.Len(t, path, 3)
	require.Equal(t, "#min", path[0].Input.String())
	require.Equal(t, "''", path[2].Output.String())

	path, ok = ConversionPath(nil, s, s, conversions)
	require.True(t, ok)
	require.Empty(t, path)

	_, ok = ConversionPath(nil, TextType, s, conversions)
	require.False(t, ok)
}

func TestConversionPathCycle(t *testing.T) {
	a := NewNumber(unit.Of("a"))
	b := NewNumber(unit.Of("b"))
	c := NewNumber(unit.Of("c"))
	conversions := []Conversion{conversion(a, b), conversion(b, a)}

	_, ok := ConversionPath(nil, a, c, conversions)
	require.False(t, ok)

	conversions = append(conversions, conversion(b, c))
	path, ok := ConversionPath(nil, a, c, conversions)
	require.True(t, ok)
	require.Len(t, path, 2)
}

func TestContextCycles(t *testing.T) {
	ctx := NewContext(nil, WithBasis(&basis.Basis{}))
	n := ast.MakeReference("x")
	require.True(t, ctx.Enter(n))
	require.True(t, ctx.Visiting(n))
	require.False(t, ctx.Enter(n))
	require.Equal(t, 1, ctx.Depth())
	ctx.Exit(n)
	require.False(t, ctx.Visiting(n))
	require.Zero(t, ctx.Depth())
	require.True(t, ctx.Enter(n))
}

func TestUnknownChain(t *testing.T) {
	inner := NewUnknown(ReasonUnknownName, nil)
	outer := NewUnknown(ReasonNotAFunction, nil).Because(inner)
	require.Len(t, outer.Chain(), 2)
	require.True(t, IsUnknown(&Union{Members: []Type{TextType, outer}}))
	require.False(t, IsUnknown(TextType))

	require.Equal(t, "unknown: not a function: unknown name", Label(outer, language.English))
	require.Equal(t, "desconocido: no es una función: nombre desconocido", Label(outer, language.MustParse("es-MX")))
	require.Equal(t, "unknown: not a function: unknown name", Label(outer, language.Japanese))
	require.Equal(t, "#m", Label(NewNumber(unit.Of("m")), language.Spanish))
}
