package parser

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/token"
)

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"1 + 2",
		"x: 1\nx + 1",
		"¶counts things¶ ↑count•#: 0",
		"ƒ sum(a•# b•#) a + b\nsum(1 2)",
		"ƒ +(other•#) ⊤",
		"•Cat(name•'' age•#) (\n  ƒ meow() 'meow'\n)",
		"•Cat Animal(name•'')",
		"→ #m #s . / 1m/s",
		"1 > 5 ? 'yes' 'no'",
		"clicks: 0 … ∆ Key() … clicks + 1",
		"Time() ... ⊤",
		"'hello \\name\\ there'",
		"[1 2 3][1]",
		"{1 2 3}{1}",
		"{1:'one' 2:'two'}",
		"{:}",
		"x•[#]|ø: ø",
		"f⸨#⸩(1)",
		"↓ other.thing\nthing",
		"← 1 Time()",
		"_•#",
		"a.b.c",
		"5ms → #s",
		"-x + √4",
		"(1 + 2)",
	}
	for _, src := range inputs {
		program := Parse(src)
		require.Equal(t, src, ast.SourceText(program), "source %q", src)
		require.NoError(t, ast.Validate(program), "source %q", src)
	}
}

func TestParseIsTotal(t *testing.T) {
	inputs := []string{
		")",
		"]]]",
		"[1 2 3",
		"'unclosed\nx",
		"ƒ",
		"ƒ f(1) 2)",
		"•",
		"• Cat",
		"{1 2: 3}",
		"{1: }",
		"x:",
		"1 ?",
		"1 …",
		"f(a: ",
		"¶doc¶",
		"↑",
		"→",
		"⸨⸩",
		"x•: 1",
		"'\\(1\\'",
		"'\\'",
		"a•ƒ x",
		"{1:2 3}",
		"\xff\xfe",
		"’’’",
	}
	for _, src := range inputs {
		program := Parse(src)
		require.Equal(t, src, ast.SourceText(program), "source %q", src)
		require.NoError(t, ast.Validate(program), "source %q", src)
	}
}

func TestParseRandomInput(t *testing.T) {
	fragments := []string{
		"x", "1", "+", "-", ":", "(", ")", "[", "]", "{", "}", "⸨", "⸩", "'", "\\",
		"ƒ", "•", "→", "…", "...", "∆", "←", "?", "↓", "↑", "¶", "⊤", "ø", "◆", "_",
		"#", ".", ",", "|", "ms", "/", "^", " ", "\n", "’", "π",
	}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var sb strings.Builder
		n := r.Intn(30)
		for j := 0; j < n; j++ {
			sb.WriteString(fragments[r.Intn(len(fragments))])
		}
		src := sb.String()
		program := Parse(src)
		require.Equal(t, src, ast.SourceText(program), "source %q", src)
		require.NoError(t, ast.Validate(program), "source %q", src)
	}
}

func TestParseBinary(t *testing.T) {
	e := ParseExpression("1 + 2")
	b, ok := e.(*ast.BinaryOperation)
	require.True(t, ok)
	require.Equal(t, "+", b.OperatorName())
	require.Equal(t, 1.0, b.Left.(*ast.NumberLiteral).Value())
	require.Equal(t, 2.0, b.Right.(*ast.NumberLiteral).Value())
}

func TestBinaryIsLeftToRight(t *testing.T) {
	e := ParseExpression("1 + 2 · 3")
	outer := e.(*ast.BinaryOperation)
	require.Equal(t, "·", outer.OperatorName())
	inner := outer.Left.(*ast.BinaryOperation)
	require.Equal(t, "+", inner.OperatorName())
	require.Equal(t, "3", ast.Text(outer.Right))
}

func TestParseConditional(t *testing.T) {
	c, ok := ParseExpression("1 > 5 ? 'yes' 'no'").(*ast.Conditional)
	require.True(t, ok)
	require.Equal(t, "1 > 5", ast.Text(c.Condition))
	require.Equal(t, "yes", c.Yes.(*ast.TextLiteral).Value())
	require.Equal(t, "no", c.No.(*ast.TextLiteral).Value())
}

func TestUnclosedListHasNoClose(t *testing.T) {
	program := Parse("[1 2 3")
	require.Len(t, program.Block.Statements, 1)
	l := program.Block.Statements[0].(*ast.ListLiteral)
	require.Len(t, l.Values, 3)
	require.Nil(t, l.Close)
}

func TestParseBind(t *testing.T) {
	program := Parse("¶the answer¶ ↑a, b•#: 42")
	b := program.Block.Statements[0].(*ast.Bind)
	require.Equal(t, []string{"a", "b"}, b.Names())
	require.Equal(t, []string{"the answer"}, b.Documentation())
	require.True(t, b.IsShared())
	require.IsType(t, &ast.NumberType{}, b.Type)
	require.Equal(t, "42", ast.Text(b.Value))
}

func TestReferenceIsNotBind(t *testing.T) {
	program := Parse("x•#")
	is, ok := program.Block.Statements[0].(*ast.Is)
	require.True(t, ok)
	require.Equal(t, "x", is.Expression.(*ast.Reference).Identifier())
}

func TestParseFunction(t *testing.T) {
	program := Parse("ƒ add⸨T⸩(a•T b•T: 1)•T a + b")
	f := program.Block.Statements[0].(*ast.FunctionDefinition)
	require.Equal(t, []string{"add"}, f.Names())
	require.Len(t, f.Variables(), 1)
	require.Len(t, f.Inputs, 2)
	require.Nil(t, f.Inputs[0].Value)
	require.Equal(t, "1", ast.Text(f.Inputs[1].Value))
	require.IsType(t, &ast.NameType{}, f.Output)
	require.IsType(t, &ast.BinaryOperation{}, f.Body)

	op := Parse("ƒ +(x•#) x").Block.Statements[0].(*ast.FunctionDefinition)
	require.True(t, op.IsOperator())
}

func TestParseStructure(t *testing.T) {
	program := Parse("•Cat Animal(name•'')(\n  ƒ speak() 'meow'\n  legs: 4\n)")
	s := program.Block.Statements[0].(*ast.StructureDefinition)
	require.Equal(t, []string{"Cat"}, s.Names())
	require.Len(t, s.Interfaces, 1)
	require.Len(t, s.Inputs, 1)
	require.Len(t, s.Functions(), 1)
	require.Len(t, s.Binds(), 1)
	require.False(t, s.IsInterface())
}

func TestStructureMembersOnNewLineAreSeparate(t *testing.T) {
	program := Parse("•Cat(name•'')\n(1)")
	require.Len(t, program.Block.Statements, 2)
	require.Nil(t, program.Block.Statements[0].(*ast.StructureDefinition).Members)
}

func TestLineStartingDefinitionsAreSeparate(t *testing.T) {
	program := Parse("ƒ f() 1\n→ # '' 'n'")
	require.Len(t, program.Block.Statements, 2)
	f := program.Block.Statements[0].(*ast.FunctionDefinition)
	require.Equal(t, "1", ast.Text(f.Body))
	require.IsType(t, &ast.ConversionDefinition{}, program.Block.Statements[1])

	program = Parse("x: 1\n•P(a•#) ()")
	require.Len(t, program.Block.Statements, 2)
	b := program.Block.Statements[0].(*ast.Bind)
	require.Equal(t, "1", ast.Text(b.Value))
	s := program.Block.Statements[1].(*ast.StructureDefinition)
	require.Equal(t, []string{"P"}, s.Names())

	// On the same line they still apply to the expression.
	require.IsType(t, &ast.Convert{}, ParseExpression("1 → ''"))
	require.IsType(t, &ast.Is{}, ParseExpression("x•#"))
}

func TestParseUnits(t *testing.T) {
	n := ParseExpression("9.8m/s^2").(*ast.NumberLiteral)
	require.Equal(t, 9.8, n.Value())
	require.Equal(t, "m/s^2", n.Measure().String())

	spaced := ParseExpression("5 ms")
	require.IsType(t, &ast.NumberLiteral{}, spaced)
	require.Nil(t, spaced.(*ast.NumberLiteral).Unit)
}

func TestParseTemplate(t *testing.T) {
	tmpl, ok := ParseExpression("'a \\1 + 2\\ b'").(*ast.Template)
	require.True(t, ok)
	exprs := tmpl.Expressions()
	require.Len(t, exprs, 1)
	require.IsType(t, &ast.BinaryOperation{}, exprs[0])
	require.NotNil(t, tmpl.Close)
}

func TestParseReaction(t *testing.T) {
	r, ok := ParseExpression("0 … ∆ Key() … . + 1").(*ast.Reaction)
	require.True(t, ok)
	require.Equal(t, "0", ast.Text(r.Initial))
	require.IsType(t, &ast.Changed{}, r.Condition)
	require.NotNil(t, r.Next)

	partial := ParseExpression("0 … ⊤").(*ast.Reaction)
	require.Nil(t, partial.NextDots)
	require.Nil(t, partial.Next)
}

func TestParseNamedInputs(t *testing.T) {
	e := ParseExpression("Cat(name: 'Pounce' 3)").(*ast.Evaluate)
	require.Len(t, e.Inputs, 2)
	named := e.Inputs[0].(*ast.Bind)
	require.Equal(t, []string{"name"}, named.Names())
	require.IsType(t, &ast.NumberLiteral{}, e.Inputs[1])
}

func TestPostfixMustBeAdjacent(t *testing.T) {
	program := Parse("f (1)")
	require.Len(t, program.Block.Statements, 2)
	require.IsType(t, &ast.Reference{}, program.Block.Statements[0])
	require.IsType(t, &ast.Block{}, program.Block.Statements[1])
}

func TestParseMaps(t *testing.T) {
	m := ParseExpression("{1:'one' 2}").(*ast.MapLiteral)
	require.Len(t, m.Entries, 2)
	require.Nil(t, m.Entries[1].Value)

	empty := ParseExpression("{:}").(*ast.MapLiteral)
	require.Empty(t, empty.Entries)
	require.NotNil(t, empty.Bind)
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		src  string
		want ast.TypeNode
	}{
		{"#", &ast.NumberType{}},
		{"#m", &ast.NumberType{}},
		{"''", &ast.TextType{}},
		{"?", &ast.BooleanType{}},
		{"ø", &ast.NoneType{}},
		{"[#]", &ast.ListType{}},
		{"{''}", &ast.SetType{}},
		{"{'':#}", &ast.MapType{}},
		{"ƒ(a•#) ''", &ast.FunctionType{}},
		{"List⸨#⸩", &ast.NameType{}},
		{"# | ''", &ast.UnionType{}},
		{"_", &ast.TypePlaceholder{}},
		{"+", &ast.UnparsableType{}},
	}
	for _, tt := range tests {
		got := ParseType(tt.src)
		require.IsType(t, tt.want, got, tt.src)
		require.Equal(t, tt.src, ast.SourceText(got))
	}
	require.Equal(t, "m", ParseType("#m").(*ast.NumberType).Measure().String())
	require.Len(t, ParseType("List⸨#⸩").(*ast.NameType).TypeArguments(), 1)
}

func TestStrayClosersBecomeUnparsable(t *testing.T) {
	program := Parse("1 ) 2")
	require.Len(t, program.Block.Statements, 3)
	u := program.Block.Statements[1].(*ast.Unparsable)
	require.Len(t, u.Tokens, 1)
	require.Equal(t, token.EvalClose, u.Tokens[0].Category)
}
