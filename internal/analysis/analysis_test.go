package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/conflict"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/internal/types"
)

func analyze(src string, opts ...types.Option) (*ast.Program, *types.Context) {
	program := parser.Parse(src)
	return program, NewContext(ast.NewTree(program), opts...)
}

func last(p *ast.Program) ast.Expression {
	return p.Block.Statements[len(p.Block.Statements)-1]
}

func kinds(cs []conflict.Conflict) []conflict.Kind {
	out := make([]conflict.Kind, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Kind)
	}
	return out
}

type borrower map[string]*ast.Tree

func (b borrower) Source(name string) (*ast.Tree, bool) {
	t, ok := b[name]
	return t, ok
}

func (b borrower) Sources() []string {
	var out []string
	for name := range b {
		out = append(out, name)
	}
	return out
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1", "#"},
		{"1m", "#m"},
		{"'hi'", "''"},
		{"⊤", "?"},
		{"ø", "ø"},
		{"[1 2]", "[#]"},
		{"1m · 2s", "#m·s"},
		{"6m ÷ 2s", "#m/s"},
		{"1m + 2m", "#m"},
		{"1 > 2", "?"},
		{"1 = 'a'", "?"},
		{"⊤ ? 1 'a'", "#|''"},
		{"x: 5\nx", "#"},
		{"2min → #ms", "#ms"},
		{"1 → ''", "''"},
		{"[1 2].first()", "#|ø"},
		{"[1 2].length()", "#"},
		{"[1 2].translate(ƒ(n) n > 1)", "[?]"},
		{"5m.round()", "#m"},
		{"ƒ double(n•#) n · 2\ndouble(3)", "#"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			program, ctx := analyze(tt.src)
			require.Equal(t, tt.want, TypeOf(last(program), ctx).String())
		})
	}
}

func TestTypeOfCycleIsUnknown(t *testing.T) {
	program, ctx := analyze("a: b\nb: a\na")
	require.True(t, types.IsUnknown(TypeOf(last(program), ctx)))
}

func TestTypeOfUnknownNameExplains(t *testing.T) {
	program, ctx := analyze("nope + 1")
	u, ok := TypeOf(last(program), ctx).(*types.Unknown)
	require.True(t, ok)
	chain := u.Chain()
	require.Len(t, chain, 2)
	require.Equal(t, types.ReasonUnknownOperator, chain[0].Reason)
	require.Equal(t, types.ReasonUnknownName, chain[1].Reason)
}

func TestIsNarrowsReference(t *testing.T) {
	program, ctx := analyze("x•#|'': 1\nx•# ? x 0")
	c := last(program).(*ast.Conditional)
	require.Equal(t, "#", TypeOf(c.Yes, ctx).String())
	require.Equal(t, "#", TypeOf(c, ctx).String())
}

func TestUnclosedListIsOneConflict(t *testing.T) {
	program, ctx := analyze("[1 2 3")
	cs := Conflicts(ctx)
	require.Len(t, cs, 1)
	require.Equal(t, conflict.UnclosedDelimiter, cs[0].Kind)
	require.True(t, cs[0].IsHard())
	list := last(program).(*ast.ListLiteral)
	require.Same(t, list.Open, cs[0].Primary)
}

func TestConflictKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want conflict.Kind
	}{
		{"unknown name", "nope", conflict.UnknownName},
		{"incompatible bind", "x•'': 1\nx", conflict.IncompatibleBind},
		{"unit mismatch", "1m + 2s", conflict.IncompatibleInput},
		{"condition", "1 ? 2 3", conflict.IncompatibleType},
		{"missing input", "ƒ f(a•# b•#) a + b\nf(1)", conflict.MissingInput},
		{"unexpected input", "ƒ f(a•#) a\nf(1 2)", conflict.UnexpectedInput},
		{"incompatible input", "ƒ f(a•#) a\nf('one')", conflict.IncompatibleInput},
		{"not a function", "x: 1\nx()", conflict.NotAFunction},
		{"unknown operator", "'a' × 2", conflict.UnknownOperator},
		{"unknown property", "'a'.nope", conflict.UnknownProperty},
		{"unknown conversion", "1 → ?", conflict.UnknownConversion},
		{"duplicate", "a: 1\na: 2\na", conflict.DuplicateName},
		{"ignored", "1\n2", conflict.IgnoredExpression},
		{"order", "1 + 2 · 3", conflict.OrderOfOperations},
		{"unknown type", "x•Nope: 1\nx", conflict.UnknownTypeName},
		{"impossible is", "'a'•#", conflict.ImpossibleType},
		{"unparsable", ")", conflict.Unparsable},
		{"unknown borrow", "↓nope\n1", conflict.UnknownBorrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ctx := analyze(tt.src)
			require.Contains(t, kinds(Conflicts(ctx)), tt.want)
		})
	}
}

func TestCleanPrograms(t *testing.T) {
	for _, src := range []string{
		"1 + 2",
		"2min → #ms",
		"x: 5\nx · 2",
		"[1 2 3].translate(ƒ(n) n + 1)",
		"ƒ add(a•# b•#) a + b\nadd(1 2)",
		"•Point(x•# y•#) (ƒ sum() x + y)\nPoint(1 2).sum()",
	} {
		t.Run(src, func(t *testing.T) {
			_, ctx := analyze(src)
			require.Empty(t, conflict.HardOnly(Conflicts(ctx)))
		})
	}
}

func TestUnknownNameSuggestsSpelling(t *testing.T) {
	_, ctx := analyze("apple: 1\naple")
	cs := Conflicts(ctx)
	require.Len(t, cs, 1)
	require.Contains(t, cs[0].Message, "did you mean apple")
}

func TestConversionPathThroughUnits(t *testing.T) {
	program, ctx := analyze("2min → #ms")
	path, ok := ConversionPath(last(program).(*ast.Convert), ctx)
	require.True(t, ok)
	require.Len(t, path, 2)
}

func TestBorrows(t *testing.T) {
	lib := ast.NewTree(parser.Parse("↑pi: 3.14"))
	program, ctx := analyze("↓lib\npi · 2", types.WithBorrower(borrower{"lib": lib}))
	require.Empty(t, Conflicts(ctx))
	require.Equal(t, "#", TypeOf(last(program), ctx).String())
}

func TestBorrowCycle(t *testing.T) {
	sources := borrower{}
	main := ast.NewTree(parser.Parse("↓lib\n1"))
	sources["main"] = main
	sources["lib"] = ast.NewTree(parser.Parse("↓main\n↑x: 1"))
	ctx := NewContext(main, types.WithBorrower(sources))
	require.Contains(t, kinds(Conflicts(ctx)), conflict.BorrowCycle)
}

type summary struct {
	Kind    conflict.Kind
	Message string
	At      string
}

func summarize(cs []conflict.Conflict) []summary {
	out := make([]summary, 0, len(cs))
	for _, c := range cs {
		out = append(out, summary{Kind: c.Kind, Message: c.Message, At: ast.Text(c.Primary)})
	}
	return out
}

func TestConflictsAreDeterministic(t *testing.T) {
	src := "a: 1\na: 2\nnope + 1m\n'a' × 2\n[1 2\n1 ? 2 3\n1 + 2 · 3"
	tree := ast.NewTree(parser.Parse(src))
	first := summarize(Conflicts(NewContext(tree)))
	second := summarize(Conflicts(NewContext(tree)))
	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("conflicts differ between runs (-first +second):\n%s", diff)
	}
}
