package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/token"
)

func TestMadeNodesValidate(t *testing.T) {
	nodes := []Node{
		MakeBinary(MakeNumber("1", ""), "+", MakeNumber("2", "")),
		MakeConditional(MakeBoolean(true), MakeText("yes"), MakeText("no")),
		MakeList(MakeNumber("1", ""), MakeNumber("2", ""), MakeNumber("3", "")),
		MakeConvert(MakeNumber("5", "ms"), MakeNumberType("s")),
		MakeBind("a,b", MakeNumberType(""), MakeNumber("1", "")),
		MakeFunction("double", []string{"T"}, []*Bind{MakeBind("x", MakeNameType("T"), nil)}, MakeNameType("T"), MakeReference("x")),
		MakeStructure("Cat", nil, []*Bind{MakeBind("name", MakeTextType(), nil)}, MakeFunction("meow", nil, nil, MakeTextType(), MakeText("meow"))),
		MakeMapType(MakeTextType(), MakeUnionType(MakeNumberType(""), MakeNoneType())),
		MakeProgram(MakeBind("x", nil, MakeNumber("1", "")), MakeReference("x")),
	}
	for _, n := range nodes {
		require.NoError(t, Validate(n), SourceText(n))
	}
}

func TestMakeSourceText(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{MakeBinary(MakeNumber("1", ""), "+", MakeNumber("2", "")), "1 + 2"},
		{MakeConditional(MakeReference("a"), MakeText("yes"), MakeText("no")), "a ? 'yes' 'no'"},
		{MakeList(MakeNumber("1", ""), MakeNumber("2", "")), "[1 2]"},
		{MakeConvert(MakeNumber("5", "ms"), MakeNumberType("s")), "5ms → #s"},
		{MakeBind("x", MakeNumberType("m/s"), MakeNumber("1", "m/s")), "x•#m/s:1m/s"},
		{MakeEvaluate(MakeReference("f"), MakeNumber("1", ""), MakeNumber("2", "")), "f(1 2)"},
		{MakeFunction("+", nil, []*Bind{MakeBind("a", nil, nil)}, nil, MakeReference("a")), "ƒ +(a) a"},
		{MakeProgram(MakeBind("x", nil, MakeNumber("1", "")), MakeReference("x")), "x:1\nx"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SourceText(tt.node))
	}
}

func TestReplaceSharesUntouchedNodes(t *testing.T) {
	left := MakeNumber("1", "")
	right := MakeNumber("2", "")
	op := MakeBinary(left, "+", right)
	program := MakeProgram(op)
	oldID := op.ID()
	leftID := left.ID()

	replacement := MakeNumber("3", "")
	edit, err := Replace(program, op.Right, replacement)
	require.NoError(t, err)
	require.Equal(t, "1 +3", SourceText(edit.Root))

	newOp := edit.Root.(*Program).Block.Statements[0].(*BinaryOperation)
	require.Equal(t, oldID, newOp.ID())
	require.Same(t, op.Left, newOp.Left)
	require.Equal(t, leftID, newOp.Left.ID())
	require.Equal(t, "1 + 2", SourceText(program), "original tree is unchanged")

	require.Equal(t, replacement.Number, edit.Caret.Token)
	require.Equal(t, 1, edit.Caret.Offset)
}

func TestReplaceRejectsWrongKind(t *testing.T) {
	op := MakeBinary(MakeNumber("1", ""), "+", MakeNumber("2", ""))
	_, err := Replace(op, op.Operator, MakeNumber("3", ""))
	require.Error(t, err)

	_, err = Replace(op, op.Left, nil)
	require.Error(t, err, "left operand is required")

	_, err = Replace(op, MakeNumber("9", ""), MakeNumber("3", ""))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSplice(t *testing.T) {
	list := MakeList(MakeNumber("1", ""), MakeNumber("2", ""))
	added := MakeNumber("5", "").Number.WithSpace(" ")
	five := &NumberLiteral{Number: added}

	edit, err := Splice(list, list, "values", 1, 0, five)
	require.NoError(t, err)
	require.Equal(t, "[1 5 2]", SourceText(edit.Root))
	require.Same(t, added, edit.Caret.Token)

	edit, err = Splice(list, list, "values", 0, 2)
	require.NoError(t, err)
	require.Equal(t, "[]", SourceText(edit.Root))
	require.Equal(t, token.ListOpen, edit.Caret.Token.Category)

	_, err = Splice(list, list, "values", 3, 0)
	require.Error(t, err)
	_, err = Splice(list, list, "nope", 0, 0)
	require.Error(t, err)
}

func TestTreeIndex(t *testing.T) {
	bind := MakeBind("x", nil, MakeNumber("1", ""))
	program := MakeProgram(bind, MakeReference("x"))
	x := program.Block.Statements[1].(*Reference)
	tree := NewTree(program)

	require.Same(t, program.Block, tree.Parent(bind))
	require.True(t, tree.IsInside(x.Name, program))
	require.True(t, tree.Precedes(bind, x))
	require.Equal(t, Position{Line: 2, Column: 1}, tree.Position(x))
	require.Equal(t, Position{Line: 1, Column: 3}, tree.Position(bind.Value))

	f, ok := tree.FieldOf(bind.Value)
	require.True(t, ok)
	require.Equal(t, "value", f.Name)
	require.Same(t, x.Name, tree.TokenAt(Position{Line: 2, Column: 1}))
}

func TestStableKeysSurviveUnrelatedEdits(t *testing.T) {
	first := MakeBinary(MakeNumber("1", ""), "+", MakeNumber("1", ""))
	second := MakeBinary(MakeNumber("1", ""), "+", MakeNumber("1", ""))
	program := MakeProgram(MakeBind("a", nil, first), MakeBind("b", nil, second))
	tree := NewTree(program)

	keyA := tree.Key(first)
	keyB := tree.Key(second)
	require.NotEqual(t, keyA, keyB, "same text in different binds")

	// Change an unrelated statement.
	edit, err := Replace(program, program.Block.Statements[1].(*Bind).Value, MakeNumber("7", ""))
	require.NoError(t, err)
	edited := NewTree(edit.Root)
	again := edit.Root.(*Program).Block.Statements[0].(*Bind).Value
	require.Equal(t, keyA, edited.Key(again))
}

func TestGrammarMatchesSlots(t *testing.T) {
	var kinds []string
	Walk(MakeProgram(MakeConditional(MakeReference("a"), MakeNumber("1", ""), MakeNone())), func(n Node) bool {
		require.Len(t, n.Slots(), len(n.Grammar()), n.Kind().String())
		kinds = append(kinds, n.Kind().String())
		return true
	})
	want := []string{"Program", "Block", "Conditional", "Reference", "Token", "Token", "NumberLiteral", "Token", "NoneLiteral", "Token", "Token"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
}
