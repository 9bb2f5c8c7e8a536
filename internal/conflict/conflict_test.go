package conflict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/ast"
)

func TestSeverity(t *testing.T) {
	require.Equal(t, Hard, UnclosedDelimiter.Severity())
	require.Equal(t, Hard, UnknownConversion.Severity())
	require.Equal(t, Advisory, UnusedBind.Severity())
	require.Equal(t, Advisory, MisplacedShare.Severity())
	require.Equal(t, "advisory", Advisory.String())
}

func TestKindNames(t *testing.T) {
	for k := UnclosedDelimiter; k <= DuplicateTypeVariable; k++ {
		require.NotEmpty(t, kindNames[k], "kind %d has no name", int(k))
	}
	require.Equal(t, "Kind(99)", Kind(99).String())
}

func TestSortAndFilter(t *testing.T) {
	block := ast.MakeBlock(ast.MakeReference("a"), ast.MakeReference("b"))
	tree := ast.NewTree(block)
	a, b := block.Statements[0], block.Statements[1]

	cs := []Conflict{
		New(UnusedBind, b, "unused %s", "b"),
		New(UnknownName, b, "unknown %s", "b"),
		New(UnknownName, a, "unknown %s", "a"),
	}
	Sort(cs, tree)
	require.Equal(t, []string{"UnknownName: unknown a", "UnknownName: unknown b", "UnusedBind: unused b"},
		[]string{cs[0].String(), cs[1].String(), cs[2].String()})

	hard := HardOnly(cs)
	require.Len(t, hard, 2)

	c := New(DuplicateName, b, "duplicate").With(a)
	require.Equal(t, []ast.Node{a}, c.Secondary)
	require.True(t, c.IsHard())
}
