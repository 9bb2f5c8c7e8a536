package eval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/internal/value"
)

func layout(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		switch s.Kind {
		case Start, Finish, StartEvaluation:
			out[i] = s.Kind.String()
		default:
			out[i] = s.String()
		}
	}
	return out
}

func TestConditionalJumps(t *testing.T) {
	tests := []string{
		"⊤ ? 1 2",
		"⊤ ? 1 + 2 3",
		"⊤ ? 1 [1 2 3]",
		"⊤ ? [] []",
		"1 < 2 ? (1 + 2 + 3) 'no'",
		"⊤ ? (⊥ ? 1 2) (⊤ ? 3 4)",
		// A missing branch still compiles to one Halt step, so no branch
		// is ever empty.
		"⊤ ? 1",
		"⊤ ?",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			c, ok := parser.ParseExpression(src).(*ast.Conditional)
			require.True(t, ok)
			steps := Compile(c)
			yes, no := len(expression(c.Yes, c, false)), len(expression(c.No, c, false))
			require.Positive(t, yes)
			require.Positive(t, no)

			jumpIf := len(Compile(c.Condition)) + 1
			require.Equal(t, JumpIf, steps[jumpIf].Kind)
			require.False(t, steps[jumpIf].When)
			// A false condition lands on the first step of no.
			require.Equal(t, len(steps)-1-no, jumpIf+1+steps[jumpIf].Offset)

			jump := jumpIf + 1 + yes
			require.Equal(t, Jump, steps[jump].Kind)
			// The end of yes lands on the conditional's Finish.
			require.Equal(t, len(steps)-1, jump+1+steps[jump].Offset)
			require.Equal(t, Finish, steps[len(steps)-1].Kind)
		})
	}
}

func TestMissingBranchHalts(t *testing.T) {
	c := parser.ParseExpression("⊤ ? 1").(*ast.Conditional)
	steps := Compile(c)
	require.Equal(t, Halt, steps[len(steps)-2].Kind)

	e := evaluate(t, "⊥ ? 1")
	require.Equal(t, Halted, e.State())
	require.Equal(t, value.Unimplemented, e.Exception().Kind)
	require.Equal(t, "1", evaluate(t, "⊤ ? 1").CurrentValue().String())
}

func TestReactionLayout(t *testing.T) {
	r, ok := parser.ParseExpression("0 … ⊤ … 1").(*ast.Reaction)
	require.True(t, ok)
	want := []string{
		"Start", "Finish", "Check(Exists)", "JumpIf(true, 3)",
		"Finish", "Check(Record)", "Jump(3)",
		"JumpIf(false, 2)", "Finish", "Check(Record)", "Finish",
	}
	if diff := cmp.Diff(want, layout(Compile(r))); diff != "" {
		t.Errorf("reaction steps (-want +got):\n%s", diff)
	}
}

func TestEvaluateCompilesInputsInOrder(t *testing.T) {
	e := parser.ParseExpression("f(1 b: 2)")
	require.Equal(t, []string{"Finish", "Finish", "Finish", "StartEvaluation"}, layout(Compile(e)))
}

func TestMissingPartHalts(t *testing.T) {
	r, ok := parser.ParseExpression("0 … ⊤").(*ast.Reaction)
	require.True(t, ok)
	var halts []value.ExceptionKind
	for _, s := range Compile(r) {
		if s.Kind == Halt {
			halts = append(halts, s.Exception)
		}
	}
	require.NotEmpty(t, halts)
	require.Equal(t, value.ValueException, halts[0])
}
