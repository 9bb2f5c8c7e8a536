package eval

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/internal/value"
)

func evaluate(t *testing.T, src string, opts ...Option) *Evaluator {
	t.Helper()
	e := New(parser.Parse(src), opts...)
	require.Equal(t, Ready, e.State())
	e.RunToCompletion()
	return e
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2", "3"},
		{"-5m", "-5m"},
		{"1m + 2m", "3m"},
		{"6m ÷ 2s", "3m/s"},
		{"2 ^ 3", "8"},
		{"1 > 5 ? 'yes' 'no'", "'no'"},
		{"1 < 5 ? 'yes' 'no'", "'yes'"},
		{"⊤ & ⊥", "⊥"},
		{"~⊥", "⊤"},
		{"1 = 1", "⊤"},
		{"'a' ≠ 'a'", "⊥"},
		{"x: 2\ny: x · 3\ny", "6"},
		{"2min → #ms", "120000ms"},
		{"1500ms → #s", "1.5s"},
		{"'12' → #", "12"},
		{"1 → ''", "'1'"},
		{"'héllo'.length()", "5"},
		{"'abc'.upper()", "'ABC'"},
		{"[1 2 3].translate(ƒ(n) n · 2)", "[2 4 6]"},
		{"[1 2 3 4].filter(ƒ(n) n > 2)", "[3 4]"},
		{"[1 2 3].combine(0 ƒ(sum item) sum + item)", "6"},
		{"[1 2 3].all(ƒ(n) n > 0)", "⊤"},
		{"[1 2 3].all(ƒ(n) n > 1)", "⊥"},
		{"[].translate(ƒ(n) n)", "[]"},
		{"[1 2 3].reverse()", "[3 2 1]"},
		{"[1 2 3][2]", "2"},
		{"[1 2 3][7]", "ø"},
		{"{1 2 2}", "{1 2}"},
		{"{'a':1}{'a'}", "1"},
		{"{1 2}{3}", "⊥"},
		{"'sum \\1 + 2\\ done'", "'sum 3 done'"},
		{"ƒ double(n•#) n · 2\ndouble(3)", "6"},
		{"ƒ add(a•# b•#: 10) a + b\nadd(1)", "11"},
		{"ƒ add(a•# b•#) a - b\nadd(b: 1 a: 5)", "4"},
		{"ƒ fact(n•#) n < 2 ? 1 n · fact(n - 1)\nfact(5)", "120"},
		{"•Point(x•# y•#) (ƒ sum() x + y)\nPoint(1 2).sum()", "3"},
		{"•Point(x•# y•#) ()\nPoint(1 2).y", "2"},
		{"x: 1\n•P(a•#) ()\nP(2).a", "2"},
		{"(x: 1\nx + 1)", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := evaluate(t, tt.src)
			require.Nil(t, e.Exception(), "halted: %v", e.Exception())
			require.Equal(t, Completed, e.State())
			require.Equal(t, tt.want, e.CurrentValue().String())
		})
	}
}

func TestExceptions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want value.ExceptionKind
	}{
		{"unknown name", "nope + 1", nil, value.NameException},
		{"unit mismatch", "1m + 1s", nil, value.TypeException},
		{"division by zero", "1 ÷ 0", nil, value.ValueException},
		{"not a function", "x: 1\nx()", nil, value.FunctionException},
		{"missing input", "ƒ f(a•#) a\nf()", nil, value.FunctionException},
		{"placeholder", "_", nil, value.Unimplemented},
		{"bad conversion", "'nope' → #", nil, value.ConversionException},
		{"step limit", "1 + 2 + 3 + 4", []Option{WithStepLimit(5)}, value.StepLimit},
		{"call depth", "ƒ loop(n•#) loop(n + 1)\nloop(1)", []Option{WithDepthLimit(16)}, value.CallDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := evaluate(t, tt.src, tt.opts...)
			require.Equal(t, Halted, e.State())
			require.NotNil(t, e.Exception())
			require.Equal(t, tt.want, e.Exception().Kind)
			require.Same(t, e.Exception(), e.CurrentValue())
		})
	}
}

func TestStepCounts(t *testing.T) {
	e := New(parser.Parse("1 + 2"))
	n := 0
	for e.Step() {
		n++
	}
	// Program, block, both operands and the operation, each started or
	// finished once.
	require.Equal(t, 7, n)
	require.Equal(t, 7, e.Steps())
	require.False(t, e.Step())
}

func TestStepBackRestores(t *testing.T) {
	e := New(parser.Parse("x: 2\nƒ f(n•#) n · x\nf(4)"))
	want := e.RunToCompletion().String()
	total := e.Steps()
	require.Equal(t, "8", want)

	for e.StepBack() {
	}
	require.Equal(t, Ready, e.State())
	require.Zero(t, e.Steps())
	require.Nil(t, e.CurrentValue())
	require.Len(t, e.Frames(), 1)
	require.Zero(t, e.Frames()[0].PC())

	require.Equal(t, want, e.RunToCompletion().String())
	require.Equal(t, total, e.Steps())
}

func TestStepBackOneStep(t *testing.T) {
	e := New(parser.Parse("[1 2 3]"))
	for i := 0; i < 3; i++ {
		require.True(t, e.Step())
	}
	pc := e.Frames()[0].PC()
	require.True(t, e.Step())
	require.True(t, e.StepBack())
	require.Equal(t, 3, e.Steps())
	require.Equal(t, pc, e.Frames()[0].PC())
}

func TestReactionToTime(t *testing.T) {
	e := evaluate(t, "0 … ∆ Time() … . + 1")
	require.Equal(t, "0", e.CurrentValue().String())

	require.True(t, e.Tick(33*time.Millisecond))
	require.Equal(t, "1", e.CurrentValue().String())
	require.True(t, e.Tick(33*time.Millisecond))
	require.Equal(t, "2", e.CurrentValue().String())
	require.Equal(t, 3, e.Runs())
}

func TestTimeStreamValue(t *testing.T) {
	e := evaluate(t, "Time()")
	require.Equal(t, "0ms", e.CurrentValue().String())
	e.Tick(100 * time.Millisecond)
	require.Equal(t, "100ms", e.CurrentValue().String())
}

func TestUpdateSkipsUnreadStreams(t *testing.T) {
	e := evaluate(t, "1 + 1")
	require.False(t, e.Tick(time.Second))
	require.False(t, e.Press("a"))
	require.Equal(t, 1, e.Runs())
}

func TestKeyPresses(t *testing.T) {
	e := evaluate(t, "clicks: 0 … ∆ Key() … clicks + 1\nclicks")
	require.Equal(t, "0", e.CurrentValue().String())
	require.True(t, e.Press("a"))
	require.True(t, e.Press("b"))
	require.Equal(t, "2", e.CurrentValue().String())

	keys := evaluate(t, "Key()")
	require.Equal(t, "''", keys.CurrentValue().String())
	keys.Press("x")
	require.Equal(t, "'x'", keys.CurrentValue().String())
}

func TestPreviousValues(t *testing.T) {
	e := evaluate(t, "← 1 Time()")
	require.Equal(t, "ø", e.CurrentValue().String())
	e.Tick(33 * time.Millisecond)
	require.Equal(t, "0ms", e.CurrentValue().String())
}

func TestStreamsAreKeyedByNode(t *testing.T) {
	e := evaluate(t, "a: Time()\nb: Time()\na")
	require.Len(t, e.Streams(), 2)

	edited := parser.Parse("a: Time()\nb: Time()\nb")
	e.Edit(edited)
	e.RunToCompletion()
	require.Len(t, e.Streams(), 2)
}

type sources map[string]*ast.Tree

func (s sources) Source(name string) (*ast.Tree, bool) {
	t, ok := s[name]
	return t, ok
}

func (s sources) Sources() []string {
	var out []string
	for name := range s {
		out = append(out, name)
	}
	return out
}

func TestBorrowedDefinitions(t *testing.T) {
	lib := ast.NewTree(parser.Parse("↑ƒ triple(n•#) n · 3\n↑base: 2"))
	e := evaluate(t, "↓lib\ntriple(base)", WithBorrower(sources{"lib": lib}))
	require.Nil(t, e.Exception())
	require.Equal(t, "6", e.CurrentValue().String())
}

func TestRunCanceled(t *testing.T) {
	e := New(parser.Parse("1 + 2"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := e.Run(ctx)
	ex, ok := v.(*value.Exception)
	require.True(t, ok)
	require.Equal(t, value.Canceled, ex.Kind)
	require.Equal(t, "3", e.Run(context.Background()).String())
}

func TestReactionSkipsNextUntilConditionHolds(t *testing.T) {
	program := parser.Parse("t: Time()\n0 … ∆ Key() … . + 1")
	e := New(program)
	e.RunToCompletion()
	require.Equal(t, "0", e.CurrentValue().String())

	require.True(t, e.Tick(DefaultFrequency))
	quiet := e.Steps()
	require.Equal(t, "0", e.CurrentValue().String())

	require.True(t, e.Press("a"))
	active := e.Steps()
	require.Equal(t, "1", e.CurrentValue().String())

	// The active run also evaluates next and records its value.
	r := program.Block.Statements[1].(*ast.Reaction)
	require.Equal(t, len(Compile(r.Next))+1, active-quiet)
}

func TestTimeFrequency(t *testing.T) {
	e := evaluate(t, "Time(100ms)")
	require.False(t, e.Tick(50*time.Millisecond))
	require.Equal(t, "0ms", e.CurrentValue().String())
	require.True(t, e.Tick(50*time.Millisecond))
	require.Equal(t, "100ms", e.CurrentValue().String())

	seconds := evaluate(t, "Time(frequency: 1s)")
	for i := 0; i < 9; i++ {
		require.False(t, seconds.Tick(100*time.Millisecond))
	}
	require.True(t, seconds.Tick(100*time.Millisecond))
	require.Equal(t, "1000ms", seconds.CurrentValue().String())
}

func TestLongListsDoNotNest(t *testing.T) {
	items := "[" + strings.TrimSpace(strings.Repeat("1 ", 600)) + "]"
	tests := []struct {
		src  string
		want string
	}{
		{items + ".translate(ƒ(n) n + 1).length()", "600"},
		{items + ".filter(ƒ(n) n = 1).length()", "600"},
		{items + ".combine(0 ƒ(sum item) sum + item)", "600"},
		{items + ".all(ƒ(n) n = 1)", "⊤"},
	}
	for _, tt := range tests {
		e := evaluate(t, tt.src, WithDepthLimit(16))
		require.Nil(t, e.Exception(), "halted: %v", e.Exception())
		require.Equal(t, tt.want, e.CurrentValue().String())
	}
}

const fib = "ƒ fib(n•#) n < 2 ? n fib(n - 1) + fib(n - 2)\nfib(10)"

func TestHistoryIsBounded(t *testing.T) {
	e := evaluate(t, fib, WithHistoryLimit(10))
	require.Equal(t, "55", e.CurrentValue().String())
	require.Greater(t, e.Steps(), 10)
	require.Equal(t, 10, e.Undoable())
	for i := 0; i < 10; i++ {
		require.True(t, e.StepBack())
	}
	require.False(t, e.StepBack())
	require.Equal(t, "55", e.RunToCompletion().String())

	def := evaluate(t, fib)
	require.Greater(t, def.Steps(), DefaultHistoryLimit)
	require.Equal(t, DefaultHistoryLimit, def.Undoable())

	none := evaluate(t, fib, WithHistoryLimit(0))
	require.Zero(t, none.Undoable())
	require.False(t, none.StepBack())

	all := evaluate(t, fib, WithHistoryLimit(-1))
	require.Equal(t, all.Steps(), all.Undoable())
}
