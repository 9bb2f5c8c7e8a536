package wordplay

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/value"
)

func TestEval(t *testing.T) {
	r, err := New(WithMemoryStore())
	require.NoError(t, err)
	defer r.Close()

	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2", "3"},
		{"1 > 5 ? 'yes' 'no'", "no"},
		{"'hi' + ' there'", "hi there"},
		{"[1 2 3].length()", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res, err := r.Eval(context.Background(), tt.src)
			require.NoError(t, err)
			require.Nil(t, res.Exception)
			require.Equal(t, tt.want, res.String())
			require.Positive(t, res.Steps)
		})
	}
}

func TestEvalReportsConflicts(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	res, err := r.Eval(context.Background(), "[1 2 3")
	require.NoError(t, err)
	require.Len(t, res.HardConflicts(), 1)
}

func TestStepLimitOption(t *testing.T) {
	r, err := New(WithStepLimit(3))
	require.NoError(t, err)

	res, err := r.Eval(context.Background(), "1 + 2 + 3 + 4")
	require.NoError(t, err)
	require.NotNil(t, res.Exception)
	require.Equal(t, value.StepLimit, res.Exception.Kind)
}

func TestRunCanceled(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Eval(ctx, "1 + 2")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, value.Canceled, res.Exception.Kind)

	res, err = r.Eval(context.Background(), "1 + 2")
	require.NoError(t, err)
	require.Equal(t, "3", res.String())
}

func TestHistoryLimitOption(t *testing.T) {
	r, err := New(WithHistoryLimit(4))
	require.NoError(t, err)
	_, err = r.Eval(context.Background(), "1 + 2 + 3")
	require.NoError(t, err)
	require.Equal(t, 4, r.Evaluator().Undoable())
}

func TestRunUnknownSource(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	_, err = r.Run(context.Background(), "nope")
	require.Error(t, err)
}

func TestSaveLoadAndHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordplay.db")
	r, err := New(WithSQLiteStore(path), WithName("demo"))
	require.NoError(t, err)
	r.Set("main", "1")
	require.NoError(t, r.Save())
	r.Set("main", "2")
	require.NoError(t, r.Save())
	id := r.Project().ID

	entries, err := r.History("main", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "2", entries[0].Value)
	require.NoError(t, r.Close())

	loaded, err := New(WithSQLiteStore(path), WithProject(id))
	require.NoError(t, err)
	defer loaded.Close()
	require.Equal(t, "demo", loaded.Project().Name)

	projects, err := loaded.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1)

	res, err := loaded.Run(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, "2", res.String())
}

func TestWithoutStore(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	require.ErrorIs(t, r.Save(), ErrNoStore)

	_, err = New(WithProject("00000000-0000-0000-0000-000000000000"))
	require.ErrorIs(t, err, ErrNoStore)

	_, err = New(WithDriver("floppy", ""))
	require.Error(t, err)
}

func TestTokenizeRoundTrips(t *testing.T) {
	src := "x: 1 + 2\n'hi \\x\\'"
	var sb strings.Builder
	for _, tok := range Tokenize(src) {
		sb.WriteString(tok.Space)
		sb.WriteString(tok.Text)
	}
	require.Equal(t, src, sb.String())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 * 2   \n3 / 4", "1 × 2\n3 ÷ 4\n"},
		{"a: 1 ... a + 1", "a: 1 … a + 1\n"},
		{"1 -> ''", "1 → ''\n"},
		{"1 <= 2 != ⊥", "1 ≤ 2 ≠ ⊥\n"},
		{"5m/s * 2", "5m/s × 2\n"},
		{"'a * b'", "'a * b'\n"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Format(tt.src), tt.src)
	}
}
