package project

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/conflict"
	"nickandperla.net/wordplay/internal/store"
)

func newProject(t *testing.T, sources ...[2]string) *Project {
	t.Helper()
	p, err := New("test")
	require.NoError(t, err)
	for _, s := range sources {
		p.Set(s[0], s[1])
	}
	return p
}

func TestNewGeneratesID(t *testing.T) {
	p := newProject(t)
	_, err := uuid.Parse(p.ID)
	require.NoError(t, err)

	_, err = New("bad", WithID("not-a-uuid"))
	require.Error(t, err)
}

func TestSetReplacesAndKeepsOrder(t *testing.T) {
	p := newProject(t, [2]string{"main", "1"}, [2]string{"lib", "2"})
	first, _ := p.Source("main")
	p.Set("main", "3")
	second, _ := p.Source("main")
	require.NotSame(t, first, second)
	require.Equal(t, []string{"main", "lib"}, p.Sources())
	require.Equal(t, "main", p.Main())

	text, ok := p.Text("main")
	require.True(t, ok)
	require.Equal(t, "3", text)

	p.Remove("main")
	require.Equal(t, "lib", p.Main())
	_, ok = p.Source("main")
	require.False(t, ok)
}

func TestParseCache(t *testing.T) {
	p := newProject(t, [2]string{"main", "1 + 2"})
	a, _ := p.Source("main")
	p.Set("main", "3")
	p.Set("main", "1 + 2")
	b, _ := p.Source("main")
	require.Same(t, a, b)

	// The same text in another source is a different tree.
	c := p.Set("copy", "1 + 2")
	require.NotSame(t, a, c)
}

func TestBorrowAcrossSources(t *testing.T) {
	p := newProject(t,
		[2]string{"main", "↓shapes\narea(3)"},
		[2]string{"shapes", "↑ƒ area(side•#) side · side"},
	)
	cs, err := p.Conflicts("main")
	require.NoError(t, err)
	require.Empty(t, conflict.HardOnly(cs))

	e, err := p.Evaluator("main")
	require.NoError(t, err)
	require.Equal(t, "9", e.RunToCompletion().String())

	_, err = p.Evaluator("missing")
	require.Error(t, err)
}

func TestCycles(t *testing.T) {
	p := newProject(t,
		[2]string{"main", "↓a\n1"},
		[2]string{"a", "↓b\n↑x: 1"},
		[2]string{"b", "↓a\n↑y: 2"},
		[2]string{"c", "↓c\n3"},
	)
	want := [][]string{{"a", "b"}, {"c"}}
	if diff := cmp.Diff(want, p.Cycles()); diff != "" {
		t.Errorf("cycles (-want +got):\n%s", diff)
	}
	require.Empty(t, newProject(t, [2]string{"main", "1"}).Cycles())
}

func TestSaveAndLoad(t *testing.T) {
	s := store.NewMemory()
	p := newProject(t, [2]string{"zeta", "↓main\n1"}, [2]string{"main", "↑x: 1"})
	p.Set("gone", "2")
	require.NoError(t, p.Save(s))
	p.Remove("gone")
	require.NoError(t, p.Save(s))

	loaded, err := Load(s, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Name, loaded.Name)
	require.Equal(t, []string{"main", "zeta"}, loaded.Sources())
	text, _ := loaded.Text("zeta")
	require.Equal(t, "↓main\n1", text)

	_, err = Load(s, uuid.NewString())
	require.Error(t, err)
}
