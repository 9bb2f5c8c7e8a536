package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/unit"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", NewNumber(1, unit.None), NewNumber(1, unit.None), true},
		{"units differ", NewNumber(1, unit.Of("m")), NewNumber(1, unit.Of("s")), false},
		{"text", NewText("a"), NewText("a"), true},
		{"text and number", NewText("1"), NewNumber(1, unit.None), false},
		{"booleans", True, Bool(true), true},
		{"none", Nothing, &None{}, true},
		{"lists", &List{Items: []Value{NewNumber(1, unit.None)}}, &List{Items: []Value{NewNumber(1, unit.None)}}, true},
		{"list order", &List{Items: []Value{True, False}}, &List{Items: []Value{False, True}}, false},
		{"set order", NewSet(True, False), NewSet(False, True), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestSetIsDistinct(t *testing.T) {
	s := NewSet(NewText("a"), NewText("b"), NewText("a"))
	require.Len(t, s.Items, 2)
	require.Equal(t, "{'a' 'b'}", s.String())
}

func TestMapWithAndWithout(t *testing.T) {
	m := (&Map{}).With(NewText("a"), NewNumber(1, unit.None)).With(NewText("b"), NewNumber(2, unit.None))
	m = m.With(NewText("a"), NewNumber(3, unit.None))
	v, ok := m.Get(NewText("a"))
	require.True(t, ok)
	require.Equal(t, "3", v.String())
	require.Equal(t, "{'a':3 'b':2}", m.String())
	require.Equal(t, "{'b':2}", m.Without(NewText("a")).String())
}

func TestNumberString(t *testing.T) {
	require.Equal(t, "2.5m", NewNumber(2.5, unit.Of("m")).String())
	require.Equal(t, "120000ms", NewNumber(120000, unit.Of("ms")).String())
}

func TestStream(t *testing.T) {
	s := NewStream("k", nil, NewNumber(0, unit.None))
	s.Add(NewNumber(1, unit.None))
	s.Add(NewNumber(2, unit.None))
	require.Equal(t, 3, s.Len())
	require.Equal(t, "2", s.Latest().String())
	prev, ok := s.Previous(2)
	require.True(t, ok)
	require.Equal(t, "0", prev.String())
	_, ok = s.Previous(3)
	require.False(t, ok)
	s.Truncate(1)
	require.Equal(t, "0", Latest(s).String())
}

func TestScope(t *testing.T) {
	global := NewScope(nil)
	global.Bind("x", NewNumber(1, unit.None))
	inner := NewScope(global)
	inner.Bind("y", NewText("why"))

	v, ok := inner.Lookup("x")
	require.True(t, ok)
	require.Equal(t, "1", v.String())
	_, ok = global.Lookup("y")
	require.False(t, ok)

	before := inner.Snapshot()
	inner.Bind("z", True)
	require.Equal(t, []string{"y", "z"}, inner.Names())
	inner.Restore(before)
	require.Equal(t, []string{"y"}, inner.Names())

	inner.Fallback = func(name string) (Value, bool) {
		if name == "length" {
			return NewNumber(3, unit.None), true
		}
		return nil, false
	}
	v, ok = inner.Lookup("length")
	require.True(t, ok)
	require.Equal(t, "3", v.String())
}

func TestExceptionString(t *testing.T) {
	e := NewException(NameException, nil, "unknown name %s", "x")
	require.Equal(t, "NameException: unknown name x", e.String())
	require.Equal(t, "ExceptionKind(42)", ExceptionKind(42).String())
}
