package basis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/ast"
)

func TestBasisParsesCleanly(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	require.NoError(t, ast.Validate(b.Program))
	ast.Walk(b.Program, func(n ast.Node) bool {
		_, unparsable := n.(*ast.Unparsable)
		_, placeholder := n.(*ast.Placeholder)
		_, badType := n.(*ast.UnparsableType)
		require.False(t, unparsable || placeholder || badType, "unexpected %s in basis", n.Kind())
		return true
	})
}

func TestBasisStructures(t *testing.T) {
	b := Default()
	for _, name := range []string{BooleanName, NumberName, TextName, NoneName, ListName, SetName, MapName} {
		require.NotNil(t, b.Structure(name), name)
	}
	list := b.Structure(ListName)
	require.Len(t, list.Variables(), 1)
	require.NotNil(t, list.Member("translate"))
	require.False(t, list.IsInterface())
	require.Same(t, b, Default())
}

func TestNativeNames(t *testing.T) {
	b := Default()
	var natives []string
	ast.Walk(b.Program, func(n ast.Node) bool {
		if native, ok := n.(*ast.NativeExpression); ok {
			natives = append(natives, native.Name)
		}
		return true
	})
	require.Contains(t, natives, "Number.+")
	require.Contains(t, natives, "Number.×")
	require.Contains(t, natives, "List.first")
	require.Contains(t, natives, "#s→#ms")
	require.Contains(t, natives, "''→#")
	require.Contains(t, natives, "#*→''")

	require.Contains(t, natives, "Boolean.~")
	require.Contains(t, natives, "List.translate")

	translate := b.Structure(ListName).Member("translate").(*ast.FunctionDefinition)
	require.Equal(t, "List.translate", translate.Body.(*ast.NativeExpression).Name)
}

func TestEveryConversionIsDeclared(t *testing.T) {
	b := Default()
	got := map[string]bool{}
	for _, c := range b.Conversions() {
		got[ConversionName(c)] = true
	}
	for _, name := range []string{
		"?→''", "#*→''", "#s→#ms", "#ms→#s", "#min→#s", "#s→#min", "#h→#min", "#min→#h",
		"''→#", "''→['']", "ø→''", "[T]→''", "{T}→[T]",
	} {
		require.True(t, got[name], "missing conversion %s", name)
	}

	// Structures hold only functions and conversions.
	for _, s := range b.Program.Block.Statements {
		def := s.(*ast.StructureDefinition)
		for _, m := range def.Members.Statements {
			switch m.(type) {
			case *ast.FunctionDefinition, *ast.ConversionDefinition:
			default:
				t.Errorf("%s has unexpected member %s", def.Names()[0], ast.Text(m))
			}
		}
	}
}

func TestStreamsAndConversions(t *testing.T) {
	b := Default()
	require.NotNil(t, b.Stream(TimeName))
	require.NotNil(t, b.Stream(KeyName))
	require.Nil(t, b.Stream("Nope"))
	require.Equal(t, []string{"frequency"}, b.Stream(TimeName).Inputs[0].Names())

	var names []string
	for _, c := range b.Conversions() {
		names = append(names, ConversionName(c))
	}
	require.Contains(t, names, "#ms→#s")
	require.Contains(t, names, "[T]→''")
	require.Equal(t, b.Structure(TextName), b.Lookup(TextName))
	require.Equal(t, b.Stream(TimeName), b.Lookup(TimeName))
	require.True(t, b.Contains(b.Stream(KeyName).Output))
}
