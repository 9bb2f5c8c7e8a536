package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nickandperla.net/wordplay/internal/token"
)

type tok struct {
	kind token.Kind
	text string
}

func scan(src string) []tok {
	var out []tok
	for _, t := range Tokenize(src) {
		out = append(out, tok{t.Category, t.Text})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []tok
	}{
		{"addition", "1 + 2", []tok{{token.Number, "1"}, {token.Operator, "+"}, {token.Number, "2"}, {token.End, ""}}},
		{"negative number", "-1", []tok{{token.Number, "-1"}, {token.End, ""}}},
		{"binary minus", "a-1", []tok{{token.Name, "a"}, {token.Operator, "-"}, {token.Number, "1"}, {token.End, ""}}},
		{"minus after close", "(1)-2", []tok{
			{token.EvalOpen, "("}, {token.Number, "1"}, {token.EvalClose, ")"}, {token.Operator, "-"}, {token.Number, "2"}, {token.End, ""},
		}},
		{"unary minus on name", "-a", []tok{{token.Operator, "-"}, {token.Name, "a"}, {token.End, ""}}},
		{"decimal and unit", "1.5ms", []tok{{token.Number, "1.5"}, {token.Name, "ms"}, {token.End, ""}}},
		{"pi", "π", []tok{{token.Number, "π"}, {token.End, ""}}},
		{"ascii stream", "1 ... ⊤ ... 2", []tok{
			{token.Number, "1"}, {token.Stream, "..."}, {token.True, "⊤"}, {token.Stream, "..."}, {token.Number, "2"}, {token.End, ""},
		}},
		{"ascii convert", "1 -> ''", []tok{
			{token.Number, "1"}, {token.Convert, "->"}, {token.TextOpen, "'"}, {token.TextClose, "'"}, {token.End, ""},
		}},
		{"longest operator", "a <= b", []tok{{token.Name, "a"}, {token.Operator, "<="}, {token.Name, "b"}, {token.End, ""}}},
		{"text", "'hi there'", []tok{{token.TextOpen, "'"}, {token.Words, "hi there"}, {token.TextClose, "'"}, {token.End, ""}}},
		{"guillemets", "«a»", []tok{{token.TextOpen, "«"}, {token.Words, "a"}, {token.TextClose, "»"}, {token.End, ""}}},
		{"template", `'a \1 + 2\ b'`, []tok{
			{token.TextOpen, "'"}, {token.Words, "a "}, {token.Code, `\`}, {token.Number, "1"}, {token.Operator, "+"},
			{token.Number, "2"}, {token.Code, `\`}, {token.Words, " b"}, {token.TextClose, "'"}, {token.End, ""},
		}},
		{"nested text in code", `'\'x'\'`, []tok{
			{token.TextOpen, "'"}, {token.Code, `\`}, {token.TextOpen, "'"}, {token.Words, "x"}, {token.TextClose, "'"},
			{token.Code, `\`}, {token.TextClose, "'"}, {token.End, ""},
		}},
		{"unclosed text stops at newline", "'abc\n1", []tok{
			{token.TextOpen, "'"}, {token.Words, "abc"}, {token.Number, "1"}, {token.End, ""},
		}},
		{"placeholder and underscore name", "_ a_b _c", []tok{
			{token.Placeholder, "_"}, {token.Name, "a_b"}, {token.Name, "_c"}, {token.End, ""},
		}},
		{"function", "ƒ sum⸨T⸩(a•T) a", []tok{
			{token.Function, "ƒ"}, {token.Name, "sum"}, {token.TypeVarsOpen, "⸨"}, {token.Name, "T"}, {token.TypeVarsClose, "⸩"},
			{token.EvalOpen, "("}, {token.Name, "a"}, {token.Type, "•"}, {token.Name, "T"}, {token.EvalClose, ")"},
			{token.Name, "a"}, {token.End, ""},
		}},
		{"doc", "¶adds¶ x", []tok{{token.Doc, "¶adds¶"}, {token.Name, "x"}, {token.End, ""}}},
		{"emoji name", "🐈: 1", []tok{{token.Name, "🐈"}, {token.Bind, ":"}, {token.Number, "1"}, {token.End, ""}}},
		{"unknown closer", "’", []tok{{token.Unknown, "’"}, {token.End, ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, scan(tt.src))
		})
	}
}

func TestWhitespaceAttachesToFollowingToken(t *testing.T) {
	tokens := Tokenize("  a\n\tb  ")
	require.Len(t, tokens, 3)
	require.Equal(t, "  ", tokens[0].Space)
	require.Equal(t, "\n\t", tokens[1].Space)
	require.Equal(t, token.End, tokens[2].Category)
	require.Equal(t, "  ", tokens[2].Space)
}

func TestTokenizeIsLossless(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"x: 1 + 2\nx",
		"'unclosed\n[1 2 3",
		"ƒ f(a•# b•#: 1) a + b\nf(1)",
		"\xff\xfe garbage \x00 ‽ 👩‍👩‍👧",
		`'\'\'\`,
		"¶never closed",
		"a•[#]|ø ... ∆ Time() ... ← 1 .",
	}
	for _, src := range inputs {
		var sb strings.Builder
		tokens := Tokenize(src)
		require.Equal(t, token.End, tokens[len(tokens)-1].Category)
		for _, tk := range tokens {
			sb.WriteString(tk.Space)
			sb.WriteString(tk.Text)
		}
		require.Equal(t, src, sb.String())
	}
}

func TestUnknownIsOneGrapheme(t *testing.T) {
	tokens := Tokenize("’👩‍👩‍👧")
	require.Equal(t, token.Unknown, tokens[0].Category)
	require.Equal(t, "’", tokens[0].Text)
	require.Equal(t, token.Name, tokens[1].Category)
	require.Equal(t, 1, tokens[1].Length())
}

func TestPeek(t *testing.T) {
	s := New("a b")
	require.Equal(t, "a", s.Peek().Text)
	require.Equal(t, "a", s.Next().Text)
	require.Equal(t, "b", s.Next().Text)
	require.Equal(t, token.End, s.Next().Category)
	require.Equal(t, token.End, s.Next().Category)
}
