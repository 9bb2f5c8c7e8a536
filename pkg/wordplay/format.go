package wordplay

import (
	"strings"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/internal/token"
)

// glyphs maps ASCII spellings to the glyph they stand for.
var glyphs = map[string]string{
	"*":                "×",
	"/":                "÷",
	"<=":               "≤",
	">=":               "≥",
	"!=":               "≠",
	token.StreamASCII:  "…",
	token.ConvertASCII: "→",
}

// Format rewrites ASCII operator spellings in source to their glyphs and
// trims whitespace at the ends of lines. Units such as m/s keep their
// spelling, and text is left alone.
func Format(source string) string {
	program := parser.Parse(source)
	inUnit := map[*ast.Token]bool{}
	ast.Walk(program, func(n ast.Node) bool {
		if u, ok := n.(*ast.Unit); ok {
			for _, t := range u.Tokens {
				inUnit[t] = true
			}
			return false
		}
		return true
	})

	var sb strings.Builder
	for _, t := range ast.Tokens(program) {
		text := t.Text
		if g, ok := glyphs[text]; ok && !inUnit[t] && (t.Is(token.Operator) || t.Is(token.Stream) || t.Is(token.Convert)) {
			text = g
		}
		if t.Is(token.End) {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			break
		}
		sb.WriteString(trimLineEnds(t.Space))
		sb.WriteString(text)
	}
	return sb.String()
}

// trimLineEnds removes spaces and tabs before each line break in space.
func trimLineEnds(space string) string {
	lines := strings.Split(space, "\n")
	for i := 0; i < len(lines)-1; i++ {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.Join(lines, "\n")
}
