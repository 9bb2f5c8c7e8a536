package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/pkg/wordplay"
)

// Alt+key mappings: Alt+key sends ESC (0x1b) followed by the key byte.
// Where macOS has an Option key for a glyph, the same key is used.
var altKeyMappings = map[byte]string{
	'f': "ƒ", // function
	'8': "•", // type
	';': "…", // stream
	'>': "→", // convert
	'<': "←", // previous
	'j': "∆", // change
	'd': "↓", // borrow
	'u': "↑", // share
	't': "⊤", // true
	'b': "⊥", // false
	'o': "ø", // none
	'x': "×", // multiply
	'/': "÷", // divide
	'v': "√", // square root
	'=': "≠", // not equal
	',': "≤", // at most
	'.': "≥", // at least
	'7': "¶", // documentation
	'p': "π",
	'i': "◆", // initial
	'(': "⸨", // type variables
	')': "⸩",
}

func printBanner(w io.Writer, nl string) {
	lines := []string{
		"wordplay REPL (Ctrl+D to exit)",
		"",
		"Glyphs (use Alt+key):",
		"  Alt+f → ƒ   Alt+8 → •   Alt+; → …   Alt+> → →   Alt+< → ←",
		"  Alt+j → ∆   Alt+d → ↓   Alt+u → ↑   Alt+t → ⊤   Alt+b → ⊥",
		"  Alt+o → ø   Alt+x → ×   Alt+/ → ÷   Alt+v → √   Alt+= → ≠",
		"  Alt+, → ≤   Alt+. → ≥   Alt+7 → ¶   Alt+i → ◆   Alt+( → ⸨",
		"",
	}
	for _, l := range lines {
		fmt.Fprint(w, l+nl)
	}
}

func (c *cli) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate programs interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.repl(cmd)
		},
	}
}

// session accumulates the definitions entered so far. Each input is
// evaluated after them, and kept if it defines something.
type session struct {
	rt   *wordplay.Runtime
	defs []string
}

// eval evaluates one input and returns what to print.
func (s *session) eval(ctx context.Context, input string) string {
	src := strings.Join(append(append([]string(nil), s.defs...), input), "\n")
	res, err := s.rt.Eval(ctx, src)
	if err != nil {
		return "Error: " + err.Error()
	}
	if hard := res.HardConflicts(); len(hard) > 0 {
		msgs := make([]string, len(hard))
		for i, c := range hard {
			msgs[i] = c.String()
		}
		return strings.Join(msgs, "\n")
	}
	if res.Exception != nil {
		return res.Exception.String()
	}
	if defines(input) {
		s.defs = append(s.defs, input)
		return ""
	}
	return res.String()
}

// defines reports whether input ends with a definition.
func defines(input string) bool {
	program := parser.Parse(input)
	if program.Block == nil || len(program.Block.Statements) == 0 {
		return false
	}
	switch program.Block.Statements[len(program.Block.Statements)-1].(type) {
	case *ast.Bind, *ast.FunctionDefinition, *ast.StructureDefinition, *ast.ConversionDefinition:
		return true
	}
	return false
}

func (c *cli) repl(cmd *cobra.Command) error {
	rt, err := c.runtime(false)
	if err != nil {
		return err
	}
	defer rt.Close()
	s := &session{rt: rt}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		printBanner(cmd.OutOrStdout(), "\n")
		runBasicREPL(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
		return nil
	}
	return runRawREPL(ctx, s, in)
}

// runBasicREPL handles non-TTY input (piped input).
func runBasicREPL(ctx context.Context, s *session, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	var multiline strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			fmt.Fprint(out, "... ")
		} else {
			fmt.Fprint(out, ">>> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		input := line
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		}

		if strings.TrimSpace(input) != "" {
			if result := s.eval(ctx, input); result != "" {
				fmt.Fprintln(out, result)
			}
		}
		if err != nil {
			fmt.Fprintln(out)
			return
		}
	}
}

// runRawREPL handles TTY input with Alt+key support.
func runRawREPL(ctx context.Context, s *session, in *os.File) error {
	fd := int(in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	printBanner(os.Stdout, "\r\n")
	var history []string
	var multiline strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			fmt.Print("... ")
		} else {
			fmt.Print(">>> ")
		}

		line, eof := readLineRaw(in, history)
		if eof {
			fmt.Print("\r\n")
			return nil
		}
		if strings.TrimSpace(line) != "" {
			history = append(history, line)
		}

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		input := line
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		}

		if strings.TrimSpace(input) == "" {
			continue
		}
		if result := s.eval(ctx, input); result != "" {
			// Raw mode needs explicit carriage returns.
			fmt.Print(strings.ReplaceAll(result, "\n", "\r\n") + "\r\n")
		}
	}
}

// readLineRaw reads a line in raw mode with Alt+key support and history on
// the up and down arrows. It returns the line and whether EOF was
// encountered.
func readLineRaw(in io.Reader, history []string) (string, bool) {
	var line []rune
	cursor := 0
	recalled := len(history)
	buf := make([]byte, 1)

	read := func() (byte, bool) {
		n, err := in.Read(buf)
		if err != nil || n == 0 {
			return 0, false
		}
		return buf[0], true
	}

	redrawFromCursor := func() {
		fmt.Print("\x1b[K")
		fmt.Print(string(line[cursor:]))
		if cursor < len(line) {
			fmt.Printf("\x1b[%dD", len(line)-cursor)
		}
	}

	insert := func(rs []rune) {
		next := make([]rune, 0, len(line)+len(rs))
		next = append(next, line[:cursor]...)
		next = append(next, rs...)
		next = append(next, line[cursor:]...)
		line = next
		cursor += len(rs)
		fmt.Print(string(rs))
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	replace := func(text string) {
		if cursor > 0 {
			fmt.Printf("\x1b[%dD", cursor)
		}
		line = []rune(text)
		cursor = 0
		redrawFromCursor()
		if len(line) > 0 {
			fmt.Printf("\x1b[%dC", len(line))
		}
		cursor = len(line)
	}

	for {
		b, ok := read()
		if !ok {
			return string(line), true
		}

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Print("^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter
			fmt.Print("\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Print("\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC: Alt+key or an escape sequence
			next, ok := read()
			if !ok {
				continue
			}
			if next != '[' {
				if glyph, ok := altKeyMappings[next]; ok {
					insert([]rune(glyph))
				}
				continue
			}
			code, ok := read()
			if !ok {
				continue
			}
			switch code {
			case 'A': // Up
				if recalled > 0 {
					recalled--
					replace(history[recalled])
				}
			case 'B': // Down
				if recalled < len(history)-1 {
					recalled++
					replace(history[recalled])
				} else if recalled < len(history) {
					recalled = len(history)
					replace("")
				}
			case 'C': // Right
				if cursor < len(line) {
					cursor++
					fmt.Print("\x1b[C")
				}
			case 'D': // Left
				if cursor > 0 {
					cursor--
					fmt.Print("\x1b[D")
				}
			case '3': // Delete: ESC [ 3 ~
				if t, ok := read(); ok && t == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E
			if cursor < len(line) {
				fmt.Printf("\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Print("\x1b[K")
			}

		case 0x15: // Ctrl+U
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			switch {
			case b >= 0x20 && b < 0x7f:
				insert([]rune{rune(b)})
			case b >= 0x80:
				// Multi-byte UTF-8: read the continuation bytes.
				utf := []byte{b}
				extra := 0
				switch {
				case b&0xE0 == 0xC0:
					extra = 1
				case b&0xF0 == 0xE0:
					extra = 2
				case b&0xF8 == 0xF0:
					extra = 3
				}
				for i := 0; i < extra; i++ {
					c, ok := read()
					if !ok {
						break
					}
					utf = append(utf, c)
				}
				insert([]rune(string(utf))[:1])
			}
		}
	}
}
