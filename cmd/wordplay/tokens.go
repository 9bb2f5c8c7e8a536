package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"nickandperla.net/wordplay/pkg/wordplay"
)

func (c *cli) tokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range wordplay.Tokenize(src) {
				fmt.Fprintf(out, "%-12s %-10s %s\n", t.Category, strconv.Quote(t.Space), strconv.Quote(t.Text))
			}
			return nil
		},
	}
}

// readSource reads the named file, or standard input when there is none.
func readSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
