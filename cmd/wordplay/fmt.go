package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nickandperla.net/wordplay/pkg/wordplay"
)

func (c *cli) fmtCommand() *cobra.Command {
	var write, list bool
	cmd := &cobra.Command{
		Use:   "fmt [file...]",
		Short: "Rewrite ASCII operators as glyphs and trim line ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				src, err := readSource(cmd.InOrStdin(), nil)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, wordplay.Format(src))
				return err
			}
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				formatted := wordplay.Format(string(data))
				changed := formatted != string(data)
				switch {
				case list:
					if changed {
						fmt.Fprintln(out, path)
					}
				case write:
					if changed {
						if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
							return fmt.Errorf("write %s: %w", path, err)
						}
						c.logger.Info("formatted", "file", path)
					}
				default:
					fmt.Fprint(out, formatted)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result to the file instead of printing it")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list files whose formatting differs")
	return cmd
}
