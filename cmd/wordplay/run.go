package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nickandperla.net/wordplay/internal/project"
	"nickandperla.net/wordplay/pkg/wordplay"
)

type runOptions struct {
	expr  string
	ticks int
	tick  time.Duration
	keys  []string
	stats bool
	force bool
}

func (c *cli) runCommand() *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run [file...]",
		Short: "Evaluate a program",
		Long: `Evaluate a program. The first file is the main source; the others are
sources it may borrow from by file name. With no files the program is read
from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.expr, "eval", "e", "", "evaluate this program instead of a file")
	f.IntVar(&o.ticks, "ticks", 0, "advance time this many times after the first run")
	f.DurationVar(&o.tick, "tick", 100*time.Millisecond, "time between ticks")
	f.StringSliceVar(&o.keys, "keys", nil, "press these keys after the first run")
	f.BoolVar(&o.stats, "stats", false, "report the number of steps taken")
	f.BoolVar(&o.force, "force", false, "evaluate despite hard conflicts")
	return cmd
}

func (c *cli) run(cmd *cobra.Command, o runOptions, files []string) error {
	rt, err := c.runtime(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	name := project.MainName
	switch {
	case o.expr != "":
		rt.Set(name, o.expr)
	case len(files) > 0:
		if name, err = addFiles(rt, files); err != nil {
			return err
		}
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		rt.Set(name, string(data))
	}

	cs, err := rt.Check(name)
	if err != nil {
		return err
	}
	tree, _ := rt.Project().Source(name)
	printConflicts(cmd.ErrOrStderr(), name, tree, cs)
	if hard := len(wordplay.HardConflicts(cs)); hard > 0 && !o.force {
		return fmt.Errorf("%s has %d hard %s", name, hard, plural(hard, "conflict"))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := rt.Run(ctx, name)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := report(out, res.Value); err != nil {
		return err
	}
	if o.stats {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s steps\n", humanize.Comma(int64(res.Steps)))
	}

	e := rt.Evaluator()
	for i := 0; i < o.ticks; i++ {
		if e.Tick(o.tick) {
			if err := report(out, e.CurrentValue()); err != nil {
				return err
			}
		}
	}
	for _, k := range o.keys {
		if e.Press(k) {
			if err := report(out, e.CurrentValue()); err != nil {
				return err
			}
		}
	}
	return nil
}

// report prints a value, or returns the exception that halted the program
// as an error.
func report(w io.Writer, v wordplay.Value) error {
	if ex, ok := v.(*wordplay.Exception); ok {
		return errors.New(ex.String())
	}
	if v == nil {
		return nil
	}
	_, err := fmt.Fprintln(w, wordplay.Display(v))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
