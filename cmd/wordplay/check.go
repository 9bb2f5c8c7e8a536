package main

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nickandperla.net/wordplay/pkg/wordplay"
)

func (c *cli) checkCommand() *cobra.Command {
	var advisory bool
	cmd := &cobra.Command{
		Use:   "check file...",
		Short: "Report conflicts in programs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.check(cmd, args, advisory)
		},
	}
	cmd.Flags().BoolVar(&advisory, "advisory", true, "report advisory conflicts too")
	return cmd
}

// check analyzes every file concurrently, each with its own context. The
// files form one project so that borrows between them resolve.
func (c *cli) check(cmd *cobra.Command, files []string, advisory bool) error {
	rt, err := c.runtime(false)
	if err != nil {
		return err
	}
	defer rt.Close()
	if _, err := addFiles(rt, files); err != nil {
		return err
	}

	results := make([][]wordplay.Conflict, len(files))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			cs, err := rt.Check(sourceName(f))
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			results[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var result *multierror.Error
	for i, f := range files {
		cs := results[i]
		if !advisory {
			cs = wordplay.HardConflicts(cs)
		}
		tree, _ := rt.Project().Source(sourceName(f))
		printConflicts(cmd.OutOrStdout(), f, tree, cs)
		if hard := len(wordplay.HardConflicts(cs)); hard > 0 {
			result = multierror.Append(result, fmt.Errorf("%s: %d hard %s", f, hard, plural(hard, "conflict")))
		}
	}
	c.logger.Debug("checked", "files", len(files))
	return result.ErrorOrNil()
}
