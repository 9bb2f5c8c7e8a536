package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nickandperla.net/wordplay/pkg/wordplay"
)

func (c *cli) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Save, load and list stored projects",
	}
	cmd.AddCommand(
		c.projectSaveCommand(),
		c.projectLoadCommand(),
		c.projectListCommand(),
		c.projectHistoryCommand(),
	)
	return cmd
}

func (c *cli) projectSaveCommand() *cobra.Command {
	var name, id string
	cmd := &cobra.Command{
		Use:   "save file...",
		Short: "Store files as the sources of a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []wordplay.Option{wordplay.WithName(name)}
			if id != "" {
				opts = append(opts, wordplay.WithProject(id))
			}
			rt, err := c.runtime(true, opts...)
			if err != nil {
				return err
			}
			defer rt.Close()
			if _, err := addFiles(rt, args); err != nil {
				return err
			}
			if err := rt.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.Project().ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "untitled", "project name")
	cmd.Flags().StringVar(&id, "id", "", "update the project with this id")
	return cmd
}

func (c *cli) projectLoadCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "load id",
		Short: "Write a stored project's sources to files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(true, wordplay.WithProject(args[0]))
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			p := rt.Project()
			for _, name := range p.Sources() {
				text, _ := p.Text(name)
				path := filepath.Join(dir, name+".wp")
				if err := os.WriteFile(path, []byte(text), 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to write sources to")
	return cmd
}

func (c *cli) projectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := c.runtime(true)
			if err != nil {
				return err
			}
			defer rt.Close()
			projects, err := rt.Projects()
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s\n", p.ID, p.Name, humanize.Time(p.Updated))
			}
			return nil
		},
	}
}

func (c *cli) projectHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history id source",
		Short: "List the stored versions of a source, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(true, wordplay.WithProject(args[0]))
			if err != nil {
				return err
			}
			defer rt.Close()
			entries, err := rt.History(args[1], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				when := e.Ts
				if ts, err := time.Parse(time.RFC3339Nano, e.Ts); err == nil {
					when = humanize.Time(ts)
				}
				fmt.Fprintf(out, "v%d  %s  %s\n", e.Version, when, humanize.Bytes(uint64(len(e.Value))))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many versions")
	return cmd
}
