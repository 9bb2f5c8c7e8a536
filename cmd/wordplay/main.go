// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Command wordplay parses, checks and evaluates Wordplay programs.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/conflict"
	"nickandperla.net/wordplay/pkg/wordplay"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wordplay: %v\n", err)
		os.Exit(1)
	}
}

// cli holds the flags shared by every command and the configuration they
// resolve to.
type cli struct {
	configPath string
	logLevel   string
	driver     string
	dbPath     string
	steps      int
	depth      int

	cfg    Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "wordplay",
		Short:         "Parse, check and evaluate Wordplay programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Piped input runs; a terminal gets the REPL.
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return c.repl(cmd)
			}
			return c.run(cmd, runOptions{}, nil)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "wordplay.yaml", "configuration file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&c.driver, "store", "", "store driver: sqlite, bolt or memory")
	flags.StringVar(&c.dbPath, "db", "", "store path")
	flags.IntVar(&c.steps, "steps", 0, "step limit per run")
	flags.IntVar(&c.depth, "depth", 0, "evaluation depth limit")

	root.AddCommand(
		c.runCommand(),
		c.checkCommand(),
		c.tokensCommand(),
		c.fmtCommand(),
		c.replCommand(),
		c.projectCommand(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (c *cli) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := loadConfig(c.configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("store") {
		cfg.Store.Driver = c.driver
	}
	if flags.Changed("db") {
		cfg.Store.Path = c.dbPath
	}
	if flags.Changed("steps") {
		cfg.Limits.Steps = c.steps
	}
	if flags.Changed("depth") {
		cfg.Limits.Depth = c.depth
	}
	c.cfg = cfg

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	c.logger = prettyLogger(cmd.ErrOrStderr(), level)
	c.logger.Debug("configured", "store", cfg.Store.Driver, "path", cfg.Store.Path, "steps", cfg.Limits.Steps)
	return nil
}

func prettyLogger(dest io.Writer, level slog.Level) *slog.Logger {
	color := false
	if f, ok := dest.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return slog.New(tint.NewHandler(dest, &tint.Options{
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
		Level:      level,
	}))
}

// runtime creates a runtime with the configured limits. Only commands that
// save or load projects open the store.
func (c *cli) runtime(withStore bool, opts ...wordplay.Option) (*wordplay.Runtime, error) {
	base := []wordplay.Option{
		wordplay.WithLogger(c.logger),
		wordplay.WithStepLimit(c.cfg.Limits.Steps),
		wordplay.WithDepthLimit(c.cfg.Limits.Depth),
	}
	if withStore {
		base = append(base, wordplay.WithDriver(c.cfg.Store.Driver, c.cfg.Store.Path))
	}
	return wordplay.New(append(base, opts...)...)
}

// sourceName names a file's source by its base name without extension, so
// that ↓shapes borrows from shapes.wp.
func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// addFiles adds each file to the runtime's project and returns the name of
// the first.
func addFiles(rt *wordplay.Runtime, paths []string) (string, error) {
	first := ""
	for _, p := range paths {
		name := sourceName(p)
		if err := rt.SetFile(name, p); err != nil {
			return "", err
		}
		if first == "" {
			first = name
		}
	}
	return first, nil
}

// printConflicts writes one line per conflict, positioned in tree.
func printConflicts(w io.Writer, file string, tree *ast.Tree, cs []conflict.Conflict) {
	for _, c := range cs {
		pos := tree.Position(c.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s\n", file, pos.Line, pos.Column, c.Severity, c)
	}
}
