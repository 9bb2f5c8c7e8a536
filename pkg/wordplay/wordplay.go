// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package wordplay provides the public API for parsing, checking and
// evaluating Wordplay programs.
package wordplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/conflict"
	"nickandperla.net/wordplay/internal/eval"
	"nickandperla.net/wordplay/internal/project"
	"nickandperla.net/wordplay/internal/scanner"
	"nickandperla.net/wordplay/internal/store"
	"nickandperla.net/wordplay/internal/value"
)

type (
	// Value is a runtime value.
	Value = value.Value
	// Exception is the value a halted program evaluates to.
	Exception = value.Exception
	// Conflict is a static problem in a source.
	Conflict = conflict.Conflict
	// Token is a lexical token with its preceding whitespace.
	Token = ast.Token
	// Evaluator steps a program and drives its streams.
	Evaluator = eval.Evaluator
	// ProjectInfo describes a stored project.
	ProjectInfo = store.ProjectInfo
	// VersionEntry is one stored version of a source.
	VersionEntry = store.VersionEntry
)

// ErrNoStore is returned by operations that need a store when the runtime
// has none.
var ErrNoStore = errors.New("no store configured")

// Runtime holds a project of sources and evaluates them.
type Runtime struct {
	project      *project.Project
	store        store.HistoryStore
	logger       *slog.Logger
	name         string
	projectID    string
	stepLimit    int
	depthLimit   int
	historyLimit int
	evaluator    *eval.Evaluator
}

// Result is the outcome of evaluating a source.
type Result struct {
	Value     Value
	Exception *Exception
	Conflicts []Conflict
	Steps     int
}

// String renders the value the way a template would.
func (r *Result) String() string {
	if r.Value == nil {
		return ""
	}
	return eval.Display(r.Value)
}

// HardConflicts returns the result's hard conflicts.
func (r *Result) HardConflicts() []Conflict { return conflict.HardOnly(r.Conflicts) }

// New creates a runtime with the given options. With WithProject the
// project is loaded from the runtime's store.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		name:         "untitled",
		stepLimit:    eval.DefaultStepLimit,
		depthLimit:   eval.DefaultDepthLimit,
		historyLimit: eval.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Close()
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var err error
	switch {
	case r.projectID != "" && r.store != nil:
		r.project, err = project.Load(r.store, r.projectID, project.WithLogger(r.logger))
	case r.projectID != "":
		err = ErrNoStore
	default:
		r.project, err = project.New(r.name, project.WithLogger(r.logger))
	}
	if err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Project returns the runtime's project.
func (r *Runtime) Project() *project.Project { return r.project }

// Set adds a source to the project or replaces its text.
func (r *Runtime) Set(name, text string) {
	r.project.Set(name, text)
}

// SetFile adds a source read from a file.
func (r *Runtime) SetFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	r.Set(name, string(data))
	return nil
}

// Eval makes text the project's main source and runs it.
func (r *Runtime) Eval(ctx context.Context, text string) (*Result, error) {
	name := r.project.Main()
	if name == "" {
		name = project.MainName
	}
	r.Set(name, text)
	return r.Run(ctx, name)
}

// Run evaluates a source to completion. A program that halts is not an
// error: the exception is part of the result. A run stopped by ctx
// returns the result with ctx's error.
func (r *Runtime) Run(ctx context.Context, name string) (*Result, error) {
	conflicts, err := r.project.Conflicts(name)
	if err != nil {
		return nil, err
	}
	e, err := r.project.Evaluator(name,
		eval.WithStepLimit(r.stepLimit),
		eval.WithDepthLimit(r.depthLimit),
		eval.WithHistoryLimit(r.historyLimit))
	if err != nil {
		return nil, err
	}
	r.evaluator = e
	v := e.Run(ctx)
	res := &Result{
		Value:     v,
		Exception: e.Exception(),
		Conflicts: conflicts,
		Steps:     e.Steps(),
	}
	if res.Exception != nil && res.Exception.Kind == value.Canceled {
		return res, fmt.Errorf("run %s: %w", name, ctx.Err())
	}
	return res, nil
}

// Evaluator returns the evaluator of the last run, or nil.
func (r *Runtime) Evaluator() *Evaluator { return r.evaluator }

// Check returns the conflicts of a source.
func (r *Runtime) Check(name string) ([]Conflict, error) {
	return r.project.Conflicts(name)
}

// Save writes the project to the store.
func (r *Runtime) Save() error {
	if r.store == nil {
		return ErrNoStore
	}
	return r.project.Save(r.store)
}

// Projects lists the projects in the store.
func (r *Runtime) Projects() ([]ProjectInfo, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.Projects()
}

// History returns the stored versions of one of the project's sources,
// newest first.
func (r *Runtime) History(source string, limit int) ([]VersionEntry, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.GetHistory(r.project.ID, source, limit)
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Tokenize splits source into tokens. Concatenating each token's Space and
// Text reproduces source.
func Tokenize(source string) []*Token { return scanner.Tokenize(source) }

// HardConflicts returns the hard conflicts of cs.
func HardConflicts(cs []Conflict) []Conflict { return conflict.HardOnly(cs) }

// Display renders a value as text the way a template would.
func Display(v Value) string { return eval.Display(v) }
