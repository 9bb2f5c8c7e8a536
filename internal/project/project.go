// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package project groups named sources into a project. Sources share
// definitions with ↑ and borrow them from each other with ↓; the project
// is the borrower every analysis and evaluation of its sources uses.
package project

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"

	"nickandperla.net/wordplay/internal/analysis"
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/conflict"
	"nickandperla.net/wordplay/internal/eval"
	"nickandperla.net/wordplay/internal/parser"
	"nickandperla.net/wordplay/internal/store"
	"nickandperla.net/wordplay/internal/types"
)

// DefaultCacheSize is how many parsed sources a project keeps by default.
const DefaultCacheSize = 128

// MainName is the name of a project's first source when none is given.
const MainName = "main"

// Project is a named collection of sources. The first source added is the
// project's main source.
//
// A Project is not safe for concurrent modification, but its trees may be
// analyzed concurrently, each analysis with its own Context.
type Project struct {
	ID   string
	Name string

	order  []string
	texts  map[string]string
	trees  map[string]*ast.Tree
	cache  *lru.Cache[uint64, *ast.Tree]
	logger *slog.Logger
}

// Option configures a Project.
type Option func(*Project) error

// WithID sets the project's identifier instead of generating one.
func WithID(id string) Option {
	return func(p *Project) error {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("project id %q: %w", id, err)
		}
		p.ID = id
		return nil
	}
}

// WithCacheSize sets how many parsed sources are cached.
func WithCacheSize(n int) Option {
	return func(p *Project) error {
		c, err := lru.New[uint64, *ast.Tree](n)
		if err != nil {
			return fmt.Errorf("parse cache: %w", err)
		}
		p.cache = c
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Project) error {
		p.logger = l
		return nil
	}
}

// New creates an empty project.
func New(name string, opts ...Option) (*Project, error) {
	p := &Project{
		ID:    uuid.NewString(),
		Name:  name,
		texts: map[string]string{},
		trees: map[string]*ast.Tree{},
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.cache == nil {
		p.cache, _ = lru.New[uint64, *ast.Tree](DefaultCacheSize)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p, nil
}

// cacheKey identifies a parse of text as a given source. The name is part
// of the key so that two sources with the same text get distinct trees.
func cacheKey(name, text string) uint64 {
	h := xxh3.New()
	h.WriteString(name)
	h.WriteString("\x00")
	h.WriteString(text)
	return h.Sum64()
}

// Set adds a source or replaces its text, returning its tree.
func (p *Project) Set(name, text string) *ast.Tree {
	if _, ok := p.texts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.texts[name] = text
	key := cacheKey(name, text)
	tree, ok := p.cache.Get(key)
	if !ok {
		tree = ast.NewTree(parser.Parse(text))
		p.cache.Add(key, tree)
		p.logger.Debug("parsed", "source", name, "bytes", len(text))
	}
	p.trees[name] = tree
	return tree
}

// Remove removes a source.
func (p *Project) Remove(name string) {
	if _, ok := p.texts[name]; !ok {
		return
	}
	delete(p.texts, name)
	delete(p.trees, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Source returns the tree of a source.
func (p *Project) Source(name string) (*ast.Tree, bool) {
	t, ok := p.trees[name]
	return t, ok
}

// Sources returns the names of the project's sources, main first.
func (p *Project) Sources() []string { return append([]string(nil), p.order...) }

// Text returns the text of a source.
func (p *Project) Text(name string) (string, bool) {
	t, ok := p.texts[name]
	return t, ok
}

// Main returns the name of the main source, or "" if there are none.
func (p *Project) Main() string {
	if len(p.order) == 0 {
		return ""
	}
	return p.order[0]
}

// Context returns a fresh analysis context for a source.
func (p *Project) Context(name string) (*types.Context, error) {
	tree, ok := p.trees[name]
	if !ok {
		return nil, fmt.Errorf("no source named %q", name)
	}
	return analysis.NewContext(tree, types.WithBorrower(p)), nil
}

// Conflicts returns the conflicts of a source.
func (p *Project) Conflicts(name string) ([]conflict.Conflict, error) {
	ctx, err := p.Context(name)
	if err != nil {
		return nil, err
	}
	return analysis.Conflicts(ctx), nil
}

// Evaluator returns an evaluator for a source, ready to step.
func (p *Project) Evaluator(name string, opts ...eval.Option) (*eval.Evaluator, error) {
	tree, ok := p.trees[name]
	if !ok {
		return nil, fmt.Errorf("no source named %q", name)
	}
	program, ok := tree.Root.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("source %q is not a program", name)
	}
	opts = append([]eval.Option{eval.WithBorrower(p), eval.WithLogger(p.logger)}, opts...)
	return eval.New(program, opts...), nil
}

// Borrows returns the names of the sources a source borrows from that
// exist in the project, in order and without repeats.
func (p *Project) Borrows(name string) []string {
	tree, ok := p.trees[name]
	if !ok {
		return nil
	}
	program, ok := tree.Root.(*ast.Program)
	if !ok {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, b := range program.Borrows {
		from := b.SourceName()
		if _, ok := p.trees[from]; ok && !seen[from] {
			seen[from] = true
			out = append(out, from)
		}
	}
	return out
}

// Cycles returns each cycle of borrows between sources, as the sources in
// the cycle starting from its smallest name. Each cycle is reported once.
func (p *Project) Cycles() [][]string {
	var cycles [][]string
	reported := map[string]bool{}
	var path []string
	onPath := map[string]int{}
	done := map[string]bool{}

	var visit func(name string)
	visit = func(name string) {
		onPath[name] = len(path)
		path = append(path, name)
		for _, next := range p.Borrows(name) {
			if i, ok := onPath[next]; ok {
				cycle := rotate(append([]string(nil), path[i:]...))
				key := fmt.Sprint(cycle)
				if !reported[key] {
					reported[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !done[next] {
				visit(next)
			}
		}
		path = path[:len(path)-1]
		delete(onPath, name)
		done[name] = true
	}
	names := p.Sources()
	sort.Strings(names)
	for _, name := range names {
		if !done[name] {
			visit(name)
		}
	}
	return cycles
}

// rotate turns a cycle to start at its smallest name.
func rotate(cycle []string) []string {
	first := 0
	for i, n := range cycle {
		if n < cycle[first] {
			first = i
		}
	}
	return append(cycle[first:], cycle[:first]...)
}

// Save writes the project and the text of each of its sources to s.
func (p *Project) Save(s store.Store) error {
	for _, name := range p.order {
		if err := s.Put(p.ID, name, p.texts[name]); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}
	stored, err := s.Sources(p.ID)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	for _, name := range stored {
		if _, ok := p.texts[name]; !ok {
			if err := s.Delete(p.ID, name); err != nil {
				return fmt.Errorf("delete %s: %w", name, err)
			}
		}
	}
	if err := s.SaveProject(store.ProjectInfo{ID: p.ID, Name: p.Name}); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	p.logger.Debug("saved project", "id", p.ID, "sources", len(p.order))
	return nil
}

// Load reads a project from s. Sources are loaded in sorted order, except
// that a source named main comes first.
func Load(s store.Store, id string, opts ...Option) (*Project, error) {
	infos, err := s.Projects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	name := ""
	found := false
	for _, info := range infos {
		if info.ID == id {
			name, found = info.Name, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no project with id %s", id)
	}
	p, err := New(name, append([]Option{WithID(id)}, opts...)...)
	if err != nil {
		return nil, err
	}
	names, err := s.Sources(id)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	sort.SliceStable(names, func(i, j int) bool { return names[i] == MainName && names[j] != MainName })
	for _, n := range names {
		text, ok, err := s.Get(id, n)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", n, err)
		}
		if ok {
			p.Set(n, text)
		}
	}
	return p, nil
}
