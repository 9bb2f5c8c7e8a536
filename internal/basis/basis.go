// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package basis defines the built-in structures, conversions and streams
// that every program can refer to.
//
// Most of the basis is wordplay source. Function and conversion bodies
// written as a placeholder are implemented by the host: New replaces each
// such body with a NativeExpression named after its structure and function
// ("Number.+", "List.first") or, for conversions, after its types
// ("#s→#ms"). The evaluator looks natives up by these names.
package basis

import (
	"fmt"
	"sync"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/parser"
)

// Names of the structures that back the primitive types.
const (
	BooleanName = "Boolean"
	NumberName  = "Number"
	TextName    = "Text"
	NoneName    = "None"
	ListName    = "List"
	SetName     = "Set"
	MapName     = "Map"
)

// Names of the built-in streams.
const (
	TimeName = "Time"
	KeyName  = "Key"
)

const source = `¶A truth value¶
•Boolean() (
  ƒ &(other•?) •? _
  ƒ |(other•?) •? _
  ƒ ~, ¬() •? _
  → ? '' _
)
¶A number with an optional unit¶
•Number() (
  ƒ +(other•#) •# _
  ƒ -(other•#) •# _
  ƒ ×, ·, *(other•#) •# _
  ƒ ÷, /(other•#) •# _
  ƒ %(other•#) •# _
  ƒ ^(other•#) •# _
  ƒ √() •# _
  ƒ <(other•#) •? _
  ƒ >(other•#) •? _
  ƒ ≤, <=(other•#) •? _
  ƒ ≥, >=(other•#) •? _
  ƒ round() •# _
  ƒ abs() •# _
  → #* '' _
  → #s #ms _
  → #ms #s _
  → #min #s _
  → #s #min _
  → #h #min _
  → #min #h _
)
¶A sequence of characters¶
•Text() (
  ƒ +(other•'') •'' _
  ƒ length() •# _
  ƒ has(other•'') •? _
  ƒ upper() •'' _
  ƒ lower() •'' _
  → '' # _
  → '' [''] _
)
¶Nothing¶
•None() (
  → ø '' _
)
¶An ordered sequence of values¶
•List⸨T⸩() (
  ƒ length() •# _
  ƒ first() •T|ø _
  ƒ last() •T|ø _
  ƒ rest() •[T] _
  ƒ has(item•T) •? _
  ƒ reverse() •[T] _
  ƒ +(other•[T]) •[T] _
  ƒ translate⸨U⸩(translator•ƒ(item•T) U) •[U] _
  ƒ filter(include•ƒ(item•T) ?) •[T] _
  ƒ combine⸨A⸩(initial•A combiner•ƒ(sum•A item•T) A) •A _
  ƒ all(test•ƒ(item•T) ?) •? _
  → [T] '' _
)
¶An unordered collection of unique values¶
•Set⸨T⸩() (
  ƒ size() •# _
  ƒ has(item•T) •? _
  ƒ +(item•T) •{T} _
  ƒ -(item•T) •{T} _
  → {T} [T] _
)
¶A mapping from keys to values¶
•Map⸨K V⸩() (
  ƒ size() •# _
  ƒ has(key•K) •? _
  ƒ set(key•K value•V) •{K:V} _
  ƒ remove(key•K) •{K:V} _
  ƒ keys() •[K] _
  ƒ values() •[V] _
)
`

// Basis holds the parsed built-in definitions.
type Basis struct {
	Program *ast.Program
	Tree    *ast.Tree

	structures  map[string]*ast.StructureDefinition
	conversions []*ast.ConversionDefinition
	streams     []*ast.StreamDefinition
	trees       []*ast.Tree
}

var (
	defaultOnce  sync.Once
	defaultBasis *Basis
)

// Default returns a basis shared by every caller. A Basis is never
// modified after construction, so sharing it is safe.
func Default() *Basis {
	defaultOnce.Do(func() {
		b, err := New()
		if err != nil {
			panic(fmt.Sprintf("basis: %v", err))
		}
		defaultBasis = b
	})
	return defaultBasis
}

// New parses and indexes a fresh basis.
func New() (*Basis, error) {
	root, err := nativize(parser.Parse(source))
	if err != nil {
		return nil, err
	}
	if err := ast.Validate(root); err != nil {
		return nil, fmt.Errorf("basis: invalid tree: %w", err)
	}
	b := &Basis{
		Program:    root,
		Tree:       ast.NewTree(root),
		structures: map[string]*ast.StructureDefinition{},
	}
	b.trees = append(b.trees, b.Tree)
	for _, s := range root.Block.Statements {
		switch def := s.(type) {
		case *ast.StructureDefinition:
			for _, name := range def.Names() {
				b.structures[name] = def
			}
			b.conversions = append(b.conversions, def.Conversions()...)
		case *ast.ConversionDefinition:
			b.conversions = append(b.conversions, def)
		}
	}
	for _, def := range streams() {
		b.streams = append(b.streams, def)
		b.trees = append(b.trees, ast.NewTree(def))
	}
	return b, nil
}

func streams() []*ast.StreamDefinition {
	return []*ast.StreamDefinition{
		ast.MakeStreamDefinition(TimeName,
			[]*ast.Bind{ast.MakeBind("frequency", ast.MakeNumberType("ms"), ast.MakeNumber("33", "ms"))},
			ast.MakeNumberType("ms")),
		ast.MakeStreamDefinition(KeyName,
			[]*ast.Bind{ast.MakeBind("key", ast.MakeUnionType(ast.MakeTextType(), ast.MakeNoneType()), ast.MakeNone())},
			ast.MakeTextType()),
	}
}

// nativize replaces placeholder bodies with native expressions.
func nativize(program *ast.Program) (*ast.Program, error) {
	type target struct {
		body ast.Node
		name string
		out  ast.TypeNode
	}
	var targets []target
	collect := func(owner string, statements []ast.Expression) {
		for _, s := range statements {
			switch def := s.(type) {
			case *ast.FunctionDefinition:
				if _, ok := def.Body.(*ast.Placeholder); ok {
					targets = append(targets, target{def.Body, owner + "." + def.Names()[0], def.Output})
				}
			case *ast.ConversionDefinition:
				if _, ok := def.Body.(*ast.Placeholder); ok {
					targets = append(targets, target{def.Body, ConversionName(def), def.Output})
				}
			}
		}
	}
	collect("", program.Block.Statements)
	for _, s := range program.Block.Statements {
		if def, ok := s.(*ast.StructureDefinition); ok && def.Members != nil {
			collect(def.Names()[0], def.Members.Statements)
		}
	}

	var root ast.Node = program
	for _, t := range targets {
		var out ast.TypeNode = ast.MakeNoneType()
		if t.out != nil {
			out = parser.ParseType(ast.Text(t.out))
		}
		edit, err := ast.Replace(root, t.body, ast.MakeNative(t.name, out))
		if err != nil {
			return nil, fmt.Errorf("basis: native %s: %w", t.name, err)
		}
		root = edit.Root
	}
	return root.(*ast.Program), nil
}

// ConversionName names a conversion by its input and output types.
func ConversionName(c *ast.ConversionDefinition) string {
	return ast.Text(c.Input) + "→" + ast.Text(c.Output)
}

// Structure returns the named basis structure or nil.
func (b *Basis) Structure(name string) *ast.StructureDefinition {
	return b.structures[name]
}

// Stream returns the named stream definition or nil.
func (b *Basis) Stream(name string) *ast.StreamDefinition {
	for _, s := range b.streams {
		for _, n := range s.Names() {
			if n == name {
				return s
			}
		}
	}
	return nil
}

// Streams returns every stream definition.
func (b *Basis) Streams() []*ast.StreamDefinition { return b.streams }

// Conversions returns every basis conversion, including those declared
// inside structures.
func (b *Basis) Conversions() []*ast.ConversionDefinition { return b.conversions }

// Definitions returns the globally visible basis definitions.
func (b *Basis) Definitions() []ast.Definition {
	var out []ast.Definition
	for _, s := range b.Program.Block.Statements {
		if def, ok := s.(ast.Definition); ok {
			out = append(out, def)
		}
	}
	for _, s := range b.streams {
		out = append(out, s)
	}
	return out
}

// Lookup returns the global basis definition with the given name.
func (b *Basis) Lookup(name string) ast.Definition {
	for _, def := range b.Definitions() {
		for _, n := range def.Names() {
			if n == name {
				return def
			}
		}
	}
	return nil
}

// Trees returns the indexes of every basis tree.
func (b *Basis) Trees() []*ast.Tree { return b.trees }

// Contains reports whether n belongs to the basis.
func (b *Basis) Contains(n ast.Node) bool {
	for _, t := range b.trees {
		if t.Contains(n) {
			return true
		}
	}
	return false
}
