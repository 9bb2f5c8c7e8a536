package analysis

import (
	"golang.org/x/text/unicode/norm"

	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/types"
)

// Normalize returns the form names are compared in, so that differently
// composed spellings of the same name refer to the same definition.
func Normalize(name string) string { return norm.NFC.String(name) }

func hasName(d ast.Definition, name string) bool {
	for _, n := range d.Names() {
		if Normalize(n) == name {
			return true
		}
	}
	return false
}

// Resolve finds the definition name refers to at node at. Scopes are
// searched from the innermost outward: a block's functions and structures
// and the binds that precede the statement, a function's inputs and type
// variables, a structure's inputs, members and type variables, the
// program's borrows, and finally the basis. It returns nil if nothing
// matches.
func Resolve(name string, at ast.Node, ctx *types.Context) ast.Definition {
	name = Normalize(name)
	if d, ok := ctx.CachedDefinition(at, name); ok {
		return d
	}
	d := resolve(name, at, ctx)
	ctx.CacheDefinition(at, name, d)
	return d
}

func resolve(name string, at ast.Node, ctx *types.Context) ast.Definition {
	child := at
	for scope := ctx.Parent(at); scope != nil; child, scope = scope, ctx.Parent(scope) {
		var found ast.Definition
		scopeDefinitions(scope, child, ctx, func(d ast.Definition) bool {
			if hasName(d, name) {
				found = d
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	if d := ctx.Basis.Lookup(name); d != nil {
		return d
	}
	return nil
}

// Visible returns every definition in scope at node at, innermost first.
// Shadowed definitions are omitted.
func Visible(at ast.Node, ctx *types.Context) []ast.Definition {
	var out []ast.Definition
	seen := map[string]bool{}
	add := func(d ast.Definition) bool {
		fresh := false
		for _, n := range d.Names() {
			n = Normalize(n)
			if !seen[n] {
				seen[n] = true
				fresh = true
			}
		}
		if fresh {
			out = append(out, d)
		}
		return true
	}
	child := at
	for scope := ctx.Parent(at); scope != nil; child, scope = scope, ctx.Parent(scope) {
		scopeDefinitions(scope, child, ctx, add)
	}
	for _, d := range ctx.Basis.Definitions() {
		add(d)
	}
	return out
}

// scopeDefinitions calls yield with each definition scope makes visible to
// its child, stopping when yield returns false.
func scopeDefinitions(scope, child ast.Node, ctx *types.Context, yield func(ast.Definition) bool) {
	switch s := scope.(type) {
	case *ast.Block:
		before := len(s.Statements)
		for i, st := range s.Statements {
			if ast.Node(st) == child {
				before = i
				break
			}
		}
		for i, st := range s.Statements {
			switch d := st.(type) {
			case *ast.FunctionDefinition, *ast.StructureDefinition:
				if !yield(d.(ast.Definition)) {
					return
				}
			case *ast.Bind:
				// A reaction may refer to the bind it is the value of.
				_, reacts := d.Value.(*ast.Reaction)
				if (i < before || i == before && reacts) && !yield(d) {
					return
				}
			}
		}
	case *ast.FunctionDefinition:
		for _, in := range s.Inputs {
			if !yield(in) {
				return
			}
		}
		for _, v := range s.Variables() {
			if !yield(v) {
				return
			}
		}
	case *ast.FunctionType:
		if s.TypeVars != nil {
			for _, v := range s.TypeVars.Variables {
				if !yield(v) {
					return
				}
			}
		}
	case *ast.StructureDefinition:
		for _, in := range s.Inputs {
			if !yield(in) {
				return
			}
		}
		if s.Members != nil && child != ast.Node(s.Members) {
			for _, st := range s.Members.Statements {
				if d, ok := st.(ast.Definition); ok {
					if !yield(d) {
						return
					}
				}
			}
		}
		for _, v := range s.Variables() {
			if !yield(v) {
				return
			}
		}
		if s.Members != nil && child == ast.Node(s.Members) {
			// Member functions may use binds declared after them.
			for _, b := range s.Binds() {
				if !yield(b) {
					return
				}
			}
		}
	case *ast.Program:
		for _, b := range s.Borrows {
			for _, d := range borrowed(b, ctx) {
				if !yield(d) {
					return
				}
			}
		}
	}
}

// Shared returns the definitions a source shares with ↑.
func Shared(tree *ast.Tree) []ast.Definition {
	program, ok := tree.Root.(*ast.Program)
	if !ok || program.Block == nil {
		return nil
	}
	var out []ast.Definition
	for _, s := range program.Block.Statements {
		switch d := s.(type) {
		case *ast.Bind:
			if d.IsShared() {
				out = append(out, d)
			}
		case *ast.FunctionDefinition:
			if d.IsShared() {
				out = append(out, d)
			}
		case *ast.StructureDefinition:
			if d.IsShared() {
				out = append(out, d)
			}
		}
	}
	return out
}

// borrowed returns the definitions a borrow brings into scope, making their
// source's nodes known to the context.
func borrowed(b *ast.Borrow, ctx *types.Context) []ast.Definition {
	if ctx.Borrower == nil || b.SourceName() == "" {
		return nil
	}
	tree, ok := ctx.Borrower.Source(b.SourceName())
	if !ok || tree == ctx.Source {
		return nil
	}
	ctx.AddTree(tree)
	shared := Shared(tree)
	if b.DefinitionName() == "" {
		return shared
	}
	name := Normalize(b.DefinitionName())
	for _, d := range shared {
		if hasName(d, name) {
			return []ast.Definition{d}
		}
	}
	return nil
}
