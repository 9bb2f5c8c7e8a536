// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package analysis computes the static meaning of wordplay programs: what
// names refer to, what type each expression has, and which conflicts the
// program contains.
//
// Every query takes a *types.Context. Contexts memoize results and detect
// cycles, so a fresh context must be used for each tree and never shared
// between goroutines.
package analysis

import (
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/types"
)

// NewContext returns a context for analyzing source.
func NewContext(source *ast.Tree, opts ...types.Option) *types.Context {
	return types.NewContext(source, opts...)
}

// Conversions returns every conversion visible to the context's source:
// those of the basis and those the source declares.
func Conversions(ctx *types.Context) []types.Conversion {
	var defs []*ast.ConversionDefinition
	defs = append(defs, ctx.Basis.Conversions()...)
	if ctx.Source != nil {
		for _, n := range ctx.Source.Nodes() {
			if c, ok := n.(*ast.ConversionDefinition); ok {
				defs = append(defs, c)
			}
		}
	}
	out := make([]types.Conversion, 0, len(defs))
	for _, c := range defs {
		out = append(out, types.Conversion{
			Definition: c,
			Input:      conversionSide(c.Input, c, ctx),
			Output:     conversionSide(c.Output, c, ctx),
		})
	}
	return out
}

// conversionSide is the type of a conversion's input or output, with the
// type variables of an enclosing generic structure accepting anything.
func conversionSide(t ast.TypeNode, c *ast.ConversionDefinition, ctx *types.Context) types.Type {
	side := typeOf(t, ctx)
	for p := ctx.Parent(c); p != nil; p = ctx.Parent(p) {
		s, ok := p.(*ast.StructureDefinition)
		if !ok {
			continue
		}
		bindings := map[*ast.TypeVariable]types.Type{}
		for _, v := range s.Variables() {
			bindings[v] = types.AnyType
		}
		return types.Substitute(side, bindings)
	}
	return side
}

// ConversionPath returns the conversions that convert the value of n's
// expression to n's type, in order. ok is false if there is no such path.
func ConversionPath(n *ast.Convert, ctx *types.Context) ([]types.Conversion, bool) {
	from := valueType(typeOf(n.Expression, ctx))
	to := typeOf(n.Type, ctx)
	return types.ConversionPath(ctx, from, to, Conversions(ctx))
}
