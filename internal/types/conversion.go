package types

import (
	"nickandperla.net/wordplay/internal/ast"
)

// Conversion is an edge of the conversion graph: a conversion definition
// with its resolved input and output types.
type Conversion struct {
	Definition *ast.ConversionDefinition
	Input      Type
	Output     Type
}

// ConversionPath finds the shortest chain of conversions from one type to
// another by breadth first search. An edge may be taken when its input
// accepts the current type, so conversions declared on a general type apply
// to more specific ones. The path is empty when from already satisfies to;
// ok is false when to is unreachable. Types already reached are not
// expanded again, which bounds the search on cyclic graphs.
func ConversionPath(ctx *Context, from, to Type, conversions []Conversion) (path []Conversion, ok bool) {
	if Accepts(to, from, ctx) {
		return nil, true
	}
	type state struct {
		at   Type
		path []Conversion
	}
	visited := []Type{from}
	seen := func(t Type) bool {
		for _, v := range visited {
			if Equal(v, t, ctx) {
				return true
			}
		}
		return false
	}
	queue := []state{{at: from}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, c := range conversions {
			if !Accepts(c.Input, current.at, ctx) || seen(c.Output) {
				continue
			}
			next := append(append([]Conversion(nil), current.path...), c)
			if Accepts(to, c.Output, ctx) {
				return next, true
			}
			visited = append(visited, c.Output)
			queue = append(queue, state{at: c.Output, path: next})
		}
	}
	return nil, false
}
