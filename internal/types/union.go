package types

import (
	"nickandperla.net/wordplay/internal/ast"
)

// PossibleUnion normalizes types into a single type. Nested unions are
// flattened, members that accept each other are merged, and a single
// remaining member is returned on its own. Applying it to its own result
// yields an equal type.
func PossibleUnion(ctx *Context, ts ...Type) Type {
	var members []Type
	var add func(t Type)
	add = func(t Type) {
		if t == nil {
			return
		}
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		for _, m := range members {
			if Equal(m, t, ctx) {
				return
			}
		}
		members = append(members, t)
	}
	for _, t := range ts {
		add(t)
	}
	switch len(members) {
	case 0:
		return AnyType
	case 1:
		return members[0]
	}
	return &Union{Members: members}
}

// Without returns t with every member accepted by removed dropped. It is
// used to narrow the false branch of a type test.
func Without(ctx *Context, t, removed Type) Type {
	u, ok := t.(*Union)
	if !ok {
		return t
	}
	var kept []Type
	for _, m := range u.Members {
		if !Accepts(removed, m, ctx) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return t
	}
	return PossibleUnion(ctx, kept...)
}

// Substitute replaces bound type variables in t.
func Substitute(t Type, bindings map[*ast.TypeVariable]Type) Type {
	if len(bindings) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case *Variable:
		if b, ok := bindings[t.Definition]; ok && b != nil {
			return b
		}
		return t
	case *List:
		return &List{Item: Substitute(t.Item, bindings)}
	case *Set:
		return &Set{Key: Substitute(t.Key, bindings)}
	case *Map:
		return &Map{Key: Substitute(t.Key, bindings), Value: Substitute(t.Value, bindings)}
	case *Stream:
		return &Stream{Value: Substitute(t.Value, bindings)}
	case *Union:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = Substitute(m, bindings)
		}
		return &Union{Members: members}
	case *Function:
		f := &Function{Definition: t.Definition, Output: Substitute(t.Output, bindings)}
		for _, v := range t.Variables {
			if _, bound := bindings[v]; !bound {
				f.Variables = append(f.Variables, v)
			}
		}
		for _, in := range t.Inputs {
			in.Type = Substitute(in.Type, bindings)
			f.Inputs = append(f.Inputs, in)
		}
		return f
	case *Structure:
		s := &Structure{Definition: t.Definition, Interfaces: t.Interfaces, Arguments: map[*ast.TypeVariable]Type{}}
		for v, a := range t.Arguments {
			s.Arguments[v] = Substitute(a, bindings)
		}
		return s
	}
	return t
}

// HasVariables reports whether t mentions an unbound type variable.
func HasVariables(t Type) bool {
	switch t := t.(type) {
	case *Variable:
		return true
	case *List:
		return HasVariables(t.Item)
	case *Set:
		return HasVariables(t.Key)
	case *Map:
		return HasVariables(t.Key) || HasVariables(t.Value)
	case *Stream:
		return HasVariables(t.Value)
	case *Union:
		for _, m := range t.Members {
			if HasVariables(m) {
				return true
			}
		}
	case *Function:
		for _, in := range t.Inputs {
			if HasVariables(in.Type) {
				return true
			}
		}
		return HasVariables(t.Output)
	case *Structure:
		for _, a := range t.Arguments {
			if HasVariables(a) {
				return true
			}
		}
	}
	return false
}

// Bind matches a parameter type that may mention type variables against a
// concrete argument type, recording what each variable must be. Existing
// bindings are kept.
func Bind(param, arg Type, bindings map[*ast.TypeVariable]Type) {
	if param == nil || arg == nil {
		return
	}
	if s, ok := arg.(*Stream); ok {
		if _, isStream := param.(*Stream); !isStream {
			arg = s.Value
		}
	}
	switch p := param.(type) {
	case *Variable:
		if _, bound := bindings[p.Definition]; !bound {
			switch arg.(type) {
			case *Unknown, *Any:
			default:
				bindings[p.Definition] = arg
			}
		}
	case *List:
		if a, ok := arg.(*List); ok {
			Bind(p.Item, a.Item, bindings)
		}
	case *Set:
		if a, ok := arg.(*Set); ok {
			Bind(p.Key, a.Key, bindings)
		}
	case *Map:
		if a, ok := arg.(*Map); ok {
			Bind(p.Key, a.Key, bindings)
			Bind(p.Value, a.Value, bindings)
		}
	case *Stream:
		if a, ok := arg.(*Stream); ok {
			Bind(p.Value, a.Value, bindings)
		}
	case *Function:
		if a, ok := arg.(*Function); ok {
			for i := range p.Inputs {
				if i < len(a.Inputs) {
					Bind(p.Inputs[i].Type, a.Inputs[i].Type, bindings)
				}
			}
			Bind(p.Output, a.Output, bindings)
		}
	case *Structure:
		if a, ok := arg.(*Structure); ok && a.Definition == p.Definition {
			for v, t := range p.Arguments {
				Bind(t, a.Arguments[v], bindings)
			}
		}
	}
}
