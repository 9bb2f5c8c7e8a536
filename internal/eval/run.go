package eval

import (
	"math"
	"strings"

	"nickandperla.net/wordplay/internal/analysis"
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/token"
	"nickandperla.net/wordplay/internal/types"
	"nickandperla.net/wordplay/internal/value"
)

func (e *Evaluator) run(f *Evaluation, s Step) {
	switch s.Kind {
	case Start:
		e.start(f, s)
	case Finish:
		e.finish(f, s)
	case Jump:
		f.pc += s.Offset
	case JumpIf:
		b, ok := value.Latest(f.pop()).(*value.Boolean)
		if !ok {
			e.halt(value.NewException(value.TypeException, s.Node, "expected ? for a condition"))
			return
		}
		if b.Value == s.When {
			f.pc += s.Offset
		}
	case StartEvaluation:
		e.startEvaluation(f, s)
	case Check:
		e.check(f, s)
	case Halt:
		e.halt(value.NewException(s.Exception, s.Node, "%s cannot be evaluated", describe(s.Node)))
	}
}

func describe(n ast.Node) string {
	if n == nil {
		return "nothing"
	}
	if text := ast.Text(n); text != "" {
		return text
	}
	return n.Kind().String()
}

// give pushes a result onto f, keeping streams only when raw, or halts if
// the result is an exception.
func (e *Evaluator) give(f *Evaluation, v value.Value, raw bool) {
	if ex, ok := v.(*value.Exception); ok {
		e.halt(ex)
		return
	}
	if s, ok := v.(*value.Stream); ok {
		e.read[s] = true
		if !raw {
			v = s.Latest()
		}
	}
	f.push(v)
}

func (e *Evaluator) start(f *Evaluation, s Step) {
	switch n := s.Node.(type) {
	case *ast.Program:
		e.loadBorrows(n)
	case *ast.Block:
		if !n.IsRoot() {
			f.scope = value.NewScope(f.scope)
		}
	case *ast.Reaction:
		if f.marks == nil {
			f.marks = map[ast.Node]int{}
		}
		f.marks[n] = len(f.stack)
	}
}

func (e *Evaluator) finish(f *Evaluation, s Step) {
	switch n := s.Node.(type) {
	case *ast.Program, *ast.Conditional:

	case *ast.Block:
		values := f.popN(len(n.Statements))
		var result value.Value = value.Nothing
		if len(values) > 0 {
			result = values[len(values)-1]
		}
		if !n.IsRoot() && f.scope.Parent() != nil {
			f.scope = f.scope.Parent()
		}
		f.push(result)

	case *ast.Bind:
		if n.Value == nil {
			e.halt(value.NewException(value.ValueException, n, "%s has no value", strings.Join(n.Names(), ",")))
			return
		}
		v := f.pop()
		for _, name := range n.Names() {
			f.scope.Bind(analysis.Normalize(name), v)
		}
		e.give(f, v, false)

	case *ast.FunctionDefinition:
		fn := &value.Function{Definition: n, Closure: f.scope}
		for _, name := range n.Names() {
			f.scope.Bind(analysis.Normalize(name), fn)
		}
		f.push(fn)

	case *ast.StructureDefinition:
		def := &value.StructureDefinition{Definition: n, Closure: f.scope}
		for _, name := range n.Names() {
			f.scope.Bind(analysis.Normalize(name), def)
		}
		f.push(def)

	case *ast.StreamDefinition:
		def := &value.StreamDefinition{Definition: n}
		for _, name := range n.Names() {
			f.scope.Bind(analysis.Normalize(name), def)
		}
		f.push(def)

	case *ast.ConversionDefinition:
		f.push(value.Nothing)

	case *ast.NumberLiteral:
		f.push(value.NewNumber(n.Value(), n.Measure()))
	case *ast.TextLiteral:
		f.push(value.NewText(n.Value()))
	case *ast.BooleanLiteral:
		f.push(value.Bool(n.Value()))
	case *ast.NoneLiteral:
		f.push(value.Nothing)
	case *ast.Initial:
		f.push(value.Bool(e.runs == 1))

	case *ast.Reference:
		e.give(f, e.lookup(f, n), s.Raw)

	case *ast.This:
		e.give(f, e.this(n), false)

	case *ast.BinaryOperation:
		right := value.Latest(f.pop())
		left := value.Latest(f.pop())
		switch op := n.OperatorName(); op {
		case "=":
			f.push(value.Bool(value.Equal(left, right)))
		case "≠", "!=":
			f.push(value.Bool(!value.Equal(left, right)))
		default:
			e.operate(f, n, left, op, []value.Value{right})
		}

	case *ast.UnaryOperation:
		e.operate(f, n, value.Latest(f.pop()), n.OperatorName(), nil)

	case *ast.PropertyReference:
		e.give(f, e.property(value.Latest(f.pop()), n), false)

	case *ast.ListLiteral:
		f.push(&value.List{Items: latest(f.popN(len(n.Values)))})

	case *ast.SetLiteral:
		f.push(value.NewSet(latest(f.popN(len(n.Values)))...))

	case *ast.MapLiteral:
		values := latest(f.popN(2 * len(n.Entries)))
		m := &value.Map{}
		for i := 0; i+1 < len(values); i += 2 {
			m = m.With(values[i], values[i+1])
		}
		f.push(m)

	case *ast.ListAccess:
		index := value.Latest(f.pop())
		e.give(f, listAccess(n, value.Latest(f.pop()), index), false)

	case *ast.SetOrMapAccess:
		key := value.Latest(f.pop())
		switch c := value.Latest(f.pop()).(type) {
		case *value.Set:
			f.push(value.Bool(c.Has(key)))
		case *value.Map:
			if v, ok := c.Get(key); ok {
				f.push(v)
			} else {
				f.push(value.Nothing)
			}
		default:
			e.halt(value.NewException(value.TypeException, n, "%s is not a set or map", c))
		}

	case *ast.Is:
		v := value.Latest(f.pop())
		f.push(value.Bool(types.Accepts(analysis.TypeOfNode(n.Type, e.ctx), e.typeOf(v), e.ctx)))

	case *ast.Convert:
		e.convertValue(f, n, value.Latest(f.pop()))

	case *ast.Template:
		values := latest(f.popN(len(n.Expressions())))
		var sb strings.Builder
		i := 0
		for _, part := range n.Parts {
			switch p := part.(type) {
			case *ast.Token:
				if p.Is(token.Words) {
					sb.WriteString(p.Text)
				}
			case ast.Expression:
				if i < len(values) {
					sb.WriteString(Display(values[i]))
					i++
				}
			}
		}
		f.push(value.NewText(sb.String()))

	case *ast.Changed:
		st, ok := f.pop().(*value.Stream)
		if !ok {
			e.halt(value.NewException(value.TypeException, n, "%s is not a stream", describe(n.Stream)))
			return
		}
		f.push(value.Bool(e.changed[st]))

	case *ast.Previous:
		st, ok := f.pop().(*value.Stream)
		index := value.Latest(f.pop())
		if !ok {
			e.halt(value.NewException(value.TypeException, n, "%s is not a stream", describe(n.Stream)))
			return
		}
		back, ok := index.(*value.Number)
		if !ok {
			e.halt(value.NewException(value.TypeException, n, "expected a number of values back"))
			return
		}
		if v, ok := st.Previous(int(back.Amount)); ok {
			f.push(v)
		} else {
			f.push(value.Nothing)
		}

	case *ast.Reaction:
		if mark, ok := f.marks[n]; ok && mark <= len(f.stack) {
			f.stack = f.stack[:mark]
		}
		st := e.streams[e.key(n)]
		if st == nil {
			f.push(value.Nothing)
			return
		}
		e.give(f, st, s.Raw)

	default:
		e.halt(value.NewException(value.Unimplemented, n, "%s cannot be evaluated", describe(n)))
	}
}

func latest(values []value.Value) []value.Value {
	for i, v := range values {
		values[i] = value.Latest(v)
	}
	return values
}

// listAccess indexes a list from 1. Indices outside the list give ø.
func listAccess(n *ast.ListAccess, list, index value.Value) value.Value {
	l, ok := list.(*value.List)
	if !ok {
		return value.NewException(value.TypeException, n, "%s is not a list", list)
	}
	i, ok := index.(*value.Number)
	if !ok {
		return value.NewException(value.TypeException, n, "%s is not an index", index)
	}
	if i.Amount != math.Trunc(i.Amount) || i.Amount < 1 || i.Amount > float64(len(l.Items)) {
		return value.Nothing
	}
	return l.Items[int(i.Amount)-1]
}

// key returns the stable key of n in whichever tree holds it.
func (e *Evaluator) key(n ast.Node) string {
	if t := e.ctx.Tree(n); t != nil {
		return t.Key(n)
	}
	return e.tree.Key(n)
}

// lookup resolves a name: bound values first, then definitions that are
// in scope but not yet bound, such as functions declared later in a block
// or the basis.
func (e *Evaluator) lookup(f *Evaluation, n *ast.Reference) value.Value {
	name := analysis.Normalize(n.Identifier())
	if v, ok := f.scope.Lookup(name); ok {
		return v
	}
	switch def := analysis.Resolve(name, n, e.ctx).(type) {
	case *ast.FunctionDefinition:
		return &value.Function{Definition: def, Closure: f.scope}
	case *ast.StructureDefinition:
		return &value.StructureDefinition{Definition: def, Closure: f.scope}
	case *ast.StreamDefinition:
		return &value.StreamDefinition{Definition: def}
	case *ast.Bind:
		// A reaction may refer to the name it is being bound to.
		if r, ok := def.Value.(*ast.Reaction); ok {
			if st := e.streams[e.key(r)]; st != nil {
				return st
			}
		}
		return value.NewException(value.NameException, n, "%s is not yet defined", n.Identifier())
	}
	return value.NewException(value.NameException, n, "unknown name %s", n.Identifier())
}

// this returns what . refers to at n: a reaction's latest value, or the
// structure, conversion input or receiver of the innermost evaluation
// that has one.
func (e *Evaluator) this(n *ast.This) value.Value {
	child := ast.Node(n)
	for p := e.ctx.Parent(n); p != nil; child, p = p, e.ctx.Parent(p) {
		r, ok := p.(*ast.Reaction)
		if !ok || child == ast.Node(r.Initial) {
			continue
		}
		if st := e.streams[e.key(r)]; st != nil {
			return st.Latest()
		}
		return value.Nothing
	}
	for i := len(e.frames) - 1; i >= 0; i-- {
		if t := e.frames[i].this; t != nil {
			return t
		}
	}
	return value.NewException(value.NameException, n, ". has nothing to refer to here")
}

func (e *Evaluator) check(f *Evaluation, s Step) {
	key := e.key(s.Node)
	switch s.Check {
	case Exists:
		f.push(value.Bool(e.streams[key] != nil))
	case Record:
		v := value.Latest(f.pop())
		if st := e.streams[key]; st != nil {
			st.Add(v)
			return
		}
		e.streams[key] = value.NewStream(key, nil, v)
	}
}

// typeOf returns the type of a runtime value.
func (e *Evaluator) typeOf(v value.Value) types.Type {
	switch v := v.(type) {
	case *value.Number:
		return types.NewNumber(v.Unit)
	case *value.Text:
		return types.TextType
	case *value.Boolean:
		return types.BooleanType
	case *value.None:
		return types.NoneType
	case *value.List:
		return &types.List{Item: e.itemsType(v.Items)}
	case *value.Set:
		return &types.Set{Key: e.itemsType(v.Items)}
	case *value.Map:
		return &types.Map{Key: e.itemsType(v.Keys), Value: e.itemsType(v.Values)}
	case *value.Function:
		return analysis.TypeOfDefinition(v.Definition, e.ctx)
	case *value.Structure:
		return analysis.StructureType(v.Definition, e.ctx)
	case *value.StructureDefinition:
		return &types.StructureDefinition{Definition: v.Definition}
	case *value.StreamDefinition:
		return analysis.TypeOfDefinition(v.Definition, e.ctx)
	case *value.Stream:
		return &types.Stream{Value: e.typeOf(v.Latest())}
	}
	return types.AnyType
}

func (e *Evaluator) itemsType(items []value.Value) types.Type {
	if len(items) == 0 {
		return types.AnyType
	}
	ts := make([]types.Type, len(items))
	for i, v := range items {
		ts[i] = e.typeOf(v)
	}
	return types.PossibleUnion(e.ctx, ts...)
}

// Display renders a value as text, as a template or conversion to text
// does: text without quotes and other values as written.
func Display(v value.Value) string {
	if t, ok := v.(*value.Text); ok {
		return t.Value
	}
	return v.String()
}
