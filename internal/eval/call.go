package eval

import (
	"time"

	"nickandperla.net/wordplay/internal/analysis"
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/basis"
	"nickandperla.net/wordplay/internal/types"
	"nickandperla.net/wordplay/internal/unit"
	"nickandperla.net/wordplay/internal/value"
)

// argument is one input given to an evaluation, named if given as
// name: value.
type argument struct {
	name  string
	value value.Value
}

func (e *Evaluator) startEvaluation(f *Evaluation, s Step) {
	n := s.Node.(*ast.Evaluate)
	values := latest(f.popN(len(n.Inputs)))
	callee := value.Latest(f.pop())
	args := make([]argument, len(values))
	for i, v := range values {
		args[i].value = v
		if b, ok := n.Inputs[i].(*ast.Bind); ok && len(b.Names()) > 0 {
			args[i].name = analysis.Normalize(b.Names()[0])
		}
	}
	done := func(v value.Value) { e.give(f, v, s.Raw) }

	switch c := callee.(type) {
	case *value.Function:
		e.call(n, c, args, done)
	case *value.StructureDefinition:
		e.construct(n, c, args, done)
	case *value.StreamDefinition:
		done(e.stream(n, c.Definition, args))
	default:
		e.halt(value.NewException(value.FunctionException, n, "%s is not a function", callee))
	}
}

// match assigns arguments to declared inputs: named arguments by name, the
// rest in order. Inputs nothing was given for are nil.
func (e *Evaluator) match(at ast.Node, declared []*ast.Bind, args []argument) ([]value.Value, bool) {
	out := make([]value.Value, len(declared))
	given := make([]bool, len(declared))
	next := 0
	for _, a := range args {
		i := -1
		if a.name != "" {
			for j, d := range declared {
				for _, name := range d.Names() {
					if analysis.Normalize(name) == a.name {
						i = j
					}
				}
			}
		} else {
			for next < len(declared) && given[next] {
				next++
			}
			if next < len(declared) {
				i = next
			}
		}
		if i < 0 || given[i] {
			e.halt(value.NewException(value.FunctionException, at, "unexpected input %s", a.value))
			return nil, false
		}
		out[i], given[i] = a.value, true
	}
	return out, true
}

// bindInputs binds matched inputs in scope and returns the steps that
// evaluate and bind the defaults of those not given.
func (e *Evaluator) bindInputs(at ast.Node, declared []*ast.Bind, values []value.Value, scope *value.Scope) ([]Step, bool) {
	var defaults []Step
	for i, d := range declared {
		if values[i] != nil {
			for _, name := range d.Names() {
				scope.Bind(analysis.Normalize(name), values[i])
			}
			continue
		}
		if d.Value == nil {
			e.halt(value.NewException(value.FunctionException, at, "missing input %s", inputName(d)))
			return nil, false
		}
		defaults = append(defaults, e.compile(d)...)
	}
	return defaults, true
}

func inputName(b *ast.Bind) string {
	if names := b.Names(); len(names) > 0 {
		return names[0]
	}
	return "_"
}

// call evaluates a function. Native functions give their value at once;
// others start a new evaluation of their body.
func (e *Evaluator) call(at ast.Node, fn *value.Function, args []argument, done func(value.Value)) {
	def := fn.Definition
	values, ok := e.match(at, def.Inputs, args)
	if !ok {
		return
	}
	switch body := def.Body.(type) {
	case *ast.NativeExpression:
		if iterates(body.Name) {
			e.iterate(at, body.Name, fn.Receiver, compact(values), done)
			return
		}
		impl := native(body.Name)
		if impl == nil {
			e.halt(value.NewException(value.Unimplemented, at, "%s is not implemented", body.Name))
			return
		}
		// Natives check their own inputs, since unary operators share a
		// native with their binary forms.
		done(impl(at, fn.Receiver, compact(values)))
		return
	case nil, *ast.Placeholder:
		e.halt(value.NewException(value.Unimplemented, at, "%s has no body", fn))
		return
	}

	scope := value.NewScope(fn.Closure)
	if fn.Receiver != nil {
		if _, ok := fn.Receiver.(*value.Structure); !ok {
			scope.Fallback = e.members(fn.Receiver)
		}
	}
	defaults, ok := e.bindInputs(at, def.Inputs, values, scope)
	if !ok {
		return
	}
	e.push(at, &Evaluation{
		node:  def,
		steps: concat(defaults, e.compile(def.Body)),
		scope: scope,
		this:  fn.Receiver,
		done:  done,
	})
}

// iterating natives call a function on each item of a list.
var iterating = map[string]bool{
	"List.translate": true,
	"List.filter":    true,
	"List.combine":   true,
	"List.all":       true,
}

func iterates(name string) bool { return iterating[name] }

// iterate calls the function given to an iterating native on one item at
// a time. Each call starts only after the previous one has finished, so
// evaluations never nest deeper than one call however long the list is.
// The partial results are passed along rather than shared, so stepping
// back over a call does not corrupt them.
func (e *Evaluator) iterate(at ast.Node, name string, receiver value.Value, args []value.Value, done func(value.Value)) {
	l, ok := receiver.(*value.List)
	if !ok {
		done(typeError(at, "%s is not a list", receiver))
		return
	}
	var acc value.Value
	if name == "List.combine" {
		if ex := arity(at, args, 2); ex != nil {
			done(ex)
			return
		}
		acc, args = args[0], args[1:]
	} else if ex := arity(at, args, 1); ex != nil {
		done(ex)
		return
	}
	fn, ok := args[0].(*value.Function)
	if !ok {
		done(typeError(at, "%s is not a function", args[0]))
		return
	}

	items := l.Items
	var next func(i int, out []value.Value, acc value.Value)
	next = func(i int, out []value.Value, acc value.Value) {
		if i == len(items) {
			switch name {
			case "List.combine":
				done(acc)
			case "List.all":
				done(value.True)
			default:
				done(&value.List{Items: out})
			}
			return
		}
		item := items[i]
		given := []argument{{value: item}}
		if name == "List.combine" {
			given = []argument{{value: acc}, {value: item}}
		}
		e.call(at, fn, given, func(r value.Value) {
			r = value.Latest(r)
			if _, ok := r.(*value.Exception); ok {
				done(r)
				return
			}
			out, acc := out, acc
			switch name {
			case "List.translate":
				out = append(out[:len(out):len(out)], r)
			case "List.combine":
				acc = r
			case "List.filter", "List.all":
				b, ok := r.(*value.Boolean)
				if !ok {
					done(typeError(at, "%s is not a truth value", r))
					return
				}
				if name == "List.all" && !b.Value {
					done(value.False)
					return
				}
				if name == "List.filter" && b.Value {
					out = append(out[:len(out):len(out)], item)
				}
			}
			next(i+1, out, acc)
		})
	}
	next(0, nil, acc)
}

func compact(values []value.Value) []value.Value {
	out := values[:0:0]
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// construct creates a structure: its inputs are bound in a new scope and
// its members evaluated there.
func (e *Evaluator) construct(at ast.Node, sd *value.StructureDefinition, args []argument, done func(value.Value)) {
	def := sd.Definition
	values, ok := e.match(at, def.Inputs, args)
	if !ok {
		return
	}
	scope := value.NewScope(sd.Closure)
	defaults, ok := e.bindInputs(at, def.Inputs, values, scope)
	if !ok {
		return
	}
	steps := defaults
	if def.Members != nil {
		for _, s := range def.Members.Statements {
			steps = append(steps, e.compile(s)...)
		}
	}
	instance := &value.Structure{Definition: def, Scope: scope}
	e.push(at, &Evaluation{
		node:  def,
		steps: steps,
		scope: scope,
		this:  instance,
		done:  func(value.Value) { done(instance) },
	})
}

// stream returns the stream created by the evaluation at n, creating it
// the first time. Inputs are only read when the stream is created.
func (e *Evaluator) stream(n ast.Node, def *ast.StreamDefinition, args []argument) *value.Stream {
	key := e.key(n)
	if s, ok := e.streams[key]; ok {
		return s
	}
	var initial value.Value = value.Nothing
	for _, name := range def.Names() {
		switch name {
		case basis.TimeName:
			initial = value.NewNumber(float64(e.clock.Milliseconds()), unit.Of("ms"))
		case basis.KeyName:
			initial = value.NewText("")
		}
	}
	s := value.NewStream(key, def, initial)
	e.streams[key] = s
	if s.Is(basis.TimeName) {
		e.timers[s] = &timer{frequency: frequency(args), last: e.clock}
	}
	return s
}

// timer tracks how often a Time stream receives values.
type timer struct {
	frequency time.Duration
	last      time.Duration
}

// DefaultFrequency is how often a Time stream ticks when not told.
const DefaultFrequency = 33 * time.Millisecond

// frequency reads a Time stream's frequency input, given by name or as
// its only input.
func frequency(args []argument) time.Duration {
	for _, a := range args {
		if a.name != "" && a.name != "frequency" {
			continue
		}
		n, ok := a.value.(*value.Number)
		if !ok {
			break
		}
		var per time.Duration
		switch n.Unit.String() {
		case "", "ms":
			per = time.Millisecond
		case "s":
			per = time.Second
		case "min":
			per = time.Minute
		case "h":
			per = time.Hour
		default:
			return DefaultFrequency
		}
		return time.Duration(n.Amount * float64(per))
	}
	return DefaultFrequency
}

// push starts a nested evaluation, or halts if evaluations are nested too
// deeply.
func (e *Evaluator) push(at ast.Node, f *Evaluation) {
	if len(e.frames) >= e.depthLimit {
		e.halt(value.NewException(value.CallDepth, at, "evaluations nested more than %d deep", e.depthLimit))
		return
	}
	e.frames = append(e.frames, f)
}

// structureOf returns the definition of the structure a value is an
// instance of. Primitive values are instances of basis structures.
func (e *Evaluator) structureOf(v value.Value) *ast.StructureDefinition {
	name := ""
	switch v := v.(type) {
	case *value.Structure:
		return v.Definition
	case *value.Number:
		name = basis.NumberName
	case *value.Text:
		name = basis.TextName
	case *value.Boolean:
		name = basis.BooleanName
	case *value.None:
		name = basis.NoneName
	case *value.List:
		name = basis.ListName
	case *value.Set:
		name = basis.SetName
	case *value.Map:
		name = basis.MapName
	default:
		return nil
	}
	return e.basis.Structure(name)
}

// members resolves names to the member functions of a receiver, so that
// a method body can call its siblings without naming the receiver.
func (e *Evaluator) members(receiver value.Value) func(string) (value.Value, bool) {
	return func(name string) (value.Value, bool) {
		def := e.structureOf(receiver)
		if def == nil {
			return nil, false
		}
		fn, ok := analysis.Member(def, name, -1).(*ast.FunctionDefinition)
		if !ok {
			return nil, false
		}
		return &value.Function{Definition: fn, Closure: e.natives, Receiver: receiver}, true
	}
}

// property returns the named member of a value.
func (e *Evaluator) property(receiver value.Value, n *ast.PropertyReference) value.Value {
	name := analysis.Normalize(n.Property())
	if s, ok := receiver.(*value.Structure); ok {
		if v, ok := s.Scope.Own(name); ok {
			if fn, ok := v.(*value.Function); ok {
				return &value.Function{Definition: fn.Definition, Closure: fn.Closure, Receiver: s}
			}
			return v
		}
	}
	if v, ok := e.members(receiver)(name); ok {
		if s, ok := receiver.(*value.Structure); ok {
			fn := v.(*value.Function)
			fn.Closure = s.Scope
		}
		return v
	}
	return value.NewException(value.NameException, n, "%s has no property %s", receiver, n.Property())
}

// operate applies an operator, which is a member function of the left
// operand's structure.
func (e *Evaluator) operate(f *Evaluation, n ast.Node, left value.Value, op string, args []value.Value) {
	def := e.structureOf(left)
	if def == nil {
		e.halt(value.NewException(value.TypeException, n, "%s has no operator %s", left, op))
		return
	}
	fn, ok := analysis.Member(def, op, len(args)).(*ast.FunctionDefinition)
	if !ok {
		e.halt(value.NewException(value.FunctionException, n, "%s has no operator %s", left, op))
		return
	}
	closure := e.natives
	if s, ok := left.(*value.Structure); ok {
		closure = s.Scope
	}
	given := make([]argument, len(args))
	for i, a := range args {
		given[i].value = a
	}
	e.call(n, &value.Function{Definition: fn, Closure: closure, Receiver: left}, given, func(v value.Value) { e.give(f, v, false) })
}

// convertValue converts a value to the type of n along the shortest path
// of conversions between their types.
func (e *Evaluator) convertValue(f *Evaluation, n *ast.Convert, v value.Value) {
	to := analysis.TypeOfNode(n.Type, e.ctx)
	path, ok := types.ConversionPath(e.ctx, e.typeOf(v), to, e.convs)
	if !ok {
		e.halt(value.NewException(value.ConversionException, n, "no conversion from %s to %s", e.typeOf(v), to))
		return
	}
	e.convert(n, v, path, func(r value.Value) { e.give(f, r, false) })
}

func (e *Evaluator) convert(at ast.Node, v value.Value, path []types.Conversion, done func(value.Value)) {
	for i, c := range path {
		switch body := c.Definition.Body.(type) {
		case *ast.NativeExpression:
			impl := conversion(body.Name)
			if impl == nil {
				e.halt(value.NewException(value.Unimplemented, at, "conversion %s is not implemented", body.Name))
				return
			}
			v = impl(at, v)
			if _, ok := v.(*value.Exception); ok {
				done(v)
				return
			}
		case nil, *ast.Placeholder:
			e.halt(value.NewException(value.Unimplemented, at, "conversion %s has no body", basis.ConversionName(c.Definition)))
			return
		default:
			rest := path[i+1:]
			e.push(at, &Evaluation{
				node:  c.Definition,
				steps: e.compile(body),
				scope: value.NewScope(e.frames[0].scope),
				this:  v,
				done:  func(r value.Value) { e.convert(at, r, rest, done) },
			})
			return
		}
	}
	done(v)
}

// loadBorrows evaluates the sources a program borrows from and binds
// what they share in the program's scope.
func (e *Evaluator) loadBorrows(program *ast.Program) {
	if e.borrower == nil || len(e.frames) == 0 {
		return
	}
	target := e.frames[len(e.frames)-1].scope
	for _, b := range program.Borrows {
		tree, ok := e.borrower.Source(b.SourceName())
		if !ok || e.loaded[tree] {
			continue
		}
		e.loaded[tree] = true
		e.ctx.AddTree(tree)
		source, ok := tree.Root.(*ast.Program)
		if !ok {
			continue
		}
		scope := value.NewScope(nil)
		wanted := analysis.Normalize(b.DefinitionName())
		e.push(b, &Evaluation{
			node:  source,
			steps: e.compile(source),
			scope: scope,
			done: func(value.Value) {
				for _, d := range analysis.Shared(tree) {
					for _, name := range d.Names() {
						name = analysis.Normalize(name)
						if wanted != "" && name != wanted {
							continue
						}
						if v, ok := scope.Own(name); ok {
							target.Bind(name, v)
						}
					}
				}
			},
		})
	}
}
