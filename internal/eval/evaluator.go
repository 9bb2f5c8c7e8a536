// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"nickandperla.net/wordplay/internal/analysis"
	"nickandperla.net/wordplay/internal/ast"
	"nickandperla.net/wordplay/internal/basis"
	"nickandperla.net/wordplay/internal/types"
	"nickandperla.net/wordplay/internal/unit"
	"nickandperla.net/wordplay/internal/value"
)

// Default limits.
const (
	DefaultStepLimit  = 1_000_000
	DefaultDepthLimit = 256
)

// State is where an evaluator is in evaluating its program.
type State int

const (
	// Ready means the program has not taken a step since it was started.
	Ready State = iota
	// Stepping means the program has taken steps and is not done.
	Stepping
	// Halted means an exception stopped the program.
	Halted
	// Completed means the program finished with a value.
	Completed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	case Halted:
		return "halted"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Evaluation is one frame of evaluation: the steps of a program, function
// body, structure or conversion, with its own value stack and scope.
type Evaluation struct {
	node  ast.Node
	steps []Step
	pc    int
	stack []value.Value
	scope *value.Scope
	// this is the structure, conversion input or receiver . refers to.
	this value.Value
	// done receives the frame's value when its steps are exhausted.
	done func(value.Value)
	// marks records stack heights at a reaction's Start.
	marks map[ast.Node]int
}

// Node returns what the frame evaluates.
func (f *Evaluation) Node() ast.Node { return f.node }

// PC returns the index of the frame's next step.
func (f *Evaluation) PC() int { return f.pc }

func (f *Evaluation) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *Evaluation) pop() value.Value {
	if len(f.stack) == 0 {
		return value.Nothing
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

func (f *Evaluation) popN(n int) []value.Value {
	if n > len(f.stack) {
		n = len(f.stack)
	}
	out := append([]value.Value(nil), f.stack[len(f.stack)-n:]...)
	f.stack = f.stack[:len(f.stack)-n]
	return out
}

func (f *Evaluation) top() value.Value {
	if len(f.stack) == 0 {
		return value.Nothing
	}
	return f.stack[len(f.stack)-1]
}

// Evaluator evaluates a program step by step. Streams and reactions keep
// their values across runs: when a stream the program read receives a
// value, the program runs again from the start.
//
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	program  *ast.Program
	tree     *ast.Tree
	ctx      *types.Context
	basis    *basis.Basis
	borrower types.Borrower
	logger   *slog.Logger

	stepLimit    int
	depthLimit   int
	historyLimit int

	state     State
	frames    []*Evaluation
	result    value.Value
	exception *value.Exception
	steps     int
	runs      int
	history   *history

	streams  map[string]*value.Stream
	timers   map[*value.Stream]*timer
	read     map[*value.Stream]bool
	changed  map[*value.Stream]bool
	loaded   map[*ast.Tree]bool
	clock    time.Duration
	compiled map[ast.Node][]Step
	convs    []types.Conversion
	natives  *value.Scope
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger. Halts and re-runs are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithStepLimit sets how many steps a run may take before it halts with
// a StepLimit exception.
func WithStepLimit(n int) Option {
	return func(e *Evaluator) { e.stepLimit = n }
}

// WithDepthLimit sets how deeply evaluations may nest before the program
// halts with a CallDepth exception.
func WithDepthLimit(n int) Option {
	return func(e *Evaluator) { e.depthLimit = n }
}

// WithHistoryLimit sets how many steps StepBack can undo. Zero disables
// stepping back; a negative limit keeps every step.
func WithHistoryLimit(n int) Option {
	return func(e *Evaluator) { e.historyLimit = n }
}

// WithBasis sets the basis; the default basis is used otherwise.
func WithBasis(b *basis.Basis) Option {
	return func(e *Evaluator) { e.basis = b }
}

// WithBorrower sets where the program's borrows are resolved.
func WithBorrower(b types.Borrower) Option {
	return func(e *Evaluator) { e.borrower = b }
}

// New creates an evaluator for program, ready to step.
func New(program *ast.Program, opts ...Option) *Evaluator {
	e := &Evaluator{
		stepLimit:    DefaultStepLimit,
		depthLimit:   DefaultDepthLimit,
		historyLimit: DefaultHistoryLimit,
		streams:      map[string]*value.Stream{},
		timers:       map[*value.Stream]*timer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.history = newHistory(e.historyLimit)
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.basis == nil {
		e.basis = basis.Default()
	}
	e.load(program)
	e.Start()
	return e
}

// load sets the program and resets everything derived from its tree.
func (e *Evaluator) load(program *ast.Program) {
	e.program = program
	e.tree = ast.NewTree(program)
	opts := []types.Option{types.WithBasis(e.basis)}
	if e.borrower != nil {
		opts = append(opts, types.WithBorrower(e.borrower))
	}
	e.ctx = analysis.NewContext(e.tree, opts...)
	e.compiled = map[ast.Node][]Step{}
	e.convs = analysis.Conversions(e.ctx)
	e.natives = value.NewScope(nil)
}

// Edit replaces the program with an edited version and starts it again.
// Streams and reactions whose nodes are unchanged keep their values.
func (e *Evaluator) Edit(program *ast.Program) {
	e.load(program)
	e.Start()
}

// Program returns the program being evaluated.
func (e *Evaluator) Program() *ast.Program { return e.program }

// Context returns the analysis context of the program.
func (e *Evaluator) Context() *types.Context { return e.ctx }

// Start prepares a new run of the program from its first step.
func (e *Evaluator) Start() {
	e.runs++
	e.steps = 0
	e.history.reset()
	e.result = nil
	e.exception = nil
	e.read = map[*value.Stream]bool{}
	e.loaded = map[*ast.Tree]bool{e.tree: true}
	e.state = Ready
	global := value.NewScope(nil)
	e.frames = []*Evaluation{{
		node:  e.program,
		steps: e.compile(e.program),
		scope: global,
		done:  func(v value.Value) { e.result = v },
	}}
}

func (e *Evaluator) compile(n ast.Node) []Step {
	if steps, ok := e.compiled[n]; ok {
		return steps
	}
	steps := Compile(n)
	e.compiled[n] = steps
	return steps
}

// State returns the evaluator's state.
func (e *Evaluator) State() State { return e.state }

// Steps returns the number of steps taken in the current run.
func (e *Evaluator) Steps() int { return e.steps }

// Runs returns the number of times the program has been started.
func (e *Evaluator) Runs() int { return e.runs }

// Frames returns the current evaluations, outermost first.
func (e *Evaluator) Frames() []*Evaluation { return append([]*Evaluation(nil), e.frames...) }

// CurrentValue returns the program's value once it has completed, the
// exception that halted it, or nil.
func (e *Evaluator) CurrentValue() value.Value {
	if e.exception != nil {
		return e.exception
	}
	return e.result
}

// Exception returns the exception that halted the program, or nil.
func (e *Evaluator) Exception() *value.Exception { return e.exception }

// Done reports whether the current run has completed or halted.
func (e *Evaluator) Done() bool { return e.state == Halted || e.state == Completed }

// Step takes one step. It reports false if the run was already done.
func (e *Evaluator) Step() bool {
	if e.Done() {
		return false
	}
	if e.historyLimit != 0 {
		e.history.push(e.snapshot())
	}
	e.state = Stepping
	f := e.frames[len(e.frames)-1]
	if f.pc < len(f.steps) {
		s := f.steps[f.pc]
		f.pc++
		e.steps++
		if e.steps > e.stepLimit {
			e.halt(value.NewException(value.StepLimit, s.Node, "more than %d steps", e.stepLimit))
			return true
		}
		e.run(f, s)
	}
	e.unwind()
	return true
}

// unwind finishes every frame whose steps are exhausted, handing each
// frame's value to whoever started it.
func (e *Evaluator) unwind() {
	for !e.Done() && len(e.frames) > 0 {
		f := e.frames[len(e.frames)-1]
		if f.pc < len(f.steps) {
			return
		}
		e.frames = e.frames[:len(e.frames)-1]
		f.done(f.top())
	}
	if !e.Done() && len(e.frames) == 0 {
		e.state = Completed
	}
}

// StepBack undoes the last step. It reports false if no step has been
// taken in this run, or if the step is older than the history limit.
func (e *Evaluator) StepBack() bool {
	s, ok := e.history.pop()
	if !ok {
		return false
	}
	e.restore(s)
	return true
}

// Undoable returns how many steps StepBack can undo.
func (e *Evaluator) Undoable() int { return e.history.len() }

// RunToCompletion steps until the run completes or halts and returns the
// program's value.
func (e *Evaluator) RunToCompletion() value.Value {
	for e.Step() {
	}
	return e.CurrentValue()
}

// Run starts the program again and runs it to completion.
func (e *Evaluator) Run(ctx context.Context) value.Value {
	e.Start()
	for !e.Done() {
		if ctx.Err() != nil {
			e.halt(value.NewException(value.Canceled, e.program, "%v", ctx.Err()))
			break
		}
		e.Step()
	}
	return e.CurrentValue()
}

func (e *Evaluator) halt(ex *value.Exception) {
	e.exception = ex
	e.state = Halted
	e.logger.Debug("halted", "kind", ex.Kind.String(), "message", ex.Message, "steps", e.steps)
}

// Streams returns every stream the evaluator holds, ordered by key.
func (e *Evaluator) Streams() []*value.Stream {
	out := make([]*value.Stream, 0, len(e.streams))
	for _, s := range e.streams {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Update runs the program again because the given streams received new
// values. The program only runs if it read one of them in its last run;
// Update reports whether it did.
func (e *Evaluator) Update(changed ...*value.Stream) bool {
	relevant := false
	for _, s := range changed {
		if e.read[s] {
			relevant = true
			break
		}
	}
	if !relevant {
		e.logger.Debug("skipping run", "changed", len(changed))
		return false
	}
	e.changed = map[*value.Stream]bool{}
	for _, s := range changed {
		e.changed[s] = true
	}
	e.logger.Debug("running", "changed", len(changed), "run", e.runs+1)
	e.Start()
	e.RunToCompletion()
	e.changed = nil
	return true
}

// Tick advances time and updates the program. Each Time stream whose
// frequency has passed since its last value receives the time so far.
func (e *Evaluator) Tick(elapsed time.Duration) bool {
	e.clock += elapsed
	var changed []*value.Stream
	for _, s := range e.Streams() {
		if !s.Is(basis.TimeName) {
			continue
		}
		if t := e.timers[s]; t != nil {
			if e.clock-t.last < t.frequency {
				continue
			}
			t.last = e.clock
		}
		s.Add(value.NewNumber(float64(e.clock.Milliseconds()), unit.Of("ms")))
		changed = append(changed, s)
	}
	return e.Update(changed...)
}

// Press adds a key to every Key stream and updates the program.
func (e *Evaluator) Press(key string) bool {
	var changed []*value.Stream
	for _, s := range e.Streams() {
		if s.Is(basis.KeyName) {
			s.Add(value.NewText(key))
			changed = append(changed, s)
		}
	}
	return e.Update(changed...)
}

// snapshot is the state needed to undo one step.
type snapshot struct {
	state     State
	steps     int
	result    value.Value
	exception *value.Exception
	frames    []frameState
	scopes    map[*value.Scope]value.Bindings
	streams   map[string]int
	read      map[*value.Stream]bool
	loaded    map[*ast.Tree]bool
}

type frameState struct {
	frame *Evaluation
	pc    int
	stack []value.Value
	scope *value.Scope
	marks map[ast.Node]int
}

func (e *Evaluator) snapshot() snapshot {
	s := snapshot{
		state:     e.state,
		steps:     e.steps,
		result:    e.result,
		exception: e.exception,
		scopes:    map[*value.Scope]value.Bindings{},
		streams:   make(map[string]int, len(e.streams)),
		read:      make(map[*value.Stream]bool, len(e.read)),
		loaded:    make(map[*ast.Tree]bool, len(e.loaded)),
	}
	for _, f := range e.frames {
		marks := make(map[ast.Node]int, len(f.marks))
		for k, v := range f.marks {
			marks[k] = v
		}
		s.frames = append(s.frames, frameState{
			frame: f,
			pc:    f.pc,
			stack: append([]value.Value(nil), f.stack...),
			scope: f.scope,
			marks: marks,
		})
		for sc := f.scope; sc != nil; sc = sc.Parent() {
			s.scopes[sc] = sc.Snapshot()
		}
	}
	for k, st := range e.streams {
		s.streams[k] = st.Len()
	}
	for k, v := range e.read {
		s.read[k] = v
	}
	for k, v := range e.loaded {
		s.loaded[k] = v
	}
	return s
}

func (e *Evaluator) restore(s snapshot) {
	e.state = s.state
	e.steps = s.steps
	e.result = s.result
	e.exception = s.exception
	e.frames = e.frames[:0]
	for _, fs := range s.frames {
		fs.frame.pc = fs.pc
		fs.frame.stack = fs.stack
		fs.frame.scope = fs.scope
		fs.frame.marks = fs.marks
		e.frames = append(e.frames, fs.frame)
	}
	for sc, b := range s.scopes {
		sc.Restore(b)
	}
	for k, st := range e.streams {
		n, ok := s.streams[k]
		if !ok {
			delete(e.streams, k)
			delete(e.timers, st)
			continue
		}
		st.Truncate(n)
	}
	e.read = s.read
	e.loaded = s.loaded
}
