package value

import (
	"nickandperla.net/wordplay/internal/ast"
)

// Stream is a sequence of values that grows over time. Streams are
// identified by the stable key of the node that created them, so a stream
// survives re-evaluation and re-parsing of its program.
type Stream struct {
	Key string
	// Definition is the stream definition the stream was created from, or
	// nil for a reaction's stream.
	Definition *ast.StreamDefinition
	values     []Value
}

// NewStream returns a stream holding initial.
func NewStream(key string, def *ast.StreamDefinition, initial Value) *Stream {
	return &Stream{Key: key, Definition: def, values: []Value{initial}}
}

// Is reports whether the stream was created from a stream definition with
// the given name.
func (s *Stream) Is(name string) bool {
	if s.Definition == nil {
		return false
	}
	for _, n := range s.Definition.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends a value.
func (s *Stream) Add(v Value) { s.values = append(s.values, v) }

// Latest returns the most recent value.
func (s *Stream) Latest() Value {
	if len(s.values) == 0 {
		return Nothing
	}
	return s.values[len(s.values)-1]
}

// Previous returns the value back values before the latest; Previous(0)
// is the latest. ok is false if the stream is not that long.
func (s *Stream) Previous(back int) (Value, bool) {
	i := len(s.values) - 1 - back
	if back < 0 || i < 0 {
		return nil, false
	}
	return s.values[i], true
}

// Len returns the number of values the stream has received.
func (s *Stream) Len() int { return len(s.values) }

// Truncate forgets every value after the first n.
func (s *Stream) Truncate(n int) {
	if n >= 0 && n < len(s.values) {
		s.values = s.values[:n]
	}
}

// Values returns a copy of the stream's values, oldest first.
func (s *Stream) Values() []Value { return append([]Value(nil), s.values...) }

func (s *Stream) String() string { return "…" + s.Latest().String() }

func (*Stream) value() {}

// Latest returns the latest value of v if it is a stream, or v.
func Latest(v Value) Value {
	if s, ok := v.(*Stream); ok {
		return s.Latest()
	}
	return v
}
