package wordplay

import (
	"log/slog"

	"nickandperla.net/wordplay/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime) error

// WithStore sets the store projects are saved to and loaded from.
func WithStore(s store.HistoryStore) Option {
	return func(r *Runtime) error {
		r.store = s
		return nil
	}
}

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return WithDriver("sqlite", path)
}

// WithBoltStore configures bbolt persistence at the given path.
func WithBoltStore(path string) Option {
	return WithDriver("bolt", path)
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) error {
		r.store = store.NewMemory()
		return nil
	}
}

// WithDriver opens a store by driver name: memory, sqlite or bolt.
func WithDriver(driver, path string) Option {
	return func(r *Runtime) error {
		s, err := store.Open(driver, path)
		if err != nil {
			return err
		}
		r.store = s
		return nil
	}
}

// WithProject loads the project with the given id from the store instead
// of starting an empty one.
func WithProject(id string) Option {
	return func(r *Runtime) error {
		r.projectID = id
		return nil
	}
}

// WithName names a new project.
func WithName(name string) Option {
	return func(r *Runtime) error {
		r.name = name
		return nil
	}
}

// WithLogger sets the logger used by the project and its evaluators.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) error {
		r.logger = l
		return nil
	}
}

// WithStepLimit sets how many steps a run may take.
func WithStepLimit(n int) Option {
	return func(r *Runtime) error {
		if n > 0 {
			r.stepLimit = n
		}
		return nil
	}
}

// WithDepthLimit sets how deeply evaluations may nest.
func WithDepthLimit(n int) Option {
	return func(r *Runtime) error {
		if n > 0 {
			r.depthLimit = n
		}
		return nil
	}
}

// WithHistoryLimit sets how many steps of a run can be stepped back over.
// Zero disables stepping back and a negative limit keeps every step.
func WithHistoryLimit(n int) Option {
	return func(r *Runtime) error {
		r.historyLimit = n
		return nil
	}
}
