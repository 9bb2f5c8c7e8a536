// Package store persists the raw text of project sources. Stores keep every
// distinct text a source has had, so earlier versions can be listed and
// restored.
package store

import (
	"fmt"
	"time"
)

// ProjectInfo describes a stored project.
type ProjectInfo struct {
	ID      string
	Name    string
	Updated time.Time
}

// Store is the interface for source persistence.
type Store interface {
	// Get retrieves the latest text of a source. ok is false if the source
	// does not exist.
	Get(project, name string) (text string, ok bool, err error)
	// Put stores the text of a source. Storing the text it already has is a
	// no-op.
	Put(project, name, text string) error
	// Delete removes a source and its history.
	Delete(project, name string) error
	// Sources returns the names of a project's sources in sorted order.
	Sources(project string) ([]string, error)
	// SaveProject records a project's name and marks it updated.
	SaveProject(info ProjectInfo) error
	// Projects returns every stored project, most recently updated first.
	Projects() ([]ProjectInfo, error)
	// Close releases resources.
	Close() error
}

// VersionEntry represents a single version of a persisted source.
type VersionEntry struct {
	Version int
	Value   string
	Ts      string
}

// HistoryStore extends Store with version history queries.
type HistoryStore interface {
	Store
	// GetHistory returns a source's versions, newest first. A limit of zero
	// or less returns every version.
	GetHistory(project, name string, limit int) ([]VersionEntry, error)
}

// Open opens a store with the named driver: "memory", "sqlite" or "bolt".
func Open(driver, path string) (HistoryStore, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(path)
	case "bolt":
		return NewBolt(path)
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func limitEntries(entries []VersionEntry, limit int) []VersionEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
