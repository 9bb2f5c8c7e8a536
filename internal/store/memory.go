package store

import (
	"sort"
	"sync"
	"time"
)

type memoryKey struct{ project, name string }

// Memory is an in-memory store for testing.
type Memory struct {
	mu       sync.RWMutex
	versions map[memoryKey][]VersionEntry
	projects map[string]ProjectInfo
	metadata map[string]string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		versions: make(map[memoryKey][]VersionEntry),
		projects: make(map[string]ProjectInfo),
		metadata: make(map[string]string),
	}
}

// Get retrieves the latest text of a source.
func (m *Memory) Get(project, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.versions[memoryKey{project, name}]
	if len(vs) == 0 {
		return "", false, nil
	}
	return vs[len(vs)-1].Value, true, nil
}

// Put stores the text of a source as a new version.
func (m *Memory) Put(project, name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{project, name}
	vs := m.versions[k]
	if len(vs) > 0 && vs[len(vs)-1].Value == text {
		return nil
	}
	m.versions[k] = append(vs, VersionEntry{Version: len(vs) + 1, Value: text, Ts: now()})
	return nil
}

// Delete removes a source and all its versions.
func (m *Memory) Delete(project, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.versions, memoryKey{project, name})
	return nil
}

// Sources returns the names of a project's sources.
func (m *Memory) Sources(project string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for k := range m.versions {
		if k.project == project {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// SaveProject records a project.
func (m *Memory) SaveProject(info ProjectInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info.Updated.IsZero() {
		info.Updated = time.Now().UTC()
	}
	m.projects[info.ID] = info
	return nil
}

// Projects returns every project, most recently updated first.
func (m *Memory) Projects() ([]ProjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProjectInfo, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

// GetHistory returns a source's versions, newest first.
func (m *Memory) GetHistory(project, name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.versions[memoryKey{project, name}]
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]VersionEntry, len(vs))
	for i, v := range vs {
		out[len(vs)-1-i] = v
	}
	return limitEntries(out, limit), nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}

func sortProjects(ps []ProjectInfo) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].Updated.Equal(ps[j].Updated) {
			return ps[i].Updated.After(ps[j].Updated)
		}
		return ps[i].ID < ps[j].ID
	})
}
