package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func backends(t *testing.T) map[string]HistoryStore {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := NewSQLite(filepath.Join(dir, "wordplay.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	b, err := NewBolt(filepath.Join(dir, "wordplay.bolt"))
	if err != nil {
		t.Fatalf("NewBolt: %v", err)
	}
	stores := map[string]HistoryStore{"memory": NewMemory(), "sqlite": sqlite, "bolt": b}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestPutGetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put("p", "main", "1 + 2"); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, ok, err := s.Get("p", "main")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !ok || got != "1 + 2" {
				t.Errorf("expected '1 + 2', got %q (found %v)", got, ok)
			}

			if _, ok, _ := s.Get("other", "main"); ok {
				t.Error("sources of another project should not be visible")
			}

			if err := s.Delete("p", "main"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, ok, _ := s.Get("p", "main"); ok {
				t.Error("expected source to be gone after delete")
			}
		})
	}
}

func TestVersioning(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.Put("p", "X", "first")
			s.Put("p", "X", "second")
			// Same value is a no-op
			s.Put("p", "X", "second")

			entries, err := s.GetHistory("p", "X", 0)
			if err != nil {
				t.Fatalf("GetHistory: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if entries[0].Version != 2 || entries[0].Value != "second" {
				t.Errorf("entry[0]: expected v2 'second', got v%d '%s'", entries[0].Version, entries[0].Value)
			}
			if entries[1].Version != 1 || entries[1].Value != "first" {
				t.Errorf("entry[1]: expected v1 'first', got v%d '%s'", entries[1].Version, entries[1].Value)
			}
			if entries[0].Ts == "" {
				t.Error("expected non-empty timestamp")
			}

			entries, _ = s.GetHistory("p", "X", 1)
			if len(entries) != 1 || entries[0].Version != 2 {
				t.Fatalf("expected only v2 with limit, got %v", entries)
			}

			entries, err = s.GetHistory("p", "nope", 0)
			if err != nil {
				t.Fatalf("GetHistory nonexistent failed: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("expected no entries for nonexistent, got %v", entries)
			}

			s.Delete("p", "X")
			entries, _ = s.GetHistory("p", "X", 0)
			if len(entries) != 0 {
				t.Errorf("expected 0 after delete, got %d", len(entries))
			}
		})
	}
}

func TestSourcesAndProjects(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.Put("p", "b", "2")
			s.Put("p", "a", "1")
			s.Put("q", "c", "3")
			names, err := s.Sources("p")
			if err != nil {
				t.Fatalf("Sources: %v", err)
			}
			if len(names) != 2 || names[0] != "a" || names[1] != "b" {
				t.Errorf("expected [a b], got %v", names)
			}

			older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			if err := s.SaveProject(ProjectInfo{ID: "p", Name: "Old", Updated: older}); err != nil {
				t.Fatalf("SaveProject: %v", err)
			}
			if err := s.SaveProject(ProjectInfo{ID: "q", Name: "New", Updated: older.Add(time.Hour)}); err != nil {
				t.Fatalf("SaveProject: %v", err)
			}
			if err := s.SaveProject(ProjectInfo{ID: "p", Name: "Renamed", Updated: older}); err != nil {
				t.Fatalf("SaveProject: %v", err)
			}
			projects, err := s.Projects()
			if err != nil {
				t.Fatalf("Projects: %v", err)
			}
			if len(projects) != 2 {
				t.Fatalf("expected 2 projects, got %d", len(projects))
			}
			if projects[0].ID != "q" || projects[1].Name != "Renamed" {
				t.Errorf("unexpected projects: %+v", projects)
			}
			if !projects[1].Updated.Equal(older) {
				t.Errorf("expected updated %v, got %v", older, projects[1].Updated)
			}
		})
	}
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	s.Put("p", "main", "'world'")
	s.Close()

	s2, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer s2.Close()
	got, ok, err := s2.Get("p", "main")
	if err != nil || !ok || got != "'world'" {
		t.Errorf("expected 'world' after reopen, got %q (%v, %v)", got, ok, err)
	}
	version, _ := s2.GetMetadata("schema_version")
	if version != SchemaVersion {
		t.Errorf("expected schema version %s, got %s", SchemaVersion, version)
	}
}

func TestSQLiteMigrationV1toV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	// Create a v1 database manually
	db, err := sql.Open(driverName, path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE sources (project TEXT NOT NULL, name TEXT NOT NULL, value TEXT NOT NULL, PRIMARY KEY (project, name));
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO metadata (key, value) VALUES ('schema_version', '1');
		INSERT INTO sources (project, name, value) VALUES ('p', 'main', 'hello');
	`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	db.Close()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite after migration: %v", err)
	}
	defer s.Close()

	// The existing row became version 1
	entries, err := s.GetHistory("p", "main", 0)
	if err != nil {
		t.Fatalf("GetHistory after migration: %v", err)
	}
	if len(entries) != 1 || entries[0].Version != 1 || entries[0].Value != "hello" {
		t.Fatalf("unexpected history after migration: %v", entries)
	}

	s.Put("p", "main", "updated")
	entries, _ = s.GetHistory("p", "main", 0)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after update, got %d", len(entries))
	}
}

func TestSQLiteRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	s.SetMetadata("schema_version", "99")
	s.Close()

	if _, err := NewSQLite(path); err == nil {
		t.Fatal("expected an error for an unsupported schema version")
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "")
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	s.Close()
	if _, err := Open("floppy", ""); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestMemoryMetadata(t *testing.T) {
	m := NewMemory()
	m.SetMetadata("k", "v")
	if got, _ := m.GetMetadata("k"); got != "v" {
		t.Errorf("expected 'v', got %q", got)
	}
}
