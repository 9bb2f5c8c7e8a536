// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Current schema version
const SchemaVersion = "2"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sources (
			project TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (project, name)
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	if version == "" || version == "1" {
		// New DB or migrate from v1 to v2: add history and projects
		if err := s.migrateToV2(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate to v2: %w", err)
		}
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// migrateToV2 creates the history and project tables. Sources stored by a
// v1 database become version 1 of their history.
func (s *SQLite) migrateToV2() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS source_versions (
			project TEXT NOT NULL,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			value TEXT NOT NULL,
			ts TEXT NOT NULL,
			PRIMARY KEY (project, name, version)
		);
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			updated TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO source_versions (project, name, version, value, ts)
		SELECT project, name, 1, value, ? FROM sources
	`, now())
	return err
}

// Get retrieves the latest text of a source.
func (s *SQLite) Get(project, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM sources WHERE project = ? AND name = ?", project, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores the text of a source, adding a version if the text changed.
func (s *SQLite) Put(project, name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow("SELECT value FROM sources WHERE project = ? AND name = ?", project, name).Scan(&current)
	switch {
	case err == nil && current == text:
		return nil
	case err != nil && err != sql.ErrNoRows:
		return err
	}

	var latest int
	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM source_versions WHERE project = ? AND name = ?",
		project, name,
	).Scan(&latest); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO sources (project, name, value) VALUES (?, ?, ?)
		ON CONFLICT(project, name) DO UPDATE SET value = excluded.value
	`, project, name, text); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO source_versions (project, name, version, value, ts) VALUES (?, ?, ?, ?, ?)",
		project, name, latest+1, text, now(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a source and all its versions.
func (s *SQLite) Delete(project, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM sources WHERE project = ? AND name = ?", project, name); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM source_versions WHERE project = ? AND name = ?", project, name)
	return err
}

// Sources returns the names of a project's sources.
func (s *SQLite) Sources(project string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM sources WHERE project = ? ORDER BY name", project)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveProject records a project.
func (s *SQLite) SaveProject(info ProjectInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.Updated.IsZero() {
		info.Updated = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, updated) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated = excluded.updated
	`, info.ID, info.Name, info.Updated.Format(time.RFC3339Nano))
	return err
}

// Projects returns every project, most recently updated first.
func (s *SQLite) Projects() ([]ProjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT id, name, updated FROM projects")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProjectInfo
	for rows.Next() {
		var info ProjectInfo
		var updated string
		if err := rows.Scan(&info.ID, &info.Name, &updated); err != nil {
			return nil, err
		}
		if info.Updated, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("project %s: %w", info.ID, err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortProjects(out)
	return out, nil
}

// GetHistory returns a source's versions, newest first.
func (s *SQLite) GetHistory(project, name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	query := "SELECT version, value, ts FROM source_versions WHERE project = ? AND name = ? ORDER BY version DESC"
	args := []any{project, name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []VersionEntry
	for rows.Next() {
		var e VersionEntry
		if err := rows.Scan(&e.Version, &e.Value, &e.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
