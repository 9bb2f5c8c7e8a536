package store

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	projectsBucket = []byte("projects")
	sourcesBucket  = []byte("sources")
	metadataBucket = []byte("metadata")
)

// Bolt is a store in a single bbolt file. Each source is a bucket of
// versions keyed by big-endian version number, nested in a bucket per
// project.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens or creates a bbolt store at path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{projectsBucket, sourcesBucket, metadataBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return tx.Bucket(metadataBucket).Put([]byte("schema_version"), []byte(SchemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Bolt{db: db}, nil
}

func versionKey(v int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(v))
	return k
}

func encodeVersion(ts, text string) []byte { return []byte(ts + "\x00" + text) }

func decodeVersion(k, v []byte) VersionEntry {
	ts, text, _ := strings.Cut(string(v), "\x00")
	return VersionEntry{Version: int(binary.BigEndian.Uint64(k)), Value: text, Ts: ts}
}

// versions returns the bucket of a source's versions, or nil.
func versions(tx *bolt.Tx, project, name string) *bolt.Bucket {
	p := tx.Bucket(sourcesBucket).Bucket([]byte(project))
	if p == nil {
		return nil
	}
	return p.Bucket([]byte(name))
}

// Get retrieves the latest text of a source.
func (b *Bolt) Get(project, name string) (text string, ok bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		vs := versions(tx, project, name)
		if vs == nil {
			return nil
		}
		if k, v := vs.Cursor().Last(); k != nil {
			text, ok = decodeVersion(k, v).Value, true
		}
		return nil
	})
	return text, ok, err
}

// Put stores the text of a source, adding a version if the text changed.
func (b *Bolt) Put(project, name, text string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		p, err := tx.Bucket(sourcesBucket).CreateBucketIfNotExists([]byte(project))
		if err != nil {
			return err
		}
		vs, err := p.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		next := 1
		if k, v := vs.Cursor().Last(); k != nil {
			last := decodeVersion(k, v)
			if last.Value == text {
				return nil
			}
			next = last.Version + 1
		}
		return vs.Put(versionKey(next), encodeVersion(now(), text))
	})
}

// Delete removes a source and all its versions.
func (b *Bolt) Delete(project, name string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		p := tx.Bucket(sourcesBucket).Bucket([]byte(project))
		if p == nil || p.Bucket([]byte(name)) == nil {
			return nil
		}
		return p.DeleteBucket([]byte(name))
	})
}

// Sources returns the names of a project's sources. Bucket keys are kept
// in byte order, which is sorted order.
func (b *Bolt) Sources(project string) ([]string, error) {
	var names []string
	err := b.db.View(func(tx *bolt.Tx) error {
		p := tx.Bucket(sourcesBucket).Bucket([]byte(project))
		if p == nil {
			return nil
		}
		return p.ForEachBucket(func(k []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// SaveProject records a project.
func (b *Bolt) SaveProject(info ProjectInfo) error {
	if info.Updated.IsZero() {
		info.Updated = time.Now().UTC()
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(projectsBucket).Put([]byte(info.ID), encodeVersion(info.Updated.Format(time.RFC3339Nano), info.Name))
	})
}

// Projects returns every project, most recently updated first.
func (b *Bolt) Projects() ([]ProjectInfo, error) {
	var out []ProjectInfo
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(projectsBucket).ForEach(func(k, v []byte) error {
			updated, name, _ := strings.Cut(string(v), "\x00")
			t, err := time.Parse(time.RFC3339Nano, updated)
			if err != nil {
				return fmt.Errorf("project %s: %w", k, err)
			}
			out = append(out, ProjectInfo{ID: string(k), Name: name, Updated: t})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortProjects(out)
	return out, nil
}

// GetHistory returns a source's versions, newest first.
func (b *Bolt) GetHistory(project, name string, limit int) ([]VersionEntry, error) {
	var entries []VersionEntry
	err := b.db.View(func(tx *bolt.Tx) error {
		vs := versions(tx, project, name)
		if vs == nil {
			return nil
		}
		c := vs.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			entries = append(entries, decodeVersion(k, v))
			if limit > 0 && len(entries) == limit {
				break
			}
		}
		return nil
	})
	return entries, err
}

// Close closes the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
