// Package history keeps one row per completed verification run.
package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists run history in a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path. If SQLite cannot be
// initialised the store degrades to a jsonl file next to it.
func NewSQLiteStore(path string) *SQLiteStore {
	fallback := NewFileStore(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl")
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, fallback: fallback}
	}
	store := &SQLiteStore{db: db, path: path, fallback: fallback}
	if err := store.init(); err != nil {
		_ = db.Close()
		return &SQLiteStore{path: path, fallback: fallback}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT,
		duration_ms INTEGER,
		commit_hash TEXT,
		total INTEGER,
		succeeded INTEGER,
		failed INTEGER,
		cache_hits INTEGER,
		cache_misses INTEGER,
		repaired INTEGER,
		forced INTEGER
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.RunRecord) error {
	if s.db == nil {
		return s.fallback.Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO runs
		(id, started_at, duration_ms, commit_hash, total, succeeded, failed, cache_hits, cache_misses, repaired, forced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.StartedAt.UTC().Format(timeLayout),
		record.DurationMS,
		record.Commit,
		record.Total,
		record.Succeeded,
		record.Failed,
		record.CacheHits,
		record.CacheMisses,
		record.Repaired,
		boolToInt(record.Forced),
	)
	return err
}

// Records returns the newest runs first; limit <= 0 returns every run.
func (s *SQLiteStore) Records(limit int) ([]domain.RunRecord, error) {
	if s.db == nil {
		return s.fallback.Records(limit)
	}
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, started_at, duration_ms, commit_hash, total, succeeded, failed,
		cache_hits, cache_misses, repaired, forced FROM runs ORDER BY started_at DESC`)
	var args []interface{}
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts string
		var forced int
		if err := rows.Scan(&rec.ID, &ts, &rec.DurationMS, &rec.Commit, &rec.Total, &rec.Succeeded, &rec.Failed,
			&rec.CacheHits, &rec.CacheMisses, &rec.Repaired, &forced); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, ts); err == nil {
			rec.StartedAt = t
		}
		rec.Forced = forced == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all run records.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

// ExportJSON writes the run table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0)
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the active storage path.
func (s *SQLiteStore) Path() string {
	if s.db == nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.RunRecorder = (*SQLiteStore)(nil)
