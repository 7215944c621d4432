package dealstore

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mgirard/rentadesk/internal/rentab"
)

// SQLiteStore keeps snapshots in SQLite with write-through semantics.
// Runtime behavior (listeners, change feed, long-poll watch) is delegated
// to an embedded MemoryStore; only snapshot rows and the change cursor are
// durable.
type SQLiteStore struct {
	inner *MemoryStore
	db    *sqlx.DB
	mu    sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	deal_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);
`

func NewSQLiteStore(dbPath string, cfg Config) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{
		inner: NewMemoryStore(cfg),
		db:    db,
	}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) loadAll() error {
	if err := s.loadCounters(); err != nil {
		return err
	}
	return s.loadSnapshots()
}

func (s *SQLiteStore) loadCounters() error {
	rows, err := s.db.Query("SELECT key, value FROM counters")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if key == "next_change_id" {
			s.inner.nextChangeID = value
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadSnapshots() error {
	rows, err := s.db.Query("SELECT deal_id, payload, updated_at FROM snapshots")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var dealID, payload, updatedAt string
		if err := rows.Scan(&dealID, &payload, &updatedAt); err != nil {
			return err
		}
		var snap rentab.Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return fmt.Errorf("decode snapshot %q: %w", dealID, err)
		}
		snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		s.inner.snapshots[dealID] = &snap
	}
	return rows.Err()
}

func (s *SQLiteStore) saveSnapshot(dealID string, snap *rentab.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO snapshots (deal_id, payload, updated_at) VALUES (?, ?, ?)`,
		dealID, string(blob), snap.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) deleteSnapshot(dealID string) error {
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE deal_id = ?`, dealID)
	return err
}

func (s *SQLiteStore) saveCounters() error {
	s.inner.mu.Lock()
	next := s.inner.nextChangeID
	s.inner.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO counters (key, value) VALUES ('next_change_id', ?)`, next)
	return err
}

func (s *SQLiteStore) persistSnapshot(dealID string, snap *rentab.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveSnapshot(dealID, snap); err != nil {
		return err
	}
	return s.saveCounters()
}

func (s *SQLiteStore) persistDelete(dealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteSnapshot(dealID); err != nil {
		return err
	}
	return s.saveCounters()
}

func (s *SQLiteStore) Read(dealID string) (*rentab.Snapshot, error) {
	return s.inner.Read(dealID)
}

func (s *SQLiteStore) Write(dealID string, snap rentab.Snapshot) (*rentab.Snapshot, error) {
	out, err := s.inner.Write(dealID, snap)
	if err != nil {
		return nil, err
	}
	if perr := s.persistSnapshot(dealID, out); perr != nil {
		return nil, NewPersistError(perr)
	}
	return out, nil
}

func (s *SQLiteStore) Patch(dealID string, patch Patch) (*rentab.Snapshot, error) {
	out, err := s.inner.Patch(dealID, patch)
	if err != nil || out == nil {
		return out, err
	}
	if perr := s.persistSnapshot(dealID, out); perr != nil {
		return nil, NewPersistError(perr)
	}
	return out, nil
}

func (s *SQLiteStore) Clear(dealID string) error {
	if err := s.inner.Clear(dealID); err != nil {
		return err
	}
	if perr := s.persistDelete(dealID); perr != nil {
		return NewPersistError(perr)
	}
	return nil
}

func (s *SQLiteStore) Subscribe(dealID string, fn Listener) (func(), error) {
	return s.inner.Subscribe(dealID, fn)
}

func (s *SQLiteStore) WatchSince(afterID int64, dealID string, wait time.Duration) ([]ChangeEvent, int64) {
	return s.inner.WatchSince(afterID, dealID, wait)
}

func (s *SQLiteStore) Health() map[string]any {
	out := s.inner.Health()
	out["backend"] = "sqlite"
	if err := s.db.Ping(); err != nil {
		out["status"] = "degraded"
		out["persist_error"] = err.Error()
	}
	return out
}

var _ Store = (*SQLiteStore)(nil)
