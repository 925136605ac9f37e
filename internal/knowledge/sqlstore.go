package knowledge

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS experience (
	key         TEXT PRIMARY KEY,
	summary     TEXT NOT NULL,
	expert_note TEXT NOT NULL DEFAULT '',
	timestamp   TEXT NOT NULL
);`

// busyTimeoutMS is how long a writer waits on a lock held by another process.
const busyTimeoutMS = 5000

// SQLStore keeps the knowledge base in a SQLite table.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens or creates a SQLite DB at path.
// Creates the parent directory if it does not exist.
func OpenSQL(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create knowledge dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers in this process and keeps the
	// pragma below in effect for every statement.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create experience table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) Load() (Entries, error) {
	return loadEntries(s.db)
}

func loadEntries(q querier) (Entries, error) {
	rows, err := q.Query(`SELECT key, summary, expert_note, timestamp FROM experience`)
	if err != nil {
		return nil, fmt.Errorf("query experience: %w", err)
	}
	defer rows.Close()
	out := Entries{}
	for rows.Next() {
		var k string
		var e Entry
		if err := rows.Scan(&k, &e.Summary, &e.ExpertNote, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		out[k] = e
	}
	return out, rows.Err()
}

// Save replaces the table contents in one transaction.
func (s *SQLStore) Save(e Entries) error {
	if err := validate(e); err != nil {
		return err
	}
	return s.Update(func(cur Entries) error {
		for k := range cur {
			delete(cur, k)
		}
		for k, v := range e {
			cur[k] = v
		}
		return nil
	})
}

// Update reads the table, applies fn and writes back the difference in one
// transaction.
func (s *SQLStore) Update(fn func(Entries) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	before, err := loadEntries(tx)
	if err != nil {
		return err
	}
	after := clone(before)
	if err := fn(after); err != nil {
		return err
	}
	if err := validate(after); err != nil {
		return err
	}

	for k := range before {
		if _, ok := after[k]; ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM experience WHERE key = ?`, k); err != nil {
			return fmt.Errorf("delete %q: %w", k, err)
		}
	}
	stmt, err := tx.Prepare(`INSERT INTO experience (key, summary, expert_note, timestamp) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET summary = excluded.summary, expert_note = excluded.expert_note, timestamp = excluded.timestamp`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()
	for k, v := range after {
		if old, ok := before[k]; ok && old == v {
			continue
		}
		if _, err := stmt.Exec(k, v.Summary, v.ExpertNote, v.Timestamp); err != nil {
			return fmt.Errorf("upsert %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
