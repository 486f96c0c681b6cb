// Package sqlite keeps subscriptions and situations in a local SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const (
	// SubscriptionsTable holds subscription records.
	SubscriptionsTable = "subscriptions"
	// SituationsTable holds situation payloads.
	SituationsTable = "situations"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id TEXT PRIMARY KEY,
	serialized TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS situations (
	id TEXT PRIMARY KEY,
	serialized TEXT NOT NULL
);
`

// DB is one open database file shared by the stores of both record kinds.
type DB struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one connection so the pragmas below hold for every statement
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close flushes and closes the database. Only the first call closes; later calls return its result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.db.Close()
	})
	return d.closeErr
}
