// Package sqlite opens the order journal in a local SQLite file.
package sqlite

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/kitedash/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_journal (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL DEFAULT '',
		variety TEXT NOT NULL DEFAULT '',
		exchange TEXT NOT NULL DEFAULT '',
		tradingsymbol TEXT NOT NULL,
		transaction_type TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		product TEXT NOT NULL DEFAULT '',
		order_type TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		broker_order_id TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_journal_created ON order_journal(created_at)`,
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*store.SQLJournal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	j, err := store.NewSQLJournal(db, schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("journal.opened", "driver", "sqlite", "path", path)
	return j, nil
}
