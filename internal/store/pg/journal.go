// Package pg stores the order journal in Postgres.
package pg

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nextlevelbuilder/kitedash/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_journal (
		id VARCHAR(36) PRIMARY KEY,
		session_id VARCHAR(36) NOT NULL DEFAULT '',
		variety VARCHAR(32) NOT NULL DEFAULT '',
		exchange VARCHAR(32) NOT NULL DEFAULT '',
		tradingsymbol VARCHAR(64) NOT NULL,
		transaction_type VARCHAR(32) NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		product VARCHAR(32) NOT NULL DEFAULT '',
		order_type VARCHAR(32) NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL DEFAULT FALSE,
		broker_order_id VARCHAR(64) NOT NULL DEFAULT '',
		error VARCHAR(1024) NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_journal_created ON order_journal(created_at)`,
}

// Open connects to dsn and prepares the journal table.
func Open(ctx context.Context, dsn string) (*store.SQLJournal, error) {
	db, err := OpenDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	j, err := store.NewSQLJournal(sqlx.NewDb(db, "pgx"), schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}
