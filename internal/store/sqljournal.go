package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// orderRow is the column layout shared by the SQLite and Postgres schemas.
// Timestamps are stored as unix milliseconds so both drivers scan them alike.
type orderRow struct {
	ID              string  `db:"id"`
	SessionID       string  `db:"session_id"`
	Variety         string  `db:"variety"`
	Exchange        string  `db:"exchange"`
	TradingSymbol   string  `db:"tradingsymbol"`
	TransactionType string  `db:"transaction_type"`
	Quantity        int     `db:"quantity"`
	Product         string  `db:"product"`
	OrderType       string  `db:"order_type"`
	Price           float64 `db:"price"`
	Success         bool    `db:"success"`
	BrokerOrderID   string  `db:"broker_order_id"`
	Error           string  `db:"error"`
	CreatedAt       int64   `db:"created_at"`
}

func toRow(r *OrderRecord) orderRow {
	return orderRow{
		ID:              r.ID,
		SessionID:       r.SessionID,
		Variety:         r.Variety,
		Exchange:        r.Exchange,
		TradingSymbol:   r.TradingSymbol,
		TransactionType: r.TransactionType,
		Quantity:        r.Quantity,
		Product:         r.Product,
		OrderType:       r.OrderType,
		Price:           r.Price,
		Success:         r.Success,
		BrokerOrderID:   r.BrokerOrderID,
		Error:           r.Error,
		CreatedAt:       r.CreatedAt.UnixMilli(),
	}
}

func (row orderRow) record() OrderRecord {
	return OrderRecord{
		ID:              row.ID,
		SessionID:       row.SessionID,
		Variety:         row.Variety,
		Exchange:        row.Exchange,
		TradingSymbol:   row.TradingSymbol,
		TransactionType: row.TransactionType,
		Quantity:        row.Quantity,
		Product:         row.Product,
		OrderType:       row.OrderType,
		Price:           row.Price,
		Success:         row.Success,
		BrokerOrderID:   row.BrokerOrderID,
		Error:           row.Error,
		CreatedAt:       time.UnixMilli(row.CreatedAt).UTC(),
	}
}

const orderColumns = `id, session_id, variety, exchange, tradingsymbol, transaction_type,
	quantity, product, order_type, price, success, broker_order_id, error, created_at`

// SQLJournal implements OrderJournal over any sqlx-supported driver.
type SQLJournal struct {
	db *sqlx.DB
}

// NewSQLJournal runs the schema statements and returns a journal over db.
func NewSQLJournal(db *sqlx.DB, schema []string) (*SQLJournal, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return &SQLJournal{db: db}, nil
}

// Record validates and inserts r, filling ID and CreatedAt when unset.
func (j *SQLJournal) Record(ctx context.Context, r *OrderRecord) error {
	if err := ValidateRecord(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = GenNewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Error = ClipError(r.Error)

	_, err := j.db.NamedExecContext(ctx, `INSERT INTO order_journal (`+orderColumns+`)
		VALUES (:id, :session_id, :variety, :exchange, :tradingsymbol, :transaction_type,
			:quantity, :product, :order_type, :price, :success, :broker_order_id, :error, :created_at)`,
		toRow(r))
	if err != nil {
		return fmt.Errorf("insert order record: %w", err)
	}
	return nil
}

func (j *SQLJournal) Get(ctx context.Context, id string) (*OrderRecord, error) {
	var row orderRow
	q := j.db.Rebind(`SELECT ` + orderColumns + ` FROM order_journal WHERE id = ?`)
	if err := j.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order record: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

func (j *SQLJournal) List(ctx context.Context, limit int) ([]OrderRecord, error) {
	var rows []orderRow
	q := j.db.Rebind(`SELECT ` + orderColumns + ` FROM order_journal ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := j.db.SelectContext(ctx, &rows, q, ClampLimit(limit)); err != nil {
		return nil, fmt.Errorf("list order records: %w", err)
	}
	out := make([]OrderRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (j *SQLJournal) Close() error { return j.db.Close() }
