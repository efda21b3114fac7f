// Package store persists the order journal.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a journal entry does not exist.
var ErrNotFound = errors.New("not found")

// OrderRecord is one place-order attempt and its outcome.
type OrderRecord struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id,omitempty"`
	Variety         string    `json:"variety"`
	Exchange        string    `json:"exchange"`
	TradingSymbol   string    `json:"tradingsymbol"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	Product         string    `json:"product"`
	OrderType       string    `json:"order_type"`
	Price           float64   `json:"price"`
	Success         bool      `json:"success"`
	BrokerOrderID   string    `json:"broker_order_id,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// OrderJournal records order attempts.
type OrderJournal interface {
	Record(ctx context.Context, r *OrderRecord) error
	Get(ctx context.Context, id string) (*OrderRecord, error)
	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]OrderRecord, error)
	Close() error
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// GenNewID generates a new UUID v7 (time-ordered).
func GenNewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
