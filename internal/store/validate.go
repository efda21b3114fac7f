package store

import "fmt"

// Column limits, matching the VARCHAR sizes in the Postgres schema.
const (
	MaxSymbolLength = 64
	MaxFieldLength  = 32
	MaxErrorLength  = 1024
)

// ValidateRecord rejects records that would not fit the schema.
func ValidateRecord(r *OrderRecord) error {
	if r.TradingSymbol == "" {
		return fmt.Errorf("tradingsymbol is required")
	}
	if len(r.TradingSymbol) > MaxSymbolLength {
		return fmt.Errorf("tradingsymbol too long: %d chars (max %d)", len(r.TradingSymbol), MaxSymbolLength)
	}
	fields := map[string]string{
		"variety":          r.Variety,
		"exchange":         r.Exchange,
		"transaction_type": r.TransactionType,
		"product":          r.Product,
		"order_type":       r.OrderType,
	}
	for name, v := range fields {
		if len(v) > MaxFieldLength {
			return fmt.Errorf("%s too long: %d chars (max %d)", name, len(v), MaxFieldLength)
		}
	}
	return nil
}

// ClipError shortens an error message to MaxErrorLength bytes.
func ClipError(msg string) string {
	if len(msg) <= MaxErrorLength {
		return msg
	}
	return msg[:MaxErrorLength]
}
