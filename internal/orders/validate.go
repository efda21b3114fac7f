// Package orders holds the advisory checks run before an order is handed to
// the broker: field validation and per-session placement throttling.
package orders

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/kitedash/internal/kite"
)

// Order types and sides accepted by the dashboard form.
const (
	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"
	OrderTypeSL     = "SL"
	OrderTypeSLM    = "SL-M"

	TransactionBuy  = "BUY"
	TransactionSell = "SELL"

	DefaultVariety  = "regular"
	DefaultExchange = "NSE"
)

// ValidationError reports the first rule an order breaks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks an order before submission. It is advisory: the broker
// never calls it, and the tool server remains the final validator.
func Validate(o kite.OrderRequest) error {
	required := []struct {
		field string
		empty bool
	}{
		{"symbol", strings.TrimSpace(o.TradingSymbol) == ""},
		{"transaction_type", o.TransactionType == ""},
		{"quantity", o.Quantity == 0},
		{"order_type", o.OrderType == ""},
		{"product", o.Product == ""},
	}
	for _, r := range required {
		if r.empty {
			return &ValidationError{Field: r.field, Message: "missing required field: " + r.field}
		}
	}

	if o.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be greater than 0"}
	}

	if o.OrderType == OrderTypeLimit && o.Price <= 0 {
		return &ValidationError{Field: "price", Message: "price must be greater than 0 for limit orders"}
	}

	return nil
}

// ParseSymbol splits an exchange-qualified symbol such as "NSE:INFY".
// A bare symbol keeps defaultExchange.
func ParseSymbol(symbol, defaultExchange string) (exchange, tradingSymbol string) {
	symbol = strings.TrimSpace(symbol)
	if ex, sym, ok := strings.Cut(symbol, ":"); ok && ex != "" && sym != "" {
		return strings.ToUpper(ex), strings.ToUpper(sym)
	}
	return defaultExchange, strings.ToUpper(symbol)
}

// Normalize fills form defaults and resolves an exchange-qualified symbol.
// It does not validate.
func Normalize(o kite.OrderRequest) kite.OrderRequest {
	if o.Variety == "" {
		o.Variety = DefaultVariety
	}
	exchange := o.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	o.Exchange, o.TradingSymbol = ParseSymbol(o.TradingSymbol, strings.ToUpper(exchange))
	o.TransactionType = strings.ToUpper(o.TransactionType)
	o.OrderType = strings.ToUpper(o.OrderType)
	o.Product = strings.ToUpper(o.Product)
	return o
}

// Describe renders an order for logs, e.g. "BUY 10 NSE:INFY @ 1500.00".
func Describe(o kite.OrderRequest) string {
	if o.OrderType == OrderTypeMarket || o.Price <= 0 {
		return fmt.Sprintf("%s %d %s:%s @ market", o.TransactionType, o.Quantity, o.Exchange, o.TradingSymbol)
	}
	return fmt.Sprintf("%s %d %s:%s @ %.2f", o.TransactionType, o.Quantity, o.Exchange, o.TradingSymbol, o.Price)
}
