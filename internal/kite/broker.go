// Package kite binds brokerage operations to remote tool calls. Every method
// is a thin argument-binding wrapper over mcp.Caller; business-rule checks
// live in package orders and are the caller's business.
package kite

import (
	"context"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
)

// Tool names understood by the Kite tool server.
const (
	ToolLogin             = "login"
	ToolGetProfile        = "get_profile"
	ToolGetHoldings       = "get_holdings"
	ToolGetPositions      = "get_positions"
	ToolGetMargins        = "get_margins"
	ToolGetOrders         = "get_orders"
	ToolGetTrades         = "get_trades"
	ToolGetQuotes         = "get_quotes"
	ToolGetLTP            = "get_ltp"
	ToolSearchInstruments = "search_instruments"
	ToolGetHistoricalData = "get_historical_data"
	ToolPlaceOrder        = "place_order"
)

const (
	DefaultFilterOn = "tradingsymbol"
	DefaultInterval = "day"
)

// OrderRequest carries the place_order arguments.
type OrderRequest struct {
	Variety         string  `json:"variety"`
	Exchange        string  `json:"exchange"`
	TradingSymbol   string  `json:"tradingsymbol"`
	TransactionType string  `json:"transaction_type"`
	Quantity        int     `json:"quantity"`
	Product         string  `json:"product"`
	OrderType       string  `json:"order_type"`
	Price           float64 `json:"price"`
}

// Broker exposes the brokerage operations of a single tool server.
type Broker struct {
	caller mcp.Caller
}

func NewBroker(caller mcp.Caller) *Broker {
	return &Broker{caller: caller}
}

// Caller returns the underlying tool caller, for ad-hoc invocations.
func (b *Broker) Caller() mcp.Caller { return b.caller }

func (b *Broker) Login(ctx context.Context) *mcp.Result {
	return b.caller.Call(ctx, ToolLogin, nil)
}

func (b *Broker) GetProfile(ctx context.Context) *mcp.Result {
	return b.caller.Call(ctx, ToolGetProfile, nil)
}

// GetHoldings lists portfolio holdings. limit <= 0 means no limit, and the
// key is left out of the request entirely.
func (b *Broker) GetHoldings(ctx context.Context, limit int) *mcp.Result {
	return b.caller.Call(ctx, ToolGetHoldings, limitArgs(limit))
}

func (b *Broker) GetPositions(ctx context.Context, limit int) *mcp.Result {
	return b.caller.Call(ctx, ToolGetPositions, limitArgs(limit))
}

func (b *Broker) GetMargins(ctx context.Context) *mcp.Result {
	return b.caller.Call(ctx, ToolGetMargins, nil)
}

func (b *Broker) GetOrders(ctx context.Context, limit int) *mcp.Result {
	return b.caller.Call(ctx, ToolGetOrders, limitArgs(limit))
}

func (b *Broker) GetTrades(ctx context.Context, limit int) *mcp.Result {
	return b.caller.Call(ctx, ToolGetTrades, limitArgs(limit))
}

// GetQuotes fetches full quotes for instruments such as "NSE:INFY".
func (b *Broker) GetQuotes(ctx context.Context, instruments []string) *mcp.Result {
	return b.caller.Call(ctx, ToolGetQuotes, map[string]any{"instruments": instrumentList(instruments)})
}

// GetLTP fetches last traded prices.
func (b *Broker) GetLTP(ctx context.Context, instruments []string) *mcp.Result {
	return b.caller.Call(ctx, ToolGetLTP, map[string]any{"instruments": instrumentList(instruments)})
}

// SearchInstruments matches query against filterOn (default "tradingsymbol").
func (b *Broker) SearchInstruments(ctx context.Context, query, filterOn string) *mcp.Result {
	if filterOn == "" {
		filterOn = DefaultFilterOn
	}
	return b.caller.Call(ctx, ToolSearchInstruments, map[string]any{
		"query":     query,
		"filter_on": filterOn,
	})
}

// GetHistoricalData fetches candles between fromDate and toDate. interval
// defaults to "day".
func (b *Broker) GetHistoricalData(ctx context.Context, instrumentToken int, fromDate, toDate, interval string) *mcp.Result {
	if interval == "" {
		interval = DefaultInterval
	}
	return b.caller.Call(ctx, ToolGetHistoricalData, map[string]any{
		"instrument_token": instrumentToken,
		"from_date":        fromDate,
		"to_date":          toDate,
		"interval":         interval,
	})
}

// PlaceOrder submits an order as given. Price is always sent, 0 when unset.
func (b *Broker) PlaceOrder(ctx context.Context, o OrderRequest) *mcp.Result {
	return b.caller.Call(ctx, ToolPlaceOrder, map[string]any{
		"variety":          o.Variety,
		"exchange":         o.Exchange,
		"tradingsymbol":    o.TradingSymbol,
		"transaction_type": o.TransactionType,
		"quantity":         o.Quantity,
		"product":          o.Product,
		"order_type":       o.OrderType,
		"price":            o.Price,
	})
}

func limitArgs(limit int) map[string]any {
	args := map[string]any{}
	if limit > 0 {
		args["limit"] = limit
	}
	return args
}

// instrumentList keeps a nil slice from being encoded as JSON null.
func instrumentList(instruments []string) []string {
	if instruments == nil {
		return []string{}
	}
	return instruments
}
