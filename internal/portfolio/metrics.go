// Package portfolio derives summary figures from broker holdings.
package portfolio

import (
	"fmt"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
)

// Holding is one row of the get_holdings payload.
type Holding struct {
	TradingSymbol       string  `json:"tradingsymbol"`
	Exchange            string  `json:"exchange"`
	InstrumentToken     int64   `json:"instrument_token"`
	Quantity            float64 `json:"quantity"`
	AveragePrice        float64 `json:"average_price"`
	LastPrice           float64 `json:"last_price"`
	PnL                 float64 `json:"pnl"`
	DayChange           float64 `json:"day_change"`
	DayChangePercentage float64 `json:"day_change_percentage"`
}

func (h Holding) CurrentValue() float64 { return h.Quantity * h.LastPrice }
func (h Holding) Investment() float64   { return h.Quantity * h.AveragePrice }

// DayChangeValue is the rupee move today: per-share day change times quantity.
func (h Holding) DayChangeValue() float64 { return h.Quantity * h.DayChange }

// DecodeHoldings reads holdings from a tool result. The server may return a
// bare array or wrap it as {"data": [...]} or {"holdings": [...]}.
func DecodeHoldings(p mcp.Payload) ([]Holding, error) {
	if p.Kind() != mcp.PayloadStructured {
		return nil, fmt.Errorf("holdings payload is %s, want structured", p.Kind())
	}

	var list []Holding
	if err := p.Decode(&list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data     []Holding `json:"data"`
		Holdings []Holding `json:"holdings"`
	}
	if err := p.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("decode holdings: %w", err)
	}
	if wrapped.Holdings != nil {
		return wrapped.Holdings, nil
	}
	return wrapped.Data, nil
}

// Summary aggregates value and P&L across holdings.
type Summary struct {
	TotalValue       float64 `json:"total_value"`
	TotalInvestment  float64 `json:"total_investment"`
	TotalPnL         float64 `json:"total_pnl"`
	TotalPnLPercent  float64 `json:"total_pnl_percent"`
	DayChange        float64 `json:"day_change"`
	DayChangePercent float64 `json:"day_change_percent"`
}

// Metrics computes the portfolio summary. An empty portfolio yields zeros.
func Metrics(holdings []Holding) Summary {
	var s Summary
	for _, h := range holdings {
		s.TotalValue += h.CurrentValue()
		s.TotalInvestment += h.Investment()
		s.DayChange += h.DayChangeValue()
	}
	s.TotalPnL = s.TotalValue - s.TotalInvestment
	if s.TotalInvestment > 0 {
		s.TotalPnLPercent = s.TotalPnL / s.TotalInvestment * 100
	}
	if prev := s.TotalValue - s.DayChange; prev > 0 {
		s.DayChangePercent = s.DayChange / prev * 100
	}
	return s
}

// Risk levels by concentration of the largest holding.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskReport describes how concentrated a portfolio is.
type RiskReport struct {
	ConcentrationRatio float64 `json:"concentration_ratio"`
	LargestHolding     string  `json:"largest_holding,omitempty"`
	RiskScore          string  `json:"risk_score,omitempty"`
}

// Risk reports the share of total value held in the largest position:
// above 40% is High, above 25% Medium, otherwise Low.
func Risk(holdings []Holding) RiskReport {
	if len(holdings) == 0 {
		return RiskReport{}
	}

	var total, largest float64
	var largestSym string
	for _, h := range holdings {
		v := h.CurrentValue()
		total += v
		if v > largest {
			largest = v
			largestSym = h.TradingSymbol
		}
	}

	r := RiskReport{LargestHolding: largestSym, RiskScore: RiskLow}
	if total > 0 {
		r.ConcentrationRatio = largest / total * 100
	}
	switch {
	case r.ConcentrationRatio > 40:
		r.RiskScore = RiskHigh
	case r.ConcentrationRatio > 25:
		r.RiskScore = RiskMedium
	}
	return r
}
