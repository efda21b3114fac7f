package portfolio

import (
	"math"
	"testing"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func sampleHoldings() []Holding {
	return []Holding{
		{TradingSymbol: "RELIANCE", Quantity: 50, AveragePrice: 2450, LastPrice: 2580, DayChange: 20},
		{TradingSymbol: "TCS", Quantity: 25, AveragePrice: 3250, LastPrice: 3420, DayChange: -10},
		{TradingSymbol: "INFY", Quantity: 30, AveragePrice: 1520, LastPrice: 1650, DayChange: 5},
	}
}

func TestMetrics(t *testing.T) {
	s := Metrics(sampleHoldings())

	wantValue := 50*2580.0 + 25*3420.0 + 30*1650.0
	wantInv := 50*2450.0 + 25*3250.0 + 30*1520.0
	wantDay := 50*20.0 - 25*10.0 + 30*5.0

	if !approx(s.TotalValue, wantValue) {
		t.Errorf("expected value %.2f, got %.2f", wantValue, s.TotalValue)
	}
	if !approx(s.TotalInvestment, wantInv) {
		t.Errorf("expected investment %.2f, got %.2f", wantInv, s.TotalInvestment)
	}
	if !approx(s.TotalPnL, wantValue-wantInv) {
		t.Errorf("expected pnl %.2f, got %.2f", wantValue-wantInv, s.TotalPnL)
	}
	if !approx(s.TotalPnLPercent, (wantValue-wantInv)/wantInv*100) {
		t.Errorf("unexpected pnl percent %.4f", s.TotalPnLPercent)
	}
	if !approx(s.DayChange, wantDay) {
		t.Errorf("expected day change %.2f, got %.2f", wantDay, s.DayChange)
	}
	if !approx(s.DayChangePercent, wantDay/(wantValue-wantDay)*100) {
		t.Errorf("unexpected day change percent %.4f", s.DayChangePercent)
	}
}

func TestMetrics_Empty(t *testing.T) {
	if s := Metrics(nil); s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestRisk(t *testing.T) {
	tests := []struct {
		name      string
		holdings  []Holding
		wantScore string
	}{
		{"empty", nil, ""},
		{"single holding", []Holding{{TradingSymbol: "INFY", Quantity: 1, LastPrice: 100}}, RiskHigh},
		{"balanced", []Holding{
			{TradingSymbol: "A", Quantity: 1, LastPrice: 100},
			{TradingSymbol: "B", Quantity: 1, LastPrice: 100},
			{TradingSymbol: "C", Quantity: 1, LastPrice: 100},
			{TradingSymbol: "D", Quantity: 1, LastPrice: 100},
			{TradingSymbol: "E", Quantity: 1, LastPrice: 100},
		}, RiskLow},
		{"medium", []Holding{
			{TradingSymbol: "A", Quantity: 1, LastPrice: 300},
			{TradingSymbol: "B", Quantity: 1, LastPrice: 350},
			{TradingSymbol: "C", Quantity: 1, LastPrice: 350},
		}, RiskMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Risk(tt.holdings)
			if r.RiskScore != tt.wantScore {
				t.Errorf("expected %q, got %q (ratio %.2f)", tt.wantScore, r.RiskScore, r.ConcentrationRatio)
			}
		})
	}

	r := Risk(sampleHoldings())
	if r.LargestHolding != "RELIANCE" {
		t.Errorf("expected RELIANCE as largest, got %s", r.LargestHolding)
	}
}

func TestDecodeHoldings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `[{"tradingsymbol":"INFY","quantity":30,"last_price":1650}]`, 1},
		{"data wrapper", `{"data":[{"tradingsymbol":"INFY"},{"tradingsymbol":"TCS"}]}`, 2},
		{"holdings wrapper", `{"holdings":[{"tradingsymbol":"INFY"}]}`, 1},
		{"empty", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHoldings(mcp.StructuredPayload([]byte(tt.raw)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d holdings, got %d", tt.want, len(got))
			}
		})
	}

	if _, err := DecodeHoldings(mcp.TextPayload("Please log in first")); err == nil {
		t.Error("expected error for text payload")
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{25000000, "₹2.50Cr"},
		{10000000, "₹1.00Cr"},
		{250000, "₹2.50L"},
		{1500, "₹1.50K"},
		{999.5, "₹999.50"},
		{-500, "₹-500.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.amount, ""); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
	if got := FormatCurrency(12, "$"); got != "$12.00" {
		t.Errorf("custom currency: got %q", got)
	}
}

func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1.5, "+1.50%"},
		{0, "0.00%"},
		{-2.346, "-2.35%"},
	}
	for _, tt := range tests {
		if got := FormatPercentage(tt.v); got != tt.want {
			t.Errorf("FormatPercentage(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
