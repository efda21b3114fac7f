package http

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
	"github.com/nextlevelbuilder/kitedash/internal/portfolio"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

// queryLimit reads ?limit=. Absent means no limit (0).
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if limit, ok := queryLimit(w, r); ok {
		writeResult(w, session(r).Broker().GetHoldings(r.Context(), limit))
	}
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if limit, ok := queryLimit(w, r); ok {
		writeResult(w, session(r).Broker().GetPositions(r.Context(), limit))
	}
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if limit, ok := queryLimit(w, r); ok {
		writeResult(w, session(r).Broker().GetOrders(r.Context(), limit))
	}
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if limit, ok := queryLimit(w, r); ok {
		writeResult(w, session(r).Broker().GetTrades(r.Context(), limit))
	}
}

func (s *Server) handleMargins(w http.ResponseWriter, r *http.Request) {
	writeResult(w, session(r).Broker().GetMargins(r.Context()))
}

type summaryResponse struct {
	Holdings     *mcp.Result           `json:"holdings"`
	Positions    *mcp.Result           `json:"positions"`
	Margins      *mcp.Result           `json:"margins"`
	Metrics      *portfolio.Summary    `json:"metrics,omitempty"`
	Risk         *portfolio.RiskReport `json:"risk,omitempty"`
	Formatted    map[string]string     `json:"formatted,omitempty"`
	MetricsError string                `json:"metrics_error,omitempty"`
}

// handleSummary fetches holdings, positions and margins concurrently and
// derives metrics from the holdings. Each tool result is reported as-is.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	broker := session(r).Broker()
	var resp summaryResponse

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp.Holdings = broker.GetHoldings(ctx, 0)
		return nil
	})
	g.Go(func() error {
		resp.Positions = broker.GetPositions(ctx, 0)
		return nil
	})
	g.Go(func() error {
		resp.Margins = broker.GetMargins(ctx)
		return nil
	})
	g.Wait()

	if resp.Holdings.Success {
		holdings, err := portfolio.DecodeHoldings(resp.Holdings.Data)
		if err != nil {
			resp.MetricsError = err.Error()
		} else {
			m := portfolio.Metrics(holdings)
			risk := portfolio.Risk(holdings)
			resp.Metrics = &m
			resp.Risk = &risk
			resp.Formatted = map[string]string{
				"total_value":        portfolio.FormatCurrency(m.TotalValue, ""),
				"total_investment":   portfolio.FormatCurrency(m.TotalInvestment, ""),
				"total_pnl":          portfolio.FormatCurrency(m.TotalPnL, ""),
				"total_pnl_percent":  portfolio.FormatPercentage(m.TotalPnLPercent),
				"day_change":         portfolio.FormatCurrency(m.DayChange, ""),
				"day_change_percent": portfolio.FormatPercentage(m.DayChangePercent),
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
