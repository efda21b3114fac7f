package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nextlevelbuilder/kitedash/internal/kite"
	"github.com/nextlevelbuilder/kitedash/internal/mcp"
	"github.com/nextlevelbuilder/kitedash/internal/orders"
	"github.com/nextlevelbuilder/kitedash/internal/store"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

// handlePlaceOrder validates, throttles, places and journals an order.
// Broker-side failures come back as a 200 result with success=false.
func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req kite.OrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req = orders.Normalize(req)

	if err := orders.Validate(req); err != nil {
		shape := protocol.NewError(protocol.ErrValidation, err.Error())
		var ve *orders.ValidationError
		if errors.As(err, &ve) {
			shape.Details = map[string]string{"field": ve.Field}
		}
		writeJSON(w, http.StatusBadRequest, protocol.ErrorBody{Error: shape})
		return
	}

	sess := session(r)
	if err := s.orderLimiter.Allow(sess.ID); err != nil {
		slog.Warn("security.order_rate_limited", "session", sess.ID, "error", err)
		shape := protocol.NewError(protocol.ErrResourceExhausted, err.Error())
		shape.Retryable = true
		writeJSON(w, http.StatusTooManyRequests, protocol.ErrorBody{Error: shape})
		return
	}

	res := sess.Broker().PlaceOrder(r.Context(), req)
	slog.Info("order.placed", "session", sess.ID, "order", orders.Describe(req), "success", res.Success)

	s.journalOrder(r.Context(), sess.ID, req, res)
	writeResult(w, res)
}

func (s *Server) journalOrder(ctx context.Context, sessionID string, req kite.OrderRequest, res *mcp.Result) {
	if s.journal == nil {
		return
	}
	rec := &store.OrderRecord{
		SessionID:       sessionID,
		Variety:         req.Variety,
		Exchange:        req.Exchange,
		TradingSymbol:   req.TradingSymbol,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Product:         req.Product,
		OrderType:       req.OrderType,
		Price:           req.Price,
		Success:         res.Success,
		BrokerOrderID:   brokerOrderID(res),
		Error:           mcp.ScrubCredentials(res.Error),
	}
	// The order already reached the broker; a journal failure must not mask that.
	if err := s.journal.Record(context.WithoutCancel(ctx), rec); err != nil {
		slog.Error("journal.record_failed", "session", sessionID, "error", err)
	}
}

// brokerOrderID pulls order_id from a structured place_order result.
func brokerOrderID(res *mcp.Result) string {
	if !res.Success {
		return ""
	}
	var body struct {
		OrderID string `json:"order_id"`
		Data    struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	if err := res.Data.Decode(&body); err != nil {
		return ""
	}
	if body.OrderID != "" {
		return body.OrderID
	}
	return body.Data.OrderID
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrUnavailable, "order journal is not configured")
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	list, err := s.journal.List(r.Context(), limit)
	if err != nil {
		slog.Error("journal.list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

func (s *Server) handleJournalEntry(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrUnavailable, "order journal is not configured")
		return
	}
	rec, err := s.journal.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, protocol.ErrNotFound, "journal entry not found")
	case err != nil:
		slog.Error("journal.get_failed", "error", err)
		writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "failed to read journal")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}
