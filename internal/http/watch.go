package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nextlevelbuilder/kitedash/internal/watch"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

// handleWatch upgrades to a WebSocket that streams LTP for ?i= instruments
// every ?interval= seconds.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	instruments, ok := queryInstruments(w, r)
	if !ok {
		return
	}
	interval := s.watchInterval
	if raw := r.URL.Query().Get("interval"); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "interval must be seconds")
			return
		}
		interval = time.Duration(sec) * time.Second
	}

	if s.watchCtx.Err() != nil {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrUnavailable, "server is shutting down")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("watch.upgrade_failed", "error", err)
		return
	}

	sess := session(r)
	wt := watch.NewWatcher(conn, sess.Broker(), instruments, interval)
	wt.Send(protocol.NewEvent(protocol.EventSession, protocol.SessionPayload{
		SessionID:     sess.ID,
		Endpoint:      sess.Endpoint,
		Authenticated: sess.Authenticated(),
	}))

	s.watches.Add(1)
	defer s.watches.Done()
	wt.Run(s.watchCtx)
}
