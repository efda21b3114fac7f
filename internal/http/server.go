// Package http serves the dashboard JSON API. Each browser session gets its
// own tool client; tool-backed endpoints answer with the tool result as-is.
package http

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/kitedash/internal/orders"
	"github.com/nextlevelbuilder/kitedash/internal/sessions"
	"github.com/nextlevelbuilder/kitedash/internal/store"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

// SessionCookie names the cookie that carries the session id.
const SessionCookie = "kitedash_session"

// Options configures a Server.
type Options struct {
	Sessions       *sessions.Manager
	Journal        store.OrderJournal // optional
	OrderLimiter   *orders.Limiter    // optional; nil disables throttling
	Token          string             // optional bearer token
	RateLimitRPM   int
	RateLimitBurst int
	WatchInterval  time.Duration
	AllowedOrigins []string // WebSocket origins; empty means same-origin only
	Version        string
}

type Server struct {
	sessions      *sessions.Manager
	journal       store.OrderJournal
	orderLimiter  *orders.Limiter
	ipLimiter     *RateLimiter
	watchInterval time.Duration
	version       string
	upgrader      websocket.Upgrader
	mux           *http.ServeMux

	mu    sync.RWMutex
	token string

	// watchCtx outlives requests; cancelling it ends every live stream.
	watchCtx    context.Context
	stopWatches context.CancelFunc
	watches     sync.WaitGroup
}

func NewServer(opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		sessions:      opts.Sessions,
		journal:       opts.Journal,
		orderLimiter:  opts.OrderLimiter,
		ipLimiter:     NewRateLimiter(opts.RateLimitRPM, opts.RateLimitBurst),
		watchInterval: opts.WatchInterval,
		version:       opts.Version,
		token:         opts.Token,
		mux:           http.NewServeMux(),
		watchCtx:      ctx,
		stopWatches:   cancel,
	}
	if len(opts.AllowedOrigins) > 0 {
		origins := opts.AllowedOrigins
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /v1/login", s.handleLogin)
	s.mux.HandleFunc("GET /v1/profile", s.handleProfile)
	s.mux.HandleFunc("GET /v1/status", s.handleStatus)
	s.mux.HandleFunc("DELETE /v1/session", s.handleLogout)

	s.mux.HandleFunc("GET /v1/holdings", s.handleHoldings)
	s.mux.HandleFunc("GET /v1/positions", s.handlePositions)
	s.mux.HandleFunc("GET /v1/orders", s.handleOrders)
	s.mux.HandleFunc("GET /v1/trades", s.handleTrades)
	s.mux.HandleFunc("GET /v1/margins", s.handleMargins)
	s.mux.HandleFunc("GET /v1/portfolio/summary", s.handleSummary)

	s.mux.HandleFunc("GET /v1/quotes", s.handleQuotes)
	s.mux.HandleFunc("GET /v1/ltp", s.handleLTP)
	s.mux.HandleFunc("GET /v1/instruments/search", s.handleSearch)
	s.mux.HandleFunc("GET /v1/historical", s.handleHistorical)

	s.mux.HandleFunc("POST /v1/orders", s.handlePlaceOrder)
	s.mux.HandleFunc("GET /v1/journal", s.handleJournal)
	s.mux.HandleFunc("GET /v1/journal/{id}", s.handleJournalEntry)

	s.mux.HandleFunc("POST /v1/tools/invoke", s.handleToolsInvoke)
	s.mux.HandleFunc("GET /v1/ws/watch", s.handleWatch)
}

// Handler returns the API with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.rateLimit(s.authenticate(s.withSession(s.mux))))
}

// SetToken replaces the bearer token; empty disables auth.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Server) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Shutdown ends live WebSocket streams and waits for them, bounded by ctx.
// Plain requests are drained by http.Server.Shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopWatches()
	s.ipLimiter.Stop()

	done := make(chan struct{})
	go func() {
		s.watches.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isPublic(r *http.Request) bool {
	return r.URL.Path == "/health"
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}
		provided := extractBearerToken(r)
		// Browsers cannot set headers on WebSocket upgrades.
		if provided == "" && websocket.IsWebSocketUpgrade(r) {
			provided = r.URL.Query().Get("token")
		}
		if !tokenMatch(provided, s.currentToken()) {
			slog.Warn("security.unauthorized", "path", r.URL.Path, "remote", clientIP(r))
			writeError(w, http.StatusUnauthorized, protocol.ErrUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isPublic(r) && !s.ipLimiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, protocol.ErrResourceExhausted, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withSession resolves the session cookie, starting a new session when it is
// missing or expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
		sess, created := s.sessions.GetOrCreate(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(sessions.WithSession(r.Context(), sess)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack passes through to the underlying writer for WebSocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// session returns the request's session. withSession guarantees one on /v1 routes.
func session(r *http.Request) *sessions.Session {
	return sessions.FromContext(r.Context())
}
