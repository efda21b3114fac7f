// Package sessions keeps one tool client per dashboard browser session.
package sessions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nextlevelbuilder/kitedash/internal/kite"
	"github.com/nextlevelbuilder/kitedash/internal/mcp"
)

const (
	DefaultMaxSessions = 256
	DefaultTTL         = 12 * time.Hour
)

// Session is one dashboard user's view of the broker. The endpoint is fixed
// when the session is created.
type Session struct {
	ID        string
	Endpoint  string
	CreatedAt time.Time

	broker *kite.Broker

	mu            sync.RWMutex
	authenticated bool
}

func (s *Session) Broker() *kite.Broker { return s.broker }

// Authenticated reports the outcome of the last profile check.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) setAuthenticated(v bool) {
	s.mu.Lock()
	s.authenticated = v
	s.mu.Unlock()
}

// RefreshProfile fetches the profile and records whether it succeeded.
func (s *Session) RefreshProfile(ctx context.Context) *mcp.Result {
	res := s.broker.GetProfile(ctx)
	s.setAuthenticated(res.Success)
	return res
}

// CallerFactory builds the tool caller for a new session.
type CallerFactory func(endpoint string) mcp.Caller

// Config configures a Manager.
type Config struct {
	Endpoint    string
	TimeoutSec  int
	MaxSessions int
	TTL         time.Duration
	NewCaller   CallerFactory // optional; defaults to mcp.NewClient
}

// Manager owns the live sessions. A session expires TTL after creation and
// the least recently used are evicted beyond MaxSessions.
type Manager struct {
	cache     *expirable.LRU[string, *Session]
	newCaller CallerFactory

	mu       sync.RWMutex
	endpoint string
}

func NewManager(cfg Config) *Manager {
	size := cfg.MaxSessions
	if size <= 0 {
		size = DefaultMaxSessions
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = mcp.DefaultEndpoint
	}

	newCaller := cfg.NewCaller
	if newCaller == nil {
		timeoutSec := cfg.TimeoutSec
		newCaller = func(ep string) mcp.Caller {
			return mcp.NewClient(mcp.ClientConfig{Endpoint: ep, TimeoutSec: timeoutSec})
		}
	}

	onEvict := func(id string, _ *Session) {
		slog.Debug("session.evicted", "session", id)
	}

	return &Manager{
		cache:     expirable.NewLRU[string, *Session](size, onEvict, ttl),
		newCaller: newCaller,
		endpoint:  endpoint,
	}
}

// Endpoint returns the endpoint new sessions will use.
func (m *Manager) Endpoint() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.endpoint
}

// SetEndpoint changes the endpoint for sessions created from now on.
// Existing sessions keep their client.
func (m *Manager) SetEndpoint(endpoint string) {
	if endpoint == "" {
		return
	}
	m.mu.Lock()
	old := m.endpoint
	m.endpoint = endpoint
	m.mu.Unlock()

	if old != endpoint {
		slog.Info("session.endpoint_changed", "from", old, "to", endpoint)
	}
}

// Create starts a new session with a fresh id.
func (m *Manager) Create() *Session {
	ep := m.Endpoint()
	s := &Session{
		ID:        uuid.NewString(),
		Endpoint:  ep,
		CreatedAt: time.Now(),
		broker:    kite.NewBroker(m.newCaller(ep)),
	}
	m.cache.Add(s.ID, s)
	slog.Debug("session.created", "session", s.ID, "endpoint", ep)
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return m.cache.Get(id)
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown or expired. created reports whether a new session was made.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := m.Get(id); ok {
		return s, false
	}
	return m.Create(), true
}

// Remove ends a session.
func (m *Manager) Remove(id string) bool {
	return m.cache.Remove(id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int { return m.cache.Len() }
