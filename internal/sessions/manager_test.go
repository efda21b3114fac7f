package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
)

type fakeCaller struct {
	endpoint string
	result   *mcp.Result
}

func (f *fakeCaller) Call(context.Context, string, map[string]any) *mcp.Result {
	return f.result
}

func newTestManager(cfg Config) (*Manager, *[]string) {
	var mu sync.Mutex
	var built []string
	cfg.NewCaller = func(ep string) mcp.Caller {
		mu.Lock()
		built = append(built, ep)
		mu.Unlock()
		return &fakeCaller{endpoint: ep, result: mcp.NewResult(mcp.TextPayload("ok"))}
	}
	return NewManager(cfg), &built
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager(Config{Endpoint: "http://a/mcp"})

	s := m.Create()
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	got, ok := m.Get(s.ID)
	if !ok || got != s {
		t.Fatalf("expected to find session %s", s.ID)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session, got %d", m.Len())
	}
	if _, ok := m.Get(""); ok {
		t.Error("empty id must not resolve")
	}
	if !m.Remove(s.ID) {
		t.Error("expected Remove to report true")
	}
	if _, ok := m.Get(s.ID); ok {
		t.Error("session should be gone after Remove")
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	m, _ := newTestManager(Config{})

	s, created := m.GetOrCreate("unknown")
	if !created {
		t.Error("expected new session for unknown id")
	}
	again, created := m.GetOrCreate(s.ID)
	if created || again != s {
		t.Error("expected existing session to be reused")
	}
}

func TestManager_SetEndpointAffectsOnlyNewSessions(t *testing.T) {
	m, built := newTestManager(Config{Endpoint: "http://old/mcp"})

	first := m.Create()
	m.SetEndpoint("http://new/mcp")
	second := m.Create()

	if first.Endpoint != "http://old/mcp" {
		t.Errorf("existing session endpoint changed to %s", first.Endpoint)
	}
	if second.Endpoint != "http://new/mcp" {
		t.Errorf("expected new endpoint, got %s", second.Endpoint)
	}
	if first.Broker().Caller().(*fakeCaller).endpoint != "http://old/mcp" {
		t.Error("existing session's caller was rebuilt")
	}
	if len(*built) != 2 {
		t.Errorf("expected 2 callers built, got %d", len(*built))
	}

	m.SetEndpoint("")
	if m.Endpoint() != "http://new/mcp" {
		t.Errorf("empty endpoint must be ignored, got %s", m.Endpoint())
	}
}

func TestManager_DefaultEndpoint(t *testing.T) {
	m := NewManager(Config{})
	if m.Endpoint() != mcp.DefaultEndpoint {
		t.Errorf("expected %s, got %s", mcp.DefaultEndpoint, m.Endpoint())
	}
	s := m.Create()
	if c, ok := s.Broker().Caller().(*mcp.Client); !ok || c.Endpoint() != mcp.DefaultEndpoint {
		t.Error("expected default client bound to default endpoint")
	}
}

func TestManager_EvictsBeyondCapacity(t *testing.T) {
	m, _ := newTestManager(Config{MaxSessions: 2})

	a := m.Create()
	m.Create()
	m.Create()

	if m.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Len())
	}
	if _, ok := m.Get(a.ID); ok {
		t.Error("oldest session should have been evicted")
	}
}

func TestManager_Expires(t *testing.T) {
	m, _ := newTestManager(Config{TTL: 20 * time.Millisecond})
	s := m.Create()
	time.Sleep(60 * time.Millisecond)
	if _, ok := m.Get(s.ID); ok {
		t.Error("session should have expired")
	}
}

func TestSession_RefreshProfile(t *testing.T) {
	caller := &fakeCaller{result: mcp.NewResult(mcp.StructuredPayload([]byte(`{"user_id":"AB1234"}`)))}
	m := NewManager(Config{NewCaller: func(string) mcp.Caller { return caller }})
	s := m.Create()

	if s.Authenticated() {
		t.Fatal("new session must start unauthenticated")
	}
	s.RefreshProfile(context.Background())
	if !s.Authenticated() {
		t.Error("expected authenticated after successful profile")
	}

	caller.result = mcp.ErrorResult(mcp.KindHTTPStatus, "HTTP 401: unauthorized")
	s.RefreshProfile(context.Background())
	if s.Authenticated() {
		t.Error("expected unauthenticated after failed profile")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil session on bare context")
	}
	s := &Session{ID: "x"}
	if got := FromContext(WithSession(context.Background(), s)); got != s {
		t.Error("expected session round-trip through context")
	}
}
