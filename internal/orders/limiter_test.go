package orders

import (
	"errors"
	"testing"
	"time"
)

func TestNewLimiter_Disabled(t *testing.T) {
	for _, n := range []int{0, -5} {
		if l := NewLimiter(n); l != nil {
			t.Errorf("expected nil for maxPerHour=%d, got %v", n, l)
		}
	}

	var l *Limiter
	if err := l.Allow("session"); err != nil {
		t.Errorf("nil limiter should allow, got %v", err)
	}
	l.Cleanup() // must not panic
}

func TestLimiter_AllowUnderLimit(t *testing.T) {
	l := NewLimiter(5)
	for i := 0; i < 5; i++ {
		if err := l.Allow("s1"); err != nil {
			t.Errorf("order %d should be allowed: %v", i, err)
		}
	}
}

func TestLimiter_BlockOverLimit(t *testing.T) {
	l := NewLimiter(3)
	for i := 0; i < 3; i++ {
		if err := l.Allow("s1"); err != nil {
			t.Fatalf("order %d should be allowed: %v", i, err)
		}
	}

	err := l.Allow("s1")
	if err == nil {
		t.Fatal("4th order should be blocked")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestLimiter_SeparateKeys(t *testing.T) {
	l := NewLimiter(2)
	l.Allow("s1")
	l.Allow("s1")

	if err := l.Allow("s1"); err == nil {
		t.Error("s1 should be blocked")
	}
	if err := l.Allow("s2"); err != nil {
		t.Errorf("s2 should be allowed: %v", err)
	}
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := &Limiter{
		windows:  make(map[string][]time.Time),
		maxPerHr: 2,
		window:   100 * time.Millisecond,
	}

	l.Allow("s1")
	l.Allow("s1")
	if err := l.Allow("s1"); err == nil {
		t.Error("should be blocked at limit")
	}

	time.Sleep(150 * time.Millisecond)

	if err := l.Allow("s1"); err != nil {
		t.Errorf("should be allowed after window expiry: %v", err)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := &Limiter{
		windows:  make(map[string][]time.Time),
		maxPerHr: 10,
		window:   50 * time.Millisecond,
	}

	l.Allow("s1")
	l.Allow("s2")

	time.Sleep(100 * time.Millisecond)
	l.Cleanup()

	l.mu.Lock()
	count := len(l.windows)
	l.mu.Unlock()

	if count != 0 {
		t.Errorf("cleanup should remove all expired keys, got %d", count)
	}
}

func TestLimiter_CleanupPartial(t *testing.T) {
	l := &Limiter{
		windows:  make(map[string][]time.Time),
		maxPerHr: 10,
		window:   200 * time.Millisecond,
	}

	l.Allow("s1") // will expire
	time.Sleep(100 * time.Millisecond)
	l.Allow("s1") // still fresh

	time.Sleep(150 * time.Millisecond)
	l.Cleanup()

	l.mu.Lock()
	entries := len(l.windows["s1"])
	l.mu.Unlock()

	if entries != 1 {
		t.Errorf("expected 1 remaining entry, got %d", entries)
	}
}
