package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

type fakeSource struct {
	calls atomic.Int32
	fail  string
}

func (f *fakeSource) GetLTP(_ context.Context, instruments []string) *mcp.Result {
	f.calls.Add(1)
	if f.fail != "" {
		return mcp.ErrorResult(mcp.KindHTTPStatus, f.fail)
	}
	return mcp.NewResult(mcp.StructuredPayload([]byte(`{"NSE:INFY":{"last_price":1650.5}}`)))
}

type wireFrame struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Seq     int64           `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

func startServer(t *testing.T, ctx context.Context, src LTPSource) (*websocket.Conn, chan struct{}) {
	t.Helper()
	done := make(chan struct{})
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		w := NewWatcher(conn, src, []string{"NSE:INFY"}, 0)
		w.Run(ctx)
		close(done)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, done
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var f wireFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestWatcher_PushesLTPImmediately(t *testing.T) {
	src := &fakeSource{}
	conn, done := startServer(t, context.Background(), src)

	f := readFrame(t, conn)
	if f.Type != protocol.FrameTypeEvent || f.Event != protocol.EventLTP {
		t.Fatalf("expected ltp event, got %+v", f)
	}
	if f.Seq != 1 {
		t.Errorf("expected seq 1, got %d", f.Seq)
	}

	var p struct {
		Instruments []string `json:"instruments"`
		Result      struct {
			Success bool           `json:"success"`
			Data    map[string]any `json:"data"`
		} `json:"result"`
	}
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !p.Result.Success || p.Result.Data["NSE:INFY"] == nil {
		t.Errorf("unexpected payload %s", f.Payload)
	}
	if len(p.Instruments) != 1 || p.Instruments[0] != "NSE:INFY" {
		t.Errorf("unexpected instruments %v", p.Instruments)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after client close")
	}
}

func TestWatcher_ShutdownEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn, done := startServer(t, ctx, &fakeSource{})

	if f := readFrame(t, conn); f.Event != protocol.EventLTP {
		t.Fatalf("expected ltp first, got %s", f.Event)
	}
	cancel()

	if f := readFrame(t, conn); f.Event != protocol.EventShutdown {
		t.Errorf("expected shutdown event, got %s", f.Event)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_PollFailureSendsErrorEvent(t *testing.T) {
	src := &fakeSource{fail: "HTTP 502: bad gateway"}
	conn, _ := startServer(t, context.Background(), src)

	f := readFrame(t, conn)
	if f.Event != protocol.EventError {
		t.Fatalf("expected error event, got %s", f.Event)
	}
	var shape protocol.ErrorShape
	if err := json.Unmarshal(f.Payload, &shape); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if shape.Code != protocol.ErrUnavailable || !shape.Retryable {
		t.Errorf("unexpected error shape %+v", shape)
	}
	if !strings.Contains(shape.Message, "502") {
		t.Errorf("expected status in message, got %q", shape.Message)
	}
	if shape.RetryAfterMs != int(DefaultInterval.Milliseconds()) {
		t.Errorf("expected retry after %d, got %d", DefaultInterval.Milliseconds(), shape.RetryAfterMs)
	}
}

func TestClampInterval(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultInterval},
		{time.Second, MinInterval},
		{10 * time.Second, 10 * time.Second},
		{5 * time.Minute, MaxInterval},
	}
	for _, tt := range tests {
		if got := ClampInterval(tt.in); got != tt.want {
			t.Errorf("ClampInterval(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
