// Package watch streams last traded prices to a dashboard over WebSocket.
package watch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/kitedash/internal/mcp"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

const (
	MinInterval     = 5 * time.Second
	MaxInterval     = 60 * time.Second
	DefaultInterval = 30 * time.Second

	// Clients only send control frames, so reads stay small.
	maxMessageSize = 4 * 1024
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	sendBuffer     = 16
)

// ClampInterval bounds d to [MinInterval, MaxInterval]; zero means default.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	default:
		return d
	}
}

// LTPSource fetches last traded prices. *kite.Broker satisfies it.
type LTPSource interface {
	GetLTP(ctx context.Context, instruments []string) *mcp.Result
}

// Watcher owns one WebSocket connection and its poll loop.
type Watcher struct {
	id          string
	conn        *websocket.Conn
	source      LTPSource
	instruments []string
	interval    time.Duration
	send        chan []byte
	seq         int64
}

func NewWatcher(conn *websocket.Conn, source LTPSource, instruments []string, interval time.Duration) *Watcher {
	return &Watcher{
		id:          uuid.NewString(),
		conn:        conn,
		source:      source,
		instruments: instruments,
		interval:    ClampInterval(interval),
		send:        make(chan []byte, sendBuffer),
	}
}

func (w *Watcher) ID() string { return w.id }

// Interval is the effective poll period after clamping.
func (w *Watcher) Interval() time.Duration { return w.interval }

// Send queues an event frame. Frames are dropped when the client is not
// keeping up. Send must not be called after Run returns.
func (w *Watcher) Send(f *protocol.EventFrame) {
	w.seq++
	f.Seq = w.seq
	data, err := json.Marshal(f)
	if err != nil {
		slog.Error("watch.marshal_failed", "watcher", w.id, "error", err)
		return
	}
	select {
	case w.send <- data:
	default:
		slog.Warn("watch.send_buffer_full", "watcher", w.id, "event", f.Event)
	}
}

// Run polls and streams until the client disconnects or ctx is cancelled.
// On cancellation a shutdown event is sent before the connection closes.
func (w *Watcher) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeDone := make(chan struct{})
	readDone := make(chan struct{})
	pollDone := make(chan struct{})

	go func() { defer close(writeDone); w.writePump() }()
	go func() { defer close(readDone); w.readPump() }()
	go func() { defer close(pollDone); w.pollLoop(ctx) }()

	slog.Info("watch.started", "watcher", w.id, "instruments", len(w.instruments), "interval", w.interval)

	select {
	case <-readDone:
		cancel()
		<-pollDone
	case <-ctx.Done():
		<-pollDone
		w.Send(protocol.NewEvent(protocol.EventShutdown, nil))
	}

	close(w.send)
	<-writeDone
	w.conn.Close()
	<-readDone

	slog.Info("watch.stopped", "watcher", w.id)
}

func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	res := w.source.GetLTP(ctx, w.instruments)
	if ctx.Err() != nil {
		return
	}
	if !res.Success {
		msg := mcp.ScrubCredentials(res.Error)
		slog.Debug("watch.poll_failed", "watcher", w.id, "error", msg)
		shape := protocol.NewError(protocol.ErrUnavailable, msg)
		shape.Retryable = true
		shape.RetryAfterMs = int(w.interval.Milliseconds())
		w.Send(protocol.NewEvent(protocol.EventError, shape))
		return
	}
	w.Send(protocol.NewEvent(protocol.EventLTP, protocol.LTPPayload{
		Instruments: w.instruments,
		Result:      res,
	}))
}

// readPump only services control frames; data frames from the client are ignored.
func (w *Watcher) readPump() {
	w.conn.SetReadLimit(maxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("watch.read_error", "watcher", w.id, "error", err)
			}
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (w *Watcher) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-w.send:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				w.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				w.drain()
				return
			}

		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.drain()
				return
			}
		}
	}
}

// drain discards queued frames after a write failure so Run can close send.
func (w *Watcher) drain() {
	w.conn.Close()
	for range w.send {
	}
}
