// Package protocol defines the JSON shapes the dashboard API puts on the
// wire: error bodies for HTTP responses and event frames for the live
// WebSocket stream.
package protocol

import "time"

const FrameTypeEvent = "event"

// ErrorShape is the body of every non-2xx API response.
type ErrorShape struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
	RetryAfterMs int    `json:"retryAfterMs,omitempty"`
}

// ErrorBody wraps an ErrorShape as {"error": {...}}.
type ErrorBody struct {
	Error *ErrorShape `json:"error"`
}

func NewError(code, message string) *ErrorShape {
	return &ErrorShape{Code: code, Message: message}
}

// EventFrame is pushed from server to client without a preceding request.
type EventFrame struct {
	Type    string `json:"type"` // always "event"
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
	TS      int64  `json:"ts"` // unix millis
}

func NewEvent(event string, payload any) *EventFrame {
	return &EventFrame{
		Type:    FrameTypeEvent,
		Event:   event,
		Payload: payload,
		TS:      time.Now().UnixMilli(),
	}
}

// SessionPayload announces the session a stream is bound to.
type SessionPayload struct {
	SessionID     string `json:"session_id"`
	Endpoint      string `json:"endpoint"`
	Authenticated bool   `json:"authenticated"`
}

// LTPPayload carries one poll of last traded prices. Result is the tool
// result as returned by the server.
type LTPPayload struct {
	Instruments []string `json:"instruments"`
	Result      any      `json:"result"`
}
