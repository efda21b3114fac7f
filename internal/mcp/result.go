package mcp

import (
	"encoding/json"
	"errors"
)

// PayloadKind tags which shape a Payload carries.
type PayloadKind uint8

const (
	PayloadAbsent PayloadKind = iota
	PayloadStructured
	PayloadText
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadStructured:
		return "structured"
	case PayloadText:
		return "text"
	default:
		return "absent"
	}
}

// Payload is the data returned by a successful tool call: either a parsed
// JSON value, the raw text when the tool output is not JSON, or nothing.
type Payload struct {
	kind  PayloadKind
	raw   json.RawMessage
	value any
	text  string
}

// ErrNotStructured is returned by Payload.Decode when the payload is not JSON.
var ErrNotStructured = errors.New("payload is not structured")

// parsePayload classifies tool output text. Text that parses as JSON becomes
// a structured payload; anything else is kept verbatim.
func parsePayload(text string) Payload {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return TextPayload(text)
	}
	return Payload{kind: PayloadStructured, raw: json.RawMessage(text), value: v}
}

// TextPayload wraps opaque tool output.
func TextPayload(s string) Payload {
	return Payload{kind: PayloadText, text: s}
}

// StructuredPayload wraps an already-encoded JSON value. It returns an
// absent payload if raw is not valid JSON.
func StructuredPayload(raw []byte) Payload {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Payload{}
	}
	return Payload{kind: PayloadStructured, raw: append(json.RawMessage(nil), raw...), value: v}
}

func (p Payload) Kind() PayloadKind { return p.kind }

// Structured returns the decoded JSON value (maps, slices, float64, string,
// bool or nil) when the payload is structured.
func (p Payload) Structured() (any, bool) {
	if p.kind != PayloadStructured {
		return nil, false
	}
	return p.value, true
}

// Raw returns the JSON bytes of a structured payload, nil otherwise.
func (p Payload) Raw() json.RawMessage {
	if p.kind != PayloadStructured {
		return nil
	}
	return p.raw
}

// Text returns the verbatim tool output when the payload is plain text.
func (p Payload) Text() (string, bool) {
	if p.kind != PayloadText {
		return "", false
	}
	return p.text, true
}

// Decode unmarshals a structured payload into v.
func (p Payload) Decode(v any) error {
	if p.kind != PayloadStructured {
		return ErrNotStructured
	}
	return json.Unmarshal(p.raw, v)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case PayloadStructured:
		return p.raw, nil
	case PayloadText:
		return json.Marshal(p.text)
	default:
		return []byte("null"), nil
	}
}

// ErrorKind classifies why a call failed. The error text is the same
// regardless of kind; the kind only lets callers branch without parsing it.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindRequest
	KindTransport
	KindHTTPStatus
	KindEnvelope
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindEnvelope:
		return "envelope"
	default:
		return ""
	}
}

// Result is the uniform outcome of a tool call. Exactly one of Data or
// Error is meaningful: Success implies Error == "", failure implies an
// absent Data and a non-empty Error.
type Result struct {
	Success bool
	Data    Payload
	Error   string
	Kind    ErrorKind
}

// NewResult builds a successful result.
func NewResult(data Payload) *Result {
	return &Result{Success: true, Data: data}
}

// ErrorResult builds a failed result.
func ErrorResult(kind ErrorKind, message string) *Result {
	return &Result{Error: message, Kind: kind}
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success   bool    `json:"success"`
		Data      Payload `json:"data"`
		Error     string  `json:"error,omitempty"`
		ErrorKind string  `json:"errorKind,omitempty"`
	}{r.Success, r.Data, r.Error, r.Kind.String()})
}
