// Package mcp implements the client side of the remote tool-invocation
// protocol: one HTTP POST per tool call, with the response envelope
// normalized into a Result.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultEndpoint   = "http://localhost:8080/mcp"
	DefaultTimeoutSec = 30

	// InvalidResponseFormat is the error text for every malformed 200 response.
	InvalidResponseFormat = "Invalid response format"

	tracerName = "github.com/nextlevelbuilder/kitedash/internal/mcp"
)

// Caller performs one remote tool invocation.
type Caller interface {
	Call(ctx context.Context, toolName string, args map[string]any) *Result
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint       string
	TimeoutSec     int
	HTTPClient     *http.Client        // optional; its Timeout is overwritten
	TracerProvider trace.TracerProvider // optional; defaults to the global provider
}

// Client talks to a tool server at a fixed endpoint. Its configuration is
// never mutated after construction, so concurrent calls are independent.
type Client struct {
	endpoint   string
	headers    http.Header
	httpClient *http.Client
	timeoutSec int
	tracer     trace.Tracer
}

// NewClient creates a Client, applying defaults for empty fields.
func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeoutSec := cfg.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = DefaultTimeoutSec
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		hc = &copied
	}
	hc.Timeout = time.Duration(timeoutSec) * time.Second

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	return &Client{
		endpoint:   endpoint,
		headers:    headers,
		httpClient: hc,
		timeoutSec: timeoutSec,
		tracer:     tp.Tracer(tracerName),
	}
}

// Endpoint returns the configured server URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration { return time.Duration(c.timeoutSec) * time.Second }

// Call invokes toolName with args. It never returns nil and never panics on
// remote misbehaviour: every failure is folded into the Result.
func (c *Client) Call(ctx context.Context, toolName string, args map[string]any) *Result {
	ctx, span := c.tracer.Start(ctx, "mcp."+string(mcpgo.MethodToolsCall),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("mcp.tool.name", toolName)),
	)
	defer span.End()

	result, status := c.call(ctx, toolName, args)

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if result.Success {
		span.SetAttributes(attribute.String("mcp.payload.kind", result.Data.Kind().String()))
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetAttributes(attribute.String("mcp.error.kind", result.Kind.String()))
		span.SetStatus(codes.Error, ScrubCredentials(result.Error))
	}
	return result
}

func (c *Client) call(ctx context.Context, toolName string, args map[string]any) (*Result, int) {
	body, err := json.Marshal(newCallRequest(toolName, args))
	if err != nil {
		return ErrorResult(KindRequest, fmt.Sprintf("encode %s request: %v", toolName, err)), 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.transportFailure(toolName, err), 0
	}
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(toolName, err), 0
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(toolName, err), resp.StatusCode
	}

	if resp.StatusCode != http.StatusOK {
		return ErrorResult(KindHTTPStatus, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, respBody)), resp.StatusCode
	}

	text, err := firstText(respBody)
	if err != nil {
		slog.Debug("mcp.invalid_envelope", "tool", toolName, "cause", err)
		return ErrorResult(KindEnvelope, InvalidResponseFormat), resp.StatusCode
	}

	return NewResult(parsePayload(text)), resp.StatusCode
}

func (c *Client) transportFailure(toolName string, err error) *Result {
	slog.Error("mcp.request_failed",
		"tool", toolName,
		"endpoint", c.endpoint,
		"error", ScrubCredentials(err.Error()),
	)
	return ErrorResult(KindTransport, err.Error())
}
