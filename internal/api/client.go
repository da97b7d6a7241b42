// Package api is the HTTP client for the scheduler server. It speaks
// the server's JSON envelope and classifies failures into the three
// kinds the rest of the client reacts to: auth expiry, business
// rejection, and transport trouble.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/kettle/taskdeck/internal/record"
	"github.com/kettle/taskdeck/internal/shared"
)

// ErrAuthExpired reports a 401 from the server. The session is gone;
// retrying the same request cannot help.
var ErrAuthExpired = errors.New("authentication expired")

const defaultTimeout = 15 * time.Second

// Envelope is the server's standard response wrapper. Some endpoints
// return a bare JSON array instead; FetchCollection accepts both.
type Envelope struct {
	Status string            `json:"status"`
	Text   string            `json:"text"`
	Result record.Collection `json:"result"`
}

// MutationResult reports one mutation's outcome. OK=false with a nil
// error is a business rejection: the server answered, and said no.
type MutationResult struct {
	OK      bool
	Message string
	Records record.Collection
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
		tracer:  nooptrace.NewTracerProvider().Tracer("taskdeck"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchCollection GETs a path and decodes the row collection, whether
// the server wrapped it in an envelope or sent a bare array.
func (c *Client) FetchCollection(ctx context.Context, path string) (record.Collection, error) {
	ctx, span := c.tracer.Start(ctx, "api.fetch_collection",
		trace.WithAttributes(attribute.String("http.route", path)))
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeCollection(body)
}

// FetchOne GETs a path expected to yield exactly one record. Endpoints
// answering single-resource polls return a one-element result.
func (c *Client) FetchOne(ctx context.Context, path string) (record.Record, error) {
	rows, err := c.FetchCollection(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty result from %s", path)
	}
	return rows[0], nil
}

// Mutate issues exactly one request and reports the outcome. There is
// no retry: the caller's next poll reveals the true state either way.
// An envelope with status "error" is a business rejection, returned
// as OK=false without a Go error.
func (c *Client) Mutate(ctx context.Context, method, path string, payload any) (MutationResult, error) {
	ctx, span := c.tracer.Start(ctx, "api.mutate",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		))
	defer span.End()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return MutationResult{}, fmt.Errorf("encode mutation payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return MutationResult{}, err
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Plain-text or empty body on success is accepted as-is.
		return MutationResult{OK: true, Message: strings.TrimSpace(string(raw))}, nil
	}
	if strings.EqualFold(env.Status, "error") {
		c.logger.Warn("mutation rejected", "path", path, "message", env.Text)
		return MutationResult{OK: false, Message: env.Text, Records: env.Result}, nil
	}
	return MutationResult{OK: true, Message: env.Text, Records: env.Result}, nil
}

// MutateConfirmed runs confirm before a destructive mutation and skips
// the request entirely when the user declines.
func (c *Client) MutateConfirmed(ctx context.Context, confirm func() bool, method, path string, payload any) (MutationResult, bool, error) {
	if confirm != nil && !confirm() {
		return MutationResult{}, false, nil
	}
	res, err := c.Mutate(ctx, method, path, payload)
	return res, true, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if traceID := shared.TraceID(ctx); traceID != "-" {
		req.Header.Set("X-Trace-Id", traceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrAuthExpired)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s %s: server returned %d: %s", method, path, resp.StatusCode, snippet(raw))
	}
	return raw, nil
}

func decodeCollection(raw []byte) (record.Collection, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows record.Collection
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode row array: %w", err)
		}
		return rows, nil
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if strings.EqualFold(env.Status, "error") {
		return nil, fmt.Errorf("server error: %s", env.Text)
	}
	return env.Result, nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
