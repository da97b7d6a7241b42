package shared

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}
type viewIDKey struct{}

// WithTraceID attaches a trace_id to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceID extracts trace_id from context. Returns "-" if absent.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok && v != "" {
		return v
	}
	return "-"
}

// NewTraceID generates a new trace_id.
func NewTraceID() string {
	return uuid.NewString()
}

// WithViewID attaches the originating view identity to the context so
// log lines and request headers can be correlated to one table.
func WithViewID(ctx context.Context, viewID string) context.Context {
	return context.WithValue(ctx, viewIDKey{}, viewID)
}

// ViewID extracts the view identity from context. Returns "" if absent.
func ViewID(ctx context.Context) string {
	if v, ok := ctx.Value(viewIDKey{}).(string); ok {
		return v
	}
	return ""
}
