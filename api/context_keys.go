package api

import (
	"context"
	"encoding/json"
	"time"
)

// contextKey is a private type to prevent context key collisions across packages.
// This addresses staticcheck SA1029: should not use built-in type string as key for value.
type contextKey string

const (
	// ContextKeyRequestID stores the unique request identifier (string)
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyTraceStart stores the request start time (time.Time)
	ContextKeyTraceStart contextKey = "trace_start"

	// ContextKeyJSONBody stores the parsed JSON request body (json.RawMessage)
	ContextKeyJSONBody contextKey = "json_body"
)

// GetRequestID extracts the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// GetRequestIDOrDefault extracts the request ID from the context or returns "unknown".
func GetRequestIDOrDefault(ctx context.Context) string {
	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		return requestID
	}
	return "unknown"
}

// WithRequestID creates a new context with the request ID value.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetTraceStart extracts the request start time from the context
func GetTraceStart(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(ContextKeyTraceStart).(time.Time)
	return start, ok
}

// WithTraceStart creates a new context with the request start time
func WithTraceStart(ctx context.Context, start time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyTraceStart, start)
}

// JSONBody returns the request body captured by the JSON body middleware.
// Route groups use it instead of decoding r.Body a second time.
func JSONBody(ctx context.Context) (json.RawMessage, bool) {
	body, ok := ctx.Value(ContextKeyJSONBody).(json.RawMessage)
	return body, ok
}

// WithJSONBody creates a new context carrying a parsed JSON body
func WithJSONBody(ctx context.Context, body json.RawMessage) context.Context {
	return context.WithValue(ctx, ContextKeyJSONBody, body)
}
