package kernel

import "context"

// ContextKey namespaces values stored in context.Context
type ContextKey string

const (
	// RequestIDKey holds the X-Request-ID of the current request
	RequestIDKey ContextKey = "request_id"
)

// WithRequestID returns a copy of ctx carrying id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id stored in ctx, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
