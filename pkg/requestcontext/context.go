// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and audit read them
// without importing net/http.
package requestcontext

import (
	"context"
)

type (
	requestIDKey struct{}
	workerIDKey  struct{}
)

// RequestID returns the request ID, or "" when unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// WorkerID returns the ASHA worker acting in this request, or "" when unset.
func WorkerID(ctx context.Context) string {
	if v, ok := ctx.Value(workerIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithWorkerID(ctx context.Context, workerID string) context.Context {
	return context.WithValue(ctx, workerIDKey{}, workerID)
}
