package testutil

import (
	"net/http"

	"fieldsync/pkg/requestcontext"
)

// WithRequestID attaches a request ID without going through the middleware.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
