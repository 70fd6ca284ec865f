package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server. Write timeout leaves room for a full sync run or
// a language download, both of which are served synchronously.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
