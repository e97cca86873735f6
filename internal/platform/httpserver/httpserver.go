// Package httpserver constructs the process's HTTP listener. Only
// listener-wide settings live here; per-route deadlines are a middleware
// concern.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server for addr. ReadHeaderTimeout is set so a client
// cannot hold a connection open by trickling headers; body timeouts are left
// to the router's timeout middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
