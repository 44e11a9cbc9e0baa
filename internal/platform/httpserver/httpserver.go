package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server for the bridge. There is no write timeout: method
// calls are held open until the verification attempt resolves.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
