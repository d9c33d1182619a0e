package api

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the HTTP server with sane timeouts and graceful shutdown.
type Server struct {
	server *http.Server
}

// NewServer creates the API server.
func NewServer(addr string, h *Handlers, corsOrigins []string) *Server {
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      SetupRoutes(h, corsOrigins),
			ReadTimeout:  15 * time.Second,
			// Draft generation waits on the AI backend per buyer.
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// ListenAndServe starts serving until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
