package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/crossrealm/xrealmd/internal/logger"
	"github.com/crossrealm/xrealmd/pkg/config"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	srv *http.Server
}

// NewServer builds the HTTP server from configuration and a router.
func NewServer(cfg config.APIConfig, handler http.Handler) *Server {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start serves HTTP until Shutdown is called. A closed-server return is
// treated as a clean exit.
func (s *Server) Start() error {
	logger.Info("API server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
