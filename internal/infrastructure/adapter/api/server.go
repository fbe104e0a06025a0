// Package api serves the HTTP liveness and readiness probes behind `atm serve`.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
)

// ServerConfig holds the listener settings
type ServerConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// Server wraps http.Server with context driven shutdown
type Server struct {
	config ServerConfig
	server *http.Server
	logger coreport.Logger
}

// NewServer creates a server for handler
func NewServer(config ServerConfig, handler http.Handler, logger coreport.Logger) *Server {
	return &Server{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:              config.Addr(),
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			IdleTimeout:       config.IdleTimeout,
		},
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve handles requests on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting probe server", map[string]any{
			"addr": listener.Addr().String(),
		})
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("probe server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down probe server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Probe server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("Probe server exited gracefully", nil)
	return nil
}
