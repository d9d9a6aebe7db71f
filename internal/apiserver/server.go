// Package apiserver exposes the analysis service over HTTP.
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/moolen/casa/internal/api"
	"github.com/moolen/casa/internal/logging"
	"github.com/moolen/casa/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
)

// Server handles HTTP API requests and implements lifecycle.Component
type Server struct {
	port     int
	server   *http.Server
	router   *http.ServeMux
	handlers *api.Handlers
	gatherer prometheus.Gatherer
	logger   *logging.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates an API server for svc. A nil gatherer disables /metrics.
func New(port int, svc api.AnalysisService, gatherer prometheus.Gatherer) *Server {
	logger := logging.GetLogger("api")
	s := &Server{
		port:     port,
		router:   http.NewServeMux(),
		handlers: api.NewHandlers(svc, logger, tracing.Tracer("casa/api")),
		gatherer: gatherer,
		logger:   logger,
	}

	s.registerHandlers()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.requestIDMiddleware(s.corsMiddleware(s.router))
}

// Start begins listening in the background
func (s *Server) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	s.logger.Info("API server listening on %s", ln.Addr())
	return nil
}

// Stop gracefully shuts the HTTP server down within ctx
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error: %v", err)
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}

// Name implements lifecycle.Component
func (s *Server) Name() string {
	return "api-server"
}

// Addr returns the bound address once started, or the configured one
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}
