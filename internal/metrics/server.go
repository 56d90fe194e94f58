package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/flowmesh/objectstore/internal/logger"
)

// HealthFunc reports whether the served process is healthy
type HealthFunc func(ctx context.Context) error

// Server is a standalone HTTP server for metrics and health checks
type Server struct {
	httpServer *http.Server
	addr       string
	path       string
	registry   *prometheus.Registry
	health     HealthFunc
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewServer creates a metrics server. An empty path serves /metrics; a nil
// health func always reports healthy.
func NewServer(addr, path string, registry *prometheus.Registry, health HealthFunc) *Server {
	if path == "" {
		path = "/metrics"
	}
	return &Server{
		addr:     addr,
		path:     path,
		registry: registry,
		health:   health,
		log:      logger.WithComponent("metrics.server"),
	}
}

// Handler builds the router served by the server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.registry != nil {
		r.Handle(s.path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle(s.path, promhttp.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if s.health != nil {
			if err := s.health(req.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", ln.Addr().String()).Str("path", s.path).Msg("Metrics server started")

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		_ = s.httpServer.Close()
		return err
	}

	s.ready = false
	s.log.Info().Msg("Metrics server stopped")

	return nil
}

// Ready returns true if the server is serving
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}
