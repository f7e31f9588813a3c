// Package api serves the development backend's HTTP JSON API: the auth
// endpoints consumed by the client shell, a protected greeting, health
// and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address               string
	users                 *users.Service
	logger                logging.Logger
	metrics               *Metrics
	registry              *prometheus.Registry
	tokenValidityDuration time.Duration
}

func NewServer(a string, l logging.Logger, us *users.Service, tokenValidity time.Duration) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		address:               a,
		logger:                l.With("module", "http_server"),
		users:                 us,
		metrics:               NewMetrics(reg),
		registry:              reg,
		tokenValidityDuration: tokenValidity,
	}
}

// Metrics exposes the request counters, mainly for tests.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.Login)
		r.Post("/register", s.Register)
		r.Post("/logout", s.Logout)
		r.With(s.requireUser).Get("/me", s.Me)
	})

	r.With(s.requireUser).Post("/api/hello", s.Hello)

	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
