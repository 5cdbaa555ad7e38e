// Package core provides the API chassis for the risk scoring service.
// It creates a chi router and enforces cross-cutting concerns -- panic
// recovery, request correlation, logging, and error handling -- before
// requests reach domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskradar/internal/config"
)

// RouteRegistrar mounts a handler's routes onto a router group. The
// application entry point populates Server.V1RouteRegistrars with these to
// avoid import cycles between core and handler packages.
type RouteRegistrar func(chi.Router)

// Server encapsulates all dependencies for the API, allowing for easy
// injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator

	// HealthProbes are checked concurrently by the /health endpoint.
	HealthProbes []HealthProbe

	// V1RouteRegistrars are mounted under /v1 by MountRoutes.
	V1RouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a fail-fast check on critical
// dependencies.
//
// The caller is responsible for mounting routes (via MountRoutes) after
// construction. This separation allows tests to customize route registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources. Closeable
// dependencies (the connection pool, caches) are owned and closed by the
// entry point; the chassis only reports the transition.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")
	s.Logger.Info("server shutdown complete")
	return nil
}
