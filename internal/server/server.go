// Package server wires the HTTP API: routing, middleware, and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/internal/config"
	apperrors "github.com/zvakanaka/orcaslicer-web/internal/errors"
	"github.com/zvakanaka/orcaslicer-web/internal/server/handlers"
	"github.com/zvakanaka/orcaslicer-web/internal/server/middleware"
	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/profilestore"
)

// Dependencies are the core components the API exposes.
type Dependencies struct {
	Store     *profilestore.Store
	Ingestor  *profile.Ingestor
	Scheduler handlers.Submitter
	Index     handlers.BaseIndexInfo

	// SlicerBinary is the engine path the health endpoint checks.
	SlicerBinary string
}

// Server is the HTTP front of the service.
type Server struct {
	cfg    config.ServerConfig
	logger *zap.Logger
	router chi.Router
}

// New builds a server with all routes registered.
func New(cfg config.ServerConfig, logger *zap.Logger, deps Dependencies) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{cfg: cfg, logger: logger}
	s.router = s.buildRouter(deps)
	return s
}

// Handler returns the root HTTP handler, usable directly in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter(deps Dependencies) chi.Router {
	health := handlers.NewHealthHandler(deps.SlicerBinary, deps.Index)
	profiles := handlers.NewProfilesHandler(deps.Store, deps.Ingestor, s.logger)
	slice := handlers.NewSliceHandler(deps.Scheduler, s.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.MaxBytes(s.cfg.MaxUploadBytes))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.Respond(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.Respond(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Health)

		r.Route("/profiles/{category}", func(r chi.Router) {
			r.Get("/", profiles.List)
			r.Post("/", profiles.Upload)
			r.Get("/{name}", profiles.Get)
			r.Put("/{name}", profiles.Replace)
			r.Patch("/{name}", profiles.Rename)
			r.Delete("/{name}", profiles.Delete)
		})

		r.Get("/slice/status", slice.Status)
		r.Post("/slice", slice.Slice)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server", zap.Duration("timeout", shutdownTimeout))
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
