// Package ui serves comparison reports from the history store over HTTP.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dbdiff/internal/state"
)

// Server is the report server.
type Server struct {
	store  state.Store
	addr   string
	logger *slog.Logger
}

// Config holds configuration for the report server.
type Config struct {
	Store  state.Store
	Addr   string
	Logger *slog.Logger
}

// NewServer creates a new report server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		store:  cfg.Store,
		addr:   cfg.Addr,
		logger: logger,
	}
}

// Serve starts the report server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting report server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	s.setupRoutes(r)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down report server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Handler returns the configured HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)
	s.setupRoutes(r)
	return r
}

func (s *Server) setupRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/latest", s.handleLatestRun)
	r.Get("/api/runs/{id}", s.handleGetRun)
}
