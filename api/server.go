// Package api serves the processor's ops endpoints: health and metrics.
// The swap data itself is queried from the store by the external API
// layer; this server only answers whether the processor is alive and how
// far behind it is.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apimiddleware "github.com/swapstream/processor-go/api/middleware"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// Server is the ops HTTP server.
type Server struct {
	config *Config
	logger *zap.Logger
	store  *storage.Store
	router *chi.Mux
	server *http.Server
}

// NewServer creates an ops server over the given store.
func NewServer(config *Config, logger *zap.Logger, store *storage.Store) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		logger: logger,
		store:  store,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(apimiddleware.RequestLogger(logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         config.Address(),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s, nil
}

// HealthResponse is the health check payload. Lag is measured against the
// newest tracked external chain block; a processor that stopped applying
// blocks shows a growing lag even though the process is up.
type HealthResponse struct {
	Status       string    `json:"status"`
	CursorHeight uint64    `json:"cursorHeight"`
	LastBlockAt  time.Time `json:"lastBlockAt,omitempty"`
	LagSeconds   float64   `json:"lagSeconds,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var height uint64
	var lastBlockAt time.Time

	err := s.store.View(func(tx *storage.Tx) error {
		var err error
		height, err = tx.LoadCursor(0)
		if err != nil {
			return err
		}
		for _, chain := range types.Chains {
			tracking, err := tx.GetChainTracking(chain)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return err
			}
			if tracking.BlockTrackedAt.After(lastBlockAt) {
				lastBlockAt = tracking.BlockTrackedAt
			}
		}
		return nil
	})

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error"})
		return
	}

	response := HealthResponse{
		Status:       "ok",
		CursorHeight: height,
		Timestamp:    time.Now().UTC(),
	}
	if !lastBlockAt.IsZero() {
		response.LastBlockAt = lastBlockAt
		response.LagSeconds = time.Since(lastBlockAt).Seconds()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Start starts the ops server and blocks until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting ops server", zap.String("address", s.config.Address()))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the ops server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping ops server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router returns the underlying chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
