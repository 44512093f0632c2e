// Package diag exposes a small local HTTP surface for operating the client:
// liveness, Prometheus metrics, and cache statistics.
package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/cache/memory"
)

// Server is the diagnostics HTTP server.
type Server struct {
	memStore *memory.Store
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a diagnostics server over the transient cache tier.
func NewServer(memStore *memory.Store, logger *zap.Logger) *Server {
	return &Server{
		memStore: memStore,
		logger:   logger,
	}
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.createRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting diagnostics server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping diagnostics server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) createRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/cache/stats", s.handleCacheStats).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	entries, capacityBytes := s.memStore.Stats()
	s.writeResponse(w, map[string]interface{}{
		"entries":        entries,
		"capacity_bytes": capacityBytes,
	})
}

func (s *Server) writeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
