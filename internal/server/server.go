package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/handlers"
)

// Handlers bundles everything the HTTP surface exposes
type Handlers struct {
	Health    *handlers.HealthHandler
	Jobs      *handlers.JobHandler
	Track     *handlers.TrackHandler
	Keywords  *handlers.KeywordHandler
	SSE       *handlers.SSEHandler
	WebSocket *handlers.WebSocketHandler
}

// Server wraps the HTTP listener and route table
type Server struct {
	config     common.ServerConfig
	logger     arbor.ILogger
	httpServer *http.Server
}

// New builds the server with all routes registered
func New(config common.ServerConfig, h Handlers, logger arbor.ILogger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health.Health)

	mux.HandleFunc("POST /api/tracking/run", h.Track.Run)
	mux.HandleFunc("GET /api/tracking/jobs", h.Jobs.ListJobs)
	mux.HandleFunc("GET /api/tracking/jobs/{id}", h.Jobs.GetJob)
	mux.HandleFunc("GET /api/tracking/stream", h.SSE.Stream)

	mux.HandleFunc("POST /api/keywords", h.Keywords.Create)
	mux.HandleFunc("GET /api/keywords", h.Keywords.List)
	mux.HandleFunc("DELETE /api/keywords/{id}", h.Keywords.Delete)
	mux.HandleFunc("GET /api/rankings/{id}", h.Keywords.History)

	mux.HandleFunc("GET /ws/events", h.WebSocket.Stream)

	return &Server{
		config: config,
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:           withRecovery(withRequestLogging(mux, logger), logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving HTTP until the listener closes
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
