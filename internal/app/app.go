package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/handlers"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/server"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/browser"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/events"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/scheduler"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/scraper"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/tracker"
	badgerstore "github.com/balma1115/marketingplatformproject-sub003/internal/storage/badger"
)

// App is the composition root: it owns every service and tears them down in
// reverse dependency order.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Storage      *badgerstore.Manager
	Broadcaster  *events.Broadcaster
	Pool         *browser.Pool
	Manager      *tracker.Manager
	Orchestrator *tracker.Orchestrator
	Scheduler    *scheduler.Scheduler
	Server       *server.Server

	cancelScheduler context.CancelFunc
}

// New wires the full service graph from configuration
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badgerstore.NewManager(config.Storage.Badger, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	broadcaster := events.NewBroadcaster(config.Events.BufferSize, logger)
	pool := browser.NewPool(config.Browser, logger)

	scrapers := []interfaces.ScraperService{
		scraper.NewPlaceScraper(pool, logger, config),
		scraper.NewBlogScraper(pool, logger, config),
	}

	manager := tracker.NewManager(broadcaster, logger)
	orchestrator := tracker.NewOrchestrator(manager, broadcaster, storage, scrapers, config.Tracking, logger)
	sched := scheduler.NewScheduler(orchestrator, config.Scheduler, logger)

	httpHandlers := server.Handlers{
		Health:    handlers.NewHealthHandler(),
		Jobs:      handlers.NewJobHandler(manager, logger),
		Track:     handlers.NewTrackHandler(orchestrator, logger),
		Keywords:  handlers.NewKeywordHandler(storage.KeywordStorage(), storage.RankStorage(), logger),
		SSE:       handlers.NewSSEHandler(manager, broadcaster, config.Events.HeartbeatInterval, logger),
		WebSocket: handlers.NewWebSocketHandler(broadcaster, logger),
	}
	srv := server.New(config.Server, httpHandlers, logger)

	return &App{
		Config:       config,
		Logger:       logger,
		Storage:      storage,
		Broadcaster:  broadcaster,
		Pool:         pool,
		Manager:      manager,
		Orchestrator: orchestrator,
		Scheduler:    sched,
		Server:       srv,
	}, nil
}

// Start brings up background services. The HTTP server is started separately
// by the caller so it can own the listen error.
func (a *App) Start() error {
	schedulerCtx, cancel := context.WithCancel(context.Background())
	a.cancelScheduler = cancel
	if err := a.Scheduler.Start(schedulerCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Shutdown stops services in reverse dependency order: no new work, drain
// the browser, then close the event hub and storage.
func (a *App) Shutdown(ctx context.Context) {
	if a.cancelScheduler != nil {
		a.cancelScheduler()
	}
	a.Scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
	}

	if err := a.Pool.Shutdown(); err != nil {
		a.Logger.Warn().Err(err).Msg("Browser pool shutdown incomplete")
	}

	if err := a.Broadcaster.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Event broadcaster close failed")
	}

	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close failed")
	}

	a.Logger.Info().Msg("Shutdown complete")
}
