package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/tracker"
)

// Scheduler runs daily tracking sweeps on cron schedules, one schedule per
// search surface. Schedules fire in the business timezone so "2 AM" means
// 2 AM Korean time.
type Scheduler struct {
	logger       arbor.ILogger
	config       common.SchedulerConfig
	orchestrator *tracker.Orchestrator
	cron         *cron.Cron
}

func NewScheduler(orchestrator *tracker.Orchestrator, config common.SchedulerConfig, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		logger:       logger,
		config:       config,
		orchestrator: orchestrator,
	}
}

// Start registers the configured schedules and starts the cron runner.
// Disabled schedulers return immediately without error.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}

	s.cron = cron.New(cron.WithLocation(businessLocation()))

	entries := []struct {
		spec        string
		serviceType models.ServiceType
	}{
		{s.config.SmartplaceSchedule, models.ServiceSmartPlace},
		{s.config.BlogSchedule, models.ServiceBlog},
	}

	for _, entry := range entries {
		if entry.spec == "" {
			continue
		}
		serviceType := entry.serviceType
		if _, err := s.cron.AddFunc(entry.spec, func() {
			s.orchestrator.RunForAllUsers(ctx, serviceType)
		}); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", serviceType, entry.spec, err)
		}
		s.logger.Info().
			Str("service_type", string(serviceType)).
			Str("schedule", entry.spec).
			Msg("Tracking schedule registered")
	}

	s.cron.Start()
	return nil
}

func businessLocation() *time.Location {
	location, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return location
}

// Stop halts the cron runner and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}
