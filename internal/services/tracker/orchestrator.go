package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// businessTimezone anchors check dates: rankings are daily facts in Korean
// local time regardless of where the process runs.
const businessTimezone = "Asia/Seoul"

// Orchestrator drives tracking runs end to end: load keywords, fan work out
// to a bounded worker set, persist each result before announcing progress,
// and finalize the job with an aggregate summary.
type Orchestrator struct {
	logger   arbor.ILogger
	config   common.TrackingConfig
	manager  interfaces.JobManager
	events   interfaces.EventService
	storage  interfaces.StorageManager
	scrapers map[models.ServiceType]interfaces.ScraperService
	location *time.Location
}

// NewOrchestrator wires the run pipeline together. The business timezone is
// resolved once here, not per run.
func NewOrchestrator(
	manager interfaces.JobManager,
	events interfaces.EventService,
	storage interfaces.StorageManager,
	scrapers []interfaces.ScraperService,
	config common.TrackingConfig,
	logger arbor.ILogger,
) *Orchestrator {
	if config.Workers <= 0 {
		config.Workers = 1
	}

	location, err := time.LoadLocation(businessTimezone)
	if err != nil {
		logger.Warn().Err(err).Msg("Timezone database unavailable, using fixed KST offset")
		location = time.FixedZone("KST", 9*60*60)
	}

	byType := make(map[models.ServiceType]interfaces.ScraperService, len(scrapers))
	for _, s := range scrapers {
		byType[s.ServiceType()] = s
	}

	return &Orchestrator{
		logger:   logger,
		config:   config,
		manager:  manager,
		events:   events,
		storage:  storage,
		scrapers: byType,
		location: location,
	}
}

// RunForUser executes one tracking run for one user and service type. The
// returned summary reflects the run outcome even when individual keywords
// fail; only infrastructure-level errors fail the whole job.
//
// An empty keyword list is reported as a no-target run without ever putting a
// job into running state.
func (o *Orchestrator) RunForUser(ctx context.Context, userID, userName, userEmail string, serviceType models.ServiceType) (*models.RunSummary, error) {
	scraper, ok := o.scrapers[serviceType]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for service type %q", serviceType)
	}

	keywords, err := o.storage.KeywordStorage().ListActiveKeywords(ctx, userID, serviceType)
	if err != nil {
		// The run was requested; surface the failure as a failed job so
		// dashboards see it instead of a silent error
		jobID := o.manager.AddJob(userID, userName, userEmail, serviceType)
		o.failJob(jobID, fmt.Errorf("failed to load keywords: %w", err))
		return nil, fmt.Errorf("failed to load keywords for user %s: %w", userID, err)
	}

	if len(keywords) == 0 {
		o.logger.Info().
			Str("user_id", userID).
			Str("service_type", string(serviceType)).
			Msg("No active keywords, nothing to track")
		o.events.Emit(models.EventLogUpdate, models.LogPayload{
			Level:   "info",
			Message: fmt.Sprintf("no active %s keywords for user %s", serviceType, userID),
		})
		return &models.RunSummary{NoTargets: true}, nil
	}

	jobID := o.manager.AddJob(userID, userName, userEmail, serviceType)
	running := models.JobStatusRunning
	o.manager.UpdateJob(jobID, interfaces.JobUpdate{Status: &running})
	o.manager.UpdateProgress(jobID, 0, len(keywords), "")

	// One timestamp for the whole run: every row written by this run carries
	// the same check date even across midnight
	runTime := time.Now().In(o.location)
	checkDate := runTime.Format("2006-01-02")

	o.logger.Info().
		Str("job_id", jobID).
		Str("user_id", userID).
		Str("service_type", string(serviceType)).
		Int("keywords", len(keywords)).
		Str("check_date", checkDate).
		Msg("Tracking run started")

	summary := o.trackKeywords(ctx, jobID, scraper, keywords, runTime, checkDate)
	summary.JobID = jobID

	if summary.runErr != nil {
		o.failJob(jobID, summary.runErr)
		return &summary.RunSummary, summary.runErr
	}

	if err := o.storage.KeywordStorage().UpdateLastTrackedAt(ctx, userID, serviceType, runTime); err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to stamp last tracked time")
	}

	completed := models.JobStatusCompleted
	o.manager.UpdateJob(jobID, interfaces.JobUpdate{Status: &completed, Summary: &summary.RunSummary})

	o.logger.Info().
		Str("job_id", jobID).
		Int("success", summary.SuccessCount).
		Int("failed", summary.FailedCount).
		Msg("Tracking run completed")

	return &summary.RunSummary, nil
}

// RunForAllUsers runs tracking for every user that has active keywords of the
// given service type. Used by the scheduler. Per-user failures are logged and
// do not stop the sweep.
func (o *Orchestrator) RunForAllUsers(ctx context.Context, serviceType models.ServiceType) {
	userIDs, err := o.storage.KeywordStorage().ListTrackedUsers(ctx, serviceType)
	if err != nil {
		o.logger.Error().Err(err).Str("service_type", string(serviceType)).Msg("Failed to list tracked users")
		return
	}

	o.logger.Info().
		Str("service_type", string(serviceType)).
		Int("users", len(userIDs)).
		Msg("Scheduled tracking sweep started")

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			o.logger.Warn().Str("service_type", string(serviceType)).Msg("Tracking sweep interrupted")
			return
		}
		if _, err := o.RunForUser(ctx, userID, "", "", serviceType); err != nil {
			o.logger.Error().Err(err).Str("user_id", userID).Msg("Scheduled run failed for user")
		}
	}
}

type runOutcome struct {
	models.RunSummary
	runErr error
}

// trackKeywords fans the keyword list out to a bounded worker set. Each
// keyword is scraped, persisted, then counted into progress, in that order:
// a progress event never precedes its row reaching storage.
func (o *Orchestrator) trackKeywords(ctx context.Context, jobID string, scraper interfaces.ScraperService, keywords []*models.Keyword, runTime time.Time, checkDate string) *runOutcome {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	outcome := &runOutcome{}
	outcome.Details = make([]models.KeywordDetail, len(keywords))

	var mu sync.Mutex
	processed := 0

	sem := make(chan struct{}, o.config.Workers)
	var wg sync.WaitGroup

	for i, keyword := range keywords {
		if runCtx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, kw *models.Keyword) {
			defer wg.Done()
			defer func() { <-sem }()

			detail := models.KeywordDetail{KeywordID: kw.ID, Keyword: kw.Text}

			result, err := scraper.TrackRanking(runCtx, kw.Text, kw.Target())
			if err != nil {
				// Infrastructure failure: stop the run, keep what finished
				mu.Lock()
				if outcome.runErr == nil && ctx.Err() == nil {
					outcome.runErr = err
				}
				mu.Unlock()
				cancelRun()
				return
			}

			result.CheckedAt = runTime
			if result.Error != "" {
				// Soft failure: no rank fact to record for this check date
				detail.Error = result.Error
			} else if err := o.storage.RankStorage().SaveRankResult(runCtx, kw.ID, kw.UserID, result, checkDate); err != nil {
				o.logger.Error().
					Err(err).
					Str("keyword_id", kw.ID).
					Str("keyword", kw.Text).
					Msg("Failed to persist rank result")
				detail.Error = fmt.Sprintf("persist failed: %v", err)
			} else {
				detail.OrganicRank = result.OrganicRank
				detail.AdRank = result.AdRank
				detail.Found = result.Found
				detail.Error = result.Error
			}

			mu.Lock()
			outcome.Details[idx] = detail
			if detail.Error != "" {
				outcome.FailedCount++
			} else {
				outcome.SuccessCount++
			}
			processed++
			current := processed
			mu.Unlock()

			o.manager.UpdateProgress(jobID, current, len(keywords), kw.Text)
		}(i, keyword)
	}

	wg.Wait()

	// Drop zero-value slots left by keywords that never started
	details := outcome.Details[:0]
	for _, d := range outcome.Details {
		if d.KeywordID != "" {
			details = append(details, d)
		}
	}
	outcome.Details = details

	if outcome.runErr == nil && ctx.Err() != nil {
		outcome.runErr = ctx.Err()
	}
	return outcome
}

func (o *Orchestrator) failJob(jobID string, cause error) {
	failed := models.JobStatusFailed
	o.manager.UpdateJob(jobID, interfaces.JobUpdate{
		Status: &failed,
		Error: &models.JobError{
			Message:   cause.Error(),
			Timestamp: time.Now(),
		},
	})
	o.logger.Error().Err(cause).Str("job_id", jobID).Msg("Tracking run failed")
}
