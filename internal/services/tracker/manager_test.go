package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/events"
)

func newTestManager() (*Manager, *events.Broadcaster) {
	broadcaster := events.NewBroadcaster(50, arbor.NewLogger())
	return NewManager(broadcaster, arbor.NewLogger()), broadcaster
}

func TestManager_AddJob(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	jobID := manager.AddJob("user-1", "Kim", "kim@example.com", models.ServiceSmartPlace)
	require.NotEmpty(t, jobID)

	job := manager.GetJob(jobID)
	require.NotNil(t, job)
	assert.Equal(t, models.JobStatusQueued, job.Status)
	assert.Equal(t, "user-1", job.UserID)
	assert.Equal(t, models.ServiceSmartPlace, job.Type)
	assert.False(t, job.StartedAt.IsZero())
}

func TestManager_GetJobUnknown(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	assert.Nil(t, manager.GetJob("trk_missing"))
}

func TestManager_TerminalTransitionsAreOneWay(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	jobID := manager.AddJob("user-1", "", "", models.ServiceBlog)

	completed := models.JobStatusCompleted
	manager.UpdateJob(jobID, interfaces.JobUpdate{Status: &completed})

	job := manager.GetJob(jobID)
	require.Equal(t, models.JobStatusCompleted, job.Status)
	assert.False(t, job.CompletedAt.IsZero())

	// A late status flip must be dropped
	running := models.JobStatusRunning
	manager.UpdateJob(jobID, interfaces.JobUpdate{Status: &running})
	assert.Equal(t, models.JobStatusCompleted, manager.GetJob(jobID).Status)

	// So must late progress
	manager.UpdateProgress(jobID, 99, 100, "late keyword")
	assert.Zero(t, manager.GetJob(jobID).Progress.Current)
}

func TestManager_ProgressIsMonotonic(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	jobID := manager.AddJob("user-1", "", "", models.ServiceSmartPlace)

	manager.UpdateProgress(jobID, 2, 3, "keyword-b")
	manager.UpdateProgress(jobID, 1, 3, "keyword-a") // Stale callback

	progress := manager.GetJob(jobID).Progress
	assert.Equal(t, 2, progress.Current, "progress must never rewind")
	assert.Equal(t, 3, progress.Total)
}

func TestManager_ProgressEmitsStatusUpdate(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	var payloads []models.ProgressPayload
	broadcaster.Subscribe(models.EventStatusUpdate, func(event models.TrackingEvent) {
		payloads = append(payloads, event.Payload.(models.ProgressPayload))
	})

	jobID := manager.AddJob("user-1", "", "", models.ServiceSmartPlace)
	manager.UpdateProgress(jobID, 1, 2, "강남 치과")

	require.Len(t, payloads, 1)
	assert.Equal(t, jobID, payloads[0].JobID)
	assert.Equal(t, 1, payloads[0].Current)
	assert.Equal(t, 2, payloads[0].Total)
	assert.Equal(t, "강남 치과", payloads[0].Keyword)
}

func TestManager_GetAllJobsNewestFirst(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	first := manager.AddJob("user-1", "", "", models.ServiceSmartPlace)
	time.Sleep(2 * time.Millisecond)
	second := manager.AddJob("user-2", "", "", models.ServiceBlog)

	jobs := manager.GetAllJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, first, jobs[1].ID)
}

func TestManager_ReturnsCopies(t *testing.T) {
	manager, broadcaster := newTestManager()
	defer broadcaster.Close()

	jobID := manager.AddJob("user-1", "", "", models.ServiceSmartPlace)

	job := manager.GetJob(jobID)
	job.Status = models.JobStatusFailed
	job.Progress.Current = 42

	fresh := manager.GetJob(jobID)
	assert.Equal(t, models.JobStatusQueued, fresh.Status, "mutating a returned job must not touch the registry")
	assert.Zero(t, fresh.Progress.Current)
}
