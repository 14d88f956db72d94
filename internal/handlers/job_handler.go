package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

const defaultJobListLimit = 50

// JobHandler exposes the in-memory job registry over HTTP
type JobHandler struct {
	manager interfaces.JobManager
	logger  arbor.ILogger
}

func NewJobHandler(manager interfaces.JobManager, logger arbor.ILogger) *JobHandler {
	return &JobHandler{manager: manager, logger: logger}
}

// ListJobs returns registered jobs, newest first, bounded by the limit query
// parameter.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	jobs := h.manager.GetAllJobs()
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}

	writeJSON(w, http.StatusOK, models.JobListPayload{Jobs: jobs, TotalJobs: len(jobs)})
}

// GetJob returns one job by id
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return
	}

	job := h.manager.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}
