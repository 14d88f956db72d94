package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
	"github.com/balma1115/marketingplatformproject-sub003/internal/services/tracker"
)

// TrackHandler accepts on-demand tracking run requests
type TrackHandler struct {
	orchestrator *tracker.Orchestrator
	logger       arbor.ILogger
}

func NewTrackHandler(orchestrator *tracker.Orchestrator, logger arbor.ILogger) *TrackHandler {
	return &TrackHandler{orchestrator: orchestrator, logger: logger}
}

type runRequest struct {
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	UserEmail   string             `json:"user_email"`
	ServiceType models.ServiceType `json:"service_type"`
}

// Run starts a tracking run in the background and returns immediately.
// Clients follow progress on the event stream; the run outcome also lands in
// the job registry.
func (h *TrackHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if !models.ValidServiceType(req.ServiceType) {
		writeError(w, http.StatusBadRequest, "unknown service_type")
		return
	}

	h.logger.Info().
		Str("user_id", req.UserID).
		Str("service_type", string(req.ServiceType)).
		Msg("On-demand tracking run requested")

	// Detached from the request context: closing the HTTP connection must not
	// cancel a run already underway
	go func() {
		if _, err := h.orchestrator.RunForUser(context.Background(), req.UserID, req.UserName, req.UserEmail, req.ServiceType); err != nil {
			h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("On-demand tracking run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":       "accepted",
		"user_id":      req.UserID,
		"service_type": string(req.ServiceType),
	})
}
