package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// sseClientBuffer bounds the per-client delivery queue. A client that cannot
// drain this many events is dropped rather than allowed to stall emission.
const sseClientBuffer = 64

// SSEHandler streams tracking events to dashboard clients over
// Server-Sent Events. Each new connection receives a connected frame, a
// snapshot of the job registry, a replay of recently buffered events, and
// then the live feed interleaved with heartbeat comments.
type SSEHandler struct {
	manager           interfaces.JobManager
	events            interfaces.EventService
	heartbeatInterval time.Duration
	logger            arbor.ILogger
}

func NewSSEHandler(manager interfaces.JobManager, events interfaces.EventService, heartbeatInterval time.Duration, logger arbor.ILogger) *SSEHandler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 15 * time.Second
	}
	return &SSEHandler{
		manager:           manager,
		events:            events,
		heartbeatInterval: heartbeatInterval,
		logger:            logger,
	}
}

func (h *SSEHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	clientID := common.NewClientID()
	h.logger.Info().Str("client_id", clientID).Msg("SSE client connected")

	h.writeEvent(w, flusher, models.TrackingEvent{
		Type:      models.EventConnected,
		Payload:   map[string]string{"client_id": clientID},
		Timestamp: time.Now(),
	})

	jobs := h.manager.GetAllJobs()
	h.writeEvent(w, flusher, models.TrackingEvent{
		Type:      models.EventInitialState,
		Payload:   models.JobListPayload{Jobs: jobs, TotalJobs: len(jobs)},
		Timestamp: time.Now(),
	})

	// Replay what this client missed before it connected
	h.events.FlushBuffer(func(event models.TrackingEvent) {
		h.writeEvent(w, flusher, event)
	}, models.EventStatusUpdate, models.EventJobUpdate, models.EventLogUpdate)

	queue := make(chan models.TrackingEvent, sseClientBuffer)
	subscription := h.events.SubscribeAll(func(event models.TrackingEvent) {
		select {
		case queue <- event:
		default:
			// Client is not draining; shedding beats blocking the broadcaster
		}
	})
	defer subscription.Unsubscribe()

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info().Str("client_id", clientID).Msg("SSE client disconnected")
			return
		case event := <-queue:
			h.writeEvent(w, flusher, event)
		case <-heartbeat.C:
			// Comment frame: ignored by EventSource, keeps proxies from
			// closing the idle connection
			fmt.Fprintf(w, ": heartbeat %s\n\n", time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, event models.TrackingEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn().Err(err).Str("type", string(event.Type)).Msg("Failed to marshal SSE event")
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
