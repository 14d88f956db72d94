package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// WebSocketHandler mirrors the SSE feed over a WebSocket for clients that
// need bidirectional framing or run behind SSE-hostile proxies.
type WebSocketHandler struct {
	events   interfaces.EventService
	logger   arbor.ILogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*wsClient
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewWebSocketHandler(events interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		events: events,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard runs on a different origin in development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*wsClient),
	}
}

func (h *WebSocketHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	clientID := common.NewClientID()
	client := &wsClient{conn: conn}

	h.mu.Lock()
	h.clients[clientID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Str("client_id", clientID).Int("clients", total).Msg("WebSocket client connected")

	client.write(models.TrackingEvent{
		Type:      models.EventConnected,
		Payload:   map[string]string{"client_id": clientID},
		Timestamp: time.Now(),
	})

	subscription := h.events.SubscribeAll(func(event models.TrackingEvent) {
		if err := client.write(event); err != nil {
			h.logger.Debug().Err(err).Str("client_id", clientID).Msg("WebSocket write failed")
		}
	})

	done := make(chan struct{})
	go h.pingLoop(client, done)

	// Read loop exists only to observe the close handshake
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	subscription.Unsubscribe()

	h.mu.Lock()
	delete(h.clients, clientID)
	h.mu.Unlock()

	conn.Close()
	h.logger.Info().Str("client_id", clientID).Msg("WebSocket client disconnected")
}

func (h *WebSocketHandler) pingLoop(client *wsClient, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			client.writeMu.Lock()
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			err := client.conn.WriteMessage(websocket.PingMessage, nil)
			client.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *wsClient) write(event models.TrackingEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(event)
}
