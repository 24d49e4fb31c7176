package handlers

import (
	"net/http"

	"github.com/agentstation/productmap/internal/server/events"
	ws "github.com/agentstation/productmap/internal/server/websocket"
)

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws.
// Clients receive the events of their user plus events for everyone.
// @Summary WebSocket updates
// @Description WebSocket connection for real-time catalog updates
// @Tags updates
// @Param X-User-ID header string false "User id"
// @Success 101 "Switching Protocols"
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	user := userID(r)
	client := ws.NewClient(user, h.wsHub, conn)
	h.wsHub.Register(client)

	h.broker.Publish(events.ClientConnected, user, map[string]any{
		"client_id": client.ID(),
		"transport": "websocket",
	})

	// Start client pumps
	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream.
// @Summary SSE updates stream
// @Description Server-Sent Events stream for catalog change notifications
// @Tags updates
// @Param X-User-ID header string false "User id"
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.Serve(w, r, userID(r))
}
