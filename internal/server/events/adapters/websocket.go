// Package adapters connects the event broker to the transports.
package adapters

import (
	"github.com/agentstation/productmap/internal/server/events"
	ws "github.com/agentstation/productmap/internal/server/websocket"
)

// WebSocketSubscriber adapts the WebSocket hub to the Subscriber interface.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a new WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send forwards an event to the hub.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		UserID:    event.UserID,
		Data:      event.Data,
	})
	return nil
}

// Close is a no-op; the hub has its own lifecycle.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
