// Package events fans catalog engine activity out to the real-time
// transports.
//
// Engine hooks and stream subscriptions publish into a Broker, which forwards
// every event to its subscribers (the WebSocket hub and the SSE broadcaster)
// through small adapters.
package events

import "github.com/agentstation/utc"

// EventType represents the type of catalog event.
type EventType string

// Event types for catalog changes.
const (
	// Product events (from engine hooks).
	ProductAdded   EventType = "product.added"
	ProductUpdated EventType = "product.updated"
	ProductRemoved EventType = "product.removed"

	// Engine state events (from engine streams).
	LoadingChanged EventType = "catalog.loading"
	ErrorChanged   EventType = "catalog.error"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event is one catalog event. UserID scopes delivery to that user's
// clients; empty means everyone.
type Event struct {
	ID        uint64    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp utc.Time  `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Data      any       `json:"data"`
}
