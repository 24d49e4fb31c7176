// Package sse streams catalog events as Server-Sent Events.
package sse

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/agentstation/utc"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Broadcaster manages Server-Sent Events connections.
type Broadcaster struct {
	clients    map[*client]struct{}
	newClients chan *client
	closed     chan *client
	events     chan Event
	mu         sync.RWMutex
	logger     *zerolog.Logger
}

type client struct {
	userID string
	events chan Event
}

// NewBroadcaster creates a new SSE broadcaster.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*client]struct{}),
		newClients: make(chan *client, 10), // clients may connect before Run starts
		closed:     make(chan *client, 10),
		events:     make(chan Event, 256),
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop until ctx is canceled.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for c := range b.clients {
				close(c.events)
			}
			b.clients = make(map[*client]struct{})
			b.mu.Unlock()
			b.logger.Info().Msg("SSE broadcaster shut down")
			return

		case c := <-b.newClients:
			b.mu.Lock()
			b.clients[c] = struct{}{}
			total := len(b.clients)
			b.mu.Unlock()
			b.logger.Info().
				Str("user_id", c.userID).
				Int("total_clients", total).
				Msg("SSE client connected")

		case c := <-b.closed:
			b.mu.Lock()
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.events)
			}
			total := len(b.clients)
			b.mu.Unlock()
			b.logger.Info().
				Int("total_clients", total).
				Msg("SSE client disconnected")

		case event := <-b.events:
			b.mu.RLock()
			for c := range b.clients {
				if event.UserID != "" && event.UserID != c.userID {
					continue
				}
				select {
				case c.events <- event:
				default:
					b.logger.Warn().Str("event", event.Event).Msg("SSE client buffer full, event skipped")
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Broadcast queues an event for every client it addresses.
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Str("event", event.Event).Msg("SSE broadcast channel full, event dropped")
	}
}

// ClientCount returns the number of connected SSE clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Serve streams events for userID until the request ends or the
// broadcaster shuts down.
func (b *Broadcaster) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := &client{userID: userID, events: make(chan Event, 256)}
	b.newClients <- c
	defer func() { b.closed <- c }()

	b.writeEvent(w, flusher, Event{
		Event: "connected",
		Data: map[string]any{
			"message":   "Connected to productmap updates stream",
			"user_id":   userID,
			"timestamp": utc.Now(),
		},
	})

	for {
		select {
		case event, open := <-c.events:
			if !open {
				return
			}
			b.writeEvent(w, flusher, event)
		case <-r.Context().Done():
			return
		}
	}
}

// ServeHTTP streams events addressed to everyone.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.Serve(w, r, "")
}

// writeEvent writes one event in the text/event-stream format.
func (b *Broadcaster) writeEvent(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event.Event).Msg("Failed to marshal SSE event data")
		return
	}
	if event.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// Event represents an SSE event. UserID restricts delivery and is not sent.
type Event struct {
	Event  string `json:"event,omitempty"`
	ID     string `json:"id,omitempty"`
	UserID string `json:"-"`
	Data   any    `json:"data"`
}
