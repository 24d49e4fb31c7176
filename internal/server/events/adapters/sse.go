package adapters

import (
	"strconv"

	"github.com/agentstation/productmap/internal/server/events"
	"github.com/agentstation/productmap/internal/server/sse"
)

// SSESubscriber adapts the SSE broadcaster to the Subscriber interface.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates a new SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send forwards an event to the broadcaster.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event:  string(event.Type),
		ID:     strconv.FormatUint(event.ID, 10),
		UserID: event.UserID,
		Data:   event.Data,
	})
	return nil
}

// Close is a no-op; the broadcaster has its own lifecycle.
func (s *SSESubscriber) Close() error {
	return nil
}
