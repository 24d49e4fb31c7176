package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
)

// Broker manages event distribution to multiple subscribers.
type Broker struct {
	subscribers []Subscriber
	events      chan Event
	register    chan Subscriber
	unregister  chan Subscriber
	mu          sync.RWMutex
	logger      *zerolog.Logger

	seq       atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewBroker creates a new event broker.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		subscribers: make([]Subscriber, 0),
		events:      make(chan Event, 256),
		register:    make(chan Subscriber, 8),
		unregister:  make(chan Subscriber, 8),
		logger:      logger,
	}
}

// Run starts the broker's event loop until ctx is canceled.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, sub := range b.subscribers {
				_ = sub.Close()
			}
			b.subscribers = nil
			b.mu.Unlock()
			b.logger.Info().Msg("Event broker shut down")
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscribers = append(b.subscribers, sub)
			total := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", total).Msg("Subscriber registered")

		case sub := <-b.unregister:
			b.mu.Lock()
			for i, s := range b.subscribers {
				if s == sub {
					b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
					_ = s.Close()
					break
				}
			}
			total := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", total).Msg("Subscriber unregistered")

		case event := <-b.events:
			b.mu.RLock()
			subs := make([]Subscriber, len(b.subscribers))
			copy(subs, b.subscribers)
			b.mu.RUnlock()

			for _, sub := range subs {
				if err := sub.Send(event); err != nil {
					b.logger.Warn().
						Err(err).
						Str("event_type", string(event.Type)).
						Msg("Failed to send event to subscriber")
				}
			}
			b.logger.Debug().
				Str("event_type", string(event.Type)).
				Str("user_id", event.UserID).
				Int("subscribers", len(subs)).
				Msg("Event broadcasted")
		}
	}
}

// Publish queues an event for userID ("" for everyone). A full queue drops
// the event.
func (b *Broker) Publish(eventType EventType, userID string, data any) {
	event := Event{
		ID:        b.seq.Add(1),
		Type:      eventType,
		Timestamp: utc.Now(),
		UserID:    userID,
		Data:      data,
	}

	select {
	case b.events <- event:
		b.published.Add(1)
	default:
		b.dropped.Add(1)
		b.logger.Warn().
			Str("event_type", string(eventType)).
			Msg("Event channel full, event dropped")
	}
}

// Subscribe registers a new subscriber to receive events.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes a subscriber from receiving events.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// EventsPublished returns how many events were queued.
func (b *Broker) EventsPublished() uint64 {
	return b.published.Load()
}

// EventsDropped returns how many events were dropped on a full queue.
func (b *Broker) EventsDropped() uint64 {
	return b.dropped.Load()
}

// QueueDepth returns the number of queued events.
func (b *Broker) QueueDepth() int {
	return len(b.events)
}
