package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	closed int
}

func (r *recorder) Send(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recorder) received() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func newBroker(t *testing.T) (*Broker, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return b, cancel
}

func TestBrokerFanOut(t *testing.T) {
	b, _ := newBroker(t)
	first, second := &recorder{}, &recorder{}
	b.Subscribe(first)
	b.Subscribe(second)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 2 }, time.Second, 5*time.Millisecond)

	b.Publish(ProductUpdated, "alice", map[string]any{"id": "p1"})
	b.Publish(LoadingChanged, "alice", map[string]any{"loading": false})

	for _, r := range []*recorder{first, second} {
		require.Eventually(t, func() bool { return len(r.received()) == 2 }, time.Second, 5*time.Millisecond)
		got := r.received()
		assert.Equal(t, ProductUpdated, got[0].Type)
		assert.Equal(t, "alice", got[0].UserID)
		assert.False(t, got[0].Timestamp.IsZero())
		assert.Less(t, got[0].ID, got[1].ID, "ids increase")
	}
	assert.Equal(t, uint64(2), b.EventsPublished())
	assert.Zero(t, b.EventsDropped())
}

func TestBrokerUnsubscribe(t *testing.T) {
	b, _ := newBroker(t)
	r := &recorder{}
	b.Subscribe(r)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Unsubscribe(r)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, r.closed)
}

func TestBrokerDropsWhenFull(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger) // not running, nothing drains the queue

	for i := 0; i < cap(b.events)+3; i++ {
		b.Publish(ProductAdded, "", nil)
	}
	assert.Equal(t, uint64(cap(b.events)), b.EventsPublished())
	assert.Equal(t, uint64(3), b.EventsDropped())
	assert.Equal(t, cap(b.events), b.QueueDepth())
}

func TestBrokerShutdownClosesSubscribers(t *testing.T) {
	b, cancel := newBroker(t)
	r := &recorder{}
	b.Subscribe(r)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.closed == 1
	}, time.Second, 5*time.Millisecond)
}
