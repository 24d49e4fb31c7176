// Package stream provides latest-value observable streams.
//
// A Value holds the most recent item published to it. Subscribers receive the
// current item on subscribe and every later item, but a slow subscriber only
// ever sees the newest one: intermediate items are conflated away and
// publishers never block.
package stream

import (
	"context"
	"sync"
)

// Reader is the read side of a Value.
type Reader[T any] interface {
	// Get returns the latest item.
	Get() T
	// Version counts publishes since creation.
	Version() uint64
	// Subscribe returns a channel that yields the latest item until ctx is
	// done or the stream is closed, after which the channel is closed.
	Subscribe(ctx context.Context) <-chan T
}

// Value is a latest-value stream.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	version uint64
	subs    map[chan T]struct{}
	closed  bool
	done    chan struct{}
}

var _ Reader[int] = (*Value[int])(nil)

// New creates a stream holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[chan T]struct{}),
		done:    make(chan struct{}),
	}
}

// Publish replaces the latest item and offers it to every subscriber.
// Publishing to a closed stream is a no-op.
func (v *Value[T]) Publish(item T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.current = item
	v.version++
	for ch := range v.subs {
		offer(ch, item)
	}
}

// offer replaces whatever is buffered in ch with item. Callers hold the lock,
// which makes the lock holder the only sender, so the send cannot block.
func offer[T any](ch chan T, item T) {
	select {
	case <-ch:
	default:
	}
	ch <- item
}

// Get returns the latest item.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Version returns the number of publishes.
func (v *Value[T]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Subscribe implements Reader.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		close(ch)
		return ch
	}
	ch <- v.current
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-v.done:
			return
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		if _, ok := v.subs[ch]; ok {
			delete(v.subs, ch)
			close(ch)
		}
	}()

	return ch
}

// Subscribers returns the number of live subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close ends every subscription. The latest item stays readable with Get.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	close(v.done)
	for ch := range v.subs {
		delete(v.subs, ch)
		close(ch)
	}
}
