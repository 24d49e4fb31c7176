// Package memory provides an in-process snapshot backend for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/snapshot"
)

var _ snapshot.Backend = (*Backend)(nil)

// Backend is a mutex guarded map.
type Backend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// FailPut makes every Put return this error.
	FailPut error
	// FailGet makes every Get return this error.
	FailGet error
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

// Get implements snapshot.Backend.
func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false, errors.ErrClosed
	}
	if b.FailGet != nil {
		return nil, false, b.FailGet
	}
	v, ok := b.data[key]
	return slices.Clone(v), ok, nil
}

// Put implements snapshot.Backend.
func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.ErrClosed
	}
	if b.FailPut != nil {
		return b.FailPut
	}
	b.data[key] = slices.Clone(value)
	return nil
}

// Delete implements snapshot.Backend.
func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.ErrClosed
	}
	delete(b.data, key)
	return nil
}

// Raw stores value under key without going through a codec.
func (b *Backend) Raw(key string, value []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = slices.Clone(value)
}

// Close implements snapshot.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
