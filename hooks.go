package productmap

import (
	"reflect"
	"sync"

	"github.com/agentstation/productmap/pkg/products"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for product events
type (
	// ProductAddedHook is called when a product enters the snapshot
	ProductAddedHook func(product products.Product)

	// ProductUpdatedHook is called when a product in the snapshot changes,
	// including its favorite flag
	ProductUpdatedHook func(old, new products.Product)

	// ProductRemovedHook is called when a product leaves the snapshot
	ProductRemovedHook func(product products.Product)
)

// Hooks registers callbacks for snapshot changes. Callbacks run on the
// goroutine that changed the snapshot and must not block.
type Hooks interface {
	OnProductAdded(fn ProductAddedHook)
	OnProductUpdated(fn ProductUpdatedHook)
	OnProductRemoved(fn ProductRemovedHook)
}

// OnProductAdded implements Hooks.
func (c *client) OnProductAdded(fn ProductAddedHook) { c.hooks.OnProductAdded(fn) }

// OnProductUpdated implements Hooks.
func (c *client) OnProductUpdated(fn ProductUpdatedHook) { c.hooks.OnProductUpdated(fn) }

// OnProductRemoved implements Hooks.
func (c *client) OnProductRemoved(fn ProductRemovedHook) { c.hooks.OnProductRemoved(fn) }

// hooks manages event callbacks for snapshot changes
type hooks struct {
	mu               sync.RWMutex
	onProductAdded   []ProductAddedHook
	onProductUpdated []ProductUpdatedHook
	onProductRemoved []ProductRemovedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnProductAdded registers a callback for when products are added
func (h *hooks) OnProductAdded(fn ProductAddedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductAdded = append(h.onProductAdded, fn)
}

// OnProductUpdated registers a callback for when products are updated
func (h *hooks) OnProductUpdated(fn ProductUpdatedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductUpdated = append(h.onProductUpdated, fn)
}

// OnProductRemoved registers a callback for when products are removed
func (h *hooks) OnProductRemoved(fn ProductRemovedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductRemoved = append(h.onProductRemoved, fn)
}

// triggerSnapshotUpdate compares old and new snapshots and triggers appropriate hooks
func (h *hooks) triggerSnapshotUpdate(oldSnapshot, newSnapshot products.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	oldProducts := oldSnapshot.Map()
	newProducts := newSnapshot.Map()

	for _, newProduct := range newSnapshot {
		if oldProduct, exists := oldProducts[newProduct.ID]; exists {
			if !reflect.DeepEqual(oldProduct, newProduct) {
				for _, hook := range h.onProductUpdated {
					hook(oldProduct.Clone(), newProduct.Clone())
				}
			}
			continue
		}
		for _, hook := range h.onProductAdded {
			hook(newProduct.Clone())
		}
	}

	for _, oldProduct := range oldSnapshot {
		if _, exists := newProducts[oldProduct.ID]; !exists {
			for _, hook := range h.onProductRemoved {
				hook(oldProduct.Clone())
			}
		}
	}
}

// triggerProductUpdate fires the updated hooks for one product
func (h *hooks) triggerProductUpdate(oldProduct, newProduct products.Product) {
	if reflect.DeepEqual(oldProduct, newProduct) {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onProductUpdated {
		hook(oldProduct.Clone(), newProduct.Clone())
	}
}
