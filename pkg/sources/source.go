// Package sources defines the remote catalog source contract the engine
// fetches products and per-user favorites from, plus a small registry of
// named sources.
//
// Example usage:
//
//	src, ok := registry.Get(sources.MongoDBID)
//	items, err := src.ListProducts(ctx, sources.NewListOptions(sources.WithLimit(30)))
//	favs, err := src.FavoriteIDs(ctx, userID)
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/productmap/pkg/products"
)

// Source is a remote catalog store.
//
// Every call may fail with a transient error; the engine bounds each call with
// a timeout through ctx.
type Source interface {
	// ID names the source.
	ID() ID

	// ListProducts returns products ordered by opts.OrderBy, at most opts.Limit.
	ListProducts(ctx context.Context, opts ListOptions) ([]products.Product, error)

	// FavoriteIDs returns the ids userID marked as favorite.
	FavoriteIDs(ctx context.Context, userID string) (products.FavoriteSet, error)

	// HasFavorite reports whether userID marked productID as favorite.
	HasFavorite(ctx context.Context, userID, productID string) (bool, error)

	// SetFavorite creates (present) or deletes (!present) the favorite record.
	// The product name is stored alongside the record.
	SetFavorite(ctx context.Context, userID string, product products.Product, present bool) error

	// Close releases connections held by the source.
	Close(ctx context.Context) error
}

// Seeder is implemented by sources that accept catalog writes.
type Seeder interface {
	UpsertProducts(ctx context.Context, items []products.Product) error
}

// ID represents the identifier of a source.
type ID string

// String returns the string representation of the id.
func (id ID) String() string {
	return string(id)
}

// Known source ids.
const (
	MongoDBID ID = "mongodb"
	MemoryID  ID = "memory"
)

// IDs returns all known source ids.
func IDs() []ID {
	return []ID{MongoDBID, MemoryID}
}

// IsValid reports whether id is a known source id.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Sources is a thread-safe registry of sources.
type Sources struct {
	mu      sync.RWMutex
	sources map[ID]Source
}

// NewSources creates an empty registry.
func NewSources() *Sources {
	return &Sources{sources: make(map[ID]Source)}
}

// Get returns a source by id.
func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[id]
	return src, found
}

// Set registers src under its id.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID()] = src
}

// Delete removes a source.
func (s *Sources) Delete(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// IDs returns the registered ids, sorted.
func (s *Sources) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close closes every registered source and returns the first error.
func (s *Sources) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for id, src := range s.sources {
		if err := src.Close(ctx); err != nil && first == nil {
			first = err
		}
		delete(s.sources, id)
	}
	return first
}
