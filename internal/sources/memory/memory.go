// Package memory is an in-process remote catalog source. It backs tests,
// demos and the CLI "--source memory" mode, and supports fault injection,
// call gating and call counting.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/sources"
)

// Op names a Source method for fault injection and counting.
type Op string

// Source operations.
const (
	OpListProducts Op = "list_products"
	OpFavoriteIDs  Op = "favorite_ids"
	OpHasFavorite  Op = "has_favorite"
	OpSetFavorite  Op = "set_favorite"
	OpUpsert       Op = "upsert_products"
)

var (
	_ sources.Source = (*Source)(nil)
	_ sources.Seeder = (*Source)(nil)
)

// favoriteRecord mirrors the stored favorite document.
type favoriteRecord struct {
	Name string
}

// Source is an in-memory sources.Source.
type Source struct {
	mu        sync.RWMutex
	products  map[string]products.Product
	favorites map[string]map[string]favoriteRecord
	faults    map[Op]error
	gates     map[Op]chan struct{}
	calls     map[Op]int
	delay     time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithProducts seeds the catalog.
func WithProducts(items ...products.Product) Option {
	return func(s *Source) {
		for _, p := range items {
			p = p.Clone()
			p.IsFavorite = false
			s.products[p.ID] = p
		}
	}
}

// WithFavorites marks ids as favorites of userID.
func WithFavorites(userID string, ids ...string) Option {
	return func(s *Source) {
		for _, id := range ids {
			s.addFavorite(userID, id)
		}
	}
}

// WithSeed applies a parsed seed.
func WithSeed(seed *Seed) Option {
	return func(s *Source) {
		if seed == nil {
			return
		}
		WithProducts(seed.Products...)(s)
		for user, ids := range seed.Favorites {
			WithFavorites(user, ids...)(s)
		}
	}
}

// WithDelay adds latency to every call.
func WithDelay(d time.Duration) Option {
	return func(s *Source) {
		s.delay = d
	}
}

// New creates a Source.
func New(opts ...Option) *Source {
	s := &Source{
		products:  make(map[string]products.Product),
		favorites: make(map[string]map[string]favoriteRecord),
		faults:    make(map[Op]error),
		gates:     make(map[Op]chan struct{}),
		calls:     make(map[Op]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID {
	return sources.MemoryID
}

// Fail makes op return err until Heal is called.
func (s *Source) Fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// Heal clears an injected fault.
func (s *Source) Heal(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, op)
}

// Gate makes op block until the returned release function is called or the
// call's context ends.
func (s *Source) Gate(op Op) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[op] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[op] == ch {
				delete(s.gates, op)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many times op was called.
func (s *Source) Calls(op Op) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (s *Source) TotalCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// enter records a call and applies delay, gate and fault for op.
func (s *Source) enter(ctx context.Context, op Op) error {
	s.mu.Lock()
	s.calls[op]++
	gate := s.gates[op]
	delay := s.delay
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults[op]
}

// ListProducts implements sources.Source.
func (s *Source) ListProducts(ctx context.Context, opts sources.ListOptions) ([]products.Product, error) {
	if err := s.enter(ctx, OpListProducts); err != nil {
		return nil, err
	}
	opts = opts.Normalized()

	s.mu.RLock()
	out := make([]products.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b products.Product) int {
		if opts.OrderBy == "id" {
			return strings.Compare(a.ID, b.ID)
		}
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// FavoriteIDs implements sources.Source.
func (s *Source) FavoriteIDs(ctx context.Context, userID string) (products.FavoriteSet, error) {
	if err := s.enter(ctx, OpFavoriteIDs); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(products.FavoriteSet, len(s.favorites[userID]))
	for id := range s.favorites[userID] {
		set.Add(id)
	}
	return set, nil
}

// HasFavorite implements sources.Source.
func (s *Source) HasFavorite(ctx context.Context, userID, productID string) (bool, error) {
	if err := s.enter(ctx, OpHasFavorite); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[userID][productID]
	return ok, nil
}

// SetFavorite implements sources.Source.
func (s *Source) SetFavorite(ctx context.Context, userID string, product products.Product, present bool) error {
	if userID == "" || product.ID == "" {
		return errors.NewValidationError("favorite", product.ID, "user and product id are required")
	}
	if err := s.enter(ctx, OpSetFavorite); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if present {
		s.addFavoriteLocked(userID, product.ID, product.Name)
		return nil
	}
	delete(s.favorites[userID], product.ID)
	return nil
}

// FavoriteName returns the denormalized name stored with a favorite record.
func (s *Source) FavoriteName(userID, productID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.favorites[userID][productID]
	return rec.Name, ok
}

// UpsertProducts implements sources.Seeder.
func (s *Source) UpsertProducts(ctx context.Context, items []products.Product) error {
	if err := s.enter(ctx, OpUpsert); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		p = p.Clone()
		p.IsFavorite = false
		s.products[p.ID] = p
	}
	return nil
}

// Close implements sources.Source.
func (s *Source) Close(context.Context) error {
	return nil
}

func (s *Source) addFavorite(userID, productID string) {
	s.addFavoriteLocked(userID, productID, s.products[productID].Name)
}

func (s *Source) addFavoriteLocked(userID, productID, name string) {
	if s.favorites[userID] == nil {
		s.favorites[userID] = make(map[string]favoriteRecord)
	}
	s.favorites[userID][productID] = favoriteRecord{Name: name}
}
