// Package productmap provides the catalog synchronization engine for the
// productmap product catalog.
//
// For one user session the engine decides whether to serve a locally stored
// snapshot or fetch fresh data from the remote catalog source, merges the
// user's favorite set into the fetched products, persists the result for
// offline reuse, and keeps a filtered view (favorites only and/or a search
// query) consistent with the underlying catalog.
//
// The engine offers:
//   - Asynchronous Load and ToggleFavorite returning a Task future
//   - At most one load in flight per engine
//   - Three latest-value streams: the filtered list, the loading flag and the last error
//   - Event hooks for product changes (added, updated, removed)
//   - Copy-on-read access to the snapshot
//   - Optional automatic background refresh
//
// Example usage:
//
//	pm, err := productmap.New(source,
//	    productmap.WithUserProvider(session.Static("user-1")),
//	    productmap.WithSnapshotStore(snapshot.New(backend)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pm.Close()
//
//	// Load and wait for the outcome
//	outcome, err := pm.Load(ctx).Wait(ctx)
//
//	// Follow the filtered list
//	for list := range pm.ProductsStream().Subscribe(ctx) {
//	    fmt.Println(len(list))
//	}
//
//	// Search and toggle
//	pm.Search("apple")
//	pm.ToggleFavorite(ctx, "p1")
package productmap

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/productmap/pkg/connectivity"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/session"
	"github.com/agentstation/productmap/pkg/snapshot"
	"github.com/agentstation/productmap/pkg/sources"
	"github.com/agentstation/productmap/pkg/stream"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// Catalog provides copy-on-read access to the engine state.
type Catalog interface {
	// Snapshot returns a copy of the full catalog snapshot
	Snapshot() products.Snapshot

	// Products returns the current filtered view
	Products() []products.Product

	// Product returns one product of the snapshot by id
	Product(id string) (products.Product, error)

	// State summarizes the engine state
	State() State

	// OnlyFavorites reports whether the view is restricted to favorites
	OnlyFavorites() bool

	// Query returns the current search query
	Query() string
}

// Client is the catalog engine.
type Client interface {

	// Catalog provides copy-on-read access to the snapshot and view
	Catalog

	// Loader loads the catalog and recomputes the view
	Loader

	// Favorites toggles per-user favorite membership
	Favorites

	// Searcher filters the view by a query
	Searcher

	// Streams exposes the observable state
	Streams

	// AutoUpdater provides access to automatic update controls
	AutoUpdater

	// Hooks provides access to event callback registration
	Hooks

	// Close stops background work and ends every stream subscription
	Close() error
}

// SnapshotStore persists the last fetched catalog. *snapshot.Store implements it.
type SnapshotStore interface {
	Read(ctx context.Context) (snapshot.Envelope, bool, error)
	Write(ctx context.Context, env snapshot.Envelope) error
}

// Origin tells where the current snapshot came from.
type Origin string

// Snapshot origins.
const (
	OriginNone   Origin = "none"
	OriginRemote Origin = "remote"
	OriginCache  Origin = "cache"
)

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// collaborators
	source  sources.Source
	store   SnapshotStore
	oracle  connectivity.Oracle
	users   session.Provider
	logger  *zerolog.Logger
	metrics Metrics

	// loading is the at-most-one-load guard
	loading      atomic.Bool
	transitionMu sync.Mutex // orders loading flag publishes with the guard

	// catalog state, guarded by mu
	mu        sync.RWMutex
	snapshot  products.Snapshot
	owner     string          // user the favorite flags were merged for
	filter    products.Filter // OnlyFavorite is fixed at construction
	filtered  []products.Product
	lastErr   error
	origin    Origin
	updatedAt utc.Time
	pending   map[string]bool // toggles committed during the in-flight load

	persistMu sync.Mutex

	// observable streams
	productsStream *stream.Value[[]products.Product]
	loadingStream  *stream.Value[bool]
	errorStream    *stream.Value[error]

	// auto update state
	autoMu       sync.Mutex
	updateTicker *time.Ticker       // update ticker to trigger auto-updates
	stopCh       chan struct{}      // stop channel to stop auto-updates
	updateCancel context.CancelFunc // cancel function for the update goroutine

	hooks *hooks // event hooks for catalog changes

	// lifecycle; taskMu orders task registration with Close
	taskMu sync.Mutex
	tasks  sync.WaitGroup
	closed atomic.Bool
}

// New creates a new Client over source with the given options.
func New(source sources.Source, opts ...Option) (Client, error) {
	if source == nil {
		return nil, errors.NewValidationError("source", nil, "a remote catalog source is required")
	}

	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		source:  source,
		store:   o.store,
		oracle:  o.oracle,
		users:   o.users,
		logger:  o.logger,
		metrics: o.metrics,

		snapshot: products.Snapshot{},
		filter:   products.Filter{OnlyFavorite: o.onlyFavorites, Query: o.initialQuery},
		filtered: []products.Product{},
		origin:   OriginNone,
		pending:  make(map[string]bool),

		productsStream: stream.New([]products.Product{}),
		loadingStream:  stream.New(false),
		errorStream:    stream.New[error](nil),

		stopCh: make(chan struct{}),
		hooks:  newHooks(),
	}

	c.logger.Debug().
		Str("source", source.ID().String()).
		Bool("only_favorites", o.onlyFavorites).
		Int("page_size", o.pageSize).
		Dur("remote_timeout", o.remoteTimeout).
		Msg("Catalog engine created")

	if o.autoUpdatesEnabled {
		if err := c.AutoUpdatesOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-updates", "", err)
		}
	}

	return c, nil
}

// Snapshot returns a copy of the current snapshot.
func (c *client) Snapshot() products.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// Products returns a copy of the current filtered view.
func (c *client) Products() []products.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return products.Snapshot(c.filtered).Clone()
}

// Product returns the product with id from the snapshot.
func (c *client) Product(id string) (products.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.snapshot.Find(id)
	if !ok {
		return products.Product{}, errors.NewNotFoundError("product", id)
	}
	return p, nil
}

// OnlyFavorites reports whether the view only shows favorites.
func (c *client) OnlyFavorites() bool {
	return c.filter.OnlyFavorite
}

// Query returns the current search query.
func (c *client) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter.Query
}

// State summarizes the engine state.
func (c *client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	loading := c.loading.Load()
	s := State{
		Loading:       loading,
		LoadState:     LoadStateIdle,
		Products:      len(c.snapshot),
		Visible:       len(c.filtered),
		OnlyFavorites: c.filter.OnlyFavorite,
		Query:         c.filter.Query,
		Owner:         c.owner,
		Origin:        c.origin,
		UpdatedAt:     c.updatedAt,
		Err:           c.lastErr,
	}
	switch {
	case loading:
		s.LoadState = LoadStateLoading
	case c.lastErr != nil:
		s.LoadState = LoadStateError
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// track registers a background task. It reports false once Close has begun.
func (c *client) track() bool {
	c.taskMu.Lock()
	defer c.taskMu.Unlock()
	if c.closed.Load() {
		return false
	}
	c.tasks.Add(1)
	return true
}

// Close stops auto updates, waits for in-flight tasks and ends every stream.
func (c *client) Close() error {
	c.taskMu.Lock()
	if c.closed.Load() {
		c.taskMu.Unlock()
		return nil
	}
	c.closed.Store(true)
	c.taskMu.Unlock()

	err := c.AutoUpdatesOff()
	c.tasks.Wait()
	c.productsStream.Close()
	c.loadingStream.Close()
	c.errorStream.Close()
	c.logger.Debug().Msg("Catalog engine closed")
	return err
}
