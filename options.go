package productmap

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/productmap/internal/snapshot/memory"
	"github.com/agentstation/productmap/pkg/connectivity"
	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/logging"
	"github.com/agentstation/productmap/pkg/session"
	"github.com/agentstation/productmap/pkg/snapshot"
)

// options holds the engine configuration.
type options struct {
	store   SnapshotStore
	oracle  connectivity.Oracle
	users   session.Provider
	logger  *zerolog.Logger
	metrics Metrics

	onlyFavorites bool
	initialQuery  string
	pageSize      int
	remoteTimeout time.Duration

	autoUpdatesEnabled bool
	autoUpdateInterval time.Duration
}

// Option is a function that configures an engine.
type Option func(*options) error

func defaults() *options {
	return &options{
		store:   snapshot.New(memory.New()),
		oracle:  connectivity.NewCached(connectivity.Interfaces(), constants.ConnectivityTTL),
		users:   session.Anonymous(),
		logger:  logging.Default(),
		metrics: nopMetrics{},

		pageSize:      constants.DefaultPageSize,
		remoteTimeout: constants.RemoteCallTimeout,

		autoUpdatesEnabled: false,
		autoUpdateInterval: constants.DefaultUpdateInterval,
	}
}

// apply applies the given options in order.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSnapshotStore sets where the last fetched catalog is persisted.
// Defaults to an in-memory store.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(o *options) error {
		if store == nil {
			return errors.NewValidationError("store", nil, "snapshot store must not be nil")
		}
		o.store = store
		return nil
	}
}

// WithConnectivity sets the connectivity oracle.
func WithConnectivity(oracle connectivity.Oracle) Option {
	return func(o *options) error {
		if oracle == nil {
			return errors.NewValidationError("connectivity", nil, "oracle must not be nil")
		}
		o.oracle = oracle
		return nil
	}
}

// WithUserProvider sets the source of the current user.
func WithUserProvider(users session.Provider) Option {
	return func(o *options) error {
		if users == nil {
			return errors.NewValidationError("users", nil, "user provider must not be nil")
		}
		o.users = users
		return nil
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithMetrics sets the metrics observer.
func WithMetrics(m Metrics) Option {
	return func(o *options) error {
		if m != nil {
			o.metrics = m
		}
		return nil
	}
}

// WithOnlyFavorites restricts the view to favorites for the engine lifetime.
func WithOnlyFavorites(enabled bool) Option {
	return func(o *options) error {
		o.onlyFavorites = enabled
		return nil
	}
}

// WithInitialQuery sets the search query before the first load.
func WithInitialQuery(query string) Option {
	return func(o *options) error {
		o.initialQuery = strings.TrimSpace(query)
		return nil
	}
}

// WithPageSize sets how many products a load fetches.
func WithPageSize(n int) Option {
	return func(o *options) error {
		if n <= 0 || n > constants.MaxPageSize {
			return errors.NewValidationError("page_size", n, "page size must be between 1 and 1000")
		}
		o.pageSize = n
		return nil
	}
}

// WithRemoteTimeout bounds every remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.NewValidationError("remote_timeout", d, "remote timeout must be positive")
		}
		o.remoteTimeout = d
		return nil
	}
}

// WithAutoUpdates configures whether automatic updates are enabled
func WithAutoUpdates(enabled bool) Option {
	return func(o *options) error {
		o.autoUpdatesEnabled = enabled
		return nil
	}
}

// WithAutoUpdateInterval configures how often to automatically reload the catalog
func WithAutoUpdateInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoUpdateInterval = interval
		return nil
	}
}
