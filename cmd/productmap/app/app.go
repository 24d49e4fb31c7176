// Package app provides the application context and dependency management
// for the productmap CLI. It centralizes configuration, the shared catalog
// source and snapshot backend, and the lifecycle of the default engine.
package app

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/metrics"
	"github.com/agentstation/productmap/internal/snapshot/bolt"
	"github.com/agentstation/productmap/internal/snapshot/files"
	snapmem "github.com/agentstation/productmap/internal/snapshot/memory"
	"github.com/agentstation/productmap/internal/sources/memory"
	"github.com/agentstation/productmap/internal/sources/mongodb"
	"github.com/agentstation/productmap/pkg/connectivity"
	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/session"
	"github.com/agentstation/productmap/pkg/snapshot"
	"github.com/agentstation/productmap/pkg/sources"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the productmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Shared dependencies (lazy-initialized, singletons)
	mu         sync.RWMutex
	productmap productmap.Client
	source     sources.Source
	backend    snapshot.Backend
	oracle     connectivity.Oracle
	metrics    *metrics.Prometheus
}

// New creates a new App instance with the given version information.
// The app is initialized with the loaded configuration that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	// Initialize logger
	logger := NewLogger(config)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Productmap returns the default engine for the configured user, creating it
// lazily. With options it returns a new engine built from the configured
// defaults plus opts, which the caller closes.
func (a *App) Productmap(opts ...productmap.Option) (productmap.Client, error) {
	if len(opts) > 0 {
		return a.newEngine(opts...)
	}

	a.mu.RLock()
	if a.productmap != nil {
		pm := a.productmap
		a.mu.RUnlock()
		return pm, nil
	}
	a.mu.RUnlock()

	pm, err := a.newEngine()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.productmap != nil {
		_ = pm.Close()
		return a.productmap, nil
	}
	a.productmap = pm
	return pm, nil
}

// newEngine builds an engine from the configuration. Later options win.
func (a *App) newEngine(extra ...productmap.Option) (productmap.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()

	source, err := a.Source(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.SnapshotStore(a.config.User)
	if err != nil {
		return nil, err
	}

	users := session.Anonymous()
	if a.config.User != "" {
		users = session.Static(a.config.User)
	}

	opts := []productmap.Option{
		productmap.WithSnapshotStore(store),
		productmap.WithConnectivity(a.connectivity()),
		productmap.WithUserProvider(users),
		productmap.WithLogger(a.logger),
		productmap.WithMetrics(a.Metrics()),
		productmap.WithOnlyFavorites(a.config.OnlyFavorites),
		productmap.WithPageSize(a.config.PageSize),
		productmap.WithRemoteTimeout(a.config.RemoteTimeout),
		productmap.WithAutoUpdates(a.config.AutoUpdatesEnabled),
	}
	if a.config.AutoUpdateInterval > 0 {
		opts = append(opts, productmap.WithAutoUpdateInterval(a.config.AutoUpdateInterval))
	}
	opts = append(opts, extra...)

	pm, err := productmap.New(source, opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "productmap", a.config.User, err)
	}
	return pm, nil
}

// Source returns the configured catalog source, connecting on first use.
func (a *App) Source(ctx context.Context) (sources.Source, error) {
	a.mu.RLock()
	if a.source != nil {
		src := a.source
		a.mu.RUnlock()
		return src, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.source != nil {
		return a.source, nil
	}

	src, err := a.openSource(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("source", string(src.ID())).Msg("Catalog source opened")
	a.source = src
	return src, nil
}

func (a *App) openSource(ctx context.Context) (sources.Source, error) {
	switch sources.ID(a.config.Source) {
	case sources.MongoDBID:
		cfg := mongodb.DefaultConfig()
		cfg.URI = a.config.MongoURI
		cfg.Database = a.config.MongoDatabase
		if a.config.ConnectTimeout > 0 {
			cfg.Timeout = a.config.ConnectTimeout
		}
		src, err := mongodb.Open(ctx, cfg)
		if err != nil {
			return nil, errors.WrapResource("open", "source", string(sources.MongoDBID), err)
		}
		return src, nil
	case sources.MemoryID, "":
		if a.config.SeedFile == "" {
			return memory.New(), nil
		}
		seed, err := memory.LoadSeed(a.config.SeedFile)
		if err != nil {
			return nil, errors.WrapResource("open", "source", string(sources.MemoryID), err)
		}
		return memory.New(memory.WithSeed(seed)), nil
	default:
		return nil, errors.NewValidationError("source", a.config.Source, "unknown catalog source")
	}
}

// SnapshotStore returns the snapshot store of userID over the shared backend.
// An empty userID uses the default key.
func (a *App) SnapshotStore(userID string) (*snapshot.Store, error) {
	backend, err := a.snapshotBackend()
	if err != nil {
		return nil, err
	}
	codec, err := snapshot.CodecByName(a.config.SnapshotFormat)
	if err != nil {
		return nil, err
	}

	opts := []snapshot.Option{snapshot.WithCodec(codec)}
	if userID != "" {
		opts = append(opts, snapshot.WithKey(constants.SnapshotCacheKey+"."+userID))
	}
	return snapshot.New(backend, opts...), nil
}

func (a *App) snapshotBackend() (snapshot.Backend, error) {
	a.mu.RLock()
	if a.backend != nil {
		b := a.backend
		a.mu.RUnlock()
		return b, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.backend != nil {
		return a.backend, nil
	}

	var (
		backend snapshot.Backend
		err     error
	)
	switch a.config.SnapshotBackend {
	case "memory":
		backend = snapmem.New()
	case "files":
		backend, err = files.Open(a.config.SnapshotPath, a.config.SnapshotFormat)
	case "bolt", "":
		if mkErr := os.MkdirAll(filepath.Dir(a.config.SnapshotPath), constants.DirPermissions); mkErr != nil {
			return nil, errors.WrapIO("create", filepath.Dir(a.config.SnapshotPath), mkErr)
		}
		backend, err = bolt.Open(a.config.SnapshotPath)
	default:
		return nil, errors.NewValidationError("snapshot.backend", a.config.SnapshotBackend, "unknown snapshot backend")
	}
	if err != nil {
		return nil, errors.WrapResource("open", "snapshot backend", a.config.SnapshotBackend, err)
	}

	a.logger.Debug().
		Str("backend", a.config.SnapshotBackend).
		Str("path", a.config.SnapshotPath).
		Msg("Snapshot backend opened")
	a.backend = backend
	return backend, nil
}

// connectivity returns the shared oracle for the configured mode.
func (a *App) connectivity() connectivity.Oracle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.oracle != nil {
		return a.oracle
	}

	switch a.config.ConnectivityMode {
	case "online":
		a.oracle = connectivity.Online
	case "offline":
		a.oracle = connectivity.Static(false)
	case "probe":
		a.oracle = connectivity.NewCached(
			connectivity.Probe(a.config.ProbeAddr, constants.ProbeTimeout),
			constants.ConnectivityTTL,
		)
	default:
		a.oracle = connectivity.NewCached(connectivity.Interfaces(), constants.ConnectivityTTL)
	}
	return a.oracle
}

// Metrics returns the metrics collector. Its registry also carries the Go
// runtime and process collectors.
func (a *App) Metrics() *metrics.Prometheus {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.metrics == nil {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.metrics = metrics.New(registry)
	}
	return a.metrics
}

// Shutdown performs graceful shutdown of the application.
// It stops the default engine and closes the source and snapshot backend.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	pm, src, backend := a.productmap, a.source, a.backend
	a.productmap, a.source, a.backend = nil, nil, nil
	a.mu.Unlock()

	var errs []error
	if pm != nil {
		// Stop auto-updates and wait for in-flight tasks
		if err := pm.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close catalog engine during shutdown")
			errs = append(errs, err)
		}
	}
	if src != nil {
		if err := src.Close(ctx); err != nil {
			errs = append(errs, errors.WrapResource("close", "source", string(src.ID()), err))
		}
	}
	if backend != nil {
		if err := backend.Close(); err != nil {
			errs = append(errs, errors.WrapResource("close", "snapshot backend", a.config.SnapshotBackend, err))
		}
	}
	return stderrors.Join(errs...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSource sets the catalog source (useful for testing).
func WithSource(src sources.Source) Option {
	return func(a *App) error {
		a.source = src
		return nil
	}
}

// WithSnapshotBackend sets the snapshot backend (useful for testing).
func WithSnapshotBackend(backend snapshot.Backend) Option {
	return func(a *App) error {
		a.backend = backend
		return nil
	}
}

// WithConnectivity sets the connectivity oracle (useful for testing).
func WithConnectivity(oracle connectivity.Oracle) Option {
	return func(a *App) error {
		a.oracle = oracle
		return nil
	}
}
