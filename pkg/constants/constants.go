// Package constants provides shared constants used throughout the productmap codebase.
// This includes timeouts, limits, file permissions, cache keys and other values
// that should be consistent across the engine, the CLI and the server.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// RemoteCallTimeout bounds every single call to the remote catalog source
	RemoteCallTimeout = 15 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// UpdateContextTimeout is the timeout for each automatic catalog refresh
	UpdateContextTimeout = 2 * time.Minute

	// DefaultUpdateInterval is the default interval between automatic catalog refreshes
	DefaultUpdateInterval = 15 * time.Minute

	// ConnectTimeout is the timeout for establishing the remote store connection
	ConnectTimeout = 10 * time.Second

	// ProbeTimeout is the dial timeout of the connectivity probe
	ProbeTimeout = 2 * time.Second

	// StoreOpenTimeout is how long to wait for the snapshot database file lock
	StoreOpenTimeout = 1 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the CLI and the server
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files holding per-user data (rw-------)
	SecureFilePermissions = 0600
)

// Catalog constants
const (
	// DefaultPageSize is the number of products fetched per load
	DefaultPageSize = 30

	// MaxPageSize is the largest page size accepted from configuration
	MaxPageSize = 1000

	// SnapshotCacheKey is the fixed key the last catalog is stored under
	SnapshotCacheKey = "cached_products"

	// SnapshotVersion is the current snapshot envelope format version
	SnapshotVersion = 1

	// OrderByName is the only ordering the remote source contract requires
	OrderByName = "name"
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached HTTP responses
	CacheTTL = 30 * time.Second

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute

	// SessionTTL is how long an idle per-user engine pair is kept by the server
	SessionTTL = 30 * time.Minute

	// ConnectivityTTL is how long a connectivity answer is reused
	ConnectivityTTL = 5 * time.Second
)

// Stream constants
const (
	// EventBufferSize is the buffer of the event broker and transport channels
	EventBufferSize = 256
)

// Path constants
const (
	// DefaultDataPath is the default directory for local state
	DefaultDataPath = "~/.productmap"

	// DefaultSnapshotFile is the default bbolt database file name
	DefaultSnapshotFile = "snapshots.db"

	// DefaultConfigName is the config file name searched in $HOME and the working directory
	DefaultConfigName = ".productmap"

	// EnvPrefix is the prefix of environment variables read by the CLI
	EnvPrefix = "PRODUCTMAP"
)

// Remote store constants
const (
	// DefaultMongoURI is the default MongoDB connection string
	DefaultMongoURI = "mongodb://localhost:27017"

	// DefaultMongoDatabase is the default MongoDB database name
	DefaultMongoDatabase = "productmap"

	// ProductsCollection holds the product catalog
	ProductsCollection = "products"

	// FavoritesCollection holds per-user favorite records
	FavoritesCollection = "favorites"
)
