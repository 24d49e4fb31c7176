// Package application provides the application interface for productmap commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            pm, err := app.Productmap()
//	            if err != nil {
//	                return err
//	            }
//	            _, err = pm.Load(cmd.Context()).Wait(cmd.Context())
//	            return err
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/internal/metrics"
	"github.com/agentstation/productmap/pkg/snapshot"
	"github.com/agentstation/productmap/pkg/sources"
)

// Application provides the application interface that commands need.
// The App struct from cmd/productmap/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Productmap returns a catalog engine.
	// When called without options, returns the default cached instance for the
	// configured user (lazy-initialized, thread-safe).
	// When called with options, creates a new engine from the configured
	// defaults plus opts (no caching). The caller closes it.
	//
	// Examples:
	//   pm, err := app.Productmap()                                   // default instance (cached)
	//   pm, err := app.Productmap(productmap.WithOnlyFavorites(true)) // custom instance (new)
	Productmap(opts ...productmap.Option) (productmap.Client, error)

	// Source returns the configured remote catalog source, shared by every engine.
	Source(ctx context.Context) (sources.Source, error)

	// SnapshotStore returns the snapshot store of userID over the configured backend.
	SnapshotStore(userID string) (*snapshot.Store, error)

	// Metrics returns the metrics collector engines report to.
	Metrics() *metrics.Prometheus

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
