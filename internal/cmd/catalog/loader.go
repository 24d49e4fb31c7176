// Package catalog provides common catalog operations for CLI commands.
package catalog

import (
	"context"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/pkg/errors"
)

// Loaded is an engine whose catalog load has finished.
type Loaded struct {
	productmap.Client

	// Outcome of the load
	Outcome productmap.Outcome

	owned bool
}

// Close closes the engine when Load created it for custom options. The
// default engine is closed by the application on shutdown.
func (l *Loaded) Close() error {
	if !l.owned {
		return nil
	}
	return l.Client.Close()
}

// Load gets an engine from app and waits for its catalog load. Without
// options it uses the default engine; with options it creates a new one.
// A failed load is returned as the error.
func Load(ctx context.Context, app application.Application, opts ...productmap.Option) (*Loaded, error) {
	pm, err := app.Productmap(opts...)
	if err != nil {
		return nil, err
	}
	loaded := &Loaded{Client: pm, owned: len(opts) > 0}

	outcome, err := pm.Load(ctx).Wait(ctx)
	if err != nil {
		_ = loaded.Close()
		return nil, errors.WrapResource("load", "catalog", "", err)
	}
	loaded.Outcome = outcome

	switch outcome {
	case productmap.OutcomeNoUser:
		app.Logger().Warn().Msg("No user configured, set --user or PRODUCTMAP_USER to load the catalog")
	case productmap.OutcomeCached:
		app.Logger().Warn().Msg("Offline, showing the cached catalog")
	default:
		app.Logger().Debug().
			Str("outcome", string(outcome)).
			Int("products", len(pm.Products())).
			Msg("Catalog loaded")
	}
	return loaded, nil
}
