package productmap

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoUpdater = (*client)(nil)

// AutoUpdater provides controls for automatic catalog reloads.
type AutoUpdater interface {
	// AutoUpdatesOn begins automatic reloads at the configured interval
	AutoUpdatesOn() error

	// AutoUpdatesOff stops automatic reloads
	AutoUpdatesOff() error
}

// AutoUpdatesOn begins automatic reloads.
func (c *client) AutoUpdatesOn() error {
	interval := c.options.autoUpdateInterval
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoUpdateInterval",
			Value:   interval,
			Message: "update interval must be positive",
		}
	}
	if c.closed.Load() {
		return errors.ErrClosed
	}

	// Stop any existing auto-updates to prevent resource leaks
	if err := c.AutoUpdatesOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	// Recreate stopCh since it was closed in AutoUpdatesOff
	c.stopCh = make(chan struct{})
	c.updateTicker = time.NewTicker(interval)

	// Create a cancellable context for the update goroutine
	ctx, cancel := context.WithCancel(context.Background())
	c.updateCancel = cancel

	go c.autoUpdateLoop(ctx, c.updateTicker, c.stopCh)

	c.logger.Debug().Dur("interval", interval).Msg("Auto-updates enabled")
	return nil
}

func (c *client) autoUpdateLoop(ctx context.Context, ticker *time.Ticker, stopCh <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			// Bound each reload so a hung source cannot stall the loop
			updateCtx, updateCancel := context.WithTimeout(ctx, constants.UpdateContextTimeout)
			outcome, err := c.Load(updateCtx).Wait(updateCtx)
			updateCancel()

			if err != nil {
				// Exit when the loop itself was canceled
				if stderrors.Is(err, context.Canceled) && ctx.Err() != nil {
					return
				}
				c.logger.Error().Err(err).Str("outcome", outcome.String()).Msg("Auto-update failed")
				continue
			}
			c.logger.Debug().Str("outcome", outcome.String()).Msg("Auto-update finished")
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		}
	}
}

// AutoUpdatesOff stops automatic reloads.
func (c *client) AutoUpdatesOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.updateTicker != nil {
		c.updateTicker.Stop()
		c.updateTicker = nil
	}
	if c.updateCancel != nil {
		c.updateCancel()
		c.updateCancel = nil
	}
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	return nil
}
