package productmap

import (
	"context"

	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/session"
)

// Compile-time interface check to ensure proper implementation.
var _ Favorites = (*client)(nil)

// Favorites toggles favorite membership for the current user.
type Favorites interface {
	// ToggleFavorite reads the membership of productID remotely and writes
	// the opposite. Without a signed in user it completes as no_user. The
	// read and the write are not atomic: concurrent toggles of the same
	// product from elsewhere resolve as last write wins.
	ToggleFavorite(ctx context.Context, productID string) *Task
}

// ToggleFavorite implements Favorites.
func (c *client) ToggleFavorite(ctx context.Context, productID string) *Task {
	if c.closed.Load() {
		return completedTask("toggle_favorite", OutcomeFailed, errors.ErrClosed)
	}
	user, ok := c.users.CurrentUser(ctx)
	if !ok {
		c.metrics.ObserveToggle(string(OutcomeNoUser))
		return completedTask("toggle_favorite", OutcomeNoUser, nil)
	}
	if productID == "" {
		return completedTask("toggle_favorite", OutcomeFailed,
			errors.NewValidationError("product_id", productID, "product id is required"))
	}

	if !c.track() {
		return completedTask("toggle_favorite", OutcomeFailed, errors.ErrClosed)
	}
	task := newTask("toggle_favorite")
	go func() {
		defer c.tasks.Done()
		outcome, err := c.runToggle(ctx, user, productID)
		c.metrics.ObserveToggle(string(outcome))
		task.complete(outcome, err)
	}()
	return task
}

func (c *client) runToggle(ctx context.Context, user session.User, productID string) (Outcome, error) {
	log := c.logger.With().
		Str("operation", "toggle_favorite").
		Str("user_id", user.ID).
		Str("product_id", productID).
		Logger()

	product, found := c.lookup(productID)
	if !found {
		product = products.Product{ID: productID}
	}

	present, err := c.hasFavorite(ctx, user.ID, productID)
	if err == nil {
		err = c.setFavorite(ctx, user.ID, product, !present)
	}
	if err != nil {
		werr := errors.NewCatalogError(errors.KindRemoteWriteFailed, "toggle_favorite", err)
		werr.ID = productID
		log.Error().Err(werr).Msg("Toggling favorite failed")
		c.fail(werr)
		return OutcomeFailed, werr
	}

	if c.applyToggle(user.ID, productID, !present) {
		c.persist(ctx)
	} else {
		log.Debug().Msg("Snapshot not merged for this user, skipping persist")
	}

	log.Info().Bool("favorite", !present).Msg("Favorite toggled")
	return OutcomeToggled, nil
}

func (c *client) lookup(id string) (products.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Find(id)
}

func (c *client) hasFavorite(ctx context.Context, userID, productID string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.options.remoteTimeout)
	defer cancel()
	present, err := c.source.HasFavorite(callCtx, userID, productID)
	if err != nil {
		return false, c.remoteErr(callCtx, "has_favorite", err)
	}
	return present, nil
}

func (c *client) setFavorite(ctx context.Context, userID string, product products.Product, present bool) error {
	callCtx, cancel := context.WithTimeout(ctx, c.options.remoteTimeout)
	defer cancel()
	if err := c.source.SetFavorite(callCtx, userID, product, present); err != nil {
		return c.remoteErr(callCtx, "set_favorite", err)
	}
	return nil
}

// applyToggle flips the flag in the snapshot and recomputes the view. When a
// load is in flight the toggle is also recorded so the load re-applies it on
// top of the list it fetched. It reports whether the snapshot holds the
// merged favorites of userID; only then may it be persisted.
func (c *client) applyToggle(userID, productID string, favorite bool) bool {
	c.mu.Lock()
	owned := c.owner == userID
	if !owned && c.owner != "" {
		// flags of another user must not leak into this user's view
		c.snapshot = c.snapshot.ClearFavorites()
		c.owner = ""
	}
	old, found := c.snapshot.Find(productID)
	if found {
		c.snapshot, _ = c.snapshot.WithFavorite(productID, favorite)
	}
	if c.loading.Load() {
		c.pending[productID] = favorite
	}
	c.refilterLocked()
	updated, _ := c.snapshot.Find(productID)
	c.mu.Unlock()

	if found {
		c.hooks.triggerProductUpdate(old, updated)
	}
	return owned
}
