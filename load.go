package productmap

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/utc"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/snapshot"
	"github.com/agentstation/productmap/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Loader = (*client)(nil)

// Loader loads the catalog.
type Loader interface {
	// Load serves the local snapshot while offline, otherwise fetches the
	// catalog and favorites of the current user. At most one load runs at a
	// time; a load requested meanwhile completes at once as skipped.
	Load(ctx context.Context) *Task

	// RefreshOnMutation recomputes the filtered view from memory.
	RefreshOnMutation() *Task
}

// Load implements Loader.
func (c *client) Load(ctx context.Context) *Task {
	if !c.track() {
		return completedTask("load", OutcomeFailed, errors.ErrClosed)
	}
	if !c.loading.CompareAndSwap(false, true) {
		c.tasks.Done()
		c.logger.Debug().Msg("Load already in progress, skipping")
		c.metrics.ObserveLoad(string(OutcomeSkipped), 0)
		return completedTask("load", OutcomeSkipped, nil)
	}

	c.transitionMu.Lock()
	c.loadingStream.Publish(true)
	c.transitionMu.Unlock()

	task := newTask("load")
	go func() {
		defer c.tasks.Done()

		outcome, err := c.runLoad(ctx)

		c.mu.Lock()
		clear(c.pending)
		c.mu.Unlock()

		c.transitionMu.Lock()
		c.loading.Store(false)
		c.loadingStream.Publish(false)
		c.transitionMu.Unlock()

		c.metrics.ObserveLoad(string(outcome), task.Duration())
		task.complete(outcome, err)
	}()
	return task
}

// runLoad performs one load and returns its outcome.
func (c *client) runLoad(ctx context.Context) (Outcome, error) {
	user, hasUser := c.users.CurrentUser(ctx)
	log := c.logger.With().Str("operation", "load").Str("user_id", user.ID).Logger()

	offline := !c.oracle.IsOnline(ctx)
	var cacheErr error
	if offline {
		env, ok, err := c.store.Read(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Reading cached snapshot failed")
			cacheErr = err
		}
		if ok {
			list := env.ProductsFor(user.ID)
			owner := ""
			if user.ID != "" && env.Owner == user.ID {
				owner = user.ID
			}
			c.replace(list, owner, OriginCache, env.SavedAt, false)
			log.Info().Int("products", len(list)).Msg("Offline, serving cached catalog")
			return OutcomeCached, nil
		}
		log.Debug().Msg("Offline with no cached catalog, trying the remote source")
	}

	if !hasUser {
		log.Debug().Msg("No signed in user, nothing to load")
		return OutcomeNoUser, nil
	}

	favorites, items, err := c.fetch(ctx, user.ID)
	if err != nil {
		var loadErr error
		if offline {
			loadErr = errors.WrapCatalog(errors.KindNoConnectivityNoCache, "load", err)
			if cacheErr != nil {
				loadErr = stderrors.Join(loadErr, cacheErr)
			}
		} else {
			loadErr = errors.WrapCatalog(errors.KindRemoteFetchFailed, "load", err)
		}
		log.Error().Err(loadErr).Msg("Catalog load failed")
		c.fail(loadErr)
		return OutcomeFailed, loadErr
	}

	merged := products.Merge(products.Snapshot(items).Dedupe(), favorites)
	c.replace(merged, user.ID, OriginRemote, utc.Now(), true)
	c.persist(ctx)

	log.Info().
		Int("products", len(merged)).
		Int("favorites", favorites.Len()).
		Msg("Catalog loaded")
	return OutcomeFetched, nil
}

// fetch gets the favorite set and the first page of products concurrently.
// A failure of either cancels the other.
func (c *client) fetch(ctx context.Context, userID string) (products.FavoriteSet, []products.Product, error) {
	var (
		favorites products.FavoriteSet
		items     []products.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, c.options.remoteTimeout)
		defer cancel()
		set, err := c.source.FavoriteIDs(callCtx, userID)
		if err != nil {
			return c.remoteErr(callCtx, "favorite_ids", err)
		}
		favorites = set
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, c.options.remoteTimeout)
		defer cancel()
		list, err := c.source.ListProducts(callCtx, sources.NewListOptions(sources.WithLimit(c.options.pageSize)))
		if err != nil {
			return c.remoteErr(callCtx, "list_products", err)
		}
		items = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if len(items) > c.options.pageSize {
		items = items[:c.options.pageSize]
	}
	return favorites, items, nil
}

// remoteErr turns an expired per-call deadline into a TimeoutError.
func (c *client) remoteErr(callCtx context.Context, op string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) && stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return errors.NewTimeoutError(op, c.options.remoteTimeout.String(), "remote call timed out")
	}
	return err
}

// replace swaps in a new snapshot, re-applies toggles committed during the
// load, publishes the view and fires change hooks. A successful fetch also
// clears the last error.
func (c *client) replace(list products.Snapshot, owner string, origin Origin, savedAt utc.Time, fetched bool) {
	c.mu.Lock()
	for id, favorite := range c.pending {
		list, _ = list.WithFavorite(id, favorite)
	}
	clear(c.pending)

	old := c.snapshot
	c.snapshot = list
	c.owner = owner
	c.origin = origin
	c.updatedAt = savedAt
	c.refilterLocked()
	if fetched && c.lastErr != nil {
		c.lastErr = nil
		c.errorStream.Publish(nil)
	}
	c.mu.Unlock()

	c.hooks.triggerSnapshotUpdate(old, list)
}

// fail records err as the last error and publishes it.
func (c *client) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.errorStream.Publish(err)
	c.mu.Unlock()
}

// refilterLocked recomputes and publishes the view. Callers hold c.mu.
func (c *client) refilterLocked() {
	c.filtered = c.filter.Apply(c.snapshot)
	c.productsStream.Publish(products.Snapshot(c.filtered).Clone())
	c.metrics.SetVisibleProducts(len(c.filtered))
}

// persist writes the current snapshot to the store. Failures are logged and
// otherwise ignored: the in-memory catalog stays authoritative.
func (c *client) persist(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.RLock()
	env := snapshot.NewEnvelope(c.owner, c.snapshot)
	c.mu.RUnlock()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.options.remoteTimeout)
	defer cancel()

	start := time.Now()
	if err := c.store.Write(writeCtx, env); err != nil {
		c.logger.Warn().Err(err).Int("products", len(env.Products)).Msg("Persisting catalog snapshot failed")
		return
	}
	c.logger.Debug().Int("products", len(env.Products)).Dur("took", time.Since(start)).Msg("Catalog snapshot persisted")
}

// RefreshOnMutation implements Loader.
func (c *client) RefreshOnMutation() *Task {
	c.mu.Lock()
	c.refilterLocked()
	c.mu.Unlock()
	return completedTask("refresh", OutcomeRefreshed, nil)
}
