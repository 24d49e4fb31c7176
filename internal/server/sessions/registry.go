// Package sessions keeps one pair of catalog engines per API user.
//
// Each user gets an engine over the whole catalog and one restricted to
// favorites, created on first use and closed after an idle period. Engine
// hooks and streams are forwarded to the event broker scoped to the user.
package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/internal/server/cache"
	"github.com/agentstation/productmap/internal/server/events"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
)

// Factory builds the engine for a user.
type Factory func(userID string, onlyFavorites bool) (productmap.Client, error)

// Publisher receives engine events. *events.Broker implements it.
type Publisher interface {
	Publish(eventType events.EventType, userID string, data any)
}

// Session is one live engine.
type Session struct {
	UserID        string
	OnlyFavorites bool
	Engine        productmap.Client

	cancel context.CancelFunc
}

// View names the session view in events.
func (s *Session) View() string {
	if s.OnlyFavorites {
		return "favorites"
	}
	return "all"
}

// Registry creates, caches and expires sessions.
type Registry struct {
	factory   Factory
	publisher Publisher
	logger    *zerolog.Logger

	mu       sync.Mutex // serializes creation so a key maps to one engine
	sessions *cache.Cache[*Session]
	closing  sync.WaitGroup
}

// NewRegistry creates a registry whose sessions close after idle.
func NewRegistry(factory Factory, publisher Publisher, idle time.Duration, logger *zerolog.Logger) *Registry {
	r := &Registry{
		factory:   factory,
		publisher: publisher,
		logger:    logger,
		sessions:  cache.New[*Session](idle, idle/2),
	}
	r.sessions.OnEvicted(r.evict)
	return r
}

func key(userID string, onlyFavorites bool) string {
	if onlyFavorites {
		return userID + "|favorites"
	}
	return userID + "|all"
}

// Get returns the session of userID for the view, creating it on first use.
// Every access restarts the idle timer.
func (r *Registry) Get(userID string, onlyFavorites bool) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.NewValidationError("user_id", userID, "a user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(userID, onlyFavorites)
	if s, ok := r.sessions.Get(k); ok {
		r.sessions.Set(k, s)
		return s, nil
	}

	engine, err := r.factory(userID, onlyFavorites)
	if err != nil {
		return nil, errors.WrapResource("create", "session", userID, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{UserID: userID, OnlyFavorites: onlyFavorites, Engine: engine, cancel: cancel}
	r.connect(ctx, s)

	// close a stale entry that expired but was not purged yet
	r.sessions.Delete(k)
	r.sessions.Set(k, s)

	r.logger.Debug().
		Str("user_id", userID).
		Str("view", s.View()).
		Msg("Session created")
	return s, nil
}

// Peer returns the live session of the same user with the other view.
func (r *Registry) Peer(s *Session) (*Session, bool) {
	return r.sessions.Get(key(s.UserID, !s.OnlyFavorites))
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return len(r.sessions.Items())
}

// Close closes every session and waits for the engines to stop.
func (r *Registry) Close() {
	r.mu.Lock()
	for k := range r.sessions.Items() {
		r.sessions.Delete(k)
	}
	r.mu.Unlock()
	r.closing.Wait()
}

func (r *Registry) evict(k string, s *Session) {
	r.logger.Debug().Str("session", k).Msg("Session closed")
	s.cancel()
	r.closing.Add(1)
	go func() {
		defer r.closing.Done()
		if err := s.Engine.Close(); err != nil {
			r.logger.Warn().Err(err).Str("session", k).Msg("Closing session engine failed")
		}
	}()
}

// connect forwards the engine hooks and streams of s to the publisher.
func (r *Registry) connect(ctx context.Context, s *Session) {
	view := s.View()
	pub := r.publisher

	s.Engine.OnProductAdded(func(p products.Product) {
		pub.Publish(events.ProductAdded, s.UserID, map[string]any{"view": view, "product": p})
	})
	s.Engine.OnProductUpdated(func(old, updated products.Product) {
		pub.Publish(events.ProductUpdated, s.UserID, map[string]any{"view": view, "old_product": old, "product": updated})
	})
	s.Engine.OnProductRemoved(func(p products.Product) {
		pub.Publish(events.ProductRemoved, s.UserID, map[string]any{"view": view, "product": p})
	})

	loading := s.Engine.LoadingStream().Subscribe(ctx)
	failures := s.Engine.ErrorStream().Subscribe(ctx)
	<-loading  // current values are not transitions
	<-failures

	go func() {
		for loading != nil || failures != nil {
			select {
			case v, ok := <-loading:
				if !ok {
					loading = nil
					continue
				}
				pub.Publish(events.LoadingChanged, s.UserID, map[string]any{"view": view, "loading": v})
			case err, ok := <-failures:
				if !ok {
					failures = nil
					continue
				}
				data := map[string]any{"view": view, "error": nil}
				if err != nil {
					data["error"] = err.Error()
					if kind, found := errors.KindOf(err); found {
						data["kind"] = kind
					}
				}
				pub.Publish(events.ErrorChanged, s.UserID, data)
			}
		}
	}()
}
