// Package handlers provides HTTP request handlers for the productmap API.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/server/cache"
	"github.com/agentstation/productmap/internal/server/events"
	"github.com/agentstation/productmap/internal/server/response"
	"github.com/agentstation/productmap/internal/server/sessions"
	"github.com/agentstation/productmap/internal/server/sse"
	ws "github.com/agentstation/productmap/internal/server/websocket"
	"github.com/agentstation/productmap/pkg/logging"
	"github.com/agentstation/productmap/pkg/session"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app            application.Application
	sessions       *sessions.Registry
	cache          *cache.Cache[any]
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New creates a new Handlers instance.
func New(
	app application.Application,
	registry *sessions.Registry,
	cache *cache.Cache[any],
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		app:            app,
		sessions:       registry,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		startTime:      startTime,
	}
}

// userID returns the user of the request, or "" for anonymous requests.
func userID(r *http.Request) string {
	user, _ := session.FromContext().CurrentUser(r.Context())
	return user.ID
}

// session resolves the engine of the request user for the view. It writes
// the error response and returns false when there is none.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request, onlyFavorites bool) (*sessions.Session, bool) {
	id := userID(r)
	if id == "" {
		response.BadRequest(w, "Missing user", "Set the user id header")
		return nil, false
	}
	s, err := h.sessions.Get(id, onlyFavorites)
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("Creating session failed")
		response.ErrorFromType(w, err)
		return nil, false
	}
	return s, true
}

// ensureLoaded runs the first load of a fresh engine and waits for it.
func (h *Handlers) ensureLoaded(ctx context.Context, s *sessions.Session) error {
	state := s.Engine.State()
	if state.Origin != productmap.OriginNone || state.Loading {
		return nil
	}
	_, err := s.Engine.Load(ctx).Wait(ctx)
	return err
}

// refreshPeer reloads the other view of the user in the background so a
// favorite change shows up there too.
func (h *Handlers) refreshPeer(s *sessions.Session) {
	peer, ok := h.sessions.Peer(s)
	if !ok {
		return
	}
	peer.Engine.Load(context.Background())
}

// invalidate drops the cached responses of userID.
func (h *Handlers) invalidate(userID string) {
	invalidateUser(h.cache, userID)
}

func invalidateUser(c *cache.Cache[any], userID string) {
	prefix := "products:" + userID + ":"
	for key := range c.Items() {
		if strings.HasPrefix(key, prefix) {
			c.Delete(key)
		}
	}
}

// CacheInvalidator drops cached product responses of a user whenever the
// user's catalog changes.
type CacheInvalidator struct {
	cache *cache.Cache[any]
}

var _ events.Subscriber = (*CacheInvalidator)(nil)

// NewCacheInvalidator creates a subscriber invalidating c.
func NewCacheInvalidator(c *cache.Cache[any]) *CacheInvalidator {
	return &CacheInvalidator{cache: c}
}

// Send implements events.Subscriber.
func (ci *CacheInvalidator) Send(event events.Event) error {
	switch event.Type {
	case events.ProductAdded, events.ProductUpdated, events.ProductRemoved:
		invalidateUser(ci.cache, event.UserID)
	}
	return nil
}

// Close implements events.Subscriber.
func (ci *CacheInvalidator) Close() error {
	return nil
}
