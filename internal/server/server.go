// Package server provides the HTTP API of productmap.
//
// Every request names its user in a header. The server keeps a pair of
// catalog engines per user (whole catalog and favorites only) and pushes
// their changes to the user's WebSocket and SSE clients.
package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/server/cache"
	"github.com/agentstation/productmap/internal/server/events"
	"github.com/agentstation/productmap/internal/server/events/adapters"
	"github.com/agentstation/productmap/internal/server/handlers"
	"github.com/agentstation/productmap/internal/server/sessions"
	"github.com/agentstation/productmap/internal/server/sse"
	ws "github.com/agentstation/productmap/internal/server/websocket"
	"github.com/agentstation/productmap/pkg/session"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	cache          *cache.Cache[any]
	sessions       *sessions.Registry
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	started        atomic.Bool
	startTime      time.Time
}

// New creates a new server instance with the given configuration.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	logger.Debug().Msg("Creating new server instance")

	// Set defaults
	defaults := DefaultConfig()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.SessionIdle == 0 {
		cfg.SessionIdle = defaults.SessionIdle
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = defaults.PathPrefix
	}
	if cfg.UserHeader == "" {
		cfg.UserHeader = defaults.UserHeader
	}

	// Create unified event broker
	broker := events.NewBroker(logger)

	// Create transport layers
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	// Subscribe transports to broker
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	logger.Debug().Msg("WebSocket transport subscribed - real-time updates active")
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))
	logger.Debug().Msg("SSE transport subscribed - streaming updates active")

	// Responses are cached until the user's catalog changes
	responses := cache.New[any](cfg.CacheTTL, cfg.CacheTTL*2)
	broker.Subscribe(handlers.NewCacheInvalidator(responses))

	// One engine pair per user, created on first request
	registry := sessions.NewRegistry(sessionFactory(app), broker, cfg.SessionIdle, logger)

	// Create context for managing background services
	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		app:            app,
		cache:          responses,
		sessions:       registry,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		startTime: time.Now(),
	}

	logger.Debug().Msg("Server instance created successfully")
	return server, nil
}

// sessionFactory builds the engine of one user view. Engines share the
// application source and backend; each user gets its own snapshot key.
func sessionFactory(app application.Application) sessions.Factory {
	return func(userID string, onlyFavorites bool) (productmap.Client, error) {
		store, err := app.SnapshotStore(userID)
		if err != nil {
			return nil, err
		}
		return app.Productmap(
			productmap.WithUserProvider(session.Static(userID)),
			productmap.WithOnlyFavorites(onlyFavorites),
			productmap.WithSnapshotStore(store),
		)
	}
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.logger.Debug().Msg("Starting background services")

	services := []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run}
	remaining := make(chan struct{}, len(services))
	for _, run := range services {
		go func() {
			run(s.ctx)
			remaining <- struct{}{}
		}()
	}
	go func() {
		for range services {
			<-remaining
		}
		close(s.done)
	}()

	s.logger.Debug().Msg("All background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown closes every session and stops the background services.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")

	s.sessions.Close()
	s.cancel()
	if !s.started.Load() {
		return nil
	}

	select {
	case <-s.done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Cache returns the server's response cache.
func (s *Server) Cache() *cache.Cache[any] {
	return s.cache
}

// Sessions returns the per-user engine registry.
func (s *Server) Sessions() *sessions.Registry {
	return s.sessions
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
