package server

import (
	"net/http"
	"strings"

	"github.com/agentstation/productmap/internal/server/handlers"
	"github.com/agentstation/productmap/internal/server/middleware"
	"github.com/agentstation/productmap/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	// Create handlers instance
	h := handlers.New(
		s.app,
		s.sessions,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
		s.startTime,
	)

	// Register routes
	s.registerRoutes(mux, h)

	// Apply middleware chain
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints (no auth required)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Products endpoints
	mux.HandleFunc(prefix+"/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.HandleListProducts(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})

	mux.HandleFunc(prefix+"/products/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/products/"))

		switch {
		case len(parts) == 1 && parts[0] == "load":
			// POST /products/load
			if r.Method == http.MethodPost {
				h.HandleLoad(w, r)
				return
			}
		case len(parts) == 1:
			// GET /products/{id}
			if r.Method == http.MethodGet {
				h.HandleGetProduct(w, r, parts[0])
				return
			}
		case len(parts) == 2 && parts[1] == "favorite":
			// POST /products/{id}/favorite
			if r.Method == http.MethodPost {
				h.HandleToggleFavorite(w, r, parts[0])
				return
			}
		default:
			response.NotFound(w, "Not found", r.URL.Path)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})

	// Engine state
	mux.HandleFunc(prefix+"/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.HandleState(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})

	// Admin endpoints
	mux.HandleFunc(prefix+"/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.HandleStats(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})

	// Real-time endpoints
	mux.HandleFunc(prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc(prefix+"/updates/stream", h.HandleSSE)

	// Metrics endpoint (optional)
	if s.config.MetricsEnabled {
		mux.Handle("/metrics", s.app.Metrics().Handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	// User of the request (innermost, read by handlers)
	handler = middleware.User(cfg.UserHeader)(handler)

	// Request metrics (if enabled)
	if cfg.MetricsEnabled {
		handler = middleware.Metrics(s.app.Metrics(), s.route)(handler)
	}

	// Rate limiting (if enabled)
	if cfg.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, s.logger)
		handler = middleware.RateLimit(rateLimiter)(handler)
	}

	// Authentication (if enabled)
	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.HeaderName = cfg.AuthHeader
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	// CORS (if enabled)
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging, request ids and recovery (always enabled)
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// route maps a request path to its route template, keeping product ids out
// of metric labels.
func (s *Server) route(r *http.Request) string {
	prefix := s.config.PathPrefix
	path := r.URL.Path

	if !strings.HasPrefix(path, prefix+"/products/") {
		switch path {
		case "/health", "/metrics", "/favicon.ico",
			prefix + "/health", prefix + "/ready", prefix + "/products",
			prefix + "/state", prefix + "/stats",
			prefix + "/updates/ws", prefix + "/updates/stream":
			return path
		}
		return "other"
	}

	parts := splitPath(strings.TrimPrefix(path, prefix+"/products/"))
	switch {
	case len(parts) == 1 && parts[0] == "load":
		return prefix + "/products/load"
	case len(parts) == 1:
		return prefix + "/products/{id}"
	case len(parts) == 2 && parts[1] == "favorite":
		return prefix + "/products/{id}/favorite"
	}
	return "other"
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
