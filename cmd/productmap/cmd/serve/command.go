// Package serve provides the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/cmd/emoji"
	"github.com/agentstation/productmap/internal/server"
)

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the REST API server with WebSocket and SSE support",
		Long: `Start a REST API server over the product catalog.

Every request names its user in the user header. Each user gets an
engine over the whole catalog and one over their favorites, created on
first use and closed once idle.

Features:
  - Product listing with search and pagination (/api/v1/products)
  - Favorite toggling (/api/v1/products/{id}/favorite)
  - WebSocket and Server-Sent Events streams of catalog changes
  - In-memory response caching with configurable TTL
  - Rate limiting, API key authentication, CORS
  - Prometheus metrics (/metrics)
  - Graceful shutdown with connection draining`,
		Example: `  # Start on default port 8080
  productmap serve

  # Start on custom port with authentication
  productmap serve --port 3000 --auth

  # Enable CORS for specific origins
  productmap serve --cors-origins "https://example.com,https://app.example.com"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, args, app)
		},
	}

	defaults := server.DefaultConfig()

	// Server configuration flags
	cmd.Flags().Int("port", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("user-header", defaults.UserHeader, "Header naming the user of a request")

	// CORS flags
	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	// Authentication flags
	cmd.Flags().Bool("auth", false, "Enable API key authentication")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "Authentication header name")

	// Performance flags
	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Int("cache-ttl", int(defaults.CacheTTL/time.Second), "Cache TTL in seconds")
	cmd.Flags().Duration("session-idle", defaults.SessionIdle, "Close the engines of a user after this long unused")

	// Timeout flags
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	// Features flags
	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable metrics endpoint")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")

	return cmd
}

// runServer starts the API server.
func runServer(cmd *cobra.Command, _ []string, app application.Application) error {
	cfg := parseConfig(cmd)
	logger := app.Logger()

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("session_idle", cfg.SessionIdle).
		Msg("Starting API server")

	// Connect to the catalog source before accepting requests
	if _, err := app.Source(cmd.Context()); err != nil {
		return fmt.Errorf("opening catalog source: %w", err)
	}

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start background services (WebSocket hub, SSE broadcaster, event broker)
	srv.Start()
	logger.Debug().Msg("Background services started")

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// cmd.Context() carries the signal handling from main.go
	return startWithGracefulShutdown(cmd.Context(), httpServer, srv, logger)
}

// parseConfig parses command flags into server configuration.
func parseConfig(cmd *cobra.Command) server.Config {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	// Override with environment variables
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		if p, err := parsePort(envPort); err == nil {
			port = p
		}
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
		host = envHost
	}

	return server.Config{
		Host:           host,
		Port:           port,
		PathPrefix:     mustGetString(cmd, "prefix"),
		UserHeader:     mustGetString(cmd, "user-header"),
		CORSEnabled:    mustGetBool(cmd, "cors"),
		CORSOrigins:    mustGetStringSlice(cmd, "cors-origins"),
		AuthEnabled:    mustGetBool(cmd, "auth"),
		AuthHeader:     mustGetString(cmd, "auth-header"),
		RateLimit:      mustGetInt(cmd, "rate-limit"),
		CacheTTL:       time.Duration(mustGetInt(cmd, "cache-ttl")) * time.Second,
		SessionIdle:    mustGetDuration(cmd, "session-idle"),
		ReadTimeout:    mustGetDuration(cmd, "read-timeout"),
		WriteTimeout:   mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:    mustGetDuration(cmd, "idle-timeout"),
		MetricsEnabled: mustGetBool(cmd, "metrics"),
	}
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// startWithGracefulShutdown serves until ctx is cancelled, then drains
// connections and stops the background services.
func startWithGracefulShutdown(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("service", "API").
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received via context")
		fmt.Fprintf(os.Stderr, "\n%s Shutting down API server...\n", emoji.Stop)

		// The parent context is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		fmt.Fprintf(os.Stderr, "%s API server stopped gracefully\n", emoji.Success)
		return nil
	}
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetStringSlice retrieves a string slice flag value or panics if the flag doesn't exist.
func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetDuration retrieves a duration flag value or panics if the flag doesn't exist.
func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
