package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/productmap/internal/server/response"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled     bool
	APIKey      string
	HeaderName  string
	PublicPaths []string
}

// DefaultAuthConfig returns default authentication configuration. The key is
// read from PRODUCTMAP_API_KEY.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:     false,
		APIKey:      os.Getenv("PRODUCTMAP_API_KEY"),
		HeaderName:  "X-API-Key",
		PublicPaths: []string{"/health", "/api/v1/health", "/api/v1/ready", "/metrics"},
	}
}

// Auth middleware validates API keys for protected endpoints.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || slices.Contains(config.PublicPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := extractAPIKey(r, config.HeaderName)
			if !validKey(apiKey, config.APIKey) {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("key_provided", apiKey != "").
					Msg("Authentication failed")

				response.Unauthorized(w, "Invalid or missing API key",
					"Provide a valid API key in the "+config.HeaderName+" header")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validKey compares in constant time. An unset server key rejects everything.
func validKey(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// extractAPIKey reads the key from the configured header or a bearer token.
func extractAPIKey(r *http.Request, header string) string {
	if apiKey := r.Header.Get(header); apiKey != "" {
		return apiKey
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return auth
}
