package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	cfg := DefaultAuthConfig()
	cfg.Enabled = true
	cfg.APIKey = "secret"
	h := Auth(cfg, nopLogger())(okHandler())

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{name: "missing key", path: "/api/v1/products", want: http.StatusUnauthorized},
		{name: "wrong key", path: "/api/v1/products", header: map[string]string{"X-API-Key": "nope"}, want: http.StatusUnauthorized},
		{name: "header key", path: "/api/v1/products", header: map[string]string{"X-API-Key": "secret"}, want: http.StatusOK},
		{name: "bearer token", path: "/api/v1/products", header: map[string]string{"Authorization": "Bearer secret"}, want: http.StatusOK},
		{name: "raw authorization", path: "/api/v1/products", header: map[string]string{"Authorization": "secret"}, want: http.StatusOK},
		{name: "public health", path: "/health", want: http.StatusOK},
		{name: "public metrics", path: "/metrics", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	h := Auth(DefaultAuthConfig(), nopLogger())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthUnsetKeyRejects(t *testing.T) {
	cfg := AuthConfig{Enabled: true, HeaderName: "X-API-Key"}
	h := Auth(cfg, nopLogger())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("X-API-Key", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
