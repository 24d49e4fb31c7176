package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/internal/metrics"
	snapmem "github.com/agentstation/productmap/internal/snapshot/memory"
	"github.com/agentstation/productmap/internal/sources/memory"
	"github.com/agentstation/productmap/pkg/connectivity"
	pmerrors "github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/snapshot"
	"github.com/agentstation/productmap/pkg/sources"
)

// testApplication is a minimal Application over the in-memory source.
type testApplication struct {
	logger  *zerolog.Logger
	source  *memory.Source
	backend snapshot.Backend
	metrics *metrics.Prometheus
}

func newTestApplication() *testApplication {
	logger := zerolog.Nop()
	return &testApplication{
		logger: &logger,
		source: memory.New(
			memory.WithProducts(
				products.Product{ID: "a", Name: "Apple"},
				products.Product{ID: "b", Name: "Banana"},
				products.Product{ID: "c", Name: "Cherry"},
			),
			memory.WithFavorites("alice", "b"),
		),
		backend: snapmem.New(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
}

func (a *testApplication) Productmap(opts ...productmap.Option) (productmap.Client, error) {
	base := []productmap.Option{
		productmap.WithConnectivity(connectivity.Online),
		productmap.WithLogger(a.logger),
		productmap.WithMetrics(a.metrics),
	}
	return productmap.New(a.source, append(base, opts...)...)
}

func (a *testApplication) Source(context.Context) (sources.Source, error) { return a.source, nil }

func (a *testApplication) SnapshotStore(userID string) (*snapshot.Store, error) {
	return snapshot.New(a.backend, snapshot.WithKey("products:"+userID)), nil
}

func (a *testApplication) Metrics() *metrics.Prometheus { return a.metrics }
func (a *testApplication) Logger() *zerolog.Logger { return a.logger }
func (a *testApplication) OutputFormat() string { return "table" }
func (a *testApplication) Version() string { return "test" }
func (a *testApplication) Commit() string { return "test-commit" }
func (a *testApplication) Date() string { return "test-date" }
func (a *testApplication) BuiltBy() string { return "test" }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	return cfg
}

// startServer starts a server over app and returns its base URL.
func startServer(t *testing.T, app *testApplication) (*Server, string) {
	t.Helper()
	srv, err := New(app, testConfig())
	require.NoError(t, err)
	srv.Start()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, ts.URL
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, method, url, user string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type listData struct {
	Products   []products.Product `json:"products"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
	View string `json:"view"`
}

func ids(list []products.Product) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

// TestServerInitialization tests that server.New() completes without blocking.
func TestServerInitialization(t *testing.T) {
	done := make(chan struct{})
	var srv *Server
	var newErr error

	go func() {
		srv, newErr = New(newTestApplication(), testConfig())
		close(done)
	}()

	select {
	case <-done:
		require.NoError(t, newErr)
		require.NotNil(t, srv)
	case <-time.After(5 * time.Second):
		t.Fatal("server.New() deadlocked - did not complete within 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestServerStartAndShutdown(t *testing.T) {
	srv, err := New(newTestApplication(), testConfig())
	require.NoError(t, err)
	srv.Start()
	srv.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestHealthEndpoints(t *testing.T) {
	_, base := startServer(t, newTestApplication())

	for _, path := range []string{"/health", "/api/v1/health", "/api/v1/ready"} {
		t.Run(path, func(t *testing.T) {
			status, env := do(t, http.MethodGet, base+path, "")
			assert.Equal(t, http.StatusOK, status)
			assert.Nil(t, env.Error)
		})
	}
}

func TestListProducts(t *testing.T) {
	_, base := startServer(t, newTestApplication())

	t.Run("requires a user", func(t *testing.T) {
		status, env := do(t, http.MethodGet, base+"/api/v1/products", "")
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})

	t.Run("loads on first use", func(t *testing.T) {
		status, env := do(t, http.MethodGet, base+"/api/v1/products", "alice")
		require.Equal(t, http.StatusOK, status)
		var data listData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, []string{"a", "b", "c"}, ids(data.Products))
		assert.Equal(t, 3, data.Pagination.Total)
		assert.Equal(t, "all", data.View)
		assert.True(t, data.Products[1].IsFavorite)
	})

	t.Run("favorites view", func(t *testing.T) {
		status, env := do(t, http.MethodGet, base+"/api/v1/products?favorites=true", "alice")
		require.Equal(t, http.StatusOK, status)
		var data listData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, []string{"b"}, ids(data.Products))
		assert.Equal(t, "favorites", data.View)
	})

	t.Run("search ignores case", func(t *testing.T) {
		status, env := do(t, http.MethodGet, base+"/api/v1/products?q=ERR", "alice")
		require.Equal(t, http.StatusOK, status)
		var data listData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, []string{"c"}, ids(data.Products))
	})

	t.Run("pagination", func(t *testing.T) {
		status, env := do(t, http.MethodGet, base+"/api/v1/products?limit=1&offset=1", "alice")
		require.Equal(t, http.StatusOK, status)
		var data listData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, []string{"b"}, ids(data.Products))
		assert.Equal(t, 3, data.Pagination.Total)
	})

	t.Run("other users see their own flags", func(t *testing.T) {
		status, env := do(t, http.MethodGet, base+"/api/v1/products?favorites=true", "bob")
		require.Equal(t, http.StatusOK, status)
		var data listData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Empty(t, data.Products)
	})
}

func TestGetProduct(t *testing.T) {
	_, base := startServer(t, newTestApplication())

	status, env := do(t, http.MethodGet, base+"/api/v1/products/a", "alice")
	require.Equal(t, http.StatusOK, status)
	var p products.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Apple", p.Name)

	status, env = do(t, http.MethodGet, base+"/api/v1/products/zzz", "alice")
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestToggleFavorite(t *testing.T) {
	app := newTestApplication()
	_, base := startServer(t, app)

	// warm the response cache of the favorites view
	status, _ := do(t, http.MethodGet, base+"/api/v1/products?favorites=true", "alice")
	require.Equal(t, http.StatusOK, status)

	status, env := do(t, http.MethodPost, base+"/api/v1/products/a/favorite", "alice")
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Outcome  string `json:"outcome"`
		Favorite bool   `json:"favorite"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "toggled", data.Outcome)
	assert.True(t, data.Favorite)

	_, present := app.source.FavoriteName("alice", "a")
	assert.True(t, present)

	// the favorites view is reloaded in the background
	assert.Eventually(t, func() bool {
		_, env := do(t, http.MethodGet, base+"/api/v1/products?favorites=true", "alice")
		var list listData
		return json.Unmarshal(env.Data, &list) == nil && len(list.Products) == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestToggleFavoriteFailure(t *testing.T) {
	app := newTestApplication()
	_, base := startServer(t, app)

	status, _ := do(t, http.MethodGet, base+"/api/v1/products", "alice")
	require.Equal(t, http.StatusOK, status)

	app.source.Fail(memory.OpSetFavorite, pmerrors.ErrUnavailable)
	status, env := do(t, http.MethodPost, base+"/api/v1/products/a/favorite", "alice")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(pmerrors.KindRemoteWriteFailed), env.Error.Details)

	status, env = do(t, http.MethodGet, base+"/api/v1/products/a", "alice")
	require.Equal(t, http.StatusOK, status)
	var p products.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.False(t, p.IsFavorite)
}

func TestLoadEndpoint(t *testing.T) {
	app := newTestApplication()
	_, base := startServer(t, app)

	status, env := do(t, http.MethodPost, base+"/api/v1/products/load", "alice")
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Outcome string           `json:"outcome"`
		State   productmap.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "fetched", data.Outcome)
	assert.Equal(t, 3, data.State.Products)

	app.source.Fail(memory.OpListProducts, pmerrors.ErrUnavailable)
	status, env = do(t, http.MethodPost, base+"/api/v1/products/load", "alice")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(pmerrors.KindRemoteFetchFailed), env.Error.Details)

	// the last good snapshot is still served
	status, env = do(t, http.MethodGet, base+"/api/v1/state", "alice")
	require.Equal(t, http.StatusOK, status)
	var state productmap.State
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, 3, state.Products)
	assert.Equal(t, productmap.LoadStateError, state.LoadState)
	assert.NotEmpty(t, state.LastError)
}

func TestMethodNotAllowed(t *testing.T) {
	_, base := startServer(t, newTestApplication())

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/products"},
		{http.MethodGet, "/api/v1/products/load"},
		{http.MethodGet, "/api/v1/products/a/favorite"},
		{http.MethodPost, "/api/v1/state"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, _ := do(t, tc.method, base+tc.path, "alice")
			assert.Equal(t, http.StatusMethodNotAllowed, status)
		})
	}

	status, _ := do(t, http.MethodGet, base+"/api/v1/products/a/b/c", "alice")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsEndpoint(t *testing.T) {
	_, base := startServer(t, newTestApplication())

	status, _ := do(t, http.MethodGet, base+"/api/v1/products/a", "alice")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "productmap_loads_total")
	assert.Contains(t, string(body), `route="/api/v1/products/{id}"`)
}

func TestRoute(t *testing.T) {
	srv, err := New(newTestApplication(), testConfig())
	require.NoError(t, err)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	tests := map[string]string{
		"/health":                       "/health",
		"/api/v1/products":              "/api/v1/products",
		"/api/v1/products/load":         "/api/v1/products/load",
		"/api/v1/products/p-1":          "/api/v1/products/{id}",
		"/api/v1/products/p-1/favorite": "/api/v1/products/{id}/favorite",
		"/api/v1/products/p-1/x/y":      "other",
		"/unknown":                      "other",
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, srv.route(httptest.NewRequest(http.MethodGet, path, nil)))
		})
	}
}

func TestWebSocketReceivesUserEvents(t *testing.T) {
	srv, base := startServer(t, newTestApplication())

	header := http.Header{}
	header.Set("X-User-ID", "alice")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/api/v1/updates/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.WSHub().ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	status, _ := do(t, http.MethodPost, base+"/api/v1/products/load", "alice")
	require.Equal(t, http.StatusOK, status)

	seen := map[string]bool{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for !seen["product.added"] {
		var msg struct {
			Type   string `json:"type"`
			UserID string `json:"user_id"`
		}
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &msg))
		seen[msg.Type] = true
		assert.Equal(t, "alice", msg.UserID)
	}
	assert.True(t, seen["client.connected"])
}

func TestStatsEndpoint(t *testing.T) {
	_, base := startServer(t, newTestApplication())

	status, _ := do(t, http.MethodGet, base+"/api/v1/products", "alice")
	require.Equal(t, http.StatusOK, status)

	status, env := do(t, http.MethodGet, base+"/api/v1/stats", "")
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Sessions int            `json:"sessions"`
		Runtime  map[string]any `json:"runtime"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Sessions)
	assert.Contains(t, stats.Runtime, "goroutines")
}
