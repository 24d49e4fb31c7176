package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/internal/sources/memory"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/sources"
)

func testConfig() *Config {
	return &Config{
		Source:           "memory",
		ConnectTimeout:   time.Second,
		ConnectivityMode: "online",
		SnapshotBackend:  "memory",
		SnapshotFormat:   "json",
		PageSize:         30,
		RemoteTimeout:    time.Second,
		LogFormat:        "json",
		LogOutput:        "discard",
	}
}

func newTestApp(t *testing.T, src *memory.Source) *App {
	t.Helper()
	logger := zerolog.Nop()
	a, err := New("1.2.3", "abc123", "2026-01-02", "test",
		WithConfig(testConfig()),
		WithLogger(&logger),
		WithSource(src),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, a.Shutdown(ctx))
	})
	return a
}

func fruitSource() *memory.Source {
	return memory.New(
		memory.WithProducts(
			products.Product{ID: "c", Name: "Cherry"},
			products.Product{ID: "a", Name: "Apple"},
			products.Product{ID: "b", Name: "Banana"},
		),
		memory.WithFavorites("alice", "b"),
	)
}

// run executes the root command and returns what it wrote to stdout.
func run(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	cmd := a.createRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeProducts(t *testing.T, out string) []products.Product {
	t.Helper()
	var list []products.Product
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	return list
}

func TestSearchCommand(t *testing.T) {
	a := newTestApp(t, fruitSource())

	out, err := run(t, a, "search", "--user", "alice", "-o", "json")
	require.NoError(t, err)

	list := decodeProducts(t, out)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Apple", "Banana", "Cherry"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.False(t, list[0].IsFavorite)
	assert.True(t, list[1].IsFavorite)
}

func TestSearchCommandQuery(t *testing.T) {
	a := newTestApp(t, fruitSource())

	out, err := run(t, a, "search", "AN", "--user", "alice", "-o", "json")
	require.NoError(t, err)

	list := decodeProducts(t, out)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestSearchCommandFavorites(t *testing.T) {
	a := newTestApp(t, fruitSource())

	out, err := run(t, a, "search", "--favorites", "--user", "alice", "-o", "json")
	require.NoError(t, err)

	list := decodeProducts(t, out)
	require.Len(t, list, 1)
	assert.Equal(t, "Banana", list[0].Name)
}

func TestLoadCommand(t *testing.T) {
	a := newTestApp(t, fruitSource())

	out, err := run(t, a, "load", "--user", "alice", "-o", "json")
	require.NoError(t, err)

	var state productmap.State
	require.NoError(t, json.Unmarshal([]byte(out), &state), out)
	assert.Equal(t, productmap.LoadStateIdle, state.LoadState)
	assert.Equal(t, productmap.OriginRemote, state.Origin)
	assert.Equal(t, 3, state.Products)
	assert.Equal(t, "alice", state.Owner)
}

func TestLoadCommandWithoutUser(t *testing.T) {
	src := fruitSource()
	a := newTestApp(t, src)

	out, err := run(t, a, "load", "-o", "json")
	require.NoError(t, err)

	var state productmap.State
	require.NoError(t, json.Unmarshal([]byte(out), &state), out)
	assert.Equal(t, 0, state.Products)
	assert.Equal(t, 0, src.TotalCalls())
}

func TestFavoriteCommand(t *testing.T) {
	src := fruitSource()
	a := newTestApp(t, src)

	out, err := run(t, a, "favorite", "a", "--user", "alice", "-o", "json")
	require.NoError(t, err)

	var p products.Product
	require.NoError(t, json.Unmarshal([]byte(out), &p), out)
	assert.Equal(t, "a", p.ID)
	assert.True(t, p.IsFavorite)

	name, ok := src.FavoriteName("alice", "a")
	assert.True(t, ok)
	assert.Equal(t, "Apple", name)
}

func TestFavoriteCommandRequiresUser(t *testing.T) {
	a := newTestApp(t, fruitSource())

	_, err := run(t, a, "favorite", "a")
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	a := newTestApp(t, fruitSource())

	out, err := run(t, a, "show", "c", "--user", "alice", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Cherry")

	_, err = run(t, a, "show", "zzz", "--user", "alice")
	assert.Error(t, err)
}

func TestSeedCommand(t *testing.T) {
	src := memory.New()
	a := newTestApp(t, src)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`products:
  - id: p1
    name: Pear
  - id: p2
    name: Plum
favorites:
  bob: [p2]
`), 0o600))

	out, err := run(t, a, "seed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 products")

	list, err := src.ListProducts(context.Background(), sources.NewListOptions())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	name, ok := src.FavoriteName("bob", "p2")
	assert.True(t, ok)
	assert.Equal(t, "Plum", name)
}

func TestVersionCommand(t *testing.T) {
	a := newTestApp(t, fruitSource())

	out, err := run(t, a, "version")
	require.NoError(t, err)
	assert.Equal(t, "productmap 1.2.3\n", out)

	out, err = run(t, a, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:   abc123")
}

func TestInvalidFormatRejected(t *testing.T) {
	a := newTestApp(t, fruitSource())

	_, err := run(t, a, "search", "-o", "xml")
	assert.Error(t, err)
}

func TestProductmapIsCached(t *testing.T) {
	a := newTestApp(t, fruitSource())

	first, err := a.Productmap()
	require.NoError(t, err)
	second, err := a.Productmap()
	require.NoError(t, err)
	assert.Same(t, first, second)

	custom, err := a.Productmap(productmap.WithOnlyFavorites(true))
	require.NoError(t, err)
	defer custom.Close()
	assert.NotSame(t, first, custom)
	assert.True(t, custom.OnlyFavorites())
}

func TestSnapshotStoreKeys(t *testing.T) {
	a := newTestApp(t, fruitSource())

	shared, err := a.SnapshotStore("")
	require.NoError(t, err)
	alice, err := a.SnapshotStore("alice")
	require.NoError(t, err)

	assert.Equal(t, "cached_products", shared.Key())
	assert.Equal(t, "cached_products.alice", alice.Key())
	assert.Equal(t, "json", alice.Codec().Name())
}
