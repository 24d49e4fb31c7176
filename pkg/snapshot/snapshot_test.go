package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap/internal/snapshot/memory"
	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/snapshot"
)

func sample() products.Snapshot {
	return products.Snapshot{
		{ID: "a", Name: "Apple", Description: "red", Images: []string{"a1.png", "a2.png"}, IsFavorite: true},
		{ID: "b", Name: "Banana"},
	}
}

func TestStoreReadMiss(t *testing.T) {
	store := snapshot.New(memory.New())

	env, ok, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, env.Products)
	assert.Equal(t, constants.SnapshotCacheKey, store.Key())
}

func TestStoreWriteRead(t *testing.T) {
	for _, codec := range []snapshot.Codec{snapshot.JSON, snapshot.YAML} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			store := snapshot.New(memory.New(), snapshot.WithCodec(codec))

			written := snapshot.NewEnvelope("u-1", sample())
			require.NoError(t, store.Write(ctx, written))

			env, ok, err := store.Read(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, constants.SnapshotVersion, env.Version)
			assert.Equal(t, "u-1", env.Owner)
			assert.Equal(t, sample(), env.Products)
			assert.Equal(t, written.SavedAt.Unix(), env.SavedAt.Unix())
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := snapshot.New(memory.New())

	require.NoError(t, store.Write(ctx, snapshot.NewEnvelope("u-1", sample())))
	require.NoError(t, store.Write(ctx, snapshot.NewEnvelope("u-2", sample()[:1])))

	env, ok, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u-2", env.Owner)
	assert.Len(t, env.Products, 1)
}

func TestStoreDecodeFailureIsMiss(t *testing.T) {
	backend := memory.New()
	backend.Raw(constants.SnapshotCacheKey, []byte("{not json"))
	store := snapshot.New(backend)

	_, ok, err := store.Read(context.Background())
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDeserializationFailed))
	assert.ErrorIs(t, err, errors.ErrDeserializationFailed)
}

func TestStoreRejectsFutureVersion(t *testing.T) {
	backend := memory.New()
	backend.Raw(constants.SnapshotCacheKey, []byte(`{"version":99,"products":[]}`))

	_, ok, err := snapshot.New(backend).Read(context.Background())
	assert.False(t, ok)
	assert.True(t, errors.IsKind(err, errors.KindDeserializationFailed))
}

func TestStoreBackendFailure(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	backend.FailPut = assert.AnError
	store := snapshot.New(backend)

	err := store.Write(ctx, snapshot.NewEnvelope("u-1", sample()))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	_, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "failed write leaves nothing behind")
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	store := snapshot.New(memory.New(), snapshot.WithKey("other"))
	require.NoError(t, store.Write(ctx, snapshot.NewEnvelope("", sample())))
	require.NoError(t, store.Clear(ctx))

	_, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "other", store.Key())
}

func TestEnvelopeProductsFor(t *testing.T) {
	env := snapshot.NewEnvelope("u-1", sample())

	assert.True(t, env.ProductsFor("u-1")[0].IsFavorite)
	assert.False(t, env.ProductsFor("u-2")[0].IsFavorite)
	assert.False(t, env.ProductsFor("")[0].IsFavorite)
	assert.True(t, env.Products[0].IsFavorite, "envelope is not mutated")
}

func TestCodecByName(t *testing.T) {
	c, err := snapshot.CodecByName("YAML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Name())

	c, err = snapshot.CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = snapshot.CodecByName("toml")
	assert.True(t, errors.IsValidationError(err))
}
