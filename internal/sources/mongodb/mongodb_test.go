package mongodb

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/sources"
)

func TestProductDocDecode(t *testing.T) {
	oid := primitive.NewObjectID()
	tests := []struct {
		name string
		id   any
		want string
	}{
		{name: "string id", id: "p-1", want: "p-1"},
		{name: "object id", id: oid, want: oid.Hex()},
		{name: "int32 id", id: int32(7), want: "7"},
		{name: "int64 id", id: int64(9), want: "9"},
		{name: "unsupported id", id: 1.5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"_id": tt.id, "name": "Apple", "images": []string{"a.png"}})
			require.NoError(t, err)

			var doc productDoc
			require.NoError(t, bson.Unmarshal(raw, &doc))
			p := doc.toProduct()
			assert.Equal(t, tt.want, p.ID)
			assert.Equal(t, "Apple", p.Name)
			assert.Equal(t, []string{"a.png"}, p.Images)
			assert.False(t, p.IsFavorite)
		})
	}
}

func TestProductWriteOmitsFavoriteFlag(t *testing.T) {
	raw, err := bson.Marshal(newProductWrite(products.Product{ID: "p1", Name: "Apple", IsFavorite: true}))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "p1", m["_id"])
	assert.NotContains(t, m, "is_favorite")
	assert.NotContains(t, m, "description")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "mongodb://localhost:27017", cfg.URI)
	assert.Equal(t, "productmap", cfg.Database)
}

// TestSourceIntegration runs against a live server when PRODUCTMAP_TEST_MONGO_URI is set.
func TestSourceIntegration(t *testing.T) {
	uri := os.Getenv("PRODUCTMAP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PRODUCTMAP_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.URI = uri
	cfg.Database = "productmap_test_" + uuid.NewString()[:8]

	src, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = src.db.Database.Drop(ctx)
		_ = src.Close(ctx)
	})

	require.NoError(t, src.UpsertProducts(ctx, []products.Product{
		{ID: "c", Name: "Cherry"},
		{ID: "a", Name: "Apple"},
		{ID: "b", Name: "Banana"},
	}))

	list, err := src.ListProducts(ctx, sources.NewListOptions(sources.WithLimit(2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, products.Snapshot(list).IDs())

	has, err := src.HasFavorite(ctx, "u1", "b")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, src.SetFavorite(ctx, "u1", products.Product{ID: "b", Name: "Banana"}, true))
	require.NoError(t, src.SetFavorite(ctx, "u1", products.Product{ID: "b", Name: "Banana"}, true))

	set, err := src.FavoriteIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, set.IDs())

	require.NoError(t, src.SetFavorite(ctx, "u1", products.Product{ID: "b"}, false))
	has, err = src.HasFavorite(ctx, "u1", "b")
	require.NoError(t, err)
	assert.False(t, has)
}
