package sources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap/internal/sources/memory"
	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/sources"
)

func TestListOptions(t *testing.T) {
	o := sources.NewListOptions()
	assert.Equal(t, constants.OrderByName, o.OrderBy)
	assert.Equal(t, constants.DefaultPageSize, o.Limit)

	o = sources.NewListOptions(sources.WithLimit(5), sources.WithOrderBy("id"))
	assert.Equal(t, 5, o.Limit)
	assert.Equal(t, "id", o.OrderBy)

	o = sources.NewListOptions(sources.WithLimit(constants.MaxPageSize + 1))
	assert.Equal(t, constants.MaxPageSize, o.Limit)

	assert.Equal(t, constants.DefaultPageSize, sources.ListOptions{}.Normalized().Limit)
}

func TestIDs(t *testing.T) {
	assert.True(t, sources.MongoDBID.IsValid())
	assert.True(t, sources.MemoryID.IsValid())
	assert.False(t, sources.ID("firestore").IsValid())
	assert.Equal(t, "memory", sources.MemoryID.String())
}

func TestRegistry(t *testing.T) {
	reg := sources.NewSources()
	src := memory.New()
	reg.Set(src)

	got, ok := reg.Get(sources.MemoryID)
	require.True(t, ok)
	assert.Same(t, src, got)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []sources.ID{sources.MemoryID}, reg.IDs())

	require.NoError(t, reg.Close(context.Background()))
	assert.Equal(t, 0, reg.Len())

	reg.Set(memory.New())
	reg.Delete(sources.MemoryID)
	_, ok = reg.Get(sources.MemoryID)
	assert.False(t, ok)
}
