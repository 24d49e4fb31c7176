package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheGetSet(t *testing.T) {
	c := New[int](time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, Stats{ItemCount: 1}, c.GetStats())
	assert.Equal(t, map[string]int{"a": 1}, c.Items())
}

func TestCacheTTL(t *testing.T) {
	c := New[string](time.Minute, time.Minute)
	c.SetWithTTL("short", "x", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("short")
	assert.False(t, ok)
	assert.Empty(t, c.Items())
}

func TestCacheEviction(t *testing.T) {
	c := New[string](10*time.Millisecond, 5*time.Millisecond)

	var (
		mu      sync.Mutex
		evicted []string
	)
	c.OnEvicted(func(key, value string) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, key+"="+value)
	})

	c.SetWithTTL("kept", "k", time.Hour)
	c.Set("deleted", "d")
	c.Delete("deleted")
	c.Set("expired", "e")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(evicted) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.ElementsMatch(t, []string{"deleted=d", "expired=e"}, evicted)
	mu.Unlock()

	c.Clear()
	assert.Zero(t, c.ItemCount())
}

func TestCacheDeleteExpiredStillEvicts(t *testing.T) {
	c := New[string](10*time.Millisecond, time.Hour)
	var got string
	c.OnEvicted(func(key, _ string) { got = key })

	c.Set("stale", "s")
	time.Sleep(20 * time.Millisecond)
	c.Delete("stale")

	assert.Equal(t, "stale", got)
}
