package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/cache"
)

func TestTTLCache_SetGet(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](10, time.Minute)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 2)
	v, ok = c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTLCache_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	c := cache.New(10, time.Minute, cache.WithClock[string, string](clock))

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	advance(time.Minute + time.Second)

	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire after ttl")

	// Setting again resets the expiry.
	c.Set("k", "v2")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestTTLCache_Eviction(t *testing.T) {
	t.Parallel()

	c := cache.New[int, int](2, time.Minute)

	c.Set(1, 1)
	c.Set(2, 2)

	// Touch 1 so that 2 becomes the eviction candidate.
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Set(3, 3)

	_, ok = c.Get(2)
	assert.False(t, ok, "least recently used entry should be evicted")

	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestTTLCache_Delete(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](10, time.Minute)

	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	c.Delete("b")
}

func TestTTLCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.New[int, int](100, time.Minute)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				c.Set(n*100+j, j)
				c.Get(n * 100)
				c.Delete(n*100 + j/2)
			}
		}(i)
	}
	wg.Wait()
}
