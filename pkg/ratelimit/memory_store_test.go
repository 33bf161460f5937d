package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/ratelimit"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	defer store.Close()

	limiter, err := ratelimit.New(store, ratelimit.Config{Limit: 3, Window: time.Minute})
	require.NoError(t, err)

	for i := range 3 {
		res, err := limiter.Allow(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "event %d should be allowed", i+1)
		assert.Equal(t, 3, res.Limit)
	}
}

func TestLimiter_DeniesOverLimit(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	defer store.Close()

	limiter, err := ratelimit.New(store, ratelimit.Config{Limit: 2, Window: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		res, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, res.Allowed())
	}

	res, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Allowed(), "third event within the window must be denied")
	assert.Negative(t, res.Remaining)
	assert.Positive(t, res.RetryAfter())

	// A different key is unaffected.
	res, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestLimiter_WindowSlides(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now()}
	store := ratelimit.NewMemoryStore(ratelimit.WithNow(clock.Now))
	defer store.Close()

	limiter, err := ratelimit.New(store, ratelimit.Config{Limit: 2, Window: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		res, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed())
	}

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, res.Allowed())

	// After the window passes, events are allowed again.
	clock.Advance(time.Minute + time.Second)

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestLimiter_Reset(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	defer store.Close()

	limiter, err := ratelimit.New(store, ratelimit.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, res.Allowed())

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, res.Allowed())

	require.NoError(t, limiter.Reset(ctx, "k"))

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	defer store.Close()

	_, err := ratelimit.New(nil, ratelimit.Config{Limit: 1, Window: time.Minute})
	assert.ErrorIs(t, err, ratelimit.ErrStoreNil)

	_, err = ratelimit.New(store, ratelimit.Config{Limit: 0, Window: time.Minute})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)

	_, err = ratelimit.New(store, ratelimit.Config{Limit: 1, Window: 0})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
}

func TestLimiter_ConcurrentHits(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	defer store.Close()

	limiter, err := ratelimit.New(store, ratelimit.Config{Limit: 50, Window: time.Minute})
	require.NoError(t, err)

	var wg sync.WaitGroup
	allowed := make([]bool, 100)
	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := limiter.Allow(context.Background(), "shared")
			if err == nil {
				allowed[n] = res.Allowed()
			}
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 50, count, "exactly limit events should be allowed")
}
