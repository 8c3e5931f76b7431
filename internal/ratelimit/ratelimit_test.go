package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (AttemptLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := newWithClient(client, limit, window)
	t.Cleanup(func() { limiter.Close() })
	return limiter, mr
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "e1")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, allowed, "fourth attempt should be blocked")
}

func TestLimitIsPerEmployee(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different employee has an independent budget.
	allowed, err = limiter.Allow(ctx, "e2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNoOpLimiter(t *testing.T) {
	limiter := NoOpLimiter{}
	for i := 0; i < 100; i++ {
		allowed, err := limiter.Allow(context.Background(), "e1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	assert.NoError(t, limiter.Close())
}
