// Package ratelimit caps biometric verification attempts per employee.
// Repeated rapid attempts against one identity look like someone probing the
// matcher, so they are cut off before any biometric work happens.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vericlock-systems/vericlock/internal/metrics"
)

type AttemptLimiter interface {
	// Allow records one verification attempt for the employee and reports
	// whether it is within the limit.
	Allow(ctx context.Context, employeeID string) (bool, error)
	Close() error
}

type redisAttemptLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisAttemptLimiter builds a sliding-window limiter backed by redis.
func NewRedisAttemptLimiter(redisURL string, limit int, window time.Duration) (AttemptLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &redisAttemptLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}, nil
}

// newWithClient is used by tests to wire an existing client (miniredis).
func newWithClient(client *redis.Client, limit int, window time.Duration) AttemptLimiter {
	return &redisAttemptLimiter{client: client, limit: int64(limit), window: window}
}

func (r *redisAttemptLimiter) Allow(ctx context.Context, employeeID string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()

	// Atomic sliding window over a sorted set of attempt timestamps.
	script := `
		local key = KEYS[1]
		local now = tonumber(ARGV[1])
		local window_start = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])
		local ttl = tonumber(ARGV[4])

		redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

		local current = redis.call('ZCARD', key)

		if current < limit then
			redis.call('ZADD', key, now, now)
			redis.call('EXPIRE', key, ttl)
			return 1
		else
			return 0
		end
	`

	ttl := int64(r.window.Seconds()) + 1
	result, err := r.client.Eval(ctx, script, []string{"verify_attempts:" + employeeID}, now, windowStart, r.limit, ttl).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := result == 1
	if !allowed {
		metrics.VerifyRateLimited.Inc()
	}

	return allowed, nil
}

func (r *redisAttemptLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// NoOpLimiter always allows; used when rate limiting is disabled.
type NoOpLimiter struct{}

func (NoOpLimiter) Allow(ctx context.Context, employeeID string) (bool, error) {
	return true, nil
}

func (NoOpLimiter) Close() error {
	return nil
}
