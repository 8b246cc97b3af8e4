package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultWindow      = 15 * time.Minute
)

// LoginLimiter is a fixed-window failure counter backed by Redis.
// Key format: ratelimit:login:<email>:<ip>
// Only failed credential exchanges consume budget; once the window holds
// maxFailures failures, further attempts are denied until the key expires.
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
// Non-positive settings fall back to 5 failures per 15 minutes.
func NewLoginLimiter(client *redis.Client, maxFailures int64, window time.Duration) *LoginLimiter {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, maxFailures: maxFailures, window: window}
}

// Allow reports whether another attempt is permitted for this (email, ip).
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email, ip)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("rate limit read: %w", err)
	}
	return n < l.maxFailures, nil
}

// RecordFailure consumes one unit of budget. The window starts at the first
// failure and is not extended by later ones.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email, ip string) error {
	key := l.key(email, ip)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return nil
}

func (l *LoginLimiter) key(email, ip string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", strings.ToLower(email), ip)
}
