package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	Prefix      string
	MaxFailures int
	Cooldown    time.Duration
}

// Limiter counts failed logins per IP in Redis.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "dna"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check returns [ErrRateLimited] when ip has used up its failure budget.
func (l *Limiter) Check(ctx context.Context, ip string) error {
	n, err := l.Failures(ctx, ip)
	if err != nil {
		return err
	}
	if n >= l.config.MaxFailures {
		return ErrRateLimited
	}
	return nil
}

// RecordFailure counts one failed login and returns the running total.
func (l *Limiter) RecordFailure(ctx context.Context, ip string) (int, error) {
	count, err := l.incrementWithTTL(ctx, l.key(ip), l.config.Cooldown)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Reset clears the counter for ip. Called after a successful login.
func (l *Limiter) Reset(ctx context.Context, ip string) error {
	if err := l.redis.Del(ctx, l.key(ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Failures returns the current count for ip. Missing keys read as zero.
func (l *Limiter) Failures(ctx context.Context, ip string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(ip string) string {
	return l.config.Prefix + ":lf:" + ip
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: only the first hit sets the TTL.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
