package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no session exists for a client key.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when the stored session is past its expiry.
var ErrSessionExpired = errors.New("session expired")

// ErrSessionCorrupt is returned when a stored blob cannot be decoded.
var ErrSessionCorrupt = errors.New("session corrupt")

// ErrRedisUnavailable wraps transport failures from the Redis backend.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store persists one session per client key.
type Store interface {
	// Issue creates a session for clientKey, replacing any existing one.
	Issue(ctx context.Context, clientKey string, grant Grant) (*Session, error)
	// Verify returns the live session, or ErrSessionNotFound / ErrSessionExpired.
	Verify(ctx context.Context, clientKey string) (*Session, error)
	// Revoke deletes the session and reports whether one existed.
	Revoke(ctx context.Context, clientKey string) (bool, error)
	// Ping reports backend availability and latency.
	Ping(ctx context.Context) (time.Duration, error)
}

func newSession(clientKey string, grant Grant, now time.Time, ttl time.Duration) (*Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &Session{
		ClientKey: clientKey,
		Sequence:  grant.Sequence,
		Role:      grant.Role,
		Mask:      grant.Mask,
		Token:     token.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

func normalizeClock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

const sessionKeySegment = ":s:"

// RedisStore keeps sessions in Redis.
//
//	Performance: Issue is 1 SET, Verify is 1 GET (+1 DEL on expiry), Revoke is 1 DEL.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a [RedisStore]. prefix namespaces keys; ttl <= 0 means
// [DefaultTTL]; a nil now means time.Now.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration, now func() time.Time) *RedisStore {
	if prefix == "" {
		prefix = "dna"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		ttl:    normalizeTTL(ttl),
		now:    normalizeClock(now),
	}
}

// Sessions live under prefix:s: so other users of the prefix (the login
// throttle) stay out of EstimateActive.
func (s *RedisStore) key(clientKey string) string {
	return s.prefix + sessionKeySegment + clientKey
}

// Issue implements [Store].
func (s *RedisStore) Issue(ctx context.Context, clientKey string, grant Grant) (*Session, error) {
	sess, err := newSession(clientKey, grant, s.now(), s.ttl)
	if err != nil {
		return nil, err
	}

	data, err := Encode(sess)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, s.key(clientKey), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return sess, nil
}

// Verify implements [Store]. Corrupt blobs are deleted and reported as
// [ErrSessionCorrupt].
func (s *RedisStore) Verify(ctx context.Context, clientKey string) (*Session, error) {
	key := s.key(clientKey)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, decErr := Decode(data)
	if decErr != nil {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, decErr)
	}

	if sess.Expired(s.now()) {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Revoke implements [Store].
func (s *RedisStore) Revoke(ctx context.Context, clientKey string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(clientKey)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

// EstimateActive scans the session keyspace and counts entries, including ones that have
// expired but not been verified yet. Admin use only; it is O(n).
func (s *RedisStore) EstimateActive(ctx context.Context) (int, error) {
	pattern := s.prefix + sessionKeySegment + "*"
	var (
		cursor uint64
		total  int
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return total, nil
}
