package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, max int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb, Config{MaxFailures: max, Cooldown: time.Minute}), mr
}

func TestLimiterBlocksAfterBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := l.Check(ctx, "203.0.113.7"); err != nil {
			t.Fatalf("attempt %d should be allowed: %v", i, err)
		}
		n, err := l.RecordFailure(ctx, "203.0.113.7")
		if err != nil || n != i {
			t.Fatalf("record failure %d: n=%d err=%v", i, n, err)
		}
	}
	if err := l.Check(ctx, "203.0.113.7"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}
	if err := l.Check(ctx, "198.51.100.1"); err != nil {
		t.Fatalf("other IPs are unaffected: %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	if _, err := l.RecordFailure(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ttl := mr.TTL("dna:lf:203.0.113.7"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	mr.FastForward(time.Minute)
	if err := l.Check(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("window should have expired: %v", err)
	}
}

func TestLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	_, _ = l.RecordFailure(ctx, "203.0.113.7")
	if err := l.Reset(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.Failures(ctx, "203.0.113.7"); n != 0 {
		t.Fatalf("expected zero failures after reset, got %d", n)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, 1)
	mr.Close()

	if err := l.Check(context.Background(), "203.0.113.7"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected redis unavailable, got %v", err)
	}
}
