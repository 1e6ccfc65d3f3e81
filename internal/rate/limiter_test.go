package rate

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLimiterBlocksAfterBudget(t *testing.T) {
	l, _ := newLimiter(t, Config{Prefix: "hrstub", MaxAttempts: 3, Window: time.Minute})
	ctx := t.Context()

	for i := 1; i <= 2; i++ {
		if err := l.RecordFailure(ctx, "Asha"); err != nil {
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	if err := l.Check(ctx, "asha"); err != nil {
		t.Fatalf("expected budget left, got %v", err)
	}
	if err := l.RecordFailure(ctx, "asha"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on the last attempt, got %v", err)
	}
	if err := l.Check(ctx, "ASHA "); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxAttempts: 1, Window: time.Minute})
	ctx := t.Context()

	_ = l.RecordFailure(ctx, "asha")
	if ttl := mr.TTL("signin:asha"); ttl != time.Minute {
		t.Fatalf("expected window ttl, got %v", ttl)
	}
	mr.FastForward(time.Minute + time.Second)
	if err := l.Check(ctx, "asha"); err != nil {
		t.Fatalf("expected fresh window, got %v", err)
	}
}

func TestLimiterReset(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 2})
	ctx := t.Context()

	_ = l.RecordFailure(ctx, "asha")
	if n, _ := l.Attempts(ctx, "asha"); n != 1 {
		t.Fatalf("expected 1 attempt, got %d", n)
	}
	if err := l.Reset(ctx, "asha"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if n, _ := l.Attempts(ctx, "asha"); n != 0 {
		t.Fatalf("expected 0 attempts, got %d", n)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newLimiter(t, Config{})
	mr.Close()
	if err := l.Check(t.Context(), "asha"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
