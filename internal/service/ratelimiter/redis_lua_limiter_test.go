package ratelimiter

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisLuaLimiter(t *testing.T, bucket BucketConfig) (*RedisLuaLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisLuaLimiter(rdb, bucket)

	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return limiter, mr
}

func TestAllow_NilLimiter_FailOpen(t *testing.T) {
	ctx := context.Background()
	var limiter *RedisLuaLimiter

	allowed, err := limiter.Allow(ctx, "any")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed to be true for nil limiter")
	}
}

func TestNewRedisLuaLimiter_UnlimitedBucket_ReturnsNil(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	if l := NewRedisLuaLimiter(rdb, BucketConfig{}); l != nil {
		t.Fatalf("expected nil limiter for zero-capacity bucket")
	}
	if l := NewRedisLuaLimiter(nil, NewBucketConfigFromPerMinute(10)); l != nil {
		t.Fatalf("expected nil limiter for nil redis client")
	}
}

func TestAllow_ExhaustsBucket(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestRedisLuaLimiter(t, BucketConfig{Capacity: 2, RefillRate: 0.001})

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "user-1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("expected submission %d to be allowed", i)
		}
	}

	allowed, err := limiter.Allow(ctx, "user-1")
	if err != nil {
		t.Fatalf("allow after exhaustion: %v", err)
	}
	if allowed {
		t.Fatalf("expected submission beyond capacity to be denied")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestRedisLuaLimiter(t, BucketConfig{Capacity: 1, RefillRate: 0.001})

	if allowed, _ := limiter.Allow(ctx, "user-a"); !allowed {
		t.Fatalf("expected first submission for user-a to be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "user-a"); allowed {
		t.Fatalf("expected second submission for user-a to be denied")
	}
	if allowed, _ := limiter.Allow(ctx, "user-b"); !allowed {
		t.Fatalf("expected user-b to have an untouched bucket")
	}
}

func TestAllow_RedisDown_FailOpen(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestRedisLuaLimiter(t, NewBucketConfigFromPerMinute(10))
	mr.Close()

	allowed, err := limiter.Allow(ctx, "user-1")
	if err == nil {
		t.Fatalf("expected error when redis is down")
	}
	if !allowed {
		t.Fatalf("expected fail-open when redis is down")
	}
}

func TestNewBucketConfigFromPerMinute(t *testing.T) {
	cfg := NewBucketConfigFromPerMinute(30)
	if cfg.Capacity != 30 {
		t.Fatalf("expected capacity 30, got %d", cfg.Capacity)
	}
	if cfg.RefillRate != 0.5 {
		t.Fatalf("expected refill rate 0.5, got %v", cfg.RefillRate)
	}
	if cfg := NewBucketConfigFromPerMinute(0); cfg.Capacity != 0 {
		t.Fatalf("expected zero bucket for non-positive input")
	}
}
