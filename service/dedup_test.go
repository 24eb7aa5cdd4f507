package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestDedupKey(t *testing.T) {
	if got := DedupKey("u1", "t1", "p1"); got != "dedupe:u1:t1:p1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDedupCache_AcquireOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewDedupCache(rdb, 300*time.Second)
	ctx := context.Background()
	key := DedupKey("u1", "t1", "p1")

	ok, err := c.Acquire(ctx, key)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = c.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("second acquire err: %v", err)
	}
	if ok {
		t.Fatalf("second acquire must fail inside the window")
	}

	v, found, err := c.Peek(ctx, key)
	if err != nil || !found || v != markerPending {
		t.Fatalf("peek: v=%q found=%v err=%v", v, found, err)
	}
	if ttl := mr.TTL(key); ttl != 300*time.Second {
		t.Fatalf("expected ttl 300s, got %v", ttl)
	}
}

func TestDedupCache_ArmAndExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewDedupCache(rdb, 0)
	ctx := context.Background()
	key := DedupKey("u1", "t1", "p1")

	if _, err := c.Acquire(ctx, key); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := c.Arm(ctx, key, "n-1"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	v, _, _ := c.Peek(ctx, key)
	if v != "n-1" {
		t.Fatalf("expected armed marker n-1, got %q", v)
	}

	mr.FastForward(301 * time.Second)
	ok, err := c.Acquire(ctx, key)
	if err != nil || !ok {
		t.Fatalf("acquire after window: ok=%v err=%v", ok, err)
	}
}

func TestDedupCache_Release(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewDedupCache(rdb, time.Minute)
	ctx := context.Background()
	key := DedupKey("u1", "t1", "p1")

	_, _ = c.Acquire(ctx, key)
	if err := c.Release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, found, _ := c.Peek(ctx, key); found {
		t.Fatalf("marker should be gone")
	}
}
