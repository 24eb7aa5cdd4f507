package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/go-redis/redis/v8"
)

// markerPending 标记已被抢占、通知行还没落库时的占位值
const markerPending = "pending"

// DedupCache 去重窗口标记：dedupe:{recipientId}:{templateId}:{entityId}
//
// 抢占（SET NX EX）发生在落库之前，同一窗口内只有一个调用方走新建路径，
// 其余调用方走聚合路径。落库成功后用通知 id 覆盖占位值（Arm），失败则删除（Release）。
type DedupCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDedupCache(rdb *redis.Client, ttl time.Duration) *DedupCache {
	if ttl <= 0 {
		ttl = cons.DedupWindow
	}
	return &DedupCache{rdb: rdb, ttl: ttl}
}

func DedupKey(recipientID, templateID, entityID string) string {
	return fmt.Sprintf("%s%s:%s:%s", cons.DedupKeyPrefix, recipientID, templateID, entityID)
}

func (c *DedupCache) ensure() error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

// Acquire 原子抢占标记；返回 false 表示窗口内已有其他事件
func (c *DedupCache) Acquire(ctx context.Context, key string) (bool, error) {
	if err := c.ensure(); err != nil {
		return false, err
	}
	return c.rdb.SetNX(ctx, key, markerPending, c.ttl).Result()
}

// Arm 落库成功后写入通知 id，并重置 TTL
func (c *DedupCache) Arm(ctx context.Context, key, notificationID string) error {
	if err := c.ensure(); err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, notificationID, c.ttl).Err()
}

func (c *DedupCache) Release(ctx context.Context, key string) error {
	if err := c.ensure(); err != nil {
		return err
	}
	return c.rdb.Del(ctx, key).Err()
}

// Peek 读取标记当前值；不存在时 ok=false
func (c *DedupCache) Peek(ctx context.Context, key string) (string, bool, error) {
	if err := c.ensure(); err != nil {
		return "", false, err
	}
	v, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (c *DedupCache) TTL() time.Duration { return c.ttl }
