package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/go-redis/redis/v8"
)

// RealtimeEvent events:notifications 上的站内刷新事件
type RealtimeEvent struct {
	UserID  string `json:"userId"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type RealtimePublisher interface {
	PublishRealtime(ctx context.Context, ev RealtimeEvent) error
}

// RedisRealtimePublisher 通过 Redis PUBLISH 广播，实时网关订阅后推给在线连接
type RedisRealtimePublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisRealtimePublisher(rdb *redis.Client) *RedisRealtimePublisher {
	return &RedisRealtimePublisher{rdb: rdb, channel: cons.RealtimeChannel}
}

func (p *RedisRealtimePublisher) PublishRealtime(ctx context.Context, ev RealtimeEvent) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}
