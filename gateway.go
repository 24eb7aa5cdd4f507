package notify_sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/message"
	"github.com/cydxin/notify-sdk/service"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// UserSink 把帧推给某个用户的在线连接，WsServer 实现
type UserSink interface {
	SendToUser(userID string, msg []byte) int
}

// Gateway 订阅 events:notifications，把站内刷新事件转成 WS 帧推给在线用户。
// 多实例部署时每个实例各自订阅，只推自己持有的连接。
type Gateway struct {
	rdb     *redis.Client
	sink    UserSink
	channel string
	logger  *zap.Logger

	// 订阅断开后的重连间隔
	retryDelay time.Duration

	ready chan struct{}
}

func NewGateway(rdb *redis.Client, sink UserSink, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		rdb:        rdb,
		sink:       sink,
		channel:    cons.RealtimeChannel,
		logger:     logger,
		retryDelay: time.Second,
		ready:      make(chan struct{}),
	}
}

// Ready 首次订阅成功后关闭
func (g *Gateway) Ready() <-chan struct{} {
	return g.ready
}

// Run 阻塞直到 ctx 取消；订阅失败或连接断开时按 retryDelay 重连
func (g *Gateway) Run(ctx context.Context) error {
	if g.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	first := true
	for {
		err := g.subscribe(ctx, &first)
		if ctx.Err() != nil {
			return nil
		}
		g.logger.Warn("realtime subscription lost, reconnecting", zap.String("channel", g.channel), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(g.retryDelay):
		}
	}
}

func (g *Gateway) subscribe(ctx context.Context, first *bool) error {
	sub := g.rdb.Subscribe(ctx, g.channel)
	defer sub.Close()

	// 等订阅确认，之后发布的事件才不会漏
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if *first {
		*first = false
		close(g.ready)
	}
	g.logger.Info("realtime gateway subscribed", zap.String("channel", g.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("subscription channel closed")
			}
			g.dispatch(msg.Payload)
		}
	}
}

func (g *Gateway) dispatch(payload string) {
	var ev service.RealtimeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		g.logger.Warn("malformed realtime event", zap.Error(err))
		return
	}
	if ev.UserID == "" {
		return
	}
	frame, _ := json.Marshal(message.NotificationFrame{
		Type:    message.WsTypeNotification,
		ID:      ev.ID,
		Message: ev.Message,
		Count:   ev.Count,
	})
	n := g.sink.SendToUser(ev.UserID, frame)
	g.logger.Debug("realtime event forwarded",
		zap.String("user_id", ev.UserID),
		zap.String("notification_id", ev.ID),
		zap.Int("conns", n))
}
