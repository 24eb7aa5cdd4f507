package queue

import (
	"context"
	"strconv"
)

// Message 待投递的消息：正文 + 消息头
type Message struct {
	Body    []byte
	Headers map[string]string
}

// Acknowledger 由具体 broker 实现，Delivery 通过它完成 ack / 死信。
type Acknowledger interface {
	Ack(ctx context.Context, d *Delivery) error
	Reject(ctx context.Context, d *Delivery, reason string) error
}

// Delivery 消费者拿到的一条消息
type Delivery struct {
	Queue   string
	ID      string
	Body    []byte
	Headers map[string]string

	Acknowledger Acknowledger
}

// Header 读取消息头，不存在返回空串
func (d *Delivery) Header(key string) string {
	if d == nil || d.Headers == nil {
		return ""
	}
	return d.Headers[key]
}

// IntHeader 读取整型消息头，缺失或非法时返回 def
func (d *Delivery) IntHeader(key string, def int) int {
	v := d.Header(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Ack 确认消息已处理
func (d *Delivery) Ack(ctx context.Context) error {
	return d.Acknowledger.Ack(ctx, d)
}

// Reject 否认且不重回队列：消息转入该队列的死信队列
func (d *Delivery) Reject(ctx context.Context, reason string) error {
	return d.Acknowledger.Reject(ctx, d, reason)
}

// Handler 消费回调；回调内部必须调用 Ack 或 Reject
type Handler func(ctx context.Context, d *Delivery)
