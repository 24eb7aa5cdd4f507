package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 死信消息额外携带的消息头
const (
	HeaderDeadLetterRoutingKey = "x-dead-letter-routing-key"
	HeaderDeathReason          = "x-death-reason"
)

const (
	fieldBody = "body"

	defaultGroup = "workers"
	defaultBlock = 2 * time.Second
)

// RedisStreams 基于 Redis Stream + 消费组实现的持久化队列。
//
// 队列名即 stream key；每个队列有一个同名后缀 DeadLetterSuffix 的死信 stream。
// - Publish：XADD，正文放 body 字段，其余字段即消息头
// - Consume：XREADGROUP，在途（未 ack）消息数不超过 prefetch
// - Ack：XACK + XDEL
// - Reject：XADD 到死信 stream 后 XACK + XDEL 原消息（相当于 DLX 绑定）
//
// Redis 开启 AOF/RDB 后 stream 内容在重启后保留；消费者崩溃时未 ack 的消息留在 PEL，
// 同名消费者重启后会先把自己的 PEL 处理完。
type RedisStreams struct {
	rdb              *redis.Client
	group            string
	block            time.Duration
	deadLetterSuffix string
	logger           *zap.Logger
}

type Option func(*RedisStreams)

// WithGroup 消费组名
func WithGroup(group string) Option {
	return func(b *RedisStreams) {
		if group != "" {
			b.group = group
		}
	}
}

// WithBlock XREADGROUP 的阻塞时长，也决定了 ctx 取消后最长多久退出读循环
func WithBlock(d time.Duration) Option {
	return func(b *RedisStreams) {
		if d > 0 {
			b.block = d
		}
	}
}

func WithDeadLetterSuffix(suffix string) Option {
	return func(b *RedisStreams) {
		if suffix != "" {
			b.deadLetterSuffix = suffix
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *RedisStreams) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewRedisStreams(rdb *redis.Client, opts ...Option) *RedisStreams {
	b := &RedisStreams{
		rdb:              rdb,
		group:            defaultGroup,
		block:            defaultBlock,
		deadLetterSuffix: "_dlq",
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisStreams) ensure() error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

// DeadLetterQueue 队列对应的死信队列名
func (b *RedisStreams) DeadLetterQueue(queue string) string {
	return queue + b.deadLetterSuffix
}

// Declare 声明持久化队列及其死信队列（幂等）
func (b *RedisStreams) Declare(ctx context.Context, queue string) error {
	if err := b.ensure(); err != nil {
		return err
	}
	for _, name := range []string{queue, b.DeadLetterQueue(queue)} {
		err := b.rdb.XGroupCreateMkStream(ctx, name, b.group, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("declare %s: %w", name, err)
		}
	}
	return nil
}

// Publish 追加一条消息，返回 stream entry id
func (b *RedisStreams) Publish(ctx context.Context, queue string, msg Message) (string, error) {
	if err := b.ensure(); err != nil {
		return "", err
	}
	return b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: queue,
		Values: encodeFields(msg),
	}).Result()
}

// Consume 阻塞消费 queue，直到 ctx 取消。
// 同时在途的 handler 不超过 prefetch 个；ctx 取消后等待在途 handler 全部返回再退出。
func (b *RedisStreams) Consume(ctx context.Context, queue, consumer string, prefetch int, h Handler) error {
	if err := b.ensure(); err != nil {
		return err
	}
	if prefetch <= 0 {
		prefetch = 1
	}

	sem := make(chan struct{}, prefetch)
	var wg sync.WaitGroup
	defer wg.Wait()

	// 先处理本消费者 PEL 中遗留的消息（上次进程崩溃未 ack 的），再读新消息
	cursor := "0"

	for {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}
		slots := 1
	fill:
		for slots < prefetch {
			select {
			case sem <- struct{}{}:
				slots++
			default:
				break fill
			}
		}

		block := b.block
		if cursor != ">" {
			block = -1
		}
		deliveries, err := b.read(ctx, queue, consumer, cursor, slots, block)
		for i := len(deliveries); i < slots; i++ {
			<-sem
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Warn("xreadgroup failed", zap.String("queue", queue), zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		if cursor != ">" {
			if len(deliveries) == 0 {
				cursor = ">"
			} else {
				cursor = deliveries[len(deliveries)-1].ID
			}
		}

		for _, d := range deliveries {
			wg.Add(1)
			go func(d *Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				h(ctx, d)
			}(d)
		}
	}
}

func (b *RedisStreams) read(ctx context.Context, queue, consumer, cursor string, count int, block time.Duration) ([]*Delivery, error) {
	streams, err := b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    b.group,
		Consumer: consumer,
		Streams:  []string{queue, cursor},
		Count:    int64(count),
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var out []*Delivery
	for _, s := range streams {
		for _, m := range s.Messages {
			if len(m.Values) == 0 {
				// PEL 里的条目已被 XDEL，直接 ack 掉
				_ = b.rdb.XAck(ctx, queue, b.group, m.ID).Err()
				continue
			}
			out = append(out, b.toDelivery(queue, m))
		}
	}
	return out, nil
}

// Ack 实现 Acknowledger
func (b *RedisStreams) Ack(ctx context.Context, d *Delivery) error {
	// 关闭过程中在途消息仍要完成确认
	ctx = context.WithoutCancel(ctx)
	pipe := b.rdb.TxPipeline()
	pipe.XAck(ctx, d.Queue, b.group, d.ID)
	pipe.XDel(ctx, d.Queue, d.ID)
	_, err := pipe.Exec(ctx)
	return err
}

// Reject 实现 Acknowledger：消息复制到死信队列并从原队列确认移除
func (b *RedisStreams) Reject(ctx context.Context, d *Delivery, reason string) error {
	ctx = context.WithoutCancel(ctx)
	dlq := b.DeadLetterQueue(d.Queue)
	headers := make(map[string]string, len(d.Headers)+2)
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[HeaderDeadLetterRoutingKey] = dlq
	if reason != "" {
		headers[HeaderDeathReason] = reason
	}

	pipe := b.rdb.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{Stream: dlq, Values: encodeFields(Message{Body: d.Body, Headers: headers})})
	pipe.XAck(ctx, d.Queue, b.group, d.ID)
	pipe.XDel(ctx, d.Queue, d.ID)
	_, err := pipe.Exec(ctx)
	return err
}

// Len 队列中尚未删除的消息数（含未 ack）
func (b *RedisStreams) Len(ctx context.Context, queue string) (int64, error) {
	if err := b.ensure(); err != nil {
		return 0, err
	}
	return b.rdb.XLen(ctx, queue).Result()
}

// Peek 按写入顺序读取队列里前 count 条消息（不影响消费组），用于查看死信
func (b *RedisStreams) Peek(ctx context.Context, queue string, count int64) ([]*Delivery, error) {
	if err := b.ensure(); err != nil {
		return nil, err
	}
	msgs, err := b.rdb.XRangeN(ctx, queue, "-", "+", count).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Delivery, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, b.toDelivery(queue, m))
	}
	return out, nil
}

func (b *RedisStreams) toDelivery(queue string, m redis.XMessage) *Delivery {
	d := &Delivery{
		Queue:        queue,
		ID:           m.ID,
		Headers:      make(map[string]string, len(m.Values)),
		Acknowledger: b,
	}
	for k, v := range m.Values {
		s := fmt.Sprint(v)
		if k == fieldBody {
			d.Body = []byte(s)
			continue
		}
		d.Headers[k] = s
	}
	return d
}

func encodeFields(msg Message) map[string]interface{} {
	values := make(map[string]interface{}, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		if k == fieldBody {
			continue
		}
		values[k] = v
	}
	values[fieldBody] = string(msg.Body)
	return values
}
