package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"github.com/cydxin/notify-sdk/queue"
	"go.uber.org/zap"
)

// WorkerConfig 消费端参数
type WorkerConfig struct {
	// Prefetch 每个消费者同时持有的未确认消息上限
	Prefetch int
	// MaxRetries 超过后转入死信队列
	MaxRetries int
	// BackoffBase 第 n 次重试延迟 = BackoffBase * 2^n
	BackoffBase time.Duration
	// Consumer 消费者名，多实例部署时必须各不相同
	Consumer string
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Prefetch <= 0 {
		c.Prefetch = cons.DefaultPrefetch
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = cons.MaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.Consumer == "" {
		c.Consumer = "worker-1"
	}
	return c
}

type stopper interface {
	Stop() bool
}

// WorkerPool 每个通道一个消费协程。
//
// 重试状态机：
//   - 成功：ack
//   - 失败且 retry < MaxRetries：先 ack 原消息，再由定时器延迟回投一份 retry+1 的副本
//   - 失败且 retry >= MaxRetries：reject 进死信，并记录 PERMANENT_FAILURE
//
// 延迟回投依赖进程内定时器，进程退出时尚未触发的重试会丢失。
type WorkerPool struct {
	*Service
	q          DeliveryQueue
	processors map[cons.Channel]Processor
	cfg        WorkerConfig

	afterFunc func(d time.Duration, f func()) stopper

	mu      sync.Mutex
	timers  map[uint64]stopper
	timerID uint64
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWorkerPool(s *Service, q DeliveryQueue, processors map[cons.Channel]Processor, cfg WorkerConfig) *WorkerPool {
	return &WorkerPool{
		Service:    s,
		q:          q,
		processors: processors,
		cfg:        cfg.withDefaults(),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		timers: make(map[uint64]stopper),
	}
}

// Start 声明全部通道队列并启动消费；ctx 取消或 Close 后停止
func (w *WorkerPool) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errors.New("worker pool closed")
	}
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("worker pool already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	for ch := range w.processors {
		if err := w.q.Declare(ctx, ch.QueueName()); err != nil {
			cancel()
			return fmt.Errorf("declare %s: %w", ch.QueueName(), err)
		}
	}

	for ch := range w.processors {
		ch := ch
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.log().Info("delivery worker started",
				zap.String("queue", ch.QueueName()),
				zap.String("consumer", w.cfg.Consumer),
				zap.Int("prefetch", w.cfg.Prefetch))
			err := w.q.Consume(ctx, ch.QueueName(), w.cfg.Consumer, w.cfg.Prefetch, func(ctx context.Context, d *queue.Delivery) {
				w.handle(ctx, ch, d)
			})
			if err != nil {
				w.log().Error("delivery worker stopped", zap.String("queue", ch.QueueName()), zap.Error(err))
			}
		}()
	}
	return nil
}

// Close 停止消费、取消尚未触发的重试定时器，并等待在途消息处理完
func (w *WorkerPool) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	cancel := w.cancel
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *WorkerPool) handle(ctx context.Context, ch cons.Channel, d *queue.Delivery) {
	retry := d.IntHeader(cons.HeaderRetryCount, 0)
	logger := w.log().With(
		zap.String("queue", d.Queue),
		zap.String("message_id", d.ID),
		zap.Int("retry", retry))

	var job DeliveryJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		// 正文坏了，重试没有意义
		logger.Error("malformed delivery job, dead-lettering", zap.Error(err))
		if rerr := d.Reject(ctx, "malformed job: "+err.Error()); rerr != nil {
			logger.Error("reject failed", zap.Error(rerr))
		}
		deliveryOutcomes.WithLabelValues(string(ch), outcomeDeadLetter).Inc()
		return
	}
	logger = logger.With(zap.String("notification_id", job.NotificationID), zap.String("trace_id", job.TraceID))

	proc, ok := w.processors[ch]
	if !ok {
		logger.Error("no processor for channel", zap.String("channel", string(ch)))
		_ = d.Reject(ctx, ErrNoProcessor.Error())
		return
	}

	start := time.Now()
	err := proc.Process(ctx, &job, JobMeta{Channel: ch, AttemptNumber: retry + 1})
	deliveryDuration.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())

	if err == nil {
		if aerr := d.Ack(ctx); aerr != nil {
			logger.Error("ack failed", zap.Error(aerr))
		}
		deliveryOutcomes.WithLabelValues(string(ch), outcomeSent).Inc()
		return
	}

	if retry < w.cfg.MaxRetries {
		delay := w.cfg.BackoffBase << uint(retry)
		if w.isClosed() {
			// 不 ack，消息留在 pending 列表，重启后重新投递
			logger.Warn("worker pool closing, leaving message pending", zap.Error(err))
			return
		}
		// 先 ack 再回投：ack 失败时原消息还在 pending 列表，再回投就会重复
		if aerr := d.Ack(ctx); aerr != nil {
			logger.Error("ack failed, leaving message pending instead of retrying", zap.Error(aerr))
			return
		}
		logger.Warn("delivery failed, scheduling retry", zap.Duration("delay", delay), zap.Error(err))
		msg := retryMessage(d, retry+1)
		if !w.scheduleRetry(d.Queue, msg, retry+1, delay) {
			// ack 之后池刚好关闭：放弃延迟，立即回投
			w.republish(context.WithoutCancel(ctx), d.Queue, msg, retry+1)
		}
		deliveryOutcomes.WithLabelValues(string(ch), outcomeRetry).Inc()
		return
	}

	logger.Error("delivery failed permanently, dead-lettering", zap.Error(err))
	if rerr := d.Reject(ctx, err.Error()); rerr != nil {
		logger.Error("reject failed", zap.Error(rerr))
	}
	deliveryOutcomes.WithLabelValues(string(ch), outcomeDeadLetter).Inc()

	msg := err.Error()
	if cerr := w.Attempts.Create(context.WithoutCancel(ctx), &models.DeliveryAttempt{
		NotificationID: job.NotificationID,
		Channel:        ch,
		Status:         cons.AttemptPermanentFailure,
		AttemptNumber:  retry + 1,
		Error:          &msg,
		TraceID:        traceIDPtr(job.TraceID),
	}); cerr != nil {
		logger.Error("record permanent failure failed", zap.Error(cerr))
	}
}

// retryMessage 原正文原消息头，只改 x-retry-count
func retryMessage(d *queue.Delivery, retry int) queue.Message {
	headers := make(map[string]string, len(d.Headers)+1)
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[cons.HeaderRetryCount] = fmt.Sprint(retry)
	return queue.Message{Body: d.Body, Headers: headers}
}

func (w *WorkerPool) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// scheduleRetry 延迟回投；池已关闭时返回 false
func (w *WorkerPool) scheduleRetry(queueName string, msg queue.Message, retry int, delay time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.timerID++
	id := w.timerID
	w.timers[id] = w.afterFunc(delay, func() {
		w.mu.Lock()
		delete(w.timers, id)
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.republish(ctx, queueName, msg, retry)
	})
	return true
}

func (w *WorkerPool) republish(ctx context.Context, queueName string, msg queue.Message, retry int) {
	if _, err := w.q.Publish(ctx, queueName, msg); err != nil {
		w.log().Error("republish for retry failed",
			zap.String("queue", queueName), zap.Int("retry", retry), zap.Error(err))
	}
}

// PendingRetries 尚未触发的重试数
func (w *WorkerPool) PendingRetries() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}
