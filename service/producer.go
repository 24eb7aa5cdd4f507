package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/queue"
	"go.uber.org/zap"
)

// DeliveryJob 队列消息正文；重试次数放在消息头 x-retry-count 里
type DeliveryJob struct {
	NotificationID string         `json:"notificationId"`
	RecipientID    string         `json:"recipientId"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	MetaData       map[string]any `json:"metaData"`
	TraceID        string         `json:"traceId,omitempty"`
}

// Producer 把投递任务写入通道对应的持久化队列。不做去重。
type Producer struct {
	q      QueuePublisher
	logger *zap.Logger
}

func NewProducer(q QueuePublisher, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{q: q, logger: logger}
}

func (p *Producer) Enqueue(ctx context.Context, ch cons.Channel, job DeliveryJob) error {
	if _, ok := cons.ParseChannel(string(ch)); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidChannel, ch)
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal delivery job: %w", err)
	}
	id, err := p.q.Publish(ctx, ch.QueueName(), queue.Message{
		Body: body,
		Headers: map[string]string{
			cons.HeaderDeliveryMode: cons.DeliveryModePersistent,
		},
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", ch.QueueName(), err)
	}
	jobsEnqueued.WithLabelValues(string(ch)).Inc()
	p.logger.Debug("delivery job enqueued",
		zap.String("queue", ch.QueueName()),
		zap.String("message_id", id),
		zap.String("notification_id", job.NotificationID),
		zap.String("trace_id", job.TraceID))
	return nil
}
