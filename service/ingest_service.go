package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationEvent 上游业务事件（点赞、评论、关注、私信……），只消费一次
type NotificationEvent struct {
	RecipientID  string            `json:"recipientId" binding:"required"`
	ActorID      *string           `json:"actorId,omitempty"`
	TemplateSlug string            `json:"templateSlug" binding:"required"`
	EntityType   cons.EntityType   `json:"entityType" binding:"required"`
	EntityID     string            `json:"entityId" binding:"required"`
	Data         map[string]string `json:"data"`
	MetaData     map[string]any    `json:"metaData"`
	TraceID      string            `json:"traceId,omitempty"`
}

func (e *NotificationEvent) validate() error {
	switch {
	case strings.TrimSpace(e.RecipientID) == "":
		return fmt.Errorf("%w: recipientId is required", ErrInvalidEvent)
	case strings.TrimSpace(e.TemplateSlug) == "":
		return fmt.Errorf("%w: templateSlug is required", ErrInvalidEvent)
	case strings.TrimSpace(e.EntityID) == "":
		return fmt.Errorf("%w: entityId is required", ErrInvalidEvent)
	case !e.EntityType.Valid():
		return fmt.Errorf("%w: unknown entityType %q", ErrInvalidEvent, e.EntityType)
	}
	return nil
}

// IngestResult Aggregated=true 时 Channels 为空（聚合不重新分发）
type IngestResult struct {
	Notification *models.Notification
	Aggregated   bool
	Channels     []cons.Channel
}

// Enqueuer 由 Producer 实现
type Enqueuer interface {
	Enqueue(ctx context.Context, ch cons.Channel, job DeliveryJob) error
}

// IngestService 事件入口：模板解析 -> 去重/聚合 -> 落库 -> 通道解析 -> 入队
type IngestService struct {
	*Service
	dedup    *DedupCache
	prefs    *PreferenceService
	producer Enqueuer

	// pendingWait / pendingPolls 标记仍是 pending 时（其他调用方正在落库）的等待策略
	pendingWait  time.Duration
	pendingPolls int
}

func NewIngestService(s *Service, dedup *DedupCache, prefs *PreferenceService, producer Enqueuer) *IngestService {
	return &IngestService{
		Service:      s,
		dedup:        dedup,
		prefs:        prefs,
		producer:     producer,
		pendingWait:  20 * time.Millisecond,
		pendingPolls: 10,
	}
}

// HandleEvent 处理一条事件。
// 同一 (recipientId, templateId, entityId) 在去重窗口内的后续事件只更新已有通知的计数和文案，
// 并发一条站内刷新事件，不会再产生推送/邮件任务。
func (s *IngestService) HandleEvent(ctx context.Context, ev NotificationEvent) (*IngestResult, error) {
	if err := ev.validate(); err != nil {
		eventsIngested.WithLabelValues("failed").Inc()
		return nil, err
	}
	if ev.TraceID == "" {
		ev.TraceID = uuid.NewString()
	}
	logger := s.log().With(
		zap.String("recipient_id", ev.RecipientID),
		zap.String("template", ev.TemplateSlug),
		zap.String("entity_type", string(ev.EntityType)),
		zap.String("entity_id", ev.EntityID),
		zap.String("trace_id", ev.TraceID))

	tpl, err := s.Templates.FindBySlug(ctx, ev.TemplateSlug)
	if err != nil {
		eventsIngested.WithLabelValues("failed").Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("notification template not found")
			return nil, fmt.Errorf("%w: slug=%s", ErrTemplateNotFound, ev.TemplateSlug)
		}
		return nil, fmt.Errorf("load template: %w", err)
	}

	key := DedupKey(ev.RecipientID, tpl.ID, ev.EntityID)
	acquired, err := s.dedup.Acquire(ctx, key)
	if err != nil {
		eventsIngested.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("acquire dedup marker: %w", err)
	}

	if !acquired {
		existing, err := s.findAggregatable(ctx, key, ev)
		if err != nil {
			eventsIngested.WithLabelValues("failed").Inc()
			return nil, err
		}
		if existing != nil {
			return s.aggregate(ctx, logger, tpl, existing, ev)
		}
		logger.Warn("dedup marker without notification row, starting a new aggregation group", zap.String("key", key))
	}

	return s.create(ctx, logger, tpl, key, ev)
}

// findAggregatable 标记为 pending 时先短暂等待对方落库，再查窗口内最新的一条
func (s *IngestService) findAggregatable(ctx context.Context, key string, ev NotificationEvent) (*models.Notification, error) {
	for i := 0; i < s.pendingPolls; i++ {
		v, found, err := s.dedup.Peek(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("peek dedup marker: %w", err)
		}
		if !found || v != markerPending {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pendingWait):
		}
	}

	since := s.now().Add(-s.dedup.TTL())
	n, err := s.Notifications.FindLatestForEntity(ctx, ev.RecipientID, ev.EntityType, ev.EntityID, since)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find notification to aggregate: %w", err)
	}
	return n, nil
}

func (s *IngestService) aggregate(ctx context.Context, logger *zap.Logger, tpl *models.NotificationTemplate, existing *models.Notification, ev NotificationEvent) (*IngestResult, error) {
	// 实体匹配不含模板，行上的模板可能和本次事件不同
	body := tpl.BodyTemplate
	if existing.TemplateID != tpl.ID {
		rowTpl, err := s.Templates.FindByID(ctx, existing.TemplateID)
		if err != nil {
			eventsIngested.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("load template of aggregated row: %w", err)
		}
		body = rowTpl.BodyTemplate
	}

	updated, err := s.Notifications.UpdateAggregate(ctx, existing.ID, func(n *models.Notification) error {
		meta := n.Meta()
		if meta.Count < 1 {
			meta.Count = 1
		}
		meta.Count++
		if ev.ActorID != nil {
			meta.LastActorID = *ev.ActorID
		}
		n.SetMeta(meta)
		n.Message = Render(body, renderVars(ev.Data, meta.Count))
		return nil
	})
	if err != nil {
		eventsIngested.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("aggregate notification %s: %w", existing.ID, err)
	}

	count := updated.Meta().Count
	if s.Realtime != nil {
		if err := s.Realtime.PublishRealtime(ctx, RealtimeEvent{
			UserID:  updated.RecipientID,
			ID:      updated.ID,
			Message: updated.Message,
			Count:   count,
		}); err != nil {
			logger.Warn("publish realtime refresh failed", zap.String("notification_id", updated.ID), zap.Error(err))
		}
	}

	eventsIngested.WithLabelValues("aggregated").Inc()
	logger.Info("notification aggregated", zap.String("notification_id", updated.ID), zap.Int("count", count))
	return &IngestResult{Notification: updated, Aggregated: true}, nil
}

func (s *IngestService) create(ctx context.Context, logger *zap.Logger, tpl *models.NotificationTemplate, key string, ev NotificationEvent) (*IngestResult, error) {
	vars := renderVars(ev.Data, 1)
	meta := models.NotificationMeta{Count: 1}
	if ev.ActorID != nil {
		meta.LastActorID = *ev.ActorID
	}
	meta.ActionURL = metaString(ev.MetaData, "actionUrl")
	meta.Image = metaString(ev.MetaData, "image")

	n := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		TemplateID:  tpl.ID,
		EntityType:  ev.EntityType,
		EntityID:    ev.EntityID,
		Title:       Render(tpl.TitleTemplate, vars),
		Message:     Render(tpl.BodyTemplate, vars),
	}
	n.SetMeta(meta)

	if err := s.Notifications.Create(ctx, n); err != nil {
		// 不释放的话，窗口内后续事件会被误判为聚合；调用方 ctx 可能已取消，释放不能跟着失败
		if rerr := s.dedup.Release(context.WithoutCancel(ctx), key); rerr != nil {
			logger.Warn("release dedup marker failed", zap.String("key", key), zap.Error(rerr))
		}
		eventsIngested.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if err := s.dedup.Arm(ctx, key, n.ID); err != nil {
		logger.Warn("arm dedup marker failed", zap.String("key", key), zap.Error(err))
	}

	channels, err := s.prefs.resolve(ctx, ev.RecipientID, tpl)
	if err != nil {
		eventsIngested.WithLabelValues("failed").Inc()
		return &IngestResult{Notification: n}, fmt.Errorf("resolve channels: %w", err)
	}

	var errs []error
	enqueued := make([]cons.Channel, 0, len(channels))
	for _, ch := range channels {
		job := DeliveryJob{
			NotificationID: n.ID,
			RecipientID:    n.RecipientID,
			Title:          n.Title,
			Message:        n.Message,
			MetaData:       jobMeta(meta, ev.MetaData),
			TraceID:        ev.TraceID,
		}
		if err := s.producer.Enqueue(ctx, ch, job); err != nil {
			logger.Error("enqueue delivery job failed", zap.String("channel", string(ch)), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		enqueued = append(enqueued, ch)
	}

	eventsIngested.WithLabelValues("created").Inc()
	logger.Info("notification created",
		zap.String("notification_id", n.ID),
		zap.Strings("channels", channelNames(enqueued)))
	return &IngestResult{Notification: n, Channels: enqueued}, errors.Join(errs...)
}

// jobMeta 事件 metaData 原样透传，count / lastActorId / actionUrl / image 以通知为准
func jobMeta(meta models.NotificationMeta, extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+4)
	for k, v := range extra {
		out[k] = v
	}
	out["count"] = meta.Count
	if meta.LastActorID != "" {
		out["lastActorId"] = meta.LastActorID
	}
	if meta.ActionURL != "" {
		out["actionUrl"] = meta.ActionURL
	}
	if meta.Image != "" {
		out["image"] = meta.Image
	}
	return out
}

func metaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func channelNames(chs []cons.Channel) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = string(c)
	}
	return out
}
