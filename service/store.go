package service

import (
	"context"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"github.com/cydxin/notify-sdk/queue"
	"github.com/cydxin/notify-sdk/repository"
)

// 存储接口由 repository 包里的 DAO 实现；未找到统一返回 gorm.ErrRecordNotFound。

type TemplateStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.NotificationTemplate, error)
	FindByID(ctx context.Context, id string) (*models.NotificationTemplate, error)
	List(ctx context.Context) ([]models.NotificationTemplate, error)
	Upsert(ctx context.Context, t *models.NotificationTemplate) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	FindLatestForEntity(ctx context.Context, recipientID string, entityType cons.EntityType, entityID string, since time.Time) (*models.Notification, error)
	UpdateAggregate(ctx context.Context, id string, fn func(n *models.Notification) error) (*models.Notification, error)
	ListByRecipient(ctx context.Context, q repository.NotificationListQuery) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

type SettingsStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserNotificationSettings, error)
	Update(ctx context.Context, s *models.UserNotificationSettings) error
	FindPreference(ctx context.Context, userID, templateID string, ch cons.Channel) (*models.NotificationPreference, error)
	ListPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error)
	UpsertPreference(ctx context.Context, p *models.NotificationPreference) error
}

type AttemptStore interface {
	Create(ctx context.Context, a *models.DeliveryAttempt) error
	UpdateStatus(ctx context.Context, id string, status cons.AttemptStatus, errMsg *string) error
	ListByNotification(ctx context.Context, notificationID string) ([]models.DeliveryAttempt, error)
}

type DeviceStore interface {
	Upsert(ctx context.Context, userID, token string, platform cons.Platform, now time.Time) error
	Deactivate(ctx context.Context, userID, token string) (int64, error)
	ListActive(ctx context.Context, userID string) ([]models.DeviceToken, error)
}

// QueuePublisher 生产端只需要发布
type QueuePublisher interface {
	Publish(ctx context.Context, queueName string, msg queue.Message) (string, error)
}

// DeliveryQueue worker 端需要声明、发布（重试回投）和消费
type DeliveryQueue interface {
	QueuePublisher
	Declare(ctx context.Context, queueName string) error
	Consume(ctx context.Context, queueName, consumer string, prefetch int, h queue.Handler) error
}

var (
	_ TemplateStore     = (*repository.TemplateDAO)(nil)
	_ NotificationStore = (*repository.NotificationDAO)(nil)
	_ SettingsStore     = (*repository.SettingsDAO)(nil)
	_ AttemptStore      = (*repository.AttemptDAO)(nil)
	_ DeviceStore       = (*repository.DeviceDAO)(nil)
	_ DeliveryQueue     = (*queue.RedisStreams)(nil)
)
