package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cydxin/notify-sdk/models"
	"github.com/cydxin/notify-sdk/repository"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationService 通知的拉取与已读管理（HTTP 拉取 / 新设备同步走这里）
type NotificationService struct {
	*Service
}

func NewNotificationService(s *Service) *NotificationService {
	return &NotificationService{Service: s}
}

// NotificationItem 列表项
type NotificationItem struct {
	ID         string                  `json:"id"`
	ActorID    *string                 `json:"actor_id,omitempty"`
	TemplateID string                  `json:"template_id"`
	EntityType string                  `json:"entity_type"`
	EntityID   string                  `json:"entity_id"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	IsRead     bool                    `json:"is_read"`
	ReadAt     *time.Time              `json:"read_at,omitempty"`
	MetaData   models.NotificationMeta `json:"meta_data"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// NotificationPage NextCursor 为空表示没有更多
type NotificationPage struct {
	Items      []NotificationItem `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// List 按 (created_at, id) 倒序翻页；cursor 为上一页最后一条的 "<created_at RFC3339Nano>|<id>"，
// 只带时间戳的旧游标仍然接受。
func (s *NotificationService) List(ctx context.Context, userID, cursor string, limit int, unreadOnly bool) (*NotificationPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	q := repository.NotificationListQuery{RecipientID: userID, Limit: limit, UnreadOnly: unreadOnly}
	if cursor != "" {
		before, beforeID, err := parseCursor(cursor)
		if err != nil {
			return nil, err
		}
		q.Before, q.BeforeID = &before, beforeID
	}

	rows, err := s.Notifications.ListByRecipient(ctx, q)
	if err != nil {
		return nil, err
	}

	page := &NotificationPage{Items: make([]NotificationItem, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, toItem(&rows[i]))
	}
	if len(rows) == limit {
		last := rows[len(rows)-1]
		page.NextCursor = formatCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

const cursorSep = "|"

func formatCursor(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + cursorSep + id
}

func parseCursor(cursor string) (time.Time, string, error) {
	raw, id, _ := strings.Cut(cursor, cursorSep)
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrInvalidCursor, cursor)
	}
	return ts, id, nil
}

func (s *NotificationService) Get(ctx context.Context, userID, id string) (*NotificationItem, error) {
	n, err := s.Notifications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, ErrNotificationNotFound
	}
	item := toItem(n)
	return &item, nil
}

// MarkRead 只会命中属于 userID 的通知；返回实际变更条数
func (s *NotificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.Notifications.MarkRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.Notifications.CountUnread(ctx, userID)
}

// ListAttempts 某条通知的投递记录（排查用）
func (s *NotificationService) ListAttempts(ctx context.Context, userID, notificationID string) ([]models.DeliveryAttempt, error) {
	if _, err := s.Get(ctx, userID, notificationID); err != nil {
		return nil, err
	}
	return s.Attempts.ListByNotification(ctx, notificationID)
}

func toItem(n *models.Notification) NotificationItem {
	return NotificationItem{
		ID:         n.ID,
		ActorID:    n.ActorID,
		TemplateID: n.TemplateID,
		EntityType: string(n.EntityType),
		EntityID:   n.EntityID,
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		ReadAt:     n.ReadAt,
		MetaData:   n.Meta(),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}
