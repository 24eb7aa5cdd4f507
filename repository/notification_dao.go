package repository

import (
	"context"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationListQuery 通知列表查询条件
// Before/BeforeID 为游标：按 (created_at, id) 倒序，只取严格排在游标之后的记录。
// BeforeID 为空时退化为 created_at < Before。
type NotificationListQuery struct {
	RecipientID string
	Before      *time.Time
	BeforeID    string
	Limit       int
	UnreadOnly  bool
}

// NotificationDAO 封装 Notification 的数据库操作
//
// 约定：
// - 只做数据访问，不做业务编排。
// - 聚合更新（UpdateAggregate）在单行 FOR UPDATE 事务内完成读改写。
type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *NotificationDAO) WithDB(db *gorm.DB) *NotificationDAO {
	if db == nil {
		return dao
	}
	return &NotificationDAO{db: db}
}

func (dao *NotificationDAO) Create(ctx context.Context, n *models.Notification) error {
	return dao.db.WithContext(ctx).Create(n).Error
}

func (dao *NotificationDAO) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := dao.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// FindLatestForEntity 查找 since 之后创建的、同一接收人同一实体的最新一条通知
func (dao *NotificationDAO) FindLatestForEntity(ctx context.Context, recipientID string, entityType cons.EntityType, entityID string, since time.Time) (*models.Notification, error) {
	var n models.Notification
	err := dao.db.WithContext(ctx).
		Where("recipient_id = ? AND entity_id = ? AND entity_type = ? AND created_at >= ?", recipientID, entityID, entityType, since).
		Order("created_at DESC").
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateAggregate 行级锁内读取 -> fn 修改 -> 写回 message/meta_data
func (dao *NotificationDAO) UpdateAggregate(ctx context.Context, id string, fn func(n *models.Notification) error) (*models.Notification, error) {
	var out models.Notification
	err := dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&out).Error; err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Model(&models.Notification{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"message":    out.Message,
				"meta_data":  out.MetaData,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByRecipient 按 (created_at, id) 倒序游标分页，同一时间戳的记录不会跨页丢失
func (dao *NotificationDAO) ListByRecipient(ctx context.Context, q NotificationListQuery) ([]models.Notification, error) {
	tx := dao.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ?", q.RecipientID)
	if q.Before != nil && !q.Before.IsZero() {
		if q.BeforeID != "" {
			tx = tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", *q.Before, *q.Before, q.BeforeID)
		} else {
			tx = tx.Where("created_at < ?", *q.Before)
		}
	}
	if q.UnreadOnly {
		tx = tx.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := tx.Order("created_at DESC, id DESC").Limit(q.Limit).Find(&out).Error
	return out, err
}

// MarkRead 标记指定通知已读（只会命中属于 recipientID 的记录）
func (dao *NotificationDAO) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	now := time.Now()
	res := dao.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ? AND is_read = ?", recipientID, ids, false).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

func (dao *NotificationDAO) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	now := time.Now()
	res := dao.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

func (dao *NotificationDAO) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := dao.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}
