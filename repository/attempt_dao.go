package repository

import (
	"context"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"gorm.io/gorm"
)

// AttemptDAO 投递尝试日志
type AttemptDAO struct {
	db *gorm.DB
}

func NewAttemptDAO(db *gorm.DB) *AttemptDAO {
	return &AttemptDAO{db: db}
}

func (dao *AttemptDAO) WithDB(db *gorm.DB) *AttemptDAO {
	if db == nil {
		return dao
	}
	return &AttemptDAO{db: db}
}

func (dao *AttemptDAO) Create(ctx context.Context, a *models.DeliveryAttempt) error {
	return dao.db.WithContext(ctx).Create(a).Error
}

// UpdateStatus 推进尝试状态；errMsg 为 nil 时不改 error 列
func (dao *AttemptDAO) UpdateStatus(ctx context.Context, id string, status cons.AttemptStatus, errMsg *string) error {
	updates := map[string]any{"status": status}
	if errMsg != nil {
		updates["error"] = *errMsg
	}
	return dao.db.WithContext(ctx).Model(&models.DeliveryAttempt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (dao *AttemptDAO) ListByNotification(ctx context.Context, notificationID string) ([]models.DeliveryAttempt, error) {
	var out []models.DeliveryAttempt
	err := dao.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
