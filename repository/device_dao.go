package repository

import (
	"context"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceDAO 推送设备 token
type DeviceDAO struct {
	db *gorm.DB
}

func NewDeviceDAO(db *gorm.DB) *DeviceDAO {
	return &DeviceDAO{db: db}
}

func (dao *DeviceDAO) WithDB(db *gorm.DB) *DeviceDAO {
	if db == nil {
		return dao
	}
	return &DeviceDAO{db: db}
}

// Upsert 注册设备：(user_id, token) 冲突时重新激活并刷新 last_used_at，不新增行
func (dao *DeviceDAO) Upsert(ctx context.Context, userID, token string, platform cons.Platform, now time.Time) error {
	row := &models.DeviceToken{
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		IsActive:   true,
		LastUsedAt: &now,
	}
	return dao.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "is_active", "last_used_at", "updated_at"}),
	}).Create(row).Error
}

// Deactivate 注销设备（软关闭，保留行以便再次注册时复用）
func (dao *DeviceDAO) Deactivate(ctx context.Context, userID, token string) (int64, error) {
	res := dao.db.WithContext(ctx).Model(&models.DeviceToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (dao *DeviceDAO) ListActive(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	var out []models.DeviceToken
	err := dao.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
