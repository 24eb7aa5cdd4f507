package repository

import (
	"context"
	"errors"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsDAO 用户通知设置 + 模板级通道偏好
type SettingsDAO struct {
	db *gorm.DB
}

func NewSettingsDAO(db *gorm.DB) *SettingsDAO {
	return &SettingsDAO{db: db}
}

func (dao *SettingsDAO) WithDB(db *gorm.DB) *SettingsDAO {
	if db == nil {
		return dao
	}
	return &SettingsDAO{db: db}
}

// GetOrCreate 读取用户设置；不存在时按默认值创建。
// 并发首次读取时用 ON CONFLICT DO NOTHING 保证只落一行，随后再读一次。
func (dao *SettingsDAO) GetOrCreate(ctx context.Context, userID string) (*models.UserNotificationSettings, error) {
	var s models.UserNotificationSettings
	err := dao.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def := models.DefaultSettings(userID)
	if err := dao.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(def).Error; err != nil {
		return nil, err
	}
	if err := dao.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Update 覆盖写入用户设置（用 map 以便 false / NULL 也能落库）
func (dao *SettingsDAO) Update(ctx context.Context, s *models.UserNotificationSettings) error {
	return dao.db.WithContext(ctx).Model(&models.UserNotificationSettings{}).
		Where("user_id = ?", s.UserID).
		Updates(map[string]any{
			"push_enabled":      s.PushEnabled,
			"email_enabled":     s.EmailEnabled,
			"quiet_hours_start": s.QuietHoursStart,
			"quiet_hours_end":   s.QuietHoursEnd,
			"timezone":          s.Timezone,
		}).Error
}

// FindPreference 查找 (user, template, channel) 的显式偏好；不存在返回 gorm.ErrRecordNotFound
func (dao *SettingsDAO) FindPreference(ctx context.Context, userID, templateID string, ch cons.Channel) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	err := dao.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ? AND channel = ?", userID, templateID, ch).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (dao *SettingsDAO) ListPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	var out []models.NotificationPreference
	err := dao.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("template_id ASC, channel ASC").
		Find(&out).Error
	return out, err
}

// UpsertPreference 写入显式偏好，复合主键冲突时只更新 is_enabled
func (dao *SettingsDAO) UpsertPreference(ctx context.Context, p *models.NotificationPreference) error {
	return dao.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "template_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
	}).Create(p).Error
}
