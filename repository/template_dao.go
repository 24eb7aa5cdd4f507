package repository

import (
	"context"

	"github.com/cydxin/notify-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateDAO 通知模板的数据访问
type TemplateDAO struct {
	db *gorm.DB
}

func NewTemplateDAO(db *gorm.DB) *TemplateDAO {
	return &TemplateDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *TemplateDAO) WithDB(db *gorm.DB) *TemplateDAO {
	if db == nil {
		return dao
	}
	return &TemplateDAO{db: db}
}

// FindBySlug 按 slug 查找模板，不存在时返回 gorm.ErrRecordNotFound
func (dao *TemplateDAO) FindBySlug(ctx context.Context, slug string) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	if err := dao.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (dao *TemplateDAO) FindByID(ctx context.Context, id string) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	if err := dao.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (dao *TemplateDAO) List(ctx context.Context) ([]models.NotificationTemplate, error) {
	var out []models.NotificationTemplate
	err := dao.db.WithContext(ctx).Order("slug ASC").Find(&out).Error
	return out, err
}

// Upsert 以 slug 为冲突键写入模板（初始化模板时使用）
func (dao *TemplateDAO) Upsert(ctx context.Context, t *models.NotificationTemplate) error {
	return dao.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title_template", "body_template", "is_push_enabled", "is_email_enabled", "is_in_app_enabled", "updated_at",
		}),
	}).Create(t).Error
}
