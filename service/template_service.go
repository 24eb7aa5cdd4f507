package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cydxin/notify-sdk/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TemplateService 模板查询与初始化。模板在投递路径上只读。
type TemplateService struct {
	*Service
}

func NewTemplateService(s *Service) *TemplateService {
	return &TemplateService{Service: s}
}

func (s *TemplateService) GetBySlug(ctx context.Context, slug string) (*models.NotificationTemplate, error) {
	t, err := s.Templates.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slug=%s", ErrTemplateNotFound, slug)
		}
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) GetByID(ctx context.Context, id string) (*models.NotificationTemplate, error) {
	t, err := s.Templates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%s", ErrTemplateNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) List(ctx context.Context) ([]models.NotificationTemplate, error) {
	return s.Templates.List(ctx)
}

// Seed 按 slug 幂等写入模板
func (s *TemplateService) Seed(ctx context.Context, tpls []models.NotificationTemplate) error {
	for i := range tpls {
		t := tpls[i]
		if t.Slug == "" {
			return errors.New("template slug is required")
		}
		if err := s.Templates.Upsert(ctx, &t); err != nil {
			return fmt.Errorf("seed template %s: %w", t.Slug, err)
		}
	}
	s.log().Info("notification templates seeded", zap.Int("count", len(tpls)))
	return nil
}

// DefaultTemplates 内置的一组社交场景模板
func DefaultTemplates() []models.NotificationTemplate {
	return []models.NotificationTemplate{
		{
			Slug:           "post_liked",
			TitleTemplate:  "New like",
			BodyTemplate:   "{{count}} people liked your post",
			IsPushEnabled:  true,
			IsInAppEnabled: true,
		},
		{
			Slug:           "post_commented",
			TitleTemplate:  "New comment",
			BodyTemplate:   "{{actorName}} commented on your post: {{preview}}",
			IsPushEnabled:  true,
			IsInAppEnabled: true,
		},
		{
			Slug:           "user_followed",
			TitleTemplate:  "New follower",
			BodyTemplate:   "{{actorName}} started following you",
			IsPushEnabled:  true,
			IsInAppEnabled: true,
		},
		{
			Slug:           "chat_message",
			TitleTemplate:  "{{actorName}}",
			BodyTemplate:   "{{count}} new messages",
			IsPushEnabled:  true,
			IsInAppEnabled: false,
		},
		{
			Slug:           "system_announcement",
			TitleTemplate:  "{{title}}",
			BodyTemplate:   "{{body}}",
			IsPushEnabled:  true,
			IsEmailEnabled: true,
			IsInAppEnabled: true,
		},
	}
}
