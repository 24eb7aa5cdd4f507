package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"go.uber.org/zap"
)

// DeviceService 推送设备 token 注册/注销
type DeviceService struct {
	*Service
}

func NewDeviceService(s *Service) *DeviceService {
	return &DeviceService{Service: s}
}

// Register 重复注册同一 token 时重新激活并刷新 last_used_at
func (s *DeviceService) Register(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return errors.New("user_id and token are required")
	}
	p, ok := cons.ParsePlatform(platform)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPlatform, platform)
	}
	if err := s.Devices.Upsert(ctx, userID, token, p, s.now()); err != nil {
		return err
	}
	s.log().Debug("device registered", zap.String("user_id", userID), zap.String("platform", string(p)))
	return nil
}

// Unregister 软删除：只把 is_active 置为 false
func (s *DeviceService) Unregister(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	_, err := s.Devices.Deactivate(ctx, userID, token)
	return err
}

func (s *DeviceService) ListActive(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	return s.Devices.ListActive(ctx, userID)
}
