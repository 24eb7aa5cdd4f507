package service

import (
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service 基础服务，各业务 service 内嵌它共享存储、Redis、日志和时钟
type Service struct {
	Templates     TemplateStore
	Notifications NotificationStore
	Settings      SettingsStore
	Attempts      AttemptStore
	Devices       DeviceStore

	RDB *redis.Client

	// Realtime 站内刷新事件的发布者
	// 通过接口注入，避免 service 层直接引用 WsServer
	Realtime RealtimePublisher

	Logger *zap.Logger

	// Clock 可注入的时钟，测试里用来固定“现在”
	Clock func() time.Time
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
