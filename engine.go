package notify_sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/queue"
	"github.com/cydxin/notify-sdk/repository"
	"github.com/cydxin/notify-sdk/response"
	"github.com/cydxin/notify-sdk/service"
	"go.uber.org/zap"
)

type NotifyEngine struct {
	config *Config
	logger *zap.Logger

	TemplateService     *service.TemplateService
	PreferenceService   *service.PreferenceService
	NotificationService *service.NotificationService
	DeviceService       *service.DeviceService
	IngestService       *service.IngestService
	AuthService         *service.AuthService // 鉴权服务

	Producer *service.Producer
	Broker   *queue.RedisStreams
	Workers  *service.WorkerPool

	WsServer *WsServer
	Gateway  *Gateway

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调；DB 和 RDB 必填。
// 只做装配，不连库不起协程，Start 之后才开始消费和订阅。
func NewEngine(opts ...Option) (*NotifyEngine, error) {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.DB == nil {
		return nil, errors.New("notify engine: DB is required")
	}
	if c.RDB == nil {
		return nil, errors.New("notify engine: RDB is required")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.PushSender == nil {
		c.PushSender = service.LogPushSender{Logger: c.Logger}
	}
	if c.EmailSender == nil {
		c.EmailSender = service.LogEmailSender{Logger: c.Logger}
	}

	e := &NotifyEngine{config: c, logger: c.Logger}

	// 初始化 WS，站内刷新经 Redis 频道转发到这里
	e.WsServer = NewWsServer(c.Logger)
	e.Gateway = NewGateway(c.RDB, e.WsServer, c.Logger)

	// 初始化基础 Service，注入存储、Redis、日志
	baseService := &service.Service{
		Templates:     repository.NewTemplateDAO(c.DB),
		Notifications: repository.NewNotificationDAO(c.DB),
		Settings:      repository.NewSettingsDAO(c.DB),
		Attempts:      repository.NewAttemptDAO(c.DB),
		Devices:       repository.NewDeviceDAO(c.DB),
		RDB:           c.RDB,
		Realtime:      service.NewRedisRealtimePublisher(c.RDB),
		Logger:        c.Logger,
		Clock:         c.Clock,
	}

	brokerOpts := []queue.Option{queue.WithGroup(cons.ConsumerGroup), queue.WithLogger(c.Logger)}
	if c.QueueBlock > 0 {
		brokerOpts = append(brokerOpts, queue.WithBlock(c.QueueBlock))
	}
	e.Broker = queue.NewRedisStreams(c.RDB, brokerOpts...)
	e.Producer = service.NewProducer(e.Broker, c.Logger)

	// 初始化各个 Service
	e.TemplateService = service.NewTemplateService(baseService)
	e.PreferenceService = service.NewPreferenceService(baseService)
	e.NotificationService = service.NewNotificationService(baseService)
	e.DeviceService = service.NewDeviceService(baseService)
	e.IngestService = service.NewIngestService(baseService,
		service.NewDedupCache(c.RDB, c.DedupWindow), e.PreferenceService, e.Producer)
	e.AuthService = service.NewAuthService(c.RDB)

	e.Workers = service.NewWorkerPool(baseService, e.Broker, map[cons.Channel]service.Processor{
		cons.ChannelPush:  service.NewPushProcessor(baseService, c.PushSender),
		cons.ChannelEmail: service.NewEmailProcessor(baseService, c.EmailSender),
		cons.ChannelInApp: service.NewInAppProcessor(baseService),
	}, c.Worker)

	e.bindWsHandlersOnMessage()
	return e, nil
}

// Start 启动 WS hub、实时网关和投递 worker；只能调用一次，失败后也不能重来
func (e *NotifyEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return errors.New("notify engine already started")
	}
	e.started = true

	ctx, cancel := context.WithCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.WsServer.Run(ctx)
	}()

	if !e.config.DisableGateway {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.Gateway.Run(ctx); err != nil {
				e.logger.Error("realtime gateway stopped", zap.Error(err))
			}
		}()
	}

	if !e.config.DisableWorkers {
		if err := e.Workers.Start(ctx); err != nil {
			cancel()
			e.wg.Wait()
			return fmt.Errorf("start workers: %w", err)
		}
	}

	e.cancel = cancel
	e.logger.Info("notify engine started",
		zap.Bool("workers", !e.config.DisableWorkers),
		zap.Bool("gateway", !e.config.DisableGateway))
	return nil
}

// Close 停止消费（未触发的重试定时器一并取消）、断开 WS 连接并等待协程退出
func (e *NotifyEngine) Close() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	e.Workers.Close()
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// HandleEvent 事件入口，见 service.IngestService.HandleEvent
func (e *NotifyEngine) HandleEvent(ctx context.Context, ev service.NotificationEvent) (*service.IngestResult, error) {
	return e.IngestService.HandleEvent(ctx, ev)
}

// SeedTemplates 写入内置模板（按 slug 幂等）
func (e *NotifyEngine) SeedTemplates(ctx context.Context) error {
	return e.TemplateService.Seed(ctx, service.DefaultTemplates())
}

// ServeWS 处理 WebSocket 请求，userID 由调用方鉴权得到
func (e *NotifyEngine) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	e.WsServer.ServeWS(w, r, userID)
}

// HandleWS 返回 WebSocket 的Handler，从请求里取 token 鉴权
func (e *NotifyEngine) HandleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _, err := e.AuthService.AuthenticateRequest(r.Context(), r)
		if err != nil {
			_ = response.Error(response.CodeTokenInvalid, err.Error()).WriteJSONWithStatus(w, http.StatusUnauthorized)
			return
		}
		e.WsServer.ServeWS(w, r, uid)
	}
}
