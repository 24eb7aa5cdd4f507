package notify_sdk

import (
	"time"

	"github.com/cydxin/notify-sdk/service"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	DB     *gorm.DB
	RDB    *redis.Client
	Logger *zap.Logger

	// 下游发送方，未配置时使用只打日志的实现
	PushSender  service.PushSender
	EmailSender service.EmailSender

	Worker service.WorkerConfig

	// DedupWindow 去重/聚合窗口，默认 300s
	DedupWindow time.Duration

	// QueueBlock 消费端 XREADGROUP 阻塞时长，决定 Close 最长等待多久
	QueueBlock time.Duration

	// DisableWorkers 只接收事件、不消费投递队列（单独部署 worker 时用）
	DisableWorkers bool
	// DisableGateway 不订阅站内刷新频道（不提供 /ws 的实例）
	DisableGateway bool

	// IngestToken 内部事件接口的服务凭证；为空时 RegisterRoutes 不挂 /api/v1/internal
	IngestToken string

	Clock func() time.Time
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func WithPushSender(s service.PushSender) Option {
	return func(c *Config) {
		c.PushSender = s
	}
}

func WithEmailSender(s service.EmailSender) Option {
	return func(c *Config) {
		c.EmailSender = s
	}
}

// WithWorkerConfig 整体覆盖消费端参数，零值字段仍走默认值
func WithWorkerConfig(cfg service.WorkerConfig) Option {
	return func(c *Config) {
		c.Worker = cfg
	}
}

func WithPrefetch(n int) Option {
	return func(c *Config) {
		c.Worker.Prefetch = n
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.Worker.MaxRetries = n
	}
}

func WithBackoffBase(d time.Duration) Option {
	return func(c *Config) {
		c.Worker.BackoffBase = d
	}
}

// WithConsumerName 多实例部署时每个实例必须不同，否则会互相抢对方 pending 的消息
func WithConsumerName(name string) Option {
	return func(c *Config) {
		c.Worker.Consumer = name
	}
}

func WithDedupWindow(d time.Duration) Option {
	return func(c *Config) {
		c.DedupWindow = d
	}
}

func WithQueueBlock(d time.Duration) Option {
	return func(c *Config) {
		c.QueueBlock = d
	}
}

func WithoutWorkers() Option {
	return func(c *Config) {
		c.DisableWorkers = true
	}
}

func WithoutGateway() Option {
	return func(c *Config) {
		c.DisableGateway = true
	}
}

// WithIngestToken 业务服务投递事件用的共享凭证（与用户会话 token 无关）
func WithIngestToken(token string) Option {
	return func(c *Config) {
		c.IngestToken = token
	}
}

// WithClock 注入时钟（测试/回放用）
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}
