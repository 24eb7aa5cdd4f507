package cons

import "time"

// 队列 / 缓存 / 发布订阅的命名约定
const (
	QueuePrefix      = "notification_delivery_"
	DeadLetterSuffix = "_dlq"

	// ConsumerGroup 每个通道队列上的消费组
	ConsumerGroup = "notification_workers"

	// RealtimeChannel 站内实时刷新事件（由实时网关订阅）
	RealtimeChannel = "events:notifications"

	// DedupKeyPrefix dedupe:{recipientId}:{templateId}:{entityId}
	DedupKeyPrefix = "dedupe:"
)

// 消息头
const (
	HeaderRetryCount   = "x-retry-count"
	HeaderDeliveryMode = "x-delivery-mode"

	DeliveryModePersistent = "persistent"
)

const (
	// DedupWindow 去重/聚合窗口
	DedupWindow = 300 * time.Second

	// DefaultPrefetch 每个消费者最多持有的未 ack 消息数
	DefaultPrefetch = 10

	// MaxRetries 超过后进入死信
	MaxRetries = 3

	// DefaultTimezone 用户设置的默认时区
	DefaultTimezone = "UTC"
)
