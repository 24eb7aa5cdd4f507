package cons

import "strings"

// Channel 投递通道
type Channel string

const (
	ChannelPush  Channel = "PUSH"
	ChannelEmail Channel = "EMAIL"
	ChannelInApp Channel = "IN_APP"
)

// AllChannels 偏好解析时的固定遍历顺序
var AllChannels = []Channel{ChannelPush, ChannelEmail, ChannelInApp}

// ParseChannel 大小写不敏感地解析通道名
func ParseChannel(s string) (Channel, bool) {
	c := Channel(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case ChannelPush, ChannelEmail, ChannelInApp:
		return c, true
	}
	return "", false
}

// QueueName 通道对应的持久化队列：notification_delivery_<channel 小写>
func (c Channel) QueueName() string {
	return QueuePrefix + strings.ToLower(string(c))
}

// DeadLetterQueueName 通道对应的死信队列
func (c Channel) DeadLetterQueueName() string {
	return c.QueueName() + DeadLetterSuffix
}

// EntityType 事件关联的业务实体
type EntityType string

const (
	EntityPost    EntityType = "POST"
	EntityComment EntityType = "COMMENT"
	EntityFollow  EntityType = "FOLLOW"
	EntityChat    EntityType = "CHAT"
	EntitySystem  EntityType = "SYSTEM"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityPost, EntityComment, EntityFollow, EntityChat, EntitySystem:
		return true
	}
	return false
}

// AttemptStatus 投递尝试状态：PENDING -> SENT | FAILED -> ... -> PERMANENT_FAILURE
type AttemptStatus string

const (
	AttemptPending          AttemptStatus = "PENDING"
	AttemptSent             AttemptStatus = "SENT"
	AttemptFailed           AttemptStatus = "FAILED"
	AttemptPermanentFailure AttemptStatus = "PERMANENT_FAILURE"
)

// Platform 设备平台
type Platform string

const (
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
	PlatformWeb     Platform = "WEB"
)

// ParsePlatform 大小写不敏感地解析平台
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return p, true
	}
	return "", false
}
