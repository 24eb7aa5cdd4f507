package models

import (
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "ntf_"
)

// NotificationTemplate 通知模板（投递时只读）
// 标题/正文里的 {{key}} 占位符由 service.Render 替换。
// 布尔列不加 default 标签：Create 时 gorm 会把零值 false 换成 default 写入。
type NotificationTemplate struct {
	ID             string `gorm:"primarykey;size:36"`
	Slug           string `gorm:"size:64;uniqueIndex;not null"`
	TitleTemplate  string `gorm:"size:255;not null"`
	BodyTemplate   string `gorm:"type:text;not null"`
	IsPushEnabled  bool   `gorm:"not null"` // 通道默认值：推送
	IsEmailEnabled bool   `gorm:"not null"` // 通道默认值：邮件
	IsInAppEnabled bool   `gorm:"not null"` // 通道默认值：站内
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (NotificationTemplate) TableName() string { return prefix + "notification_template" }

func (t *NotificationTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// DefaultEnabled 模板对某个通道的默认开关
func (t *NotificationTemplate) DefaultEnabled(ch cons.Channel) bool {
	switch ch {
	case cons.ChannelPush:
		return t.IsPushEnabled
	case cons.ChannelEmail:
		return t.IsEmailEnabled
	case cons.ChannelInApp:
		return t.IsInAppEnabled
	}
	return false
}

// NotificationMeta Notification.meta_data 的结构
// Count 单调不减且 >= 1。
type NotificationMeta struct {
	Count       int    `json:"count"`
	LastActorID string `json:"lastActorId,omitempty"`
	ActionURL   string `json:"actionUrl,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Notification 通知记录
// 同一去重窗口内 (recipient, entity_type, entity_id) 只建一条，后续事件原地聚合（count+1 并重新渲染 message）。
type Notification struct {
	ID          string                                `gorm:"primarykey;size:36"`
	RecipientID string                                `gorm:"size:64;not null;index:idx_recipient_created,priority:1;index:idx_recipient_entity,priority:1"`
	ActorID     *string                               `gorm:"size:64"`
	TemplateID  string                                `gorm:"size:36;not null;index"`
	EntityType  cons.EntityType                       `gorm:"size:16;not null;index:idx_recipient_entity,priority:2"`
	EntityID    string                                `gorm:"size:64;not null;index:idx_recipient_entity,priority:3"`
	Title       string                                `gorm:"size:255"`
	Message     string                                `gorm:"type:text;not null"`
	IsRead      bool                                  `gorm:"not null;index"`
	ReadAt      *time.Time
	MetaData    datatypes.JSONType[NotificationMeta] `gorm:"column:meta_data;type:json"`
	CreatedAt   time.Time                             `gorm:"index:idx_recipient_created,priority:2"`
	UpdatedAt   time.Time
}

func (Notification) TableName() string { return prefix + "notification" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Meta 读取 meta_data
func (n *Notification) Meta() NotificationMeta {
	return n.MetaData.Data()
}

// SetMeta 写入 meta_data
func (n *Notification) SetMeta(m NotificationMeta) {
	n.MetaData = datatypes.NewJSONType(m)
}

// UserNotificationSettings 用户全局通知设置（与用户 1:1，首次读取时按默认值懒创建）
type UserNotificationSettings struct {
	UserID          string  `gorm:"primarykey;size:64"`
	PushEnabled     bool    `gorm:"not null"` // 默认值见 DefaultSettings
	EmailEnabled    bool    `gorm:"not null"`
	QuietHoursStart *string `gorm:"size:5"` // HH:MM
	QuietHoursEnd   *string `gorm:"size:5"` // HH:MM
	Timezone        string  `gorm:"size:64;default:UTC"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (UserNotificationSettings) TableName() string { return prefix + "user_notification_settings" }

// DefaultSettings 默认设置：推送开、邮件关、无免打扰、UTC
func DefaultSettings(userID string) *UserNotificationSettings {
	return &UserNotificationSettings{
		UserID:       userID,
		PushEnabled:  true,
		EmailEnabled: false,
		Timezone:     cons.DefaultTimezone,
	}
}

// NotificationPreference 用户对某模板某通道的显式开关（稀疏表，缺省即走模板默认值）
type NotificationPreference struct {
	UserID     string       `gorm:"primarykey;size:64"`
	TemplateID string       `gorm:"primarykey;size:36"`
	Channel    cons.Channel `gorm:"primarykey;size:16"`
	IsEnabled  bool
	UpdatedAt  time.Time
}

func (NotificationPreference) TableName() string { return prefix + "notification_preference" }

// DeliveryAttempt 投递尝试日志（只追加，推送按设备各一条）
type DeliveryAttempt struct {
	ID             string             `gorm:"primarykey;size:36"`
	NotificationID string             `gorm:"size:36;not null;index"`
	Channel        cons.Channel       `gorm:"size:16;not null"`
	Status         cons.AttemptStatus `gorm:"size:32;not null;index"`
	AttemptNumber  int                `gorm:"not null"`
	Error          *string            `gorm:"type:text"`
	TraceID        *string            `gorm:"size:64;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DeliveryAttempt) TableName() string { return prefix + "delivery_attempt" }

func (a *DeliveryAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// DeviceToken 推送设备 token，(user_id, token) 唯一；重复注册时重新激活而不是新增
type DeviceToken struct {
	ID         uint64        `gorm:"primarykey"`
	UserID     string        `gorm:"size:64;not null;uniqueIndex:idx_user_token,priority:1"`
	Token      string        `gorm:"size:255;not null;uniqueIndex:idx_user_token,priority:2"`
	Platform   cons.Platform `gorm:"size:16;not null"`
	IsActive   bool          `gorm:"not null;index"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (DeviceToken) TableName() string { return prefix + "device_token" }
