package notify_sdk

import (
	"fmt"

	"github.com/cydxin/notify-sdk/models"
)

// AutoMigrate 建表/补字段。生产环境建议由发布流程单独执行，而不是每个实例启动时跑
func (e *NotifyEngine) AutoMigrate() error {
	e.logger.Info("AutoMigrate...")
	if err := e.config.DB.AutoMigrate(
		&models.NotificationTemplate{},
		&models.Notification{},
		&models.UserNotificationSettings{},
		&models.NotificationPreference{},
		&models.DeliveryAttempt{},
		&models.DeviceToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
