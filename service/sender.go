package service

import (
	"context"

	"go.uber.org/zap"
)

// PushSender 推送下游（APNs / FCM 等），按设备 token 发送
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// EmailSender 邮件下游
type EmailSender interface {
	Send(ctx context.Context, recipientID, subject, body string) error
}

// LogPushSender 只记日志的推送实现，没有接入真实推送服务时使用
type LogPushSender struct {
	Logger *zap.Logger
}

func (s LogPushSender) Send(_ context.Context, token, title, body string, data map[string]string) error {
	if s.Logger != nil {
		s.Logger.Info("push sent",
			zap.String("token", maskToken(token)),
			zap.String("title", title),
			zap.String("body", body),
			zap.Any("data", data))
	}
	return nil
}

// LogEmailSender 只记日志的邮件实现
type LogEmailSender struct {
	Logger *zap.Logger
}

func (s LogEmailSender) Send(_ context.Context, recipientID, subject, body string) error {
	if s.Logger != nil {
		s.Logger.Info("email sent",
			zap.String("recipient_id", recipientID),
			zap.String("subject", subject),
			zap.Int("body_len", len(body)))
	}
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
