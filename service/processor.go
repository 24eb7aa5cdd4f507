package service

import (
	"context"
	"fmt"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"go.uber.org/zap"
)

// JobMeta 一次处理的上下文：第几次尝试（retry+1）
type JobMeta struct {
	Channel       cons.Channel
	AttemptNumber int
}

// Processor 单个通道的投递逻辑；返回 error 即触发重试
type Processor interface {
	Process(ctx context.Context, job *DeliveryJob, meta JobMeta) error
}

type attemptLogger struct {
	*Service
}

func (l attemptLogger) begin(ctx context.Context, job *DeliveryJob, meta JobMeta) (*models.DeliveryAttempt, error) {
	a := &models.DeliveryAttempt{
		NotificationID: job.NotificationID,
		Channel:        meta.Channel,
		Status:         cons.AttemptPending,
		AttemptNumber:  meta.AttemptNumber,
		TraceID:        traceIDPtr(job.TraceID),
	}
	if err := l.Attempts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return a, nil
}

func (l attemptLogger) finish(ctx context.Context, a *models.DeliveryAttempt, sendErr error) {
	status := cons.AttemptSent
	var msg *string
	if sendErr != nil {
		status = cons.AttemptFailed
		m := sendErr.Error()
		msg = &m
	}
	if err := l.Attempts.UpdateStatus(ctx, a.ID, status, msg); err != nil {
		l.log().Warn("update attempt status failed",
			zap.String("attempt_id", a.ID), zap.String("status", string(status)), zap.Error(err))
	}
}

// PushProcessor 向用户所有活跃设备逐个推送；任一设备失败即整个任务失败
type PushProcessor struct {
	attemptLogger
	sender PushSender
}

func NewPushProcessor(s *Service, sender PushSender) *PushProcessor {
	return &PushProcessor{attemptLogger: attemptLogger{s}, sender: sender}
}

func (p *PushProcessor) Process(ctx context.Context, job *DeliveryJob, meta JobMeta) error {
	settings, err := p.Settings.GetOrCreate(ctx, job.RecipientID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.PushEnabled {
		p.log().Debug("push disabled by user, skipping",
			zap.String("notification_id", job.NotificationID), zap.String("recipient_id", job.RecipientID))
		return nil
	}

	tokens, err := p.Devices.ListActive(ctx, job.RecipientID)
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}
	data := pushData(job)
	for _, t := range tokens {
		a, err := p.begin(ctx, job, meta)
		if err != nil {
			return err
		}
		sendErr := p.sender.Send(ctx, t.Token, job.Title, job.Message, data)
		p.finish(ctx, a, sendErr)
		if sendErr != nil {
			return fmt.Errorf("push to device %d: %w", t.ID, sendErr)
		}
	}
	return nil
}

// EmailProcessor 用户关闭邮件时直接确认，不发送
type EmailProcessor struct {
	attemptLogger
	sender EmailSender
}

func NewEmailProcessor(s *Service, sender EmailSender) *EmailProcessor {
	return &EmailProcessor{attemptLogger: attemptLogger{s}, sender: sender}
}

func (p *EmailProcessor) Process(ctx context.Context, job *DeliveryJob, meta JobMeta) error {
	settings, err := p.Settings.GetOrCreate(ctx, job.RecipientID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.EmailEnabled {
		return nil
	}

	a, err := p.begin(ctx, job, meta)
	if err != nil {
		return err
	}
	sendErr := p.sender.Send(ctx, job.RecipientID, job.Title, job.Message)
	p.finish(ctx, a, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send email: %w", sendErr)
	}
	return nil
}

// InAppProcessor 站内通道：通知行已落库，这里只发实时刷新事件
type InAppProcessor struct {
	attemptLogger
}

func NewInAppProcessor(s *Service) *InAppProcessor {
	return &InAppProcessor{attemptLogger: attemptLogger{s}}
}

func (p *InAppProcessor) Process(ctx context.Context, job *DeliveryJob, meta JobMeta) error {
	if p.Realtime == nil {
		return nil
	}
	a, err := p.begin(ctx, job, meta)
	if err != nil {
		return err
	}
	pubErr := p.Realtime.PublishRealtime(ctx, RealtimeEvent{
		UserID:  job.RecipientID,
		ID:      job.NotificationID,
		Message: job.Message,
		Count:   metaCount(job.MetaData),
	})
	p.finish(ctx, a, pubErr)
	if pubErr != nil {
		return fmt.Errorf("publish realtime event: %w", pubErr)
	}
	return nil
}

func pushData(job *DeliveryJob) map[string]string {
	out := map[string]string{"notificationId": job.NotificationID}
	for k, v := range job.MetaData {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// metaCount JSON 解码后数字是 float64
func metaCount(meta map[string]any) int {
	switch v := meta["count"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 1
}

func traceIDPtr(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
