package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PreferenceService 用户通知设置 + 每模板每通道偏好 + 通道解析
type PreferenceService struct {
	*Service
}

func NewPreferenceService(s *Service) *PreferenceService {
	return &PreferenceService{Service: s}
}

// SettingsUpdate 部分更新；nil 字段保持不变。
// QuietHoursStart/End 传空串表示清除免打扰。
type SettingsUpdate struct {
	PushEnabled     *bool   `json:"push_enabled"`
	EmailEnabled    *bool   `json:"email_enabled"`
	QuietHoursStart *string `json:"quiet_hours_start"`
	QuietHoursEnd   *string `json:"quiet_hours_end"`
	Timezone        *string `json:"timezone"`
}

// GetOrCreateSettings 首次读取时按默认值创建
func (s *PreferenceService) GetOrCreateSettings(ctx context.Context, userID string) (*models.UserNotificationSettings, error) {
	return s.Settings.GetOrCreate(ctx, userID)
}

func (s *PreferenceService) UpdateSettings(ctx context.Context, userID string, req SettingsUpdate) (*models.UserNotificationSettings, error) {
	cur, err := s.Settings.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		cur.PushEnabled = *req.PushEnabled
	}
	if req.EmailEnabled != nil {
		cur.EmailEnabled = *req.EmailEnabled
	}
	if req.QuietHoursStart != nil {
		v, err := normalizeClock(*req.QuietHoursStart)
		if err != nil {
			return nil, err
		}
		cur.QuietHoursStart = v
	}
	if req.QuietHoursEnd != nil {
		v, err := normalizeClock(*req.QuietHoursEnd)
		if err != nil {
			return nil, err
		}
		cur.QuietHoursEnd = v
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if tz == "" {
			tz = cons.DefaultTimezone
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
		}
		cur.Timezone = tz
	}
	// 只设置了一端等于没有免打扰
	if (cur.QuietHoursStart == nil) != (cur.QuietHoursEnd == nil) {
		return nil, fmt.Errorf("%w: start and end must be set together", ErrInvalidQuietHours)
	}

	if err := s.Settings.Update(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// SetPreference 写入 (user, template, channel) 的显式开关
func (s *PreferenceService) SetPreference(ctx context.Context, userID, templateID string, ch cons.Channel, enabled bool) error {
	if _, ok := cons.ParseChannel(string(ch)); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidChannel, ch)
	}
	if _, err := s.Templates.FindByID(ctx, templateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id=%s", ErrTemplateNotFound, templateID)
		}
		return err
	}
	return s.Settings.UpsertPreference(ctx, &models.NotificationPreference{
		UserID:     userID,
		TemplateID: templateID,
		Channel:    ch,
		IsEnabled:  enabled,
		UpdatedAt:  s.now(),
	})
}

func (s *PreferenceService) ListPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	return s.Settings.ListPreferences(ctx, userID)
}

// ResolveChannels 计算某用户对某模板当前应投递的通道集合。
// 免打扰时段内只保留 IN_APP；否则每个通道取显式偏好，没有则取模板默认值。
func (s *PreferenceService) ResolveChannels(ctx context.Context, userID, templateID string) ([]cons.Channel, error) {
	tpl, err := s.Templates.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%s", ErrTemplateNotFound, templateID)
		}
		return nil, err
	}
	return s.resolve(ctx, userID, tpl)
}

func (s *PreferenceService) resolve(ctx context.Context, userID string, tpl *models.NotificationTemplate) ([]cons.Channel, error) {
	settings, err := s.Settings.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if s.inQuietHours(settings, s.now()) {
		return []cons.Channel{cons.ChannelInApp}, nil
	}

	out := make([]cons.Channel, 0, len(cons.AllChannels))
	for _, ch := range cons.AllChannels {
		enabled := tpl.DefaultEnabled(ch)
		p, err := s.Settings.FindPreference(ctx, userID, tpl.ID, ch)
		switch {
		case err == nil:
			enabled = p.IsEnabled
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, fmt.Errorf("load preference %s: %w", ch, err)
		}
		if enabled {
			out = append(out, ch)
		}
	}
	return out, nil
}

// inQuietHours 在用户时区判断 now 是否处于免打扰时段。
// 时区非法回退 UTC；HH:MM 无法解析视为未设置。
func (s *PreferenceService) inQuietHours(st *models.UserNotificationSettings, now time.Time) bool {
	if st == nil || st.QuietHoursStart == nil || st.QuietHoursEnd == nil {
		return false
	}
	start, err1 := parseClock(*st.QuietHoursStart)
	end, err2 := parseClock(*st.QuietHoursEnd)
	if err1 != nil || err2 != nil {
		s.log().Warn("unparseable quiet hours, ignoring",
			zap.String("user_id", st.UserID),
			zap.Stringp("start", st.QuietHoursStart),
			zap.Stringp("end", st.QuietHoursEnd))
		return false
	}

	loc, err := time.LoadLocation(st.Timezone)
	if err != nil || st.Timezone == "" {
		if st.Timezone != "" {
			s.log().Warn("invalid timezone, falling back to UTC",
				zap.String("user_id", st.UserID), zap.String("timezone", st.Timezone))
		}
		loc = time.UTC
	}
	local := now.In(loc)
	return inQuietWindow(local.Hour()*60+local.Minute(), start, end)
}

// inQuietWindow 分钟粒度；start < end 为当天闭区间，否则跨零点
func inQuietWindow(now, start, end int) bool {
	if start < end {
		return now >= start && now <= end
	}
	return now >= start || now <= end
}

// parseClock "HH:MM" -> 当天第几分钟
func parseClock(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuietHours, v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuietHours, v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuietHours, v)
	}
	return h*60 + m, nil
}

// normalizeClock 校验并规范成 HH:MM；空串返回 nil（清除）
func normalizeClock(v string) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	mins, err := parseClock(v)
	if err != nil {
		return nil, err
	}
	out := fmt.Sprintf("%02d:%02d", mins/60, mins%60)
	return &out, nil
}
