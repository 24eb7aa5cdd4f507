package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"github.com/cydxin/notify-sdk/queue"
	"github.com/cydxin/notify-sdk/repository"
	"gorm.io/gorm"
)

// 内存版存储，用于 service 层逻辑测试

type fakeTemplates struct {
	mu   sync.Mutex
	rows map[string]*models.NotificationTemplate
}

func newFakeTemplates(tpls ...*models.NotificationTemplate) *fakeTemplates {
	f := &fakeTemplates{rows: map[string]*models.NotificationTemplate{}}
	for _, t := range tpls {
		f.rows[t.ID] = t
	}
	return f
}

func (f *fakeTemplates) FindBySlug(_ context.Context, slug string) (*models.NotificationTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTemplates) FindByID(_ context.Context, id string) (*models.NotificationTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplates) List(_ context.Context) ([]models.NotificationTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NotificationTemplate
	for _, t := range f.rows {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeTemplates) Upsert(_ context.Context, t *models.NotificationTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, cur := range f.rows {
		if cur.Slug == t.Slug {
			cp := *t
			cp.ID = id
			f.rows[id] = &cp
			return nil
		}
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("tpl-%d", len(f.rows)+1)
	}
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

type fakeNotifications struct {
	mu         sync.Mutex
	rows       map[string]*models.Notification
	seq        int
	createErr  error
	createHook func(ctx context.Context) error // 非空时先于 createErr 调用，可拿到调用方的 ctx
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{rows: map[string]*models.Notification{}}
}

func (f *fakeNotifications) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createHook != nil {
		if err := f.createHook(ctx); err != nil {
			return err
		}
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	if n.ID == "" {
		n.ID = fmt.Sprintf("n-%d", f.seq)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	f.rows[n.ID] = &cp
	return nil
}

func (f *fakeNotifications) FindByID(_ context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotifications) FindLatestForEntity(_ context.Context, recipientID string, entityType cons.EntityType, entityID string, since time.Time) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Notification
	for _, n := range f.rows {
		if n.RecipientID != recipientID || n.EntityType != entityType || n.EntityID != entityID {
			continue
		}
		if n.CreatedAt.Before(since) {
			continue
		}
		if best == nil || n.CreatedAt.After(best.CreatedAt) {
			best = n
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (f *fakeNotifications) UpdateAggregate(_ context.Context, id string, fn func(n *models.Notification) error) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	if err := fn(&cp); err != nil {
		return nil, err
	}
	f.rows[id] = &cp
	out := cp
	return &out, nil
}

func (f *fakeNotifications) ListByRecipient(_ context.Context, q repository.NotificationListQuery) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.rows {
		if n.RecipientID != q.RecipientID {
			continue
		}
		if q.Before != nil && !beforeCursor(n, *q.Before, q.BeforeID) {
			continue
		}
		if q.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// beforeCursor 与 DAO 的 (created_at, id) 比较一致
func beforeCursor(n *models.Notification, before time.Time, beforeID string) bool {
	if beforeID == "" || !n.CreatedAt.Equal(before) {
		return n.CreatedAt.Before(before)
	}
	return n.ID < beforeID
}

func (f *fakeNotifications) MarkRead(_ context.Context, recipientID string, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		row, ok := f.rows[id]
		if !ok || row.RecipientID != recipientID || row.IsRead {
			continue
		}
		row.IsRead = true
		n++
	}
	return n, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type prefKey struct {
	user, tpl string
	ch        cons.Channel
}

type fakeSettings struct {
	mu       sync.Mutex
	settings map[string]*models.UserNotificationSettings
	prefs    map[prefKey]*models.NotificationPreference
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		settings: map[string]*models.UserNotificationSettings{},
		prefs:    map[prefKey]*models.NotificationPreference{},
	}
}

func (f *fakeSettings) GetOrCreate(_ context.Context, userID string) (*models.UserNotificationSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	if !ok {
		s = models.DefaultSettings(userID)
		f.settings[userID] = s
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSettings) Update(_ context.Context, s *models.UserNotificationSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.settings[s.UserID] = &cp
	return nil
}

func (f *fakeSettings) FindPreference(_ context.Context, userID, templateID string, ch cons.Channel) (*models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[prefKey{userID, templateID, ch}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeSettings) ListPreferences(_ context.Context, userID string) ([]models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NotificationPreference
	for k, p := range f.prefs {
		if k.user == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeSettings) UpsertPreference(_ context.Context, p *models.NotificationPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.prefs[prefKey{p.UserID, p.TemplateID, p.Channel}] = &cp
	return nil
}

func (f *fakeSettings) put(s *models.UserNotificationSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[s.UserID] = s
}

type fakeAttempts struct {
	mu   sync.Mutex
	rows []*models.DeliveryAttempt
}

func (f *fakeAttempts) Create(_ context.Context, a *models.DeliveryAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = fmt.Sprintf("a-%d", len(f.rows)+1)
	}
	cp := *a
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeAttempts) UpdateStatus(_ context.Context, id string, status cons.AttemptStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id {
			a.Status = status
			a.Error = errMsg
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAttempts) ListByNotification(_ context.Context, notificationID string) ([]models.DeliveryAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DeliveryAttempt
	for _, a := range f.rows {
		if a.NotificationID == notificationID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttempts) byStatus(status cons.AttemptStatus) []models.DeliveryAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DeliveryAttempt
	for _, a := range f.rows {
		if a.Status == status {
			out = append(out, *a)
		}
	}
	return out
}

type fakeDevices struct {
	mu   sync.Mutex
	rows []*models.DeviceToken
}

func (f *fakeDevices) Upsert(_ context.Context, userID, token string, platform cons.Platform, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.rows {
		if d.UserID == userID && d.Token == token {
			d.Platform = platform
			d.IsActive = true
			d.LastUsedAt = &now
			return nil
		}
	}
	f.rows = append(f.rows, &models.DeviceToken{
		ID: uint64(len(f.rows) + 1), UserID: userID, Token: token, Platform: platform, IsActive: true, LastUsedAt: &now,
	})
	return nil
}

func (f *fakeDevices) Deactivate(_ context.Context, userID, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, d := range f.rows {
		if d.UserID == userID && d.Token == token && d.IsActive {
			d.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeDevices) ListActive(_ context.Context, userID string) ([]models.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DeviceToken
	for _, d := range f.rows {
		if d.UserID == userID && d.IsActive {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []RealtimeEvent
	err    error
}

func (f *fakeRealtime) PublishRealtime(_ context.Context, ev RealtimeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeRealtime) all() []RealtimeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RealtimeEvent(nil), f.events...)
}

type published struct {
	queue string
	msg   queue.Message
}

// fakeQueue 记录发布的消息；Consume 不在这里使用
type fakeQueue struct {
	mu       sync.Mutex
	msgs     []published
	declared []string
	failFor  map[string]error
}

func (f *fakeQueue) Publish(_ context.Context, queueName string, msg queue.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[queueName]; err != nil {
		return "", err
	}
	f.msgs = append(f.msgs, published{queue: queueName, msg: msg})
	return fmt.Sprintf("%d-0", len(f.msgs)), nil
}

func (f *fakeQueue) Declare(_ context.Context, queueName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, queueName)
	return nil
}

func (f *fakeQueue) Consume(ctx context.Context, _, _ string, _ int, _ queue.Handler) error {
	<-ctx.Done()
	return nil
}

func (f *fakeQueue) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

// newTestService 组装一套内存依赖
func newTestService() (*Service, *fakeTemplates, *fakeNotifications, *fakeSettings, *fakeAttempts, *fakeDevices, *fakeRealtime) {
	tpls := newFakeTemplates()
	notes := newFakeNotifications()
	settings := newFakeSettings()
	attempts := &fakeAttempts{}
	devices := &fakeDevices{}
	rt := &fakeRealtime{}
	s := &Service{
		Templates:     tpls,
		Notifications: notes,
		Settings:      settings,
		Attempts:      attempts,
		Devices:       devices,
		Realtime:      rt,
	}
	return s, tpls, notes, settings, attempts, devices, rt
}
