package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
)

type fakePush struct {
	mu     sync.Mutex
	tokens []string
	failOn map[string]error
	data   map[string]string
}

func (f *fakePush) Send(_ context.Context, token, _, _ string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.data = data
	return f.failOn[token]
}

type fakeEmail struct {
	sent []string
	err  error
}

func (f *fakeEmail) Send(_ context.Context, recipientID, subject, _ string) error {
	f.sent = append(f.sent, recipientID+":"+subject)
	return f.err
}

func testJob() *DeliveryJob {
	return &DeliveryJob{
		NotificationID: "n-1",
		RecipientID:    "u1",
		Title:          "New like",
		Message:        "2 people liked your post",
		MetaData:       map[string]any{"count": float64(2), "actionUrl": "/p/1"},
		TraceID:        "trace-1",
	}
}

func TestPushProcessor_SendsToEveryActiveDevice(t *testing.T) {
	s, _, _, _, attempts, devices, _ := newTestService()
	ctx := context.Background()
	now := time.Now()
	_ = devices.Upsert(ctx, "u1", "tok-a", cons.PlatformIOS, now)
	_ = devices.Upsert(ctx, "u1", "tok-b", cons.PlatformAndroid, now)
	_ = devices.Upsert(ctx, "u1", "tok-c", cons.PlatformWeb, now)
	_, _ = devices.Deactivate(ctx, "u1", "tok-c")
	push := &fakePush{}

	err := NewPushProcessor(s, push).Process(ctx, testJob(), JobMeta{Channel: cons.ChannelPush, AttemptNumber: 1})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(push.tokens) != 2 {
		t.Fatalf("expected 2 sends, got %v", push.tokens)
	}
	if push.data["notificationId"] != "n-1" || push.data["actionUrl"] != "/p/1" || push.data["count"] != "2" {
		t.Fatalf("unexpected push data %#v", push.data)
	}
	if got := attempts.byStatus(cons.AttemptSent); len(got) != 2 {
		t.Fatalf("expected 2 SENT attempts, got %d", len(got))
	}
}

func TestPushProcessor_DeviceFailureFailsJob(t *testing.T) {
	s, _, _, _, attempts, devices, _ := newTestService()
	ctx := context.Background()
	_ = devices.Upsert(ctx, "u1", "tok-a", cons.PlatformIOS, time.Now())
	push := &fakePush{failOn: map[string]error{"tok-a": errors.New("apns rejected")}}

	err := NewPushProcessor(s, push).Process(ctx, testJob(), JobMeta{Channel: cons.ChannelPush, AttemptNumber: 2})
	if err == nil {
		t.Fatalf("expected error")
	}
	failed := attempts.byStatus(cons.AttemptFailed)
	if len(failed) != 1 || *failed[0].Error != "apns rejected" || failed[0].AttemptNumber != 2 {
		t.Fatalf("unexpected failed attempts %#v", failed)
	}
}

func TestPushProcessor_NoDevicesIsSuccess(t *testing.T) {
	s, _, _, _, attempts, _, _ := newTestService()
	if err := NewPushProcessor(s, &fakePush{}).Process(context.Background(), testJob(), JobMeta{Channel: cons.ChannelPush, AttemptNumber: 1}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(attempts.rows) != 0 {
		t.Fatalf("no attempts expected without devices")
	}
}

func TestPushProcessor_GlobalPushDisabled(t *testing.T) {
	s, _, _, settings, _, devices, _ := newTestService()
	ctx := context.Background()
	_ = devices.Upsert(ctx, "u1", "tok-a", cons.PlatformIOS, time.Now())
	st := models.DefaultSettings("u1")
	st.PushEnabled = false
	settings.put(st)
	push := &fakePush{}

	if err := NewPushProcessor(s, push).Process(ctx, testJob(), JobMeta{Channel: cons.ChannelPush, AttemptNumber: 1}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(push.tokens) != 0 {
		t.Fatalf("push should be skipped")
	}
}

func TestEmailProcessor_DisabledIsNoop(t *testing.T) {
	s, _, _, _, attempts, _, _ := newTestService()
	mail := &fakeEmail{}

	if err := NewEmailProcessor(s, mail).Process(context.Background(), testJob(), JobMeta{Channel: cons.ChannelEmail, AttemptNumber: 1}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(mail.sent) != 0 || len(attempts.rows) != 0 {
		t.Fatalf("email disabled by default, nothing should be sent")
	}
}

func TestEmailProcessor_SendsWhenEnabled(t *testing.T) {
	s, _, _, settings, attempts, _, _ := newTestService()
	st := models.DefaultSettings("u1")
	st.EmailEnabled = true
	settings.put(st)
	mail := &fakeEmail{}

	if err := NewEmailProcessor(s, mail).Process(context.Background(), testJob(), JobMeta{Channel: cons.ChannelEmail, AttemptNumber: 1}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "u1:New like" {
		t.Fatalf("unexpected sends %v", mail.sent)
	}
	if got := attempts.byStatus(cons.AttemptSent); len(got) != 1 || got[0].Channel != cons.ChannelEmail {
		t.Fatalf("expected one SENT email attempt, got %#v", got)
	}

	mail.err = errors.New("smtp down")
	if err := NewEmailProcessor(s, mail).Process(context.Background(), testJob(), JobMeta{Channel: cons.ChannelEmail, AttemptNumber: 2}); err == nil {
		t.Fatalf("expected error")
	}
	if got := attempts.byStatus(cons.AttemptFailed); len(got) != 1 {
		t.Fatalf("expected one FAILED attempt, got %d", len(got))
	}
}

func TestInAppProcessor_PublishesRealtimeEvent(t *testing.T) {
	s, _, _, _, attempts, _, rt := newTestService()

	if err := NewInAppProcessor(s).Process(context.Background(), testJob(), JobMeta{Channel: cons.ChannelInApp, AttemptNumber: 1}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	evs := rt.all()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	want := RealtimeEvent{UserID: "u1", ID: "n-1", Message: "2 people liked your post", Count: 2}
	if evs[0] != want {
		t.Fatalf("expected %#v, got %#v", want, evs[0])
	}
	if got := attempts.byStatus(cons.AttemptSent); len(got) != 1 {
		t.Fatalf("expected SENT attempt")
	}
}

func TestMetaCount(t *testing.T) {
	if metaCount(map[string]any{"count": float64(3)}) != 3 {
		t.Fatalf("float64 count")
	}
	if metaCount(map[string]any{"count": 5}) != 5 {
		t.Fatalf("int count")
	}
	if metaCount(nil) != 1 {
		t.Fatalf("missing count defaults to 1")
	}
}
