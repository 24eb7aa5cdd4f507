package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
)

func seedNotifications(t *testing.T, notes *fakeNotifications, userID string, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		row := &models.Notification{
			ID:          fmt.Sprintf("%s-n%d", userID, i),
			RecipientID: userID,
			TemplateID:  "tpl-liked",
			EntityType:  cons.EntityPost,
			EntityID:    fmt.Sprintf("p%d", i),
			Message:     "msg",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		row.SetMeta(models.NotificationMeta{Count: 1})
		if err := notes.Create(context.Background(), row); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestNotificationService_ListPaginates(t *testing.T) {
	s, _, notes, _, _, _, _ := newTestService()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedNotifications(t, notes, "u1", 5, base)
	seedNotifications(t, notes, "u2", 2, base)
	svc := NewNotificationService(s)
	ctx := context.Background()

	page, err := svc.List(ctx, "u1", "", 2, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "u1-n4" || page.Items[1].ID != "u1-n3" {
		t.Fatalf("unexpected first page %#v", page.Items)
	}
	if page.NextCursor == "" {
		t.Fatalf("expected next cursor")
	}

	var all []string
	for _, it := range page.Items {
		all = append(all, it.ID)
	}
	for page.NextCursor != "" {
		page, err = svc.List(ctx, "u1", page.NextCursor, 2, false)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, it := range page.Items {
			all = append(all, it.ID)
		}
	}
	if len(all) != 5 || all[4] != "u1-n0" {
		t.Fatalf("unexpected walk %v", all)
	}

	if _, err := svc.List(ctx, "u1", "yesterday", 2, false); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestNotificationService_ListKeepsRowsSharingTimestamp(t *testing.T) {
	s, _, notes, _, _, _, _ := newTestService()
	ts := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		row := &models.Notification{ID: id, RecipientID: "u1", TemplateID: "tpl-liked", Message: "msg", CreatedAt: ts}
		if err := notes.Create(context.Background(), row); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := NewNotificationService(s)
	ctx := context.Background()

	var all []string
	cursor := ""
	for {
		page, err := svc.List(ctx, "u1", cursor, 2, false)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, it := range page.Items {
			all = append(all, it.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	if strings.Join(all, ",") != "e,d,c,b,a" {
		t.Fatalf("rows on a shared timestamp lost across pages: %v", all)
	}

	// 只带时间戳的游标按 created_at < 处理
	page, err := svc.List(ctx, "u1", ts.Format(time.RFC3339Nano), 10, false)
	if err != nil {
		t.Fatalf("List legacy cursor: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %d", len(page.Items))
	}
}

func TestNotificationService_ReadState(t *testing.T) {
	s, _, notes, _, _, _, _ := newTestService()
	seedNotifications(t, notes, "u1", 3, time.Now())
	seedNotifications(t, notes, "u2", 1, time.Now())
	svc := NewNotificationService(s)
	ctx := context.Background()

	if n, _ := svc.UnreadCount(ctx, "u1"); n != 3 {
		t.Fatalf("expected 3 unread, got %d", n)
	}
	// u2 的通知不能被 u1 标记
	n, err := svc.MarkRead(ctx, "u1", []string{"u1-n0", "u2-n0"})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 marked, got %d err=%v", n, err)
	}
	if n, _ := svc.UnreadCount(ctx, "u2"); n != 1 {
		t.Fatalf("u2 should be untouched")
	}
	if n, _ := svc.MarkAllRead(ctx, "u1"); n != 2 {
		t.Fatalf("expected 2 marked by read-all, got %d", n)
	}
	if n, _ := svc.UnreadCount(ctx, "u1"); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}

	page, _ := svc.List(ctx, "u2", "", 0, true)
	if len(page.Items) != 1 {
		t.Fatalf("unread_only should return u2's notification")
	}
}

func TestNotificationService_GetChecksOwner(t *testing.T) {
	s, _, notes, _, _, _, _ := newTestService()
	seedNotifications(t, notes, "u1", 1, time.Now())
	svc := NewNotificationService(s)

	if _, err := svc.Get(context.Background(), "u2", "u1-n0"); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	it, err := svc.Get(context.Background(), "u1", "u1-n0")
	if err != nil || it.MetaData.Count != 1 {
		t.Fatalf("Get: %#v err=%v", it, err)
	}
}

func TestDeviceService_RegisterUnregister(t *testing.T) {
	s, _, _, _, _, devices, _ := newTestService()
	svc := NewDeviceService(s)
	ctx := context.Background()

	if err := svc.Register(ctx, "u1", "tok", "ios"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Register(ctx, "u1", "tok", "android"); err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if len(devices.rows) != 1 || devices.rows[0].Platform != cons.PlatformAndroid {
		t.Fatalf("re-register must update in place, got %#v", devices.rows)
	}
	if err := svc.Register(ctx, "u1", "tok2", "blackberry"); !errors.Is(err, ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform, got %v", err)
	}

	if err := svc.Unregister(ctx, "u1", "tok"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	active, _ := svc.ListActive(ctx, "u1")
	if len(active) != 0 {
		t.Fatalf("expected no active devices")
	}
	_ = svc.Register(ctx, "u1", "tok", "ios")
	active, _ = svc.ListActive(ctx, "u1")
	if len(active) != 1 {
		t.Fatalf("re-register should reactivate")
	}
}

func TestTemplateService_SeedIsIdempotent(t *testing.T) {
	s, _, _, _, _, _, _ := newTestService()
	svc := NewTemplateService(s)
	ctx := context.Background()

	if err := svc.Seed(ctx, DefaultTemplates()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := svc.Seed(ctx, DefaultTemplates()); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	list, _ := svc.List(ctx)
	if len(list) != len(DefaultTemplates()) {
		t.Fatalf("expected %d templates, got %d", len(DefaultTemplates()), len(list))
	}
	got, err := svc.GetBySlug(ctx, "post_liked")
	if err != nil || got.BodyTemplate != "{{count}} people liked your post" {
		t.Fatalf("GetBySlug: %#v err=%v", got, err)
	}
	if _, err := svc.GetBySlug(ctx, "nope"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "nope"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}
