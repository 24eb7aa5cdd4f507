package notify_sdk

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/response"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	engine *NotifyEngine
	mock   sqlmock.Sqlmock
	sqlDB  *sql.DB
	mr     *miniredis.Miniredis
	rdb    *redis.Client
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	opts = append([]Option{WithDB(gormDB), WithRDB(rdb), WithQueueBlock(50*time.Millisecond)}, opts...)
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &testEnv{engine: e, mock: mock, sqlDB: sqlDB, mr: mr, rdb: rdb}
}

func (env *testEnv) router() *gin.Engine {
	r := gin.New()
	env.engine.RegisterRoutes(r, nil)
	return r
}

func (env *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := env.engine.AuthService.IssueToken(context.Background(), userID, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v body=%s", method, path, err, w.Body.String())
	}
	return w.Code, env
}

func TestNewEngine_RequiresStores(t *testing.T) {
	if _, err := NewEngine(); err == nil {
		t.Fatalf("expected error without DB")
	}
	sqlDB, _, _ := sqlmock.New()
	defer sqlDB.Close()
	gormDB, _ := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	if _, err := NewEngine(WithDB(gormDB)); err == nil {
		t.Fatalf("expected error without RDB")
	}
}

func TestRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)
	code, body := do(t, env.router(), http.MethodGet, "/api/v1/notification/unread_count", "", "")
	if code != http.StatusUnauthorized || body.Code != response.CodeTokenInvalid {
		t.Fatalf("expected 401/%d, got %d/%d", response.CodeTokenInvalid, code, body.Code)
	}
	code, _ = do(t, env.router(), http.MethodGet, "/api/v1/notification/unread_count", "forged", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("forged token should be rejected, got %d", code)
	}
}

func TestRoutes_UnreadCount(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "u1")

	env.mock.ExpectQuery("SELECT count\\(\\*\\) FROM `ntf_notification` WHERE recipient_id = \\? AND is_read = \\?").
		WithArgs("u1", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	code, body := do(t, env.router(), http.MethodGet, "/api/v1/notification/unread_count", tok, "")
	if code != http.StatusOK || body.Code != response.CodeSuccess {
		t.Fatalf("unexpected response %d %#v", code, body)
	}
	var data struct {
		Unread int64 `json:"unread"`
	}
	_ = json.Unmarshal(body.Data, &data)
	if data.Unread != 3 {
		t.Fatalf("expected 3 unread, got %d", data.Unread)
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoutes_ParamErrors(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "u1")
	r := env.router()

	_, body := do(t, r, http.MethodPost, "/api/v1/device/register", tok, `{"token":"t1","platform":"symbian"}`)
	if body.Code != response.CodeParamError {
		t.Fatalf("unknown platform: expected %d, got %#v", response.CodeParamError, body)
	}

	_, body = do(t, r, http.MethodGet, "/api/v1/notification/list?cursor=yesterday", tok, "")
	if body.Code != response.CodeParamError {
		t.Fatalf("bad cursor: expected %d, got %#v", response.CodeParamError, body)
	}

	code, body := do(t, r, http.MethodPost, "/api/v1/notification/preference", tok, `{"template_id":"x","channel":"SMS","is_enabled":true}`)
	if code != http.StatusOK || body.Code != response.CodeParamError {
		t.Fatalf("unknown channel: got %d %#v", code, body)
	}

	code, _ = do(t, r, http.MethodPost, "/api/v1/notification/read", tok, `{}`)
	if code != http.StatusBadRequest {
		t.Fatalf("missing ids: expected 400, got %d", code)
	}

	// 参数错误都不应该碰数据库
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

const eventBody = `{"recipientId":"victim","actorId":"mallory","templateSlug":"system_announcement","entityType":"SYSTEM","entityId":"s1"}`

func TestRoutes_IngestEventNeedsServiceCredential(t *testing.T) {
	env := newTestEnv(t, WithIngestToken("svc-secret"))
	r := env.router()
	userTok := env.token(t, "mallory")

	// 用户组下没有事件入口
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notification/event", strings.NewReader(eventBody))
	req.Header.Set("Authorization", "Bearer "+userTok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("event route must not be mounted for end users, got %d", w.Code)
	}

	code, body := do(t, r, http.MethodPost, "/api/v1/internal/notification/event", userTok, eventBody)
	if code != http.StatusUnauthorized || body.Code != response.CodeTokenInvalid {
		t.Fatalf("user session on internal route: expected 401/%d, got %d/%d", response.CodeTokenInvalid, code, body.Code)
	}
	code, _ = do(t, r, http.MethodPost, "/api/v1/internal/notification/event", "", eventBody)
	if code != http.StatusUnauthorized {
		t.Fatalf("missing credential: expected 401, got %d", code)
	}
	// 被拒的请求不能走到模板查询
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}

	env.mock.ExpectQuery("SELECT \\* FROM `ntf_notification_template` WHERE slug = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug"}))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/internal/notification/event", strings.NewReader(eventBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", "svc-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out envelope
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	if w.Code != http.StatusOK || out.Code != response.CodeNotFound {
		t.Fatalf("service credential should reach ingestion, got %d %#v", w.Code, out)
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoutes_IngestEventDisabledWithoutCredential(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/notification/event", strings.NewReader(eventBody))
	req.Header.Set("X-Service-Token", "anything")
	w := httptest.NewRecorder()
	env.router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("internal route should not exist without an ingest token, got %d", w.Code)
	}
}

func TestRoutes_Health(t *testing.T) {
	env := newTestEnv(t)
	code, body := do(t, env.router(), http.MethodGet, "/health", "", "")
	if code != http.StatusOK || body.Code != response.CodeSuccess {
		t.Fatalf("unexpected health %d %#v", code, body)
	}

	env.mr.SetError("ERR redis unavailable")
	code, _ = do(t, env.router(), http.MethodGet, "/health", "", "")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", code)
	}
}

func TestEngine_StartDeclaresQueues(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := env.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := env.engine.Start(ctx); err == nil {
		t.Fatalf("second Start should fail")
	}
	for _, ch := range cons.AllChannels {
		if !env.mr.Exists(ch.QueueName()) || !env.mr.Exists(ch.DeadLetterQueueName()) {
			t.Fatalf("queue %s not declared, keys=%v", ch.QueueName(), env.mr.Keys())
		}
	}

	done := make(chan struct{})
	go func() {
		env.engine.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("Close did not return")
	}
}
