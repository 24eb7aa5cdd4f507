package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// AuthService 校验订阅端（App/Web）的会话 token。
// 会话由账号服务签发后写进同一个 Redis，通知服务只读；IssueToken 给内部调用方和调试用。
//
// Key:
//   - ntf:session:{token} -> userID (TTL)
//   - ntf:user_sessions:{userID} -> Set(token...)，下线某用户全部终端时用
type AuthService struct {
	rdb *redis.Client
}

func NewAuthService(rdb *redis.Client) *AuthService {
	return &AuthService{rdb: rdb}
}

func sessionKey(token string) string { return "ntf:session:" + token }
func userSessionsKey(userID string) string { return "ntf:user_sessions:" + userID }

// BearerToken 解析 "Bearer xxx"，格式不对返回空
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ExtractToken Authorization: Bearer 优先，其次 ?token=（WS 握手带不了 header）
func (a *AuthService) ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if t := BearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func (a *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if a == nil || a.rdb == nil {
		return "", fmt.Errorf("redis client is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing token", ErrTokenInvalid)
	}
	uid, err := a.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && uid == "") {
		return "", ErrTokenInvalid
	}
	return uid, err
}

// AuthenticateRequest 返回 userID 和请求里带的 token
func (a *AuthService) AuthenticateRequest(ctx context.Context, r *http.Request) (string, string, error) {
	t := a.ExtractToken(r)
	uid, err := a.Authenticate(ctx, t)
	return uid, t, err
}

// IssueToken 生成随机 token 并登记会话；ttl<=0 用默认 7 天
func (a *AuthService) IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if a == nil || a.rdb == nil {
		return "", fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	pipe := a.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(token), userID, ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), token)
	pipe.Expire(ctx, userSessionsKey(userID), ttl+24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// RevokeToken 注销单个会话，token 不存在不报错
func (a *AuthService) RevokeToken(ctx context.Context, token string) error {
	if a == nil || a.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	pipe := a.rdb.TxPipeline()
	if uid, err := a.rdb.Get(ctx, sessionKey(token)).Result(); err == nil {
		pipe.SRem(ctx, userSessionsKey(uid), token)
	}
	pipe.Del(ctx, sessionKey(token))
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllTokensByUser 用户全部终端下线
func (a *AuthService) RevokeAllTokensByUser(ctx context.Context, userID string) error {
	if a == nil || a.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	tokens, err := a.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := a.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, sessionKey(t))
	}
	pipe.Del(ctx, userSessionsKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
