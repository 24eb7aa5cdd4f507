package middleware

import (
	"net/http"
	"strings"

	"github.com/cydxin/notify-sdk/response"
	"github.com/cydxin/notify-sdk/service"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey gin context 里保存 user id 的 key
	ContextUserIDKey = "user_id"
	ContextTokenKey  = "token"
)

// AuthOptions 可选配置，零值字段走默认
type AuthOptions struct {
	// HeaderKey 默认 Authorization，值须为 "Bearer <token>"
	HeaderKey string
	// QueryKey 默认 token
	QueryKey string
}

func (o *AuthOptions) withDefaults() AuthOptions {
	out := AuthOptions{HeaderKey: "Authorization", QueryKey: "token"}
	if o != nil && o.HeaderKey != "" {
		out.HeaderKey = o.HeaderKey
	}
	if o != nil && o.QueryKey != "" {
		out.QueryKey = o.QueryKey
	}
	return out
}

/*
	GinAuthMiddleware 订阅端鉴权：

- 优先 header Bearer，其次 query（WS 握手带不了自定义 header）
- 会话校验走 AuthService（Redis），通过后把 user id 写入 gin.Context

使用：router.Use(middleware.GinAuthMiddleware(authService, nil))
*/
func GinAuthMiddleware(auth *service.AuthService, opt *AuthOptions) gin.HandlerFunc {
	cfg := opt.withDefaults()

	return func(c *gin.Context) {
		if auth == nil {
			abort(c, http.StatusInternalServerError, response.CodeInternalError, "auth service is nil")
			return
		}

		token := service.BearerToken(c.GetHeader(cfg.HeaderKey))
		if token == "" {
			token = strings.TrimSpace(c.Query(cfg.QueryKey))
		}
		if token == "" {
			abort(c, http.StatusUnauthorized, response.CodeTokenInvalid, "missing token")
			return
		}

		uid, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abort(c, http.StatusUnauthorized, response.CodeTokenInvalid, err.Error())
			return
		}

		c.Set(ContextUserIDKey, uid)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

func abort(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, response.Error(code, msg))
}

// UserID 取出中间件写入的用户 ID；没有经过中间件时返回 false
func UserID(c *gin.Context) (string, bool) {
	uid := c.GetString(ContextUserIDKey)
	return uid, uid != ""
}
