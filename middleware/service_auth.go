package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cydxin/notify-sdk/response"
	"github.com/cydxin/notify-sdk/service"
	"github.com/gin-gonic/gin"
)

// ServiceTokenHeader 内部接口的凭证 header，也接受 Authorization: Bearer
const ServiceTokenHeader = "X-Service-Token"

// GinServiceAuthMiddleware 服务间调用鉴权：只认配置的共享凭证，用户会话 token 一律 401。
// 不读 query，凭证不该出现在访问日志里。
func GinServiceAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(ServiceTokenHeader))
		if token == "" {
			token = service.BearerToken(c.GetHeader("Authorization"))
		}
		if secret == "" || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			abort(c, http.StatusUnauthorized, response.CodeTokenInvalid, "invalid service credential")
			return
		}
		c.Next()
	}
}
