package notify_sdk

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cydxin/notify-sdk/middleware"
	"github.com/cydxin/notify-sdk/response"
	"github.com/cydxin/notify-sdk/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/*
提供的HTTP接口在此处，也可以直接自己写controller然后调用service。

	engine, _ := notify_sdk.NewEngine(...)
	r := gin.Default()
	engine.RegisterRoutes(r, nil)

接口按文件拆分：
- handler_notification.go 通知列表/已读/事件入口
- handler_device.go 设备 token
- handler_settings.go 通知设置/偏好/模板
*/

// RegisterRoutes 注册全部路由。/api/v1 与 /ws 需要用户鉴权，/api/v1/internal 需要服务凭证，
// /health 与 /metrics 不需要
func (e *NotifyEngine) RegisterRoutes(r gin.IRouter, opt *middleware.AuthOptions) {
	r.GET("/health", e.GinHandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := e.GinAuthMiddleware(opt)
	r.GET("/ws", auth, e.GinHandleWS)

	api := r.Group("/api/v1", auth)

	deviceAPI := api.Group("/device")
	{
		deviceAPI.POST("/register", e.GinHandleRegisterDevice)
		deviceAPI.POST("/unregister", e.GinHandleUnregisterDevice)
		deviceAPI.GET("/list", e.GinHandleListDevices)
	}

	notifyAPI := api.Group("/notification")
	{
		notifyAPI.GET("/list", e.GinHandleListNotifications)
		notifyAPI.GET("/detail", e.GinHandleGetNotification)
		notifyAPI.GET("/attempts", e.GinHandleListAttempts)
		notifyAPI.GET("/unread_count", e.GinHandleUnreadCount)
		notifyAPI.POST("/read", e.GinHandleMarkNotificationsRead)
		notifyAPI.POST("/read_all", e.GinHandleMarkAllNotificationsRead)

		notifyAPI.GET("/settings", e.GinHandleGetSettings)
		notifyAPI.POST("/settings", e.GinHandleUpdateSettings)
		notifyAPI.GET("/preferences", e.GinHandleListPreferences)
		notifyAPI.POST("/preference", e.GinHandleSetPreference)
		notifyAPI.GET("/templates", e.GinHandleListTemplates)
	}

	// 事件入口只给业务服务用，不挂在用户鉴权组下；没配凭证就不开放
	if e.config.IngestToken != "" {
		internal := r.Group("/api/v1/internal", middleware.GinServiceAuthMiddleware(e.config.IngestToken))
		internal.POST("/notification/event", e.GinHandleIngestEvent)
	}
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
// 使用 NotifyEngine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	r.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
//	// 或自定义配置
//	r.Use(engine.GinAuthMiddleware(&middleware.AuthOptions{
//	    HeaderKey: "X-Token",
//	    QueryKey: "access_token",
//	}))
func (e *NotifyEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(e.AuthService, opt)
}

// GinHandleWS 升级为 WebSocket，接收站内刷新推送
// 客户端连接：ws://host/ws?token=xxx
func (e *NotifyEngine) GinHandleWS(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	e.ServeWS(ctx.Writer, ctx.Request, uid)
}

// GinHandleHealth 检查 MySQL 与 Redis 连通性
func (e *NotifyEngine) GinHandleHealth(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"mysql": "ok", "redis": "ok"}
	healthy := true
	if sqlDB, err := e.config.DB.DB(); err != nil {
		status["mysql"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(c); err != nil {
		status["mysql"] = err.Error()
		healthy = false
	}
	if err := e.config.RDB.Ping(c).Err(); err != nil {
		status["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, &response.Response{Code: response.CodeInternalError, Msg: "unhealthy", Data: status})
		return
	}
	ctx.JSON(http.StatusOK, response.Success(status))
}

// currentUserID 取鉴权中间件写入的 user_id，取不到时已经写好 401
func currentUserID(ctx *gin.Context) (string, bool) {
	uid, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
	}
	return uid, ok
}

// writeServiceError service 错误 -> 业务状态码（HTTP 200）
func writeServiceError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusOK, response.Error(errorCode(err), err.Error()))
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrInvalidChannel),
		errors.Is(err, service.ErrInvalidPlatform),
		errors.Is(err, service.ErrInvalidQuietHours),
		errors.Is(err, service.ErrInvalidTimezone),
		errors.Is(err, service.ErrInvalidCursor):
		return response.CodeParamError
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		return response.CodeNotFound
	case errors.Is(err, service.ErrTokenInvalid):
		return response.CodeTokenInvalid
	}
	return response.CodeInternalError
}
