package notify_sdk

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/response"
	"github.com/cydxin/notify-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 通知（Notification）相关接口 --------------------

// GinHandleListNotifications 拉取通知，按 (created_at, id) 倒序
// query: cursor（上一页的 next_cursor）、limit（默认50,最大200）、unread_only
// data: {items, next_cursor}
//
// @Summary 拉取通知
// @Tags 通知
// @Produce json
// @Param cursor query string false "上一页的 next_cursor"
// @Param limit query int false "条数，默认50，最大200"
// @Param unread_only query bool false "只看未读"
// @Success 200 {object} response.Response{data=service.NotificationPage} "通知分页"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/list [get]
func (e *NotifyEngine) GinHandleListNotifications(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid limit"))
		return
	}
	unreadOnly := ctx.DefaultQuery("unread_only", "false") == "true"

	page, err := e.NotificationService.List(ctx.Request.Context(), uid, ctx.Query("cursor"), limit, unreadOnly)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(page))
}

// GinHandleGetNotification 单条通知（只能看自己的）
//
// @Summary 通知详情
// @Tags 通知
// @Produce json
// @Param id query string true "通知ID"
// @Success 200 {object} response.Response{data=service.NotificationItem} "通知"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/detail [get]
func (e *NotifyEngine) GinHandleGetNotification(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id := ctx.Query("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "id is required"))
		return
	}
	item, err := e.NotificationService.Get(ctx.Request.Context(), uid, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(item))
}

type attemptView struct {
	ID            string  `json:"id"`
	Channel       string  `json:"channel"`
	Status        string  `json:"status"`
	AttemptNumber int     `json:"attempt_number"`
	Error         *string `json:"error,omitempty"`
	TraceID       *string `json:"trace_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// GinHandleListAttempts 某条通知的投递记录
//
// @Summary 投递记录
// @Tags 通知
// @Produce json
// @Param id query string true "通知ID"
// @Success 200 {object} response.Response{data=[]attemptView} "投递记录"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/attempts [get]
func (e *NotifyEngine) GinHandleListAttempts(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id := ctx.Query("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "id is required"))
		return
	}
	rows, err := e.NotificationService.ListAttempts(ctx.Request.Context(), uid, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	out := make([]attemptView, 0, len(rows))
	for _, a := range rows {
		out = append(out, attemptView{
			ID:            a.ID,
			Channel:       string(a.Channel),
			Status:        string(a.Status),
			AttemptNumber: a.AttemptNumber,
			Error:         a.Error,
			TraceID:       a.TraceID,
			CreatedAt:     a.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleUnreadCount 未读数（角标）
//
// @Summary 未读数
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64} "unread"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/unread_count [get]
func (e *NotifyEngine) GinHandleUnreadCount(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	n, err := e.NotificationService.UnreadCount(ctx.Request.Context(), uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]int64{"unread": n}))
}

type MarkNotificationsReadReq struct {
	IDs []string `json:"ids" binding:"required"`
}

// GinHandleMarkNotificationsRead 标记通知已读
//
// @Summary 标记已读
// @Tags 通知
// @Accept json
// @Produce json
// @Param body body MarkNotificationsReadReq true "通知ID列表"
// @Success 200 {object} response.Response{data=map[string]int64} "updated"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/read [post]
func (e *NotifyEngine) GinHandleMarkNotificationsRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req MarkNotificationsReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	n, err := e.NotificationService.MarkRead(ctx.Request.Context(), uid, req.IDs)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]int64{"updated": n}))
}

// GinHandleMarkAllNotificationsRead 全部已读
//
// @Summary 全部已读
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64} "updated"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/read_all [post]
func (e *NotifyEngine) GinHandleMarkAllNotificationsRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	n, err := e.NotificationService.MarkAllRead(ctx.Request.Context(), uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]int64{"updated": n}))
}

const ingestTimeout = 10 * time.Second

type ingestResp struct {
	NotificationID string         `json:"notification_id"`
	Aggregated     bool           `json:"aggregated"`
	Count          int            `json:"count"`
	Channels       []cons.Channel `json:"channels"`
}

// GinHandleIngestEvent 内部事件入口（业务服务调用，不面向客户端）
// body: service.NotificationEvent
//
// @Summary 提交通知事件
// @Tags 内部
// @Accept json
// @Produce json
// @Param body body service.NotificationEvent true "通知事件"
// @Success 200 {object} response.Response{data=ingestResp} "落库结果；部分通道入队失败时 code=99999 且 data 仍返回"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未认证"
// @Security ServiceToken
// @Router /internal/notification/event [post]
func (e *NotifyEngine) GinHandleIngestEvent(ctx *gin.Context) {
	var ev service.NotificationEvent
	if err := ctx.ShouldBindJSON(&ev); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	// 调用方断开不应打断已拿到去重标记的处理
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx.Request.Context()), ingestTimeout)
	defer cancel()
	res, err := e.HandleEvent(c, ev)
	if res == nil {
		writeServiceError(ctx, err)
		return
	}

	data := ingestResp{
		NotificationID: res.Notification.ID,
		Aggregated:     res.Aggregated,
		Count:          res.Notification.Meta().Count,
		Channels:       res.Channels,
	}
	if data.Channels == nil {
		data.Channels = []cons.Channel{}
	}
	if err != nil {
		// 通知已落库，部分通道入队失败
		ctx.JSON(http.StatusOK, &response.Response{Code: response.CodeInternalError, Msg: err.Error(), Data: data})
		return
	}
	ctx.JSON(http.StatusOK, response.Success(data))
}
