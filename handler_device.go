package notify_sdk

import (
	"net/http"
	"time"

	"github.com/cydxin/notify-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 设备（Device）相关接口 --------------------

type RegisterDeviceReq struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required"` // IOS / ANDROID / WEB，大小写不敏感
}

// GinHandleRegisterDevice 注册推送 token；同一 token 重复注册会重新激活
//
// @Summary 注册设备
// @Tags 设备
// @Accept json
// @Produce json
// @Param body body RegisterDeviceReq true "设备 token 与平台"
// @Success 200 {object} response.Response "注册成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /device/register [post]
func (e *NotifyEngine) GinHandleRegisterDevice(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req RegisterDeviceReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if err := e.DeviceService.Register(ctx.Request.Context(), uid, req.Token, req.Platform); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type UnregisterDeviceReq struct {
	Token string `json:"token" binding:"required"`
}

// GinHandleUnregisterDevice 注销推送 token（只置为失效，不删除）
//
// @Summary 注销设备
// @Tags 设备
// @Accept json
// @Produce json
// @Param body body UnregisterDeviceReq true "设备 token"
// @Success 200 {object} response.Response "注销成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /device/unregister [post]
func (e *NotifyEngine) GinHandleUnregisterDevice(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req UnregisterDeviceReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if err := e.DeviceService.Unregister(ctx.Request.Context(), uid, req.Token); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type deviceView struct {
	Token      string     `json:"token"`
	Platform   string     `json:"platform"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// GinHandleListDevices 设备列表
// @Summary 设备列表
// @Tags 设备
// @Produce json
// @Success 200 {object} response.Response{data=[]deviceView} "有效设备"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /device/list [get]
func (e *NotifyEngine) GinHandleListDevices(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	rows, err := e.DeviceService.ListActive(ctx.Request.Context(), uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	out := make([]deviceView, 0, len(rows))
	for _, d := range rows {
		out = append(out, deviceView{Token: d.Token, Platform: string(d.Platform), LastUsedAt: d.LastUsedAt})
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}
