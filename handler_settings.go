package notify_sdk

import (
	"net/http"

	"github.com/cydxin/notify-sdk/cons"
	"github.com/cydxin/notify-sdk/models"
	"github.com/cydxin/notify-sdk/response"
	"github.com/cydxin/notify-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 通知设置 / 偏好 --------------------

type settingsView struct {
	PushEnabled     bool    `json:"push_enabled"`
	EmailEnabled    bool    `json:"email_enabled"`
	QuietHoursStart *string `json:"quiet_hours_start"`
	QuietHoursEnd   *string `json:"quiet_hours_end"`
	Timezone        string  `json:"timezone"`
}

func toSettingsView(s *models.UserNotificationSettings) settingsView {
	return settingsView{
		PushEnabled:     s.PushEnabled,
		EmailEnabled:    s.EmailEnabled,
		QuietHoursStart: s.QuietHoursStart,
		QuietHoursEnd:   s.QuietHoursEnd,
		Timezone:        s.Timezone,
	}
}

// GinHandleGetSettings 获取通知设置（首次访问按默认值创建）
//
// @Summary 获取通知设置
// @Tags 设置
// @Produce json
// @Success 200 {object} response.Response{data=settingsView} "通知设置"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/settings [get]
func (e *NotifyEngine) GinHandleGetSettings(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	st, err := e.PreferenceService.GetOrCreateSettings(ctx.Request.Context(), uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(toSettingsView(st)))
}

// GinHandleUpdateSettings 部分更新通知设置
// 免打扰时间 HH:MM，起止需同时设置；传空串清除
//
// @Summary 更新通知设置
// @Tags 设置
// @Accept json
// @Produce json
// @Param body body service.SettingsUpdate true "只传需要修改的字段"
// @Success 200 {object} response.Response{data=settingsView} "更新后的设置"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/settings [post]
func (e *NotifyEngine) GinHandleUpdateSettings(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.SettingsUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	st, err := e.PreferenceService.UpdateSettings(ctx.Request.Context(), uid, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(toSettingsView(st)))
}

type preferenceView struct {
	TemplateID string `json:"template_id"`
	Channel    string `json:"channel"`
	IsEnabled  bool   `json:"is_enabled"`
}

// GinHandleListPreferences 显式设置过的偏好；没有的走模板默认值
//
// @Summary 偏好列表
// @Tags 设置
// @Produce json
// @Success 200 {object} response.Response{data=[]preferenceView} "显式设置过的偏好"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/preferences [get]
func (e *NotifyEngine) GinHandleListPreferences(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	rows, err := e.PreferenceService.ListPreferences(ctx.Request.Context(), uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	out := make([]preferenceView, 0, len(rows))
	for _, p := range rows {
		out = append(out, preferenceView{TemplateID: p.TemplateID, Channel: string(p.Channel), IsEnabled: p.IsEnabled})
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

type SetPreferenceReq struct {
	TemplateID string `json:"template_id" binding:"required"`
	Channel    string `json:"channel" binding:"required"`
	IsEnabled  *bool  `json:"is_enabled" binding:"required"`
}

// GinHandleSetPreference 设置某模板某通道的开关
//
// @Summary 设置偏好
// @Tags 设置
// @Accept json
// @Produce json
// @Param body body SetPreferenceReq true "模板、通道与开关"
// @Success 200 {object} response.Response "设置成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/preference [post]
func (e *NotifyEngine) GinHandleSetPreference(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req SetPreferenceReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	ch, valid := cons.ParseChannel(req.Channel)
	if !valid {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, service.ErrInvalidChannel.Error()))
		return
	}
	if err := e.PreferenceService.SetPreference(ctx.Request.Context(), uid, req.TemplateID, ch, *req.IsEnabled); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type templateView struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	IsPushEnabled  bool   `json:"is_push_enabled"`
	IsEmailEnabled bool   `json:"is_email_enabled"`
	IsInAppEnabled bool   `json:"is_in_app_enabled"`
}

// GinHandleListTemplates 模板列表，客户端据此展示偏好开关
//
// @Summary 模板列表
// @Tags 设置
// @Produce json
// @Success 200 {object} response.Response{data=[]templateView} "模板"
// @Failure 401 {object} response.Response "未认证"
// @Security BearerAuth
// @Router /notification/templates [get]
func (e *NotifyEngine) GinHandleListTemplates(ctx *gin.Context) {
	if _, ok := currentUserID(ctx); !ok {
		return
	}
	rows, err := e.TemplateService.List(ctx.Request.Context())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	out := make([]templateView, 0, len(rows))
	for _, t := range rows {
		out = append(out, templateView{
			ID:             t.ID,
			Slug:           t.Slug,
			IsPushEnabled:  t.IsPushEnabled,
			IsEmailEnabled: t.IsEmailEnabled,
			IsInAppEnabled: t.IsInAppEnabled,
		})
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}
