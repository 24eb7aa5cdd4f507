// Package notify_sdk 提供通知投递管线：事件入口、聚合去重、多通道投递与拉取 API
// @title Notify SDK API
// @version 1.0
// @description 通知服务的 RESTful API 文档，包含通知拉取/已读、设备 token、通知设置与偏好、内部事件入口
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 通知/模板不存在 |
// @description | 10004 | Token 无效 |
// @description | 10005 | 权限不足 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码说明
// @description - **200**: 业务请求成功（根据 response.code 判断业务状态）
// @description - **400**: 请求体/参数无法解析
// @description - **401**: 认证失败（未登录/Token 无效/服务凭证错误）
// @description - **500**: 服务器内部错误
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @termsOfService https://github.com/cydxin/notify-sdk
//
// @contact.name API Support
// @contact.url https://github.com/cydxin/notify-sdk/issues
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description 用于 WebSocket 等无法传 header 的场景
//
// @securityDefinitions.apikey ServiceToken
// @in header
// @name X-Service-Token
// @description 业务服务调用内部接口用的共享凭证（也接受 Authorization: Bearer <凭证>）
package notify_sdk
