package notify_sdk

import (
	_ "github.com/cydxin/notify-sdk/docs"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwagger 在 Gin 路由上注册 Swagger UI。
// 默认路由：/swagger/*any
//
// 使用示例：
//
//	r := gin.Default()
//	engine.RegisterRoutes(r, nil)
//	notify_sdk.RegisterSwagger(r, "")
//
// 访问：http://localhost:8080/swagger/index.html
func RegisterSwagger(r gin.IRouter, path string) {
	if path == "" {
		path = "/swagger/*any"
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// RegisterSwaggerWithGroup 在 Gin 路由组上注册 Swagger UI（例如挂在带 basic auth 的管理组下）。
func RegisterSwaggerWithGroup(g *gin.RouterGroup, path string) {
	RegisterSwagger(g, path)
}
