package router

import (
	"github.com/gin-gonic/gin"

	"kama_chat_client/internal/infrastructure/middleware"
)

// RegisterAuthRoutes 注册认证相关路由
// signup/login 公开，其余需要 token
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", rt.handlers.Auth.Signup) // 注册
		authGroup.POST("/login", rt.handlers.Auth.Login)   // 登录
	}
	protected := authGroup.Group("", middleware.TokenAuth())
	{
		protected.GET("/check", rt.handlers.Auth.Check)                  // 校验 token 并返回当前用户
		protected.PUT("/update-profile", rt.handlers.Auth.UpdateProfile) // 修改资料
	}
}
