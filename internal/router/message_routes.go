package router

import (
	"github.com/gin-gonic/gin"

	"kama_chat_client/internal/infrastructure/middleware"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/messages", middleware.TokenAuth())
	{
		messageGroup.GET("/users", rt.handlers.Message.Users)       // 联系人列表和未读数
		messageGroup.GET("/:id", rt.handlers.Message.History)       // 与某联系人的消息记录
		messageGroup.POST("/send/:id", rt.handlers.Message.Send)    // 发送消息
		messageGroup.PUT("/mark/:id", rt.handlers.Message.MarkSeen) // 标记已读
	}
}
