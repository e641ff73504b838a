package router

import (
	"github.com/gin-gonic/gin"

	"kama_chat_client/pkg/constants"
)

// RegisterWebSocketRoutes 注册推送通道路由
// 请求示例: ws://host:port/ws?userId=xxx
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	r.GET(constants.WS_PATH, rt.handlers.Ws.Connect)
}
