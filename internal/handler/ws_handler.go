package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kama_chat_client/internal/service/chat"
	"kama_chat_client/pkg/constants"
)

// WsHandler 推送通道处理器
type WsHandler struct {
	hub *chat.Hub
}

// NewWsHandler 构造函数
func NewWsHandler(hub *chat.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 升级为 websocket 并登记在线
// GET /ws?userId=xxx
func (h *WsHandler) Connect(c *gin.Context) {
	userID := c.Query(constants.WS_USER_ID_QUERY)
	if userID == "" {
		zap.L().Warn("websocket connect without userId")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId is required"})
		return
	}
	_ = h.hub.ServeWS(c.Writer, c.Request, userID)
}
