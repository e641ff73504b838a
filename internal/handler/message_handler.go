package handler

import (
	"github.com/gin-gonic/gin"

	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/service"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 构造函数
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Users 联系人列表
// GET /api/messages/users
// 响应: { success, users, unseenMessages }
func (h *MessageHandler) Users(c *gin.Context) {
	peers, unseen, err := h.messageSvc.ListPeers(currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"users": peers, "unseenMessages": unseen})
}

// History 与某联系人的消息记录
// GET /api/messages/:id
// 响应: { success, messages }
func (h *MessageHandler) History(c *gin.Context) {
	msgs, err := h.messageSvc.History(currentUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"messages": msgs})
}

// Send 发送消息
// POST /api/messages/send/:id
// 响应: { success, newMessage }
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	msg, err := h.messageSvc.Send(currentUserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"newMessage": msg})
}

// MarkSeen 标记已读
// PUT /api/messages/mark/:id
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	if err := h.messageSvc.MarkSeen(currentUserID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
