// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"kama_chat_client/internal/service"
	"kama_chat_client/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例，Router 层通过它访问各个 Handler
type Handlers struct {
	Auth    *AuthHandler
	Message *MessageHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, hub *chat.Hub) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.User),
		Message: NewMessageHandler(svc.Message),
		Ws:      NewWsHandler(hub),
	}
}
