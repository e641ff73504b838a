// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"kama_chat_client/internal/dao/repository"
	"kama_chat_client/internal/service/message"
	"kama_chat_client/internal/service/user"
)

// Services 聚合所有 Service 实例
type Services struct {
	User    UserService
	Message MessageService
}

// NewServices 创建并注入所有 Service 实例
// pusher 用于把新消息推给在线用户，通常是 chat.Hub
func NewServices(repos *repository.Repositories, pusher message.Pusher) *Services {
	return &Services{
		User:    user.NewUserService(repos),
		Message: message.NewMessageService(repos, pusher),
	}
}
