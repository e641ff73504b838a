// Package service 定义参考后端的业务接口，供 Handler 层调用
package service

import (
	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/model"
)

// UserService 账号业务接口
type UserService interface {
	// Signup 注册，返回 token 和用户资料
	Signup(req request.SignupRequest) (string, *model.User, error)
	// Login 登录，返回 token 和用户资料
	Login(req request.LoginRequest) (string, *model.User, error)
	// GetUser 获取用户资料
	GetUser(userID string) (*model.User, error)
	// UpdateProfile 修改资料
	UpdateProfile(userID string, req request.UpdateProfileRequest) (*model.User, error)
}

// MessageService 消息业务接口
type MessageService interface {
	// ListPeers 联系人列表和未读数
	ListPeers(userID string) ([]model.Peer, map[string]int, error)
	// History 与某联系人的历史消息
	History(userID, peerID string) ([]model.Message, error)
	// Send 发送消息
	Send(userID, receiverID string, req request.SendMessageRequest) (*model.Message, error)
	// MarkSeen 标记已读
	MarkSeen(userID, messageID string) error
}
