// Package message 参考后端的消息业务：联系人列表、历史、发送、已读
package message

import (
	"time"

	"go.uber.org/zap"

	"kama_chat_client/internal/dao/repository"
	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/constants"
	"kama_chat_client/pkg/errorx"
	"kama_chat_client/pkg/util/snowflake"
)

// Pusher 把事件推给在线用户
type Pusher interface {
	Push(userID, event string, data any) bool
}

// messageService 消息业务实现
type messageService struct {
	repos  *repository.Repositories
	pusher Pusher
}

// NewMessageService 构造函数，pusher 为 nil 时不推送
func NewMessageService(repos *repository.Repositories, pusher Pusher) *messageService {
	return &messageService{repos: repos, pusher: pusher}
}

// ListPeers 除自己外的所有用户，以及每个发送者发给自己的未读数
func (s *messageService) ListPeers(userID string) ([]model.Peer, map[string]int, error) {
	accounts, err := s.repos.User.FindAllExcept(userID)
	if err != nil {
		return nil, nil, err
	}
	peers := make([]model.Peer, 0, len(accounts))
	for _, a := range accounts {
		peers = append(peers, a.Peer())
	}
	unseen, err := s.repos.Message.CountUnseen(userID)
	if err != nil {
		return nil, nil, err
	}
	return peers, unseen, nil
}

// History 与 peerID 的全部消息，同时把对方发来的消息标记为已读
func (s *messageService) History(userID, peerID string) ([]model.Message, error) {
	if err := s.repos.Message.MarkConversationSeen(peerID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repos.Message.FindConversation(userID, peerID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// Send 保存消息并推送给在线的接收者
func (s *messageService) Send(userID, receiverID string, req request.SendMessageRequest) (*model.Message, error) {
	if userID == receiverID {
		return nil, errorx.New(errorx.CodeInvalidParam, "cannot message yourself")
	}
	if _, err := s.repos.User.FindByID(receiverID); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "receiver not found")
		}
		return nil, err
	}

	msg := &model.Message{
		ID:         snowflake.GenerateIDString(),
		SenderID:   userID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      req.Image,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repos.Message.Create(msg); err != nil {
		zap.L().Error("create message failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if s.pusher != nil && s.pusher.Push(receiverID, constants.EVENT_NEW_MESSAGE, msg) {
		zap.L().Debug("message pushed", zap.String("messageId", msg.ID), zap.String("receiverId", receiverID))
	}
	return msg, nil
}

// MarkSeen 接收者把单条消息标记已读
func (s *messageService) MarkSeen(userID, messageID string) error {
	return s.repos.Message.MarkSeen(messageID, userID)
}
