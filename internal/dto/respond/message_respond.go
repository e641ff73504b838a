package respond

import (
	"encoding/json"

	"kama_chat_client/internal/model"
)

// UsersRespond GET /api/messages/users
// UnseenMessages 为 发送者ID -> 未读条数 的快照
// 部分后端使用单数键名 user / unseenMessage，两套都接受
type UsersRespond struct {
	BaseRespond
	Users          []model.Peer   `json:"users"`
	UnseenMessages map[string]int `json:"unseenMessages"`
	User           []model.Peer   `json:"user"`
	UnseenMessage  map[string]int `json:"unseenMessage"`
}

// PeerList 联系人列表，复数键缺失时退回单数键
func (r *UsersRespond) PeerList() []model.Peer {
	if r.Users != nil {
		return r.Users
	}
	return r.User
}

// UnseenCounts 未读数快照，两套键都缺失时返回空 map
func (r *UsersRespond) UnseenCounts() map[string]int {
	switch {
	case r.UnseenMessages != nil:
		return r.UnseenMessages
	case r.UnseenMessage != nil:
		return r.UnseenMessage
	}
	return map[string]int{}
}

// MessagesRespond GET /api/messages/{peerId}
type MessagesRespond struct {
	BaseRespond
	Messages []model.Message `json:"messages"`
}

// SendRespond POST /api/messages/send/{peerId}
type SendRespond struct {
	BaseRespond
	NewMessage model.Message `json:"newMessage"`
}

// PushEvent 推送通道上的一帧
// Data 按 Event 的不同解析为 []string（getOnlineUsers）或 model.Message（newMessage）
type PushEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
