package respond

import "kama_chat_client/internal/model"

// BaseRespond 所有接口共有的字段
type BaseRespond struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CheckRespond GET /api/auth/check
type CheckRespond struct {
	BaseRespond
	User model.User `json:"user"`
}

// AuthRespond POST /api/auth/{signup|login}
type AuthRespond struct {
	BaseRespond
	Token    string     `json:"token"`
	UserData model.User `json:"userData"`
}

// ProfileRespond PUT /api/auth/update-profile
type ProfileRespond struct {
	BaseRespond
	User model.User `json:"user"`
}

// Result 返回业务是否成功及服务端消息，gateway/api 统一用它判断 success 字段
func (b BaseRespond) Result() (bool, string) {
	return b.Success, b.Message
}
