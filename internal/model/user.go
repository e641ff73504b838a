// Package model 定义客户端核心使用的领域模型
// 本文件定义用户、会话身份与联系人
package model

// User 后端返回的用户资料
// JSON 字段名与后端接口保持一致（_id / fullName / profilePic）
type User struct {
	ID         string `json:"_id"`
	Email      string `json:"email,omitempty"`
	FullName   string `json:"fullName"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

// Session 当前登录用户的会话
// 由 Session Store 独占；登出时销毁
// Token 会持久化到本地，身份信息不会，重启后需要用 token 向后端换取
type Session struct {
	UserID     string
	FullName   string
	Bio        string
	ProfilePic string
	Token      string
}

// NewSession 由用户资料和 token 构建会话
func NewSession(u User, token string) *Session {
	return &Session{
		UserID:     u.ID,
		FullName:   u.FullName,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		Token:      token,
	}
}

// Clone 返回副本，避免调用方修改 Store 内部状态
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Peer 可以聊天的联系人（快照，不可变）
// 每次刷新联系人列表时整体替换
type Peer struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
}
