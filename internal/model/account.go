package model

import "time"

// Account 参考后端保存的账号，密码只存 bcrypt 摘要
type Account struct {
	User
	PasswordHash string
	CreatedAt    time.Time
}

// Peer 转成联系人快照
func (a Account) Peer() Peer {
	return Peer{
		ID:         a.ID,
		FullName:   a.FullName,
		ProfilePic: a.ProfilePic,
		Bio:        a.Bio,
	}
}
