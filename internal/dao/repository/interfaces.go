// Package repository 定义参考后端的数据访问接口
// 具体实现见 internal/dao/memory（默认）和 internal/dao/mysql
package repository

import "kama_chat_client/internal/model"

// UserRepository 账号存储
type UserRepository interface {
	// Create 创建账号，邮箱已存在时返回 CodeUserExist
	Create(account *model.Account) error
	// FindByEmail 按邮箱查找（不区分大小写），不存在时返回 CodeNotFound
	FindByEmail(email string) (*model.Account, error)
	// FindByID 按 ID 查找，不存在时返回 CodeNotFound
	FindByID(id string) (*model.Account, error)
	// FindAllExcept 除 excludeID 外的全部账号，按注册时间排序
	FindAllExcept(excludeID string) ([]model.Account, error)
	// UpdateProfile 修改名字、简介，pic 非空时修改头像
	UpdateProfile(id, fullName, bio, pic string) (*model.Account, error)
}

// MessageRepository 消息存储
type MessageRepository interface {
	Create(msg *model.Message) error
	// FindConversation 两人之间的全部消息，按时间顺序
	FindConversation(userA, userB string) ([]model.Message, error)
	// MarkConversationSeen 把 from 发给 to 的消息全部标记已读
	MarkConversationSeen(from, to string) error
	// MarkSeen 标记单条已读，只有接收者可以标记
	MarkSeen(id, receiverID string) error
	// CountUnseen 发给 to 的未读消息数，按发送者分组
	CountUnseen(to string) (map[string]int, error)
}

// Repositories 聚合所有存储
type Repositories struct {
	User    UserRepository
	Message MessageRepository
}
