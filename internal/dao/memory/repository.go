// Package memory 参考后端的内存存储
// 只在进程内有效，重启即清空
package memory

import "kama_chat_client/internal/dao/repository"

// 确保实现了接口
var (
	_ repository.UserRepository    = (*UserStore)(nil)
	_ repository.MessageRepository = (*MessageStore)(nil)
)

// NewRepositories 创建内存存储
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserStore(),
		Message: NewMessageStore(),
	}
}
