// Package tokenstore 持久化认证 token 的本地键值槽
// 只保存一个字符串：启动时读取，认证成功时写入，登出时清除
package tokenstore

import (
	"context"
	"fmt"
	"sync"

	"kama_chat_client/internal/config"
)

// Slot token 存储槽
// 槽为空时 Load 返回 ("", nil)
type Slot interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// New 按配置创建存储槽
func New(conf *config.Config) (Slot, error) {
	switch conf.ClientConfig.TokenStore {
	case "", "file":
		return NewFileSlot(conf.ClientConfig.TokenFile), nil
	case "redis":
		return NewRedisSlot(&conf.RedisConfig, conf.ClientConfig.TokenKey), nil
	case "memory":
		return NewMemorySlot(""), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", conf.ClientConfig.TokenStore)
	}
}

// MemorySlot 进程内存储，进程退出即丢失
type MemorySlot struct {
	mu    sync.Mutex
	token string
}

// NewMemorySlot 创建内存槽，initial 为初始 token
func NewMemorySlot(initial string) *MemorySlot {
	return &MemorySlot{token: initial}
}

func (m *MemorySlot) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemorySlot) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemorySlot) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
