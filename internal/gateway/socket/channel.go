// Package socket 推送通道客户端
// 连接建立后只读不写：服务端推送 {"event": "...", "data": ...} 帧，按到达顺序分发给订阅者
package socket

import (
	"context"
	"encoding/json"
)

// Handler 事件处理函数，在通道的读协程上串行调用
// 处理函数中不要阻塞，也不要调用 Close
type Handler func(data json.RawMessage)

// Subscription 一次 On 调用的注册结果
type Subscription interface {
	// Unsubscribe 注销处理函数，可重复调用
	Unsubscribe()
}

// Channel 一条已认证的推送通道
type Channel interface {
	// UserID 建立通道时携带的用户身份
	UserID() string
	// On 为事件注册处理函数
	On(event string, h Handler) Subscription
	// Done 通道关闭（主动或断线）后被关闭
	Done() <-chan struct{}
	// Close 关闭通道，可重复调用
	Close() error
}

// Dialer 按用户身份建立推送通道
type Dialer interface {
	Dial(ctx context.Context, userID string) (Channel, error)
}

// Alive 通道非空且尚未关闭
func Alive(ch Channel) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch.Done():
		return false
	default:
		return true
	}
}
