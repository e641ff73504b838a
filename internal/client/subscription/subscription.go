// Package subscription 管理推送通道上 newMessage 处理函数的绑定
//
// 状态只有两种：Unbound 和 Bound(channel)。绑定新通道前一定先解绑旧通道，
// 保证任意时刻最多一个处理函数，避免同一条消息被追加两次。
// 处理函数不缓存当前会话，每次投递都读取 conversation.Store 的实时状态。
package subscription

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"kama_chat_client/internal/client/conversation"
	"kama_chat_client/internal/gateway/api"
	"kama_chat_client/internal/gateway/socket"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/constants"
)

// State 绑定状态
type State int

const (
	Unbound State = iota
	Bound
)

func (s State) String() string {
	if s == Bound {
		return "bound"
	}
	return "unbound"
}

// Acker 已读回执
type Acker interface {
	MarkSeen(ctx context.Context, messageID string) error
}

var _ Acker = (api.MessageAPI)(nil)

// Manager 推送订阅管理器
type Manager struct {
	conv       *conversation.Store
	acker      Acker
	ackTimeout time.Duration

	mu  sync.RWMutex
	ch  socket.Channel
	sub socket.Subscription

	acks sync.WaitGroup
}

// New 创建管理器，ackTimeout 为 0 时回执不设超时
func New(conv *conversation.Store, acker Acker, ackTimeout time.Duration) *Manager {
	return &Manager{conv: conv, acker: acker, ackTimeout: ackTimeout}
}

// Attach 绑定到通道
// 已绑定同一通道时不做任何事；已绑定其它通道时先解绑
func (m *Manager) Attach(ch socket.Channel) {
	if ch == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch == ch {
		return
	}
	m.detachLocked()
	m.ch = ch
	m.sub = ch.On(constants.EVENT_NEW_MESSAGE, func(data json.RawMessage) {
		m.handle(ch, data)
	})
	zap.L().Debug("message subscription bound", zap.String("userId", ch.UserID()))
}

// Detach 解绑，可重复调用
func (m *Manager) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked()
}

func (m *Manager) detachLocked() {
	if m.sub == nil {
		return
	}
	m.sub.Unsubscribe()
	zap.L().Debug("message subscription unbound", zap.String("userId", m.ch.UserID()))
	m.sub = nil
	m.ch = nil
}

// State 当前状态及绑定的通道
func (m *Manager) State() (State, socket.Channel) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ch == nil {
		return Unbound, nil
	}
	return Bound, m.ch
}

// handle 投递期间持有读锁，Detach 会等它结束；解绑之后才到的投递直接丢弃
func (m *Manager) handle(ch socket.Channel, data json.RawMessage) {
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		zap.L().Warn("drop malformed message event", zap.Error(err))
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ch != ch {
		zap.L().Debug("drop message from unbound channel", zap.String("messageId", msg.ID))
		return
	}
	if m.conv.Deliver(msg) {
		m.ack(msg.ID)
	}
}

// ack 异步发送已读回执，失败只记日志，不重试
func (m *Manager) ack(messageID string) {
	if m.acker == nil || messageID == "" {
		return
	}
	m.acks.Add(1)
	go func() {
		defer m.acks.Done()
		ctx := context.Background()
		if m.ackTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.ackTimeout)
			defer cancel()
		}
		if err := m.acker.MarkSeen(ctx, messageID); err != nil {
			zap.L().Warn("mark seen failed", zap.String("messageId", messageID), zap.Error(err))
		}
	}()
}

// Wait 等待已发出的回执全部结束
func (m *Manager) Wait() {
	m.acks.Wait()
}
