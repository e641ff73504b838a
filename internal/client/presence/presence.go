// Package presence 跟踪当前在线（可达）的联系人
//
// 在线名单来自推送通道的 getOnlineUsers 事件，每次都是全量名单，收到即整体替换。
// Tracker 同一时刻只挂在一条通道上，通道关闭时必须 Detach，否则旧会话的处理函数会继续改写名单。
package presence

import (
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"kama_chat_client/internal/gateway/socket"
	"kama_chat_client/pkg/constants"
)

// Tracker 在线名单
type Tracker struct {
	mu     sync.RWMutex
	online map[string]struct{}
	ch     socket.Channel
	sub    socket.Subscription
}

// New 创建空名单
func New() *Tracker {
	return &Tracker{online: make(map[string]struct{})}
}

// Attach 在通道上注册唯一的名单处理函数
// 同一通道重复调用无效果；换通道时先解绑旧的
func (t *Tracker) Attach(ch socket.Channel) {
	if ch == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ch == ch {
		return
	}
	t.detachLocked()
	t.ch = ch
	t.sub = ch.On(constants.EVENT_ONLINE_USERS, func(data json.RawMessage) {
		t.apply(ch, data)
	})
	zap.L().Debug("presence attached", zap.String("userId", ch.UserID()))
}

// Detach 注销处理函数并清空名单，可重复调用
func (t *Tracker) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detachLocked()
}

func (t *Tracker) detachLocked() {
	if t.sub != nil {
		t.sub.Unsubscribe()
		t.sub = nil
	}
	t.ch = nil
	t.online = make(map[string]struct{})
}

// apply 用推送的全量名单替换当前名单，旧通道的迟到事件直接丢弃
func (t *Tracker) apply(ch socket.Channel, data json.RawMessage) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		zap.L().Warn("drop malformed online users event", zap.Error(err))
		return
	}
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ch != ch {
		return
	}
	t.online = next
}

// IsReachable 该用户当前是否在线
func (t *Tracker) IsReachable(peerID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.online[peerID]
	return ok
}

// Online 返回排好序的在线名单副本
func (t *Tracker) Online() []string {
	t.mu.RLock()
	ids := make([]string, 0, len(t.online))
	for id := range t.online {
		ids = append(ids, id)
	}
	t.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Reset 只清空名单，不动订阅
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.online = make(map[string]struct{})
	t.mu.Unlock()
}
