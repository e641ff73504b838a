// Package chat 参考后端的推送中心
// hub.go
// 核心职责：
// 1. 维护在线用户连接（一个用户一条连接，新连接顶替旧连接）
// 2. 用户上线/下线时向所有在线用户广播 getOnlineUsers 全量名单
// 3. 供消息服务把 newMessage 推送给在线的接收者
package chat

import (
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"kama_chat_client/internal/dto/respond"
	"kama_chat_client/pkg/constants"
)

// Hub 推送中心
type Hub struct {
	// Clients 在线连接，Key 为 userId，Value 为 *UserConn
	Clients sync.Map
	// Login 新连接建立时写入
	Login chan *UserConn
	// Logout 连接断开时写入
	Logout chan *UserConn

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub 创建推送中心，需要另起协程调用 Start
func NewHub() *Hub {
	return &Hub{
		Login:  make(chan *UserConn, constants.CHANNEL_SIZE),
		Logout: make(chan *UserConn, constants.CHANNEL_SIZE),
		done:   make(chan struct{}),
	}
}

// Start 主循环，串行处理上线和下线事件
func (h *Hub) Start() {
	for {
		select {
		case client := <-h.Login:
			if client == nil {
				continue
			}
			if old, loaded := h.Clients.Swap(client.UserID, client); loaded && old != client {
				// 同一用户重复连接，旧连接下线
				old.(*UserConn).Conn.Close()
			}
			zap.L().Info("user online", zap.String("userId", client.UserID))
			h.broadcastOnline()

		case client := <-h.Logout:
			if client == nil {
				continue
			}
			removed := h.Clients.CompareAndDelete(client.UserID, client)
			client.close()
			if removed {
				zap.L().Info("user offline", zap.String("userId", client.UserID))
				h.broadcastOnline()
			}

		case <-h.done:
			return
		}
	}
}

// Close 停止主循环并断开所有连接
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.Clients.Range(func(_, v any) bool {
			c := v.(*UserConn)
			c.Conn.Close()
			c.close()
			return true
		})
	})
}

// Online 当前在线的用户 ID，已排序
func (h *Hub) Online() []string {
	var ids []string
	h.Clients.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}

// Push 把事件推给 userID，用户不在线或发送队列已满时返回 false
func (h *Hub) Push(userID, event string, data any) bool {
	v, ok := h.Clients.Load(userID)
	if !ok {
		return false
	}
	frame, err := encode(event, data)
	if err != nil {
		zap.L().Error("encode push event failed", zap.String("event", event), zap.Error(err))
		return false
	}
	return v.(*UserConn).enqueue(frame)
}

func (h *Hub) broadcastOnline() {
	ids := h.Online()
	if ids == nil {
		ids = []string{}
	}
	frame, err := encode(constants.EVENT_ONLINE_USERS, ids)
	if err != nil {
		zap.L().Error("encode online users failed", zap.Error(err))
		return
	}
	h.Clients.Range(func(_, v any) bool {
		v.(*UserConn).enqueue(frame)
		return true
	})
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(respond.PushEvent{Event: event, Data: raw})
}
