package socket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"kama_chat_client/internal/dto/respond"
)

// Router 事件名到处理函数的分发表
// 同一事件可以有多个处理函数，按注册顺序调用
type Router struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]Handler
	order    map[string][]uint64
}

// NewRouter 创建空的分发表
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]map[uint64]Handler),
		order:    make(map[string][]uint64),
	}
}

// On 注册处理函数
func (r *Router) On(event string, h Handler) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	if r.handlers[event] == nil {
		r.handlers[event] = make(map[uint64]Handler)
	}
	r.handlers[event][id] = h
	r.order[event] = append(r.order[event], id)
	return &subscription{router: r, event: event, id: id}
}

// Count 某事件当前的处理函数数量
func (r *Router) Count(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[event])
}

// Dispatch 解析一帧并分发，无法解析的帧记日志后丢弃
func (r *Router) Dispatch(frame []byte) {
	var ev respond.PushEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		zap.L().Warn("drop malformed push frame", zap.Error(err))
		return
	}
	r.Emit(ev.Event, ev.Data)
}

// Emit 把 data 交给 event 的所有处理函数
func (r *Router) Emit(event string, data json.RawMessage) {
	r.mu.RLock()
	ids := r.order[event]
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		if h, ok := r.handlers[event][id]; ok {
			hs = append(hs, h)
		}
	}
	r.mu.RUnlock()

	if len(hs) == 0 {
		zap.L().Debug("push event without handler", zap.String("event", event))
		return
	}
	for _, h := range hs {
		h(data)
	}
}

func (r *Router) remove(event string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[event][id]; !ok {
		return
	}
	delete(r.handlers[event], id)
	ids := r.order[event]
	for i, v := range ids {
		if v == id {
			r.order[event] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(r.handlers[event]) == 0 {
		delete(r.handlers, event)
		delete(r.order, event)
	}
}

type subscription struct {
	router *Router
	event  string
	id     uint64
	once   sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.router.remove(s.event, s.id) })
}
