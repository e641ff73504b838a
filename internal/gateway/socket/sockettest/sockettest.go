// Package sockettest 提供内存版的推送通道，供上层测试直接注入事件
package sockettest

import (
	"context"
	"encoding/json"
	"sync"

	"kama_chat_client/internal/gateway/socket"
)

// Channel 内存推送通道，Emit 在调用方协程上同步分发
type Channel struct {
	userID string
	router *socket.Router

	mu     sync.Mutex
	closed int
	done   chan struct{}
	once   sync.Once
}

var _ socket.Channel = (*Channel)(nil)

// NewChannel 创建一条属于 userID 的通道
func NewChannel(userID string) *Channel {
	return &Channel{
		userID: userID,
		router: socket.NewRouter(),
		done:   make(chan struct{}),
	}
}

func (c *Channel) UserID() string { return c.userID }

func (c *Channel) On(event string, h socket.Handler) socket.Subscription {
	return c.router.On(event, h)
}

func (c *Channel) Done() <-chan struct{} { return c.done }

// Close 记录关闭次数
func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return nil
}

// Drop 模拟服务端断开
func (c *Channel) Drop() {
	c.once.Do(func() { close(c.done) })
}

// Closed Close 被调用的次数
func (c *Channel) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Handlers 某事件当前注册的处理函数数量
func (c *Channel) Handlers(event string) int {
	return c.router.Count(event)
}

// Emit 把 v 编码后分发给 event 的处理函数
func (c *Channel) Emit(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	c.router.Emit(event, data)
}

// Dialer 每次 Dial 新建一条 Channel
type Dialer struct {
	mu       sync.Mutex
	Err      error
	channels []*Channel
}

var _ socket.Dialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, userID string) (socket.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	ch := NewChannel(userID)
	d.channels = append(d.channels, ch)
	return ch, nil
}

// SetErr 设置下次 Dial 返回的错误，nil 恢复正常
func (d *Dialer) SetErr(err error) {
	d.mu.Lock()
	d.Err = err
	d.mu.Unlock()
}

// Channels 已建立过的全部通道
func (d *Dialer) Channels() []*Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Channel(nil), d.channels...)
}

// Last 最近一次建立的通道
func (d *Dialer) Last() *Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.channels) == 0 {
		return nil
	}
	return d.channels[len(d.channels)-1]
}

// Live 尚未关闭的通道
func (d *Dialer) Live() []*Channel {
	var live []*Channel
	for _, ch := range d.Channels() {
		if socket.Alive(ch) {
			live = append(live, ch)
		}
	}
	return live
}
