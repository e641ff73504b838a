package socket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kama_chat_client/pkg/constants"
	"kama_chat_client/pkg/errorx"
)

// WebSocketDialer 基于 gorilla/websocket 的 Dialer
type WebSocketDialer struct {
	// BaseURL 后端 HTTP 地址，http(s) 会被换成 ws(s)
	BaseURL string
	// HandshakeTimeout 握手超时，0 表示使用 gorilla 的默认值
	HandshakeTimeout time.Duration
	// Header 握手时附带的请求头
	Header http.Header
}

// NewWebSocketDialer 创建 Dialer
func NewWebSocketDialer(baseURL string, timeout time.Duration) *WebSocketDialer {
	return &WebSocketDialer{BaseURL: baseURL, HandshakeTimeout: timeout}
}

// Endpoint 返回携带身份参数的推送地址，如 ws://localhost:5000/ws?userId=u1
func (d *WebSocketDialer) Endpoint(userID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(d.BaseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += constants.WS_PATH
	q := u.Query()
	q.Set(constants.WS_USER_ID_QUERY, userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial 建立推送通道并启动读协程
func (d *WebSocketDialer) Dial(ctx context.Context, userID string) (Channel, error) {
	if userID == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "userId 不能为空")
	}
	endpoint, err := d.Endpoint(userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "推送地址不合法")
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, d.Header)
	if err != nil {
		if resp != nil {
			return nil, errorx.Wrapf(err, errorx.CodeNetwork, "推送通道握手失败 (%d)", resp.StatusCode)
		}
		return nil, errorx.Wrap(err, errorx.CodeNetwork, "推送通道连接失败")
	}

	c := newConn(conn, userID)
	go c.readLoop()
	zap.L().Info("push channel connected", zap.String("userId", userID))
	return c, nil
}

// Conn 一条 websocket 推送通道
type Conn struct {
	ws     *websocket.Conn
	userID string
	router *Router

	done     chan struct{}
	closing  chan struct{}
	stopOnce sync.Once
}

var _ Channel = (*Conn)(nil)

func newConn(ws *websocket.Conn, userID string) *Conn {
	return &Conn{
		ws:      ws,
		userID:  userID,
		router:  NewRouter(),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

func (c *Conn) UserID() string { return c.userID }

func (c *Conn) On(event string, h Handler) Subscription {
	return c.router.On(event, h)
}

func (c *Conn) Done() <-chan struct{} { return c.done }

// Close 发送关闭帧并断开连接，读协程随后退出并关闭 Done
// 不等待读协程，处理函数里调用也不会死锁
func (c *Conn) Close() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.closing)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

// readLoop 读取服务端帧并串行分发，保证同一通道上的事件按到达顺序处理
func (c *Conn) readLoop() {
	defer close(c.done)
	defer c.ws.Close()

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closing:
				zap.L().Debug("push channel closed", zap.String("userId", c.userID))
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
					errors.Is(err, net.ErrClosed) {
					zap.L().Info("push channel closed by server", zap.String("userId", c.userID))
				} else {
					zap.L().Warn("push channel dropped", zap.String("userId", c.userID), zap.Error(err))
				}
			}
			return
		}
		c.router.Dispatch(frame)
	}
}
