package chat

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kama_chat_client/pkg/constants"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 开发用后端，不校验 Origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserConn 一个在线用户的 websocket 连接
type UserConn struct {
	Conn     *websocket.Conn
	UserID   string
	SendBack chan []byte // 待推送给客户端的帧

	mu     sync.Mutex
	closed bool
}

// ServeWS 升级连接并登记到 Hub，握手失败时 upgrader 已写好错误响应
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.String("userId", userID), zap.Error(err))
		return err
	}
	client := &UserConn{
		Conn:     conn,
		UserID:   userID,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}
	h.Login <- client
	go client.Write()
	go client.Read(h)
	return nil
}

// Read 客户端不发业务帧，这里只用来感知断开（也会处理 ping/close 控制帧）
func (c *UserConn) Read(h *Hub) {
	defer func() {
		select {
		case h.Logout <- c:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("websocket read error", zap.String("userId", c.UserID), zap.Error(err))
			}
			return
		}
	}
}

// Write 把 SendBack 里的帧依次写给客户端，SendBack 关闭后发送关闭帧退出
func (c *UserConn) Write() {
	defer c.Conn.Close()
	for frame := range c.SendBack {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			zap.L().Warn("websocket write error", zap.String("userId", c.UserID), zap.Error(err))
			return
		}
	}
	_ = c.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// enqueue 队列满时丢弃并返回 false，不阻塞 Hub
func (c *UserConn) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.SendBack <- frame:
		return true
	default:
		zap.L().Warn("push queue full, drop frame", zap.String("userId", c.UserID))
		return false
	}
}

func (c *UserConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.SendBack)
	}
}
