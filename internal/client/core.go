// Package client 聚合会话、在线名单、会话状态和推送订阅四个组件
// 界面层只持有一个 *Core，通过它的字段读取状态、调用操作
package client

import (
	"context"

	"go.uber.org/zap"

	"kama_chat_client/internal/client/conversation"
	"kama_chat_client/internal/client/presence"
	"kama_chat_client/internal/client/session"
	"kama_chat_client/internal/client/subscription"
	"kama_chat_client/internal/config"
	"kama_chat_client/internal/dao/tokenstore"
	"kama_chat_client/internal/gateway/api"
	"kama_chat_client/internal/gateway/socket"
	"kama_chat_client/internal/model"
)

// Core 客户端核心
type Core struct {
	Session       *session.Store        // token、身份、推送通道
	Presence      *presence.Tracker     // 在线名单
	Conversations *conversation.Store   // 联系人、当前会话、未读数
	Subscriptions *subscription.Manager // newMessage 订阅
}

// API 核心依赖的 REST 协作方
type API interface {
	api.AuthAPI
	api.MessageAPI
}

// Deps 组装 Core 需要的外部依赖
type Deps struct {
	API    API
	Dialer socket.Dialer
	Slot   tokenstore.Slot
	Config config.ClientConfig
}

// New 按配置组装 Core：HTTP 客户端、websocket Dialer、token 存储槽
func New(conf *config.Config) (*Core, error) {
	httpClient, err := api.NewClient(api.ClientConfig{
		BaseURL: conf.MainConfig.BackendURL,
		Timeout: conf.ClientConfig.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	slot, err := tokenstore.New(conf)
	if err != nil {
		return nil, err
	}
	return NewWithDeps(Deps{
		API:    httpClient,
		Dialer: socket.NewWebSocketDialer(httpClient.BaseURL(), conf.ClientConfig.DialTimeout),
		Slot:   slot,
		Config: conf.ClientConfig,
	}), nil
}

// NewWithDeps 使用给定依赖组装 Core，测试时注入假实现
func NewWithDeps(deps Deps) *Core {
	conv := conversation.New(deps.API)
	tracker := presence.New()
	subs := subscription.New(conv, deps.API, deps.Config.AckTimeout)
	sess := session.New(deps.API, deps.Dialer, deps.Slot, tracker, subs)
	// 换了用户时在绑定新通道之前清空上一个用户的会话状态
	sess.OnUserChange(func(string) { conv.Reset() })
	return &Core{
		Session:       sess,
		Presence:      tracker,
		Conversations: conv,
		Subscriptions: subs,
	}
}

// Start 进程启动时尝试恢复会话，失败不致命
func (c *Core) Start(ctx context.Context) *model.Session {
	sess, err := c.Session.RestoreSession(ctx)
	if err != nil {
		zap.L().Info("starting unauthenticated", zap.Error(err))
		return nil
	}
	return sess
}

// Authenticate 登录或注册
func (c *Core) Authenticate(ctx context.Context, mode model.AuthMode, creds model.Credentials) (*model.Session, error) {
	return c.Session.Authenticate(ctx, mode, creds)
}

// Logout 结束会话并清空会话状态
func (c *Core) Logout(ctx context.Context) {
	c.Session.EndSession(ctx)
	c.Conversations.Reset()
}

// Close 进程退出：关闭通道、等待已读回执，保留本地 token
func (c *Core) Close() {
	c.Session.Close()
	c.Subscriptions.Wait()
}
