// Package api 是 REST 协作方（认证、消息）的 HTTP 客户端
//
// 所有失败都以 *errorx.CodeError 返回：
//   - 传输失败、超时、5xx -> CodeNetwork，可由调用方决定是否重试
//   - 401/403 或认证接口返回 success=false -> CodeUnauthorized
//   - 其它接口返回 success=false -> CodeServerBusy，消息为服务端给出的 message
package api

import (
	"context"

	"kama_chat_client/internal/model"
)

// AuthAPI 认证相关接口
type AuthAPI interface {
	// Check 校验 token 并返回对应用户
	Check(ctx context.Context, token string) (model.User, error)
	// Authenticate 注册或登录，成功返回 token 与用户资料
	Authenticate(ctx context.Context, mode model.AuthMode, creds model.Credentials) (string, model.User, error)
	// UpdateProfile 修改当前用户资料
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.User, error)
	// SetToken 设置后续请求携带的 token，空串表示不携带
	SetToken(token string)
}

// MessageAPI 消息相关接口，均使用 SetToken 设置的 token
type MessageAPI interface {
	ListPeers(ctx context.Context) ([]model.Peer, map[string]int, error)
	History(ctx context.Context, peerID string) ([]model.Message, error)
	Send(ctx context.Context, peerID string, draft model.Draft) (model.Message, error)
	MarkSeen(ctx context.Context, messageID string) error
}
