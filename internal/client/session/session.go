// Package session 管理认证 token、当前用户身份，以及与身份绑定的推送通道
//
// 通道的生命周期：
//   - 为用户 U 建立通道时，若已有 U 的存活通道则什么都不做
//   - 已有其它用户的通道时，先通知观察者解绑，再关闭，然后才建立新通道
//   - 通道自行断开后，观察者被解绑，Store 忘掉这条通道，不自动重连（见 Reconnect）
//
// 观察者和 OnUserChange 回调都在 mu 之外调用，回调里可以读取 Current/Token/Connection
package session

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kama_chat_client/internal/dao/tokenstore"
	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/gateway/api"
	"kama_chat_client/internal/gateway/socket"
	"kama_chat_client/internal/infrastructure/validate"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/constants"
	"kama_chat_client/pkg/errorx"
)

// Observer 关心通道开关的组件（在线名单、消息订阅）
type Observer interface {
	Attach(ch socket.Channel)
	Detach()
}

// Store 会话状态
type Store struct {
	auth   api.AuthAPI
	dialer socket.Dialer
	slot   tokenstore.Slot

	// op 串行化 Authenticate/Restore/End/Update/Reconnect 和通道断开处理，网络请求期间不持有 mu
	op sync.Mutex

	mu           sync.RWMutex
	session      *model.Session
	conn         socket.Channel
	stopWatch    chan struct{}
	observers    []Observer
	onUserChange func(userID string)
}

// New 创建会话状态
func New(auth api.AuthAPI, dialer socket.Dialer, slot tokenstore.Slot, observers ...Observer) *Store {
	return &Store{
		auth:      auth,
		dialer:    dialer,
		slot:      slot,
		observers: observers,
	}
}

// AddObserver 追加观察者；已有通道时立即 Attach
func (s *Store) AddObserver(o Observer) {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	s.observers = append(s.observers, o)
	ch := s.conn
	s.mu.Unlock()
	if ch != nil {
		o.Attach(ch)
	}
}

// OnUserChange 登录身份变化时回调，在新通道绑定观察者之前调用
func (s *Store) OnUserChange(fn func(userID string)) {
	s.op.Lock()
	defer s.op.Unlock()
	s.mu.Lock()
	s.onUserChange = fn
	s.mu.Unlock()
}

// Authenticate 注册或登录
// 参数校验失败时不发请求；失败时状态不变且不会建立通道
// 推送通道建立失败不影响认证结果，可稍后调用 Reconnect
func (s *Store) Authenticate(ctx context.Context, mode model.AuthMode, creds model.Credentials) (*model.Session, error) {
	if err := checkCredentials(mode, creds); err != nil {
		return nil, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	token, user, err := s.auth.Authenticate(ctx, mode, creds)
	if err != nil {
		zap.L().Info("authenticate failed", zap.String("mode", string(mode)), zap.Error(err))
		return nil, err
	}

	if err := s.slot.Save(ctx, token); err != nil {
		zap.L().Error("persist token failed", zap.Error(err))
	}
	sess := s.install(user, token)
	zap.L().Info("authenticated", zap.String("mode", string(mode)), zap.String("userId", sess.UserID))

	_ = s.connect(ctx, sess.UserID)
	return sess, nil
}

// RestoreSession 进程启动时用本地 token 恢复会话
// 没有 token 返回 (nil, nil)；任何失败都不致命，返回的错误仅供展示，会话保持为空
// token 被后端拒绝时从本地清除；网络失败时保留，下次启动再试
func (s *Store) RestoreSession(ctx context.Context) (*model.Session, error) {
	s.op.Lock()
	defer s.op.Unlock()

	token, err := s.slot.Load(ctx)
	if err != nil {
		zap.L().Warn("load token failed", zap.Error(err))
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	user, err := s.auth.Check(ctx, token)
	if err != nil {
		zap.L().Warn("restore session failed", zap.Error(err))
		if errorx.IsAuth(err) {
			if clearErr := s.slot.Clear(ctx); clearErr != nil {
				zap.L().Error("clear rejected token failed", zap.Error(clearErr))
			}
		}
		return nil, err
	}

	sess := s.install(user, token)
	zap.L().Info("session restored", zap.String("userId", sess.UserID))
	_ = s.connect(ctx, sess.UserID)
	return sess, nil
}

// EndSession 登出：清除 token、会话、在线名单，关闭通道；可重复调用
func (s *Store) EndSession(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.slot.Clear(ctx); err != nil {
		zap.L().Error("clear token failed", zap.Error(err))
	}

	// 没有通道时观察者也要清空
	s.detachObservers()

	s.mu.Lock()
	ch := s.takeConnLocked()
	hadSession := s.session != nil
	s.session = nil
	s.mu.Unlock()
	s.closeConn(ch)

	s.auth.SetToken("")
	if hadSession {
		zap.L().Info("session ended")
	}
}

// Close 关闭通道但保留本地 token，进程退出时使用
func (s *Store) Close() {
	s.op.Lock()
	defer s.op.Unlock()
	s.teardown()
}

// UpdateProfile 修改资料，成功后把后端接受的字段合并进会话
func (s *Store) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Session, error) {
	if s.Current() == nil {
		return nil, errorx.ErrUnauthorized
	}
	update.FullName = strings.TrimSpace(update.FullName)
	update.Bio = strings.TrimSpace(update.Bio)
	if err := validate.Struct(request.UpdateProfileRequest{
		FullName:   update.FullName,
		Bio:        update.Bio,
		ProfilePic: update.ProfilePic,
	}); err != nil {
		return nil, err
	}
	if err := checkProfilePic(update.ProfilePic); err != nil {
		return nil, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	user, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		zap.L().Info("update profile failed", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		// 请求期间已登出
		return nil, errorx.ErrUnauthorized
	}
	if user.FullName != "" {
		s.session.FullName = user.FullName
	}
	if user.Bio != "" {
		s.session.Bio = user.Bio
	}
	if user.ProfilePic != "" {
		s.session.ProfilePic = user.ProfilePic
	}
	return s.session.Clone(), nil
}

// Reconnect 为当前会话重新建立推送通道，已有存活通道时不做任何事
func (s *Store) Reconnect(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	sess := s.Current()
	if sess == nil {
		return errorx.ErrUnauthorized
	}
	return s.connect(ctx, sess.UserID)
}

// Current 当前会话副本，未登录时为 nil
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

// Token 当前 token，未登录时为空
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Connection 当前通道，没有时为 nil
func (s *Store) Connection() socket.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// install 设置会话；换用户时旧通道由随后的 connect 关闭，调用方持有 op
func (s *Store) install(user model.User, token string) *model.Session {
	sess := model.NewSession(user, token)
	s.mu.Lock()
	changed := s.session == nil || s.session.UserID != sess.UserID
	s.session = sess
	fn := s.onUserChange
	s.mu.Unlock()
	s.auth.SetToken(token)
	if changed && fn != nil {
		fn(sess.UserID)
	}
	return sess.Clone()
}

// connect 保证存在且只存在一条属于 userID 的存活通道，调用方持有 op
func (s *Store) connect(ctx context.Context, userID string) error {
	s.mu.RLock()
	reuse := socket.Alive(s.conn) && s.conn.UserID() == userID
	s.mu.RUnlock()
	if reuse {
		return nil
	}
	s.teardown()

	ch, err := s.dialer.Dial(ctx, userID)
	if err != nil {
		zap.L().Warn("open push channel failed", zap.String("userId", userID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.conn = ch
	stop := make(chan struct{})
	s.stopWatch = stop
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.Attach(ch)
	}
	go s.watch(ch, stop)
	return nil
}

// teardown 先解绑观察者再关闭通道，调用方持有 op
func (s *Store) teardown() {
	if s.Connection() == nil {
		return
	}
	s.detachObservers()

	s.mu.Lock()
	ch := s.takeConnLocked()
	s.mu.Unlock()
	s.closeConn(ch)
}

// takeConnLocked 取走当前通道并停止监视，调用方持有 mu
func (s *Store) takeConnLocked() socket.Channel {
	ch := s.conn
	if ch == nil {
		return nil
	}
	close(s.stopWatch)
	s.stopWatch = nil
	s.conn = nil
	return ch
}

func (s *Store) detachObservers() {
	s.mu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.RUnlock()
	for _, o := range observers {
		o.Detach()
	}
}

func (s *Store) closeConn(ch socket.Channel) {
	if ch == nil {
		return
	}
	if err := ch.Close(); err != nil {
		zap.L().Debug("close push channel", zap.Error(err))
	}
	zap.L().Info("push channel closed", zap.String("userId", ch.UserID()))
}

// watch 通道自行断开时解绑观察者
// 与其它会话操作一样持有 op，避免把随后新建通道的观察者解绑
func (s *Store) watch(ch socket.Channel, stop <-chan struct{}) {
	select {
	case <-stop:
		return
	case <-ch.Done():
	}

	s.op.Lock()
	defer s.op.Unlock()

	if s.Connection() != ch {
		return
	}
	s.detachObservers()

	s.mu.Lock()
	s.takeConnLocked()
	s.mu.Unlock()
	zap.L().Warn("push channel dropped", zap.String("userId", ch.UserID()))
}

func checkCredentials(mode model.AuthMode, creds model.Credentials) error {
	switch mode {
	case model.AuthSignup:
		return validate.Struct(request.SignupRequest{
			FullName: strings.TrimSpace(creds.FullName),
			Email:    strings.TrimSpace(creds.Email),
			Password: creds.Password,
			Bio:      strings.TrimSpace(creds.Bio),
		})
	case model.AuthLogin:
		return validate.Struct(request.LoginRequest{
			Email:    strings.TrimSpace(creds.Email),
			Password: creds.Password,
		})
	default:
		return errorx.Newf(errorx.CodeInvalidParam, "未知的认证方式 %q", mode)
	}
}

// checkProfilePic 头像必须是 image/* 的 base64 data URL，解码后不超过 5MB
func checkProfilePic(pic string) error {
	if pic == "" {
		return nil
	}
	header, payload, ok := strings.Cut(pic, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return errorx.New(errorx.CodeInvalidParam, "头像必须是图片")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > constants.IMAGE_MAX_SIZE+2 {
		return errorx.New(errorx.CodeInvalidParam, "头像不能超过 5MB")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "头像编码不正确")
	}
	if len(raw) > constants.IMAGE_MAX_SIZE {
		return errorx.New(errorx.CodeInvalidParam, "头像不能超过 5MB")
	}
	return nil
}
