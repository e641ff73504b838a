// Package conversation 维护联系人列表、当前会话、当前会话的消息记录和每个联系人的未读数
//
// 状态会被三类事件修改：HTTP 响应、推送事件、用户操作。约束如下：
//   - 当前会话联系人的未读数恒为 0
//   - 历史记录的响应到达时，若请求的联系人已不是当前会话，则丢弃
//   - 发送只追加服务端确认后的消息，不做本地乐观插入
package conversation

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/gateway/api"
	"kama_chat_client/internal/infrastructure/validate"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

// ChangeKind 状态变化类型
type ChangeKind int

const (
	ChangePeers    ChangeKind = iota + 1 // 联系人列表刷新
	ChangeHistory                        // 当前会话历史已加载
	ChangeAppended                       // 当前会话追加了一条消息
	ChangeUnseen                         // 某联系人未读数变化
	ChangeActive                         // 当前会话切换
	ChangeReset                          // 登出清空
)

// Change 通知给界面层的一次变化
type Change struct {
	Kind    ChangeKind
	PeerID  string
	Message *model.Message
	Unseen  int
}

// Listener 变化回调，在 Store 锁外调用
type Listener func(Change)

// Store 会话状态
type Store struct {
	api api.MessageAPI

	mu       sync.RWMutex
	peers    []model.Peer
	active   *model.Peer
	messages []model.Message
	unseen   map[string]int
	listener Listener
}

// New 创建会话状态
func New(messageAPI api.MessageAPI) *Store {
	return &Store{
		api:    messageAPI,
		unseen: make(map[string]int),
	}
}

// SetListener 设置变化回调，nil 表示不通知
func (s *Store) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	l := s.listener
	s.mu.RUnlock()
	if l != nil {
		l(c)
	}
}

// LoadPeers 拉取联系人列表和未读数快照，两者都整体替换
func (s *Store) LoadPeers(ctx context.Context) ([]model.Peer, error) {
	peers, unseen, err := s.api.ListPeers(ctx)
	if err != nil {
		zap.L().Warn("load peers failed", zap.Error(err))
		return nil, err
	}

	counters := make(map[string]int, len(unseen))
	for id, n := range unseen {
		if n > 0 {
			counters[id] = n
		}
	}

	s.mu.Lock()
	s.peers = append([]model.Peer(nil), peers...)
	if s.active != nil {
		delete(counters, s.active.ID)
	}
	s.unseen = counters
	s.mu.Unlock()

	zap.L().Debug("peers loaded", zap.Int("peers", len(peers)), zap.Int("unseenPeers", len(counters)))
	s.notify(Change{Kind: ChangePeers})
	return s.Peers(), nil
}

// SelectConversation 切换当前会话
// peer 为 nil 时清空当前会话；否则未读数清零、清空旧记录并加载该联系人的历史
// 加载期间若又切到别的会话，本次结果被丢弃且不视为错误
func (s *Store) SelectConversation(ctx context.Context, peer *model.Peer) error {
	s.mu.Lock()
	if peer == nil {
		s.active = nil
		s.messages = nil
		s.mu.Unlock()
		s.notify(Change{Kind: ChangeActive})
		return nil
	}
	p := *peer
	s.active = &p
	s.messages = nil
	delete(s.unseen, p.ID)
	s.mu.Unlock()

	zap.L().Debug("conversation selected", zap.String("peerId", p.ID))
	s.notify(Change{Kind: ChangeActive, PeerID: p.ID})

	if _, err := s.LoadHistory(ctx, p.ID); err != nil {
		if errorx.IsStale(err) {
			return nil
		}
		return err
	}
	return nil
}

// LoadHistory 拉取与 peerID 的历史记录并替换当前记录
// 应用前重新检查当前会话，不一致时返回 errorx.ErrStaleResponse 且不修改状态
// 请求期间经推送或发送追加、但不在历史里的消息会保留在末尾
func (s *Store) LoadHistory(ctx context.Context, peerID string) ([]model.Message, error) {
	history, err := s.api.History(ctx, peerID)
	if err != nil {
		zap.L().Warn("load history failed", zap.String("peerId", peerID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	if s.active == nil || s.active.ID != peerID {
		s.mu.Unlock()
		zap.L().Debug("drop stale history", zap.String("peerId", peerID))
		return nil, errorx.ErrStaleResponse
	}
	merged := append(make([]model.Message, 0, len(history)+len(s.messages)), history...)
	seen := make(map[string]struct{}, len(history))
	for _, m := range history {
		seen[m.ID] = struct{}{}
	}
	for _, m := range s.messages {
		if _, dup := seen[m.ID]; !dup {
			merged = append(merged, m)
		}
	}
	s.messages = merged
	out := append([]model.Message(nil), merged...)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeHistory, PeerID: peerID})
	return out, nil
}

// Send 向当前会话联系人发送消息
// peerID 必须是当前会话；文本去空白后与图片至少有一个
// 成功后追加服务端返回的消息；失败时记录不变并返回错误
func (s *Store) Send(ctx context.Context, peerID string, draft model.Draft) (model.Message, error) {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == nil {
		return model.Message{}, errorx.ErrNoActiveConversation
	}
	if active.ID != peerID {
		return model.Message{}, errorx.ErrConversationMismatch
	}

	draft = draft.Normalize()
	if draft.Empty() {
		return model.Message{}, errorx.ErrEmptyMessage
	}
	if err := validate.Struct(request.SendMessageRequest{Text: draft.Text, Image: draft.Image}); err != nil {
		return model.Message{}, err
	}

	msg, err := s.api.Send(ctx, peerID, draft)
	if err != nil {
		zap.L().Warn("send message failed", zap.String("peerId", peerID), zap.Error(err))
		return model.Message{}, err
	}

	s.mu.Lock()
	appended := s.active != nil && s.active.ID == peerID && !s.containsLocked(msg.ID)
	if appended {
		s.messages = append(s.messages, msg)
	}
	s.mu.Unlock()

	if appended {
		m := msg
		s.notify(Change{Kind: ChangeAppended, PeerID: peerID, Message: &m})
	}
	return msg, nil
}

// Deliver 处理一条推送来的消息
// 发送者是当前会话时标记已读并追加，返回 true；否则该发送者未读数加一，返回 false
func (s *Store) Deliver(msg model.Message) bool {
	s.mu.Lock()
	if s.active != nil && s.active.ID == msg.SenderID {
		msg.Seen = true
		// 同一条消息可能已由历史记录带回
		if s.containsLocked(msg.ID) {
			s.mu.Unlock()
			return true
		}
		s.messages = append(s.messages, msg)
		s.mu.Unlock()
		s.notify(Change{Kind: ChangeAppended, PeerID: msg.SenderID, Message: &msg})
		return true
	}
	s.unseen[msg.SenderID]++
	n := s.unseen[msg.SenderID]
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeUnseen, PeerID: msg.SenderID, Message: &msg, Unseen: n})
	return false
}

func (s *Store) containsLocked(id string) bool {
	if id == "" {
		return false
	}
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == id {
			return true
		}
	}
	return false
}

// Peers 联系人列表副本
func (s *Store) Peers() []model.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Peer(nil), s.peers...)
}

// FilterPeers 按名字（不区分大小写）过滤联系人，query 为空返回全部
func (s *Store) FilterPeers(query string) []model.Peer {
	query = strings.ToLower(strings.TrimSpace(query))
	peers := s.Peers()
	if query == "" {
		return peers
	}
	out := peers[:0]
	for _, p := range peers {
		if strings.Contains(strings.ToLower(p.FullName), query) {
			out = append(out, p)
		}
	}
	return out
}

// Peer 按 id 查找联系人
func (s *Store) Peer(id string) (model.Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.peers {
		if p.ID == id {
			return p, true
		}
	}
	return model.Peer{}, false
}

// Active 当前会话联系人，没有时返回 nil
func (s *Store) Active() *model.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	p := *s.active
	return &p
}

// Messages 当前会话记录副本
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.messages...)
}

// Unseen 某联系人的未读数
func (s *Store) Unseen(peerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unseen[peerID]
}

// UnseenCounts 未读数副本，只含大于 0 的项
func (s *Store) UnseenCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.unseen))
	for id, n := range s.unseen {
		out[id] = n
	}
	return out
}

// SharedMedia 当前会话里出现过的图片，按时间顺序
func (s *Store) SharedMedia() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var media []string
	for _, m := range s.messages {
		if m.HasImage() {
			media = append(media, m.Image)
		}
	}
	return media
}

// Reset 登出时清空全部状态
func (s *Store) Reset() {
	s.mu.Lock()
	s.peers = nil
	s.active = nil
	s.messages = nil
	s.unseen = make(map[string]int)
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeReset})
}
