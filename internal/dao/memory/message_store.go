package memory

import (
	"sync"

	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

type MessageStore struct {
	mu       sync.RWMutex
	messages []*model.Message
	byID     map[string]*model.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{byID: make(map[string]*model.Message)}
}

func (s *MessageStore) Create(msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[msg.ID]; dup {
		return errorx.Newf(errorx.CodeInvalidParam, "message %s already exists", msg.ID)
	}
	m := *msg
	s.messages = append(s.messages, &m)
	s.byID[m.ID] = &m
	return nil
}

func between(m *model.Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func (s *MessageStore) FindConversation(userA, userB string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Message
	for _, m := range s.messages {
		if between(m, userA, userB) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *MessageStore) MarkConversationSeen(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.SenderID == from && m.ReceiverID == to {
			m.Seen = true
		}
	}
	return nil
}

func (s *MessageStore) MarkSeen(id, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return errorx.Newf(errorx.CodeNotFound, "message %s not found", id)
	}
	if m.ReceiverID != receiverID {
		return errorx.New(errorx.CodeUnauthorized, "not the receiver of this message")
	}
	m.Seen = true
	return nil
}

func (s *MessageStore) CountUnseen(to string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, m := range s.messages {
		if m.ReceiverID == to && !m.Seen {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}
