package memory

import (
	"sort"
	"strings"
	"sync"

	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*model.Account
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*model.Account),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := normalizeEmail(account.Email)
	if _, ok := s.byEmail[email]; ok {
		return errorx.New(errorx.CodeUserExist, "Account already exists")
	}
	a := *account
	a.Email = email
	s.byID[a.ID] = &a
	s.byEmail[email] = a.ID
	return nil
}

func (s *UserStore) FindByEmail(email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "user %s not found", email)
	}
	a := *s.byID[id]
	return &a, nil
}

func (s *UserStore) FindByID(id string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "user %s not found", id)
	}
	out := *a
	return &out, nil
}

func (s *UserStore) FindAllExcept(excludeID string) ([]model.Account, error) {
	s.mu.RLock()
	out := make([]model.Account, 0, len(s.byID))
	for id, a := range s.byID {
		if id != excludeID {
			out = append(out, *a)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *UserStore) UpdateProfile(id, fullName, bio, pic string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "user %s not found", id)
	}
	a.FullName = fullName
	a.Bio = bio
	if pic != "" {
		a.ProfilePic = pic
	}
	out := *a
	return &out, nil
}
