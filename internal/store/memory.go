package store

import (
	"context"
	"strings"
	"sync"

	"job-portal/internal/domain"
)

type memoryStore struct {
	mu        sync.Mutex
	creds     *domain.Credentials
	companies map[string]string
}

// NewMemoryStore crea un store que no sobrevive al proceso.
func NewMemoryStore() CredentialStore {
	return &memoryStore{companies: make(map[string]string)}
}

func (s *memoryStore) Load(_ context.Context) (domain.Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return domain.Credentials{}, false, nil
	}
	return domain.Credentials{Token: s.creds.Token, User: copyUser(s.creds.User)}, true, nil
}

func (s *memoryStore) Save(_ context.Context, token string, user domain.User) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &domain.Credentials{Token: token, User: copyUser(user)}
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	s.companies = make(map[string]string)
	return nil
}

func (s *memoryStore) CacheCompanyName(_ context.Context, userID, name string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(name) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[userID] = name
	return nil
}

func (s *memoryStore) CachedCompanyName(_ context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.companies[userID]
	return name, ok && name != "", nil
}

// copyUser evita que el llamador comparta el slice de skills con el store.
func copyUser(u domain.User) domain.User {
	if u.Skills != nil {
		u.Skills = append([]string(nil), u.Skills...)
	}
	return u
}
