// Package session owns the authenticated session: the current user, the
// bearer token, and their persisted copies.
package session

import (
	"encoding/json"
	"sync"

	"schoolcomm/client/internal/models"
	"schoolcomm/client/internal/storage"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store never returns an error: persistence failures (storage
// unavailable, quota) degrade to in-memory-only behavior.
type Store struct {
	mu            sync.RWMutex
	kv            storage.KV
	user          *models.User
	token         string
	authenticated bool
}

func New(kv storage.KV) *Store {
	if kv == nil {
		kv = storage.NewMemory()
	}
	return &Store{kv: kv}
}

func (s *Store) SetSession(user *models.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.token = token
	s.authenticated = true

	s.set(TokenKey, token)
	if data, err := json.Marshal(user); err == nil {
		s.set(UserKey, string(data))
	}
}

func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.token = ""
	s.authenticated = false

	s.delete(TokenKey)
	s.delete(UserKey)
}

// HydrateFromStorage restores the persisted session. Call once at boot,
// before the first request. A token without a readable user is valid:
// the identity stays unknown until an authenticated call resolves it.
func (s *Store) HydrateFromStorage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token := s.get(TokenKey); token != "" {
		s.token = token
		s.authenticated = true
	}

	if raw := s.get(UserKey); raw != "" {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.user = nil
			s.delete(UserKey)
		} else {
			s.user = &user
		}
	}
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) get(key string) string {
	value, err := s.kv.Get(key)
	if err != nil {
		return ""
	}
	return value
}

func (s *Store) set(key, value string) {
	_ = s.kv.Set(key, value)
}

func (s *Store) delete(key string) {
	_ = s.kv.Delete(key)
}
