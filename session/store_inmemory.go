package session

import (
	"sync"
	"time"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a thread-safe in-memory implementation of Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Get returns a copy of the current session, or nil when unauthenticated.
func (s *InMemoryStore) Get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// Set replaces the current session with a copy of s.
func (s *InMemoryStore) Set(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.session = nil
		return
	}
	copied := *session
	s.session = &copied
}

// UpdateTokens swaps in a refreshed access token and expiry.
func (s *InMemoryStore) UpdateTokens(accessToken string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return
	}
	s.session.AccessToken = accessToken
	s.session.ExpiresAt = expiresAt
}

// Clear destroys the current session.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}
