package odoorpc

import (
	"context"
	"sync"
	"time"
)

// Session is an authenticated Odoo session held on behalf of an identity.
type Session struct {
	Identity    string    `json:"identity"`
	Token       string    `json:"token"`
	UID         int64     `json:"uid"`
	DisplayName string    `json:"display_name"`
	Login       string    `json:"login"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionStore keeps at most one session per identity.
type SessionStore interface {
	// Get returns ErrSessionNotFound when nothing is stored for identity.
	Get(ctx context.Context, identity string) (Session, error)
	// Set replaces any existing session for s.Identity.
	Set(ctx context.Context, s Session) error
	// Remove is a no-op when nothing is stored.
	Remove(ctx context.Context, identity string) error
}

// MemoryStore is an in-process SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(_ context.Context, identity string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[identity]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Identity] = s
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, identity)
	return nil
}

// Len is the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
