// internal/users/session.go
package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated operator session.
type Session struct {
	Token     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionStore issues and resolves session tokens. The interface is narrow so
// an external store (Redis or similar) can replace the in-memory one without
// touching the handlers.
type SessionStore interface {
	Create(ctx context.Context, username string) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// memorySessionStore keeps sessions in a map with a TTL. Expired sessions are
// dropped lazily on lookup.
type memorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

// NewMemorySessionStore creates an in-process session store.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (s *memorySessionStore) Create(ctx context.Context, username string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.Token] = sess
	return sess, nil
}

func (s *memorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *memorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
