package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/student-portal/internal/domain"
)

// SessionStore implements domain.SessionStore with an in-process map.
// Sessions live only as long as the process; there is no cross-restart
// durability requirement for them. Safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]domain.Session
}

// NewSessionStore creates a session store issuing sessions with the given
// fixed TTL from creation (no sliding renewal).
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]domain.Session),
	}
}

// Create issues a new session for the user under a fresh opaque ID.
func (s *SessionStore) Create(ctx context.Context, userID int64, email string) (*domain.Session, error) {
	now := time.Now()
	sess := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return &sess, nil
}

// Get returns the session for the given ID. Expired sessions are removed on
// access; there is no background sweeper.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if sess.Expired(time.Now()) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionExpired
	}
	return &sess, nil
}

// Destroy removes the session. Destroying an unknown ID is not an error.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live records, including any not yet lazily
// expired. Used by tests.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
