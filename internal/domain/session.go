package domain

import (
	"context"
	"time"
)

// Session is a server-side login record. The client holds only the opaque
// ID, carried in a cookie; everything else stays on the server.
type Session struct {
	ID        string
	UserID    int64
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session's fixed TTL has elapsed at t.
func (s *Session) Expired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// SessionStore defines lifecycle operations for sessions.
type SessionStore interface {
	Create(ctx context.Context, userID int64, email string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Destroy(ctx context.Context, id string) error
}
