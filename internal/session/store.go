package session

import (
	"context"
	"time"
)

// Session maps an opaque token to an account. It intentionally stores
// only an identity pointer, not auth state.
type Session struct {
	SessionID string    // opaque token handed to the client
	AccountID string    // references accounts.id
	ExpiresAt time.Time // absolute expiry time
}

// Store defines how sessions are stored and retrieved. A nil session
// with a nil error means "not found".
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
