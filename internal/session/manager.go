package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secrets-service/internal/store"
)

// Manager converts a resolved account into an opaque session token
// and resolves incoming tokens back to accounts. It defines the
// authenticated/unauthenticated boundary: Resolve returning a nil
// account means Anonymous.
type Manager struct {
	sessions Store
	accounts store.AccountStore
	ttl      time.Duration
}

func NewManager(sessions Store, accounts store.AccountStore, ttl time.Duration) *Manager {
	return &Manager{
		sessions: sessions,
		accounts: accounts,
		ttl:      ttl,
	}
}

// TTL returns the configured session lifetime, used by callers to set
// matching cookie expiry.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login creates a session for an already-authenticated account and
// returns the opaque token. Callers must only invoke this after
// verification, registration, or external resolution succeeded.
func (m *Manager) Login(ctx context.Context, accountID string) (string, time.Time, error) {
	token, err := GenerateID()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(m.ttl)
	err = m.sessions.Create(ctx, Session{
		SessionID: token,
		AccountID: accountID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: create: %w", err)
	}
	return token, expiresAt, nil
}

// Resolve maps a token back to its account, re-fetching the account
// on every request. A missing or expired session, and a session whose
// account no longer exists, both resolve to Anonymous (nil account,
// nil error) rather than an error. Store I/O failures are errors.
func (m *Manager) Resolve(ctx context.Context, token string) (*store.Account, error) {
	if token == "" {
		return nil, nil
	}

	sess, err := m.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = m.sessions.Delete(ctx, token)
		return nil, nil
	}

	account, err := m.accounts.FindByID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Account deleted since login: fail open to logged-out.
			_ = m.sessions.Delete(ctx, token)
			return nil, nil
		}
		return nil, fmt.Errorf("session: fetch account: %w", err)
	}
	return account, nil
}

// Logout deletes the session. Deleting an already-invalid token is
// not an error; the token always resolves to Anonymous afterward.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.sessions.Delete(ctx, token)
}
