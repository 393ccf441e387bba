package session

import (
	"context"
	"testing"
	"time"

	"secrets-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *store.MemoryStore, *store.Account) {
	t.Helper()

	accounts := store.NewMemoryStore()
	account, err := accounts.CreateLocal(context.Background(), "alice", "hash")
	require.NoError(t, err)

	return NewManager(NewMemoryStore(), accounts, time.Hour), accounts, account
}

func TestManager_LoginResolve(t *testing.T) {
	m, _, account := newTestManager(t)
	ctx := context.Background()

	token, expiresAt, err := m.Login(ctx, account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, account.ID, resolved.ID)
}

func TestManager_Resolve_Anonymous(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	// Empty and unknown tokens are Anonymous, not errors.
	resolved, err := m.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, resolved)

	resolved, err = m.Resolve(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestManager_Logout(t *testing.T) {
	m, _, account := newTestManager(t)
	ctx := context.Background()

	token, _, err := m.Login(ctx, account.ID)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, token))

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// Logging out again is silent.
	require.NoError(t, m.Logout(ctx, token))
	require.NoError(t, m.Logout(ctx, ""))
}

func TestManager_Resolve_AccountGone(t *testing.T) {
	m, accounts, account := newTestManager(t)
	ctx := context.Background()

	token, _, err := m.Login(ctx, account.ID)
	require.NoError(t, err)

	accounts.Delete(ctx, account.ID)

	// Fails open to logged-out rather than erroring.
	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestManager_Resolve_Expired(t *testing.T) {
	accounts := store.NewMemoryStore()
	account, err := accounts.CreateLocal(context.Background(), "bob", "hash")
	require.NoError(t, err)

	m := NewManager(NewMemoryStore(), accounts, -time.Minute)
	ctx := context.Background()

	_, _, err = m.Login(ctx, account.ID)
	require.Error(t, err) // stores refuse already-expired sessions

	// A store that still returns a stale session (redis expiry lags):
	// the manager must treat it as Anonymous.
	stale := &staleStore{session: Session{
		SessionID: "stale",
		AccountID: account.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}}
	m = NewManager(stale, accounts, time.Hour)

	resolved, err := m.Resolve(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

type staleStore struct {
	session Session
}

func (s *staleStore) Create(context.Context, Session) error { return nil }

func (s *staleStore) Get(_ context.Context, id string) (*Session, error) {
	if id != s.session.SessionID {
		return nil, nil
	}
	out := s.session
	return &out, nil
}

func (s *staleStore) Delete(context.Context, string) error { return nil }

func TestGenerateID_Unique(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 43) // 32 bytes base64url
}
