package credentials

import (
	"context"
	"testing"

	"secrets-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RegisterThenAuthenticate(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "s3cret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.ID)
	assert.Equal(t, "alice", registered.Username)
	assert.NotEmpty(t, registered.PasswordHash)
	assert.NotContains(t, registered.PasswordHash, "s3cret-password")

	authenticated, err := svc.Authenticate(ctx, "alice", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, authenticated.ID)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "password-one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "password-two")
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)

	// The first registration still authenticates.
	got, err := svc.Authenticate(ctx, "alice", "password-one")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestService_Register_ShortPassword(t *testing.T) {
	svc := NewService(store.NewMemoryStore())

	_, err := svc.Register(context.Background(), "alice", "short")
	require.Error(t, err)
}

func TestService_Authenticate_UniformFailure(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret-password")
	require.NoError(t, err)

	// Unknown username and wrong password are indistinguishable.
	_, unknownErr := svc.Authenticate(ctx, "nobody", "s3cret-password")
	_, wrongErr := svc.Authenticate(ctx, "alice", "wrong-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestService_Authenticate_ProviderOnlyAccount(t *testing.T) {
	accounts := store.NewMemoryStore()
	svc := NewService(accounts)
	ctx := context.Background()

	// Provider-created accounts have no password credential at all.
	_, err := accounts.FindOrCreateByIdentity(ctx, "google", "sub-1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword_SaltIsUnique(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	// bcrypt embeds a fresh salt per call.
	assert.NotEqual(t, h1, h2)
	assert.NoError(t, VerifyPassword(h1, "same-password"))
	assert.NoError(t, VerifyPassword(h2, "same-password"))
	assert.Error(t, VerifyPassword(h1, "other-password"))
}
