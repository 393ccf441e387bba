package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

// Account is the canonical identity record. Local credentials and
// external identities all resolve to one Account; uniqueness of
// username and of each (provider, subject id) pair is enforced here,
// never by callers.
type Account struct {
	ID           string
	Username     string            // empty for provider-created accounts
	PasswordHash string            // bcrypt hash, empty if none
	Identities   map[string]string // provider name -> subject id
	Secrets      []Secret
	CreatedAt    time.Time
}

// CanAuthenticate reports whether the account has at least one way
// to log in.
func (a *Account) CanAuthenticate() bool {
	return a.PasswordHash != "" || len(a.Identities) > 0
}

// Secret is one stored note, persisted only in encrypted form.
// Secrets are append-only; there is no update or delete.
type Secret struct {
	ID         string
	Ciphertext string
	CreatedAt  time.Time
}

// AccountStore persists accounts and their secrets. Mutating
// operations must be safe under concurrent invocation and must
// preserve the uniqueness invariants even when two requests race on
// the same username or the same (provider, subject id) pair.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// FindOrCreateByIdentity returns the account linked to the given
	// (provider, subjectID) pair, creating one atomically if none
	// exists. Exactly one account ever exists per pair, even under
	// concurrent first-time logins.
	FindOrCreateByIdentity(ctx context.Context, provider, subjectID string) (*Account, error)

	// CreateLocal creates an account with a username and password
	// hash. Returns ErrDuplicateUsername if the username is taken.
	CreateLocal(ctx context.Context, username, passwordHash string) (*Account, error)

	// AppendSecret appends an encrypted secret to the account.
	// Returns ErrNotFound if the account no longer exists.
	AppendSecret(ctx context.Context, accountID, ciphertext string) (Secret, error)

	// ListWithSecrets returns all accounts owning at least one
	// secret, each secret still in encrypted form.
	ListWithSecrets(ctx context.Context) ([]*Account, error)
}
