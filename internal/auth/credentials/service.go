package credentials

import (
	"context"
	"errors"
	"fmt"

	"secrets-service/internal/store"
)

// ErrInvalidCredentials is returned for both unknown usernames and
// wrong passwords, so callers cannot tell which factor failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service registers and verifies local username/password accounts.
type Service struct {
	accounts store.AccountStore
}

func NewService(accounts store.AccountStore) *Service {
	return &Service{accounts: accounts}
}

// Register creates a local account. The store enforces username
// uniqueness; store.ErrDuplicateUsername passes through untouched.
func (s *Service) Register(ctx context.Context, username, password string) (*store.Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.CreateLocal(ctx, username, hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("credentials: register: %w", err)
	}
	return account, nil
}

// Authenticate verifies a username/password pair. Failure is uniform:
// unknown username and wrong password both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*store.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("credentials: authenticate: %w", err)
	}

	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}
