package secrets

import (
	"context"
	"errors"
	"fmt"

	"secrets-service/internal/logger"
	"secrets-service/internal/store"
)

// Entry is one decrypted secret. Unreadable marks entries whose
// ciphertext could not be decrypted; a single bad entry never fails
// the listing it appears in.
type Entry struct {
	Content    string `json:"content"`
	Unreadable bool   `json:"unreadable,omitempty"`
}

// AccountSecrets groups the decrypted secrets of one account for the
// public listing view.
type AccountSecrets struct {
	AccountID string  `json:"accountId"`
	Username  string  `json:"username,omitempty"`
	Secrets   []Entry `json:"secrets"`
}

// Service is the encryption boundary around the account store:
// plaintext in, ciphertext stored, plaintext out.
type Service struct {
	accounts store.AccountStore
	cipher   *Cipher
}

func NewService(accounts store.AccountStore, cipher *Cipher) *Service {
	return &Service{accounts: accounts, cipher: cipher}
}

// Submit encrypts the plaintext and appends it to the account.
// Returns store.ErrNotFound if the account no longer exists.
func (s *Service) Submit(ctx context.Context, accountID, plaintext string) error {
	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("secrets: submit: %w", err)
	}

	if _, err := s.accounts.AppendSecret(ctx, accountID, ciphertext); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("secrets: submit: %w", err)
	}
	return nil
}

// ListAll returns every account owning at least one secret, each
// secret decrypted. This is the public listing projection; it is
// independent of which account is asking.
func (s *Service) ListAll(ctx context.Context) ([]AccountSecrets, error) {
	accounts, err := s.accounts.ListWithSecrets(ctx)
	if err != nil {
		return nil, fmt.Errorf("secrets: list all: %w", err)
	}

	out := make([]AccountSecrets, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, AccountSecrets{
			AccountID: account.ID,
			Username:  account.Username,
			Secrets:   s.decryptAll(account),
		})
	}
	return out, nil
}

// ListForAccount returns the decrypted secrets of one account.
// Returns store.ErrNotFound if the account does not exist.
func (s *Service) ListForAccount(ctx context.Context, accountID string) ([]Entry, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("secrets: list for account: %w", err)
	}
	return s.decryptAll(account), nil
}

func (s *Service) decryptAll(account *store.Account) []Entry {
	entries := make([]Entry, 0, len(account.Secrets))
	for _, secret := range account.Secrets {
		plaintext, err := s.cipher.Decrypt(secret.Ciphertext)
		if err != nil {
			logger.Warn("secret unreadable", map[string]any{
				"account_id": account.ID,
				"secret_id":  secret.ID,
			})
			entries = append(entries, Entry{Unreadable: true})
			continue
		}
		entries = append(entries, Entry{Content: plaintext})
	}
	return entries
}
