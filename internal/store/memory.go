package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded AccountStore used in tests and local
// development. It enforces the same uniqueness invariants as the
// Postgres store.
type MemoryStore struct {
	mu         sync.Mutex
	accounts   map[string]*Account
	byUsername map[string]string // username -> account id
	byIdentity map[string]string // provider + "\x00" + subject id -> account id
	order      []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:   map[string]*Account{},
		byUsername: map[string]string{},
		byIdentity: map[string]string{},
	}
}

var _ AccountStore = (*MemoryStore)(nil)

func identityKey(provider, subjectID string) string {
	return provider + "\x00" + subjectID
}

// clone returns a copy so callers never share mutable state with the
// store.
func clone(a *Account) *Account {
	out := &Account{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}
	if a.Identities != nil {
		out.Identities = map[string]string{}
		for k, v := range a.Identities {
			out.Identities[k] = v
		}
	}
	out.Secrets = append(out.Secrets, a.Secrets...)
	return out
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(account), nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s.accounts[id]), nil
}

func (s *MemoryStore) FindOrCreateByIdentity(_ context.Context, provider, subjectID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityKey(provider, subjectID)
	if id, ok := s.byIdentity[key]; ok {
		return clone(s.accounts[id]), nil
	}

	account := &Account{
		ID:         uuid.NewString(),
		Identities: map[string]string{provider: subjectID},
		CreatedAt:  time.Now(),
	}
	s.accounts[account.ID] = account
	s.byIdentity[key] = account.ID
	s.order = append(s.order, account.ID)
	return clone(account), nil
}

func (s *MemoryStore) CreateLocal(_ context.Context, username, passwordHash string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[username]; ok {
		return nil, ErrDuplicateUsername
	}

	account := &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.accounts[account.ID] = account
	s.byUsername[username] = account.ID
	s.order = append(s.order, account.ID)
	return clone(account), nil
}

func (s *MemoryStore) AppendSecret(_ context.Context, accountID, ciphertext string) (Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return Secret{}, ErrNotFound
	}

	secret := Secret{
		ID:         uuid.NewString(),
		Ciphertext: ciphertext,
		CreatedAt:  time.Now(),
	}
	account.Secrets = append(account.Secrets, secret)
	return secret, nil
}

func (s *MemoryStore) ListWithSecrets(_ context.Context) ([]*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Account
	for _, id := range s.order {
		account := s.accounts[id]
		if len(account.Secrets) == 0 {
			continue
		}
		out = append(out, clone(account))
	}
	return out, nil
}

// Delete removes an account. Used by tests to exercise the
// session-fails-open path; the HTTP surface never deletes accounts.
func (s *MemoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return
	}
	delete(s.accounts, id)
	if account.Username != "" {
		delete(s.byUsername, account.Username)
	}
	for provider, subjectID := range account.Identities {
		delete(s.byIdentity, identityKey(provider, subjectID))
	}
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
