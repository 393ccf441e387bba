package resolver

import (
	"context"
	"errors"
	"fmt"

	"secrets-service/internal/auth"
	"secrets-service/internal/store"
)

// StoreResolver resolves identities against the account store.
// Repeated logins with the same (provider, subject id) pair always
// resolve to the same account; the store guarantees atomicity.
type StoreResolver struct {
	accounts store.AccountStore
}

func NewStoreResolver(accounts store.AccountStore) *StoreResolver {
	return &StoreResolver{accounts: accounts}
}

var _ Resolver = (*StoreResolver)(nil)

func (r *StoreResolver) Resolve(ctx context.Context, identity *auth.Identity) (*store.Account, error) {
	if identity == nil {
		return nil, errors.New("resolver: identity is nil")
	}
	if identity.Provider == "" || identity.SubjectID == "" {
		return nil, errors.New("resolver: identity missing provider or subject id")
	}

	account, err := r.accounts.FindOrCreateByIdentity(ctx, identity.Provider, identity.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	return account, nil
}
