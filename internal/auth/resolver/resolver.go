package resolver

import (
	"context"

	"secrets-service/internal/auth"
	"secrets-service/internal/store"
)

// Resolver determines which account an external identity belongs to.
// It is the only place where identity-to-account mapping logic lives;
// it is provider-agnostic.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.Identity) (*store.Account, error)
}
