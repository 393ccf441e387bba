package provider

import (
	"context"

	"secrets-service/internal/auth"
)

// OAuthProvider defines the contract every external auth provider
// must implement. Implementations return identity facts only and
// must not perform account creation, linking, or session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "facebook").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for a stable
	// subject identifier, wrapped in a normalized identity. Exchange
	// failures wrap auth.ErrProviderExchange.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.Identity, error)
}
