package auth

import "errors"

// ErrProviderExchange marks failures of the upstream provider
// exchange itself (network error, denied consent, invalid response).
// "Account doesn't exist yet" is never an error; that is the create
// path of the resolver.
var ErrProviderExchange = errors.New("provider exchange failed")

// Identity is a normalized external authentication identity returned
// by an OAuth provider. It contains facts only, no decisions. Subject
// ids are namespaced by provider, so the same raw id string from two
// providers can never collide.
type Identity struct {
	Provider  string // e.g. "google", "facebook"
	SubjectID string // provider-scoped stable user identifier (sub)
}
