package middleware

import (
	"context"
	"net/http"

	"secrets-service/internal/session"
	"secrets-service/internal/store"
)

// unexported, collision-proof context key
type accountContextKeyType struct{}

var accountKey = accountContextKeyType{}

// AccountFromContext extracts the authenticated account from context.
func AccountFromContext(ctx context.Context) (*store.Account, bool) {
	account, ok := ctx.Value(accountKey).(*store.Account)
	return account, ok
}

type AuthMiddleware struct {
	Sessions *session.Manager
}

func NewAuthMiddleware(sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions}
}

// RequireAuth resolves the session cookie to an account and attaches
// it to the request context. Anonymous requests get 401; resolution
// errors are infrastructure failures and get 500.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		account, err := a.Sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if account == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
