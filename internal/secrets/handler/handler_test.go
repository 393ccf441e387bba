package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"secrets-service/internal/middleware"
	"secrets-service/internal/secrets"
	"secrets-service/internal/session"
	"secrets-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   *gin.Engine
	accounts *store.MemoryStore
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := store.NewMemoryStore()
	sessions := session.NewManager(session.NewMemoryStore(), accounts, time.Hour)

	cipher, err := secrets.NewCipher("test-encryption-key")
	require.NoError(t, err)

	h := NewHandler(secrets.NewService(accounts, cipher))

	router := gin.New()
	h.RegisterRoutes(router, middleware.NewAuthMiddleware(sessions))

	return &testEnv{router: router, accounts: accounts, sessions: sessions}
}

// loginAs creates an account and an authenticated session cookie.
func (e *testEnv) loginAs(t *testing.T, username string) (*store.Account, *http.Cookie) {
	t.Helper()

	account, err := e.accounts.CreateLocal(context.Background(), username, "hash")
	require.NoError(t, err)

	token, _, err := e.sessions.Login(context.Background(), account.ID)
	require.NoError(t, err)

	return account, &http.Cookie{Name: session.CookieName, Value: token}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestSubmit_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/submit", `{"secret":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/submit", `{"secret":"nope"}`,
		&http.Cookie{Name: session.CookieName, Value: "forged-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListForAccount_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	account, _ := env.loginAs(t, "alice")

	w := env.do(http.MethodGet, "/secrets/"+account.ID, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitThenList_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	account, cookie := env.loginAs(t, "alice")

	w := env.do(http.MethodPost, "/submit", `{"secret":"my password is 1234"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/secrets/"+account.ID, "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Secrets []secrets.Entry `json:"secrets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Secrets, 1)
	assert.Equal(t, "my password is 1234", resp.Secrets[0].Content)
}

func TestListAll_IsPublic(t *testing.T) {
	env := newTestEnv(t)
	account, cookie := env.loginAs(t, "alice")

	w := env.do(http.MethodPost, "/submit", `{"secret":"shared with the world"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	// No cookie at all: the listing is still served.
	w = env.do(http.MethodGet, "/secrets", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Accounts []secrets.AccountSecrets `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, account.ID, resp.Accounts[0].AccountID)
	require.Len(t, resp.Accounts[0].Secrets, 1)
	assert.Equal(t, "shared with the world", resp.Accounts[0].Secrets[0].Content)
}

func TestListForAccount_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginAs(t, "alice")

	w := env.do(http.MethodGet, "/secrets/no-such-account", "", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmit_SessionOfDeletedAccount(t *testing.T) {
	env := newTestEnv(t)
	account, cookie := env.loginAs(t, "alice")

	env.accounts.Delete(context.Background(), account.ID)

	// The session fails open to Anonymous, so the request is denied.
	w := env.do(http.MethodPost, "/submit", `{"secret":"ghost"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
