package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborline/storefront-go/account"
	"github.com/harborline/storefront-go/gateway"
	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/session"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type accountFixture struct {
	service *account.Service
	store   *session.InMemoryStore
	mux     *http.ServeMux
}

func setupAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	f := &accountFixture{
		store: session.NewInMemoryStore(),
		mux:   http.NewServeMux(),
	}
	server := httptest.NewServer(f.mux)
	t.Cleanup(server.Close)

	api, err := gateway.New(server.URL, f.store)
	require.NoError(t, err)

	service, err := account.New(api, f.store, account.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	f.service = service
	return f
}

func (f *accountFixture) serveAuth(t *testing.T, path string) {
	t.Helper()
	f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode %s request: %v", path, err)
			return
		}
		if req["email"] == "" || req["password"] == "" {
			t.Errorf("%s request missing credentials: %v", path, req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    900,
			"user": map[string]string{
				"id": "user-1", "email": req["email"], "first_name": "Ada",
			},
		})
	})
}

func TestService_LoginEstablishesSession(t *testing.T) {
	f := setupAccountFixture(t)
	f.serveAuth(t, "/auth/login")

	sess, err := f.service.Login(context.Background(), "ada@example.com", "hunter2!")
	require.NoError(t, err)
	require.Equal(t, "access-1", sess.AccessToken)
	require.Equal(t, "refresh-1", sess.RefreshToken)
	require.Equal(t, fixedNow.Add(900*time.Second), sess.ExpiresAt)
	require.Equal(t, "user-1", sess.User.ID)
	require.NotEmpty(t, sess.ClientID, "each login gets its own client id")

	stored := f.store.Get()
	require.NotNil(t, stored)
	require.Equal(t, sess.ClientID, stored.ClientID)
}

func TestService_LoginValidatesBeforeTheNetwork(t *testing.T) {
	f := setupAccountFixture(t)
	calls := atomic.Int64{}
	f.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	cases := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{"missing email", "", "secret", "email"},
		{"malformed email", "not-an-email", "secret", "email"},
		{"missing password", "ada@example.com", "", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), tc.email, tc.password)
			require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
			require.Contains(t, apperrors.FieldsOf(err), tc.field)
		})
	}
	require.Equal(t, int64(0), calls.Load())
}

func TestService_LoginFailureLeavesNoSession(t *testing.T) {
	f := setupAccountFixture(t)
	f.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
	})

	_, err := f.service.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindAuth))
	require.Nil(t, f.store.Get())
}

func TestService_RegisterFiresAuthHooks(t *testing.T) {
	f := setupAccountFixture(t)
	f.serveAuth(t, "/auth/register")

	hookCalls := 0
	f.service.OnAuthenticated(func(ctx context.Context) {
		hookCalls++
		require.NotNil(t, f.store.Get(), "session visible to hooks")
	})

	_, err := f.service.Register(context.Background(), account.RegisterParams{
		Email: "ada@example.com", Password: "hunter2!", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	require.Equal(t, 1, hookCalls)
}

func TestService_AuthResponseWithoutTokensIsRejected(t *testing.T) {
	f := setupAccountFixture(t)
	f.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]string{"id": "user-1"}})
	})

	_, err := f.service.Login(context.Background(), "ada@example.com", "hunter2!")
	require.True(t, apperrors.IsKind(err, apperrors.KindAuth))
	require.Nil(t, f.store.Get())
}

func TestService_LogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	f := setupAccountFixture(t)
	f.mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f.store.Set(&session.Session{ClientID: "c1", AccessToken: "a", RefreshToken: "r"})
	f.service.Logout(context.Background())
	require.Nil(t, f.store.Get())
}

func TestService_LogoutWithoutSessionIsANoop(t *testing.T) {
	f := setupAccountFixture(t)
	calls := atomic.Int64{}
	f.mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	f.service.Logout(context.Background())
	require.Equal(t, int64(0), calls.Load())
}
