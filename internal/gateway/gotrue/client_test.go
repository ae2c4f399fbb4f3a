package gotrue_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/internal/gateway/gotrue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *gotrue.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := gotrue.NewClient(srv.URL, "anon-key", gotrue.WithHTTPClient(srv.Client()))
	return srv, client
}

func TestSignInWithPassword(t *testing.T) {
	t.Run("success saves the session and emits SIGNED_IN", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "jane@example.com", body["email"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "tok-abc",
				"refresh_token": "ref-abc",
				"expires_in":    3600,
				"user":          map[string]string{"id": "uid-1", "email": "jane@example.com"},
			})
		})

		var mu sync.Mutex
		var events []domain.AuthEvent
		unsub := client.SubscribeSessionChanges(func(event domain.AuthEvent, s *domain.Session) {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
		})
		defer unsub()

		s, err := client.SignInWithPassword(t.Context(), "jane@example.com", "secret")

		require.NoError(t, err)
		assert.Equal(t, "tok-abc", s.AccessToken)
		assert.Equal(t, "uid-1", s.Identity.ID)
		assert.False(t, s.Expired())

		// The subscription also delivers INITIAL_SESSION asynchronously.
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			for _, e := range events {
				if e == domain.AuthEventSignedIn {
					return true
				}
			}
			return false
		}, time.Second, 5*time.Millisecond)

		// Session survives via the token store without a refresh round-trip.
		restored, err := client.GetCurrentSession(t.Context())
		require.NoError(t, err)
		require.NotNil(t, restored)
		assert.Equal(t, "tok-abc", restored.AccessToken)
	})

	t.Run("400 maps to invalid credentials", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
		})

		_, err := client.SignInWithPassword(t.Context(), "jane@example.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("5xx maps to a gateway error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.SignInWithPassword(t.Context(), "jane@example.com", "secret")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestSignUp(t *testing.T) {
	t.Run("nested user shape", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			meta := body["data"].(map[string]interface{})
			assert.Equal(t, "dealer", meta["role"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"user": map[string]string{"id": "uid-2", "email": "new@example.com"},
			})
		})

		id, err := client.SignUp(t.Context(), "new@example.com", "secret", domain.SignupMetadata{Name: "New", Role: domain.RoleDealer})
		require.NoError(t, err)
		assert.Equal(t, "uid-2", id.ID)
		assert.Equal(t, "new@example.com", id.Email)
	})

	t.Run("top-level user shape", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"id": "uid-2", "email": "new@example.com"})
		})

		id, err := client.SignUp(t.Context(), "new@example.com", "secret", domain.SignupMetadata{Name: "New", Role: domain.RoleDealer})
		require.NoError(t, err)
		assert.Equal(t, "uid-2", id.ID)
	})

	t.Run("upstream message surfaces in the error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
		})

		_, err := client.SignUp(t.Context(), "new@example.com", "secret", domain.SignupMetadata{Name: "New", Role: domain.RoleDealer})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "User already registered")
	})

	t.Run("missing user id is an error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		})

		_, err := client.SignUp(t.Context(), "new@example.com", "secret", domain.SignupMetadata{Name: "New", Role: domain.RoleDealer})
		assert.Error(t, err)
	})
}

func TestSignOut(t *testing.T) {
	t.Run("clears local state even when the backend fails", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/v1/token":
				json.NewEncoder(w).Encode(map[string]interface{}{
					"access_token":  "tok-abc",
					"refresh_token": "ref-abc",
					"expires_in":    3600,
					"user":          map[string]string{"id": "uid-1"},
				})
			case "/auth/v1/logout":
				w.WriteHeader(http.StatusInternalServerError)
			}
		})

		_, err := client.SignInWithPassword(t.Context(), "jane@example.com", "secret")
		require.NoError(t, err)

		var mu sync.Mutex
		var signedOut bool
		unsub := client.SubscribeSessionChanges(func(event domain.AuthEvent, s *domain.Session) {
			if event == domain.AuthEventSignedOut {
				mu.Lock()
				signedOut = true
				mu.Unlock()
			}
		})
		defer unsub()

		err = client.SignOut(t.Context(), "tok-abc")
		assert.Error(t, err)

		s, err := client.GetCurrentSession(t.Context())
		require.NoError(t, err)
		assert.Nil(t, s)

		mu.Lock()
		assert.True(t, signedOut)
		mu.Unlock()
	})

	t.Run("401 from logout is not an error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		assert.NoError(t, client.SignOut(t.Context(), "stale-token"))
	})
}

func TestRefreshGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "tok-new",
			"refresh_token": "ref-new",
			"expires_in":    3600,
			"user":          map[string]string{"id": "uid-1"},
		})
	}))
	defer srv.Close()

	store := gotrue.NewMemoryTokenStore()
	require.NoError(t, store.Save(&domain.Session{
		AccessToken:  "tok-old",
		RefreshToken: "ref-old",
		ExpiresAt:    time.Now().Add(-time.Minute),
		Identity:     domain.Identity{ID: "uid-1"},
	}))

	client := gotrue.NewClient(srv.URL, "anon-key", gotrue.WithTokenStore(store))

	s, err := client.GetCurrentSession(t.Context())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok-new", s.AccessToken)
	assert.Equal(t, "ref-new", s.RefreshToken)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", stored.AccessToken)
}

func TestRefreshGrantRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid Refresh Token"})
	}))
	defer srv.Close()

	store := gotrue.NewMemoryTokenStore()
	require.NoError(t, store.Save(&domain.Session{
		RefreshToken: "ref-revoked",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	client := gotrue.NewClient(srv.URL, "anon-key", gotrue.WithTokenStore(store))

	s, err := client.GetCurrentSession(t.Context())
	require.NoError(t, err)
	assert.Nil(t, s)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := gotrue.NewFileTokenStore(path)

	t.Run("empty store loads nil", func(t *testing.T) {
		s, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("round trip", func(t *testing.T) {
		want := &domain.Session{
			AccessToken:  "tok-abc",
			RefreshToken: "ref-abc",
			ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
			Identity:     domain.Identity{ID: "uid-1", Email: "jane@example.com"},
		}
		require.NoError(t, store.Save(want))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		got, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, want.AccessToken, got.AccessToken)
		assert.Equal(t, want.Identity.ID, got.Identity.ID)
	})

	t.Run("corrupt file is treated as no session", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		s, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, s)

		_, statErr := os.Stat(path)
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())
	})
}
