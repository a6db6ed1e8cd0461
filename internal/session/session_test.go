package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/tokenstore"
)

func newTestSession(t *testing.T, handler http.Handler) (*Session, *tokenstore.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := tokenstore.New(filepath.Join(t.TempDir(), "tokens.json"))
	client, err := api.NewClient(srv.URL, 5*time.Second, store, nil)
	require.NoError(t, err)
	return New(client, store), store
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestInit(t *testing.T) {
	t.Run("no stored tokens starts signed out without touching the backend", func(t *testing.T) {
		var calls int
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		})
		sess, _ := newTestSession(t, handler)

		require.NoError(t, sess.Init(context.Background()))
		assert.False(t, sess.IsAuthenticated())
		assert.Zero(t, calls)
	})

	t.Run("valid tokens restore the profile", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/auth/me", r.URL.Path)
			writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura","role":"moderator"}}`)
		})
		sess, store := newTestSession(t, handler)
		require.NoError(t, store.Save("tok", "ref"))

		require.NoError(t, sess.Init(context.Background()))
		require.True(t, sess.IsAuthenticated())
		assert.Equal(t, "sakura", sess.CurrentUser().Username)
		assert.True(t, sess.IsModerator())
		assert.False(t, sess.IsAdmin())
	})

	t.Run("fully expired session starts signed out without an error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"invalid refresh token"}`)
		})
		sess, store := newTestSession(t, mux)
		require.NoError(t, store.Save("stale", "bad"))

		require.NoError(t, sess.Init(context.Background()))
		assert.False(t, sess.IsAuthenticated())

		access, refresh, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, access)
		assert.Empty(t, refresh)
	})

	t.Run("unreachable backend keeps tokens and returns the error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		store := tokenstore.New(filepath.Join(t.TempDir(), "tokens.json"))
		require.NoError(t, store.Save("tok", "ref"))
		client, err := api.NewClient(url, time.Second, store, nil)
		require.NoError(t, err)
		sess := New(client, store)

		require.Error(t, sess.Init(context.Background()))
		assert.False(t, sess.IsAuthenticated())

		access, refresh, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok", access)
		assert.Equal(t, "ref", refresh)
	})

	t.Run("loading is visible while the profile fetch is in flight", func(t *testing.T) {
		release := make(chan struct{})
		entered := make(chan struct{})
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
			writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura"}}`)
		})
		sess, store := newTestSession(t, handler)
		require.NoError(t, store.Save("tok", "ref"))

		done := make(chan error, 1)
		go func() { done <- sess.Init(context.Background()) }()

		<-entered
		assert.True(t, sess.Loading())
		close(release)
		require.NoError(t, <-done)
		assert.False(t, sess.Loading())
		assert.True(t, sess.IsAuthenticated())
	})
}

func TestLogin(t *testing.T) {
	t.Run("success persists tokens and sets the user", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/auth/login", r.URL.Path)
			writeJSON(w, http.StatusOK, `{
				"user":{"id":"u1","username":"sakura","role":"user"},
				"access_token":"tok","refresh_token":"ref"
			}`)
		})
		sess, store := newTestSession(t, handler)

		user, err := sess.Login(context.Background(), api.LoginRequest{Email: "sakura@konoha.jp", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "sakura", user.Username)
		assert.True(t, sess.IsAuthenticated())

		access, refresh, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok", access)
		assert.Equal(t, "ref", refresh)
	})

	t.Run("bad credentials leave the session signed out", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"invalid credentials"}`)
		})
		sess, store := newTestSession(t, handler)

		_, err := sess.Login(context.Background(), api.LoginRequest{Email: "x@y.z", Password: "nope"})
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "invalid credentials", apiErr.Message)
		assert.False(t, sess.IsAuthenticated())

		access, _, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, access)
	})
}

func TestRegister(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/register", r.URL.Path)
		writeJSON(w, http.StatusCreated, `{
			"user":{"id":"u2","username":"naruto","role":"user"},
			"access_token":"tok2","refresh_token":"ref2"
		}`)
	})
	sess, store := newTestSession(t, handler)

	user, err := sess.Register(context.Background(), api.RegisterRequest{
		Username: "naruto", Email: "naruto@konoha.jp", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "naruto", user.Username)
	assert.True(t, sess.IsAuthenticated())

	access, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok2", access)
}

func TestLogout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura"}}`)
	})
	sess, store := newTestSession(t, handler)
	require.NoError(t, store.Save("tok", "ref"))
	require.NoError(t, sess.Init(context.Background()))
	require.True(t, sess.IsAuthenticated())

	require.NoError(t, sess.Logout())
	assert.False(t, sess.IsAuthenticated())

	access, refresh, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestExpire(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura"}}`)
	})
	sess, store := newTestSession(t, handler)
	require.NoError(t, store.Save("tok", "ref"))
	require.NoError(t, sess.Init(context.Background()))

	assert.True(t, sess.Expire(), "first expiry reports the drop")
	assert.False(t, sess.Expire(), "repeat expiries are silent")
	assert.False(t, sess.IsAuthenticated())
}

func TestRoleFlags(t *testing.T) {
	tests := []struct {
		name          string
		userJSON      string
		wantModerator bool
		wantAdmin     bool
	}{
		{name: "plain user", userJSON: `{"id":"u1","role":"user"}`},
		{name: "moderator", userJSON: `{"id":"u2","role":"moderator"}`, wantModerator: true},
		{name: "admin counts as moderator", userJSON: `{"id":"u3","role":"admin"}`, wantModerator: true, wantAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"user":`+tt.userJSON+`}`)
			})
			sess, store := newTestSession(t, handler)
			require.NoError(t, store.Save("tok", "ref"))
			require.NoError(t, sess.Init(context.Background()))

			assert.Equal(t, tt.wantModerator, sess.IsModerator())
			assert.Equal(t, tt.wantAdmin, sess.IsAdmin())
		})
	}
}

func TestReload(t *testing.T) {
	points := 10
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura","points":`+strconv.Itoa(points)+`}}`)
	})
	sess, store := newTestSession(t, handler)
	require.NoError(t, store.Save("tok", "ref"))
	require.NoError(t, sess.Init(context.Background()))
	require.Equal(t, 10, sess.CurrentUser().Points)

	points = 25
	require.NoError(t, sess.Reload(context.Background()))
	assert.Equal(t, 25, sess.CurrentUser().Points)
}
