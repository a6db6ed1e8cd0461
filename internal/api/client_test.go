package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type memoryStore struct {
	mu      sync.Mutex
	access  string
	refresh string
	saves   int
	clears  int
}

func (m *memoryStore) Load() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh, nil
}

func (m *memoryStore) Save(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	m.saves++
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	m.clears++
	return nil
}

func (m *memoryStore) snapshot() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh
}

type recordingNotifier struct {
	mu        sync.Mutex
	forbidden int
	serverErr int
	expired   int
}

func (n *recordingNotifier) Forbidden(method, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.forbidden++
}

func (n *recordingNotifier) ServerError(method, path string, status int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.serverErr++
}

func (n *recordingNotifier) SessionExpired() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired++
}

func (n *recordingNotifier) counts() (forbidden, serverErr, expired int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.forbidden, n.serverErr, n.expired
}

func newTestClient(t *testing.T, handler http.Handler, store TokenStore, notifier Notifier) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, 5*time.Second, store, notifier)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	t.Run("rejects relative url", func(t *testing.T) {
		_, err := NewClient("localhost:8080", time.Second, &memoryStore{}, nil)
		assert.Error(t, err)
	})

	t.Run("accepts absolute url with trailing slash", func(t *testing.T) {
		c, err := NewClient("http://localhost:8080/", time.Second, &memoryStore{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", c.baseURL)
	})
}

func TestAuthorizationHeader(t *testing.T) {
	t.Run("no stored token sends no header", func(t *testing.T) {
		var got string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, `{"articles":[],"total":0,"page":1,"pages":0}`)
		})
		client := newTestClient(t, handler, &memoryStore{}, nil)

		_, _, err := client.Articles.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("stored token becomes bearer header", func(t *testing.T) {
		var got string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, `{"articles":[],"total":0,"page":1,"pages":0}`)
		})
		client := newTestClient(t, handler, &memoryStore{access: "tok-123", refresh: "ref-123"}, nil)

		_, _, err := client.Articles.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-123", got)
	})
}

func TestRequestHeaders(t *testing.T) {
	var requestID, contentType, accept string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-ID")
		contentType = r.Header.Get("Content-Type")
		accept = r.Header.Get("Accept")
		writeJSON(w, http.StatusOK, `{"article":{"id":"a1","title":"t"}}`)
	})
	client := newTestClient(t, handler, &memoryStore{access: "tok"}, nil)

	_, err := client.Articles.Create(context.Background(), ArticleRequest{Title: "t", Content: "c", Category: "anime"})
	require.NoError(t, err)

	_, err = uuid.Parse(requestID)
	assert.NoError(t, err, "X-Request-ID should be a uuid")
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "application/json", accept)
}

func TestRefreshAndReplay(t *testing.T) {
	t.Run("expired access token is refreshed and the request replayed once", func(t *testing.T) {
		var meCalls, refreshCalls int
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			meCalls++
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura"}}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			refreshCalls++
			assert.Empty(t, r.Header.Get("Authorization"), "refresh must not carry the stale access token")
			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "r1", body.RefreshToken)
			writeJSON(w, http.StatusOK, `{"access_token":"fresh","refresh_token":"r2"}`)
		})

		store := &memoryStore{access: "stale", refresh: "r1"}
		notifier := &recordingNotifier{}
		client := newTestClient(t, mux, store, notifier)

		user, err := client.Auth.Me(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "sakura", user.Username)

		assert.Equal(t, 2, meCalls, "original request plus one replay")
		assert.Equal(t, 1, refreshCalls)

		access, refresh := store.snapshot()
		assert.Equal(t, "fresh", access)
		assert.Equal(t, "r2", refresh, "rotated refresh token should be persisted")

		_, _, expired := notifier.counts()
		assert.Zero(t, expired)
	})

	t.Run("refresh without rotation keeps the old refresh token", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura"}}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"access_token":"fresh"}`)
		})

		store := &memoryStore{access: "stale", refresh: "r1"}
		client := newTestClient(t, mux, store, nil)

		_, err := client.Auth.Me(context.Background())
		require.NoError(t, err)

		access, refresh := store.snapshot()
		assert.Equal(t, "fresh", access)
		assert.Equal(t, "r1", refresh)
	})

	t.Run("request id is stable across the replay", func(t *testing.T) {
		var meIDs []string
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			meIDs = append(meIDs, r.Header.Get("X-Request-ID"))
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"user":{"id":"u1"}}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"access_token":"fresh"}`)
		})

		client := newTestClient(t, mux, &memoryStore{access: "stale", refresh: "r1"}, nil)

		_, err := client.Auth.Me(context.Background())
		require.NoError(t, err)
		require.Len(t, meIDs, 2)
		assert.Equal(t, meIDs[0], meIDs[1])
	})
}

func TestSessionExpiry(t *testing.T) {
	t.Run("rejected refresh clears tokens and signals once", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"invalid refresh token"}`)
		})

		store := &memoryStore{access: "stale", refresh: "bad"}
		notifier := &recordingNotifier{}
		client := newTestClient(t, mux, store, notifier)

		_, err := client.Auth.Me(context.Background())
		require.ErrorIs(t, err, ErrSessionExpired)

		access, refresh := store.snapshot()
		assert.Empty(t, access)
		assert.Empty(t, refresh)
		assert.Equal(t, 1, store.clears)

		_, _, expired := notifier.counts()
		assert.Equal(t, 1, expired)
	})

	t.Run("replayed request rejected again ends the session", func(t *testing.T) {
		var meCalls int
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			meCalls++
			writeJSON(w, http.StatusUnauthorized, `{"error":"token revoked"}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"access_token":"fresh"}`)
		})

		store := &memoryStore{access: "stale", refresh: "r1"}
		notifier := &recordingNotifier{}
		client := newTestClient(t, mux, store, notifier)

		_, err := client.Auth.Me(context.Background())
		require.ErrorIs(t, err, ErrSessionExpired)
		assert.Equal(t, 2, meCalls, "exactly one replay, never more")

		_, _, expired := notifier.counts()
		assert.Equal(t, 1, expired)
	})

	t.Run("anonymous 401 propagates without a refresh attempt", func(t *testing.T) {
		var refreshCalls int
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"authentication required"}`)
		})
		mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			refreshCalls++
		})

		notifier := &recordingNotifier{}
		client := newTestClient(t, mux, &memoryStore{}, notifier)

		_, err := client.Auth.Me(context.Background())
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "authentication required", apiErr.Message)
		assert.Zero(t, refreshCalls)

		_, _, expired := notifier.counts()
		assert.Zero(t, expired, "never signed in means nothing expired")
	})
}

func TestConcurrentRefresh(t *testing.T) {
	var mu sync.Mutex
	refreshCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"sakura"}}`)
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		refreshCalls++
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"access_token":"fresh","refresh_token":"r2"}`)
	})

	store := &memoryStore{access: "stale", refresh: "r1"}
	client := newTestClient(t, mux, store, nil)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := client.Auth.Me(context.Background())
			return err
		})
	}
	require.NoError(t, g.Wait())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, refreshCalls, "concurrent rejections must share one refresh")
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantMessage   string
		wantForbidden int
		wantServerErr int
	}{
		{
			name:          "forbidden notifies and carries the server message",
			status:        http.StatusForbidden,
			body:          `{"error":"moderator access required"}`,
			wantMessage:   "moderator access required",
			wantForbidden: 1,
		},
		{
			name:          "server error notifies",
			status:        http.StatusInternalServerError,
			body:          `{"error":"database unavailable"}`,
			wantMessage:   "database unavailable",
			wantServerErr: 1,
		},
		{
			name:        "not found propagates silently",
			status:      http.StatusNotFound,
			body:        `{"error":"article not found"}`,
			wantMessage: "article not found",
		},
		{
			name:        "validation error propagates verbatim",
			status:      http.StatusUnprocessableEntity,
			body:        `{"error":"title is required"}`,
			wantMessage: "title is required",
		},
		{
			name:        "empty body falls back to status text",
			status:      http.StatusBadRequest,
			body:        ``,
			wantMessage: http.StatusText(http.StatusBadRequest),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			notifier := &recordingNotifier{}
			client := newTestClient(t, handler, &memoryStore{access: "tok"}, notifier)

			_, err := client.Articles.Get(context.Background(), "a1")
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)

			forbidden, serverErr, expired := notifier.counts()
			assert.Equal(t, tt.wantForbidden, forbidden)
			assert.Equal(t, tt.wantServerErr, serverErr)
			assert.Zero(t, expired)
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(&Error{StatusCode: 404}))
	assert.True(t, IsForbidden(&Error{StatusCode: 403}))
	assert.True(t, IsServerError(&Error{StatusCode: 503}))
	assert.False(t, IsNotFound(&Error{StatusCode: 403}))
	assert.False(t, IsServerError(errors.New("dial tcp: connection refused")))
}

func TestListOptionsPassthrough(t *testing.T) {
	t.Run("all filters reach the query string", func(t *testing.T) {
		var query string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			writeJSON(w, http.StatusOK, `{"topics":[],"total":0,"page":2,"pages":5}`)
		})
		client := newTestClient(t, handler, &memoryStore{}, nil)

		_, page, err := client.Forum.Topics(context.Background(), ListOptions{
			Page:     2,
			PerPage:  10,
			Sort:     "popular",
			Category: "seinen",
			Search:   "berserk",
		})
		require.NoError(t, err)
		assert.Equal(t, "category=seinen&page=2&per_page=10&search=berserk&sort=popular", query)
		assert.Equal(t, &Page{Total: 0, Page: 2, Pages: 5}, page)
	})

	t.Run("zero options send no query", func(t *testing.T) {
		var query string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			writeJSON(w, http.StatusOK, `{"articles":[],"total":0,"page":1,"pages":0}`)
		})
		client := newTestClient(t, handler, &memoryStore{}, nil)

		_, _, err := client.Articles.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, query)
	})
}

func TestEnvelopes(t *testing.T) {
	t.Run("article list", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{
				"articles":[{"id":"a1","title":"first"},{"id":"a2","title":"second"}],
				"total":12,"page":1,"pages":2
			}`)
		})
		client := newTestClient(t, handler, &memoryStore{}, nil)

		articles, page, err := client.Articles.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, "first", articles[0].Title)
		assert.Equal(t, 12, page.Total)
		assert.Equal(t, 2, page.Pages)
	})

	t.Run("topic with replies", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{
				"topic":{"id":"t1","title":"episode thread","locked":true},
				"replies":[{"id":"r1","content":"great episode"}]
			}`)
		})
		client := newTestClient(t, handler, &memoryStore{}, nil)

		topic, replies, err := client.Forum.Topic(context.Background(), "t1")
		require.NoError(t, err)
		assert.True(t, topic.Locked)
		require.Len(t, replies, 1)
		assert.Equal(t, "great episode", replies[0].Content)
	})

	t.Run("like status has no envelope", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"liked":true,"likes_count":5}`)
		})
		client := newTestClient(t, handler, &memoryStore{access: "tok"}, nil)

		status, err := client.Articles.Like(context.Background(), "a1")
		require.NoError(t, err)
		assert.True(t, status.Liked)
		assert.Equal(t, 5, status.LikesCount)
	})

	t.Run("comment threads include nested replies", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "a1", r.URL.Query().Get("article_id"))
			writeJSON(w, http.StatusOK, `{
				"comments":[{
					"id":"c1","content":"top level","status":"visible",
					"replies":[{"id":"c2","parent_id":"c1","content":"nested"}]
				}]
			}`)
		})
		client := newTestClient(t, handler, &memoryStore{}, nil)

		comments, err := client.Comments.ForArticle(context.Background(), "a1")
		require.NoError(t, err)
		require.Len(t, comments, 1)
		require.Len(t, comments[0].Replies, 1)
		assert.Equal(t, "c1", comments[0].Replies[0].ParentID)
	})
}

func TestHealthOutsideVersionedAPI(t *testing.T) {
	var path string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(w, http.StatusOK, `{"status":"healthy","version":"1.0.0"}`)
	})
	client := newTestClient(t, handler, &memoryStore{}, nil)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/health", path)
	assert.Equal(t, "healthy", health.Status)
}

func TestTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, time.Second, &memoryStore{}, nil)
	require.NoError(t, err)

	_, healthErr := client.Health(context.Background())
	require.Error(t, healthErr)
	var apiErr *Error
	assert.False(t, errors.As(healthErr, &apiErr), "transport failures are not backend errors")
}
