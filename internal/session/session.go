package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/domain"
)

// Session tracks the signed-in user for the lifetime of the process. It is
// the single owner of the in-memory profile; token persistence lives in the
// store and request auth in the client.
type Session struct {
	client *api.Client
	tokens api.TokenStore

	mu      sync.RWMutex
	user    *domain.User
	loading bool
}

// New creates a signed-out session.
func New(client *api.Client, tokens api.TokenStore) *Session {
	return &Session{client: client, tokens: tokens}
}

// Init restores the session from stored tokens. With no tokens it returns
// immediately signed out. With tokens it blocks on a profile fetch, letting
// the transport refresh an expired access token along the way; an expired
// refresh token just means starting signed out, not an error. Loading
// reports true for the duration of the fetch.
func (s *Session) Init(ctx context.Context) error {
	access, refresh, err := s.tokens.Load()
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	if access == "" && refresh == "" {
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return nil
		}
		return err
	}
	s.setUser(user)
	return nil
}

// Login signs in, persists the issued tokens and sets the current user.
func (s *Session) Login(ctx context.Context, req api.LoginRequest) (*domain.User, error) {
	res, err := s.client.Auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(res.AccessToken, res.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist tokens: %w", err)
	}
	user := res.User
	s.setUser(&user)
	return &user, nil
}

// Register creates an account and signs it in.
func (s *Session) Register(ctx context.Context, req api.RegisterRequest) (*domain.User, error) {
	res, err := s.client.Auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(res.AccessToken, res.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist tokens: %w", err)
	}
	user := res.User
	s.setUser(&user)
	return &user, nil
}

// Logout drops the user and the stored tokens.
func (s *Session) Logout() error {
	s.setUser(nil)
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// Reload re-fetches the profile, picking up server-side changes such as
// awarded points or an edited bio.
func (s *Session) Reload(ctx context.Context) error {
	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		return err
	}
	s.setUser(user)
	return nil
}

// Expire drops the in-memory user after the backend ended the session. It
// reports whether a session existed at the time, so the expiry can be
// surfaced exactly once no matter how many requests fail around it. During
// Init no user is set yet, but the stored tokens being invalidated is still
// an expiry worth reporting.
func (s *Session) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.user != nil || s.loading
	s.user = nil
	return had
}

// CurrentUser returns the signed-in profile, or nil. Callers must treat it
// as read-only.
func (s *Session) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// IsModerator reports whether the signed-in user moderates content. Admins
// count as moderators.
func (s *Session) IsModerator() bool {
	u := s.CurrentUser()
	return u != nil && u.IsModerator()
}

// IsAdmin reports whether the signed-in user administers the site.
func (s *Session) IsAdmin() bool {
	u := s.CurrentUser()
	return u != nil && u.IsAdmin()
}

// Loading reports whether Init is validating stored tokens right now.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
