package api

import (
	"context"
	"net/http"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// AuthService handles account creation and sign-in. Token persistence is
// the caller's responsibility; the service only returns what the backend
// issued.
type AuthService struct {
	client *Client
}

// AuthResult is the backend response to a successful login or registration.
type AuthResult struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// Login exchanges credentials for a token pair and the account profile.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var out AuthResult
	ep := endpoint{method: http.MethodPost, path: "auth/login", body: req, resource: "auth"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	ep := endpoint{method: http.MethodPost, path: "auth/register", body: req, resource: "auth"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile behind the stored access token.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	ep := endpoint{method: http.MethodGet, path: "auth/me", resource: "auth"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}
