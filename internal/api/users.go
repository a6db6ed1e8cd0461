package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// UsersService reads and updates member profiles.
type UsersService struct {
	client *Client
}

// Get fetches one profile by id.
func (s *UsersService) Get(ctx context.Context, id string) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	ep := endpoint{method: http.MethodGet, path: "users/" + url.PathEscape(id), resource: "users"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Update applies a partial profile update. Role and activity changes are
// rejected by the backend unless the caller is an admin.
func (s *UsersService) Update(ctx context.Context, id string, req UserUpdateRequest) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	ep := endpoint{method: http.MethodPut, path: "users/" + url.PathEscape(id), body: req, resource: "users"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// List pages through all members. Admin only.
func (s *UsersService) List(ctx context.Context, opts ListOptions) ([]domain.User, *Page, error) {
	var out struct {
		Users []domain.User `json:"users"`
		Page
	}
	ep := endpoint{method: http.MethodGet, path: "users", query: opts.values(), resource: "users"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, nil, err
	}
	return out.Users, &out.Page, nil
}

// Leaderboard returns the top members by points. A limit of zero leaves the
// cut-off to the backend.
func (s *UsersService) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	ep := endpoint{method: http.MethodGet, path: "users/leaderboard", query: q, resource: "users"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}
