package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// ArticlesService covers the blog side of the community: articles, their
// lifecycle and like toggling.
type ArticlesService struct {
	client *Client
}

// List pages through articles, optionally narrowed by category, search term
// and sort order.
func (s *ArticlesService) List(ctx context.Context, opts ListOptions) ([]domain.Article, *Page, error) {
	var out struct {
		Articles []domain.Article `json:"articles"`
		Page
	}
	ep := endpoint{method: http.MethodGet, path: "articles", query: opts.values(), resource: "articles"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, nil, err
	}
	return out.Articles, &out.Page, nil
}

// Get fetches one article by id. The backend counts the view.
func (s *ArticlesService) Get(ctx context.Context, id string) (*domain.Article, error) {
	var out struct {
		Article domain.Article `json:"article"`
	}
	ep := endpoint{method: http.MethodGet, path: "articles/" + url.PathEscape(id), resource: "articles"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Article, nil
}

// Create publishes a new article authored by the signed-in user.
func (s *ArticlesService) Create(ctx context.Context, req ArticleRequest) (*domain.Article, error) {
	var out struct {
		Article domain.Article `json:"article"`
	}
	ep := endpoint{method: http.MethodPost, path: "articles", body: req, resource: "articles"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Article, nil
}

// Update rewrites an article. Allowed for the author and for moderators.
func (s *ArticlesService) Update(ctx context.Context, id string, req ArticleRequest) (*domain.Article, error) {
	var out struct {
		Article domain.Article `json:"article"`
	}
	ep := endpoint{method: http.MethodPut, path: "articles/" + url.PathEscape(id), body: req, resource: "articles"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Article, nil
}

// Delete removes an article. Allowed for the author and for moderators.
func (s *ArticlesService) Delete(ctx context.Context, id string) error {
	ep := endpoint{method: http.MethodDelete, path: "articles/" + url.PathEscape(id), resource: "articles"}
	return s.client.do(ctx, ep, nil)
}

// Like toggles the signed-in user's like on an article and returns the new
// state.
func (s *ArticlesService) Like(ctx context.Context, id string) (*domain.LikeStatus, error) {
	var out domain.LikeStatus
	ep := endpoint{method: http.MethodPost, path: "articles/" + url.PathEscape(id) + "/like", resource: "articles"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
