package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// CommentsService covers article comment threads: one level of nesting,
// like toggling and moderation.
type CommentsService struct {
	client *Client
}

// ForArticle returns the visible comment threads of an article, replies
// included.
func (s *CommentsService) ForArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	var out struct {
		Comments []domain.Comment `json:"comments"`
	}
	q := url.Values{}
	q.Set("article_id", articleID)
	ep := endpoint{method: http.MethodGet, path: "comments", query: q, resource: "comments"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

// Create starts a new top-level thread on an article.
func (s *CommentsService) Create(ctx context.Context, req CommentRequest) (*domain.Comment, error) {
	var out struct {
		Comment domain.Comment `json:"comment"`
	}
	ep := endpoint{method: http.MethodPost, path: "comments", body: req, resource: "comments"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}

// ReplyTo answers a top-level comment. Replies cannot be replied to.
func (s *CommentsService) ReplyTo(ctx context.Context, commentID string, req MessageRequest) (*domain.CommentReply, error) {
	var out struct {
		Reply domain.CommentReply `json:"reply"`
	}
	ep := endpoint{method: http.MethodPost, path: "comments/" + url.PathEscape(commentID) + "/replies", body: req, resource: "comments"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Reply, nil
}

// Update rewrites a comment's content. Allowed for the author only.
func (s *CommentsService) Update(ctx context.Context, id string, req MessageRequest) (*domain.Comment, error) {
	var out struct {
		Comment domain.Comment `json:"comment"`
	}
	ep := endpoint{method: http.MethodPut, path: "comments/" + url.PathEscape(id), body: req, resource: "comments"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}

// Delete removes a comment. Allowed for the author and for moderators.
func (s *CommentsService) Delete(ctx context.Context, id string) error {
	ep := endpoint{method: http.MethodDelete, path: "comments/" + url.PathEscape(id), resource: "comments"}
	return s.client.do(ctx, ep, nil)
}

// Like toggles the signed-in user's like on a comment or reply and returns
// the new state.
func (s *CommentsService) Like(ctx context.Context, id string) (*domain.LikeStatus, error) {
	var out domain.LikeStatus
	ep := endpoint{method: http.MethodPost, path: "comments/" + url.PathEscape(id) + "/like", resource: "comments"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Moderate hides or restores a comment. Moderators only.
func (s *CommentsService) Moderate(ctx context.Context, id string, req ModerateRequest) (*domain.Comment, error) {
	var out struct {
		Comment domain.Comment `json:"comment"`
	}
	ep := endpoint{method: http.MethodPost, path: "comments/" + url.PathEscape(id) + "/moderate", body: req, resource: "comments"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}
