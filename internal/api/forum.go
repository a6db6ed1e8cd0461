package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// ForumService covers discussion topics, their replies and the category
// index.
type ForumService struct {
	client *Client
}

// Topics pages through forum topics. Pinned topics sort first regardless of
// the requested order.
func (s *ForumService) Topics(ctx context.Context, opts ListOptions) ([]domain.Topic, *Page, error) {
	var out struct {
		Topics []domain.Topic `json:"topics"`
		Page
	}
	ep := endpoint{method: http.MethodGet, path: "topics", query: opts.values(), resource: "forum"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, nil, err
	}
	return out.Topics, &out.Page, nil
}

// Topic fetches one topic together with its full reply thread. The backend
// counts the view.
func (s *ForumService) Topic(ctx context.Context, id string) (*domain.Topic, []domain.Reply, error) {
	var out struct {
		Topic   domain.Topic   `json:"topic"`
		Replies []domain.Reply `json:"replies"`
	}
	ep := endpoint{method: http.MethodGet, path: "topics/" + url.PathEscape(id), resource: "forum"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, nil, err
	}
	return &out.Topic, out.Replies, nil
}

// CreateTopic opens a new discussion.
func (s *ForumService) CreateTopic(ctx context.Context, req TopicRequest) (*domain.Topic, error) {
	var out struct {
		Topic domain.Topic `json:"topic"`
	}
	ep := endpoint{method: http.MethodPost, path: "topics", body: req, resource: "forum"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Topic, nil
}

// UpdateTopic rewrites a topic. Allowed for the author and for moderators;
// pin and lock flags are honored for moderators only.
func (s *ForumService) UpdateTopic(ctx context.Context, id string, req TopicRequest) (*domain.Topic, error) {
	var out struct {
		Topic domain.Topic `json:"topic"`
	}
	ep := endpoint{method: http.MethodPut, path: "topics/" + url.PathEscape(id), body: req, resource: "forum"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Topic, nil
}

// DeleteTopic removes a topic and its replies. Allowed for the author and
// for moderators.
func (s *ForumService) DeleteTopic(ctx context.Context, id string) error {
	ep := endpoint{method: http.MethodDelete, path: "topics/" + url.PathEscape(id), resource: "forum"}
	return s.client.do(ctx, ep, nil)
}

// Reply posts a reply to a topic. Locked topics accept replies from
// moderators only.
func (s *ForumService) Reply(ctx context.Context, topicID string, req MessageRequest) (*domain.Reply, error) {
	var out struct {
		Reply domain.Reply `json:"reply"`
	}
	ep := endpoint{method: http.MethodPost, path: "topics/" + url.PathEscape(topicID) + "/replies", body: req, resource: "forum"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return &out.Reply, nil
}

// Categories returns the forum category index with topic counts.
func (s *ForumService) Categories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	ep := endpoint{method: http.MethodGet, path: "categories", resource: "forum"}
	if err := s.client.do(ctx, ep, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}
