package api

import (
	"net/url"
	"strconv"
)

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ArticleRequest is the payload for creating or updating a blog article.
type ArticleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// TopicRequest is the payload for creating or updating a forum topic.
// Pinned and Locked are honored for moderators only.
type TopicRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Pinned   *bool  `json:"pinned,omitempty"`
	Locked   *bool  `json:"locked,omitempty"`
}

// CommentRequest starts a new top-level comment thread on an article.
type CommentRequest struct {
	ArticleID string `json:"article_id"`
	Content   string `json:"content"`
}

// MessageRequest is a bare content payload, used for topic replies, comment
// replies and comment edits.
type MessageRequest struct {
	Content string `json:"content"`
}

// UserUpdateRequest carries a partial profile update. Role and Active are
// honored for admins only.
type UserUpdateRequest struct {
	Username  *string `json:"username,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Role      *string `json:"role,omitempty"`
	Active    *bool   `json:"is_active,omitempty"`
}

// Moderation actions accepted by the comments moderation endpoint.
const (
	ModerateHide    = "hide"
	ModerateRestore = "restore"
)

// ModerateRequest hides or restores a comment.
type ModerateRequest struct {
	Action string `json:"action"`
}

// Page is the pagination metadata returned alongside every list.
type Page struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// ListOptions narrows and pages list endpoints. Zero values are omitted so
// the backend applies its defaults.
type ListOptions struct {
	Page     int
	PerPage  int
	Sort     string
	Category string
	Search   string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	return v
}
