package domain

import "time"

// Article represents a published content document. Views, likes and the
// per-viewer UserLiked flag are maintained by the backend; the client only
// mirrors them.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	UserLiked bool      `json:"user_liked"`
	AuthorID  string    `json:"author_id"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeStatus is the status object returned by like endpoints. Callers merge
// it into their local copy instead of re-deriving counters.
type LikeStatus struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
