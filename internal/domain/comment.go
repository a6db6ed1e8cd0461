package domain

import "time"

// Comment status constants. Hidden comments keep their slot in the thread
// but render as a moderation placeholder.
const (
	CommentVisible = "visible"
	CommentHidden  = "hidden"
)

// Comment is a top-level message attached to exactly one article. Direct
// replies are carried inline as CommentReply values; the backend nests no
// deeper than one level, so the reply type cannot hold replies of its own.
type Comment struct {
	ID        string         `json:"id"`
	ArticleID string         `json:"article_id"`
	Content   string         `json:"content"`
	Status    string         `json:"status"`
	Likes     int            `json:"likes"`
	UserLiked bool           `json:"user_liked"`
	AuthorID  string         `json:"author_id"`
	Author    *User          `json:"author,omitempty"`
	Replies   []CommentReply `json:"replies,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CommentReply is a direct reply to a top-level comment.
type CommentReply struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	ArticleID string    `json:"article_id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Likes     int       `json:"likes"`
	UserLiked bool      `json:"user_liked"`
	AuthorID  string    `json:"author_id"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidCommentStatuses contains all valid comment statuses.
var ValidCommentStatuses = []string{CommentVisible, CommentHidden}

// IsValidCommentStatus checks if a comment status is valid.
func IsValidCommentStatus(status string) bool {
	for _, s := range ValidCommentStatuses {
		if s == status {
			return true
		}
	}
	return false
}
