package domain

import "time"

// Topic represents a forum discussion thread. Pinned topics sort first in
// listings; locked topics accept no new replies from regular users.
type Topic struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Category     string        `json:"category"`
	Pinned       bool          `json:"pinned"`
	Locked       bool          `json:"locked"`
	Views        int           `json:"views"`
	RepliesCount int           `json:"replies_count"`
	AuthorID     string        `json:"author_id"`
	Author       *User         `json:"author,omitempty"`
	LastReply    *ReplySummary `json:"last_reply,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Reply is a flat message attached to exactly one topic.
type Reply struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplySummary is the compact last-reply annotation carried on topic
// listings.
type ReplySummary struct {
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}

// Category is a forum category with its topic count, used for filtering.
type Category struct {
	Name        string `json:"name"`
	TopicsCount int    `json:"topics_count"`
}
