package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// forumHandler serves topics, replies and categories.
type forumHandler struct {
	store *Store
	check *validator.Validator
}

func newForumHandler(store *Store, check *validator.Validator) *forumHandler {
	return &forumHandler{store: store, check: check}
}

// List handles GET /api/v1/topics.
func (h *forumHandler) List(c *gin.Context) {
	q := contentQuery(c)
	topics, total, pages := h.store.ListTopics(q)
	c.JSON(http.StatusOK, gin.H{
		"topics": topics,
		"total":  total,
		"page":   q.normalize().Page,
		"pages":  pages,
	})
}

// Get handles GET /api/v1/topics/:id, returning the topic with its reply
// thread and counting the read.
func (h *forumHandler) Get(c *gin.Context) {
	topic, replies, err := h.store.ViewTopic(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic, "replies": replies})
}

// Create handles POST /api/v1/topics. Pinned and locked flags are honored
// for moderators; everyone else opens plain topics.
func (h *forumHandler) Create(c *gin.Context) {
	var req api.TopicRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateTopic(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user := currentUser(c)
	pinned, locked := false, false
	if user.IsModerator() {
		if req.Pinned != nil {
			pinned = *req.Pinned
		}
		if req.Locked != nil {
			locked = *req.Locked
		}
	}

	topic, err := h.store.CreateTopic(user.ID, req.Title, req.Content, req.Category, pinned, locked)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create topic"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"topic": topic})
}

// Update handles PUT /api/v1/topics/:id.
func (h *forumHandler) Update(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	existing, err := h.store.GetTopic(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	if existing.AuthorID != user.ID && !user.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author or a moderator can edit this topic"})
		return
	}

	var req api.TopicRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateTopic(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if !user.IsModerator() {
		req.Pinned, req.Locked = nil, nil
	}

	topic, err := h.store.UpdateTopic(id, req.Title, req.Content, req.Category, req.Pinned, req.Locked)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic})
}

// Delete handles DELETE /api/v1/topics/:id.
func (h *forumHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	existing, err := h.store.GetTopic(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	if existing.AuthorID != user.ID && !user.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author or a moderator can delete this topic"})
		return
	}

	if err := h.store.DeleteTopic(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Reply handles POST /api/v1/topics/:id/replies. Locked topics accept
// replies from moderators only.
func (h *forumHandler) Reply(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	topic, err := h.store.GetTopic(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	if topic.Locked && !user.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "topic is locked"})
		return
	}

	var req api.MessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateMessage(&req); err != nil {
		respondValidation(c, err)
		return
	}

	reply, err := h.store.CreateReply(id, user.ID, req.Content)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// Categories handles GET /api/v1/categories.
func (h *forumHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.store.Categories()})
}
