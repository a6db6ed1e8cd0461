package stubserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/domain"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// commentHandler serves article comment threads and their moderation.
type commentHandler struct {
	store *Store
	check *validator.Validator
}

func newCommentHandler(store *Store, check *validator.Validator) *commentHandler {
	return &commentHandler{store: store, check: check}
}

// List handles GET /api/v1/comments?article_id=...
func (h *commentHandler) List(c *gin.Context) {
	articleID := c.Query("article_id")
	if articleID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "article id is required"})
		return
	}
	comments, err := h.store.CommentsForArticle(articleID, viewerID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Create handles POST /api/v1/comments.
func (h *commentHandler) Create(c *gin.Context) {
	var req api.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateComment(&req); err != nil {
		respondValidation(c, err)
		return
	}

	comment, err := h.store.CreateComment(req.ArticleID, currentUser(c).ID, req.Content)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// Reply handles POST /api/v1/comments/:id/replies. Threads stay one level
// deep, so replying to a reply is rejected.
func (h *commentHandler) Reply(c *gin.Context) {
	var req api.MessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateMessage(&req); err != nil {
		respondValidation(c, err)
		return
	}

	reply, err := h.store.CreateCommentReply(c.Param("id"), currentUser(c).ID, req.Content)
	if err != nil {
		if errors.Is(err, ErrNestedReply) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrNestedReply.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// Update handles PUT /api/v1/comments/:id. Only the author may edit their
// comment; moderators hide instead of rewriting.
func (h *commentHandler) Update(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	info, err := h.store.GetCommentInfo(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	if info.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can edit this comment"})
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

	comment, err := h.store.UpdateComment(id, user.ID, req.Content)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// Delete handles DELETE /api/v1/comments/:id.
func (h *commentHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	info, err := h.store.GetCommentInfo(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	if info.AuthorID != user.ID && !user.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author or a moderator can delete this comment"})
		return
	}

	if err := h.store.DeleteComment(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Like handles POST /api/v1/comments/:id/like, toggling the viewer's like.
func (h *commentHandler) Like(c *gin.Context) {
	status, err := h.store.ToggleCommentLike(c.Param("id"), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Moderate handles POST /api/v1/comments/:id/moderate. Hidden comments keep
// their slot in the thread but render as a placeholder for regular viewers.
func (h *commentHandler) Moderate(c *gin.Context) {
	var req api.ModerateRequest
	if !bindJSON(c, &req) {
		return
	}

	var status string
	switch req.Action {
	case api.ModerateHide:
		status = domain.CommentHidden
	case api.ModerateRestore:
		status = domain.CommentVisible
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "action must be hide or restore"})
		return
	}

	comment, err := h.store.ModerateComment(c.Param("id"), currentUser(c).ID, status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}
