package stubserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// articleHandler serves the blog side of the community.
type articleHandler struct {
	store *Store
	check *validator.Validator
}

func newArticleHandler(store *Store, check *validator.Validator) *articleHandler {
	return &articleHandler{store: store, check: check}
}

// List handles GET /api/v1/articles.
func (h *articleHandler) List(c *gin.Context) {
	q := contentQuery(c)
	articles, total, pages := h.store.ListArticles(q, viewerID(c))
	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    total,
		"page":     q.normalize().Page,
		"pages":    pages,
	})
}

// Get handles GET /api/v1/articles/:id and counts the read.
func (h *articleHandler) Get(c *gin.Context) {
	article, err := h.store.ViewArticle(c.Param("id"), viewerID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Create handles POST /api/v1/articles.
func (h *articleHandler) Create(c *gin.Context) {
	var req api.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateArticle(&req); err != nil {
		respondValidation(c, err)
		return
	}

	article, err := h.store.CreateArticle(currentUser(c).ID, req.Title, req.Content, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create article"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// Update handles PUT /api/v1/articles/:id. Authors edit their own work;
// moderators edit anything.
func (h *articleHandler) Update(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	existing, err := h.store.GetArticle(id, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if existing.AuthorID != user.ID && !user.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author or a moderator can edit this article"})
		return
	}

	var req api.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateArticle(&req); err != nil {
		respondValidation(c, err)
		return
	}

	article, err := h.store.UpdateArticle(id, user.ID, req.Title, req.Content, req.Category)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Delete handles DELETE /api/v1/articles/:id.
func (h *articleHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	existing, err := h.store.GetArticle(id, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if existing.AuthorID != user.ID && !user.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author or a moderator can delete this article"})
		return
	}

	if err := h.store.DeleteArticle(id); err != nil && !errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete article"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Like handles POST /api/v1/articles/:id/like, toggling the viewer's like.
func (h *articleHandler) Like(c *gin.Context) {
	status, err := h.store.ToggleArticleLike(c.Param("id"), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}
