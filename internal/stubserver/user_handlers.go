package stubserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// userHandler serves profiles, the member directory and the leaderboard.
type userHandler struct {
	store  *Store
	tokens *tokenIssuer
	check  *validator.Validator
}

func newUserHandler(store *Store, tokens *tokenIssuer, check *validator.Validator) *userHandler {
	return &userHandler{store: store, tokens: tokens, check: check}
}

// Get handles GET /api/v1/users/:id. Profiles are public; the email field
// is visible only to the account owner and admins.
func (h *userHandler) Get(c *gin.Context) {
	user, err := h.store.GetUser(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	viewer := currentUser(c)
	if viewer == nil || (viewer.ID != user.ID && !viewer.IsAdmin()) {
		user.Email = ""
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Update handles PUT /api/v1/users/:id. Members edit their own profile;
// admins edit anyone and are the only ones who may touch role and active
// status.
func (h *userHandler) Update(c *gin.Context) {
	viewer := currentUser(c)
	id := c.Param("id")

	if id != viewer.ID && !viewer.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only edit your own profile"})
		return
	}

	var req api.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateUserUpdate(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if (req.Role != nil || req.Active != nil) && !viewer.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins can change roles or account status"})
		return
	}

	user, err := h.store.UpdateProfile(id, ProfileUpdate{
		Username:  req.Username,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Role:      req.Role,
		Active:    req.Active,
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	// Deactivation ends the account's sessions at the next token renewal.
	if req.Active != nil && !*req.Active {
		h.tokens.revokeUser(id)
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// List handles GET /api/v1/users, the admin member directory. Search
// matches username or email.
func (h *userHandler) List(c *gin.Context) {
	q := contentQuery(c)
	users, total, pages := h.store.ListUsers(q)
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  q.normalize().Page,
		"pages": pages,
	})
}

// Leaderboard handles GET /api/v1/users/leaderboard.
func (h *userHandler) Leaderboard(c *gin.Context) {
	users := h.store.Leaderboard(queryInt(c, "limit"))
	c.JSON(http.StatusOK, gin.H{"users": publicUsers(users)})
}
