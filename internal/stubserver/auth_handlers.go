package stubserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/logger"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// authHandler serves registration, sign-in, token refresh and the current
// profile.
type authHandler struct {
	store  *Store
	tokens *tokenIssuer
	check  *validator.Validator
}

func newAuthHandler(store *Store, tokens *tokenIssuer, check *validator.Validator) *authHandler {
	return &authHandler{store: store, tokens: tokens, check: check}
}

// Register handles POST /api/v1/auth/register.
func (h *authHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateRegister(&req); err != nil {
		respondValidation(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hashing password", "request_id", GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}

	user, err := h.store.CreateUser(req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}

	access, refresh, err := h.tokens.issuePair(&user)
	if err != nil {
		logger.Error("issuing tokens", "request_id", GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *authHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.check.ValidateLogin(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, hash, err := h.store.Credentials(req.Email)
	if err != nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
		return
	}

	access, refresh, err := h.tokens.issuePair(&user)
	if err != nil {
		logger.Error("issuing tokens", "request_id", GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Refresh handles POST /api/v1/auth/refresh. Refresh tokens are single use;
// every successful call rotates in a replacement.
func (h *authHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	userID, err := h.tokens.redeemRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
		return
	}
	user, err := h.store.GetUser(userID)
	if err != nil || !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
		return
	}

	access, refresh, err := h.tokens.issuePair(&user)
	if err != nil {
		logger.Error("issuing tokens", "request_id", GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Me handles GET /api/v1/auth/me.
func (h *authHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}
