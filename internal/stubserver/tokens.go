package stubserver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// ErrInvalidToken covers unknown, expired and malformed tokens of either
// kind.
var ErrInvalidToken = errors.New("invalid or expired token")

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type refreshSession struct {
	userID    string
	expiresAt time.Time
}

// tokenIssuer mints short-lived JWT access tokens and tracks the opaque
// refresh tokens that renew them. Refresh tokens are single use: redeeming
// one invalidates it and hands out a replacement.
type tokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu       sync.Mutex
	sessions map[string]refreshSession
}

func newTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *tokenIssuer {
	return &tokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		sessions:   make(map[string]refreshSession),
	}
}

// issuePair mints an access token and a fresh refresh token for the user.
func (t *tokenIssuer) issuePair(user *domain.User) (access, refresh string, err error) {
	access, err = t.issueAccess(user)
	if err != nil {
		return "", "", err
	}
	refresh = t.issueRefresh(user.ID)
	return access, refresh, nil
}

func (t *tokenIssuer) issueAccess(user *domain.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

func (t *tokenIssuer) issueRefresh(userID string) string {
	raw := uuid.New().String()
	t.mu.Lock()
	t.sessions[raw] = refreshSession{
		userID:    userID,
		expiresAt: time.Now().Add(t.refreshTTL),
	}
	t.mu.Unlock()
	return raw
}

// verifyAccess validates an access token and returns the subject user id.
func (t *tokenIssuer) verifyAccess(raw string) (string, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// redeemRefresh consumes a refresh token and returns the user it belongs to.
// The token is invalidated whether or not it was still live.
func (t *tokenIssuer) redeemRefresh(raw string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[raw]
	if !ok {
		return "", ErrInvalidToken
	}
	delete(t.sessions, raw)
	if time.Now().After(sess.expiresAt) {
		return "", ErrInvalidToken
	}
	return sess.userID, nil
}

// revokeUser drops every refresh session of a user, ending their ability to
// renew access tokens. Used when an account is deactivated.
func (t *tokenIssuer) revokeUser(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for raw, sess := range t.sessions {
		if sess.userID == userID {
			delete(t.sessions, raw)
		}
	}
}
