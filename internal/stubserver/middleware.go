package stubserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iba200/otaku-wireframe/internal/domain"
	"github.com/iba200/otaku-wireframe/internal/metrics"
)

const (
	// RequestIDHeader is the header name for request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the context key for request ID
	RequestIDKey = "request_id"

	userKey = "auth_user"
)

// RequestID middleware tags each request with an id. The client sends its
// own X-Request-ID and keeps it stable across retries; when it is absent a
// new UUID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the gin context.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// Metrics records Prometheus metrics for every handled request: a counter by
// method, route and status, a duration histogram, and an in-flight gauge.
// The /metrics endpoint itself is not measured.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// resolveUser authenticates the bearer token on the request, if any, and
// returns the active account behind it.
func (s *Server) resolveUser(c *gin.Context) (*domain.User, bool) {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return nil, false
	}
	userID, err := s.tokens.verifyAccess(strings.TrimPrefix(auth, prefix))
	if err != nil {
		return nil, false
	}
	user, err := s.store.GetUser(userID)
	if err != nil || !user.Active {
		return nil, false
	}
	return &user, true
}

// requireAuth rejects requests without a valid bearer token. Tokens of
// deactivated accounts are treated as expired so their sessions end on the
// next call.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.resolveUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// optionalAuth resolves the viewer when a valid token is present and lets
// anonymous requests through. Listings use it to fill per-viewer like flags.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := s.resolveUser(c); ok {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// requireModerator gates moderation endpoints. Admins pass implicitly.
func (s *Server) requireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsModerator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "moderator access required"})
			return
		}
		c.Next()
	}
}

// requireAdmin gates administrative endpoints.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated viewer, or nil on anonymous
// requests.
func currentUser(c *gin.Context) *domain.User {
	if v, exists := c.Get(userKey); exists {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// viewerID is currentUser reduced to the id listings pass to the store.
func viewerID(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return ""
}
