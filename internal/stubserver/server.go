package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/config"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// Server bundles the stub backend: router, data store and token issuer.
type Server struct {
	cfg    *config.StubConfig
	store  *Store
	tokens *tokenIssuer
	router *gin.Engine
}

// New assembles the stub backend. With cfg.Seed set the store starts with
// the demo community fixtures.
func New(cfg *config.StubConfig) *Server {
	store := NewStore()
	if cfg.Seed {
		SeedFixtures(store)
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		tokens: newTokenIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
	}
	s.router = s.buildRouter()
	return s
}

// Store exposes the data layer, mainly for tests and extra fixtures.
func (s *Server) Store() *Store { return s.store }

// Handler returns the HTTP handler serving the full API surface.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Metrics())
	router.Use(gin.Logger())

	check := validator.NewValidator()
	authH := newAuthHandler(s.store, s.tokens, check)
	articleH := newArticleHandler(s.store, check)
	forumH := newForumHandler(s.store, check)
	commentH := newCommentHandler(s.store, check)
	userH := newUserHandler(s.store, s.tokens, check)

	// Health and metrics endpoints live outside the versioned API.
	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/live", s.live)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authH.Register)
			auth.POST("/login", authH.Login)
			auth.POST("/refresh", authH.Refresh)
			auth.GET("/me", s.requireAuth(), authH.Me)
		}

		articles := v1.Group("/articles")
		{
			articles.GET("", s.optionalAuth(), articleH.List)
			articles.GET("/:id", s.optionalAuth(), articleH.Get)
			articles.POST("", s.requireAuth(), articleH.Create)
			articles.PUT("/:id", s.requireAuth(), articleH.Update)
			articles.DELETE("/:id", s.requireAuth(), articleH.Delete)
			articles.POST("/:id/like", s.requireAuth(), articleH.Like)
		}

		topics := v1.Group("/topics")
		{
			topics.GET("", forumH.List)
			topics.GET("/:id", forumH.Get)
			topics.POST("", s.requireAuth(), forumH.Create)
			topics.PUT("/:id", s.requireAuth(), forumH.Update)
			topics.DELETE("/:id", s.requireAuth(), forumH.Delete)
			topics.POST("/:id/replies", s.requireAuth(), forumH.Reply)
		}
		v1.GET("/categories", forumH.Categories)

		comments := v1.Group("/comments")
		{
			comments.GET("", s.optionalAuth(), commentH.List)
			comments.POST("", s.requireAuth(), commentH.Create)
			comments.POST("/:id/replies", s.requireAuth(), commentH.Reply)
			comments.PUT("/:id", s.requireAuth(), commentH.Update)
			comments.DELETE("/:id", s.requireAuth(), commentH.Delete)
			comments.POST("/:id/like", s.requireAuth(), commentH.Like)
			comments.POST("/:id/moderate", s.requireAuth(), s.requireModerator(), commentH.Moderate)
		}

		users := v1.Group("/users")
		{
			users.GET("", s.requireAuth(), s.requireAdmin(), userH.List)
			users.GET("/leaderboard", userH.Leaderboard)
			users.GET("/:id", s.optionalAuth(), userH.Get)
			users.PUT("/:id", s.requireAuth(), userH.Update)
		}
	}

	return router
}

// health handles GET /health.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": api.Version})
}

// ready handles GET /ready - readiness probe.
func (s *Server) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// live handles GET /live - liveness probe.
func (s *Server) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
