package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pearls-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pearls-backend/internal/http/middleware"
	"github.com/yungbote/pearls-backend/internal/observability"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

const serviceName = "pearls-backend"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	TracingEnabled bool
	CORSOrigins    []string
	SessionCookie  string

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	ContentHandler   *httpH.ContentHandler
	AdminHandler     *httpH.AdminHandler
	FavoritesHandler *httpH.FavoritesHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.AttachSession(cfg.SessionCookie))
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.OptionalAuth())
	}

	// Auth
	if cfg.AuthHandler != nil {
		api.GET("/auth/me", cfg.AuthHandler.Me)
		api.POST("/auth/logout", cfg.AuthHandler.Logout)
	}

	// Content (public)
	if cfg.ContentHandler != nil {
		api.GET("/content/deleted-items", cfg.ContentHandler.DeletedItems)
		api.GET("/content/tweet-edits", cfg.ContentHandler.TweetEdits)
		api.GET("/content/threads", cfg.ContentHandler.ListThreads)
		api.GET("/content/threads/:id", cfg.ContentHandler.GetThread)
		api.GET("/content/tweets", cfg.ContentHandler.ListTweets)
		api.POST("/content/reshuffle", cfg.ContentHandler.Reshuffle)
	}

	if cfg.AuthMiddleware == nil {
		return r
	}
	limit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Middleware()
	}

	// Admin
	if cfg.AdminHandler != nil {
		admin := api.Group("/admin", cfg.AuthMiddleware.RequireAdmin(), limit)
		admin.POST("/threads/:id/delete", cfg.AdminHandler.DeleteThread)
		admin.POST("/threads/:id/restore", cfg.AdminHandler.RestoreThread)
		admin.POST("/threads/:id/tweets/:index/delete", cfg.AdminHandler.DeleteTweet)
		admin.POST("/threads/:id/tweets/:index/restore", cfg.AdminHandler.RestoreTweet)
		admin.PUT("/threads/:id/tweets/:index/edit", cfg.AdminHandler.SaveTweetEdit)
		admin.DELETE("/threads/:id/tweets/:index/edit", cfg.AdminHandler.DeleteTweetEdit)
	}

	// Favorites
	if cfg.FavoritesHandler != nil {
		favorites := api.Group("/favorites", cfg.AuthMiddleware.RequireAuth())
		favorites.GET("", cfg.FavoritesHandler.List)
		favorites.POST("", limit, cfg.FavoritesHandler.Add)
		favorites.DELETE("/:threadId", limit, cfg.FavoritesHandler.Remove)
		favorites.POST("/:threadId/toggle", limit, cfg.FavoritesHandler.Toggle)
	}

	return r
}
