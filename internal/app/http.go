package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/http"
	httpH "github.com/yungbote/pearls-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pearls-backend/internal/http/middleware"
	"github.com/yungbote/pearls-backend/internal/observability"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	RateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Content   *httpH.ContentHandler
	Admin     *httpH.AdminHandler
	Favorites *httpH.FavoritesHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, services.Auth, cfg.AuthCookieName),
		RateLimiter: httpMW.NewRateLimiter(cfg.MutationRatePerMinute, metrics),
	}
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, c *corpus.Corpus) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(c, services.Store),
		Auth:      httpH.NewAuthHandler(services.Auth, cfg.AuthCookieName),
		Content:   httpH.NewContentHandler(services.Content),
		Admin:     httpH.NewAdminHandler(services.Gateway),
		Favorites: httpH.NewFavoritesHandler(services.Gateway),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics, tracing bool) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		TracingEnabled:   tracing,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		SessionCookie:    cfg.SessionCookieName,
		AuthMiddleware:   middleware.Auth,
		RateLimiter:      middleware.RateLimiter,
		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		ContentHandler:   handlers.Content,
		AdminHandler:     handlers.Admin,
		FavoritesHandler: handlers.Favorites,
	})
}
