package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/http/response"
	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
	"github.com/yungbote/pearls-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	cookieName  string
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, cookieName string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	if cookieName == "" {
		cookieName = "pearls_token"
	}
	return &AuthMiddleware{log: middlewareLogger, authService: authService, cookieName: cookieName}
}

func (am *AuthMiddleware) CookieName() string { return am.cookieName }

// OptionalAuth attaches the principal when a valid token is presented. A bad
// or stale token leaves the caller anonymous; public reads never fail on it.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := am.extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrUnavailable) {
				am.log.Warn("Principal lookup failed", "error", err)
			} else {
				am.log.Debug("Ignoring invalid token", "error", err)
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers. It expects OptionalAuth to have run.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ctxutil.GetPrincipal(c.Request.Context()) == nil {
			response.RespondError(c, pkgerrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := ctxutil.GetPrincipal(c.Request.Context())
		if p == nil {
			response.RespondError(c, pkgerrors.ErrUnauthorized)
			return
		}
		if !p.IsAdmin() {
			response.RespondError(c, pkgerrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(am.cookieName); err == nil {
		return cookie
	}
	return ""
}
