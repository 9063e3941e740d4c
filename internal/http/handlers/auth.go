package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/http/response"
	"github.com/yungbote/pearls-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	cookieName  string
}

func NewAuthHandler(authService services.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName}
}

// GET /api/auth/me
// Returns null for anonymous callers.
func (ah *AuthHandler) Me(c *gin.Context) {
	me, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if me == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	response.RespondOK(c, gin.H{
		"id":   me.ID,
		"role": me.Role,
		"name": me.Name,
	})
}

// POST /api/auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     ah.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.RespondSuccess(c)
}
