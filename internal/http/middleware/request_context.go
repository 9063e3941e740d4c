package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
)

const (
	headerSessionID      = "X-Session-Id"
	DefaultSessionCookie = "pearls_session"
	maxSessionIDLen      = 128
)

// AttachSession pins a browsing session id to the request. Clients may send
// X-Session-Id; otherwise the session cookie is used or a new one is issued.
func AttachSession(cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerSessionID))
		if id == "" {
			if v, err := c.Cookie(cookieName); err == nil {
				id = strings.TrimSpace(v)
			}
		}
		if id == "" || len(id) > maxSessionIDLen {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), id))
		c.Writer.Header().Set(headerSessionID, id)
		c.Next()
	}
}
