package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/pkg/apierr"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps err onto its HTTP status and stable code. Internal errors
// are reported without their message.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	msg := "unknown error"
	if ae.Status >= http.StatusInternalServerError && ae.Code == "internal" {
		msg = "internal error"
	} else if ae.Err != nil {
		msg = ae.Err.Error()
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      ae.Code,
			Retryable: ae.Retryable(),
		},
	})
}

// RespondStatus writes an error with an explicit status, for failures that
// never reach the service layer (binding, path params).
func RespondStatus(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondSuccess is the acknowledgement every mutation returns.
func RespondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
