package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name      string
		err       error
		status    int
		code      string
		message   string
		retryable bool
	}{
		{name: "forbidden", err: fmt.Errorf("deleteThread: %w", pkgerrors.ErrForbidden), status: http.StatusForbidden, code: "forbidden", message: "deleteThread: forbidden"},
		{name: "unavailable", err: fmt.Errorf("load: %w", pkgerrors.ErrUnavailable), status: http.StatusServiceUnavailable, code: "unavailable", message: "load: unavailable", retryable: true},
		{name: "internal", err: fmt.Errorf("db password leaked"), status: http.StatusInternalServerError, code: "internal", message: "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondError(c, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status=%d, want %d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message != tc.message || env.Error.Retryable != tc.retryable {
				t.Fatalf("envelope=%+v", env.Error)
			}
		})
	}
}
