package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/http/response"
	"github.com/yungbote/pearls-backend/internal/services"
)

type AdminHandler struct {
	gateway services.MutationGateway
}

func NewAdminHandler(gateway services.MutationGateway) *AdminHandler {
	return &AdminHandler{gateway: gateway}
}

func tweetIndexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		response.RespondStatus(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("tweet index must be a non-negative integer"))
		return 0, false
	}
	return idx, true
}

func respondMutation(c *gin.Context, err error) {
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondSuccess(c)
}

// POST /api/admin/threads/:id/delete
func (h *AdminHandler) DeleteThread(c *gin.Context) {
	respondMutation(c, h.gateway.DeleteThread(c.Request.Context(), c.Param("id")))
}

// POST /api/admin/threads/:id/restore
func (h *AdminHandler) RestoreThread(c *gin.Context) {
	respondMutation(c, h.gateway.RestoreThread(c.Request.Context(), c.Param("id")))
}

// POST /api/admin/threads/:id/tweets/:index/delete
func (h *AdminHandler) DeleteTweet(c *gin.Context) {
	idx, ok := tweetIndexParam(c)
	if !ok {
		return
	}
	respondMutation(c, h.gateway.DeleteTweet(c.Request.Context(), c.Param("id"), idx))
}

// POST /api/admin/threads/:id/tweets/:index/restore
func (h *AdminHandler) RestoreTweet(c *gin.Context) {
	idx, ok := tweetIndexParam(c)
	if !ok {
		return
	}
	respondMutation(c, h.gateway.RestoreTweet(c.Request.Context(), c.Param("id"), idx))
}

// PUT /api/admin/threads/:id/tweets/:index/edit
// body: { "editedText": "..."|null, "hiddenMedia": ["path", ...]|null }
func (h *AdminHandler) SaveTweetEdit(c *gin.Context) {
	idx, ok := tweetIndexParam(c)
	if !ok {
		return
	}
	var req struct {
		EditedText  *string  `json:"editedText"`
		HiddenMedia []string `json:"hiddenMedia"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondStatus(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	respondMutation(c, h.gateway.SaveTweetEdit(c.Request.Context(), services.SaveTweetEditInput{
		ThreadID:    c.Param("id"),
		TweetIndex:  idx,
		EditedText:  req.EditedText,
		HiddenMedia: req.HiddenMedia,
	}))
}

// DELETE /api/admin/threads/:id/tweets/:index/edit
func (h *AdminHandler) DeleteTweetEdit(c *gin.Context) {
	idx, ok := tweetIndexParam(c)
	if !ok {
		return
	}
	respondMutation(c, h.gateway.DeleteTweetEdit(c.Request.Context(), c.Param("id"), idx))
}
