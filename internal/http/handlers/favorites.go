package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/http/response"
	"github.com/yungbote/pearls-backend/internal/services"
)

type FavoritesHandler struct {
	gateway services.MutationGateway
}

func NewFavoritesHandler(gateway services.MutationGateway) *FavoritesHandler {
	return &FavoritesHandler{gateway: gateway}
}

// GET /api/favorites
func (h *FavoritesHandler) List(c *gin.Context) {
	ids, err := h.gateway.ListFavorites(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ids)
}

// POST /api/favorites
// body: { "threadId": "..." }
func (h *FavoritesHandler) Add(c *gin.Context) {
	var req struct {
		ThreadID string `json:"threadId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondStatus(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	respondMutation(c, h.gateway.AddFavorite(c.Request.Context(), req.ThreadID))
}

// DELETE /api/favorites/:threadId
func (h *FavoritesHandler) Remove(c *gin.Context) {
	respondMutation(c, h.gateway.RemoveFavorite(c.Request.Context(), c.Param("threadId")))
}

// POST /api/favorites/:threadId/toggle
func (h *FavoritesHandler) Toggle(c *gin.Context) {
	on, err := h.gateway.ToggleFavorite(c.Request.Context(), c.Param("threadId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "favorite": on})
}
