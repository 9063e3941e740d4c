package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/http/response"
	"github.com/yungbote/pearls-backend/internal/pipeline/filter"
	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

type contentQuery struct {
	Q         string `form:"q"`
	Category  string `form:"category"`
	Year      string `form:"year"`
	Pearls    bool   `form:"pearls"`
	Favorites bool   `form:"favorites"`
	Sort      string `form:"sort" binding:"omitempty,oneof=corpus newest random shuffle"`
}

func (q contentQuery) toService() services.ContentQuery {
	return services.ContentQuery{
		Filter: filter.State{
			SearchQuery:   q.Q,
			Category:      q.Category,
			Year:          filter.ParseYear(q.Year),
			PearlsOnly:    q.Pearls,
			FavoritesOnly: q.Favorites,
		},
		Sort: ordering.ParseMode(q.Sort),
	}
}

func bindContentQuery(c *gin.Context) (services.ContentQuery, bool) {
	var q contentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondStatus(c, http.StatusBadRequest, "invalid_request", err)
		return services.ContentQuery{}, false
	}
	return q.toService(), true
}

// GET /api/content/threads
func (h *ContentHandler) ListThreads(c *gin.Context) {
	q, ok := bindContentQuery(c)
	if !ok {
		return
	}
	res, err := h.contentService.Threads(c.Request.Context(), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/content/threads/:id
func (h *ContentHandler) GetThread(c *gin.Context) {
	t, err := h.contentService.Thread(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, t)
}

// GET /api/content/tweets
func (h *ContentHandler) ListTweets(c *gin.Context) {
	q, ok := bindContentQuery(c)
	if !ok {
		return
	}
	res, err := h.contentService.Tweets(c.Request.Context(), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/content/deleted-items
func (h *ContentHandler) DeletedItems(c *gin.Context) {
	items, err := h.contentService.DeletedItems(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, items)
}

// GET /api/content/tweet-edits
func (h *ContentHandler) TweetEdits(c *gin.Context) {
	edits, err := h.contentService.TweetEdits(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, edits)
}

// POST /api/content/reshuffle
func (h *ContentHandler) Reshuffle(c *gin.Context) {
	if err := h.contentService.Reshuffle(c.Request.Context()); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondSuccess(c)
}
