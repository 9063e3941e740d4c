package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/overlaystore"
)

type HealthHandler struct {
	corpus *corpus.Corpus
	store  *overlaystore.Store
}

func NewHealthHandler(c *corpus.Corpus, store *overlaystore.Store) *HealthHandler {
	return &HealthHandler{corpus: c, store: store}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports 503 until the corpus is loaded and one overlay snapshot exists.
func (h *HealthHandler) Ready(c *gin.Context) {
	body := gin.H{"corpus": false, "overlay": false}
	ready := true
	if h.corpus != nil {
		body["corpus"] = true
		body["corpusThreads"] = len(h.corpus.Threads)
	} else {
		ready = false
	}
	var snap *overlaystore.Snapshot
	if h.store != nil {
		snap = h.store.Current()
	}
	if snap != nil {
		body["overlay"] = true
		body["overlayVersion"] = snap.Version
		body["overlayAgeSeconds"] = int(time.Since(snap.FetchedAt).Seconds())
	} else {
		ready = false
	}
	if h.store != nil {
		if err := h.store.LastError(); err != nil {
			body["overlayError"] = err.Error()
		}
	}
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, body)
}
