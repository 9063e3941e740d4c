package overlaystore

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

const DefaultRefreshSpec = "@every 60s"

// Refresher refetches the overlay on a cron schedule so edits made through
// other replicas converge without a mutation on this one.
type Refresher struct {
	cron    *cron.Cron
	store   *Store
	log     *logger.Logger
	timeout time.Duration
	entry   cron.EntryID
}

func NewRefresher(store *Store, spec string, baseLog *logger.Logger) (*Refresher, error) {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	r := &Refresher{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:   store,
		log:     baseLog.With("component", "OverlayRefresher"),
		timeout: 30 * time.Second,
	}
	id, err := r.cron.AddFunc(spec, r.run)
	if err != nil {
		return nil, fmt.Errorf("schedule overlay refresh %q: %w", spec, err)
	}
	r.entry = id
	return r, nil
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	start := time.Now()
	snap, err := r.store.Refresh(ctx, "cron")
	if err != nil {
		r.log.Warn("Scheduled overlay refresh failed", "error", err)
		return
	}
	r.log.Debug("Scheduled overlay refresh", "version", snap.Version, "duration_ms", time.Since(start).Milliseconds())
}

func (r *Refresher) Start() {
	r.log.Info("Starting overlay refresher", "next", r.cron.Entry(r.entry).Next)
	r.cron.Start()
}

// Stop halts scheduling; the returned context is done once a running refresh ends.
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}
