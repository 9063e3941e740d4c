package overlaystore

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/domain/content"
	"github.com/yungbote/pearls-backend/internal/observability"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
	"github.com/yungbote/pearls-backend/internal/pipeline/resolve"
)

// View is the resolved corpus for one overlay snapshot. It is shared between
// requests and must be treated as read-only.
type View struct {
	Threads   []content.ResolvedThread
	Report    resolve.Report
	Version   uint64
	FetchedAt time.Time

	byID map[string]int
}

func (v *View) Thread(id string) (*content.ResolvedThread, bool) {
	i, ok := v.byID[id]
	if !ok {
		return nil, false
	}
	return &v.Threads[i], true
}

// Views memoizes resolution per snapshot version.
type Views struct {
	corpus  *corpus.Corpus
	store   *Store
	log     *logger.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	cached *View
}

func NewViews(c *corpus.Corpus, store *Store, baseLog *logger.Logger, metrics *observability.Metrics) *Views {
	return &Views{corpus: c, store: store, log: baseLog.With("component", "ResolvedViews"), metrics: metrics}
}

// Current resolves the corpus against the latest snapshot, reusing the
// previous result when the snapshot version has not changed.
func (v *Views) Current(ctx context.Context) (*View, error) {
	if v.corpus == nil {
		return nil, pkgerrors.ErrCorpusUnavailable
	}
	snap, err := v.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cached != nil && v.cached.Version == snap.Version {
		v.metrics.IncResolveCache(true)
		return v.cached, nil
	}
	v.metrics.IncResolveCache(false)

	start := time.Now()
	threads, rep := resolve.ResolveWithReport(v.corpus.Threads, snap.Deletions, snap.Edits)
	view := &View{
		Threads:   threads,
		Report:    rep,
		Version:   snap.Version,
		FetchedAt: snap.FetchedAt,
		byID:      make(map[string]int, len(threads)),
	}
	for i := range threads {
		view.byID[threads[i].ID] = i
	}
	v.metrics.ObserveResolve(time.Since(start), rep.Resolved, rep.EvaporatedThreads, rep.DeletedThreads)
	if rep.SkippedDeletions > 0 || rep.SkippedEdits > 0 || rep.SkippedThreads > 0 {
		v.log.Warn("Resolution skipped records",
			"version", snap.Version,
			"skipped_deletions", rep.SkippedDeletions,
			"skipped_edits", rep.SkippedEdits,
			"skipped_threads", rep.SkippedThreads,
		)
	}
	v.cached = view
	return view, nil
}

// CorpusIDs lists every corpus thread id in corpus order.
func (v *Views) CorpusIDs() []string {
	if v.corpus == nil {
		return nil
	}
	return v.corpus.IDs()
}
