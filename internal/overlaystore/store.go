package overlaystore

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/observability"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// Source reads the authoritative overlay records.
type Source interface {
	ListDeletedItems(ctx context.Context) ([]domain.DeletedItem, error)
	ListTweetEdits(ctx context.Context) ([]domain.TweetEdit, error)
}

// Snapshot is one consistent read of the overlay. Version changes only when
// the records do.
type Snapshot struct {
	Deletions []domain.DeletedItem
	Edits     []domain.TweetEdit
	FetchedAt time.Time
	Version   uint64
}

type Options struct {
	// MaxAge forces a refetch on read once the snapshot is older. Zero disables it.
	MaxAge       time.Duration
	FetchTimeout time.Duration
	// RetryBackoff is how long reads keep serving the last snapshot after a
	// failed fetch before trying the source again.
	RetryBackoff time.Duration
	Metrics      *observability.Metrics
}

// Store caches the overlay. Readers get the latest snapshot; writers call
// Invalidate after a successful mutation and the next read refetches.
type Store struct {
	src     Source
	log     *logger.Logger
	opts    Options
	metrics *observability.Metrics
	now     func() time.Time
	group   singleflight.Group

	mu         sync.RWMutex
	snap       *Snapshot
	generation uint64
	fetchedGen uint64
	version    uint64
	lastErr    error
	failedGen  uint64
	failedAt   time.Time
}

func New(src Source, baseLog *logger.Logger, opts Options) *Store {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 5 * time.Second
	}
	return &Store{
		src:        src,
		log:        baseLog.With("component", "OverlayStore"),
		opts:       opts,
		metrics:    opts.Metrics,
		now:        time.Now,
		generation: 1,
	}
}

// Snapshot returns a fresh-enough snapshot, refetching when invalidated or
// past MaxAge. A failed refetch falls back to the last good snapshot; with no
// snapshot at all it returns ErrUnavailable. After a failure, reads of the
// same generation skip the source until RetryBackoff elapses.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.fresh(); ok {
		return snap, nil
	}
	if s.coolingDown() {
		if last := s.Current(); last != nil {
			return last, nil
		}
		return nil, fmt.Errorf("fetch overlay: %v: %w", s.LastError(), pkgerrors.ErrUnavailable)
	}
	snap, err := s.refresh(ctx, "read")
	if err == nil {
		return snap, nil
	}
	if last := s.Current(); last != nil {
		s.log.Warn("Overlay refetch failed, serving last known good",
			"version", last.Version, "age_ms", s.now().Sub(last.FetchedAt).Milliseconds(), "error", err)
		return last, nil
	}
	return nil, err
}

// Refresh refetches regardless of freshness and reports fetch errors even
// when an older snapshot exists.
func (s *Store) Refresh(ctx context.Context, trigger string) (*Snapshot, error) {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
	return s.refresh(ctx, trigger)
}

// Invalidate marks the current snapshot stale.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	s.log.Debug("Overlay invalidated", "generation", gen)
}

// Current returns the last good snapshot without fetching. It may be nil.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// LastError is the error of the most recent fetch, nil after a success.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) coolingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failedAt.IsZero() || s.failedGen != s.generation {
		return false
	}
	return s.now().Sub(s.failedAt) < s.opts.RetryBackoff
}

func (s *Store) fresh() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil || s.fetchedGen != s.generation {
		return nil, false
	}
	if s.opts.MaxAge > 0 && s.now().Sub(s.snap.FetchedAt) > s.opts.MaxAge {
		return nil, false
	}
	return s.snap, true
}

// refresh collapses concurrent fetches for the same generation into one. A
// fetch that started before an Invalidate does not satisfy readers after it.
func (s *Store) refresh(ctx context.Context, trigger string) (*Snapshot, error) {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	ch := s.group.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, gen, trigger)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *Store) fetch(ctx context.Context, gen uint64, trigger string) (*Snapshot, error) {
	ctx, span := observability.Tracer().Start(ctx, "overlay.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("overlay.trigger", trigger))

	start := s.now()
	deletions, err := s.src.ListDeletedItems(ctx)
	if err == nil {
		var edits []domain.TweetEdit
		edits, err = s.src.ListTweetEdits(ctx)
		if err == nil {
			snap := s.install(gen, deletions, edits, start)
			s.metrics.ObserveOverlayRefresh(trigger, nil, s.now().Sub(start))
			span.SetAttributes(attribute.Int64("overlay.version", int64(snap.Version)))
			return snap, nil
		}
	}
	span.RecordError(err)
	s.metrics.ObserveOverlayRefresh(trigger, err, s.now().Sub(start))
	s.mu.Lock()
	s.lastErr = err
	s.failedGen = gen
	s.failedAt = s.now()
	s.mu.Unlock()
	s.log.Error("Overlay fetch failed", "trigger", trigger, "error", err)
	return nil, fmt.Errorf("fetch overlay: %v: %w", err, pkgerrors.ErrUnavailable)
}

func (s *Store) install(gen uint64, deletions []domain.DeletedItem, edits []domain.TweetEdit, fetchedAt time.Time) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	s.failedAt = time.Time{}
	if gen > s.fetchedGen {
		s.fetchedGen = gen
	}
	if s.snap != nil && fetchedAt.Before(s.snap.FetchedAt) {
		// A newer fetch already landed.
		return s.snap
	}
	if s.snap != nil && sameRecords(s.snap, deletions, edits) {
		next := *s.snap
		next.FetchedAt = fetchedAt
		s.snap = &next
	} else {
		s.version++
		s.snap = &Snapshot{Deletions: deletions, Edits: edits, FetchedAt: fetchedAt, Version: s.version}
		s.log.Debug("Overlay snapshot installed", "version", s.version, "deletions", len(deletions), "edits", len(edits))
	}
	s.metrics.SetOverlaySnapshot(s.snap.Version, len(s.snap.Deletions), len(s.snap.Edits), 0)
	return s.snap
}

func sameRecords(prev *Snapshot, deletions []domain.DeletedItem, edits []domain.TweetEdit) bool {
	if len(prev.Deletions) != len(deletions) || len(prev.Edits) != len(edits) {
		return false
	}
	return reflect.DeepEqual(prev.Deletions, deletions) && reflect.DeepEqual(prev.Edits, edits)
}
