package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pearls-backend/internal/data/repos"
	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/overlaystore"
	"github.com/yungbote/pearls-backend/internal/pipeline/filter"
	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// roleAnonymous keys shuffle sessions of callers without a principal.
const roleAnonymous = "anonymous"

type ContentQuery struct {
	Filter filter.State
	Sort   ordering.Mode
}

type ContentService interface {
	Threads(ctx context.Context, q ContentQuery) (*filter.Result, error)
	Thread(ctx context.Context, threadID string) (*types.ResolvedThread, error)
	Tweets(ctx context.Context, q ContentQuery) (*filter.ItemResult, error)
	DeletedItems(ctx context.Context) ([]types.DeletedItem, error)
	TweetEdits(ctx context.Context) ([]types.TweetEdit, error)
	Reshuffle(ctx context.Context) error
}

type contentService struct {
	log          *logger.Logger
	views        *overlaystore.Views
	store        *overlaystore.Store
	favoriteRepo repos.FavoriteRepo
	shuffler     *ordering.Shuffler
}

func NewContentService(
	log *logger.Logger,
	views *overlaystore.Views,
	store *overlaystore.Store,
	favoriteRepo repos.FavoriteRepo,
	shuffler *ordering.Shuffler,
) ContentService {
	return &contentService{
		log:          log.With("service", "ContentService"),
		views:        views,
		store:        store,
		favoriteRepo: favoriteRepo,
		shuffler:     shuffler,
	}
}

func (cs *contentService) Threads(ctx context.Context, q ContentQuery) (*filter.Result, error) {
	view, err := cs.views.Current(ctx)
	if err != nil {
		return nil, err
	}
	favs, err := cs.favoriteSet(ctx, q.Filter.FavoritesOnly)
	if err != nil {
		return nil, err
	}
	res := filter.Apply(view.Threads, q.Filter, favs)
	res.Visible = ordering.Threads(res.Visible, q.Sort, cs.permutation(ctx, q.Sort))
	return &res, nil
}

func (cs *contentService) Thread(ctx context.Context, threadID string) (*types.ResolvedThread, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, fmt.Errorf("thread id required: %w", pkgerrors.ErrInvalidArgument)
	}
	view, err := cs.views.Current(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := view.Thread(threadID)
	if !ok {
		return nil, fmt.Errorf("thread %q: %w", threadID, pkgerrors.ErrNotFound)
	}
	return t, nil
}

func (cs *contentService) Tweets(ctx context.Context, q ContentQuery) (*filter.ItemResult, error) {
	view, err := cs.views.Current(ctx)
	if err != nil {
		return nil, err
	}
	favs, err := cs.favoriteSet(ctx, q.Filter.FavoritesOnly)
	if err != nil {
		return nil, err
	}
	res := filter.ApplyItems(filter.Flatten(view.Threads), q.Filter, favs)
	res.Items = ordering.Items(res.Items, q.Sort, cs.permutation(ctx, q.Sort))
	return &res, nil
}

func (cs *contentService) DeletedItems(ctx context.Context) ([]types.DeletedItem, error) {
	snap, err := cs.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Deletions, nil
}

func (cs *contentService) TweetEdits(ctx context.Context) ([]types.TweetEdit, error) {
	snap, err := cs.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Edits, nil
}

func (cs *contentService) Reshuffle(ctx context.Context) error {
	if _, err := cs.shuffler.Reshuffle(ctx, ctxutil.GetSessionID(ctx), callerRole(ctx)); err != nil {
		return fmt.Errorf("reshuffle: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	return nil
}

// favoriteSet loads the caller's favorites only when the filter needs them.
// Anonymous callers get a nil set.
func (cs *contentService) favoriteSet(ctx context.Context, needed bool) (filter.FavoriteSet, error) {
	p := ctxutil.GetPrincipal(ctx)
	if !needed || p == nil {
		return nil, nil
	}
	ids, err := cs.favoriteRepo.ListThreadIDs(dbctx.Context{Ctx: ctx}, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	return filter.NewFavoriteSet(ids), nil
}

// permutation returns nil unless mode is random. A session store failure
// degrades to an unpinned shuffle rather than failing the read.
func (cs *contentService) permutation(ctx context.Context, mode ordering.Mode) ordering.Permutation {
	if mode != ordering.ModeRandom {
		return nil
	}
	sessionID := ctxutil.GetSessionID(ctx)
	seed, err := cs.shuffler.Seed(ctx, sessionID, callerRole(ctx))
	if err != nil {
		cs.log.Warn("Shuffle session unavailable", "session_id", sessionID, "error", err)
		seed, _ = cs.shuffler.Seed(ctx, "", "")
	}
	return ordering.NewPermutation(cs.views.CorpusIDs(), seed)
}

func callerRole(ctx context.Context) string {
	if p := ctxutil.GetPrincipal(ctx); p != nil {
		return p.Role
	}
	return roleAnonymous
}
