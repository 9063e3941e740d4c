package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/pearls-backend/internal/clients/redis"
	"github.com/yungbote/pearls-backend/internal/data/repos"
	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/observability"
	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

const (
	CmdDeleteThread    = "deleteThread"
	CmdDeleteTweet     = "deleteTweet"
	CmdRestoreThread   = "restoreThread"
	CmdRestoreTweet    = "restoreTweet"
	CmdSaveTweetEdit   = "saveTweetEdit"
	CmdDeleteTweetEdit = "deleteTweetEdit"
	CmdListFavorites   = "listFavorites"
	CmdAddFavorite     = "addFavorite"
	CmdRemoveFavorite  = "removeFavorite"
	CmdToggleFavorite  = "toggleFavorite"
)

// SaveTweetEditInput replaces any prior edit for the key. A nil EditedText or
// empty HiddenMedia means that part of the tweet shows its original content.
type SaveTweetEditInput struct {
	ThreadID    string
	TweetIndex  int
	EditedText  *string
	HiddenMedia []string
}

// Invalidator is told after every overlay write.
type Invalidator interface {
	Invalidate()
}

type InvalidationPublisher interface {
	Publish(ctx context.Context, msg redis.Invalidation) error
}

// MutationGateway is the only writer of overlay state. Every command checks
// authorization before touching storage.
type MutationGateway interface {
	DeleteThread(ctx context.Context, threadID string) error
	DeleteTweet(ctx context.Context, threadID string, tweetIndex int) error
	RestoreThread(ctx context.Context, threadID string) error
	RestoreTweet(ctx context.Context, threadID string, tweetIndex int) error
	SaveTweetEdit(ctx context.Context, in SaveTweetEditInput) error
	DeleteTweetEdit(ctx context.Context, threadID string, tweetIndex int) error

	ListFavorites(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, threadID string) error
	RemoveFavorite(ctx context.Context, threadID string) error
	ToggleFavorite(ctx context.Context, threadID string) (bool, error)
}

type mutationGateway struct {
	log             *logger.Logger
	deletedItemRepo repos.DeletedItemRepo
	tweetEditRepo   repos.TweetEditRepo
	favoriteRepo    repos.FavoriteRepo
	store           Invalidator
	bus             InvalidationPublisher
	metrics         *observability.Metrics
	now             func() time.Time
}

// NewMutationGateway wires the overlay writers. bus may be nil on a single replica.
func NewMutationGateway(
	log *logger.Logger,
	deletedItemRepo repos.DeletedItemRepo,
	tweetEditRepo repos.TweetEditRepo,
	favoriteRepo repos.FavoriteRepo,
	store Invalidator,
	bus InvalidationPublisher,
	metrics *observability.Metrics,
) MutationGateway {
	return &mutationGateway{
		log:             log.With("service", "MutationGateway"),
		deletedItemRepo: deletedItemRepo,
		tweetEditRepo:   tweetEditRepo,
		favoriteRepo:    favoriteRepo,
		store:           store,
		bus:             bus,
		metrics:         metrics,
		now:             time.Now,
	}
}

func (g *mutationGateway) DeleteThread(ctx context.Context, threadID string) error {
	return g.adminWrite(ctx, CmdDeleteThread, threadID, 0, func(dbc dbctx.Context, p *ctxutil.Principal, id string) error {
		created, err := g.deletedItemRepo.AddThread(dbc, id, &p.UserID)
		if err == nil && !created {
			g.log.Debug("Thread already deleted", "thread_id", id)
		}
		return err
	})
}

func (g *mutationGateway) DeleteTweet(ctx context.Context, threadID string, tweetIndex int) error {
	return g.adminWrite(ctx, CmdDeleteTweet, threadID, tweetIndex, func(dbc dbctx.Context, p *ctxutil.Principal, id string) error {
		created, err := g.deletedItemRepo.AddTweet(dbc, id, tweetIndex, &p.UserID)
		if err == nil && !created {
			g.log.Debug("Tweet already deleted", "thread_id", id, "tweet_index", tweetIndex)
		}
		return err
	})
}

func (g *mutationGateway) RestoreThread(ctx context.Context, threadID string) error {
	return g.adminWrite(ctx, CmdRestoreThread, threadID, 0, func(dbc dbctx.Context, _ *ctxutil.Principal, id string) error {
		_, err := g.deletedItemRepo.RemoveThread(dbc, id)
		return err
	})
}

func (g *mutationGateway) RestoreTweet(ctx context.Context, threadID string, tweetIndex int) error {
	return g.adminWrite(ctx, CmdRestoreTweet, threadID, tweetIndex, func(dbc dbctx.Context, _ *ctxutil.Principal, id string) error {
		_, err := g.deletedItemRepo.RemoveTweet(dbc, id, tweetIndex)
		return err
	})
}

func (g *mutationGateway) SaveTweetEdit(ctx context.Context, in SaveTweetEditInput) error {
	return g.adminWrite(ctx, CmdSaveTweetEdit, in.ThreadID, in.TweetIndex, func(dbc dbctx.Context, p *ctxutil.Principal, id string) error {
		return g.tweetEditRepo.Upsert(dbc, &types.TweetEdit{
			ThreadID:    id,
			TweetIndex:  in.TweetIndex,
			EditedText:  in.EditedText,
			HiddenMedia: types.EncodeHiddenMedia(in.HiddenMedia),
			EditedAt:    g.now().UTC(),
			EditedBy:    &p.UserID,
		})
	})
}

func (g *mutationGateway) DeleteTweetEdit(ctx context.Context, threadID string, tweetIndex int) error {
	return g.adminWrite(ctx, CmdDeleteTweetEdit, threadID, tweetIndex, func(dbc dbctx.Context, _ *ctxutil.Principal, id string) error {
		_, err := g.tweetEditRepo.Delete(dbc, id, tweetIndex)
		return err
	})
}

func (g *mutationGateway) ListFavorites(ctx context.Context) ([]string, error) {
	p, err := requireUser(ctx)
	if err != nil {
		g.metrics.IncMutation(CmdListFavorites, outcome(err))
		return nil, err
	}
	ids, err := g.favoriteRepo.ListThreadIDs(dbctx.Context{Ctx: ctx}, p.UserID)
	if err != nil {
		return nil, storageErr(CmdListFavorites, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (g *mutationGateway) AddFavorite(ctx context.Context, threadID string) error {
	return g.userWrite(ctx, CmdAddFavorite, threadID, func(dbc dbctx.Context, p *ctxutil.Principal, id string) error {
		_, err := g.favoriteRepo.Add(dbc, p.UserID, id)
		return err
	})
}

func (g *mutationGateway) RemoveFavorite(ctx context.Context, threadID string) error {
	return g.userWrite(ctx, CmdRemoveFavorite, threadID, func(dbc dbctx.Context, p *ctxutil.Principal, id string) error {
		_, err := g.favoriteRepo.Remove(dbc, p.UserID, id)
		return err
	})
}

// ToggleFavorite flips membership and reports whether the thread is now a favorite.
func (g *mutationGateway) ToggleFavorite(ctx context.Context, threadID string) (bool, error) {
	var now bool
	err := g.userWrite(ctx, CmdToggleFavorite, threadID, func(dbc dbctx.Context, p *ctxutil.Principal, id string) error {
		exists, err := g.favoriteRepo.Exists(dbc, p.UserID, id)
		if err != nil {
			return err
		}
		if exists {
			_, err = g.favoriteRepo.Remove(dbc, p.UserID, id)
			return err
		}
		now = true
		_, err = g.favoriteRepo.Add(dbc, p.UserID, id)
		return err
	})
	if err != nil {
		return false, err
	}
	return now, nil
}

type writeFunc func(dbc dbctx.Context, p *ctxutil.Principal, threadID string) error

func (g *mutationGateway) adminWrite(ctx context.Context, cmd, threadID string, tweetIndex int, fn writeFunc) error {
	p, err := requireAdmin(ctx)
	if err == nil {
		err = validateTarget(threadID, tweetIndex)
	}
	if err != nil {
		g.metrics.IncMutation(cmd, outcome(err))
		g.log.Debug("Mutation rejected", "command", cmd, "error", err)
		return fmt.Errorf("%s: %w", cmd, err)
	}
	threadID = strings.TrimSpace(threadID)
	if err := fn(dbctx.Context{Ctx: ctx}, p, threadID); err != nil {
		g.metrics.IncMutation(cmd, "error")
		g.log.Warn("Mutation failed", "command", cmd, "thread_id", threadID, "error", err)
		return storageErr(cmd, err)
	}
	g.metrics.IncMutation(cmd, "ok")
	g.log.Info("Overlay mutated", "command", cmd, "thread_id", threadID, "tweet_index", tweetIndex, "user_id", p.UserID)
	g.invalidate(ctx, cmd, threadID)
	return nil
}

func (g *mutationGateway) userWrite(ctx context.Context, cmd, threadID string, fn writeFunc) error {
	p, err := requireUser(ctx)
	if err == nil {
		err = validateTarget(threadID, 0)
	}
	if err != nil {
		g.metrics.IncMutation(cmd, outcome(err))
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if err := fn(dbctx.Context{Ctx: ctx}, p, strings.TrimSpace(threadID)); err != nil {
		g.metrics.IncMutation(cmd, "error")
		g.log.Warn("Favorite write failed", "command", cmd, "user_id", p.UserID, "error", err)
		return storageErr(cmd, err)
	}
	g.metrics.IncMutation(cmd, "ok")
	return nil
}

// invalidate marks the local snapshot stale and tells other replicas. A
// publish failure only delays convergence until their next refresh.
func (g *mutationGateway) invalidate(ctx context.Context, cmd, threadID string) {
	if g.store != nil {
		g.store.Invalidate()
	}
	if g.bus == nil {
		return
	}
	msg := redis.Invalidation{Command: cmd, ThreadID: threadID, At: g.now().UTC()}
	if err := g.bus.Publish(context.WithoutCancel(ctx), msg); err != nil {
		g.log.Warn("Publish invalidation failed", "command", cmd, "error", err)
	}
}

func requireAdmin(ctx context.Context) (*ctxutil.Principal, error) {
	p, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, pkgerrors.ErrForbidden
	}
	return p, nil
}

func requireUser(ctx context.Context) (*ctxutil.Principal, error) {
	p := ctxutil.GetPrincipal(ctx)
	if p == nil || p.UserID == 0 {
		return nil, pkgerrors.ErrUnauthorized
	}
	return p, nil
}

func validateTarget(threadID string, tweetIndex int) error {
	if strings.TrimSpace(threadID) == "" {
		return fmt.Errorf("thread id required: %w", pkgerrors.ErrInvalidArgument)
	}
	if tweetIndex < 0 {
		return fmt.Errorf("tweet index %d: %w", tweetIndex, pkgerrors.ErrInvalidArgument)
	}
	return nil
}

func storageErr(cmd string, err error) error {
	return fmt.Errorf("%s: %w: %w", cmd, pkgerrors.ErrUnavailable, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, pkgerrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
