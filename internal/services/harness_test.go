package services

import (
	"context"
	"sync"
	"testing"

	"github.com/yungbote/pearls-backend/internal/clients/redis"
	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/data/repos"
	"github.com/yungbote/pearls-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/domain/content"
	"github.com/yungbote/pearls-backend/internal/overlaystore"
	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
	"gorm.io/gorm"
)

type fakeBus struct {
	mu   sync.Mutex
	msgs []redis.Invalidation
}

func (b *fakeBus) Publish(ctx context.Context, msg redis.Invalidation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return nil
}

func (b *fakeBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs)
}

type harness struct {
	db      *gorm.DB
	store   *overlaystore.Store
	bus     *fakeBus
	gateway MutationGateway
	content ContentService
	auth    AuthService
	admin   *types.User
	member  *types.User
}

func sampleCorpus() *corpus.Corpus {
	return corpus.New([]content.Thread{
		{
			ID: "T1", Type: "thread", Date: "2023-04-01", Year: 2023, TweetCount: 3, IsPearl: true,
			Categories: []string{"Pearl"},
			Tweets: []content.Tweet{
				{Text: "1/ Old text", Media: []content.Media{{Type: content.MediaImage, Path: "a.jpg"}}},
				{Text: "2/ middle"},
				{Text: "3/ end #echo"},
			},
		},
		{
			ID: "T2", Type: "single", Date: "2022-01-05", Year: 2022, TweetCount: 1,
			Categories: []string{"General"},
			Tweets:     []content.Tweet{{Text: "plain"}},
		},
		{
			ID: "T3", Type: "thread", Date: "2024-07-09", Year: 2024, TweetCount: 2,
			Categories: []string{"Case Study"},
			Tweets:     []content.Tweet{{Text: "first"}, {Text: "second"}},
		},
	})
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)

	userRepo := repos.NewUserRepo(db, log)
	deletedRepo := repos.NewDeletedItemRepo(db, log)
	editRepo := repos.NewTweetEditRepo(db, log)
	favRepo := repos.NewFavoriteRepo(db, log)

	store := overlaystore.New(repos.OverlaySnapshotSource{Deletions: deletedRepo, Edits: editRepo}, log, overlaystore.Options{})
	views := overlaystore.NewViews(sampleCorpus(), store, log, nil)
	shuffler := ordering.NewShuffler(ordering.NewMemoryStore(), 0, log)
	bus := &fakeBus{}

	ctx := context.Background()
	return &harness{
		db:      db,
		store:   store,
		bus:     bus,
		gateway: NewMutationGateway(log, deletedRepo, editRepo, favRepo, store, bus, nil),
		content: NewContentService(log, views, store, favRepo, shuffler),
		auth:    NewAuthService(log, userRepo, "test-secret", 0, "owner"),
		admin:   testutil.SeedUser(t, ctx, db, "admin-1", types.RoleAdmin),
		member:  testutil.SeedUser(t, ctx, db, "member-1", types.RoleUser),
	}
}

func as(u *types.User) context.Context {
	ctx := context.Background()
	if u == nil {
		return ctx
	}
	return ctxutil.WithPrincipal(ctx, &ctxutil.Principal{UserID: u.ID, OpenID: u.OpenID, Role: u.Role})
}
