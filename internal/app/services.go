package app

import (
	"fmt"

	"github.com/yungbote/pearls-backend/internal/clients/redis"
	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/observability"
	"github.com/yungbote/pearls-backend/internal/overlaystore"
	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
	"github.com/yungbote/pearls-backend/internal/services"
)

type Services struct {
	Store     *overlaystore.Store
	Views     *overlaystore.Views
	Refresher *overlaystore.Refresher
	Shuffler  *ordering.Shuffler

	Auth    services.AuthService
	Content services.ContentService
	Gateway services.MutationGateway
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients, c *corpus.Corpus, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	store := overlaystore.New(reposet.overlaySource(), log, overlaystore.Options{
		MaxAge:       cfg.OverlayMaxAge,
		FetchTimeout: cfg.OverlayFetchTimeout,
		Metrics:      metrics,
	})
	refresher, err := overlaystore.NewRefresher(store, cfg.OverlayRefreshSpec, log)
	if err != nil {
		return Services{}, fmt.Errorf("init overlay refresher: %w", err)
	}
	views := overlaystore.NewViews(c, store, log, metrics)

	var sessions ordering.SessionStore = ordering.NewMemoryStore()
	if clients.Redis != nil {
		sessions = redis.NewSessionStore(clients.Redis, "")
	}
	shuffler := ordering.NewShuffler(sessions, cfg.SessionTTL, log)

	return Services{
		Store:     store,
		Views:     views,
		Refresher: refresher,
		Shuffler:  shuffler,
		Auth:      services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.OwnerOpenID),
		Content:   services.NewContentService(log, views, store, reposet.Favorite, shuffler),
		Gateway: services.NewMutationGateway(
			log,
			reposet.DeletedItem,
			reposet.TweetEdit,
			reposet.Favorite,
			store,
			clients.InvalidationBus,
			metrics,
		),
	}, nil
}
