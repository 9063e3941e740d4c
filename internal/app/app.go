package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/pearls-backend/internal/clients/redis"
	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/data/db"
	apphttp "github.com/yungbote/pearls-backend/internal/http"
	"github.com/yungbote/pearls-backend/internal/observability"
	"github.com/yungbote/pearls-backend/internal/pkg/envutil"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Corpus   *corpus.Corpus
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	dbService    *db.DatabaseService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "pearls-backend",
		Environment: cfg.Environment,
	})

	dbs, err := db.NewDatabaseService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbs.DB()
	metrics.RegisterDBStats(log, theDB, dbs.Driver())

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	c := loadCorpus(ctx, log, cfg, clients)
	if c != nil {
		metrics.SetCorpusThreads(len(c.Threads))
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(log, cfg, reposet, clients, c, metrics)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset, c)
	middleware := wireMiddleware(log, cfg, serviceset, metrics)
	router := wireRouter(log, cfg, handlerset, middleware, metrics, envutil.Bool("OTEL_ENABLED", false))

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Corpus:       c,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		dbService:    dbs,
		otelShutdown: otelShutdown,
	}, nil
}

// loadCorpus returns nil when the corpus cannot be read. The server still
// starts; content reads then fail with corpus_unavailable.
func loadCorpus(ctx context.Context, log *logger.Logger, cfg Config, clients Clients) *corpus.Corpus {
	src, err := corpus.ParseSource(cfg.CorpusSource, clients.GcsReader)
	if err != nil {
		log.Error("Invalid CORPUS_SOURCE", "source", cfg.CorpusSource, "error", err)
		return nil
	}
	loadCtx, cancel := context.WithTimeout(ctx, cfg.CorpusLoadTimeout)
	defer cancel()
	c, err := corpus.NewLoader(src, log).Load(loadCtx)
	if err != nil {
		log.Error("Corpus load failed", "source", cfg.CorpusSource, "error", err)
		return nil
	}
	return c
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	// Overlay refresh
	a.Services.Refresher.Start()
	go func() {
		if _, err := a.Services.Store.Refresh(ctx, "startup"); err != nil {
			a.Log.Warn("Initial overlay fetch failed", "error", err)
		}
	}()

	// Cross-replica invalidation
	if a.Clients.InvalidationBus != nil {
		store := a.Services.Store
		log := a.Log
		err := a.Clients.InvalidationBus.StartForwarder(ctx, func(m redis.Invalidation) {
			log.Debug("Remote overlay invalidation", "command", m.Command, "thread_id", m.ThreadID, "origin", m.Origin)
			store.Invalidate()
		})
		if err != nil {
			a.Log.Warn("Invalidation forwarder not started", "error", err)
		}
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", addr)
	return (&apphttp.Server{Engine: a.Router}).Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Refresher != nil {
		<-a.Services.Refresher.Stop().Done()
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
