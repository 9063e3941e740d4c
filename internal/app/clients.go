package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pearls-backend/internal/clients/gcp"
	"github.com/yungbote/pearls-backend/internal/clients/redis"
	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type Clients struct {
	Redis           *goredis.Client
	InvalidationBus redis.InvalidationBus
	GcsReader       gcp.ObjectReader
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		bus, err := redis.NewInvalidationBus(rdb, cfg.RedisChannel, log)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis invalidation bus: %w", err)
		}
		out.Redis = rdb
		out.InvalidationBus = bus
	}

	// Gcs, only when the corpus lives there
	if corpus.IsGCS(cfg.CorpusSource) {
		reader, err := gcp.NewObjectReader(ctx, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init gcs reader: %w", err)
		}
		out.GcsReader = reader
	}
	return out, nil
}

func (c Clients) Close() {
	if c.GcsReader != nil {
		_ = c.GcsReader.Close()
	}
	if c.InvalidationBus != nil {
		_ = c.InvalidationBus.Close()
	} else if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
