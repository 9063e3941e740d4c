package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// Invalidation tells other replicas that the overlay tables changed.
type Invalidation struct {
	Origin   string    `json:"origin"`
	Command  string    `json:"command"`
	ThreadID string    `json:"threadId,omitempty"`
	At       time.Time `json:"at"`
}

type InvalidationBus interface {
	Publish(ctx context.Context, msg Invalidation) error
	StartForwarder(ctx context.Context, onMsg func(m Invalidation)) error
	Origin() string
	Close() error
}

type invalidationBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

func NewInvalidationBus(rdb *goredis.Client, channel string, log *logger.Logger) (InvalidationBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel == "" {
		channel = "pearls:overlay"
	}
	return &invalidationBus{
		log:     log.With("service", "RedisInvalidationBus"),
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
	}, nil
}

func (b *invalidationBus) Origin() string { return b.origin }

func (b *invalidationBus) Publish(ctx context.Context, msg Invalidation) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis invalidation bus not initialized")
	}
	msg.Origin = b.origin
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder delivers invalidations published by other replicas. It
// returns once the subscription is live.
func (b *invalidationBus) StartForwarder(ctx context.Context, onMsg func(m Invalidation)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis invalidation bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				msg, forward := b.decode(m.Payload)
				if forward {
					onMsg(msg)
				}
			}
		}
	}()
	return nil
}

func (b *invalidationBus) decode(payload string) (Invalidation, bool) {
	var msg Invalidation
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.log.Warn("bad redis invalidation payload", "error", err)
		return msg, false
	}
	return msg, msg.Origin != b.origin
}

func (b *invalidationBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
