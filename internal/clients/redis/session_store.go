package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
)

// SessionStore keeps shuffle sessions in Redis so every replica serves the
// same permutation to a session.
type SessionStore struct {
	rdb    goredis.Cmdable
	prefix string
}

func NewSessionStore(rdb goredis.Cmdable, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "pearls:shuffle:"
	}
	return &SessionStore{rdb: rdb, prefix: prefix}
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*ordering.Session, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess ordering.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// Treat a corrupt entry as absent; the caller issues a new seed.
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Put(ctx context.Context, sessionID string, sess ordering.Session, ttl time.Duration) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.prefix+sessionID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
