package ordering

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// Session pins a shuffle seed to a browsing session and the role it was issued for.
type Session struct {
	Seed     uint64    `json:"seed"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issuedAt"`
}

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Put(ctx context.Context, sessionID string, s Session, ttl time.Duration) error
}

// MemoryStore is a process-local SessionStore with lazy expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, sessionID)
		return nil, nil
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Put(ctx context.Context, sessionID string, s Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{session: s}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[sessionID] = e
	if len(m.entries)%256 == 0 {
		m.sweepLocked()
	}
	return nil
}

func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for id, e := range m.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}

// Shuffler hands out per-session seeds. A seed survives re-filtering and is
// replaced only on Reshuffle or when the caller's role changes.
type Shuffler struct {
	store SessionStore
	ttl   time.Duration
	log   *logger.Logger
	seed  func() uint64
	now   func() time.Time
}

func NewShuffler(store SessionStore, ttl time.Duration, baseLog *logger.Logger) *Shuffler {
	return &Shuffler{
		store: store,
		ttl:   ttl,
		log:   baseLog.With("component", "Shuffler"),
		seed:  randomSeed,
		now:   time.Now,
	}
}

// Seed returns the session's seed, issuing one if none exists yet. An empty
// session id gets a throwaway seed that is never stored.
func (s *Shuffler) Seed(ctx context.Context, sessionID, role string) (uint64, error) {
	if sessionID == "" {
		return s.seed(), nil
	}
	cur, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("load shuffle session: %w", err)
	}
	if cur != nil && cur.Role == role {
		return cur.Seed, nil
	}
	if cur != nil {
		s.log.Debug("Role changed, reshuffling", "session_id", sessionID, "from", cur.Role, "to", role)
	}
	return s.issue(ctx, sessionID, role)
}

// Reshuffle always issues a fresh seed.
func (s *Shuffler) Reshuffle(ctx context.Context, sessionID, role string) (uint64, error) {
	if sessionID == "" {
		return s.seed(), nil
	}
	return s.issue(ctx, sessionID, role)
}

func (s *Shuffler) issue(ctx context.Context, sessionID, role string) (uint64, error) {
	sess := Session{Seed: s.seed(), Role: role, IssuedAt: s.now().UTC()}
	if err := s.store.Put(ctx, sessionID, sess, s.ttl); err != nil {
		return 0, fmt.Errorf("store shuffle session: %w", err)
	}
	return sess.Seed, nil
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
