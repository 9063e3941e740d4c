package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

func TestDecodeSkipsOwnOrigin(t *testing.T) {
	b := &invalidationBus{log: logger.Nop(), origin: "me"}
	if _, ok := b.decode(`{"origin":"me","command":"deleteThread"}`); ok {
		t.Fatalf("own message should not be forwarded")
	}
	msg, ok := b.decode(`{"origin":"other","command":"deleteThread","threadId":"T1"}`)
	if !ok || msg.ThreadID != "T1" {
		t.Fatalf("foreign message not forwarded: %+v ok=%v", msg, ok)
	}
	if _, ok := b.decode(`not json`); ok {
		t.Fatalf("bad payload should be dropped")
	}
}

func testAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	return addr
}

func TestInvalidationBusRoundTrip(t *testing.T) {
	addr := testAddr(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pubClient, err := NewClient(ctx, addr)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	subClient, err := NewClient(ctx, addr)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	channel := "pearls:test:" + time.Now().Format("150405.000000")
	pub, _ := NewInvalidationBus(pubClient, channel, logger.Nop())
	sub, _ := NewInvalidationBus(subClient, channel, logger.Nop())
	defer pub.Close()
	defer sub.Close()

	got := make(chan Invalidation, 1)
	if err := sub.StartForwarder(ctx, func(m Invalidation) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := pub.Publish(ctx, Invalidation{Command: "saveTweetEdit", ThreadID: "T1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Command != "saveTweetEdit" || m.Origin != pub.Origin() {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-ctx.Done():
		t.Fatalf("no invalidation received")
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	addr := testAddr(t)
	ctx := context.Background()
	rdb, err := NewClient(ctx, addr)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer rdb.Close()

	store := NewSessionStore(rdb, "pearls:test:shuffle:")
	id := "sess-" + time.Now().Format("150405.000000")
	if got, err := store.Get(ctx, id); err != nil || got != nil {
		t.Fatalf("Get missing: %+v %v", got, err)
	}
	if err := store.Put(ctx, id, ordering.Session{Seed: 99, Role: "user"}, time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil || got == nil || got.Seed != 99 {
		t.Fatalf("Get: %+v %v", got, err)
	}
}
