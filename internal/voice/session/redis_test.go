package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

func redisClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return rdb
}

func TestRedisStoreMirrorsAndEvictsAcrossInstances(t *testing.T) {
	rdb := redisClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := NewRedisStore(nil, rdb, PolicyReplace, time.Minute)
	b := NewRedisStore(nil, rdb, PolicyReplace, time.Minute)
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start a: %v", err)
	}
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start b: %v", err)
	}

	user := uuid.New()
	first, err := a.Create(ctx, user, "conn-a")
	if err != nil {
		t.Fatalf("Create on a: %v", err)
	}
	first.Lock()
	first.SetMode(ModeLesson)
	first.Unlock()
	if err := a.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	mirrored, ok, err := b.Get(ctx, user)
	if err != nil || !ok || mirrored.Mode != ModeLesson {
		t.Fatalf("mirror on b: ok=%v err=%v sess=%+v", ok, err, mirrored)
	}

	if _, err := b.Create(ctx, user, "conn-b"); err != nil {
		t.Fatalf("Create on b: %v", err)
	}
	select {
	case <-first.Evicted():
	case <-time.After(2 * time.Second):
		t.Fatalf("instance a never evicted its session")
	}

	// A stale save from the evicted owner must not clobber the new state.
	first.Lock()
	first.SetMode(ModeQuiz)
	first.Unlock()
	_ = a.Save(ctx, first)
	_ = a.Remove(ctx, user, "conn-a")
	got, ok, _ := b.Get(ctx, user)
	if !ok || got.ID != "conn-b" || got.Mode != ModeIdle {
		t.Fatalf("replacement session damaged: ok=%v %+v", ok, got)
	}
	_ = b.Remove(ctx, user, "conn-b")
}
