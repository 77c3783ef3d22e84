package dedup

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, 24*time.Hour), mr
}

func TestRedisStoreReplay(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	prior, replay, err := s.Begin(ctx, "conv-1")
	if err != nil || replay || prior != nil {
		t.Fatalf("first Begin = %v,%v,%v", prior, replay, err)
	}

	decision := []byte(`{"conversation_stage":"confirming"}`)
	if err := s.Record(ctx, "conv-1", decision); err != nil {
		t.Fatal(err)
	}

	prior, replay, err = s.Begin(ctx, "conv-1")
	if err != nil || !replay || !bytes.Equal(prior, decision) {
		t.Fatalf("replay Begin = %s,%v,%v", prior, replay, err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, "conv-1", []byte("x")); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(25 * time.Hour)

	if _, replay, _ := s.Begin(ctx, "conv-1"); replay {
		t.Fatal("entry survived past the TTL")
	}
}

func TestRedisStoreKeysAreNamespaced(t *testing.T) {
	s, mr := newTestRedisStore(t)
	_ = s.Record(context.Background(), "conv-1", []byte("x"))
	if !mr.Exists("dedup:turn:conv-1") {
		t.Error("expected namespaced key")
	}
}
