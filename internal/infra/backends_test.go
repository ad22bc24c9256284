package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/tipslap/tipslap/internal/config"
	"github.com/tipslap/tipslap/internal/logging"
)

func TestOpenWithoutURLsUsesFallbacks(t *testing.T) {
	b, err := Open(context.Background(), config.Config{AppEnv: "development"}, logging.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if b.DB != nil || b.Cache != nil {
		t.Fatalf("expected no stores, got %+v", b)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenConnectsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	b, err := Open(context.Background(), config.Config{RedisURL: "redis://" + mr.Addr()}, logging.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	if b.Cache == nil {
		t.Fatal("expected a redis client")
	}
	if err := b.Cache.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestOpenRejectsBadRedisURL(t *testing.T) {
	if _, err := Open(context.Background(), config.Config{RedisURL: "://nope"}, logging.Discard()); err == nil {
		t.Fatal("expected an error for a malformed redis url")
	}
}
