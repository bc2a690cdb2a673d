package whatsapp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestDedup(t *testing.T) (*Deduper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewDeduper(client, time.Hour), mr
}

func TestDeduper_FirstSeen(t *testing.T) {
	d, _ := setupTestDedup(t)
	ctx := context.Background()

	if !d.FirstSeen(ctx, "wamid.A1") {
		t.Error("first delivery should be reported as new")
	}
	if d.FirstSeen(ctx, "wamid.A1") {
		t.Error("redelivery of the same message ID should be reported as seen")
	}
}

func TestDeduper_IndependentIDs(t *testing.T) {
	d, _ := setupTestDedup(t)
	ctx := context.Background()

	d.FirstSeen(ctx, "wamid.A1")

	if !d.FirstSeen(ctx, "wamid.A2") {
		t.Error("a different message ID should still be new")
	}
}

func TestDeduper_EntriesExpire(t *testing.T) {
	d, mr := setupTestDedup(t)
	ctx := context.Background()

	d.FirstSeen(ctx, "wamid.A1")
	mr.FastForward(2 * time.Hour)

	if !d.FirstSeen(ctx, "wamid.A1") {
		t.Error("after the TTL window the ID should be treated as new again")
	}
}

func TestDeduper_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	d := NewDeduper(client, time.Hour)

	mr.Close()

	// Losing Redis must not drop real messages
	if !d.FirstSeen(context.Background(), "wamid.A1") {
		t.Error("dedup should fail open when redis is unreachable")
	}
}
