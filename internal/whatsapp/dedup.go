package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper tracks processed message IDs in Redis so redelivered webhook
// events are acknowledged without being processed twice. The platform
// retries deliveries and makes no exactly-once guarantee.
type Deduper struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewDeduper creates a deduper. Keys expire after ttl; the platform's
// retry horizon is well under a day, so 24h is comfortable.
func NewDeduper(redisClient *redis.Client, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduper{redisClient: redisClient, ttl: ttl}
}

func dedupKey(messageID string) string {
	return fmt.Sprintf("wa:seen:%s", messageID)
}

// FirstSeen atomically marks messageID as processed and reports whether
// this was the first time. On Redis failure it returns true — a rare
// duplicate write is preferable to dropping real messages.
func (d *Deduper) FirstSeen(ctx context.Context, messageID string) bool {
	ok, err := d.redisClient.SetNX(ctx, dedupKey(messageID), 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
