package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rasoihq/rasoi-backend/internal/domain"
	"github.com/rasoihq/rasoi-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

const SyncQueueKey = "channel_sync_queue"

// SyncJob is a single availability push to one channel, queued in Redis.
type SyncJob struct {
	ChannelID    string          `json:"channel_id"`
	RestaurantID string          `json:"restaurant_id"`
	ChannelName  string          `json:"channel_name"`
	EndpointURL  string          `json:"endpoint_url"`
	SecretKey    string          `json:"secret_key"`
	Snapshot     json.RawMessage `json:"snapshot"`
	Attempt      int             `json:"attempt"`
}

// SyncEngine fans an availability snapshot out to every active channel
// of a tenant via the Redis queue.
type SyncEngine struct {
	pgStore    *store.PostgresStore
	redisStore *store.RedisStore
	logger     *slog.Logger
}

func NewSyncEngine(pg *store.PostgresStore, rs *store.RedisStore, logger *slog.Logger) *SyncEngine {
	return &SyncEngine{
		pgStore:    pg,
		redisStore: rs,
		logger:     logger,
	}
}

// QueueSync snapshots the tenant's availability and queues one job per
// active channel. Returns the number of channels queued.
func (e *SyncEngine) QueueSync(ctx context.Context, restaurantID string) (int, error) {
	channels, err := e.pgStore.ListActiveChannels(ctx, restaurantID)
	if err != nil {
		return 0, fmt.Errorf("listing active channels: %w", err)
	}

	if len(channels) == 0 {
		e.logger.Info("no active channels to sync", "restaurant_id", restaurantID)
		return 0, nil
	}

	entities, err := e.pgStore.ListServiceEntities(ctx, restaurantID)
	if err != nil {
		return 0, fmt.Errorf("building availability snapshot: %w", err)
	}

	snapshot, err := json.Marshal(domain.AvailabilitySnapshot{
		RestaurantID: restaurantID,
		GeneratedAt:  time.Now().UTC(),
		Entities:     entities,
	})
	if err != nil {
		return 0, fmt.Errorf("marshaling snapshot: %w", err)
	}

	pipe := e.redisStore.Client().Pipeline()

	for _, ch := range channels {
		job := SyncJob{
			ChannelID:    ch.ID,
			RestaurantID: restaurantID,
			ChannelName:  ch.Name,
			EndpointURL:  ch.EndpointURL,
			SecretKey:    ch.SecretKey,
			Snapshot:     snapshot,
			Attempt:      1,
		}

		jobBytes, err := json.Marshal(job)
		if err != nil {
			e.logger.Error("failed to marshal sync job", "error", err, "channel_id", ch.ID)
			continue
		}

		pipe.ZAdd(ctx, SyncQueueKey, redis.Z{
			Score:  float64(time.Now().UnixMicro()),
			Member: string(jobBytes),
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("queuing sync jobs to redis: %w", err)
	}

	e.logger.Info("channel sync queued",
		"restaurant_id", restaurantID,
		"channels_queued", len(channels),
	)

	return len(channels), nil
}

// QueueDepth returns the number of sync jobs waiting in the queue.
func (e *SyncEngine) QueueDepth(ctx context.Context) (int64, error) {
	return e.redisStore.Client().ZCard(ctx, SyncQueueKey).Result()
}
