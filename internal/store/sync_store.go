package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncAttemptRecord holds data for recording one channel sync attempt.
type SyncAttemptRecord struct {
	ChannelID      string
	RestaurantID   string
	Status         string
	HTTPStatusCode *int
	ResponseBody   string
	ResponseTimeMs int
	ErrorMessage   string
}

// SyncAttempt is a recorded channel sync attempt.
type SyncAttempt struct {
	ID             string    `json:"id"`
	ChannelID      string    `json:"channel_id"`
	RestaurantID   string    `json:"restaurant_id"`
	Status         string    `json:"status"`
	HTTPStatusCode *int      `json:"http_status_code,omitempty"`
	ResponseBody   string    `json:"response_body,omitempty"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordSyncAttempt inserts a sync attempt into the database.
func (s *PostgresStore) RecordSyncAttempt(ctx context.Context, rec SyncAttemptRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO channel_sync_attempts (id, channel_id, restaurant_id, status,
			http_status_code, response_body, response_time_ms, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), rec.ChannelID, rec.RestaurantID, rec.Status,
		rec.HTTPStatusCode, nullIfEmpty(rec.ResponseBody), rec.ResponseTimeMs,
		nullIfEmpty(rec.ErrorMessage))
	if err != nil {
		return fmt.Errorf("inserting sync attempt: %w", err)
	}
	return nil
}

// ListSyncAttempts returns recent sync attempts for a tenant, optionally
// filtered by channel.
func (s *PostgresStore) ListSyncAttempts(ctx context.Context, restaurantID, channelID string, limit int) ([]SyncAttempt, error) {
	query := `
		SELECT id, channel_id, restaurant_id, status, http_status_code,
			COALESCE(response_body, ''), response_time_ms, COALESCE(error_message, ''), created_at
		FROM channel_sync_attempts
		WHERE restaurant_id = $1`
	args := []interface{}{restaurantID}

	if channelID != "" {
		query += " AND channel_id = $2"
		args = append(args, channelID)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync attempts: %w", err)
	}
	defer rows.Close()

	var attempts []SyncAttempt
	for rows.Next() {
		var a SyncAttempt
		err := rows.Scan(&a.ID, &a.ChannelID, &a.RestaurantID, &a.Status,
			&a.HTTPStatusCode, &a.ResponseBody, &a.ResponseTimeMs, &a.ErrorMessage, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning sync attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if attempts == nil {
		attempts = []SyncAttempt{}
	}

	return attempts, nil
}
