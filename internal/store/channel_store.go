package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rasoihq/rasoi-backend/internal/domain"
)

// CreateChannel registers a distribution channel and generates its
// signing secret. The secret is returned once and never listed again.
func (s *PostgresStore) CreateChannel(ctx context.Context, req domain.CreateChannelRequest) (*domain.Channel, error) {
	secretKey, err := generateChannelSecret()
	if err != nil {
		return nil, fmt.Errorf("generating channel secret: %w", err)
	}

	var ch domain.Channel
	err = s.pool.QueryRow(ctx, `
		INSERT INTO channels (id, restaurant_id, name, endpoint_url, secret_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, restaurant_id, name, endpoint_url, secret_key, is_active, created_at, updated_at
	`, uuid.NewString(), req.RestaurantID, req.Name, req.EndpointURL, secretKey).Scan(
		&ch.ID, &ch.RestaurantID, &ch.Name, &ch.EndpointURL, &ch.SecretKey,
		&ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting channel: %w", err)
	}
	return &ch, nil
}

// GetChannel fetches one channel scoped by tenant. Returns (nil, nil)
// when the channel does not exist under that restaurant.
func (s *PostgresStore) GetChannel(ctx context.Context, restaurantID, channelID string) (*domain.Channel, error) {
	var ch domain.Channel
	err := s.pool.QueryRow(ctx, `
		SELECT id, restaurant_id, name, endpoint_url, secret_key, is_active, created_at, updated_at
		FROM channels
		WHERE id = $1 AND restaurant_id = $2
	`, channelID, restaurantID).Scan(
		&ch.ID, &ch.RestaurantID, &ch.Name, &ch.EndpointURL, &ch.SecretKey,
		&ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying channel: %w", err)
	}
	return &ch, nil
}

// ListChannels returns all channels for a restaurant (secrets omitted
// from JSON via the domain struct tag).
func (s *PostgresStore) ListChannels(ctx context.Context, restaurantID string) ([]domain.Channel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, restaurant_id, name, endpoint_url, is_active, created_at, updated_at
		FROM channels
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
	`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		err := rows.Scan(&ch.ID, &ch.RestaurantID, &ch.Name, &ch.EndpointURL,
			&ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if channels == nil {
		channels = []domain.Channel{}
	}

	return channels, nil
}

// ListActiveChannels returns channels eligible for sync fan-out.
func (s *PostgresStore) ListActiveChannels(ctx context.Context, restaurantID string) ([]domain.Channel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, restaurant_id, name, endpoint_url, secret_key, is_active, created_at, updated_at
		FROM channels
		WHERE restaurant_id = $1 AND is_active = true
		ORDER BY created_at
	`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("querying active channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		err := rows.Scan(&ch.ID, &ch.RestaurantID, &ch.Name, &ch.EndpointURL,
			&ch.SecretKey, &ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if channels == nil {
		channels = []domain.Channel{}
	}

	return channels, nil
}

func generateChannelSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "chsk_" + hex.EncodeToString(bytes), nil
}
