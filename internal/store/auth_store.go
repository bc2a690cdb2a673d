package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rasoihq/rasoi-backend/internal/domain"
)

// GetProfileByToken resolves a bearer token to the owning user's profile.
// Returns (nil, nil) for unknown or expired tokens.
func (s *PostgresStore) GetProfileByToken(ctx context.Context, token string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.pool.QueryRow(ctx, `
		SELECT p.user_id, p.restaurant_id, p.role, COALESCE(p.full_name, ''), p.created_at
		FROM api_tokens t
		JOIN profiles p ON p.user_id = t.user_id
		WHERE t.token = $1
		  AND (t.expires_at IS NULL OR t.expires_at > NOW())
	`, token).Scan(&p.UserID, &p.RestaurantID, &p.Role, &p.FullName, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving token: %w", err)
	}
	return &p, nil
}
