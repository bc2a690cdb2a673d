package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rasoihq/rasoi-backend/internal/domain"
)

// GetOpenClockEntry returns the staff member's open session (clock_out
// IS NULL), or (nil, nil) when there is none.
func (s *PostgresStore) GetOpenClockEntry(ctx context.Context, staffID, restaurantID string) (*domain.ClockEntry, error) {
	var e domain.ClockEntry
	err := s.pool.QueryRow(ctx, `
		SELECT id, staff_id, restaurant_id, clock_in, clock_out, COALESCE(notes, ''), created_at
		FROM staff_clock_entries
		WHERE staff_id = $1 AND restaurant_id = $2 AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1
	`, staffID, restaurantID).Scan(
		&e.ID, &e.StaffID, &e.RestaurantID, &e.ClockIn, &e.ClockOut, &e.Notes, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying open clock entry: %w", err)
	}
	return &e, nil
}

// CreateClockEntry opens a new shift session. Returns (nil, nil) when a
// concurrent clock-in won the race: the partial unique index on open
// sessions rejects the second insert.
func (s *PostgresStore) CreateClockEntry(ctx context.Context, staffID, restaurantID, notes string) (*domain.ClockEntry, error) {
	var e domain.ClockEntry
	err := s.pool.QueryRow(ctx, `
		INSERT INTO staff_clock_entries (id, staff_id, restaurant_id, clock_in, notes)
		VALUES ($1, $2, $3, NOW(), $4)
		RETURNING id, staff_id, restaurant_id, clock_in, clock_out, COALESCE(notes, ''), created_at
	`, uuid.NewString(), staffID, restaurantID, nullIfEmpty(notes)).Scan(
		&e.ID, &e.StaffID, &e.RestaurantID, &e.ClockIn, &e.ClockOut, &e.Notes, &e.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil
		}
		return nil, fmt.Errorf("inserting clock entry: %w", err)
	}
	return &e, nil
}

// CloseClockEntry stamps clock_out on an open session.
func (s *PostgresStore) CloseClockEntry(ctx context.Context, entryID, notes string) (*domain.ClockEntry, error) {
	var e domain.ClockEntry
	err := s.pool.QueryRow(ctx, `
		UPDATE staff_clock_entries
		SET clock_out = NOW(),
		    notes = COALESCE(NULLIF($2, ''), notes)
		WHERE id = $1 AND clock_out IS NULL
		RETURNING id, staff_id, restaurant_id, clock_in, clock_out, COALESCE(notes, ''), created_at
	`, entryID, notes).Scan(
		&e.ID, &e.StaffID, &e.RestaurantID, &e.ClockIn, &e.ClockOut, &e.Notes, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("closing clock entry: %w", err)
	}
	return &e, nil
}
