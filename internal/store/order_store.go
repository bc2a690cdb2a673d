package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rasoihq/rasoi-backend/internal/domain"
)

// GetServiceEntity looks up a table/room by ID within a tenant.
// Returns (nil, nil) if it does not exist under that restaurant.
func (s *PostgresStore) GetServiceEntity(ctx context.Context, restaurantID, entityType, entityID string) (*domain.ServiceEntity, error) {
	var e domain.ServiceEntity
	err := s.pool.QueryRow(ctx, `
		SELECT id, restaurant_id, entity_type, label, status, updated_at
		FROM service_entities
		WHERE id = $1 AND restaurant_id = $2 AND entity_type = $3
	`, entityID, restaurantID, entityType).Scan(
		&e.ID, &e.RestaurantID, &e.EntityType, &e.Label, &e.Status, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying service entity: %w", err)
	}
	return &e, nil
}

// CountMenuItems returns how many of the given menu item IDs exist and
// are available under the restaurant.
func (s *PostgresStore) CountMenuItems(ctx context.Context, restaurantID string, itemIDs []string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM menu_items
		WHERE restaurant_id = $1 AND id = ANY($2) AND is_available = true
	`, restaurantID, itemIDs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting menu items: %w", err)
	}
	return count, nil
}

// CreateOrder inserts the order and its items in one transaction.
func (s *PostgresStore) CreateOrder(ctx context.Context, req domain.SubmitOrderRequest, orderNumber string) (*domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderID := uuid.NewString()

	var order domain.Order
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, restaurant_id, order_number, entity_type, entity_id,
			customer_name, customer_phone, special_instructions, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, restaurant_id, order_number, entity_type, entity_id,
			customer_name, customer_phone, COALESCE(special_instructions, ''),
			total_amount, status, created_at
	`, orderID, req.RestaurantID, orderNumber, req.EntityType, req.EntityID,
		req.CustomerName, req.CustomerPhone, nullIfEmpty(req.SpecialInstructions),
		req.TotalAmount, domain.OrderStatusPending,
	).Scan(
		&order.ID, &order.RestaurantID, &order.OrderNumber, &order.EntityType,
		&order.EntityID, &order.CustomerName, &order.CustomerPhone,
		&order.SpecialInstructions, &order.TotalAmount, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	for _, item := range req.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, quantity, price, modifiers)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), orderID, item.MenuItemID, item.Quantity, item.Price, item.Modifiers)
		if err != nil {
			return nil, fmt.Errorf("inserting order item %s: %w", item.MenuItemID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &order, nil
}

// EnqueueKitchenOrder links a new order into the kitchen queue.
func (s *PostgresStore) EnqueueKitchenOrder(ctx context.Context, orderID, restaurantID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kitchen_queue (id, order_id, restaurant_id, status)
		VALUES ($1, $2, $3, 'queued')
	`, uuid.NewString(), orderID, restaurantID)
	if err != nil {
		return fmt.Errorf("inserting kitchen queue entry: %w", err)
	}
	return nil
}

// UpdateEntityStatus sets the status of a table/room within a tenant.
func (s *PostgresStore) UpdateEntityStatus(ctx context.Context, restaurantID, entityID, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE service_entities SET status = $1, updated_at = NOW()
		WHERE id = $2 AND restaurant_id = $3
	`, status, entityID, restaurantID)
	if err != nil {
		return fmt.Errorf("updating entity status: %w", err)
	}
	return nil
}

// ListServiceEntities returns all tables/rooms for a restaurant.
func (s *PostgresStore) ListServiceEntities(ctx context.Context, restaurantID string) ([]domain.ServiceEntity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, restaurant_id, entity_type, label, status, updated_at
		FROM service_entities
		WHERE restaurant_id = $1
		ORDER BY entity_type, label
	`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("querying service entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.ServiceEntity
	for rows.Next() {
		var e domain.ServiceEntity
		err := rows.Scan(&e.ID, &e.RestaurantID, &e.EntityType, &e.Label, &e.Status, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning service entity: %w", err)
		}
		entities = append(entities, e)
	}

	if entities == nil {
		entities = []domain.ServiceEntity{}
	}

	return entities, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
