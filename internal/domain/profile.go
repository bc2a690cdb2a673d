package domain

import "time"

// Profile links an authenticated user to their tenant. Every tenant-scoped
// operation derives its restaurant scope from here, never from the request
// body alone.
type Profile struct {
	UserID       string    `json:"user_id"`
	RestaurantID string    `json:"restaurant_id"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceEntity is a bookable unit of a restaurant or hotel: a dining
// table or a guest room.
type ServiceEntity struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	EntityType   string    `json:"entity_type"`
	Label        string    `json:"label"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Service entity statuses.
const (
	EntityStatusAvailable = "available"
	EntityStatusOccupied  = "occupied"
	EntityStatusCleaning  = "cleaning"
)
