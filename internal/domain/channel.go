package domain

import "time"

// Channel is an external distribution channel (aggregator, OTA, booking
// platform) that receives availability snapshots for one restaurant.
type Channel struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	EndpointURL  string    `json:"endpoint_url"`
	SecretKey    string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateChannelRequest registers a new distribution channel for a tenant.
type CreateChannelRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	EndpointURL  string `json:"endpoint_url"`
}

// CreateChannelResponse returns the generated secret exactly once.
type CreateChannelResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SecretKey string `json:"secret_key"`
}

// AvailabilitySnapshot is the payload pushed to channel endpoints.
type AvailabilitySnapshot struct {
	RestaurantID string          `json:"restaurant_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Entities     []ServiceEntity `json:"entities"`
}
