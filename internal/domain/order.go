package domain

import (
	"encoding/json"
	"time"
)

// Entity types an order can be placed against.
const (
	EntityTable = "table"
	EntityRoom  = "room"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID                  string      `json:"id"`
	RestaurantID        string      `json:"restaurant_id"`
	OrderNumber         string      `json:"order_number"`
	EntityType          string      `json:"entity_type"`
	EntityID            string      `json:"entity_id"`
	CustomerName        string      `json:"customer_name"`
	CustomerPhone       string      `json:"customer_phone"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	TotalAmount         float64     `json:"total_amount"`
	Status              string      `json:"status"`
	Items               []OrderItem `json:"items,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	MenuItemID string          `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Price      float64         `json:"price"`
	Modifiers  json.RawMessage `json:"modifiers,omitempty"`
}

// SubmitOrderRequest is the QR-ordering payload sent by customer browsers.
type SubmitOrderRequest struct {
	RestaurantID        string             `json:"restaurantId"`
	EntityType          string             `json:"entityType"`
	EntityID            string             `json:"entityId"`
	CustomerName        string             `json:"customerName"`
	CustomerPhone       string             `json:"customerPhone"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
	Items               []SubmitOrderItem  `json:"items"`
	TotalAmount         float64            `json:"totalAmount"`
}

type SubmitOrderItem struct {
	MenuItemID string          `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	Price      float64         `json:"price"`
	Modifiers  json.RawMessage `json:"modifiers,omitempty"`
}
