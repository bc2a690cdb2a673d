package api

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rasoihq/rasoi-backend/internal/auth"
	"github.com/rasoihq/rasoi-backend/internal/domain"
	"github.com/rasoihq/rasoi-backend/internal/engine"
	"github.com/rasoihq/rasoi-backend/internal/metrics"
	"github.com/rasoihq/rasoi-backend/internal/websocket"
)

// OrderStore is the slice of the store the order handler needs.
type OrderStore interface {
	GetServiceEntity(ctx context.Context, restaurantID, entityType, entityID string) (*domain.ServiceEntity, error)
	CountMenuItems(ctx context.Context, restaurantID string, itemIDs []string) (int, error)
	CreateOrder(ctx context.Context, req domain.SubmitOrderRequest, orderNumber string) (*domain.Order, error)
	EnqueueKitchenOrder(ctx context.Context, orderID, restaurantID string) error
	UpdateEntityStatus(ctx context.Context, restaurantID, entityID, status string) error
}

// OrderHandler accepts QR-code order submissions from customer devices.
type OrderHandler struct {
	store       OrderStore
	rateLimiter *engine.RateLimiter
	hub         *websocket.Hub
	rateLimit   int
	logger      *slog.Logger
}

func NewOrderHandler(s OrderStore, rl *engine.RateLimiter, hub *websocket.Hub, rateLimit int, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		store:       s,
		rateLimiter: rl,
		hub:         hub,
		rateLimit:   rateLimit,
		logger:      logger,
	}
}

type submitOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Message     string `json:"message"`
}

// Submit handles POST /orders.
//
// The order and its items are written in one transaction. The kitchen
// queue entry and the table status update are best-effort follow-ups:
// a failure there is logged, not rolled back — the order itself is the
// source of truth and a reconciliation pass can repair the rest.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req domain.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The client-supplied restaurant ID is untrusted input. The tenant
	// scope comes from the authenticated profile.
	if req.RestaurantID != profile.RestaurantID {
		respondError(w, http.StatusForbidden, "restaurant mismatch")
		return
	}

	if msg := validateOrder(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if h.rateLimiter != nil && !h.rateLimiter.Allow(r.Context(), "order:"+req.CustomerPhone, h.rateLimit) {
		respondError(w, http.StatusTooManyRequests, "too many orders, slow down")
		return
	}

	entity, err := h.store.GetServiceEntity(r.Context(), req.RestaurantID, req.EntityType, req.EntityID)
	if err != nil {
		h.logger.Error("entity lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}
	if entity == nil {
		respondError(w, http.StatusNotFound, "table or room not found")
		return
	}

	itemIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		itemIDs = append(itemIDs, item.MenuItemID)
	}
	count, err := h.store.CountMenuItems(r.Context(), req.RestaurantID, itemIDs)
	if err != nil {
		h.logger.Error("menu item lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}
	if count != len(uniqueStrings(itemIDs)) {
		respondError(w, http.StatusNotFound, "one or more menu items not found")
		return
	}

	orderNumber, err := generateOrderNumber()
	if err != nil {
		h.logger.Error("order number generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}

	order, err := h.store.CreateOrder(r.Context(), req, orderNumber)
	if err != nil {
		h.logger.Error("order creation failed", "error", err)
		respondErrorDetails(w, http.StatusInternalServerError, "failed to submit order", "could not save order")
		return
	}

	// Best-effort side effects after the committed order.
	if err := h.store.EnqueueKitchenOrder(r.Context(), order.ID, order.RestaurantID); err != nil {
		h.logger.Error("kitchen queue insert failed", "error", err, "order_id", order.ID)
	}
	if order.EntityType == domain.EntityTable {
		if err := h.store.UpdateEntityStatus(r.Context(), order.RestaurantID, order.EntityID, domain.EntityStatusOccupied); err != nil {
			h.logger.Error("table status update failed", "error", err, "order_id", order.ID)
		}
	}

	metrics.OrdersCreated.Inc()
	if h.hub != nil {
		h.hub.Broadcast(websocket.FeedEvent{
			Type:         websocket.EventOrderCreated,
			RestaurantID: order.RestaurantID,
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
		})
	}

	h.logger.Info("order submitted",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"restaurant_id", order.RestaurantID,
		"items", len(req.Items),
	)

	respondJSON(w, http.StatusCreated, submitOrderResponse{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Message:     "order placed",
	})
}

func validateOrder(req domain.SubmitOrderRequest) string {
	if req.RestaurantID == "" {
		return "restaurantId is required"
	}
	if req.EntityType != domain.EntityTable && req.EntityType != domain.EntityRoom {
		return `entityType must be "table" or "room"`
	}
	if req.EntityID == "" {
		return "entityId is required"
	}
	if req.CustomerName == "" {
		return "customerName is required"
	}
	if req.CustomerPhone == "" {
		return "customerPhone is required"
	}
	if len(req.Items) == 0 {
		return "at least one item is required"
	}
	for _, item := range req.Items {
		if item.MenuItemID == "" {
			return "menuItemId is required for every item"
		}
		if item.Quantity <= 0 {
			return "item quantity must be positive"
		}
		if item.Price < 0 {
			return "item price must not be negative"
		}
	}
	if req.TotalAmount <= 0 {
		return "totalAmount must be positive"
	}
	return ""
}

// orderNumberAlphabet deliberately drops 0/O and 1/I so staff can read
// numbers back over the phone without ambiguity.
const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderNumber returns 8 uppercase alphanumeric characters.
func generateOrderNumber() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return string(buf), nil
}

func uniqueStrings(strs []string) []string {
	seen := make(map[string]struct{}, len(strs))
	var out []string
	for _, s := range strs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
