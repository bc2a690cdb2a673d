package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rasoihq/rasoi-backend/internal/auth"
	"github.com/rasoihq/rasoi-backend/internal/domain"
	"github.com/rasoihq/rasoi-backend/internal/metrics"
)

// ClockStore is the slice of the store the clock handler needs.
type ClockStore interface {
	GetOpenClockEntry(ctx context.Context, staffID, restaurantID string) (*domain.ClockEntry, error)
	CreateClockEntry(ctx context.Context, staffID, restaurantID, notes string) (*domain.ClockEntry, error)
	CloseClockEntry(ctx context.Context, entryID, notes string) (*domain.ClockEntry, error)
}

// ClockHandler records staff clock-in/out entries.
type ClockHandler struct {
	store  ClockStore
	logger *slog.Logger
}

func NewClockHandler(s ClockStore, logger *slog.Logger) *ClockHandler {
	return &ClockHandler{store: s, logger: logger}
}

type clockResponse struct {
	Success bool               `json:"success"`
	Data    *domain.ClockEntry `json:"data"`
	Action  string             `json:"action"`
}

// Record handles POST /clock-entries.
func (h *ClockHandler) Record(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req domain.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.StaffID == "" {
		respondError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	if req.Action != domain.ClockIn && req.Action != domain.ClockOut {
		respondError(w, http.StatusBadRequest, `action must be "in" or "out"`)
		return
	}

	if req.RestaurantID != profile.RestaurantID {
		respondError(w, http.StatusForbidden, "restaurant mismatch")
		return
	}

	open, err := h.store.GetOpenClockEntry(r.Context(), req.StaffID, req.RestaurantID)
	if err != nil {
		h.logger.Error("open clock entry lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to record clock entry")
		return
	}

	var entry *domain.ClockEntry

	switch req.Action {
	case domain.ClockIn:
		if open != nil {
			respondErrorDetails(w, http.StatusBadRequest, "Active session exists",
				"clock out before clocking in again")
			return
		}
		entry, err = h.store.CreateClockEntry(r.Context(), req.StaffID, req.RestaurantID, req.Notes)
		if err != nil {
			h.logger.Error("clock-in failed", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to record clock entry")
			return
		}
		if entry == nil {
			// A concurrent clock-in slipped past the lookup; the open-session
			// index caught it.
			respondErrorDetails(w, http.StatusBadRequest, "Active session exists",
				"clock out before clocking in again")
			return
		}

	case domain.ClockOut:
		if open == nil {
			respondErrorDetails(w, http.StatusBadRequest, "No active session",
				"clock in before clocking out")
			return
		}
		entry, err = h.store.CloseClockEntry(r.Context(), open.ID, req.Notes)
		if err != nil {
			h.logger.Error("clock-out failed", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to record clock entry")
			return
		}
		if entry == nil {
			// Session was closed concurrently between the lookup and the update.
			respondErrorDetails(w, http.StatusBadRequest, "No active session",
				"clock in before clocking out")
			return
		}
	}

	metrics.ClockEntries.WithLabelValues(req.Action).Inc()
	h.logger.Info("clock entry recorded",
		"staff_id", req.StaffID,
		"restaurant_id", req.RestaurantID,
		"action", req.Action,
	)

	respondJSON(w, http.StatusOK, clockResponse{
		Success: true,
		Data:    entry,
		Action:  req.Action,
	})
}
