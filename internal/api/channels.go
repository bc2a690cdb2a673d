package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rasoihq/rasoi-backend/internal/auth"
	"github.com/rasoihq/rasoi-backend/internal/domain"
	"github.com/rasoihq/rasoi-backend/internal/engine"
	"github.com/rasoihq/rasoi-backend/internal/store"
)

// ChannelHandler manages distribution channels and sync fan-out.
type ChannelHandler struct {
	store      *store.PostgresStore
	syncEngine *engine.SyncEngine
	cb         *engine.CircuitBreaker
	logger     *slog.Logger
}

func NewChannelHandler(s *store.PostgresStore, se *engine.SyncEngine, cb *engine.CircuitBreaker, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{store: s, syncEngine: se, cb: cb, logger: logger}
}

// Create registers a new channel for the authenticated tenant.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req domain.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RestaurantID != profile.RestaurantID {
		respondError(w, http.StatusForbidden, "restaurant mismatch")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if u, err := url.Parse(req.EndpointURL); err != nil || u.Scheme == "" || u.Host == "" {
		respondError(w, http.StatusBadRequest, "endpoint_url must be a valid absolute URL")
		return
	}

	ch, err := h.store.CreateChannel(r.Context(), req)
	if err != nil {
		h.logger.Error("channel creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create channel")
		return
	}

	respondJSON(w, http.StatusCreated, domain.CreateChannelResponse{
		ID:        ch.ID,
		Name:      ch.Name,
		SecretKey: ch.SecretKey,
	})
}

// List returns the tenant's channels with circuit state.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	channels, err := h.store.ListChannels(r.Context(), profile.RestaurantID)
	if err != nil {
		h.logger.Error("channel list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list channels")
		return
	}

	type channelDetail struct {
		domain.Channel
		Circuit engine.CircuitBreakerState `json:"circuit"`
	}

	details := make([]channelDetail, 0, len(channels))
	for _, ch := range channels {
		details = append(details, channelDetail{
			Channel: ch,
			Circuit: h.cb.GetState(r.Context(), ch.ID),
		})
	}

	respondJSON(w, http.StatusOK, details)
}

type syncRequest struct {
	RestaurantID string `json:"restaurant_id"`
}

type syncResponse struct {
	Success        bool `json:"success"`
	ChannelsQueued int  `json:"channels_queued"`
}

// Sync handles POST /channels/sync: snapshot availability and queue a
// push to every active channel.
func (h *ChannelHandler) Sync(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RestaurantID != profile.RestaurantID {
		respondError(w, http.StatusForbidden, "restaurant mismatch")
		return
	}

	queued, err := h.syncEngine.QueueSync(r.Context(), req.RestaurantID)
	if err != nil {
		h.logger.Error("channel sync failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to queue channel sync")
		return
	}

	respondJSON(w, http.StatusOK, syncResponse{
		Success:        true,
		ChannelsQueued: queued,
	})
}

// Attempts lists recent sync attempts, optionally for one channel.
func (h *ChannelHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	channelID := chi.URLParam(r, "id")

	ch, err := h.store.GetChannel(r.Context(), profile.RestaurantID, channelID)
	if err != nil {
		h.logger.Error("channel lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list sync attempts")
		return
	}
	if ch == nil {
		respondError(w, http.StatusNotFound, "channel not found")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	attempts, err := h.store.ListSyncAttempts(r.Context(), profile.RestaurantID, channelID, limit)
	if err != nil {
		h.logger.Error("sync attempts list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list sync attempts")
		return
	}

	respondJSON(w, http.StatusOK, attempts)
}
