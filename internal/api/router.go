package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rasoihq/rasoi-backend/internal/auth"
	"github.com/rasoihq/rasoi-backend/internal/config"
	"github.com/rasoihq/rasoi-backend/internal/engine"
	"github.com/rasoihq/rasoi-backend/internal/store"
	ws "github.com/rasoihq/rasoi-backend/internal/websocket"
	"github.com/rasoihq/rasoi-backend/internal/whatsapp"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	cfg *config.Config,
	pgStore *store.PostgresStore,
	syncEngine *engine.SyncEngine,
	rateLimiter *engine.RateLimiter,
	cb *engine.CircuitBreaker,
	processor *whatsapp.Processor,
	verifier *whatsapp.Verifier,
	hub *ws.Hub,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// CORS for browser clients (QR ordering pages, staff console)
	r.Use(corsMiddleware)

	// Handlers
	webhookHandler := NewWebhookHandler(verifier, processor, cfg.WhatsAppVerifyToken, logger)
	orderHandler := NewOrderHandler(pgStore, rateLimiter, hub, cfg.OrderRateLimit, logger)
	clockHandler := NewClockHandler(pgStore, logger)
	channelHandler := NewChannelHandler(pgStore, syncEngine, cb, logger)

	// Live ops feed
	r.Get("/ws", hub.HandleWebSocket)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Messaging platform webhook — authenticated by signature, not bearer token
	r.Route("/webhooks/whatsapp", func(r chi.Router) {
		r.Get("/", webhookHandler.Verify)
		r.Post("/", webhookHandler.Receive)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandler())

		// Everything below requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(pgStore, logger))

			r.Post("/orders", orderHandler.Submit)
			r.Post("/clock-entries", clockHandler.Record)

			r.Route("/channels", func(r chi.Router) {
				r.Post("/", channelHandler.Create)
				r.Get("/", channelHandler.List)
				r.Post("/sync", channelHandler.Sync)
				r.Get("/{id}/attempts", channelHandler.Attempts)
			})
		})
	})

	return r
}

// corsMiddleware adds permissive CORS headers; the QR-ordering pages are
// served from customer-facing origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type, x-hub-signature-256")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
