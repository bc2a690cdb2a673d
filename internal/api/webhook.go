package api

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"

	"github.com/rasoihq/rasoi-backend/internal/metrics"
	"github.com/rasoihq/rasoi-backend/internal/whatsapp"
)

// maxWebhookBody caps how much of an event payload we read. Platform
// events are a few KB; 1MB leaves generous headroom.
const maxWebhookBody = 1 << 20

// WebhookHandler is the inbound gateway for WhatsApp Cloud API events:
// the one-time subscription handshake (GET) and event delivery (POST).
type WebhookHandler struct {
	verifier    *whatsapp.Verifier
	processor   *whatsapp.Processor
	verifyToken string
	logger      *slog.Logger
}

func NewWebhookHandler(verifier *whatsapp.Verifier, processor *whatsapp.Processor, verifyToken string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:    verifier,
		processor:   processor,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Verify handles the subscription handshake. The platform confirms
// callback URL ownership by sending a challenge that must be echoed
// back byte-for-byte as plain text.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		h.logger.Warn("webhook handshake rejected", "mode", mode)
		metrics.WebhookRequests.WithLabelValues("handshake_rejected").Inc()
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h.logger.Info("webhook handshake verified")
	metrics.WebhookRequests.WithLabelValues("handshake_ok").Inc()

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// Receive handles event delivery.
//
// Signature failure is the only non-200 outcome. Everything after the
// signature check — malformed JSON, unknown shapes, storage errors —
// is swallowed into a 200 acknowledgment, because the platform retries
// non-200 responses and eventually disables the webhook.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	// The raw bytes must be read before any JSON decoding: the HMAC is
	// computed over the body exactly as received.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		h.acknowledge(w)
		return
	}

	if !h.verifier.Verify(body, r.Header.Get(whatsapp.SignatureHeader)) {
		h.logger.Warn("webhook signature verification failed", "remote_addr", r.RemoteAddr)
		metrics.WebhookRequests.WithLabelValues("invalid_signature").Inc()
		respondError(w, http.StatusForbidden, "Invalid signature")
		return
	}

	payload, err := whatsapp.ParsePayload(body)
	if err != nil {
		h.logger.Error("failed to parse webhook payload", "error", err)
		metrics.WebhookRequests.WithLabelValues("parse_error").Inc()
		h.acknowledge(w)
		return
	}

	metrics.WebhookRequests.WithLabelValues("verified").Inc()
	h.processor.Process(r.Context(), payload)

	h.acknowledge(w)
}

func (h *WebhookHandler) acknowledge(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
