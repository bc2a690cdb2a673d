package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook gateway counters.
var (
	WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasoi_webhook_requests_total",
		Help: "Inbound webhook requests by outcome.",
	}, []string{"outcome"}) // verified, invalid_signature, parse_error, handshake_ok, handshake_rejected

	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasoi_wa_messages_processed_total",
		Help: "Inbound WhatsApp messages processed by type.",
	}, []string{"type"})

	StatusUpdatesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rasoi_wa_status_updates_total",
		Help: "WhatsApp delivery status updates processed.",
	})
)

// Business API counters.
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rasoi_orders_created_total",
		Help: "QR orders accepted.",
	})

	ClockEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasoi_clock_entries_total",
		Help: "Staff clock actions by direction.",
	}, []string{"action"})
)

// Channel sync counters.
var (
	SyncDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasoi_channel_sync_deliveries_total",
		Help: "Channel sync delivery attempts by result.",
	}, []string{"result"}) // success, failed, skipped
)
