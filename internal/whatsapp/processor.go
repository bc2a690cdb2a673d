package whatsapp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rasoihq/rasoi-backend/internal/metrics"
)

// MessageSink persists inbound messages and status transitions.
type MessageSink interface {
	SaveInboundMessage(ctx context.Context, msg InboundMessage) error
	RecordStatusUpdate(ctx context.Context, status StatusUpdate) error
}

// Notifier pushes processed messages to live consumers (ops feed).
type Notifier interface {
	NotifyMessage(msg InboundMessage)
}

// InboundMessage is the normalized form of a webhook message, flattened
// out of the tagged union for storage.
type InboundMessage struct {
	MessageID   string
	From        string
	SenderName  string
	PhoneNumber string // receiving business number
	Type        string
	Body        string
	MediaID     string
	Timestamp   string
}

// Processor walks webhook payloads and routes messages and statuses to
// the sink. All errors are logged and swallowed: by the time a payload
// reaches the processor the request has been authenticated, and the
// platform must still receive a 200 or it will retry and eventually
// disable the webhook.
type Processor struct {
	sink     MessageSink
	dedup    *Deduper
	notifier Notifier
	logger   *slog.Logger
}

func NewProcessor(sink MessageSink, dedup *Deduper, notifier Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		sink:     sink,
		dedup:    dedup,
		notifier: notifier,
		logger:   logger,
	}
}

// Process handles one parsed webhook payload.
func (p *Processor) Process(ctx context.Context, payload *WebhookPayload) {
	if payload.Object != ObjectBusinessAccount {
		p.logger.Warn("ignoring webhook with unexpected object", "object", payload.Object)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != FieldMessages {
				continue
			}
			p.processMessages(ctx, change.Value)
			p.processStatuses(ctx, change.Value.Statuses)
		}
	}
}

func (p *Processor) processMessages(ctx context.Context, value ChangeValue) {
	// Contact cards arrive alongside messages, keyed by wa_id.
	names := make(map[string]string, len(value.Contacts))
	for _, c := range value.Contacts {
		names[c.WaID] = c.Profile.Name
	}

	for _, msg := range value.Messages {
		if p.dedup != nil && !p.dedup.FirstSeen(ctx, msg.ID) {
			p.logger.Info("skipping redelivered message", "message_id", msg.ID)
			continue
		}

		inbound := InboundMessage{
			MessageID:   msg.ID,
			From:        msg.From,
			SenderName:  names[msg.From],
			PhoneNumber: value.Metadata.DisplayPhoneNumber,
			Type:        msg.Type,
			Timestamp:   msg.Timestamp,
		}

		switch msg.Type {
		case "text":
			if msg.Text != nil {
				inbound.Body = msg.Text.Body
			}
		case "image":
			if msg.Image != nil {
				inbound.MediaID = msg.Image.ID
				inbound.Body = msg.Image.Caption
			}
		case "button":
			if msg.Button != nil {
				inbound.Body = msg.Button.Payload
			}
		default:
			p.logger.Info("unhandled message type",
				"message_id", msg.ID,
				"type", msg.Type,
			)
		}

		if err := p.sink.SaveInboundMessage(ctx, inbound); err != nil {
			p.logger.Error("failed to persist inbound message",
				"error", err,
				"message_id", msg.ID,
			)
			continue
		}

		metrics.MessagesProcessed.WithLabelValues(msg.Type).Inc()
		p.logger.Info("message received",
			"message_id", msg.ID,
			"from", msg.From,
			"type", msg.Type,
		)

		if p.notifier != nil {
			p.notifier.NotifyMessage(inbound)
		}
	}
}

func (p *Processor) processStatuses(ctx context.Context, statuses []StatusUpdate) {
	for _, st := range statuses {
		if err := p.sink.RecordStatusUpdate(ctx, st); err != nil {
			p.logger.Error("failed to record status update",
				"error", err,
				"message_id", st.ID,
				"status", st.Status,
			)
			continue
		}

		metrics.StatusUpdatesProcessed.Inc()
		p.logger.Info("status update",
			"message_id", st.ID,
			"status", st.Status,
			"recipient_id", st.RecipientID,
		)
	}
}

// ParsePayload decodes raw webhook bytes. Split out so the HTTP handler
// can distinguish parse failures (acknowledged with 200) from signature
// failures (rejected with 403).
func ParsePayload(raw []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
