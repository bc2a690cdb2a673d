package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rasoihq/rasoi-backend/internal/whatsapp"
)

// SaveInboundMessage persists an inbound WhatsApp message. The unique
// index on message_id is a durable backstop behind the Redis dedup set.
func (s *PostgresStore) SaveInboundMessage(ctx context.Context, msg whatsapp.InboundMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wa_messages (id, message_id, from_number, sender_name,
			business_number, msg_type, body, media_id, wa_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (message_id) DO NOTHING
	`, uuid.NewString(), msg.MessageID, msg.From, nullIfEmpty(msg.SenderName),
		nullIfEmpty(msg.PhoneNumber), msg.Type, nullIfEmpty(msg.Body),
		nullIfEmpty(msg.MediaID), msg.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting inbound message: %w", err)
	}
	return nil
}

// RecordStatusUpdate appends a delivery-state transition for an
// outbound message. Transitions are append-only; ordering is not
// guaranteed by the platform so no state machine is enforced here.
func (s *PostgresStore) RecordStatusUpdate(ctx context.Context, status whatsapp.StatusUpdate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wa_status_updates (id, message_id, status, recipient_id, wa_timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), status.ID, status.Status, status.RecipientID, status.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting status update: %w", err)
	}
	return nil
}
