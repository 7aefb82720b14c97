package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"context"
	"fmt"
	"time"
)

type Deduplicator struct {
	store interfaces.ProcessedMessageStore
}

func NewDeduplicator(store interfaces.ProcessedMessageStore) *Deduplicator {
	return &Deduplicator{store: store}
}

// Claim records the message id and reports whether this caller is the
// first to see it. Only the first caller may process the message.
func (d *Deduplicator) Claim(ctx context.Context, msg *entities.InboundMessage, at time.Time) (bool, error) {
	claimed, err := d.store.ClaimMessage(ctx, entities.ProcessedMessage{
		MessageID:   msg.MessageID,
		SenderID:    msg.SenderID,
		Kind:        msg.Kind,
		ProcessedAt: at,
	})
	if err != nil {
		return false, fmt.Errorf("claim message %s: %w", msg.MessageID, err)
	}
	return claimed, nil
}

func (d *Deduplicator) AlreadyProcessed(ctx context.Context, messageID string) (bool, error) {
	return d.store.IsProcessed(ctx, messageID)
}

// MarkProcessed is idempotent; marking an already known id is not an error.
func (d *Deduplicator) MarkProcessed(ctx context.Context, messageID, senderID string, kind entities.MessageKind, at time.Time) error {
	_, err := d.store.ClaimMessage(ctx, entities.ProcessedMessage{
		MessageID:   messageID,
		SenderID:    senderID,
		Kind:        kind,
		ProcessedAt: at,
	})
	return err
}
