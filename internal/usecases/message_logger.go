package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MessageLogger appends audit entries for inbound and outbound traffic.
// A failed append is logged and otherwise ignored.
type MessageLogger struct {
	store  interfaces.MessageLogStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewMessageLogger(store interfaces.MessageLogStore, logger zerolog.Logger) *MessageLogger {
	return &MessageLogger{store: store, logger: logger, now: time.Now}
}

func (l *MessageLogger) LogInbound(ctx context.Context, msg *entities.InboundMessage, status string) {
	l.append(ctx, entities.MessageLog{
		Direction:   entities.DirectionInbound,
		SenderID:    msg.SenderID,
		MessageID:   msg.MessageID,
		MessageType: string(msg.Kind),
		Body:        msg.Preview(),
		Status:      status,
	})
}

func (l *MessageLogger) LogOutbound(ctx context.Context, to string, reply entities.Reply, providerID string, sendErr error) {
	entry := entities.MessageLog{
		Direction:   entities.DirectionOutbound,
		SenderID:    to,
		MessageID:   providerID,
		MessageType: string(reply.Kind),
		Body:        reply.Body,
		Status:      "sent",
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.Error = sendErr.Error()
	}
	l.append(ctx, entry)
}

func (l *MessageLogger) append(ctx context.Context, entry entities.MessageLog) {
	entry.CreatedAt = l.now().UTC()
	if err := l.store.AppendMessageLog(ctx, entry); err != nil {
		l.logger.Warn().Err(err).
			Str("direction", string(entry.Direction)).
			Str("sender", entry.SenderID).
			Msg("failed to append message log")
	}
}
