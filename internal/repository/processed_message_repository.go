package repository

import (
	"commercebot/internal/entities"
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProcessedMessageRepository struct {
	db *pgxpool.Pool
}

func NewProcessedMessageRepository(db *pgxpool.Pool) *ProcessedMessageRepository {
	return &ProcessedMessageRepository{db: db}
}

func (r *ProcessedMessageRepository) ClaimMessage(ctx context.Context, rec entities.ProcessedMessage) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO processed_messages (message_id, sender_id, kind, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id) DO NOTHING
	`, rec.MessageID, rec.SenderID, string(rec.Kind), rec.ProcessedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProcessedMessageRepository) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM processed_messages WHERE message_id = $1)", messageID).Scan(&exists)
	return exists, err
}

func (r *ProcessedMessageRepository) PruneProcessed(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM processed_messages WHERE processed_at < $1", before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
