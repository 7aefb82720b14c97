package repository

import (
	"commercebot/internal/entities"
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageLogRepository struct {
	db *pgxpool.Pool
}

func NewMessageLogRepository(db *pgxpool.Pool) *MessageLogRepository {
	return &MessageLogRepository{db: db}
}

func (r *MessageLogRepository) AppendMessageLog(ctx context.Context, e entities.MessageLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_logs (direction, sender_id, message_id, message_type, body, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(e.Direction), e.SenderID, e.MessageID, e.MessageType, e.Body, e.Status, e.Error, e.CreatedAt)
	return err
}

func (r *MessageLogRepository) CountMessageLogs(ctx context.Context, direction entities.Direction) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM message_logs WHERE direction = $1", string(direction)).Scan(&n)
	return n, err
}
