package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RateWindowRepository struct {
	db *pgxpool.Pool
}

func NewRateWindowRepository(db *pgxpool.Pool) *RateWindowRepository {
	return &RateWindowRepository{db: db}
}

// IncrementWindow creates the (sender, window) row at 1 or increments it while it
// is below max. A full window returns no row, so the counter never grows past max.
func (r *RateWindowRepository) IncrementWindow(ctx context.Context, senderID string, windowStart time.Time, max int) (int, bool, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		INSERT INTO rate_windows (sender_id, window_start, request_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (sender_id, window_start)
		DO UPDATE SET request_count = rate_windows.request_count + 1
		WHERE rate_windows.request_count < $3
		RETURNING request_count
	`, senderID, windowStart, max).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return max, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *RateWindowRepository) PruneWindows(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM rate_windows WHERE window_start < $1", before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
