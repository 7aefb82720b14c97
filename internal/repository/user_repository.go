package repository

import (
	"commercebot/internal/entities"
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "sender_id, profile_name, first_seen_at, last_active_at, is_blocked"

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.SenderID, &u.ProfileName, &u.FirstSeenAt, &u.LastActiveAt, &u.IsBlocked); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetUser(ctx context.Context, senderID string) (*entities.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM bot_users WHERE sender_id = $1", senderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // Not found
	}
	return user, err
}

// UpsertUser creates the user on first contact and bumps last_active_at afterwards.
// An empty profile name never overwrites a known one.
func (r *UserRepository) UpsertUser(ctx context.Context, senderID, profileName string, at time.Time) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO bot_users (sender_id, profile_name, first_seen_at, last_active_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (sender_id) DO UPDATE
		SET last_active_at = EXCLUDED.last_active_at,
		    profile_name = COALESCE(NULLIF(EXCLUDED.profile_name, ''), bot_users.profile_name)
		RETURNING `+userColumns, senderID, profileName, at))
}

func (r *UserRepository) SetBlocked(ctx context.Context, senderID string, blocked bool) error {
	tag, err := r.db.Exec(ctx, "UPDATE bot_users SET is_blocked = $2 WHERE sender_id = $1", senderID, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListUsers(ctx context.Context, limit int) ([]entities.User, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+userColumns+" FROM bot_users ORDER BY last_active_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entities.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
