package repository

import (
	"commercebot/internal/entities"
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteStore implements interfaces.Store on an embedded SQLite database.
// Timestamps are persisted as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func ms(t time.Time) int64 { return t.UnixMilli() }

func fromMS(v int64) time.Time { return time.UnixMilli(v).UTC() }

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Users

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row scanner) (*entities.User, error) {
	var (
		u                 entities.User
		firstSeen, active int64
	)
	if err := row.Scan(&u.SenderID, &u.ProfileName, &firstSeen, &active, &u.IsBlocked); err != nil {
		return nil, err
	}
	u.FirstSeenAt, u.LastActiveAt = fromMS(firstSeen), fromMS(active)
	return &u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, senderID string) (*entities.User, error) {
	u, err := scanSQLiteUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM bot_users WHERE sender_id = ?", senderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, senderID, profileName string, at time.Time) (*entities.User, error) {
	return scanSQLiteUser(s.db.QueryRowContext(ctx, `
		INSERT INTO bot_users (sender_id, profile_name, first_seen_at, last_active_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (sender_id) DO UPDATE
		SET last_active_at = excluded.last_active_at,
		    profile_name = COALESCE(NULLIF(excluded.profile_name, ''), bot_users.profile_name)
		RETURNING `+userColumns, senderID, profileName, ms(at), ms(at)))
}

func (s *SQLiteStore) SetBlocked(ctx context.Context, senderID string, blocked bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE bot_users SET is_blocked = ? WHERE sender_id = ?", blocked, senderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context, limit int) ([]entities.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM bot_users ORDER BY last_active_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entities.User{}
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Processed messages

func (s *SQLiteStore) ClaimMessage(ctx context.Context, rec entities.ProcessedMessage) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_messages (message_id, sender_id, kind, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (message_id) DO NOTHING
	`, rec.MessageID, rec.SenderID, string(rec.Kind), ms(rec.ProcessedAt))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *SQLiteStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM processed_messages WHERE message_id = ?)", messageID).Scan(&exists)
	return exists, err
}

func (s *SQLiteStore) PruneProcessed(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM processed_messages WHERE processed_at < ?", ms(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Rate windows

func (s *SQLiteStore) IncrementWindow(ctx context.Context, senderID string, windowStart time.Time, max int) (int, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO rate_windows (sender_id, window_start, request_count)
		VALUES (?, ?, 1)
		ON CONFLICT (sender_id, window_start)
		DO UPDATE SET request_count = rate_windows.request_count + 1
		WHERE rate_windows.request_count < ?
		RETURNING request_count
	`, senderID, ms(windowStart), max).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return max, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (s *SQLiteStore) PruneWindows(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rate_windows WHERE window_start < ?", ms(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Catalogue

func (s *SQLiteStore) ListCatalogue(ctx context.Context) ([]entities.CatalogueItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, category, description, price, currency FROM catalogue_items ORDER BY category, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entities.CatalogueItem{}
	for rows.Next() {
		var it entities.CatalogueItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.Description, &it.Price, &it.Currency); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) UpsertCatalogueItem(ctx context.Context, it entities.CatalogueItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalogue_items (id, name, category, description, price, currency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name,
		    category = excluded.category,
		    description = excluded.description,
		    price = excluded.price,
		    currency = excluded.currency
	`, it.ID, it.Name, it.Category, it.Description, it.Price, it.Currency)
	return err
}

// Leads

func scanSQLiteLead(row scanner) (*entities.Lead, error) {
	var (
		l                 entities.Lead
		created, lastSeen int64
	)
	if err := row.Scan(&l.SenderID, &l.Name, &l.Source, &l.Status, &created, &lastSeen); err != nil {
		return nil, err
	}
	l.CreatedAt, l.LastInteraction = fromMS(created), fromMS(lastSeen)
	return &l, nil
}

func (s *SQLiteStore) UpsertLead(ctx context.Context, lead entities.Lead) (*entities.Lead, error) {
	at := ms(lead.LastInteraction)
	return scanSQLiteLead(s.db.QueryRowContext(ctx, `
		INSERT INTO leads (sender_id, name, source, status, created_at, last_interaction)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (sender_id) DO UPDATE
		SET last_interaction = excluded.last_interaction,
		    name = COALESCE(NULLIF(excluded.name, ''), leads.name)
		RETURNING sender_id, name, source, status, created_at, last_interaction
	`, lead.SenderID, lead.Name, lead.Source, lead.Status, at, at))
}

func (s *SQLiteStore) ListLeads(ctx context.Context, limit int) ([]entities.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sender_id, name, source, status, created_at, last_interaction
		FROM leads ORDER BY last_interaction DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []entities.Lead{}
	for rows.Next() {
		l, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

// Orders

func (s *SQLiteStore) CreateOrder(ctx context.Context, o *entities.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.SenderID, o.MessageID, o.ItemID, o.ItemName, o.Price, o.Currency, o.Status, ms(o.CreatedAt))
	return err
}

func (s *SQLiteStore) ListOrdersBySender(ctx context.Context, senderID string, limit int) ([]entities.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE sender_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		senderID, limit)
	if err != nil {
		return nil, err
	}
	return scanSQLiteOrders(rows)
}

func (s *SQLiteStore) ListOrders(ctx context.Context, limit int) ([]entities.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return scanSQLiteOrders(rows)
}

func scanSQLiteOrders(rows *sql.Rows) ([]entities.Order, error) {
	defer rows.Close()
	orders := []entities.Order{}
	for rows.Next() {
		var (
			o       entities.Order
			created int64
		)
		if err := rows.Scan(&o.ID, &o.SenderID, &o.MessageID, &o.ItemID, &o.ItemName,
			&o.Price, &o.Currency, &o.Status, &created); err != nil {
			return nil, err
		}
		o.CreatedAt = fromMS(created)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Message log

func (s *SQLiteStore) AppendMessageLog(ctx context.Context, e entities.MessageLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_logs (direction, sender_id, message_id, message_type, body, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(e.Direction), e.SenderID, e.MessageID, e.MessageType, e.Body, e.Status, e.Error, ms(e.CreatedAt))
	return err
}

func (s *SQLiteStore) CountMessageLogs(ctx context.Context, direction entities.Direction) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM message_logs WHERE direction = ?", string(direction)).Scan(&n)
	return n, err
}

// Bot config

func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM bot_config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bot_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, ms(time.Now()))
	return err
}
