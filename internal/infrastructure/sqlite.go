package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteClient is the embedded store used in development and tests.
type SQLiteClient struct {
	DB *sql.DB
}

func NewSQLiteClient(ctx context.Context, dbPath string, logger zerolog.Logger) (*SQLiteClient, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite allows one writer; serialising through a single connection keeps
	// the upserts atomic without SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping sqlite: %w", err)
	}

	client := &SQLiteClient{DB: db}
	if err := client.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info().Str("path", dbPath).Msg("sqlite schema ready")

	return client, nil
}

// Timestamps are stored as unix milliseconds.
var sqliteSchema = []struct {
	name string
	ddl  string
}{
	{"bot_users", `
		CREATE TABLE IF NOT EXISTS bot_users (
			sender_id TEXT PRIMARY KEY,
			profile_name TEXT NOT NULL DEFAULT '',
			first_seen_at INTEGER NOT NULL,
			last_active_at INTEGER NOT NULL,
			is_blocked INTEGER NOT NULL DEFAULT 0
		)`},
	{"processed_messages", `
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			processed_at INTEGER NOT NULL
		)`},
	{"processed_messages index", `
		CREATE INDEX IF NOT EXISTS idx_processed_messages_processed_at ON processed_messages (processed_at)`},
	{"rate_windows", `
		CREATE TABLE IF NOT EXISTS rate_windows (
			sender_id TEXT NOT NULL,
			window_start INTEGER NOT NULL,
			request_count INTEGER NOT NULL,
			PRIMARY KEY (sender_id, window_start)
		)`},
	{"catalogue_items", `
		CREATE TABLE IF NOT EXISTS catalogue_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT ''
		)`},
	{"leads", `
		CREATE TABLE IF NOT EXISTS leads (
			sender_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_interaction INTEGER NOT NULL
		)`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			message_id TEXT UNIQUE NOT NULL,
			item_id TEXT NOT NULL,
			item_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			currency TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`},
	{"orders index", `
		CREATE INDEX IF NOT EXISTS idx_orders_sender_created ON orders (sender_id, created_at DESC)`},
	{"message_logs", `
		CREATE TABLE IF NOT EXISTS message_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			direction TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			message_id TEXT NOT NULL DEFAULT '',
			message_type TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`},
	{"bot_config", `
		CREATE TABLE IF NOT EXISTS bot_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`},
}

func (c *SQLiteClient) Migrate(ctx context.Context) error {
	for _, t := range sqliteSchema {
		if _, err := c.DB.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}

func (c *SQLiteClient) Close() {
	c.DB.Close()
}
