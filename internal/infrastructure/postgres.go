package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, connString string, logger zerolog.Logger) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}
	if err := client.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info().Msg("postgres schema ready")

	return client, nil
}

var postgresSchema = []struct {
	name string
	ddl  string
}{
	{"bot_users", `
		CREATE TABLE IF NOT EXISTS bot_users (
			sender_id VARCHAR(32) PRIMARY KEY,
			profile_name VARCHAR(255) NOT NULL DEFAULT '',
			first_seen_at TIMESTAMPTZ NOT NULL,
			last_active_at TIMESTAMPTZ NOT NULL,
			is_blocked BOOLEAN NOT NULL DEFAULT FALSE
		);`},
	{"processed_messages", `
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id VARCHAR(255) PRIMARY KEY,
			sender_id VARCHAR(32) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_processed_messages_processed_at ON processed_messages (processed_at);`},
	{"rate_windows", `
		CREATE TABLE IF NOT EXISTS rate_windows (
			sender_id VARCHAR(32) NOT NULL,
			window_start TIMESTAMPTZ NOT NULL,
			request_count INT NOT NULL,
			PRIMARY KEY (sender_id, window_start)
		);`},
	{"catalogue_items", `
		CREATE TABLE IF NOT EXISTS catalogue_items (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL DEFAULT 0,
			currency VARCHAR(10) NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);`},
	{"leads", `
		CREATE TABLE IF NOT EXISTS leads (
			sender_id VARCHAR(32) PRIMARY KEY,
			name VARCHAR(255) NOT NULL DEFAULT '',
			source VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			last_interaction TIMESTAMPTZ NOT NULL
		);`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(26) PRIMARY KEY,
			sender_id VARCHAR(32) NOT NULL,
			message_id VARCHAR(255) UNIQUE NOT NULL,
			item_id VARCHAR(64) NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL,
			currency VARCHAR(10) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orders_sender_created ON orders (sender_id, created_at DESC);`},
	{"message_logs", `
		CREATE TABLE IF NOT EXISTS message_logs (
			id BIGSERIAL PRIMARY KEY,
			direction VARCHAR(10) NOT NULL,
			sender_id VARCHAR(32) NOT NULL,
			message_id VARCHAR(255) NOT NULL DEFAULT '',
			message_type VARCHAR(16) NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`},
	{"bot_config", `
		CREATE TABLE IF NOT EXISTS bot_config (
			key VARCHAR(50) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`},
}

func (p *PostgresClient) Migrate(ctx context.Context) error {
	for _, t := range postgresSchema {
		if _, err := p.Pool.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}
	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
