package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore bundles the Postgres repositories behind interfaces.Store.
type PostgresStore struct {
	*UserRepository
	*ProcessedMessageRepository
	*RateWindowRepository
	*CatalogueRepository
	*LeadRepository
	*OrderRepository
	*MessageLogRepository
	*ConfigRepository
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		UserRepository:             NewUserRepository(pool),
		ProcessedMessageRepository: NewProcessedMessageRepository(pool),
		RateWindowRepository:       NewRateWindowRepository(pool),
		CatalogueRepository:        NewCatalogueRepository(pool),
		LeadRepository:             NewLeadRepository(pool),
		OrderRepository:            NewOrderRepository(pool),
		MessageLogRepository:       NewMessageLogRepository(pool),
		ConfigRepository:           NewConfigRepository(pool),
		pool:                       pool,
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
