package repository

import (
	"commercebot/internal/entities"
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogueRepository struct {
	db *pgxpool.Pool
}

func NewCatalogueRepository(db *pgxpool.Pool) *CatalogueRepository {
	return &CatalogueRepository{db: db}
}

// ListCatalogue returns all items grouped by category.
func (r *CatalogueRepository) ListCatalogue(ctx context.Context) ([]entities.CatalogueItem, error) {
	rows, err := r.db.Query(ctx,
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

func (r *CatalogueRepository) UpsertCatalogueItem(ctx context.Context, it entities.CatalogueItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO catalogue_items (id, name, category, description, price, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    category = EXCLUDED.category,
		    description = EXCLUDED.description,
		    price = EXCLUDED.price,
		    currency = EXCLUDED.currency,
		    updated_at = NOW()
	`, it.ID, it.Name, it.Category, it.Description, it.Price, it.Currency)
	return err
}
