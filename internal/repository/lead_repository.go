package repository

import (
	"commercebot/internal/entities"
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

// UpsertLead creates the lead on first contact; repeats only refresh
// last_interaction (and the name, when one is known).
func (r *LeadRepository) UpsertLead(ctx context.Context, lead entities.Lead) (*entities.Lead, error) {
	var l entities.Lead
	err := r.db.QueryRow(ctx, `
		INSERT INTO leads (sender_id, name, source, status, created_at, last_interaction)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (sender_id) DO UPDATE
		SET last_interaction = EXCLUDED.last_interaction,
		    name = COALESCE(NULLIF(EXCLUDED.name, ''), leads.name)
		RETURNING sender_id, name, source, status, created_at, last_interaction
	`, lead.SenderID, lead.Name, lead.Source, lead.Status, lead.LastInteraction).Scan(
		&l.SenderID, &l.Name, &l.Source, &l.Status, &l.CreatedAt, &l.LastInteraction)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) ListLeads(ctx context.Context, limit int) ([]entities.Lead, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sender_id, name, source, status, created_at, last_interaction
		FROM leads ORDER BY last_interaction DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []entities.Lead{}
	for rows.Next() {
		var l entities.Lead
		if err := rows.Scan(&l.SenderID, &l.Name, &l.Source, &l.Status, &l.CreatedAt, &l.LastInteraction); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
